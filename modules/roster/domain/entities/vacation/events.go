package vacation

import "time"

type CreatedEvent struct {
	Result Request
	At     time.Time
}

type UpdatedEvent struct {
	Before Request
	Result Request
	At     time.Time
}

func NewCreatedEvent(result Request) *CreatedEvent {
	return &CreatedEvent{Result: result, At: time.Now().UTC()}
}

func NewUpdatedEvent(before, result Request) *UpdatedEvent {
	return &UpdatedEvent{Before: before, Result: result, At: time.Now().UTC()}
}
