package staff

import "time"

type CreatedEvent struct {
	Result Staff
	At     time.Time
}

type UpdatedEvent struct {
	Before Staff
	Result Staff
	At     time.Time
}

type DeletedEvent struct {
	Result Staff
	At     time.Time
}

// ImportedEvent is published once per committed import batch.
type ImportedEvent struct {
	Records  []Staff
	Accepted int
	Skipped  int
	At       time.Time
}

func NewCreatedEvent(result Staff) *CreatedEvent {
	return &CreatedEvent{Result: result, At: time.Now().UTC()}
}

func NewUpdatedEvent(before, result Staff) *UpdatedEvent {
	return &UpdatedEvent{Before: before, Result: result, At: time.Now().UTC()}
}

func NewDeletedEvent(result Staff) *DeletedEvent {
	return &DeletedEvent{Result: result, At: time.Now().UTC()}
}

func NewImportedEvent(records []Staff, accepted, skipped int) *ImportedEvent {
	return &ImportedEvent{Records: records, Accepted: accepted, Skipped: skipped, At: time.Now().UTC()}
}
