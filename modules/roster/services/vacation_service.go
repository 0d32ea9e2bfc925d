package services

import (
	"context"
	"sync"

	"github.com/hotelstaff/roster/modules/roster/domain/entities/vacation"
	"github.com/hotelstaff/roster/pkg/eventbus"
)

type VacationService struct {
	repo      vacation.Repository
	publisher eventbus.EventBus
	mu        sync.Mutex
}

func NewVacationService(repo vacation.Repository, publisher eventbus.EventBus) *VacationService {
	return &VacationService{
		repo:      repo,
		publisher: publisher,
	}
}

func (s *VacationService) List(ctx context.Context) ([]vacation.Request, error) {
	return s.repo.List(ctx)
}

func (s *VacationService) Get(ctx context.Context, id int64) (vacation.Request, error) {
	return s.repo.Get(ctx, id)
}

func (s *VacationService) Create(ctx context.Context, data *vacation.CreateDTO) (vacation.Request, error) {
	if errs, ok := data.Ok(); !ok {
		return vacation.Request{}, &ValidationError{Fields: errs}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.repo.List(ctx)
	if err != nil {
		return vacation.Request{}, err
	}
	entity := data.ToEntity()
	for _, r := range existing {
		if r.ID > entity.ID {
			entity.ID = r.ID
		}
	}
	entity.ID++
	if err := s.repo.Insert(ctx, entity); err != nil {
		return vacation.Request{}, err
	}
	publish(s.publisher, vacation.NewCreatedEvent(entity))
	return entity, nil
}

// Update applies a merge patch; last write wins.
func (s *VacationService) Update(ctx context.Context, id int64, patch vacation.Patch) (vacation.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before, err := s.repo.Get(ctx, id)
	if err != nil {
		return vacation.Request{}, err
	}
	updated, err := patch.Apply(before)
	if err != nil {
		return vacation.Request{}, err
	}
	if err := s.repo.Replace(ctx, updated); err != nil {
		return vacation.Request{}, err
	}
	publish(s.publisher, vacation.NewUpdatedEvent(before, updated))
	return updated, nil
}

func (s *VacationService) Delete(ctx context.Context, id int64) (vacation.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entity, err := s.repo.Get(ctx, id)
	if err != nil {
		return vacation.Request{}, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return vacation.Request{}, err
	}
	return entity, nil
}
