package services

import (
	"context"
	"sync"

	"github.com/go-faster/errors"

	"github.com/hotelstaff/roster/modules/roster/domain/aggregates/staff"
	"github.com/hotelstaff/roster/modules/roster/services/exchange"
	"github.com/hotelstaff/roster/pkg/eventbus"
)

// StaffService is the single writer of the staff collection: every mutation
// runs under one lock, so identifier allocation never interleaves.
type StaffService struct {
	repo      staff.Repository
	publisher eventbus.EventBus
	mu        sync.Mutex
}

func NewStaffService(repo staff.Repository, publisher eventbus.EventBus) *StaffService {
	return &StaffService{
		repo:      repo,
		publisher: publisher,
	}
}

// List returns the full collection in stored order.
func (s *StaffService) List(ctx context.Context) ([]staff.Staff, error) {
	return s.repo.List(ctx)
}

// Find returns the filtered selection and the size of the full collection.
func (s *StaffService) Find(ctx context.Context, params *staff.FindParams) ([]staff.Staff, int, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, 0, err
	}
	return FilterStaff(all, params), len(all), nil
}

func (s *StaffService) Get(ctx context.Context, id int64) (staff.Staff, error) {
	return s.repo.Get(ctx, id)
}

func (s *StaffService) Create(ctx context.Context, data *staff.CreateDTO) (staff.Staff, error) {
	if errs, ok := data.Ok(); !ok {
		return staff.Staff{}, &ValidationError{Fields: errs}
	}
	entity := data.ToEntity()
	if err := entity.Validate(); err != nil {
		return staff.Staff{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.repo.List(ctx)
	if err != nil {
		return staff.Staff{}, err
	}
	if err := batchAvailable(existing, entity); err != nil {
		return staff.Staff{}, err
	}
	a := exchange.Allocate(existing, 1)
	entity.ID, entity.SL = a.IDs[0], a.SLs[0]
	if err := s.repo.Insert(ctx, entity); err != nil {
		return staff.Staff{}, err
	}
	publish(s.publisher, staff.NewCreatedEvent(entity))
	return entity, nil
}

// Update applies a merge patch; last write wins.
func (s *StaffService) Update(ctx context.Context, id int64, patch staff.Patch) (staff.Staff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.repo.List(ctx)
	if err != nil {
		return staff.Staff{}, err
	}
	i := staff.IndexOf(existing, id)
	if i < 0 {
		return staff.Staff{}, staff.ErrNotFound
	}
	before := existing[i]
	updated, err := patch.Apply(before)
	if err != nil {
		return staff.Staff{}, err
	}
	if err := batchAvailable(existing, updated); err != nil {
		return staff.Staff{}, err
	}
	if err := s.repo.Replace(ctx, updated); err != nil {
		return staff.Staff{}, err
	}
	publish(s.publisher, staff.NewUpdatedEvent(before, updated))
	return updated, nil
}

func (s *StaffService) Delete(ctx context.Context, id int64) (staff.Staff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entity, err := s.repo.Get(ctx, id)
	if err != nil {
		return staff.Staff{}, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return staff.Staff{}, err
	}
	publish(s.publisher, staff.NewDeletedEvent(entity))
	return entity, nil
}

type ImportOptions struct {
	exchange.Options
	DryRun bool
}

// Import screens raws against the current collection and persists the
// accepted records in one write. A failed read of the collection aborts the
// import before anything is allocated.
func (s *StaffService) Import(ctx context.Context, raws []map[string]any, opts ImportOptions) (exchange.Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.repo.List(ctx)
	if err != nil {
		return exchange.Batch{}, errors.Wrap(err, "load staff collection")
	}
	batch := exchange.Merge(existing, raws, opts.Options)
	batch.Report.DryRun = opts.DryRun
	if opts.DryRun || len(batch.Records) == 0 {
		return batch, nil
	}
	if err := s.repo.InsertMany(ctx, batch.Records); err != nil {
		return exchange.Batch{}, errors.Wrap(err, "persist imported staff")
	}
	publish(s.publisher, staff.NewImportedEvent(batch.Records, batch.Report.Accepted, batch.Report.Skipped()))
	return batch, nil
}

// batchAvailable enforces global uniqueness of non-empty batch numbers.
func batchAvailable(existing []staff.Staff, s staff.Staff) error {
	if !s.HasBatch() {
		return nil
	}
	for _, other := range existing {
		if other.ID != s.ID && other.BatchNo == s.BatchNo {
			return errors.Wrapf(staff.ErrBatchTaken, "%q is used by staff %d", s.BatchNo, other.ID)
		}
	}
	return nil
}
