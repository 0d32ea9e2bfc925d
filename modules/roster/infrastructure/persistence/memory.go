package persistence

import (
	"context"
	"slices"
	"sync"

	"github.com/hotelstaff/roster/modules/roster/domain/aggregates/staff"
	"github.com/hotelstaff/roster/modules/roster/domain/entities/vacation"
)

// memCollection keeps records in insertion order.
type memCollection[T any] struct {
	mu       sync.RWMutex
	items    []T
	idOf     func(T) int64
	notFound error
}

func (c *memCollection[T]) list() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.items)
}

func (c *memCollection[T]) index(id int64) int {
	return slices.IndexFunc(c.items, func(v T) bool { return c.idOf(v) == id })
}

func (c *memCollection[T]) get(id int64) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.index(id); i >= 0 {
		return c.items[i], nil
	}
	var zero T
	return zero, c.notFound
}

func (c *memCollection[T]) insert(items ...T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, items...)
}

func (c *memCollection[T]) replace(v T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.index(c.idOf(v))
	if i < 0 {
		return c.notFound
	}
	c.items[i] = v
	return nil
}

func (c *memCollection[T]) remove(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.index(id)
	if i < 0 {
		return c.notFound
	}
	c.items = slices.Delete(c.items, i, i+1)
	return nil
}

type InmemStaffRepository struct {
	c *memCollection[staff.Staff]
}

func NewInmemStaffRepository(seed ...staff.Staff) *InmemStaffRepository {
	return &InmemStaffRepository{c: &memCollection[staff.Staff]{
		items:    slices.Clone(seed),
		idOf:     func(s staff.Staff) int64 { return s.ID },
		notFound: staff.ErrNotFound,
	}}
}

func (r *InmemStaffRepository) List(ctx context.Context) ([]staff.Staff, error) {
	return r.c.list(), ctx.Err()
}

func (r *InmemStaffRepository) Get(ctx context.Context, id int64) (staff.Staff, error) {
	return r.c.get(id)
}

func (r *InmemStaffRepository) Insert(ctx context.Context, s staff.Staff) error {
	r.c.insert(s)
	return nil
}

func (r *InmemStaffRepository) InsertMany(ctx context.Context, records []staff.Staff) error {
	r.c.insert(records...)
	return nil
}

func (r *InmemStaffRepository) Replace(ctx context.Context, s staff.Staff) error {
	return r.c.replace(s)
}

func (r *InmemStaffRepository) Delete(ctx context.Context, id int64) error {
	return r.c.remove(id)
}

type InmemVacationRepository struct {
	c *memCollection[vacation.Request]
}

func NewInmemVacationRepository(seed ...vacation.Request) *InmemVacationRepository {
	return &InmemVacationRepository{c: &memCollection[vacation.Request]{
		items:    slices.Clone(seed),
		idOf:     func(r vacation.Request) int64 { return r.ID },
		notFound: vacation.ErrNotFound,
	}}
}

func (r *InmemVacationRepository) List(ctx context.Context) ([]vacation.Request, error) {
	return r.c.list(), ctx.Err()
}

func (r *InmemVacationRepository) Get(ctx context.Context, id int64) (vacation.Request, error) {
	return r.c.get(id)
}

func (r *InmemVacationRepository) Insert(ctx context.Context, v vacation.Request) error {
	r.c.insert(v)
	return nil
}

func (r *InmemVacationRepository) Replace(ctx context.Context, v vacation.Request) error {
	return r.c.replace(v)
}

func (r *InmemVacationRepository) Delete(ctx context.Context, id int64) error {
	return r.c.remove(id)
}
