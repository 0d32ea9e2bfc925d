package repair

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/wI2L/jsondiff"
	"golang.org/x/sync/errgroup"

	"github.com/hotelstaff/roster/modules/roster/domain/aggregates/staff"
	"github.com/hotelstaff/roster/modules/roster/domain/entities/vacation"
)

const (
	DefaultFetchTimeout = 30 * time.Second
	DefaultWriteTimeout = 10 * time.Second
)

// ErrFetch wraps any failure to load either collection. The run is aborted
// before any write is issued.
var ErrFetch = errors.New("repair fetch failed")

type StaffLister interface {
	List(ctx context.Context) ([]staff.Staff, error)
}

type VacationStore interface {
	List(ctx context.Context) ([]vacation.Request, error)
	Update(ctx context.Context, id int64, patch vacation.Patch) (vacation.Request, error)
}

type Config struct {
	FetchTimeout time.Duration
	WriteTimeout time.Duration
}

type Option func(*Engine)

// WithObserver registers a callback invoked after each vacation record is
// decided, in stored order.
func WithObserver(fn func(Outcome)) Option {
	return func(e *Engine) {
		e.observe = fn
	}
}

// Engine resolves dangling staff references on vacation requests.
type Engine struct {
	staff     StaffLister
	vacations VacationStore
	cfg       Config
	observe   func(Outcome)
}

func New(staffLister StaffLister, vacations VacationStore, cfg Config, opts ...Option) *Engine {
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	e := &Engine{staff: staffLister, vacations: vacations, cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run checks every vacation request against the staff collection. A fetch
// failure returns an error; per-record write failures are reported in the
// result and never stop the run.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	roster, requests, err := e.fetch(ctx)
	if err != nil {
		return nil, err
	}

	idx := newIndex(roster)
	res := &Result{Outcomes: make([]Outcome, 0, len(requests))}
	for i, r := range requests {
		if ctx.Err() != nil {
			for _, rest := range requests[i:] {
				res.add(Outcome{
					VacationID: rest.ID,
					Status:     StatusSkipped,
					StaffID:    rest.StaffID,
					StaffName:  rest.StaffName,
					Error:      ctx.Err().Error(),
				})
			}
			res.Interrupted = true
			break
		}
		out := e.check(ctx, idx, r)
		res.add(out)
		if e.observe != nil {
			e.observe(out)
		}
	}
	return res, nil
}

func (e *Engine) fetch(ctx context.Context) ([]staff.Staff, []vacation.Request, error) {
	fctx, cancel := context.WithTimeout(ctx, e.cfg.FetchTimeout)
	defer cancel()

	var (
		roster   []staff.Staff
		requests []vacation.Request
	)
	g, gctx := errgroup.WithContext(fctx)
	g.Go(func() error {
		var err error
		if roster, err = e.staff.List(gctx); err != nil {
			return errors.Wrap(err, "list staff")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if requests, err = e.vacations.List(gctx); err != nil {
			return errors.Wrap(err, "list vacations")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, errors.Wrap(ErrFetch, err.Error())
	}
	if err := fctx.Err(); err != nil {
		return nil, nil, errors.Wrap(ErrFetch, err.Error())
	}
	return roster, requests, nil
}

func (e *Engine) check(ctx context.Context, idx *index, r vacation.Request) Outcome {
	out := Outcome{VacationID: r.ID, StaffID: r.StaffID, StaffName: r.StaffName}
	if _, ok := idx.byID[r.StaffID]; ok {
		out.Status = StatusOK
		return out
	}

	matches := idx.byName[r.StaffName]
	if len(matches) == 0 {
		out.Status = StatusUnrecoverable
		return out
	}
	match := matches[0]
	out.Candidates = len(matches)
	out.NewStaffID = match.ID

	patch := vacation.StaffRefPatch(match.ID, match.Name, match.BatchNo)
	want, err := patch.Apply(r)
	if err != nil {
		out.Status = StatusFailed
		out.Error = err.Error()
		return out
	}
	if changes, err := jsondiff.Compare(r, want); err == nil {
		out.Changes = changes
	}

	wctx, cancel := context.WithTimeout(ctx, e.cfg.WriteTimeout)
	defer cancel()
	if _, err := e.vacations.Update(wctx, r.ID, patch); err != nil {
		out.Status = StatusFailed
		out.Error = err.Error()
		return out
	}
	out.Status = StatusFixed
	return out
}

type index struct {
	byID   map[int64]struct{}
	byName map[string][]staff.Staff
}

// newIndex keeps name candidates in stored order so the first match is
// stable across runs.
func newIndex(roster []staff.Staff) *index {
	idx := &index{
		byID:   make(map[int64]struct{}, len(roster)),
		byName: make(map[string][]staff.Staff, len(roster)),
	}
	for _, s := range roster {
		idx.byID[s.ID] = struct{}{}
		idx.byName[s.Name] = append(idx.byName[s.Name], s)
	}
	return idx
}
