package repair_test

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/require"

	"github.com/hotelstaff/roster/modules/roster/domain/aggregates/staff"
	"github.com/hotelstaff/roster/modules/roster/domain/entities/vacation"
	"github.com/hotelstaff/roster/modules/roster/services/repair"
)

type fakeStaff struct {
	records []staff.Staff
	err     error
	block   bool
}

func (f *fakeStaff) List(ctx context.Context) ([]staff.Staff, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return append([]staff.Staff(nil), f.records...), nil
}

type fakeVacations struct {
	mu      sync.Mutex
	records []vacation.Request
	writes  int
	fail    map[int64]error
	block   map[int64]bool
	listErr error
}

func (f *fakeVacations) List(context.Context) ([]vacation.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]vacation.Request(nil), f.records...), nil
}

func (f *fakeVacations) Update(ctx context.Context, id int64, patch vacation.Patch) (vacation.Request, error) {
	f.mu.Lock()
	f.writes++
	blocked := f.block[id]
	failure := f.fail[id]
	f.mu.Unlock()

	if blocked {
		<-ctx.Done()
		return vacation.Request{}, ctx.Err()
	}
	if failure != nil {
		return vacation.Request{}, failure
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.records {
		if r.ID != id {
			continue
		}
		updated, err := patch.Apply(r)
		if err != nil {
			return vacation.Request{}, err
		}
		f.records[i] = updated
		return updated, nil
	}
	return vacation.Request{}, vacation.ErrNotFound
}

func (f *fakeVacations) Writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

func newEngine(s *fakeStaff, v *fakeVacations, opts ...repair.Option) *repair.Engine {
	return repair.New(s, v, repair.Config{FetchTimeout: time.Second, WriteTimeout: 50 * time.Millisecond}, opts...)
}

func TestRun_FixesDanglingReference(t *testing.T) {
	t.Parallel()

	s := &fakeStaff{records: []staff.Staff{{ID: 7, Name: "Ann", BatchNo: "B1"}}}
	v := &fakeVacations{records: []vacation.Request{{ID: 1, StaffID: 3, StaffName: "Ann", Status: vacation.StatusPending}}}

	res, err := newEngine(s, v).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, res.Checked)
	require.Equal(t, 1, res.Fixed)
	require.Equal(t, 1, v.Writes())

	out := res.Outcomes[0]
	require.Equal(t, repair.StatusFixed, out.Status)
	require.Equal(t, int64(3), out.StaffID)
	require.Equal(t, int64(7), out.NewStaffID)
	require.NotEmpty(t, out.Changes)

	require.Equal(t, int64(7), v.records[0].StaffID)
	require.Equal(t, "Ann", v.records[0].StaffName)
	require.Equal(t, "B1", v.records[0].StaffBatch)

	second, err := newEngine(s, v).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, second.Corrections())
	require.Equal(t, 1, second.OK)
	require.Equal(t, 1, v.Writes())
}

func TestRun_UnrecoverableIsReported(t *testing.T) {
	t.Parallel()

	s := &fakeStaff{records: []staff.Staff{{ID: 7, Name: "Ann"}}}
	v := &fakeVacations{records: []vacation.Request{{ID: 1, StaffID: 3, StaffName: "Zed"}}}

	res, err := newEngine(s, v).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, res.Unrecoverable)
	require.Equal(t, repair.StatusUnrecoverable, res.Outcomes[0].Status)
	require.Equal(t, "Zed", res.Outcomes[0].StaffName)
	require.Zero(t, v.Writes())
	require.Contains(t, res.Outcomes[0].String(), "unrecoverable")
}

func TestRun_MultipleMatchesPickFirstInStoredOrder(t *testing.T) {
	t.Parallel()

	roster := []staff.Staff{
		{ID: 9, Name: "Ann", BatchNo: "B9"},
		{ID: 4, Name: "Ann", BatchNo: "B4"},
	}
	for range 5 {
		v := &fakeVacations{records: []vacation.Request{{ID: 1, StaffID: 100, StaffName: "Ann"}}}
		res, err := newEngine(&fakeStaff{records: roster}, v).Run(context.Background())
		require.NoError(t, err)
		require.Equal(t, int64(9), res.Outcomes[0].NewStaffID)
		require.Equal(t, 2, res.Outcomes[0].Candidates)
		require.Len(t, res.Ambiguous(), 1)
		require.Equal(t, "B9", v.records[0].StaffBatch)
	}
}

func TestRun_WriteFailureDoesNotAbort(t *testing.T) {
	t.Parallel()

	s := &fakeStaff{records: []staff.Staff{{ID: 1, Name: "Ann"}, {ID: 2, Name: "Bob"}}}
	v := &fakeVacations{
		records: []vacation.Request{
			{ID: 10, StaffID: 50, StaffName: "Ann"},
			{ID: 11, StaffID: 51, StaffName: "Bob"},
			{ID: 12, StaffID: 2, StaffName: "Bob"},
		},
		fail: map[int64]error{10: errors.New("service unavailable")},
	}

	res, err := newEngine(s, v).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, res.Checked)
	require.Equal(t, 1, res.Failed)
	require.Equal(t, 1, res.Fixed)
	require.Equal(t, 1, res.OK)
	require.Equal(t, 2, res.Corrections())
	require.Equal(t, 2, v.Writes())
	require.Equal(t, "service unavailable", res.Outcomes[0].Error)
	require.Equal(t, int64(2), v.records[1].StaffID)
}

func TestRun_WriteTimeoutFailsOnlyThatRecord(t *testing.T) {
	t.Parallel()

	s := &fakeStaff{records: []staff.Staff{{ID: 1, Name: "Ann"}}}
	v := &fakeVacations{
		records: []vacation.Request{
			{ID: 10, StaffID: 50, StaffName: "Ann"},
			{ID: 11, StaffID: 51, StaffName: "Ann"},
		},
		block: map[int64]bool{10: true},
	}

	res, err := newEngine(s, v).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, repair.StatusFailed, res.Outcomes[0].Status)
	require.Equal(t, repair.StatusFixed, res.Outcomes[1].Status)
	require.False(t, res.Interrupted)
}

func TestRun_FetchFailureAbortsWithoutWrites(t *testing.T) {
	t.Parallel()

	v := &fakeVacations{records: []vacation.Request{{ID: 1, StaffID: 3, StaffName: "Ann"}}}
	res, err := newEngine(&fakeStaff{err: errors.New("boom")}, v).Run(context.Background())
	require.Error(t, err)
	require.True(t, errors.Is(err, repair.ErrFetch))
	require.Nil(t, res)
	require.Zero(t, v.Writes())

	v.listErr = errors.New("vacations down")
	_, err = newEngine(&fakeStaff{records: []staff.Staff{{ID: 7, Name: "Ann"}}}, v).Run(context.Background())
	require.True(t, errors.Is(err, repair.ErrFetch))
	require.Zero(t, v.Writes())
}

func TestRun_FetchTimeoutAborts(t *testing.T) {
	t.Parallel()

	v := &fakeVacations{records: []vacation.Request{{ID: 1, StaffID: 3, StaffName: "Ann"}}}
	e := repair.New(&fakeStaff{block: true}, v, repair.Config{FetchTimeout: 20 * time.Millisecond})

	_, err := e.Run(context.Background())
	require.True(t, errors.Is(err, repair.ErrFetch))
	require.Contains(t, err.Error(), "deadline exceeded")
	require.Zero(t, v.Writes())
}

func TestRun_CancellationSkipsRemaining(t *testing.T) {
	t.Parallel()

	s := &fakeStaff{records: []staff.Staff{{ID: 1, Name: "Ann"}}}
	v := &fakeVacations{records: []vacation.Request{
		{ID: 10, StaffID: 50, StaffName: "Ann"},
		{ID: 11, StaffID: 51, StaffName: "Ann"},
		{ID: 12, StaffID: 52, StaffName: "Ann"},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var seen []int64
	e := newEngine(s, v, repair.WithObserver(func(o repair.Outcome) {
		seen = append(seen, o.VacationID)
		cancel()
	}))

	res, err := e.Run(ctx)
	require.NoError(t, err)
	require.True(t, res.Interrupted)
	require.Equal(t, []int64{10}, seen)
	require.Equal(t, 1, res.Fixed)
	require.Equal(t, 2, res.Skipped)
	require.Equal(t, 1, res.Checked)
	require.Equal(t, 1, v.Writes())
	require.Contains(t, res.Summary(), "skipped 2")
}

func TestRun_IdempotentOnRandomCollections(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))
	names := []string{"Ann", "Bob", "Cy", "Dee", "Eve"}
	for round := range 25 {
		var roster []staff.Staff
		for i := range rng.Intn(6) {
			roster = append(roster, staff.Staff{
				ID:      int64(rng.Intn(20) + 1),
				Name:    names[rng.Intn(len(names))],
				BatchNo: fmt.Sprintf("B%d", i),
			})
		}
		var requests []vacation.Request
		for i := range rng.Intn(10) {
			requests = append(requests, vacation.Request{
				ID:        int64(i + 1),
				StaffID:   int64(rng.Intn(25)),
				StaffName: names[rng.Intn(len(names))],
			})
		}
		s := &fakeStaff{records: roster}
		v := &fakeVacations{records: requests}

		_, err := newEngine(s, v).Run(context.Background())
		require.NoError(t, err)
		before := v.Writes()

		second, err := newEngine(s, v).Run(context.Background())
		require.NoError(t, err)
		require.Zero(t, second.Corrections(), "round %d", round)
		require.Zero(t, second.Fixed, "round %d", round)
		require.Equal(t, before, v.Writes(), "round %d", round)
	}
}
