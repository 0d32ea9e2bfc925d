package exchange

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hotelstaff/roster/modules/roster/domain/aggregates/staff"
)

func TestAllocate_EmptyCollectionStartsAtOne(t *testing.T) {
	t.Parallel()

	a := Allocate(nil, 3)
	require.Equal(t, []int64{1, 2, 3}, a.IDs)
	require.Equal(t, []int64{1, 2, 3}, a.SLs)
}

func TestAllocate_Zero(t *testing.T) {
	t.Parallel()

	a := Allocate([]staff.Staff{{ID: 3}}, 0)
	require.Empty(t, a.IDs)
	require.Empty(t, a.SLs)
}

func TestAllocate_Monotonicity(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 50; round++ {
		existing := make([]staff.Staff, rng.Intn(20))
		var maxID int64
		for i := range existing {
			existing[i] = staff.Staff{ID: rng.Int63n(1000) + 1, SL: rng.Int63n(1000) + 1}
			if existing[i].ID > maxID {
				maxID = existing[i].ID
			}
		}
		n := rng.Intn(10) + 1
		a := Allocate(existing, n)
		require.Len(t, a.IDs, n)

		seen := map[int64]struct{}{}
		for _, id := range a.IDs {
			require.Greater(t, id, maxID)
			_, dup := seen[id]
			require.False(t, dup)
			seen[id] = struct{}{}
		}
	}
}

func TestAllocation_Assign(t *testing.T) {
	t.Parallel()

	records := []staff.Staff{{Name: "a"}, {Name: "b"}}
	Allocate([]staff.Staff{{ID: 5, SL: 7}}, 2).Assign(records)
	require.Equal(t, int64(6), records[0].ID)
	require.Equal(t, int64(8), records[0].SL)
	require.Equal(t, int64(7), records[1].ID)
	require.Equal(t, int64(9), records[1].SL)
}
