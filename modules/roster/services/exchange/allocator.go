package exchange

import "github.com/hotelstaff/roster/modules/roster/domain/aggregates/staff"

// Allocation holds fresh identifiers for n records.
type Allocation struct {
	IDs []int64
	SLs []int64
}

// Allocate returns n ids and n serials, each a contiguous run starting one above
// the current maximum in existing. Callers must hold the collection's write lock.
func Allocate(existing []staff.Staff, n int) Allocation {
	if n <= 0 {
		return Allocation{}
	}
	maxID, maxSL := staff.MaxIDs(existing)
	a := Allocation{
		IDs: make([]int64, n),
		SLs: make([]int64, n),
	}
	for i := 0; i < n; i++ {
		a.IDs[i] = maxID + int64(i) + 1
		a.SLs[i] = maxSL + int64(i) + 1
	}
	return a
}

// Assign writes the allocation into records in order.
func (a Allocation) Assign(records []staff.Staff) {
	for i := range records {
		if i >= len(a.IDs) {
			return
		}
		records[i].ID = a.IDs[i]
		records[i].SL = a.SLs[i]
	}
}
