package services

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/hotelstaff/roster/modules/roster/domain/aggregates/staff"
)

// FilterStaff keeps records matching every set criterion, in stored order.
// Query is a fuzzy, case-insensitive match against name, batch number and
// designation; the other criteria are exact but case-insensitive.
func FilterStaff(records []staff.Staff, params *staff.FindParams) []staff.Staff {
	if params.IsZero() {
		return records
	}
	q := strings.TrimSpace(params.Query)
	out := make([]staff.Staff, 0, len(records))
	for _, s := range records {
		if q != "" && !matchesQuery(q, s) {
			continue
		}
		if !sameFold(params.Hotel, s.Hotel) || !sameFold(params.Department, s.Department) {
			continue
		}
		if params.Status != "" && !strings.EqualFold(string(params.Status), string(s.Status)) {
			continue
		}
		if params.VisaType != "" && !strings.EqualFold(string(params.VisaType), string(s.VisaType)) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func matchesQuery(q string, s staff.Staff) bool {
	for _, field := range []string{s.Name, s.BatchNo, s.Designation} {
		if field != "" && fuzzy.MatchNormalizedFold(q, field) {
			return true
		}
	}
	return false
}

func sameFold(want, got string) bool {
	want = strings.TrimSpace(want)
	return want == "" || strings.EqualFold(want, strings.TrimSpace(got))
}
