package exchange

import (
	"fmt"

	"github.com/hotelstaff/roster/modules/roster/domain/aggregates/staff"
)

type Outcome string

const (
	OutcomeAccepted         Outcome = "accepted"
	OutcomeSkippedDuplicate Outcome = "skipped-duplicate"
	OutcomeSkippedInvalid   Outcome = "skipped-invalid"
)

const (
	ReasonMissingName = "missing name"
	ReasonDuplicate   = "duplicate"
	ReasonBatchTaken  = "batch number taken"
)

// Entry reports what happened to one input record, in source order.
type Entry struct {
	Index   int          `json:"index"`
	Outcome Outcome      `json:"outcome"`
	Reason  string       `json:"reason,omitempty"`
	Name    string       `json:"name,omitempty"`
	BatchNo string       `json:"batchNo,omitempty"`
	Key     string       `json:"key,omitempty"`
	ID      int64        `json:"id,omitempty"`
	Issues  []FieldIssue `json:"issues,omitempty"`
}

type Report struct {
	RunID            string  `json:"runId,omitempty"`
	Source           string  `json:"source,omitempty"`
	DryRun           bool    `json:"dryRun,omitempty"`
	Total            int     `json:"total"`
	Accepted         int     `json:"accepted"`
	SkippedDuplicate int     `json:"skippedDuplicate"`
	SkippedInvalid   int     `json:"skippedInvalid"`
	Summary          string  `json:"summary"`
	Entries          []Entry `json:"entries"`
}

func (r *Report) Skipped() int {
	return r.SkippedDuplicate + r.SkippedInvalid
}

// Empty reports a syntactically valid batch that held no records.
func (r *Report) Empty() bool {
	return r.Total == 0
}

func (r *Report) add(e Entry) {
	r.Total++
	switch e.Outcome {
	case OutcomeAccepted:
		r.Accepted++
	case OutcomeSkippedDuplicate:
		r.SkippedDuplicate++
	case OutcomeSkippedInvalid:
		r.SkippedInvalid++
	}
	r.Entries = append(r.Entries, e)
}

func (r *Report) summarize() {
	if r.Empty() {
		r.Summary = "zero records"
		return
	}
	r.Summary = fmt.Sprintf(
		"accepted %d of %d, skipped %d (duplicate %d, invalid %d)",
		r.Accepted, r.Total, r.Skipped(), r.SkippedDuplicate, r.SkippedInvalid,
	)
}

func entryFor(index int, s staff.Staff) Entry {
	return Entry{
		Index:   index,
		Name:    s.Name,
		BatchNo: s.BatchNo,
	}
}
