package repair

import (
	"fmt"

	"github.com/wI2L/jsondiff"
)

type Status string

const (
	StatusOK            Status = "ok"
	StatusFixed         Status = "fixed"
	StatusUnrecoverable Status = "unrecoverable"
	StatusFailed        Status = "failed"
	StatusSkipped       Status = "skipped"
)

// Outcome is the decision for one vacation request.
type Outcome struct {
	VacationID int64          `json:"vacationId"`
	Status     Status         `json:"status"`
	StaffID    int64          `json:"staffId"`
	NewStaffID int64          `json:"newStaffId,omitempty"`
	StaffName  string         `json:"staffName"`
	Candidates int            `json:"candidates,omitempty"`
	Error      string         `json:"error,omitempty"`
	Changes    jsondiff.Patch `json:"changes,omitempty"`
}

func (o Outcome) String() string {
	switch o.Status {
	case StatusFixed:
		return fmt.Sprintf("vacation %d: fixed staffId %d -> %d (%q)", o.VacationID, o.StaffID, o.NewStaffID, o.StaffName)
	case StatusFailed:
		return fmt.Sprintf("vacation %d: failed to relink %q: %s", o.VacationID, o.StaffName, o.Error)
	case StatusUnrecoverable:
		return fmt.Sprintf("vacation %d: unrecoverable, no staff named %q", o.VacationID, o.StaffName)
	default:
		return fmt.Sprintf("vacation %d: %s", o.VacationID, o.Status)
	}
}

type Result struct {
	Checked       int       `json:"checked"`
	OK            int       `json:"ok"`
	Fixed         int       `json:"fixed"`
	Unrecoverable int       `json:"unrecoverable"`
	Failed        int       `json:"failed"`
	Skipped       int       `json:"skipped"`
	Interrupted   bool      `json:"interrupted,omitempty"`
	Outcomes      []Outcome `json:"outcomes"`
}

// Corrections counts the records that needed a new staff reference, whether
// or not storing it succeeded. Zero means the collection was already
// consistent.
func (r *Result) Corrections() int {
	return r.Fixed + r.Failed
}

// Ambiguous lists fixed outcomes that were picked among several namesakes.
func (r *Result) Ambiguous() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Candidates > 1 {
			out = append(out, o)
		}
	}
	return out
}

func (r *Result) Summary() string {
	s := fmt.Sprintf(
		"checked %d: ok %d, fixed %d, unrecoverable %d, failed %d",
		r.Checked, r.OK, r.Fixed, r.Unrecoverable, r.Failed,
	)
	if r.Skipped > 0 {
		s += fmt.Sprintf(", skipped %d", r.Skipped)
	}
	return s
}

func (r *Result) add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	switch o.Status {
	case StatusOK:
		r.OK++
	case StatusFixed:
		r.Fixed++
	case StatusUnrecoverable:
		r.Unrecoverable++
	case StatusFailed:
		r.Failed++
	case StatusSkipped:
		r.Skipped++
		return
	}
	r.Checked++
}
