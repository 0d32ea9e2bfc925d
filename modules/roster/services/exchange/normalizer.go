package exchange

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/hotelstaff/roster/modules/roster/domain/aggregates/staff"
)

const isoDate = "2006-01-02"

// Spreadsheet serial numbers outside this window are not treated as dates.
// Serials typed as text must be at least minTextSerial so a bare year is not
// read as a day in 1905.
const (
	minDateSerial = 1
	minTextSerial = 10000
	maxDateSerial = 2958465
)

var dateLayouts = []string{
	isoDate,
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"02/01/2006",
	"01/02/2006",
	"2-Jan-2006",
	"Jan 2, 2006",
}

// FieldIssue records a value that was replaced by its default during normalization.
type FieldIssue struct {
	Field  string `json:"field"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

// Normalize converts a loosely typed record into a canonical Staff record.
// Bad enum, date and salary values fall back to their defaults and are
// reported as issues; only a missing name rejects the record.
// The returned record has no id or sl assigned.
func Normalize(raw map[string]any) (staff.Staff, []FieldIssue, error) {
	var issues []FieldIssue
	note := func(field string, v any, reason string) {
		issues = append(issues, FieldIssue{Field: field, Value: display(v), Reason: reason})
	}

	name := text(raw["name"])
	if name == "" {
		return staff.Staff{}, nil, staff.ErrMissingName
	}

	out := staff.Staff{
		Name:        name,
		BatchNo:     text(raw["batchNo"]),
		Designation: text(raw["designation"]),
		Department:  text(raw["department"]),
		Hotel:       text(raw["hotel"]),
		CardNo:      text(raw["cardNo"]),
		Phone:       text(raw["phone"]),
		Photo:       text(raw["photo"]),
		Remark:      text(raw["remark"]),
	}

	visa, ok := staff.ParseVisaType(text(raw["visaType"]))
	if !ok {
		note("visaType", raw["visaType"], "unknown visa type")
	}
	out.VisaType = visa

	status, ok := staff.ParseStatus(text(raw["status"]))
	if !ok {
		note("status", raw["status"], "unknown status")
	}
	out.Status = status

	dates := []struct {
		field string
		dst   *string
	}{
		{"issueDate", &out.IssueDate},
		{"expireDate", &out.ExpireDate},
		{"hireDate", &out.HireDate},
		{"passportExpireDate", &out.PassportExpireDate},
	}
	for _, d := range dates {
		v, ok := date(raw[d.field])
		if !ok {
			note(d.field, raw[d.field], "malformed date")
		}
		*d.dst = v
	}

	salary, ok := amount(raw["salary"])
	if !ok {
		note("salary", raw["salary"], "invalid salary")
	}
	out.Salary = salary

	return out, issues, nil
}

func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return ""
	}
}

func display(v any) string {
	if s := text(v); s != "" {
		return s
	}
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// date returns an ISO date, or "" with ok=false when v is present but unreadable.
func date(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", true
	case float64:
		return serialDate(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return "", false
		}
		return serialDate(f)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return "", true
		}
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed.Format(isoDate), true
			}
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && f >= minTextSerial {
			return serialDate(f)
		}
		return "", false
	default:
		return "", false
	}
}

func serialDate(f float64) (string, bool) {
	if f < minDateSerial || f > maxDateSerial {
		return "", false
	}
	parsed, err := excelize.ExcelDateToTime(f, false)
	if err != nil {
		return "", false
	}
	return parsed.Format(isoDate), true
}

// amount returns a non-negative salary, or 0 with ok=false when v is unusable.
func amount(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case nil:
		return 0, true
	case float64:
		f = t
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		s := strings.NewReplacer(",", "", " ", "").Replace(strings.TrimSpace(t))
		if s == "" {
			return 0, true
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}
	return f, true
}
