package exchange

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hotelstaff/roster/modules/roster/domain/aggregates/staff"
)

func TestNormalize_Defaults(t *testing.T) {
	t.Parallel()

	got, issues, err := Normalize(map[string]any{"name": "  Ann  "})
	require.NoError(t, err)
	require.Empty(t, issues)
	require.Equal(t, staff.Staff{Name: "Ann", Status: staff.StatusWorking}, got)
}

func TestNormalize_MissingName(t *testing.T) {
	t.Parallel()

	for _, raw := range []map[string]any{
		{},
		{"name": ""},
		{"name": "   "},
		{"name": nil, "department": "Kitchen"},
		{"name": true},
	} {
		_, _, err := Normalize(raw)
		require.ErrorIs(t, err, staff.ErrMissingName, "%v", raw)
	}
}

func TestNormalize_BadEnumsFallBackWithoutDroppingRecord(t *testing.T) {
	t.Parallel()

	got, issues, err := Normalize(map[string]any{
		"name":     "Bob",
		"visaType": "Tourist",
		"status":   "Retired",
	})
	require.NoError(t, err)
	require.Equal(t, staff.VisaUnset, got.VisaType)
	require.Equal(t, staff.StatusWorking, got.Status)
	require.Len(t, issues, 2)
	require.Equal(t, "visaType", issues[0].Field)
	require.Equal(t, "Tourist", issues[0].Value)
	require.Equal(t, "status", issues[1].Field)
}

func TestNormalize_EnumCaseInsensitive(t *testing.T) {
	t.Parallel()

	got, issues, err := Normalize(map[string]any{"name": "Bob", "visaType": "visit", "status": "jobless"})
	require.NoError(t, err)
	require.Empty(t, issues)
	require.Equal(t, staff.VisaVisit, got.VisaType)
	require.Equal(t, staff.StatusJobless, got.Status)
}

func TestNormalize_TypeCoercion(t *testing.T) {
	t.Parallel()

	got, issues, err := Normalize(map[string]any{
		"name":     "Cy",
		"phone":    float64(971501234567),
		"cardNo":   json.Number("1042"),
		"salary":   "2,500.50",
		"hireDate": "2024-03-05T10:00:00Z",
		"remark":   map[string]any{"x": 1},
	})
	require.NoError(t, err)
	require.Empty(t, issues)
	require.Equal(t, "971501234567", got.Phone)
	require.Equal(t, "1042", got.CardNo)
	require.InDelta(t, 2500.50, got.Salary, 0.0001)
	require.Equal(t, "2024-03-05", got.HireDate)
	require.Equal(t, "", got.Remark)
}

func TestNormalize_InvalidSalaryAndDates(t *testing.T) {
	t.Parallel()

	got, issues, err := Normalize(map[string]any{
		"name":       "Dee",
		"salary":     -10.0,
		"issueDate":  "not a date",
		"expireDate": "2024",
	})
	require.NoError(t, err)
	require.Zero(t, got.Salary)
	require.Empty(t, got.IssueDate)
	require.Empty(t, got.ExpireDate)
	fields := make([]string, 0, len(issues))
	for _, iss := range issues {
		fields = append(fields, iss.Field)
	}
	require.ElementsMatch(t, []string{"salary", "issueDate", "expireDate"}, fields)
}

func TestNormalize_SpreadsheetSerialDate(t *testing.T) {
	t.Parallel()

	got, issues, err := Normalize(map[string]any{"name": "Eve", "hireDate": float64(45292)})
	require.NoError(t, err)
	require.Empty(t, issues)
	require.Equal(t, "2024-01-01", got.HireDate)
}
