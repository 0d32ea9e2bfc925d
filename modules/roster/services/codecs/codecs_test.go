package codecs_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/hotelstaff/roster/modules/roster/domain/aggregates/staff"
	"github.com/hotelstaff/roster/modules/roster/services/codecs"
	"github.com/hotelstaff/roster/modules/roster/services/exchange"
)

func sampleRoster() []staff.Staff {
	return []staff.Staff{
		{
			ID: 1, SL: 1, BatchNo: "B-100", Name: "Ann Rivera", Designation: "Chef",
			Department: "Kitchen", Hotel: "Marina", CardNo: "C1", Phone: "971501234567",
			VisaType: staff.VisaEmployment, Status: staff.StatusWorking,
			IssueDate: "2023-01-10", ExpireDate: "2025-01-09", HireDate: "2022-12-01", Salary: 4200.5,
		},
		{
			ID: 2, SL: 2, Name: "Bob Chen", Designation: "Porter", Hotel: "Marina",
			VisaType: staff.VisaVisit, Status: staff.StatusJobless, Salary: 0,
		},
	}
}

func TestStructured_RoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, codecs.Structured{}.Encode(&buf, sampleRoster()))

	raws, err := codecs.Structured{}.Decode(&buf)
	require.NoError(t, err)
	require.Len(t, raws, 2)

	batch := exchange.Screen(nil, raws, exchange.Options{})
	require.Len(t, batch.Records, 2)
	for i, want := range sampleRoster() {
		got := batch.Records[i]
		want.ID, want.SL = 0, 0
		require.Equal(t, want, got)
	}
}

func TestStructured_EmptyArray(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, codecs.Structured{}.Encode(&buf, nil))
	require.Equal(t, "[]", strings.TrimSpace(buf.String()))

	raws, err := codecs.Structured{}.Decode(strings.NewReader("[]"))
	require.NoError(t, err)
	require.Empty(t, raws)
}

func TestStructured_FormatErrors(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"object":     `{"name":"Ann"}`,
		"scalar":     `42`,
		"non-object": `[{"name":"Ann"}, "Bob"]`,
		"malformed":  `[{"name":`,
		"trailing":   `[] []`,
		"not-json":   `name,batchNo`,
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := codecs.Structured{}.Decode(strings.NewReader(input))
			require.Error(t, err)
			require.True(t, errors.Is(err, codecs.ErrFormat))
		})
	}
}

func TestTabular_RoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, codecs.Tabular{}.Encode(&buf, sampleRoster()))

	raws, err := codecs.Tabular{}.Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, raws, 2)

	batch := exchange.Screen(nil, raws, exchange.Options{})
	require.Len(t, batch.Records, 2)
	for i, want := range sampleRoster() {
		want.ID, want.SL = 0, 0
		require.Equal(t, want, batch.Records[i])
	}
}

func TestTabular_HeaderOrder(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, codecs.Tabular{}.Encode(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, []string{
		"SL", "Batch No", "Name", "Designation", "Visa Type", "Card No", "Issue Date",
		"Expire Date", "Phone", "Status", "Photo", "Remark", "Hotel", "Department",
		"Salary", "Hire Date",
	}, rows[0])
}

func workbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestTabular_DecodeAcceptsFieldNameHeaders(t *testing.T) {
	t.Parallel()

	buf := workbook(t, [][]any{
		{"name", " BATCH  no ", "salary", "hireDate", "Unrelated"},
		{"Ann", "B1", "1,200", 45292, "x"},
		{},
		{"Bob", nil, nil, nil, nil},
	})

	raws, err := codecs.Tabular{}.Decode(buf)
	require.NoError(t, err)
	require.Len(t, raws, 2)

	batch := exchange.Screen(nil, raws, exchange.Options{})
	require.Len(t, batch.Records, 2)
	require.Equal(t, "Ann", batch.Records[0].Name)
	require.Equal(t, "B1", batch.Records[0].BatchNo)
	require.InDelta(t, 1200.0, batch.Records[0].Salary, 0.001)
	require.Equal(t, "2024-01-01", batch.Records[0].HireDate)
	require.Equal(t, "Bob", batch.Records[1].Name)
	require.Empty(t, batch.Records[1].BatchNo)
}

func TestTabular_LabelWinsOverFieldName(t *testing.T) {
	t.Parallel()

	buf := workbook(t, [][]any{
		{"batchNo", "Batch No"},
		{"from-field", "from-label"},
		{"only-field", ""},
	})

	raws, err := codecs.Tabular{}.Decode(buf)
	require.NoError(t, err)
	require.Len(t, raws, 2)
	require.Equal(t, "from-label", raws[0]["batchNo"])
	require.Equal(t, "only-field", raws[1]["batchNo"])
}

func TestTabular_FormatErrors(t *testing.T) {
	t.Parallel()

	_, err := codecs.Tabular{}.Decode(strings.NewReader("not a workbook"))
	require.True(t, errors.Is(err, codecs.ErrFormat))

	_, err = codecs.Tabular{}.Decode(workbook(t, nil))
	require.True(t, errors.Is(err, codecs.ErrFormat))

	_, err = codecs.Tabular{}.Decode(workbook(t, [][]any{{"Foo", "Bar"}, {"1", "2"}}))
	require.True(t, errors.Is(err, codecs.ErrFormat))
}

func TestSummaryLabel(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Filtered Results: 3 of 10", codecs.SummaryLabel(3, 10))
	require.Equal(t, "Total Staff: 10", codecs.SummaryLabel(10, 10))
	require.Equal(t, "Total Staff: 4", codecs.SummaryLabel(4, 0))
	require.Equal(t, "Total Staff: 0", codecs.SummaryLabel(0, 0))
}

func TestDocument_Labels(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	all := make([]staff.Staff, 10)
	for i := range all {
		all[i] = staff.Staff{ID: int64(i + 1), SL: int64(i + 1), Name: "Worker", Status: staff.StatusWorking}
	}

	var filtered bytes.Buffer
	doc := codecs.NewDocument(codecs.DocumentOptions{Total: 10, GeneratedAt: at})
	require.NoError(t, doc.Encode(&filtered, all[:3]))
	require.True(t, bytes.HasPrefix(filtered.Bytes(), []byte("%PDF")))
	require.Contains(t, filtered.String(), "Filtered Results: 3 of 10")
	require.Contains(t, filtered.String(), "Hotel Staff Roster")
	require.Contains(t, filtered.String(), "Generated: 2024-05-01 09:30")

	var full bytes.Buffer
	doc = codecs.NewDocument(codecs.DocumentOptions{Total: 10, GeneratedAt: at})
	require.NoError(t, doc.Encode(&full, all))
	require.Contains(t, full.String(), "Total Staff: 10")
	require.NotContains(t, full.String(), "Filtered Results")
}

func TestDocument_ManyPages(t *testing.T) {
	t.Parallel()

	records := make([]staff.Staff, 120)
	for i := range records {
		records[i] = staff.Staff{Name: strings.Repeat("Long Name ", 10), Hotel: "Café Royal"}
	}
	var buf bytes.Buffer
	require.NoError(t, codecs.NewDocument(codecs.DocumentOptions{}).Encode(&buf, records))
	require.Contains(t, buf.String(), "Total Staff: 120")
}

func TestFormatSelection(t *testing.T) {
	t.Parallel()

	f, err := codecs.ParseFormat(" XLSX ")
	require.NoError(t, err)
	require.Equal(t, codecs.FormatXLSX, f)

	_, err = codecs.ParseFormat("csv")
	require.True(t, errors.Is(err, codecs.ErrUnsupportedFormat))

	_, err = codecs.DecoderFor(codecs.FormatPDF)
	require.True(t, errors.Is(err, codecs.ErrEncodeOnly))

	enc, err := codecs.EncoderFor(codecs.FormatPDF, codecs.DocumentOptions{})
	require.NoError(t, err)
	require.Equal(t, ".pdf", enc.Extension())
}

func TestDetect(t *testing.T) {
	t.Parallel()

	var xlsx bytes.Buffer
	require.NoError(t, codecs.Tabular{}.Encode(&xlsx, sampleRoster()))
	f, err := codecs.Detect(xlsx.Bytes(), "")
	require.NoError(t, err)
	require.Equal(t, codecs.FormatXLSX, f)

	f, err = codecs.Detect([]byte(`[{"name":"Ann"}]`), "upload.bin")
	require.NoError(t, err)
	require.Equal(t, codecs.FormatJSON, f)

	f, err = codecs.Detect([]byte(`[{"name":`), "roster.json")
	require.NoError(t, err)
	require.Equal(t, codecs.FormatJSON, f)

	_, err = codecs.Detect([]byte("hello"), "")
	require.True(t, errors.Is(err, codecs.ErrUnsupportedFormat))
}
