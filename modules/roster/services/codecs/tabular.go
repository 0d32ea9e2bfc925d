package codecs

import (
	"io"
	"slices"
	"strings"

	"github.com/go-faster/errors"
	"github.com/xuri/excelize/v2"

	"github.com/hotelstaff/roster/modules/roster/domain/aggregates/staff"
)

const tabularSheet = "Staff"

type column struct {
	Header string
	Field  string
	Width  float64
}

// Columns is the fixed spreadsheet header order.
var Columns = []column{
	{"SL", "sl", 6},
	{"Batch No", "batchNo", 12},
	{"Name", "name", 26},
	{"Designation", "designation", 18},
	{"Visa Type", "visaType", 12},
	{"Card No", "cardNo", 14},
	{"Issue Date", "issueDate", 12},
	{"Expire Date", "expireDate", 12},
	{"Phone", "phone", 16},
	{"Status", "status", 10},
	{"Photo", "photo", 24},
	{"Remark", "remark", 24},
	{"Hotel", "hotel", 18},
	{"Department", "department", 16},
	{"Salary", "salary", 10},
	{"Hire Date", "hireDate", 12},
}

// Decode-only columns, accepted when present.
var extraColumns = []column{
	{"Passport Expire Date", "passportExpireDate", 0},
}

// Tabular is the spreadsheet codec. Only the first sheet is read.
type Tabular struct{}

func (Tabular) ContentType() string { return mimeXLSX }
func (Tabular) Extension() string   { return ".xlsx" }

func (Tabular) Encode(w io.Writer, records []staff.Staff) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), tabularSheet); err != nil {
		return errors.Wrap(err, "name sheet")
	}

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c.Header
	}
	if err := f.SetSheetRow(tabularSheet, "A1", &header); err != nil {
		return errors.Wrap(err, "write header")
	}

	for i, s := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			s.SL, s.BatchNo, s.Name, s.Designation, string(s.VisaType), s.CardNo,
			s.IssueDate, s.ExpireDate, s.Phone, string(s.Status), s.Photo, s.Remark,
			s.Hotel, s.Department, s.Salary, s.HireDate,
		}
		if err := f.SetSheetRow(tabularSheet, cell, &row); err != nil {
			return errors.Wrapf(err, "write row %d", i+2)
		}
	}

	for i, c := range Columns {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		_ = f.SetColWidth(tabularSheet, col, col, c.Width)
	}
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#1F2937"}, Pattern: 1},
	})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(Columns), 1)
		_ = f.SetCellStyle(tabularSheet, "A1", last, style)
	}
	_ = f.SetPanes(tabularSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "write xlsx")
	}
	return nil
}

func (Tabular) Decode(r io.Reader) ([]map[string]any, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrapf(ErrFormat, "unreadable spreadsheet: %v", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.Wrap(ErrFormat, "no worksheet found")
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.Wrapf(ErrFormat, "read sheet %q: %v", sheet, err)
	}
	if len(rows) == 0 {
		return nil, errors.Wrap(ErrFormat, "missing header row")
	}

	idx := resolveColumns(rows[0])
	if len(idx) == 0 {
		return nil, errors.Wrap(ErrFormat, "header row has no known columns")
	}

	out := make([]map[string]any, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := map[string]any{}
		for field, cols := range idx {
			if v := firstValue(row, cols); v != "" {
				rec[field] = v
			}
		}
		if len(rec) == 0 {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// resolveColumns maps each canonical field to candidate column indexes:
// the column titled with the header label first, then the one titled with
// the field name.
func resolveColumns(header []string) map[string][]int {
	labels := map[string]int{}
	for i, h := range header {
		key := headerKey(h)
		if key == "" {
			continue
		}
		if _, dup := labels[key]; !dup {
			labels[key] = i
		}
	}

	idx := map[string][]int{}
	for _, c := range append(append([]column{}, Columns...), extraColumns...) {
		var cols []int
		if i, ok := labels[headerKey(c.Header)]; ok {
			cols = append(cols, i)
		}
		if i, ok := labels[headerKey(c.Field)]; ok && !slices.Contains(cols, i) {
			cols = append(cols, i)
		}
		if len(cols) > 0 {
			idx[c.Field] = cols
		}
	}
	return idx
}

func headerKey(h string) string {
	return strings.ToLower(strings.Join(strings.Fields(h), " "))
}

func firstValue(row []string, cols []int) string {
	for _, i := range cols {
		if i < len(row) {
			if v := strings.TrimSpace(row[i]); v != "" {
				return v
			}
		}
	}
	return ""
}
