package codecs

import (
	"fmt"
	"io"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/hotelstaff/roster/modules/roster/domain/aggregates/staff"
)

const DefaultDocumentTitle = "Hotel Staff Roster"

type DocumentOptions struct {
	Title string
	// Total is the size of the full collection the records were selected
	// from. Zero means the records are the full collection.
	Total       int
	GeneratedAt time.Time
}

type docColumn struct {
	Header string
	Width  float64
	Align  string
	Value  func(i int, s staff.Staff) string
}

var documentColumns = []docColumn{
	{"SL", 12, "C", func(i int, _ staff.Staff) string { return fmt.Sprint(i + 1) }},
	{"Name", 52, "L", func(_ int, s staff.Staff) string { return s.Name }},
	{"Designation", 34, "L", func(_ int, s staff.Staff) string { return s.Designation }},
	{"Hotel", 36, "L", func(_ int, s staff.Staff) string { return s.Hotel }},
	{"Department", 30, "L", func(_ int, s staff.Staff) string { return s.Department }},
	{"Salary", 24, "R", func(_ int, s staff.Staff) string { return decimal.NewFromFloat(s.Salary).StringFixed(2) }},
	{"Visa Type", 24, "C", func(_ int, s staff.Staff) string { return string(s.VisaType) }},
	{"Status", 22, "C", func(_ int, s staff.Staff) string { return string(s.Status) }},
	{"Phone", 33, "L", func(_ int, s staff.Staff) string { return s.Phone }},
}

// Document renders a printable roster report. It is encode-only.
type Document struct {
	opts DocumentOptions
}

func NewDocument(opts DocumentOptions) *Document {
	if opts.Title == "" {
		opts.Title = DefaultDocumentTitle
	}
	return &Document{opts: opts}
}

func (*Document) ContentType() string { return mimePDF }
func (*Document) Extension() string   { return ".pdf" }

// SummaryLabel reports the filter state of a rendered selection.
func SummaryLabel(shown, total int) string {
	if total > shown {
		return fmt.Sprintf("Filtered Results: %d of %d", shown, total)
	}
	return fmt.Sprintf("Total Staff: %d", shown)
}

func (d *Document) Encode(w io.Writer, records []staff.Staff) error {
	generated := d.opts.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetCompression(false)
	pdf.SetTitle(d.opts.Title, true)
	pdf.SetCreationDate(generated)
	pdf.SetModificationDate(generated)
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	_, pageH := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	limit := pageH - bottom - 12

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 9, tr(d.opts.Title), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, "Generated: "+generated.Format("2006-01-02 15:04"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 7, SummaryLabel(len(records), d.opts.Total), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	d.header(pdf)
	pdf.SetFont("Helvetica", "", 8)
	for i, s := range records {
		if pdf.GetY() > limit {
			pdf.AddPage()
			d.header(pdf)
			pdf.SetFont("Helvetica", "", 8)
		}
		fill := i%2 == 1
		pdf.SetFillColor(243, 244, 246)
		for _, c := range documentColumns {
			pdf.CellFormat(c.Width, 6, tr(truncate(pdf, c.Value(i, s), c.Width-2)), "1", 0, c.Align, fill, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return errors.Wrap(err, "render pdf")
	}
	return nil
}

func (d *Document) header(pdf *fpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(31, 41, 55)
	pdf.SetTextColor(255, 255, 255)
	for _, c := range documentColumns {
		pdf.CellFormat(c.Width, 7, c.Header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetTextColor(0, 0, 0)
}

func truncate(pdf *fpdf.Fpdf, v string, width float64) string {
	if pdf.GetStringWidth(v) <= width {
		return v
	}
	r := []rune(v)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}
