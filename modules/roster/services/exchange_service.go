package services

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hotelstaff/roster/modules/roster/domain/aggregates/staff"
	"github.com/hotelstaff/roster/modules/roster/services/codecs"
	"github.com/hotelstaff/roster/modules/roster/services/exchange"
)

// ImportRequest describes one uploaded roster file.
type ImportRequest struct {
	Data     []byte
	Filename string
	// Format is optional; when empty it is detected from the content.
	Format codecs.Format
	DryRun bool
}

// Export is an encoded selection ready to be written out.
type Export struct {
	Filename    string
	ContentType string
	Body        []byte
	Count       int
	Total       int
}

// ExchangeService moves staff records between the collection and the
// supported file formats.
type ExchangeService struct {
	staff *StaffService
	log   *logrus.Logger
	now   func() time.Time
}

func NewExchangeService(staffService *StaffService, log *logrus.Logger) *ExchangeService {
	return &ExchangeService{staff: staffService, log: log, now: time.Now}
}

// Import decodes the upload and merges it into the collection. A format error
// rejects the whole file before anything is written.
func (s *ExchangeService) Import(ctx context.Context, req ImportRequest) (*exchange.Report, error) {
	format := req.Format
	if format == "" {
		detected, err := codecs.Detect(req.Data, req.Filename)
		if err != nil {
			return nil, err
		}
		format = detected
	}
	dec, err := codecs.DecoderFor(format)
	if err != nil {
		return nil, err
	}
	raws, err := dec.Decode(bytes.NewReader(req.Data))
	if err != nil {
		return nil, err
	}

	batch, err := s.staff.Import(ctx, raws, ImportOptions{Options: exchange.DefaultOptions(), DryRun: req.DryRun})
	if err != nil {
		return nil, err
	}
	report := batch.Report
	report.RunID = uuid.NewString()
	report.Source = string(format)
	if req.Filename != "" {
		report.Source = req.Filename
	}
	observeImport(&report)

	s.logger().WithFields(logrus.Fields{
		"run_id":            report.RunID,
		"source":            report.Source,
		"dry_run":           report.DryRun,
		"total":             report.Total,
		"accepted":          report.Accepted,
		"skipped_duplicate": report.SkippedDuplicate,
		"skipped_invalid":   report.SkippedInvalid,
	}).Info("roster import finished")
	return &report, nil
}

// Export encodes the selection matching params. The document format labels
// the output as filtered whenever params narrowed the collection.
func (s *ExchangeService) Export(ctx context.Context, format codecs.Format, params *staff.FindParams) (*Export, error) {
	records, total, err := s.staff.Find(ctx, params)
	if err != nil {
		return nil, err
	}
	now := s.now()
	enc, err := codecs.EncoderFor(format, codecs.DocumentOptions{Total: total, GeneratedAt: now})
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := enc.Encode(&buf, records); err != nil {
		return nil, errors.Wrapf(err, "encode %s export", format)
	}
	return &Export{
		Filename:    "staff-" + now.Format("20060102-150405") + enc.Extension(),
		ContentType: enc.ContentType(),
		Body:        buf.Bytes(),
		Count:       len(records),
		Total:       total,
	}, nil
}

// Normalize cleans a roster file offline: decode, normalize, drop duplicates,
// and write the accepted records as structured JSON.
func Normalize(data []byte, filename string, out io.Writer) (*exchange.Report, error) {
	format, err := codecs.Detect(data, filename)
	if err != nil {
		return nil, err
	}
	dec, err := codecs.DecoderFor(format)
	if err != nil {
		return nil, err
	}
	raws, err := dec.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	batch := exchange.Merge(nil, raws, exchange.Options{UniqueBatch: true})
	if err := (codecs.Structured{}).Encode(out, batch.Records); err != nil {
		return nil, err
	}
	report := batch.Report
	report.Source = filename
	return &report, nil
}

func (s *ExchangeService) logger() *logrus.Logger {
	if s.log == nil {
		return logrus.StandardLogger()
	}
	return s.log
}
