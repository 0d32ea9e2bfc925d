package codecs

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-faster/errors"

	"github.com/hotelstaff/roster/modules/roster/domain/aggregates/staff"
)

var (
	// ErrFormat marks a container that is not an array of records. It is fatal
	// to the whole operation.
	ErrFormat            = errors.New("format error")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrEncodeOnly        = errors.New("format is encode-only")
)

type Format string

const (
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

const (
	mimeJSON = "application/json"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimePDF  = "application/pdf"
)

type Encoder interface {
	Encode(w io.Writer, records []staff.Staff) error
	ContentType() string
	Extension() string
}

// Decoder turns an external representation into loosely typed records that
// still have to pass through the Normalizer.
type Decoder interface {
	Decode(r io.Reader) ([]map[string]any, error)
}

func ParseFormat(v string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(v), "."))) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatXLSX, "excel", "spreadsheet":
		return FormatXLSX, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", errors.Wrapf(ErrUnsupportedFormat, "%q", v)
	}
}

func DecoderFor(f Format) (Decoder, error) {
	switch f {
	case FormatJSON:
		return Structured{}, nil
	case FormatXLSX:
		return Tabular{}, nil
	case FormatPDF:
		return nil, ErrEncodeOnly
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%q", f)
	}
}

func EncoderFor(f Format, doc DocumentOptions) (Encoder, error) {
	switch f {
	case FormatJSON:
		return Structured{}, nil
	case FormatXLSX:
		return Tabular{}, nil
	case FormatPDF:
		return NewDocument(doc), nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%q", f)
	}
}

// Detect sniffs the upload content and falls back to the file extension.
func Detect(data []byte, filename string) (Format, error) {
	m := mimetype.Detect(data)
	switch {
	case m.Is(mimeXLSX):
		return FormatXLSX, nil
	case m.Is(mimeJSON):
		return FormatJSON, nil
	case m.Is(mimePDF):
		return FormatPDF, nil
	}
	if ext := filepath.Ext(filename); ext != "" {
		return ParseFormat(ext)
	}
	return "", errors.Wrapf(ErrUnsupportedFormat, "detected %s", m.String())
}
