package codecs

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/go-faster/errors"

	"github.com/hotelstaff/roster/modules/roster/domain/aggregates/staff"
)

// Structured is the JSON codec: an array of objects keyed by canonical field names.
type Structured struct{}

func (Structured) ContentType() string { return mimeJSON }
func (Structured) Extension() string   { return ".json" }

func (Structured) Encode(w io.Writer, records []staff.Staff) error {
	if records == nil {
		records = []staff.Staff{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return errors.Wrap(err, "encode staff json")
	}
	return nil
}

func (Structured) Decode(r io.Reader) ([]map[string]any, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read json")
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrapf(ErrFormat, "malformed json: %v", err)
	}
	if dec.More() {
		return nil, errors.Wrap(ErrFormat, "trailing data after json array")
	}
	items, ok := doc.([]any)
	if !ok {
		return nil, errors.Wrap(ErrFormat, "expected a json array of objects")
	}
	out := make([]map[string]any, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, errors.Wrapf(ErrFormat, "element %d is not an object", i)
		}
		out = append(out, obj)
	}
	return out, nil
}
