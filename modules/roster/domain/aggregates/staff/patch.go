package staff

import (
	"encoding/json"
	"strings"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/go-faster/errors"
)

// Patch is an RFC 7396 merge patch document against the canonical JSON shape.
type Patch []byte

// NewPatch builds a merge patch from canonical field names.
func NewPatch(fields map[string]any) (Patch, error) {
	b, err := json.Marshal(fields)
	if err != nil {
		return nil, errors.Wrap(err, "marshal patch")
	}
	return Patch(b), nil
}

// Apply merges the patch into s. The id may be repeated but never changed.
func (p Patch) Apply(s Staff) (Staff, error) {
	original, err := json.Marshal(s)
	if err != nil {
		return Staff{}, errors.Wrap(err, "marshal staff")
	}
	merged, err := jsonpatch.MergePatch(original, p)
	if err != nil {
		return Staff{}, errors.Wrap(ErrInvalidPatch, err.Error())
	}
	var out Staff
	if err := json.Unmarshal(merged, &out); err != nil {
		return Staff{}, errors.Wrap(ErrInvalidPatch, err.Error())
	}
	if out.ID != s.ID {
		return Staff{}, ErrImmutableID
	}
	if err := out.Validate(); err != nil {
		return Staff{}, err
	}
	return out, nil
}

// Validate trims the text fields and checks a record against the same rules
// CreateDTO applies, so stored records are always in canonical form.
func (s *Staff) Validate() error {
	for _, f := range []*string{
		&s.Name, &s.BatchNo, &s.Designation, &s.Department, &s.Hotel,
		&s.CardNo, &s.Phone, &s.Photo, &s.Remark,
		&s.IssueDate, &s.ExpireDate, &s.HireDate, &s.PassportExpireDate,
	} {
		*f = strings.TrimSpace(*f)
	}
	if s.Name == "" {
		return ErrMissingName
	}
	if s.Status == "" {
		s.Status = DefaultStatus
	}
	if !s.Status.IsValid() {
		return errors.Wrapf(ErrInvalidPatch, "status %q", s.Status)
	}
	if !s.VisaType.IsValid() {
		return errors.Wrapf(ErrInvalidPatch, "visaType %q", s.VisaType)
	}
	if s.Salary < 0 {
		return errors.Wrap(ErrInvalidPatch, "salary must not be negative")
	}
	dates := []struct {
		name  string
		value string
	}{
		{"issueDate", s.IssueDate},
		{"expireDate", s.ExpireDate},
		{"hireDate", s.HireDate},
		{"passportExpireDate", s.PassportExpireDate},
	}
	for _, d := range dates {
		if err := validate.Var(d.value, "omitempty,datetime=2006-01-02"); err != nil {
			return errors.Wrapf(ErrInvalidPatch, "%s %q must be a YYYY-MM-DD date", d.name, d.value)
		}
	}
	if err := validate.Var(s.Photo, "omitempty,uri"); err != nil {
		return errors.Wrapf(ErrInvalidPatch, "photo %q must be a URI", s.Photo)
	}
	return nil
}
