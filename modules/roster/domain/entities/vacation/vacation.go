package vacation

import (
	"context"
	"encoding/json"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/go-faster/errors"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

var (
	ErrNotFound     = errors.New("vacation request not found")
	ErrImmutableID  = errors.New("vacation request id is immutable")
	ErrInvalidPatch = errors.New("invalid vacation request patch")
)

// Request references a staff member by StaffID and carries a denormalized
// StaffName/StaffBatch snapshot taken when the request was filed.
type Request struct {
	ID         int64  `json:"id"`
	StaffID    int64  `json:"staffId"`
	StaffName  string `json:"staffName"`
	StaffBatch string `json:"staffBatch"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	Reason     string `json:"reason"`
	Status     Status `json:"status"`
}

// Patch is an RFC 7396 merge patch document against Request.
type Patch []byte

// StaffRefPatch rewrites the staff reference and its snapshot.
func StaffRefPatch(staffID int64, name, batch string) Patch {
	b, _ := json.Marshal(map[string]any{
		"staffId":    staffID,
		"staffName":  name,
		"staffBatch": batch,
	})
	return Patch(b)
}

func (p Patch) Apply(r Request) (Request, error) {
	original, err := json.Marshal(r)
	if err != nil {
		return Request{}, errors.Wrap(err, "marshal vacation request")
	}
	merged, err := jsonpatch.MergePatch(original, p)
	if err != nil {
		return Request{}, errors.Wrap(ErrInvalidPatch, err.Error())
	}
	var out Request
	if err := json.Unmarshal(merged, &out); err != nil {
		return Request{}, errors.Wrap(ErrInvalidPatch, err.Error())
	}
	if out.ID != r.ID {
		return Request{}, ErrImmutableID
	}
	if out.Status == "" {
		out.Status = StatusPending
	}
	return out, nil
}

type Repository interface {
	List(ctx context.Context) ([]Request, error)
	Get(ctx context.Context, id int64) (Request, error)
	Insert(ctx context.Context, r Request) error
	Replace(ctx context.Context, r Request) error
	Delete(ctx context.Context, id int64) error
}
