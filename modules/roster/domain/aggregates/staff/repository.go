package staff

import "context"

type FindParams struct {
	Query      string
	Hotel      string
	Department string
	Status     Status
	VisaType   VisaType
}

func (p *FindParams) IsZero() bool {
	return p == nil || (p.Query == "" && p.Hotel == "" && p.Department == "" && p.Status == "" && p.VisaType == "")
}

// Repository stores staff records in their stored order.
type Repository interface {
	List(ctx context.Context) ([]Staff, error)
	Get(ctx context.Context, id int64) (Staff, error)
	Insert(ctx context.Context, s Staff) error
	InsertMany(ctx context.Context, records []Staff) error
	Replace(ctx context.Context, s Staff) error
	Delete(ctx context.Context, id int64) error
}
