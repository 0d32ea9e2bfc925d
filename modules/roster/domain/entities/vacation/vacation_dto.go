package vacation

import (
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type CreateDTO struct {
	StaffID    int64  `json:"staffId" form:"staffId" validate:"required,gt=0"`
	StaffName  string `json:"staffName" form:"staffName" validate:"required"`
	StaffBatch string `json:"staffBatch" form:"staffBatch"`
	StartDate  string `json:"startDate" form:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate    string `json:"endDate" form:"endDate" validate:"required,datetime=2006-01-02"`
	Reason     string `json:"reason" form:"reason"`
	Status     string `json:"status" form:"status" validate:"omitempty,oneof=pending approved rejected"`
}

// Ok validates the DTO and returns field -> message for every failure.
func (d *CreateDTO) Ok() (map[string]string, bool) {
	d.StaffName = strings.TrimSpace(d.StaffName)
	d.StaffBatch = strings.TrimSpace(d.StaffBatch)
	d.Reason = strings.TrimSpace(d.Reason)
	d.Status = strings.ToLower(strings.TrimSpace(d.Status))

	errs := map[string]string{}
	if err := validate.Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			errs["_"] = err.Error()
			return errs, false
		}
		for _, fe := range verrs {
			errs[fe.Field()] = fe.Field() + " is invalid (" + fe.Tag() + ")"
		}
		return errs, false
	}
	if d.EndDate < d.StartDate {
		errs["EndDate"] = "EndDate must not be before StartDate"
		return errs, false
	}
	return errs, true
}

func (d *CreateDTO) ToEntity() Request {
	status := Status(d.Status)
	if status == "" {
		status = StatusPending
	}
	return Request{
		StaffID:    d.StaffID,
		StaffName:  d.StaffName,
		StaffBatch: d.StaffBatch,
		StartDate:  d.StartDate,
		EndDate:    d.EndDate,
		Reason:     d.Reason,
		Status:     status,
	}
}
