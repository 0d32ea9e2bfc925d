package staff

import (
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type CreateDTO struct {
	BatchNo            string  `json:"batchNo" form:"batchNo"`
	Name               string  `json:"name" form:"name" validate:"required"`
	Designation        string  `json:"designation" form:"designation"`
	Department         string  `json:"department" form:"department"`
	Hotel              string  `json:"hotel" form:"hotel"`
	CardNo             string  `json:"cardNo" form:"cardNo"`
	Phone              string  `json:"phone" form:"phone"`
	Photo              string  `json:"photo" form:"photo" validate:"omitempty,uri"`
	Remark             string  `json:"remark" form:"remark"`
	VisaType           string  `json:"visaType" form:"visaType" validate:"omitempty,oneof=Employment Visit"`
	Status             string  `json:"status" form:"status" validate:"omitempty,oneof=Working Jobless Exited"`
	IssueDate          string  `json:"issueDate" form:"issueDate" validate:"omitempty,datetime=2006-01-02"`
	ExpireDate         string  `json:"expireDate" form:"expireDate" validate:"omitempty,datetime=2006-01-02"`
	HireDate           string  `json:"hireDate" form:"hireDate" validate:"omitempty,datetime=2006-01-02"`
	PassportExpireDate string  `json:"passportExpireDate" form:"passportExpireDate" validate:"omitempty,datetime=2006-01-02"`
	Salary             float64 `json:"salary" form:"salary" validate:"gte=0"`
}

func (d *CreateDTO) Normalize() {
	d.BatchNo = strings.TrimSpace(d.BatchNo)
	d.Name = strings.TrimSpace(d.Name)
	d.Designation = strings.TrimSpace(d.Designation)
	d.Department = strings.TrimSpace(d.Department)
	d.Hotel = strings.TrimSpace(d.Hotel)
	d.CardNo = strings.TrimSpace(d.CardNo)
	d.Phone = strings.TrimSpace(d.Phone)
	d.Photo = strings.TrimSpace(d.Photo)
	d.Remark = strings.TrimSpace(d.Remark)
	d.VisaType = strings.TrimSpace(d.VisaType)
	d.Status = strings.TrimSpace(d.Status)
}

// Ok validates the DTO and returns field -> message for every failure.
func (d *CreateDTO) Ok() (map[string]string, bool) {
	d.Normalize()
	err := validate.Struct(d)
	if err == nil {
		return map[string]string{}, true
	}
	errs := map[string]string{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs["_"] = err.Error()
		return errs, false
	}
	for _, fe := range verrs {
		errs[fe.Field()] = fieldMessage(fe)
	}
	return errs, false
}

func (d *CreateDTO) ToEntity() Staff {
	status, _ := ParseStatus(d.Status)
	visa, _ := ParseVisaType(d.VisaType)
	return Staff{
		BatchNo:            d.BatchNo,
		Name:               d.Name,
		Designation:        d.Designation,
		Department:         d.Department,
		Hotel:              d.Hotel,
		CardNo:             d.CardNo,
		Phone:              d.Phone,
		Photo:              d.Photo,
		Remark:             d.Remark,
		VisaType:           visa,
		Status:             status,
		IssueDate:          d.IssueDate,
		ExpireDate:         d.ExpireDate,
		HireDate:           d.HireDate,
		PassportExpireDate: d.PassportExpireDate,
		Salary:             d.Salary,
	}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	case "datetime":
		return fe.Field() + " must be a YYYY-MM-DD date"
	case "gte":
		return fe.Field() + " must not be negative"
	case "uri":
		return fe.Field() + " must be a URI"
	default:
		return fe.Field() + " is invalid"
	}
}
