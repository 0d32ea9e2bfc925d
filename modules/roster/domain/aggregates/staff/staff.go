package staff

import (
	"strings"
)

type VisaType string

const (
	VisaUnset      VisaType = ""
	VisaEmployment VisaType = "Employment"
	VisaVisit      VisaType = "Visit"
)

var visaTypes = []VisaType{VisaEmployment, VisaVisit}

func (v VisaType) IsValid() bool {
	if v == VisaUnset {
		return true
	}
	for _, t := range visaTypes {
		if v == t {
			return true
		}
	}
	return false
}

// ParseVisaType matches v case-insensitively against the closed set.
// Unknown values yield VisaUnset and false.
func ParseVisaType(v string) (VisaType, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return VisaUnset, true
	}
	for _, t := range visaTypes {
		if strings.EqualFold(v, string(t)) {
			return t, true
		}
	}
	return VisaUnset, false
}

type Status string

const (
	StatusWorking Status = "Working"
	StatusJobless Status = "Jobless"
	StatusExited  Status = "Exited"
)

const DefaultStatus = StatusWorking

var statuses = []Status{StatusWorking, StatusJobless, StatusExited}

func (s Status) IsValid() bool {
	for _, t := range statuses {
		if s == t {
			return true
		}
	}
	return false
}

// ParseStatus matches v case-insensitively against the closed set.
// Blank and unknown values yield DefaultStatus; ok is false only for unknown values.
func ParseStatus(v string) (Status, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return DefaultStatus, true
	}
	for _, t := range statuses {
		if strings.EqualFold(v, string(t)) {
			return t, true
		}
	}
	return DefaultStatus, false
}

// Staff is the canonical roster record. Field order is the serialized key order.
type Staff struct {
	ID                 int64    `json:"id"`
	SL                 int64    `json:"sl"`
	BatchNo            string   `json:"batchNo"`
	Name               string   `json:"name"`
	Designation        string   `json:"designation"`
	Department         string   `json:"department"`
	Hotel              string   `json:"hotel"`
	CardNo             string   `json:"cardNo"`
	Phone              string   `json:"phone"`
	Photo              string   `json:"photo"`
	Remark             string   `json:"remark"`
	VisaType           VisaType `json:"visaType"`
	Status             Status   `json:"status"`
	IssueDate          string   `json:"issueDate"`
	ExpireDate         string   `json:"expireDate"`
	HireDate           string   `json:"hireDate"`
	PassportExpireDate string   `json:"passportExpireDate"`
	Salary             float64  `json:"salary"`
}

func (s Staff) Key() IdentityKey {
	return KeyOf(s)
}

func (s Staff) HasBatch() bool {
	return strings.TrimSpace(s.BatchNo) != ""
}

// MaxIDs returns the highest id and sl present in records, zero when empty.
func MaxIDs(records []Staff) (maxID, maxSL int64) {
	for _, r := range records {
		if r.ID > maxID {
			maxID = r.ID
		}
		if r.SL > maxSL {
			maxSL = r.SL
		}
	}
	return maxID, maxSL
}

// IndexOf returns the position of the record with the given id, or -1.
func IndexOf(records []Staff, id int64) int {
	for i, r := range records {
		if r.ID == id {
			return i
		}
	}
	return -1
}
