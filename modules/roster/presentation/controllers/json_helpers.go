package controllers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/hotelstaff/roster/modules/roster/domain/aggregates/staff"
	"github.com/hotelstaff/roster/modules/roster/domain/entities/vacation"
	"github.com/hotelstaff/roster/modules/roster/services"
	"github.com/hotelstaff/roster/modules/roster/services/codecs"
	"github.com/hotelstaff/roster/modules/roster/services/repair"
	"github.com/hotelstaff/roster/pkg/middleware"
)

const requestIDHeader = "X-Request-ID"

// APIError is the body of every non-2xx JSON response.
type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Meta    map[string]string `json:"meta,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		panic(err)
	}
}

func ensureRequestID(w http.ResponseWriter, r *http.Request) string {
	if r == nil {
		return ""
	}
	if id, ok := middleware.UseRequestID(r.Context()); ok {
		return id
	}
	requestID := strings.TrimSpace(r.Header.Get(requestIDHeader))
	if requestID == "" {
		requestID = uuid.NewString()
		w.Header().Set(requestIDHeader, requestID)
	}
	return requestID
}

func writeAPIError(w http.ResponseWriter, r *http.Request, status int, code string, message string) {
	writeJSON(w, status, APIError{
		Code:    code,
		Message: message,
		Meta:    map[string]string{"request_id": ensureRequestID(w, r)},
	})
}

// writeServiceError maps a service failure onto its HTTP status.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, APIError{
			Code:    "VALIDATION_FAILED",
			Message: "validation failed",
			Fields:  verr.Fields,
			Meta:    map[string]string{"request_id": ensureRequestID(w, r)},
		})
	case errors.Is(err, staff.ErrNotFound), errors.Is(err, vacation.ErrNotFound):
		writeAPIError(w, r, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, staff.ErrBatchTaken):
		writeAPIError(w, r, http.StatusConflict, "BATCH_CONFLICT", err.Error())
	case errors.Is(err, services.ErrRepairRunning):
		writeAPIError(w, r, http.StatusConflict, "REPAIR_RUNNING", err.Error())
	case errors.Is(err, staff.ErrImmutableID), errors.Is(err, vacation.ErrImmutableID),
		errors.Is(err, staff.ErrMissingName):
		writeAPIError(w, r, http.StatusUnprocessableEntity, "VALIDATION_FAILED", err.Error())
	case errors.Is(err, staff.ErrInvalidPatch), errors.Is(err, vacation.ErrInvalidPatch):
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_PATCH", err.Error())
	case errors.Is(err, codecs.ErrUnsupportedFormat), errors.Is(err, codecs.ErrEncodeOnly):
		writeAPIError(w, r, http.StatusUnsupportedMediaType, "UNSUPPORTED_FORMAT", err.Error())
	case errors.Is(err, codecs.ErrFormat):
		writeAPIError(w, r, http.StatusBadRequest, "FORMAT_ERROR", err.Error())
	case errors.Is(err, repair.ErrFetch):
		writeAPIError(w, r, http.StatusBadGateway, "REPAIR_FETCH_FAILED", err.Error())
	default:
		middleware.UseLogger(r.Context()).WithError(err).Error("roster api request failed")
		writeAPIError(w, r, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}
