package controllers

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-playground/form"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/hotelstaff/roster/modules/roster/domain/aggregates/staff"
	"github.com/hotelstaff/roster/modules/roster/services"
	"github.com/hotelstaff/roster/modules/roster/services/codecs"
	"github.com/hotelstaff/roster/pkg/application"
	"github.com/hotelstaff/roster/pkg/middleware"
)

const (
	BasePath = "/roster/api"

	maxPatchSize = 1 << 20
)

type StaffAPIController struct {
	staff         *services.StaffService
	exchange      *services.ExchangeService
	forms         *form.Decoder
	basePath      string
	maxUploadSize int64
}

func NewStaffAPIController(app application.Application, maxUploadSize int64) application.Controller {
	return &StaffAPIController{
		staff:         app.Service(services.StaffService{}).(*services.StaffService),
		exchange:      app.Service(services.ExchangeService{}).(*services.ExchangeService),
		forms:         form.NewDecoder(),
		basePath:      BasePath,
		maxUploadSize: maxUploadSize,
	}
}

func (c *StaffAPIController) Key() string {
	return c.basePath + "/staff"
}

func (c *StaffAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("/staff", instrumentAPI("staff.list", c.List)).Methods(http.MethodGet)
	router.HandleFunc("/staff", instrumentAPI("staff.create", c.Create)).Methods(http.MethodPost)
	router.HandleFunc("/staff/import", instrumentAPI("staff.import", c.Import)).Methods(http.MethodPost)
	router.HandleFunc("/staff/export", instrumentAPI("staff.export", c.Export)).Methods(http.MethodGet)
	router.HandleFunc("/staff/{id:[0-9]+}", instrumentAPI("staff.get", c.Get)).Methods(http.MethodGet)
	router.HandleFunc("/staff/{id:[0-9]+}", instrumentAPI("staff.update", c.Update)).Methods(http.MethodPatch)
	router.HandleFunc("/staff/{id:[0-9]+}", instrumentAPI("staff.delete", c.Delete)).Methods(http.MethodDelete)
}

// findParams reads the filter criteria shared by listing and export.
func findParams(r *http.Request) (*staff.FindParams, error) {
	q := r.URL.Query()
	params := &staff.FindParams{
		Query:      strings.TrimSpace(q.Get("q")),
		Hotel:      strings.TrimSpace(q.Get("hotel")),
		Department: strings.TrimSpace(q.Get("department")),
	}
	if v := strings.TrimSpace(q.Get("status")); v != "" {
		status, ok := staff.ParseStatus(v)
		if !ok {
			return nil, errors.Errorf("unknown status %q", v)
		}
		params.Status = status
	}
	if v := strings.TrimSpace(q.Get("visaType")); v != "" {
		visa, ok := staff.ParseVisaType(v)
		if !ok {
			return nil, errors.Errorf("unknown visa type %q", v)
		}
		params.VisaType = visa
	}
	return params, nil
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil && id > 0
}

func (c *StaffAPIController) List(w http.ResponseWriter, r *http.Request) {
	params, err := findParams(r)
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_FILTER", err.Error())
		return
	}
	records, total, err := c.staff.Find(r.Context(), params)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if records == nil {
		records = []staff.Staff{}
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	writeJSON(w, http.StatusOK, records)
}

func (c *StaffAPIController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_ID", "invalid staff id")
		return
	}
	entity, err := c.staff.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entity)
}

// Create accepts a JSON body or a url-encoded form.
func (c *StaffAPIController) Create(w http.ResponseWriter, r *http.Request) {
	var dto staff.CreateDTO
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		parse := r.ParseForm
		if mediaType == "multipart/form-data" {
			parse = func() error { return r.ParseMultipartForm(maxPatchSize) }
		}
		if err := parse(); err != nil {
			writeAPIError(w, r, http.StatusBadRequest, "INVALID_FORM", "invalid form")
			return
		}
		if err := c.forms.Decode(&dto, r.PostForm); err != nil {
			writeAPIError(w, r, http.StatusBadRequest, "INVALID_FORM", err.Error())
			return
		}
	default:
		if err := json.NewDecoder(io.LimitReader(r.Body, maxPatchSize)).Decode(&dto); err != nil {
			writeAPIError(w, r, http.StatusBadRequest, "INVALID_JSON", "invalid json")
			return
		}
	}

	created, err := c.staff.Create(r.Context(), &dto)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Update applies an RFC 7396 merge patch.
func (c *StaffAPIController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_ID", "invalid staff id")
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxPatchSize))
	if err != nil || !json.Valid(body) {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	updated, err := c.staff.Update(r.Context(), id, staff.Patch(body))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (c *StaffAPIController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_ID", "invalid staff id")
		return
	}
	if _, err := c.staff.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Import takes a multipart "file" field or the raw request body. The format
// comes from the format parameter, else from the content and filename.
func (c *StaffAPIController) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, c.maxUploadSize)

	req := services.ImportRequest{}
	if v := strings.TrimSpace(r.URL.Query().Get("format")); v != "" {
		format, err := codecs.ParseFormat(v)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		req.Format = format
	}
	if v := r.URL.Query().Get("dryRun"); v != "" {
		dryRun, err := strconv.ParseBool(v)
		if err != nil {
			writeAPIError(w, r, http.StatusBadRequest, "INVALID_DRY_RUN", "dryRun must be a boolean")
			return
		}
		req.DryRun = dryRun
	}

	data, filename, err := c.readUpload(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeAPIError(w, r, http.StatusRequestEntityTooLarge, "UPLOAD_TOO_LARGE", "upload exceeds the size limit")
			return
		}
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_UPLOAD", err.Error())
		return
	}
	if len(data) == 0 {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_UPLOAD", "empty upload")
		return
	}
	req.Data, req.Filename = data, filename

	report, err := c.exchange.Import(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	middleware.UseLogger(r.Context()).WithFields(logrus.Fields{
		"run_id":   report.RunID,
		"accepted": report.Accepted,
	}).Debug("import handled")
	writeJSON(w, http.StatusOK, report)
}

func (c *StaffAPIController) readUpload(r *http.Request) ([]byte, string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		data, err := io.ReadAll(r.Body)
		return data, r.URL.Query().Get("filename"), err
	}
	if err := r.ParseMultipartForm(c.maxUploadSize); err != nil {
		return nil, "", err
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", errors.Wrap(err, "missing file field")
	}
	defer func() { _ = file.Close() }()
	data, err := io.ReadAll(file)
	return data, header.Filename, err
}

// Export downloads the filtered selection as an attachment.
func (c *StaffAPIController) Export(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("format")
	if strings.TrimSpace(raw) == "" {
		raw = string(codecs.FormatJSON)
	}
	format, err := codecs.ParseFormat(raw)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	params, err := findParams(r)
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_FILTER", err.Error())
		return
	}
	out, err := c.exchange.Export(r.Context(), format, params)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", out.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": out.Filename}))
	w.Header().Set("X-Total-Count", strconv.Itoa(out.Total))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out.Body)
}
