package controllers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/hotelstaff/roster/modules/roster/domain/entities/vacation"
	"github.com/hotelstaff/roster/modules/roster/services"
	"github.com/hotelstaff/roster/pkg/application"
)

type VacationAPIController struct {
	vacations *services.VacationService
	basePath  string
}

func NewVacationAPIController(app application.Application) application.Controller {
	return &VacationAPIController{
		vacations: app.Service(services.VacationService{}).(*services.VacationService),
		basePath:  BasePath,
	}
}

func (c *VacationAPIController) Key() string {
	return c.basePath + "/vacations"
}

func (c *VacationAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("/vacations", instrumentAPI("vacations.list", c.List)).Methods(http.MethodGet)
	router.HandleFunc("/vacations", instrumentAPI("vacations.create", c.Create)).Methods(http.MethodPost)
	router.HandleFunc("/vacations/{id:[0-9]+}", instrumentAPI("vacations.get", c.Get)).Methods(http.MethodGet)
	router.HandleFunc("/vacations/{id:[0-9]+}", instrumentAPI("vacations.update", c.Update)).Methods(http.MethodPatch)
	router.HandleFunc("/vacations/{id:[0-9]+}", instrumentAPI("vacations.delete", c.Delete)).Methods(http.MethodDelete)
}

func (c *VacationAPIController) List(w http.ResponseWriter, r *http.Request) {
	records, err := c.vacations.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if records == nil {
		records = []vacation.Request{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (c *VacationAPIController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_ID", "invalid vacation id")
		return
	}
	entity, err := c.vacations.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entity)
}

func (c *VacationAPIController) Create(w http.ResponseWriter, r *http.Request) {
	var dto vacation.CreateDTO
	if err := json.NewDecoder(io.LimitReader(r.Body, maxPatchSize)).Decode(&dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	created, err := c.vacations.Create(r.Context(), &dto)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (c *VacationAPIController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_ID", "invalid vacation id")
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxPatchSize))
	if err != nil || !json.Valid(body) {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	updated, err := c.vacations.Update(r.Context(), id, vacation.Patch(body))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (c *VacationAPIController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_ID", "invalid vacation id")
		return
	}
	if _, err := c.vacations.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
