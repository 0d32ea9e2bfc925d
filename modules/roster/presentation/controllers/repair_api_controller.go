package controllers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/hotelstaff/roster/modules/roster/services"
	"github.com/hotelstaff/roster/pkg/application"
)

type RepairAPIController struct {
	repair   *services.RepairService
	basePath string
}

func NewRepairAPIController(app application.Application) application.Controller {
	return &RepairAPIController{
		repair:   app.Service(services.RepairService{}).(*services.RepairService),
		basePath: BasePath,
	}
}

func (c *RepairAPIController) Key() string {
	return c.basePath + "/repair"
}

func (c *RepairAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("/repair", instrumentAPI("repair.run", c.Run)).Methods(http.MethodPost)
}

// Run executes one repair pass. The pass is detached from the request
// cancellation so a dropped connection does not interrupt it midway.
func (c *RepairAPIController) Run(w http.ResponseWriter, r *http.Request) {
	run, err := c.repair.Run(context.WithoutCancel(r.Context()), services.TriggerManual)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}
