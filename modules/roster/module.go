package roster

import (
	"context"

	"github.com/hotelstaff/roster/modules/roster/domain/aggregates/staff"
	"github.com/hotelstaff/roster/modules/roster/infrastructure/persistence"
	"github.com/hotelstaff/roster/modules/roster/presentation/controllers"
	"github.com/hotelstaff/roster/modules/roster/services"
	"github.com/hotelstaff/roster/modules/roster/services/repair"
	"github.com/hotelstaff/roster/pkg/application"
)

type ModuleOptions struct {
	Stores *persistence.Stores
	Repair repair.Config
	// RepairSchedule is a cron expression; empty disables scheduled repair.
	RepairSchedule string
	MaxUploadSize  int64
}

func NewModule(opts *ModuleOptions) application.Module {
	return &Module{opts: opts}
}

type Module struct {
	opts *ModuleOptions
}

func (m *Module) Register(app application.Application) error {
	stores := m.opts.Stores
	if stores == nil {
		stores = persistence.NewInmemStores()
	}
	publisher := app.EventPublisher()
	log := app.Logger()

	staffService := services.NewStaffService(stores.Staff, publisher)
	vacationService := services.NewVacationService(stores.Vacations, publisher)
	exchangeService := services.NewExchangeService(staffService, log)
	repairService := services.NewRepairService(staffService, vacationService, m.opts.Repair, publisher, log)
	app.RegisterServices(
		staffService,
		vacationService,
		exchangeService,
		repairService,
	)

	if publisher != nil {
		// Deleting staff is what leaves vacation requests dangling.
		publisher.Subscribe(func(e *staff.DeletedEvent) {
			records, err := vacationService.List(context.Background())
			if err != nil {
				return
			}
			refs := 0
			for _, r := range records {
				if r.StaffID == e.Result.ID {
					refs++
				}
			}
			if refs > 0 {
				log.WithField("staff_id", e.Result.ID).
					WithField("vacations", refs).
					Warn("deleted staff is still referenced; run repair to relink")
			}
		})
	}

	if err := repairService.Schedule(m.opts.RepairSchedule); err != nil {
		return err
	}
	app.RegisterClosers(application.CloserFunc(repairService.Stop))

	maxUpload := m.opts.MaxUploadSize
	if maxUpload <= 0 {
		maxUpload = 32 << 20
	}
	app.RegisterControllers(
		controllers.NewStaffAPIController(app, maxUpload),
		controllers.NewVacationAPIController(app),
		controllers.NewRepairAPIController(app),
		controllers.NewHealthController(map[string]controllers.HealthCheck{
			"store": stores.Ping,
		}),
	)
	return nil
}

func (m *Module) Name() string {
	return "roster"
}
