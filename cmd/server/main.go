package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	internalserver "github.com/hotelstaff/roster/internal/server"
	"github.com/hotelstaff/roster/modules/roster"
	"github.com/hotelstaff/roster/modules/roster/infrastructure/persistence"
	"github.com/hotelstaff/roster/modules/roster/services/repair"
	"github.com/hotelstaff/roster/pkg/application"
	"github.com/hotelstaff/roster/pkg/configuration"
	"github.com/hotelstaff/roster/pkg/eventbus"
	"github.com/hotelstaff/roster/pkg/logging"
	"github.com/hotelstaff/roster/pkg/metrics"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	defer conf.Unload()
	logger := conf.Logger()

	if conf.OpenTelemetry.Enabled {
		tracingCleanup := logging.SetupTracing(
			context.Background(),
			conf.OpenTelemetry.ServiceName,
			conf.OpenTelemetry.TempoURL,
		)
		defer tracingCleanup()
		logger.Info("OpenTelemetry tracing enabled, exporting to " + conf.OpenTelemetry.TempoURL)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	stores, err := persistence.OpenStores(openCtx, conf, logger)
	cancel()
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer stores.Close()

	app := application.New(&application.ApplicationOptions{
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
	})
	if err := application.Load(app, roster.NewModule(&roster.ModuleOptions{
		Stores: stores,
		Repair: repair.Config{
			FetchTimeout: conf.Repair.FetchTimeout,
			WriteTimeout: conf.Repair.WriteTimeout,
		},
		RepairSchedule: conf.Repair.Schedule,
		MaxUploadSize:  conf.MaxUploadSize,
	})); err != nil {
		log.Fatalf("failed to load modules: %v", err)
	}
	defer func() {
		for _, c := range app.Closers() {
			c.Close()
		}
	}()

	if conf.Prometheus.Enabled {
		app.RegisterControllers(metrics.NewPrometheusController(conf.Prometheus.Path))
	}
	serverInstance, err := internalserver.Default(&internalserver.DefaultOptions{
		Logger:        logger,
		Configuration: conf,
		Application:   app,
	})
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}
	logger.WithField("backend", stores.Backend).Infof("Listening on: %s", conf.Origin)
	if err := serverInstance.Start(ctx, conf.SocketAddress); err != nil {
		logger.WithError(err).Error("server stopped")
	}
}
