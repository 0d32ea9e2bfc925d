package services

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/hotelstaff/roster/modules/roster/services/repair"
	"github.com/hotelstaff/roster/pkg/eventbus"
)

const (
	TriggerManual    = "manual"
	TriggerScheduled = "scheduled"
)

// ErrRepairRunning is returned when a run is requested while one is active.
var ErrRepairRunning = errors.New("repair already running")

// RepairCompletedEvent is published after every finished repair run.
type RepairCompletedEvent struct {
	RunID    string
	Trigger  string
	Result   *repair.Result
	Duration time.Duration
	At       time.Time
}

// RepairRun is the response of a finished run.
type RepairRun struct {
	RunID    string         `json:"runId"`
	Trigger  string         `json:"trigger"`
	Summary  string         `json:"summary"`
	Duration string         `json:"duration"`
	Result   *repair.Result `json:"result"`
}

// RepairService runs the Referential Repair Engine against the local staff
// and vacation collections, on demand or on a cron schedule.
type RepairService struct {
	staff     repair.StaffLister
	vacations repair.VacationStore
	cfg       repair.Config
	publisher eventbus.EventBus
	log       *logrus.Logger

	running sync.Mutex
	cron    *cron.Cron
}

func NewRepairService(
	staffLister repair.StaffLister,
	vacations repair.VacationStore,
	cfg repair.Config,
	publisher eventbus.EventBus,
	log *logrus.Logger,
) *RepairService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &RepairService{
		staff:     staffLister,
		vacations: vacations,
		cfg:       cfg,
		publisher: publisher,
		log:       log,
	}
}

// Run performs one repair pass. Only one pass runs at a time.
func (s *RepairService) Run(ctx context.Context, trigger string) (*RepairRun, error) {
	if !s.running.TryLock() {
		return nil, ErrRepairRunning
	}
	defer s.running.Unlock()

	runID := uuid.NewString()
	logger := s.log.WithFields(logrus.Fields{"run_id": runID, "trigger": trigger})
	start := time.Now()

	engine := repair.New(s.staff, s.vacations, s.cfg, repair.WithObserver(func(o repair.Outcome) {
		switch o.Status {
		case repair.StatusFixed:
			logger.WithField("vacation_id", o.VacationID).Info(o.String())
		case repair.StatusFailed, repair.StatusUnrecoverable:
			logger.WithField("vacation_id", o.VacationID).Warn(o.String())
		}
	}))
	res, err := engine.Run(ctx)
	observeRepair(trigger, res, err)
	if err != nil {
		logger.WithError(err).Error("repair run aborted")
		return nil, err
	}

	elapsed := time.Since(start)
	logger.WithFields(logrus.Fields{
		"checked":       res.Checked,
		"ok":            res.OK,
		"fixed":         res.Fixed,
		"unrecoverable": res.Unrecoverable,
		"failed":        res.Failed,
		"skipped":       res.Skipped,
		"duration_ms":   elapsed.Milliseconds(),
	}).Info("repair run finished")
	for _, o := range res.Ambiguous() {
		logger.WithFields(logrus.Fields{
			"vacation_id": o.VacationID,
			"staff_name":  o.StaffName,
			"candidates":  o.Candidates,
			"picked":      o.NewStaffID,
		}).Warn("repair picked the first of several staff with the same name")
	}

	publish(s.publisher, &RepairCompletedEvent{
		RunID:    runID,
		Trigger:  trigger,
		Result:   res,
		Duration: elapsed,
		At:       time.Now().UTC(),
	})
	return &RepairRun{
		RunID:    runID,
		Trigger:  trigger,
		Summary:  res.Summary(),
		Duration: elapsed.String(),
		Result:   res,
	}, nil
}

// Schedule starts periodic runs from a cron expression. An empty expression
// leaves scheduling off.
func (s *RepairService) Schedule(expr string) error {
	if expr == "" {
		return nil
	}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := c.AddFunc(expr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.FetchTimeout+time.Hour)
		defer cancel()
		if _, err := s.Run(ctx, TriggerScheduled); err != nil && !errors.Is(err, ErrRepairRunning) {
			s.log.WithError(err).Error("scheduled repair failed")
		}
	})
	if err != nil {
		return errors.Wrapf(err, "schedule repair %q", expr)
	}
	s.cron = c
	c.Start()
	s.log.WithField("schedule", expr).Info("repair scheduled")
	return nil
}

// Stop halts scheduling and waits for a running scheduled pass.
func (s *RepairService) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}
