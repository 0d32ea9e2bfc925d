package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"github.com/hotelstaff/roster/modules/roster/domain/aggregates/staff"
	"github.com/hotelstaff/roster/modules/roster/domain/entities/vacation"
	"github.com/hotelstaff/roster/pkg/configuration"
)

// Stores bundles the repositories of one backend.
type Stores struct {
	Staff     staff.Repository
	Vacations vacation.Repository
	Backend   string
	ping      func(ctx context.Context) error
	close     func()
}

// Ping reports whether the backend answers.
func (s *Stores) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

func (s *Stores) Close() {
	if s.close != nil {
		s.close()
	}
}

func NewInmemStores() *Stores {
	return &Stores{
		Staff:     NewInmemStaffRepository(),
		Vacations: NewInmemVacationRepository(),
		Backend:   configuration.BackendMemory,
	}
}

// OpenStores connects the backend selected by STORE_BACKEND.
func OpenStores(ctx context.Context, conf *configuration.Configuration, log *logrus.Logger) (*Stores, error) {
	switch conf.StoreBackend {
	case configuration.BackendPostgres:
		pool, err := OpenPool(ctx, conf.Database.Opts, conf.Database.MaxConns)
		if err != nil {
			return nil, err
		}
		if err := Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.WithField("backend", conf.StoreBackend).Info("roster store ready")
		return &Stores{
			Staff:     NewPgStaffRepository(pool),
			Vacations: NewPgVacationRepository(pool),
			Backend:   configuration.BackendPostgres,
			ping:      pool.Ping,
			close:     pool.Close,
		}, nil
	case configuration.BackendRedis:
		client, err := OpenRedis(ctx, conf.RedisURL)
		if err != nil {
			return nil, err
		}
		log.WithField("backend", conf.StoreBackend).Info("roster store ready")
		return &Stores{
			Staff:     NewRedisStaffRepository(client),
			Vacations: NewRedisVacationRepository(client),
			Backend:   configuration.BackendRedis,
			ping:      func(ctx context.Context) error { return client.Ping(ctx).Err() },
			close:     func() { _ = client.Close() },
		}, nil
	case configuration.BackendMemory, "":
		log.WithField("backend", configuration.BackendMemory).Warn("roster store is in memory; data is lost on restart")
		return NewInmemStores(), nil
	default:
		return nil, errors.Errorf("unknown store backend %q", conf.StoreBackend)
	}
}
