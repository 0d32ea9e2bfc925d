package persistence

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/hotelstaff/roster/modules/roster/domain/aggregates/staff"
	"github.com/hotelstaff/roster/modules/roster/domain/entities/vacation"
)

func exerciseStaffRepository(t *testing.T, repo staff.Repository) {
	t.Helper()
	ctx := context.Background()

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Empty(t, list)

	require.NoError(t, repo.InsertMany(ctx, []staff.Staff{
		{ID: 2, SL: 2, Name: "Bob", Status: staff.StatusWorking, Salary: 1200.5},
		{ID: 1, SL: 1, Name: "Ann", BatchNo: "B1", Status: staff.StatusWorking, VisaType: staff.VisaVisit},
	}))
	require.NoError(t, repo.Insert(ctx, staff.Staff{ID: 3, SL: 3, Name: "Cy", Status: staff.StatusExited}))

	got, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "B1", got.BatchNo)
	require.Equal(t, staff.VisaVisit, got.VisaType)

	got.Designation = "Chef"
	require.NoError(t, repo.Replace(ctx, got))
	got, err = repo.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "Chef", got.Designation)

	require.NoError(t, repo.Delete(ctx, 3))
	require.ErrorIs(t, repo.Delete(ctx, 3), staff.ErrNotFound)
	_, err = repo.Get(ctx, 3)
	require.ErrorIs(t, err, staff.ErrNotFound)
	require.ErrorIs(t, repo.Replace(ctx, staff.Staff{ID: 99, Name: "Ghost"}), staff.ErrNotFound)

	list, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
}

func exerciseVacationRepository(t *testing.T, repo vacation.Repository) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, vacation.Request{ID: 1, StaffID: 4, StaffName: "Ann", Status: vacation.StatusPending}))
	require.NoError(t, repo.Insert(ctx, vacation.Request{ID: 2, StaffID: 5, StaffName: "Bob", Status: vacation.StatusPending}))

	r, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	r.StaffID = 7
	require.NoError(t, repo.Replace(ctx, r))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, int64(7), list[0].StaffID)

	require.NoError(t, repo.Delete(ctx, 2))
	_, err = repo.Get(ctx, 2)
	require.ErrorIs(t, err, vacation.ErrNotFound)
	require.ErrorIs(t, repo.Replace(ctx, vacation.Request{ID: 42}), vacation.ErrNotFound)
}

func TestInmemRepositories(t *testing.T) {
	t.Parallel()

	exerciseStaffRepository(t, NewInmemStaffRepository())
	exerciseVacationRepository(t, NewInmemVacationRepository())
}

func TestInmemStaffRepository_KeepsInsertionOrder(t *testing.T) {
	t.Parallel()

	repo := NewInmemStaffRepository(staff.Staff{ID: 5, Name: "E"}, staff.Staff{ID: 2, Name: "B"})
	require.NoError(t, repo.Insert(context.Background(), staff.Staff{ID: 9, Name: "I"}))

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, []int64{5, 2, 9}, []int64{list[0].ID, list[1].ID, list[2].ID})

	list[0].Name = "mutated"
	again, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, "E", again[0].Name)
}

func TestRedisKeys(t *testing.T) {
	t.Parallel()

	k := redisKeys{prefix: "roster", collection: "staff"}
	require.Equal(t, "roster:staff:42", k.record(42))
	require.Equal(t, "roster:staff:index", k.index())
}

func TestRedisRepositories(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := OpenRedis(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	prefix := "roster-test-" + uuid.NewString()
	staffRepo := NewRedisStaffRepository(client)
	staffRepo.c.keys.prefix = prefix
	vacRepo := NewRedisVacationRepository(client)
	vacRepo.c.keys.prefix = prefix
	t.Cleanup(func() {
		keys, _ := client.Keys(context.Background(), prefix+":*").Result()
		if len(keys) > 0 {
			client.Del(context.Background(), keys...)
		}
	})

	exerciseStaffRepository(t, staffRepo)
	exerciseVacationRepository(t, vacRepo)
}

func TestPostgresRepositories(t *testing.T) {
	if os.Getenv("DB_HOST") == "" {
		t.Skip("DB_HOST not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dsn := "host=" + os.Getenv("DB_HOST") + " port=" + envOr("DB_PORT", "5432") +
		" user=" + envOr("DB_USER", "postgres") + " password=" + envOr("DB_PASSWORD", "postgres") +
		" dbname=" + envOr("DB_NAME", "roster") + " sslmode=disable"
	pool, err := OpenPool(ctx, dsn, 4)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, Migrate(ctx, pool))
	_, err = pool.Exec(ctx, `TRUNCATE roster_staff, roster_vacations`)
	require.NoError(t, err)

	repo := NewPgStaffRepository(pool)
	exerciseStaffRepository(t, repo)
	exerciseVacationRepository(t, NewPgVacationRepository(pool))

	err = repo.Insert(ctx, staff.Staff{ID: 50, SL: 50, Name: "Dup", BatchNo: "B1", Status: staff.StatusWorking})
	require.ErrorIs(t, err, staff.ErrBatchTaken)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
