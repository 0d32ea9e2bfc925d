package persistence

import (
	"context"
	"embed"
	"io/fs"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/shopspring/decimal"

	"github.com/hotelstaff/roster/modules/roster/domain/aggregates/staff"
	"github.com/hotelstaff/roster/modules/roster/domain/entities/vacation"
)

//go:embed schema/*.sql
var MigrationFiles embed.FS

const pgUniqueViolation = "23505"

// OpenPool connects to Postgres and verifies the connection.
func OpenPool(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "parse database config")
	}
	if maxConns > 0 {
		config.MaxConns = maxConns
	}
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, errors.Wrap(err, "create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "ping database")
	}
	return pool, nil
}

// Migrate applies the embedded schema migrations.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	sub, err := fs.Sub(MigrationFiles, "schema")
	if err != nil {
		return err
	}
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, sub)
	if err != nil {
		return errors.Wrap(err, "create migration provider")
	}
	if _, err := provider.Up(ctx); err != nil {
		return errors.Wrap(err, "apply migrations")
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

const staffColumns = `id, sl, batch_no, name, designation, department, hotel, card_no, phone, photo,
remark, visa_type, status, issue_date, expire_date, hire_date, passport_expire_date, salary::float8`

var staffCopyColumns = []string{
	"id", "sl", "batch_no", "name", "designation", "department", "hotel", "card_no", "phone", "photo",
	"remark", "visa_type", "status", "issue_date", "expire_date", "hire_date", "passport_expire_date", "salary",
}

type PgStaffRepository struct {
	pool *pgxpool.Pool
}

func NewPgStaffRepository(pool *pgxpool.Pool) *PgStaffRepository {
	return &PgStaffRepository{pool: pool}
}

func scanStaff(row pgx.Row) (staff.Staff, error) {
	var s staff.Staff
	err := row.Scan(
		&s.ID, &s.SL, &s.BatchNo, &s.Name, &s.Designation, &s.Department, &s.Hotel, &s.CardNo,
		&s.Phone, &s.Photo, &s.Remark, &s.VisaType, &s.Status, &s.IssueDate, &s.ExpireDate,
		&s.HireDate, &s.PassportExpireDate, &s.Salary,
	)
	return s, err
}

func staffValues(s staff.Staff) []any {
	return []any{
		s.ID, s.SL, s.BatchNo, s.Name, s.Designation, s.Department, s.Hotel, s.CardNo,
		s.Phone, s.Photo, s.Remark, string(s.VisaType), string(s.Status), s.IssueDate, s.ExpireDate,
		s.HireDate, s.PassportExpireDate, decimal.NewFromFloat(s.Salary).Round(2).InexactFloat64(),
	}
}

func (r *PgStaffRepository) List(ctx context.Context) ([]staff.Staff, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+staffColumns+` FROM roster_staff ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []staff.Staff
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PgStaffRepository) Get(ctx context.Context, id int64) (staff.Staff, error) {
	s, err := scanStaff(r.pool.QueryRow(ctx, `SELECT `+staffColumns+` FROM roster_staff WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return staff.Staff{}, staff.ErrNotFound
	}
	return s, err
}

func (r *PgStaffRepository) Insert(ctx context.Context, s staff.Staff) error {
	return r.InsertMany(ctx, []staff.Staff{s})
}

// InsertMany copies all records in one transaction.
func (r *PgStaffRepository) InsertMany(ctx context.Context, records []staff.Staff) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.CopyFrom(ctx, pgx.Identifier{"roster_staff"}, staffCopyColumns,
			pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
				return staffValues(records[i]), nil
			}))
		return err
	})
	if isUniqueViolation(err) {
		return errors.Wrap(staff.ErrBatchTaken, err.Error())
	}
	return err
}

func (r *PgStaffRepository) Replace(ctx context.Context, s staff.Staff) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE roster_staff SET
    sl = $2, batch_no = $3, name = $4, designation = $5, department = $6, hotel = $7,
    card_no = $8, phone = $9, photo = $10, remark = $11, visa_type = $12, status = $13,
    issue_date = $14, expire_date = $15, hire_date = $16, passport_expire_date = $17, salary = $18
WHERE id = $1`, staffValues(s)...)
	if isUniqueViolation(err) {
		return errors.Wrap(staff.ErrBatchTaken, err.Error())
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return staff.ErrNotFound
	}
	return nil
}

func (r *PgStaffRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM roster_staff WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return staff.ErrNotFound
	}
	return nil
}

const vacationColumns = `id, staff_id, staff_name, staff_batch, start_date, end_date, reason, status`

type PgVacationRepository struct {
	pool *pgxpool.Pool
}

func NewPgVacationRepository(pool *pgxpool.Pool) *PgVacationRepository {
	return &PgVacationRepository{pool: pool}
}

func scanVacation(row pgx.Row) (vacation.Request, error) {
	var v vacation.Request
	err := row.Scan(&v.ID, &v.StaffID, &v.StaffName, &v.StaffBatch, &v.StartDate, &v.EndDate, &v.Reason, &v.Status)
	return v, err
}

func (r *PgVacationRepository) List(ctx context.Context) ([]vacation.Request, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+vacationColumns+` FROM roster_vacations ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []vacation.Request
	for rows.Next() {
		v, err := scanVacation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *PgVacationRepository) Get(ctx context.Context, id int64) (vacation.Request, error) {
	v, err := scanVacation(r.pool.QueryRow(ctx, `SELECT `+vacationColumns+` FROM roster_vacations WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return vacation.Request{}, vacation.ErrNotFound
	}
	return v, err
}

func (r *PgVacationRepository) Insert(ctx context.Context, v vacation.Request) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO roster_vacations (`+vacationColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		v.ID, v.StaffID, v.StaffName, v.StaffBatch, v.StartDate, v.EndDate, v.Reason, string(v.Status))
	return err
}

func (r *PgVacationRepository) Replace(ctx context.Context, v vacation.Request) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE roster_vacations SET
    staff_id = $2, staff_name = $3, staff_batch = $4, start_date = $5, end_date = $6, reason = $7, status = $8
WHERE id = $1`,
		v.ID, v.StaffID, v.StaffName, v.StaffBatch, v.StartDate, v.EndDate, v.Reason, string(v.Status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return vacation.ErrNotFound
	}
	return nil
}

func (r *PgVacationRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM roster_vacations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return vacation.ErrNotFound
	}
	return nil
}
