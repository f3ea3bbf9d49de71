package shift

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carebridge/carebridge/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const shiftCols = `id, org_id, carer_id, client_id, scheduled_start, scheduled_end,
	check_in_at, check_in_lat, check_in_lng, check_out_at, check_out_lat, check_out_lng,
	status, notes, created_at, updated_at`

func scanShift(row pgx.Row) (*Shift, error) {
	var s Shift
	err := row.Scan(&s.ID, &s.OrgID, &s.CarerID, &s.ClientID, &s.ScheduledStart, &s.ScheduledEnd,
		&s.CheckInAt, &s.CheckInLat, &s.CheckInLng, &s.CheckOutAt, &s.CheckOutLat, &s.CheckOutLng,
		&s.Status, &s.Notes, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repoPG) Create(ctx context.Context, s *Shift) error {
	s.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO shift (id, org_id, carer_id, client_id, scheduled_start, scheduled_end, status, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at, updated_at`,
		s.ID, s.OrgID, s.CarerID, s.ClientID, s.ScheduledStart, s.ScheduledEnd, s.Status, s.Notes,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Shift, error) {
	s, err := scanShift(r.conn(ctx).QueryRow(ctx,
		`SELECT `+shiftCols+` FROM shift WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}

func (r *repoPG) Update(ctx context.Context, s *Shift, prevStatus string) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE shift
		SET scheduled_start=$2, scheduled_end=$3,
		    check_in_at=$4, check_in_lat=$5, check_in_lng=$6,
		    check_out_at=$7, check_out_lat=$8, check_out_lng=$9,
		    status=$10, notes=$11, updated_at=NOW()
		WHERE id = $1 AND status = $12`,
		s.ID, s.ScheduledStart, s.ScheduledEnd,
		s.CheckInAt, s.CheckInLat, s.CheckInLng,
		s.CheckOutAt, s.CheckOutLat, s.CheckOutLng,
		s.Status, s.Notes, prevStatus)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &StateError{Reason: "shift changed state concurrently"}
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Shift, int, error) {
	where := `WHERE org_id = $1`
	args := []interface{}{f.OrgID}
	add := func(clause string, v interface{}) {
		args = append(args, v)
		where += ` AND ` + clause + ` $` + strconv.Itoa(len(args))
	}
	if f.CarerID != nil {
		add("carer_id =", *f.CarerID)
	}
	if f.ClientID != nil {
		add("client_id =", *f.ClientID)
	}
	if f.Status != "" {
		add("status =", f.Status)
	}
	if f.Day != nil {
		day := f.Day.UTC().Truncate(24 * time.Hour)
		add("scheduled_start >=", day)
		add("scheduled_start <", day.AddDate(0, 0, 1))
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM shift `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + shiftCols + ` FROM shift ` + where +
		` ORDER BY scheduled_start LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Shift
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, rows.Err()
}
