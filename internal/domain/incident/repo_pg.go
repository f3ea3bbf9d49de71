package incident

import (
	"context"
	"errors"
	"strconv"

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

const incidentCols = `id, org_id, client_id, reported_by, shift_id, occurred_at,
	category, severity, description, action_taken, status, created_at, updated_at`

func scanIncident(row pgx.Row) (*Incident, error) {
	var i Incident
	err := row.Scan(&i.ID, &i.OrgID, &i.ClientID, &i.ReportedBy, &i.ShiftID, &i.OccurredAt,
		&i.Category, &i.Severity, &i.Description, &i.ActionTaken, &i.Status, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *repoPG) Create(ctx context.Context, i *Incident) error {
	i.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO incident (id, org_id, client_id, reported_by, shift_id, occurred_at, category, severity, description, action_taken, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at, updated_at`,
		i.ID, i.OrgID, i.ClientID, i.ReportedBy, i.ShiftID, i.OccurredAt,
		i.Category, i.Severity, i.Description, i.ActionTaken, i.Status,
	).Scan(&i.CreatedAt, &i.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Incident, error) {
	i, err := scanIncident(r.conn(ctx).QueryRow(ctx,
		`SELECT `+incidentCols+` FROM incident WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return i, err
}

func (r *repoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status, prevStatus string, actionTaken *string) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE incident
		SET status=$2, action_taken=COALESCE($3, action_taken), updated_at=NOW()
		WHERE id = $1 AND status = $4`,
		id, status, actionTaken, prevStatus)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &TransitionError{From: prevStatus, To: status}
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Incident, int, error) {
	where := `WHERE org_id = $1`
	args := []interface{}{f.OrgID}
	add := func(col string, v interface{}) {
		args = append(args, v)
		where += ` AND ` + col + ` = $` + strconv.Itoa(len(args))
	}
	if f.ClientID != nil {
		add("client_id", *f.ClientID)
	}
	if f.Status != "" {
		add("status", f.Status)
	}
	if f.Severity != "" {
		add("severity", f.Severity)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM incident `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + incidentCols + ` FROM incident ` + where +
		` ORDER BY occurred_at DESC LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Incident
	for rows.Next() {
		i, err := scanIncident(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, i)
	}
	return items, total, rows.Err()
}
