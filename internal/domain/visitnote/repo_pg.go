package visitnote

import (
	"context"
	"encoding/json"
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

const visitNoteCols = `id, org_id, client_id, carer_id, shift_id, snapshot, data, qa_status, qa_comment, reviewed_by, reviewed_at, created_at`

func scanVisitNote(row pgx.Row) (*VisitNote, error) {
	var n VisitNote
	var snapshot, data []byte
	err := row.Scan(&n.ID, &n.OrgID, &n.ClientID, &n.CarerID, &n.ShiftID,
		&snapshot, &data, &n.QAStatus, &n.QAComment, &n.ReviewedBy, &n.ReviewedAt, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(snapshot, &n.Snapshot); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &n.Data); err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *repoPG) Create(ctx context.Context, n *VisitNote) error {
	n.ID = uuid.New()
	snapshot, err := json.Marshal(n.Snapshot)
	if err != nil {
		return err
	}
	data, err := json.Marshal(n.Data)
	if err != nil {
		return err
	}
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO visit_note (id, org_id, client_id, carer_id, shift_id, snapshot, data, qa_status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at`,
		n.ID, n.OrgID, n.ClientID, n.CarerID, n.ShiftID, snapshot, data, n.QAStatus,
	).Scan(&n.CreatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*VisitNote, error) {
	n, err := scanVisitNote(r.conn(ctx).QueryRow(ctx,
		`SELECT `+visitNoteCols+` FROM visit_note WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return n, err
}

func (r *repoPG) UpdateQA(ctx context.Context, id uuid.UUID, status string, comment *string, reviewedBy uuid.UUID, reviewedAt time.Time) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE visit_note
		SET qa_status=$2, qa_comment=$3, reviewed_by=$4, reviewed_at=$5
		WHERE id = $1 AND qa_status = $6`,
		id, status, comment, reviewedBy, reviewedAt, QAPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Either the row is gone or it is no longer pending. Distinguish
		// so a review of a deleted note does not read as a repeat review.
		var current string
		err := r.conn(ctx).QueryRow(ctx,
			`SELECT qa_status FROM visit_note WHERE id = $1`, id).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return ErrAlreadyReviewed
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, f ListFilter, limit, offset int) ([]*VisitNote, int, error) {
	where := `WHERE org_id = $1`
	args := []interface{}{f.OrgID}
	add := func(clause string, v interface{}) {
		args = append(args, v)
		where += ` AND ` + clause + ` = $` + strconv.Itoa(len(args))
	}
	if f.ClientID != nil {
		add("client_id", *f.ClientID)
	}
	if f.CarerID != nil {
		add("carer_id", *f.CarerID)
	}
	if f.ShiftID != nil {
		add("shift_id", *f.ShiftID)
	}
	if f.QAStatus != "" {
		add("qa_status", f.QAStatus)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM visit_note `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + visitNoteCols + ` FROM visit_note ` + where +
		` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*VisitNote
	for rows.Next() {
		n, err := scanVisitNote(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, n)
	}
	return items, total, rows.Err()
}
