package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carechat/carechat/internal/platform/db"
	"github.com/carechat/carechat/pkg/timeofday"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

// reminder_time is a TIME column; it crosses the wire as an "HH24:MI" string
// in both directions.
const reminderCols = `id, prescription_id, to_char(reminder_time, 'HH24:MI'), reminder_date, status, created_at, updated_at`

func (r *repoPG) scan(row pgx.Row) (*Reminder, error) {
	var rm Reminder
	var clock string
	if err := row.Scan(&rm.ID, &rm.PrescriptionID, &clock, &rm.Date, &rm.Status,
		&rm.CreatedAt, &rm.UpdatedAt); err != nil {
		return nil, err
	}
	t, err := timeofday.Parse(clock)
	if err != nil {
		return nil, fmt.Errorf("reminder %s has malformed time: %w", rm.ID, err)
	}
	rm.Time = t
	return &rm, nil
}

func (r *repoPG) CreateBatch(ctx context.Context, reminders []*Reminder) error {
	conn := r.conn(ctx)
	for _, rm := range reminders {
		rm.ID = uuid.New()
		_, err := conn.Exec(ctx, `
			INSERT INTO reminder (id, prescription_id, reminder_time, reminder_date, status)
			VALUES ($1, $2, $3::time, $4, $5)`,
			rm.ID, rm.PrescriptionID, rm.Time.String(), rm.Date, rm.Status)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repoPG) ListByPrescription(ctx context.Context, prescriptionID uuid.UUID) ([]*Reminder, error) {
	return r.list(ctx, prescriptionID, `ORDER BY created_at ASC, id ASC`)
}

func (r *repoPG) ListByPrescriptionDateOrdered(ctx context.Context, prescriptionID uuid.UUID) ([]*Reminder, error) {
	return r.list(ctx, prescriptionID, `ORDER BY reminder_date ASC NULLS LAST, created_at ASC, id ASC`)
}

func (r *repoPG) list(ctx context.Context, prescriptionID uuid.UUID, order string) ([]*Reminder, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+reminderCols+` FROM reminder WHERE prescription_id = $1 `+order, prescriptionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Reminder
	for rows.Next() {
		rm, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rm)
	}
	return items, rows.Err()
}

func (r *repoPG) Activate(ctx context.Context, id uuid.UUID, date time.Time) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE reminder SET reminder_date = $2, status = $3, updated_at = NOW()
		WHERE id = $1`, id, date, StatusActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) UpdateTime(ctx context.Context, id uuid.UUID, t timeofday.TimeOfDay) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE reminder SET reminder_time = $2::time, updated_at = NOW()
		WHERE id = $1`, id, t.String())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) DeleteDue(ctx context.Context, now time.Time) ([]string, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		DELETE FROM reminder rm
		USING prescription p
		WHERE rm.prescription_id = p.id
		AND rm.status = $1
		AND rm.reminder_date IS NOT NULL
		AND rm.reminder_date <= $2
		AND rm.reminder_time <= $3::time
		RETURNING p.medication_name`,
		StatusActive, now, fmt.Sprintf("%02d:%02d", now.Hour(), now.Minute()))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
