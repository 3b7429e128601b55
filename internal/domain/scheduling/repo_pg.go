package scheduling

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carechat/carechat/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// =========== Time Slot Repository ===========

type timeSlotRepoPG struct{ pool *pgxpool.Pool }

func NewTimeSlotRepoPG(pool *pgxpool.Pool) TimeSlotRepository { return &timeSlotRepoPG{pool: pool} }

func (r *timeSlotRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const slotCols = `id, doctor_id, start_time, end_time, status, patient_id, created_at, updated_at`

func (r *timeSlotRepoPG) scanSlot(row pgx.Row) (*TimeSlot, error) {
	var sl TimeSlot
	err := row.Scan(&sl.ID, &sl.DoctorID, &sl.StartTime, &sl.EndTime, &sl.Status,
		&sl.PatientID, &sl.CreatedAt, &sl.UpdatedAt)
	return &sl, err
}

func (r *timeSlotRepoPG) Create(ctx context.Context, sl *TimeSlot) error {
	sl.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO time_slot (id, doctor_id, start_time, end_time, status, patient_id)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		sl.ID, sl.DoctorID, sl.StartTime, sl.EndTime, sl.Status, sl.PatientID)
	return err
}

func (r *timeSlotRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*TimeSlot, error) {
	return r.scanSlot(r.conn(ctx).QueryRow(ctx, `SELECT `+slotCols+` FROM time_slot WHERE id = $1`, id))
}

func (r *timeSlotRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM time_slot WHERE id = $1`, id)
	return err
}

func (r *timeSlotRepoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*TimeSlot, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM time_slot WHERE doctor_id = $1`, doctorID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+slotCols+` FROM time_slot WHERE doctor_id = $1 ORDER BY start_time ASC LIMIT $2 OFFSET $3`, doctorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*TimeSlot
	for rows.Next() {
		sl, err := r.scanSlot(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, sl)
	}
	return items, total, nil
}

func (r *timeSlotRepoPG) ListAvailableByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*TimeSlot, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+slotCols+` FROM time_slot
		WHERE doctor_id = $1 AND status = $2
		ORDER BY start_time ASC`, doctorID, SlotAvailable)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*TimeSlot
	for rows.Next() {
		sl, err := r.scanSlot(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, sl)
	}
	return items, rows.Err()
}

func (r *timeSlotRepoPG) Claim(ctx context.Context, id, patientID uuid.UUID) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE time_slot SET status = $3, patient_id = $2, updated_at = NOW()
		WHERE id = $1 AND status = $4`,
		id, patientID, SlotBooked, SlotAvailable)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *timeSlotRepoPG) DeleteOldestByDoctor(ctx context.Context, doctorID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `
		DELETE FROM time_slot
		WHERE id = (
			SELECT id FROM time_slot WHERE doctor_id = $1
			ORDER BY start_time ASC LIMIT 1
		)`, doctorID)
	return err
}

// =========== Appointment Repository ===========

type appointmentRepoPG struct{ pool *pgxpool.Pool }

func NewAppointmentRepoPG(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepoPG{pool: pool}
}

func (r *appointmentRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const apptCols = `id, patient_id, doctor_id, time_slot_id, appointment_date, is_active, created_at, updated_at`

func (r *appointmentRepoPG) scanAppt(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.TimeSlotID,
		&a.AppointmentDate, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	return &a, err
}

func (r *appointmentRepoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO appointment (id, patient_id, doctor_id, time_slot_id, appointment_date, is_active)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		a.ID, a.PatientID, a.DoctorID, a.TimeSlotID, a.AppointmentDate, a.IsActive)
	return err
}

func (r *appointmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return r.scanAppt(r.conn(ctx).QueryRow(ctx, `SELECT `+apptCols+` FROM appointment WHERE id = $1`, id))
}

func (r *appointmentRepoPG) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointment SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *appointmentRepoPG) LatestInactiveByPatient(ctx context.Context, patientID uuid.UUID) (*Appointment, error) {
	a, err := r.scanAppt(r.conn(ctx).QueryRow(ctx, `
		SELECT `+apptCols+` FROM appointment
		WHERE patient_id = $1 AND is_active = FALSE
		ORDER BY appointment_date DESC
		LIMIT 1`, patientID))
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *appointmentRepoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, active bool, patientSearch, sortOrder string, limit, offset int) ([]*AppointmentDetail, int, error) {
	where := ` FROM appointment a
		JOIN patient p ON a.patient_id = p.id
		WHERE a.doctor_id = $1 AND a.is_active = $2`
	args := []interface{}{doctorID, active}
	idx := 3

	if patientSearch != "" {
		where += fmt.Sprintf(` AND (p.first_name ILIKE '%%' || $%d || '%%' OR p.last_name ILIKE '%%' || $%d || '%%')`, idx, idx)
		args = append(args, patientSearch)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*)`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order := `DESC`
	if sortOrder == "asc" {
		order = `ASC`
	}
	query := `SELECT a.id, a.patient_id, a.doctor_id, a.time_slot_id, a.appointment_date,
			a.is_active, a.created_at, a.updated_at,
			p.first_name || ' ' || p.last_name AS patient_name` +
		where + fmt.Sprintf(` ORDER BY a.appointment_date %s LIMIT $%d OFFSET $%d`, order, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*AppointmentDetail
	for rows.Next() {
		var d AppointmentDetail
		if err := rows.Scan(&d.ID, &d.PatientID, &d.DoctorID, &d.TimeSlotID, &d.AppointmentDate,
			&d.IsActive, &d.CreatedAt, &d.UpdatedAt, &d.PatientName); err != nil {
			return nil, 0, err
		}
		items = append(items, &d)
	}
	return items, total, nil
}
