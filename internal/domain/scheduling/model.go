package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// Time slot statuses.
const (
	SlotAvailable = "available"
	SlotBooked    = "booked"
)

// TimeSlot maps to the time_slot table.
type TimeSlot struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	DoctorID  uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	StartTime time.Time  `db:"start_time" json:"start_time"`
	EndTime   time.Time  `db:"end_time" json:"end_time"`
	Status    string     `db:"status" json:"status"`
	PatientID *uuid.UUID `db:"patient_id" json:"patient_id,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// Appointment maps to the appointment table.
type Appointment struct {
	ID              uuid.UUID `db:"id" json:"id"`
	PatientID       uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID        uuid.UUID `db:"doctor_id" json:"doctor_id"`
	TimeSlotID      uuid.UUID `db:"time_slot_id" json:"time_slot_id"`
	AppointmentDate time.Time `db:"appointment_date" json:"appointment_date"`
	IsActive        bool      `db:"is_active" json:"is_active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// AppointmentDetail is an appointment joined with the patient's name, used by
// the doctor-facing appointment lists.
type AppointmentDetail struct {
	Appointment
	PatientName string `db:"patient_name" json:"patient_name"`
}
