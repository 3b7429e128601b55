package scheduling

import (
	"context"

	"github.com/google/uuid"
)

// TimeSlotRepository provides access to time slot records.
type TimeSlotRepository interface {
	Create(ctx context.Context, sl *TimeSlot) error
	GetByID(ctx context.Context, id uuid.UUID) (*TimeSlot, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*TimeSlot, int, error)
	ListAvailableByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*TimeSlot, error)
	// Claim atomically assigns the patient to an available slot and flips it
	// to booked. Returns false when the slot is missing or already booked.
	Claim(ctx context.Context, id, patientID uuid.UUID) (bool, error)
	// DeleteOldestByDoctor removes the doctor's earliest slot by start time.
	// A doctor with no slots is a no-op.
	DeleteOldestByDoctor(ctx context.Context, doctorID uuid.UUID) error
}

// AppointmentRepository provides access to appointment records.
type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	LatestInactiveByPatient(ctx context.Context, patientID uuid.UUID) (*Appointment, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, active bool, patientSearch, sortOrder string, limit, offset int) ([]*AppointmentDetail, int, error)
}
