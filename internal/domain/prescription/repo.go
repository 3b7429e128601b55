package prescription

import (
	"context"

	"github.com/google/uuid"
)

// Repository provides access to prescription records.
type Repository interface {
	Create(ctx context.Context, p *Prescription) error
	GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Prescription, int, error)
	ListByPatientAndDoctor(ctx context.Context, patientID, doctorID uuid.UUID) ([]*Prescription, error)
	// PendingReminderActivation returns the patient's active prescriptions from
	// the given doctor that have no active reminder yet.
	PendingReminderActivation(ctx context.Context, patientID, doctorID uuid.UUID) ([]*Prescription, error)
	// MarkInactive clears is_active. Returns pgx.ErrNoRows when the id does
	// not exist.
	MarkInactive(ctx context.Context, id uuid.UUID) error
}
