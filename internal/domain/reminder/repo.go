package reminder

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/carechat/carechat/pkg/timeofday"
)

// Repository provides access to reminder records.
type Repository interface {
	CreateBatch(ctx context.Context, reminders []*Reminder) error
	// ListByPrescription returns the prescription's reminders in creation
	// order, which activation relies on to assign dose dates.
	ListByPrescription(ctx context.Context, prescriptionID uuid.UUID) ([]*Reminder, error)
	// ListByPrescriptionDateOrdered returns the reminders ordered by their
	// assigned date, used when restriping dose times.
	ListByPrescriptionDateOrdered(ctx context.Context, prescriptionID uuid.UUID) ([]*Reminder, error)
	// Activate assigns the dose date and flips the reminder to active.
	Activate(ctx context.Context, id uuid.UUID, date time.Time) error
	UpdateTime(ctx context.Context, id uuid.UUID, t timeofday.TimeOfDay) error
	// DeleteDue removes every active reminder due at or before now and
	// returns the medication name of each deleted reminder's prescription.
	DeleteDue(ctx context.Context, now time.Time) ([]string, error)
}
