package reminder

import (
	"time"

	"github.com/google/uuid"

	"github.com/carechat/carechat/pkg/timeofday"
)

// Reminder statuses. Reminders are created inactive and dateless; activation
// assigns the calendar date and flips the status.
const (
	StatusInactive = "INACTIVE"
	StatusActive   = "ACTIVE"
)

// Reminder is a single scheduled medication dose for a prescription.
type Reminder struct {
	ID             uuid.UUID           `json:"id" db:"id"`
	PrescriptionID uuid.UUID           `json:"prescription_id" db:"prescription_id"`
	Time           timeofday.TimeOfDay `json:"reminder_time" db:"reminder_time"`
	Date           *time.Time          `json:"reminder_date,omitempty" db:"reminder_date"`
	Status         string              `json:"status" db:"status"`
	CreatedAt      time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at" db:"updated_at"`
}
