package prescription

import (
	"time"

	"github.com/google/uuid"
)

// Prescription is a medication order issued by a doctor for a patient.
// Frequency is doses per day and Duration is the course length in days.
type Prescription struct {
	ID             uuid.UUID `json:"id" db:"id"`
	PatientID      uuid.UUID `json:"patient_id" db:"patient_id"`
	DoctorID       uuid.UUID `json:"doctor_id" db:"doctor_id"`
	MedicationName string    `json:"medication_name" db:"medication_name"`
	Dosage         string    `json:"dosage" db:"dosage"`
	Frequency      int       `json:"frequency" db:"frequency"`
	Duration       int       `json:"duration" db:"duration"`
	Instructions   *string   `json:"instructions,omitempty" db:"instructions"`
	IsActive       bool      `json:"is_active" db:"is_active"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}
