package prescription

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ReminderScheduler creates the inactive reminder rows for a freshly issued
// prescription. Implemented by the reminder service.
type ReminderScheduler interface {
	ScheduleReminders(ctx context.Context, prescriptionID uuid.UUID, frequency, duration int) error
}

type Service struct {
	repo      Repository
	scheduler ReminderScheduler
	logger    zerolog.Logger
}

func NewService(repo Repository, scheduler ReminderScheduler, logger zerolog.Logger) *Service {
	return &Service{repo: repo, scheduler: scheduler, logger: logger}
}

const (
	maxFrequency = 3
	maxDuration  = 30
)

func (s *Service) Create(ctx context.Context, p *Prescription) error {
	if p.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if p.DoctorID == uuid.Nil {
		return fmt.Errorf("doctor_id is required")
	}
	if p.MedicationName == "" {
		return fmt.Errorf("medication_name is required")
	}
	if p.Dosage == "" {
		return fmt.Errorf("dosage is required")
	}
	if p.Frequency < 1 || p.Frequency > maxFrequency {
		return fmt.Errorf("frequency must be between 1 and %d doses per day", maxFrequency)
	}
	if p.Duration < 1 || p.Duration > maxDuration {
		return fmt.Errorf("duration must be between 1 and %d days", maxDuration)
	}
	p.IsActive = true

	if err := s.repo.Create(ctx, p); err != nil {
		return err
	}
	// The prescription stays active until its reminders are activated through
	// the chat flow, so a scheduling failure must not roll back the record.
	if err := s.scheduler.ScheduleReminders(ctx, p.ID, p.Frequency, p.Duration); err != nil {
		s.logger.Error().Err(err).
			Str("prescription_id", p.ID.String()).
			Msg("failed to schedule reminders for prescription")
		return fmt.Errorf("prescription created but reminder scheduling failed: %w", err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListByPatientAndDoctor(ctx context.Context, patientID, doctorID uuid.UUID) ([]*Prescription, error) {
	return s.repo.ListByPatientAndDoctor(ctx, patientID, doctorID)
}

// PendingReminderActivation returns the patient's prescriptions from the
// doctor that are still active and have no active reminder.
func (s *Service) PendingReminderActivation(ctx context.Context, patientID, doctorID uuid.UUID) ([]*Prescription, error) {
	return s.repo.PendingReminderActivation(ctx, patientID, doctorID)
}

func (s *Service) MarkInactive(ctx context.Context, id uuid.UUID) error {
	return s.repo.MarkInactive(ctx, id)
}
