package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/carechat/carechat/internal/domain/directory"
)

// ErrSlotUnavailable is returned when a booking targets a slot that is
// missing or already booked.
var ErrSlotUnavailable = errors.New("time slot is not available")

// Notifier pushes a message to a doctor's live notification channels.
type Notifier interface {
	NotifyDoctor(doctorID uuid.UUID, message string)
}

// PatientLookup resolves patient records for notification messages.
type PatientLookup interface {
	GetPatient(ctx context.Context, id uuid.UUID) (*directory.Patient, error)
}

// TxRunner executes fn inside a database transaction.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

type Service struct {
	slots        TimeSlotRepository
	appointments AppointmentRepository
	patients     PatientLookup
	notifier     Notifier
	runTx        TxRunner
	logger       zerolog.Logger
}

func NewService(slots TimeSlotRepository, appts AppointmentRepository, patients PatientLookup, notifier Notifier, runTx TxRunner, logger zerolog.Logger) *Service {
	return &Service{
		slots:        slots,
		appointments: appts,
		patients:     patients,
		notifier:     notifier,
		runTx:        runTx,
		logger:       logger,
	}
}

// -- Time Slot --

var validSlotStatuses = map[string]bool{
	SlotAvailable: true, SlotBooked: true,
}

func (s *Service) CreateTimeSlot(ctx context.Context, sl *TimeSlot) error {
	if sl.DoctorID == uuid.Nil {
		return fmt.Errorf("doctor_id is required")
	}
	if sl.StartTime.IsZero() {
		return fmt.Errorf("start_time is required")
	}
	if sl.EndTime.IsZero() {
		return fmt.Errorf("end_time is required")
	}
	if !sl.EndTime.After(sl.StartTime) {
		return fmt.Errorf("end_time must be after start_time")
	}
	if sl.Status == "" {
		sl.Status = SlotAvailable
	}
	if !validSlotStatuses[sl.Status] {
		return fmt.Errorf("invalid time slot status: %s", sl.Status)
	}
	return s.slots.Create(ctx, sl)
}

func (s *Service) GetTimeSlot(ctx context.Context, id uuid.UUID) (*TimeSlot, error) {
	return s.slots.GetByID(ctx, id)
}

func (s *Service) DeleteTimeSlot(ctx context.Context, id uuid.UUID) error {
	return s.slots.Delete(ctx, id)
}

func (s *Service) ListTimeSlotsByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*TimeSlot, int, error) {
	return s.slots.ListByDoctor(ctx, doctorID, limit, offset)
}

// AvailableSlots returns the doctor's open slots ordered by start time.
func (s *Service) AvailableSlots(ctx context.Context, doctorID uuid.UUID) ([]*TimeSlot, error) {
	return s.slots.ListAvailableByDoctor(ctx, doctorID)
}

// -- Appointment --

// BookAppointment claims the slot for the patient and creates an active
// appointment dated today, both within one transaction. The doctor's live
// channels are notified after the booking commits; a failed patient lookup
// only skips the notification.
func (s *Service) BookAppointment(ctx context.Context, patientID, doctorID, slotID uuid.UUID) (*Appointment, error) {
	appt := &Appointment{
		PatientID:       patientID,
		DoctorID:        doctorID,
		TimeSlotID:      slotID,
		AppointmentDate: truncateToDay(time.Now()),
		IsActive:        true,
	}

	err := s.runTx(ctx, func(ctx context.Context) error {
		claimed, err := s.slots.Claim(ctx, slotID, patientID)
		if err != nil {
			return err
		}
		if !claimed {
			return ErrSlotUnavailable
		}
		return s.appointments.Create(ctx, appt)
	})
	if err != nil {
		return nil, err
	}

	s.notifyBooking(ctx, appt)
	return appt, nil
}

func (s *Service) notifyBooking(ctx context.Context, appt *Appointment) {
	patient, err := s.patients.GetPatient(ctx, appt.PatientID)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("patient_id", appt.PatientID.String()).
			Msg("booking notification skipped: patient lookup failed")
		return
	}
	message := fmt.Sprintf("A new appointment has been booked for %s on %s.",
		patient.FullName(), appt.AppointmentDate.Format("2006-01-02"))
	s.notifier.NotifyDoctor(appt.DoctorID, message)
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

// LatestInactiveAppointment returns the patient's most recent inactive
// appointment, or nil when none exists.
func (s *Service) LatestInactiveAppointment(ctx context.Context, patientID uuid.UUID) (*Appointment, error) {
	appt, err := s.appointments.LatestInactiveByPatient(ctx, patientID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return appt, nil
}

// MarkAppointmentInactive deactivates the appointment and deletes the
// doctor's oldest time slot, freeing capacity for a new one.
func (s *Service) MarkAppointmentInactive(ctx context.Context, id uuid.UUID) error {
	return s.runTx(ctx, func(ctx context.Context) error {
		appt, err := s.appointments.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.appointments.SetActive(ctx, id, false); err != nil {
			return err
		}
		return s.slots.DeleteOldestByDoctor(ctx, appt.DoctorID)
	})
}

// ListDoctorAppointments returns a doctor's appointments joined with patient
// names, filtered by active flag and an optional patient-name search.
func (s *Service) ListDoctorAppointments(ctx context.Context, doctorID uuid.UUID, active bool, patientSearch, sortOrder string, limit, offset int) ([]*AppointmentDetail, int, error) {
	if sortOrder != "asc" && sortOrder != "desc" && sortOrder != "" {
		return nil, 0, fmt.Errorf("invalid sort_order: %s", sortOrder)
	}
	return s.appointments.ListByDoctor(ctx, doctorID, active, patientSearch, sortOrder, limit, offset)
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
