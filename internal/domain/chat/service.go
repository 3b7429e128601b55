package chat

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carechat/carechat/internal/domain/directory"
	"github.com/carechat/carechat/internal/domain/prescription"
	"github.com/carechat/carechat/internal/domain/reminder"
	"github.com/carechat/carechat/internal/domain/scheduling"
	"github.com/carechat/carechat/pkg/timeofday"
)

// DoctorDirectory finds candidate doctors for a symptom.
type DoctorDirectory interface {
	FindDoctorsBySpecialization(ctx context.Context, specialization string) ([]*directory.Doctor, error)
}

// Scheduler exposes the booking operations the dialogue drives.
type Scheduler interface {
	AvailableSlots(ctx context.Context, doctorID uuid.UUID) ([]*scheduling.TimeSlot, error)
	BookAppointment(ctx context.Context, patientID, doctorID, slotID uuid.UUID) (*scheduling.Appointment, error)
	LatestInactiveAppointment(ctx context.Context, patientID uuid.UUID) (*scheduling.Appointment, error)
}

// PrescriptionStore exposes the prescription lookups the dialogue needs.
type PrescriptionStore interface {
	ListByPatientAndDoctor(ctx context.Context, patientID, doctorID uuid.UUID) ([]*prescription.Prescription, error)
	PendingReminderActivation(ctx context.Context, patientID, doctorID uuid.UUID) ([]*prescription.Prescription, error)
	MarkInactive(ctx context.Context, id uuid.UUID) error
}

// ReminderManager activates and re-times medication reminders.
type ReminderManager interface {
	ActivateForPrescription(ctx context.Context, prescriptionID uuid.UUID) ([]*reminder.Reminder, error)
	UpdateReminderTimes(ctx context.Context, prescriptionID uuid.UUID, times []timeofday.TimeOfDay) error
}

// Reply is a single chatbot turn's output.
type Reply struct {
	Response string              `json:"response"`
	Doctors  []*directory.Doctor `json:"doctors,omitempty"`
}

var (
	resetCommands = map[string]bool{"reset": true, "start over": true}
	exitWords     = map[string]bool{"ok": true, "okay": true, "fine": true, "thanks": true, "exit": true, "no": true}
	affirmatives  = map[string]bool{"yes": true, "yeah": true, "yup": true, "sure": true, "ok": true, "alright": true, "go ahead": true}
	negatives     = map[string]bool{"no": true, "nope": true, "not now": true, "nah": true, "never mind": true}
)

// Service runs the conversational state machine. One shared session serves
// the whole process; the mutex serializes turns.
type Service struct {
	classifier    IntentClassifier
	doctors       DoctorDirectory
	scheduler     Scheduler
	prescriptions PrescriptionStore
	reminders     ReminderManager
	logger        zerolog.Logger

	mu   sync.Mutex
	sess session
}

func NewService(classifier IntentClassifier, doctors DoctorDirectory, scheduler Scheduler,
	prescriptions PrescriptionStore, reminders ReminderManager, logger zerolog.Logger) *Service {
	return &Service{
		classifier:    classifier,
		doctors:       doctors,
		scheduler:     scheduler,
		prescriptions: prescriptions,
		reminders:     reminders,
		logger:        logger,
		sess:          newSession(),
	}
}

// Stage returns the current conversation stage.
func (s *Service) Stage() Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess.stage
}

// HandleTurn processes one patient message and advances the conversation.
func (s *Service) HandleTurn(ctx context.Context, patientID uuid.UUID, message string) (*Reply, error) {
	msg := strings.ToLower(strings.TrimSpace(message))

	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Info().Str("stage", string(s.sess.stage)).Str("message", msg).Msg("chat turn")

	if resetCommands[msg] {
		s.sess.resetBooking()
		return &Reply{Response: respNewConversation}, nil
	}

	switch s.sess.stage {
	case StageAwaitingDoctorSelection:
		return s.handleDoctorSelection(ctx, msg)
	case StageAwaitingSlotSelection:
		return s.handleSlotSelection(ctx, msg, patientID)
	case StageCheckInactiveAppointments:
		return s.checkInactiveAppointments(ctx, patientID)
	case StageWaitingForExit:
		return s.handleExit(msg)
	case StageActivateReminders:
		return s.handleActivateReminders(ctx, msg)
	case StageUpdateReminderPrompt:
		return s.handleUpdatePrompt(msg)
	case StageCollectNewReminderTimes:
		return s.collectNewReminderTimes(ctx, msg)
	default:
		return s.handleGeneral(ctx, msg, patientID)
	}
}

func (s *Service) handleDoctorSelection(ctx context.Context, msg string) (*Reply, error) {
	for _, doc := range s.sess.doctors {
		if msg != strings.ToLower(doc.FullName()) {
			continue
		}

		slots, err := s.scheduler.AvailableSlots(ctx, doc.ID)
		if err != nil {
			return nil, err
		}
		if len(slots) == 0 {
			return s.suggestOtherDoctors(ctx, doc)
		}

		lines := make([]string, len(slots))
		for i, sl := range slots {
			lines[i] = fmt.Sprintf("%d. %s - %s", i+1, clock(sl.StartTime), clock(sl.EndTime))
		}
		s.sess.stage = StageAwaitingSlotSelection
		s.sess.selectedDoctor = doc
		return &Reply{Response: fill(respAvailableSlots,
			"doctor_name", doc.FullName(),
			"slots_list", strings.Join(lines, "\n"))}, nil
	}
	return &Reply{Response: respDoctorNotFound}, nil
}

// suggestOtherDoctors answers a selection whose doctor has no open slots by
// scanning the other staged candidates for availability. The stage and staged
// doctors stay put so the patient can pick again.
func (s *Service) suggestOtherDoctors(ctx context.Context, selected *directory.Doctor) (*Reply, error) {
	noSlots := fill(respNoAvailableSlots, "doctor_name", selected.FullName())

	var others []string
	for _, doc := range s.sess.doctors {
		if doc.ID == selected.ID {
			continue
		}
		slots, err := s.scheduler.AvailableSlots(ctx, doc.ID)
		if err != nil {
			return nil, err
		}
		if len(slots) > 0 {
			others = append(others, "Dr. "+doc.FullName())
		}
	}

	if len(others) > 0 {
		return &Reply{Response: noSlots + "\n\n" +
			fill(respOtherDoctorsAvailable, "doctor_list", strings.Join(others, "\n"))}, nil
	}
	return &Reply{Response: noSlots + "\n\n" + respNoOtherDoctors}, nil
}

func (s *Service) handleSlotSelection(ctx context.Context, msg string, patientID uuid.UUID) (*Reply, error) {
	choice, err := strconv.Atoi(msg)
	if err != nil {
		return &Reply{Response: respInvalidInput}, nil
	}
	idx := choice - 1

	slots, err := s.scheduler.AvailableSlots(ctx, s.sess.selectedDoctor.ID)
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(slots) {
		return &Reply{Response: respInvalidSlotSelection}, nil
	}
	slot := slots[idx]

	if _, err := s.scheduler.BookAppointment(ctx, patientID, s.sess.selectedDoctor.ID, slot.ID); err != nil {
		return nil, err
	}

	doc := s.sess.selectedDoctor
	s.sess.stage = StageGeneral
	s.sess.selectedDoctor = nil
	return &Reply{Response: fill(respAppointmentBooked,
		"doctor_name", doc.FullName(),
		"start_time", clock(slot.StartTime),
		"end_time", clock(slot.EndTime),
		"email", doc.Email)}, nil
}

func (s *Service) checkInactiveAppointments(ctx context.Context, patientID uuid.UUID) (*Reply, error) {
	appt, err := s.scheduler.LatestInactiveAppointment(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if appt == nil {
		s.sess.stage = StageWaitingForExit
		return &Reply{Response: respNoPrescriptions}, nil
	}

	all, err := s.prescriptions.ListByPatientAndDoctor(ctx, appt.PatientID, appt.DoctorID)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		s.sess.stage = StageWaitingForExit
		return &Reply{Response: respNoNewPrescriptions}, nil
	}

	pending, err := s.prescriptions.PendingReminderActivation(ctx, appt.PatientID, appt.DoctorID)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		s.sess.stage = StageWaitingForExit
		return &Reply{Response: respActivePrescriptionsHaveReminders}, nil
	}

	s.sess.stage = StageActivateReminders
	s.sess.pending = s.sess.pending[:0]
	lines := make([]string, len(pending))
	for i, p := range pending {
		s.sess.pending = append(s.sess.pending, PendingPrescription{ID: p.ID, MedicationName: p.MedicationName})
		lines[i] = fmt.Sprintf("%d. %s", i+1, p.MedicationName)
	}
	return &Reply{Response: fill(respPrescriptionsFound,
		"prescription_list", strings.Join(lines, "\n"))}, nil
}

func (s *Service) handleExit(msg string) (*Reply, error) {
	if exitWords[msg] {
		s.sess.clear()
		return &Reply{Response: respConfirmExit}, nil
	}
	return &Reply{Response: respExitUnrecognizedResponse}, nil
}

func (s *Service) handleActivateReminders(ctx context.Context, msg string) (*Reply, error) {
	if !affirmatives[msg] {
		return &Reply{Response: respNoRemindersActivated}, nil
	}

	if len(s.sess.pending) == 0 {
		s.sess.stage = StageGeneral
		return &Reply{Response: respAllRemindersActive}, nil
	}

	current := s.sess.pending[0]
	s.sess.pending = s.sess.pending[1:]

	activated, err := s.reminders.ActivateForPrescription(ctx, current.ID)
	if err != nil {
		if errors.Is(err, reminder.ErrPrescriptionNotFound) || errors.Is(err, reminder.ErrNoReminders) {
			s.sess.stage = StageGeneral
			return &Reply{Response: fill(respIssueActivating,
				"medication_name", current.MedicationName,
				"error_detail", err.Error())}, nil
		}
		return nil, err
	}

	var times []string
	seen := make(map[string]bool)
	for _, rm := range activated {
		t := rm.Time.Clock()
		if !seen[t] {
			seen[t] = true
			times = append(times, t)
		}
	}

	if err := s.prescriptions.MarkInactive(ctx, current.ID); err != nil {
		s.logger.Warn().Err(err).
			Str("prescription_id", current.ID.String()).
			Msg("failed to mark prescription inactive")
	}

	s.sess.stage = StageUpdateReminderPrompt
	s.sess.prescriptionID = current.ID
	return &Reply{Response: fill(respRemindersActivated,
		"medication_name", current.MedicationName,
		"reminder_times", strings.Join(times, ", "))}, nil
}

func (s *Service) handleUpdatePrompt(msg string) (*Reply, error) {
	switch {
	case affirmatives[msg]:
		s.sess.stage = StageCollectNewReminderTimes
		return &Reply{Response: respRequestNewTimes}, nil
	case negatives[msg]:
		if len(s.sess.pending) > 0 {
			s.sess.stage = StageActivateReminders
			return &Reply{Response: fill(respNextPrescriptionPrompt,
				"medication_name", s.sess.pending[0].MedicationName)}, nil
		}
		s.sess.stage = StageGeneral
		// Declining with nothing left returns the template as-is, matching
		// the original bot's output for this path.
		return &Reply{Response: respAllPrescriptionsProcessed}, nil
	default:
		return &Reply{Response: respGenericUnrecognizedResponse}, nil
	}
}

func (s *Service) collectNewReminderTimes(ctx context.Context, msg string) (*Reply, error) {
	times, err := timeofday.ParseList(msg)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to parse new reminder times")
		return &Reply{Response: respProcessingError}, nil
	}

	if s.sess.prescriptionID == uuid.Nil {
		s.sess.stage = StageGeneral
		return &Reply{Response: respFindingPrescriptionError}, nil
	}

	if err := s.reminders.UpdateReminderTimes(ctx, s.sess.prescriptionID, times); err != nil {
		s.logger.Error().Err(err).
			Str("prescription_id", s.sess.prescriptionID.String()).
			Msg("failed to update reminder times")
		return &Reply{Response: respProcessingError}, nil
	}

	formatted := make([]string, len(times))
	for i, t := range times {
		formatted[i] = t.String()
	}
	joined := strings.Join(formatted, ", ")

	if len(s.sess.pending) > 0 {
		s.sess.stage = StageActivateReminders
		return &Reply{Response: fill(respUpdateSuccess,
			"formatted_times", joined,
			"medication_name", s.sess.pending[0].MedicationName)}, nil
	}
	s.sess.stage = StageGeneral
	return &Reply{Response: fill(respAllPrescriptionsProcessed, "formatted_times", joined)}, nil
}

func (s *Service) handleGeneral(ctx context.Context, msg string, patientID uuid.UUID) (*Reply, error) {
	intent, err := s.classifier.Classify(ctx, msg)
	if err != nil {
		return nil, err
	}

	switch {
	case intent.SuggestDoctor:
		doctors, err := s.doctors.FindDoctorsBySpecialization(ctx, intent.Specialization)
		if err != nil {
			s.logger.Error().Err(err).
				Str("specialization", intent.Specialization).
				Msg("error fetching doctors")
			return &Reply{Response: intent.Response +
				" Unfortunately, no doctors are available at the moment for your concerns. Please consult a healthcare professional if needed."}, nil
		}
		if len(doctors) == 0 {
			return &Reply{Response: fmt.Sprintf(
				"%s However, no doctors were found for the specialization: %s. You can type 'reset' or 'start over' to begin a new conversation.",
				intent.Response, intent.Specialization)}, nil
		}

		lines := make([]string, len(doctors))
		for i, doc := range doctors {
			lines[i] = fmt.Sprintf("Dr. %s %s (%s) | Experience: %d years | Fees: Rs.%g",
				doc.FirstName, doc.LastName, doc.Specialization, doc.YearsOfExperience, doc.ConsultationFee)
		}
		s.sess.stage = StageAwaitingDoctorSelection
		s.sess.doctors = doctors
		return &Reply{
			Response: intent.Response + "\n\nHere are the available doctors:\n" +
				strings.Join(lines, "\n") +
				"\n\nPlease enter the full name of the doctor you want to select, or type 'reset' to start a new conversation.",
			Doctors: doctors,
		}, nil

	case intent.CheckPrescriptions:
		s.sess.stage = StageCheckInactiveAppointments
		return s.checkInactiveAppointments(ctx, patientID)

	default:
		return &Reply{Response: intent.Response +
			" You can type 'reset' or 'start over' to begin a new conversation."}, nil
	}
}

func clock(t time.Time) string {
	return t.Format("03:04 PM")
}
