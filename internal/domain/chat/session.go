package chat

import (
	"github.com/google/uuid"

	"github.com/carechat/carechat/internal/domain/directory"
)

// Stage identifies where the conversation currently is. Any stage without a
// dedicated handler falls through to the general path.
type Stage string

const (
	StageInitial                    Stage = "initial"
	StageGeneral                    Stage = "general"
	StageAwaitingDoctorSelection    Stage = "awaiting_doctor_selection"
	StageAwaitingSlotSelection      Stage = "awaiting_slot_selection"
	StageCheckInactiveAppointments  Stage = "check_inactive_appointments"
	StageWaitingForExit             Stage = "waiting_for_exit"
	StageActivateReminders          Stage = "activate_reminders"
	StageUpdateReminderPrompt       Stage = "update_reminder_prompt"
	StageCollectNewReminderTimes    Stage = "collect_new_reminder_times"
	StageReset                      Stage = "reset"
)

// PendingPrescription is a queued prescription awaiting reminder activation.
type PendingPrescription struct {
	ID             uuid.UUID
	MedicationName string
}

// session holds the dialogue state. There is one session for the whole
// process, guarded by the service mutex, matching the single shared
// conversation the bot has always run with.
type session struct {
	stage          Stage
	doctors        []*directory.Doctor
	selectedDoctor *directory.Doctor
	pending        []PendingPrescription
	prescriptionID uuid.UUID
}

func newSession() session {
	return session{stage: StageInitial}
}

// resetBooking clears the doctor-selection fields but keeps any in-flight
// prescription work, matching the reset command's behavior.
func (s *session) resetBooking() {
	s.stage = StageGeneral
	s.doctors = nil
	s.selectedDoctor = nil
}

// clear wipes everything, used when the user exits the prescription flow.
func (s *session) clear() {
	*s = session{stage: StageReset}
}
