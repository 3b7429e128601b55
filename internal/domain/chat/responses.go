package chat

import "strings"

// Dialogue copy. Templates use {name} placeholders filled by fill; the text is
// kept word-for-word from the production bot, typos included.
const (
	respNoAvailableSlots      = "Unfortunately, there are no available time slots for Dr. {doctor_name} at the moment. Let me find other doctors for you."
	respOtherDoctorsAvailable = "Here are other doctors you can choose from:\n{doctor_list}\n\nPlease enter the full name of the doctor you would like to select, or type 'reset' to start over."
	respNoOtherDoctors        = "Unfortunately, there are no other doctors available at the moment. You can type 'reset' or 'start over' at any time to begin a new conversation."
	respAvailableSlots        = "Here are the available time slots for Dr. {doctor_name}:\n\n{slots_list}\n\nPlease enter the number corresponding to the slot you would like to book. You can also type 'reset' or 'start over' at any time to begin a new conversation."
	respDoctorNotFound        = "I couldn't find the doctor you mentioned. Please enter the full name of the doctor you want to select, or type 'reset' to ask another question."
	respNewConversation       = "The conversation has been reset. You can start by asking a new question."

	respAppointmentBooked    = "Your appointment with Dr. {doctor_name} has been successfully booked for {start_time} - {end_time}. \n\nYou can ask any time about your prescription. If prescriptions are available, I can help you activate medication reminders. If no prescriptions are entered yet, I'll let you know.\nFor furthur queries you can contact here {email}.\nYou can type 'reset' or 'start over' at any time to begin a new conversation."
	respInvalidSlotSelection = "The selected time slot is not available. Please enter a valid number corresponding to the slot, or type 'reset' to start over."
	respInvalidInput         = "Invalid input. Please enter a valid number corresponding to the time slot, or type 'reset' to start over."

	respPrescriptionsFound                = "I found the following prescriptions:\n{prescription_list}\nWould you like to activate reminders for any of them? (Yes/No)"
	respActivePrescriptionsHaveReminders  = "All your active prescriptions already have active reminders."
	respNoNewPrescriptions                = "It appears that your doctor hasn't entered any new prescriptions for you at the moment."
	respNoPrescriptions                   = "It appears that your doctor hasn't entered any prescriptions for you at the moment."

	respConfirmExit                 = "Understood. Is there anything else I can help you with?"
	respGenericUnrecognizedResponse = "I'm sorry, I didn't understand that. If you're done, you can say 'okay' or 'exit'. Is there anything else I can help you with?"

	respRemindersActivated     = "Reminders for {medication_name} have been activated for: {reminder_times}.\nWould you like to update the reminder times? (Yes/No)"
	respIssueActivating        = "I'm sorry, there was an issue activating your reminders for {medication_name}: {error_detail}"
	respNextPrescriptionPrompt = "Next prescription: {medication_name}. Would you like to activate reminders for this prescription? (Yes/No)"
	respAllRemindersActive     = "All reminders have already been activated."
	respNoRemindersActivated   = "No reminders have been activated."

	respRequestNewTimes = "Please provide the new times for your reminders. You can specify them in the format 'HH:MM AM/PM', separated by commas. For example: '09:00 AM, 01:00 PM, 06:00 PM'."

	respExitUnrecognizedResponse = "I didn't understand that. Please answer with 'ok' or 'exit'."

	respUpdateSuccess             = "Reminder times have been updated to: {formatted_times} (24-hour format).\n\nNext prescription: {medication_name}. Would you like to activate reminders for this prescription? (Yes/No)"
	respAllPrescriptionsProcessed = "Reminder times have been updated to: {formatted_times}.\nAll prescriptions have been processed."
	respFindingPrescriptionError  = "Sorry, there was an issue finding your prescription."
	respProcessingError           = "There was an error processing the new times. Please try again using the format 'HH:MM AM/PM'."

	respDialogueFailure = "Failed to communicate with the chatbot."
)

// fill substitutes {key} placeholders; pairs alternate key, value.
func fill(template string, pairs ...string) string {
	replacements := make([]string, 0, len(pairs))
	for i := 0; i+1 < len(pairs); i += 2 {
		replacements = append(replacements, "{"+pairs[i]+"}", pairs[i+1])
	}
	return strings.NewReplacer(replacements...).Replace(template)
}
