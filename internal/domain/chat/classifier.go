package chat

import (
	"context"
	"strings"
)

// Intent is the classifier's verdict on a general-stage utterance. Response
// carries the conversational text; SuggestDoctor and CheckPrescriptions steer
// the state machine.
type Intent struct {
	Response           string `json:"response"`
	SuggestDoctor      bool   `json:"suggest_doctor"`
	Specialization     string `json:"specialization"`
	CheckPrescriptions bool   `json:"check_prescriptions"`
}

// IntentClassifier interprets free-form patient messages.
type IntentClassifier interface {
	Classify(ctx context.Context, utterance string) (*Intent, error)
}

// KeywordClassifier is a deterministic fallback used when no OpenAI key is
// configured, and in tests. It maps symptom keywords to specializations and
// recognizes prescription queries.
type KeywordClassifier struct{}

func NewKeywordClassifier() *KeywordClassifier { return &KeywordClassifier{} }

var prescriptionKeywords = []string{"prescription", "reminder", "medication", "medicine"}

var specializationKeywords = []struct {
	keyword        string
	specialization string
}{
	{"skin", "Dermatology"},
	{"rash", "Dermatology"},
	{"acne", "Dermatology"},
	{"heart", "Cardiology"},
	{"chest pain", "Cardiology"},
	{"tooth", "Dentistry"},
	{"teeth", "Dentistry"},
	{"bone", "Orthopedics"},
	{"joint", "Orthopedics"},
	{"fracture", "Orthopedics"},
	{"child", "Pediatrics"},
	{"eye", "Ophthalmology"},
	{"vision", "Ophthalmology"},
	{"stomach", "Gastroenterology"},
	{"headache", "Neurology"},
	{"migraine", "Neurology"},
	{"fever", "General Medicine"},
	{"cold", "General Medicine"},
	{"cough", "General Medicine"},
	{"doctor", "General Medicine"},
	{"appointment", "General Medicine"},
}

func (k *KeywordClassifier) Classify(_ context.Context, utterance string) (*Intent, error) {
	msg := strings.ToLower(utterance)

	for _, kw := range prescriptionKeywords {
		if strings.Contains(msg, kw) {
			return &Intent{CheckPrescriptions: true}, nil
		}
	}
	for _, m := range specializationKeywords {
		if strings.Contains(msg, m.keyword) {
			return &Intent{
				Response:       "I'm sorry to hear that. Let me help you find a suitable doctor.",
				SuggestDoctor:  true,
				Specialization: m.specialization,
			}, nil
		}
	}
	return &Intent{
		Response: "Hello! I can help you book an appointment with a doctor or manage your medication reminders.",
	}, nil
}
