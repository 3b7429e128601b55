package chat

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const classifierPrompt = `You are the intent classifier for a hospital scheduling assistant.
Given a patient's message, respond with a JSON object containing exactly these fields:
  "response": a short, friendly reply to the patient,
  "suggest_doctor": true when the patient describes symptoms or asks to see a doctor,
  "specialization": the medical specialization matching the symptoms (empty when suggest_doctor is false),
  "check_prescriptions": true when the patient asks about prescriptions or medication reminders.
Never set both suggest_doctor and check_prescriptions.`

// OpenAIClassifier interprets messages with an OpenAI chat completion
// constrained to a JSON verdict.
type OpenAIClassifier struct {
	client *openai.Client
	model  string
}

// NewOpenAIClassifier constructs an OpenAI-backed classifier. An empty model
// falls back to gpt-4o-mini.
func NewOpenAIClassifier(apiKey, model string) *OpenAIClassifier {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIClassifier{client: openai.NewClient(apiKey), model: model}
}

func (c *OpenAIClassifier) Classify(ctx context.Context, utterance string) (*Intent, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: classifierPrompt},
			{Role: openai.ChatMessageRoleUser, Content: utterance},
		},
		Temperature: 0.2,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("intent classification: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("intent classification: empty completion")
	}

	var intent Intent
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &intent); err != nil {
		return nil, fmt.Errorf("intent classification: malformed verdict: %w", err)
	}
	return &intent, nil
}
