package ai

import "encoding/json"

// TicketExtraction is what the vision model pulls out of a receipt photo.
type TicketExtraction struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Category    string  `json:"category"`
	Date        *string `json:"date,omitempty"`
}

// PromptRequest is a raw prompt run against the configured provider.
// Temperature and max tokens fall back to the generation defaults when
// omitted.
type PromptRequest struct {
	Prompt      string   `json:"prompt" validate:"required"`
	Temperature *float64 `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
	MaxTokens   *int     `json:"maxTokens,omitempty" validate:"omitempty,gt=0"`
}

// PromptResponse carries the assistant text for a raw prompt.
type PromptResponse struct {
	OK   bool   `json:"ok"`
	Text string `json:"text"`
}

// RecommendationsResponse carries the generated saving advice. Failures show
// up as advice strings too, so the widget always has something to render.
type RecommendationsResponse struct {
	Recommendations []string `json:"recommendations"`
}

// ModelsResponse relays whatever model list the provider returned.
type ModelsResponse struct {
	OK     bool            `json:"ok"`
	Models json.RawMessage `json:"models,omitempty"`
	Error  string          `json:"error,omitempty"`
}
