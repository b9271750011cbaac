package model

import "time"

// Setting scopes. Every settings row is addressed by (scope, key).
const (
	ScopeAPIKey = "api_key"
	ScopePrompt = "prompt"
)

// Prompt template keys.
const (
	PromptServiceEvaluation = "service_evaluation"
	PromptCustomerConcerns  = "customer_concerns"
)

// API key service names.
const (
	ServiceOpenAI    = "openai"
	ServiceGemini    = "gemini"
	ServiceGoogleSTT = "google_stt"
)

// Setting is one configuration row: an API key for a third-party
// service or a prompt template used by the analysis step.
type Setting struct {
	Scope     string    `json:"scope"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	IsActive  bool      `json:"is_active"`
	UpdatedAt time.Time `json:"updated_at"`
}
