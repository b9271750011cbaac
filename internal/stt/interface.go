package stt

import "context"

// KeyResolver looks up the active API key for a service, typically
// backed by the settings table. ok=false means no override is
// configured and the provider should fall back to its environment key.
type KeyResolver func(ctx context.Context, name string) (string, bool)

// Provider defines the interface for speech-to-text providers.
type Provider interface {
	// Transcribe transcribes audio bytes with the given language hint
	// (BCP-47 primary subtag, e.g. "ja") and returns the result.
	Transcribe(ctx context.Context, audio []byte, language string) (*Result, error)

	// Name returns the name of the provider (e.g. "openai", "google").
	Name() string
}

// Result represents the result of a speech-to-text transcription.
type Result struct {
	Transcript string  // The transcribed text
	Confidence float64 // Confidence score (0.0-1.0), may be 0 if not provided
	Provider   string  // The provider used
}
