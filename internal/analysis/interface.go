// Package analysis wraps the LLM chat completion used to turn a
// counseling transcript into markdown report documents.
package analysis

import "context"

// KeyResolver looks up the active API key for a service, typically
// backed by the settings table. ok=false means no override is
// configured and the provider should fall back to its environment key.
type KeyResolver func(ctx context.Context, name string) (string, bool)

// Analyzer defines the interface for LLM analysis providers.
type Analyzer interface {
	// Complete runs one chat completion with the template as the
	// system instruction and the transcript as the user content, and
	// returns the generated markdown.
	Complete(ctx context.Context, systemPrompt, userText string) (string, error)

	// Name returns the name of the provider (e.g. "openai", "gemini").
	Name() string
}
