package analysis

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiAnalyzer implements Analyzer using the Google Gemini API.
type GeminiAnalyzer struct {
	keys  KeyResolver
	model string
}

// NewGeminiAnalyzer creates a Gemini analyzer. keys may be nil; the
// GEMINI_API_KEY environment variable is used as fallback.
func NewGeminiAnalyzer(keys KeyResolver) *GeminiAnalyzer {
	return &GeminiAnalyzer{
		keys:  keys,
		model: "gemini-1.5-flash",
	}
}

// Name returns the provider name.
func (a *GeminiAnalyzer) Name() string {
	return "gemini"
}

// Complete runs one generation and returns the response text.
func (a *GeminiAnalyzer) Complete(ctx context.Context, systemPrompt, userText string) (string, error) {
	apiKey := a.apiKey(ctx)
	if apiKey == "" {
		return "", fmt.Errorf("no Gemini API key configured (settings table or GEMINI_API_KEY)")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return "", fmt.Errorf("failed to create Gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(a.model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}

	startTime := time.Now()
	resp, err := model.GenerateContent(ctx, genai.Text(userText))
	if err != nil {
		log.Printf("[Gemini Analysis] API error: %v", err)
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("Gemini returned no candidates")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}

	content := strings.TrimSpace(b.String())
	if content == "" {
		return "", fmt.Errorf("Gemini returned an empty completion")
	}

	log.Printf("[Gemini Analysis] Completion received: length=%d, duration=%v",
		len(content), time.Since(startTime))

	return content, nil
}

func (a *GeminiAnalyzer) apiKey(ctx context.Context) string {
	if a.keys != nil {
		if key, ok := a.keys(ctx, "gemini"); ok && key != "" {
			return key
		}
	}
	return os.Getenv("GEMINI_API_KEY")
}
