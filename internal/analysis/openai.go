package analysis

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIAnalyzer implements Analyzer using OpenAI chat completions.
type OpenAIAnalyzer struct {
	keys  KeyResolver
	model string
}

// NewOpenAIAnalyzer creates an OpenAI analyzer. keys may be nil; the
// OPENAI_API_KEY environment variable is used as fallback.
func NewOpenAIAnalyzer(keys KeyResolver) *OpenAIAnalyzer {
	return &OpenAIAnalyzer{
		keys:  keys,
		model: openai.GPT4oMini,
	}
}

// Name returns the provider name.
func (a *OpenAIAnalyzer) Name() string {
	return "openai"
}

// Complete runs one chat completion and returns the response text.
func (a *OpenAIAnalyzer) Complete(ctx context.Context, systemPrompt, userText string) (string, error) {
	apiKey := a.apiKey(ctx)
	if apiKey == "" {
		return "", fmt.Errorf("no OpenAI API key configured (settings table or OPENAI_API_KEY)")
	}

	// A fresh client per call so API keys rotated through the admin
	// settings take effect without a restart.
	client := openai.NewClient(apiKey)

	startTime := time.Now()
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userText,
			},
		},
		Temperature: 0.3, // Low temperature for factual output
	})
	if err != nil {
		log.Printf("[OpenAI Analysis] API error: %v", err)
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("OpenAI returned no choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("OpenAI returned an empty completion")
	}

	log.Printf("[OpenAI Analysis] Completion received: length=%d, tokens=%d, duration=%v",
		len(content), resp.Usage.TotalTokens, time.Since(startTime))

	return content, nil
}

func (a *OpenAIAnalyzer) apiKey(ctx context.Context) string {
	if a.keys != nil {
		if key, ok := a.keys(ctx, "openai"); ok && key != "" {
			return key
		}
	}
	return os.Getenv("OPENAI_API_KEY")
}
