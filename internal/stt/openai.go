package stt

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements STT using the OpenAI Whisper API.
type OpenAIProvider struct {
	keys KeyResolver
}

// NewOpenAIProvider creates a Whisper STT provider. keys may be nil;
// the OPENAI_API_KEY environment variable is used as fallback.
func NewOpenAIProvider(keys KeyResolver) *OpenAIProvider {
	return &OpenAIProvider{keys: keys}
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Transcribe sends audio bytes to the Whisper API and returns the
// transcript.
func (p *OpenAIProvider) Transcribe(ctx context.Context, audio []byte, language string) (*Result, error) {
	startTime := time.Now()

	if len(audio) < 1000 {
		return nil, fmt.Errorf("audio file too small (%d bytes), may be empty or corrupted", len(audio))
	}

	apiKey := p.apiKey(ctx)
	if apiKey == "" {
		return nil, fmt.Errorf("no OpenAI API key configured (settings table or OPENAI_API_KEY)")
	}

	// A fresh client per call so API keys rotated through the admin
	// settings take effect without a restart.
	client := openai.NewClient(apiKey)

	resp, err := client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		Reader:   bytes.NewReader(audio),
		FilePath: "audio" + sniffExtension(audio),
		Language: language,
	})
	if err != nil {
		log.Printf("[OpenAI STT] API error: %v", err)
		return nil, fmt.Errorf("Whisper API error: %w", err)
	}

	transcript := strings.TrimSpace(resp.Text)
	if transcript == "" {
		log.Printf("[OpenAI STT] Empty transcript returned")
		return nil, fmt.Errorf("no speech detected in audio")
	}

	log.Printf("[OpenAI STT] Transcription successful: length=%d, duration=%v",
		len(transcript), time.Since(startTime))

	return &Result{
		Transcript: transcript,
		Provider:   p.Name(),
	}, nil
}

func (p *OpenAIProvider) apiKey(ctx context.Context) string {
	if p.keys != nil {
		if key, ok := p.keys(ctx, "openai"); ok && key != "" {
			return key
		}
	}
	return os.Getenv("OPENAI_API_KEY")
}
