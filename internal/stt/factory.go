package stt

import (
	"fmt"
	"log"

	"voicecounsel/internal/config"
)

// CreateProvider creates an STT provider based on configuration.
func CreateProvider(cfg *config.Config, keys KeyResolver) (Provider, error) {
	switch cfg.STTProvider {
	case "openai":
		log.Printf("[STT Factory] Creating OpenAI Whisper provider")
		return NewOpenAIProvider(keys), nil
	case "google":
		return createGoogleProvider(cfg)
	default:
		return nil, fmt.Errorf("unsupported STT provider: %s. Supported: openai, google", cfg.STTProvider)
	}
}

func createGoogleProvider(cfg *config.Config) (Provider, error) {
	if cfg.GoogleSTTKeyFile == "" {
		return nil, fmt.Errorf("GOOGLE_STT_KEY_FILE environment variable is not set")
	}

	log.Printf("[STT Factory] Creating Google STT provider")
	return NewGoogleProvider(cfg.GoogleSTTProjectID, cfg.GoogleSTTKeyFile)
}
