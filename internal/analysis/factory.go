package analysis

import (
	"fmt"
	"log"

	"voicecounsel/internal/config"
)

// CreateAnalyzer creates an LLM analyzer based on configuration.
func CreateAnalyzer(cfg *config.Config, keys KeyResolver) (Analyzer, error) {
	switch cfg.AnalysisProvider {
	case "openai":
		log.Printf("[Analysis Factory] Creating OpenAI analyzer")
		return NewOpenAIAnalyzer(keys), nil
	case "gemini":
		log.Printf("[Analysis Factory] Creating Gemini analyzer")
		return NewGeminiAnalyzer(keys), nil
	default:
		return nil, fmt.Errorf("unsupported analysis provider: %s. Supported: openai, gemini", cfg.AnalysisProvider)
	}
}
