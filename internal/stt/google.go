package stt

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// GoogleProvider implements STT using Google Cloud Speech-to-Text REST API.
type GoogleProvider struct {
	projectID  string
	apiKey     string
	httpClient *http.Client
	useAPIKey  bool
}

// NewGoogleProvider creates a new Google STT provider.
// keyData can be either:
//   - An API key (39 characters, typically starts with "AIzaSy")
//   - A file path to a JSON key file
//   - A JSON string containing the service account credentials
func NewGoogleProvider(projectID, keyData string) (*GoogleProvider, error) {
	keyDataTrimmed := strings.TrimSpace(keyData)

	if len(keyDataTrimmed) == 39 && strings.HasPrefix(keyDataTrimmed, "AIzaSy") {
		log.Printf("[Google STT] Using API key authentication")
		return &GoogleProvider{
			projectID:  projectID,
			apiKey:     keyDataTrimmed,
			httpClient: &http.Client{Timeout: 90 * time.Second},
			useAPIKey:  true,
		}, nil
	}

	ctx := context.Background()
	var client *http.Client
	var jsonData []byte
	var err error

	if keyDataTrimmed == "" {
		creds, err := google.FindDefaultCredentials(ctx, "https://www.googleapis.com/auth/cloud-platform")
		if err != nil {
			return nil, fmt.Errorf("failed to find default credentials: %w. Please set GOOGLE_STT_KEY_FILE", err)
		}
		client = oauth2.NewClient(ctx, creds.TokenSource)
	} else {
		if strings.HasPrefix(keyDataTrimmed, "{") {
			jsonData = []byte(keyDataTrimmed)
		} else {
			jsonData, err = os.ReadFile(keyDataTrimmed)
			if err != nil {
				return nil, fmt.Errorf("failed to read key file '%s': %w", keyDataTrimmed, err)
			}
		}

		creds, err := google.CredentialsFromJSON(ctx, jsonData, "https://www.googleapis.com/auth/cloud-platform")
		if err != nil {
			return nil, fmt.Errorf("failed to create credentials from JSON: %w", err)
		}
		client = oauth2.NewClient(ctx, creds.TokenSource)
	}

	return &GoogleProvider{
		projectID:  projectID,
		httpClient: client,
		useAPIKey:  false,
	}, nil
}

// Name returns the provider name.
func (p *GoogleProvider) Name() string {
	return "google"
}

type googleSTTRequest struct {
	Config googleSTTConfig `json:"config"`
	Audio  googleSTTAudio  `json:"audio"`
}

type googleSTTConfig struct {
	Encoding                   string `json:"encoding"`
	SampleRateHertz            int    `json:"sampleRateHertz"`
	LanguageCode               string `json:"languageCode"`
	EnableAutomaticPunctuation bool   `json:"enableAutomaticPunctuation"`
	Model                      string `json:"model,omitempty"`
}

type googleSTTAudio struct {
	Content string `json:"content"` // Base64 encoded
}

type googleSTTResponse struct {
	Results []struct {
		Alternatives []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
		} `json:"alternatives"`
	} `json:"results"`
	Error *googleSTTError `json:"error,omitempty"`
}

type googleSTTError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Transcribe transcribes audio bytes using the Speech-to-Text REST API.
func (p *GoogleProvider) Transcribe(ctx context.Context, audio []byte, language string) (*Result, error) {
	startTime := time.Now()

	if len(audio) < 1000 {
		return nil, fmt.Errorf("audio file too small (%d bytes), may be empty or corrupted", len(audio))
	}

	encoding, sampleRate := sniffGoogleConfig(audio)

	reqBody := googleSTTRequest{
		Config: googleSTTConfig{
			Encoding:                   encoding,
			SampleRateHertz:            sampleRate,
			LanguageCode:               languageCode(language),
			EnableAutomaticPunctuation: true,
			Model:                      "latest_long",
		},
		Audio: googleSTTAudio{
			Content: base64.StdEncoding.EncodeToString(audio),
		},
	}

	reqJSON, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var apiURL string
	if p.useAPIKey {
		apiURL = fmt.Sprintf("https://speech.googleapis.com/v1/speech:recognize?key=%s", p.apiKey)
	} else {
		apiURL = fmt.Sprintf("https://speech.googleapis.com/v1/projects/%s:recognize", p.projectID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(reqJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	log.Printf("[Google STT] Calling Speech-to-Text API (encoding=%s, language=%s)...",
		encoding, languageCode(language))
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to Google Speech-to-Text: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr googleSTTError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("Google Speech-to-Text API error: %s", apiErr.Message)
		}
		return nil, fmt.Errorf("Google Speech-to-Text API returned status %d: %s", resp.StatusCode, string(body))
	}

	var sttResp googleSTTResponse
	if err := json.Unmarshal(body, &sttResp); err != nil {
		return nil, fmt.Errorf("failed to parse Google Speech-to-Text response: %w", err)
	}

	if sttResp.Error != nil {
		return nil, fmt.Errorf("Google Speech-to-Text API error: %s", sttResp.Error.Message)
	}

	if len(sttResp.Results) == 0 || len(sttResp.Results[0].Alternatives) == 0 {
		return nil, fmt.Errorf("no speech detected in audio")
	}

	// Concatenate result segments; long recordings come back chunked.
	var parts []string
	var confidence float64
	for _, result := range sttResp.Results {
		if len(result.Alternatives) == 0 {
			continue
		}
		best := result.Alternatives[0]
		parts = append(parts, best.Transcript)
		if best.Confidence > confidence {
			confidence = best.Confidence
		}
	}

	transcript := strings.TrimSpace(strings.Join(parts, "\n"))
	if transcript == "" {
		return nil, fmt.Errorf("empty transcript returned")
	}

	log.Printf("[Google STT] Transcription successful: confidence=%.2f, length=%d, duration=%v",
		confidence, len(transcript), time.Since(startTime))

	return &Result{
		Transcript: transcript,
		Confidence: confidence,
		Provider:   p.Name(),
	}, nil
}

// languageCode expands a primary language subtag to the region-tagged
// code the Speech API expects.
func languageCode(language string) string {
	switch strings.ToLower(language) {
	case "ja":
		return "ja-JP"
	case "en":
		return "en-US"
	case "vi":
		return "vi-VN"
	default:
		return "ja-JP"
	}
}
