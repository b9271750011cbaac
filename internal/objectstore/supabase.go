package objectstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"voicecounsel/internal/apperr"
)

// SupabaseStore implements Store against the Supabase Storage REST API.
type SupabaseStore struct {
	baseURL    string
	serviceKey string
	bucket     string
	httpClient *http.Client
}

// NewSupabaseStore creates a Supabase Storage backed store.
func NewSupabaseStore(baseURL, serviceKey, bucket string) *SupabaseStore {
	return &SupabaseStore{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		bucket:     bucket,
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}
}

func (s *SupabaseStore) Name() string {
	return "supabase"
}

// signedUploadResponse is the payload of POST /object/upload/sign.
type signedUploadResponse struct {
	URL string `json:"url"`
}

// signedDownloadResponse is the payload of POST /object/sign.
type signedDownloadResponse struct {
	SignedURL string `json:"signedURL"`
}

func (s *SupabaseStore) IssueUploadURL(ctx context.Context, key string, ttl time.Duration) (*SignedUpload, error) {
	endpoint := fmt.Sprintf("%s/storage/v1/object/upload/sign/%s/%s", s.baseURL, s.bucket, key)

	body, err := s.do(ctx, http.MethodPost, endpoint, nil, "")
	if err != nil {
		return nil, &apperr.ErrStore{Op: "sign upload", Err: err}
	}

	var signed signedUploadResponse
	if err := json.Unmarshal(body, &signed); err != nil {
		return nil, &apperr.ErrStore{Op: "sign upload", Err: fmt.Errorf("failed to parse response: %w", err)}
	}
	if signed.URL == "" {
		return nil, &apperr.ErrStore{Op: "sign upload", Err: fmt.Errorf("empty signed url in response")}
	}

	fullURL := s.baseURL + "/storage/v1" + signed.URL
	return &SignedUpload{
		URL:   fullURL,
		Token: extractToken(signed.URL),
		Path:  key,
	}, nil
}

func (s *SupabaseStore) IssueDownloadURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	endpoint := fmt.Sprintf("%s/storage/v1/object/sign/%s/%s", s.baseURL, s.bucket, key)

	payload, err := json.Marshal(map[string]int{"expiresIn": int(ttl.Seconds())})
	if err != nil {
		return "", &apperr.ErrStore{Op: "sign download", Err: err}
	}

	body, err := s.do(ctx, http.MethodPost, endpoint, payload, "application/json")
	if err != nil {
		return "", &apperr.ErrStore{Op: "sign download", Err: err}
	}

	var signed signedDownloadResponse
	if err := json.Unmarshal(body, &signed); err != nil {
		return "", &apperr.ErrStore{Op: "sign download", Err: fmt.Errorf("failed to parse response: %w", err)}
	}
	if signed.SignedURL == "" {
		return "", &apperr.ErrStore{Op: "sign download", Err: fmt.Errorf("empty signed url in response")}
	}

	return s.baseURL + "/storage/v1" + signed.SignedURL, nil
}

func (s *SupabaseStore) FetchBytes(ctx context.Context, key string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, key)

	body, err := s.do(ctx, http.MethodGet, endpoint, nil, "")
	if err != nil {
		return nil, &apperr.ErrStore{Op: "fetch object", Err: err}
	}
	return body, nil
}

func (s *SupabaseStore) PutBytes(ctx context.Context, key string, data []byte, contentType string) error {
	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, key)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return &apperr.ErrStore{Op: "put object", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return &apperr.ErrStore{Op: "put object", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &apperr.ErrStore{
			Op:  "put object",
			Err: fmt.Errorf("storage API returned status %d: %s", resp.StatusCode, string(body)),
		}
	}
	return nil
}

// do performs an authorized request and returns the body on HTTP 200.
func (s *SupabaseStore) do(ctx context.Context, method, endpoint string, payload []byte, contentType string) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call storage API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("storage API returned status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// extractToken pulls the token query parameter out of a signed path.
func extractToken(signedPath string) string {
	idx := strings.Index(signedPath, "?")
	if idx < 0 {
		return ""
	}
	values, err := url.ParseQuery(signedPath[idx+1:])
	if err != nil {
		return ""
	}
	return values.Get("token")
}
