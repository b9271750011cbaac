package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"voicecounsel/internal/config"
	"voicecounsel/internal/objectstore"
	"voicecounsel/internal/pipeline"
	"voicecounsel/internal/repository"
	"voicecounsel/internal/stt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeStore is a map-backed object store for handler tests.
type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	signErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (s *fakeStore) IssueUploadURL(_ context.Context, key string, _ time.Duration) (*objectstore.SignedUpload, error) {
	if s.signErr != nil {
		return nil, s.signErr
	}
	return &objectstore.SignedUpload{
		URL:   "https://store.test/upload/" + key,
		Token: "signed-token",
		Path:  key,
	}, nil
}

func (s *fakeStore) IssueDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	if s.signErr != nil {
		return "", s.signErr
	}
	return "https://store.test/download/" + key, nil
}

func (s *fakeStore) FetchBytes(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("object not found: %s", key)
	}
	return data, nil
}

func (s *fakeStore) PutBytes(_ context.Context, key string, data []byte, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return nil
}

func (s *fakeStore) Name() string { return "fake" }

func (s *fakeStore) put(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
}

type fakeSTT struct{ transcript string }

func (f *fakeSTT) Transcribe(_ context.Context, _ []byte, _ string) (*stt.Result, error) {
	return &stt.Result{Transcript: f.transcript, Provider: "fake"}, nil
}

func (f *fakeSTT) Name() string { return "fake" }

type fakeAnalyzer struct{}

func (f *fakeAnalyzer) Complete(_ context.Context, _, userText string) (string, error) {
	return "report for: " + userText, nil
}

func (f *fakeAnalyzer) Name() string { return "fake" }

type testEnv struct {
	engine   *gin.Engine
	cfg      *config.Config
	jobs     repository.JobRepository
	settings repository.SettingRepository
	store    *fakeStore
}

func newTestEnv() *testEnv {
	cfg := &config.Config{
		Port:          "8080",
		AdminPassword: "correct-horse",
		JWTSecret:     "test-jwt-secret",
		CronSecret:    "cron-secret",
	}

	jobs := repository.NewMemoryJobRepository()
	settings := repository.NewMemorySettingRepository()
	store := newFakeStore()
	controller := pipeline.New(jobs, settings, store, &fakeSTT{transcript: "いつもありがとうございます"}, &fakeAnalyzer{})

	engine := gin.New()
	RegisterRoutes(engine, NewHandler(cfg, jobs, settings, store, controller))

	return &testEnv{
		engine:   engine,
		cfg:      cfg,
		jobs:     jobs,
		settings: settings,
		store:    store,
	}
}

// request performs one in-process request and decodes the envelope.
func (e *testEnv) request(t *testing.T, method, path string, body interface{}, headers map[string]string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)

	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return w, envelope
}

// adminToken logs in and returns a bearer token for the settings routes.
func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	w, envelope := e.request(t, http.MethodPost, "/api/v1/auth/login",
		gin.H{"password": e.cfg.AdminPassword}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := envelope["data"].(map[string]interface{})
	return data["token"].(string)
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}
