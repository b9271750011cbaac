package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "OBJECT_STORE_PROVIDER", "STT_PROVIDER", "ANALYSIS_PROVIDER", "AWS_REGION", "ADMIN_PASSWORD"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "supabase", cfg.ObjectStoreProvider)
	assert.Equal(t, "openai", cfg.STTProvider)
	assert.Equal(t, "openai", cfg.AnalysisProvider)
	assert.Equal(t, "ap-northeast-1", cfg.AWSRegion)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STT_PROVIDER", "google")
	t.Setenv("ANALYSIS_PROVIDER", "gemini")
	t.Setenv("OBJECT_STORE_PROVIDER", "s3")
	t.Setenv("S3_BUCKET", "voice-bucket")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "google", cfg.STTProvider)
	assert.Equal(t, "gemini", cfg.AnalysisProvider)
	assert.Equal(t, "s3", cfg.ObjectStoreProvider)
	assert.Equal(t, "voice-bucket", cfg.S3Bucket)
}

func TestLoadRequiresJWTSecretWithAdminPassword(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD", "hunter2")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "secret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "hunter2", cfg.AdminPassword)
}
