package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"KISAN_CONFIG", "PORT", "APP_ENV", "LOG_LEVEL", "LLM_PROVIDER", "GEMINI_API_KEY",
	"GEMINI_MODEL", "LLM_RPS", "LLM_BURST", "LLM_MAX_ATTEMPTS", "LLM_MAX_TOOL_ITERS",
	"FLOW_FANOUT_LIMIT", "CANDIDATE_CROPS", "RUNLOG_PG_DSN", "RUNLOG_CAPACITY",
	"MEDIA_S3_ENDPOINT", "MEDIA_MINIO_ENDPOINT", "MEDIA_S3_BUCKET", "MEDIA_S3_USE_SSL",
	"MEDIA_S3_ACCESS_KEY", "MEDIA_S3_SECRET_KEY", "MEDIA_MEMORY_CAPACITY", "CORS_ORIGINS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(Overrides{})
	require.NoError(t, err)
	assert.Equal(t, ":8081", cfg.Port)
	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, 1, cfg.LLM.MaxAttempts)
	assert.Equal(t, 4, cfg.LLM.MaxToolIters)
	assert.Equal(t, 16, cfg.Flow.FanoutLimit)
	assert.Empty(t, cfg.Flow.Candidates)
	assert.Equal(t, 500, cfg.RunLog.Capacity)
	assert.False(t, cfg.Media.Enabled)
	assert.Equal(t, 64, cfg.Media.MemoryCapacity)
}

func TestLoadPrecedence(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "kisan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 9000
llm_provider: fake
flow_fanout_limit: 4
candidate_crops: [Millet, Sorghum]
log_level: debug
`), 0o644))

	t.Setenv("KISAN_CONFIG", path)
	t.Setenv("FLOW_FANOUT_LIMIT", "2")

	cfg, err := Load(Overrides{LogLevel: "warn"})
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Port)
	assert.Equal(t, "fake", cfg.LLM.Provider)
	assert.Equal(t, 2, cfg.Flow.FanoutLimit, "env beats file")
	assert.Equal(t, []string{"Millet", "Sorghum"}, cfg.Flow.Candidates)
	assert.Equal(t, "warn", cfg.LogLevel, "flag beats file")
}

func TestLoadRejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "openai")
	_, err := Load(Overrides{})
	assert.ErrorContains(t, err, "LLM_PROVIDER")

	clearEnv(t)
	t.Setenv("LLM_BURST", "many")
	_, err = Load(Overrides{})
	assert.ErrorContains(t, err, "LLM_BURST")

	clearEnv(t)
	_, err = Load(Overrides{ConfigFile: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}

func TestMediaConfigByEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("MEDIA_S3_ENDPOINT", "s3.ap-south-1.amazonaws.com")
	cfg, err := Load(Overrides{})
	require.NoError(t, err)
	assert.True(t, cfg.Media.Enabled)
	assert.True(t, cfg.Media.UseSSL)
	assert.Equal(t, "kisanmitra-media", cfg.Media.Bucket)

	clearEnv(t)
	t.Setenv("MEDIA_MINIO_ENDPOINT", "localhost:9000")
	cfg, err = Load(Overrides{})
	require.NoError(t, err)
	assert.True(t, cfg.Media.Enabled)
	assert.False(t, cfg.Media.UseSSL)
	assert.Equal(t, "kisanmitra", cfg.Media.AccessKey)
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "  ", "b", "c"))
	assert.Empty(t, firstNonEmpty())
}
