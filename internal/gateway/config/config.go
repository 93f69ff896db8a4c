package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port     string
	Env      string
	LogLevel string

	// AllowedOrigins restricts CORS; empty admits every origin.
	AllowedOrigins []string
	LLM            LLMConfig
	Flow           FlowConfig
	RunLog         RunLogConfig
	Media          MediaConfig
}

type LLMConfig struct {
	// Provider is "gemini" or "fake".
	Provider     string
	APIKey       string
	Model        string
	SpeechModel  string
	Voice        string
	RPS          float64
	Burst        int
	MaxAttempts  int
	MaxToolIters int
}

type FlowConfig struct {
	FanoutLimit int
	Candidates  []string
}

type RunLogConfig struct {
	PostgresDSN string
	Capacity    int
}

type MediaConfig struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool

	// MemoryCapacity bounds the in-memory archive used when Enabled is false.
	MemoryCapacity int
}

// Overrides carries command-line flags. Non-empty fields win over every
// other source.
type Overrides struct {
	ConfigFile string
	Port       string
	Provider   string
	LogLevel   string
}

// source resolves a key from the environment (including .env), then the YAML
// file.
type source struct {
	file map[string]string
}

func (s source) get(key string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return strings.TrimSpace(s.file[key])
}

// Load resolves configuration from defaults, an optional YAML file, .env,
// the environment and finally o.
func Load(o Overrides) (*Config, error) {
	_ = godotenv.Load()

	path := firstNonEmpty(o.ConfigFile, os.Getenv("KISAN_CONFIG"))
	file, err := readFile(path)
	if err != nil {
		return nil, err
	}
	src := source{file: file}

	env := firstNonEmpty(src.get("APP_ENV"), "local")
	cfg := &Config{
		Port:     normalizePort(firstNonEmpty(o.Port, src.get("PORT"), ":8081")),
		Env:      env,
		LogLevel: firstNonEmpty(o.LogLevel, src.get("LOG_LEVEL"), "info"),
		LLM: LLMConfig{
			Provider:    strings.ToLower(firstNonEmpty(o.Provider, src.get("LLM_PROVIDER"), "gemini")),
			APIKey:      src.get("GEMINI_API_KEY"),
			Model:       firstNonEmpty(src.get("GEMINI_MODEL"), "gemini-2.0-flash"),
			SpeechModel: firstNonEmpty(src.get("GEMINI_TTS_MODEL"), "gemini-2.5-flash-preview-tts"),
			Voice:       firstNonEmpty(src.get("GEMINI_TTS_VOICE"), "Algenib"),
		},
		RunLog: RunLogConfig{PostgresDSN: src.get("RUNLOG_PG_DSN")},
		Media:  loadMediaConfig(src, env),
	}
	if cfg.LLM.Provider != "gemini" && cfg.LLM.Provider != "fake" {
		return nil, fmt.Errorf("config: LLM_PROVIDER %q: want gemini or fake", cfg.LLM.Provider)
	}
	if cfg.LLM.RPS, err = parseFloat(src, "LLM_RPS", 0); err != nil {
		return nil, err
	}
	ints := []struct {
		key string
		def int
		dst *int
	}{
		{"LLM_BURST", 1, &cfg.LLM.Burst},
		{"LLM_MAX_ATTEMPTS", 1, &cfg.LLM.MaxAttempts},
		{"LLM_MAX_TOOL_ITERS", 4, &cfg.LLM.MaxToolIters},
		{"FLOW_FANOUT_LIMIT", 16, &cfg.Flow.FanoutLimit},
		{"RUNLOG_CAPACITY", 500, &cfg.RunLog.Capacity},
		{"MEDIA_MEMORY_CAPACITY", 64, &cfg.Media.MemoryCapacity},
	}
	for _, it := range ints {
		if *it.dst, err = parseInt(src, it.key, it.def); err != nil {
			return nil, err
		}
	}
	cfg.Flow.Candidates = splitList(src.get("CANDIDATE_CROPS"))
	cfg.AllowedOrigins = splitList(src.get("CORS_ORIGINS"))
	return cfg, nil
}

func readFile(path string) (map[string]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		key := strings.ToUpper(strings.TrimSpace(k))
		switch vv := v.(type) {
		case []any:
			parts := make([]string, 0, len(vv))
			for _, p := range vv {
				parts = append(parts, fmt.Sprint(p))
			}
			out[key] = strings.Join(parts, ",")
		case nil:
		default:
			out[key] = fmt.Sprint(vv)
		}
	}
	return out, nil
}

func loadMediaConfig(src source, env string) MediaConfig {
	if strings.EqualFold(env, "local") {
		return localMediaConfig(src)
	}
	endpoint := src.get("MEDIA_S3_ENDPOINT")
	return MediaConfig{
		Enabled:   endpoint != "",
		Endpoint:  endpoint,
		Region:    firstNonEmpty(src.get("MEDIA_S3_REGION"), "us-east-1"),
		AccessKey: firstNonEmpty(src.get("MEDIA_S3_ACCESS_KEY"), src.get("MINIO_ROOT_USER")),
		SecretKey: firstNonEmpty(src.get("MEDIA_S3_SECRET_KEY"), src.get("MINIO_ROOT_PASSWORD")),
		Bucket:    firstNonEmpty(src.get("MEDIA_S3_BUCKET"), "kisanmitra-media"),
		UseSSL:    parseBool(src.get("MEDIA_S3_USE_SSL"), true),
	}
}

func normalizePort(p string) string {
	if strings.HasPrefix(p, ":") || strings.Contains(p, ":") {
		return p
	}
	return ":" + p
}

func parseInt(src source, key string, def int) (int, error) {
	raw := src.get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return v, nil
}

func parseFloat(src source, key string, def float64) (float64, error) {
	raw := src.get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return v, nil
}

func parseBool(raw string, def bool) bool {
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
