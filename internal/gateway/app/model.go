package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"kisanmitra/internal/gateway/config"
	"kisanmitra/internal/llm"
)

const retryBaseDelay = 500 * time.Millisecond

func newBaseModel(ctx context.Context, cfg *config.Config, now func() time.Time) (llm.Model, error) {
	if cfg.LLM.Provider == "fake" {
		return llm.NewFakeClient(now), nil
	}
	return llm.NewGeminiClient(ctx, llm.GeminiConfig{
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		SpeechModel: cfg.LLM.SpeechModel,
	})
}

// wrapModel layers, outermost first: logging, tracing, per-request call
// counting, usage accounting, retry and rate limiting. Every retry attempt
// is rate limited; the counters see logical calls, not attempts.
func wrapModel(base llm.Model, cfg *config.Config, usage *llm.UsageLedger, logger *zap.Logger) llm.Model {
	return llm.Wrap(base,
		llm.WithLogging(logger.Named("llm")),
		llm.WithTracing(),
		llm.CountCalls(),
		llm.WithUsage(usage),
		llm.Retry(cfg.LLM.MaxAttempts, retryBaseDelay),
		llm.RateLimit(cfg.LLM.RPS, cfg.LLM.Burst),
	)
}
