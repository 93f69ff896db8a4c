package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"kisanmitra/internal/action"
	"kisanmitra/internal/flow"
	"kisanmitra/internal/gateway/config"
	"kisanmitra/internal/gateway/handler"
	"kisanmitra/internal/gateway/server"
	"kisanmitra/internal/llm"
	"kisanmitra/internal/market"
)

// App owns everything one process needs to serve flows.
type App struct {
	log     *zap.Logger
	model   llm.Model
	usage   *llm.UsageLedger
	market  *market.Generator
	stores  *gatewayStores
	gate    *action.Gate
	handler http.Handler
	server  *server.Server
}

// Options replace pieces of the default wiring, mainly for tests.
type Options struct {
	// Model, when set, is used instead of the configured provider. It is
	// still wrapped with the usual middleware.
	Model llm.Model
	Now   func() time.Time
}

func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts Options) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: config is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	usage := llm.NewUsageLedger()
	base := opts.Model
	if base == nil {
		var err error
		if base, err = newBaseModel(ctx, cfg, now); err != nil {
			return nil, fmt.Errorf("failed to init model: %w", err)
		}
	}
	model := wrapModel(base, cfg, usage, logger)

	stores, err := initStores(cfg, logger)
	if err != nil {
		_ = model.Close()
		return nil, err
	}

	gen := market.NewGenerator()
	svc := flow.New(model, flow.Options{
		Market:       gen,
		Now:          now,
		Media:        stores.media,
		Logger:       logger.Named("flow"),
		MaxToolIters: cfg.LLM.MaxToolIters,
		FanoutLimit:  cfg.Flow.FanoutLimit,
		Candidates:   cfg.Flow.Candidates,
		Voice:        cfg.LLM.Voice,
	})
	gate := action.NewGate(svc, action.Options{
		Ledger: stores.runs,
		Logger: logger.Named("action"),
		Now:    now,
	})

	handlerSvc := handler.NewService(gate, stores.runs, stores.media, usage, logger.Named("http"))
	mux := server.NewMux(handlerSvc, cfg.AllowedOrigins, logger.Named("http"))

	logger.Info("app ready",
		zap.String("env", cfg.Env),
		zap.String("model", model.Name()),
		zap.Int("fanout_limit", cfg.Flow.FanoutLimit),
	)
	return &App{
		log:     logger,
		model:   model,
		usage:   usage,
		market:  gen,
		stores:  stores,
		gate:    gate,
		handler: mux,
		server:  server.New(cfg.Port, mux, logger.Named("server")),
	}, nil
}

func (a *App) Gate() *action.Gate { return a.gate }
func (a *App) Market() *market.Generator { return a.market }
func (a *App) Usage() *llm.UsageLedger { return a.usage }
func (a *App) Handler() http.Handler { return a.handler }

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Serve(l net.Listener) error {
	return a.server.Serve(l)
}

// Shutdown stops the server, then releases the model and stores.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	return errors.Join(err, a.Close())
}

// Close releases the model and stores without touching the server.
func (a *App) Close() error {
	return errors.Join(a.model.Close(), a.stores.close())
}
