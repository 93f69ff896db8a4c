package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Middleware decorates a Model with a cross-cutting concern.
type Middleware func(Model) Model

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner Model, mws ...Middleware) Model {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

// -------- Rate Limiting --------

// RateLimit throttles requests per flow tag (see WithFlow) with a token
// bucket, so one busy flow does not hold back the others. rps <= 0
// disables it.
func RateLimit(rps float64, burst int) Middleware {
	return func(next Model) Model {
		return &rateLimited{next: next, rl: newFlowLimiter(rps, burst)}
	}
}

type rateLimited struct {
	next Model
	rl   *flowLimiter
}

func (c *rateLimited) Name() string { return c.next.Name() }
func (c *rateLimited) Close() error { return c.next.Close() }
func (c *rateLimited) Generate(ctx context.Context, req *Request) (*Response, error) {
	if c.rl != nil {
		if err := c.rl.bucket(FlowFrom(ctx)).Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("llm: rate limit: %w", err)
		}
	}
	return c.next.Generate(ctx, req)
}

// -------- Retry with exponential backoff --------

// Retry retries Generate up to maxAttempts with exponential backoff starting
// at baseDelay. It stops as soon as ctx is done. maxAttempts <= 1 makes it a
// pass-through.
func Retry(maxAttempts int, baseDelay time.Duration) Middleware {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = 300 * time.Millisecond
	}
	return func(next Model) Model {
		if maxAttempts == 1 {
			return next
		}
		return &retrying{next: next, max: maxAttempts, base: baseDelay}
	}
}

type retrying struct {
	next Model
	max  int
	base time.Duration
}

func (r *retrying) Name() string { return r.next.Name() }
func (r *retrying) Close() error { return r.next.Close() }
func (r *retrying) Generate(ctx context.Context, req *Request) (*Response, error) {
	var last error
	for i := 0; i < r.max; i++ {
		resp, err := r.next.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		last = err
		if i == r.max-1 {
			break
		}
		timer := time.NewTimer(r.base * time.Duration(1<<i))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, errors.Join(last, ctx.Err())
		case <-timer.C:
		}
	}
	return nil, last
}

// -------- Logging --------

// WithLogging logs request size, outcome and latency per flow. Prompt text is
// logged at debug level with media payloads redacted.
func WithLogging(logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next Model) Model {
		return &logging{next: next, log: logger}
	}
}

type logging struct {
	next Model
	log  *zap.Logger
}

func (l *logging) Name() string { return l.next.Name() }
func (l *logging) Close() error { return l.next.Close() }
func (l *logging) Generate(ctx context.Context, req *Request) (*Response, error) {
	flow := FlowFrom(ctx)
	l.log.Info("llm request",
		zap.String("flow", flow),
		zap.String("model", l.next.Name()),
		zap.Int("bytes", req.Size()),
		zap.Int("tools", len(req.Tools)),
	)
	if ce := l.log.Check(zap.DebugLevel, "llm prompt"); ce != nil {
		ce.Write(zap.String("flow", flow), zap.String("text", RedactText(lastText(req))))
	}
	start := time.Now()
	resp, err := l.next.Generate(ctx, req)
	if err != nil {
		l.log.Warn("llm error", zap.String("flow", flow), zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return nil, err
	}
	l.log.Info("llm response",
		zap.String("flow", flow),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("text_bytes", len(resp.Text)),
		zap.Int("tool_calls", len(resp.Calls)),
	)
	return resp, nil
}

func lastText(req *Request) string {
	for i := len(req.Messages) - 1; i >= 0; i-- {
		for _, p := range req.Messages[i].Parts {
			if p.Text != "" {
				return p.Text
			}
		}
	}
	return ""
}

// -------- Call counting --------

// CountCalls increments the counter attached with WithCallCounter for every
// request that reaches the backend.
func CountCalls() Middleware {
	return func(next Model) Model { return &counting{next: next} }
}

type counting struct{ next Model }

func (c *counting) Name() string { return c.next.Name() }
func (c *counting) Close() error { return c.next.Close() }
func (c *counting) Generate(ctx context.Context, req *Request) (*Response, error) {
	if n := callCounterFrom(ctx); n != nil {
		n.Add(1)
	}
	return c.next.Generate(ctx, req)
}

// -------- Tracing --------

// WithTracing opens a span per model call on the global tracer provider.
func WithTracing() Middleware {
	return func(next Model) Model {
		return &traced{next: next, tracer: otel.Tracer("kisanmitra/llm")}
	}
}

type traced struct {
	next   Model
	tracer trace.Tracer
}

func (t *traced) Name() string { return t.next.Name() }
func (t *traced) Close() error { return t.next.Close() }
func (t *traced) Generate(ctx context.Context, req *Request) (*Response, error) {
	ctx, span := t.tracer.Start(ctx, "llm.generate", trace.WithAttributes(
		attribute.String("llm.flow", FlowFrom(ctx)),
		attribute.String("llm.model", t.next.Name()),
		attribute.Int("llm.request_bytes", req.Size()),
	))
	defer span.End()
	resp, err := t.next.Generate(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("llm.tool_calls", len(resp.Calls)),
		attribute.Int("llm.input_tokens", resp.Usage.InputTokens),
		attribute.Int("llm.output_tokens", resp.Usage.OutputTokens),
	)
	return resp, nil
}
