// Package flow wires each feature together: render the prompt, invoke the
// model, and shape the typed result. Composite flows fan out to other flows
// and degrade to a placeholder when one of them fails.
package flow

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"kisanmitra/internal/datauri"
	"kisanmitra/internal/llm"
	"kisanmitra/internal/llmtool"
	"kisanmitra/internal/market"
)

// DefaultFanoutLimit bounds concurrent sub-flows in a composite flow.
const DefaultFanoutLimit = 16

// DefaultCandidates are the crops the recommendation flow compares.
var DefaultCandidates = []string{"Maize", "Soybean", "Groundnut", "Sorghum", "Millet", "Lentil", "Chickpea", "Cotton"}

// MediaArchive keeps uploaded media for later review.
type MediaArchive interface {
	Put(ctx context.Context, key string, blob datauri.Blob) error
}

type Options struct {
	Market       *market.Generator
	Now          func() time.Time
	Media        MediaArchive
	Logger       *zap.Logger
	MaxToolIters int
	FanoutLimit  int
	Candidates   []string
	Voice        string
}

// Service runs flows against one model. It is safe for concurrent use.
type Service struct {
	inv        *llmtool.Invoker
	market     *market.Generator
	now        func() time.Time
	media      MediaArchive
	log        *zap.Logger
	tracer     trace.Tracer
	fanout     int
	candidates []string
	voice      string
}

func New(model llm.Model, opts Options) *Service {
	s := &Service{
		market:     opts.Market,
		now:        opts.Now,
		media:      opts.Media,
		log:        opts.Logger,
		tracer:     otel.Tracer("kisanmitra/flow"),
		fanout:     opts.FanoutLimit,
		candidates: opts.Candidates,
		voice:      opts.Voice,
	}
	if s.market == nil {
		s.market = market.NewGenerator()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.fanout <= 0 {
		s.fanout = DefaultFanoutLimit
	}
	if len(s.candidates) == 0 {
		s.candidates = DefaultCandidates
	}
	if s.voice == "" {
		s.voice = llm.DefaultVoice
	}
	s.inv = &llmtool.Invoker{
		Model:    model,
		Tools:    llmtool.NewRegistry(market.NewTool(s.market, s.now)),
		MaxIters: opts.MaxToolIters,
		Logger:   s.log,
	}
	return s
}

// trace opens a span for flow. The returned func ends it and records *errp.
func (s *Service) trace(ctx context.Context, flow string) (context.Context, func(errp *error)) {
	ctx, span := s.tracer.Start(ctx, "flow."+flow, trace.WithAttributes(attribute.String("flow.name", flow)))
	start := s.now()
	return ctx, func(errp *error) {
		if errp != nil && *errp != nil {
			span.RecordError(*errp)
			span.SetStatus(codes.Error, (*errp).Error())
		}
		span.SetAttributes(attribute.Int64("flow.elapsed_ms", s.now().Sub(start).Milliseconds()))
		span.End()
	}
}

// run invokes c and decodes the conformed answer into T.
func run[T any](ctx context.Context, s *Service, c llmtool.Call) (T, *llmtool.Result, error) {
	var out T
	res, err := s.inv.Invoke(ctx, c)
	if err != nil {
		return out, nil, err
	}
	if err := json.Unmarshal(res.Raw, &out); err != nil {
		return out, nil, &llmtool.ParseError{Flow: c.Flow, Raw: string(res.Raw), Err: err}
	}
	return out, res, nil
}

func renderErr(flow string, err error) error {
	return fmt.Errorf("flow: %s: render prompt: %w", flow, err)
}
