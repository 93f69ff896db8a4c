package action

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"kisanmitra/internal/flow"
	"kisanmitra/internal/llm"
	"kisanmitra/internal/schema"
	"kisanmitra/internal/types"
)

// ErrUnknownFlow is returned by Run for a name that is not a flow.
var ErrUnknownFlow = errors.New("action: unknown flow")

const (
	genericMessage = "An unexpected error occurred. Please try again."
	invalidMessage = "Invalid input."
)

// failureMessages are shown instead of internal errors.
var failureMessages = map[string]string{
	types.FlowDiagnoseCropDisease:     "An unexpected error occurred while diagnosing. Please try again.",
	types.FlowGetMarketPrice:          "An unexpected error occurred while fetching prices. Please try again.",
	types.FlowGetWeatherForecast:      "An unexpected error occurred while fetching the forecast. Please try again.",
	types.FlowForecastDiseaseOutbreak: "An unexpected error occurred during the forecast. Please try again.",
	types.FlowPredictYield:            "An unexpected error occurred during yield prediction. Please try again.",
	types.FlowEstimateCarbonCredits:   "An unexpected error occurred during carbon credit estimation. Please try again.",
	types.FlowFindGovernmentSchemes:   "An unexpected error occurred while finding schemes. Please try again.",
	types.FlowAskAI:                   genericMessage,
	types.FlowSpeechToText:            "Failed to transcribe audio. Please try again.",
	types.FlowTextToSpeech:            "Failed to convert text to speech. Please try again.",
	types.FlowGetFarmInsights:         "An unexpected error occurred while generating insights. Please try again.",
	types.FlowGetCropRecommendations:  "An unexpected error occurred while generating recommendations. Please try again.",
}

// FailureMessage is the message shown when flow fails after validation.
func FailureMessage(flow string) string {
	if m, ok := failureMessages[flow]; ok {
		return m
	}
	return genericMessage
}

// Ledger stores the outcome of every request. Implementations must be safe
// for concurrent use.
type Ledger interface {
	Append(ctx context.Context, rec Record) error
}

type Options struct {
	Ledger Ledger
	Logger *zap.Logger
	Now    func() time.Time
}

// Gate is the single entry point for callers.
type Gate struct {
	flows  *flow.Service
	ledger Ledger
	log    *zap.Logger
	now    func() time.Time
}

func NewGate(svc *flow.Service, opts Options) *Gate {
	g := &Gate{flows: svc, ledger: opts.Ledger, log: opts.Logger, now: opts.Now}
	if g.log == nil {
		g.log = zap.NewNop()
	}
	if g.now == nil {
		g.now = time.Now
	}
	return g
}

// handle drives one request through the state machine. validate runs before
// anything else; call only runs on valid input.
func handle[I, O any](
	ctx context.Context,
	g *Gate,
	name string,
	raw []byte,
	validate func([]byte) (I, error),
	call func(context.Context, I) (O, error),
) Result[O] {
	rec := Record{ID: uuid.NewString(), Flow: name, Started: g.now()}
	rec.step(Received)
	log := g.log.With(zap.String("run_id", rec.ID), zap.String("flow", name))

	rec.step(Validating)
	in, err := validate(raw)
	if err != nil {
		rec.step(Rejected)
		rec.Message = validationMessage(err)
		g.finish(ctx, log, &rec)
		return Fail[O](rec.Message)
	}

	rec.step(Invoking)
	ctx, calls := llm.WithCallCounter(ctx)
	out, err := safeCall(ctx, in, call)
	rec.ModelCalls = calls.Load()
	if err != nil {
		rec.step(ErrorReturned)
		rec.Error = err.Error()
		rec.Message = FailureMessage(name)
		log.Error("flow failed", zap.Error(err), zap.Int64("model_calls", rec.ModelCalls))
		g.finish(ctx, log, &rec)
		return Fail[O](rec.Message)
	}
	rec.step(Returned)
	g.finish(ctx, log, &rec)
	return OK(out)
}

func safeCall[I, O any](ctx context.Context, in I, call func(context.Context, I) (O, error)) (out O, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("action: panic: %v\n%s", r, debug.Stack())
		}
	}()
	return call(ctx, in)
}

func validationMessage(err error) string {
	var ve *schema.ValidationError
	if errors.As(err, &ve) && ve.Message != "" {
		return ve.Message
	}
	return invalidMessage
}

func (g *Gate) finish(ctx context.Context, log *zap.Logger, rec *Record) {
	rec.Duration = g.now().Sub(rec.Started)
	log.Info("flow run",
		zap.String("state", string(rec.State)),
		zap.Duration("elapsed", rec.Duration),
		zap.Int64("model_calls", rec.ModelCalls),
	)
	if g.ledger == nil {
		return
	}
	// the request context may already be done; the record is still wanted
	if err := g.ledger.Append(context.WithoutCancel(ctx), *rec); err != nil {
		log.Warn("run ledger append", zap.Error(err))
	}
}

// Run dispatches raw input to the flow called name.
func (g *Gate) Run(ctx context.Context, name string, raw json.RawMessage) (Result[any], error) {
	fn, ok := g.dispatch()[name]
	if !ok {
		return Result[any]{}, fmt.Errorf("%w: %q", ErrUnknownFlow, name)
	}
	return fn(ctx, raw), nil
}

// Flows lists the flow names Run accepts.
func (g *Gate) Flows() []string {
	return append([]string(nil), types.Flows...)
}

func (g *Gate) dispatch() map[string]func(context.Context, json.RawMessage) Result[any] {
	return map[string]func(context.Context, json.RawMessage) Result[any]{
		types.FlowDiagnoseCropDisease:     func(ctx context.Context, raw json.RawMessage) Result[any] { return g.DiagnoseCropDisease(ctx, raw).Any() },
		types.FlowGetMarketPrice:          func(ctx context.Context, raw json.RawMessage) Result[any] { return g.GetMarketPrice(ctx, raw).Any() },
		types.FlowGetWeatherForecast:      func(ctx context.Context, raw json.RawMessage) Result[any] { return g.GetWeatherForecast(ctx, raw).Any() },
		types.FlowForecastDiseaseOutbreak: func(ctx context.Context, raw json.RawMessage) Result[any] { return g.ForecastDiseaseOutbreak(ctx, raw).Any() },
		types.FlowPredictYield:            func(ctx context.Context, raw json.RawMessage) Result[any] { return g.PredictYield(ctx, raw).Any() },
		types.FlowEstimateCarbonCredits:   func(ctx context.Context, raw json.RawMessage) Result[any] { return g.EstimateCarbonCredits(ctx, raw).Any() },
		types.FlowFindGovernmentSchemes:   func(ctx context.Context, raw json.RawMessage) Result[any] { return g.FindGovernmentSchemes(ctx, raw).Any() },
		types.FlowAskAI:                   func(ctx context.Context, raw json.RawMessage) Result[any] { return g.AskAI(ctx, raw).Any() },
		types.FlowSpeechToText:            func(ctx context.Context, raw json.RawMessage) Result[any] { return g.SpeechToText(ctx, raw).Any() },
		types.FlowTextToSpeech:            func(ctx context.Context, raw json.RawMessage) Result[any] { return g.TextToSpeech(ctx, raw).Any() },
		types.FlowGetFarmInsights:         func(ctx context.Context, raw json.RawMessage) Result[any] { return g.GetFarmInsights(ctx, raw).Any() },
		types.FlowGetCropRecommendations:  func(ctx context.Context, raw json.RawMessage) Result[any] { return g.GetCropRecommendations(ctx, raw).Any() },
	}
}

// Entry points ------------------------------------------------------------------

func (g *Gate) DiagnoseCropDisease(ctx context.Context, raw json.RawMessage) Result[types.DiagnoseCropDiseaseOutput] {
	return handle(ctx, g, types.FlowDiagnoseCropDisease, raw, types.ValidateDiagnoseCropDiseaseInput, g.flows.DiagnoseCropDisease)
}

func (g *Gate) GetMarketPrice(ctx context.Context, raw json.RawMessage) Result[types.GetMarketPriceOutput] {
	return handle(ctx, g, types.FlowGetMarketPrice, raw, types.ValidateGetMarketPriceInput, g.flows.GetMarketPrice)
}

func (g *Gate) GetWeatherForecast(ctx context.Context, raw json.RawMessage) Result[types.GetWeatherForecastOutput] {
	return handle(ctx, g, types.FlowGetWeatherForecast, raw, types.ValidateGetWeatherForecastInput, g.flows.GetWeatherForecast)
}

func (g *Gate) ForecastDiseaseOutbreak(ctx context.Context, raw json.RawMessage) Result[types.ForecastDiseaseOutbreakOutput] {
	return handle(ctx, g, types.FlowForecastDiseaseOutbreak, raw, types.ValidateForecastDiseaseOutbreakInput, g.flows.ForecastDiseaseOutbreak)
}

func (g *Gate) PredictYield(ctx context.Context, raw json.RawMessage) Result[types.PredictYieldOutput] {
	return handle(ctx, g, types.FlowPredictYield, raw, types.ValidatePredictYieldInput, g.flows.PredictYield)
}

func (g *Gate) EstimateCarbonCredits(ctx context.Context, raw json.RawMessage) Result[types.EstimateCarbonCreditsOutput] {
	return handle(ctx, g, types.FlowEstimateCarbonCredits, raw, types.ValidateEstimateCarbonCreditsInput, g.flows.EstimateCarbonCredits)
}

func (g *Gate) FindGovernmentSchemes(ctx context.Context, raw json.RawMessage) Result[types.FindGovernmentSchemesOutput] {
	return handle(ctx, g, types.FlowFindGovernmentSchemes, raw, types.ValidateFindGovernmentSchemesInput, g.flows.FindGovernmentSchemes)
}

func (g *Gate) AskAI(ctx context.Context, raw json.RawMessage) Result[types.AskAIOutput] {
	return handle(ctx, g, types.FlowAskAI, raw, types.ValidateAskAIInput, g.flows.AskAI)
}

func (g *Gate) SpeechToText(ctx context.Context, raw json.RawMessage) Result[types.SpeechToTextOutput] {
	return handle(ctx, g, types.FlowSpeechToText, raw, types.ValidateSpeechToTextInput, g.flows.SpeechToText)
}

func (g *Gate) TextToSpeech(ctx context.Context, raw json.RawMessage) Result[types.TextToSpeechOutput] {
	return handle(ctx, g, types.FlowTextToSpeech, raw, types.ValidateTextToSpeechInput, g.flows.TextToSpeech)
}

func (g *Gate) GetFarmInsights(ctx context.Context, raw json.RawMessage) Result[types.GetFarmInsightsOutput] {
	return handle(ctx, g, types.FlowGetFarmInsights, raw, types.ValidateGetFarmInsightsInput, g.flows.GetFarmInsights)
}

func (g *Gate) GetCropRecommendations(ctx context.Context, raw json.RawMessage) Result[types.GetCropRecommendationsOutput] {
	return handle(ctx, g, types.FlowGetCropRecommendations, raw, types.ValidateGetCropRecommendationsInput, g.flows.GetCropRecommendations)
}
