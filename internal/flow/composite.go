package flow

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"kisanmitra/internal/llmtool"
	"kisanmitra/internal/prompt"
	"kisanmitra/internal/types"
)

// Unavailable replaces a sub-flow result that could not be fetched.
const Unavailable = "not available"

// Outcome is the result of one sub-flow: a value or the reason there is none.
type Outcome[T any] struct {
	Value *T
	Err   error
}

func capture[T any](v T, err error) Outcome[T] {
	if err != nil {
		return Outcome[T]{Err: err}
	}
	return Outcome[T]{Value: &v}
}

// Context returns the value for a synthesis prompt, or the Unavailable
// marker.
func (o Outcome[T]) Context() any {
	if o.Err != nil || o.Value == nil {
		return Unavailable
	}
	return o.Value
}

func (s *Service) logOutcome(flow, sub, crop string, err error) {
	if err != nil {
		s.log.Warn("sub-flow unavailable",
			zap.String("flow", flow),
			zap.String("sub_flow", sub),
			zap.String("crop", crop),
			zap.Error(err),
		)
	}
}

// GetFarmInsights gathers weather, disease risk and market data concurrently
// and asks the model for a prioritized action list. Failed sub-flows are
// passed on as Unavailable; only the final call can fail the flow.
func (s *Service) GetFarmInsights(ctx context.Context, in types.GetFarmInsightsInput) (out types.GetFarmInsightsOutput, err error) {
	ctx, end := s.trace(ctx, types.FlowGetFarmInsights)
	defer end(&err)

	var (
		weather Outcome[types.GetWeatherForecastOutput]
		disease Outcome[types.ForecastDiseaseOutbreakOutput]
		prices  Outcome[types.GetMarketPriceOutput]
	)
	var g errgroup.Group
	g.SetLimit(s.fanout)
	g.Go(func() error {
		weather = capture(s.GetWeatherForecast(ctx, types.GetWeatherForecastInput{Location: in.Region, Language: in.Language}))
		return nil
	})
	g.Go(func() error {
		disease = capture(s.ForecastDiseaseOutbreak(ctx, types.ForecastDiseaseOutbreakInput{Crop: in.Crop, Region: in.Region, Language: in.Language}))
		return nil
	})
	g.Go(func() error {
		prices = capture(s.GetMarketPrice(ctx, types.GetMarketPriceInput{Crop: in.Crop, Mandi: in.Region, Language: in.Language}))
		return nil
	})
	_ = g.Wait()
	s.logOutcome(types.FlowGetFarmInsights, types.FlowGetWeatherForecast, in.Crop, weather.Err)
	s.logOutcome(types.FlowGetFarmInsights, types.FlowForecastDiseaseOutbreak, in.Crop, disease.Err)
	s.logOutcome(types.FlowGetFarmInsights, types.FlowGetMarketPrice, in.Crop, prices.Err)

	r, err := prompt.FarmInsights(in, weather.Context(), disease.Context(), prices.Context())
	if err != nil {
		return out, renderErr(types.FlowGetFarmInsights, err)
	}
	out, _, err = run[types.GetFarmInsightsOutput](ctx, s, llmtool.Call{
		Flow:   types.FlowGetFarmInsights,
		Prompt: r,
		Output: types.GetFarmInsightsOutputSchema,
	})
	return out, err
}

// Candidates returns the crops compared against current, which is excluded
// regardless of case.
func (s *Service) Candidates(current string) []string {
	current = strings.TrimSpace(current)
	out := make([]string, 0, len(s.candidates))
	for _, c := range s.candidates {
		if !strings.EqualFold(c, current) {
			out = append(out, c)
		}
	}
	return out
}

// GetCropRecommendations fetches disease risk and market data for every
// candidate crop concurrently and asks the model to rank the best
// RecommendationCount alternatives.
func (s *Service) GetCropRecommendations(ctx context.Context, in types.GetCropRecommendationsInput) (out types.GetCropRecommendationsOutput, err error) {
	ctx, end := s.trace(ctx, types.FlowGetCropRecommendations)
	defer end(&err)

	crops := s.Candidates(in.CurrentCrop)
	diseases := make([]Outcome[types.ForecastDiseaseOutbreakOutput], len(crops))
	prices := make([]Outcome[types.GetMarketPriceOutput], len(crops))

	var g errgroup.Group
	g.SetLimit(s.fanout)
	for i, crop := range crops {
		g.Go(func() error {
			diseases[i] = capture(s.ForecastDiseaseOutbreak(ctx, types.ForecastDiseaseOutbreakInput{Crop: crop, Region: in.Region, Language: in.Language}))
			return nil
		})
		g.Go(func() error {
			prices[i] = capture(s.GetMarketPrice(ctx, types.GetMarketPriceInput{Crop: crop, Mandi: in.Region, Language: in.Language}))
			return nil
		})
	}
	_ = g.Wait()

	candidates := make([]prompt.Candidate, len(crops))
	for i, crop := range crops {
		s.logOutcome(types.FlowGetCropRecommendations, types.FlowForecastDiseaseOutbreak, crop, diseases[i].Err)
		s.logOutcome(types.FlowGetCropRecommendations, types.FlowGetMarketPrice, crop, prices[i].Err)
		candidates[i] = prompt.Candidate{Crop: crop, Disease: diseases[i].Context(), Market: prices[i].Context()}
	}

	r, err := prompt.CropRecommendations(in, candidates)
	if err != nil {
		return out, renderErr(types.FlowGetCropRecommendations, err)
	}
	out, _, err = run[types.GetCropRecommendationsOutput](ctx, s, llmtool.Call{
		Flow:   types.FlowGetCropRecommendations,
		Prompt: r,
		Output: types.GetCropRecommendationsOutputSchema,
	})
	if err != nil {
		return out, err
	}
	if len(out.Recommendations) > types.RecommendationCount {
		out.Recommendations = out.Recommendations[:types.RecommendationCount]
	}
	return out, nil
}
