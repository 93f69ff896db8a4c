package flow

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kisanmitra/internal/llm"
	"kisanmitra/internal/llmtool"
	"kisanmitra/internal/types"
)

var insightsInput = types.GetFarmInsightsInput{Crop: "Tomato", Region: "Nashik", Language: "en"}

func TestFarmInsightsAllSourcesAvailable(t *testing.T) {
	svc, m := newService(fakeResponder(nil), Options{})
	out, err := svc.GetFarmInsights(context.Background(), insightsInput)
	require.NoError(t, err)
	assert.NotEmpty(t, out.Insights)

	synth := callsFor(m, types.FlowGetFarmInsights)
	require.Len(t, synth, 1)
	text := promptOf(synth[0])
	assert.NotContains(t, text, Unavailable)
	assert.Contains(t, text, `"forecastSummary"`)
	assert.Contains(t, text, `"priceHistory"`)

	weather := callsFor(m, types.FlowGetWeatherForecast)
	require.Len(t, weather, 1)
	assert.Contains(t, promptOf(weather[0]), "Nashik")
}

func TestFarmInsightsDegradesWhenMarketFails(t *testing.T) {
	svc, m := newService(fakeResponder(map[string]error{types.FlowGetMarketPrice: errors.New("feed down")}), Options{})
	out, err := svc.GetFarmInsights(context.Background(), insightsInput)
	require.NoError(t, err)
	assert.NotEmpty(t, out.Insights)

	text := promptOf(callsFor(m, types.FlowGetFarmInsights)[0])
	assert.Contains(t, text, "Market data:\n\""+Unavailable+"\"")
	assert.Equal(t, 1, strings.Count(text, Unavailable))
	assert.Contains(t, text, `"forecastSummary"`)
}

func TestFarmInsightsEverySubFlowFailing(t *testing.T) {
	boom := errors.New("boom")
	svc, m := newService(fakeResponder(map[string]error{
		types.FlowGetWeatherForecast:      boom,
		types.FlowForecastDiseaseOutbreak: boom,
		types.FlowGetMarketPrice:          boom,
	}), Options{})
	_, err := svc.GetFarmInsights(context.Background(), insightsInput)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(promptOf(callsFor(m, types.FlowGetFarmInsights)[0]), Unavailable))
}

func TestFarmInsightsSynthesisFailureIsFatal(t *testing.T) {
	boom := errors.New("synthesis down")
	svc, _ := newService(fakeResponder(map[string]error{types.FlowGetFarmInsights: boom}), Options{})
	_, err := svc.GetFarmInsights(context.Background(), insightsInput)
	require.ErrorIs(t, err, boom)
}

func TestCandidatesExcludeCurrentCrop(t *testing.T) {
	svc, _ := newService(fakeResponder(nil), Options{})
	got := svc.Candidates(" soybean ")
	assert.Len(t, got, len(DefaultCandidates)-1)
	assert.NotContains(t, got, "Soybean")

	svc, _ = newService(fakeResponder(nil), Options{Candidates: []string{"Bajra", "Ragi"}})
	assert.Equal(t, []string{"Bajra", "Ragi"}, svc.Candidates("Wheat"))
}

func recommendation(crop string) types.CropRecommendation {
	return types.CropRecommendation{
		CropName: crop, ProfitabilityScore: "High Profitability", RiskScore: "Low Risk",
		ProfitabilityAnalysis: "a", Suitability: "b", ActionableAdvice: "c",
	}
}

func recommendationsResponder(n int, fail map[string]error) func(string, *llm.Request) (*llm.Response, error) {
	base := fakeResponder(fail)
	return func(flow string, req *llm.Request) (*llm.Response, error) {
		if flow != types.FlowGetCropRecommendations {
			return base(flow, req)
		}
		crops := []string{"Maize", "Chickpea", "Millet", "Lentil", "Cotton"}
		recs := make([]types.CropRecommendation, 0, n)
		for _, c := range crops[:n] {
			recs = append(recs, recommendation(c))
		}
		return llm.JSONResponse(types.GetCropRecommendationsOutput{Recommendations: recs})
	}
}

var recInput = types.GetCropRecommendationsInput{CurrentCrop: "soybean", Region: "Vidarbha", Language: "en"}

func TestCropRecommendationsFanOutAndTruncate(t *testing.T) {
	svc, m := newService(recommendationsResponder(5, nil), Options{})
	out, err := svc.GetCropRecommendations(context.Background(), recInput)
	require.NoError(t, err)
	require.Len(t, out.Recommendations, types.RecommendationCount)
	assert.Equal(t, "Maize", out.Recommendations[0].CropName)

	assert.Equal(t, 7, m.CallCount(types.FlowForecastDiseaseOutbreak))
	// each market sub-flow makes a tool round trip
	assert.Equal(t, 14, m.CallCount(types.FlowGetMarketPrice))

	text := promptOf(callsFor(m, types.FlowGetCropRecommendations)[0])
	assert.NotContains(t, text, `"crop": "Soybean"`)
	assert.Contains(t, text, `"crop": "Maize"`)
	assert.NotContains(t, text, Unavailable)
	assert.Contains(t, text, "- Soil report: Not provided")
}

func TestCropRecommendationsDegradeOnSubFlowFailure(t *testing.T) {
	fail := map[string]error{types.FlowForecastDiseaseOutbreak: errors.New("model overloaded")}
	svc, m := newService(recommendationsResponder(3, fail), Options{Candidates: []string{"Maize", "Millet"}})
	out, err := svc.GetCropRecommendations(context.Background(), recInput)
	require.NoError(t, err)
	assert.Len(t, out.Recommendations, 3)

	text := promptOf(callsFor(m, types.FlowGetCropRecommendations)[0])
	assert.Equal(t, 2, strings.Count(text, `"disease": "`+Unavailable+`"`))
	assert.NotContains(t, text, `"market": "`+Unavailable+`"`)
}

func TestCropRecommendationsTooFewIsParseError(t *testing.T) {
	svc, _ := newService(recommendationsResponder(2, nil), Options{Candidates: []string{"Maize"}})
	_, err := svc.GetCropRecommendations(context.Background(), recInput)
	var pe *llmtool.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, types.FlowGetCropRecommendations, pe.Flow)
}
