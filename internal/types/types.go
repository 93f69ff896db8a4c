// Package types holds the input and output records of every flow together
// with the schema values that validate them at runtime.
package types

import "kisanmitra/internal/schema"

// Flow names ---------------------------------------------------------------------

const (
	FlowDiagnoseCropDisease     = "diagnoseCropDisease"
	FlowGetMarketPrice          = "getMarketPrice"
	FlowGetWeatherForecast      = "getWeatherForecast"
	FlowForecastDiseaseOutbreak = "forecastDiseaseOutbreak"
	FlowPredictYield            = "predictYield"
	FlowEstimateCarbonCredits   = "estimateCarbonCredits"
	FlowFindGovernmentSchemes   = "findGovernmentSchemes"
	FlowAskAI                   = "askAI"
	FlowSpeechToText            = "speechToText"
	FlowTextToSpeech            = "textToSpeech"
	FlowGetFarmInsights         = "getFarmInsights"
	FlowGetCropRecommendations  = "getCropRecommendations"
)

// Flows lists every flow name in display order.
var Flows = []string{
	FlowDiagnoseCropDisease,
	FlowGetMarketPrice,
	FlowGetWeatherForecast,
	FlowForecastDiseaseOutbreak,
	FlowPredictYield,
	FlowEstimateCarbonCredits,
	FlowFindGovernmentSchemes,
	FlowAskAI,
	FlowSpeechToText,
	FlowTextToSpeech,
	FlowGetFarmInsights,
	FlowGetCropRecommendations,
}

// Shared field shapes ------------------------------------------------------------

func language() *schema.Schema {
	return schema.Str("The language the response must be written in.").MinLen(1).Msg("Language is required.")
}

func cropName() *schema.Schema {
	return schema.Str("The name of the crop.").MinLen(2).Msg("Please enter a crop name.")
}

func region() *schema.Schema {
	return schema.Str("The geographical region or state.").MinLen(2).Msg("Please enter a region.")
}

func text(desc string) *schema.Schema { return schema.Str(desc).MinLen(1) }

func decode[T any](s *schema.Schema, raw []byte) (T, error) {
	return schema.Decode[T](s, raw)
}
