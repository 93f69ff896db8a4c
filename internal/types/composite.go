package types

import "kisanmitra/internal/schema"

// Farm insights ------------------------------------------------------------------

type GetFarmInsightsInput struct {
	Crop         string `json:"crop"`
	Region       string `json:"region"`
	Language     string `json:"language"`
	PlantingDate string `json:"plantingDate,omitempty"`
	SoilReport   string `json:"soilReport,omitempty"`
	History      string `json:"history,omitempty"`
}

type Insight struct {
	Priority       string `json:"priority"`
	Category       string `json:"category"`
	Title          string `json:"title"`
	Recommendation string `json:"recommendation"`
	Source         string `json:"source"`
}

type GetFarmInsightsOutput struct {
	Insights []Insight `json:"insights"`
}

var (
	InsightPriorities = []string{"High", "Medium", "Low"}
	InsightCategories = []string{"Weather", "Disease", "Irrigation", "Market", "General"}
)

var GetFarmInsightsInputSchema = schema.Obj("Crop and region to analyse.",
	schema.Field("crop", cropName()),
	schema.Field("region", region()),
	schema.Field("language", language()),
	schema.Opt("plantingDate", schema.Str("Planting date in YYYY-MM-DD format.").As(schema.FormatDate)),
	schema.Opt("soilReport", schema.Str("Soil report text such as NPK values or pH.")),
	schema.Opt("history", schema.Str("Past treatments, yields or issues for this field.")),
)

var GetFarmInsightsOutputSchema = schema.Obj("Prioritized insights for the coming week.",
	schema.Field("insights", schema.Arr("Actionable insights, most urgent first.", schema.Obj("One insight.",
		schema.Field("priority", schema.Enum("Priority level.", InsightPriorities...)),
		schema.Field("category", schema.Enum("Insight category.", InsightCategories...)),
		schema.Field("title", text(`Short title, for example "Heavy Rain Expected".`)),
		schema.Field("recommendation", text("A concise action for the farmer.")),
		schema.Field("source", text(`Where the insight came from, for example "Weather Forecast".`)),
	))),
)

func ValidateGetFarmInsightsInput(raw []byte) (GetFarmInsightsInput, error) {
	return decode[GetFarmInsightsInput](GetFarmInsightsInputSchema, raw)
}

// Crop recommendations -----------------------------------------------------------

// RecommendationCount is how many ranked crops the recommendation flow returns.
const RecommendationCount = 3

type GetCropRecommendationsInput struct {
	CurrentCrop string `json:"currentCrop"`
	Region      string `json:"region"`
	Language    string `json:"language"`
	SoilReport  string `json:"soilReport,omitempty"`
	History     string `json:"history,omitempty"`
}

type CropRecommendation struct {
	CropName              string `json:"cropName"`
	ProfitabilityScore    string `json:"profitabilityScore"`
	RiskScore             string `json:"riskScore"`
	ProfitabilityAnalysis string `json:"profitabilityAnalysis"`
	Suitability           string `json:"suitability"`
	ActionableAdvice      string `json:"actionableAdvice"`
}

type GetCropRecommendationsOutput struct {
	Recommendations []CropRecommendation `json:"recommendations"`
}

var GetCropRecommendationsInputSchema = schema.Obj("Current crop and region.",
	schema.Field("currentCrop", schema.Str("The crop currently grown.").MinLen(2).Msg("Please enter your current crop.")),
	schema.Field("region", region()),
	schema.Field("language", language()),
	schema.Opt("soilReport", schema.Str("Soil report text such as NPK values or pH.")),
	schema.Opt("history", schema.Str("Past treatments, yields or issues for this field.")),
)

var GetCropRecommendationsOutputSchema = schema.Obj("Ranked alternative crops.",
	schema.Field("recommendations", schema.Arr("Exactly 3 crops, best first.", schema.Obj("One crop.",
		schema.Field("cropName", text("The recommended crop.")),
		schema.Field("profitabilityScore", text(`For example "High Profitability".`)),
		schema.Field("riskScore", text(`For example "Low Risk".`)),
		schema.Field("profitabilityAnalysis", text("Market demand, price trend and expected yield behind the score.")),
		schema.Field("suitability", text("Fit with the soil, water needs and climate.")),
		schema.Field("actionableAdvice", text("Seed varieties, sowing window and key risks.")),
	)).Len(RecommendationCount, 0)),
)

func ValidateGetCropRecommendationsInput(raw []byte) (GetCropRecommendationsInput, error) {
	return decode[GetCropRecommendationsInput](GetCropRecommendationsInputSchema, raw)
}
