package types

import "kisanmitra/internal/schema"

// Disease outbreak forecast ------------------------------------------------------

type ForecastDiseaseOutbreakInput struct {
	Crop     string `json:"crop"`
	Region   string `json:"region"`
	Language string `json:"language"`
}

type DiseaseRisk struct {
	DiseaseName       string `json:"diseaseName"`
	RiskLevel         string `json:"riskLevel"`
	RiskFactors       string `json:"riskFactors"`
	PreventiveActions string `json:"preventiveActions"`
}

type ForecastDiseaseOutbreakOutput struct {
	ForecastSummary string        `json:"forecastSummary"`
	DiseaseRisks    []DiseaseRisk `json:"diseaseRisks"`
}

var RiskLevels = []string{"Low", "Medium", "High", "Very High"}

var ForecastDiseaseOutbreakInputSchema = schema.Obj("Crop and region to forecast.",
	schema.Field("crop", cropName()),
	schema.Field("region", region()),
	schema.Field("language", language()),
)

var ForecastDiseaseOutbreakOutputSchema = schema.Obj("Disease risk for the coming week.",
	schema.Field("forecastSummary", text("A high-level summary of the disease risk for the week.")),
	schema.Field("diseaseRisks", schema.Arr("Potential diseases and their risk.", schema.Obj("One disease.",
		schema.Field("diseaseName", text("The name of the disease.")),
		schema.Field("riskLevel", schema.Enum("The risk level.", RiskLevels...)),
		schema.Field("riskFactors", text("The weather and other conditions behind the risk.")),
		schema.Field("preventiveActions", text("What the farmer can do now to reduce the risk.")),
	))),
)

func ValidateForecastDiseaseOutbreakInput(raw []byte) (ForecastDiseaseOutbreakInput, error) {
	return decode[ForecastDiseaseOutbreakInput](ForecastDiseaseOutbreakInputSchema, raw)
}
