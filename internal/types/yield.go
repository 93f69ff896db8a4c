package types

import "kisanmitra/internal/schema"

// Yield prediction ---------------------------------------------------------------

type PredictYieldInput struct {
	Crop         string  `json:"crop"`
	Hectares     float64 `json:"hectares"`
	SoilType     string  `json:"soilType"`
	Rainfall     float64 `json:"rainfall"`
	Region       string  `json:"region"`
	PlantingDate string  `json:"plantingDate"`
	Language     string  `json:"language"`
	PhotoDataURI string  `json:"photoDataUri,omitempty"`
}

type PredictYieldOutput struct {
	PredictedYield  string `json:"predictedYield"`
	Recommendations string `json:"recommendations"`
	Confidence      string `json:"confidence"`
}

var PredictYieldInputSchema = schema.Obj("Field details for a yield prediction.",
	schema.Field("crop", cropName()),
	schema.Field("hectares", schema.Num("Area of land in hectares.").Pos().Coerced().Msg("Area must be a positive number.")),
	schema.Field("soilType", schema.Str("Soil type such as Loamy, Sandy or Clay.").MinLen(1).Msg("Please select a soil type.")),
	schema.Field("rainfall", schema.Num("Average annual rainfall in mm.").Pos().Coerced().Msg("Rainfall must be a positive number.")),
	schema.Field("region", region()),
	schema.Field("plantingDate", schema.Str("Planting date in YYYY-MM-DD format.").As(schema.FormatDate).Msg("Please enter a planting date.")),
	schema.Field("language", language()),
	schema.Opt("photoDataUri", schema.Str("Optional photo of the field as a base64 data URI.").
		As(schema.FormatImageURI).Msg("The field photo must be an image.")),
)

var PredictYieldOutputSchema = schema.Obj("Yield forecast and advice.",
	schema.Field("predictedYield", text(`Predicted yield range with units, for example "4.5 - 5.0 t/ha".`)),
	schema.Field("recommendations", text("Actionable steps to secure or improve the yield.")),
	schema.Field("confidence", text("High, Medium or Low with a brief justification.")),
)

func ValidatePredictYieldInput(raw []byte) (PredictYieldInput, error) {
	return decode[PredictYieldInput](PredictYieldInputSchema, raw)
}
