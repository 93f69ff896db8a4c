package types

import "kisanmitra/internal/schema"

// Carbon credit estimation -------------------------------------------------------

const (
	ProjectAgroforestry    = "agroforestry"
	ProjectRiceCultivation = "rice_cultivation"
)

type EstimateCarbonCreditsInput struct {
	ProjectType string  `json:"projectType"`
	Hectares    float64 `json:"hectares"`
	Region      string  `json:"region"`
	Language    string  `json:"language"`

	TreeCount    *int `json:"treeCount,omitempty"`
	PlantingYear *int `json:"plantingYear,omitempty"`

	WaterManagement string `json:"waterManagement,omitempty"`
	StrawManagement string `json:"strawManagement,omitempty"`
	PlantingDate    string `json:"plantingDate,omitempty"`
	HarvestDate     string `json:"harvestDate,omitempty"`

	PhotoDataURI string `json:"photoDataUri,omitempty"`
}

type EstimateCarbonCreditsOutput struct {
	EstimatedCredits float64 `json:"estimatedCredits"`
	Explanation      string  `json:"explanation"`
	PotentialRevenue string  `json:"potentialRevenue"`
	NextSteps        string  `json:"nextSteps"`
}

var (
	ProjectTypes     = []string{ProjectAgroforestry, ProjectRiceCultivation}
	WaterManagements = []string{"flooded", "intermittent_awd", "drained"}
	StrawManagements = []string{"removed", "incorporated_retained", "burned"}
)

var EstimateCarbonCreditsInputSchema = schema.Obj("Project details for a carbon credit estimate.",
	schema.Field("projectType", schema.Enum("The type of carbon project.", ProjectTypes...).Msg("Please select a project type.")),
	schema.Field("hectares", schema.Num("Total area in hectares.").Pos().Coerced().Msg("Area must be a positive number.")),
	schema.Field("region", region()),
	schema.Field("language", language()),
	schema.Opt("treeCount", schema.Int("Number of trees planted.").Pos().Coerced().Msg("Tree count must be a positive whole number.")),
	schema.Opt("plantingYear", schema.Int("Year the trees were planted.").Pos().Coerced().Msg("Planting year must be a valid year.")),
	schema.Opt("waterManagement", schema.Enum("Water management practice for rice. AWD is Alternate Wetting and Drying.", WaterManagements...)),
	schema.Opt("strawManagement", schema.Enum("How rice straw is handled after harvest.", StrawManagements...)),
	schema.Opt("plantingDate", schema.Str("Rice planting date in YYYY-MM-DD format.").As(schema.FormatDate)),
	schema.Opt("harvestDate", schema.Str("Rice harvest date in YYYY-MM-DD format.").As(schema.FormatDate)),
	schema.Opt("photoDataUri", schema.Str("Optional geo-tagged photo of the project area.").
		As(schema.FormatImageURI).Msg("The project photo must be an image.")),
)

var EstimateCarbonCreditsOutputSchema = schema.Obj("Carbon credit estimate.",
	schema.Field("estimatedCredits", schema.Num("Estimated annual credits in tCO2e.").Coerced()),
	schema.Field("explanation", text("How the estimate was calculated, naming the IPCC methodology and key factors.")),
	schema.Field("potentialRevenue", text("Estimated annual revenue range in USD.")),
	schema.Field("nextSteps", text("Steps to enroll in a carbon credit program.")),
)

func ValidateEstimateCarbonCreditsInput(raw []byte) (EstimateCarbonCreditsInput, error) {
	return decode[EstimateCarbonCreditsInput](EstimateCarbonCreditsInputSchema, raw)
}
