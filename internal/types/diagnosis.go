package types

import "kisanmitra/internal/schema"

// Crop disease diagnosis ---------------------------------------------------------

type DiagnoseCropDiseaseInput struct {
	PhotoDataURI string `json:"photoDataUri"`
	Language     string `json:"language"`
}

type DiagnoseCropDiseaseOutput struct {
	CropName           string `json:"cropName"`
	Disease            string `json:"disease"`
	Severity           string `json:"severity"`
	CurrentStage       string `json:"currentStage"`
	Remedies           string `json:"remedies"`
	ImmediateSteps     string `json:"immediateSteps"`
	PreventiveMeasures string `json:"preventiveMeasures"`
	OrganicRemedies    string `json:"organicRemedies"`
	ChemicalRemedies   string `json:"chemicalRemedies"`
	DiseaseProgression string `json:"diseaseProgression"`
}

var Severities = []string{"Low", "Medium", "High"}

var DiagnoseCropDiseaseInputSchema = schema.Obj("Photo of a diseased crop.",
	schema.Field("photoDataUri", schema.Str("A photo of the crop as a base64 data URI.").
		As(schema.FormatImageURI).Msg("Image is required.")),
	schema.Field("language", language()),
)

var DiagnoseCropDiseaseOutputSchema = schema.Obj("Diagnosis of the crop shown in the photo.",
	schema.Field("cropName", text("The crop identified in the image.")),
	schema.Field("disease", text("The name of the disease or pest.")),
	schema.Field("severity", schema.Enum("How severe the problem is.", Severities...)),
	schema.Field("currentStage", text("The stage of the disease or infestation visible in the photo.")),
	schema.Field("remedies", text("General, affordable, locally available remedies.")),
	schema.Field("immediateSteps", text("What the farmer should do right away to limit the damage.")),
	schema.Field("preventiveMeasures", text("How to prevent the problem from coming back.")),
	schema.Field("organicRemedies", text("Organic and natural remedies.")),
	schema.Field("chemicalRemedies", text("Pesticide or fungicide based remedies.")),
	schema.Field("diseaseProgression", text("How the disease will progress over the next weeks if left untreated.")),
)

func ValidateDiagnoseCropDiseaseInput(raw []byte) (DiagnoseCropDiseaseInput, error) {
	return decode[DiagnoseCropDiseaseInput](DiagnoseCropDiseaseInputSchema, raw)
}
