package prompt

import (
	"strings"

	"kisanmitra/internal/types"
)

// DiagnoseCropDisease asks for a full diagnosis of the attached photo.
func DiagnoseCropDisease(in types.DiagnoseCropDiseaseInput) (Rendered, error) {
	return Render(
		Text("You are a plant pathologist who identifies crops and diagnoses their diseases. Farmers act on your answer, so be complete and practical."),
		Blank(),
		Text("Study the attached photo and work through these steps:"),
		Steps(
			"Identify the crop and put it in 'cropName'.",
			"Identify the disease or pest and put it in 'disease'.",
			"Rate the severity as Low, Medium or High in 'severity'.",
			"Describe what stage the problem has reached, based only on what the photo shows, in 'currentStage'.",
			"Explain how the disease will progress over the next 1-3 weeks if untreated in 'diseaseProgression'.",
			"List what the farmer must do right away in 'immediateSteps'.",
			"Give affordable, locally available remedies in 'remedies'.",
			"Give organic or natural remedies in 'organicRemedies'.",
			"Give pesticide or fungicide remedies in 'chemicalRemedies'.",
			"Explain how to prevent a recurrence in 'preventiveMeasures'.",
		),
		Blank(),
		Media("Crop image", in.PhotoDataURI),
		Blank(),
		Output(types.DiagnoseCropDiseaseOutputSchema),
		Language(in.Language),
	)
}

// GetMarketPrice asks for a price and trend, backed by the market data tool.
func GetMarketPrice(in types.GetMarketPriceInput, tool string) (Rendered, error) {
	return Render(
		Text("You are a market analyst for Indian agricultural mandis."),
		Blank(),
		Text("Analyse the current price of the crop at the mandi below and its last 7 days of prices."),
		Steps(
			"Call the '"+tool+"' tool with the crop and mandi to get the latest price and daily history.",
			"Base the analysis only on the tool result; the price and history are reported from it directly.",
			"Write a concise 'trendAnalysis', for example stable, rising, falling or volatile, and say why.",
			"Express every amount in Indian Rupees per quintal.",
		),
		Blank(),
		Section("QUERY",
			Item("Crop", in.Crop),
			Item("Mandi", in.Mandi),
		),
		Output(types.MarketAnswerSchema),
		Text("Answer with a single JSON object and nothing else."),
		Language(in.Language),
	)
}

// GetWeatherForecast asks for current conditions and a 5-day forecast.
func GetWeatherForecast(in types.GetWeatherForecastInput) (Rendered, error) {
	return Render(
		Text("You are a weather service for farmers. Give an accurate report for the location below."),
		Blank(),
		Steps(
			"Current conditions: temperature, condition, humidity and wind speed.",
			"A forecast for each of the next 5 days with day of week, date, high and low temperature, condition, icon name, average humidity and average wind speed.",
			"A short summary of the week that points out anything affecting field work, such as heavy rain, strong wind or heat.",
		),
		Text("Use Celsius for temperatures and km/h for wind speeds."),
		Blank(),
		Line("Location", in.Location),
		Blank(),
		Output(types.GetWeatherForecastOutputSchema),
		Language(in.Language),
	)
}

// ForecastDiseaseOutbreak asks for the disease risk of a crop in a region.
func ForecastDiseaseOutbreak(in types.ForecastDiseaseOutbreakInput) (Rendered, error) {
	return Render(
		Text("You are a plant pathologist forecasting disease outbreaks from crop, region and the coming week's weather."),
		Blank(),
		Section("INPUT",
			Item("Crop", in.Crop),
			Item("Region", in.Region),
		),
		Steps(
			"Consider the 7-day weather outlook for the region: temperature, humidity, rainfall and leaf wetness.",
			"Name the fungal, bacterial or viral diseases most likely to appear or spread on this crop.",
			"Rate each one Low, Medium, High or Very High and tie the rating to specific conditions.",
			"Give practical preventive actions the farmer can take now for each risk.",
			"Summarize the overall risk for the week.",
		),
		Blank(),
		Output(types.ForecastDiseaseOutbreakOutputSchema),
		Language(in.Language),
	)
}

// PredictYield asks for a yield range, confidence and recommendations.
func PredictYield(in types.PredictYieldInput) (Rendered, error) {
	photo := strings.TrimSpace(in.PhotoDataURI) != ""
	return Render(
		Text("You are an agronomist who forecasts crop yield from field details, local conditions and, when given, a photo of the field."),
		Blank(),
		Section("FIELD",
			Item("Crop", in.Crop),
			Item("Area (hectares)", Num(in.Hectares)),
			Item("Soil type", in.SoilType),
			Item("Region", in.Region),
			Item("Planting date", in.PlantingDate),
			Item("Rainfall estimate (mm/year)", Num(in.Rainfall)),
			When(photo, Text("- Field photo: check it for crop health, density, colour and signs of stress, disease or nutrient deficiency.")),
		),
		Steps(
			"Compare the rainfall estimate with typical weather for the region.",
			"Use typical soil properties for this soil type and region.",
			"Use typical vegetation health for this crop at its current stage as a proxy for satellite data.",
			"Use average historical yields in the region as a baseline.",
			"Estimate the current growth stage from the planting date.",
			"Predict the final yield as a range in tonnes per hectare.",
			"State High, Medium or Low confidence and why.",
			"Recommend concrete actions to secure or improve the yield.",
		),
		Blank(),
		When(photo, Media("Crop field image", in.PhotoDataURI), Blank()),
		Output(types.PredictYieldOutputSchema),
		Language(in.Language),
	)
}

// EstimateCarbonCredits asks for an IPCC-style credit estimate.
func EstimateCarbonCredits(in types.EstimateCarbonCreditsInput) (Rendered, error) {
	photo := strings.TrimSpace(in.PhotoDataURI) != ""
	return Render(
		Text("You estimate carbon credits for small farm projects using IPCC default methods (2006 guidelines and 2019 refinement, AFOLU)."),
		Blank(),
		When(in.ProjectType == types.ProjectAgroforestry,
			Text("This is an agroforestry project. Estimate annual CO2 sequestration from tree count, tree age from the planting year, and the growth of a typical fast-growing agroforestry species for the region."),
		),
		When(in.ProjectType == types.ProjectRiceCultivation,
			Text("This is a rice cultivation project. Estimate avoided methane against a baseline of continuous flooding with conventional straw handling, applying IPCC emission factors for the stated water and straw management."),
		),
		Steps(
			"Use conservative IPCC default values for the region.",
			"Report the annual credits in tonnes of CO2 equivalent.",
			"Explain the estimate simply and name the key factors.",
			"Give a revenue range in USD assuming 5 to 15 USD per tCO2e.",
			"List simple next steps to join a formal carbon program.",
		),
		When(photo, Text("A photo of the project area is attached. Mention that it can support later verification, but do not analyse it.")),
		Blank(),
		Section("PROJECT",
			Item("Project type", in.ProjectType),
			Item("Hectares", Num(in.Hectares)),
			Item("Region", in.Region),
			Item("Number of trees", IntPtr(in.TreeCount)),
			Item("Planting year", IntPtr(in.PlantingYear)),
			Item("Water management", in.WaterManagement),
			Item("Straw management", in.StrawManagement),
			Item("Planting date", in.PlantingDate),
			Item("Harvest date", in.HarvestDate),
		),
		When(photo, Media("Project photo", in.PhotoDataURI), Blank()),
		Output(types.EstimateCarbonCreditsOutputSchema),
		Language(in.Language),
	)
}

// FindGovernmentSchemes asks for schemes matching a query.
func FindGovernmentSchemes(in types.FindGovernmentSchemesInput) (Rendered, error) {
	return Render(
		Text("You help farmers find government schemes. For the query below, list the relevant schemes and explain eligibility, benefits and how to apply in plain words. Include the official link when you know it."),
		Blank(),
		Line("Query", in.Query),
		Blank(),
		Output(types.FindGovernmentSchemesOutputSchema),
		Language(in.Language),
	)
}

// AskAI renders a conversational turn with its history.
func AskAI(in types.AskAIInput) (Rendered, error) {
	var history []Fragment
	for _, turn := range in.History {
		label := "User"
		if turn.Role == types.RoleAssistant {
			label = "Assistant"
		}
		history = append(history, Line(label, turn.Text))
	}
	return Render(
		Text("You are KisanMitra, an assistant for farmers. Give helpful, accurate and concise advice on any agricultural topic."),
		Blank(),
		Section("CONVERSATION", history...),
		Line("Current question", in.Query),
		Blank(),
		Output(types.AskAIOutputSchema),
		Language(in.Language),
	)
}

// SpeechToText asks for a plain transcript of the attached audio.
func SpeechToText(in types.SpeechToTextInput) (Rendered, error) {
	return Render(
		Media("Recording", in.Audio),
		Textf("Transcribe the recording accurately. The speech is in %s. Reply with the transcript only.", strings.TrimSpace(in.Language)),
	)
}

// TextToSpeech renders the text to be spoken.
func TextToSpeech(in types.TextToSpeechInput) (Rendered, error) {
	return Render(
		When(strings.TrimSpace(in.Language) != "", Textf("Read the following text aloud in %s.", strings.TrimSpace(in.Language))),
		Text(in.Text),
	)
}

// FarmInsights asks the model to turn sub-flow results into a short,
// prioritized list. Each result is either a flow output or a marker string.
func FarmInsights(in types.GetFarmInsightsInput, weather, disease, market any) (Rendered, error) {
	return Render(
		Text("You are KisanMitra, a farm manager. Turn the data below into a short, prioritized list of actions for the coming week."),
		Blank(),
		Steps(
			"Review the weather forecast, disease risk forecast and market data.",
			"Find what needs the farmer's attention. Think about how the weather affects disease risk, irrigation and field work.",
			"Assign each insight a priority: High for anything that could cause real crop loss or needs immediate action.",
			"Give each insight a short title and one concrete recommendation.",
			"Assign a category and name the data source.",
			"Leave out anything routine. If there is no meaningful disease risk, do not add a disease insight.",
			"Some data may be marked unavailable because it could not be fetched. Do not guess it.",
		),
		Blank(),
		Section("FARM",
			Item("Crop", in.Crop),
			Item("Region", in.Region),
			Item("Planting date", in.PlantingDate),
			Item("Soil report", in.SoilReport),
			Item("Field history", in.History),
		),
		Section("FARM DATA",
			JSON("Weather forecast", weather),
			JSON("Disease risk forecast", disease),
			JSON("Market data", market),
		),
		Output(types.GetFarmInsightsOutputSchema),
		Language(in.Language),
	)
}

// Candidate is the data gathered for one alternative crop.
type Candidate struct {
	Crop    string `json:"crop"`
	Disease any    `json:"disease"`
	Market  any    `json:"market"`
}

// CropRecommendations asks the model to rank the candidates and keep the
// best three.
func CropRecommendations(in types.GetCropRecommendationsInput, candidates []Candidate) (Rendered, error) {
	return Render(
		Text("You are an agronomist advising a farmer on which crop to switch to next season. Recommend the top 3 alternatives from the candidate data."),
		Blank(),
		Steps(
			"Review the current crop, region, soil report and field history, then the market and disease data for each candidate.",
			"For each candidate judge soil suitability (use typical regional soil when no report is given), water needs against the regional climate, price trend and volatility, and disease risk.",
			"Score profitability from price trend and expected yield, and risk from price volatility and disease risk, each as High, Medium or Low.",
			"Rank the candidates. Prefer high profitability with low to medium risk.",
			"For the top 3 give the crop name, both scores, the reasoning behind profitability, the suitability analysis, and advice on seed varieties, sowing window and risks to watch.",
		),
		Text("Return exactly 3 recommendations, best first."),
		Blank(),
		Section("FARM",
			Item("Current crop", in.CurrentCrop),
			Item("Region", in.Region),
			Item("Soil report", orNotProvided(in.SoilReport)),
			Item("Field history", orNotProvided(in.History)),
		),
		Section("CANDIDATES", JSON("Candidate crop data", candidates)),
		Output(types.GetCropRecommendationsOutputSchema),
		Language(in.Language),
	)
}

func orNotProvided(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Not provided"
	}
	return s
}
