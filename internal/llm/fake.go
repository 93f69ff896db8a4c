package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"kisanmitra/internal/datauri"
	"kisanmitra/internal/types"
)

// FakeClient returns deterministic, schema-conforming payloads per flow for
// offline runs. For requests that declare tools it first asks for the first
// tool, then answers from the tool result.
type FakeClient struct {
	now func() time.Time
}

func NewFakeClient(now func() time.Time) *FakeClient {
	if now == nil {
		now = time.Now
	}
	return &FakeClient{now: now}
}

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

var (
	reFakeCrop  = regexp.MustCompile(`(?m)^- Crop: (.+)$`)
	reFakeMandi = regexp.MustCompile(`(?m)^- Mandi: (.+)$`)
)

func (f *FakeClient) Generate(ctx context.Context, req *Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Speech != nil {
		// 250ms of 24kHz 16-bit mono silence.
		return &Response{Media: []datauri.Blob{{MIMEType: "audio/L16;codec=pcm;rate=24000", Data: make([]byte, 12000)}}}, nil
	}
	if len(req.Tools) > 0 {
		if out, ok := lastToolOutput(req); ok {
			return f.jsonResponse(map[string]any{
				"price":         gjson.GetBytes(out, "currentPrice").Float(),
				"trendAnalysis": "Prices moved within a narrow band over the week.",
				"priceHistory":  gjson.GetBytes(out, "priceHistory").Value(),
			})
		}
		text := lastText(req)
		args, _ := json.Marshal(map[string]string{
			"crop":  firstMatch(reFakeCrop, text),
			"mandi": firstMatch(reFakeMandi, text),
		})
		return &Response{Calls: []ToolCall{{ID: "fake-1", Name: req.Tools[0].Name, Args: args}}}, nil
	}
	if req.Schema == nil {
		return &Response{Text: "namaste"}, nil
	}
	return f.jsonResponse(f.canned(FlowFrom(ctx)))
}

func (f *FakeClient) jsonResponse(obj any) (*Response, error) {
	b, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("llm: fake encode: %w", err)
	}
	return &Response{Text: string(b)}, nil
}

func lastToolOutput(req *Request) (json.RawMessage, bool) {
	for i := len(req.Messages) - 1; i >= 0; i-- {
		for _, p := range req.Messages[i].Parts {
			if p.ToolResult != nil && p.ToolResult.Error == "" {
				return p.ToolResult.Output, true
			}
		}
	}
	return nil, false
}

func firstMatch(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func (f *FakeClient) canned(flow string) any {
	day := f.now()
	switch flow {
	case types.FlowDiagnoseCropDisease:
		return map[string]any{
			"cropName":           "Tomato",
			"disease":            "Early Blight",
			"severity":           "Medium",
			"currentStage":       "Concentric brown spots on the lower leaves.",
			"remedies":           "Remove infected leaves and spray neem oil.",
			"immediateSteps":     "Prune affected leaves and avoid overhead watering.",
			"preventiveMeasures": "Rotate crops and mulch the soil surface.",
			"organicRemedies":    "Neem oil or a baking soda spray every 7 days.",
			"chemicalRemedies":   "Mancozeb 2 g per litre at 10 day intervals.",
			"diseaseProgression": "Spots will spread to upper leaves and fruit within two weeks.",
		}
	case types.FlowGetWeatherForecast:
		days := make([]any, 0, 5)
		for i := 1; i <= 5; i++ {
			d := day.AddDate(0, 0, i)
			days = append(days, map[string]any{
				"day": d.Weekday().String(), "date": d.Format(time.DateOnly),
				"highTemp": 31, "lowTemp": 22, "condition": "Partly cloudy", "icon": "PartlyCloudy",
				"humidity": 68, "windSpeed": 12,
			})
		}
		return map[string]any{
			"current":  map[string]any{"temp": 29, "condition": "Partly cloudy", "humidity": 70, "windSpeed": 10},
			"forecast": days,
			"summary":  "Warm and humid with no heavy rain expected.",
		}
	case types.FlowForecastDiseaseOutbreak:
		return map[string]any{
			"forecastSummary": "Moderate fungal risk due to humid nights.",
			"diseaseRisks": []any{
				map[string]any{"diseaseName": "Leaf Blight", "riskLevel": "Medium", "riskFactors": "Humidity above 80% at night.", "preventiveActions": "Improve spacing and avoid evening irrigation."},
				map[string]any{"diseaseName": "Powdery Mildew", "riskLevel": "Low", "riskFactors": "Mild temperatures.", "preventiveActions": "Scout weekly."},
			},
		}
	case types.FlowPredictYield:
		return map[string]any{
			"predictedYield":  "4.2 - 4.8 t/ha",
			"recommendations": "Top-dress with 25 kg/ha urea and irrigate at grain fill.",
			"confidence":      "Medium, based on regional averages.",
		}
	case types.FlowEstimateCarbonCredits:
		return map[string]any{
			"estimatedCredits": 3.4,
			"explanation":      "IPCC 2019 Tier 1 defaults applied to the stated area.",
			"potentialRevenue": "USD 17 - 51 per year",
			"nextSteps":        "Contact an accredited project aggregator and keep field records.",
		}
	case types.FlowFindGovernmentSchemes:
		return map[string]any{
			"schemes": []any{
				map[string]any{
					"title":              "PM-KISAN",
					"eligibility":        "Landholding farmer families.",
					"benefits":           "INR 6000 per year in three instalments.",
					"applicationProcess": "Register on the PM-KISAN portal or at a Common Service Centre.",
					"link":               "https://pmkisan.gov.in",
				},
			},
		}
	case types.FlowAskAI:
		return map[string]any{"answer": "Irrigate early in the morning and check soil moisture first."}
	case types.FlowGetFarmInsights:
		return map[string]any{
			"insights": []any{
				map[string]any{"priority": "High", "category": "Disease", "title": "Blight risk rising", "recommendation": "Spray a protective fungicide before the humid spell.", "source": "Disease Risk Model"},
				map[string]any{"priority": "Medium", "category": "Irrigation", "title": "Hold irrigation", "recommendation": "Skip the next irrigation cycle.", "source": "Weather Forecast"},
			},
		}
	case types.FlowGetCropRecommendations:
		rec := func(crop, profit, risk string) map[string]any {
			return map[string]any{
				"cropName": crop, "profitabilityScore": profit, "riskScore": risk,
				"profitabilityAnalysis": "Stable prices and good expected yield.",
				"suitability":           "Suits the regional soil and rainfall.",
				"actionableAdvice":      "Use certified seed and sow at the start of the season.",
			}
		}
		return map[string]any{
			"recommendations": []any{
				rec("Soybean", "High Profitability", "Low Risk"),
				rec("Maize", "High Profitability", "Medium Risk"),
				rec("Chickpea", "Medium Profitability", "Low Risk"),
			},
		}
	}
	return map[string]any{}
}
