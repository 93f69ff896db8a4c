package flow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"kisanmitra/internal/datauri"
	"kisanmitra/internal/llmtool"
	"kisanmitra/internal/market"
	"kisanmitra/internal/prompt"
	"kisanmitra/internal/types"
)

func (s *Service) DiagnoseCropDisease(ctx context.Context, in types.DiagnoseCropDiseaseInput) (out types.DiagnoseCropDiseaseOutput, err error) {
	ctx, end := s.trace(ctx, types.FlowDiagnoseCropDisease)
	defer end(&err)
	r, err := prompt.DiagnoseCropDisease(in)
	if err != nil {
		return out, renderErr(types.FlowDiagnoseCropDisease, err)
	}
	out, _, err = run[types.DiagnoseCropDiseaseOutput](ctx, s, llmtool.Call{
		Flow:   types.FlowDiagnoseCropDisease,
		Prompt: r,
		Output: types.DiagnoseCropDiseaseOutputSchema,
	})
	return out, err
}

// GetMarketPrice lets the model call the market data tool and write the trend
// analysis. The model only answers with trendAnalysis; price and history
// always come from the tool so the series stays deterministic.
func (s *Service) GetMarketPrice(ctx context.Context, in types.GetMarketPriceInput) (out types.GetMarketPriceOutput, err error) {
	ctx, end := s.trace(ctx, types.FlowGetMarketPrice)
	defer end(&err)
	r, err := prompt.GetMarketPrice(in, market.ToolName)
	if err != nil {
		return out, renderErr(types.FlowGetMarketPrice, err)
	}
	out, res, err := run[types.GetMarketPriceOutput](ctx, s, llmtool.Call{
		Flow:   types.FlowGetMarketPrice,
		Prompt: r,
		Output: types.MarketAnswerSchema,
		Tools:  []string{market.ToolName},
	})
	if err != nil {
		return out, err
	}
	data, ok := toolMarketData(res)
	if !ok {
		s.log.Debug("market tool not called, using generator", zap.String("crop", in.Crop), zap.String("mandi", in.Mandi))
		data = s.market.Quote(in.Crop, in.Mandi, s.now())
	}
	out.Price = data.CurrentPrice
	out.PriceHistory = data.PriceHistory
	return out, nil
}

func toolMarketData(res *llmtool.Result) (types.MarketData, bool) {
	for i := len(res.ToolResults) - 1; i >= 0; i-- {
		tr := res.ToolResults[i]
		if tr.Name != market.ToolName || tr.Error != "" {
			continue
		}
		var md types.MarketData
		if err := json.Unmarshal(tr.Output, &md); err == nil && len(md.PriceHistory) == types.PriceHistoryDays {
			return md, true
		}
	}
	return types.MarketData{}, false
}

func (s *Service) GetWeatherForecast(ctx context.Context, in types.GetWeatherForecastInput) (out types.GetWeatherForecastOutput, err error) {
	ctx, end := s.trace(ctx, types.FlowGetWeatherForecast)
	defer end(&err)
	r, err := prompt.GetWeatherForecast(in)
	if err != nil {
		return out, renderErr(types.FlowGetWeatherForecast, err)
	}
	out, _, err = run[types.GetWeatherForecastOutput](ctx, s, llmtool.Call{
		Flow:   types.FlowGetWeatherForecast,
		Prompt: r,
		Output: types.GetWeatherForecastOutputSchema,
	})
	return out, err
}

func (s *Service) ForecastDiseaseOutbreak(ctx context.Context, in types.ForecastDiseaseOutbreakInput) (out types.ForecastDiseaseOutbreakOutput, err error) {
	ctx, end := s.trace(ctx, types.FlowForecastDiseaseOutbreak)
	defer end(&err)
	r, err := prompt.ForecastDiseaseOutbreak(in)
	if err != nil {
		return out, renderErr(types.FlowForecastDiseaseOutbreak, err)
	}
	out, _, err = run[types.ForecastDiseaseOutbreakOutput](ctx, s, llmtool.Call{
		Flow:   types.FlowForecastDiseaseOutbreak,
		Prompt: r,
		Output: types.ForecastDiseaseOutbreakOutputSchema,
	})
	return out, err
}

func (s *Service) PredictYield(ctx context.Context, in types.PredictYieldInput) (out types.PredictYieldOutput, err error) {
	ctx, end := s.trace(ctx, types.FlowPredictYield)
	defer end(&err)
	r, err := prompt.PredictYield(in)
	if err != nil {
		return out, renderErr(types.FlowPredictYield, err)
	}
	out, _, err = run[types.PredictYieldOutput](ctx, s, llmtool.Call{
		Flow:   types.FlowPredictYield,
		Prompt: r,
		Output: types.PredictYieldOutputSchema,
	})
	return out, err
}

// EstimateCarbonCredits also archives the project photo, when one is given,
// for later verification. Archive failures do not fail the flow.
func (s *Service) EstimateCarbonCredits(ctx context.Context, in types.EstimateCarbonCreditsInput) (out types.EstimateCarbonCreditsOutput, err error) {
	ctx, end := s.trace(ctx, types.FlowEstimateCarbonCredits)
	defer end(&err)
	r, err := prompt.EstimateCarbonCredits(in)
	if err != nil {
		return out, renderErr(types.FlowEstimateCarbonCredits, err)
	}
	out, _, err = run[types.EstimateCarbonCreditsOutput](ctx, s, llmtool.Call{
		Flow:   types.FlowEstimateCarbonCredits,
		Prompt: r,
		Output: types.EstimateCarbonCreditsOutputSchema,
	})
	if err != nil {
		return out, err
	}
	if s.media != nil && len(r.Media) > 0 {
		key := photoKey("carbon", s.now().Format("2006-01-02"), r.Media[0])
		if aerr := s.media.Put(ctx, key, r.Media[0]); aerr != nil {
			s.log.Warn("archive project photo", zap.String("key", key), zap.Error(aerr))
		} else {
			s.log.Info("project photo archived", zap.String("key", key), zap.Int("bytes", len(r.Media[0].Data)))
		}
	}
	return out, nil
}

func photoKey(prefix, day string, b datauri.Blob) string {
	_, sub, _ := strings.Cut(b.MIMEType, "/")
	sub, _, _ = strings.Cut(sub, ";")
	if sub == "" {
		sub = "bin"
	}
	return fmt.Sprintf("%s/%s/%s.%s", prefix, day, uuid.NewString(), sub)
}

func (s *Service) FindGovernmentSchemes(ctx context.Context, in types.FindGovernmentSchemesInput) (out types.FindGovernmentSchemesOutput, err error) {
	ctx, end := s.trace(ctx, types.FlowFindGovernmentSchemes)
	defer end(&err)
	r, err := prompt.FindGovernmentSchemes(in)
	if err != nil {
		return out, renderErr(types.FlowFindGovernmentSchemes, err)
	}
	out, _, err = run[types.FindGovernmentSchemesOutput](ctx, s, llmtool.Call{
		Flow:   types.FlowFindGovernmentSchemes,
		Prompt: r,
		Output: types.FindGovernmentSchemesOutputSchema,
	})
	return out, err
}

func (s *Service) AskAI(ctx context.Context, in types.AskAIInput) (out types.AskAIOutput, err error) {
	ctx, end := s.trace(ctx, types.FlowAskAI)
	defer end(&err)
	r, err := prompt.AskAI(in)
	if err != nil {
		return out, renderErr(types.FlowAskAI, err)
	}
	out, _, err = run[types.AskAIOutput](ctx, s, llmtool.Call{
		Flow:   types.FlowAskAI,
		Prompt: r,
		Output: types.AskAIOutputSchema,
	})
	return out, err
}

func (s *Service) SpeechToText(ctx context.Context, in types.SpeechToTextInput) (out types.SpeechToTextOutput, err error) {
	ctx, end := s.trace(ctx, types.FlowSpeechToText)
	defer end(&err)
	r, err := prompt.SpeechToText(in)
	if err != nil {
		return out, renderErr(types.FlowSpeechToText, err)
	}
	text, err := s.inv.InvokeText(ctx, llmtool.Call{Flow: types.FlowSpeechToText, Prompt: r})
	if err != nil {
		return out, err
	}
	return types.SpeechToTextOutput{Text: text}, nil
}

// TextToSpeech returns the spoken text as a WAV data URI. Raw PCM from the
// model is wrapped in a WAV container.
func (s *Service) TextToSpeech(ctx context.Context, in types.TextToSpeechInput) (out types.TextToSpeechOutput, err error) {
	ctx, end := s.trace(ctx, types.FlowTextToSpeech)
	defer end(&err)
	r, err := prompt.TextToSpeech(in)
	if err != nil {
		return out, renderErr(types.FlowTextToSpeech, err)
	}
	audio, err := s.inv.InvokeSpeech(ctx, llmtool.Call{Flow: types.FlowTextToSpeech, Prompt: r}, s.voice)
	if err != nil {
		return out, err
	}
	wav, err := toWAV(audio)
	if err != nil {
		return out, &llmtool.ParseError{Flow: types.FlowTextToSpeech, Raw: audio.MIMEType, Err: err}
	}
	return types.TextToSpeechOutput{Media: datauri.Encode(wav)}, nil
}
