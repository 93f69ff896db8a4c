package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	genai "google.golang.org/genai"

	"kisanmitra/internal/datauri"
)

const (
	DefaultGeminiModel       = "gemini-2.0-flash"
	DefaultGeminiSpeechModel = "gemini-2.5-flash-preview-tts"
	DefaultVoice             = "Algenib"
)

type GeminiConfig struct {
	APIKey      string
	Model       string
	SpeechModel string
}

// GeminiClient is a thin wrapper around the official genai client.
type GeminiClient struct {
	cli         *genai.Client
	model       string
	speechModel string
}

func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("llm: GEMINI_API_KEY is not set")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}
	if cfg.SpeechModel == "" {
		cfg.SpeechModel = DefaultGeminiSpeechModel
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("llm: gemini client: %w", err)
	}
	return &GeminiClient{cli: cli, model: cfg.Model, speechModel: cfg.SpeechModel}, nil
}

func (g *GeminiClient) Name() string { return "Gemini:" + g.model }
func (g *GeminiClient) Close() error { return nil }

func (g *GeminiClient) Generate(ctx context.Context, req *Request) (*Response, error) {
	model := g.model
	cfg := &genai.GenerateContentConfig{}
	if req.System != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.System}}}
	}
	switch {
	case req.Speech != nil:
		model = g.speechModel
		voice := req.Speech.Voice
		if voice == "" {
			voice = DefaultVoice
		}
		cfg.ResponseModalities = []string{string(genai.ModalityAudio)}
		cfg.SpeechConfig = &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voice},
			},
		}
	case len(req.Tools) > 0:
		// JSON mode and function calling cannot be combined.
		decls := make([]*genai.FunctionDeclaration, 0, len(req.Tools))
		for _, t := range req.Tools {
			decls = append(decls, &genai.FunctionDeclaration{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  toGenaiSchema(t.Parameters),
			})
		}
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	case req.Schema != nil:
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = toGenaiSchema(req.Schema)
	}

	contents, err := toContents(req.Messages)
	if err != nil {
		return nil, err
	}
	resp, err := g.cli.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("llm: gemini generate: %w", err)
	}
	return fromGenai(resp)
}

func toContents(msgs []Message) ([]*genai.Content, error) {
	out := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		c := &genai.Content{Role: m.Role}
		for _, p := range m.Parts {
			gp, err := toPart(p)
			if err != nil {
				return nil, err
			}
			c.Parts = append(c.Parts, gp)
		}
		out = append(out, c)
	}
	return out, nil
}

func toPart(p Part) (*genai.Part, error) {
	switch {
	case p.Blob != nil:
		return &genai.Part{InlineData: &genai.Blob{MIMEType: p.Blob.MIMEType, Data: p.Blob.Data}}, nil
	case p.ToolCall != nil:
		args := map[string]any{}
		if len(p.ToolCall.Args) > 0 {
			if err := json.Unmarshal(p.ToolCall.Args, &args); err != nil {
				return nil, fmt.Errorf("llm: tool call %s args: %w", p.ToolCall.Name, err)
			}
		}
		return &genai.Part{FunctionCall: &genai.FunctionCall{ID: p.ToolCall.ID, Name: p.ToolCall.Name, Args: args}}, nil
	case p.ToolResult != nil:
		body := map[string]any{}
		if p.ToolResult.Error != "" {
			body["error"] = p.ToolResult.Error
		} else {
			var output any
			if err := json.Unmarshal(p.ToolResult.Output, &output); err != nil {
				return nil, fmt.Errorf("llm: tool result %s: %w", p.ToolResult.Name, err)
			}
			body["output"] = output
		}
		return &genai.Part{FunctionResponse: &genai.FunctionResponse{ID: p.ToolResult.ID, Name: p.ToolResult.Name, Response: body}}, nil
	default:
		return &genai.Part{Text: p.Text}, nil
	}
}

func fromGenai(resp *genai.GenerateContentResponse) (*Response, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, ErrEmptyResponse
	}
	out := &Response{}
	var text strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p == nil || p.Thought {
			continue
		}
		switch {
		case p.FunctionCall != nil:
			args, err := json.Marshal(p.FunctionCall.Args)
			if err != nil {
				return nil, fmt.Errorf("llm: decode function call %s: %w", p.FunctionCall.Name, err)
			}
			out.Calls = append(out.Calls, ToolCall{ID: p.FunctionCall.ID, Name: p.FunctionCall.Name, Args: args})
		case p.InlineData != nil:
			out.Media = append(out.Media, datauri.Blob{MIMEType: p.InlineData.MIMEType, Data: p.InlineData.Data})
		default:
			text.WriteString(p.Text)
		}
	}
	out.Text = text.String()
	if u := resp.UsageMetadata; u != nil {
		out.Usage = Usage{InputTokens: int(u.PromptTokenCount), OutputTokens: int(u.CandidatesTokenCount)}
	}
	if strings.TrimSpace(out.Text) == "" && len(out.Calls) == 0 && len(out.Media) == 0 {
		return nil, ErrEmptyResponse
	}
	return out, nil
}
