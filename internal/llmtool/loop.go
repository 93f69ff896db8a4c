package llmtool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"kisanmitra/internal/datauri"
	"kisanmitra/internal/llm"
	"kisanmitra/internal/prompt"
	"kisanmitra/internal/schema"
)

// DefaultMaxIters bounds model calls per invocation when Invoker.MaxIters is
// unset.
const DefaultMaxIters = 4

// Invoker runs the call/tool loop against a model.
type Invoker struct {
	Model    llm.Model
	Tools    *Registry
	MaxIters int
	Logger   *zap.Logger
}

// Call describes one invocation.
type Call struct {
	Flow    string
	System  string
	Prompt  prompt.Rendered
	History []llm.Message
	// Output is the schema the final answer must conform to. Nil accepts any
	// JSON value.
	Output *schema.Schema
	// Tools names the registered tools the model may call.
	Tools []string
}

// Result is the conformed answer together with what the tools returned.
type Result struct {
	Raw         json.RawMessage
	ToolResults []llm.ToolResult
	Iterations  int
	Usage       llm.Usage
}

func (inv *Invoker) logger() *zap.Logger {
	if inv.Logger == nil {
		return zap.NewNop()
	}
	return inv.Logger
}

func (inv *Invoker) request(c Call) *llm.Request {
	msgs := make([]llm.Message, 0, len(c.History)+1)
	msgs = append(msgs, c.History...)
	parts := []llm.Part{llm.TextPart(c.Prompt.Text)}
	for _, m := range c.Prompt.Media {
		parts = append(parts, llm.BlobPart(m))
	}
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Parts: parts})
	return &llm.Request{System: c.System, Messages: msgs, Schema: c.Output}
}

// Invoke sends the call and returns the conformed JSON answer. With no tools
// declared it makes exactly one model call. Tool calls are executed in order
// and their results sent back until the model answers or MaxIters is reached.
func (inv *Invoker) Invoke(ctx context.Context, c Call) (*Result, error) {
	if inv == nil || inv.Model == nil {
		return nil, &InvocationError{Flow: c.Flow, Err: errors.New("no model configured")}
	}
	ctx = llm.WithFlow(ctx, c.Flow)
	req := inv.request(c)
	if len(c.Tools) > 0 {
		specs, err := inv.Tools.Specs(c.Tools...)
		if err != nil {
			return nil, &InvocationError{Flow: c.Flow, Err: err}
		}
		req.Tools = specs
	}
	allowed := make(map[string]struct{}, len(c.Tools))
	for _, n := range c.Tools {
		allowed[n] = struct{}{}
	}
	max := inv.MaxIters
	if max <= 0 {
		max = DefaultMaxIters
	}

	res := &Result{}
	for i := 0; i < max; i++ {
		res.Iterations = i + 1
		resp, err := inv.Model.Generate(ctx, req)
		if err != nil {
			return nil, &InvocationError{Flow: c.Flow, Err: err}
		}
		res.Usage.InputTokens += resp.Usage.InputTokens
		res.Usage.OutputTokens += resp.Usage.OutputTokens
		if len(resp.Calls) == 0 {
			raw, err := conform(c.Flow, c.Output, resp.Text)
			if err != nil {
				return nil, err
			}
			res.Raw = raw
			return res, nil
		}

		calls := make([]llm.Part, 0, len(resp.Calls))
		results := make([]llm.Part, 0, len(resp.Calls))
		for _, call := range resp.Calls {
			if _, ok := allowed[call.Name]; !ok {
				return nil, &InvocationError{Flow: c.Flow, Err: fmt.Errorf("%w: %q", ErrToolNotAllowed, call.Name)}
			}
			tr := inv.runTool(ctx, c.Flow, call)
			if errors.Is(tr.err, ErrToolNotFound) {
				return nil, &InvocationError{Flow: c.Flow, Err: tr.err}
			}
			calls = append(calls, llm.Part{ToolCall: &call})
			results = append(results, llm.Part{ToolResult: &tr.ToolResult})
			res.ToolResults = append(res.ToolResults, tr.ToolResult)
		}
		req.Messages = append(req.Messages,
			llm.Message{Role: llm.RoleModel, Parts: calls},
			llm.Message{Role: llm.RoleUser, Parts: results},
		)
	}
	return nil, &InvocationError{Flow: c.Flow, Err: ErrMaxIterations}
}

type toolOutcome struct {
	llm.ToolResult
	err error
}

// runTool executes one call. Tool failures other than an unknown name are
// reported back to the model rather than aborting the invocation.
func (inv *Invoker) runTool(ctx context.Context, flow string, call llm.ToolCall) toolOutcome {
	out, err := inv.Tools.Call(ctx, call.Name, call.Args)
	tr := toolOutcome{ToolResult: llm.ToolResult{ID: call.ID, Name: call.Name, Output: out}, err: err}
	if err != nil {
		tr.Error = err.Error()
		inv.logger().Warn("tool call failed", zap.String("flow", flow), zap.String("tool", call.Name), zap.Error(err))
		return tr
	}
	inv.logger().Debug("tool call", zap.String("flow", flow), zap.String("tool", call.Name), zap.Int("output_bytes", len(out)))
	return tr
}

func conform(flow string, s *schema.Schema, text string) (json.RawMessage, error) {
	raw, err := ExtractJSON(text)
	if err != nil {
		return nil, &ParseError{Flow: flow, Raw: text, Err: err}
	}
	if s == nil {
		return raw, nil
	}
	norm, err := schema.Conform(s, raw)
	if err != nil {
		return nil, &ParseError{Flow: flow, Raw: text, Err: err}
	}
	return norm, nil
}

// InvokeText makes one call and returns the model's plain-text answer.
func (inv *Invoker) InvokeText(ctx context.Context, c Call) (string, error) {
	if inv == nil || inv.Model == nil {
		return "", &InvocationError{Flow: c.Flow, Err: errors.New("no model configured")}
	}
	req := inv.request(c)
	req.Schema = nil
	resp, err := inv.Model.Generate(llm.WithFlow(ctx, c.Flow), req)
	if err != nil {
		return "", &InvocationError{Flow: c.Flow, Err: err}
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", &InvocationError{Flow: c.Flow, Err: llm.ErrEmptyResponse}
	}
	return text, nil
}

// InvokeSpeech makes one call asking for spoken audio and returns the first
// audio part of the answer.
func (inv *Invoker) InvokeSpeech(ctx context.Context, c Call, voice string) (datauri.Blob, error) {
	if inv == nil || inv.Model == nil {
		return datauri.Blob{}, &InvocationError{Flow: c.Flow, Err: errors.New("no model configured")}
	}
	req := inv.request(c)
	req.Schema = nil
	req.Speech = &llm.SpeechConfig{Voice: voice}
	resp, err := inv.Model.Generate(llm.WithFlow(ctx, c.Flow), req)
	if err != nil {
		return datauri.Blob{}, &InvocationError{Flow: c.Flow, Err: err}
	}
	for _, m := range resp.Media {
		if m.Kind() == "audio" && len(m.Data) > 0 {
			return m, nil
		}
	}
	return datauri.Blob{}, &InvocationError{Flow: c.Flow, Err: llm.ErrEmptyResponse}
}
