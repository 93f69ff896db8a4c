package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// ScriptedModel is a test double. Respond decides the answer for every call
// and the model records what it was asked.
type ScriptedModel struct {
	Respond func(flow string, req *Request) (*Response, error)

	mu    sync.Mutex
	calls []ScriptedCall
}

type ScriptedCall struct {
	Flow    string
	Request *Request
}

func (s *ScriptedModel) Name() string { return "scripted" }
func (s *ScriptedModel) Close() error { return nil }

func (s *ScriptedModel) Generate(ctx context.Context, req *Request) (*Response, error) {
	flow := FlowFrom(ctx)
	s.mu.Lock()
	s.calls = append(s.calls, ScriptedCall{Flow: flow, Request: req})
	s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Respond == nil {
		return nil, ErrEmptyResponse
	}
	return s.Respond(flow, req)
}

// Calls returns the recorded calls in arrival order.
func (s *ScriptedModel) Calls() []ScriptedCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ScriptedCall(nil), s.calls...)
}

// CallCount counts calls tagged with flow; an empty flow counts all.
func (s *ScriptedModel) CallCount(flow string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if flow == "" || c.Flow == flow {
			n++
		}
	}
	return n
}

// JSONResponse marshals v into a text response.
func JSONResponse(v any) (*Response, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &Response{Text: string(b)}, nil
}
