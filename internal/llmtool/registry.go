// Package llmtool runs one model invocation for a flow: it builds the
// request, executes any tool calls the model makes, and checks the final
// answer against the flow's output schema.
package llmtool

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"kisanmitra/internal/llm"
	"kisanmitra/internal/schema"
)

// Tool is an in-process function the model may call during an invocation.
// Arguments are conformed to Spec.Parameters before Call runs and the result
// is conformed to Output afterwards.
type Tool struct {
	Spec   llm.ToolSpec
	Output *schema.Schema
	Call   func(ctx context.Context, args json.RawMessage) (any, error)
}

// Registry holds tool registrations and dispatches calls.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates a registry holding tools.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: map[string]Tool{}}
	for _, t := range tools {
		r.Register(t)
	}
	return r
}

// Register adds or replaces a tool by name.
func (r *Registry) Register(t Tool) {
	if r == nil || t.Spec.Name == "" || t.Call == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tools == nil {
		r.tools = map[string]Tool{}
	}
	r.tools[t.Spec.Name] = t
}

func (r *Registry) lookup(name string) (Tool, bool) {
	if r == nil {
		return Tool{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Specs returns the specs of the named tools in the given order.
func (r *Registry) Specs(names ...string) ([]llm.ToolSpec, error) {
	out := make([]llm.ToolSpec, 0, len(names))
	for _, n := range names {
		t, ok := r.lookup(n)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrToolNotFound, n)
		}
		out = append(out, t.Spec)
	}
	return out, nil
}

// Call invokes a registered tool and returns its conformed JSON output.
func (r *Registry) Call(ctx context.Context, name string, args json.RawMessage) (json.RawMessage, error) {
	t, ok := r.lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrToolNotFound, name)
	}
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}
	if t.Spec.Parameters != nil {
		norm, err := schema.Conform(t.Spec.Parameters, args)
		if err != nil {
			return nil, fmt.Errorf("%s: arguments: %w", name, err)
		}
		args = norm
	}
	v, err := t.Call(ctx, args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	out, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%s: encode output: %w", name, err)
	}
	if t.Output != nil {
		if out, err = schema.Conform(t.Output, out); err != nil {
			return nil, fmt.Errorf("%s: output: %w", name, err)
		}
	}
	return out, nil
}
