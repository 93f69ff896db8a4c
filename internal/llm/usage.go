package llm

import (
	"context"
	"sync"
)

// FlowUsage is the running total of model traffic for one flow.
type FlowUsage struct {
	Requests     int64 `json:"requests"`
	Errors       int64 `json:"errors"`
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// UsageLedger keeps per-flow usage in memory for the debug endpoint.
type UsageLedger struct {
	mu    sync.Mutex
	flows map[string]*FlowUsage
}

func NewUsageLedger() *UsageLedger {
	return &UsageLedger{flows: make(map[string]*FlowUsage)}
}

// Snapshot returns a copy of the current totals.
func (u *UsageLedger) Snapshot() map[string]FlowUsage {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make(map[string]FlowUsage, len(u.flows))
	for k, v := range u.flows {
		out[k] = *v
	}
	return out
}

func (u *UsageLedger) record(flow string, resp *Response, err error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	st, ok := u.flows[flow]
	if !ok {
		st = &FlowUsage{}
		u.flows[flow] = st
	}
	st.Requests++
	if err != nil {
		st.Errors++
		return
	}
	st.InputTokens += int64(resp.Usage.InputTokens)
	st.OutputTokens += int64(resp.Usage.OutputTokens)
}

// WithUsage records every call in ledger.
func WithUsage(ledger *UsageLedger) Middleware {
	return func(next Model) Model {
		return &usageClient{next: next, ledger: ledger}
	}
}

type usageClient struct {
	next   Model
	ledger *UsageLedger
}

func (c *usageClient) Name() string { return c.next.Name() }
func (c *usageClient) Close() error { return c.next.Close() }
func (c *usageClient) Generate(ctx context.Context, req *Request) (*Response, error) {
	resp, err := c.next.Generate(ctx, req)
	c.ledger.record(FlowFrom(ctx), resp, err)
	return resp, err
}
