package llm

import (
	"context"
	"sync/atomic"
)

type ctxKeyFlow struct{}
type ctxKeyCalls struct{}

// WithFlow tags ctx with the flow a model call belongs to.
func WithFlow(ctx context.Context, flow string) context.Context {
	return context.WithValue(ctx, ctxKeyFlow{}, flow)
}

// FlowFrom returns the flow tag stored in the context.
func FlowFrom(ctx context.Context) string {
	if v := ctx.Value(ctxKeyFlow{}); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return "unknown"
}

// WithCallCounter attaches a counter that CountCalls increments for every
// request made under ctx, including calls from sub-flows.
func WithCallCounter(ctx context.Context) (context.Context, *atomic.Int64) {
	n := new(atomic.Int64)
	return context.WithValue(ctx, ctxKeyCalls{}, n), n
}

func callCounterFrom(ctx context.Context) *atomic.Int64 {
	if v := ctx.Value(ctxKeyCalls{}); v != nil {
		if n, ok := v.(*atomic.Int64); ok {
			return n
		}
	}
	return nil
}
