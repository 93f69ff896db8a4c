package market

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"kisanmitra/internal/llm"
	"kisanmitra/internal/llmtool"
	"kisanmitra/internal/types"
)

// ToolName is the name the model uses to request market data.
const ToolName = "getMarketData"

// NewTool exposes gen as a model tool. now supplies the reference date.
func NewTool(gen *Generator, now func() time.Time) llmtool.Tool {
	if now == nil {
		now = time.Now
	}
	return llmtool.Tool{
		Spec: llm.ToolSpec{
			Name:        ToolName,
			Description: "Get the current price and the last 7 days of daily prices for a crop at a mandi, in INR per quintal.",
			Parameters:  types.MarketDataRequestSchema,
		},
		Output: types.MarketDataSchema,
		Call: func(ctx context.Context, args json.RawMessage) (any, error) {
			var req types.MarketDataRequest
			if err := json.Unmarshal(args, &req); err != nil {
				return nil, fmt.Errorf("decode arguments: %w", err)
			}
			return gen.Quote(req.Crop, req.Mandi, now()), nil
		},
	}
}
