package market

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kisanmitra/internal/llmtool"
	"kisanmitra/internal/schema"
	"kisanmitra/internal/types"
)

var refDay = time.Date(2024, 3, 15, 17, 30, 0, 0, time.UTC)

func TestQuoteIsDeterministic(t *testing.T) {
	a := NewGenerator().Quote("Wheat", "Azadpur", refDay)
	b := NewGenerator().Quote("  wheat ", "AZADPUR", refDay.Add(-5*time.Hour))
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("quotes differ (-a +b):\n%s", diff)
	}
	c := NewGenerator().Quote("Wheat", "Azadpur", refDay.AddDate(0, 0, 1))
	assert.NotEqual(t, a.PriceHistory[0].Date, c.PriceHistory[0].Date)
}

func TestQuoteShape(t *testing.T) {
	for _, crop := range []string{"Wheat", "Rice", "Onion", "Cotton"} {
		q := NewGenerator().Quote(crop, "Nashik", refDay)
		require.Len(t, q.PriceHistory, types.PriceHistoryDays)
		assert.Equal(t, "2024-03-09", q.PriceHistory[0].Date)
		assert.Equal(t, "2024-03-15", q.PriceHistory[6].Date)
		assert.Equal(t, q.PriceHistory[6].Price, q.CurrentPrice)

		lo, hi := q.PriceHistory[0].Price, q.PriceHistory[0].Price
		for i, p := range q.PriceHistory {
			if i > 0 {
				assert.Less(t, q.PriceHistory[i-1].Date, p.Date)
			}
			assert.Equal(t, float64(int64(p.Price)), p.Price, "whole rupees")
			assert.GreaterOrEqual(t, p.Price, 1500*0.95-1)
			assert.LessOrEqual(t, p.Price, 4999*1.05+1)
			lo, hi = min(lo, p.Price), max(hi, p.Price)
		}
		// every point lies within +-5% of one base price
		assert.LessOrEqual(t, hi/lo, 1.05/0.95+0.001)
	}
}

func TestQuoteIsCachedAndCopied(t *testing.T) {
	g := NewGenerator()
	q := g.Quote("Maize", "Indore", refDay)
	q.PriceHistory[0].Price = -1
	again := g.Quote("maize", "indore", refDay)
	assert.NotEqual(t, -1.0, again.PriceHistory[0].Price)
	assert.Equal(t, 1, g.Len())
}

func TestToolConformsToSchema(t *testing.T) {
	reg := llmtool.NewRegistry(NewTool(NewGenerator(), func() time.Time { return refDay }))
	out, err := reg.Call(context.Background(), ToolName, json.RawMessage(`{"crop":"Soybean","mandi":"Latur"}`))
	require.NoError(t, err)
	require.NoError(t, schema.Validate(types.MarketDataSchema, out))

	var got types.MarketData
	require.NoError(t, json.Unmarshal(out, &got))
	want := NewGenerator().Quote("Soybean", "Latur", refDay)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("tool output mismatch (-want +got):\n%s", diff)
	}

	_, err = reg.Call(context.Background(), ToolName, json.RawMessage(`{"crop":"Soybean"}`))
	var ve *schema.ValidationError
	assert.ErrorAs(t, err, &ve)
}
