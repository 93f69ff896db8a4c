package types

import "kisanmitra/internal/schema"

// Market price -------------------------------------------------------------------

type GetMarketPriceInput struct {
	Crop     string `json:"crop"`
	Mandi    string `json:"mandi"`
	Language string `json:"language"`
}

type PricePoint struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

type GetMarketPriceOutput struct {
	Price         float64      `json:"price"`
	TrendAnalysis string       `json:"trendAnalysis"`
	PriceHistory  []PricePoint `json:"priceHistory"`
}

// MarketDataRequest and MarketData are the arguments and result of the
// market data tool the model calls during the market price flow.
type MarketDataRequest struct {
	Crop  string `json:"crop"`
	Mandi string `json:"mandi"`
}

type MarketData struct {
	CurrentPrice float64      `json:"currentPrice"`
	PriceHistory []PricePoint `json:"priceHistory"`
}

// PriceHistoryDays is the length of every price history series.
const PriceHistoryDays = 7

func pricePoint() *schema.Schema {
	return schema.Obj("One daily price point.",
		schema.Field("date", schema.Str("The date in YYYY-MM-DD format.").As(schema.FormatDate)),
		schema.Field("price", schema.Num("The price on that date in INR per quintal.").Coerced()),
	)
}

var GetMarketPriceInputSchema = schema.Obj("Crop and mandi to price.",
	schema.Field("crop", schema.Str("The crop to price.").MinLen(1).Msg("Crop name is required.")),
	schema.Field("mandi", schema.Str("The local mandi.").MinLen(1).Msg("Mandi name is required.")),
	schema.Field("language", language()),
)

var GetMarketPriceOutputSchema = schema.Obj("Current price and recent trend.",
	schema.Field("price", schema.Num("The current market price in INR per quintal.").Coerced()),
	schema.Field("trendAnalysis", text("A short analysis of the price trend.")),
	schema.Field("priceHistory", schema.Arr("Daily prices for the last 7 days, oldest first.", pricePoint())),
)

// MarketAnswerSchema is what the model itself must produce for the market
// price flow. Price and history are copied from the tool result afterwards,
// so anything the model echoes for them is dropped.
var MarketAnswerSchema = schema.Obj("Trend analysis of the market data.",
	schema.Field("trendAnalysis", text("A short analysis of the price trend.")),
)

var MarketDataRequestSchema = schema.Obj("Arguments of the market data tool.",
	schema.Field("crop", schema.Str("The crop to look up.").MinLen(1)),
	schema.Field("mandi", schema.Str("The mandi to look up.").MinLen(1)),
)

var MarketDataSchema = schema.Obj("Market data for one crop at one mandi.",
	schema.Field("currentPrice", schema.Num("The latest price in INR per quintal.").Pos()),
	schema.Field("priceHistory", schema.Arr("Daily prices, oldest first.", pricePoint()).
		Len(PriceHistoryDays, PriceHistoryDays)),
)

func ValidateGetMarketPriceInput(raw []byte) (GetMarketPriceInput, error) {
	return decode[GetMarketPriceInput](GetMarketPriceInputSchema, raw)
}
