// Package market produces deterministic mandi price series. It stands in for
// a live price feed: the same crop, mandi and day always yield the same
// numbers.
package market

import (
	"hash/fnv"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"kisanmitra/internal/types"
)

const (
	basePriceFloor  = 1500
	basePriceSpread = 3500
	maxSwing        = 0.05

	cacheSize = 1024
	cacheTTL  = 24 * time.Hour
)

// Generator builds price series and memoizes them.
type Generator struct {
	cache *lru.Cache[string, cachedQuote]
}

type cachedQuote struct {
	data types.MarketData
	at   time.Time
}

func NewGenerator() *Generator {
	cache, err := lru.New[string, cachedQuote](cacheSize)
	if err != nil {
		// only reachable with a non-positive size
		panic(err)
	}
	return &Generator{cache: cache}
}

func key(crop, mandi string, ref time.Time) string {
	norm := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
	return norm(crop) + "|" + norm(mandi) + "|" + ref.Format(time.DateOnly)
}

// Quote returns the current price and the daily history for the
// PriceHistoryDays days ending on ref. Prices are INR per quintal.
func (g *Generator) Quote(crop, mandi string, ref time.Time) types.MarketData {
	k := key(crop, mandi, ref)
	if g != nil && g.cache != nil {
		if c, ok := g.cache.Get(k); ok && time.Since(c.at) < cacheTTL {
			return clone(c.data)
		}
	}
	q := generate(k, ref)
	if g != nil && g.cache != nil {
		g.cache.Add(k, cachedQuote{data: q, at: time.Now()})
	}
	return clone(q)
}

func generate(k string, ref time.Time) types.MarketData {
	h := fnv.New64a()
	_, _ = h.Write([]byte(k))
	seed := h.Sum64()

	base := float64(basePriceFloor + seed%basePriceSpread)
	rng := rand.New(rand.NewPCG(seed, seed>>1|1))
	day := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)

	hist := make([]types.PricePoint, types.PriceHistoryDays)
	for i := range hist {
		swing := (rng.Float64()*2 - 1) * maxSwing
		hist[i] = types.PricePoint{
			Date:  day.AddDate(0, 0, i-(types.PriceHistoryDays-1)).Format(time.DateOnly),
			Price: math.Round(base * (1 + swing)),
		}
	}
	return types.MarketData{CurrentPrice: hist[len(hist)-1].Price, PriceHistory: hist}
}

func clone(q types.MarketData) types.MarketData {
	q.PriceHistory = append([]types.PricePoint(nil), q.PriceHistory...)
	return q
}

// Len reports how many quotes are cached.
func (g *Generator) Len() int {
	if g == nil || g.cache == nil {
		return 0
	}
	return g.cache.Len()
}
