package market

import (
	"fmt"
	"math"
)

// ClearingRule assigns execution prices to the matches extracted by one
// clear invocation. The rule is selected once at construction; market
// methods never branch on market kind at runtime.
type ClearingRule interface {
	// Prices returns one price per match, index-aligned with matches.
	Prices(matches []Match) []Price
}

// earliestPriceClear prices each match at the earlier-submitted (resting)
// order's limit price: standard continuous double auction execution.
type earliestPriceClear struct {
	tickSize int
}

func NewEarliestPriceClear(tickSize int) ClearingRule {
	return earliestPriceClear{tickSize: tickSize}
}

func (r earliestPriceClear) Prices(matches []Match) []Price {
	prices := make([]Price, len(matches))
	for i, m := range matches {
		if m.Buy.marketTime < m.Sell.marketTime {
			prices[i] = m.Buy.price.Quantize(r.tickSize)
		} else {
			prices[i] = m.Sell.price.Quantize(r.tickSize)
		}
	}
	return prices
}

// uniformPriceClear prices every match of one clear at a single price
// interpolated between the marginal matched buy and sell: weight 0 takes the
// seller's price, 1 the buyer's, 0.5 the midpoint.
type uniformPriceClear struct {
	weight   float64
	tickSize int
}

func NewUniformPriceClear(weight float64, tickSize int) (ClearingRule, error) {
	if weight < 0 || weight > 1 {
		return nil, fmt.Errorf("pricing weight %v outside [0, 1]: %w", weight, ErrIllegalConfiguration)
	}
	return uniformPriceClear{weight: weight, tickSize: tickSize}, nil
}

func (r uniformPriceClear) Prices(matches []Match) []Price {
	if len(matches) == 0 {
		return nil
	}
	minBuy := matches[0].Buy.price
	maxSell := matches[0].Sell.price
	for _, m := range matches[1:] {
		minBuy = min(minBuy, m.Buy.price)
		maxSell = max(maxSell, m.Sell.price)
	}
	clearing := Price(math.Round(r.weight*float64(minBuy) + (1-r.weight)*float64(maxSell))).Quantize(r.tickSize)

	prices := make([]Price, len(matches))
	for i := range prices {
		prices[i] = clearing
	}
	return prices
}
