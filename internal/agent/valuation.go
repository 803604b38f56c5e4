package agent

import (
	"math/rand"

	"github.com/egtaonline/market-sim/internal/event"
	"github.com/egtaonline/market-sim/internal/fundamental"
	"github.com/egtaonline/market-sim/internal/market"
	"github.com/egtaonline/market-sim/internal/rands"
)

// FundamentalValuation values a unit at the fundamental plus a private
// offset per side, drawn once at construction. The buy offset is drawn
// below the sell offset so the agent never values a purchase above a sale.
type FundamentalValuation struct {
	process    *fundamental.Process
	buyOffset  market.Price
	sellOffset market.Price
}

func NewFundamentalValuation(process *fundamental.Process, privateVar float64, r *rand.Rand) *FundamentalValuation {
	a := rands.Gaussian(r, 0, privateVar)
	b := rands.Gaussian(r, 0, privateVar)
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	return &FundamentalValuation{
		process:    process,
		buyOffset:  market.Price(lo),
		sellOffset: market.Price(hi),
	}
}

func (v *FundamentalValuation) Value(t event.TimeStamp, side market.Side) market.Price {
	base := v.process.ValueAt(t)
	if side == market.Buy {
		return base + v.buyOffset
	}
	return base + v.sellOffset
}
