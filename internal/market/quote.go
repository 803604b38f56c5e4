package market

import (
	"fmt"
	"math"

	"github.com/egtaonline/market-sim/internal/event"
)

// Quote is the best bid and ask of one market at a point in market time. A
// side with quantity 0 is undefined (no resting orders on that side; a real
// order always has positive quantity). Quotes are versioned by MarketTime,
// not TimeStamp, so latency can be measured independently of how many other
// simulated events occur.
type Quote struct {
	Market      *Market
	Bid         Price
	BidQuantity int
	Ask         Price
	AskQuantity int
	Time        MarketTime
}

func (q Quote) HasBid() bool { return q.BidQuantity > 0 }
func (q Quote) HasAsk() bool { return q.AskQuantity > 0 }

// IsDefined reports whether both sides of the quote exist.
func (q Quote) IsDefined() bool { return q.HasBid() && q.HasAsk() }

// Spread returns ask minus bid, or +Inf when either side is undefined.
func (q Quote) Spread() float64 {
	if !q.IsDefined() {
		return math.Inf(1)
	}
	return float64(q.Ask - q.Bid)
}

// Midquote returns the bid/ask midpoint, or NaN when either side is
// undefined.
func (q Quote) Midquote() float64 {
	if !q.IsDefined() {
		return math.NaN()
	}
	return float64(q.Bid+q.Ask) / 2
}

func (q Quote) String() string {
	bid, ask := "-", "-"
	if q.HasBid() {
		bid = fmt.Sprintf("%d @ %s", q.BidQuantity, q.Bid)
	}
	if q.HasAsk() {
		ask = fmt.Sprintf("%d @ %s", q.AskQuantity, q.Ask)
	}
	return fmt.Sprintf("(Bid: %s, Ask: %s)", bid, ask)
}

// Transaction records one execution. It is immutable once created; the
// quantity decremented from the buy and sell orders both equal Quantity.
type Transaction struct {
	Buyer     Owner
	Seller    Owner
	BuyOrder  *Order
	SellOrder *Order
	Price     Price
	Quantity  int
	ExecTime  event.TimeStamp
}

func (t Transaction) String() string {
	return fmt.Sprintf("Transaction %d @ %s at t=%s", t.Quantity, t.Price, t.ExecTime)
}
