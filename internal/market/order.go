// Package market implements the per-market matching primitive: the order
// book, the clearing policies, and the market that owns them both.
package market

import (
	"fmt"

	"github.com/egtaonline/market-sim/internal/event"
)

// Side of an order.
type Side int

const (
	Buy Side = iota + 1
	Sell
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return fmt.Sprintf("Side(%d)", int(s))
	}
}

// MarketTime is a per-market strictly increasing sequence number, assigned
// to every order, withdrawal and clear the market processes. It is
// independent of simulated time; it exists for price-time tie-breaking and
// as the clock the latency pipeline measures staleness against.
type MarketTime int64

// Owner is the agent-facing callback surface. The market is the canonical
// owner of an order; an Owner only mirrors "my active orders" through these
// callbacks.
type Owner interface {
	OrderAdded(*Order)
	OrderRemoved(*Order)
}

// Order is a resting limit order. It is created by Market.SubmitOrder,
// mutated only by its owning market's handlers, and belongs to exactly one
// market for its whole life.
type Order struct {
	owner      Owner
	market     *Market
	side       Side
	price      Price
	quantity   int // remaining, >= 0
	submitted  int // original quantity
	submitTime event.TimeStamp
	marketTime MarketTime
}

func (o *Order) Owner() Owner                { return o.owner }
func (o *Order) Market() *Market             { return o.market }
func (o *Order) Side() Side                  { return o.side }
func (o *Order) Price() Price                { return o.price }
func (o *Order) Quantity() int               { return o.quantity }
func (o *Order) Submitted() int              { return o.submitted }
func (o *Order) SubmitTime() event.TimeStamp { return o.submitTime }

// MarketTime returns the sequence number assigned at submission. A partial
// fill never refreshes it, so time priority is kept for the order's life.
func (o *Order) MarketTime() MarketTime { return o.marketTime }

func (o *Order) String() string {
	return fmt.Sprintf("%s %d @ %s (mt %d)", o.side, o.quantity, o.price, o.marketTime)
}
