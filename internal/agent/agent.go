// Package agent implements the background traders that drive order flow.
// Agents contain no scheduling or matching logic: they consume the market's
// submit/withdraw API and the delayed processor views, and they track their
// own resting orders only through the callbacks the market emits.
package agent

import (
	"log/slog"
	"math"
	"math/rand"

	"github.com/egtaonline/market-sim/internal/event"
	"github.com/egtaonline/market-sim/internal/market"
	"github.com/egtaonline/market-sim/internal/rands"
)

// Valuation prices one unit for one side at a time. Implementations combine
// the fundamental with whatever private component the agent carries.
type Valuation interface {
	Value(t event.TimeStamp, side market.Side) market.Price
}

// Reentry yields the wait until the agent's next strategy invocation.
type Reentry interface {
	Next() event.TimeStamp
}

// ExpReentry draws exponential interarrivals with a fixed rate, rounded up
// to whole ticks.
type ExpReentry struct {
	Rate float64
	Rand *rand.Rand
}

func (r ExpReentry) Next() event.TimeStamp {
	wait := rands.Exponential(r.Rand, r.Rate)
	if math.IsInf(wait, 1) {
		return event.TimeStamp(math.MaxInt64)
	}
	return event.TimeStamp(math.Ceil(wait))
}

// Background is a zero-intelligence background trader: on each arrival it
// withdraws its resting orders, picks a side at random, and shades a limit
// price a uniform offset away from its valuation.
type Background struct {
	id        int
	scheduler *event.Scheduler
	market    *market.Market
	valuation Valuation
	reentry   Reentry
	rand      *rand.Rand
	log       *slog.Logger

	// Uniform surplus range requested on each order.
	shadeMin, shadeMax float64

	active map[*market.Order]struct{}
}

func NewBackground(id int, scheduler *event.Scheduler, mkt *market.Market, valuation Valuation, reentry Reentry, shadeMin, shadeMax float64, r *rand.Rand, log *slog.Logger) *Background {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Background{
		id:        id,
		scheduler: scheduler,
		market:    mkt,
		valuation: valuation,
		reentry:   reentry,
		rand:      r,
		log:       log,
		shadeMin:  shadeMin,
		shadeMax:  shadeMax,
		active:    make(map[*market.Order]struct{}),
	}
}

func (a *Background) ID() int { return a.id }

// OrderAdded implements market.Owner.
func (a *Background) OrderAdded(o *market.Order) {
	a.active[o] = struct{}{}
}

// OrderRemoved implements market.Owner.
func (a *Background) OrderRemoved(o *market.Order) {
	delete(a.active, o)
}

// ActiveOrders returns the agent's view of its resting orders.
func (a *Background) ActiveOrders() []*market.Order {
	out := make([]*market.Order, 0, len(a.active))
	for o := range a.active {
		out = append(out, o)
	}
	return out
}

// Arrive schedules the agent's first strategy invocation at t.
func (a *Background) Arrive(t event.TimeStamp) {
	a.scheduler.ScheduleActivity(t, event.Activity{Name: "agent-strategy", Run: a.strategy})
}

func (a *Background) strategy(now event.TimeStamp) {
	// One live order at a time: withdraw anything still resting.
	for _, o := range a.ActiveOrders() {
		a.market.WithdrawOrder(o, now)
	}

	side := market.Buy
	if a.rand.Intn(2) == 0 {
		side = market.Sell
	}
	value := a.valuation.Value(now, side)
	shade := market.Price(rands.Uniform(a.rand, a.shadeMin, a.shadeMax))
	price := value - shade
	if side == market.Sell {
		price = value + shade
	}
	if price > 0 {
		if _, err := a.market.SubmitOrder(a, side, price, 1, now); err != nil {
			a.log.Warn("order rejected", "agent", a.id, "err", err)
		}
	}

	next := a.reentry.Next()
	if next < event.TimeStamp(math.MaxInt64)-now {
		a.scheduler.ScheduleActivity(now.Plus(next), event.Activity{Name: "agent-strategy", Run: a.strategy})
	}
}
