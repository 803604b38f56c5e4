package agent

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egtaonline/market-sim/internal/event"
	"github.com/egtaonline/market-sim/internal/fundamental"
	"github.com/egtaonline/market-sim/internal/market"
)

type fixedValuation struct {
	price market.Price
}

func (v fixedValuation) Value(event.TimeStamp, market.Side) market.Price { return v.price }

type fixedReentry struct {
	wait event.TimeStamp
}

func (r fixedReentry) Next() event.TimeStamp { return r.wait }

func newCDA(t *testing.T, s *event.Scheduler) *market.Market {
	t.Helper()
	m, err := market.New(0, s, nil, market.Config{ClearInterval: 0, TickSize: 1})
	require.NoError(t, err)
	return m
}

func TestExpReentry(t *testing.T) {
	r := ExpReentry{Rate: 0.1, Rand: rand.New(rand.NewSource(1))}
	for i := 0; i < 100; i++ {
		assert.GreaterOrEqual(t, r.Next(), event.TimeStamp(1), "waits round up to whole ticks")
	}
}

func TestAgentSubmitsOneOrderPerArrival(t *testing.T) {
	s := event.NewScheduler(nil)
	m := newCDA(t, s)
	a := NewBackground(0, s, m, fixedValuation{price: 1000}, fixedReentry{wait: 50}, 0, 10, rand.New(rand.NewSource(1)), nil)

	a.Arrive(10)
	s.ExecuteUntil(9)
	assert.Empty(t, a.ActiveOrders())

	s.ExecuteUntil(10)
	require.Len(t, a.ActiveOrders(), 1)
	o := a.ActiveOrders()[0]
	assert.Equal(t, 1, o.Quantity())
	assert.Equal(t, event.TimeStamp(10), o.SubmitTime())
}

func TestAgentWithdrawsBeforeResubmitting(t *testing.T) {
	s := event.NewScheduler(nil)
	m := newCDA(t, s)
	a := NewBackground(0, s, m, fixedValuation{price: 1000}, fixedReentry{wait: 50}, 0, 10, rand.New(rand.NewSource(1)), nil)

	a.Arrive(0)
	s.ExecuteUntil(0)
	require.Len(t, a.ActiveOrders(), 1)

	s.ExecuteUntil(200)
	assert.Len(t, a.ActiveOrders(), 1, "one live order at a time")
	assert.Equal(t, 1, m.Book().Size())
}

func TestAgentShadesTowardSurplus(t *testing.T) {
	s := event.NewScheduler(nil)
	m := newCDA(t, s)
	value := market.Price(1000)
	a := NewBackground(0, s, m, fixedValuation{price: value}, fixedReentry{wait: 7}, 5, 50, rand.New(rand.NewSource(2)), nil)

	a.Arrive(0)
	s.ExecuteUntil(500)

	// Buys always price at or below value, sells at or above.
	require.Len(t, a.ActiveOrders(), 1)
	for _, o := range a.ActiveOrders() {
		if o.Side() == market.Buy {
			assert.LessOrEqual(t, o.Price(), value)
		} else {
			assert.GreaterOrEqual(t, o.Price(), value)
		}
	}
	assert.Empty(t, m.Transactions(), "a lone agent never trades with itself")
}

func TestAgentTracksFillsThroughCallbacks(t *testing.T) {
	s := event.NewScheduler(nil)
	m := newCDA(t, s)
	a := NewBackground(0, s, m, fixedValuation{price: 1000}, fixedReentry{wait: 1000}, 0, 0, rand.New(rand.NewSource(1)), nil)

	a.Arrive(0)
	s.ExecuteUntil(0)
	require.Len(t, a.ActiveOrders(), 1)
	resting := a.ActiveOrders()[0]

	// Cross the agent's order from the outside; the fill must clear its
	// active set without the agent polling anything.
	other := market.Side(market.Buy)
	if resting.Side() == market.Buy {
		other = market.Sell
	}
	_, err := m.SubmitOrder(nil, other, resting.Price(), 1, s.Now())
	require.NoError(t, err)

	assert.Empty(t, a.ActiveOrders())
}

func TestFundamentalValuationOrdersOffsets(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	p, err := fundamental.New(0.05, 100000, 1e6, 1, r)
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		v := NewFundamentalValuation(p, 1e6, r)
		buy := v.Value(10, market.Buy)
		sell := v.Value(10, market.Sell)
		assert.LessOrEqual(t, buy, sell, "an agent never values buying above selling")
	}
}
