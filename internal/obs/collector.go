package obs

import (
	"fmt"

	"github.com/egtaonline/market-sim/internal/event"
	"github.com/egtaonline/market-sim/internal/market"
)

// marketSeries holds the per-market series and summary stats the collector
// maintains.
type marketSeries struct {
	spread   TimeSeries
	midquote TimeSeries
	price    TimeSeries

	spreadStats SumStats
	priceStats  SumStats
	volume      int64
}

// Collector observes every market with zero latency and turns quotes and
// transactions into time series and summary statistics. Register it on each
// market directly rather than behind a processor.
type Collector struct {
	markets []*market.Market
	series  map[int]*marketSeries
}

func NewCollector() *Collector {
	return &Collector{series: make(map[int]*marketSeries)}
}

func (c *Collector) forMarket(m *market.Market) *marketSeries {
	s, ok := c.series[m.ID()]
	if !ok {
		s = &marketSeries{}
		c.series[m.ID()] = s
		c.markets = append(c.markets, m)
	}
	return s
}

// Watch registers the collector on a market's quote and transaction feeds.
func (c *Collector) Watch(m *market.Market) {
	c.forMarket(m)
	m.AddQuoteSink(c)
	m.AddTransactionSink(c)
}

func (c *Collector) SendQuote(m *market.Market, q market.Quote, now event.TimeStamp) {
	s := c.forMarket(m)
	spread := q.Spread()
	s.spread.Add(now, spread)
	s.spreadStats.Add(spread)
	s.midquote.Add(now, q.Midquote())
}

func (c *Collector) SendTransactions(m *market.Market, transactions []market.Transaction, now event.TimeStamp) {
	s := c.forMarket(m)
	for _, t := range transactions {
		s.price.Add(now, float64(t.Price))
		s.priceStats.Add(float64(t.Price))
		s.volume += int64(t.Quantity)
	}
}

// Spread returns the recorded spread series for a market.
func (c *Collector) Spread(m *market.Market) *TimeSeries { return &c.forMarket(m).spread }

// Midquote returns the recorded midquote series for a market.
func (c *Collector) Midquote(m *market.Market) *TimeSeries { return &c.forMarket(m).midquote }

// TransactionPrices returns the recorded transaction price series.
func (c *Collector) TransactionPrices(m *market.Market) *TimeSeries { return &c.forMarket(m).price }

// Stats flattens per-market summary statistics into named values, keyed
// like "market_0_spread_mean".
func (c *Collector) Stats() map[string]float64 {
	out := make(map[string]float64)
	for _, m := range c.markets {
		s := c.series[m.ID()]
		prefix := fmt.Sprintf("market_%d_", m.ID())
		if s.spreadStats.N() > 0 {
			out[prefix+"spread_mean"] = s.spreadStats.Mean()
			out[prefix+"spread_min"] = s.spreadStats.Min()
			out[prefix+"spread_max"] = s.spreadStats.Max()
		}
		if s.priceStats.N() > 0 {
			out[prefix+"price_mean"] = s.priceStats.Mean()
			out[prefix+"price_stddev"] = s.priceStats.Stddev()
		}
		out[prefix+"trades"] = float64(s.priceStats.N())
		out[prefix+"volume"] = float64(s.volume)
	}
	return out
}

// SeriesPoints flattens every recorded series into rows for persistence.
func (c *Collector) SeriesPoints() []SeriesPoint {
	var out []SeriesPoint
	for _, m := range c.markets {
		s := c.series[m.ID()]
		for _, named := range []struct {
			name string
			ts   *TimeSeries
		}{
			{"spread", &s.spread},
			{"midquote", &s.midquote},
			{"price", &s.price},
		} {
			for _, p := range named.ts.Points() {
				out = append(out, SeriesPoint{
					MarketID: m.ID(),
					Name:     named.name,
					Time:     int64(p.Time),
					Value:    p.Value,
				})
			}
		}
	}
	return out
}

// TransactionRows flattens a market's transaction history for persistence.
func TransactionRows(m *market.Market) []TransactionRow {
	transactions := m.Transactions()
	rows := make([]TransactionRow, len(transactions))
	for i, t := range transactions {
		rows[i] = TransactionRow{
			MarketID: m.ID(),
			Price:    int64(t.Price),
			Quantity: t.Quantity,
			ExecTime: int64(t.ExecTime),
		}
	}
	return rows
}
