// Package infoproc implements the latency-aware market-data pipeline:
// per-market quote and transaction processors plus the cross-market SIP
// consolidator. Delay is modeled by scheduling follow-up activities, never
// by blocking.
package infoproc

import (
	"fmt"
	"log/slog"

	"github.com/egtaonline/market-sim/internal/event"
	"github.com/egtaonline/market-sim/internal/market"
)

// QuoteProcessor buffers one market's quote stream behind a fixed delay. A
// quote generated at simulated time t becomes visible at t+delay; with delay
// 0 it is visible immediately. Before anything becomes visible the processor
// reports an undefined quote.
type QuoteProcessor struct {
	scheduler *event.Scheduler
	market    *market.Market
	delay     event.TimeStamp
	log       *slog.Logger

	quote   market.Quote
	forward []market.QuoteSink // notified as quotes become visible here
}

func NewQuoteProcessor(scheduler *event.Scheduler, m *market.Market, delay event.TimeStamp, log *slog.Logger) (*QuoteProcessor, error) {
	if delay < 0 {
		return nil, fmt.Errorf("quote delay %s is negative: %w", delay, market.ErrIllegalConfiguration)
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &QuoteProcessor{scheduler: scheduler, market: m, delay: delay, log: log}, nil
}

func (p *QuoteProcessor) Market() *market.Market { return p.market }
func (p *QuoteProcessor) Delay() event.TimeStamp { return p.delay }

// Forward registers a sink (typically the SIP) that consumes this
// processor's already-delayed output.
func (p *QuoteProcessor) Forward(sink market.QuoteSink) {
	p.forward = append(p.forward, sink)
}

// SendQuote implements market.QuoteSink. The quote becomes visible after
// this processor's delay.
func (p *QuoteProcessor) SendQuote(m *market.Market, q market.Quote, now event.TimeStamp) {
	act := event.Activity{Name: "process-quote", Run: func(t event.TimeStamp) { p.processQuote(m, q, t) }}
	if p.delay == 0 {
		p.scheduler.ExecuteActivity(act)
		return
	}
	p.scheduler.ScheduleActivity(now.Plus(p.delay), act)
}

func (p *QuoteProcessor) processQuote(m *market.Market, q market.Quote, now event.TimeStamp) {
	// A quote older than the held view is stale; staleness is judged by
	// MarketTime, not simulated time.
	if q.Time < p.quote.Time {
		p.log.Debug("dropping stale quote", "market", m.ID(), "held", p.quote.Time, "got", q.Time)
		return
	}
	p.quote = q
	for _, sink := range p.forward {
		sink.SendQuote(m, q, now)
	}
}

// Quote returns the most recent visible quote.
func (p *QuoteProcessor) Quote() market.Quote { return p.quote }
