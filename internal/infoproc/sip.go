package infoproc

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/egtaonline/market-sim/internal/event"
	"github.com/egtaonline/market-sim/internal/market"
)

// NBBO is the best bid and offer across all tracked markets. A side with a
// nil market is undefined.
type NBBO struct {
	BidMarket   *market.Market
	Bid         market.Price
	BidQuantity int
	AskMarket   *market.Market
	Ask         market.Price
	AskQuantity int
}

func (n NBBO) HasBid() bool { return n.BidMarket != nil }
func (n NBBO) HasAsk() bool { return n.AskMarket != nil }

// Spread returns ask minus bid, or +Inf when either side is undefined or
// the consolidated view is crossed.
func (n NBBO) Spread() float64 {
	if !n.HasBid() || !n.HasAsk() || n.Ask < n.Bid {
		return math.Inf(1)
	}
	return float64(n.Ask - n.Bid)
}

func (n NBBO) String() string {
	bid, ask := "-", "-"
	if n.HasBid() {
		bid = fmt.Sprintf("%d @ %s from %s", n.BidQuantity, n.Bid, n.BidMarket)
	}
	if n.HasAsk() {
		ask = fmt.Sprintf("%d @ %s from %s", n.AskQuantity, n.Ask, n.AskMarket)
	}
	return fmt.Sprintf("(BestBid: %s, BestAsk: %s)", bid, ask)
}

// SIP consolidates the already-delayed per-market quote streams into an
// NBBO, applying its own additional delay before the consolidated view
// updates. Wire it behind each market's QuoteProcessor via Forward, not
// directly to markets. Markets are scanned in tracking order, so
// simultaneous same-tick updates resolve deterministically.
type SIP struct {
	scheduler *event.Scheduler
	delay     event.TimeStamp
	log       *slog.Logger

	markets []*market.Market
	quotes  map[*market.Market]market.Quote
	nbbo    NBBO
}

func NewSIP(scheduler *event.Scheduler, delay event.TimeStamp, log *slog.Logger) (*SIP, error) {
	if delay < 0 {
		return nil, fmt.Errorf("sip delay %s is negative: %w", delay, market.ErrIllegalConfiguration)
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &SIP{
		scheduler: scheduler,
		delay:     delay,
		log:       log,
		quotes:    make(map[*market.Market]market.Quote),
	}, nil
}

func (s *SIP) Delay() event.TimeStamp { return s.delay }

// Track registers a market so its quotes participate in the NBBO. Tracking
// order fixes the scan order for tie-breaking.
func (s *SIP) Track(m *market.Market) {
	if _, ok := s.quotes[m]; ok {
		return
	}
	s.markets = append(s.markets, m)
	s.quotes[m] = market.Quote{}
}

// SendQuote implements market.QuoteSink for the QuoteProcessor forward
// chain. The consolidated view updates after the SIP's own delay.
func (s *SIP) SendQuote(m *market.Market, q market.Quote, now event.TimeStamp) {
	act := event.Activity{Name: "process-nbbo", Run: func(t event.TimeStamp) { s.ProcessQuote(m, q, t) }}
	if s.delay == 0 {
		s.scheduler.ExecuteActivity(act)
		return
	}
	s.scheduler.ScheduleActivity(now.Plus(s.delay), act)
}

// ProcessQuote folds one market's quote into the NBBO. Quotes older than
// the held view for that market are dropped.
func (s *SIP) ProcessQuote(m *market.Market, q market.Quote, now event.TimeStamp) {
	held, ok := s.quotes[m]
	if !ok {
		s.Track(m)
	} else if q.Time < held.Time {
		s.log.Debug("dropping stale quote", "market", m.ID(), "held", held.Time, "got", q.Time)
		return
	}
	s.quotes[m] = q

	var nbbo NBBO
	for _, mkt := range s.markets {
		mq := s.quotes[mkt]
		if mq.HasBid() && (nbbo.BidMarket == nil || mq.Bid > nbbo.Bid) {
			nbbo.BidMarket = mkt
			nbbo.Bid = mq.Bid
			nbbo.BidQuantity = mq.BidQuantity
		}
		if mq.HasAsk() && (nbbo.AskMarket == nil || mq.Ask < nbbo.Ask) {
			nbbo.AskMarket = mkt
			nbbo.Ask = mq.Ask
			nbbo.AskQuantity = mq.AskQuantity
		}
	}
	s.nbbo = nbbo
	s.log.Debug("nbbo updated", "nbbo", nbbo.String(), "time", now)
}

// NBBO returns the most recent consolidated view visible under the combined
// per-market and SIP delays.
func (s *SIP) NBBO() NBBO { return s.nbbo }
