// Package sim wires a complete simulation from a config: scheduler,
// fundamental, markets, information processors, SIP, background agents, and
// the observation collector.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/egtaonline/market-sim/internal/agent"
	"github.com/egtaonline/market-sim/internal/config"
	"github.com/egtaonline/market-sim/internal/event"
	"github.com/egtaonline/market-sim/internal/fundamental"
	"github.com/egtaonline/market-sim/internal/infoproc"
	"github.com/egtaonline/market-sim/internal/market"
	"github.com/egtaonline/market-sim/internal/obs"
)

// MarketSetup groups one market with its latency pipeline.
type MarketSetup struct {
	Market       *market.Market
	Quotes       *infoproc.QuoteProcessor
	Transactions *infoproc.TransactionProcessor
}

// Simulation is one fully-wired run. Build with New, drive with Run, then
// read results through Markets, Collector, and SIP.
type Simulation struct {
	cfg config.Config
	log *slog.Logger

	scheduler   *event.Scheduler
	rand        *rand.Rand
	fundamental *fundamental.Process
	markets     []MarketSetup
	sip         *infoproc.SIP
	collector   *obs.Collector
	agents      []*agent.Background
}

func New(cfg config.Config, log *slog.Logger) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	s := &Simulation{
		cfg:       cfg,
		log:       log,
		scheduler: event.NewScheduler(log),
		rand:      rand.New(rand.NewSource(cfg.Seed)),
		collector: obs.NewCollector(),
	}

	var err error
	s.fundamental, err = fundamental.New(
		cfg.Fundamental.Kappa,
		market.Price(cfg.Fundamental.Mean),
		cfg.Fundamental.ShockVar,
		cfg.Fundamental.ShockProb,
		s.rand,
	)
	if err != nil {
		return nil, err
	}

	s.sip, err = infoproc.NewSIP(s.scheduler, event.TimeStamp(cfg.SIPDelay), log)
	if err != nil {
		return nil, err
	}

	for i, mc := range cfg.Markets {
		setup, err := s.buildMarket(i, mc)
		if err != nil {
			return nil, fmt.Errorf("market %d: %w", i, err)
		}
		s.markets = append(s.markets, setup)
	}

	s.buildAgents(cfg.Agents)
	return s, nil
}

func (s *Simulation) buildMarket(id int, mc config.MarketConfig) (MarketSetup, error) {
	m, err := market.New(id, s.scheduler, s.log, market.Config{
		ClearInterval: event.TimeStamp(mc.ClearInterval),
		PricingWeight: mc.PricingWeight,
		TickSize:      int(mc.TickSize),
	})
	if err != nil {
		return MarketSetup{}, err
	}

	qp, err := infoproc.NewQuoteProcessor(s.scheduler, m, event.TimeStamp(mc.QuoteDelay), s.log)
	if err != nil {
		return MarketSetup{}, err
	}
	tp, err := infoproc.NewTransactionProcessor(s.scheduler, m, event.TimeStamp(mc.TransactionDelay), s.log)
	if err != nil {
		return MarketSetup{}, err
	}

	m.AddQuoteSink(qp)
	m.AddTransactionSink(tp)

	// The SIP consumes the processor's delayed output, so consolidated
	// latency is the per-market delay plus the SIP's own.
	qp.Forward(s.sip)
	s.sip.Track(m)

	s.collector.Watch(m)
	return MarketSetup{Market: m, Quotes: qp, Transactions: tp}, nil
}

// buildAgents distributes background traders round-robin across markets and
// schedules their first arrivals.
func (s *Simulation) buildAgents(ac config.AgentConfig) {
	for i := 0; i < ac.Num; i++ {
		mkt := s.markets[i%len(s.markets)].Market
		valuation := agent.NewFundamentalValuation(s.fundamental, ac.PrivateValueVar, s.rand)
		reentry := agent.ExpReentry{Rate: ac.ArrivalRate, Rand: s.rand}
		a := agent.NewBackground(i, s.scheduler, mkt, valuation, reentry, ac.MinShade, ac.MaxShade, s.rand, s.log)
		a.Arrive(event.TimeStamp(0).Plus(reentry.Next()))
		s.agents = append(s.agents, a)
	}
}

// Run drives the event loop to the configured horizon.
func (s *Simulation) Run() {
	s.log.Info("simulation starting", "seed", s.cfg.Seed, "horizon", s.cfg.Horizon,
		"markets", len(s.markets), "agents", len(s.agents))
	s.scheduler.ExecuteUntil(event.TimeStamp(s.cfg.Horizon))
	s.log.Info("simulation finished", "time", s.scheduler.Now())
}

func (s *Simulation) Markets() []MarketSetup    { return s.markets }
func (s *Simulation) SIP() *infoproc.SIP        { return s.sip }
func (s *Simulation) Collector() *obs.Collector { return s.collector }
func (s *Simulation) Agents() []*agent.Background {
	return s.agents
}

// Record persists the run's observations through a recorder.
func (s *Simulation) Record(ctx context.Context, rec obs.Recorder, run obs.Run) error {
	if err := rec.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	for _, setup := range s.markets {
		if err := rec.SaveTransactions(ctx, run.ID, obs.TransactionRows(setup.Market)); err != nil {
			return fmt.Errorf("failed to save transactions: %w", err)
		}
	}
	if err := rec.SaveSeries(ctx, run.ID, s.collector.SeriesPoints()); err != nil {
		return fmt.Errorf("failed to save series: %w", err)
	}
	if err := rec.SaveStats(ctx, run.ID, s.collector.Stats()); err != nil {
		return fmt.Errorf("failed to save stats: %w", err)
	}
	return nil
}
