package market

import (
	"fmt"
	"log/slog"

	"github.com/egtaonline/market-sim/internal/event"
)

// Config selects a market's clearing policy at construction. ClearInterval 0
// produces a continuous market; any positive interval a call market with
// uniform pricing. The decision is made once, here, never re-checked at
// runtime.
type Config struct {
	ClearInterval event.TimeStamp
	PricingWeight float64 // uniform price interpolation weight, call markets only
	TickSize      int
}

// New builds a market from cfg. A negative clear interval or a pricing
// weight outside [0, 1] is an IllegalConfiguration. A call market schedules
// its first clear at time 0, so it is live without any external kick.
func New(id int, scheduler *event.Scheduler, log *slog.Logger, cfg Config) (*Market, error) {
	if cfg.ClearInterval < 0 {
		return nil, fmt.Errorf("clear interval %s is negative: %w", cfg.ClearInterval, ErrIllegalConfiguration)
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	tickSize := cfg.TickSize
	if tickSize <= 0 {
		tickSize = 1
	}

	m := &Market{
		id:            id,
		scheduler:     scheduler,
		log:           log,
		book:          NewOrderBook(),
		clearInterval: cfg.ClearInterval,
	}
	if cfg.ClearInterval == 0 {
		m.rule = NewEarliestPriceClear(tickSize)
	} else {
		rule, err := NewUniformPriceClear(cfg.PricingWeight, tickSize)
		if err != nil {
			return nil, err
		}
		m.rule = rule
		m.nextClear = 0
		scheduler.ScheduleActivity(0, event.Activity{Name: "clear", Run: func(now event.TimeStamp) { m.Clear(now) }})
	}
	return m, nil
}
