package infoproc

import (
	"fmt"
	"log/slog"

	"github.com/egtaonline/market-sim/internal/event"
	"github.com/egtaonline/market-sim/internal/market"
)

// TransactionProcessor buffers one market's transaction stream behind a
// fixed delay. The visible list is append-only and never reorders
// transactions relative to their generation order: batches are emitted in
// generation order and all travel with the same delay, so arrival order is
// generation order.
type TransactionProcessor struct {
	scheduler *event.Scheduler
	market    *market.Market
	delay     event.TimeStamp
	log       *slog.Logger

	transactions []market.Transaction
}

func NewTransactionProcessor(scheduler *event.Scheduler, m *market.Market, delay event.TimeStamp, log *slog.Logger) (*TransactionProcessor, error) {
	if delay < 0 {
		return nil, fmt.Errorf("transaction delay %s is negative: %w", delay, market.ErrIllegalConfiguration)
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &TransactionProcessor{scheduler: scheduler, market: m, delay: delay, log: log}, nil
}

func (p *TransactionProcessor) Market() *market.Market { return p.market }
func (p *TransactionProcessor) Delay() event.TimeStamp { return p.delay }

// SendTransactions implements market.TransactionSink. The batch becomes
// visible after this processor's delay.
func (p *TransactionProcessor) SendTransactions(m *market.Market, batch []market.Transaction, now event.TimeStamp) {
	act := event.Activity{Name: "process-transactions", Run: func(t event.TimeStamp) { p.processTransactions(batch, t) }}
	if p.delay == 0 {
		p.scheduler.ExecuteActivity(act)
		return
	}
	p.scheduler.ScheduleActivity(now.Plus(p.delay), act)
}

func (p *TransactionProcessor) processTransactions(batch []market.Transaction, now event.TimeStamp) {
	p.transactions = append(p.transactions, batch...)
}

// Transactions returns the visible transaction list in generation order.
func (p *TransactionProcessor) Transactions() []market.Transaction {
	out := make([]market.Transaction, len(p.transactions))
	copy(out, p.transactions)
	return out
}
