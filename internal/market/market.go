package market

import (
	"fmt"
	"log/slog"

	"github.com/egtaonline/market-sim/internal/event"
)

// QuoteSink receives every quote a market generates, tagged with the
// simulated time of generation. Implementations decide how long the quote
// stays invisible.
type QuoteSink interface {
	SendQuote(m *Market, q Quote, now event.TimeStamp)
}

// TransactionSink receives the transactions produced by one clear, in
// generation order.
type TransactionSink interface {
	SendTransactions(m *Market, transactions []Transaction, now event.TimeStamp)
}

// Market owns one order book and one clearing rule. The book is mutated only
// from within this market's handlers, which in turn run only as scheduler
// activities; that is the whole locking discipline of the single-threaded
// simulation.
type Market struct {
	id        int
	scheduler *event.Scheduler
	log       *slog.Logger

	book          *OrderBook
	rule          ClearingRule
	clearInterval event.TimeStamp // 0 for a continuous market
	nextClear     event.TimeStamp

	marketTime MarketTime
	quote      Quote

	quoteSinks       []QuoteSink
	transactionSinks []TransactionSink

	orders       []*Order
	transactions []Transaction
}

func (m *Market) ID() int { return m.id }

// Continuous reports whether this market clears on every order event rather
// than at a fixed cadence.
func (m *Market) Continuous() bool { return m.clearInterval == 0 }

// AddQuoteSink registers a sink that will be notified of every quote update.
func (m *Market) AddQuoteSink(s QuoteSink) {
	m.quoteSinks = append(m.quoteSinks, s)
}

// AddTransactionSink registers a sink that will be notified of every
// transaction batch.
func (m *Market) AddTransactionSink(s TransactionSink) {
	m.transactionSinks = append(m.transactionSinks, s)
}

// SubmitOrder creates an order with a fresh MarketTime and rests it in the
// book. A continuous market clears immediately; a call market defers to its
// next scheduled clear. Non-positive price or quantity is an InvalidOrder.
func (m *Market) SubmitOrder(owner Owner, side Side, price Price, quantity int, now event.TimeStamp) (*Order, error) {
	if price <= 0 {
		return nil, fmt.Errorf("submit %s %d @ %s: non-positive price: %w", side, quantity, price, ErrInvalidOrder)
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("submit %s %d @ %s: non-positive quantity: %w", side, quantity, price, ErrInvalidOrder)
	}

	m.marketTime++
	o := &Order{
		owner:      owner,
		market:     m,
		side:       side,
		price:      price,
		quantity:   quantity,
		submitted:  quantity,
		submitTime: now,
		marketTime: m.marketTime,
	}
	m.book.Insert(o)
	m.orders = append(m.orders, o)
	if owner != nil {
		owner.OrderAdded(o)
	}
	m.log.Debug("order submitted", "market", m.id, "order", o.String(), "time", now)

	if m.Continuous() {
		m.scheduler.ExecuteActivity(event.Activity{Name: "clear", Run: func(t event.TimeStamp) { m.Clear(t) }})
	}
	return o, nil
}

// WithdrawOrder removes an order's full remaining quantity.
func (m *Market) WithdrawOrder(o *Order, now event.TimeStamp) {
	m.WithdrawQuantity(o, o.quantity, now)
}

// WithdrawQuantity removes up to quantity from an order; a request beyond
// the remaining quantity clips to what is available. The quote recomputes
// synchronously, but downstream visibility still flows through the latency
// pipeline like any other change.
func (m *Market) WithdrawQuantity(o *Order, quantity int, now event.TimeStamp) {
	m.marketTime++
	withdrawn := m.book.Withdraw(o, quantity)
	if withdrawn > 0 && o.quantity == 0 && o.owner != nil {
		o.owner.OrderRemoved(o)
	}
	m.log.Debug("order withdrawn", "market", m.id, "order", o.String(), "withdrawn", withdrawn, "time", now)
	m.UpdateQuote(now)
}

// Clear extracts matches while the book is crossed, prices them with this
// market's clearing rule, and emits the resulting transactions. A call
// market ignores clears off its cadence and self-schedules the next one.
// Clearing consumes no simulated time.
func (m *Market) Clear(now event.TimeStamp) {
	if !m.Continuous() {
		if now != m.nextClear {
			m.log.Debug("ignoring off-cadence clear", "market", m.id, "time", now, "next", m.nextClear)
			return
		}
		m.nextClear = now.Plus(m.clearInterval)
		m.scheduler.ScheduleActivity(m.nextClear, event.Activity{Name: "clear", Run: func(t event.TimeStamp) { m.Clear(t) }})
	}
	m.marketTime++

	var matches []Match
	for {
		match, ok := m.book.ExtractMatch()
		if !ok {
			break
		}
		matches = append(matches, match)
	}

	if len(matches) > 0 {
		prices := m.rule.Prices(matches)
		batch := make([]Transaction, len(matches))
		// One order can span several matches; OrderRemoved fires once per
		// destroyed order, not once per match.
		removed := make(map[*Order]struct{})
		notifyRemoved := func(o *Order) {
			if o.quantity != 0 || o.owner == nil {
				return
			}
			if _, ok := removed[o]; ok {
				return
			}
			removed[o] = struct{}{}
			o.owner.OrderRemoved(o)
		}
		for i, match := range matches {
			batch[i] = Transaction{
				Buyer:     match.Buy.owner,
				Seller:    match.Sell.owner,
				BuyOrder:  match.Buy,
				SellOrder: match.Sell,
				Price:     prices[i],
				Quantity:  match.Quantity,
				ExecTime:  now,
			}
			m.log.Info("transaction", "market", m.id, "price", prices[i], "quantity", match.Quantity, "time", now)
			notifyRemoved(match.Buy)
			notifyRemoved(match.Sell)
		}
		m.transactions = append(m.transactions, batch...)
		for _, sink := range m.transactionSinks {
			sink.SendTransactions(m, batch, now)
		}
	}

	m.UpdateQuote(now)
}

// ScheduleClear moves a call market's next clear to t. Continuous markets
// clear after every order and reject this control.
func (m *Market) ScheduleClear(t event.TimeStamp) error {
	if m.Continuous() {
		return fmt.Errorf("continuous market clears on every order: %w", ErrUnsupportedOperation)
	}
	m.nextClear = t
	m.scheduler.ScheduleActivity(t, event.Activity{Name: "clear", Run: func(now event.TimeStamp) { m.Clear(now) }})
	return nil
}

// UpdateQuote recomputes the zero-latency quote from current book state and
// forwards it to every registered sink.
func (m *Market) UpdateQuote(now event.TimeStamp) {
	q := Quote{Market: m, Time: m.marketTime}
	if best, ok := m.book.BestBuy(); ok {
		q.Bid = best.price
		q.BidQuantity = m.book.depthAt(Buy, best.price)
	}
	if best, ok := m.book.BestSell(); ok {
		q.Ask = best.price
		q.AskQuantity = m.book.depthAt(Sell, best.price)
	}
	m.quote = q
	m.log.Debug("quote updated", "market", m.id, "quote", q.String(), "time", now)
	for _, sink := range m.quoteSinks {
		sink.SendQuote(m, q, now)
	}
}

// Quote returns the true zero-latency quote. Privileged: agents should read
// their market's QuoteProcessor instead.
func (m *Market) Quote() Quote { return m.quote }

// Transactions returns every transaction this market has produced, in
// execution order. Privileged, like Quote.
func (m *Market) Transactions() []Transaction {
	out := make([]Transaction, len(m.transactions))
	copy(out, m.transactions)
	return out
}

// Book exposes the order book for inspection. Callers must not mutate it
// outside this market's handlers.
func (m *Market) Book() *OrderBook { return m.book }

func (m *Market) String() string {
	kind := "call"
	if m.Continuous() {
		kind = "cda"
	}
	return fmt.Sprintf("%s-market[%d]", kind, m.id)
}
