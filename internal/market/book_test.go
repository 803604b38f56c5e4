package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrder(side Side, price Price, qty int, mt MarketTime) *Order {
	return &Order{side: side, price: price, quantity: qty, submitted: qty, marketTime: mt}
}

func TestInsertOrdering(t *testing.T) {
	tests := []struct {
		name   string
		orders []*Order
		side   Side
		want   []Price
	}{
		{
			name: "buys by price descending",
			orders: []*Order{
				newOrder(Buy, 100, 1, 1),
				newOrder(Buy, 105, 1, 2),
				newOrder(Buy, 95, 1, 3),
			},
			side: Buy,
			want: []Price{105, 100, 95},
		},
		{
			name: "sells by price ascending",
			orders: []*Order{
				newOrder(Sell, 100, 1, 1),
				newOrder(Sell, 95, 1, 2),
				newOrder(Sell, 105, 1, 3),
			},
			side: Sell,
			want: []Price{95, 100, 105},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewOrderBook()
			for _, o := range tt.orders {
				b.Insert(o)
			}
			queue := b.buys
			if tt.side == Sell {
				queue = b.sells
			}
			require.Len(t, queue, len(tt.want))
			for i, p := range tt.want {
				assert.Equal(t, p, queue[i].price)
			}
		})
	}
}

func TestSamePriceTimePriority(t *testing.T) {
	t.Run("buys", func(t *testing.T) {
		b := NewOrderBook()
		second := newOrder(Buy, 100, 1, 2)
		first := newOrder(Buy, 100, 1, 1)
		b.Insert(second)
		b.Insert(first)

		best, ok := b.BestBuy()
		require.True(t, ok)
		assert.Same(t, first, best, "earlier MarketTime wins at equal price")
	})

	t.Run("sells", func(t *testing.T) {
		b := NewOrderBook()
		second := newOrder(Sell, 100, 1, 2)
		first := newOrder(Sell, 100, 1, 1)
		b.Insert(second)
		b.Insert(first)

		best, ok := b.BestSell()
		require.True(t, ok)
		assert.Same(t, first, best, "earlier MarketTime wins at equal price")
	})
}

func TestCrossed(t *testing.T) {
	b := NewOrderBook()
	assert.False(t, b.Crossed())

	b.Insert(newOrder(Buy, 100, 1, 1))
	assert.False(t, b.Crossed())

	b.Insert(newOrder(Sell, 105, 1, 2))
	assert.False(t, b.Crossed())

	b.Insert(newOrder(Sell, 100, 1, 3))
	assert.True(t, b.Crossed(), "equal prices cross")
}

func TestExtractMatchPartialFill(t *testing.T) {
	b := NewOrderBook()
	buy := newOrder(Buy, 100, 5, 1)
	sell := newOrder(Sell, 95, 2, 2)
	b.Insert(buy)
	b.Insert(sell)

	m, ok := b.ExtractMatch()
	require.True(t, ok)
	assert.Equal(t, 2, m.Quantity)
	assert.Same(t, buy, m.Buy)
	assert.Same(t, sell, m.Sell)

	// The buy keeps its remainder and its original MarketTime.
	assert.Equal(t, 3, buy.quantity)
	assert.Equal(t, MarketTime(1), buy.marketTime)
	assert.Equal(t, 0, sell.quantity)

	best, ok := b.BestBuy()
	require.True(t, ok)
	assert.Same(t, buy, best)
	_, ok = b.BestSell()
	assert.False(t, ok, "consumed sell leaves the book")
}

func TestExtractMatchUncrossed(t *testing.T) {
	b := NewOrderBook()
	b.Insert(newOrder(Buy, 90, 1, 1))
	b.Insert(newOrder(Sell, 100, 1, 2))

	_, ok := b.ExtractMatch()
	assert.False(t, ok)
	assert.Equal(t, 2, b.Size())
}

func TestPartialFillKeepsPriority(t *testing.T) {
	b := NewOrderBook()
	big := newOrder(Buy, 100, 5, 1)
	late := newOrder(Buy, 100, 1, 2)
	b.Insert(big)
	b.Insert(late)
	b.Insert(newOrder(Sell, 100, 2, 3))

	m, ok := b.ExtractMatch()
	require.True(t, ok)
	assert.Same(t, big, m.Buy)
	assert.Equal(t, 2, m.Quantity)

	// After the partial fill the big order still outranks the later one.
	b.Insert(newOrder(Sell, 100, 1, 4))
	m, ok = b.ExtractMatch()
	require.True(t, ok)
	assert.Same(t, big, m.Buy)
}

func TestWithdraw(t *testing.T) {
	tests := []struct {
		name          string
		quantity      int
		withdraw      int
		wantWithdrawn int
		wantRemaining int
		wantInBook    bool
	}{
		{name: "partial", quantity: 5, withdraw: 2, wantWithdrawn: 2, wantRemaining: 3, wantInBook: true},
		{name: "full", quantity: 5, withdraw: 5, wantWithdrawn: 5, wantRemaining: 0, wantInBook: false},
		{name: "clamped", quantity: 5, withdraw: 9, wantWithdrawn: 5, wantRemaining: 0, wantInBook: false},
		{name: "zero", quantity: 5, withdraw: 0, wantWithdrawn: 0, wantRemaining: 5, wantInBook: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewOrderBook()
			o := newOrder(Buy, 100, tt.quantity, 1)
			b.Insert(o)

			got := b.Withdraw(o, tt.withdraw)
			assert.Equal(t, tt.wantWithdrawn, got)
			assert.Equal(t, tt.wantRemaining, o.quantity)
			_, inBook := b.BestBuy()
			assert.Equal(t, tt.wantInBook, inBook)
		})
	}
}

func TestWithdrawnOrderNeverMatches(t *testing.T) {
	b := NewOrderBook()
	buy := newOrder(Buy, 100, 1, 1)
	b.Insert(buy)
	b.Withdraw(buy, 1)

	b.Insert(newOrder(Sell, 90, 1, 2))
	_, ok := b.ExtractMatch()
	assert.False(t, ok)
}

func TestDepthAt(t *testing.T) {
	b := NewOrderBook()
	b.Insert(newOrder(Buy, 100, 3, 1))
	b.Insert(newOrder(Buy, 100, 2, 2))
	b.Insert(newOrder(Buy, 99, 7, 3))

	assert.Equal(t, 5, b.depthAt(Buy, 100))
	assert.Equal(t, 7, b.depthAt(Buy, 99))
	assert.Equal(t, 0, b.depthAt(Sell, 100))
}
