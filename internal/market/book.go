package market

import "sort"

// OrderBook holds the resting orders of one market in two priced queues:
// buys by (price descending, MarketTime ascending), sells by (price
// ascending, MarketTime ascending). The best order of each side sits at
// index 0. Among orders at the same price the smallest MarketTime always
// matches first, for the lifetime of the book.
type OrderBook struct {
	buys  []*Order
	sells []*Order
}

func NewOrderBook() *OrderBook {
	return &OrderBook{}
}

// Match is one extracted crossing: min(buyQty, sellQty) quantity matched
// between the two top-of-book orders.
type Match struct {
	Buy      *Order
	Sell     *Order
	Quantity int
}

// Insert adds a resting order to its side's queue.
func (b *OrderBook) Insert(o *Order) {
	if o.side == Buy {
		i := sort.Search(len(b.buys), func(i int) bool { return buyBefore(o, b.buys[i]) })
		b.buys = append(b.buys, nil)
		copy(b.buys[i+1:], b.buys[i:])
		b.buys[i] = o
	} else {
		i := sort.Search(len(b.sells), func(i int) bool { return sellBefore(o, b.sells[i]) })
		b.sells = append(b.sells, nil)
		copy(b.sells[i+1:], b.sells[i:])
		b.sells[i] = o
	}
}

// buyBefore reports whether a has priority over b on the buy side: higher
// price first, then earlier MarketTime.
func buyBefore(a, b *Order) bool {
	if a.price != b.price {
		return a.price > b.price
	}
	return a.marketTime < b.marketTime
}

// sellBefore reports whether a has priority over b on the sell side: lower
// price first, then earlier MarketTime.
func sellBefore(a, b *Order) bool {
	if a.price != b.price {
		return a.price < b.price
	}
	return a.marketTime < b.marketTime
}

// BestBuy returns the highest-priority buy order, or false if the side is
// empty.
func (b *OrderBook) BestBuy() (*Order, bool) {
	if len(b.buys) == 0 {
		return nil, false
	}
	return b.buys[0], true
}

// BestSell returns the highest-priority sell order, or false if the side is
// empty.
func (b *OrderBook) BestSell() (*Order, bool) {
	if len(b.sells) == 0 {
		return nil, false
	}
	return b.sells[0], true
}

// Crossed reports whether the best buy price meets or exceeds the best sell
// price.
func (b *OrderBook) Crossed() bool {
	if len(b.buys) == 0 || len(b.sells) == 0 {
		return false
	}
	return b.buys[0].price >= b.sells[0].price
}

// ExtractMatch removes min(buyQty, sellQty) from the two top-of-book orders
// when the book is crossed. Fully consumed orders leave the book; partially
// consumed orders keep their remaining quantity and their original
// MarketTime.
func (b *OrderBook) ExtractMatch() (Match, bool) {
	if !b.Crossed() {
		return Match{}, false
	}
	buy, sell := b.buys[0], b.sells[0]
	qty := min(buy.quantity, sell.quantity)
	buy.quantity -= qty
	sell.quantity -= qty
	if buy.quantity == 0 {
		b.buys = b.buys[1:]
	}
	if sell.quantity == 0 {
		b.sells = b.sells[1:]
	}
	return Match{Buy: buy, Sell: sell, Quantity: qty}, true
}

// Withdraw reduces an order's remaining quantity by qty, clamped to what is
// available; asking for more than remains is not an error. It returns the
// quantity actually withdrawn. An order reduced to zero leaves the book.
func (b *OrderBook) Withdraw(o *Order, qty int) int {
	if qty <= 0 || o.quantity == 0 {
		return 0
	}
	qty = min(qty, o.quantity)
	o.quantity -= qty
	if o.quantity == 0 {
		b.remove(o)
	}
	return qty
}

func (b *OrderBook) remove(o *Order) {
	side := &b.buys
	if o.side == Sell {
		side = &b.sells
	}
	for i, ord := range *side {
		if ord == o {
			*side = append((*side)[:i], (*side)[i+1:]...)
			return
		}
	}
}

// depthAt sums the remaining quantity resting at price on one side.
func (b *OrderBook) depthAt(side Side, price Price) int {
	queue := b.buys
	if side == Sell {
		queue = b.sells
	}
	total := 0
	for _, o := range queue {
		if o.price == price {
			total += o.quantity
		}
	}
	return total
}

// Size returns the total resting quantity across both sides.
func (b *OrderBook) Size() int {
	total := 0
	for _, o := range b.buys {
		total += o.quantity
	}
	for _, o := range b.sells {
		total += o.quantity
	}
	return total
}
