package book

// LevelView is a read-only snapshot of one price level, for tests and
// diagnostics. It never aliases the book's internal slices.
type LevelView struct {
	Price  float64
	Orders []RestingOrderView
}

// RestingOrderView is a read-only snapshot of one resting order.
type RestingOrderView struct {
	OrderID  uint64
	Quantity uint64
}

// BidLevels returns a snapshot of the bid ladder, highest price first.
func (b *Book) BidLevels() []LevelView {
	return snapshot(b.bids)
}

// AskLevels returns a snapshot of the ask ladder, lowest price first.
func (b *Book) AskLevels() []LevelView {
	return snapshot(b.asks)
}

func snapshot(levels interface {
	Scan(iter func(item *priceLevel) bool)
}) []LevelView {
	var out []LevelView
	levels.Scan(func(lvl *priceLevel) bool {
		view := LevelView{Price: lvl.price, Orders: make([]RestingOrderView, len(lvl.orders))}
		for i, o := range lvl.orders {
			view.Orders[i] = RestingOrderView{OrderID: o.orderID, Quantity: o.quantity}
		}
		out = append(out, view)
		return true
	})
	return out
}
