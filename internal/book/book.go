// Package book implements the per-instrument price ladder: an ordered
// mapping from price to a FIFO queue of resting orders, on each side, and
// the matching algorithm that crosses an incoming order against it.
//
// Price-time priority is realized with a tidwall/btree ordered map keyed
// by price (descending for bids, ascending for asks) with a slice-backed
// FIFO queue at each level.
package book

import (
	"fenrir/internal/common"
	"fenrir/internal/logging"

	"github.com/tidwall/btree"
)

// restingOrder is one resting entry inside a priceLevel's FIFO queue.
type restingOrder struct {
	orderID  uint64
	quantity uint64
}

// priceLevel is the set of resting orders at one exact price on one side,
// kept in arrival order.
type priceLevel struct {
	price  float64
	orders []*restingOrder
}

// Book holds the resting orders for a single instrument. Only LIMIT
// orders ever rest here; MARKET orders never appear in either ladder.
type Book struct {
	bids *btree.BTreeG[*priceLevel] // sorted highest price first
	asks *btree.BTreeG[*priceLevel] // sorted lowest price first

	log *logging.Logger
}

// New returns an empty Book. A nil logger disables tracing.
func New(log *logging.Logger) *Book {
	if log == nil {
		log = logging.Nop()
	}
	return &Book{
		bids: btree.NewBTreeG(func(a, b *priceLevel) bool { return a.price > b.price }),
		asks: btree.NewBTreeG(func(a, b *priceLevel) bool { return a.price < b.price }),
		log:  log,
	}
}

// Empty reports whether both ladders are empty.
func (b *Book) Empty() bool {
	return b.bids.Len() == 0 && b.asks.Len() == 0
}

// Apply processes a single order event against the book and returns the
// fills it produced. The returned slice is empty when the order rested
// without crossing, or when the event was a CANCEL. Apply never fails:
// ill-formed orders are rejected earlier, at Order construction, and an
// unknown CANCEL is silently a no-op.
func (b *Book) Apply(o common.Order) []common.Execution {
	switch o.Action {
	case common.Cancel:
		b.cancel(o)
		return nil
	case common.Modify:
		// MODIFY is cancel-then-new using the event's declared price,
		// quantity, and side: a deliberate loss of time priority for the
		// modified order, not a bug.
		b.cancel(o)
		return b.match(o)
	default: // common.New
		return b.match(o)
	}
}

func (b *Book) match(o common.Order) []common.Execution {
	switch o.Type {
	case common.Market:
		fills, _ := b.sweep(o, false)
		return fills
	default: // common.Limit
		fills, remaining := b.sweep(o, true)
		if remaining > 0 {
			b.insert(o.Side, o.Price, o.OrderID, remaining)
		}
		return fills
	}
}

// sweep consumes the opposite side's ladder in price priority while it
// crosses (or unconditionally, for MARKET orders when gatePrice is
// false), and returns the fills produced plus whatever quantity is left
// over. LIMIT and MARKET differ only in whether price gates the walk and
// whether the leftover rests afterwards (handled by the caller).
func (b *Book) sweep(o common.Order, gatePrice bool) ([]common.Execution, uint64) {
	opposite := b.asks
	if o.Side == common.Sell {
		opposite = b.bids
	}

	remaining := o.Quantity
	var fills []common.Execution

	for remaining > 0 {
		lvl, ok := opposite.MinMut()
		if !ok {
			break
		}
		if gatePrice && !crosses(o.Side, o.Price, lvl.price) {
			break
		}

		for len(lvl.orders) > 0 && remaining > 0 {
			front := lvl.orders[0]
			traded := min(remaining, front.quantity)

			fills = append(fills, common.Execution{
				RestingOrderID:   front.orderID,
				IncomingOrderID:  o.OrderID,
				ExecutedQuantity: traded,
				ExecutionPrice:   lvl.price,
			})
			b.log.Info().
				Uint64("resting_order_id", front.orderID).
				Uint64("incoming_order_id", o.OrderID).
				Uint64("executed_quantity", traded).
				Float64("execution_price", lvl.price).
				Msg("fill")

			remaining -= traded
			front.quantity -= traded

			if front.quantity == 0 {
				lvl.orders = lvl.orders[1:]
			} else {
				// Partial fill on the front of the queue: it keeps its
				// position, so this level is done for this sweep.
				break
			}
		}

		if len(lvl.orders) == 0 {
			opposite.Delete(lvl)
		}
	}

	return fills, remaining
}

// crosses reports whether an incoming order at price p crosses a resting
// level at price levelPrice, for the given incoming side.
func crosses(side common.Side, p, levelPrice float64) bool {
	if side == common.Buy {
		return p >= levelPrice
	}
	return p <= levelPrice
}

// insert rests a residual LIMIT order at price, at the tail of that
// level's FIFO queue (time priority for new arrivals).
func (b *Book) insert(side common.Side, price float64, orderID, qty uint64) {
	levels := b.bids
	if side == common.Sell {
		levels = b.asks
	}

	entry := &restingOrder{orderID: orderID, quantity: qty}
	if lvl, ok := levels.GetMut(&priceLevel{price: price}); ok {
		lvl.orders = append(lvl.orders, entry)
		return
	}
	levels.Set(&priceLevel{price: price, orders: []*restingOrder{entry}})
}

// cancel locates the resting entry by (side, price, order_id) — the
// price carried on the CANCEL/MODIFY event is authoritative — and
// removes it. If no entry matches, this is a silent no-op.
func (b *Book) cancel(o common.Order) {
	levels := b.bids
	if o.Side == common.Sell {
		levels = b.asks
	}

	lvl, ok := levels.GetMut(&priceLevel{price: o.Price})
	if !ok {
		return
	}

	for i, entry := range lvl.orders {
		if entry.orderID == o.OrderID {
			lvl.orders = append(lvl.orders[:i], lvl.orders[i+1:]...)
			break
		}
	}

	if len(lvl.orders) == 0 {
		levels.Delete(lvl)
	}
}
