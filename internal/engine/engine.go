// Package engine multiplexes per-instrument books, tracks per-order
// quantity bookkeeping across NEW/MODIFY/CANCEL, and classifies each
// book fill into an execution report.
package engine

import (
	"errors"
	"fmt"

	"fenrir/internal/book"
	"fenrir/internal/common"
	"fenrir/internal/logging"
)

// ErrUnknownOrder is returned when a MODIFY event references an order_id
// the engine has never seen a NEW for. This is a fatal condition for the
// single Process call: the engine's state is left exactly as it was
// before the call.
var ErrUnknownOrder = errors.New("modify references unknown order")

// Engine demultiplexes order events by instrument and drives each
// instrument's Book, emitting MatchResult reports with correct status
// classification.
type Engine struct {
	books map[string]*book.Book

	// original is the quantity declared on the most recent NEW, or the
	// absolute quantity declared by the most recent successful MODIFY.
	original map[uint64]uint64
	// remaining is the outstanding quantity after all fills and
	// modifications applied so far.
	remaining map[uint64]uint64

	log *logging.Logger
}

// New returns an Engine with no books yet created; each instrument's Book
// is created lazily on first use. A nil logger disables tracing.
func New(log *logging.Logger) *Engine {
	if log == nil {
		log = logging.Nop()
	}
	return &Engine{
		books:     make(map[string]*book.Book),
		original:  make(map[uint64]uint64),
		remaining: make(map[uint64]uint64),
		log:       log,
	}
}

// Process applies a single order event and returns the non-empty list of
// MatchResult rows it produces — every call yields at least one row,
// preserving a 1:1 relationship between input events and output reports.
func (e *Engine) Process(o common.Order) ([]common.MatchResult, error) {
	e.log.Info().
		Uint64("order_id", o.OrderID).
		Str("instrument", o.Instrument).
		Str("action", o.Action.String()).
		Msg("process order")

	if err := e.applyBookkeeping(o); err != nil {
		return nil, err
	}

	b := e.bookFor(o.Instrument)
	fills := b.Apply(o)

	if len(fills) == 0 {
		status := common.Pending
		if o.Action == common.Cancel {
			status = common.Canceled
		}
		return []common.MatchResult{e.report(o, status, 0, 0, 0)}, nil
	}

	results := make([]common.MatchResult, 0, len(fills))
	for _, f := range fills {
		e.remaining[o.OrderID] -= f.ExecutedQuantity
		if rest := e.remaining[f.RestingOrderID]; rest > f.ExecutedQuantity {
			e.remaining[f.RestingOrderID] = rest - f.ExecutedQuantity
		} else {
			e.remaining[f.RestingOrderID] = 0
		}

		status := common.PartiallyExecuted
		if e.remaining[o.OrderID] == 0 {
			status = common.Executed
		}

		result := e.report(o, status, f.ExecutedQuantity, f.ExecutionPrice, f.RestingOrderID)
		results = append(results, result)

		e.log.Info().
			Uint64("order_id", o.OrderID).
			Uint64("counterparty_id", f.RestingOrderID).
			Uint64("executed_quantity", f.ExecutedQuantity).
			Float64("execution_price", f.ExecutionPrice).
			Str("status", status.String()).
			Msg("match result")
	}
	return results, nil
}

// applyBookkeeping updates original/remaining on each order event. MODIFY
// carries an absolute new quantity, not a delta: remaining becomes the
// new quantity minus whatever has already executed against the prior
// original.
func (e *Engine) applyBookkeeping(o common.Order) error {
	switch o.Action {
	case common.New:
		e.original[o.OrderID] = o.Quantity
		e.remaining[o.OrderID] = o.Quantity

	case common.Modify:
		orig, ok := e.original[o.OrderID]
		if !ok {
			return fmt.Errorf("order %d: %w", o.OrderID, ErrUnknownOrder)
		}
		executed := orig - e.remaining[o.OrderID]

		var newRemaining uint64
		if o.Quantity > executed {
			newRemaining = o.Quantity - executed
		}
		e.remaining[o.OrderID] = newRemaining
		e.original[o.OrderID] = o.Quantity

	case common.Cancel:
		e.remaining[o.OrderID] = 0
	}
	return nil
}

func (e *Engine) bookFor(instrument string) *book.Book {
	b, ok := e.books[instrument]
	if !ok {
		b = book.New(e.log)
		e.books[instrument] = b
	}
	return b
}

func (e *Engine) report(o common.Order, status common.Status, exeQty uint64, exePrice float64, counterparty uint64) common.MatchResult {
	return common.MatchResult{
		Timestamp:        o.Timestamp,
		OrderID:          o.OrderID,
		Instrument:       o.Instrument,
		Side:             o.Side,
		Type:             o.Type,
		Quantity:         e.remaining[o.OrderID],
		Price:            o.Price,
		Action:           o.Action,
		Status:           status,
		ExecutedQuantity: exeQty,
		ExecutionPrice:   exePrice,
		CounterpartyID:   counterparty,
	}
}
