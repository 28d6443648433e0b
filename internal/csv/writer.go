package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"fenrir/internal/common"
)

var header = []string{
	"timestamp", "order_id", "instrument", "side", "type", "quantity", "price", "action",
	"status", "executed_quantity", "execution_price", "counterparty_id",
}

// Writer encodes MatchResult rows to CSV, writing the header exactly
// once at construction.
type Writer struct {
	w *csv.Writer
}

// NewWriter wraps w and writes the header row immediately.
func NewWriter(w io.Writer) (*Writer, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}
	return &Writer{w: cw}, nil
}

// WriteResult writes a single MatchResult row.
func (w *Writer) WriteResult(r common.MatchResult) error {
	record := []string{
		strconv.FormatUint(r.Timestamp, 10),
		strconv.FormatUint(r.OrderID, 10),
		r.Instrument,
		r.Side.String(),
		r.Type.String(),
		strconv.FormatUint(r.Quantity, 10),
		strconv.FormatFloat(r.Price, 'f', -1, 64),
		r.Action.String(),
		r.Status.String(),
		strconv.FormatUint(r.ExecutedQuantity, 10),
		strconv.FormatFloat(r.ExecutionPrice, 'f', -1, 64),
		strconv.FormatUint(r.CounterpartyID, 10),
	}
	return w.w.Write(record)
}

// WriteResults writes each MatchResult in order, stopping at the first error.
func (w *Writer) WriteResults(results []common.MatchResult) error {
	for _, r := range results {
		if err := w.WriteResult(r); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes buffered output. Callers must check Err after Flush.
func (w *Writer) Flush() {
	w.w.Flush()
}

// Err returns the first error, if any, encountered during writing/flushing.
func (w *Writer) Err() error {
	return w.w.Error()
}
