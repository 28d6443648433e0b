// Package csv implements the CSV ingest/emit boundary used by the batch
// driver: decoding order events and encoding execution reports.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"fenrir/internal/common"
)

const fieldCount = 8

// ParseError describes one malformed input row. A malformed row is
// skipped and recorded here rather than aborting the whole file.
type ParseError struct {
	Line    int
	Message string
	Raw     string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Message, e.Raw)
}

// Reader decodes Order events from a CSV stream with the header
// `timestamp,order_id,instrument,side,type,quantity,price,action`.
type Reader struct {
	r      *csv.Reader
	line   int
	errors []ParseError
}

// NewReader wraps r, skipping the header row.
func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // validated by hand so malformed rows are recorded, not fatal
	reader := &Reader{r: cr}

	if _, err := cr.Read(); err != nil {
		if err == io.EOF {
			return reader, nil
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}
	reader.line = 1
	return reader, nil
}

// Errors returns the parse errors accumulated so far.
func (r *Reader) Errors() []ParseError {
	return r.errors
}

// Next returns the next valid Order, skipping and recording malformed
// rows along the way. It returns (nil, nil) at end of input.
func (r *Reader) Next() (*common.Order, error) {
	for {
		record, err := r.r.Read()
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading record: %w", err)
		}
		r.line++

		order, perr := r.parseRecord(record)
		if perr != nil {
			r.errors = append(r.errors, *perr)
			continue
		}
		return order, nil
	}
}

func (r *Reader) parseRecord(fields []string) (*common.Order, *ParseError) {
	raw := strings.Join(fields, ",")
	fail := func(msg string) *ParseError {
		return &ParseError{Line: r.line, Message: msg, Raw: raw}
	}

	if len(fields) != fieldCount {
		return nil, fail("wrong number of columns")
	}

	ts, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return nil, fail("invalid timestamp")
	}

	id, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return nil, fail("invalid order_id")
	}

	instrument := fields[2]
	if instrument == "" {
		return nil, fail("empty instrument")
	}

	side, err := common.SideFromString(fields[3])
	if err != nil {
		return nil, fail("invalid side")
	}

	orderType, err := common.OrderTypeFromString(fields[4])
	if err != nil {
		return nil, fail("invalid type")
	}

	action, err := common.ActionFromString(fields[7])
	if err != nil {
		return nil, fail("invalid action")
	}

	qtyField := fields[5]
	if strings.HasPrefix(qtyField, "-") {
		return nil, fail("negative quantity")
	}
	qty, err := strconv.ParseUint(qtyField, 10, 64)
	if err != nil {
		return nil, fail("invalid quantity")
	}

	var price float64
	if orderType == common.Limit {
		priceField := fields[6]
		if strings.HasPrefix(priceField, "-") {
			return nil, fail("negative price")
		}
		price, err = strconv.ParseFloat(priceField, 64)
		if err != nil {
			return nil, fail("invalid price")
		}
	}

	var order common.Order
	var buildErr error
	if orderType == common.Limit {
		order, buildErr = common.NewLimitOrder(ts, id, instrument, side, qty, price, action)
	} else {
		order, buildErr = common.NewMarketOrder(ts, id, instrument, side, qty, action)
	}
	if buildErr != nil {
		return nil, fail(buildErr.Error())
	}

	return &order, nil
}
