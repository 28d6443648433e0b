package engine

import (
	"testing"

	"fenrir/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limit(t *testing.T, id uint64, side common.Side, qty uint64, price float64, action common.Action) common.Order {
	t.Helper()
	o, err := common.NewLimitOrder(1, id, "AAPL", side, qty, price, action)
	require.NoError(t, err)
	return o
}

func TestProcess_RestingNewReportsPending(t *testing.T) {
	e := New(nil)

	results, err := e.Process(limit(t, 1, common.Buy, 10, 99.0, common.New))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, common.Pending, results[0].Status)
	assert.Equal(t, uint64(10), results[0].Quantity)
}

func TestProcess_FullFillReportsExecuted(t *testing.T) {
	e := New(nil)

	_, err := e.Process(limit(t, 1, common.Sell, 10, 100.0, common.New))
	require.NoError(t, err)

	results, err := e.Process(limit(t, 2, common.Buy, 10, 100.0, common.New))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, common.Executed, results[0].Status)
	assert.Equal(t, uint64(0), results[0].Quantity)
	assert.Equal(t, uint64(10), results[0].ExecutedQuantity)
	assert.Equal(t, uint64(1), results[0].CounterpartyID)
}

func TestProcess_PartialFillReportsPartiallyExecuted(t *testing.T) {
	e := New(nil)

	_, err := e.Process(limit(t, 1, common.Sell, 4, 100.0, common.New))
	require.NoError(t, err)

	results, err := e.Process(limit(t, 2, common.Buy, 10, 100.0, common.New))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, common.PartiallyExecuted, results[0].Status)
	assert.Equal(t, uint64(6), results[0].Quantity)
}

func TestProcess_MultipleFillsEachReported(t *testing.T) {
	e := New(nil)

	_, err := e.Process(limit(t, 1, common.Sell, 5, 100.0, common.New))
	require.NoError(t, err)
	_, err = e.Process(limit(t, 2, common.Sell, 5, 100.0, common.New))
	require.NoError(t, err)

	results, err := e.Process(limit(t, 3, common.Buy, 10, 100.0, common.New))
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, common.PartiallyExecuted, results[0].Status)
	assert.Equal(t, common.Executed, results[1].Status)
}

func TestProcess_CancelReportsCanceled(t *testing.T) {
	e := New(nil)

	_, err := e.Process(limit(t, 1, common.Buy, 10, 99.0, common.New))
	require.NoError(t, err)

	results, err := e.Process(limit(t, 1, common.Buy, 0, 99.0, common.Cancel))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, common.Canceled, results[0].Status)
}

func TestProcess_ModifyOnUnknownOrderReturnsError(t *testing.T) {
	e := New(nil)

	_, err := e.Process(limit(t, 1, common.Buy, 10, 99.0, common.Modify))
	assert.ErrorIs(t, err, ErrUnknownOrder)
}

func TestProcess_ModifyUsesAbsoluteQuantity(t *testing.T) {
	e := New(nil)

	_, err := e.Process(limit(t, 1, common.Sell, 20, 100.0, common.New))
	require.NoError(t, err)

	// partially fill order 1 for 5.
	_, err = e.Process(limit(t, 2, common.Buy, 5, 100.0, common.New))
	require.NoError(t, err)

	// modify order 1's absolute quantity up to 30: 5 already executed, so
	// 25 should remain outstanding, not 30.
	results, err := e.Process(limit(t, 1, common.Sell, 30, 100.0, common.Modify))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, uint64(25), results[0].Quantity)
}

func TestProcess_ModifyBelowExecutedQuantityLeavesNothingOutstanding(t *testing.T) {
	e := New(nil)

	_, err := e.Process(limit(t, 1, common.Sell, 20, 100.0, common.New))
	require.NoError(t, err)
	_, err = e.Process(limit(t, 2, common.Buy, 15, 100.0, common.New))
	require.NoError(t, err)

	// 15 already executed against order 1; modifying down to 10 must not
	// underflow remaining.
	results, err := e.Process(limit(t, 1, common.Sell, 10, 100.0, common.Modify))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, uint64(0), results[0].Quantity)
}

func TestProcess_SeparatesBooksByInstrument(t *testing.T) {
	e := New(nil)

	msft, err := common.NewLimitOrder(1, 1, "MSFT", common.Buy, 10, 99.0, common.New)
	require.NoError(t, err)
	_, err = e.Process(msft)
	require.NoError(t, err)

	aapl, err := common.NewLimitOrder(1, 2, "AAPL", common.Sell, 10, 99.0, common.New)
	require.NoError(t, err)
	results, err := e.Process(aapl)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, common.Pending, results[0].Status)
}
