package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLimitOrder_Valid(t *testing.T) {
	o, err := NewLimitOrder(1, 100, "AAPL", Buy, 10, 99.5, New)
	require.NoError(t, err)
	assert.Equal(t, Limit, o.Type)
	assert.Equal(t, uint64(10), o.Quantity)
	assert.Equal(t, 99.5, o.Price)
}

func TestNewLimitOrder_RejectsZeroQuantity(t *testing.T) {
	_, err := NewLimitOrder(1, 100, "AAPL", Buy, 0, 99.5, New)
	assert.ErrorIs(t, err, ErrZeroQuantity)
}

func TestNewLimitOrder_RejectsNonPositivePrice(t *testing.T) {
	_, err := NewLimitOrder(1, 100, "AAPL", Buy, 10, 0, New)
	assert.ErrorIs(t, err, ErrNonPositivePrice)

	_, err = NewLimitOrder(1, 100, "AAPL", Buy, 10, -5, New)
	assert.ErrorIs(t, err, ErrNonPositivePrice)
}

func TestNewMarketOrder_IgnoresPrice(t *testing.T) {
	o, err := NewMarketOrder(1, 100, "AAPL", Sell, 10, New)
	require.NoError(t, err)
	assert.Equal(t, Market, o.Type)
	assert.Zero(t, o.Price)
}

func TestNewMarketOrder_RejectsZeroQuantity(t *testing.T) {
	_, err := NewMarketOrder(1, 100, "AAPL", Sell, 0, New)
	assert.ErrorIs(t, err, ErrZeroQuantity)
}

func TestValidate_CancelBypassesChecks(t *testing.T) {
	o, err := NewLimitOrder(1, 100, "AAPL", Buy, 0, 0, Cancel)
	require.NoError(t, err)
	assert.Equal(t, Action(Cancel), o.Action)
}

func TestSideFromString(t *testing.T) {
	side, err := SideFromString("BUY")
	require.NoError(t, err)
	assert.Equal(t, Buy, side)

	side, err = SideFromString("SELL")
	require.NoError(t, err)
	assert.Equal(t, Sell, side)

	_, err = SideFromString("LONG")
	assert.ErrorIs(t, err, ErrInvalidEnum)
}

func TestOrderTypeFromString(t *testing.T) {
	ty, err := OrderTypeFromString("LIMIT")
	require.NoError(t, err)
	assert.Equal(t, Limit, ty)

	_, err = OrderTypeFromString("STOP")
	assert.ErrorIs(t, err, ErrInvalidEnum)
}

func TestActionFromString(t *testing.T) {
	a, err := ActionFromString("MODIFY")
	require.NoError(t, err)
	assert.Equal(t, Modify, a)

	_, err = ActionFromString("REPLACE")
	assert.ErrorIs(t, err, ErrInvalidEnum)
}

func TestEnumStringers(t *testing.T) {
	assert.Equal(t, "BUY", Buy.String())
	assert.Equal(t, "SELL", Sell.String())
	assert.Equal(t, "LIMIT", Limit.String())
	assert.Equal(t, "MARKET", Market.String())
	assert.Equal(t, "NEW", New.String())
	assert.Equal(t, "MODIFY", Modify.String())
	assert.Equal(t, "CANCEL", Cancel.String())
	assert.Equal(t, "UNKNOWN", Side(99).String())
}
