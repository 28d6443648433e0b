package csv

import (
	"strings"
	"testing"

	"fenrir/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHeader = "timestamp,order_id,instrument,side,type,quantity,price,action\n"

func TestReader_ParsesLimitOrder(t *testing.T) {
	r, err := NewReader(strings.NewReader(testHeader + "1,100,AAPL,BUY,LIMIT,10,99.5,NEW\n"))
	require.NoError(t, err)

	o, err := r.Next()
	require.NoError(t, err)
	require.NotNil(t, o)
	assert.Equal(t, uint64(1), o.Timestamp)
	assert.Equal(t, uint64(100), o.OrderID)
	assert.Equal(t, "AAPL", o.Instrument)
	assert.Equal(t, common.Buy, o.Side)
	assert.Equal(t, common.Limit, o.Type)
	assert.Equal(t, uint64(10), o.Quantity)
	assert.Equal(t, 99.5, o.Price)
	assert.Equal(t, common.New, o.Action)

	o, err = r.Next()
	require.NoError(t, err)
	assert.Nil(t, o)
}

func TestReader_ParsesMarketOrderIgnoringPrice(t *testing.T) {
	r, err := NewReader(strings.NewReader(testHeader + "1,100,AAPL,SELL,MARKET,10,,NEW\n"))
	require.NoError(t, err)

	o, err := r.Next()
	require.NoError(t, err)
	require.NotNil(t, o)
	assert.Equal(t, common.Market, o.Type)
	assert.Zero(t, o.Price)
}

func TestReader_SkipsMalformedRowsAndRecordsThem(t *testing.T) {
	body := testHeader +
		"1,100,AAPL,BUY,LIMIT,10,99.5,NEW\n" +
		"2,101,AAPL,HOLD,LIMIT,10,99.5,NEW\n" +
		"3,102,AAPL,SELL,LIMIT,10,99.5,NEW\n"
	r, err := NewReader(strings.NewReader(body))
	require.NoError(t, err)

	first, err := r.Next()
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, uint64(100), first.OrderID)

	second, err := r.Next()
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, uint64(102), second.OrderID)

	require.Len(t, r.Errors(), 1)
	assert.Contains(t, r.Errors()[0].Message, "invalid side")
}

func TestReader_RejectsNegativeQuantityAndPrice(t *testing.T) {
	body := testHeader +
		"1,100,AAPL,BUY,LIMIT,-10,99.5,NEW\n" +
		"2,101,AAPL,BUY,LIMIT,10,-99.5,NEW\n"
	r, err := NewReader(strings.NewReader(body))
	require.NoError(t, err)

	o, err := r.Next()
	require.NoError(t, err)
	assert.Nil(t, o)
	require.Len(t, r.Errors(), 2)
}

func TestReader_EmptyInputYieldsNoOrders(t *testing.T) {
	r, err := NewReader(strings.NewReader(""))
	require.NoError(t, err)

	o, err := r.Next()
	require.NoError(t, err)
	assert.Nil(t, o)
}
