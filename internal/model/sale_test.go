package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSaleStatusAt(t *testing.T) {
	sale := &Sale{SoftCap: 5000, HardCap: 10000, StartTime: 1000, EndTime: 2000}

	assert.Equal(t, SaleStatusPending, sale.StatusAt(999))
	assert.Equal(t, SaleStatusActive, sale.StatusAt(1000))
	assert.Equal(t, SaleStatusActive, sale.StatusAt(1999))
	assert.Equal(t, SaleStatusEnded, sale.StatusAt(2000))

	// Sold out takes precedence over the window.
	sale.TotalSold = 10000
	assert.Equal(t, SaleStatusSoldOut, sale.StatusAt(1500))
}

func TestSoftCapReached(t *testing.T) {
	sale := &Sale{SoftCap: 5000, HardCap: 10000}
	assert.False(t, sale.SoftCapReached())
	sale.TotalSold = 4999
	assert.False(t, sale.SoftCapReached())
	sale.TotalSold = 5000
	assert.True(t, sale.SoftCapReached())
}

func TestTradingWindow(t *testing.T) {
	w := TradingWindow{OpenMinute: 540, CloseMinute: 1020} // 09:00-17:00

	assert.True(t, w.Valid())
	assert.False(t, w.Contains(539))
	assert.True(t, w.Contains(540))
	assert.True(t, w.Contains(1019))
	assert.False(t, w.Contains(1020))

	// No midnight wrap and no out-of-day minutes.
	assert.False(t, TradingWindow{OpenMinute: 1020, CloseMinute: 540}.Valid())
	assert.False(t, TradingWindow{OpenMinute: 540, CloseMinute: 540}.Valid())
	assert.False(t, TradingWindow{OpenMinute: 540, CloseMinute: 1440}.Valid())
}

func TestIdentityRoundTrip(t *testing.T) {
	id := Identity{0x01, 0x02, 0xff}
	parsed, err := ParseIdentity(id.String())
	assert.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseIdentity("not-hex")
	assert.Error(t, err)

	// Wrong length is rejected, not padded.
	_, err = ParseIdentity("0x0102")
	assert.Error(t, err)
}
