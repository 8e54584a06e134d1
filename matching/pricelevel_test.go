package matching

import (
	"testing"

	"code.vegaprotocol.io/venue/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceLevelFillIsFIFO(t *testing.T) {
	l := NewPriceLevel(10)
	a := makeOrder(1, types.SideSell, 10, 3)
	b := makeOrder(2, types.SideSell, 10, 3)
	l.addOrder(a)
	l.addOrder(b)
	require.Equal(t, uint64(6), l.volume)

	agg := makeOrder(3, types.SideBuy, 10, 4)
	var fills []uint64
	l.fill(agg, 10, func(size, _ uint64) { fills = append(fills, size) })

	assert.Equal(t, []uint64{3, 1}, fills)
	assert.True(t, agg.IsFilled())
	assert.True(t, a.IsFilled())
	assert.Equal(t, uint64(2), b.Remaining)
	assert.Equal(t, uint64(2), l.volume)
	require.Len(t, l.orders, 1)
	assert.Equal(t, b.ID, l.orders[0].ID)
}

func TestPriceLevelRemoveOrder(t *testing.T) {
	l := NewPriceLevel(10)
	for i := 1; i <= 3; i++ {
		l.addOrder(makeOrder(types.OrderID(i), types.SideBuy, 10, uint64(i)))
	}

	l.removeOrder(l.indexOf(2))
	assert.Equal(t, uint64(4), l.volume)
	assert.Equal(t, -1, l.indexOf(2))
	assert.Equal(t, 1, l.indexOf(3))

	o := l.popFront()
	assert.Equal(t, types.OrderID(1), o.ID)
	assert.Equal(t, uint64(3), l.volume)
}

func TestPriceLevelReduceVolumeBelowZeroPanics(t *testing.T) {
	l := NewPriceLevel(10)
	l.addOrder(makeOrder(1, types.SideBuy, 10, 1))
	assert.Panics(t, func() { l.reduceVolume(2) })
}
