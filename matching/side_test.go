package matching

import (
	"testing"

	"code.vegaprotocol.io/venue/logging"
	"code.vegaprotocol.io/venue/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeOrder(id types.OrderID, side types.Side, price, size uint64) *types.Order {
	return &types.Order{
		ID:        id,
		Type:      types.OrderTypeLimit,
		Side:      side,
		Price:     price,
		Size:      size,
		Remaining: size,
	}
}

func TestBidSideBestIsHighest(t *testing.T) {
	side := newBidSide(logging.NewTestLogger())
	side.addOrder(makeOrder(1, types.SideBuy, 100, 1))
	side.addOrder(makeOrder(2, types.SideBuy, 120, 2))
	side.addOrder(makeOrder(3, types.SideBuy, 110, 3))

	price, volume := side.BestPriceAndVolume()
	assert.Equal(t, uint64(120), price)
	assert.Equal(t, uint64(2), volume)

	levels := side.getLevels()
	require.Len(t, levels, 3)
	assert.Equal(t, uint64(120), levels[0].price)
	assert.Equal(t, uint64(110), levels[1].price)
	assert.Equal(t, uint64(100), levels[2].price)
}

func TestAskSideBestIsLowest(t *testing.T) {
	side := newAskSide(logging.NewTestLogger())
	side.addOrder(makeOrder(1, types.SideSell, 100, 1))
	side.addOrder(makeOrder(2, types.SideSell, 90, 2))
	side.addOrder(makeOrder(3, types.SideSell, 90, 3))

	price, volume := side.BestPriceAndVolume()
	assert.Equal(t, uint64(90), price)
	assert.Equal(t, uint64(5), volume)
	assert.Equal(t, 2, len(side.getLevels()))
	assert.Equal(t, 3, side.getOrderCount())
}

func TestEmptySideHasZeroTopOfBook(t *testing.T) {
	side := newAskSide(logging.NewTestLogger())
	price, volume := side.BestPriceAndVolume()
	assert.Zero(t, price)
	assert.Zero(t, volume)
	assert.Nil(t, side.best())
}

func TestRemoveOrderPrunesLevel(t *testing.T) {
	side := newBidSide(logging.NewTestLogger())
	first := makeOrder(1, types.SideBuy, 100, 1)
	second := makeOrder(2, types.SideBuy, 100, 1)
	side.addOrder(first)
	side.addOrder(second)

	require.NoError(t, side.removeOrder(first))
	assert.Equal(t, uint64(1), side.getPriceLevel(100).volume)

	require.NoError(t, side.removeOrder(second))
	assert.Nil(t, side.getPriceLevel(100))
	assert.Equal(t, 0, side.levels.Len())

	assert.ErrorIs(t, side.removeOrder(second), ErrPriceNotFound)

	side.addOrder(makeOrder(3, types.SideBuy, 100, 1))
	assert.ErrorIs(t, side.removeOrder(second), types.ErrOrderNotFound)
}
