package matching

import (
	"testing"

	"code.vegaprotocol.io/venue/logging"
	"code.vegaprotocol.io/venue/types"
)

type tstOB struct {
	*OrderBook
	log    *logging.Logger
	nextID types.OrderID
}

func (t *tstOB) Finish() {
	t.log.Sync()
}

func getTestOrderBook(_ *testing.T, market string) *tstOB {
	tob := tstOB{
		log:    logging.NewTestLogger(),
		nextID: 1,
	}
	tob.OrderBook = NewOrderBook(tob.log, NewDefaultConfig(), types.NewSymbol(market))

	// Turn on all the debug levels so we can cover more lines of code
	tob.OrderBook.LogPriceLevelsDebug = true
	tob.OrderBook.LogRemovedOrdersDebug = true
	return &tob
}

// submit builds an order with the next id and submits it to the book.
func (t *tstOB) submit(side types.Side, typ types.OrderType, price, size uint64) (*types.Order, types.OrderStatus) {
	o := &types.Order{
		ID:        t.nextID,
		AccountID: 1,
		Symbol:    t.symbol,
		Type:      typ,
		Side:      side,
		Price:     price,
		Size:      size,
		Remaining: size,
	}
	t.nextID++
	return o, t.SubmitOrder(o)
}

func (t *tstOB) limit(side types.Side, price, size uint64) (*types.Order, types.OrderStatus) {
	return t.submit(side, types.OrderTypeLimit, price, size)
}

func (t *tstOB) market(side types.Side, size uint64) (*types.Order, types.OrderStatus) {
	return t.submit(side, types.OrderTypeMarket, 0, size)
}

func (t *tstOB) stop(side types.Side, price, size uint64) (*types.Order, types.OrderStatus) {
	return t.submit(side, types.OrderTypeStop, price, size)
}

func (b *OrderBook) getNumberOfBuyLevels() int {
	return len(b.buy.getLevels())
}

func (b *OrderBook) getNumberOfSellLevels() int {
	return len(b.sell.getLevels())
}

func (b *OrderBook) getTotalBuyVolume() uint64 {
	var volume uint64

	for _, pl := range b.buy.getLevels() {
		volume += pl.volume
	}
	return volume
}

func (b *OrderBook) getTotalSellVolume() uint64 {
	var volume uint64

	for _, pl := range b.sell.getLevels() {
		volume += pl.volume
	}
	return volume
}

func (b *OrderBook) getVolumeAtLevel(price uint64, side types.Side) uint64 {
	if lvl := b.sideFor(side).getPriceLevel(price); lvl != nil {
		return lvl.volume
	}
	return 0
}
