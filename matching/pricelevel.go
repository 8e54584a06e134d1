package matching

import (
	"code.vegaprotocol.io/venue/logging"
	"code.vegaprotocol.io/venue/types"
)

// PriceLevel is the FIFO queue of orders resting at one price. The market
// order queues of a book are price levels with a zero price.
type PriceLevel struct {
	price  uint64
	volume uint64
	orders []*types.Order
}

// NewPriceLevel instantiate a new PriceLevel.
func NewPriceLevel(price uint64) *PriceLevel {
	return &PriceLevel{
		price:  price,
		orders: []*types.Order{},
	}
}

func (l *PriceLevel) addOrder(o *types.Order) {
	l.volume += o.Remaining
	l.orders = append(l.orders, o)
}

func (l *PriceLevel) removeOrder(index int) {
	l.reduceVolume(l.orders[index].Remaining)
	copy(l.orders[index:], l.orders[index+1:])
	l.orders[len(l.orders)-1] = nil
	l.orders = l.orders[:len(l.orders)-1]
}

// indexOf returns the position of the order in the queue or -1.
func (l *PriceLevel) indexOf(id types.OrderID) int {
	for i, o := range l.orders {
		if o.ID == id {
			return i
		}
	}
	return -1
}

// popFront removes and returns the oldest order of the level.
func (l *PriceLevel) popFront() *types.Order {
	o := l.orders[0]
	l.removeOrder(0)
	return o
}

func (l *PriceLevel) reduceVolume(reduceBy uint64) {
	if reduceBy > l.volume {
		panic("reducing price level volume below zero")
	}
	l.volume -= reduceBy
}

func (l *PriceLevel) empty() bool {
	return len(l.orders) == 0
}

// fill matches agg against the level in arrival order at the given price.
// Filled resting orders are removed and onFill is called for every fill.
func (l *PriceLevel) fill(agg *types.Order, price uint64, onFill func(size, price uint64)) {
	for agg.Remaining > 0 && !l.empty() {
		passive := l.orders[0]
		size := min(agg.Remaining, passive.Remaining)

		agg.Fill(size, price)
		passive.Fill(size, price)
		l.reduceVolume(size)
		onFill(size, price)

		if passive.IsFilled() {
			copy(l.orders, l.orders[1:])
			l.orders[len(l.orders)-1] = nil
			l.orders = l.orders[:len(l.orders)-1]
		}
	}
}

func (l *PriceLevel) print(log *logging.Logger) {
	log.Debug("priceLevel",
		logging.Uint64("volume", l.volume),
		logging.Uint64("price", l.price))
	for _, o := range l.orders {
		log.Debug("    order", logging.Order(*o))
	}
}
