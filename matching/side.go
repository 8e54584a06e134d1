package matching

import (
	"code.vegaprotocol.io/venue/logging"
	"code.vegaprotocol.io/venue/types"

	"github.com/google/btree"
	"github.com/pkg/errors"
)

// ErrPriceNotFound signals that a price was not found on the book side.
var ErrPriceNotFound = errors.New("price-volume pair not found")

const btreeDegree = 16

// OrderBookSide represent a side of the book, either Sell or Buy. Levels are
// kept in a btree keyed by price; best is the highest price for descending
// sides and the lowest price otherwise.
type OrderBookSide struct {
	side       types.Side
	log        *logging.Logger
	descending bool
	levels     *btree.BTreeG[*PriceLevel]
}

func newOrderBookSide(log *logging.Logger, side types.Side, descending bool) *OrderBookSide {
	return &OrderBookSide{
		side:       side,
		log:        log,
		descending: descending,
		levels: btree.NewG(btreeDegree, func(a, b *PriceLevel) bool {
			return a.price < b.price
		}),
	}
}

// newBidSide returns a limit side where the highest price is best.
func newBidSide(log *logging.Logger) *OrderBookSide {
	return newOrderBookSide(log, types.SideBuy, true)
}

// newAskSide returns a limit side where the lowest price is best.
func newAskSide(log *logging.Logger) *OrderBookSide {
	return newOrderBookSide(log, types.SideSell, false)
}

func (s *OrderBookSide) addOrder(o *types.Order) {
	s.getOrCreatePriceLevel(o.Price).addOrder(o)
}

// removeOrder unlinks the order from the level at its price and prunes the
// level if it becomes empty.
func (s *OrderBookSide) removeOrder(o *types.Order) error {
	lvl := s.getPriceLevel(o.Price)
	if lvl == nil {
		return ErrPriceNotFound
	}
	i := lvl.indexOf(o.ID)
	if i < 0 {
		return types.ErrOrderNotFound
	}
	lvl.removeOrder(i)
	if lvl.empty() {
		s.levels.Delete(lvl)
	}
	return nil
}

// best returns the level with the best price or nil when the side is empty.
func (s *OrderBookSide) best() *PriceLevel {
	var (
		lvl *PriceLevel
		ok  bool
	)
	if s.descending {
		lvl, ok = s.levels.Max()
	} else {
		lvl, ok = s.levels.Min()
	}
	if !ok {
		return nil
	}
	return lvl
}

// BestPriceAndVolume returns the top of book price and volume. Both are zero
// when the side is empty.
func (s *OrderBookSide) BestPriceAndVolume() (uint64, uint64) {
	lvl := s.best()
	if lvl == nil {
		return 0, 0
	}
	return lvl.price, lvl.volume
}

// prune drops the level if nothing rests on it anymore.
func (s *OrderBookSide) prune(lvl *PriceLevel) {
	if lvl.empty() {
		if _, ok := s.levels.Delete(lvl); !ok {
			s.log.Panic("pruning a price level missing from the side",
				logging.Uint64("price", lvl.price),
				logging.String("side", s.side.String()))
		}
		if s.log.IsDebug() {
			s.log.Debug("removed empty price level",
				logging.Uint64("price", lvl.price),
				logging.String("side", s.side.String()))
		}
	}
}

func (s *OrderBookSide) getPriceLevel(price uint64) *PriceLevel {
	lvl, ok := s.levels.Get(&PriceLevel{price: price})
	if !ok {
		return nil
	}
	return lvl
}

func (s *OrderBookSide) getOrCreatePriceLevel(price uint64) *PriceLevel {
	if lvl := s.getPriceLevel(price); lvl != nil {
		return lvl
	}
	lvl := NewPriceLevel(price)
	s.levels.ReplaceOrInsert(lvl)
	return lvl
}

// getLevels returns the levels best price first.
func (s *OrderBookSide) getLevels() []*PriceLevel {
	out := make([]*PriceLevel, 0, s.levels.Len())
	collect := func(lvl *PriceLevel) bool {
		out = append(out, lvl)
		return true
	}
	if s.descending {
		s.levels.Descend(collect)
	} else {
		s.levels.Ascend(collect)
	}
	return out
}

func (s *OrderBookSide) getOrderCount() int {
	var n int
	s.levels.Ascend(func(lvl *PriceLevel) bool {
		n += len(lvl.orders)
		return true
	})
	return n
}
