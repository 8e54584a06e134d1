package matching

import (
	"code.vegaprotocol.io/venue/logging"
	"code.vegaprotocol.io/venue/metrics"
	"code.vegaprotocol.io/venue/types"
)

// OrderBook represents the book holding all orders of a single instrument.
// It is not safe for concurrent use, all calls must come from the engine
// goroutine.
type OrderBook struct {
	Config

	log    *logging.Logger
	symbol *types.Symbol

	buy  *OrderBookSide
	sell *OrderBookSide

	// unpriced orders waiting for opposite side limit liquidity
	marketBuys  *PriceLevel
	marketSells *PriceLevel

	// buy stops trigger lowest price first, sell stops highest price first
	buyStops  *OrderBookSide
	sellStops *OrderBookSide

	ordersByID      map[types.OrderID]*types.Order
	lastTradedPrice uint64
}

// NewOrderBook create an order book for a given instrument.
func NewOrderBook(log *logging.Logger, config Config, symbol *types.Symbol) *OrderBook {
	// setup logger
	log = log.Named(namedLogger).With(logging.Symbol(symbol))
	log.SetLevel(config.Level.Get())

	return &OrderBook{
		Config:      config,
		log:         log,
		symbol:      symbol,
		buy:         newBidSide(log),
		sell:        newAskSide(log),
		marketBuys:  NewPriceLevel(0),
		marketSells: NewPriceLevel(0),
		buyStops:    newOrderBookSide(log, types.SideBuy, false),
		sellStops:   newOrderBookSide(log, types.SideSell, true),
		ordersByID:  map[types.OrderID]*types.Order{},
	}
}

// ReloadConf is used in order to reload the internal configuration of
// the OrderBook.
func (b *OrderBook) ReloadConf(cfg Config) {
	b.log.Info("reloading configuration")
	if b.log.GetLevel() != cfg.Level.Get() {
		b.log.Info("updating log level",
			logging.String("old", b.log.GetLevel().String()),
			logging.String("new", cfg.Level.String()),
		)
		b.log.SetLevel(cfg.Level.Get())
	}

	b.Config = cfg
}

// Symbol returns the instrument of the book.
func (b *OrderBook) Symbol() *types.Symbol {
	return b.symbol
}

// LastTradedPrice returns the price of the most recent fill, zero if the
// book never traded.
func (b *OrderBook) LastTradedPrice() uint64 {
	return b.lastTradedPrice
}

// BestBidPriceAndVolume returns the highest bid and the volume resting at it.
func (b *OrderBook) BestBidPriceAndVolume() (uint64, uint64) {
	return b.buy.BestPriceAndVolume()
}

// BestOfferPriceAndVolume returns the lowest ask and the volume resting at it.
func (b *OrderBook) BestOfferPriceAndVolume() (uint64, uint64) {
	return b.sell.BestPriceAndVolume()
}

// TopOfBook returns a snapshot of both best levels. Market and stop orders
// are not part of it.
func (b *OrderBook) TopOfBook() types.PriceInfo {
	bid, bidSize := b.BestBidPriceAndVolume()
	ask, askSize := b.BestOfferPriceAndVolume()
	return types.PriceInfo{
		Symbol:  b.symbol,
		BestBid: bid,
		BidSize: bidSize,
		BestAsk: ask,
		AskSize: askSize,
	}
}

// GetOrderByID returns the order with the given id, including filled and
// canceled ones.
func (b *OrderBook) GetOrderByID(id types.OrderID) (*types.Order, error) {
	o, ok := b.ordersByID[id]
	if !ok {
		return nil, types.ErrOrderNotFound
	}
	return o, nil
}

// OrderStatus computes the current status of an order without touching the book.
func (b *OrderBook) OrderStatus(id types.OrderID) (types.OrderStatus, error) {
	o, err := b.GetOrderByID(id)
	if err != nil {
		return types.OrderStatus{}, err
	}
	return o.Status(), nil
}

// SubmitOrder matches the order against the book and rests what is left.
// The order must already carry its id and be validated. The status of the
// incoming order is returned once triggered stops have been processed.
func (b *OrderBook) SubmitOrder(order *types.Order) types.OrderStatus {
	defer metrics.EngineTimeCounterAdd(b.symbol.Ticker, "matching", "SubmitOrder")()

	if order.Symbol != b.symbol {
		b.log.Panic("order submitted to the wrong book", logging.Order(*order))
	}
	if _, ok := b.ordersByID[order.ID]; ok {
		b.log.Panic("duplicate order id submitted", logging.Order(*order))
	}
	b.ordersByID[order.ID] = order

	switch order.Type {
	case types.OrderTypeMarket:
		b.submitMarket(order)
	case types.OrderTypeLimit:
		b.submitLimit(order)
	case types.OrderTypeStop:
		b.submitStop(order)
	default:
		b.log.Panic("unsupported order type", logging.Order(*order))
	}

	b.activateStops()

	if b.LogPriceLevelsDebug {
		b.PrintState("after submit order")
	}

	return order.Status()
}

// CancelOrder cancels the order with the given id. Cancelling an order that
// is already filled or canceled returns its status unchanged.
func (b *OrderBook) CancelOrder(id types.OrderID) (types.OrderStatus, error) {
	defer metrics.EngineTimeCounterAdd(b.symbol.Ticker, "matching", "CancelOrder")()

	order, err := b.GetOrderByID(id)
	if err != nil {
		return types.OrderStatus{}, err
	}
	if !order.IsActive() {
		return order.Status(), nil
	}

	b.unlink(order)
	order.Canceled = true
	if order.Type == types.OrderTypeStop {
		order.StopState = types.StopStateTerminal
	}

	if b.LogRemovedOrdersDebug {
		b.log.Debug("order canceled", logging.Order(*order))
	}

	return order.Status(), nil
}

// unlink removes an active order from the queue holding it.
func (b *OrderBook) unlink(order *types.Order) {
	var err error
	switch {
	case order.Type == types.OrderTypeLimit:
		err = b.sideFor(order.Side).removeOrder(order)
	case order.Type == types.OrderTypeStop && order.StopState == types.StopStateResting:
		err = b.stopsFor(order.Side).removeOrder(order)
	default:
		// market orders and activated stops
		q := b.marketQueueFor(order.Side)
		if i := q.indexOf(order.ID); i >= 0 {
			q.removeOrder(i)
		} else {
			err = types.ErrOrderNotFound
		}
	}
	if err != nil {
		b.log.Panic("active order missing from its queue",
			logging.Order(*order),
			logging.Error(err))
	}
}

func (b *OrderBook) submitMarket(order *types.Order) {
	b.matchLimitLevels(order, false)
	if order.Remaining > 0 {
		b.marketQueueFor(order.Side).addOrder(order)
	}
}

func (b *OrderBook) submitLimit(order *types.Order) {
	// resting market orders are served first, at the incoming price
	b.marketQueueFor(order.Side.Opposite()).fill(order, order.Price, b.onFill)
	b.matchLimitLevels(order, true)
	if order.Remaining > 0 {
		b.sideFor(order.Side).addOrder(order)
	}
}

func (b *OrderBook) submitStop(order *types.Order) {
	if b.stopTriggered(order.Side, order.Price) {
		b.activate(order)
		return
	}
	order.StopState = types.StopStateResting
	b.stopsFor(order.Side).addOrder(order)
}

// matchLimitLevels consumes opposite side limit levels best price first.
// With priced set, levels not acceptable to the order's limit stop the pass.
func (b *OrderBook) matchLimitLevels(order *types.Order, priced bool) {
	opposite := b.sideFor(order.Side.Opposite())
	for order.Remaining > 0 {
		lvl := opposite.best()
		if lvl == nil {
			return
		}
		if priced && !crosses(order.Side, order.Price, lvl.price) {
			return
		}
		lvl.fill(order, lvl.price, b.onFill)
		opposite.prune(lvl)
	}
}

// activate turns a stop into a market order and matches it.
func (b *OrderBook) activate(order *types.Order) {
	order.StopState = types.StopStateActivated
	if b.log.IsDebug() {
		b.log.Debug("stop order activated",
			logging.Order(*order),
			logging.Uint64("last-traded-price", b.lastTradedPrice))
	}
	b.submitMarket(order)
}

// activateStops promotes every triggered stop. Fills made by an activated
// stop move the last traded price, so activation can cascade.
func (b *OrderBook) activateStops() {
	for {
		order := b.popTriggeredStop()
		if order == nil {
			return
		}
		b.activate(order)
	}
}

func (b *OrderBook) popTriggeredStop() *types.Order {
	for _, stops := range []*OrderBookSide{b.buyStops, b.sellStops} {
		lvl := stops.best()
		if lvl == nil || !b.stopTriggered(stops.side, lvl.price) {
			continue
		}
		order := lvl.popFront()
		stops.prune(lvl)
		return order
	}
	return nil
}

func (b *OrderBook) stopTriggered(side types.Side, stopPrice uint64) bool {
	if b.lastTradedPrice == 0 {
		return false
	}
	if side == types.SideBuy {
		return b.lastTradedPrice >= stopPrice
	}
	return b.lastTradedPrice <= stopPrice
}

func (b *OrderBook) onFill(size, price uint64) {
	b.lastTradedPrice = price
	if b.log.IsDebug() {
		b.log.Debug("fill",
			logging.Uint64("size", size),
			logging.Uint64("price", price))
	}
}

func (b *OrderBook) sideFor(side types.Side) *OrderBookSide {
	if side == types.SideBuy {
		return b.buy
	}
	return b.sell
}

func (b *OrderBook) stopsFor(side types.Side) *OrderBookSide {
	if side == types.SideBuy {
		return b.buyStops
	}
	return b.sellStops
}

func (b *OrderBook) marketQueueFor(side types.Side) *PriceLevel {
	if side == types.SideBuy {
		return b.marketBuys
	}
	return b.marketSells
}

// crosses reports whether an order on side at limit can trade with a
// resting level priced at levelPrice.
func crosses(side types.Side, limit, levelPrice uint64) bool {
	if side == types.SideBuy {
		return levelPrice <= limit
	}
	return levelPrice >= limit
}

// PrintState logs the full book at debug level.
func (b *OrderBook) PrintState(msg string) {
	b.log.Debug("PrintState",
		logging.String("msg", msg))
	b.log.Debug("------------------------------------------------------------")
	b.log.Debug("                        BUY SIDE                            ")
	for _, priceLevel := range b.buy.getLevels() {
		if len(priceLevel.orders) > 0 {
			priceLevel.print(b.log)
		}
	}
	b.log.Debug("------------------------------------------------------------")
	b.log.Debug("                        SELL SIDE                           ")
	for _, priceLevel := range b.sell.getLevels() {
		if len(priceLevel.orders) > 0 {
			priceLevel.print(b.log)
		}
	}
	b.log.Debug("------------------------------------------------------------")
	b.log.Debug("market orders",
		logging.Int("buys", len(b.marketBuys.orders)),
		logging.Int("sells", len(b.marketSells.orders)))
	b.log.Debug("stop orders",
		logging.Int("buys", b.buyStops.getOrderCount()),
		logging.Int("sells", b.sellStops.getOrderCount()),
		logging.Uint64("last-traded-price", b.lastTradedPrice))
}
