package matching

import (
	"math"

	"code.vegaprotocol.io/venue/logging"
	"code.vegaprotocol.io/venue/metrics"
	"code.vegaprotocol.io/venue/types"
)

// Symbols is the read only instrument registry the engine is built from.
type Symbols interface {
	Get(ticker string) (*types.Symbol, bool)
	List() []*types.Symbol
}

// MatchingEngine owns one order book per instrument, assigns order ids and
// publishes top of book changes. Like the books it is driven by a single
// goroutine.
type MatchingEngine struct {
	Config
	log *logging.Logger

	books  map[string]*OrderBook
	routes map[types.OrderID]*OrderBook
	nextID types.OrderID

	priceInfo chan<- types.PriceInfo
}

// New creates a matching engine with an empty book for every symbol. Price
// updates are sent to priceInfo, which may be nil.
func New(log *logging.Logger, config Config, symbols Symbols, priceInfo chan<- types.PriceInfo) *MatchingEngine {
	elog := log.Named(namedLogger)
	elog.SetLevel(config.Level.Get())

	e := &MatchingEngine{
		Config:    config,
		log:       elog,
		books:     map[string]*OrderBook{},
		routes:    map[types.OrderID]*OrderBook{},
		nextID:    1,
		priceInfo: priceInfo,
	}
	for _, s := range symbols.List() {
		e.books[s.Ticker] = NewOrderBook(log, config, s)
	}
	return e
}

// ReloadConf is used in order to reload the internal configuration of
// the engine and all its books.
func (e *MatchingEngine) ReloadConf(cfg Config) {
	e.log.Info("reloading configuration")
	if e.log.GetLevel() != cfg.Level.Get() {
		e.log.Info("updating log level",
			logging.String("old", e.log.GetLevel().String()),
			logging.String("new", cfg.Level.String()),
		)
		e.log.SetLevel(cfg.Level.Get())
	}

	e.Config = cfg
	for _, b := range e.books {
		b.ReloadConf(cfg)
	}
}

// Book returns the order book of the given ticker.
func (e *MatchingEngine) Book(ticker string) (*OrderBook, bool) {
	b, ok := e.books[ticker]
	return b, ok
}

// Execute creates an order from the submission and matches it. Unknown
// instruments and invalid submissions are rejected with a zero order id.
func (e *MatchingEngine) Execute(sub types.OrderSubmission) types.OrderStatus {
	book, ok := e.books[sub.Ticker]
	if !ok {
		metrics.OrderCounterInc(sub.Ticker, sub.Type.String(), "false")
		return types.NewRejected(0, types.ErrUnknownInstrument.Error())
	}
	if err := validateSubmission(sub); err != nil {
		metrics.OrderCounterInc(sub.Ticker, sub.Type.String(), "false")
		if e.log.IsDebug() {
			e.log.Debug("rejected order submission",
				logging.String("submission", sub.String()),
				logging.Error(err))
		}
		return types.NewRejected(0, err.Error())
	}
	metrics.OrderCounterInc(sub.Ticker, sub.Type.String(), "true")

	order := &types.Order{
		ID:        e.newID(),
		AccountID: sub.AccountID,
		Symbol:    book.Symbol(),
		Type:      sub.Type,
		Side:      sub.Side,
		Price:     sub.Price,
		Size:      sub.Size,
		Remaining: sub.Size,
	}
	if order.Type == types.OrderTypeMarket {
		order.Price = 0
	}
	e.routes[order.ID] = book

	before := book.TopOfBook()
	status := book.SubmitOrder(order)
	e.publish(before, book.TopOfBook())

	return status
}

// Status returns the current status of an order.
func (e *MatchingEngine) Status(id types.OrderID) (types.OrderStatus, error) {
	book, ok := e.routes[id]
	if !ok {
		return types.OrderStatus{}, types.ErrOrderNotFound
	}
	return book.OrderStatus(id)
}

// Cancel cancels an order and publishes the top of book if it moved.
func (e *MatchingEngine) Cancel(id types.OrderID) (types.OrderStatus, error) {
	book, ok := e.routes[id]
	if !ok {
		return types.OrderStatus{}, types.ErrOrderNotFound
	}

	before := book.TopOfBook()
	status, err := book.CancelOrder(id)
	if err != nil {
		// the route exists so the book must know the order
		e.log.Panic("routed order unknown to its book",
			logging.OrderID(id),
			logging.Symbol(book.Symbol()),
			logging.Error(err))
	}
	e.publish(before, book.TopOfBook())

	return status, nil
}

func (e *MatchingEngine) newID() types.OrderID {
	if e.nextID == math.MaxUint64 {
		e.log.Panic("cannot assign order id", logging.Error(types.ErrOrderIDsExhausted))
	}
	id := e.nextID
	e.nextID++
	return id
}

// publish sends the new top of book when it differs from before. The send
// never blocks, an update is dropped if the channel is full.
func (e *MatchingEngine) publish(before, after types.PriceInfo) {
	if before == after || e.priceInfo == nil {
		return
	}
	select {
	case e.priceInfo <- after:
		metrics.PriceUpdatesInc(after.Symbol.Ticker)
	default:
		metrics.DroppedMessagesInc("price")
		e.log.Warn("dropped price update, channel full", logging.PriceInfo(after))
	}
}
