package types

import (
	"fmt"
	"math/bits"
)

type (
	// OrderID is assigned by the matching engine, starting at 1. Zero is
	// never a valid order id and is used in rejections issued before an id
	// was assigned.
	OrderID uint64

	AccountID uint32
)

type Side uint8

const (
	SideBuy Side = iota
	SideSell
)

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "BUY"
	case SideSell:
		return "SELL"
	default:
		return fmt.Sprintf("Side(%d)", uint8(s))
	}
}

// Opposite returns the side an order of this side trades against.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

func (s Side) IsValid() bool {
	return s == SideBuy || s == SideSell
}

// OrderType is the closed set of order kinds. Limit and stop orders carry
// their threshold in Order.Price; market orders have no price.
type OrderType uint8

const (
	OrderTypeMarket OrderType = iota
	OrderTypeLimit
	OrderTypeStop
)

func (t OrderType) String() string {
	switch t {
	case OrderTypeMarket:
		return "MARKET"
	case OrderTypeLimit:
		return "LIMIT"
	case OrderTypeStop:
		return "STOP"
	default:
		return fmt.Sprintf("OrderType(%d)", uint8(t))
	}
}

func (t OrderType) IsValid() bool {
	return t <= OrderTypeStop
}

// StopState tracks a stop order through its activation.
type StopState uint8

const (
	// StopStateNone is used by non stop orders.
	StopStateNone StopState = iota
	// StopStateResting stop orders wait in the stop queue for their trigger.
	StopStateResting
	// StopStateActivated stop orders were triggered and now behave as market orders.
	StopStateActivated
	// StopStateTerminal stop orders were filled or canceled.
	StopStateTerminal
)

func (s StopState) String() string {
	switch s {
	case StopStateNone:
		return "NONE"
	case StopStateResting:
		return "RESTING"
	case StopStateActivated:
		return "ACTIVATED"
	case StopStateTerminal:
		return "TERMINAL"
	default:
		return fmt.Sprintf("StopState(%d)", uint8(s))
	}
}

// Order is the fill state of a single instruction. It is owned by the book
// of its symbol and only mutated by the engine goroutine.
type Order struct {
	ID        OrderID
	AccountID AccountID
	Symbol    *Symbol
	Type      OrderType
	Side      Side
	Price     uint64
	Size      uint64
	Remaining uint64
	Cost      uint64
	Canceled  bool
	StopState StopState
}

// Fill applies a fill of size at price. Filling more than what remains is an
// internal consistency failure and panics.
func (o *Order) Fill(size, price uint64) {
	if size == 0 || size > o.Remaining {
		panic(fmt.Sprintf("invalid fill of %d on order %d with %d remaining", size, o.ID, o.Remaining))
	}
	hi, notional := bits.Mul64(size, price)
	cost, carry := bits.Add64(o.Cost, notional, 0)
	if hi != 0 || carry != 0 {
		panic(fmt.Sprintf("cost overflow on order %d", o.ID))
	}
	o.Remaining -= size
	o.Cost = cost
	if o.Remaining == 0 && o.Type == OrderTypeStop {
		o.StopState = StopStateTerminal
	}
}

func (o *Order) Filled() uint64 {
	return o.Size - o.Remaining
}

func (o *Order) IsFilled() bool {
	return o.Remaining == 0
}

// IsActive reports whether the order still sits in one of the book queues.
func (o *Order) IsActive() bool {
	return !o.Canceled && o.Remaining > 0
}

// Status computes the caller facing status from the fill state.
func (o *Order) Status() OrderStatus {
	switch {
	case o.Canceled:
		return NewCanceled(o.ID)
	case o.Remaining == 0:
		return NewFilled(o.ID, o.Cost)
	case o.Remaining == o.Size:
		return NewWaiting(o.ID)
	default:
		return NewPartiallyFilled(o.ID, o.Filled(), o.Cost)
	}
}

func (o Order) String() string {
	return fmt.Sprintf(
		"id(%d) account(%d) symbol(%s) type(%s) side(%s) price(%d) size(%d) remaining(%d) cost(%d) canceled(%v) stop(%s)",
		o.ID, o.AccountID, o.Symbol, o.Type, o.Side, o.Price, o.Size, o.Remaining, o.Cost, o.Canceled, o.StopState,
	)
}

// OrderSubmission is an order instruction as received from a client, before
// the engine assigns it an id. Price is ignored for market orders.
type OrderSubmission struct {
	AccountID AccountID
	Ticker    string
	Type      OrderType
	Side      Side
	Price     uint64
	Size      uint64
}

func (s OrderSubmission) String() string {
	return fmt.Sprintf(
		"account(%d) ticker(%s) type(%s) side(%s) price(%d) size(%d)",
		s.AccountID, s.Ticker, s.Type, s.Side, s.Price, s.Size,
	)
}
