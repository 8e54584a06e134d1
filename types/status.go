package types

import "fmt"

type StatusType uint8

const (
	StatusFilled StatusType = iota
	StatusPartiallyFilled
	StatusWaiting
	StatusRejected
	StatusCanceled
)

func (t StatusType) String() string {
	switch t {
	case StatusFilled:
		return "FILLED"
	case StatusPartiallyFilled:
		return "PARTIALLY_FILLED"
	case StatusWaiting:
		return "WAITING"
	case StatusRejected:
		return "REJECTED"
	case StatusCanceled:
		return "CANCELED"
	default:
		return fmt.Sprintf("StatusType(%d)", uint8(t))
	}
}

// OrderStatus is the result returned to a caller for every command. Only the
// fields relevant to Type are set.
type OrderStatus struct {
	Type    StatusType
	OrderID OrderID
	// Filled is only set for partially filled orders.
	Filled  uint64
	// Cost is the cumulative notional of all fills.
	Cost    uint64
	Reason  string
}

func NewFilled(id OrderID, cost uint64) OrderStatus {
	return OrderStatus{Type: StatusFilled, OrderID: id, Cost: cost}
}

func NewPartiallyFilled(id OrderID, filled, cost uint64) OrderStatus {
	return OrderStatus{Type: StatusPartiallyFilled, OrderID: id, Filled: filled, Cost: cost}
}

func NewWaiting(id OrderID) OrderStatus {
	return OrderStatus{Type: StatusWaiting, OrderID: id}
}

func NewRejected(id OrderID, reason string) OrderStatus {
	return OrderStatus{Type: StatusRejected, OrderID: id, Reason: reason}
}

func NewCanceled(id OrderID) OrderStatus {
	return OrderStatus{Type: StatusCanceled, OrderID: id}
}

func (s OrderStatus) String() string {
	switch s.Type {
	case StatusFilled:
		return fmt.Sprintf("Filled(%d, %d)", s.OrderID, s.Cost)
	case StatusPartiallyFilled:
		return fmt.Sprintf("PartiallyFilled(%d, %d, %d)", s.OrderID, s.Filled, s.Cost)
	case StatusWaiting:
		return fmt.Sprintf("Waiting(%d)", s.OrderID)
	case StatusRejected:
		return fmt.Sprintf("Rejected(%d, %s)", s.OrderID, s.Reason)
	case StatusCanceled:
		return fmt.Sprintf("Canceled(%d)", s.OrderID)
	default:
		return s.Type.String()
	}
}

// IsTerminal reports whether no further fill can change the status.
func (t StatusType) IsTerminal() bool {
	return t == StatusFilled || t == StatusCanceled || t == StatusRejected
}
