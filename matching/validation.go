package matching

import (
	"math"

	"code.vegaprotocol.io/venue/types"
)

const (
	// MaxPrice and MaxSize keep every cumulative order cost within uint64:
	// an order never fills more than its size, always at a price <= MaxPrice.
	MaxPrice uint64 = math.MaxUint32
	MaxSize  uint64 = math.MaxUint32
)

func validateSubmission(sub types.OrderSubmission) error {
	switch {
	case !sub.Type.IsValid():
		return types.ErrInvalidOrderType
	case !sub.Side.IsValid():
		return types.ErrInvalidSide
	case sub.Size == 0, sub.Size > MaxSize:
		return types.ErrInvalidQuantity
	case sub.Type == types.OrderTypeMarket:
		// the price of a market order is ignored
		return nil
	case sub.Price == 0, sub.Price > MaxPrice:
		return types.ErrInvalidPrice
	}
	return nil
}
