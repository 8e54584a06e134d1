package types

import "github.com/pkg/errors"

var (
	// ErrOrderNotFound signals that no order with the given id was ever accepted.
	ErrOrderNotFound = errors.New("order not found")
	// ErrUnknownInstrument signals that the symbol is not part of the registry.
	ErrUnknownInstrument = errors.New("unknown instrument")
	// ErrUnknownAccount signals that the account is not part of the registry.
	ErrUnknownAccount = errors.New("unknown account")
	// ErrInvalidQuantity signals a zero size or one above the largest accepted size.
	ErrInvalidQuantity = errors.New("invalid quantity")
	// ErrInvalidPrice signals a priced order with a zero price or one above the largest accepted price.
	ErrInvalidPrice = errors.New("invalid price")
	// ErrInvalidOrderType signals an order kind other than market, limit or stop.
	ErrInvalidOrderType = errors.New("invalid order type")
	// ErrInvalidSide signals a side other than buy or sell.
	ErrInvalidSide = errors.New("invalid side")
	// ErrOrderIDsExhausted signals that the engine has no order id left to assign.
	ErrOrderIDsExhausted = errors.New("order id space exhausted")
)
