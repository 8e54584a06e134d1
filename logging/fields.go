package logging

import (
	"time"

	"code.vegaprotocol.io/venue/types"

	"go.uber.org/zap"
)

// Field is the structured logging field type.
type Field = zap.Field

// String constructs a field with the given key and value.
func String(key string, val string) zap.Field {
	return zap.String(key, val)
}

// Strings constructs a field with the given key and values.
func Strings(key string, val []string) zap.Field {
	return zap.Strings(key, val)
}

// Error constructs a field with the key "error".
func Error(err error) zap.Field {
	return zap.Error(err)
}

func Int(key string, val int) zap.Field {
	return zap.Int(key, val)
}

func Uint32(key string, val uint32) zap.Field {
	return zap.Uint32(key, val)
}

func Uint64(key string, val uint64) zap.Field {
	return zap.Uint64(key, val)
}

func Bool(key string, val bool) zap.Field {
	return zap.Bool(key, val)
}

func Duration(key string, val time.Duration) zap.Field {
	return zap.Duration(key, val)
}

// OrderID constructs a field with the key "order-id".
func OrderID(id types.OrderID) zap.Field {
	return zap.Uint64("order-id", uint64(id))
}

// Symbol constructs a field with the key "symbol".
func Symbol(s *types.Symbol) zap.Field {
	if s == nil {
		return zap.Skip()
	}
	return zap.String("symbol", s.Ticker)
}

// Order constructs a field with the key "order" holding the order's string form.
func Order(o types.Order) zap.Field {
	return zap.String("order", o.String())
}

// OrderStatus constructs a field with the key "status".
func OrderStatus(s types.OrderStatus) zap.Field {
	return zap.String("status", s.String())
}

// PriceInfo constructs a field with the key "price-info".
func PriceInfo(p types.PriceInfo) zap.Field {
	return zap.String("price-info", p.String())
}
