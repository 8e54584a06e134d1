package types

// Symbol is the identity of a tradable instrument. Symbols are created once
// by the registry and only ever shared by pointer.
type Symbol struct {
	Ticker string
}

func NewSymbol(ticker string) *Symbol {
	return &Symbol{Ticker: ticker}
}

func (s *Symbol) String() string {
	if s == nil {
		return "<nil>"
	}
	return s.Ticker
}
