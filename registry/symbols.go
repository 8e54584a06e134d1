package registry

import (
	"sort"

	"code.vegaprotocol.io/venue/types"

	"github.com/pkg/errors"
)

// MaxTickerLen is the width of the ticker field on the wire.
const MaxTickerLen = 4

var (
	ErrEmptyTicker     = errors.New("empty ticker")
	ErrTickerTooLong   = errors.New("ticker too long")
	ErrDuplicateTicker = errors.New("duplicate ticker")
)

// Symbols maps tickers to instruments. It is immutable once built and safe
// to share between goroutines.
type Symbols struct {
	byTicker map[string]*types.Symbol
	list     []*types.Symbol
}

// NewSymbols builds the registry from a list of tickers.
func NewSymbols(tickers []string) (*Symbols, error) {
	s := &Symbols{
		byTicker: make(map[string]*types.Symbol, len(tickers)),
		list:     make([]*types.Symbol, 0, len(tickers)),
	}
	for _, t := range tickers {
		switch {
		case len(t) == 0:
			return nil, ErrEmptyTicker
		case len(t) > MaxTickerLen:
			return nil, errors.Wrapf(ErrTickerTooLong, "ticker %q", t)
		}
		if _, ok := s.byTicker[t]; ok {
			return nil, errors.Wrapf(ErrDuplicateTicker, "ticker %q", t)
		}
		sym := types.NewSymbol(t)
		s.byTicker[t] = sym
		s.list = append(s.list, sym)
	}
	sort.Slice(s.list, func(i, j int) bool {
		return s.list[i].Ticker < s.list[j].Ticker
	})
	return s, nil
}

// Get returns the instrument for a ticker.
func (s *Symbols) Get(ticker string) (*types.Symbol, bool) {
	sym, ok := s.byTicker[ticker]
	return sym, ok
}

// List returns all instruments sorted by ticker.
func (s *Symbols) List() []*types.Symbol {
	out := make([]*types.Symbol, len(s.list))
	copy(out, s.list)
	return out
}

func (s *Symbols) Len() int {
	return len(s.list)
}
