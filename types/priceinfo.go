package types

import "fmt"

// PriceInfo is a top of book snapshot. A zero price and size means the side
// has no liquidity.
type PriceInfo struct {
	Symbol  *Symbol
	BestBid uint64
	BidSize uint64
	BestAsk uint64
	AskSize uint64
}

func (p PriceInfo) String() string {
	return fmt.Sprintf("%s bid(%d x %d) ask(%d x %d)", p.Symbol, p.BestBid, p.BidSize, p.BestAsk, p.AskSize)
}
