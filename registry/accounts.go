package registry

import (
	"code.vegaprotocol.io/venue/types"
)

// Accounts is the immutable set of accounts allowed to trade.
type Accounts struct {
	ids map[types.AccountID]struct{}
}

func NewAccounts(ids []uint32) *Accounts {
	a := &Accounts{ids: make(map[types.AccountID]struct{}, len(ids))}
	for _, id := range ids {
		a.ids[types.AccountID(id)] = struct{}{}
	}
	return a
}

func (a *Accounts) Contains(id types.AccountID) bool {
	_, ok := a.ids[id]
	return ok
}

func (a *Accounts) Len() int {
	return len(a.ids)
}
