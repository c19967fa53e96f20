package domain

import "fmt"

// DefaultSupportedChainIDs are the chains the smart pay services operate on.
var DefaultSupportedChainIDs = []uint64{ChainIDMatic, ChainIDMumbai}

// ChainAllowList is the set of chains external lookups are allowed for.
type ChainAllowList map[uint64]struct{}

func NewChainAllowList(chainIDs ...uint64) ChainAllowList {
	if len(chainIDs) == 0 {
		chainIDs = DefaultSupportedChainIDs
	}
	l := make(ChainAllowList, len(chainIDs))
	for _, id := range chainIDs {
		l[id] = struct{}{}
	}
	return l
}

// Check returns ErrUnsupportedChain if the chain is not in the list.
func (l ChainAllowList) Check(chainID uint64) error {
	if _, ok := l[chainID]; !ok {
		return fmt.Errorf("%w: %d", ErrUnsupportedChain, chainID)
	}
	return nil
}
