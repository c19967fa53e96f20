package wallet

import (
	"sync"
	"time"

	"github.com/maskwallet/walletd/internal/core/domain"
)

// WalletInfo is the public view of a wallet. It never carries the stored key
// info or anything derived from it.
type WalletInfo struct {
	Address              string
	Name                 string
	DerivationPath       string
	LatestDerivationPath string
	Owner                string
	Identifier           string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (i WalletInfo) HasDerivationPath() bool {
	return i.DerivationPath != ""
}

// WalletPatch lists the fields of a wallet that can be updated. Nil fields
// are left untouched.
type WalletPatch struct {
	Name                 *string
	LatestDerivationPath *string
}

// DerivableAccount is a preview of an account derivable from a mnemonic.
type DerivableAccount struct {
	Index          int
	Address        string
	DerivationPath string
	Derived        bool
}

// WalletsChangedEvent is published every time the set of wallets or any of
// their public fields changes.
type WalletsChangedEvent struct {
	Wallets []WalletInfo
}

func sanitize(w domain.Wallet) WalletInfo {
	return WalletInfo{
		Address:              w.Address,
		Name:                 w.Name,
		DerivationPath:       w.DerivationPath,
		LatestDerivationPath: w.LatestDerivationPath,
		Owner:                w.Owner,
		Identifier:           w.Identifier,
		CreatedAt:            w.CreatedAt,
		UpdatedAt:            w.UpdatedAt,
	}
}

// keyedMutex serializes the operations sharing the same key.
type keyedMutex struct {
	lock  sync.Mutex
	locks map[string]*sync.Mutex
}

func (m *keyedMutex) Lock(key string) func() {
	m.lock.Lock()
	if m.locks == nil {
		m.locks = make(map[string]*sync.Mutex)
	}
	l, ok := m.locks[key]
	if !ok {
		l = &sync.Mutex{}
		m.locks[key] = l
	}
	m.lock.Unlock()

	l.Lock()
	return l.Unlock
}
