package inmemory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/maskwallet/walletd/internal/core/domain"
)

// WalletRepositoryImpl represents an in memory storage
type WalletRepositoryImpl struct {
	wallets map[string]domain.Wallet

	lock *sync.RWMutex
}

// NewWalletRepository returns a new empty WalletRepositoryImpl
func NewWalletRepository() domain.WalletRepository {
	return &WalletRepositoryImpl{
		wallets: map[string]domain.Wallet{},
		lock:    &sync.RWMutex{},
	}
}

func (r *WalletRepositoryImpl) AddWallet(
	_ context.Context, wallet domain.Wallet,
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	key := walletKey(wallet.Address)
	if _, ok := r.wallets[key]; ok {
		return domain.ErrWalletAlreadyExists
	}
	r.wallets[key] = copyWallet(wallet)
	return nil
}

func (r *WalletRepositoryImpl) GetWallet(
	_ context.Context, address string,
) (*domain.Wallet, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	wallet, ok := r.wallets[walletKey(address)]
	if !ok {
		return nil, domain.ErrWalletNotFound
	}
	w := copyWallet(wallet)
	return &w, nil
}

// GetAllWallets returns the wallets sorted by address, like the badger
// implementation does.
func (r *WalletRepositoryImpl) GetAllWallets(
	_ context.Context,
) ([]domain.Wallet, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	keys := make([]string, 0, len(r.wallets))
	for k := range r.wallets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	wallets := make([]domain.Wallet, 0, len(keys))
	for _, k := range keys {
		wallets = append(wallets, copyWallet(r.wallets[k]))
	}
	return wallets, nil
}

func (r *WalletRepositoryImpl) HasWallet(
	_ context.Context, address string,
) (bool, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	_, ok := r.wallets[walletKey(address)]
	return ok, nil
}

func (r *WalletRepositoryImpl) HasStoredKeyInfo(
	_ context.Context, fingerprint string,
) (bool, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	for _, w := range r.wallets {
		if w.HasStoredKeyInfo() &&
			strings.EqualFold(w.StoredKeyInfo.Fingerprint, fingerprint) {
			return true, nil
		}
	}
	return false, nil
}

func (r *WalletRepositoryImpl) UpdateWallet(
	_ context.Context, address string,
	updateFn func(*domain.Wallet) (*domain.Wallet, error),
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	key := walletKey(address)
	wallet, ok := r.wallets[key]
	if !ok {
		return domain.ErrWalletNotFound
	}
	w := copyWallet(wallet)

	updatedWallet, err := updateFn(&w)
	if err != nil {
		return err
	}

	r.wallets[key] = copyWallet(*updatedWallet)
	return nil
}

func (r *WalletRepositoryImpl) DeleteWallet(
	_ context.Context, address string,
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	key := walletKey(address)
	if _, ok := r.wallets[key]; !ok {
		return domain.ErrWalletNotFound
	}
	delete(r.wallets, key)
	return nil
}

func walletKey(address string) string {
	return strings.ToLower(address)
}

// copyWallet makes sure callers never share the stored key info with the
// repository.
func copyWallet(w domain.Wallet) domain.Wallet {
	if w.StoredKeyInfo != nil {
		info := *w.StoredKeyInfo
		info.Data = append([]byte(nil), w.StoredKeyInfo.Data...)
		w.StoredKeyInfo = &info
	}
	return w
}
