package dbbadger

import (
	"context"
	"strings"

	"github.com/dgraph-io/badger/v3"
	"github.com/maskwallet/walletd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type walletRepository struct {
	store *badgerhold.Store
}

func newWalletRepository(store *badgerhold.Store) domain.WalletRepository {
	return &walletRepository{store}
}

func (r *walletRepository) AddWallet(
	ctx context.Context, wallet domain.Wallet,
) error {
	if err := r.store.Insert(walletKey(wallet.Address), &wallet); err != nil {
		if err == badgerhold.ErrKeyExists {
			return domain.ErrWalletAlreadyExists
		}
		return err
	}
	return nil
}

func (r *walletRepository) GetWallet(
	ctx context.Context, address string,
) (*domain.Wallet, error) {
	var wallet domain.Wallet
	if err := r.store.Get(walletKey(address), &wallet); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrWalletNotFound
		}
		return nil, err
	}
	return &wallet, nil
}

func (r *walletRepository) GetAllWallets(
	ctx context.Context,
) ([]domain.Wallet, error) {
	var wallets []domain.Wallet
	if err := r.store.Find(&wallets, nil); err != nil {
		return nil, err
	}
	return wallets, nil
}

func (r *walletRepository) HasWallet(
	ctx context.Context, address string,
) (bool, error) {
	if _, err := r.GetWallet(ctx, address); err != nil {
		if err == domain.ErrWalletNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *walletRepository) HasStoredKeyInfo(
	ctx context.Context, fingerprint string,
) (bool, error) {
	wallets, err := r.GetAllWallets(ctx)
	if err != nil {
		return false, err
	}
	for _, w := range wallets {
		if w.HasStoredKeyInfo() &&
			strings.EqualFold(w.StoredKeyInfo.Fingerprint, fingerprint) {
			return true, nil
		}
	}
	return false, nil
}

func (r *walletRepository) UpdateWallet(
	ctx context.Context, address string,
	updateFn func(*domain.Wallet) (*domain.Wallet, error),
) error {
	key := walletKey(address)
	return r.store.Badger().Update(func(tx *badger.Txn) error {
		var wallet domain.Wallet
		if err := r.store.TxGet(tx, key, &wallet); err != nil {
			if err == badgerhold.ErrNotFound {
				return domain.ErrWalletNotFound
			}
			return err
		}

		updatedWallet, err := updateFn(&wallet)
		if err != nil {
			return err
		}

		return r.store.TxUpdate(tx, key, updatedWallet)
	})
}

func (r *walletRepository) DeleteWallet(
	ctx context.Context, address string,
) error {
	if err := r.store.Delete(walletKey(address), domain.Wallet{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return domain.ErrWalletNotFound
		}
		return err
	}
	return nil
}

func walletKey(address string) string {
	return strings.ToLower(address)
}
