package dbbadger

import (
	"context"

	"github.com/maskwallet/walletd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const (
	accountsKey   = "accounts"
	connectionKey = "connection"
)

// accountList is stored as a single record to keep the order computed by
// the reconciler.
type accountList struct {
	Accounts []domain.Account
}

type accountRepository struct {
	store *badgerhold.Store
}

func newAccountRepository(store *badgerhold.Store) domain.AccountRepository {
	return &accountRepository{store}
}

func (r *accountRepository) GetAccounts(
	ctx context.Context,
) ([]domain.Account, error) {
	var list accountList
	if err := r.store.Get(accountsKey, &list); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return list.Accounts, nil
}

func (r *accountRepository) UpdateAccounts(
	ctx context.Context, accounts []domain.Account,
) error {
	return r.store.Upsert(accountsKey, &accountList{accounts})
}

type connectionRepository struct {
	store *badgerhold.Store
}

func newConnectionRepository(
	store *badgerhold.Store,
) domain.ConnectionRepository {
	return &connectionRepository{store}
}

func (r *connectionRepository) GetConnection(
	ctx context.Context,
) (*domain.Connection, error) {
	var connection domain.Connection
	if err := r.store.Get(connectionKey, &connection); err != nil {
		if err == badgerhold.ErrNotFound {
			return &domain.Connection{}, nil
		}
		return nil, err
	}
	return &connection, nil
}

func (r *connectionRepository) UpdateConnection(
	ctx context.Context, connection domain.Connection,
) error {
	return r.store.Upsert(connectionKey, &connection)
}
