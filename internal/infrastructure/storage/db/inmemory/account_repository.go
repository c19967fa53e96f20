package inmemory

import (
	"context"
	"sync"

	"github.com/maskwallet/walletd/internal/core/domain"
)

type accountRepository struct {
	accounts []domain.Account

	lock *sync.RWMutex
}

func NewAccountRepository() domain.AccountRepository {
	return &accountRepository{lock: &sync.RWMutex{}}
}

func (r *accountRepository) GetAccounts(
	_ context.Context,
) ([]domain.Account, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	if r.accounts == nil {
		return nil, nil
	}
	return append([]domain.Account(nil), r.accounts...), nil
}

func (r *accountRepository) UpdateAccounts(
	_ context.Context, accounts []domain.Account,
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.accounts = append([]domain.Account(nil), accounts...)
	return nil
}

type connectionRepository struct {
	connection domain.Connection

	lock *sync.RWMutex
}

func NewConnectionRepository() domain.ConnectionRepository {
	return &connectionRepository{lock: &sync.RWMutex{}}
}

func (r *connectionRepository) GetConnection(
	_ context.Context,
) (*domain.Connection, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	connection := r.connection
	return &connection, nil
}

func (r *connectionRepository) UpdateConnection(
	_ context.Context, connection domain.Connection,
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.connection = connection
	return nil
}
