package inmemory

import (
	"context"
	"sync"

	"github.com/maskwallet/walletd/internal/core/domain"
)

type passwordRepository struct {
	record *domain.PasswordRecord

	lock *sync.RWMutex
}

func NewPasswordRepository() domain.PasswordRepository {
	return &passwordRepository{lock: &sync.RWMutex{}}
}

func (r *passwordRepository) GetPassword(
	_ context.Context,
) (*domain.PasswordRecord, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	if r.record == nil {
		return nil, domain.ErrPasswordNotSet
	}
	record := *r.record
	return &record, nil
}

func (r *passwordRepository) SetPassword(
	_ context.Context, record domain.PasswordRecord,
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.record = &record
	return nil
}

func (r *passwordRepository) DeletePassword(_ context.Context) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.record = nil
	return nil
}
