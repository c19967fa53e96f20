package dbbadger

import (
	"context"

	"github.com/maskwallet/walletd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const passwordKey = "password"

type passwordRepository struct {
	store *badgerhold.Store
}

func newPasswordRepository(store *badgerhold.Store) domain.PasswordRepository {
	return &passwordRepository{store}
}

func (r *passwordRepository) GetPassword(
	ctx context.Context,
) (*domain.PasswordRecord, error) {
	var record domain.PasswordRecord
	if err := r.store.Get(passwordKey, &record); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrPasswordNotSet
		}
		return nil, err
	}
	return &record, nil
}

func (r *passwordRepository) SetPassword(
	ctx context.Context, record domain.PasswordRecord,
) error {
	return r.store.Upsert(passwordKey, &record)
}

func (r *passwordRepository) DeletePassword(ctx context.Context) error {
	if err := r.store.Delete(passwordKey, domain.PasswordRecord{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return err
	}
	return nil
}
