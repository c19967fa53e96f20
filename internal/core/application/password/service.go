package password

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/maskwallet/walletd/internal/core/domain"
	"github.com/maskwallet/walletd/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

// Service gates every access to secret material behind the unlock
// password. The password hash is persisted, the plaintext only lives in
// memory while the service is unlocked.
type Service struct {
	repoManager ports.RepoManager
	engine      ports.KeyEngine

	lock     *sync.RWMutex
	password string
}

func NewService(
	repoManager ports.RepoManager, engine ports.KeyEngine,
) (*Service, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if engine == nil {
		return nil, fmt.Errorf("missing key engine")
	}
	return &Service{
		repoManager: repoManager,
		engine:      engine,
		lock:        &sync.RWMutex{},
	}, nil
}

// HasPassword returns whether a password was ever set.
func (s *Service) HasPassword(ctx context.Context) (bool, error) {
	if _, err := s.getRecord(ctx); err != nil {
		if errors.Is(err, domain.ErrPasswordNotSet) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ValidatePassword checks the strength rules without touching the state.
func (s *Service) ValidatePassword(password string) error {
	return domain.ValidatePassword(password)
}

// SetPassword sets the first password and leaves the service unlocked.
func (s *Service) SetPassword(ctx context.Context, password string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, err := s.getRecord(ctx); err == nil {
		return domain.ErrPasswordAlreadySet
	} else if !errors.Is(err, domain.ErrPasswordNotSet) {
		return err
	}

	record, err := domain.NewPasswordRecord(password)
	if err != nil {
		return err
	}
	if err := s.repoManager.PasswordRepository().SetPassword(
		ctx, *record,
	); err != nil {
		return err
	}
	s.password = password

	log.Debug("password set")
	return nil
}

// VerifyPassword returns ErrInvalidPassword if the given password doesn't
// match the stored one.
func (s *Service) VerifyPassword(ctx context.Context, password string) error {
	record, err := s.getRecord(ctx)
	if err != nil {
		return err
	}
	if !record.Verify(password) {
		return domain.ErrInvalidPassword
	}
	return nil
}

// VerifyPasswordRequired is like VerifyPassword but also rejects an empty
// password before looking at the stored record.
func (s *Service) VerifyPasswordRequired(
	ctx context.Context, password string,
) error {
	if password == "" {
		return domain.ErrInvalidPassword
	}
	return s.VerifyPassword(ctx, password)
}

// ChangePassword re-encrypts every stored key with the new password and
// replaces the password record.
func (s *Service) ChangePassword(
	ctx context.Context, oldPassword, newPassword string,
) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	record, err := s.getRecord(ctx)
	if err != nil {
		return err
	}
	if !record.Verify(oldPassword) {
		return domain.ErrInvalidPassword
	}
	newRecord, err := domain.NewPasswordRecord(newPassword)
	if err != nil {
		return err
	}

	walletRepo := s.repoManager.WalletRepository()
	wallets, err := walletRepo.GetAllWallets(ctx)
	if err != nil {
		return err
	}
	// Re-encrypt everything before writing so that a decryption failure
	// leaves the store untouched.
	changes := make([]storedKeyChange, 0, len(wallets))
	for _, w := range wallets {
		if !w.HasStoredKeyInfo() {
			continue
		}
		storedKey, err := s.engine.ChangePassword(
			w.StoredKeyInfo, oldPassword, newPassword,
		)
		if err != nil {
			return fmt.Errorf(
				"failed to re-encrypt key of wallet %s: %w", w.Address, err,
			)
		}
		changes = append(changes, storedKeyChange{
			address: w.Address,
			prev:    w.StoredKeyInfo,
			next:    storedKey,
		})
	}

	// Keys and password record must stay consistent: any failed write
	// restores the keys already sealed with the new password.
	for i, c := range changes {
		if err := s.setStoredKey(ctx, c.address, c.next); err != nil {
			s.rollbackStoredKeys(ctx, changes[:i])
			return err
		}
	}
	if err := s.repoManager.PasswordRepository().SetPassword(
		ctx, *newRecord,
	); err != nil {
		s.rollbackStoredKeys(ctx, changes)
		return err
	}
	s.password = newPassword

	log.Debug("password changed")
	return nil
}

type storedKeyChange struct {
	address  string
	prev, next *domain.StoredKeyInfo
}

func (s *Service) setStoredKey(
	ctx context.Context, address string, storedKey *domain.StoredKeyInfo,
) error {
	return s.repoManager.WalletRepository().UpdateWallet(
		ctx, address, func(w *domain.Wallet) (*domain.Wallet, error) {
			w.StoredKeyInfo = storedKey
			return w, nil
		},
	)
}

func (s *Service) rollbackStoredKeys(
	ctx context.Context, changes []storedKeyChange,
) {
	for _, c := range changes {
		if err := s.setStoredKey(ctx, c.address, c.prev); err != nil {
			log.WithError(err).Errorf(
				"failed to restore key of wallet %s after password change", c.address,
			)
		}
	}
}

// ClearPassword removes the password record and locks the service. Used by
// the reset flow.
func (s *Service) ClearPassword(ctx context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.repoManager.PasswordRepository().DeletePassword(ctx); err != nil {
		return err
	}
	s.password = ""

	log.Debug("password cleared")
	return nil
}

// Unlock keeps the given password in memory if it matches the stored one.
func (s *Service) Unlock(ctx context.Context, password string) error {
	if err := s.VerifyPasswordRequired(ctx, password); err != nil {
		return err
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	s.password = password

	log.Debug("wallet unlocked")
	return nil
}

// Lock forgets the in-memory password.
func (s *Service) Lock() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.password = ""

	log.Debug("wallet locked")
}

func (s *Service) IsLocked() bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.password == ""
}

// SecretContext returns the current password together with the secret
// store. It fails with ErrPasswordNotSet if no password exists yet and with
// ErrLocked if the service was not unlocked.
func (s *Service) SecretContext(ctx context.Context) (*SecretContext, error) {
	if _, err := s.getRecord(ctx); err != nil {
		return nil, err
	}

	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.password == "" {
		return nil, domain.ErrLocked
	}
	return &SecretContext{
		password: s.password,
		wallets:  s.repoManager.WalletRepository(),
	}, nil
}

func (s *Service) getRecord(ctx context.Context) (*domain.PasswordRecord, error) {
	return s.repoManager.PasswordRepository().GetPassword(ctx)
}
