package wallet

import (
	"context"
	"fmt"

	"github.com/maskwallet/walletd/internal/core/application/password"
	"github.com/maskwallet/walletd/internal/core/domain"
	log "github.com/sirupsen/logrus"
)

const (
	derivationFound    = "found"
	derivationExceeded = "exceeded"
	derivationFailed   = "failed"
)

// derivationOutcome is the result of the search of a free derivation path.
// Path is always the last path tried.
type derivationOutcome struct {
	path     string
	address  string
	attempts int
	found    bool
}

// DeriveWallet creates a new wallet out of the primary mnemonic, at the
// first path following the latest used one whose address is not already a
// wallet. The latest path is persisted whether or not a free one is found
// within the max number of attempts.
func (s *Service) DeriveWallet(ctx context.Context, name string) (*WalletInfo, error) {
	name, err := domain.ValidateWalletName(name)
	if err != nil {
		return nil, err
	}
	sctx, err := s.gate.SecretContext(ctx)
	if err != nil {
		return nil, err
	}

	primary, err := s.getWalletPrimary(ctx)
	if err != nil {
		return nil, err
	}
	if primary == nil {
		return nil, domain.ErrNoPrimaryWallet
	}

	unlock := s.derivationLocks.Lock(primary.Address)
	defer unlock()

	// Reload within the lock to start from the latest persisted path.
	primary, err = s.getWallet(ctx, primary.Address)
	if err != nil {
		return nil, err
	}
	from := primary.CurrentDerivationPath()
	if from == "" {
		return nil, fmt.Errorf(
			"%w: %s has no derivation path", domain.ErrNoPrimaryWallet, primary.Address,
		)
	}

	outcome, err := s.findFreeDerivationPath(ctx, sctx, primary, from)
	if err != nil {
		s.metrics.ObserveDerivation(derivationFailed, outcome.attempts)
		return nil, err
	}

	if err := sctx.Wallets().UpdateWallet(
		ctx, primary.Address, func(w *domain.Wallet) (*domain.Wallet, error) {
			if err := w.SetLatestDerivationPath(outcome.path); err != nil {
				return nil, err
			}
			return w, nil
		},
	); err != nil {
		return nil, err
	}

	if !outcome.found {
		s.metrics.ObserveDerivation(derivationExceeded, outcome.attempts)
		log.Warnf(
			"no free derivation path found after %d attempts, last tried %s",
			outcome.attempts, outcome.path,
		)
		s.publish(ctx)
		return nil, fmt.Errorf(
			"%w: last tried path %s", domain.ErrExceedMaxDerivation, outcome.path,
		)
	}

	privateKey, err := s.engine.ExportPrivateKeyOfPath(
		domain.CoinEthereum, primary.StoredKeyInfo, outcome.path,
		sctx.Password(),
	)
	if err != nil {
		s.metrics.ObserveDerivation(derivationFailed, outcome.attempts)
		return nil, err
	}

	info, err := s.recoverWalletFromPrivateKey(ctx, sctx, name, privateKey)
	if err != nil {
		s.metrics.ObserveDerivation(derivationFailed, outcome.attempts)
		return nil, err
	}

	s.metrics.ObserveDerivation(derivationFound, outcome.attempts)
	log.Debugf("derived wallet %s at path %s", info.Address, outcome.path)
	return info, nil
}

// findFreeDerivationPath bumps the given path up to maxDeriveCount times and
// stops at the first one whose address is not already stored.
func (s *Service) findFreeDerivationPath(
	ctx context.Context, sctx *password.SecretContext,
	primary *domain.Wallet, from string,
) (derivationOutcome, error) {
	outcome := derivationOutcome{path: from}

	for outcome.attempts < s.maxDeriveCount {
		next, err := domain.BumpDerivationPath(outcome.path)
		if err != nil {
			return outcome, err
		}
		outcome.path = next
		outcome.attempts++

		address, err := s.engine.CreateAccountOfCoinAtPath(
			domain.CoinEthereum, primary.StoredKeyInfo, next, sctx.Password(),
		)
		if err != nil {
			return outcome, err
		}

		exists, err := sctx.Wallets().HasWallet(ctx, address)
		if err != nil {
			return outcome, err
		}
		if !exists {
			outcome.address = address
			outcome.found = true
			return outcome, nil
		}
	}

	return outcome, nil
}

// GetDerivableAccounts previews a page of the accounts derivable from the
// given mnemonic, flagging those already stored as wallets. Nothing is
// persisted.
func (s *Service) GetDerivableAccounts(
	ctx context.Context, mnemonic string, page, pageSize int,
) ([]DerivableAccount, error) {
	if page < 0 {
		page = 0
	}
	if pageSize <= 0 {
		pageSize = 10
	}

	storedKey, err := s.engine.ImportMnemonic(mnemonic, oneTimePassword)
	if err != nil {
		return nil, err
	}

	accounts := make([]DerivableAccount, 0, pageSize)
	for i := page * pageSize; i < (page+1)*pageSize; i++ {
		path := domain.DerivationPathAtIndex(i)
		address, err := s.engine.CreateAccountOfCoinAtPath(
			domain.CoinEthereum, storedKey, path, oneTimePassword,
		)
		if err != nil {
			return nil, err
		}
		derived, err := s.HasWallet(ctx, address)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, DerivableAccount{
			Index:          i,
			Address:        address,
			DerivationPath: path,
			Derived:        derived,
		})
	}
	return accounts, nil
}
