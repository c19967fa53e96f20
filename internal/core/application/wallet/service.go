package wallet

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/event"
	"github.com/maskwallet/walletd/internal/core/application/password"
	"github.com/maskwallet/walletd/internal/core/domain"
	"github.com/maskwallet/walletd/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

// oneTimePassword encrypts the throwaway keys used to preview accounts.
const oneTimePassword = "MASK"

// Service is the wallet registry. It owns every read and write of wallet
// records and hands out sanitized views only.
type Service struct {
	repoManager    ports.RepoManager
	gate           *password.Service
	engine         ports.KeyEngine
	signer         ports.Signer
	metrics        ports.Metrics
	maxDeriveCount int

	derivationLocks *keyedMutex
	feed            event.Feed
}

// Opts ...
type Opts struct {
	MaxDeriveCount int
	Metrics        ports.Metrics
}

func NewService(
	repoManager ports.RepoManager, gate *password.Service,
	engine ports.KeyEngine, signer ports.Signer, opts Opts,
) (*Service, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if gate == nil {
		return nil, fmt.Errorf("missing password service")
	}
	if engine == nil {
		return nil, fmt.Errorf("missing key engine")
	}
	if signer == nil {
		return nil, fmt.Errorf("missing signer")
	}
	if opts.MaxDeriveCount <= 0 {
		opts.MaxDeriveCount = domain.DefaultMaxDeriveCount
	}
	if opts.Metrics == nil {
		opts.Metrics = noopMetrics{}
	}

	return &Service{
		repoManager:     repoManager,
		gate:            gate,
		engine:          engine,
		signer:          signer,
		metrics:         opts.Metrics,
		maxDeriveCount:  opts.MaxDeriveCount,
		derivationLocks: &keyedMutex{},
	}, nil
}

// GetWallet returns the wallet with the given address, or nil if there's
// none holding secret material.
func (s *Service) GetWallet(
	ctx context.Context, address string,
) (*WalletInfo, error) {
	w, err := s.getWallet(ctx, address)
	if err != nil {
		if errors.Is(err, domain.ErrWalletNotFound) {
			return nil, nil
		}
		return nil, err
	}
	info := sanitize(*w)
	return &info, nil
}

// GetWallets returns all the wallets holding secret material, oldest first.
func (s *Service) GetWallets(ctx context.Context) ([]WalletInfo, error) {
	wallets, err := s.getWallets(ctx)
	if err != nil {
		return nil, err
	}
	infos := make([]WalletInfo, 0, len(wallets))
	for _, w := range wallets {
		infos = append(infos, sanitize(w))
	}
	return infos, nil
}

// GetWalletPrimary returns the earliest created mnemonic wallet, or nil.
func (s *Service) GetWalletPrimary(ctx context.Context) (*WalletInfo, error) {
	w, err := s.getWalletPrimary(ctx)
	if err != nil || w == nil {
		return nil, err
	}
	info := sanitize(*w)
	return &info, nil
}

func (s *Service) HasWallet(ctx context.Context, address string) (bool, error) {
	return s.repoManager.WalletRepository().HasWallet(ctx, address)
}

// UpdateWallet applies the given patch to the wallet.
func (s *Service) UpdateWallet(
	ctx context.Context, address string, patch WalletPatch,
) error {
	if err := s.repoManager.WalletRepository().UpdateWallet(
		ctx, address, func(w *domain.Wallet) (*domain.Wallet, error) {
			if patch.Name != nil {
				if err := w.Rename(*patch.Name); err != nil {
					return nil, err
				}
			}
			if patch.LatestDerivationPath != nil {
				if err := w.SetLatestDerivationPath(
					*patch.LatestDerivationPath,
				); err != nil {
					return nil, err
				}
			}
			return w, nil
		},
	); err != nil {
		return err
	}

	s.publish(ctx)
	return nil
}

func (s *Service) RenameWallet(ctx context.Context, address, name string) error {
	return s.UpdateWallet(ctx, address, WalletPatch{Name: &name})
}

// RemoveWallet deletes a wallet after checking the password. Wallets with a
// derivation path can only go away with Reset.
func (s *Service) RemoveWallet(
	ctx context.Context, address, unverifiedPassword string,
) error {
	if err := s.gate.VerifyPasswordRequired(ctx, unverifiedPassword); err != nil {
		return err
	}
	w, err := s.getWallet(ctx, address)
	if err != nil {
		return err
	}
	if w.HasDerivationPath() {
		return domain.ErrDeleteDerivedWallet
	}
	if err := s.repoManager.WalletRepository().DeleteWallet(
		ctx, w.Address,
	); err != nil {
		return err
	}

	log.Debugf("removed wallet %s", w.Address)
	s.publish(ctx)
	return nil
}

// Reset removes every wallet together with the account list and the
// selected account, and clears the password.
func (s *Service) Reset(ctx context.Context, unverifiedPassword string) error {
	if err := s.gate.VerifyPasswordRequired(ctx, unverifiedPassword); err != nil {
		return err
	}

	walletRepo := s.repoManager.WalletRepository()
	wallets, err := walletRepo.GetAllWallets(ctx)
	if err != nil {
		return err
	}
	for _, w := range wallets {
		if err := walletRepo.DeleteWallet(ctx, w.Address); err != nil &&
			!errors.Is(err, domain.ErrWalletNotFound) {
			return err
		}
	}
	if err := s.repoManager.AccountRepository().UpdateAccounts(
		ctx, nil,
	); err != nil {
		return err
	}
	if err := s.repoManager.ConnectionRepository().UpdateConnection(
		ctx, domain.Connection{},
	); err != nil {
		return err
	}
	if err := s.gate.ClearPassword(ctx); err != nil {
		return err
	}

	log.Infof("removed %d wallets", len(wallets))
	s.publish(ctx)
	return nil
}

// SubscribeWalletsChanged delivers a WalletsChangedEvent to the channel at
// every change. The channel should be buffered.
func (s *Service) SubscribeWalletsChanged(
	ch chan<- WalletsChangedEvent,
) event.Subscription {
	return s.feed.Subscribe(ch)
}

func (s *Service) publish(ctx context.Context) {
	wallets, err := s.GetWallets(ctx)
	if err != nil {
		log.WithError(err).Warn("failed to list wallets for change notification")
		return
	}
	s.feed.Send(WalletsChangedEvent{wallets})
}

func (s *Service) getWallet(
	ctx context.Context, address string,
) (*domain.Wallet, error) {
	w, err := s.repoManager.WalletRepository().GetWallet(ctx, address)
	if err != nil {
		return nil, err
	}
	if !w.HasStoredKeyInfo() {
		return nil, domain.ErrWalletNotFound
	}
	return w, nil
}

func (s *Service) getWallets(ctx context.Context) ([]domain.Wallet, error) {
	all, err := s.repoManager.WalletRepository().GetAllWallets(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(all))
	wallets := make([]domain.Wallet, 0, len(all))
	for _, w := range all {
		if !w.HasStoredKeyInfo() {
			continue
		}
		key := strings.ToLower(w.Address)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		wallets = append(wallets, w)
	}
	sort.SliceStable(wallets, func(i, j int) bool {
		return wallets[i].CreatedAt.Before(wallets[j].CreatedAt)
	})
	return wallets, nil
}

func (s *Service) getWalletPrimary(ctx context.Context) (*domain.Wallet, error) {
	wallets, err := s.getWallets(ctx)
	if err != nil {
		return nil, err
	}
	for i := range wallets {
		if wallets[i].IsMnemonic() {
			return &wallets[i], nil
		}
	}
	return nil, nil
}

type noopMetrics struct{}

func (noopMetrics) ObserveDerivation(string, int) {}
func (noopMetrics) ObserveReconcile(float64, int, error) {}
