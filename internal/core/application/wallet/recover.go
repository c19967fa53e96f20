package wallet

import (
	"context"
	"strings"

	"github.com/maskwallet/walletd/internal/core/application/password"
	"github.com/maskwallet/walletd/internal/core/domain"
	log "github.com/sirupsen/logrus"
)

// CreateMnemonicWords returns a fresh 12-word mnemonic.
func (s *Service) CreateMnemonicWords() ([]string, error) {
	mnemonic, err := s.engine.GenerateMnemonic()
	if err != nil {
		return nil, err
	}
	return strings.Fields(mnemonic), nil
}

// RecoverWalletFromMnemonic imports the account at the given path of the
// mnemonic. If the mnemonic is stored already, the account is imported as an
// independent private key wallet instead. The optional initialPassword sets
// the password on first run.
func (s *Service) RecoverWalletFromMnemonic(
	ctx context.Context, name, mnemonic, derivationPath, initialPassword string,
) (*WalletInfo, error) {
	name, err := domain.ValidateWalletName(name)
	if err != nil {
		return nil, err
	}
	if derivationPath == "" {
		derivationPath = domain.DefaultDerivationPath
	}
	if err := domain.ValidateDerivationPath(derivationPath); err != nil {
		return nil, err
	}
	sctx, err := s.secretContext(ctx, initialPassword)
	if err != nil {
		return nil, err
	}

	storedKey, err := s.engine.ImportMnemonic(mnemonic, sctx.Password())
	if err != nil {
		return nil, err
	}

	exists, err := sctx.Wallets().HasStoredKeyInfo(ctx, storedKey.Fingerprint)
	if err != nil {
		return nil, err
	}
	if exists {
		privateKey, err := s.engine.ExportPrivateKeyOfPath(
			domain.CoinEthereum, storedKey, derivationPath, sctx.Password(),
		)
		if err != nil {
			return nil, err
		}
		return s.recoverWalletFromPrivateKey(ctx, sctx, name, privateKey)
	}

	address, err := s.engine.CreateAccountOfCoinAtPath(
		domain.CoinEthereum, storedKey, derivationPath, sctx.Password(),
	)
	if err != nil {
		return nil, err
	}
	return s.addWallet(ctx, sctx, address, name, derivationPath, storedKey)
}

// RecoverWalletFromPrivateKey imports a hex private key, with or without the
// 0x prefix.
func (s *Service) RecoverWalletFromPrivateKey(
	ctx context.Context, name, privateKey, initialPassword string,
) (*WalletInfo, error) {
	name, err := domain.ValidateWalletName(name)
	if err != nil {
		return nil, err
	}
	sctx, err := s.secretContext(ctx, initialPassword)
	if err != nil {
		return nil, err
	}
	return s.recoverWalletFromPrivateKey(ctx, sctx, name, privateKey)
}

// RecoverWalletFromKeyStoreJSON imports a keystore v3 file.
func (s *Service) RecoverWalletFromKeyStoreJSON(
	ctx context.Context, name, keyStoreJSON, keyStorePassword string,
) (*WalletInfo, error) {
	name, err := domain.ValidateWalletName(name)
	if err != nil {
		return nil, err
	}
	sctx, err := s.gate.SecretContext(ctx)
	if err != nil {
		return nil, err
	}

	storedKey, err := s.engine.ImportJSON(
		domain.CoinEthereum, keyStoreJSON, keyStorePassword, sctx.Password(),
	)
	if err != nil {
		return nil, err
	}
	address, err := s.engine.CreateAccountOfCoinAtPath(
		domain.CoinEthereum, storedKey, "", sctx.Password(),
	)
	if err != nil {
		return nil, err
	}
	return s.addWallet(ctx, sctx, address, name, "", storedKey)
}

func (s *Service) recoverWalletFromPrivateKey(
	ctx context.Context, sctx *password.SecretContext, name, privateKey string,
) (*WalletInfo, error) {
	storedKey, err := s.engine.ImportPrivateKey(
		domain.CoinEthereum, privateKey, sctx.Password(),
	)
	if err != nil {
		return nil, err
	}
	address, err := s.engine.CreateAccountOfCoinAtPath(
		domain.CoinEthereum, storedKey, "", sctx.Password(),
	)
	if err != nil {
		return nil, err
	}
	return s.addWallet(ctx, sctx, address, name, "", storedKey)
}

func (s *Service) addWallet(
	ctx context.Context, sctx *password.SecretContext,
	address, name, derivationPath string, storedKey *domain.StoredKeyInfo,
) (*WalletInfo, error) {
	w, err := domain.NewWallet(address, name, derivationPath, storedKey)
	if err != nil {
		return nil, err
	}
	if err := sctx.Wallets().AddWallet(ctx, *w); err != nil {
		return nil, err
	}

	log.Debugf("added %s wallet %s", storedKey.Type, w.Address)
	s.publish(ctx)

	info := sanitize(*w)
	return &info, nil
}

// secretContext returns the secret context, first setting the given
// password if none exists yet. If a password exists, a non-empty
// initialPassword must match it.
func (s *Service) secretContext(
	ctx context.Context, initialPassword string,
) (*password.SecretContext, error) {
	if initialPassword != "" {
		hasPassword, err := s.gate.HasPassword(ctx)
		if err != nil {
			return nil, err
		}
		if !hasPassword {
			if err := s.gate.SetPassword(ctx, initialPassword); err != nil {
				return nil, err
			}
		} else if err := s.gate.Unlock(ctx, initialPassword); err != nil {
			return nil, err
		}
	}
	return s.gate.SecretContext(ctx)
}
