package wallet

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/maskwallet/walletd/internal/core/application/password"
	"github.com/maskwallet/walletd/internal/core/domain"
	"github.com/maskwallet/walletd/internal/core/ports"
)

// ExportMnemonic returns the mnemonic of a wallet imported from one. A
// non-empty unverifiedPassword is checked against the stored password first.
func (s *Service) ExportMnemonic(
	ctx context.Context, address, unverifiedPassword string,
) (string, error) {
	sctx, w, err := s.exportContext(ctx, address, unverifiedPassword)
	if err != nil {
		return "", err
	}
	if !w.IsMnemonic() {
		return "", fmt.Errorf("%w: %s", domain.ErrNotMnemonic, w.Address)
	}
	return s.engine.ExportMnemonic(w.StoredKeyInfo, sctx.Password())
}

// ExportPrivateKey returns the hex private key of the wallet, at its
// derivation path if it has one.
func (s *Service) ExportPrivateKey(
	ctx context.Context, address, unverifiedPassword string,
) (string, error) {
	sctx, w, err := s.exportContext(ctx, address, unverifiedPassword)
	if err != nil {
		return "", err
	}
	return s.exportPrivateKey(sctx, w)
}

// ExportKeyStoreJSON returns the wallet key as a keystore v3 file encrypted
// with newPassword. If empty, the re-entered password is used, and the
// current password after that.
func (s *Service) ExportKeyStoreJSON(
	ctx context.Context, address, unverifiedPassword, newPassword string,
) (string, error) {
	sctx, w, err := s.exportContext(ctx, address, unverifiedPassword)
	if err != nil {
		return "", err
	}
	if newPassword == "" {
		newPassword = unverifiedPassword
	}

	if w.HasDerivationPath() {
		return s.engine.ExportKeyStoreJSONOfPath(
			domain.CoinEthereum, w.StoredKeyInfo, w.DerivationPath,
			sctx.Password(), newPassword,
		)
	}
	return s.engine.ExportKeyStoreJSONOfAddress(
		domain.CoinEthereum, w.StoredKeyInfo, sctx.Password(), newPassword,
	)
}

// SignWithWallet signs the message with the key of the wallet.
func (s *Service) SignWithWallet(
	ctx context.Context, signType ports.SignType, message []byte, address string,
) (string, error) {
	sctx, w, err := s.exportContext(ctx, address, "")
	if err != nil {
		return "", err
	}
	privateKey, err := s.exportPrivateKey(sctx, w)
	if err != nil {
		return "", err
	}
	key, err := hex.DecodeString(privateKey)
	if err != nil {
		return "", err
	}
	defer zero(key)

	return s.signer.Sign(signType, key, message)
}

func (s *Service) exportPrivateKey(
	sctx *password.SecretContext, w *domain.Wallet,
) (string, error) {
	if w.HasDerivationPath() {
		return s.engine.ExportPrivateKeyOfPath(
			domain.CoinEthereum, w.StoredKeyInfo, w.DerivationPath,
			sctx.Password(),
		)
	}
	return s.engine.ExportPrivateKey(
		domain.CoinEthereum, w.StoredKeyInfo, sctx.Password(),
	)
}

func (s *Service) exportContext(
	ctx context.Context, address, unverifiedPassword string,
) (*password.SecretContext, *domain.Wallet, error) {
	if unverifiedPassword != "" {
		if err := s.gate.VerifyPassword(ctx, unverifiedPassword); err != nil {
			return nil, nil, err
		}
	}
	sctx, err := s.gate.SecretContext(ctx)
	if err != nil {
		return nil, nil, err
	}
	w, err := s.getWallet(ctx, address)
	if err != nil {
		return nil, nil, err
	}
	return sctx, w, nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
