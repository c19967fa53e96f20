package keyengine

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/maskwallet/walletd/internal/core/domain"
	"github.com/tyler-smith/go-bip39"
)

// deriveKey returns the private key at the given absolute BIP32 path of the
// seed of the mnemonic. The seed is generated without passphrase.
func deriveKey(mnemonic, derivationPath string) (*ecdsa.PrivateKey, error) {
	if !strings.HasPrefix(derivationPath, "m/") {
		return nil, &domain.DerivationError{
			Path: derivationPath, Err: domain.ErrInvalidDerivationPath,
		}
	}
	path, err := accounts.ParseDerivationPath(derivationPath)
	if err != nil {
		return nil, &domain.DerivationError{
			Path: derivationPath,
			Err:  fmt.Errorf("%w: %s", domain.ErrInvalidDerivationPath, err),
		}
	}

	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, "")
	if err != nil {
		return nil, domain.ErrInvalidMnemonic
	}
	key, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, &domain.DerivationError{Path: derivationPath, Err: err}
	}
	for _, i := range path {
		key, err = key.Derive(i)
		if err != nil {
			return nil, &domain.DerivationError{Path: derivationPath, Err: err}
		}
	}

	privateKey, err := key.ECPrivKey()
	if err != nil {
		return nil, &domain.DerivationError{Path: derivationPath, Err: err}
	}
	return crypto.ToECDSA(privateKey.Serialize())
}
