package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/common"
)

// NewWallet returns a new Wallet for the given address, with the name
// already validated and the address in checksum format.
func NewWallet(
	address, name, derivationPath string, storedKeyInfo *StoredKeyInfo,
) (*Wallet, error) {
	addr, err := ChecksumAddress(address)
	if err != nil {
		return nil, err
	}
	name, err = ValidateWalletName(name)
	if err != nil {
		return nil, err
	}
	if derivationPath != "" {
		if err := ValidateDerivationPath(derivationPath); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	return &Wallet{
		Address:        addr,
		Name:           name,
		DerivationPath: derivationPath,
		StoredKeyInfo:  storedKeyInfo,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// HasStoredKeyInfo returns whether the wallet holds secret material. Records
// without it are treated as non-existent.
func (w *Wallet) HasStoredKeyInfo() bool {
	return w.StoredKeyInfo != nil
}

// HasDerivationPath returns whether the wallet was derived from a mnemonic.
func (w *Wallet) HasDerivationPath() bool {
	return w.DerivationPath != ""
}

// IsMnemonic returns whether the secret behind the wallet is a mnemonic.
func (w *Wallet) IsMnemonic() bool {
	return w.HasStoredKeyInfo() && w.StoredKeyInfo.Type == StoredKeyTypeMnemonic
}

// CurrentDerivationPath returns the path the next derivation starts from.
func (w *Wallet) CurrentDerivationPath() string {
	if w.LatestDerivationPath != "" {
		return w.LatestDerivationPath
	}
	return w.DerivationPath
}

// Rename sets the new trimmed name if valid.
func (w *Wallet) Rename(name string) error {
	name, err := ValidateWalletName(name)
	if err != nil {
		return err
	}
	w.Name = name
	w.UpdatedAt = time.Now()
	return nil
}

// SetLatestDerivationPath records the last path used by a derivation.
func (w *Wallet) SetLatestDerivationPath(path string) error {
	if err := ValidateDerivationPath(path); err != nil {
		return err
	}
	w.LatestDerivationPath = path
	w.UpdatedAt = time.Now()
	return nil
}

// ValidateWalletName trims the given name and makes sure its length is in
// range [1, MaxWalletNameLength].
func ValidateWalletName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if l := utf8.RuneCountInString(name); l < 1 || l > MaxWalletNameLength {
		return "", ErrInvalidWalletName
	}
	return name, nil
}

// ChecksumAddress returns the EIP-55 form of the given hex address.
func ChecksumAddress(address string) (string, error) {
	if !common.IsHexAddress(address) {
		return "", ErrInvalidAddress
	}
	return common.HexToAddress(address).Hex(), nil
}

// IsSameAddress compares two hex addresses ignoring case.
func IsSameAddress(a, b string) bool {
	return strings.EqualFold(
		strings.TrimPrefix(strings.ToLower(a), "0x"),
		strings.TrimPrefix(strings.ToLower(b), "0x"),
	)
}
