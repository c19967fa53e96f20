package ports

import "github.com/maskwallet/walletd/internal/core/domain"

// KeyEngine imports, derives and exports secret material. Secrets are only
// ever handed out encrypted with the given password, inside a
// domain.StoredKeyInfo. Derivation paths are optional: an empty path means
// "no path" and is only valid for single private keys.
type KeyEngine interface {
	GenerateMnemonic() (string, error)

	ImportMnemonic(mnemonic, password string) (*domain.StoredKeyInfo, error)
	ImportPrivateKey(
		coin domain.Coin, privateKey, password string,
	) (*domain.StoredKeyInfo, error)
	ImportJSON(
		coin domain.Coin, json, keyStorePassword, password string,
	) (*domain.StoredKeyInfo, error)

	// CreateAccountOfCoinAtPath returns the address of the account at the
	// given path, or of the key itself if path is empty.
	CreateAccountOfCoinAtPath(
		coin domain.Coin, storedKey *domain.StoredKeyInfo,
		derivationPath, password string,
	) (string, error)

	// ExportPrivateKey returns the hex private key of a single-key secret.
	ExportPrivateKey(
		coin domain.Coin, storedKey *domain.StoredKeyInfo, password string,
	) (string, error)
	ExportPrivateKeyOfPath(
		coin domain.Coin, storedKey *domain.StoredKeyInfo,
		derivationPath, password string,
	) (string, error)
	ExportMnemonic(storedKey *domain.StoredKeyInfo, password string) (string, error)
	ExportKeyStoreJSONOfAddress(
		coin domain.Coin, storedKey *domain.StoredKeyInfo,
		password, newPassword string,
	) (string, error)
	ExportKeyStoreJSONOfPath(
		coin domain.Coin, storedKey *domain.StoredKeyInfo,
		derivationPath, password, newPassword string,
	) (string, error)

	// ChangePassword re-encrypts the secret with the new password.
	ChangePassword(
		storedKey *domain.StoredKeyInfo, oldPassword, newPassword string,
	) (*domain.StoredKeyInfo, error)
}
