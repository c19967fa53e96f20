package domain

import "time"

// StoredKeyType tells how the secret behind a wallet was imported.
type StoredKeyType int

const (
	StoredKeyTypePrivateKey StoredKeyType = iota
	StoredKeyTypeMnemonic
	StoredKeyTypeKeyStore
)

func (t StoredKeyType) String() string {
	switch t {
	case StoredKeyTypeMnemonic:
		return "mnemonic"
	case StoredKeyTypeKeyStore:
		return "keystore"
	default:
		return "private-key"
	}
}

// StoredKeyInfo is the opaque handle to a password-encrypted secret.
// Fingerprint is the lowercase address of the root account of the secret and
// lets to detect duplicate imports without decrypting anything.
type StoredKeyInfo struct {
	ID          string
	Type        StoredKeyType
	Fingerprint string
	Data        []byte
}

// Wallet is the persisted record of an account the user can sign with.
type Wallet struct {
	Address              string
	Name                 string
	DerivationPath       string
	LatestDerivationPath string
	StoredKeyInfo        *StoredKeyInfo
	Owner                string
	Identifier           string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
