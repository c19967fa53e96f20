package keyengine

import (
	"crypto/ecdsa"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/maskwallet/walletd/internal/core/domain"
	"github.com/maskwallet/walletd/internal/core/ports"
	"github.com/tyler-smith/go-bip39"
)

// Opts defines the scrypt costs of the engine. Storage costs apply to the
// blobs kept in the secret store, export costs to the keystore files handed
// to the user. Zero values fall back to the light and standard go-ethereum
// costs respectively.
type Opts struct {
	StorageScryptN int
	StorageScryptP int
	ExportScryptN  int
	ExportScryptP  int
}

type engine struct {
	opts Opts
}

// secret is the plaintext sealed inside a StoredKeyInfo.
type secret struct {
	Mnemonic   string `json:"mnemonic,omitempty"`
	PrivateKey string `json:"privateKey,omitempty"`
}

func NewEngine(opts Opts) ports.KeyEngine {
	if opts.StorageScryptN <= 0 || opts.StorageScryptP <= 0 {
		opts.StorageScryptN = keystore.LightScryptN
		opts.StorageScryptP = keystore.LightScryptP
	}
	if opts.ExportScryptN <= 0 || opts.ExportScryptP <= 0 {
		opts.ExportScryptN = keystore.StandardScryptN
		opts.ExportScryptP = keystore.StandardScryptP
	}
	return &engine{opts}
}

func (e *engine) GenerateMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(128)
	if err != nil {
		return "", err
	}
	return bip39.NewMnemonic(entropy)
}

func (e *engine) ImportMnemonic(
	mnemonic, password string,
) (*domain.StoredKeyInfo, error) {
	mnemonic = normalizeMnemonic(mnemonic)
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, domain.ErrInvalidMnemonic
	}
	root, err := deriveKey(mnemonic, domain.DefaultDerivationPath)
	if err != nil {
		return nil, err
	}

	return e.seal(
		domain.StoredKeyTypeMnemonic, fingerprint(root),
		secret{Mnemonic: mnemonic}, password,
	)
}

func (e *engine) ImportPrivateKey(
	coin domain.Coin, privateKey, password string,
) (*domain.StoredKeyInfo, error) {
	if err := checkCoin(coin); err != nil {
		return nil, err
	}
	key, err := parsePrivateKey(privateKey)
	if err != nil {
		return nil, err
	}

	return e.seal(
		domain.StoredKeyTypePrivateKey, fingerprint(key),
		secret{PrivateKey: hex.EncodeToString(crypto.FromECDSA(key))}, password,
	)
}

func (e *engine) ImportJSON(
	coin domain.Coin, keyStoreJSON, keyStorePassword, password string,
) (*domain.StoredKeyInfo, error) {
	if err := checkCoin(coin); err != nil {
		return nil, err
	}
	key, err := keystore.DecryptKey([]byte(keyStoreJSON), keyStorePassword)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidKeyStoreJSON, err)
	}

	return e.seal(
		domain.StoredKeyTypeKeyStore, fingerprint(key.PrivateKey),
		secret{PrivateKey: hex.EncodeToString(crypto.FromECDSA(key.PrivateKey))},
		password,
	)
}

func (e *engine) CreateAccountOfCoinAtPath(
	coin domain.Coin, storedKey *domain.StoredKeyInfo,
	derivationPath, password string,
) (string, error) {
	if err := checkCoin(coin); err != nil {
		return "", err
	}
	key, err := e.privateKey(storedKey, derivationPath, password)
	if err != nil {
		return "", err
	}
	return crypto.PubkeyToAddress(key.PublicKey).Hex(), nil
}

func (e *engine) ExportPrivateKey(
	coin domain.Coin, storedKey *domain.StoredKeyInfo, password string,
) (string, error) {
	if err := checkCoin(coin); err != nil {
		return "", err
	}
	if err := checkSingleKey(storedKey); err != nil {
		return "", err
	}
	key, err := e.privateKey(storedKey, "", password)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(crypto.FromECDSA(key)), nil
}

func (e *engine) ExportPrivateKeyOfPath(
	coin domain.Coin, storedKey *domain.StoredKeyInfo,
	derivationPath, password string,
) (string, error) {
	if derivationPath == "" {
		return e.ExportPrivateKey(coin, storedKey, password)
	}
	if err := checkCoin(coin); err != nil {
		return "", err
	}
	key, err := e.privateKey(storedKey, derivationPath, password)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(crypto.FromECDSA(key)), nil
}

func (e *engine) ExportMnemonic(
	storedKey *domain.StoredKeyInfo, password string,
) (string, error) {
	if storedKey == nil || storedKey.Type != domain.StoredKeyTypeMnemonic {
		return "", domain.ErrNotMnemonic
	}
	s, err := e.open(storedKey, password)
	if err != nil {
		return "", err
	}
	return s.Mnemonic, nil
}

func (e *engine) ExportKeyStoreJSONOfAddress(
	coin domain.Coin, storedKey *domain.StoredKeyInfo,
	password, newPassword string,
) (string, error) {
	if err := checkCoin(coin); err != nil {
		return "", err
	}
	if err := checkSingleKey(storedKey); err != nil {
		return "", err
	}
	key, err := e.privateKey(storedKey, "", password)
	if err != nil {
		return "", err
	}
	return e.encryptKeyStore(key, password, newPassword)
}

func (e *engine) ExportKeyStoreJSONOfPath(
	coin domain.Coin, storedKey *domain.StoredKeyInfo,
	derivationPath, password, newPassword string,
) (string, error) {
	if derivationPath == "" {
		return e.ExportKeyStoreJSONOfAddress(
			coin, storedKey, password, newPassword,
		)
	}
	if err := checkCoin(coin); err != nil {
		return "", err
	}
	key, err := e.privateKey(storedKey, derivationPath, password)
	if err != nil {
		return "", err
	}
	return e.encryptKeyStore(key, password, newPassword)
}

func (e *engine) ChangePassword(
	storedKey *domain.StoredKeyInfo, oldPassword, newPassword string,
) (*domain.StoredKeyInfo, error) {
	s, err := e.open(storedKey, oldPassword)
	if err != nil {
		return nil, err
	}
	sealed, err := e.seal(storedKey.Type, storedKey.Fingerprint, *s, newPassword)
	if err != nil {
		return nil, err
	}
	sealed.ID = storedKey.ID
	return sealed, nil
}

func (e *engine) privateKey(
	storedKey *domain.StoredKeyInfo, derivationPath, password string,
) (*ecdsa.PrivateKey, error) {
	s, err := e.open(storedKey, password)
	if err != nil {
		return nil, err
	}

	if s.Mnemonic != "" {
		if derivationPath == "" {
			derivationPath = domain.DefaultDerivationPath
		}
		return deriveKey(s.Mnemonic, derivationPath)
	}
	if derivationPath != "" {
		return nil, &domain.DerivationError{
			Path: derivationPath, Err: domain.ErrPathOnPrivateKey,
		}
	}
	return parsePrivateKey(s.PrivateKey)
}

func (e *engine) seal(
	keyType domain.StoredKeyType, fingerprint string, s secret, password string,
) (*domain.StoredKeyInfo, error) {
	if password == "" {
		return nil, domain.ErrPasswordNotSet
	}
	plaintext, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	cryptoJSON, err := keystore.EncryptDataV3(
		plaintext, []byte(password),
		e.opts.StorageScryptN, e.opts.StorageScryptP,
	)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(cryptoJSON)
	if err != nil {
		return nil, err
	}

	return &domain.StoredKeyInfo{
		ID:          uuid.New().String(),
		Type:        keyType,
		Fingerprint: fingerprint,
		Data:        data,
	}, nil
}

func (e *engine) open(
	storedKey *domain.StoredKeyInfo, password string,
) (*secret, error) {
	if storedKey == nil || len(storedKey.Data) == 0 {
		return nil, fmt.Errorf("%w: missing stored key", domain.ErrExport)
	}

	var cryptoJSON keystore.CryptoJSON
	if err := json.Unmarshal(storedKey.Data, &cryptoJSON); err != nil {
		return nil, fmt.Errorf("%w: malformed stored key: %s", domain.ErrExport, err)
	}
	plaintext, err := keystore.DecryptDataV3(cryptoJSON, password)
	if err != nil {
		if errors.Is(err, keystore.ErrDecrypt) {
			return nil, domain.ErrInvalidPassword
		}
		return nil, err
	}

	var s secret
	if err := json.Unmarshal(plaintext, &s); err != nil {
		return nil, fmt.Errorf("%w: malformed stored key: %s", domain.ErrExport, err)
	}
	return &s, nil
}

func (e *engine) encryptKeyStore(
	key *ecdsa.PrivateKey, password, newPassword string,
) (string, error) {
	if newPassword == "" {
		newPassword = password
	}
	keyStoreJSON, err := keystore.EncryptKey(&keystore.Key{
		Id:         uuid.New(),
		Address:    crypto.PubkeyToAddress(key.PublicKey),
		PrivateKey: key,
	}, newPassword, e.opts.ExportScryptN, e.opts.ExportScryptP)
	if err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrExport, err)
	}
	return string(keyStoreJSON), nil
}

func checkCoin(coin domain.Coin) error {
	if coin != domain.CoinEthereum {
		return domain.ErrUnsupportedCoin
	}
	return nil
}

func checkSingleKey(storedKey *domain.StoredKeyInfo) error {
	if storedKey != nil && storedKey.Type == domain.StoredKeyTypeMnemonic {
		return domain.ErrMissingPathOnMnemonic
	}
	return nil
}

func parsePrivateKey(privateKey string) (*ecdsa.PrivateKey, error) {
	privateKey = strings.TrimSpace(privateKey)
	privateKey = strings.TrimSpace(strings.TrimPrefix(privateKey, "0x"))
	key, err := crypto.HexToECDSA(privateKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidPrivateKey, err)
	}
	return key, nil
}

func fingerprint(key *ecdsa.PrivateKey) string {
	return strings.ToLower(crypto.PubkeyToAddress(key.PublicKey).Hex())
}

func normalizeMnemonic(mnemonic string) string {
	return strings.Join(strings.Fields(mnemonic), " ")
}
