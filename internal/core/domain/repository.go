package domain

import "context"

// WalletRepository is the abstraction for any kind of database intended to
// persist Wallets. Addresses are matched case-insensitively.
type WalletRepository interface {
	// AddWallet adds a new wallet, failing with ErrWalletAlreadyExists if one
	// with the same address is stored already.
	AddWallet(ctx context.Context, wallet Wallet) error
	// GetWallet returns the wallet with the given address or ErrWalletNotFound.
	GetWallet(ctx context.Context, address string) (*Wallet, error)
	// GetAllWallets returns all stored wallets.
	GetAllWallets(ctx context.Context) ([]Wallet, error)
	// HasWallet returns whether a wallet with the given address exists.
	HasWallet(ctx context.Context, address string) (bool, error)
	// HasStoredKeyInfo returns whether any wallet is backed by a secret with
	// the given fingerprint.
	HasStoredKeyInfo(ctx context.Context, fingerprint string) (bool, error)
	// UpdateWallet updates the state of a wallet. The closure function let's
	// to commit multiple changes to a wallet in a transactional way.
	UpdateWallet(
		ctx context.Context,
		address string, updateFn func(w *Wallet) (*Wallet, error),
	) error
	// DeleteWallet removes the wallet with the given address.
	DeleteWallet(ctx context.Context, address string) error
}

// PasswordRepository persists the single password record.
type PasswordRepository interface {
	// GetPassword returns the record or ErrPasswordNotSet.
	GetPassword(ctx context.Context) (*PasswordRecord, error)
	SetPassword(ctx context.Context, record PasswordRecord) error
	DeletePassword(ctx context.Context) error
}

// AccountRepository persists the account list computed by the reconciler.
type AccountRepository interface {
	GetAccounts(ctx context.Context) ([]Account, error)
	UpdateAccounts(ctx context.Context, accounts []Account) error
}

// ConnectionRepository persists the currently selected account and chain.
type ConnectionRepository interface {
	// GetConnection returns the zero Connection if none was ever set.
	GetConnection(ctx context.Context) (*Connection, error)
	UpdateConnection(ctx context.Context, connection Connection) error
}
