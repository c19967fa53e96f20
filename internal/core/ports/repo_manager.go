package ports

import "github.com/maskwallet/walletd/internal/core/domain"

// RepoManager gives access to all the repositories of a storage backend.
type RepoManager interface {
	WalletRepository() domain.WalletRepository
	PasswordRepository() domain.PasswordRepository
	AccountRepository() domain.AccountRepository
	ConnectionRepository() domain.ConnectionRepository

	Close()
}
