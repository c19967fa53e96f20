package inmemory

import (
	"github.com/maskwallet/walletd/internal/core/domain"
	"github.com/maskwallet/walletd/internal/core/ports"
)

type repoManager struct {
	walletRepository     domain.WalletRepository
	passwordRepository   domain.PasswordRepository
	accountRepository    domain.AccountRepository
	connectionRepository domain.ConnectionRepository
}

func NewRepoManager() ports.RepoManager {
	return &repoManager{
		walletRepository:     NewWalletRepository(),
		passwordRepository:   NewPasswordRepository(),
		accountRepository:    NewAccountRepository(),
		connectionRepository: NewConnectionRepository(),
	}
}

func (m *repoManager) WalletRepository() domain.WalletRepository {
	return m.walletRepository
}

func (m *repoManager) PasswordRepository() domain.PasswordRepository {
	return m.passwordRepository
}

func (m *repoManager) AccountRepository() domain.AccountRepository {
	return m.accountRepository
}

func (m *repoManager) ConnectionRepository() domain.ConnectionRepository {
	return m.connectionRepository
}

func (m *repoManager) Close() {}
