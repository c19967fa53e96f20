package password

import "github.com/maskwallet/walletd/internal/core/domain"

// SecretContext is the snapshot handed to operations that touch secret
// material. It is obtained right before the operation and never stored.
type SecretContext struct {
	password string
	wallets  domain.WalletRepository
}

func (c *SecretContext) Password() string {
	return c.password
}

func (c *SecretContext) Wallets() domain.WalletRepository {
	return c.wallets
}
