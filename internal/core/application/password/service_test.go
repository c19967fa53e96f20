package password_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/maskwallet/walletd/internal/core/application/password"
	"github.com/maskwallet/walletd/internal/core/domain"
	"github.com/maskwallet/walletd/internal/core/ports"
	"github.com/maskwallet/walletd/internal/infrastructure/keyengine"
	"github.com/maskwallet/walletd/internal/infrastructure/storage/db/inmemory"
	"github.com/stretchr/testify/require"
)

const (
	pwd          = "Passw0rd!"
	newPwd       = "N3w-password"
	testAddress  = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	testMnemonic = "test test test test test test test test test test test junk"

	testPrivateKey = "0x59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"
	testKeyAddress = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
)

var ctx = context.Background()

func TestMain(m *testing.M) {
	domain.PasswordScryptN = 1 << 10
	m.Run()
}

func newTestService(t *testing.T) (*password.Service, ports.RepoManager, ports.KeyEngine) {
	repoManager := inmemory.NewRepoManager()
	engine := keyengine.NewEngine(keyengine.Opts{})
	svc, err := password.NewService(repoManager, engine)
	require.NoError(t, err)
	return svc, repoManager, engine
}

func TestSetAndVerifyPassword(t *testing.T) {
	svc, _, _ := newTestService(t)

	ok, err := svc.HasPassword(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = svc.SecretContext(ctx)
	require.ErrorIs(t, err, domain.ErrPasswordNotSet)
	require.ErrorIs(t, svc.VerifyPassword(ctx, pwd), domain.ErrPasswordNotSet)

	require.ErrorIs(t, svc.SetPassword(ctx, "weak"), domain.ErrWeakPassword)
	require.NoError(t, svc.SetPassword(ctx, pwd))
	require.ErrorIs(t, svc.SetPassword(ctx, pwd), domain.ErrPasswordAlreadySet)

	ok, err = svc.HasPassword(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.False(t, svc.IsLocked())

	require.NoError(t, svc.VerifyPassword(ctx, pwd))
	require.ErrorIs(t, svc.VerifyPassword(ctx, "Wr0ng-password"), domain.ErrInvalidPassword)
	require.ErrorIs(t, svc.VerifyPasswordRequired(ctx, ""), domain.ErrAuth)

	sctx, err := svc.SecretContext(ctx)
	require.NoError(t, err)
	require.Equal(t, pwd, sctx.Password())
	require.NotNil(t, sctx.Wallets())
}

func TestLockUnlock(t *testing.T) {
	svc, _, _ := newTestService(t)
	require.NoError(t, svc.SetPassword(ctx, pwd))

	svc.Lock()
	require.True(t, svc.IsLocked())
	_, err := svc.SecretContext(ctx)
	require.ErrorIs(t, err, domain.ErrLocked)

	require.ErrorIs(t, svc.Unlock(ctx, "Wr0ng-password"), domain.ErrInvalidPassword)
	require.True(t, svc.IsLocked())

	require.NoError(t, svc.Unlock(ctx, pwd))
	require.False(t, svc.IsLocked())
	_, err = svc.SecretContext(ctx)
	require.NoError(t, err)
}

func TestChangePassword(t *testing.T) {
	svc, repoManager, engine := newTestService(t)
	require.NoError(t, svc.SetPassword(ctx, pwd))

	storedKey, err := engine.ImportMnemonic(testMnemonic, pwd)
	require.NoError(t, err)
	wallet, err := domain.NewWallet(
		testAddress, "Main", domain.DefaultDerivationPath, storedKey,
	)
	require.NoError(t, err)
	require.NoError(t, repoManager.WalletRepository().AddWallet(ctx, *wallet))

	err = svc.ChangePassword(ctx, "Wr0ng-password", newPwd)
	require.ErrorIs(t, err, domain.ErrInvalidPassword)
	err = svc.ChangePassword(ctx, pwd, "weak")
	require.ErrorIs(t, err, domain.ErrWeakPassword)

	require.NoError(t, svc.ChangePassword(ctx, pwd, newPwd))
	require.ErrorIs(t, svc.VerifyPassword(ctx, pwd), domain.ErrInvalidPassword)
	require.NoError(t, svc.VerifyPassword(ctx, newPwd))

	sctx, err := svc.SecretContext(ctx)
	require.NoError(t, err)
	require.Equal(t, newPwd, sctx.Password())

	w, err := repoManager.WalletRepository().GetWallet(ctx, testAddress)
	require.NoError(t, err)
	words, err := engine.ExportMnemonic(w.StoredKeyInfo, newPwd)
	require.NoError(t, err)
	require.Equal(t, testMnemonic, words)
}

func TestClearPassword(t *testing.T) {
	svc, _, _ := newTestService(t)
	require.NoError(t, svc.SetPassword(ctx, pwd))

	require.NoError(t, svc.ClearPassword(ctx))
	require.True(t, svc.IsLocked())
	ok, err := svc.HasPassword(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, svc.SetPassword(ctx, newPwd))
}

func TestChangePasswordRollback(t *testing.T) {
	tests := []struct {
		name          string
		failUpdateAt  int
		failSetRecord bool
	}{
		{"second key write fails", 2, false},
		{"password record write fails", 0, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			repoManager := &failingRepoManager{
				RepoManager:   inmemory.NewRepoManager(),
				failUpdateAt:  tt.failUpdateAt,
				failSetRecord: false,
			}
			engine := keyengine.NewEngine(keyengine.Opts{})
			svc, err := password.NewService(repoManager, engine)
			require.NoError(t, err)
			require.NoError(t, svc.SetPassword(ctx, pwd))

			mnemonicKey, err := engine.ImportMnemonic(testMnemonic, pwd)
			require.NoError(t, err)
			privateKey, err := engine.ImportPrivateKey(
				domain.CoinEthereum, testPrivateKey, pwd,
			)
			require.NoError(t, err)
			for _, w := range []struct {
				address, path string
				key           *domain.StoredKeyInfo
			}{
				{testAddress, domain.DefaultDerivationPath, mnemonicKey},
				{testKeyAddress, "", privateKey},
			} {
				wallet, err := domain.NewWallet(w.address, "Main", w.path, w.key)
				require.NoError(t, err)
				require.NoError(t, repoManager.WalletRepository().AddWallet(ctx, *wallet))
			}

			repoManager.failSetRecord = tt.failSetRecord
			require.Error(t, svc.ChangePassword(ctx, pwd, newPwd))

			require.NoError(t, svc.VerifyPassword(ctx, pwd))
			sctx, err := svc.SecretContext(ctx)
			require.NoError(t, err)
			require.Equal(t, pwd, sctx.Password())

			w, err := repoManager.WalletRepository().GetWallet(ctx, testAddress)
			require.NoError(t, err)
			words, err := engine.ExportMnemonic(w.StoredKeyInfo, pwd)
			require.NoError(t, err)
			require.Equal(t, testMnemonic, words)

			w, err = repoManager.WalletRepository().GetWallet(ctx, testKeyAddress)
			require.NoError(t, err)
			_, err = engine.ExportPrivateKey(domain.CoinEthereum, w.StoredKeyInfo, pwd)
			require.NoError(t, err)
		})
	}
}

// failingRepoManager makes the nth wallet update, or the password record
// write, fail.
type failingRepoManager struct {
	ports.RepoManager
	failUpdateAt  int
	failSetRecord bool
	updates       int
}

func (m *failingRepoManager) WalletRepository() domain.WalletRepository {
	return &failingWalletRepository{m.RepoManager.WalletRepository(), m}
}

func (m *failingRepoManager) PasswordRepository() domain.PasswordRepository {
	return &failingPasswordRepository{m.RepoManager.PasswordRepository(), m}
}

type failingWalletRepository struct {
	domain.WalletRepository
	m *failingRepoManager
}

func (r *failingWalletRepository) UpdateWallet(
	ctx context.Context,
	address string, updateFn func(w *domain.Wallet) (*domain.Wallet, error),
) error {
	r.m.updates++
	if r.m.updates == r.m.failUpdateAt {
		return fmt.Errorf("disk full")
	}
	return r.WalletRepository.UpdateWallet(ctx, address, updateFn)
}

type failingPasswordRepository struct {
	domain.PasswordRepository
	m *failingRepoManager
}

func (r *failingPasswordRepository) SetPassword(
	ctx context.Context, record domain.PasswordRecord,
) error {
	if r.m.failSetRecord {
		return fmt.Errorf("disk full")
	}
	return r.PasswordRepository.SetPassword(ctx, record)
}
