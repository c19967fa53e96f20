package domain_test

import (
	"strings"
	"testing"

	"github.com/maskwallet/walletd/internal/core/domain"
	"github.com/stretchr/testify/require"
)

const testAddress = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"

func TestNewWallet(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		w, err := domain.NewWallet(
			strings.ToLower(testAddress), "  Main  ", domain.DefaultDerivationPath,
			&domain.StoredKeyInfo{Type: domain.StoredKeyTypeMnemonic},
		)
		require.NoError(t, err)
		require.Equal(t, testAddress, w.Address)
		require.Equal(t, "Main", w.Name)
		require.True(t, w.HasStoredKeyInfo())
		require.True(t, w.HasDerivationPath())
		require.True(t, w.IsMnemonic())
		require.Equal(t, domain.DefaultDerivationPath, w.CurrentDerivationPath())
		require.False(t, w.CreatedAt.IsZero())
	})

	t.Run("invalid", func(t *testing.T) {
		tests := []struct {
			name        string
			address     string
			walletName  string
			path        string
			expectedErr error
		}{
			{"bad address", "0x1234", "test", "", domain.ErrInvalidAddress},
			{"empty name", testAddress, "   ", "", domain.ErrInvalidWalletName},
			{
				"long name", testAddress, strings.Repeat("a", 13), "",
				domain.ErrInvalidWalletName,
			},
			{
				"bad path", testAddress, "test", "m/44'/60'",
				domain.ErrInvalidDerivationPath,
			},
		}

		for _, tt := range tests {
			tt := tt
			t.Run(tt.name, func(t *testing.T) {
				w, err := domain.NewWallet(tt.address, tt.walletName, tt.path, nil)
				require.ErrorIs(t, err, tt.expectedErr)
				require.Nil(t, w)
			})
		}
	})
}

func TestWalletRename(t *testing.T) {
	w, err := domain.NewWallet(testAddress, "test", "", nil)
	require.NoError(t, err)

	require.NoError(t, w.Rename(" 123456789012 "))
	require.Equal(t, "123456789012", w.Name)

	require.ErrorIs(t, w.Rename(""), domain.ErrInvalidWalletName)
	require.ErrorIs(t, w.Rename("1234567890123"), domain.ErrInvalidWalletName)
	require.Equal(t, "123456789012", w.Name)
}

func TestCurrentDerivationPath(t *testing.T) {
	w, err := domain.NewWallet(testAddress, "test", domain.DefaultDerivationPath, nil)
	require.NoError(t, err)

	require.NoError(t, w.SetLatestDerivationPath("m/44'/60'/0'/0/3"))
	require.Equal(t, "m/44'/60'/0'/0/3", w.CurrentDerivationPath())
	require.Error(t, w.SetLatestDerivationPath("m/0"))
	require.Equal(t, "m/44'/60'/0'/0/3", w.CurrentDerivationPath())
}

func TestIsSameAddress(t *testing.T) {
	require.True(t, domain.IsSameAddress(testAddress, strings.ToLower(testAddress)))
	require.False(t, domain.IsSameAddress(
		testAddress, "0x70997970C51812dc3A010C7d01b50e0d17dc79C8",
	))
}
