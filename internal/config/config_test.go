package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInitConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		datadir := t.TempDir()
		t.Setenv("WALLET_DATADIR", datadir)

		err := InitConfig()
		require.NoError(t, err)

		require.Equal(t, datadir, GetDatadir())
		require.Equal(t, DBBadger, GetString(DBTypeKey))
		require.Equal(t, 99, GetInt(MaxDeriveCountKey))
		require.Equal(t, time.Second, GetDuration(ReconcileMinIntervalKey))
		require.Equal(t, 5*time.Minute, GetDuration(ReconcileIntervalKey))
		require.Equal(t, []uint64{137, 80001}, GetSupportedChainIDs())
		require.Empty(t, GetChainRPCURLs())
		require.Empty(t, GetPersonaAddresses())

		_, err = os.Stat(filepath.Join(datadir, DbLocation))
		require.NoError(t, err)
	})

	t.Run("from env", func(t *testing.T) {
		t.Setenv("WALLET_DATADIR", t.TempDir())
		t.Setenv("WALLET_DB_TYPE", DBInMemory)
		t.Setenv("WALLET_MAX_DERIVE_COUNT", "10")
		t.Setenv("WALLET_RECONCILE_INTERVAL", "30s")
		t.Setenv("WALLET_SUPPORTED_CHAIN_IDS", "137")
		t.Setenv("WALLET_CHAIN_RPC_URLS", "137=https://polygon-rpc.com, 80001=https://rpc-mumbai.maticvigil.com")
		t.Setenv("WALLET_PERSONA_ADDRESSES", "0x70997970C51812dc3A010C7d01b50e0d17dc79C8")

		err := InitConfig()
		require.NoError(t, err)

		require.Equal(t, DBInMemory, GetString(DBTypeKey))
		require.Equal(t, 10, GetInt(MaxDeriveCountKey))
		require.Equal(t, 30*time.Second, GetDuration(ReconcileIntervalKey))
		require.Equal(t, []uint64{137}, GetSupportedChainIDs())
		require.Equal(t, map[uint64]string{
			137:   "https://polygon-rpc.com",
			80001: "https://rpc-mumbai.maticvigil.com",
		}, GetChainRPCURLs())
		require.Equal(t, []string{"0x70997970C51812dc3A010C7d01b50e0d17dc79C8"}, GetPersonaAddresses())
	})

	t.Run("invalid", func(t *testing.T) {
		tests := []struct {
			name  string
			key   string
			value string
		}{
			{"db type", "WALLET_DB_TYPE", "postgres"},
			{"max derive count", "WALLET_MAX_DERIVE_COUNT", "0"},
			{"reconcile interval", "WALLET_RECONCILE_INTERVAL", "10ms"},
			{"funder url", "WALLET_FUNDER_URL", "funder"},
			{"chain ids", "WALLET_SUPPORTED_CHAIN_IDS", "polygon"},
			{"rpc urls", "WALLET_CHAIN_RPC_URLS", "137"},
			{"persona addresses", "WALLET_PERSONA_ADDRESSES", "0x1234"},
			{"rate limit", "WALLET_HTTP_RATE_LIMIT", "-1"},
		}
		for _, tt := range tests {
			tt := tt
			t.Run(tt.name, func(t *testing.T) {
				t.Setenv("WALLET_DATADIR", t.TempDir())
				t.Setenv(tt.key, tt.value)

				err := InitConfig()
				require.Error(t, err)
			})
		}
	})
}
