package domain_test

import (
	"testing"

	"github.com/maskwallet/walletd/internal/core/domain"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	domain.PasswordScryptN = 1 << 10
	m.Run()
}

func TestValidatePassword(t *testing.T) {
	valid := []string{"Passw0rd", "password1", "PASSWORD!", "p@ssw0rd-is-long-20"}
	for _, pwd := range valid {
		require.NoError(t, domain.ValidatePassword(pwd), pwd)
	}

	invalid := []string{"", "Pa1!", "password", "PASSWORDONLY", "12345678", "Passw0rd-that-is-too-long"}
	for _, pwd := range invalid {
		require.ErrorIs(t, domain.ValidatePassword(pwd), domain.ErrWeakPassword, pwd)
	}
}

func TestPasswordRecord(t *testing.T) {
	record, err := domain.NewPasswordRecord("Passw0rd!")
	require.NoError(t, err)
	require.NotNil(t, record)
	require.Equal(t, 1<<10, record.N)

	require.True(t, record.Verify("Passw0rd!"))
	require.False(t, record.Verify("passw0rd!"))
	require.False(t, record.Verify(""))

	another, err := domain.NewPasswordRecord("Passw0rd!")
	require.NoError(t, err)
	require.NotEqual(t, record.Salt, another.Salt)

	_, err = domain.NewPasswordRecord("weak")
	require.ErrorIs(t, err, domain.ErrWeakPassword)
	require.ErrorIs(t, err, domain.ErrAuth)
}
