package domain_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/maskwallet/walletd/internal/core/domain"
	"github.com/stretchr/testify/require"
)

var (
	ownerA   = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	ownerB   = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
	persona  = "0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"
	smartOne = "0x90F79bf6EB2c4f870365E785982E1f101E93b906"
	smartTwo = "0x15d34AAf54267DB7D7c367839AAf71A00a2C6A65"
)

func TestMergeAccounts(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	owned := []domain.Account{
		{Address: ownerA, Name: "Main", Kind: domain.AccountKindDerived, CreatedAt: now, UpdatedAt: now},
		{Address: ownerB, Name: "Imported", Kind: domain.AccountKindImported, CreatedAt: now, UpdatedAt: now},
	}
	personas := []domain.Persona{{Identifier: "ec_key:persona", Address: persona}}

	t.Run("new smart accounts", func(t *testing.T) {
		onChain := []domain.SmartAccountEntry{
			{Address: strings.ToLower(smartOne), Owner: strings.ToLower(persona), Deployed: true},
			{Address: smartTwo, Owner: ownerA, Deployed: false},
		}

		merged := domain.MergeAccounts(nil, owned, onChain, personas, now)
		require.Len(t, merged, 3)
		require.Equal(t, ownerA, merged[0].Address)
		require.Equal(t, ownerB, merged[1].Address)

		smart := merged[2]
		require.Equal(t, smartOne, smart.Address)
		require.Equal(t, persona, smart.Owner)
		require.Equal(t, "ec_key:persona", smart.Identifier)
		require.Equal(t, domain.DefaultSmartPayName, smart.Name)
		require.True(t, smart.IsSmartContract())
		require.True(t, smart.Deployed)
	})

	t.Run("persisted names win", func(t *testing.T) {
		persisted := []domain.Account{
			{
				Address: smartOne, Name: "Savings", Kind: domain.AccountKindSmartContract,
				Owner: ownerA, Deployed: true, Configurable: true,
				CreatedAt: now.Add(-time.Hour), UpdatedAt: now.Add(-time.Hour),
			},
			{Address: ownerA, Name: "Old name", Kind: domain.AccountKindDerived},
		}
		onChain := []domain.SmartAccountEntry{
			{Address: smartOne, Owner: ownerA, Deployed: true},
		}

		merged := domain.MergeAccounts(persisted, owned, onChain, personas, now)
		require.Len(t, merged, 3)
		require.Equal(t, "Main", merged[0].Name)
		require.Equal(t, "Savings", merged[2].Name)
		require.True(t, merged[2].CreatedAt.Equal(now.Add(-time.Hour)))
		require.True(t, merged[2].UpdatedAt.Equal(now.Add(-time.Hour)))
	})

	t.Run("retain persisted smart accounts of known owners", func(t *testing.T) {
		persisted := []domain.Account{
			{Address: smartOne, Kind: domain.AccountKindSmartContract, Owner: ownerB, Deployed: true},
			{Address: smartTwo, Kind: domain.AccountKindSmartContract, Owner: "0x9965507D1a55bcC2695C58ba16FB37d819B0A4dc", Deployed: true},
		}

		merged := domain.MergeAccounts(persisted, owned, nil, personas, now)
		require.Len(t, merged, 3)
		require.Equal(t, smartOne, merged[2].Address)
	})

	t.Run("idempotent", func(t *testing.T) {
		onChain := []domain.SmartAccountEntry{
			{Address: smartOne, Owner: persona, Deployed: true},
			{Address: smartTwo, Owner: ownerA, Deployed: true},
			{Address: smartTwo, Owner: ownerA, Deployed: true},
		}

		first := domain.MergeAccounts(nil, owned, onChain, personas, now)
		second := domain.MergeAccounts(
			first, owned, onChain, personas, now.Add(time.Minute),
		)
		require.True(t, domain.AccountsEqual(first, second))

		firstJSON, err := json.Marshal(first)
		require.NoError(t, err)
		secondJSON, err := json.Marshal(second)
		require.NoError(t, err)
		require.Equal(t, firstJSON, secondJSON)
	})
}

func TestSortAccounts(t *testing.T) {
	accounts := []domain.Account{
		{Address: smartOne, Owner: ownerA},
		{Address: ownerA},
		{Address: strings.ToLower(ownerA), Name: "dup"},
		{Address: smartTwo, Owner: ownerB},
		{Address: ownerB},
	}

	sorted := domain.SortAccounts(accounts)
	require.Len(t, sorted, 4)
	require.Equal(t, ownerA, sorted[0].Address)
	require.Empty(t, sorted[0].Name)
	require.Equal(t, ownerB, sorted[1].Address)
	require.Equal(t, smartOne, sorted[2].Address)
	require.Equal(t, smartTwo, sorted[3].Address)
}
