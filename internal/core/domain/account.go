package domain

import (
	"sort"
	"strings"
	"time"
)

func (a Account) IsSmartContract() bool {
	return a.Kind == AccountKindSmartContract
}

// Equal compares two accounts field by field. Timestamps are compared with
// time.Equal so that records read back from storage match the in-memory ones.
func (a Account) Equal(b Account) bool {
	return a.Address == b.Address &&
		a.Name == b.Name &&
		a.Kind == b.Kind &&
		a.Owner == b.Owner &&
		a.Identifier == b.Identifier &&
		a.Deployed == b.Deployed &&
		a.Configurable == b.Configurable &&
		a.CreatedAt.Equal(b.CreatedAt) &&
		a.UpdatedAt.Equal(b.UpdatedAt)
}

// AccountsEqual compares two ordered lists of accounts.
func AccountsEqual(a, b []Account) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// SortAccounts deduplicates the given accounts by address, keeping the first
// occurrence, and moves accounts without an owner before the others. The
// relative order is otherwise preserved.
func SortAccounts(accounts []Account) []Account {
	seen := make(map[string]struct{}, len(accounts))
	result := make([]Account, 0, len(accounts))
	for _, a := range accounts {
		key := strings.ToLower(a.Address)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, a)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Owner == "" && result[j].Owner != ""
	})
	return result
}

// MergeAccounts computes the account list out of the previously persisted
// one, the key-held accounts currently in the registry and the smart accounts
// found on-chain for the known owners.
//
// The registry is the source of truth for key-held accounts, the persisted
// list for the user-editable fields of smart accounts (name, configurable,
// creation time) and the chain for deployment and ownership. Persisted smart
// accounts that were not returned by the chain are kept as long as their
// owner is still known. Given the same inputs, merging the output again
// returns the very same list.
func MergeAccounts(
	persisted, owned []Account, onChain []SmartAccountEntry,
	personas []Persona, now time.Time,
) []Account {
	persistedByAddr := make(map[string]Account, len(persisted))
	for _, a := range persisted {
		persistedByAddr[strings.ToLower(a.Address)] = a
	}
	knownOwners := make(map[string]struct{}, len(owned)+len(personas))
	for _, a := range owned {
		knownOwners[strings.ToLower(a.Address)] = struct{}{}
	}
	identifiers := make(map[string]string, len(personas))
	for _, p := range personas {
		if p.Address == "" {
			continue
		}
		knownOwners[strings.ToLower(p.Address)] = struct{}{}
		identifiers[strings.ToLower(p.Address)] = p.Identifier
	}

	smart := make([]Account, 0, len(onChain))
	found := make(map[string]struct{}, len(onChain))
	for _, e := range onChain {
		if !e.Deployed {
			continue
		}
		address, err := ChecksumAddress(e.Address)
		if err != nil {
			continue
		}
		owner, err := ChecksumAddress(e.Owner)
		if err != nil {
			continue
		}
		key := strings.ToLower(address)
		if _, ok := found[key]; ok {
			continue
		}
		found[key] = struct{}{}
		identifier := identifiers[strings.ToLower(owner)]

		prev, ok := persistedByAddr[key]
		if !ok {
			smart = append(smart, Account{
				Address:      address,
				Name:         DefaultSmartPayName,
				Kind:         AccountKindSmartContract,
				Owner:        owner,
				Identifier:   identifier,
				Deployed:     true,
				Configurable: true,
				CreatedAt:    now,
				UpdatedAt:    now,
			})
			continue
		}

		next := prev
		next.Address = address
		next.Kind = AccountKindSmartContract
		next.Owner = owner
		next.Deployed = true
		if identifier != "" {
			next.Identifier = identifier
		}
		if next.Name == "" {
			next.Name = DefaultSmartPayName
		}
		if !next.Equal(prev) {
			next.UpdatedAt = now
		}
		smart = append(smart, next)
	}

	retained := make([]Account, 0)
	for _, a := range persisted {
		if !a.IsSmartContract() {
			continue
		}
		if _, ok := found[strings.ToLower(a.Address)]; ok {
			continue
		}
		if _, ok := knownOwners[strings.ToLower(a.Owner)]; !ok {
			continue
		}
		retained = append(retained, a)
	}

	merged := make([]Account, 0, len(smart)+len(retained)+len(owned))
	merged = append(merged, smart...)
	merged = append(merged, retained...)
	merged = append(merged, owned...)
	return SortAccounts(merged)
}
