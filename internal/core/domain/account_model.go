package domain

import "time"

// AccountKind tells where an account listed by the reconciler comes from.
type AccountKind int

const (
	AccountKindImported AccountKind = iota
	AccountKindDerived
	AccountKindSmartContract
)

func (k AccountKind) String() string {
	switch k {
	case AccountKindDerived:
		return "derived"
	case AccountKindSmartContract:
		return "smart-contract"
	default:
		return "imported"
	}
}

// Account is an entry of the account list exposed to consumers. It is either
// a key-held wallet (imported or derived) or a smart-contract account
// controlled by an Owner.
type Account struct {
	Address      string
	Name         string
	Kind         AccountKind
	Owner        string
	Identifier   string
	Deployed     bool
	Configurable bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SmartAccountEntry is what the on-chain owner lookup returns for a smart
// account.
type SmartAccountEntry struct {
	Address  string
	Owner    string
	Deployed bool
}

// Persona is an identity that can own smart accounts.
type Persona struct {
	Identifier string
	Address    string
}

// Connection is the account and chain currently selected.
type Connection struct {
	Account    string
	Owner      string
	Identifier string
	ChainID    uint64
}

func (c Connection) IsZero() bool {
	return c.Account == ""
}
