package domain

// Coin identifies the chain family a key is derived for, by its SLIP-44 index.
type Coin uint32

const (
	CoinEthereum Coin = 60
)

const (
	// HDPathWithoutIndex is the BIP44 account prefix every derived Ethereum
	// wallet shares. The last segment is the address index.
	HDPathWithoutIndex = "m/44'/60'/0'/0"
	// DefaultDerivationPath is the path of the first account of a mnemonic.
	DefaultDerivationPath = HDPathWithoutIndex + "/0"

	// DefaultMaxDeriveCount bounds the number of paths tried by a single
	// derivation before giving up.
	DefaultMaxDeriveCount = 99
	// MaxWalletNameLength is the max number of characters of a wallet name.
	MaxWalletNameLength = 12
	// DefaultSmartPayName is the name given to newly discovered smart accounts.
	DefaultSmartPayName = "Smart Pay"

	ChainIDMainnet uint64 = 1
	ChainIDMatic   uint64 = 137
	ChainIDMumbai  uint64 = 80001

	derivationPathSegments = 6
)
