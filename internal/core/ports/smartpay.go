package ports

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/maskwallet/walletd/internal/core/domain"
)

// OwnerService looks up the smart accounts controlled by a set of owners.
type OwnerService interface {
	GetAccountsByOwners(
		ctx context.Context, chainID uint64, owners []string,
	) ([]domain.SmartAccountEntry, error)
}

// BundlerService returns info about the user operation bundler.
type BundlerService interface {
	GetSupportedChainID(ctx context.Context) (uint64, error)
}

// WhiteList is the funding quota of a social handle.
type WhiteList struct {
	TwitterHandle string
	TotalCount    int
	UsedCount     int
}

// FunderOperation is a funding operation executed for an owner.
type FunderOperation struct {
	Nonce           int
	Owner           string
	WalletAddress   string
	TokenTransferTx string
	CreatedAt       time.Time
}

// FundResult ...
type FundResult struct {
	WalletAddress string
	TxHash        string
}

// FunderService is the sponsored funding service for smart accounts.
// Lookups that only feed UI hints degrade to zero values on failure.
type FunderService interface {
	GetWhiteList(ctx context.Context, handle string) (*WhiteList, error)
	GetRemainFrequency(ctx context.Context, handle string) int
	Verify(ctx context.Context, handle string) bool
	GetOperationsByOwner(
		ctx context.Context, chainID uint64, owner string,
	) ([]FunderOperation, error)
	Fund(ctx context.Context, chainID uint64, proof string) (*FundResult, error)
}

// Receipt is the subset of a transaction receipt the wallet cares about.
type Receipt struct {
	TxHash      string
	Status      bool
	BlockNumber uint64
}

// ReceiptFetcher fetches transaction receipts from the chain.
type ReceiptFetcher interface {
	GetTransactionReceipt(
		ctx context.Context, chainID uint64, txHash string,
	) (*Receipt, error)
}

// PersonaSource provides the persona identities that can own smart accounts.
type PersonaSource interface {
	GetPersonas(ctx context.Context) ([]domain.Persona, error)
	SubscribePersonas(ch chan<- []domain.Persona) event.Subscription
}
