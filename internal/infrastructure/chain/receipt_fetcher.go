package chain

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/maskwallet/walletd/internal/core/domain"
	"github.com/maskwallet/walletd/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

var (
	// ErrMissingRPCURL ...
	ErrMissingRPCURL = errors.New("missing rpc url for chain")
	// ErrInvalidTxHash ...
	ErrInvalidTxHash = errors.New("invalid transaction hash")
)

type receiptClient interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	Close()
}

type dialFn func(ctx context.Context, url string) (receiptClient, error)

// ReceiptFetcher fetches receipts from the JSON-RPC node configured for each
// chain. Connections are opened on first use and reused.
type ReceiptFetcher struct {
	urls   map[uint64]string
	chains domain.ChainAllowList
	dial   dialFn

	lock    *sync.Mutex
	clients map[uint64]receiptClient
}

func NewReceiptFetcher(
	urls map[uint64]string, chains domain.ChainAllowList,
) *ReceiptFetcher {
	if len(chains) == 0 {
		chains = domain.NewChainAllowList()
	}
	return &ReceiptFetcher{
		urls:    urls,
		chains:  chains,
		dial:    dialEthClient,
		lock:    &sync.Mutex{},
		clients: make(map[uint64]receiptClient),
	}
}

// GetTransactionReceipt returns the receipt of the given tx, or nil if the
// tx is not mined yet.
func (f *ReceiptFetcher) GetTransactionReceipt(
	ctx context.Context, chainID uint64, txHash string,
) (*ports.Receipt, error) {
	if err := f.chains.Check(chainID); err != nil {
		return nil, err
	}
	buf, err := hexutil.Decode(txHash)
	if err != nil || len(buf) != common.HashLength {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTxHash, txHash)
	}

	client, err := f.client(ctx, chainID)
	if err != nil {
		return nil, err
	}
	receipt, err := client.TransactionReceipt(ctx, common.BytesToHash(buf))
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, nil
		}
		return nil, err
	}

	var blockNumber uint64
	if receipt.BlockNumber != nil {
		blockNumber = receipt.BlockNumber.Uint64()
	}
	return &ports.Receipt{
		TxHash:      receipt.TxHash.Hex(),
		Status:      receipt.Status == types.ReceiptStatusSuccessful,
		BlockNumber: blockNumber,
	}, nil
}

// Close closes all the open connections.
func (f *ReceiptFetcher) Close() {
	f.lock.Lock()
	defer f.lock.Unlock()

	for chainID, c := range f.clients {
		c.Close()
		delete(f.clients, chainID)
	}
}

func (f *ReceiptFetcher) client(
	ctx context.Context, chainID uint64,
) (receiptClient, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	if c, ok := f.clients[chainID]; ok {
		return c, nil
	}
	url, ok := f.urls[chainID]
	if !ok || url == "" {
		return nil, fmt.Errorf("%w %d", ErrMissingRPCURL, chainID)
	}
	c, err := f.dial(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to chain %d: %w", chainID, err)
	}
	f.clients[chainID] = c
	log.Debugf("connected to rpc node of chain %d", chainID)
	return c, nil
}

func dialEthClient(ctx context.Context, url string) (receiptClient, error) {
	return ethclient.DialContext(ctx, url)
}
