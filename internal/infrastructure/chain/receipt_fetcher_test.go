package chain

import (
	"context"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/maskwallet/walletd/internal/core/domain"
	"github.com/stretchr/testify/require"
)

var (
	minedTx   = common.HexToHash("0x01")
	revertTx  = common.HexToHash("0x02")
	pendingTx = common.HexToHash("0x03")
)

func TestGetTransactionReceipt(t *testing.T) {
	ctx := context.Background()
	dials := 0
	fetcher := NewReceiptFetcher(map[uint64]string{
		domain.ChainIDMatic: "http://localhost:8545",
	}, nil)
	fetcher.dial = func(_ context.Context, url string) (receiptClient, error) {
		dials++
		require.Equal(t, "http://localhost:8545", url)
		return &fakeClient{}, nil
	}
	defer fetcher.Close()

	receipt, err := fetcher.GetTransactionReceipt(ctx, domain.ChainIDMatic, minedTx.Hex())
	require.NoError(t, err)
	require.True(t, receipt.Status)
	require.Equal(t, minedTx.Hex(), receipt.TxHash)
	require.Equal(t, uint64(42), receipt.BlockNumber)

	receipt, err = fetcher.GetTransactionReceipt(ctx, domain.ChainIDMatic, revertTx.Hex())
	require.NoError(t, err)
	require.False(t, receipt.Status)

	receipt, err = fetcher.GetTransactionReceipt(ctx, domain.ChainIDMatic, pendingTx.Hex())
	require.NoError(t, err)
	require.Nil(t, receipt)

	require.Equal(t, 1, dials)
}

func TestGetTransactionReceiptInvalid(t *testing.T) {
	ctx := context.Background()
	fetcher := NewReceiptFetcher(map[uint64]string{}, nil)
	fetcher.dial = func(context.Context, string) (receiptClient, error) {
		return nil, fmt.Errorf("must not dial")
	}

	_, err := fetcher.GetTransactionReceipt(ctx, domain.ChainIDMainnet, minedTx.Hex())
	require.ErrorIs(t, err, domain.ErrUnsupportedChain)

	_, err = fetcher.GetTransactionReceipt(ctx, domain.ChainIDMatic, "0x1234")
	require.ErrorIs(t, err, ErrInvalidTxHash)

	_, err = fetcher.GetTransactionReceipt(ctx, domain.ChainIDMatic, minedTx.Hex())
	require.ErrorIs(t, err, ErrMissingRPCURL)
}

type fakeClient struct{}

func (fakeClient) TransactionReceipt(
	_ context.Context, txHash common.Hash,
) (*types.Receipt, error) {
	switch txHash {
	case minedTx:
		return &types.Receipt{
			TxHash:      txHash,
			Status:      types.ReceiptStatusSuccessful,
			BlockNumber: big.NewInt(42),
		}, nil
	case revertTx:
		return &types.Receipt{
			TxHash:      txHash,
			Status:      types.ReceiptStatusFailed,
			BlockNumber: big.NewInt(43),
		}, nil
	default:
		return nil, ethereum.NotFound
	}
}

func (fakeClient) Close() {}
