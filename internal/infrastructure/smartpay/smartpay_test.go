package smartpayclient_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/maskwallet/walletd/internal/core/domain"
	"github.com/maskwallet/walletd/internal/core/ports"
	smartpayclient "github.com/maskwallet/walletd/internal/infrastructure/smartpay"
	"github.com/maskwallet/walletd/pkg/httputil"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	owner        = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	smartAccount = "0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"
	handle       = "MaskNetwork"
)

var ctx = context.Background()

func TestOwnerService(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&hits, 1)
			require.Equal(t, "/accounts", r.URL.Path)
			require.Equal(t, "137", r.URL.Query().Get("chainId"))
			require.Equal(t, owner, r.URL.Query().Get("owners"))
			fmt.Fprintf(w, `[{"address":%q,"owner":%q,"deployed":true}]`, smartAccount, owner)
		},
	))
	defer srv.Close()

	svc, err := smartpayclient.NewOwnerService(newClient(t, srv.URL), nil)
	require.NoError(t, err)

	entries, err := svc.GetAccountsByOwners(ctx, domain.ChainIDMatic, []string{owner})
	require.NoError(t, err)
	require.Equal(t, []domain.SmartAccountEntry{
		{Address: smartAccount, Owner: owner, Deployed: true},
	}, entries)

	entries, err = svc.GetAccountsByOwners(ctx, domain.ChainIDMatic, nil)
	require.NoError(t, err)
	require.Empty(t, entries)

	_, err = svc.GetAccountsByOwners(ctx, domain.ChainIDMainnet, []string{owner})
	require.ErrorIs(t, err, domain.ErrUnsupportedChain)
	require.Equal(t, int32(1), atomic.LoadInt32(&hits))

	_, err = smartpayclient.NewOwnerService(nil, nil)
	require.ErrorIs(t, err, smartpayclient.ErrNullHTTPClient)
}

func TestBundlerService(t *testing.T) {
	tests := []struct {
		name        string
		chainID     string
		expected    uint64
		expectedErr error
	}{
		{"polygon", "137", domain.ChainIDMatic, nil},
		{"mumbai", "80001", domain.ChainIDMumbai, nil},
		{"mainnet", "1", 0, domain.ErrUnsupportedChain},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(
				func(w http.ResponseWriter, r *http.Request) {
					require.Equal(t, "/healthz", r.URL.Path)
					fmt.Fprintf(w, `{"chain_id":%q}`, tt.chainID)
				},
			))
			defer srv.Close()

			svc, err := smartpayclient.NewBundlerService(newClient(t, srv.URL), nil)
			require.NoError(t, err)

			chainID, err := svc.GetSupportedChainID(ctx)
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, chainID)
		})
	}
}

func TestFunderWhiteList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Query().Get("twitterHandle") {
			case handle:
				fmt.Fprint(w, `{"twitterHandler":"masknetwork","totalCount":3,"usedCount":1}`)
			case "exhausted":
				fmt.Fprint(w, `{"twitterHandler":"exhausted","totalCount":3,"usedCount":5}`)
			default:
				w.WriteHeader(http.StatusInternalServerError)
			}
		},
	))
	defer srv.Close()

	svc, err := smartpayclient.NewFunderService(
		newClient(t, srv.URL), &mockReceiptFetcher{}, nil,
	)
	require.NoError(t, err)

	require.Equal(t, 2, svc.GetRemainFrequency(ctx, handle))
	require.True(t, svc.Verify(ctx, handle))

	require.Zero(t, svc.GetRemainFrequency(ctx, "exhausted"))
	require.False(t, svc.Verify(ctx, "exhausted"))

	require.Zero(t, svc.GetRemainFrequency(ctx, "unknown"))
	require.False(t, svc.Verify(ctx, "unknown"))

	_, err = svc.GetWhiteList(ctx, "unknown")
	require.Error(t, err)
}

func TestFunderOperations(t *testing.T) {
	txs := []string{"0x01", "0x02", "0x03", "0x04"}
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/operation", r.URL.Path)
			require.Equal(t, "owner_address", r.URL.Query().Get("scanKey"))
			require.Equal(t, owner, r.URL.Query().Get("scanValue"))

			ops := make([]map[string]interface{}, 0, len(txs))
			for i, tx := range txs {
				ops = append(ops, map[string]interface{}{
					"nonce":           i,
					"owner":           owner,
					"walletAddress":   smartAccount,
					"tokenTransferTx": tx,
				})
			}
			json.NewEncoder(w).Encode(ops)
		},
	))
	defer srv.Close()

	t.Run("one receipt lookup fails", func(t *testing.T) {
		receipts := &mockReceiptFetcher{}
		receipts.On("GetTransactionReceipt", mock.Anything, domain.ChainIDMatic, "0x01").
			Return(&ports.Receipt{TxHash: "0x01", Status: true}, nil)
		receipts.On("GetTransactionReceipt", mock.Anything, domain.ChainIDMatic, "0x02").
			Return(nil, fmt.Errorf("connection reset"))
		receipts.On("GetTransactionReceipt", mock.Anything, domain.ChainIDMatic, "0x03").
			Return(&ports.Receipt{TxHash: "0x03", Status: true}, nil)
		receipts.On("GetTransactionReceipt", mock.Anything, domain.ChainIDMatic, "0x04").
			Return(&ports.Receipt{TxHash: "0x04", Status: true}, nil)

		svc, err := smartpayclient.NewFunderService(newClient(t, srv.URL), receipts, nil)
		require.NoError(t, err)

		ops, err := svc.GetOperationsByOwner(ctx, domain.ChainIDMatic, owner)
		require.NoError(t, err)
		require.Len(t, ops, 3)
		require.Equal(t, "0x01", ops[0].TokenTransferTx)
		require.Equal(t, "0x03", ops[1].TokenTransferTx)
		require.Equal(t, "0x04", ops[2].TokenTransferTx)
		require.Equal(t, 2, ops[1].Nonce)
	})

	t.Run("failed and pending transfers are excluded", func(t *testing.T) {
		receipts := &mockReceiptFetcher{}
		receipts.On("GetTransactionReceipt", mock.Anything, domain.ChainIDMumbai, "0x01").
			Return(&ports.Receipt{TxHash: "0x01", Status: false}, nil)
		receipts.On("GetTransactionReceipt", mock.Anything, domain.ChainIDMumbai, "0x02").
			Return(nil, nil)
		receipts.On("GetTransactionReceipt", mock.Anything, domain.ChainIDMumbai, mock.Anything).
			Return(&ports.Receipt{Status: true}, nil)

		svc, err := smartpayclient.NewFunderService(newClient(t, srv.URL), receipts, nil)
		require.NoError(t, err)

		ops, err := svc.GetOperationsByOwner(ctx, domain.ChainIDMumbai, owner)
		require.NoError(t, err)
		require.Len(t, ops, 2)
	})

	t.Run("unsupported chain", func(t *testing.T) {
		receipts := &mockReceiptFetcher{}
		svc, err := smartpayclient.NewFunderService(newClient(t, srv.URL), receipts, nil)
		require.NoError(t, err)

		_, err = svc.GetOperationsByOwner(ctx, domain.ChainIDMainnet, owner)
		require.ErrorIs(t, err, domain.ErrUnsupportedChain)
		receipts.AssertNotCalled(t, "GetTransactionReceipt", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestFund(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/verify", r.URL.Path)
			body, _ := io.ReadAll(r.Body)
			if !strings.Contains(string(body), "signature") {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			fmt.Fprintf(w, `{"message":{"walletAddress":%q,"tx_hash":"0xabc"}}`, smartAccount)
		},
	))
	defer srv.Close()

	svc, err := smartpayclient.NewFunderService(
		newClient(t, srv.URL), &mockReceiptFetcher{}, nil,
	)
	require.NoError(t, err)

	res, err := svc.Fund(ctx, domain.ChainIDMatic, `{"signature":"0x00"}`)
	require.NoError(t, err)
	require.Equal(t, smartAccount, res.WalletAddress)
	require.Equal(t, "0xabc", res.TxHash)

	_, err = svc.Fund(ctx, domain.ChainIDMatic, `{"other":true}`)
	var statusErr *httputil.StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusBadRequest, statusErr.Code)

	_, err = svc.Fund(ctx, domain.ChainIDMatic, " ")
	require.ErrorIs(t, err, smartpayclient.ErrMissingProof)

	_, err = svc.Fund(ctx, domain.ChainIDMatic, "{")
	require.Error(t, err)

	_, err = svc.Fund(ctx, domain.ChainIDMainnet, `{"signature":"0x00"}`)
	require.ErrorIs(t, err, domain.ErrUnsupportedChain)
}

func newClient(t *testing.T, url string) *httputil.Client {
	client, err := httputil.NewClient("test", url, httputil.Opts{})
	require.NoError(t, err)
	return client
}

type mockReceiptFetcher struct {
	mock.Mock
}

func (m *mockReceiptFetcher) GetTransactionReceipt(
	ctx context.Context, chainID uint64, txHash string,
) (*ports.Receipt, error) {
	args := m.Called(ctx, chainID, txHash)
	var res *ports.Receipt
	if a := args.Get(0); a != nil {
		res = a.(*ports.Receipt)
	}
	return res, args.Error(1)
}
