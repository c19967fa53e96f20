package smartpayclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/maskwallet/walletd/internal/core/domain"
	"github.com/maskwallet/walletd/internal/core/ports"
	"github.com/maskwallet/walletd/pkg/httputil"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const maxConcurrentReceipts = 8

type funderService struct {
	client   *httputil.Client
	receipts ports.ReceiptFetcher
	chains   domain.ChainAllowList
}

// NewFunderService returns a FunderService for the funder API behind the
// given client. Receipts of funding operations are checked on-chain with
// the given fetcher.
func NewFunderService(
	client *httputil.Client, receipts ports.ReceiptFetcher,
	chains domain.ChainAllowList,
) (ports.FunderService, error) {
	if client == nil {
		return nil, ErrNullHTTPClient
	}
	if receipts == nil {
		return nil, ErrNullReceiptFetcher
	}
	if len(chains) == 0 {
		chains = domain.NewChainAllowList()
	}
	return &funderService{client, receipts, chains}, nil
}

func (s *funderService) GetWhiteList(
	ctx context.Context, handle string,
) (*ports.WhiteList, error) {
	var resp whiteListJSON
	if err := s.client.Get(
		ctx, "/whitelist", url.Values{"twitterHandle": {handle}}, &resp,
	); err != nil {
		return nil, err
	}
	return resp.toPort(), nil
}

// GetRemainFrequency returns how many fundings are left for the handle, 0
// if the lookup fails.
func (s *funderService) GetRemainFrequency(ctx context.Context, handle string) int {
	wl, err := s.GetWhiteList(ctx, handle)
	if err != nil {
		log.WithError(err).Debug("failed to fetch funder whitelist")
		return 0
	}
	if wl.TotalCount == 0 || wl.TwitterHandle != strings.ToLower(handle) {
		return 0
	}
	if remain := wl.TotalCount - wl.UsedCount; remain > 0 {
		return remain
	}
	return 0
}

// Verify returns whether the handle can still be funded, false if the
// lookup fails.
func (s *funderService) Verify(ctx context.Context, handle string) bool {
	wl, err := s.GetWhiteList(ctx, handle)
	if err != nil {
		log.WithError(err).Debug("failed to fetch funder whitelist")
		return false
	}
	return wl.TwitterHandle == strings.ToLower(handle) &&
		wl.UsedCount < wl.TotalCount
}

// GetOperationsByOwner returns the funding operations of the owner whose
// token transfer is confirmed on-chain. Failed or pending receipt lookups
// exclude the related operation without failing the whole batch.
func (s *funderService) GetOperationsByOwner(
	ctx context.Context, chainID uint64, owner string,
) ([]ports.FunderOperation, error) {
	if err := s.chains.Check(chainID); err != nil {
		return nil, err
	}

	var resp []operationJSON
	if err := s.client.Get(ctx, "/operation", url.Values{
		"scanKey":   {scanKeyOwnerAddress},
		"scanValue": {owner},
	}, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch funder operations: %w", err)
	}

	confirmed := make([]bool, len(resp))
	eg := &errgroup.Group{}
	eg.SetLimit(maxConcurrentReceipts)
	for i := range resp {
		i := i
		eg.Go(func() error {
			receipt, err := s.receipts.GetTransactionReceipt(
				ctx, chainID, resp[i].TokenTransferTx,
			)
			if err != nil {
				log.WithError(err).Debugf(
					"failed to fetch receipt of %s", resp[i].TokenTransferTx,
				)
				return nil
			}
			confirmed[i] = receipt != nil && receipt.Status
			return nil
		})
	}
	eg.Wait()

	operations := make([]ports.FunderOperation, 0, len(resp))
	for i, op := range resp {
		if confirmed[i] {
			operations = append(operations, op.toPort())
		}
	}
	return operations, nil
}

// Fund submits the given proof to the funder.
func (s *funderService) Fund(
	ctx context.Context, chainID uint64, proof string,
) (*ports.FundResult, error) {
	if err := s.chains.Check(chainID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(proof) == "" {
		return nil, ErrMissingProof
	}
	if !json.Valid([]byte(proof)) {
		return nil, fmt.Errorf("proof must be valid json")
	}

	var resp fundJSON
	if err := s.client.Post(
		ctx, "/verify", json.RawMessage(proof), &resp,
	); err != nil {
		return nil, fmt.Errorf("failed to fund: %w", err)
	}
	return &ports.FundResult{
		WalletAddress: resp.Message.WalletAddress,
		TxHash:        resp.Message.TxHash,
	}, nil
}
