package smartpayclient

import (
	"context"
	"fmt"
	"strconv"

	"github.com/maskwallet/walletd/internal/core/domain"
	"github.com/maskwallet/walletd/internal/core/ports"
	"github.com/maskwallet/walletd/pkg/httputil"
)

type bundlerService struct {
	client *httputil.Client
	chains domain.ChainAllowList
}

// NewBundlerService returns a BundlerService for the bundler API behind the
// given client.
func NewBundlerService(
	client *httputil.Client, chains domain.ChainAllowList,
) (ports.BundlerService, error) {
	if client == nil {
		return nil, ErrNullHTTPClient
	}
	if len(chains) == 0 {
		chains = domain.NewChainAllowList()
	}
	return &bundlerService{client, chains}, nil
}

// GetSupportedChainID returns the chain the bundler operates on. It fails
// with ErrUnsupportedChain if that chain is not allowed.
func (s *bundlerService) GetSupportedChainID(ctx context.Context) (uint64, error) {
	var resp healthzJSON
	if err := s.client.Get(ctx, "/healthz", nil, &resp); err != nil {
		return 0, fmt.Errorf("failed to fetch bundler status: %w", err)
	}
	chainID, err := strconv.ParseUint(resp.ChainID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid bundler chain id %q", resp.ChainID)
	}
	if err := s.chains.Check(chainID); err != nil {
		return 0, err
	}
	return chainID, nil
}
