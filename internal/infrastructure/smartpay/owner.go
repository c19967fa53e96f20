package smartpayclient

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/maskwallet/walletd/internal/core/domain"
	"github.com/maskwallet/walletd/internal/core/ports"
	"github.com/maskwallet/walletd/pkg/httputil"
)

type ownerService struct {
	client *httputil.Client
	chains domain.ChainAllowList
}

// NewOwnerService returns an OwnerService querying the smart pay owner API
// behind the given client.
func NewOwnerService(
	client *httputil.Client, chains domain.ChainAllowList,
) (ports.OwnerService, error) {
	if client == nil {
		return nil, ErrNullHTTPClient
	}
	if len(chains) == 0 {
		chains = domain.NewChainAllowList()
	}
	return &ownerService{client, chains}, nil
}

func (s *ownerService) GetAccountsByOwners(
	ctx context.Context, chainID uint64, owners []string,
) ([]domain.SmartAccountEntry, error) {
	if err := s.chains.Check(chainID); err != nil {
		return nil, err
	}
	if len(owners) == 0 {
		return nil, nil
	}

	query := url.Values{
		"chainId": {strconv.FormatUint(chainID, 10)},
		"owners":  {strings.Join(owners, ",")},
	}
	var resp []smartAccountJSON
	if err := s.client.Get(ctx, "/accounts", query, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch smart accounts: %w", err)
	}

	entries := make([]domain.SmartAccountEntry, 0, len(resp))
	for _, a := range resp {
		entries = append(entries, domain.SmartAccountEntry{
			Address:  a.Address,
			Owner:    a.Owner,
			Deployed: a.Deployed,
		})
	}
	return entries, nil
}
