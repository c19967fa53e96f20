package smartpayclient

import (
	"time"

	"github.com/maskwallet/walletd/internal/core/ports"
)

const scanKeyOwnerAddress = "owner_address"

type smartAccountJSON struct {
	Address  string `json:"address"`
	Owner    string `json:"owner"`
	Deployed bool   `json:"deployed"`
}

type healthzJSON struct {
	ChainID string `json:"chain_id"`
}

type whiteListJSON struct {
	TwitterHandle string `json:"twitterHandler"`
	TotalCount    int    `json:"totalCount"`
	UsedCount     int    `json:"usedCount"`
}

func (w whiteListJSON) toPort() *ports.WhiteList {
	return &ports.WhiteList{
		TwitterHandle: w.TwitterHandle,
		TotalCount:    w.TotalCount,
		UsedCount:     w.UsedCount,
	}
}

type operationJSON struct {
	Nonce           int       `json:"nonce"`
	Owner           string    `json:"owner"`
	WalletAddress   string    `json:"walletAddress"`
	TokenTransferTx string    `json:"tokenTransferTx"`
	CreatedAt       time.Time `json:"createdAt"`
}

func (o operationJSON) toPort() ports.FunderOperation {
	return ports.FunderOperation{
		Nonce:           o.Nonce,
		Owner:           o.Owner,
		WalletAddress:   o.WalletAddress,
		TokenTransferTx: o.TokenTransferTx,
		CreatedAt:       o.CreatedAt,
	}
}

type fundJSON struct {
	Message struct {
		WalletAddress string `json:"walletAddress"`
		TxHash        string `json:"tx_hash"`
	} `json:"message"`
}
