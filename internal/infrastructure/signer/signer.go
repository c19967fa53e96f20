package signer

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/maskwallet/walletd/internal/core/ports"
)

type signer struct{}

func NewSigner() ports.Signer {
	return signer{}
}

func (s signer) Sign(
	signType ports.SignType, privateKey []byte, message []byte,
) (string, error) {
	key, err := crypto.ToECDSA(privateKey)
	if err != nil {
		return "", fmt.Errorf("invalid private key: %s", err)
	}

	switch signType {
	case ports.SignTypeMessage:
		sig, err := crypto.Sign(accounts.TextHash(message), key)
		if err != nil {
			return "", err
		}
		return hexutil.Encode(toRSV(sig)), nil
	case ports.SignTypeTypedData:
		var typedData apitypes.TypedData
		if err := json.Unmarshal(message, &typedData); err != nil {
			return "", fmt.Errorf("invalid typed data: %s", err)
		}
		hash, _, err := apitypes.TypedDataAndHash(typedData)
		if err != nil {
			return "", fmt.Errorf("invalid typed data: %s", err)
		}
		sig, err := crypto.Sign(hash, key)
		if err != nil {
			return "", err
		}
		return hexutil.Encode(toRSV(sig)), nil
	case ports.SignTypeTransaction:
		tx := new(types.Transaction)
		if err := tx.UnmarshalBinary(message); err != nil {
			return "", fmt.Errorf("invalid transaction: %s", err)
		}
		signedTx, err := types.SignTx(
			tx, types.LatestSignerForChainID(tx.ChainId()), key,
		)
		if err != nil {
			return "", err
		}
		raw, err := signedTx.MarshalBinary()
		if err != nil {
			return "", err
		}
		return hexutil.Encode(raw), nil
	default:
		return "", fmt.Errorf("unknown sign type %q", signType)
	}
}

// toRSV moves the recovery id in the 27/28 range expected by Ethereum
// clients.
func toRSV(sig []byte) []byte {
	sig[crypto.RecoveryIDOffset] += 27
	return sig
}
