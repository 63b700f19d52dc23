package signing

import (
	"context"
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// Signer abstracts the wallet collaborator: it is handed structured data or a
// plain message and returns a signature blob. Implementations must not retain
// the payloads.
type Signer interface {
	Address() common.Address
	SignTypedData(ctx context.Context, data apitypes.TypedData) ([]byte, error)
	SignMessage(ctx context.Context, message []byte) ([]byte, error)
}

// PrivateKeySigner signs locally with an in-process ECDSA key.
type PrivateKeySigner struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// NewPrivateKeySigner parses a hex private key (0x prefix optional).
func NewPrivateKeySigner(hexKey string) (*PrivateKeySigner, error) {
	if len(hexKey) > 1 && hexKey[0] == '0' && (hexKey[1] == 'x' || hexKey[1] == 'X') {
		hexKey = hexKey[2:]
	}
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return &PrivateKeySigner{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

func (s *PrivateKeySigner) Address() common.Address {
	return s.address
}

// SignTypedData hashes the typed data with the standard two-stage scheme and
// signs the digest. The returned signature is r||s||v with v in {27,28}.
func (s *PrivateKeySigner) SignTypedData(_ context.Context, data apitypes.TypedData) ([]byte, error) {
	digest, _, err := apitypes.TypedDataAndHash(data)
	if err != nil {
		return nil, fmt.Errorf("hash typed data: %w", err)
	}
	return s.signDigest(digest)
}

// SignMessage signs with the personal-sign prefix, as wallets do for the
// REST auth challenge.
func (s *PrivateKeySigner) SignMessage(_ context.Context, message []byte) ([]byte, error) {
	digest := accounts.TextHash(message)
	return s.signDigest(digest)
}

func (s *PrivateKeySigner) signDigest(digest []byte) ([]byte, error) {
	sig, err := crypto.Sign(digest, s.key)
	if err != nil {
		return nil, err
	}
	// Contracts expect the Ethereum recovery id convention.
	if sig[64] < 27 {
		sig[64] += 27
	}
	return sig, nil
}

// Key exposes the underlying key for raw transaction signing (approvals,
// redemptions). External-wallet Signer implementations will not have one.
func (s *PrivateKeySigner) Key() *ecdsa.PrivateKey {
	return s.key
}
