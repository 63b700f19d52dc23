package signing

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/predictbet/gopredict/predict/types"
)

// orderTypes is the fixed 12-field Order type signature the exchange
// contracts hash. Field order and widths must match the deployed contracts
// exactly; salt is uint256 on the current deployments.
var orderTypes = apitypes.Types{
	"EIP712Domain": {
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
	},
	"Order": {
		{Name: "salt", Type: "uint256"},
		{Name: "maker", Type: "address"},
		{Name: "signer", Type: "address"},
		{Name: "taker", Type: "address"},
		{Name: "tokenId", Type: "uint256"},
		{Name: "makerAmount", Type: "uint256"},
		{Name: "takerAmount", Type: "uint256"},
		{Name: "expiration", Type: "uint256"},
		{Name: "nonce", Type: "uint256"},
		{Name: "feeRateBps", Type: "uint256"},
		{Name: "side", Type: "uint8"},
		{Name: "signatureType", Type: "uint8"},
	},
}

// OrderDomain builds the EIP-712 domain for an exchange deployment.
func OrderDomain(chain types.Chain, verifyingContract common.Address) apitypes.TypedDataDomain {
	return apitypes.TypedDataDomain{
		Name:              ProtocolName,
		Version:           ProtocolVersion,
		ChainId:           math.NewHexOrDecimal256(int64(chain)),
		VerifyingContract: verifyingContract.Hex(),
	}
}

// BuildOrderTypedData assembles the structured-data payload an external
// signer is asked to sign.
func BuildOrderTypedData(domain apitypes.TypedDataDomain, order *types.UnsignedOrder) apitypes.TypedData {
	return apitypes.TypedData{
		Types:       orderTypes,
		PrimaryType: "Order",
		Domain:      domain,
		Message: map[string]interface{}{
			"salt":          order.Salt,
			"maker":         order.Maker.Hex(),
			"signer":        order.Signer.Hex(),
			"taker":         order.Taker.Hex(),
			"tokenId":       order.TokenID,
			"makerAmount":   order.MakerAmount,
			"takerAmount":   order.TakerAmount,
			"expiration":    order.Expiration,
			"nonce":         order.Nonce,
			"feeRateBps":    order.FeeRateBps,
			"side":          big.NewInt(int64(order.Side.Uint8())),
			"signatureType": big.NewInt(int64(order.SignatureType)),
		},
	}
}

// HashOrder computes the 32-byte digest the verifying contract recomputes
// on-chain: keccak256("\x19\x01" || domainSeparator || structHash).
func HashOrder(domain apitypes.TypedDataDomain, order *types.UnsignedOrder) (common.Hash, error) {
	digest, _, err := apitypes.TypedDataAndHash(BuildOrderTypedData(domain, order))
	if err != nil {
		return common.Hash{}, fmt.Errorf("hash order: %w", err)
	}
	return common.BytesToHash(digest), nil
}

// SignOrder hashes and signs an order, returning the immutable wire form.
// A signer refusal surfaces as ErrSigningRejected; nothing is cached.
func SignOrder(ctx context.Context, signer Signer, domain apitypes.TypedDataDomain, order *types.UnsignedOrder) (*types.SignedOrder, error) {
	hash, err := HashOrder(domain, order)
	if err != nil {
		return nil, err
	}
	sig, err := signer.SignTypedData(ctx, BuildOrderTypedData(domain, order))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrSigningRejected, err)
	}
	return order.Signed(hash, hexutil.Encode(sig)), nil
}
