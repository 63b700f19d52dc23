package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ZeroTaker is the "anyone may fill" sentinel taker address.
var ZeroTaker = common.Address{}

// UnsignedOrder is the canonical order record before signing. It carries the
// exact 12 fields the exchange contract hashes, in wei-scale (18 decimal)
// fixed point. Instances are built once and never mutated.
type UnsignedOrder struct {
	Salt          *big.Int
	Maker         common.Address
	Signer        common.Address
	Taker         common.Address
	TokenID       *big.Int
	MakerAmount   *big.Int
	TakerAmount   *big.Int
	Expiration    *big.Int
	Nonce         *big.Int
	FeeRateBps    *big.Int
	Side          Side
	SignatureType SignatureType
}

// SignedOrder is the wire form submitted to the REST API. All 256-bit fields
// travel as decimal strings to survive JSON number precision.
type SignedOrder struct {
	Hash          string `json:"hash"`
	Salt          string `json:"salt"`
	Maker         string `json:"maker"`
	Signer        string `json:"signer"`
	Taker         string `json:"taker"`
	TokenID       string `json:"tokenId"`
	MakerAmount   string `json:"makerAmount"`
	TakerAmount   string `json:"takerAmount"`
	Expiration    string `json:"expiration"`
	Nonce         string `json:"nonce"`
	FeeRateBps    string `json:"feeRateBps"`
	Side          int    `json:"side"`
	SignatureType int    `json:"signatureType"`
	Signature     string `json:"signature"`
}

// Signed freezes the order into its wire form.
func (o *UnsignedOrder) Signed(hash common.Hash, signature string) *SignedOrder {
	return &SignedOrder{
		Hash:          hash.Hex(),
		Salt:          o.Salt.String(),
		Maker:         o.Maker.Hex(),
		Signer:        o.Signer.Hex(),
		Taker:         o.Taker.Hex(),
		TokenID:       o.TokenID.String(),
		MakerAmount:   o.MakerAmount.String(),
		TakerAmount:   o.TakerAmount.String(),
		Expiration:    o.Expiration.String(),
		Nonce:         o.Nonce.String(),
		FeeRateBps:    o.FeeRateBps.String(),
		Side:          int(o.Side.Uint8()),
		SignatureType: int(o.SignatureType),
		Signature:     signature,
	}
}

// CreateOrderRequest is the POST /v1/orders body.
type CreateOrderRequest struct {
	Data CreateOrderData `json:"data"`
}

// CreateOrderData wraps the signed order with its execution parameters.
type CreateOrderData struct {
	Order         *SignedOrder `json:"order"`
	PricePerShare string       `json:"pricePerShare"`
	Strategy      Strategy     `json:"strategy"`
	SlippageBps   string       `json:"slippageBps,omitempty"`
}

// CreateOrderResponse is the acceptance envelope returned by POST /v1/orders.
type CreateOrderResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Code string `json:"code"`
	} `json:"data"`
	Error string `json:"error,omitempty"`
}

// OrderRecord is one entry of GET /v1/orders. The listing is authoritative
// but known to omit market orders, which is why hashes are also cached
// locally at submission time.
type OrderRecord struct {
	ID             string      `json:"id"`
	MarketID       int64       `json:"marketId"`
	Currency       string      `json:"currency"`
	Amount         string      `json:"amount"`
	AmountFilled   string      `json:"amountFilled"`
	IsNegRisk      bool        `json:"isNegRisk"`
	IsYieldBearing bool        `json:"isYieldBearing"`
	Strategy       Strategy    `json:"strategy"`
	Status         OrderStatus `json:"status"`
	Order          struct {
		Hash        string `json:"hash"`
		Salt        string `json:"salt"`
		Maker       string `json:"maker"`
		Signer      string `json:"signer"`
		Taker       string `json:"taker"`
		TokenID     string `json:"tokenId"`
		MakerAmount string `json:"makerAmount"`
		TakerAmount string `json:"takerAmount"`
		Expiration  int64  `json:"expiration"`
		Nonce       string `json:"nonce"`
		FeeRateBps  string `json:"feeRateBps"`
		Side        int    `json:"side"`
	} `json:"order"`
}

// StoredOrderRecord is the local cache entry written once after a successful
// submission. The remote listing omits market orders, so these hashes are the
// only way to recover them later.
type StoredOrderRecord struct {
	Hash             string `json:"hash"`
	MarketID         int64  `json:"marketId"`
	PricePerShareWei string `json:"pricePerShareWei"`
	CreatedAt        int64  `json:"createdAt"`
}

// ReconciledOrder is the merged view of remote order state and the local
// cache. Remote-sourced fields are authoritative; PricePerShareWei and
// CreatedAt are back-filled from the cache only when the remote record lacks
// them. Status is derived, not trusted verbatim.
type ReconciledOrder struct {
	ID               string      `json:"id"`
	Hash             string      `json:"hash"`
	MarketID         int64       `json:"marketId"`
	Side             int         `json:"side"`
	Strategy         Strategy    `json:"strategy"`
	Amount           string      `json:"amount"`
	AmountFilled     string      `json:"amountFilled"`
	Status           OrderStatus `json:"status"`
	Expiration       int64       `json:"expiration"`
	TokenID          string      `json:"tokenId"`
	MakerAmount      string      `json:"makerAmount"`
	TakerAmount      string      `json:"takerAmount"`
	PricePerShareWei string      `json:"pricePerShareWei,omitempty"`
	CreatedAt        int64       `json:"createdAt,omitempty"`
}

// OrdersResponse is the GET /v1/orders envelope.
type OrdersResponse struct {
	Success bool          `json:"success"`
	Data    []OrderRecord `json:"data"`
}

// OrderResponse is the GET /v1/orders/{hash} envelope.
type OrderResponse struct {
	Success bool        `json:"success"`
	Data    OrderRecord `json:"data"`
}

// CancelOrdersRequest is the POST /v1/orders/cancel body.
type CancelOrdersRequest struct {
	Data struct {
		OrderHashes []string `json:"orderHashes"`
	} `json:"data"`
}

// CancelOrdersResponse reports which hashes were cancelled.
type CancelOrdersResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Cancelled []string `json:"cancelled"`
	} `json:"data"`
}
