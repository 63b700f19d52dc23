package types

// Network selects the predict.fun deployment to talk to.
type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkTestnet Network = "testnet"
)

// Chain is the EVM chain id of a deployment.
type Chain int

const (
	ChainBNBMainnet Chain = 56
	ChainBNBTestnet Chain = 97
)

// Chain returns the chain id the network's contracts are deployed on.
func (n Network) Chain() Chain {
	if n == NetworkMainnet {
		return ChainBNBMainnet
	}
	return ChainBNBTestnet
}

// BaseURL returns the REST endpoint for the network.
func (n Network) BaseURL() string {
	if n == NetworkMainnet {
		return "https://api.predict.fun"
	}
	return "https://api-testnet.predict.fun"
}

// RequiresAPIKey reports whether the REST API demands an x-api-key header.
// Only mainnet does.
func (n Network) RequiresAPIKey() bool {
	return n == NetworkMainnet
}

// Side is the order direction.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Uint8 returns the on-chain encoding of the side (BUY=0, SELL=1).
func (s Side) Uint8() uint8 {
	if s == SideSell {
		return 1
	}
	return 0
}

// SignatureType selects the signature verification scheme the exchange
// contract applies. The deployed predict.fun exchanges accept exactly one
// scheme per order flow, EOA.
type SignatureType int

const (
	SignatureTypeEOA SignatureType = 0
)

// Outcome identifies a binary market outcome.
type Outcome string

const (
	OutcomeYes Outcome = "YES"
	OutcomeNo  Outcome = "NO"
)

// Index returns the outcome's position in the market outcome list.
func (o Outcome) Index() int {
	if o == OutcomeNo {
		return 1
	}
	return 0
}

// Strategy is the execution strategy submitted with an order.
type Strategy string

const (
	StrategyLimit  Strategy = "LIMIT"
	StrategyMarket Strategy = "MARKET"
)

// OrderStatus is the lifecycle state reported by the exchange.
type OrderStatus string

const (
	OrderStatusOpen        OrderStatus = "OPEN"
	OrderStatusFilled      OrderStatus = "FILLED"
	OrderStatusExpired     OrderStatus = "EXPIRED"
	OrderStatusCancelled   OrderStatus = "CANCELLED"
	OrderStatusInvalidated OrderStatus = "INVALIDATED"
)

// RedemptionSource tags where a redemption record came from.
type RedemptionSource string

const (
	// RedemptionSourceLocal marks an optimistic entry recorded right after a
	// redeem transaction was submitted, before confirmation.
	RedemptionSourceLocal RedemptionSource = "local"
	// RedemptionSourceOnchain marks an entry decoded from a contract event log.
	RedemptionSourceOnchain RedemptionSource = "onchain"
)
