package client

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/shopspring/decimal"

	"github.com/predictbet/gopredict/predict/types"
)

// DefaultOrderTTL is how long an order stays valid when the caller gives no
// explicit expiration.
const DefaultOrderTTL = 60 * time.Minute

var (
	weiScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(CollateralTokenDecimals), nil)
	one      = decimal.NewFromInt(1)

	// saltBound caps salts at 128 bits, wide enough that collisions are
	// practically impossible.
	saltBound = new(big.Int).Lsh(big.NewInt(1), 128)
)

// CalculateAmounts converts (side, price, size) into the maker/taker wei
// amounts of the order. Price and size arrive as decimal strings; each is
// floor-scaled to 18 decimals before the cross multiplication, and the final
// division floors again, so the maker never pays more than the requested
// price implies.
func CalculateAmounts(side types.Side, price, size string) (makerAmount, takerAmount *big.Int, err error) {
	p, err := decimal.NewFromString(price)
	if err != nil {
		return nil, nil, fmt.Errorf("price %q: %w", price, types.ErrInvalidAmount)
	}
	s, err := decimal.NewFromString(size)
	if err != nil {
		return nil, nil, fmt.Errorf("size %q: %w", size, types.ErrInvalidAmount)
	}
	if p.Sign() <= 0 || p.GreaterThanOrEqual(one) {
		return nil, nil, fmt.Errorf("price %s out of (0,1): %w", p, types.ErrInvalidAmount)
	}
	if s.Sign() <= 0 {
		return nil, nil, fmt.Errorf("size %s must be positive: %w", s, types.ErrInvalidAmount)
	}

	// Truncation toward zero equals floor here; both operands are positive.
	priceWei := p.Shift(CollateralTokenDecimals).BigInt()
	sizeWei := s.Shift(CollateralTokenDecimals).BigInt()

	// big.Int multiplication is arbitrary width, so the 512-bit intermediate
	// of two 256-bit operands cannot overflow before the division.
	cross := new(big.Int).Mul(priceWei, sizeWei)
	cross.Quo(cross, weiScale)

	if side == types.SideSell {
		return sizeWei, cross, nil
	}
	return cross, sizeWei, nil
}

// NewSalt draws a cryptographically random non-negative 128-bit integer.
func NewSalt() (*big.Int, error) {
	return rand.Int(rand.Reader, saltBound)
}

// OrderIntent is a human trade intent plus the market metadata needed to
// make it canonical.
type OrderIntent struct {
	Market  *types.Market
	Side    types.Side
	Outcome types.Outcome
	Price   string // decimal string in (0,1)
	Size    string // decimal string, shares

	Strategy    types.Strategy
	SlippageBps string // MARKET only; defaults to "200"

	// Optional overrides.
	Nonce      *int64
	Expiration *int64 // absolute Unix seconds
}

// OrderBuilder turns intents into unsigned canonical orders for one chain
// and one maker.
type OrderBuilder struct {
	chain types.Chain
	maker common.Address
	ttl   time.Duration
	now   func() time.Time
}

// NewOrderBuilder creates a builder. The maker address is also used as the
// order signer; the deployed exchanges verify EOA signatures only.
func NewOrderBuilder(chain types.Chain, maker common.Address) *OrderBuilder {
	return &OrderBuilder{chain: chain, maker: maker, ttl: DefaultOrderTTL, now: time.Now}
}

// Build produces the unsigned order and the EIP-712 domain it must be signed
// under. Construction errors here guarantee no signing request is issued.
func (b *OrderBuilder) Build(intent OrderIntent) (*types.UnsignedOrder, apitypes.TypedDataDomain, error) {
	var domain apitypes.TypedDataDomain
	if intent.Market == nil {
		return nil, domain, fmt.Errorf("nil market: %w", types.ErrMissingTokenID)
	}

	tokenIDStr, err := intent.Market.TokenID(intent.Outcome)
	if err != nil {
		return nil, domain, err
	}
	tokenID, ok := new(big.Int).SetString(tokenIDStr, 10)
	if !ok {
		return nil, domain, fmt.Errorf("malformed token id %q: %w", tokenIDStr, types.ErrMissingTokenID)
	}

	_, domain, err = ResolveVariant(b.chain, intent.Market.IsNegRisk, intent.Market.IsYieldBearing)
	if err != nil {
		return nil, domain, err
	}

	makerAmount, takerAmount, err := CalculateAmounts(intent.Side, intent.Price, intent.Size)
	if err != nil {
		return nil, domain, err
	}

	salt, err := NewSalt()
	if err != nil {
		return nil, domain, fmt.Errorf("generate salt: %w", err)
	}

	expiration := b.now().Add(b.ttl).Unix()
	if intent.Expiration != nil {
		expiration = *intent.Expiration
	}
	nonce := int64(0)
	if intent.Nonce != nil {
		nonce = *intent.Nonce
	}

	order := &types.UnsignedOrder{
		Salt:          salt,
		Maker:         b.maker,
		Signer:        b.maker,
		Taker:         types.ZeroTaker,
		TokenID:       tokenID,
		MakerAmount:   makerAmount,
		TakerAmount:   takerAmount,
		Expiration:    big.NewInt(expiration),
		Nonce:         big.NewInt(nonce),
		FeeRateBps:    big.NewInt(int64(intent.Market.FeeRateBps)),
		Side:          intent.Side,
		SignatureType: types.SignatureTypeEOA,
	}
	return order, domain, nil
}

// PriceWei floor-scales a decimal price string to wei, for the
// pricePerShare submission field and the local order cache.
func PriceWei(price string) (*big.Int, error) {
	p, err := decimal.NewFromString(price)
	if err != nil || p.Sign() <= 0 || p.GreaterThanOrEqual(one) {
		return nil, fmt.Errorf("price %q out of (0,1): %w", price, types.ErrInvalidAmount)
	}
	return p.Shift(CollateralTokenDecimals).BigInt(), nil
}
