package client

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/predictbet/gopredict/predict/types"
)

func mustBig(t *testing.T, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		t.Fatalf("bad big int literal %q", s)
	}
	return v
}

func TestCalculateAmounts(t *testing.T) {
	tests := []struct {
		name      string
		side      types.Side
		price     string
		size      string
		wantMaker string
		wantTaker string
	}{
		{
			name:      "buy 100 shares at 0.50",
			side:      types.SideBuy,
			price:     "0.50",
			size:      "100",
			wantMaker: "50000000000000000000",
			wantTaker: "100000000000000000000",
		},
		{
			name:      "sell 50 shares at 0.30",
			side:      types.SideSell,
			price:     "0.30",
			size:      "50",
			wantMaker: "50000000000000000000",
			wantTaker: "15000000000000000000",
		},
		{
			name:      "buy at sub-cent price",
			side:      types.SideBuy,
			price:     "0.001",
			size:      "1000",
			wantMaker: "1000000000000000000",
			wantTaker: "1000000000000000000000",
		},
		{
			name:      "sell fractional size",
			side:      types.SideSell,
			price:     "0.5",
			size:      "0.5",
			wantMaker: "500000000000000000",
			wantTaker: "250000000000000000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			maker, taker, err := CalculateAmounts(tt.side, tt.price, tt.size)
			if err != nil {
				t.Fatalf("CalculateAmounts() error = %v", err)
			}
			if maker.Cmp(mustBig(t, tt.wantMaker)) != 0 {
				t.Errorf("maker = %s, want %s", maker, tt.wantMaker)
			}
			if taker.Cmp(mustBig(t, tt.wantTaker)) != 0 {
				t.Errorf("taker = %s, want %s", taker, tt.wantTaker)
			}
		})
	}
}

func TestCalculateAmountsFloors(t *testing.T) {
	// 1/3-ish price times an odd size exercises the final floor division.
	maker, taker, err := CalculateAmounts(types.SideBuy, "0.333333333333333333", "7")
	if err != nil {
		t.Fatalf("CalculateAmounts() error = %v", err)
	}
	// 333333333333333333 * 7e18 / 1e18 = 2333333333333333331
	if want := mustBig(t, "2333333333333333331"); maker.Cmp(want) != 0 {
		t.Errorf("maker = %s, want %s", maker, want)
	}
	if want := mustBig(t, "7000000000000000000"); taker.Cmp(want) != 0 {
		t.Errorf("taker = %s, want %s", taker, want)
	}

	// The product must never exceed price*size: floor only, never round up.
	cross := new(big.Int).Mul(maker, weiScale)
	bound := new(big.Int).Mul(mustBig(t, "333333333333333333"), taker)
	if cross.Cmp(bound) > 0 {
		t.Errorf("maker overshoots the price: %s > %s", cross, bound)
	}
}

func TestCalculateAmountsRejects(t *testing.T) {
	tests := []struct {
		name  string
		price string
		size  string
	}{
		{"zero price", "0", "100"},
		{"negative price", "-0.5", "100"},
		{"price of one", "1", "100"},
		{"price above one", "1.5", "100"},
		{"zero size", "0.5", "0"},
		{"negative size", "0.5", "-1"},
		{"garbage price", "half", "100"},
		{"garbage size", "0.5", "lots"},
		{"empty price", "", "100"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := CalculateAmounts(types.SideBuy, tt.price, tt.size)
			if !errors.Is(err, types.ErrInvalidAmount) {
				t.Errorf("error = %v, want ErrInvalidAmount", err)
			}
		})
	}
}

func TestNewSaltUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 64; i++ {
		salt, err := NewSalt()
		if err != nil {
			t.Fatalf("NewSalt() error = %v", err)
		}
		if salt.Sign() < 0 || salt.Cmp(saltBound) >= 0 {
			t.Fatalf("salt %s out of [0, 2^128)", salt)
		}
		if seen[salt.String()] {
			t.Fatalf("duplicate salt %s", salt)
		}
		seen[salt.String()] = true
	}
}

func testMarket() *types.Market {
	return &types.Market{
		ID:          42,
		ConditionID: "0x1111111111111111111111111111111111111111111111111111111111111111",
		FeeRateBps:  0,
		Outcomes: []types.MarketOutcome{
			{Name: "Yes", IndexSet: 1, OnChainID: "111222333"},
			{Name: "No", IndexSet: 2, OnChainID: "444555666"},
		},
	}
}

func TestOrderBuilderBuild(t *testing.T) {
	maker := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	b := NewOrderBuilder(types.ChainBNBMainnet, maker)

	order, domain, err := b.Build(OrderIntent{
		Market:  testMarket(),
		Side:    types.SideBuy,
		Outcome: types.OutcomeYes,
		Price:   "0.50",
		Size:    "100",
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if order.Maker != maker || order.Signer != maker {
		t.Errorf("maker/signer = %s/%s, want %s", order.Maker.Hex(), order.Signer.Hex(), maker.Hex())
	}
	if order.Taker != types.ZeroTaker {
		t.Errorf("taker = %s, want zero address", order.Taker.Hex())
	}
	if order.TokenID.String() != "111222333" {
		t.Errorf("tokenID = %s, want 111222333", order.TokenID)
	}
	if order.Nonce.Sign() != 0 {
		t.Errorf("nonce = %s, want 0", order.Nonce)
	}
	if order.SignatureType != types.SignatureTypeEOA {
		t.Errorf("signatureType = %d, want EOA", order.SignatureType)
	}
	if order.Salt.Sign() <= 0 {
		t.Errorf("salt = %s, want positive random", order.Salt)
	}
	if domain.VerifyingContract != bnbMainnetContracts.Exchange.Hex() {
		t.Errorf("verifyingContract = %s, want base exchange", domain.VerifyingContract)
	}
}

func TestOrderBuilderExpiration(t *testing.T) {
	b := NewOrderBuilder(types.ChainBNBMainnet, common.Address{1})

	order, _, err := b.Build(OrderIntent{
		Market:  testMarket(),
		Side:    types.SideBuy,
		Outcome: types.OutcomeYes,
		Price:   "0.5",
		Size:    "1",
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	min := b.now().Add(DefaultOrderTTL - time.Minute).Unix()
	if order.Expiration.Int64() < min {
		t.Errorf("expiration %d earlier than ttl window start %d", order.Expiration.Int64(), min)
	}

	override := int64(1_900_000_000)
	order, _, err = b.Build(OrderIntent{
		Market:     testMarket(),
		Side:       types.SideSell,
		Outcome:    types.OutcomeNo,
		Price:      "0.5",
		Size:       "1",
		Expiration: &override,
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if order.Expiration.Int64() != override {
		t.Errorf("expiration = %d, want override %d", order.Expiration.Int64(), override)
	}
}

func TestOrderBuilderUnsupportedVariant(t *testing.T) {
	b := NewOrderBuilder(types.ChainBNBTestnet, common.Address{1})
	m := testMarket()
	m.IsNegRisk = true

	_, _, err := b.Build(OrderIntent{
		Market:  m,
		Side:    types.SideBuy,
		Outcome: types.OutcomeYes,
		Price:   "0.5",
		Size:    "1",
	})
	if !errors.Is(err, types.ErrUnsupportedVariant) {
		t.Errorf("error = %v, want ErrUnsupportedVariant", err)
	}
}

func TestOrderBuilderMissingToken(t *testing.T) {
	b := NewOrderBuilder(types.ChainBNBMainnet, common.Address{1})
	m := testMarket()
	m.Outcomes[0].OnChainID = ""

	_, _, err := b.Build(OrderIntent{
		Market:  m,
		Side:    types.SideBuy,
		Outcome: types.OutcomeYes,
		Price:   "0.5",
		Size:    "1",
	})
	if !errors.Is(err, types.ErrMissingTokenID) {
		t.Errorf("error = %v, want ErrMissingTokenID", err)
	}
}

func TestPriceWei(t *testing.T) {
	got, err := PriceWei("0.55")
	if err != nil {
		t.Fatalf("PriceWei() error = %v", err)
	}
	if want := mustBig(t, "550000000000000000"); got.Cmp(want) != 0 {
		t.Errorf("PriceWei(0.55) = %s, want %s", got, want)
	}
	if _, err := PriceWei("1.0"); !errors.Is(err, types.ErrInvalidAmount) {
		t.Errorf("PriceWei(1.0) error = %v, want ErrInvalidAmount", err)
	}
}
