package client

import (
	"context"
	"errors"
	"math/big"
	"net/http"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/predictbet/gopredict/predict/types"
)

func testPosition() types.Position {
	return types.Position{
		ID:              "pos-1",
		MarketID:        42,
		MarketTitle:     "Will it rain",
		OutcomeName:     "Yes",
		OutcomeIndexSet: 1,
		Amount:          "3000000000000000000",
		ConditionID:     "0x1111111111111111111111111111111111111111111111111111111111111111",
	}
}

func TestBuildRedeemCallDirect(t *testing.T) {
	pos := testPosition()
	to, data, err := buildRedeemCall(&bnbMainnetContracts, pos)
	if err != nil {
		t.Fatalf("buildRedeemCall() error = %v", err)
	}
	if to != bnbMainnetContracts.ConditionalTokens[0] {
		t.Errorf("target = %s, want standard conditional tokens", to.Hex())
	}

	wantSelector := crypto.Keccak256([]byte("redeemPositions(address,bytes32,bytes32,uint256[])"))[:4]
	if string(data[:4]) != string(wantSelector) {
		t.Fatalf("selector = %x, want %x", data[:4], wantSelector)
	}

	parsed, err := abi.JSON(strings.NewReader(ctfRedeemABI))
	if err != nil {
		t.Fatalf("parse abi: %v", err)
	}
	args, err := parsed.Methods["redeemPositions"].Inputs.Unpack(data[4:])
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if got := args[0].(common.Address); got != bnbMainnetContracts.Collateral {
		t.Errorf("collateral = %s", got.Hex())
	}
	if got := args[1].([32]byte); got != ([32]byte{}) {
		t.Errorf("parentCollectionId = %x, want zero", got)
	}
	if got := args[2].([32]byte); common.Hash(got) != common.HexToHash(pos.ConditionID) {
		t.Errorf("conditionId = %x", got)
	}
	indexSets := args[3].([]*big.Int)
	if len(indexSets) != 1 || indexSets[0].Int64() != 1 {
		t.Errorf("indexSets = %v, want [1]", indexSets)
	}
}

func TestBuildRedeemCallAdapter(t *testing.T) {
	pos := testPosition()
	pos.IsNegRisk = true
	pos.OutcomeIndexSet = 2

	to, data, err := buildRedeemCall(&bnbMainnetContracts, pos)
	if err != nil {
		t.Fatalf("buildRedeemCall() error = %v", err)
	}
	// The adapter family shares the standard conditional-tokens address.
	if to != bnbMainnetContracts.ConditionalTokens[0] {
		t.Errorf("target = %s, want standard conditional tokens", to.Hex())
	}

	wantSelector := crypto.Keccak256([]byte("redeemPositions(bytes32,uint256[])"))[:4]
	if string(data[:4]) != string(wantSelector) {
		t.Fatalf("selector = %x, want %x", data[:4], wantSelector)
	}

	parsed, err := abi.JSON(strings.NewReader(adapterRedeemABI))
	if err != nil {
		t.Fatalf("parse abi: %v", err)
	}
	args, err := parsed.Methods["redeemPositions"].Inputs.Unpack(data[4:])
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if got := args[0].([32]byte); common.Hash(got) != common.HexToHash(pos.ConditionID) {
		t.Errorf("conditionId = %x", got)
	}
	amounts := args[1].([]*big.Int)
	if len(amounts) != 2 {
		t.Fatalf("amounts = %v, want 2 entries", amounts)
	}
	if amounts[0].Sign() != 0 || amounts[1].String() != pos.Amount {
		t.Errorf("amounts = %v, want amount at outcome index 1", amounts)
	}
}

func TestBuildRedeemCallSelectsVariantContract(t *testing.T) {
	pos := testPosition()
	pos.IsYieldBearing = true

	to, _, err := buildRedeemCall(&bnbMainnetContracts, pos)
	if err != nil {
		t.Fatalf("buildRedeemCall() error = %v", err)
	}
	if to != bnbMainnetContracts.ConditionalTokens[1] {
		t.Errorf("target = %s, want yield-bearing conditional tokens", to.Hex())
	}

	pos.IsNegRisk = true
	to, _, err = buildRedeemCall(&bnbMainnetContracts, pos)
	if err != nil {
		t.Fatalf("buildRedeemCall() error = %v", err)
	}
	if to != bnbMainnetContracts.ConditionalTokens[2] {
		t.Errorf("target = %s, want yb neg-risk conditional tokens", to.Hex())
	}
}

func TestBuildRedeemCallRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *types.Position)
	}{
		{"missing condition id", func(p *types.Position) { p.ConditionID = "" }},
		{"zero index set", func(p *types.Position) { p.OutcomeIndexSet = 0 }},
		{"index set out of range", func(p *types.Position) { p.OutcomeIndexSet = 3 }},
		{"adapter with bad amount", func(p *types.Position) { p.IsNegRisk = true; p.Amount = "lots" }},
		{"adapter with zero amount", func(p *types.Position) { p.IsNegRisk = true; p.Amount = "0" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := testPosition()
			tt.mutate(&pos)
			if _, _, err := buildRedeemCall(&bnbMainnetContracts, pos); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestRedeemWithoutRPC(t *testing.T) {
	c, _ := newTestClient(t, http.NewServeMux())
	if _, err := c.Redeem(context.Background(), testPosition()); !errors.Is(err, types.ErrNotReady) {
		t.Errorf("error = %v, want ErrNotReady", err)
	}
}
