package client

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/predictbet/gopredict/predict/types"
)

// The two redeemPositions entry points mirror the two PayoutRedemption
// schemas: the direct conditional-tokens call takes index sets, the neg-risk
// adapter call takes per-outcome amounts.
const ctfRedeemABI = `[
	{"inputs":[{"name":"collateralToken","type":"address"},
	           {"name":"parentCollectionId","type":"bytes32"},
	           {"name":"conditionId","type":"bytes32"},
	           {"name":"indexSets","type":"uint256[]"}],
	 "name":"redeemPositions","outputs":[],
	 "stateMutability":"nonpayable","type":"function"}
]`

const adapterRedeemABI = `[
	{"inputs":[{"name":"conditionId","type":"bytes32"},
	           {"name":"amounts","type":"uint256[]"}],
	 "name":"redeemPositions","outputs":[],
	 "stateMutability":"nonpayable","type":"function"}
]`

// buildRedeemCall packs the redeemPositions calldata for a resolved position
// and picks the conditional-tokens contract to send it to.
func buildRedeemCall(contracts *ContractConfig, pos types.Position) (common.Address, []byte, error) {
	if pos.ConditionID == "" {
		return common.Address{}, nil, fmt.Errorf("position %s has no condition id", pos.ID)
	}
	if pos.OutcomeIndexSet != 1 && pos.OutcomeIndexSet != 2 {
		return common.Address{}, nil, fmt.Errorf("position %s has index set %d, want 1 or 2", pos.ID, pos.OutcomeIndexSet)
	}
	conditionID := common.HexToHash(pos.ConditionID)
	target := contracts.conditionalTokensFor(pos.IsNegRisk, pos.IsYieldBearing)

	if pos.IsNegRisk {
		amount, ok := new(big.Int).SetString(pos.Amount, 10)
		if !ok || amount.Sign() <= 0 {
			return common.Address{}, nil, fmt.Errorf("position %s amount %q: %w", pos.ID, pos.Amount, types.ErrInvalidAmount)
		}
		parsed, err := abi.JSON(strings.NewReader(adapterRedeemABI))
		if err != nil {
			return common.Address{}, nil, fmt.Errorf("parse adapter abi: %w", err)
		}
		amounts := []*big.Int{big.NewInt(0), big.NewInt(0)}
		amounts[pos.OutcomeIndexSet-1] = amount
		data, err := parsed.Pack("redeemPositions", conditionID, amounts)
		if err != nil {
			return common.Address{}, nil, fmt.Errorf("pack redeemPositions: %w", err)
		}
		return target, data, nil
	}

	parsed, err := abi.JSON(strings.NewReader(ctfRedeemABI))
	if err != nil {
		return common.Address{}, nil, fmt.Errorf("parse redeem abi: %w", err)
	}
	var parentCollection [32]byte
	indexSets := []*big.Int{big.NewInt(int64(pos.OutcomeIndexSet))}
	data, err := parsed.Pack("redeemPositions", contracts.Collateral, parentCollection, conditionID, indexSets)
	if err != nil {
		return common.Address{}, nil, fmt.Errorf("pack redeemPositions: %w", err)
	}
	return target, data, nil
}

// Redeem claims a resolved position on chain and records the optimistic
// local entry as soon as the transaction is accepted by the node. The entry
// stays unconfirmed until a later scan observes the mined event.
func (c *Client) Redeem(ctx context.Context, pos types.Position) (common.Hash, error) {
	if c.gate == nil {
		return common.Hash{}, fmt.Errorf("redeem: %w", types.ErrNotReady)
	}
	to, data, err := buildRedeemCall(c.contracts, pos)
	if err != nil {
		return common.Hash{}, err
	}
	txHash, err := c.gate.sendTx(ctx, to, data)
	if err != nil {
		return common.Hash{}, fmt.Errorf("redeem: %w", err)
	}
	c.log.WithField("tx", txHash.Hex()).
		WithField("market", pos.MarketID).
		Info("redemption submitted")

	ev := types.RedemptionEvent{
		TransactionHash: txHash.Hex(),
		ConditionID:     pos.ConditionID,
		Payout:          pos.Amount,
		PayoutFormatted: formatAmountString(pos.Amount),
		MarketTitle:     pos.MarketTitle,
		OutcomeName:     pos.OutcomeName,
		Timestamp:       time.Now().Unix(),
		ContractAddress: to.Hex(),
	}
	if err := c.RecordRedemption(ev); err != nil {
		// The transaction is already out; a later scan still finds it.
		c.log.WithError(err).Warn("failed to record optimistic redemption")
	}
	return txHash, nil
}

func formatAmountString(amount string) string {
	v, ok := new(big.Int).SetString(amount, 10)
	if !ok {
		return ""
	}
	return formatPayout(v)
}
