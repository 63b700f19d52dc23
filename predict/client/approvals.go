package client

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sirupsen/logrus"

	"github.com/predictbet/gopredict/pkg/logger"
	"github.com/predictbet/gopredict/predict/signing"
	"github.com/predictbet/gopredict/predict/types"
)

// ApprovalState is the gate's position in the two-approval sequence.
type ApprovalState int

const (
	StateUnchecked ApprovalState = iota
	StateNeedsToken
	StateNeedsOperator
	StateNeedsBoth
	StateReady
)

func (s ApprovalState) String() string {
	switch s {
	case StateNeedsToken:
		return "needs_token"
	case StateNeedsOperator:
		return "needs_operator"
	case StateNeedsBoth:
		return "needs_both"
	case StateReady:
		return "ready"
	default:
		return "unchecked"
	}
}

const erc20ABI = `[
	{"inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],
	 "name":"allowance","outputs":[{"name":"","type":"uint256"}],
	 "stateMutability":"view","type":"function"},
	{"inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],
	 "name":"approve","outputs":[{"name":"","type":"bool"}],
	 "stateMutability":"nonpayable","type":"function"}
]`

const erc1155ABI = `[
	{"inputs":[{"name":"owner","type":"address"},{"name":"operator","type":"address"}],
	 "name":"isApprovedForAll","outputs":[{"name":"","type":"bool"}],
	 "stateMutability":"view","type":"function"},
	{"inputs":[{"name":"operator","type":"address"},{"name":"approved","type":"bool"}],
	 "name":"setApprovalForAll","outputs":[],
	 "stateMutability":"nonpayable","type":"function"}
]`

var (
	maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	// allowanceThreshold is half of max uint256; a spent-down unlimited
	// approval still clears it, a fresh finite approval will not for long.
	allowanceThreshold = new(big.Int).Rsh(maxUint256, 1)
)

// approvalSettleDelay is how long to wait after sending an approval tx
// before re-reading state. The gate deliberately does not wait for a receipt.
const approvalSettleDelay = 3 * time.Second

// keyedSigner is a Signer that can also sign raw transactions.
type keyedSigner interface {
	Key() *ecdsa.PrivateKey
}

// ApprovalGate sequences the two on-chain approvals an exchange variant
// needs before it may pull funds: the ERC-20 collateral allowance and the
// ERC-1155 conditional-tokens operator approval. Order submission is refused
// until the gate reports Ready. Approval failures leave no order state
// behind.
type ApprovalGate struct {
	eth       *ethclient.Client
	chainID   *big.Int
	contracts *ContractConfig
	signer    signing.Signer
	owner     common.Address
	erc20     abi.ABI
	erc1155   abi.ABI
	settle    time.Duration
	log       *logrus.Entry
}

// NewApprovalGate builds a gate for one owner on one chain.
func NewApprovalGate(eth *ethclient.Client, chain types.Chain, contracts *ContractConfig, signer signing.Signer) *ApprovalGate {
	erc20, _ := abi.JSON(strings.NewReader(erc20ABI))
	erc1155, _ := abi.JSON(strings.NewReader(erc1155ABI))
	return &ApprovalGate{
		eth:       eth,
		chainID:   big.NewInt(int64(chain)),
		contracts: contracts,
		signer:    signer,
		owner:     signer.Address(),
		erc20:     erc20,
		erc1155:   erc1155,
		settle:    approvalSettleDelay,
		log:       logger.WithComponent("approval_gate"),
	}
}

// deriveState folds the two on-chain reads into one gate state.
func deriveState(allowance *big.Int, operatorApproved bool) ApprovalState {
	needsToken := allowance == nil || allowance.Cmp(allowanceThreshold) < 0
	switch {
	case needsToken && !operatorApproved:
		return StateNeedsBoth
	case needsToken:
		return StateNeedsToken
	case !operatorApproved:
		return StateNeedsOperator
	default:
		return StateReady
	}
}

// conditionalTokensFor picks the conditional-tokens contract matching an
// exchange variant. The standard contract also serves neg-risk markets via
// the adapter.
func (c *ContractConfig) conditionalTokensFor(isNegRisk, isYieldBearing bool) common.Address {
	switch {
	case isYieldBearing && isNegRisk:
		return c.ConditionalTokens[2]
	case isYieldBearing:
		return c.ConditionalTokens[1]
	default:
		return c.ConditionalTokens[0]
	}
}

// Check reads the current allowance and operator approval for a variant's
// exchange and derives the gate state.
func (g *ApprovalGate) Check(ctx context.Context, isNegRisk, isYieldBearing bool) (ApprovalState, error) {
	exchange, err := g.contracts.ExchangeFor(isNegRisk, isYieldBearing)
	if err != nil {
		return StateUnchecked, err
	}

	allowance, err := g.readAllowance(ctx, exchange)
	if err != nil {
		return StateUnchecked, fmt.Errorf("read allowance: %w", err)
	}
	approved, err := g.readOperatorApproval(ctx, g.contracts.conditionalTokensFor(isNegRisk, isYieldBearing), exchange)
	if err != nil {
		return StateUnchecked, fmt.Errorf("read operator approval: %w", err)
	}
	return deriveState(allowance, approved), nil
}

// Require returns ErrNotReady unless both approvals are in place.
func (g *ApprovalGate) Require(ctx context.Context, isNegRisk, isYieldBearing bool) error {
	state, err := g.Check(ctx, isNegRisk, isYieldBearing)
	if err != nil {
		return err
	}
	if state != StateReady {
		return fmt.Errorf("approval state %s: %w", state, types.ErrNotReady)
	}
	return nil
}

// ApproveToken grants the exchange an unlimited collateral allowance, waits
// the settle delay and re-reads state.
func (g *ApprovalGate) ApproveToken(ctx context.Context, isNegRisk, isYieldBearing bool) (ApprovalState, error) {
	exchange, err := g.contracts.ExchangeFor(isNegRisk, isYieldBearing)
	if err != nil {
		return StateUnchecked, err
	}
	data, err := g.erc20.Pack("approve", exchange, maxUint256)
	if err != nil {
		return StateUnchecked, fmt.Errorf("%w: pack approve: %v", types.ErrApprovalFailed, err)
	}
	txHash, err := g.sendTx(ctx, g.contracts.Collateral, data)
	if err != nil {
		return StateUnchecked, fmt.Errorf("%w: %v", types.ErrApprovalFailed, err)
	}
	g.log.WithField("tx", txHash.Hex()).Info("collateral approval submitted")

	g.waitSettle(ctx)
	return g.Check(ctx, isNegRisk, isYieldBearing)
}

// ApproveOperator grants the exchange operator rights on the variant's
// conditional-tokens contract, waits the settle delay and re-reads state.
func (g *ApprovalGate) ApproveOperator(ctx context.Context, isNegRisk, isYieldBearing bool) (ApprovalState, error) {
	exchange, err := g.contracts.ExchangeFor(isNegRisk, isYieldBearing)
	if err != nil {
		return StateUnchecked, err
	}
	data, err := g.erc1155.Pack("setApprovalForAll", exchange, true)
	if err != nil {
		return StateUnchecked, fmt.Errorf("%w: pack setApprovalForAll: %v", types.ErrApprovalFailed, err)
	}
	ct := g.contracts.conditionalTokensFor(isNegRisk, isYieldBearing)
	txHash, err := g.sendTx(ctx, ct, data)
	if err != nil {
		return StateUnchecked, fmt.Errorf("%w: %v", types.ErrApprovalFailed, err)
	}
	g.log.WithField("tx", txHash.Hex()).Info("operator approval submitted")

	g.waitSettle(ctx)
	return g.Check(ctx, isNegRisk, isYieldBearing)
}

// EnsureReady runs whichever approvals the current state demands and returns
// the final state. A failed approval halts the sequence.
func (g *ApprovalGate) EnsureReady(ctx context.Context, isNegRisk, isYieldBearing bool) (ApprovalState, error) {
	state, err := g.Check(ctx, isNegRisk, isYieldBearing)
	if err != nil {
		return state, err
	}
	if state == StateNeedsToken || state == StateNeedsBoth {
		if state, err = g.ApproveToken(ctx, isNegRisk, isYieldBearing); err != nil {
			return state, err
		}
	}
	if state == StateNeedsOperator || state == StateNeedsBoth {
		if state, err = g.ApproveOperator(ctx, isNegRisk, isYieldBearing); err != nil {
			return state, err
		}
	}
	return state, nil
}

func (g *ApprovalGate) readAllowance(ctx context.Context, exchange common.Address) (*big.Int, error) {
	data, err := g.erc20.Pack("allowance", g.owner, exchange)
	if err != nil {
		return nil, err
	}
	collateral := g.contracts.Collateral
	result, err := g.eth.CallContract(ctx, ethereum.CallMsg{To: &collateral, Data: data}, nil)
	if err != nil {
		return nil, err
	}
	var allowance *big.Int
	if err := g.erc20.UnpackIntoInterface(&allowance, "allowance", result); err != nil {
		return nil, err
	}
	return allowance, nil
}

func (g *ApprovalGate) readOperatorApproval(ctx context.Context, ct, exchange common.Address) (bool, error) {
	data, err := g.erc1155.Pack("isApprovedForAll", g.owner, exchange)
	if err != nil {
		return false, err
	}
	result, err := g.eth.CallContract(ctx, ethereum.CallMsg{To: &ct, Data: data}, nil)
	if err != nil {
		return false, err
	}
	var approved bool
	if err := g.erc1155.UnpackIntoInterface(&approved, "isApprovedForAll", result); err != nil {
		return false, err
	}
	return approved, nil
}

// sendTx builds, signs and broadcasts one contract call.
func (g *ApprovalGate) sendTx(ctx context.Context, to common.Address, data []byte) (common.Hash, error) {
	keyed, ok := g.signer.(keyedSigner)
	if !ok {
		return common.Hash{}, fmt.Errorf("signer cannot sign raw transactions")
	}

	nonce, err := g.eth.PendingNonceAt(ctx, g.owner)
	if err != nil {
		return common.Hash{}, fmt.Errorf("nonce: %w", err)
	}
	gasPrice, err := g.eth.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("gas price: %w", err)
	}
	gasLimit, err := g.eth.EstimateGas(ctx, ethereum.CallMsg{
		From: g.owner,
		To:   &to,
		Data: data,
	})
	if err != nil {
		return common.Hash{}, fmt.Errorf("estimate gas: %w", err)
	}

	tx := ethtypes.NewTransaction(nonce, to, big.NewInt(0), gasLimit, gasPrice, data)
	signedTx, err := ethtypes.SignTx(tx, ethtypes.NewEIP155Signer(g.chainID), keyed.Key())
	if err != nil {
		return common.Hash{}, fmt.Errorf("sign tx: %w", err)
	}
	if err := g.eth.SendTransaction(ctx, signedTx); err != nil {
		return common.Hash{}, fmt.Errorf("send tx: %w", err)
	}
	return signedTx.Hash(), nil
}

func (g *ApprovalGate) waitSettle(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(g.settle):
	}
}
