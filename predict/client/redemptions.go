package client

import (
	"context"
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/predictbet/gopredict/pkg/logger"
	"github.com/predictbet/gopredict/predict/types"
)

const (
	// BNB Chain produces one block every 3 seconds.
	blocksPerDay = 28_800

	defaultLookbackDays  = 90
	defaultMaxBlockRange = 9_999
)

// Two redemption event schemas exist across the conditional-token
// deployments. The direct family indexes the collateral token and parent
// collection; the adapter family indexes the condition id and reports
// per-outcome amounts instead of index sets.
var (
	ctfRedemptionTopic = crypto.Keccak256Hash(
		[]byte("PayoutRedemption(address,address,bytes32,bytes32,uint256[],uint256)"))
	adapterRedemptionTopic = crypto.Keccak256Hash(
		[]byte("PayoutRedemption(address,bytes32,uint256[],uint256)"))
)

// ScanConfig tunes the redemption scanner. Zero values take the defaults.
type ScanConfig struct {
	LookbackDays  int
	MaxBlockRange uint64
}

// chainReader is the slice of the RPC client the scanner needs.
// *ethclient.Client satisfies it.
type chainReader interface {
	BlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]ethtypes.Log, error)
}

// RedemptionScanner recovers PayoutRedemption events for a wallet from chain
// logs. Only the low block-number edge of the scan is bounded; the scan
// always runs to the chain head.
type RedemptionScanner struct {
	eth       chainReader
	chain     types.Chain
	contracts *ContractConfig
	lookback  uint64
	maxRange  uint64
	log       *logrus.Entry
}

// NewRedemptionScanner builds a scanner over the chain's conditional-token
// deployments.
func NewRedemptionScanner(eth chainReader, chain types.Chain, contracts *ContractConfig, cfg ScanConfig) *RedemptionScanner {
	days := cfg.LookbackDays
	if days <= 0 {
		days = defaultLookbackDays
	}
	maxRange := cfg.MaxBlockRange
	if maxRange == 0 {
		maxRange = defaultMaxBlockRange
	}
	return &RedemptionScanner{
		eth:       eth,
		chain:     chain,
		contracts: contracts,
		lookback:  uint64(days) * blocksPerDay,
		maxRange:  maxRange,
		log:       logger.WithComponent("redemption_scanner"),
	}
}

// blockRange is one inclusive [From, To] FilterLogs window.
type blockRange struct {
	From uint64
	To   uint64
}

// chunkRanges partitions [from, to] into inclusive windows at most maxRange
// blocks wide. Every block in the span is covered exactly once.
func chunkRanges(from, to, maxRange uint64) []blockRange {
	if to < from || maxRange == 0 {
		return nil
	}
	var out []blockRange
	for lo := from; lo <= to; {
		hi := lo + maxRange - 1
		if hi > to || hi < lo {
			hi = to
		}
		out = append(out, blockRange{From: lo, To: hi})
		if hi == to {
			break
		}
		lo = hi + 1
	}
	return out
}

// Scan walks the lookback window in chunks and returns every redemption by
// redeemer, newest first. A chunk that fails to fetch is logged and skipped;
// the partial result is still returned together with a wrapped
// ErrPartialScanFailure so callers see both.
func (s *RedemptionScanner) Scan(ctx context.Context, redeemer common.Address) ([]types.RedemptionEvent, error) {
	head, err := s.eth.BlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("latest block: %w", err)
	}
	from := uint64(0)
	if head >= s.lookback {
		from = head - s.lookback + 1
	}

	redeemerTopic := common.BytesToHash(redeemer.Bytes())
	chunks := chunkRanges(from, head, s.maxRange)
	s.log.WithFields(logrus.Fields{
		"from":   from,
		"to":     head,
		"chunks": len(chunks),
	}).Debug("scanning redemption logs")

	var (
		events []types.RedemptionEvent
		failed int
	)
	for _, ch := range chunks {
		logs, err := s.eth.FilterLogs(ctx, ethereum.FilterQuery{
			FromBlock: new(big.Int).SetUint64(ch.From),
			ToBlock:   new(big.Int).SetUint64(ch.To),
			Addresses: s.contracts.ConditionalTokens,
			Topics: [][]common.Hash{
				{ctfRedemptionTopic, adapterRedemptionTopic},
				{redeemerTopic},
			},
		})
		if err != nil {
			failed++
			s.log.WithError(err).WithFields(logrus.Fields{
				"from": ch.From,
				"to":   ch.To,
			}).Warn("log chunk failed, skipping")
			continue
		}
		for i := range logs {
			ev, err := decodeRedemptionLog(&logs[i])
			if err != nil {
				s.log.WithError(err).WithField("tx", logs[i].TxHash.Hex()).Warn("undecodable redemption log")
				continue
			}
			events = append(events, *ev)
		}
	}

	sortRedemptions(events)
	if failed > 0 {
		return events, fmt.Errorf("%d of %d chunks failed: %w", failed, len(chunks), types.ErrPartialScanFailure)
	}
	return events, nil
}

// ScanMerged runs Scan and folds the result together with locally recorded
// redemptions that have not been observed on chain yet.
func (s *RedemptionScanner) ScanMerged(ctx context.Context, redeemer common.Address, local []types.RedemptionEvent) ([]types.RedemptionEvent, error) {
	onchain, err := s.Scan(ctx, redeemer)
	merged := mergeRedemptions(onchain, local)
	return merged, err
}

func decodeRedemptionLog(lg *ethtypes.Log) (*types.RedemptionEvent, error) {
	if len(lg.Topics) == 0 {
		return nil, fmt.Errorf("log without topics")
	}
	switch lg.Topics[0] {
	case ctfRedemptionTopic:
		return decodeCTFRedemption(lg)
	case adapterRedemptionTopic:
		return decodeAdapterRedemption(lg)
	default:
		return nil, fmt.Errorf("unexpected topic %s", lg.Topics[0].Hex())
	}
}

// decodeCTFRedemption handles the direct conditional-tokens schema:
// indexed (redeemer, collateralToken, parentCollectionId),
// data (conditionId, indexSets[], payout).
func decodeCTFRedemption(lg *ethtypes.Log) (*types.RedemptionEvent, error) {
	if len(lg.Topics) < 4 {
		return nil, fmt.Errorf("short topic list: %d", len(lg.Topics))
	}
	if len(lg.Data) < 32*4 {
		return nil, fmt.Errorf("short data: %d bytes", len(lg.Data))
	}
	// Data head: conditionId, offset of indexSets, payout. The array tail
	// follows the head and is not needed here.
	conditionID := common.BytesToHash(lg.Data[:32])
	payout := new(big.Int).SetBytes(lg.Data[64:96])
	return newRedemptionEvent(lg, conditionID, payout), nil
}

// decodeAdapterRedemption handles the neg-risk adapter schema:
// indexed (redeemer, conditionId), data (amounts[], payout).
func decodeAdapterRedemption(lg *ethtypes.Log) (*types.RedemptionEvent, error) {
	if len(lg.Topics) < 3 {
		return nil, fmt.Errorf("short topic list: %d", len(lg.Topics))
	}
	if len(lg.Data) < 32*2 {
		return nil, fmt.Errorf("short data: %d bytes", len(lg.Data))
	}
	// Data head: offset of amounts, payout.
	conditionID := lg.Topics[2]
	payout := new(big.Int).SetBytes(lg.Data[32:64])
	return newRedemptionEvent(lg, conditionID, payout), nil
}

func newRedemptionEvent(lg *ethtypes.Log, conditionID common.Hash, payout *big.Int) *types.RedemptionEvent {
	return &types.RedemptionEvent{
		TransactionHash: lg.TxHash.Hex(),
		BlockNumber:     lg.BlockNumber,
		ConditionID:     conditionID.Hex(),
		Payout:          payout.String(),
		PayoutFormatted: formatPayout(payout),
		ContractAddress: lg.Address.Hex(),
		Source:          types.RedemptionSourceOnchain,
	}
}

// formatPayout renders a wei-scale payout as a human decimal string.
func formatPayout(payout *big.Int) string {
	return decimal.NewFromBigInt(payout, -CollateralTokenDecimals).String()
}

// mergeRedemptions folds the optimistic local cache into the on-chain
// result. Duplicates by transaction hash resolve to the on-chain record;
// locals that never confirmed stay in the list, sorted ahead of everything
// else by timestamp.
func mergeRedemptions(onchain, local []types.RedemptionEvent) []types.RedemptionEvent {
	seen := make(map[string]struct{}, len(onchain))
	merged := make([]types.RedemptionEvent, 0, len(onchain)+len(local))
	for _, ev := range onchain {
		seen[ev.TransactionHash] = struct{}{}
		merged = append(merged, ev)
	}
	for _, ev := range local {
		if _, dup := seen[ev.TransactionHash]; dup {
			continue
		}
		merged = append(merged, ev)
	}
	sortRedemptions(merged)
	return merged
}

// sortRedemptions orders unconfirmed local entries first (newest timestamp
// first), then confirmed entries by descending block number.
func sortRedemptions(events []types.RedemptionEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.Confirmed() != b.Confirmed() {
			return !a.Confirmed()
		}
		if !a.Confirmed() {
			return a.Timestamp > b.Timestamp
		}
		if a.BlockNumber != b.BlockNumber {
			return a.BlockNumber > b.BlockNumber
		}
		return a.TransactionHash < b.TransactionHash
	})
}

// ScanRedemptions is the Client entry point: scans for the signer's wallet
// and merges in the optimistic local redemption cache.
func (c *Client) ScanRedemptions(ctx context.Context) ([]types.RedemptionEvent, error) {
	if c.scanner == nil {
		return nil, fmt.Errorf("redemption scan: %w", types.ErrNotReady)
	}
	var local []types.RedemptionEvent
	if c.redemptions != nil {
		cached, err := c.redemptions.List()
		if err != nil {
			c.log.WithError(err).Warn("redemption cache unreadable, scanning chain only")
		} else {
			local = cached
		}
	}
	return c.scanner.ScanMerged(ctx, c.signer.Address(), local)
}

// RecordRedemption appends an optimistic local redemption entry, typically
// right after a redeem transaction is sent and before it is mined.
func (c *Client) RecordRedemption(ev types.RedemptionEvent) error {
	if c.redemptions == nil {
		return nil
	}
	return c.redemptions.Add(ev)
}
