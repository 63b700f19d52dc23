package client

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/predictbet/gopredict/predict/types"
)

// reconcileLookupConcurrency bounds the fan-out of lookup-by-hash calls when
// supplementing the remote listing from the local cache.
const reconcileLookupConcurrency = 10

// deriveStatus computes the effective order status. The remote status field
// is not trusted verbatim: a fully consumed order is FILLED no matter what
// the payload claims.
func deriveStatus(amount, amountFilled string, reported types.OrderStatus) types.OrderStatus {
	if isZeroAmount(amount) && isPositiveAmount(amountFilled) {
		return types.OrderStatusFilled
	}
	return reported
}

// isZeroAmount reports whether s is an explicit zero ("0", "0.00", ...).
// A missing or digitless amount is not zero; forcing FILLED on absent data
// would invent fills.
func isZeroAmount(s string) bool {
	hasDigit := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '0':
			hasDigit = true
		case '.':
		default:
			return false
		}
	}
	return hasDigit
}

// isPositiveAmount reports whether s is a decimal number with at least one
// nonzero digit.
func isPositiveAmount(s string) bool {
	positive := false
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '.':
		case s[i] >= '0' && s[i] <= '9':
			if s[i] != '0' {
				positive = true
			}
		default:
			return false
		}
	}
	return positive
}

func toReconciled(rec *types.OrderRecord) types.ReconciledOrder {
	return types.ReconciledOrder{
		ID:           rec.ID,
		Hash:         rec.Order.Hash,
		MarketID:     rec.MarketID,
		Side:         rec.Order.Side,
		Strategy:     rec.Strategy,
		Amount:       rec.Amount,
		AmountFilled: rec.AmountFilled,
		Status:       deriveStatus(rec.Amount, rec.AmountFilled, rec.Status),
		Expiration:   rec.Order.Expiration,
		TokenID:      rec.Order.TokenID,
		MakerAmount:  rec.Order.MakerAmount,
		TakerAmount:  rec.Order.TakerAmount,
	}
}

// mergeOrders builds the reconciled view from the remote listing and the
// local cache entries, with remote records winning on duplicate hashes and
// cache entries back-filling price/creation time. lookup resolves hashes the
// listing omitted; a nil result (not found) is dropped silently.
func mergeOrders(
	ctx context.Context,
	remote []types.OrderRecord,
	cached []types.StoredOrderRecord,
	lookup func(context.Context, string) (*types.OrderRecord, error),
) []types.ReconciledOrder {
	byHash := make(map[string]types.ReconciledOrder, len(remote))
	for i := range remote {
		rec := toReconciled(&remote[i])
		byHash[rec.Hash] = rec
	}

	var missing []types.StoredOrderRecord
	for _, sc := range cached {
		if _, ok := byHash[sc.Hash]; !ok {
			missing = append(missing, sc)
		}
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reconcileLookupConcurrency)
	for _, sc := range missing {
		g.Go(func() error {
			rec, err := lookup(gctx, sc.Hash)
			if err != nil || rec == nil {
				// A hash the remote no longer knows loses its row rather
				// than failing the whole reconciliation.
				return nil
			}
			merged := toReconciled(rec)
			mu.Lock()
			byHash[merged.Hash] = merged
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	// Back-fill from the cache wherever the remote record lacks the field.
	for _, sc := range cached {
		rec, ok := byHash[sc.Hash]
		if !ok {
			continue
		}
		if rec.PricePerShareWei == "" {
			rec.PricePerShareWei = sc.PricePerShareWei
		}
		if rec.CreatedAt == 0 {
			rec.CreatedAt = sc.CreatedAt
		}
		byHash[sc.Hash] = rec
	}

	merged := make([]types.ReconciledOrder, 0, len(byHash))
	for _, rec := range byHash {
		merged = append(merged, rec)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].CreatedAt != merged[j].CreatedAt {
			return merged[i].CreatedAt > merged[j].CreatedAt
		}
		return merged[i].Hash < merged[j].Hash
	})
	return merged
}

// ReconcileOrders merges the remote order listing with the local hash cache
// into a deduplicated, status-corrected view. The operation is idempotent
// and its output ordering is deterministic regardless of response arrival
// order.
func (c *Client) ReconcileOrders(ctx context.Context) ([]types.ReconciledOrder, error) {
	remote, err := c.ListOrders(ctx)
	if err != nil {
		return nil, err
	}

	var cached []types.StoredOrderRecord
	if c.orders != nil {
		cached, err = c.orders.List()
		if err != nil {
			c.log.WithError(err).Warn("order cache unreadable, reconciling remote only")
			cached = nil
		}
	}

	return mergeOrders(ctx, remote, cached, c.GetOrderByHash), nil
}
