package client

import (
	"context"
	"fmt"
	"time"

	"github.com/predictbet/gopredict/predict/signing"
	"github.com/predictbet/gopredict/predict/types"
)

// defaultMarketSlippageBps is applied to MARKET orders when the caller gives
// no slippage.
const defaultMarketSlippageBps = "200"

// PlaceOrder runs the full submission path: approval gate, canonical build,
// digest + signature, REST submission, and only after remote acceptance the
// local hash-cache write. Any construction error prevents the signing
// request; any signing or submission error leaves no local state.
func (c *Client) PlaceOrder(ctx context.Context, intent OrderIntent) (*types.SignedOrder, error) {
	if intent.Market == nil {
		return nil, fmt.Errorf("nil market: %w", types.ErrMissingTokenID)
	}
	if c.gate != nil {
		if err := c.gate.Require(ctx, intent.Market.IsNegRisk, intent.Market.IsYieldBearing); err != nil {
			return nil, err
		}
	}

	order, domain, err := c.builder.Build(intent)
	if err != nil {
		return nil, err
	}
	signed, err := signing.SignOrder(ctx, c.signer, domain, order)
	if err != nil {
		return nil, err
	}

	priceWei, err := PriceWei(intent.Price)
	if err != nil {
		return nil, err
	}

	strategy := intent.Strategy
	if strategy == "" {
		strategy = types.StrategyLimit
	}
	req := types.CreateOrderRequest{Data: types.CreateOrderData{
		Order:         signed,
		PricePerShare: priceWei.String(),
		Strategy:      strategy,
	}}
	if strategy == types.StrategyMarket {
		req.Data.SlippageBps = intent.SlippageBps
		if req.Data.SlippageBps == "" {
			req.Data.SlippageBps = defaultMarketSlippageBps
		}
	}

	if err := c.submit(ctx, req); err != nil {
		return nil, err
	}

	if c.orders != nil {
		if err := c.orders.Add(types.StoredOrderRecord{
			Hash:             signed.Hash,
			MarketID:         intent.Market.ID,
			PricePerShareWei: priceWei.String(),
			CreatedAt:        time.Now().UnixMilli(),
		}); err != nil {
			// The order is accepted remotely; a cache miss only degrades
			// later reconciliation.
			c.log.WithError(err).Warn("failed to cache order hash")
		}
	}

	c.log.WithField("hash", signed.Hash).
		WithField("market", intent.Market.ID).
		WithField("side", intent.Side).
		Info("order accepted")
	return signed, nil
}

func (c *Client) submit(ctx context.Context, req types.CreateOrderRequest) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	var out types.CreateOrderResponse
	resp, err := c.newRequest(ctx).SetBody(req).SetResult(&out).Post(EndpointOrders)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrSubmissionRejected, err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("%w: %v", types.ErrSubmissionRejected, apiError(resp))
	}
	if !out.Success || out.Data.Code != "OK" {
		return fmt.Errorf("%w: code=%q error=%q", types.ErrSubmissionRejected, out.Data.Code, out.Error)
	}
	return nil
}

// ListOrders fetches the remote order listing. The listing is authoritative
// but omits market orders; ReconcileOrders supplements it from the local
// cache.
func (c *Client) ListOrders(ctx context.Context) ([]types.OrderRecord, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	var out types.OrdersResponse
	resp, err := c.newRequest(ctx).SetResult(&out).Get(EndpointOrders)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("list orders: %w", apiError(resp))
	}
	return out.Data, nil
}

// GetOrderByHash fetches a single order via the lookup-by-hash endpoint.
func (c *Client) GetOrderByHash(ctx context.Context, hash string) (*types.OrderRecord, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	var out types.OrderResponse
	resp, err := c.newRequest(ctx).SetResult(&out).Get(endpointOrderByHash(hash))
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", hash, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("get order %s: %w", hash, apiError(resp))
	}
	return &out.Data, nil
}

// CancelOrders cancels orders by hash.
func (c *Client) CancelOrders(ctx context.Context, hashes []string) ([]string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	var req types.CancelOrdersRequest
	req.Data.OrderHashes = hashes
	var out types.CancelOrdersResponse
	resp, err := c.newRequest(ctx).SetBody(req).SetResult(&out).Post(EndpointCancelOrders)
	if err != nil {
		return nil, fmt.Errorf("cancel orders: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("cancel orders: %w", apiError(resp))
	}

	// A cancelled hash has nothing left to reconcile; drop it from the cache.
	if c.orders != nil {
		for _, hash := range out.Data.Cancelled {
			if err := c.orders.Remove(hash); err != nil {
				c.log.WithError(err).WithField("hash", hash).Warn("failed to evict cancelled order from cache")
			}
		}
	}
	return out.Data.Cancelled, nil
}
