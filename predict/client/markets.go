package client

import (
	"context"
	"fmt"

	"github.com/predictbet/gopredict/predict/types"
)

// GetMarket fetches one market's metadata (outcome token ids, fee rate,
// variant flags) for order construction.
func (c *Client) GetMarket(ctx context.Context, id int64) (*types.Market, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	var out types.MarketResponse
	resp, err := c.newRequest(ctx).SetResult(&out).Get(endpointMarketByID(id))
	if err != nil {
		return nil, fmt.Errorf("get market %d: %w", id, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("get market %d: %w", id, apiError(resp))
	}
	return &out.Data, nil
}

// ListPositions fetches the caller's positions, flattened for the redemption
// path.
func (c *Client) ListPositions(ctx context.Context) ([]types.Position, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	var out types.PositionsResponse
	resp, err := c.newRequest(ctx).SetResult(&out).Get(EndpointPositions)
	if err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("list positions: %w", apiError(resp))
	}

	positions := make([]types.Position, 0, len(out.Data))
	for _, p := range out.Data {
		positions = append(positions, types.Position{
			ID:              p.ID,
			MarketID:        p.Market.ID,
			MarketTitle:     p.Market.Title,
			OutcomeName:     p.Outcome.Name,
			OutcomeIndexSet: p.Outcome.IndexSet,
			OutcomeStatus:   p.Outcome.Status,
			Amount:          p.Amount,
			ValueUsd:        p.ValueUsd,
			ConditionID:     p.Market.ConditionID,
			IsNegRisk:       p.Market.IsNegRisk,
			IsYieldBearing:  p.Market.IsYieldBearing,
		})
	}
	return positions, nil
}
