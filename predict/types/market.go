package types

// MarketOutcome is one leg of a binary market. OnChainID is the ERC-1155
// position id (decimal string) traded on the exchange.
type MarketOutcome struct {
	Name      string `json:"name"`
	IndexSet  int    `json:"indexSet"`
	Status    string `json:"status"`
	OnChainID string `json:"onChainId"`
}

// Market is the /v1/markets record, trimmed to what order construction and
// settlement need.
type Market struct {
	ID             int64           `json:"id"`
	Title          string          `json:"title"`
	Question       string          `json:"question"`
	Status         string          `json:"status"`
	ConditionID    string          `json:"conditionId"`
	IsNegRisk      bool            `json:"isNegRisk"`
	IsYieldBearing bool            `json:"isYieldBearing"`
	FeeRateBps     int             `json:"feeRateBps"`
	Outcomes       []MarketOutcome `json:"outcomes"`
}

// TokenID returns the on-chain token id for an outcome, or
// ErrMissingTokenID when the metadata is incomplete.
func (m *Market) TokenID(outcome Outcome) (string, error) {
	idx := outcome.Index()
	if idx >= len(m.Outcomes) || m.Outcomes[idx].OnChainID == "" {
		return "", ErrMissingTokenID
	}
	return m.Outcomes[idx].OnChainID, nil
}

// MarketResponse is the GET /v1/markets/{id} envelope.
type MarketResponse struct {
	Success bool   `json:"success"`
	Data    Market `json:"data"`
}

// Position is a settled or open outcome holding, as returned by
// GET /v1/positions and flattened for the redemption path.
type Position struct {
	ID              string `json:"id"`
	MarketID        int64  `json:"marketId"`
	MarketTitle     string `json:"marketTitle"`
	OutcomeName     string `json:"outcomeName"`
	OutcomeIndexSet int    `json:"outcomeIndexSet"`
	OutcomeStatus   string `json:"outcomeStatus"`
	Amount          string `json:"amount"`
	ValueUsd        string `json:"valueUsd"`
	ConditionID     string `json:"conditionId"`
	IsNegRisk       bool   `json:"isNegRisk"`
	IsYieldBearing  bool   `json:"isYieldBearing"`
}

// PositionsResponse is the GET /v1/positions envelope. The nested wire shape
// is flattened into Position by the client.
type PositionsResponse struct {
	Success bool `json:"success"`
	Data    []struct {
		ID     string `json:"id"`
		Market struct {
			ID             int64  `json:"id"`
			Title          string `json:"title"`
			ConditionID    string `json:"conditionId"`
			IsNegRisk      bool   `json:"isNegRisk"`
			IsYieldBearing bool   `json:"isYieldBearing"`
		} `json:"market"`
		Outcome struct {
			Name     string `json:"name"`
			IndexSet int    `json:"indexSet"`
			Status   string `json:"status"`
		} `json:"outcome"`
		Amount   string `json:"amount"`
		ValueUsd string `json:"valueUsd"`
	} `json:"data"`
}
