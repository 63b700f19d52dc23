package types

// RedemptionEvent is one settlement claim, either decoded from a
// PayoutRedemption contract event (canonical) or recorded optimistically
// right after a redeem transaction was submitted (local). Merging dedupes by
// transaction hash with on-chain data taking precedence.
type RedemptionEvent struct {
	TransactionHash string           `json:"transactionHash"`
	BlockNumber     uint64           `json:"blockNumber"`
	ConditionID     string           `json:"conditionId"`
	Payout          string           `json:"payout"`
	PayoutFormatted string           `json:"payoutFormatted"`
	MarketTitle     string           `json:"marketTitle,omitempty"`
	OutcomeName     string           `json:"outcomeName,omitempty"`
	Timestamp       int64            `json:"timestamp,omitempty"`
	ContractAddress string           `json:"contractAddress,omitempty"`
	Source          RedemptionSource `json:"source"`
}

// Confirmed reports whether the event has an on-chain block assigned yet.
// Local optimistic entries stay unconfirmed until the scanner sees them.
func (e *RedemptionEvent) Confirmed() bool {
	return e.BlockNumber > 0
}
