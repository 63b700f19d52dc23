package history

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/predictbet/gopredict/pkg/store"
	"github.com/predictbet/gopredict/predict/types"
)

const (
	redemptionHistoryKey = "redemption_history"
	// MaxRedemptionRecords bounds the redemption cache.
	MaxRedemptionRecords = 50
)

// RedemptionHistory is the optimistic local redemption cache. Entries are
// appended by the redemption caller right after a successful redeem call,
// before on-chain confirmation; the scanner only reads it.
type RedemptionHistory struct {
	store store.Store
	mu    sync.Mutex
}

// NewRedemptionHistory wraps a store handle.
func NewRedemptionHistory(s store.Store) *RedemptionHistory {
	return &RedemptionHistory{store: s}
}

// Add prepends an event, deduplicating by transaction hash and evicting
// beyond the cap. The source is forced to local; canonical entries come from
// the chain, not this cache.
func (h *RedemptionHistory) Add(ev types.RedemptionEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	events, err := h.load()
	if err != nil {
		return err
	}
	for _, e := range events {
		if e.TransactionHash == ev.TransactionHash {
			return nil
		}
	}
	ev.Source = types.RedemptionSourceLocal
	events = append([]types.RedemptionEvent{ev}, events...)
	if len(events) > MaxRedemptionRecords {
		events = events[:MaxRedemptionRecords]
	}
	return h.save(events)
}

// List returns the cached events, most recent first.
func (h *RedemptionHistory) List() ([]types.RedemptionEvent, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.load()
}

func (h *RedemptionHistory) load() ([]types.RedemptionEvent, error) {
	blob, found, err := h.store.Get(redemptionHistoryKey)
	if err != nil {
		return nil, fmt.Errorf("read redemption history: %w", err)
	}
	if !found {
		return nil, nil
	}
	var events []types.RedemptionEvent
	if err := json.Unmarshal(blob, &events); err != nil {
		return nil, fmt.Errorf("decode redemption history: %w", err)
	}
	return events, nil
}

func (h *RedemptionHistory) save(events []types.RedemptionEvent) error {
	blob, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("encode redemption history: %w", err)
	}
	return h.store.Set(redemptionHistoryKey, blob)
}
