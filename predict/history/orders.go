// Package history implements the engine's two bounded local caches: order
// hashes recorded at submission time and optimistic redemption records. Each
// cache is a flat JSON blob under a well-known key in an injected KV store,
// updated by atomic whole-blob read-modify-write.
package history

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/predictbet/gopredict/pkg/store"
	"github.com/predictbet/gopredict/predict/types"
)

const (
	orderHistoryKey = "order_history"
	// MaxOrderRecords bounds the order-hash ring; oldest entries are evicted
	// first.
	MaxOrderRecords = 100
)

// OrderHistory is the local order-hash cache. Records are written once after
// a submission is accepted remotely, never mutated.
type OrderHistory struct {
	store store.Store
	mu    sync.Mutex
}

// NewOrderHistory wraps a store handle.
func NewOrderHistory(s store.Store) *OrderHistory {
	return &OrderHistory{store: s}
}

// Add prepends a record, deduplicating by hash and evicting beyond the cap.
func (h *OrderHistory) Add(rec types.StoredOrderRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	records, err := h.load()
	if err != nil {
		return err
	}
	for _, r := range records {
		if r.Hash == rec.Hash {
			return nil
		}
	}
	records = append([]types.StoredOrderRecord{rec}, records...)
	if len(records) > MaxOrderRecords {
		records = records[:MaxOrderRecords]
	}
	return h.save(records)
}

// Remove drops a record by hash.
func (h *OrderHistory) Remove(hash string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	records, err := h.load()
	if err != nil {
		return err
	}
	kept := records[:0]
	for _, r := range records {
		if r.Hash != hash {
			kept = append(kept, r)
		}
	}
	return h.save(kept)
}

// List returns the cached records, most recent first.
func (h *OrderHistory) List() ([]types.StoredOrderRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.load()
}

func (h *OrderHistory) load() ([]types.StoredOrderRecord, error) {
	blob, found, err := h.store.Get(orderHistoryKey)
	if err != nil {
		return nil, fmt.Errorf("read order history: %w", err)
	}
	if !found {
		return nil, nil
	}
	var records []types.StoredOrderRecord
	if err := json.Unmarshal(blob, &records); err != nil {
		return nil, fmt.Errorf("decode order history: %w", err)
	}
	return records, nil
}

func (h *OrderHistory) save(records []types.StoredOrderRecord) error {
	blob, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode order history: %w", err)
	}
	return h.store.Set(orderHistoryKey, blob)
}
