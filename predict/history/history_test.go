package history

import (
	"fmt"
	"testing"

	"github.com/predictbet/gopredict/pkg/store"
	"github.com/predictbet/gopredict/predict/types"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.Open(store.Options{InMemory: true})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOrderHistoryAddAndList(t *testing.T) {
	h := NewOrderHistory(newTestStore(t))

	for i := 0; i < 3; i++ {
		err := h.Add(types.StoredOrderRecord{
			Hash:      fmt.Sprintf("0x%02d", i),
			MarketID:  int64(i),
			CreatedAt: int64(1000 + i),
		})
		if err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}

	records, err := h.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len = %d, want 3", len(records))
	}
	// Most recent first.
	if records[0].Hash != "0x02" || records[2].Hash != "0x00" {
		t.Errorf("order = %s..%s, want newest first", records[0].Hash, records[2].Hash)
	}
}

func TestOrderHistoryDeduplicates(t *testing.T) {
	h := NewOrderHistory(newTestStore(t))

	rec := types.StoredOrderRecord{Hash: "0xaaa", MarketID: 1, CreatedAt: 100}
	if err := h.Add(rec); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	rec.CreatedAt = 200
	if err := h.Add(rec); err != nil {
		t.Fatalf("Add() duplicate error = %v", err)
	}

	records, err := h.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len = %d, want 1", len(records))
	}
	if records[0].CreatedAt != 100 {
		t.Errorf("first write wins: createdAt = %d, want 100", records[0].CreatedAt)
	}
}

func TestOrderHistoryEvictsBeyondCap(t *testing.T) {
	h := NewOrderHistory(newTestStore(t))

	for i := 0; i < MaxOrderRecords+10; i++ {
		err := h.Add(types.StoredOrderRecord{Hash: fmt.Sprintf("0x%03d", i)})
		if err != nil {
			t.Fatalf("Add(%d) error = %v", i, err)
		}
	}

	records, err := h.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != MaxOrderRecords {
		t.Fatalf("len = %d, want cap %d", len(records), MaxOrderRecords)
	}
	if records[0].Hash != fmt.Sprintf("0x%03d", MaxOrderRecords+9) {
		t.Errorf("newest = %s, want last added", records[0].Hash)
	}
	// The ten oldest have been evicted.
	for _, r := range records {
		if r.Hash == "0x000" {
			t.Error("oldest record survived eviction")
		}
	}
}

func TestOrderHistoryRemove(t *testing.T) {
	h := NewOrderHistory(newTestStore(t))

	h.Add(types.StoredOrderRecord{Hash: "0xaaa"})
	h.Add(types.StoredOrderRecord{Hash: "0xbbb"})
	if err := h.Remove("0xaaa"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	records, err := h.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 1 || records[0].Hash != "0xbbb" {
		t.Errorf("records = %+v, want only 0xbbb", records)
	}
}

func TestRedemptionHistoryForcesLocalSource(t *testing.T) {
	h := NewRedemptionHistory(newTestStore(t))

	err := h.Add(types.RedemptionEvent{
		TransactionHash: "0x1",
		Source:          types.RedemptionSourceOnchain,
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	events, err := h.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("len = %d, want 1", len(events))
	}
	if events[0].Source != types.RedemptionSourceLocal {
		t.Errorf("source = %s, want local", events[0].Source)
	}
}

func TestRedemptionHistoryDedupeAndCap(t *testing.T) {
	h := NewRedemptionHistory(newTestStore(t))

	for i := 0; i < MaxRedemptionRecords+5; i++ {
		err := h.Add(types.RedemptionEvent{TransactionHash: fmt.Sprintf("0x%03d", i)})
		if err != nil {
			t.Fatalf("Add(%d) error = %v", i, err)
		}
	}
	// Duplicate of the newest is a no-op.
	if err := h.Add(types.RedemptionEvent{TransactionHash: fmt.Sprintf("0x%03d", MaxRedemptionRecords+4)}); err != nil {
		t.Fatalf("Add() duplicate error = %v", err)
	}

	events, err := h.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(events) != MaxRedemptionRecords {
		t.Errorf("len = %d, want cap %d", len(events), MaxRedemptionRecords)
	}
}

func TestHistoryEmptyStore(t *testing.T) {
	s := newTestStore(t)

	orders, err := NewOrderHistory(s).List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(orders) != 0 {
		t.Errorf("orders = %+v, want empty", orders)
	}

	events, err := NewRedemptionHistory(s).List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(events) != 0 {
		t.Errorf("events = %+v, want empty", events)
	}
}
