package peertable

import (
	"math/rand"
	"testing"
	"time"
)

func newTable(limit int) *Table {
	return New(limit, rand.New(rand.NewSource(42)))
}

func TestTouch_InsertsAndUpdates(t *testing.T) {
	tb := newTable(10)
	now := time.Now()
	tb.Touch("127.0.0.1:9000", "node-a", now)
	if tb.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", tb.Len())
	}

	later := now.Add(time.Second)
	tb.Touch("127.0.0.1:9000", "", later)
	rec, ok := tb.Get("127.0.0.1:9000")
	if !ok {
		t.Fatal("expected record to exist")
	}
	if rec.NodeID != "node-a" {
		t.Fatalf("NodeID = %q, want node-a (empty nodeID must not overwrite)", rec.NodeID)
	}
	if !rec.LastSeen.Equal(later) {
		t.Fatalf("LastSeen not refreshed")
	}
}

func TestTouch_EvictsLRUOnOverflow(t *testing.T) {
	tb := newTable(2)
	now := time.Now()
	tb.Touch("a", "a", now)
	tb.Touch("b", "b", now.Add(time.Second))
	if tb.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", tb.Len())
	}

	tb.Touch("c", "c", now.Add(2*time.Second))
	if tb.Len() != 2 {
		t.Fatalf("Len() after overflow = %d, want 2 (cap enforced)", tb.Len())
	}
	if _, ok := tb.Get("a"); ok {
		t.Fatal("expected LRU entry 'a' to be evicted")
	}
	if _, ok := tb.Get("c"); !ok {
		t.Fatal("expected new entry 'c' to be present")
	}
}

func TestRemove_Idempotent(t *testing.T) {
	tb := newTable(10)
	tb.Touch("a", "a", time.Now())
	tb.Remove("a")
	tb.Remove("a") // must not panic
	if tb.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", tb.Len())
	}
}

func TestSample_BoundedByPoolSize(t *testing.T) {
	tb := newTable(10)
	now := time.Now()
	for _, addr := range []string{"a", "b", "c"} {
		tb.Touch(addr, addr, now)
	}

	got := tb.Sample(5, nil)
	if len(got) != 3 {
		t.Fatalf("Sample(5) with 3 peers = %d, want 3", len(got))
	}
}

func TestSample_ExcludesGivenAddrs(t *testing.T) {
	tb := newTable(10)
	now := time.Now()
	for _, addr := range []string{"a", "b", "c"} {
		tb.Touch(addr, addr, now)
	}

	got := tb.Sample(3, map[string]bool{"a": true})
	for _, rec := range got {
		if rec.Addr == "a" {
			t.Fatal("excluded address returned by Sample")
		}
	}
	if len(got) != 2 {
		t.Fatalf("len(got) = %d, want 2", len(got))
	}
}

func TestSample_EmptyPoolReturnsEmpty(t *testing.T) {
	tb := newTable(10)
	got := tb.Sample(3, nil)
	if len(got) != 0 {
		t.Fatalf("len(got) = %d, want 0", len(got))
	}
}

func TestExpire_RemovesSilentPeers(t *testing.T) {
	tb := newTable(10)
	now := time.Now()
	tb.Touch("stale", "stale", now.Add(-10*time.Second))
	tb.Touch("fresh", "fresh", now)

	evicted := tb.Expire(now, 6*time.Second)
	if len(evicted) != 1 || evicted[0] != "stale" {
		t.Fatalf("evicted = %v, want [stale]", evicted)
	}
	if tb.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", tb.Len())
	}
}

func TestSnapshot_CapsAtMax(t *testing.T) {
	tb := newTable(10)
	now := time.Now()
	for _, addr := range []string{"a", "b", "c", "d"} {
		tb.Touch(addr, addr, now)
	}
	if got := tb.Snapshot(2); len(got) != 2 {
		t.Fatalf("Snapshot(2) returned %d entries, want 2", len(got))
	}
}
