package orderbook

import (
	"errors"
	"testing"
)

func TestRegistryAssignsMonotonicIDs(t *testing.T) {
	r := newRegistry()
	for i := int64(1); i <= 5; i++ {
		id := r.create(&Order{Owner: "alice"})
		if id != i {
			t.Fatalf("expected id %d, got %d", i, id)
		}
	}
}

func TestRegistryGetBounds(t *testing.T) {
	r := newRegistry()
	r.create(&Order{Owner: "alice"})

	if _, err := r.get(0); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for id 0, got %v", err)
	}
	if _, err := r.get(2); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound past the assigned range, got %v", err)
	}
	if o, err := r.get(1); err != nil || o.ID != 1 {
		t.Errorf("expected order 1, got %+v err=%v", o, err)
	}
}

func TestRegistryHistoryDeduplicates(t *testing.T) {
	r := newRegistry()
	id := r.create(&Order{Owner: "alice"})
	r.recordHistory(id)
	r.recordHistory(id)
	if len(r.history) != 1 {
		t.Fatalf("expected one history entry, got %d", len(r.history))
	}
}
