package orderbook

import "testing"

func activeOrder(id int64, createdAt, remaining int64) *Order {
	return &Order{
		ID:           id,
		Owner:        "owner",
		Side:         Bid,
		Price:        100,
		Qty:          remaining,
		RemainingQty: remaining,
		CreatedAt:    createdAt,
	}
}

func TestAllocateProportionalToAge(t *testing.T) {
	// a rested 3x as long as b; both have room for everything
	a := activeOrder(1, 1000, 100)
	b := activeOrder(2, 1030, 100)
	now := int64(1040) // weights: a=40, b=10

	allocs := allocateRun([]*Order{a, b}, 50, now)
	if len(allocs) != 2 {
		t.Fatalf("expected 2 allocations, got %d", len(allocs))
	}
	if allocs[0].qty != 40 || allocs[0].order.ID != 1 {
		t.Errorf("expected older order to get 40, got %+v", allocs[0])
	}
	if allocs[1].qty != 10 {
		t.Errorf("expected younger order to get 10, got %d", allocs[1].qty)
	}
}

func TestAllocateWeightFloor(t *testing.T) {
	// order created in the matching second still participates with weight 1
	a := activeOrder(1, 995, 100)
	b := activeOrder(2, 1000, 100)
	now := int64(1000) // weights: a=5, b=1

	allocs := allocateRun([]*Order{a, b}, 6, now)
	if len(allocs) != 2 {
		t.Fatalf("expected 2 allocations, got %d", len(allocs))
	}
	if allocs[0].qty != 5 || allocs[1].qty != 1 {
		t.Errorf("expected 5/1 split, got %d/%d", allocs[0].qty, allocs[1].qty)
	}
}

func TestAllocateRemainderToLast(t *testing.T) {
	// equal weights, volume not divisible: raw shares truncate and the last
	// order absorbs the remainder so the run sums exactly to the volume
	a := activeOrder(1, 1000, 100)
	b := activeOrder(2, 1000, 100)
	c := activeOrder(3, 1000, 100)
	now := int64(1010)

	allocs := allocateRun([]*Order{a, b, c}, 10, now)
	var total int64
	for _, al := range allocs {
		total += al.qty
	}
	if total != 10 {
		t.Fatalf("expected run to absorb full volume, got %d", total)
	}
	if allocs[0].qty != 3 || allocs[1].qty != 3 || allocs[2].qty != 4 {
		t.Errorf("expected 3/3/4, got %d/%d/%d", allocs[0].qty, allocs[1].qty, allocs[2].qty)
	}
}

func TestAllocateClampToRemaining(t *testing.T) {
	// older order's raw share exceeds its remaining size; the excess is not
	// redistributed inside the run
	a := activeOrder(1, 1000, 4)
	b := activeOrder(2, 1030, 100)
	now := int64(1040) // weights: a=40, b=10

	allocs := allocateRun([]*Order{a, b}, 50, now)
	if allocs[0].qty != 4 {
		t.Errorf("expected clamp to 4, got %d", allocs[0].qty)
	}
	if allocs[1].qty != 10 {
		t.Errorf("expected younger share unchanged at 10, got %d", allocs[1].qty)
	}
}

func TestAllocateSkipsInactive(t *testing.T) {
	a := activeOrder(1, 1000, 100)
	a.IsCanceled = true
	b := activeOrder(2, 1005, 100)
	now := int64(1010)

	allocs := allocateRun([]*Order{a, b}, 10, now)
	if len(allocs) != 1 || allocs[0].order.ID != 2 {
		t.Fatalf("expected only the active order, got %+v", allocs)
	}
	if allocs[0].qty != 10 {
		t.Errorf("expected full volume to the active order, got %d", allocs[0].qty)
	}
}

func TestAllocateAllInactive(t *testing.T) {
	a := activeOrder(1, 1000, 100)
	a.IsCanceled = true
	b := activeOrder(2, 1000, 100)
	b.IsFilled = true
	b.RemainingQty = 0

	if allocs := allocateRun([]*Order{a, b}, 10, 1010); allocs != nil {
		t.Fatalf("expected inactive run to be skipped, got %+v", allocs)
	}
}

func TestAllocateLargeVolumeLongRest(t *testing.T) {
	// volume*weight exceeds int64 here; the split must still be exact
	const volume = int64(1) << 40
	a := activeOrder(1, 0, volume)
	b := activeOrder(2, 0, volume)
	now := int64(3_000_000_000) // both weights 3e9

	allocs := allocateRun([]*Order{a, b}, volume, now)
	if len(allocs) != 2 {
		t.Fatalf("expected 2 allocations, got %d", len(allocs))
	}
	if allocs[0].qty != volume/2 || allocs[1].qty != volume/2 {
		t.Errorf("expected an even split of %d, got %d/%d", volume, allocs[0].qty, allocs[1].qty)
	}
	if total := allocs[0].qty + allocs[1].qty; total != volume {
		t.Errorf("expected run to absorb full volume, got %d", total)
	}
}

func TestAllocateAgeFairness(t *testing.T) {
	// older order always receives at least as much as an equally sized
	// younger one
	for _, age := range []int64{0, 1, 5, 100} {
		a := activeOrder(1, 1000, 50)
		b := activeOrder(2, 1000+age, 50)
		now := 1000 + age + 1

		allocs := allocateRun([]*Order{a, b}, 30, now)
		if len(allocs) != 2 {
			t.Fatalf("age %d: expected 2 allocations, got %d", age, len(allocs))
		}
		if allocs[0].qty < allocs[1].qty {
			t.Errorf("age %d: older order got %d, younger got %d", age, allocs[0].qty, allocs[1].qty)
		}
	}
}
