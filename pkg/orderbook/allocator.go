package orderbook

import "math/bits"

// allocation is one resting order's clamped slice of a matched volume.
type allocation struct {
	order *Order
	qty   int64
}

// allocateRun splits volume across a same-price run in proportion to each
// order's resting age. Raw shares truncate; the last order of the run absorbs
// the truncation remainder so the raw shares sum exactly to volume. Every
// share is then clamped to its order's remaining quantity; volume the clamp
// rejects is simply not allocated and continues to the next run.
func allocateRun(run []*Order, volume int64, now int64) []allocation {
	if volume <= 0 {
		return nil
	}

	var active []*Order
	var totalWeight int64
	for _, o := range run {
		if o.IsInactive(now) {
			continue
		}
		active = append(active, o)
		totalWeight += o.weight(now)
	}
	if totalWeight == 0 {
		// run is entirely inactive
		return nil
	}

	var out []allocation
	var assigned int64
	for i, o := range active {
		var share int64
		if i == len(active)-1 {
			share = volume - assigned
		} else {
			share = mulDiv(volume, o.weight(now), totalWeight)
		}
		assigned += share

		if share > o.RemainingQty {
			share = o.RemainingQty
		}
		if share > 0 {
			out = append(out, allocation{order: o, qty: share})
		}
	}
	return out
}

// mulDiv computes a*b/d through a 128-bit intermediate. Weights are unbounded
// resting ages, so the naive int64 product can overflow for large volumes.
// Inputs are non-negative and b <= d, so the quotient always fits in int64.
func mulDiv(a, b, d int64) int64 {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	q, _ := bits.Div64(hi, lo, uint64(d))
	return int64(q)
}
