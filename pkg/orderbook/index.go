package orderbook

import (
	"container/heap"

	"github.com/gammazero/deque"
)

// bookSide is one side's price-level index: a best-price heap over the level
// prices plus a FIFO queue of resting orders per level. Crossing walks levels
// best-first; within a level FIFO position only decides visit order, never
// the allocated volume (that is the allocator's job).
type bookSide struct {
	side   Side
	levels map[int64]*deque.Deque[*Order]
	heap   *PriceHeap
}

func newBookSide(side Side) *bookSide {
	less := func(i, j int64) bool { return i < j } // min-heap: best ask first
	if side == Bid {
		less = func(i, j int64) bool { return i > j } // max-heap: best bid first
	}
	return &bookSide{
		side:   side,
		levels: make(map[int64]*deque.Deque[*Order]),
		heap:   NewPriceHeap(less),
	}
}

// insert places an order at the back of its price level, creating the level
// if needed. Equal-price FIFO order is preserved as inserted.
func (s *bookSide) insert(o *Order) {
	if s.levels[o.Price] == nil {
		s.levels[o.Price] = &deque.Deque[*Order]{}
		heap.Push(s.heap, o.Price)
	}
	s.levels[o.Price].PushBack(o)
}

// bestLevel returns the best-priced non-empty level, dropping empty levels
// left behind by cancellation or eviction.
func (s *bookSide) bestLevel() (int64, *deque.Deque[*Order], bool) {
	for {
		price, ok := s.heap.Peek()
		if !ok {
			return 0, nil, false
		}
		q := s.levels[price]
		if q == nil || q.Len() == 0 {
			heap.Pop(s.heap)
			delete(s.levels, price)
			continue
		}
		return price, q, true
	}
}

func (s *bookSide) bestPrice() (int64, bool) {
	price, _, ok := s.bestLevel()
	return price, ok
}

// evictInactiveTail is the lazy janitor: it pops inactive orders from the
// matching end until an active order (or an empty side) is reached. Evicted
// orders are reported through onEvict for history bookkeeping.
func (s *bookSide) evictInactiveTail(now int64, onEvict func(*Order)) {
	for {
		_, q, ok := s.bestLevel()
		if !ok {
			return
		}
		front := q.Front()
		if !front.IsInactive(now) {
			return
		}
		q.PopFront()
		if onEvict != nil {
			onEvict(front)
		}
	}
}

// remove takes an order out of its level, wherever it sits. Used by
// cancellation and by fill application when an order reaches zero remaining.
func (s *bookSide) remove(o *Order) bool {
	q := s.levels[o.Price]
	if q == nil {
		return false
	}
	i := q.Index(func(x *Order) bool { return x.ID == o.ID })
	if i < 0 {
		return false
	}
	q.Remove(i)
	return true
}

// run collects the active orders of one price level in FIFO order.
func (s *bookSide) run(price int64, now int64) []*Order {
	q := s.levels[price]
	if q == nil {
		return nil
	}
	var out []*Order
	for i := 0; i < q.Len(); i++ {
		o := q.At(i)
		if !o.IsInactive(now) {
			out = append(out, o)
		}
	}
	return out
}

// depth returns up to n active orders nearest the matching end, best price
// first, FIFO within a level.
func (s *bookSide) depth(n int, now int64) []*Order {
	var out []*Order
	for _, price := range s.heap.Sorted() {
		q := s.levels[price]
		if q == nil {
			continue
		}
		for i := 0; i < q.Len(); i++ {
			o := q.At(i)
			if o.IsInactive(now) {
				continue
			}
			out = append(out, o)
			if len(out) == n {
				return out
			}
		}
	}
	return out
}
