package orderbook

// registry is the arena of every order ever created, addressed by a
// monotonically increasing id starting at 1. Ids are never reused and records
// are never deleted; terminal orders stay readable and their ids migrate into
// the history list. Mutation happens only under the owning Book's lock.
type registry struct {
	orders   []*Order
	byOwner  map[string][]int64
	history  []int64
	historic map[int64]bool
}

func newRegistry() *registry {
	return &registry{
		byOwner:  make(map[string][]int64),
		historic: make(map[int64]bool),
	}
}

// create assigns the next id, stores the record and indexes it by owner.
func (r *registry) create(o *Order) int64 {
	o.ID = int64(len(r.orders)) + 1
	r.orders = append(r.orders, o)
	r.byOwner[o.Owner] = append(r.byOwner[o.Owner], o.ID)
	return o.ID
}

func (r *registry) get(id int64) (*Order, error) {
	if id < 1 || id > int64(len(r.orders)) {
		return nil, ErrNotFound
	}
	return r.orders[id-1], nil
}

func (r *registry) ordersByOwner(owner string) []*Order {
	ids := r.byOwner[owner]
	out := make([]*Order, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.orders[id-1])
	}
	return out
}

// recordHistory moves a terminal order id into the historical list. An order
// can reach here twice (janitor eviction, then an explicit cancel), so the
// list is deduplicated.
func (r *registry) recordHistory(id int64) {
	if r.historic[id] {
		return
	}
	r.historic[id] = true
	r.history = append(r.history, id)
}
