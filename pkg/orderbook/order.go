package orderbook

type Side string

const (
	Bid Side = "BID"
	Ask Side = "ASK"
)

func (s Side) Valid() bool {
	return s == Bid || s == Ask
}

func (s Side) Opposite() Side {
	if s == Bid {
		return Ask
	}
	return Bid
}

// Order is the canonical order record. Prices are quote units per base unit,
// quantities are base units, quote amounts are quote units; all int64 so the
// allocation and fee divisions truncate exactly.
type Order struct {
	ID    int64
	Owner string
	Side  Side

	// Price is the desired price; 0 for market orders.
	Price int64

	Qty          int64
	RemainingQty int64

	// QuoteCommitted is the quote escrowed at submission (bids only).
	QuoteCommitted int64
	RemainingQuote int64

	IsMarket   bool
	IsFilled   bool
	IsCanceled bool

	// Expiry is a unix-second deadline; 0 means good-till-cancel.
	// Market orders never rest, so it is always 0 for them.
	Expiry     int64
	CreatedAt  int64
	LastFillAt int64
}

// IsInactive reports whether the order is ineligible for matching.
func (o *Order) IsInactive(now int64) bool {
	return o.IsCanceled || o.IsFilled || o.RemainingQty == 0 ||
		(o.Expiry != 0 && o.Expiry < now)
}

// weight is the age-based allocation weight, floored at one time unit so an
// order matched in the second it was created still participates.
func (o *Order) weight(now int64) int64 {
	w := now - o.CreatedAt
	if w < 1 {
		w = 1
	}
	return w
}
