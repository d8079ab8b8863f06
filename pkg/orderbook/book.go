package orderbook

import (
	"context"
	"sync"
	"time"

	"github.com/joripage/prorata-orderbook/pkg/ledger"
)

// LiquidityPolicy decides what happens when a market order cannot be fully
// matched: reject the whole order, or fill what the book offers and refund
// the rest.
type LiquidityPolicy string

const (
	RejectUnfilled LiquidityPolicy = "reject"
	PartialRefund  LiquidityPolicy = "partial"
)

type Config struct {
	Symbol     string
	BaseAsset  string
	QuoteAsset string

	Treasury    string
	BuyFeeBips  int64
	SellFeeBips int64

	LiquidityPolicy LiquidityPolicy

	// Clock returns unix seconds; overridable for tests.
	Clock func() int64
}

// Book is one market's order book. Every operation runs to completion under
// the book mutex, so execution is strictly sequential and an operation never
// observes another mid-flight.
type Book struct {
	cfg Config

	mu       sync.Mutex
	reg      *registry
	bids     *bookSide
	asks     *bookSide
	fees     FeeSchedule
	treasury string
	ledger   ledger.Ledger
}

func New(cfg Config, l ledger.Ledger) *Book {
	if cfg.Clock == nil {
		cfg.Clock = func() int64 { return time.Now().Unix() }
	}
	if cfg.LiquidityPolicy == "" {
		cfg.LiquidityPolicy = RejectUnfilled
	}
	return &Book{
		cfg:      cfg,
		reg:      newRegistry(),
		bids:     newBookSide(Bid),
		asks:     newBookSide(Ask),
		fees:     FeeSchedule{BuyBips: cfg.BuyFeeBips, SellBips: cfg.SellFeeBips},
		treasury: cfg.Treasury,
		ledger:   l,
	}
}

func (b *Book) Symbol() string { return b.cfg.Symbol }

func (b *Book) sideFor(side Side) *bookSide {
	if side == Bid {
		return b.bids
	}
	return b.asks
}

// SubmitLimit escrows the order's funds, crosses it against the opposite side
// and posts any remainder into its own side's index. A fully filled order is
// recorded as historical and never inserted.
func (b *Book) SubmitLimit(ctx context.Context, owner string, side Side, price, qty, expiry int64) (Order, []Trade, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !side.Valid() || owner == "" || price <= 0 || qty <= 0 {
		return Order{}, nil, ErrInvalidInput
	}
	now := b.cfg.Clock()
	if expiry != 0 && expiry < now {
		return Order{}, nil, ErrExpired
	}

	order := &Order{
		Owner:        owner,
		Side:         side,
		Price:        price,
		Qty:          qty,
		RemainingQty: qty,
		Expiry:       expiry,
		CreatedAt:    now,
	}
	if side == Bid {
		order.QuoteCommitted = qty * price
		order.RemainingQuote = order.QuoteCommitted
		if err := b.ledger.Escrow(ctx, owner, b.cfg.QuoteAsset, order.QuoteCommitted); err != nil {
			return Order{}, nil, err
		}
	} else {
		if err := b.ledger.Escrow(ctx, owner, b.cfg.BaseAsset, qty); err != nil {
			return Order{}, nil, err
		}
	}
	b.reg.create(order)

	b.sideFor(side.Opposite()).evictInactiveTail(now, b.onEvict)

	plan := b.planSweep(side, qty, price, false, now)
	trades, err := b.commit(ctx, order, plan, now)
	if err != nil {
		return *order, trades, err
	}

	// crossing at better prices than committed for leaves excess quote in
	// escrow; return it right away so resting bids always hold exactly
	// RemainingQty*Price
	if err := b.refundBidImprovement(ctx, order); err != nil {
		return *order, trades, err
	}

	if order.RemainingQty > 0 {
		b.sideFor(side).insert(order)
	} else {
		b.reg.recordHistory(order.ID)
	}
	return *order, trades, nil
}

// SubmitMarket sweeps the opposite side for qty base units. The sweep is
// planned before any funds move: under the reject policy an unfillable order
// aborts with no state change, and a market bid escrows exactly the quote
// cost of its plan.
func (b *Book) SubmitMarket(ctx context.Context, owner string, side Side, qty int64) (Order, []Trade, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !side.Valid() || owner == "" || qty <= 0 {
		return Order{}, nil, ErrInvalidInput
	}
	now := b.cfg.Clock()

	b.sideFor(side.Opposite()).evictInactiveTail(now, b.onEvict)

	plan := b.planSweep(side, qty, 0, true, now)
	if plan.baseFilled < qty && b.cfg.LiquidityPolicy == RejectUnfilled {
		return Order{}, nil, ErrInsufficientLiquidity
	}

	order := &Order{
		Owner:        owner,
		Side:         side,
		IsMarket:     true,
		Qty:          qty,
		RemainingQty: qty,
		CreatedAt:    now,
	}
	if side == Bid {
		order.QuoteCommitted = plan.quoteCost
		order.RemainingQuote = plan.quoteCost
		if err := b.ledger.Escrow(ctx, owner, b.cfg.QuoteAsset, plan.quoteCost); err != nil {
			return Order{}, nil, err
		}
	} else {
		if err := b.ledger.Escrow(ctx, owner, b.cfg.BaseAsset, qty); err != nil {
			return Order{}, nil, err
		}
	}
	b.reg.create(order)

	trades, err := b.commit(ctx, order, plan, now)
	if err != nil {
		return *order, trades, err
	}

	// a market order never rests: the unfilled remainder is refunded and the
	// order closed out
	if order.RemainingQty > 0 {
		if side == Ask {
			if err := b.ledger.Refund(ctx, owner, b.cfg.BaseAsset, order.RemainingQty); err != nil {
				return *order, trades, err
			}
		}
		order.IsCanceled = true
	}
	b.reg.recordHistory(order.ID)
	return *order, trades, nil
}

// Cancel marks an order canceled and refunds whatever remains escrowed.
// Terminal orders are rejected so a refund can never happen twice.
func (b *Book) Cancel(ctx context.Context, id int64, caller string) (Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	o, err := b.reg.get(id)
	if err != nil {
		return Order{}, err
	}
	if o.Owner != caller {
		return Order{}, ErrNotOwner
	}
	if o.IsCanceled || o.IsFilled {
		return Order{}, ErrInvalidState
	}

	o.IsCanceled = true
	b.sideFor(o.Side).remove(o)
	b.reg.recordHistory(o.ID)

	if o.Side == Bid {
		if o.RemainingQuote > 0 {
			if err := b.ledger.Refund(ctx, o.Owner, b.cfg.QuoteAsset, o.RemainingQuote); err != nil {
				return *o, err
			}
			o.RemainingQuote = 0
		}
	} else if o.RemainingQty > 0 {
		if err := b.ledger.Refund(ctx, o.Owner, b.cfg.BaseAsset, o.RemainingQty); err != nil {
			return *o, err
		}
	}
	return *o, nil
}

// Order returns a copy of the record; mutation stays inside the book.
func (b *Book) Order(id int64) (Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	o, err := b.reg.get(id)
	if err != nil {
		return Order{}, err
	}
	return *o, nil
}

func (b *Book) OrdersByOwner(owner string) []Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	orders := b.reg.ordersByOwner(owner)
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		out = append(out, *o)
	}
	return out
}

// Depth returns up to n active orders nearest the best price on one side.
func (b *Book) Depth(side Side, n int) []Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.cfg.Clock()
	orders := b.sideFor(side).depth(n, now)
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		out = append(out, *o)
	}
	return out
}

func (b *Book) BestPrice(side Side) (int64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sideFor(side).bestPrice()
}

// SetFeeBips updates one leg's fee rate. Rates are bounded strictly below
// 100%; who may call this is the admin boundary's concern, not the book's.
func (b *Book) SetFeeBips(leg Side, bips int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if bips < 0 || bips >= feeDenominator {
		return ErrInvalidValue
	}
	if leg == Bid {
		b.fees.BuyBips = bips
	} else {
		b.fees.SellBips = bips
	}
	return nil
}

func (b *Book) SetTreasury(addr string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if addr == "" {
		return ErrInvalidValue
	}
	b.treasury = addr
	return nil
}

func (b *Book) onEvict(o *Order) {
	b.reg.recordHistory(o.ID)
}

// refundBidImprovement returns the quote freed up when a bid fills below its
// desired price.
func (b *Book) refundBidImprovement(ctx context.Context, o *Order) error {
	if o.Side != Bid || o.IsMarket {
		return nil
	}
	excess := o.RemainingQuote - o.RemainingQty*o.Price
	if excess <= 0 {
		return nil
	}
	if err := b.ledger.Refund(ctx, o.Owner, b.cfg.QuoteAsset, excess); err != nil {
		return err
	}
	o.RemainingQuote -= excess
	return nil
}
