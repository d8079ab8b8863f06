package orderbook

import "context"

// Trade is one settled fill between a resting maker and an incoming taker.
type Trade struct {
	TakerOrderID int64
	MakerOrderID int64
	TakerSide    Side
	Price        int64
	Qty          int64
	QuoteQty     int64
	BaseFee      int64
	QuoteFee     int64
	ExecutedAt   int64
}

type plannedFill struct {
	maker    *Order
	price    int64
	baseQty  int64
	quoteQty int64
}

// matchPlan is the outcome of a pure planning pass: which resting orders
// receive how much, at which prices, and what it costs in quote terms.
// Nothing is mutated until the plan is committed.
type matchPlan struct {
	fills      []plannedFill
	baseFilled int64
	quoteCost  int64
}

func crossable(taker Side, limitPrice, bookPrice int64) bool {
	if taker == Bid {
		return limitPrice >= bookPrice
	}
	return limitPrice <= bookPrice
}

// planSweep walks the opposite side best-first, grouping each price level
// into a same-price run and delegating the split to the allocator. It stops
// when the volume is exhausted, the book stops crossing, or the side runs
// out. Market orders cross every level.
func (b *Book) planSweep(taker Side, volume, limitPrice int64, isMarket bool, now int64) matchPlan {
	counter := b.sideFor(taker.Opposite())

	var plan matchPlan
	remaining := volume
	for _, price := range counter.heap.Sorted() {
		if remaining <= 0 {
			break
		}
		if !isMarket && !crossable(taker, limitPrice, price) {
			break
		}
		run := counter.run(price, now)
		if len(run) == 0 {
			continue
		}
		for _, a := range allocateRun(run, remaining, now) {
			quote := a.qty * price
			plan.fills = append(plan.fills, plannedFill{
				maker:    a.order,
				price:    price,
				baseQty:  a.qty,
				quoteQty: quote,
			})
			plan.baseFilled += a.qty
			plan.quoteCost += quote
			remaining -= a.qty
		}
	}
	return plan
}

// commit applies a fill plan: both legs of every trade settle through the
// ledger (net to the counterparty, fee to the treasury), remaining sizes are
// decremented and fully filled makers leave the active index. All transfers
// draw on funds escrowed at submission, so this path does not fail under a
// correct ledger.
func (b *Book) commit(ctx context.Context, taker *Order, plan matchPlan, now int64) ([]Trade, error) {
	counter := b.sideFor(taker.Side.Opposite())

	var trades []Trade
	for _, f := range plan.fills {
		maker := f.maker

		buyer, seller := taker, maker
		if taker.Side == Ask {
			buyer, seller = maker, taker
		}

		quoteNet, quoteFee := b.fees.Split(f.quoteQty, Ask)
		baseNet, baseFee := b.fees.Split(f.baseQty, Bid)

		if err := b.payLeg(ctx, buyer.Owner, seller.Owner, b.cfg.QuoteAsset, quoteNet, quoteFee); err != nil {
			return trades, err
		}
		if err := b.payLeg(ctx, seller.Owner, buyer.Owner, b.cfg.BaseAsset, baseNet, baseFee); err != nil {
			return trades, err
		}

		maker.RemainingQty -= f.baseQty
		taker.RemainingQty -= f.baseQty
		if maker.Side == Bid {
			maker.RemainingQuote -= f.quoteQty
		}
		if taker.Side == Bid {
			taker.RemainingQuote -= f.quoteQty
		}
		maker.LastFillAt = now
		taker.LastFillAt = now

		if maker.RemainingQty == 0 {
			maker.IsFilled = true
			counter.remove(maker)
			b.reg.recordHistory(maker.ID)
		}

		trades = append(trades, Trade{
			TakerOrderID: taker.ID,
			MakerOrderID: maker.ID,
			TakerSide:    taker.Side,
			Price:        f.price,
			Qty:          f.baseQty,
			QuoteQty:     f.quoteQty,
			BaseFee:      baseFee,
			QuoteFee:     quoteFee,
			ExecutedAt:   now,
		})
	}

	if taker.RemainingQty == 0 {
		taker.IsFilled = true
	}
	return trades, nil
}

// payLeg moves one leg out of the payer's escrow: net to the counterparty,
// fee to the treasury.
func (b *Book) payLeg(ctx context.Context, from, to, asset string, net, fee int64) error {
	if err := b.ledger.Transfer(ctx, from, to, asset, net); err != nil {
		return err
	}
	if fee > 0 {
		if err := b.ledger.Transfer(ctx, from, b.treasury, asset, fee); err != nil {
			return err
		}
	}
	return nil
}
