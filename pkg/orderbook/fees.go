package orderbook

const feeDenominator = 10000

// FeeSchedule holds the basis-point rates for the two legs of a trade: the
// base-asset leg paid to the buyer and the quote-asset leg paid to the
// seller. Rate bounds are enforced at the admin boundary, not here.
type FeeSchedule struct {
	BuyBips  int64
	SellBips int64
}

// Split divides a settled amount into the net paid to the counterparty and
// the fee paid to the treasury. leg is the side receiving the amount: Bid for
// the base leg, Ask for the quote leg.
func (f FeeSchedule) Split(amount int64, leg Side) (net, fee int64) {
	bips := f.SellBips
	if leg == Bid {
		bips = f.BuyBips
	}
	fee = amount * bips / feeDenominator
	net = amount - fee
	return net, fee
}
