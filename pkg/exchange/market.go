package exchange

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/joripage/prorata-orderbook/pkg/orderbook"
)

// MarketConfig describes one listed market. PriceScale and QtyScale fix the
// decimal precision accepted on that market; the book itself works in integer
// units of 10^-PriceScale quote per 10^-QtyScale base.
type MarketConfig struct {
	Symbol     string `yaml:"symbol"`
	BaseAsset  string `yaml:"base_asset"`
	QuoteAsset string `yaml:"quote_asset"`

	PriceScale int32 `yaml:"price_scale"`
	QtyScale   int32 `yaml:"qty_scale"`

	BuyFeeBips  int64 `yaml:"buy_fee_bips"`
	SellFeeBips int64 `yaml:"sell_fee_bips"`

	LiquidityPolicy orderbook.LiquidityPolicy `yaml:"liquidity_policy"`
}

type market struct {
	cfg  MarketConfig
	book *orderbook.Book

	// serializes report bookkeeping; the book has its own lock for matching
	mu       sync.Mutex
	byEngine map[int64]string // engine order id -> exchange order id
}

func (m *market) enginePrice(d decimal.Decimal) (int64, error) {
	v := d.Shift(m.cfg.PriceScale)
	if !v.IsInteger() || !v.IsPositive() {
		return 0, orderbook.ErrInvalidInput
	}
	return v.IntPart(), nil
}

func (m *market) engineQty(d decimal.Decimal) (int64, error) {
	v := d.Shift(m.cfg.QtyScale)
	if !v.IsInteger() || !v.IsPositive() {
		return 0, orderbook.ErrInvalidInput
	}
	return v.IntPart(), nil
}

func (m *market) priceDec(u int64) decimal.Decimal {
	return decimal.New(u, -m.cfg.PriceScale)
}

func (m *market) qtyDec(u int64) decimal.Decimal {
	return decimal.New(u, -m.cfg.QtyScale)
}

// quoteDec converts quote units, which carry both scales because they are
// price units multiplied by quantity units.
func (m *market) quoteDec(u int64) decimal.Decimal {
	return decimal.New(u, -(m.cfg.PriceScale + m.cfg.QtyScale))
}
