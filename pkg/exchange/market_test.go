package exchange

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/joripage/prorata-orderbook/pkg/orderbook"
)

func testMarket() *market {
	return &market{cfg: MarketConfig{PriceScale: 2, QtyScale: 8}}
}

func TestEngineUnitConversion(t *testing.T) {
	m := testMarket()

	p, err := m.enginePrice(decimal.RequireFromString("101.25"))
	if err != nil || p != 10125 {
		t.Fatalf("enginePrice = %d err=%v, want 10125", p, err)
	}
	q, err := m.engineQty(decimal.RequireFromString("0.5"))
	if err != nil || q != 50_000_000 {
		t.Fatalf("engineQty = %d err=%v, want 50000000", q, err)
	}

	if !m.priceDec(10125).Equal(decimal.RequireFromString("101.25")) {
		t.Fatalf("priceDec round trip = %s", m.priceDec(10125))
	}
	if !m.qtyDec(50_000_000).Equal(decimal.RequireFromString("0.5")) {
		t.Fatalf("qtyDec round trip = %s", m.qtyDec(50_000_000))
	}

	// quote units carry price and qty scale together
	quote := m.quoteDec(10125 * 50_000_000)
	if !quote.Equal(decimal.RequireFromString("50.625")) {
		t.Fatalf("quoteDec = %s, want 50.625", quote)
	}
}

func TestEngineUnitRejects(t *testing.T) {
	m := testMarket()

	cases := []decimal.Decimal{
		decimal.RequireFromString("101.255"), // sub-tick
		decimal.Zero,
		decimal.RequireFromString("-1"),
	}
	for _, c := range cases {
		if _, err := m.enginePrice(c); err != orderbook.ErrInvalidInput {
			t.Fatalf("enginePrice(%s) err = %v, want ErrInvalidInput", c, err)
		}
	}

	if _, err := m.engineQty(decimal.RequireFromString("0.000000001")); err != orderbook.ErrInvalidInput {
		t.Fatalf("engineQty sub-unit err = %v, want ErrInvalidInput", err)
	}
}
