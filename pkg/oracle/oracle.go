// Package oracle exposes an advisory reference price per symbol. The price
// is informational only: nothing in the matching path reads it.
package oracle

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var ErrNoPrice = errors.New("no reference price")

type Oracle interface {
	ReferencePrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}
