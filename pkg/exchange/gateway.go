package exchange

import (
	"context"

	"github.com/joripage/prorata-orderbook/pkg/exchange/model"
)

// OrderGateway is the client-facing transport. The exchange pushes execution
// reports through it; the gateway pushes submits and cancels into the
// exchange.
type OrderGateway interface {
	Start(ctx context.Context) error

	// exchange to client
	OnOrderReport(ctx context.Context, order model.Order)
}
