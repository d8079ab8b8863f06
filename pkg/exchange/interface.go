package exchange

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/joripage/prorata-orderbook/pkg/exchange/model"
)

type IExchange interface {
	Start(ctx context.Context) error
	Stop()

	SubmitOrder(ctx context.Context, req *model.SubmitOrder) (model.Order, error)
	CancelOrder(ctx context.Context, req *model.CancelOrder) (model.Order, error)

	OrderByGatewayID(gatewayID string) (model.Order, error)
	OrdersByAccount(symbol, account string) ([]model.Order, error)
	Depth(symbol string, side model.OrderSide, n int) ([]model.Order, error)
	BestPrice(symbol string, side model.OrderSide) (decimal.Decimal, bool, error)
	ReferencePrice(ctx context.Context, symbol string) (decimal.Decimal, error)

	SetFeeBips(caller, symbol string, side model.OrderSide, bips int64) error
	SetTreasury(caller, symbol, addr string) error
}
