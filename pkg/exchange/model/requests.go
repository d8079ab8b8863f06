package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubmitOrder is a client order entering through a gateway. GatewayID is the
// client's own id (FIX ClOrdID); the exchange assigns the numeric order id.
type SubmitOrder struct {
	GatewayID    string
	Account      string
	Symbol       string
	Type         OrderType
	Side         OrderSide
	Price        decimal.Decimal
	Quantity     decimal.Decimal
	Expiry       time.Time // zero means good-till-cancel
	TransactTime time.Time
}

type CancelOrder struct {
	GatewayID     string
	OrigGatewayID string
	Account       string
	Symbol        string
}
