package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type OrderEvent struct {
	EventID   string          `json:"event_id"`
	OrderID   string          `json:"order_id"`
	GatewayID string          `json:"gateway_id"`
	Symbol    string          `json:"symbol"`
	ExecType  OrderExecType   `json:"exec_type"`
	Qty       decimal.Decimal `json:"qty"`
	Price     decimal.Decimal `json:"price"`
	Timestamp time.Time       `json:"timestamp"`
}

func NewOrderEvent(order Order, ts time.Time) *OrderEvent {
	return &OrderEvent{
		EventID:   NewEventID(order.OrderID, order.Status),
		OrderID:   order.OrderID,
		GatewayID: order.GatewayID,
		Symbol:    order.Symbol,
		ExecType:  order.ExecType,
		Qty:       order.LastQuantity,
		Price:     order.LastPrice,
		Timestamp: ts,
	}
}

func NewEventID(orderID string, status OrderStatus) string {
	return fmt.Sprintf("%s-%s", orderID, status)
}

// TradeEvent is the settled-fill record published to the trade stream and
// persisted by the worker.
type TradeEvent struct {
	Symbol       string          `json:"symbol"`
	TakerOrderID string          `json:"taker_order_id"`
	MakerOrderID string          `json:"maker_order_id"`
	TakerSide    OrderSide       `json:"taker_side"`
	Price        decimal.Decimal `json:"price"`
	Qty          decimal.Decimal `json:"qty"`
	QuoteQty     decimal.Decimal `json:"quote_qty"`
	BaseFee      decimal.Decimal `json:"base_fee"`
	QuoteFee     decimal.Decimal `json:"quote_fee"`
	ExecutedAt   time.Time       `json:"executed_at"`
}
