package repo

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/joripage/prorata-orderbook/pkg/exchange/model"
)

type OrderEventRecord struct {
	ID        uint64          `gorm:"primaryKey;autoIncrement"`
	EventID   string          `gorm:"uniqueIndex;size:64"`
	OrderID   string          `gorm:"index;size:36"`
	GatewayID string          `gorm:"index;size:64"`
	Symbol    string          `gorm:"size:32"`
	ExecType  string          `gorm:"size:16"`
	Qty       decimal.Decimal `gorm:"type:numeric(32,16)"`
	Price     decimal.Decimal `gorm:"type:numeric(32,16)"`
	Timestamp time.Time
}

func (OrderEventRecord) TableName() string { return "order_events" }

func NewOrderEventRecord(ev *model.OrderEvent) *OrderEventRecord {
	return &OrderEventRecord{
		EventID:   ev.EventID,
		OrderID:   ev.OrderID,
		GatewayID: ev.GatewayID,
		Symbol:    ev.Symbol,
		ExecType:  string(ev.ExecType),
		Qty:       ev.Qty,
		Price:     ev.Price,
		Timestamp: ev.Timestamp,
	}
}

type TradeRecord struct {
	ID           uint64          `gorm:"primaryKey;autoIncrement"`
	Symbol       string          `gorm:"index;size:32"`
	TakerOrderID string          `gorm:"index;size:36"`
	MakerOrderID string          `gorm:"index;size:36"`
	TakerSide    string          `gorm:"size:4"`
	Price        decimal.Decimal `gorm:"type:numeric(32,16)"`
	Qty          decimal.Decimal `gorm:"type:numeric(32,16)"`
	QuoteQty     decimal.Decimal `gorm:"type:numeric(32,16)"`
	BaseFee      decimal.Decimal `gorm:"type:numeric(32,16)"`
	QuoteFee     decimal.Decimal `gorm:"type:numeric(32,16)"`
	ExecutedAt   time.Time       `gorm:"index"`
}

func (TradeRecord) TableName() string { return "trades" }

func NewTradeRecord(ev *model.TradeEvent) *TradeRecord {
	return &TradeRecord{
		Symbol:       ev.Symbol,
		TakerOrderID: ev.TakerOrderID,
		MakerOrderID: ev.MakerOrderID,
		TakerSide:    string(ev.TakerSide),
		Price:        ev.Price,
		Qty:          ev.Qty,
		QuoteQty:     ev.QuoteQty,
		BaseFee:      ev.BaseFee,
		QuoteFee:     ev.QuoteFee,
		ExecutedAt:   ev.ExecutedAt,
	}
}
