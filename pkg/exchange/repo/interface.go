package repo

import "context"

type IOrderEvent interface {
	Create(ctx context.Context, record *OrderEventRecord) (*OrderEventRecord, error)
	BulkCreate(ctx context.Context, records []*OrderEventRecord) ([]*OrderEventRecord, error)
}

type ITrade interface {
	Create(ctx context.Context, record *TradeRecord) (*TradeRecord, error)
	BulkCreate(ctx context.Context, records []*TradeRecord) ([]*TradeRecord, error)
}
