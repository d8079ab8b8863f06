// Package worker drains the exchange's kafka feeds into postgres. It is the
// only component that writes trade and order-event rows; the matching path
// never blocks on the database.
package worker

import (
	"context"
	"encoding/json"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/joripage/prorata-orderbook/pkg/exchange/model"
	"github.com/joripage/prorata-orderbook/pkg/exchange/repo"
	"github.com/joripage/prorata-orderbook/pkg/stream"
)

type Worker struct {
	orderEvent repo.IOrderEvent
	trade      repo.ITrade
}

func NewWorker(r repo.IRepo) *Worker {
	return &Worker{
		orderEvent: r.OrderEvent(),
		trade:      r.Trade(),
	}
}

// RunTradeConsumer blocks until ctx is canceled.
func (w *Worker) RunTradeConsumer(ctx context.Context, c *stream.Consumer) error {
	return c.Run(ctx, func(ctx context.Context, msg stream.Message) error {
		var ev model.TradeEvent
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			zap.S().Warnf("unmarshal trade: %v", err)
			return nil // malformed, drop and commit
		}
		_, err := w.trade.Create(ctx, repo.NewTradeRecord(&ev))
		return err
	})
}

// RunOrderEventConsumer blocks until ctx is canceled.
func (w *Worker) RunOrderEventConsumer(ctx context.Context, c *stream.Consumer) error {
	return c.Run(ctx, func(ctx context.Context, msg stream.Message) error {
		var ev model.OrderEvent
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			zap.S().Warnf("unmarshal order event: %v", err)
			return nil
		}
		_, err := w.orderEvent.Create(ctx, repo.NewOrderEventRecord(&ev))
		return err
	})
}
