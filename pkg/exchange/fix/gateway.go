// Package fixgateway accepts FIX 4.2/4.4 sessions and bridges them onto the
// exchange: NewOrderSingle and OrderCancelRequest in, ExecutionReport out.
package fixgateway

import (
	"context"
	"sync"
	"time"

	"github.com/quickfixgo/enum"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/joripage/prorata-orderbook/pkg/exchange"
	"github.com/joripage/prorata-orderbook/pkg/exchange/model"
)

type FixGateway struct {
	cfg              *FixGatewayConfig
	app              *Application
	exchangeInstance exchange.IExchange

	requestMapping sync.Map // ClOrdID -> *quickfix.SessionID
}

type FixGatewayConfig struct {
	ConfigFilepath string
}

func NewFixGateway(cfg *FixGatewayConfig) *FixGateway {
	fm := &FixGateway{
		cfg:            cfg,
		requestMapping: sync.Map{},
	}

	return fm
}

func (s *FixGateway) AddExchangeInstance(ex exchange.IExchange) {
	s.exchangeInstance = ex
}

func (s *FixGateway) Start(ctx context.Context) error {
	app, err := startApp(s.cfg.ConfigFilepath, s)
	if err != nil {
		zap.S().Errorf("start fix app err=%v", err)
		return err
	}
	s.app = app
	return nil
}

func (s *FixGateway) Stop() {
	if s.app != nil {
		stopApp(s.app)
	}
}

func (s *FixGateway) AddOrder(ctx context.Context, newOrderSingle *NewOrderSingle) {
	orderType, ok := map[enum.OrdType]model.OrderType{
		enum.OrdType_LIMIT:  model.OrderTypeLimit,
		enum.OrdType_MARKET: model.OrderTypeMarket,
	}[newOrderSingle.OrdType]
	if !ok {
		s.reject(newOrderSingle, "unsupported order type")
		return
	}

	side, ok := map[enum.Side]model.OrderSide{
		enum.Side_BUY:  model.OrderSideBuy,
		enum.Side_SELL: model.OrderSideSell,
	}[newOrderSingle.Side]
	if !ok {
		s.reject(newOrderSingle, "unsupported side")
		return
	}

	// GTC unless the client asked for good-till-date with an explicit time
	var expiry time.Time
	if newOrderSingle.TimeInForce == enum.TimeInForce_GOOD_TILL_DATE && !newOrderSingle.ExpireTime.IsZero() {
		expiry = newOrderSingle.ExpireTime
	}

	s.AddRequestToMap(newOrderSingle.ClOrdID, newOrderSingle.SessionID)

	_, err := s.exchangeInstance.SubmitOrder(ctx, &model.SubmitOrder{
		GatewayID:    newOrderSingle.ClOrdID,
		Account:      newOrderSingle.Account,
		Symbol:       newOrderSingle.Symbol,
		Type:         orderType,
		Side:         side,
		Price:        newOrderSingle.Price,
		Quantity:     newOrderSingle.OrderQty,
		Expiry:       expiry,
		TransactTime: newOrderSingle.TransactTime,
	})
	if err != nil {
		s.reject(newOrderSingle, err.Error())
	}
}

func (s *FixGateway) CancelOrder(ctx context.Context, orderCancelRequest *OrderCancelRequest) {
	s.AddRequestToMap(orderCancelRequest.ClOrdID, orderCancelRequest.SessionID)

	_, err := s.exchangeInstance.CancelOrder(ctx, &model.CancelOrder{
		GatewayID:     orderCancelRequest.ClOrdID,
		OrigGatewayID: orderCancelRequest.OrigClOrdID,
		Account:       orderCancelRequest.Account,
		Symbol:        orderCancelRequest.Symbol,
	})
	if err != nil {
		go rejectToExecutionReport(
			orderCancelRequest.ClOrdID,
			orderCancelRequest.Account,
			orderCancelRequest.Symbol,
			orderCancelRequest.Side,
			decimal.Zero,
			err.Error(),
			orderCancelRequest.SessionID,
		) // nolint
	}
}

func (s *FixGateway) OnOrderReport(ctx context.Context, order model.Order) {
	sessionID, err := s.GetRequestByClOrdID(order.GatewayID)
	if err != nil {
		zap.S().Warnf("report orderID=%s: no session for clOrdID=%s", order.OrderID, order.GatewayID)
		return
	}
	orderBK := order
	go func() {
		_ = orderReportToExecutionReport(orderBK, sessionID)
	}()
}

func (s *FixGateway) reject(nos *NewOrderSingle, reason string) {
	nosBK := *nos
	go func() {
		_ = rejectToExecutionReport(
			nosBK.ClOrdID,
			nosBK.Account,
			nosBK.Symbol,
			nosBK.Side,
			nosBK.OrderQty,
			reason,
			nosBK.SessionID,
		)
	}()
}
