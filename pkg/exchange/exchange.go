// Package exchange is the service layer over the matching engine. It owns one
// book per listed market, converts client decimals to engine units, assigns
// exchange order ids, and fans out execution reports and trade events.
package exchange

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/joripage/prorata-orderbook/pkg/exchange/eventstore"
	"github.com/joripage/prorata-orderbook/pkg/exchange/model"
	"github.com/joripage/prorata-orderbook/pkg/ledger"
	"github.com/joripage/prorata-orderbook/pkg/oracle"
	"github.com/joripage/prorata-orderbook/pkg/orderbook"
)

const (
	defaultTradeTopic      = "exchange.trades"
	defaultOrderEventTopic = "exchange.order_events"
)

type Config struct {
	Markets         []MarketConfig
	AdminAccount    string
	Treasury        string
	TradeTopic      string
	OrderEventTopic string

	// CleanupInterval controls how often terminal orders are dropped from the
	// in-memory maps. Zero disables the cleaner.
	CleanupInterval time.Duration
}

// TradePublisher receives settled fills; satisfied by stream.Producer.
type TradePublisher interface {
	PublishJSON(ctx context.Context, topic, key string, v any) error
}

type Exchange struct {
	cfg     Config
	gateway OrderGateway
	ledger  ledger.Ledger
	events  eventstore.EventStore
	trades  TradePublisher
	oracle  oracle.Oracle

	markets map[string]*market
	orders  sync.Map // order id -> *model.Order
	stopCh  chan struct{}
}

type Option func(*Exchange)

func WithTradePublisher(p TradePublisher) Option {
	return func(e *Exchange) { e.trades = p }
}

func WithOracle(o oracle.Oracle) Option {
	return func(e *Exchange) { e.oracle = o }
}

func New(cfg Config, gateway OrderGateway, l ledger.Ledger, opts ...Option) *Exchange {
	if cfg.TradeTopic == "" {
		cfg.TradeTopic = defaultTradeTopic
	}
	if cfg.OrderEventTopic == "" {
		cfg.OrderEventTopic = defaultOrderEventTopic
	}
	e := &Exchange{
		cfg:     cfg,
		gateway: gateway,
		ledger:  l,
		events:  eventstore.NewInMemoryEventStore(),
		markets: make(map[string]*market),
		stopCh:  make(chan struct{}),
	}
	for _, mc := range cfg.Markets {
		book := orderbook.New(orderbook.Config{
			Symbol:          mc.Symbol,
			BaseAsset:       mc.BaseAsset,
			QuoteAsset:      mc.QuoteAsset,
			Treasury:        cfg.Treasury,
			BuyFeeBips:      mc.BuyFeeBips,
			SellFeeBips:     mc.SellFeeBips,
			LiquidityPolicy: mc.LiquidityPolicy,
		}, l)
		e.markets[mc.Symbol] = &market{
			cfg:      mc,
			book:     book,
			byEngine: make(map[int64]string),
		}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Exchange) Start(ctx context.Context) error {
	if e.cfg.CleanupInterval > 0 {
		go e.startCleaner(e.cfg.CleanupInterval)
	}
	return e.gateway.Start(ctx)
}

func (e *Exchange) Stop() {
	close(e.stopCh)
}

func (e *Exchange) market(symbol string) (*market, error) {
	m, ok := e.markets[symbol]
	if !ok {
		return nil, errUnknownSymbol
	}
	return m, nil
}

func engineSide(s model.OrderSide) (orderbook.Side, error) {
	switch s {
	case model.OrderSideBuy:
		return orderbook.Bid, nil
	case model.OrderSideSell:
		return orderbook.Ask, nil
	default:
		return "", orderbook.ErrInvalidInput
	}
}

// SubmitOrder routes a client order into its market's book and reports the
// outcome. The New report goes out before any trade reports, in the order the
// engine produced them.
func (e *Exchange) SubmitOrder(ctx context.Context, req *model.SubmitOrder) (model.Order, error) {
	m, err := e.market(req.Symbol)
	if err != nil {
		return model.Order{}, err
	}
	if _, ok := e.events.GetOrderID(req.GatewayID); ok {
		return model.Order{}, errDuplicateOrder
	}
	side, err := engineSide(req.Side)
	if err != nil {
		return model.Order{}, err
	}
	qty, err := m.engineQty(req.Quantity)
	if err != nil {
		return model.Order{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var (
		eo     orderbook.Order
		fills  []orderbook.Trade
		engErr error
	)
	switch req.Type {
	case model.OrderTypeLimit:
		price, perr := m.enginePrice(req.Price)
		if perr != nil {
			return model.Order{}, perr
		}
		var expiry int64
		if !req.Expiry.IsZero() {
			expiry = req.Expiry.Unix()
		}
		eo, fills, engErr = m.book.SubmitLimit(ctx, req.Account, side, price, qty, expiry)
	case model.OrderTypeMarket:
		eo, fills, engErr = m.book.SubmitMarket(ctx, req.Account, side, qty)
	default:
		return model.Order{}, orderbook.ErrInvalidInput
	}
	if engErr != nil {
		return model.Order{}, engErr
	}

	now := time.Now()
	order := &model.Order{
		OrderID:        uuid.NewString(),
		EngineID:       eo.ID,
		GatewayID:      req.GatewayID,
		Account:        req.Account,
		Symbol:         req.Symbol,
		Side:           req.Side,
		Type:           req.Type,
		Price:          req.Price,
		Quantity:       req.Quantity,
		Expiry:         req.Expiry,
		Status:         model.OrderStatusNew,
		ExecType:       model.ExecTypeNew,
		LeavesQuantity: req.Quantity,
		TransactTime:   now,
	}
	e.orders.Store(order.OrderID, order)
	m.byEngine[eo.ID] = order.OrderID
	e.events.TrackGateway(req.GatewayID, order.OrderID)
	e.emit(ctx, order, now)

	for _, t := range fills {
		qtyDec := m.qtyDec(t.Qty)
		priceDec := m.priceDec(t.Price)

		applyFill(order, qtyDec, priceDec)
		e.emit(ctx, order, now)

		if makerID, ok := m.byEngine[t.MakerOrderID]; ok {
			if maker, err := e.orderByID(makerID); err == nil {
				applyFill(maker, qtyDec, priceDec)
				e.emit(ctx, maker, now)
			}
		}
		e.publishTrade(ctx, m, order, t, now)
	}

	// a market order's unfilled remainder was refunded by the book; close the
	// report out as canceled
	if eo.IsCanceled && !order.IsTerminal() {
		order.Status = model.OrderStatusCanceled
		order.ExecType = model.ExecTypeCanceled
		order.LeavesQuantity = decimal.Zero
		e.emit(ctx, order, now)
	}
	return *order, nil
}

// CancelOrder cancels by the client's original gateway id. The book refunds
// whatever remains escrowed; an expired order is reported as Expired rather
// than Canceled.
func (e *Exchange) CancelOrder(ctx context.Context, req *model.CancelOrder) (model.Order, error) {
	orderID, ok := e.events.GetOrderID(req.OrigGatewayID)
	if !ok {
		return model.Order{}, errGatewayIDNotFound
	}
	order, err := e.orderByID(orderID)
	if err != nil {
		return model.Order{}, err
	}
	m, err := e.market(order.Symbol)
	if err != nil {
		return model.Order{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if order.IsTerminal() {
		return model.Order{}, errInvalidOrderStatus
	}
	eo, err := m.book.Cancel(ctx, order.EngineID, req.Account)
	if err != nil {
		return model.Order{}, err
	}

	now := time.Now()
	if eo.Expiry != 0 && eo.Expiry < now.Unix() {
		order.Status = model.OrderStatusExpired
		order.ExecType = model.ExecTypeExpired
	} else {
		order.Status = model.OrderStatusCanceled
		order.ExecType = model.ExecTypeCanceled
	}
	order.LeavesQuantity = decimal.Zero
	if req.GatewayID != "" {
		e.events.TrackGateway(req.GatewayID, order.OrderID)
	}
	e.emit(ctx, order, now)
	return *order, nil
}

// OrderByGatewayID resolves a client id to the current order state.
func (e *Exchange) OrderByGatewayID(gatewayID string) (model.Order, error) {
	orderID, ok := e.events.GetOrderID(gatewayID)
	if !ok {
		return model.Order{}, errGatewayIDNotFound
	}
	o, err := e.orderByID(orderID)
	if err != nil {
		return model.Order{}, err
	}
	return *o, nil
}

// OrdersByAccount lists the account's orders on one market, active and
// historical.
func (e *Exchange) OrdersByAccount(symbol, account string) ([]model.Order, error) {
	m, err := e.market(symbol)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.Order
	for _, eo := range m.book.OrdersByOwner(account) {
		if id, ok := m.byEngine[eo.ID]; ok {
			if o, err := e.orderByID(id); err == nil {
				out = append(out, *o)
			}
		}
	}
	return out, nil
}

// Depth returns up to n resting orders nearest the best price on one side.
func (e *Exchange) Depth(symbol string, side model.OrderSide, n int) ([]model.Order, error) {
	m, err := e.market(symbol)
	if err != nil {
		return nil, err
	}
	s, err := engineSide(side)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.Order
	for _, eo := range m.book.Depth(s, n) {
		if id, ok := m.byEngine[eo.ID]; ok {
			if o, err := e.orderByID(id); err == nil {
				out = append(out, *o)
			}
		}
	}
	return out, nil
}

func (e *Exchange) BestPrice(symbol string, side model.OrderSide) (decimal.Decimal, bool, error) {
	m, err := e.market(symbol)
	if err != nil {
		return decimal.Zero, false, err
	}
	s, err := engineSide(side)
	if err != nil {
		return decimal.Zero, false, err
	}
	p, ok := m.book.BestPrice(s)
	if !ok {
		return decimal.Zero, false, nil
	}
	return m.priceDec(p), true, nil
}

// ReferencePrice is advisory market data from the oracle; it never gates
// matching.
func (e *Exchange) ReferencePrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	if e.oracle == nil {
		return decimal.Zero, oracle.ErrNoPrice
	}
	return e.oracle.ReferencePrice(ctx, symbol)
}

// SetFeeBips changes one fee leg on a market. Only the configured admin
// account may call it.
func (e *Exchange) SetFeeBips(caller, symbol string, side model.OrderSide, bips int64) error {
	if caller != e.cfg.AdminAccount {
		return errNotAuthorized
	}
	m, err := e.market(symbol)
	if err != nil {
		return err
	}
	s, err := engineSide(side)
	if err != nil {
		return err
	}
	return m.book.SetFeeBips(s, bips)
}

func (e *Exchange) SetTreasury(caller, symbol, addr string) error {
	if caller != e.cfg.AdminAccount {
		return errNotAuthorized
	}
	m, err := e.market(symbol)
	if err != nil {
		return err
	}
	return m.book.SetTreasury(addr)
}

func (e *Exchange) orderByID(orderID string) (*model.Order, error) {
	v, ok := e.orders.Load(orderID)
	if !ok {
		return nil, errOrderIDNotFound
	}
	return v.(*model.Order), nil
}

func applyFill(o *model.Order, qty, price decimal.Decimal) {
	o.CumQuantity = o.CumQuantity.Add(qty)
	o.LeavesQuantity = o.LeavesQuantity.Sub(qty)
	o.LastQuantity = qty
	o.LastPrice = price
	o.ExecType = model.ExecTypeTrade
	if o.LeavesQuantity.IsPositive() {
		o.Status = model.OrderStatusPartiallyFilled
	} else {
		o.Status = model.OrderStatusFilled
	}
}

func (e *Exchange) emit(ctx context.Context, o *model.Order, now time.Time) {
	bk := *o
	ev := model.NewOrderEvent(bk, now)
	e.events.AddEvent(ev)
	e.gateway.OnOrderReport(ctx, bk)
	if e.trades != nil {
		if err := e.trades.PublishJSON(ctx, e.cfg.OrderEventTopic, bk.OrderID, ev); err != nil {
			zap.S().Warnf("publish order event: %v", err)
		}
	}
}

func (e *Exchange) publishTrade(ctx context.Context, m *market, taker *model.Order, t orderbook.Trade, now time.Time) {
	if e.trades == nil {
		return
	}
	ev := model.TradeEvent{
		Symbol:       m.cfg.Symbol,
		TakerOrderID: taker.OrderID,
		MakerOrderID: m.byEngine[t.MakerOrderID],
		TakerSide:    taker.Side,
		Price:        m.priceDec(t.Price),
		Qty:          m.qtyDec(t.Qty),
		QuoteQty:     m.quoteDec(t.QuoteQty),
		BaseFee:      m.qtyDec(t.BaseFee),
		QuoteFee:     m.quoteDec(t.QuoteFee),
		ExecutedAt:   now,
	}
	if err := e.trades.PublishJSON(ctx, e.cfg.TradeTopic, m.cfg.Symbol, ev); err != nil {
		zap.S().Warnf("publish trade: %v", err)
	}
}

func (e *Exchange) startCleaner(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.cleanup()
		case <-e.stopCh:
			return
		}
	}
}

// cleanup drops terminal orders from the in-memory maps so long-running
// sessions do not grow without bound.
func (e *Exchange) cleanup() {
	e.orders.Range(func(k, v any) bool {
		o := v.(*model.Order)
		if !o.IsTerminal() {
			return true
		}
		if m, err := e.market(o.Symbol); err == nil {
			m.mu.Lock()
			delete(m.byEngine, o.EngineID)
			m.mu.Unlock()
		}
		e.orders.Delete(o.OrderID)
		e.events.DeleteByOrderID(o.OrderID)
		return true
	})
}
