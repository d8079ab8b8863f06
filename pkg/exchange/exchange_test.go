package exchange

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joripage/prorata-orderbook/pkg/exchange/model"
	"github.com/joripage/prorata-orderbook/pkg/ledger"
	"github.com/joripage/prorata-orderbook/pkg/orderbook"
)

type stubGateway struct {
	mu      sync.Mutex
	reports []model.Order
}

func (g *stubGateway) Start(ctx context.Context) error { return nil }

func (g *stubGateway) OnOrderReport(_ context.Context, order model.Order) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reports = append(g.reports, order)
}

func (g *stubGateway) reportsFor(gatewayID string) []model.Order {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []model.Order
	for _, r := range g.reports {
		if r.GatewayID == gatewayID {
			out = append(out, r)
		}
	}
	return out
}

type capturePublisher struct {
	mu      sync.Mutex
	topics  []string
	payload []any
}

func (p *capturePublisher) PublishJSON(_ context.Context, topic, key string, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.payload = append(p.payload, v)
	return nil
}

func newTestExchange(t *testing.T, policy orderbook.LiquidityPolicy) (*Exchange, *stubGateway, *ledger.MemoryLedger, *capturePublisher) {
	t.Helper()

	l := ledger.NewMemoryLedger()
	for _, acct := range []string{"alice", "bob", "carol"} {
		l.Deposit(acct, "BTC", 1_000_000_000_000)
		l.Deposit(acct, "USDT", 100_000_000_000_000)
	}

	gw := &stubGateway{}
	pub := &capturePublisher{}
	ex := New(Config{
		Markets: []MarketConfig{{
			Symbol:          "BTC-USDT",
			BaseAsset:       "BTC",
			QuoteAsset:      "USDT",
			PriceScale:      2,
			QtyScale:        8,
			LiquidityPolicy: policy,
		}},
		AdminAccount: "admin",
		Treasury:     "treasury",
	}, gw, l, WithTradePublisher(pub))
	return ex, gw, l, pub
}

func limitOrder(gatewayID, account string, side model.OrderSide, price, qty int64) *model.SubmitOrder {
	return &model.SubmitOrder{
		GatewayID:    gatewayID,
		Account:      account,
		Symbol:       "BTC-USDT",
		Type:         model.OrderTypeLimit,
		Side:         side,
		Price:        decimal.NewFromInt(price),
		Quantity:     decimal.NewFromInt(qty),
		TransactTime: time.Now(),
	}
}

func TestSubmitLimitCrossReports(t *testing.T) {
	ex, gw, _, _ := newTestExchange(t, orderbook.RejectUnfilled)
	ctx := context.Background()

	maker, err := ex.SubmitOrder(ctx, limitOrder("m-1", "alice", model.OrderSideSell, 101, 10))
	if err != nil {
		t.Fatalf("submit maker: %v", err)
	}
	if maker.Status != model.OrderStatusNew {
		t.Fatalf("maker status = %s, want New", maker.Status)
	}

	taker, err := ex.SubmitOrder(ctx, limitOrder("t-1", "bob", model.OrderSideBuy, 102, 4))
	if err != nil {
		t.Fatalf("submit taker: %v", err)
	}
	if taker.Status != model.OrderStatusFilled {
		t.Fatalf("taker status = %s, want Filled", taker.Status)
	}
	if !taker.CumQuantity.Equal(decimal.NewFromInt(4)) {
		t.Fatalf("taker cum = %s, want 4", taker.CumQuantity)
	}
	// fill happens at the resting price
	if !taker.LastPrice.Equal(decimal.NewFromInt(101)) {
		t.Fatalf("taker last price = %s, want 101", taker.LastPrice)
	}

	takerReports := gw.reportsFor("t-1")
	if len(takerReports) != 2 {
		t.Fatalf("taker reports = %d, want 2 (New then Trade)", len(takerReports))
	}
	if takerReports[0].ExecType != model.ExecTypeNew || takerReports[1].ExecType != model.ExecTypeTrade {
		t.Fatalf("taker report exec types = %s,%s", takerReports[0].ExecType, takerReports[1].ExecType)
	}

	makerReports := gw.reportsFor("m-1")
	if len(makerReports) != 2 {
		t.Fatalf("maker reports = %d, want 2", len(makerReports))
	}
	last := makerReports[len(makerReports)-1]
	if last.Status != model.OrderStatusPartiallyFilled {
		t.Fatalf("maker status = %s, want PartiallyFilled", last.Status)
	}
	if !last.LeavesQuantity.Equal(decimal.NewFromInt(6)) {
		t.Fatalf("maker leaves = %s, want 6", last.LeavesQuantity)
	}
}

func TestDuplicateGatewayID(t *testing.T) {
	ex, _, _, _ := newTestExchange(t, orderbook.RejectUnfilled)
	ctx := context.Background()

	if _, err := ex.SubmitOrder(ctx, limitOrder("dup-1", "alice", model.OrderSideBuy, 100, 1)); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if _, err := ex.SubmitOrder(ctx, limitOrder("dup-1", "alice", model.OrderSideBuy, 100, 1)); err != errDuplicateOrder {
		t.Fatalf("second submit err = %v, want errDuplicateOrder", err)
	}
}

func TestCancelByGatewayID(t *testing.T) {
	ex, gw, l, _ := newTestExchange(t, orderbook.RejectUnfilled)
	ctx := context.Background()

	if _, err := ex.SubmitOrder(ctx, limitOrder("c-1", "alice", model.OrderSideBuy, 100, 5)); err != nil {
		t.Fatalf("submit: %v", err)
	}
	escrowed := l.Escrowed("alice", "USDT")
	if escrowed == 0 {
		t.Fatal("expected quote escrow for resting bid")
	}

	canceled, err := ex.CancelOrder(ctx, &model.CancelOrder{
		GatewayID:     "c-2",
		OrigGatewayID: "c-1",
		Account:       "alice",
		Symbol:        "BTC-USDT",
	})
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if canceled.Status != model.OrderStatusCanceled {
		t.Fatalf("status = %s, want Canceled", canceled.Status)
	}
	if got := l.Escrowed("alice", "USDT"); got != 0 {
		t.Fatalf("escrow after cancel = %d, want 0", got)
	}

	if _, err := ex.CancelOrder(ctx, &model.CancelOrder{
		OrigGatewayID: "c-1",
		Account:       "alice",
		Symbol:        "BTC-USDT",
	}); err != errInvalidOrderStatus {
		t.Fatalf("second cancel err = %v, want errInvalidOrderStatus", err)
	}

	reports := gw.reportsFor("c-1")
	last := reports[len(reports)-1]
	if last.ExecType != model.ExecTypeCanceled {
		t.Fatalf("last exec type = %s, want Canceled", last.ExecType)
	}
}

func TestCancelExpiredOrderCleanedUp(t *testing.T) {
	ex, _, l, _ := newTestExchange(t, orderbook.RejectUnfilled)
	ctx := context.Background()

	req := limitOrder("x-1", "alice", model.OrderSideBuy, 100, 5)
	req.Expiry = time.Now().Add(1 * time.Second)
	if _, err := ex.SubmitOrder(ctx, req); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// expiry is lazy: the escrow comes back only on explicit cancel, which
	// reports the order as Expired once the deadline has passed
	time.Sleep(2100 * time.Millisecond)
	canceled, err := ex.CancelOrder(ctx, &model.CancelOrder{
		GatewayID:     "x-2",
		OrigGatewayID: "x-1",
		Account:       "alice",
		Symbol:        "BTC-USDT",
	})
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if canceled.Status != model.OrderStatusExpired || canceled.ExecType != model.ExecTypeExpired {
		t.Fatalf("status = %s/%s, want Expired/Expired", canceled.Status, canceled.ExecType)
	}
	if got := l.Escrowed("alice", "USDT"); got != 0 {
		t.Fatalf("escrow after expired cancel = %d, want 0", got)
	}
	if !canceled.IsTerminal() {
		t.Fatal("expired order must be terminal")
	}

	ex.cleanup()
	if _, err := ex.OrderByGatewayID("x-1"); err != errGatewayIDNotFound {
		t.Fatalf("lookup after cleanup err = %v, want errGatewayIDNotFound", err)
	}
	m := ex.markets["BTC-USDT"]
	m.mu.Lock()
	remaining := len(m.byEngine)
	m.mu.Unlock()
	if remaining != 0 {
		t.Fatalf("engine id mappings after cleanup = %d, want 0", remaining)
	}
}

func TestCancelUnknownGatewayID(t *testing.T) {
	ex, _, _, _ := newTestExchange(t, orderbook.RejectUnfilled)

	_, err := ex.CancelOrder(context.Background(), &model.CancelOrder{
		OrigGatewayID: "nope",
		Account:       "alice",
		Symbol:        "BTC-USDT",
	})
	if err != errGatewayIDNotFound {
		t.Fatalf("err = %v, want errGatewayIDNotFound", err)
	}
}

func TestUnknownSymbol(t *testing.T) {
	ex, _, _, _ := newTestExchange(t, orderbook.RejectUnfilled)

	req := limitOrder("s-1", "alice", model.OrderSideBuy, 100, 1)
	req.Symbol = "DOGE-USDT"
	if _, err := ex.SubmitOrder(context.Background(), req); err != errUnknownSymbol {
		t.Fatalf("err = %v, want errUnknownSymbol", err)
	}
}

func TestScaleValidation(t *testing.T) {
	ex, _, _, _ := newTestExchange(t, orderbook.RejectUnfilled)
	ctx := context.Background()

	req := limitOrder("p-1", "alice", model.OrderSideBuy, 0, 1)
	req.Price = decimal.RequireFromString("100.001") // finer than PriceScale 2
	if _, err := ex.SubmitOrder(ctx, req); err != orderbook.ErrInvalidInput {
		t.Fatalf("price scale err = %v, want ErrInvalidInput", err)
	}

	req = limitOrder("p-2", "alice", model.OrderSideBuy, 100, 0)
	req.Quantity = decimal.RequireFromString("0.0000000001") // finer than QtyScale 8
	if _, err := ex.SubmitOrder(ctx, req); err != orderbook.ErrInvalidInput {
		t.Fatalf("qty scale err = %v, want ErrInvalidInput", err)
	}
}

func TestMarketOrderRejectedOnEmptyBook(t *testing.T) {
	ex, _, _, _ := newTestExchange(t, orderbook.RejectUnfilled)

	req := &model.SubmitOrder{
		GatewayID: "mk-1",
		Account:   "bob",
		Symbol:    "BTC-USDT",
		Type:      model.OrderTypeMarket,
		Side:      model.OrderSideBuy,
		Quantity:  decimal.NewFromInt(1),
	}
	if _, err := ex.SubmitOrder(context.Background(), req); err != orderbook.ErrInsufficientLiquidity {
		t.Fatalf("err = %v, want ErrInsufficientLiquidity", err)
	}
}

func TestMarketOrderPartialRefundCloses(t *testing.T) {
	ex, _, _, _ := newTestExchange(t, orderbook.PartialRefund)
	ctx := context.Background()

	if _, err := ex.SubmitOrder(ctx, limitOrder("pm-1", "alice", model.OrderSideSell, 101, 3)); err != nil {
		t.Fatalf("maker: %v", err)
	}

	taker, err := ex.SubmitOrder(ctx, &model.SubmitOrder{
		GatewayID: "pm-2",
		Account:   "bob",
		Symbol:    "BTC-USDT",
		Type:      model.OrderTypeMarket,
		Side:      model.OrderSideBuy,
		Quantity:  decimal.NewFromInt(5),
	})
	if err != nil {
		t.Fatalf("taker: %v", err)
	}
	if taker.Status != model.OrderStatusCanceled {
		t.Fatalf("status = %s, want Canceled (remainder closed out)", taker.Status)
	}
	if !taker.CumQuantity.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("cum = %s, want 3", taker.CumQuantity)
	}
}

func TestTradeEventPublished(t *testing.T) {
	ex, _, _, pub := newTestExchange(t, orderbook.RejectUnfilled)
	ctx := context.Background()

	if _, err := ex.SubmitOrder(ctx, limitOrder("te-1", "alice", model.OrderSideSell, 100, 2)); err != nil {
		t.Fatalf("maker: %v", err)
	}
	if _, err := ex.SubmitOrder(ctx, limitOrder("te-2", "bob", model.OrderSideBuy, 100, 2)); err != nil {
		t.Fatalf("taker: %v", err)
	}

	pub.mu.Lock()
	defer pub.mu.Unlock()
	var trades []model.TradeEvent
	for i, topic := range pub.topics {
		if topic == defaultTradeTopic {
			trades = append(trades, pub.payload[i].(model.TradeEvent))
		}
	}
	if len(trades) != 1 {
		t.Fatalf("trade events = %d, want 1", len(trades))
	}
	tr := trades[0]
	if !tr.Price.Equal(decimal.NewFromInt(100)) || !tr.Qty.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("trade = %s @ %s, want 2 @ 100", tr.Qty, tr.Price)
	}
	if !tr.QuoteQty.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("quote qty = %s, want 200", tr.QuoteQty)
	}
	if tr.TakerSide != model.OrderSideBuy {
		t.Fatalf("taker side = %s, want BUY", tr.TakerSide)
	}
}

func TestAdminGuards(t *testing.T) {
	ex, _, _, _ := newTestExchange(t, orderbook.RejectUnfilled)

	if err := ex.SetFeeBips("mallory", "BTC-USDT", model.OrderSideBuy, 50); err != errNotAuthorized {
		t.Fatalf("err = %v, want errNotAuthorized", err)
	}
	if err := ex.SetFeeBips("admin", "BTC-USDT", model.OrderSideBuy, 50); err != nil {
		t.Fatalf("admin set fee: %v", err)
	}
	if err := ex.SetFeeBips("admin", "BTC-USDT", model.OrderSideBuy, 10000); err != orderbook.ErrInvalidValue {
		t.Fatalf("err = %v, want ErrInvalidValue", err)
	}
	if err := ex.SetTreasury("mallory", "BTC-USDT", "vault"); err != errNotAuthorized {
		t.Fatalf("err = %v, want errNotAuthorized", err)
	}
	if err := ex.SetTreasury("admin", "BTC-USDT", ""); err != orderbook.ErrInvalidValue {
		t.Fatalf("err = %v, want ErrInvalidValue", err)
	}
}

func TestBestPriceAndDepth(t *testing.T) {
	ex, _, _, _ := newTestExchange(t, orderbook.RejectUnfilled)
	ctx := context.Background()

	if _, err := ex.SubmitOrder(ctx, limitOrder("d-1", "alice", model.OrderSideBuy, 99, 1)); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := ex.SubmitOrder(ctx, limitOrder("d-2", "bob", model.OrderSideBuy, 100, 2)); err != nil {
		t.Fatalf("submit: %v", err)
	}

	best, ok, err := ex.BestPrice("BTC-USDT", model.OrderSideBuy)
	if err != nil || !ok {
		t.Fatalf("best price err=%v ok=%v", err, ok)
	}
	if !best.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("best = %s, want 100", best)
	}

	depth, err := ex.Depth("BTC-USDT", model.OrderSideBuy, 10)
	if err != nil {
		t.Fatalf("depth: %v", err)
	}
	if len(depth) != 2 {
		t.Fatalf("depth = %d, want 2", len(depth))
	}
	if depth[0].GatewayID != "d-2" {
		t.Fatalf("depth[0] = %s, want d-2 (best price first)", depth[0].GatewayID)
	}

	_, ok, err = ex.BestPrice("BTC-USDT", model.OrderSideSell)
	if err != nil || ok {
		t.Fatalf("ask best should be absent, err=%v ok=%v", err, ok)
	}
}

func TestOrderByGatewayID(t *testing.T) {
	ex, _, _, _ := newTestExchange(t, orderbook.RejectUnfilled)
	ctx := context.Background()

	if _, err := ex.SubmitOrder(ctx, limitOrder("q-1", "alice", model.OrderSideBuy, 100, 5)); err != nil {
		t.Fatalf("submit: %v", err)
	}

	o, err := ex.OrderByGatewayID("q-1")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if o.Account != "alice" || o.Status != model.OrderStatusNew {
		t.Fatalf("order = %+v", o)
	}

	if _, err := ex.OrderByGatewayID("missing"); err != errGatewayIDNotFound {
		t.Fatalf("err = %v, want errGatewayIDNotFound", err)
	}
}
