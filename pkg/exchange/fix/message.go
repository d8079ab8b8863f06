package fixgateway

import (
	"sync"

	"github.com/google/uuid"
	"github.com/quickfixgo/enum"
	"github.com/quickfixgo/fix44/executionreport"
	"github.com/quickfixgo/quickfix"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/joripage/prorata-orderbook/pkg/exchange/model"
)

var (
	OrderStatusMapping map[model.OrderStatus]enum.OrdStatus = map[model.OrderStatus]enum.OrdStatus{
		model.OrderStatusNew:             enum.OrdStatus_NEW,
		model.OrderStatusPartiallyFilled: enum.OrdStatus_PARTIALLY_FILLED,
		model.OrderStatusFilled:          enum.OrdStatus_FILLED,
		model.OrderStatusCanceled:        enum.OrdStatus_CANCELED,
		model.OrderStatusExpired:         enum.OrdStatus_EXPIRED,
		model.OrderStatusRejected:        enum.OrdStatus_REJECTED,
	}

	ExecTypeMapping map[model.OrderExecType]enum.ExecType = map[model.OrderExecType]enum.ExecType{
		model.ExecTypeNew:      enum.ExecType_NEW,
		model.ExecTypeTrade:    enum.ExecType_TRADE,
		model.ExecTypeCanceled: enum.ExecType_CANCELED,
		model.ExecTypeExpired:  enum.ExecType_EXPIRED,
		model.ExecTypeRejected: enum.ExecType_REJECTED,
	}

	SideMapping map[model.OrderSide]enum.Side = map[model.OrderSide]enum.Side{
		model.OrderSideBuy:  enum.Side_BUY,
		model.OrderSideSell: enum.Side_SELL,
	}
)

// MessagePool recycles quickfix messages between reports.
type MessagePool struct {
	pool sync.Pool
}

func NewMessagePool() *MessagePool {
	return &MessagePool{
		pool: sync.Pool{
			New: func() interface{} {
				m := quickfix.NewMessage()
				resetMessage(m)
				return m
			},
		},
	}
}

func (mp *MessagePool) Get() *quickfix.Message {
	m := mp.pool.Get().(*quickfix.Message)
	resetMessage(m)
	return m
}

func (mp *MessagePool) Put(m *quickfix.Message) {
	resetMessage(m)
	mp.pool.Put(m)
}

func resetMessage(m *quickfix.Message) {
	m.Header.Init()
	m.Body.Init()
	m.Trailer.Init()
	m.Header.Clear()
	m.Body.Clear()
	m.Trailer.Clear()
}

var execReportPool = NewMessagePool()

const qtyDecimals = 8

func orderReportToExecutionReport(order model.Order, sessionID *quickfix.SessionID) error {
	msg := execReportPool.Get()
	execReportMsg := executionreport.FromMessage(msg)

	execReportMsg.SetMsgType(enum.MsgType_EXECUTION_REPORT)
	execReportMsg.SetOrderID(order.OrderID)
	execReportMsg.SetExecID(uuid.NewString())
	execReportMsg.SetExecType(ExecTypeMapping[order.ExecType])
	execReportMsg.SetOrdStatus(OrderStatusMapping[order.Status])
	execReportMsg.SetSide(SideMapping[order.Side])
	execReportMsg.SetSymbol(order.Symbol)
	execReportMsg.SetClOrdID(order.GatewayID)
	execReportMsg.SetAccount(order.Account)
	execReportMsg.SetOrderQty(order.Quantity, qtyDecimals)
	execReportMsg.SetPrice(order.Price, qtyDecimals)
	execReportMsg.SetLeavesQty(order.LeavesQuantity, qtyDecimals)
	execReportMsg.SetCumQty(order.CumQuantity, qtyDecimals)
	execReportMsg.SetLastQty(order.LastQuantity, qtyDecimals)
	execReportMsg.SetLastPx(order.LastPrice, qtyDecimals)
	execReportMsg.SetAvgPx(order.LastPrice, qtyDecimals)
	execReportMsg.SetTransactTime(order.TransactTime)

	err := quickfix.SendToTarget(execReportMsg, *sessionID)
	if err != nil {
		zap.S().Warnf("send execution report: %v", err)
		return err
	}

	execReportPool.Put(msg)

	return nil
}

func rejectToExecutionReport(clOrdID, account, symbol string, side enum.Side, qty decimal.Decimal, reason string, sessionID *quickfix.SessionID) error {
	msg := execReportPool.Get()
	execReportMsg := executionreport.FromMessage(msg)

	execReportMsg.SetMsgType(enum.MsgType_EXECUTION_REPORT)
	execReportMsg.SetOrderID("NONE")
	execReportMsg.SetExecID(uuid.NewString())
	execReportMsg.SetExecType(enum.ExecType_REJECTED)
	execReportMsg.SetOrdStatus(enum.OrdStatus_REJECTED)
	execReportMsg.SetSide(side)
	execReportMsg.SetSymbol(symbol)
	execReportMsg.SetClOrdID(clOrdID)
	execReportMsg.SetAccount(account)
	execReportMsg.SetOrderQty(qty, qtyDecimals)
	execReportMsg.SetLeavesQty(decimal.Zero, qtyDecimals)
	execReportMsg.SetCumQty(decimal.Zero, qtyDecimals)
	execReportMsg.SetAvgPx(decimal.Zero, qtyDecimals)
	execReportMsg.SetText(reason)

	err := quickfix.SendToTarget(execReportMsg, *sessionID)
	if err != nil {
		zap.S().Warnf("send reject: %v", err)
		return err
	}

	execReportPool.Put(msg)

	return nil
}
