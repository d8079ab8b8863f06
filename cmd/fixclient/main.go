package main

import (
	"flag"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/quickfixgo/enum"
	"github.com/quickfixgo/field"
	fix42nos "github.com/quickfixgo/fix42/newordersingle"
	fix44nos "github.com/quickfixgo/fix44/newordersingle"
	fix44ocr "github.com/quickfixgo/fix44/ordercancelrequest"
	"github.com/quickfixgo/quickfix"
	"github.com/quickfixgo/quickfix/log/file"
	"github.com/shopspring/decimal"
)

type InitiatorApp struct {
	sessionID *quickfix.SessionID
}

func (a *InitiatorApp) OnCreate(sessionID quickfix.SessionID) {
	a.sessionID = &sessionID
}

func (a *InitiatorApp) OnLogon(sessionID quickfix.SessionID) {
	log.Println("Logon success", sessionID)
	sendCrossingLimitOrders(sessionID)
	sendMarketOrder(sessionID)
	sendRestThenCancel(sessionID)
}

func (a *InitiatorApp) OnLogout(sessionID quickfix.SessionID)                       {}
func (a *InitiatorApp) ToAdmin(msg *quickfix.Message, sessionID quickfix.SessionID) {}
func (a *InitiatorApp) ToApp(msg *quickfix.Message, sessionID quickfix.SessionID) error {
	return nil
}
func (a *InitiatorApp) FromAdmin(msg *quickfix.Message, sessionID quickfix.SessionID) quickfix.MessageRejectError {
	return nil
}
func (a *InitiatorApp) FromApp(msg *quickfix.Message, sessionID quickfix.SessionID) quickfix.MessageRejectError {
	log.Printf("received report: %s", msg.String())
	return nil
}

// === Message sender ===

// two limits that cross at 101: the resting ask fills the incoming bid
func sendCrossingLimitOrders(sessionID quickfix.SessionID) {
	orderSell := fix44nos.New(
		field.NewClOrdID(randSeq(17)),
		field.NewSide(enum.Side_SELL),
		field.NewTransactTime(time.Now()),
		field.NewOrdType(enum.OrdType_LIMIT))
	orderSell.SetSymbol("BTC-USDT")
	orderSell.SetAccount("acct-maker")
	orderSell.SetPrice(decimal.NewFromInt(101), 0)
	orderSell.SetOrderQty(decimal.NewFromInt(10), 0)
	orderSell.SetTimeInForce(enum.TimeInForce_GOOD_TILL_CANCEL)
	orderSell.SetSenderCompID(sessionID.SenderCompID)
	orderSell.SetTargetCompID(sessionID.TargetCompID)
	err := quickfix.Send(orderSell)
	log.Println(err)

	orderBuy := fix44nos.New(
		field.NewClOrdID(randSeq(17)),
		field.NewSide(enum.Side_BUY),
		field.NewTransactTime(time.Now()),
		field.NewOrdType(enum.OrdType_LIMIT))
	orderBuy.SetSymbol("BTC-USDT")
	orderBuy.SetAccount("acct-taker")
	orderBuy.SetPrice(decimal.NewFromInt(102), 0)
	orderBuy.SetOrderQty(decimal.NewFromInt(4), 0)
	orderBuy.SetTimeInForce(enum.TimeInForce_GOOD_TILL_CANCEL)
	orderBuy.SetSenderCompID(sessionID.SenderCompID)
	orderBuy.SetTargetCompID(sessionID.TargetCompID)
	err = quickfix.Send(orderBuy)
	log.Println(err)
}

// a fix42 session speaks the same book
func sendMarketOrder(sessionID quickfix.SessionID) {
	order := fix42nos.New(
		field.NewClOrdID(randSeq(17)),
		field.NewHandlInst("1"),
		field.NewSymbol("BTC-USDT"),
		field.NewSide(enum.Side_BUY),
		field.NewTransactTime(time.Now()),
		field.NewOrdType(enum.OrdType_MARKET))
	order.SetAccount("acct-taker")
	order.SetOrderQty(decimal.NewFromInt(2), 0)
	order.SetSenderCompID(sessionID.SenderCompID)
	order.SetTargetCompID(sessionID.TargetCompID)
	err := quickfix.Send(order)
	log.Println(err)
}

func sendRestThenCancel(sessionID quickfix.SessionID) {
	clOrdID := randSeq(17)

	order := fix44nos.New(
		field.NewClOrdID(clOrdID),
		field.NewSide(enum.Side_BUY),
		field.NewTransactTime(time.Now()),
		field.NewOrdType(enum.OrdType_LIMIT))
	order.SetSymbol("BTC-USDT")
	order.SetAccount("acct-maker")
	order.SetPrice(decimal.NewFromInt(95), 0)
	order.SetOrderQty(decimal.NewFromInt(5), 0)
	order.SetTimeInForce(enum.TimeInForce_GOOD_TILL_DATE)
	order.SetExpireTime(time.Now().Add(1 * time.Hour))
	order.SetSenderCompID(sessionID.SenderCompID)
	order.SetTargetCompID(sessionID.TargetCompID)
	err := quickfix.Send(order)
	log.Println(err)

	time.Sleep(2 * time.Second)

	cancel := fix44ocr.New(
		field.NewOrigClOrdID(clOrdID),
		field.NewClOrdID(randSeq(17)),
		field.NewSide(enum.Side_BUY),
		field.NewTransactTime(time.Now()))
	cancel.SetSymbol("BTC-USDT")
	cancel.SetAccount("acct-maker")
	cancel.SetSenderCompID(sessionID.SenderCompID)
	cancel.SetTargetCompID(sessionID.TargetCompID)
	err = quickfix.Send(cancel)
	log.Println(err)
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")

func randSeq(n int) string {
	b := make([]rune, n)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config-file", "./config/fixclient.cfg", "Specify fix config file path")
	flag.Parse()

	cfgFile, err := os.Open(cfgPath)
	if err != nil {
		log.Fatalf("open config: %v", err)
	}
	defer cfgFile.Close() // nolint

	appSettings, err := quickfix.ParseSettings(cfgFile)
	if err != nil {
		log.Fatalf("parse settings: %v", err)
	}

	app := &InitiatorApp{}
	logFactory, _ := file.NewLogFactory(appSettings)
	initiator, err := quickfix.NewInitiator(app, quickfix.NewMemoryStoreFactory(), appSettings, logFactory)
	if err != nil {
		log.Fatalf("create initiator: %v", err)
	}

	if err := initiator.Start(); err != nil {
		log.Fatalf("start initiator: %v", err)
	}
	defer initiator.Stop()

	select {}
}
