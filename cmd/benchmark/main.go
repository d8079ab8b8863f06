package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/joripage/prorata-orderbook/pkg/ledger"
	"github.com/joripage/prorata-orderbook/pkg/orderbook"
)

const (
	numOrders = 1_000_000
	numOwners = 1_000
	minPrice  = 10000
	maxPrice  = 20000
	minQty    = 1
	maxQty    = 100
)

func main() {
	rand.Seed(time.Now().UnixNano())

	l := ledger.NewMemoryLedger()
	for i := 0; i < numOwners; i++ {
		owner := fmt.Sprintf("acct-%04d", i)
		l.Deposit(owner, "BASE", 1<<40)
		l.Deposit(owner, "QUOTE", 1<<50)
	}

	book := orderbook.New(orderbook.Config{
		Symbol:          "BASE-QUOTE",
		BaseAsset:       "BASE",
		QuoteAsset:      "QUOTE",
		Treasury:        "treasury",
		BuyFeeBips:      10,
		SellFeeBips:     10,
		LiquidityPolicy: orderbook.PartialRefund,
	}, l)

	ctx := context.Background()

	totalMatched := 0
	totalQty := int64(0)
	start := time.Now()
	for i := 0; i < numOrders; i++ {
		owner := fmt.Sprintf("acct-%04d", rand.Intn(numOwners))
		side := orderbook.Bid
		if rand.Intn(2) == 0 {
			side = orderbook.Ask
		}
		price := int64(rand.Intn(maxPrice-minPrice+1) + minPrice)
		qty := int64(rand.Intn(maxQty-minQty+1) + minQty)

		_, trades, err := book.SubmitLimit(ctx, owner, side, price, qty, 0)
		if err != nil {
			log.Printf("submit err=%v", err)
			continue
		}
		for _, t := range trades {
			totalMatched++
			totalQty += t.Qty
			if totalMatched <= 5 {
				log.Printf("Match: taker[%d] <=> maker[%d] @ %d Qty %d\n",
					t.TakerOrderID, t.MakerOrderID, t.Price, t.Qty)
			}
		}
	}

	elapsed := time.Since(start)
	fmt.Printf("Submitted %d orders in %s (%.0f orders/sec)\n",
		numOrders, elapsed, float64(numOrders)/elapsed.Seconds())
	fmt.Printf("Total matches: %d, matched qty: %d\n", totalMatched, totalQty)
}
