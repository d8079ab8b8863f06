// oraclefeed writes random-walk reference prices into redis for each
// configured market. It stands in for a real price feed in local setups.
package main

import (
	"context"
	"flag"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/joripage/prorata-orderbook/config"
	redis_wrapper "github.com/joripage/prorata-orderbook/pkg/infra/redis"
	"github.com/joripage/prorata-orderbook/pkg/logging"
	"github.com/joripage/prorata-orderbook/pkg/oracle"
)

func main() {
	var configFile string
	var intervalSec int
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.IntVar(&intervalSec, "interval", 5, "publish interval in seconds")
	flag.Parse()

	logging.InitGlobal(logging.INFO)

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}

	redisClient, err := redis_wrapper.InitRedis(cfg.Redis)
	if err != nil {
		panic(err)
	}
	feed := oracle.NewRedisOracle(redisClient)

	ctx := context.Background()
	prices := make(map[string]decimal.Decimal)
	for _, m := range cfg.Markets {
		prices[m.Symbol] = decimal.NewFromInt(100)
	}

	ticker := time.NewTicker(time.Duration(intervalSec) * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		for symbol, p := range prices {
			drift := decimal.NewFromFloat((rand.Float64() - 0.5) / 100)
			p = p.Add(p.Mul(drift)).Round(4)
			prices[symbol] = p
			if err := feed.SetReferencePrice(ctx, symbol, p); err != nil {
				zap.S().Warnf("set price %s: %v", symbol, err)
				continue
			}
			zap.S().Infof("published %s=%s", symbol, p)
		}
	}
}
