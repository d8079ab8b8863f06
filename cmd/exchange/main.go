package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/joripage/prorata-orderbook/config"
	"github.com/joripage/prorata-orderbook/pkg/exchange"
	fixgateway "github.com/joripage/prorata-orderbook/pkg/exchange/fix"
	redis_wrapper "github.com/joripage/prorata-orderbook/pkg/infra/redis"
	"github.com/joripage/prorata-orderbook/pkg/ledger"
	"github.com/joripage/prorata-orderbook/pkg/logging"
	"github.com/joripage/prorata-orderbook/pkg/oracle"
	"github.com/joripage/prorata-orderbook/pkg/stream"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.Parse()

	logging.InitGlobal(logging.INFO)

	go func() {
		http.ListenAndServe("localhost:6060", nil) // nolint
	}()

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}

	configBytes, err := json.MarshalIndent(cfg, "", "   ")
	if err != nil {
		zap.S().Warnf("could not convert config to JSON: %v", err)
	} else {
		zap.S().Debugf("load config %s", string(configBytes))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	opts := []exchange.Option{}

	if cfg.Kafka != nil {
		producer := stream.NewProducer(cfg.Kafka.ProducerConfig())
		defer producer.Close() // nolint
		opts = append(opts, exchange.WithTradePublisher(producer))
	}

	if cfg.Redis != nil {
		redisClient, err := redis_wrapper.InitRedis(cfg.Redis)
		if err != nil {
			zap.S().Warnf("init redis fail: %v, reference prices disabled", err)
		} else {
			opts = append(opts, exchange.WithOracle(oracle.NewRedisOracle(redisClient)))
		}
	}

	fixGateway := fixgateway.NewFixGateway(&fixgateway.FixGatewayConfig{
		ConfigFilepath: cfg.FixConfigFilepath,
	})

	exchangeCfg := exchange.Config{
		Markets:         cfg.Markets,
		AdminAccount:    cfg.AdminAccount,
		Treasury:        cfg.Treasury,
		CleanupInterval: cfg.CleanupInterval(),
	}
	if cfg.Kafka != nil {
		exchangeCfg.TradeTopic = cfg.Kafka.TradeTopic
		exchangeCfg.OrderEventTopic = cfg.Kafka.OrderEventTopic
	}

	ex := exchange.New(exchangeCfg, fixGateway, ledger.NewMemoryLedger(), opts...)
	fixGateway.AddExchangeInstance(ex)

	if err := ex.Start(ctx); err != nil {
		panic(err)
	}
	fmt.Println("Exchange started. Press Ctrl+C to exit.")

	<-sigs
	fmt.Println("Shutting down...")

	ex.Stop()
	fixGateway.Stop()
	cancel()

	fmt.Println("Exited cleanly.")
}
