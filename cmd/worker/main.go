package main

import (
	"context"
	"encoding/json"
	"flag"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/joripage/prorata-orderbook/config"
	"github.com/joripage/prorata-orderbook/pkg/exchange/repo"
	postgres_wrapper "github.com/joripage/prorata-orderbook/pkg/infra/postgres"
	"github.com/joripage/prorata-orderbook/pkg/logging"
	"github.com/joripage/prorata-orderbook/pkg/stream"
	"github.com/joripage/prorata-orderbook/pkg/worker"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.Parse()

	logging.InitGlobal(logging.INFO)

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

	ctx := context.Background()

	db, err := postgres_wrapper.InitPostgres(cfg.ExchangeDB)
	if err != nil {
		zap.S().Errorf("init db fail with err: %v", err)
		panic(err)
	}

	sqlRepo := repo.NewRepo(db)
	w := worker.NewWorker(sqlRepo)

	tradeConsumer := stream.NewConsumer(stream.ConsumerConfig{
		Brokers: cfg.Kafka.Brokers,
		GroupID: cfg.Kafka.GroupID,
		Topic:   cfg.Kafka.TradeTopic,
	})
	orderEventConsumer := stream.NewConsumer(stream.ConsumerConfig{
		Brokers: cfg.Kafka.Brokers,
		GroupID: cfg.Kafka.GroupID,
		Topic:   cfg.Kafka.OrderEventTopic,
	})

	go func() {
		if err := w.RunTradeConsumer(ctx, tradeConsumer); err != nil {
			zap.S().Errorf("trade consumer: %v", err)
		}
	}()
	go func() {
		if err := w.RunOrderEventConsumer(ctx, orderEventConsumer); err != nil {
			zap.S().Errorf("order event consumer: %v", err)
		}
	}()

	select {}
}
