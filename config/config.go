package config

import (
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/joripage/prorata-orderbook/pkg/exchange"
	postgres_wrapper "github.com/joripage/prorata-orderbook/pkg/infra/postgres"
	redis_wrapper "github.com/joripage/prorata-orderbook/pkg/infra/redis"
	"github.com/joripage/prorata-orderbook/pkg/stream"
)

type KafkaConfig struct {
	Brokers         []string `yaml:"brokers"`
	TradeTopic      string   `yaml:"trade_topic"`
	OrderEventTopic string   `yaml:"order_event_topic"`
	GroupID         string   `yaml:"group_id"`
}

func (k *KafkaConfig) ProducerConfig() stream.ProducerConfig {
	return stream.ProducerConfig{Brokers: k.Brokers}
}

type AppConfig struct {
	ServiceName string `yaml:"service_name"`

	AdminAccount string `yaml:"admin_account"`
	Treasury     string `yaml:"treasury"`

	Markets []exchange.MarketConfig `yaml:"markets"`

	CleanupIntervalSeconds int `yaml:"cleanup_interval_seconds"`

	FixConfigFilepath string `yaml:"fix_config_filepath"`

	ExchangeDB *postgres_wrapper.PostgresConfig `yaml:"exchange_db"`
	Redis      *redis_wrapper.RedisConfig       `yaml:"redis"`
	Kafka      *KafkaConfig                     `yaml:"kafka"`
}

func (c *AppConfig) CleanupInterval() time.Duration {
	return time.Duration(c.CleanupIntervalSeconds) * time.Second
}

// Load load config from file and environment variables.
func Load(filePath string) (*AppConfig, error) {
	if len(filePath) == 0 {
		filePath = os.Getenv("CONFIG_FILE")
	}

	fields := []interface{}{
		"func",
		"config.readFromFile",
		"filePath",
		filePath,
	}

	sugar := zap.S().With(fields...)

	sugar.Debug("Load config...")
	zap.S().Debugf("CONFIG_FILE=%v", filePath)

	configBytes, err := os.ReadFile(filePath)
	if err != nil {
		sugar.Error("Failed to load config file")
		return nil, err
	}
	configBytes = []byte(os.ExpandEnv(string(configBytes)))

	cfg := &AppConfig{}

	err = yaml.Unmarshal(configBytes, cfg)
	if err != nil {
		sugar.Error("Failed to parse config file")
		return nil, err
	}

	zap.S().Debugf("config: %+v", cfg)

	return cfg, nil
}
