package oracle

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const defaultKeyPrefix = "oracle:price:"

// RedisOracle reads reference prices that an external feeder writes to redis.
type RedisOracle struct {
	client    *redis.Client
	keyPrefix string
}

func NewRedisOracle(client *redis.Client) *RedisOracle {
	return &RedisOracle{
		client:    client,
		keyPrefix: defaultKeyPrefix,
	}
}

func (o *RedisOracle) key(symbol string) string {
	return o.keyPrefix + symbol
}

func (o *RedisOracle) ReferencePrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	val, err := o.client.Get(ctx, o.key(symbol)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return decimal.Zero, ErrNoPrice
		}
		return decimal.Zero, err
	}
	p, err := decimal.NewFromString(val)
	if err != nil {
		return decimal.Zero, err
	}
	return p, nil
}

// SetReferencePrice is used by price feeders and tests.
func (o *RedisOracle) SetReferencePrice(ctx context.Context, symbol string, price decimal.Decimal) error {
	return o.client.Set(ctx, o.key(symbol), price.String(), 0).Err()
}
