package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

func NewRedisClient(address string, poolSize int) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     address, // e.g., "localhost:6379"
		PoolSize: poolSize,
	})

	// Ping to test connection on startup
	if err := client.Ping(context.Background()).Err(); err != nil {
		panic("failed to connect to redis: " + err.Error())
	}

	return client
}
