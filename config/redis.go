package config

import (
	"context"

	"github.com/redis/go-redis/v9"
)

var rdb *redis.Client

func GetRedisDB() *redis.Client {
	return rdb
}

func ConnectRedis(cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	rdb = client
	return client, nil
}
