package config

// This file defines the Redis client constructor. Redis caches resolved
// daily schedules; if the connection fails at startup the function returns
// nil and the schedule cache degrades to resolving directly from MySQL.

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient instantiates a Redis client using environment variables.
// Supported variables are:
//
//	REDIS_HOST and REDIS_PORT – hostname and port of the Redis server
//	REDIS_ADDR – host:port shorthand (takes precedence when host/port are unset)
//	REDIS_PASSWORD – optional password
//	REDIS_DB – database number (default 0)
//
// The returned client is nil if a connection cannot be established.
func NewRedisClient() *redis.Client {
	host := os.Getenv("REDIS_HOST")
	port := os.Getenv("REDIS_PORT")
	addr := os.Getenv("REDIS_ADDR")
	if host != "" && port != "" {
		addr = host + ":" + port
	}
	if addr == "" {
		addr = "localhost:6379"
	}
	dbNum := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if n, err := strconv.Atoi(dbStr); err == nil {
			dbNum = n
		}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       dbNum,
	})
	// Ping with a short timeout; nil on failure so callers degrade gracefully.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil
	}
	return client
}
