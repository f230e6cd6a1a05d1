package redis

import (
	"context"
	"time"
)

// Client defines the subset of Redis used to cache upstream bar responses.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=mock
type Client interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Ping(ctx context.Context) error

	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) (int64, error)
}
