package redis

import (
	"github.com/redis/go-redis/v9"
)

// Client is the subset of go-redis the cookie store relies on
type Client interface {
	redis.Cmdable
	Close() error
}
