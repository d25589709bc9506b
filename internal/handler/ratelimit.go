package handler

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter 是基于 Redis 的固定窗口限流器，多个实例可以共享同一个计数
type RateLimiter struct {
	rdb        *redis.Client
	limit      int
	window     time.Duration
	prefix     string
	failOpen   bool
	trustProxy bool
}

var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// NewRateLimiter 创建限流器，window 以秒为单位
// trustProxy 为 true 时使用 X-Forwarded-For 中的第一个地址区分客户端
func NewRateLimiter(rdb *redis.Client, limit int, window int, prefix string, failOpen bool, trustProxy bool) *RateLimiter {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = 60
	}

	return &RateLimiter{
		rdb:        rdb,
		limit:      limit,
		window:     time.Duration(window) * time.Second,
		prefix:     prefix,
		failOpen:   failOpen,
		trustProxy: trustProxy,
	}
}

func (rl *RateLimiter) Allow(ctx context.Context, client string) (bool, error) {
	res, err := fixedWindowScript.Run(ctx, rl.rdb, []string{rl.prefix + ":" + client}, rl.window.Milliseconds()).Result()
	if err != nil {
		return false, err
	}

	var count int64
	switch v := res.(type) {
	case int64:
		count = v
	case string:
		count, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return false, err
		}
	default:
		return false, fmt.Errorf("限流脚本返回了未知类型 %T", res)
	}

	return count <= int64(rl.limit), nil
}

// clientKey 返回用于限流的客户端地址，X-Forwarded-For 可以被客户端随意伪造，只在 trustProxy 时使用
func clientKey(r *http.Request, trustProxy bool) string {
	if ip := r.Header.Get("X-Forwarded-For"); trustProxy && ip != "" {
		parts := strings.Split(ip, ",")
		if first := strings.TrimSpace(parts[0]); first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}
