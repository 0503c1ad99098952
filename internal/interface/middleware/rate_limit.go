package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/project-tracker-api/pkg/response"
)

// ipFromCtx prefers the address resolved by RealIP.
func ipFromCtx(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

func routeOf(c *gin.Context) string {
	if fp := c.FullPath(); fp != "" {
		return fp
	}
	return c.Request.URL.Path
}

// KeyFunc names the bucket a request is counted in.
type KeyFunc func(c *gin.Context) string

func KeyByIP() KeyFunc {
	return func(c *gin.Context) string { return "rl:ip:" + ipFromCtx(c) }
}

// KeyByIPAndPath gives every route its own per-IP bucket.
func KeyByIPAndPath() KeyFunc {
	return func(c *gin.Context) string { return "rl:path:" + routeOf(c) + ":ip:" + ipFromCtx(c) }
}

// KeyByUserID buckets signed-in users by id and everyone else by IP.
func KeyByUserID() KeyFunc {
	return func(c *gin.Context) string {
		if uid := c.GetString("userID"); uid != "" {
			return "rl:user:" + uid
		}
		return "rl:user:anon:ip:" + ipFromCtx(c)
	}
}

// AllowFunc returns true for requests that bypass the limit.
type AllowFunc func(*gin.Context) bool

// returns {count, pttl}; the window starts on the first hit
var hitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {current, redis.call("PTTL", KEYS[1])}
`)

type limiter struct {
	rdb    redis.Cmdable
	max    int
	window time.Duration
	key    KeyFunc
	allow  AllowFunc
}

// RateLimit allows max requests per window for each key.
// Redis errors fail open. OPTIONS requests and allow() matches are never counted.
func RateLimit(rdb redis.Cmdable, max int, window time.Duration, keyFn KeyFunc, allow AllowFunc) gin.HandlerFunc {
	if rdb == nil || max <= 0 || window <= 0 || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	l := &limiter{rdb: rdb, max: max, window: window, key: keyFn, allow: allow}
	return l.handle
}

func (l *limiter) handle(c *gin.Context) {
	if c.Request.Method == http.MethodOptions || (l.allow != nil && l.allow(c)) {
		c.Next()
		return
	}

	count, ttl, err := l.hit(c)
	if err != nil {
		c.Next()
		return
	}

	resetSec := int((ttl + time.Second - 1) / time.Second)
	c.Header("X-RateLimit-Limit", strconv.Itoa(l.max))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(max(l.max-count, 0)))
	c.Header("X-RateLimit-Reset", strconv.Itoa(resetSec))

	if count > l.max {
		if resetSec > 0 {
			c.Header("Retry-After", strconv.Itoa(resetSec))
		}
		response.Error[any](c, http.StatusTooManyRequests, "rate limit exceeded", nil)
		return
	}
	c.Next()
}

func (l *limiter) hit(c *gin.Context) (int, time.Duration, error) {
	res, err := hitScript.Run(c.Request.Context(), l.rdb, []string{l.key(c)}, l.window.Milliseconds()).Slice()
	if err != nil {
		return 0, 0, err
	}
	if len(res) != 2 {
		return 0, 0, redis.Nil
	}
	ttl := time.Duration(toInt(res[1])) * time.Millisecond
	if ttl < 0 {
		ttl = 0
	}
	return toInt(res[0]), ttl, nil
}

func toInt(v interface{}) int {
	switch x := v.(type) {
	case int64:
		return int(x)
	case int:
		return x
	case string:
		i, _ := strconv.Atoi(x)
		return i
	}
	return 0
}
