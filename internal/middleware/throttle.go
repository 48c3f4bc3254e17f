package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

const throttleCacheSize = 4096

type throttler struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	buckets *lru.Cache[string, *bucket]
	now     func() time.Time
}

type bucket struct {
	start time.Time
	count int
}

// Throttle allows limit requests per window for each client ip + route pair.
// The bucket store is a bounded LRU, so a scan over many source addresses
// cannot grow memory without bound.
func Throttle(limit int, window time.Duration) gin.HandlerFunc {
	buckets, _ := lru.New[string, *bucket](throttleCacheSize)
	t := &throttler{
		limit:   limit,
		window:  window,
		buckets: buckets,
		now:     time.Now,
	}
	return t.handle
}

func (t *throttler) handle(c *gin.Context) {
	if t.limit <= 0 || t.window <= 0 {
		c.Next()
		return
	}
	path := c.FullPath()
	if path == "" {
		path = c.Request.URL.Path
	}
	key := strings.Join([]string{c.ClientIP(), path}, "|")

	now := t.now()
	t.mu.Lock()
	b, ok := t.buckets.Get(key)
	if !ok || now.Sub(b.start) >= t.window {
		b = &bucket{start: now}
		t.buckets.Add(key, b)
	}
	b.count++
	over := b.count > t.limit
	t.mu.Unlock()

	if over {
		logutil.GetLogger(c.Request.Context()).Warn("throttle hit",
			zap.String("ip", c.ClientIP()),
			zap.String("path", path),
		)
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "Too Many Attempts."})
		return
	}
	c.Next()
}
