package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/dinner-reservation/internal/config"
)

// ListingCache caches public browse responses in Redis and owns their
// invalidation. Keys embed the route path verbatim so a mutation can drop
// every cached dinner listing by pattern; only the query string is hashed.
// A nil receiver or nil Redis client degrades to a pass-through.
type ListingCache struct {
	cfg config.CacheConfig
	rdb *redis.Client
}

func NewListingCache(cfg config.CacheConfig, rdb *redis.Client) *ListingCache {
	return &ListingCache{cfg: cfg, rdb: rdb}
}

func (lc *ListingCache) enabled() bool {
	return lc != nil && lc.cfg.Enabled && lc.rdb != nil
}

// cachedResponse is the stored envelope. The body round-trips through
// JSON as base64.
type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
}

func (lc *ListingCache) key(c echo.Context) string {
	sum := sha1.Sum([]byte(c.Request().URL.RawQuery))
	return lc.cfg.Prefix + ":" + c.Path() + ":" + hex.EncodeToString(sum[:8])
}

// Middleware serves cached GET responses and stores fresh ones. Only
// status-200 bodies within the configured size limit are stored; anything
// else passes through untouched. Hits and misses are flagged in X-Cache.
func (lc *ListingCache) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !lc.enabled() || c.Request().Method != http.MethodGet {
				return next(c)
			}
			ctx := c.Request().Context()
			key := lc.key(c)

			if raw, err := lc.rdb.Get(ctx, key).Bytes(); err == nil {
				var cached cachedResponse
				if json.Unmarshal(raw, &cached) == nil {
					if cached.ContentType != "" {
						c.Response().Header().Set(echo.HeaderContentType, cached.ContentType)
					}
					c.Response().Header().Set("X-Cache", "HIT")
					c.Response().WriteHeader(cached.Status)
					_, werr := c.Response().Write(cached.Body)
					return werr
				}
				// Unreadable entry; drop it and fall through to the handler.
				_ = lc.rdb.Del(ctx, key).Err()
			}

			rec := &bodyRecorder{
				ResponseWriter: c.Response().Writer,
				status:         http.StatusOK,
				limit:          lc.cfg.MaxBodyBytes,
			}
			c.Response().Writer = rec
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}
			if rec.status != http.StatusOK || rec.overflow {
				return nil
			}
			payload, err := json.Marshal(cachedResponse{
				Status:      rec.status,
				ContentType: c.Response().Header().Get(echo.HeaderContentType),
				Body:        rec.body.Bytes(),
			})
			if err == nil {
				_ = lc.rdb.SetEx(ctx, key, payload, lc.cfg.TTL).Err()
			}
			return nil
		}
	}
}

// InvalidateListings deletes every cached dinner-listing response. Host
// dinner mutations and bookings call this so the browse pages reflect the
// change on the next read instead of after the TTL expires.
func (lc *ListingCache) InvalidateListings(ctx context.Context) {
	if !lc.enabled() {
		return
	}
	pattern := lc.cfg.Prefix + ":/v1/dinners*"
	iter := lc.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := lc.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			log.Printf("cache: invalidating %s failed: %v", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		log.Printf("cache: listing scan failed: %v", err)
	}
}

// bodyRecorder forwards writes to the client while keeping a copy for the
// cache. Bodies past the limit are forwarded but marked uncacheable.
type bodyRecorder struct {
	http.ResponseWriter
	status   int
	body     bytes.Buffer
	limit    int
	overflow bool
}

func (r *bodyRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
	if r.limit > 0 && r.body.Len()+len(b) > r.limit {
		r.overflow = true
	} else {
		r.body.Write(b)
	}
	return r.ResponseWriter.Write(b)
}
