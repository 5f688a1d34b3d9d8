package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/smk-cms-api/pkg/errors"
	"github.com/noah-isme/smk-cms-api/pkg/response"
)

const rateLimitPrefix = "ratelimit:ppdb"

// NewRateLimitStore keeps counters in redis when a client is available so
// limits hold across replicas, and in process memory otherwise.
func NewRateLimitStore(client *redis.Client, logger *zap.Logger) limiter.Store {
	if client != nil {
		store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: rateLimitPrefix})
		if err == nil {
			return store
		}
		if logger != nil {
			logger.Warn("redis rate limit store unavailable, falling back to memory", zap.Error(err))
		}
	}
	return memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: rateLimitPrefix})
}

// RateLimit limits requests per client IP. formatted uses the limiter notation
// such as "10-M" (ten per minute).
func RateLimit(store limiter.Store, formatted string, logger *zap.Logger) (gin.HandlerFunc, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("parse rate %q: %w", formatted, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	instance := limiter.New(store, rate)
	return mgin.NewMiddleware(instance,
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			response.Error(c, appErrors.Clone(appErrors.ErrTooManyRequests, "too many registrations from this address, try again later"))
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			logger.Warn("rate limiter failed", zap.Error(err))
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "rate limiter unavailable"))
		}),
	), nil
}
