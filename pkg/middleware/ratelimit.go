package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/configuration"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/httpapi"
)

type RateLimitConfig struct {
	RequestsPerPeriod int
	Period            time.Duration
	Store             limiter.Store
}

func NewMemoryStore() limiter.Store {
	return memory.NewStore()
}

func NewRedisStore(redisURL string) (limiter.Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	return redisstore.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix: "ratelimit",
	})
}

// RateLimit limits requests per client IP. The limit key uses the
// configured real-IP header so deployments behind a proxy count the
// actual caller, not the proxy.
func RateLimit(cfg RateLimitConfig) mux.MiddlewareFunc {
	conf := configuration.Use()
	period := cfg.Period
	if period == 0 {
		period = time.Second
	}
	instance := limiter.New(cfg.Store, limiter.Rate{
		Period: period,
		Limit:  int64(cfg.RequestsPerPeriod),
	})
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, err := instance.Get(r.Context(), getRealIP(r, conf))
			if err != nil {
				httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "rate limiter failure", nil)
				return
			}
			if ctx.Reached {
				httpapi.WriteError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
