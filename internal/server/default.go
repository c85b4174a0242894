package server

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"

	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/application"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/configuration"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/constants"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/httpapi"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/metrics"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/middleware"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/server"
)

type DefaultOptions struct {
	Logger        *logrus.Logger
	Configuration *configuration.Configuration
	Application   application.Application
	Pool          *pgxpool.Pool
}

// Default assembles the standard middleware stack and fallback handlers
// around the application's controllers.
func Default(options *DefaultOptions) (*server.HTTPServer, error) {
	app := options.Application
	conf := options.Configuration

	middlewares := []mux.MiddlewareFunc{
		middleware.WithLogger(options.Logger, middleware.DefaultLoggerOptions()),
		middleware.Provide(constants.PoolKey, options.Pool),
		middleware.Cors(allowedOrigins(conf)...),
	}

	if conf.RateLimit.Enabled {
		var store limiter.Store
		switch conf.RateLimit.Storage {
		case "redis":
			redisStore, err := middleware.NewRedisStore(conf.RateLimit.RedisURL)
			if err != nil {
				options.Logger.WithError(err).Warn("rate limit: redis store unavailable, falling back to memory")
				store = middleware.NewMemoryStore()
			} else {
				store = redisStore
			}
		default:
			store = middleware.NewMemoryStore()
		}
		middlewares = append(middlewares, middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerPeriod: conf.RateLimit.GlobalRPS,
			Store:             store,
		}))
	}

	app.RegisterMiddleware(middlewares...)

	if conf.Prometheus.Enabled {
		app.RegisterControllers(metrics.NewController(conf.Prometheus.Path))
	}

	return server.NewHTTPServer(app, notFound(), methodNotAllowed()), nil
}

func allowedOrigins(conf *configuration.Configuration) []string {
	parts := strings.Split(conf.AllowedOrigins, ",")
	out := make([]string, 0, len(parts)+1)
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return append(out, conf.Origin)
}

func notFound() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpapi.WriteError(w, http.StatusNotFound, "NOT_FOUND", "no such endpoint", nil)
	})
}

func methodNotAllowed() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpapi.WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
	})
}
