package main

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"net/http/pprof"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-procure/internal/common"
	"github.com/noah-isme/backend-procure/internal/compliance"
	"github.com/noah-isme/backend-procure/internal/config"
	"github.com/noah-isme/backend-procure/internal/events"
	"github.com/noah-isme/backend-procure/internal/health"
	"github.com/noah-isme/backend-procure/internal/lock"
	"github.com/noah-isme/backend-procure/internal/negotiation"
	"github.com/noah-isme/backend-procure/internal/obs"
	"github.com/noah-isme/backend-procure/internal/order"
	"github.com/noah-isme/backend-procure/internal/ratelimit"
	"github.com/noah-isme/backend-procure/internal/reports"
	"github.com/noah-isme/backend-procure/internal/resilience"
	"github.com/noah-isme/backend-procure/internal/security"
	"github.com/noah-isme/backend-procure/internal/supplier"
)

const metricsNamespace = "procure"

// app holds the wired services behind the HTTP router.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
	pool   *pgxpool.Pool
	redis  *redis.Client
	reg    prometheus.Registerer
	gather prometheus.Gatherer

	suppliers   *supplier.Service
	orders      *order.Service
	compliance  *compliance.Service
	negotiation *negotiation.Service
	reports     *reports.Service
	limiter     ratelimit.Handler
}

// newApp wires services. Without a pool every store is in memory and seeded
// with fixtures; without Redis the cache, idempotency and distributed lock
// features fall back to their local or disabled forms.
func newApp(cfg *config.Config, logger zerolog.Logger, pool *pgxpool.Pool, rdb *redis.Client, reg *prometheus.Registry) (*app, error) {
	a := &app{cfg: cfg, logger: logger, pool: pool, redis: rdb, reg: prometheus.DefaultRegisterer, gather: prometheus.DefaultGatherer}
	if reg != nil {
		a.reg, a.gather = reg, reg
	}

	bus := &events.Bus{Notifiers: []events.Notifier{
		events.LogNotifier{Logger: logger.With().Str("component", "events").Logger()},
		events.MetricsNotifier{},
	}}

	var (
		supplierStore   supplier.Store
		orderStore      order.Store
		complianceStore compliance.Store
	)
	if pool != nil {
		bus.Store = events.PostgresStore{Pool: pool}
		supplierStore = supplier.PostgresStore{Pool: pool}
		orderStore = order.PostgresStore{Pool: pool}
		complianceStore = compliance.PostgresStore{Pool: pool}
	} else {
		supplierStore = supplier.NewMemoryStore(supplier.Fixtures()...)
		orderStore = order.NewMemoryStore()
		complianceStore = compliance.NewMemoryStore(compliance.FixtureItems(time.Now())...)
	}

	var cache *supplier.Cache
	if rdb != nil {
		cache = supplier.NewCache(rdb, cfg.SearchCacheTTL)
	}
	var err error
	a.suppliers, err = supplier.NewService(supplier.ServiceConfig{
		Store:  supplierStore,
		Cache:  cache,
		Events: bus,
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("supplier service: %w", err)
	}

	a.orders, err = order.NewService(order.ServiceConfig{
		Store:     orderStore,
		Suppliers: supplierStore,
		Events:    bus,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("order service: %w", err)
	}

	var locker lock.Runner = &lock.Local{}
	if rdb != nil {
		locker = lock.Locker{R: rdb, RetryBackoff: cfg.LockRetryBackoff, Prefix: "procure:lock"}
	}
	a.compliance, err = compliance.NewService(compliance.ServiceConfig{
		Store:     complianceStore,
		Suppliers: a.suppliers,
		Locker:    locker,
		LockTTL:   cfg.LockTTL,
		Events:    bus,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("compliance service: %w", err)
	}

	breaker := resilience.NewBreaker(cfg.CircuitMinRequests, cfg.CircuitFailureRatio, cfg.CircuitOpenFor).
		WithTarget("negotiation").
		WithLogger(logger)
	generator := negotiation.Client{
		HTTP: resilience.HTTPClient{
			Client:      negotiation.NewHTTPClient(cfg.OutboundTimeout),
			Breaker:     breaker,
			BaseBackoff: cfg.RetryBase,
			MaxAttempts: cfg.RetryMaxAttempts,
			Jitter:      cfg.RetryJitterPercent,
			Timeout:     cfg.OutboundTimeout,
		},
		MessageURL:  cfg.NegotiationMessageURL,
		StrategyURL: cfg.NegotiationStrategyURL,
		APIKey:      cfg.NegotiationAPIKey,
	}
	a.negotiation, err = negotiation.NewService(negotiation.ServiceConfig{
		Generator:  generator,
		Suppliers:  a.suppliers,
		Compliance: a.compliance,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("negotiation service: %w", err)
	}

	a.reports = &reports.Service{Orders: a.orders, Suppliers: a.suppliers, R: rdb, TTL: cfg.ReportCacheTTL}

	lim, err := ratelimit.New(cfg.RateLimitNegotiation, rdb, "")
	if err != nil {
		return nil, fmt.Errorf("negotiation rate limit: %w", err)
	}
	a.limiter = ratelimit.Handler{
		Limiter: lim,
		OnError: func(err error) { logger.Warn().Err(err).Msg("rate limit store") },
	}
	return a, nil
}

func (a *app) routes() http.Handler {
	cfg := a.cfg

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if (obs.TracingConfig{Exporter: cfg.TracingExporter}).Enabled() {
		r.Use(obs.TracingMiddleware)
	}
	if cfg.MetricsEnabled {
		r.Use(obs.HTTPObs{Metrics: obs.NewHTTPMetrics(metricsNamespace, obs.ParseBucketsCSV(cfg.MetricsBuckets), a.reg)}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: a.logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins(cfg),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Idempotency-Key"},
		ExposedHeaders: []string{"X-Total-Count", "X-Cache", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:         300,
	}))
	r.Use(security.Headers{
		Enable:     cfg.SecurityHeaders,
		EnableHSTS: cfg.EnableHSTS && cfg.IsProduction(),
	}.Middleware)
	r.Use(security.BodyLimit{Max: cfg.BodyMaxBytes, Multipart: cfg.UploadMaxBytes}.Middleware)

	if cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.HandlerFor(a.gather, promhttp.HandlerOpts{}))
	}
	if cfg.PprofEnabled {
		r.Mount("/debug/pprof", protectPprof(newPprofMux(), cfg.PprofUser, cfg.PprofPass))
	}

	healthHandler := health.Handler{
		Checker:      health.Probes{DB: a.pool, Redis: a.redis},
		DBTimeout:    500 * time.Millisecond,
		RedisTimeout: 300 * time.Millisecond,
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	idem := common.Idem{R: a.redis, TTL: cfg.IdempotencyTTL, Prefix: "procure:idem"}
	supplierHandler := supplier.NewHandler(supplier.HandlerConfig{Service: a.suppliers})
	orderHandler := &order.Handler{Service: a.orders}
	complianceHandler := &compliance.Handler{Service: a.compliance, MaxMemory: 8 << 20}
	negotiationHandler := &negotiation.Handler{Service: a.negotiation}
	reportsHandler := &reports.Handler{Svc: a.reports}

	r.Route("/api/v1", func(v chi.Router) {
		v.Get("/health/live", healthHandler.Live)
		v.Get("/health/ready", healthHandler.Ready)
		v.Route("/suppliers", func(s chi.Router) {
			s.Use(writesOnly(idem.Middleware))
			supplierHandler.Routes(s)
			s.Get("/{id}/compliance", complianceHandler.SupplierCompliance)
		})
		v.Route("/orders", func(o chi.Router) {
			o.Use(writesOnly(idem.Middleware))
			orderHandler.Routes(o)
		})
		v.Route("/compliance", func(c chi.Router) {
			c.Use(writesOnly(idem.Middleware))
			complianceHandler.Routes(c)
		})
		v.Route("/negotiation", func(n chi.Router) {
			n.Use(a.limiter.Middleware)
			negotiationHandler.Routes(n)
		})
		v.Route("/reports", reportsHandler.Routes)
	})
	return r
}

// writesOnly applies mw to POST, PUT, PATCH and DELETE requests; reads bypass it.
func writesOnly(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		wrapped := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete:
				wrapped.ServeHTTP(w, r)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

func newPprofMux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", pprof.Index)
	mux.HandleFunc("/cmdline", pprof.Cmdline)
	mux.HandleFunc("/profile", pprof.Profile)
	mux.HandleFunc("/symbol", pprof.Symbol)
	mux.HandleFunc("/trace", pprof.Trace)
	mux.Handle("/goroutine", pprof.Handler("goroutine"))
	mux.Handle("/heap", pprof.Handler("heap"))
	return mux
}

func protectPprof(handler http.Handler, user, pass string) http.Handler {
	user = strings.TrimSpace(user)
	if user == "" {
		return handler
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || subtle.ConstantTimeCompare([]byte(u), []byte(user)) != 1 || subtle.ConstantTimeCompare([]byte(p), []byte(pass)) != 1 {
			w.Header().Set("WWW-Authenticate", "Basic realm=restricted")
			http.Error(w, "unauthorised", http.StatusUnauthorized)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
