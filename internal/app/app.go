package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vadim/reddit-insight/internal/cache"
	"github.com/vadim/reddit-insight/internal/config"
	httpcontroller "github.com/vadim/reddit-insight/internal/controller/http"
	"github.com/vadim/reddit-insight/internal/domain/activity/policy"
	"github.com/vadim/reddit-insight/internal/domain/activity/service"
	"github.com/vadim/reddit-insight/internal/httpx/response"
	"github.com/vadim/reddit-insight/internal/httpx/upstream/reddit"
	"github.com/vadim/reddit-insight/internal/metrics"
)

const shutdownTimeout = 10 * time.Second

// App is the main application container
type App struct {
	cfg        config.Config
	httpServer *http.Server
	router     *chi.Mux
	logger     *slog.Logger
	registry   *prometheus.Registry
	metrics    *metrics.Metrics

	credentials int
	cache       *cache.Cache
	janitor     *cache.Janitor

	// Domain policies (interfaces for HTTP handlers)
	activityPolicy *policy.Policy
}

// NewApp creates and initializes the application
func NewApp(ctx context.Context, cfg config.Config) (*App, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Log.SlogLevel(),
	}))

	return newApp(ctx, cfg, logger)
}

func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	app := &App{
		cfg:      cfg,
		router:   r,
		logger:   logger,
		registry: prometheus.NewRegistry(),
	}

	if err := app.initInfrastructure(ctx); err != nil {
		return nil, fmt.Errorf("initializing infrastructure: %w", err)
	}

	if err := app.initDomains(ctx); err != nil {
		return nil, fmt.Errorf("initializing domains: %w", err)
	}

	if err := app.registerRoutes(); err != nil {
		return nil, fmt.Errorf("registering routes: %w", err)
	}

	app.httpServer = &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      app.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return app, nil
}

// initInfrastructure sets up metrics and the response cache
func (a *App) initInfrastructure(_ context.Context) error {
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.metrics = metrics.New(a.registry)

	c, err := cache.New(cache.Options{
		MaxEntries: a.cfg.Cache.MaxEntries,
		MaxBytes:   a.cfg.Cache.MaxBytes,
		TTL:        a.cfg.Cache.TTL,
		Metrics:    a.metrics,
	})
	if err != nil {
		return fmt.Errorf("creating cache: %w", err)
	}
	a.cache = c
	a.registry.MustRegister(metrics.NewCacheCollector(c))

	a.janitor = cache.NewJanitor(c, a.cfg.Cache.JanitorInterval, a.logger)

	return nil
}

// initDomains wires the Reddit client, the analytics services and the policy
func (a *App) initDomains(_ context.Context) error {
	rc := a.cfg.Reddit

	rotator, err := reddit.NewRotator(rc.ClientIDs, rc.ClientSecrets, rc.UserAgents)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}
	a.credentials = rotator.Len()

	auth := reddit.NewAuthenticator(
		reddit.WithTokenURL(rc.TokenURL),
		reddit.WithAuthHTTPClient(&http.Client{Timeout: rc.HTTPTimeout}),
		reddit.WithAuthMetrics(a.metrics),
	)
	client := reddit.New(
		reddit.WithBaseURL(rc.APIURL),
		reddit.WithHTTPClient(&http.Client{Timeout: rc.HTTPTimeout}),
		reddit.WithPageSize(a.cfg.Fetch.PageSize),
		reddit.WithMaxPages(a.cfg.Fetch.MaxPages),
		reddit.WithRequestsPerMinute(rc.RequestsPerMinute),
		reddit.WithMetrics(a.metrics),
	)
	connector := reddit.NewConnector(rotator, auth, client)

	loc, err := a.cfg.Analytics.Location()
	if err != nil {
		return fmt.Errorf("loading time zone %q: %w", a.cfg.Analytics.Timezone, err)
	}

	aggregator := service.NewAggregator(&redditConnectorAdapter{connector})
	analyzer := service.NewAnalyzer(
		service.WithStopWords(a.cfg.Analytics.StopWords),
		service.WithLocation(loc),
		service.WithWebURL(rc.WebURL),
		service.WithLimits(service.Limits{
			TopSubreddits:      a.cfg.Analytics.TopSubreddits,
			DailyTopSubreddits: a.cfg.Analytics.DailyTopSubreddits,
			TopComments:        a.cfg.Analytics.TopComments,
			TopWords:           a.cfg.Analytics.TopWords,
		}),
	)

	a.activityPolicy = policy.New(aggregator, analyzer, a.cache, policy.Config{
		FetchTimeout: a.cfg.Fetch.Timeout,
	}, a.logger).WithMetrics(a.metrics)

	return nil
}

// registerRoutes registers all HTTP routes
func (a *App) registerRoutes() error {
	// Probes and metrics stay outside the inbound rate limit
	a.router.Get("/healthz", a.healthHandler)
	a.router.Get("/readyz", a.readyHandler)
	a.router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))

	swaggerHandler, err := httpcontroller.NewSwaggerHandler("Reddit Insight API", OpenAPISpec)
	if err != nil {
		return err
	}
	swaggerHandler.RegisterRoutes(a.router)

	a.router.Group(func(r chi.Router) {
		if a.cfg.RateLimit.Enabled {
			r.Use(httprate.Limit(
				a.cfg.RateLimit.Requests,
				a.cfg.RateLimit.Window,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
					response.TooManyRequests(w, "Too many requests, please slow down")
				}),
			))
		}

		activityHandler := httpcontroller.NewActivityHandler(a.activityPolicy, a.logger)
		activityHandler.RegisterRoutes(r)
	})

	return nil
}

// Handler returns the root HTTP handler
func (a *App) Handler() http.Handler {
	return a.router
}

// healthHandler handles health check requests
func (a *App) healthHandler(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]string{"status": "ok"})
}

// readyHandler handles readiness check requests
func (a *App) readyHandler(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]any{
		"status":        "ready",
		"credentials":   a.credentials,
		"cache_entries": a.cache.Len(),
	})
}

// Run starts the application and blocks until shutdown signal
func (a *App) Run(ctx context.Context) error {
	a.janitor.Start(ctx)

	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server", "addr", a.cfg.Server.Address(), "credentials", a.credentials)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		a.janitor.Stop()
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.logger.Info("received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		a.logger.Info("context cancelled")
	}

	return a.Shutdown(context.Background())
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down...")

	a.janitor.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down HTTP server: %w", err)
	}

	a.logger.Info("shutdown complete")
	return nil
}

// redditConnectorAdapter adapts reddit.Connector to service.Connector
type redditConnectorAdapter struct {
	connector *reddit.Connector
}

func (a *redditConnectorAdapter) Connect(ctx context.Context) (service.Upstream, error) {
	sess, err := a.connector.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return sess, nil
}
