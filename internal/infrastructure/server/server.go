package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	api "github.com/GriffinCanCode/PhoneOS/internal/api/http"
	"github.com/GriffinCanCode/PhoneOS/internal/api/middleware"
	"github.com/GriffinCanCode/PhoneOS/internal/api/ws"
	"github.com/GriffinCanCode/PhoneOS/internal/domain/catalog"
	"github.com/GriffinCanCode/PhoneOS/internal/domain/clock"
	"github.com/GriffinCanCode/PhoneOS/internal/domain/emulator"
	"github.com/GriffinCanCode/PhoneOS/internal/infrastructure/config"
	"github.com/GriffinCanCode/PhoneOS/internal/infrastructure/events"
	"github.com/GriffinCanCode/PhoneOS/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PhoneOS/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/PhoneOS/internal/infrastructure/storage"
	"github.com/GriffinCanCode/PhoneOS/internal/infrastructure/tracing"
)

const shutdownTimeout = 10 * time.Second

// Server wraps the HTTP server and dependencies
type Server struct {
	router   *gin.Engine
	http     *http.Server
	emulator *emulator.Emulator
	hub      *ws.Hub
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
}

// NewServer creates a new server instance
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	logger.Info("Initializing PhoneOS emulator",
		zap.String("port", cfg.Server.Port),
		zap.String("storage", cfg.Storage.Backend),
		zap.Duration("tick", cfg.Clock.TickInterval),
	)

	metrics := monitoring.NewMetrics()
	tracer := tracing.New("phoneos", logger)

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	logger.Info("Catalog loaded", zap.Int("apps", len(cat.Apps)), zap.String("path", cfg.Catalog.Path))

	kv, err := storage.Open(storage.Config{Backend: cfg.Storage.Backend, Path: cfg.Storage.Path}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	opts := emulator.Options{
		Storage:    kv,
		StorageKey: cfg.Storage.Key,
		Compress:   cfg.Storage.Compress,
		Catalog:    &cat,
		Clock: clock.Config{
			TickInterval: cfg.Clock.TickInterval,
			BootDelay:    cfg.Clock.BootDelay,
		},
		Logger:  logger,
		Metrics: metrics,
	}

	// Events are optional: a broker that is down must not keep the device off
	if cfg.Events.URL != "" {
		publisher, err := events.Connect(cfg.Events.URL, cfg.Events.Subject, logger, metrics)
		if err != nil {
			logger.Warn("Failed to connect to NATS, state events disabled", zap.Error(err))
		} else {
			opts.Publisher = publisher
			logger.Info("Publishing state events", zap.String("subject", cfg.Events.Subject))
		}
	}

	emu, err := emulator.New(ctx, opts)
	if err != nil {
		_ = kv.Close()
		return nil, fmt.Errorf("failed to start emulator: %w", err)
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))

	cors := middleware.DefaultCORSConfig()
	if len(cfg.Server.CORSOrigins) > 0 {
		cors.AllowOrigins = cfg.Server.CORSOrigins
	}
	router.Use(middleware.CORS(cors))

	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := api.NewHandlers(emu.Store(), api.Options{
		Health:  emu,
		Metrics: metrics,
		Logger:  logger,
	})
	handlers.Register(router)

	hub := ws.NewHub(emu.Store(), ws.Options{
		CheckOrigin: originChecker(cors.AllowOrigins),
		Logger:      logger,
		Metrics:     metrics,
	})
	router.GET("/stream", hub.HandleConnection)

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/metrics/json", func(c *gin.Context) {
		c.JSON(http.StatusOK, metrics.Snapshot())
	})

	logger.Info("Server initialized successfully", zap.Bool("restored", emu.Restored()))

	return &Server{
		router:   router,
		emulator: emu,
		hub:      hub,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
	}, nil
}

// Handler exposes the router, mostly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until Shutdown is called
func (s *Server) Run() error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("Starting HTTP server", zap.String("addr", addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, disconnects stream clients and then
// stops the emulator, which writes a final snapshot
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	var errs []error
	if s.http != nil {
		ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()
		if err := s.http.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}

	s.hub.Close()

	if err := s.emulator.Close(); err != nil {
		s.logger.Error("Failed to close emulator", zap.Error(err))
		errs = append(errs, err)
	}

	_ = s.logger.Sync()
	return errors.Join(errs...)
}

// originChecker mirrors the CORS policy for WebSocket upgrades. Requests
// without an Origin header come from non-browser clients and are allowed.
func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}
