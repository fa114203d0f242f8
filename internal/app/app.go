// Package app wires configuration, storage, domain services and the HTTP
// server into a runnable application.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/robobuild/db"
	"github.com/xenking/robobuild/internal/domain/auth"
	"github.com/xenking/robobuild/internal/domain/build"
	"github.com/xenking/robobuild/internal/domain/device"
	"github.com/xenking/robobuild/internal/domain/inquiry"
	"github.com/xenking/robobuild/internal/domain/part"
	"github.com/xenking/robobuild/internal/domain/product"
	"github.com/xenking/robobuild/internal/domain/quote"
	"github.com/xenking/robobuild/internal/handler"
	"github.com/xenking/robobuild/internal/seed"
	"github.com/xenking/robobuild/internal/storage/memory"
	"github.com/xenking/robobuild/internal/storage/postgres"
	"github.com/xenking/robobuild/pkg/health"
	"github.com/xenking/robobuild/pkg/httpmiddleware"
)

// backend is the set of repositories the service runs on.
type backend struct {
	catalog   part.Source
	products  product.Repository
	quotes    quote.Repository
	inquiries inquiry.Repository
	keys      auth.Repository
	// db is nil when serving from memory.
	db    health.Pinger
	close func()
}

// openBackend connects to PostgreSQL when a database URL is configured and
// falls back to the embedded seed otherwise.
func openBackend(ctx context.Context, lg *zap.Logger, cfg *Config) (*backend, error) {
	if cfg.DatabaseURL == "" {
		lg.Info("No database configured, serving embedded seed from memory")
		products, err := memory.NewProductRepository()
		if err != nil {
			return nil, errors.Wrap(err, "load products")
		}
		return &backend{
			catalog:   memory.NewCatalogSource(),
			products:  products,
			quotes:    memory.NewQuoteRepository(),
			inquiries: memory.NewInquiryRepository(),
			keys:      memory.NewAPIKeyRepository([]byte(cfg.APIKeyPepper), cfg.APIKeys, auth.ScopeDeviceControl),
			close:     func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "create db pool")
	}
	if err := postgres.RunMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "run migrations")
	}
	if len(cfg.APIKeys) > 0 {
		lg.Warn("Static API keys are ignored when a database is configured; use seed-db to provision keys")
	}
	return &backend{
		catalog:   postgres.NewCatalogRepository(pool),
		products:  postgres.NewProductRepository(pool),
		quotes:    postgres.NewQuoteRepository(pool),
		inquiries: postgres.NewInquiryRepository(pool),
		keys:      postgres.NewAPIKeyRepository(pool),
		db:        pool,
		close:     pool.Close,
	}, nil
}

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	be, err := openBackend(ctx, lg, cfg)
	if err != nil {
		return err
	}
	defer be.close()

	// The parts catalog and the fleet are loaded once and never change.
	var (
		catalog *part.Catalog
		devices []device.Device
	)
	load, loadCtx := errgroup.WithContext(ctx)
	load.Go(func() error {
		var err error
		catalog, err = part.Load(loadCtx, be.catalog)
		return errors.Wrap(err, "load catalog")
	})
	load.Go(func() error {
		var err error
		devices, err = seed.Devices(db.Devices)
		return errors.Wrap(err, "load devices")
	})
	if err := load.Wait(); err != nil {
		return err
	}
	lg.Info("Catalog loaded", zap.Int("parts", catalog.Len()), zap.Int("devices", len(devices)))

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("catalog", time.Second, health.NonEmptyCheck("catalog", catalog.Len))
	if be.db != nil {
		healthSvc.AddReadinessCheck("postgres", 5*time.Second, health.PingCheck(be.db))
	}
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Domain services.
	builds := build.NewStore(catalog, cfg.Session.TTL, cfg.Session.Max)
	fleet := device.NewFleet(devices)
	h, err := handler.NewHandler(
		handler.HandlerConfig{
			ImageBaseURL:  cfg.ImageBaseURL,
			MeterProvider: m.MeterProvider(),
		},
		builds,
		be.products,
		quote.NewService(be.quotes),
		inquiry.NewService(be.inquiries, fleet),
		fleet,
		auth.NewAuthenticator(be.keys, []byte(cfg.APIKeyPepper)),
	)
	if err != nil {
		return errors.Wrap(err, "create handler")
	}

	proxies, err := httpmiddleware.ParseTrustedProxies(cfg.RateLimit.TrustedProxies)
	if err != nil {
		return errors.Wrap(err, "parse trusted proxies")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("GET /readyz", healthSvc.ReadyEndpoint)
	h.Register(mux)
	routeFinder := httpmiddleware.MakeRouteFinder(mux)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization", handler.HeaderAPIKey},
				ExposeHeaders:    []string{httpmiddleware.HeaderRequestID, "Location"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:            cfg.RateLimit.Max,
				Window:         cfg.RateLimit.Window,
				TrustedProxies: proxies,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("robobuild-api", routeFinder, m),
			httpmiddleware.LogRequests(routeFinder),
			httpmiddleware.Labeler(routeFinder),
		),
	}

	g, gCtx := errgroup.WithContext(ctx)
	if cfg.Session.TTL > 0 {
		g.Go(func() error {
			builds.Run(gCtx, cfg.Session.SweepInterval, func(removed int) {
				h.SessionsExpired(gCtx, removed)
				lg.Debug("Swept idle build sessions", zap.Int("removed", removed), zap.Int("live", builds.Len()))
			})
			return nil
		})
	}
	g.Go(func() error {
		// Graceful shutdown: wait for cancellation, drain, then stop.
		<-gCtx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		return nil
	})
	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})
	return g.Wait()
}
