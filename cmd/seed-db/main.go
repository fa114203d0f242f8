// Command seed-db loads the parts catalog, shop products and a device-control
// API key into PostgreSQL.
package main

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/cristalhq/aconfig"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/klauspost/pgzip"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/robobuild/db"
	"github.com/xenking/robobuild/internal/domain/auth"
	"github.com/xenking/robobuild/internal/seed"
	"github.com/xenking/robobuild/internal/storage/postgres"
)

type config struct {
	DatabaseURL  string `usage:"PostgreSQL connection URL (or DATABASE_URL)" flag:"database-url"`
	PartsFile    string `usage:"Parts catalog JSON, optionally .gz; empty uses the embedded seed" flag:"parts-file"`
	ProductsFile string `usage:"Products JSON, optionally .gz; empty uses the embedded seed" flag:"products-file"`
	APIKey       string `usage:"Device-control API key to provision (ROBO_SEED_API_KEY)" env:"SEED_API_KEY" flag:"api-key"`
	APIKeyID     string `default:"default" usage:"Identifier of the provisioned API key" flag:"api-key-id"`
	APIKeyPepper string `usage:"HMAC pepper for API key hashing (ROBO_API_KEY_PEPPER)" flag:"api-key-pepper"`
}

func loadConfig() (*config, error) {
	var cfg config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix:        "ROBO",
		SkipFiles:        true,
		AllowUnknownEnvs: true,
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set --database-url or DATABASE_URL")
	}
	return &cfg, nil
}

func main() {
	app.Run(func(ctx context.Context, lg *zap.Logger, _ *app.Telemetry) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := run(ctx, lg, cfg); err != nil {
			return errors.Wrap(err, "seed")
		}
		lg.Info("Seed completed")
		return nil
	})
}

func run(ctx context.Context, lg *zap.Logger, cfg *config) error {
	lg.Info("Connecting to database")
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	lg.Info("Running migrations")
	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		data, err := readSeed(cfg.PartsFile, db.Parts)
		if err != nil {
			return errors.Wrap(err, "read parts")
		}
		categories, err := seed.Categories(data)
		if err != nil {
			return err
		}
		if err := postgres.NewCatalogRepository(pool).Upsert(gCtx, categories); err != nil {
			return errors.Wrap(err, "upsert catalog")
		}
		lg.Info("Upserted catalog", zap.Int("categories", len(categories)))
		return nil
	})
	g.Go(func() error {
		data, err := readSeed(cfg.ProductsFile, db.Products)
		if err != nil {
			return errors.Wrap(err, "read products")
		}
		products, err := seed.Products(data)
		if err != nil {
			return err
		}
		if err := postgres.NewProductRepository(pool).Upsert(gCtx, products); err != nil {
			return errors.Wrap(err, "upsert products")
		}
		lg.Info("Upserted products", zap.Int("count", len(products)))
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if cfg.APIKey == "" {
		lg.Warn("No API key given, skipping provisioning")
		return nil
	}
	key := auth.APIKeyInfo{
		ID:      cfg.APIKeyID,
		KeyHash: auth.HashKey([]byte(cfg.APIKeyPepper), cfg.APIKey),
		Name:    "Device control key",
		Scopes:  []string{auth.ScopeDeviceControl},
	}
	if err := postgres.NewAPIKeyRepository(pool).Upsert(ctx, key); err != nil {
		return errors.Wrap(err, "upsert api key")
	}
	lg.Info("Upserted API key", zap.String("id", key.ID))
	return nil
}

// readSeed returns the contents of path, decompressing .gz files. An empty
// path yields the embedded fallback.
func readSeed(path string, embedded []byte) ([]byte, error) {
	if path == "" {
		return embedded, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		zr, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(err, "open gzip")
		}
		defer func() { _ = zr.Close() }()
		r = zr
	}
	return io.ReadAll(r)
}
