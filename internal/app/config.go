package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"

	"github.com/xenking/robobuild/pkg/httpmiddleware"
)

// Config holds the complete application configuration, loadable from
// environment variables (ROBO_ prefix), flags, or YAML config files.
type Config struct {
	Addr         string   `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL  string   `usage:"PostgreSQL connection URL; empty serves the embedded seed from memory" flag:"database-url"`
	ImageBaseURL string   `default:"" usage:"Base URL for product images" flag:"image-base-url"`
	APIKeyPepper string   `usage:"HMAC pepper for API key hashing (ROBO_API_KEY_PEPPER)" flag:"api-key-pepper"`
	APIKeys      []string `usage:"Static device-control API keys, used without a database" flag:"api-keys"`
	Session      SessionConfig
	RateLimit    RateLimitConfig
	CORS         CORSConfig
	Graceful     GracefulConfig
}

// SessionConfig controls build session expiry and capacity.
type SessionConfig struct {
	TTL           time.Duration `default:"30m"   usage:"Idle time after which a build session is discarded" flag:"session-ttl"`
	SweepInterval time.Duration `default:"1m"    usage:"How often idle build sessions are swept" flag:"session-sweep-interval"`
	Max           int           `default:"10000" usage:"Maximum live build sessions, 0 for no limit" flag:"session-max"`
}

// RateLimitConfig controls the per-client rate limiter.
type RateLimitConfig struct {
	Max            int           `default:"100" usage:"Max requests per window"`
	Window         time.Duration `default:"1m"  usage:"Rate limit window duration"`
	TrustedProxies []string      `usage:"Proxy CIDRs or IPs whose X-Forwarded-For is honoured" flag:"trusted-proxies"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config files,
// and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	return loadConfig(os.Args[1:])
}

func loadConfig(args []string) (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		Args:      args,
		EnvPrefix: "ROBO",
		Files:     []string{"config.yaml", "/etc/robobuild/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.APIKeys) > 0 && c.APIKeyPepper == "" {
		return errors.New("api key pepper is required when api keys are configured: set ROBO_API_KEY_PEPPER")
	}
	if c.Session.TTL > 0 && c.Session.SweepInterval <= 0 {
		return errors.Errorf("session sweep interval must be positive, got %s", c.Session.SweepInterval)
	}
	if c.Session.Max < 0 {
		return errors.Errorf("session max must not be negative, got %d", c.Session.Max)
	}
	if _, err := httpmiddleware.ParseTrustedProxies(c.RateLimit.TrustedProxies); err != nil {
		return err
	}
	return nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's ROBO_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
