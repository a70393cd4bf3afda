package backend

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// DefaultCatalogPath is where the catalog lives when no path is configured.
const DefaultCatalogPath = "/squirrels0"

// ClientOptions configures the HTTP backend implementation.
type ClientOptions struct {
	// BaseURL is prepended to the catalog path and every dataset path.
	BaseURL string
	// CatalogPath locates the catalog endpoint relative to BaseURL.
	CatalogPath string
	// HTTPClient overrides the client used for requests.
	HTTPClient *http.Client
	// RequestTimeout bounds each request. Zero leaves requests unbounded.
	RequestTimeout time.Duration
	// Cache stores parameter and result payloads for CacheTTL when set.
	Cache    Cache
	CacheTTL time.Duration
	// Logger receives request diagnostics.
	Logger *zap.Logger
}

// ClientOption mutates ClientOptions.
type ClientOption func(*ClientOptions)

// NewClientOptions applies opts over the defaults.
func NewClientOptions(opts ...ClientOption) ClientOptions {
	cfg := ClientOptions{
		CatalogPath:    DefaultCatalogPath,
		RequestTimeout: 30 * time.Second,
		CacheTTL:       5 * time.Minute,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return cfg
}

// WithBaseURL sets the backend origin, e.g. "http://localhost:8000".
func WithBaseURL(base string) ClientOption {
	return func(cfg *ClientOptions) {
		cfg.BaseURL = base
	}
}

// WithCatalogPath overrides DefaultCatalogPath.
func WithCatalogPath(path string) ClientOption {
	return func(cfg *ClientOptions) {
		if path != "" {
			cfg.CatalogPath = path
		}
	}
}

// WithHTTPClient injects a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(cfg *ClientOptions) {
		cfg.HTTPClient = client
	}
}

// WithRequestTimeout bounds every request.
func WithRequestTimeout(timeout time.Duration) ClientOption {
	return func(cfg *ClientOptions) {
		cfg.RequestTimeout = timeout
	}
}

// WithCache enables response caching for parameter and result requests.
func WithCache(cache Cache, ttl time.Duration) ClientOption {
	return func(cfg *ClientOptions) {
		cfg.Cache = cache
		if ttl > 0 {
			cfg.CacheTTL = ttl
		}
	}
}

// WithLogger attaches a zap logger.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(cfg *ClientOptions) {
		cfg.Logger = logger
	}
}
