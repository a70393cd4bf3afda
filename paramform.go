// Package paramform wires the dataset catalog, parameter form and result
// table into ready-to-use stacks for the browser host and the terminal.
package paramform

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-paramform/internal/backend/httpclient"
	"github.com/goliatone/go-paramform/pkg/backend"
	"github.com/goliatone/go-paramform/pkg/catalog"
	"github.com/goliatone/go-paramform/pkg/config"
	"github.com/goliatone/go-paramform/pkg/render"
	"github.com/goliatone/go-paramform/pkg/renderers/tui"
	"github.com/goliatone/go-paramform/pkg/renderers/vanilla"
	"github.com/goliatone/go-paramform/pkg/session"
)

// RenderOptions describes per-request hints passed to renderers.
type RenderOptions = render.RenderOptions

// Entry is one dataset of the catalog.
type Entry = catalog.Entry

// NewBackend constructs the HTTP backend while keeping the concrete type
// hidden from consumers.
func NewBackend(options ...backend.ClientOption) (backend.Backend, error) {
	client, err := httpclient.New(backend.NewClientOptions(options...))
	if err != nil {
		return nil, err
	}
	return client, nil
}

// NewCache builds the response cache described by cfg. It returns a nil
// cache when caching is disabled. The close function releases the redis
// connection, if any.
func NewCache(ctx context.Context, cfg config.CacheConfig) (backend.Cache, func() error, error) {
	noop := func() error { return nil }
	if !cfg.Enabled {
		return nil, noop, nil
	}
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		return backend.NewMemoryCache(cfg.MaxEntries), noop, nil
	}
	client, err := backend.DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, noop, err
	}
	return backend.NewRedisCache(client, ""), client.Close, nil
}

// NewRendererRegistry registers the HTML renderer and, when terminal options
// are given, the terminal renderer.
func NewRendererRegistry(html []vanilla.Option, terminal []tui.Option) (*render.Registry, error) {
	htmlRenderer, err := vanilla.New(html...)
	if err != nil {
		return nil, err
	}
	registry, err := render.NewRegistry(htmlRenderer)
	if err != nil {
		return nil, err
	}

	if terminal != nil {
		tuiRenderer, err := tui.New(terminal...)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(tuiRenderer); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// App is a backend plus the catalog loaded from it.
type App struct {
	Config  config.Config
	Backend backend.Backend
	Catalog *catalog.Catalog
	Logger  *zap.Logger

	closers []func() error
}

// Open builds the backend described by cfg and loads the catalog. A failed
// catalog load is logged and leaves the catalog empty; Open still succeeds.
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	cache, closeCache, err := NewCache(ctx, cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("paramform: cache: %w", err)
	}

	b, err := NewBackend(
		backend.WithBaseURL(cfg.Backend.BaseURL),
		backend.WithCatalogPath(cfg.Backend.CatalogPath),
		backend.WithRequestTimeout(cfg.Backend.RequestTimeout),
		backend.WithCache(cache, cfg.Cache.TTL),
		backend.WithLogger(logger.Named("backend")),
	)
	if err != nil {
		_ = closeCache()
		return nil, fmt.Errorf("paramform: backend: %w", err)
	}

	c := catalog.New(b, catalog.WithLogger(logger.Named("catalog")))
	_ = c.Load(ctx)

	return &App{
		Config:  cfg,
		Backend: b,
		Catalog: c,
		Logger:  logger,
		closers: []func() error{closeCache},
	}, nil
}

// NewSession starts a session on the catalog's first dataset.
func (a *App) NewSession(ctx context.Context) (*session.Session, error) {
	sess := session.New(a.Backend, a.Catalog, session.WithLogger(a.Logger.Named("session")))
	if err := sess.Start(ctx); err != nil {
		return sess, err
	}
	return sess, nil
}

// Close releases cache connections.
func (a *App) Close() error {
	var errs []error
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
