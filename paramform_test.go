package paramform

import (
	"context"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-paramform/pkg/backend"
	"github.com/goliatone/go-paramform/pkg/config"
	"github.com/goliatone/go-paramform/pkg/renderers/tui"
)

type silentDriver struct{}

func (silentDriver) Input(context.Context, tui.InputConfig) (string, error) { return "", nil }
func (silentDriver) Confirm(context.Context, tui.ConfirmConfig) (bool, error) { return false, nil }
func (silentDriver) Select(context.Context, tui.SelectConfig) (int, error) { return 0, nil }
func (silentDriver) MultiSelect(context.Context, tui.SelectConfig) ([]int, error) { return nil, nil }
func (silentDriver) Info(context.Context, string) error { return nil }

func TestAssetsFSContainsRuntime(t *testing.T) {
	for _, name := range []string{"paramform.js", "paramform.css"} {
		if _, err := fs.ReadFile(AssetsFS(), name); err != nil {
			t.Fatalf("expected %s to be readable: %v", name, err)
		}
	}
	if _, err := fs.ReadFile(EmbeddedTemplates(), "templates/form.tmpl"); err != nil {
		t.Fatalf("expected form template: %v", err)
	}
}

func TestNewRendererRegistry(t *testing.T) {
	registry, err := NewRendererRegistry(nil, nil)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	if diff := cmp.Diff([]string{"vanilla"}, registry.List()); diff != "" {
		t.Fatalf("renderers mismatch (-want +got):\n%s", diff)
	}

	registry, err = NewRendererRegistry(nil, []tui.Option{tui.WithPromptDriver(silentDriver{})})
	if err != nil {
		t.Fatalf("registry with tui: %v", err)
	}
	if !registry.Has("tui") || !registry.Has("vanilla") {
		t.Fatalf("expected both renderers, got %v", registry.List())
	}
}

func TestNewCacheSelection(t *testing.T) {
	ctx := context.Background()

	cache, closeFn, err := NewCache(ctx, config.CacheConfig{})
	if err != nil || cache != nil {
		t.Fatalf("disabled cache should be nil, got %v, %v", cache, err)
	}
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}

	cache, _, err = NewCache(ctx, config.CacheConfig{Enabled: true, MaxEntries: 4})
	if err != nil {
		t.Fatalf("memory cache: %v", err)
	}
	if _, ok := cache.(*backend.MemoryCache); !ok {
		t.Fatalf("expected memory cache, got %T", cache)
	}
}

func TestOpenLoadsCatalog(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/squirrels0", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"resource_paths": [{"dataset": "prices", "label": "Prices", "parameters_path": "/squirrels0/prices/parameters", "result_path": "/squirrels0/prices"}]}`))
	})
	mux.HandleFunc("/squirrels0/prices/parameters", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"parameters": [{"widget_type": "DateField", "name": "as_of", "label": "As of", "selected_date": "2024-01-31"}]}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.Backend.BaseURL = server.URL
	cfg.Cache.Enabled = true

	app, err := Open(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })

	if app.Catalog.Len() != 1 {
		t.Fatalf("expected one dataset, got %d", app.Catalog.Len())
	}

	sess, err := app.NewSession(context.Background())
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if got := sess.Query().Encode(); got != "as_of=2024-01-31" {
		t.Fatalf("unexpected query %q", got)
	}
}

func TestOpenToleratesUnreachableCatalog(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.Backend.BaseURL = server.URL

	app, err := Open(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("open should not fail on catalog errors: %v", err)
	}
	if app.Catalog.Len() != 0 {
		t.Fatalf("catalog should be empty")
	}
	sess, err := app.NewSession(context.Background())
	if err != nil {
		t.Fatalf("a session over an empty catalog should start idle: %v", err)
	}
	if _, ok := sess.Dataset(); ok {
		t.Fatalf("no dataset should be selected")
	}
}
