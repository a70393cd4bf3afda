package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func envMap(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(WithEnvFiles(), WithLookupEnv(envMap(nil)))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(Default(), *cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadLayersFileDotenvAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "paramform.yaml", `
backend:
  base_url: http://api.internal:4465
  request_timeout: 5s
server:
  addr: ":9000"
  allowed_origins: ["https://a.example"]
  templates_dir: ./overrides
cache:
  enabled: true
  ttl: 2m
renderer: tui
`)
	dotenv := writeFile(t, dir, ".env", "PARAMFORM_ADDR=:9100\nPARAMFORM_REDIS_ADDR=redis:6379\n")

	cfg, err := Load(
		WithFile(file),
		WithEnvFiles(dotenv),
		WithLookupEnv(envMap(map[string]string{
			"PARAMFORM_REDIS_ADDR":        "localhost:6380",
			"PARAMFORM_ALLOWED_ORIGINS":   "https://b.example, https://c.example",
			"PARAMFORM_SESSION_SECRET":    "s3cret",
			"PARAMFORM_CACHE_MAX_ENTRIES": "64",
		})),
	)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := Default()
	want.Backend.BaseURL = "http://api.internal:4465"
	want.Backend.RequestTimeout = 5 * time.Second
	want.Server.Addr = ":9100"
	want.Server.AllowedOrigins = []string{"https://b.example", "https://c.example"}
	want.Server.SessionSecret = "s3cret"
	want.Server.TemplatesDir = "./overrides"
	want.Cache.Enabled = true
	want.Cache.TTL = 2 * time.Minute
	want.Cache.MaxEntries = 64
	want.Cache.RedisAddr = "localhost:6380"
	want.Renderer = RendererTUI

	if diff := cmp.Diff(want, *cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadSkipsMissingDotenv(t *testing.T) {
	missing := filepath.Join(t.TempDir(), ".env")
	if _, err := Load(WithEnvFiles(missing), WithLookupEnv(envMap(nil))); err != nil {
		t.Fatalf("missing .env should be ignored: %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	unknown := writeFile(t, dir, "unknown.yaml", "backend:\n  base_uri: http://x\n")

	cases := []struct {
		name    string
		options []Option
		want    string
	}{
		{
			name:    "missing file",
			options: []Option{WithFile(filepath.Join(dir, "nope.yaml"))},
			want:    "config: read",
		},
		{
			name:    "unknown key",
			options: []Option{WithFile(unknown)},
			want:    "base_uri",
		},
		{
			name:    "bad duration",
			options: []Option{WithLookupEnv(envMap(map[string]string{"PARAMFORM_CACHE_TTL": "soon"}))},
			want:    "PARAMFORM_CACHE_TTL: invalid duration",
		},
		{
			name:    "unknown renderer",
			options: []Option{WithLookupEnv(envMap(map[string]string{"PARAMFORM_RENDERER": "preact"}))},
			want:    `unknown renderer "preact"`,
		},
		{
			name:    "empty base url",
			options: []Option{WithLookupEnv(envMap(map[string]string{"PARAMFORM_BACKEND_URL": " "}))},
			want:    "base url is required",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			options := append([]Option{WithEnvFiles(), WithLookupEnv(envMap(nil))}, tc.options...)
			_, err := Load(options...)
			if err == nil {
				t.Fatalf("expected error containing %q", tc.want)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}
