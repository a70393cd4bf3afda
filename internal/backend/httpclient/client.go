package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-paramform/pkg/backend"
	"github.com/goliatone/go-paramform/pkg/query"
	"github.com/goliatone/go-paramform/pkg/widget"
)

// maxPayloadBytes caps how much of a response body is read.
const maxPayloadBytes = 32 << 20

// Client implements backend.Backend over HTTP GET requests.
type Client struct {
	base        *url.URL
	catalogPath string
	http        *http.Client
	timeout     time.Duration
	cache       backend.Cache
	cacheTTL    time.Duration
	logger      *zap.Logger
}

// Ensure the implementation satisfies the public interface.
var _ backend.Backend = (*Client)(nil)

// New constructs a Client from pre-resolved options.
func New(options backend.ClientOptions) (*Client, error) {
	base, err := url.Parse(strings.TrimSpace(options.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("backend client: parse base url: %w", err)
	}

	httpClient := options.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		base:        base,
		catalogPath: options.CatalogPath,
		http:        httpClient,
		timeout:     options.RequestTimeout,
		cache:       options.Cache,
		cacheTTL:    options.CacheTTL,
		logger:      logger,
	}, nil
}

// Catalog fetches the dataset catalog. Catalog responses are never cached.
func (c *Client) Catalog(ctx context.Context) ([]backend.Resource, error) {
	target := c.resolve(c.catalogPath, nil)
	data, err := c.get(ctx, target)
	if err != nil {
		return nil, err
	}
	return backend.DecodeCatalog(data)
}

// Parameters fetches the widget specs of a dataset for the given selections.
func (c *Client) Parameters(ctx context.Context, path string, params query.Params) ([]widget.Spec, error) {
	return fetchCached(ctx, c, c.resolve(path, params), widget.DecodeParameters)
}

// Results fetches the result set of a dataset for the given selections.
func (c *Client) Results(ctx context.Context, path string, params query.Params) (backend.ResultSet, error) {
	return fetchCached(ctx, c, c.resolve(path, params), backend.DecodeResults)
}

func (c *Client) resolve(path string, params query.Params) string {
	ref := &url.URL{Path: path, RawQuery: params.Encode()}
	if c.base == nil || c.base.String() == "" {
		return ref.String()
	}
	return c.base.ResolveReference(ref).String()
}

// fetchCached serves target from the cache when possible. A fetched payload
// is stored only after decode accepts it.
func fetchCached[T any](ctx context.Context, c *Client, target string, decode func([]byte) (T, error)) (T, error) {
	if c.cache == nil {
		data, err := c.get(ctx, target)
		if err != nil {
			var zero T
			return zero, err
		}
		return decode(data)
	}

	payload, ok, err := c.cache.Get(ctx, target)
	if err != nil {
		c.logger.Warn("backend cache read failed", zap.String("url", target), zap.Error(err))
	} else if ok {
		if value, decodeErr := decode(payload); decodeErr == nil {
			c.logger.Debug("backend cache hit", zap.String("url", target))
			return value, nil
		}
		c.logger.Warn("backend cache entry unreadable, refetching", zap.String("url", target))
	}

	payload, err = c.get(ctx, target)
	if err != nil {
		var zero T
		return zero, err
	}
	value, err := decode(payload)
	if err != nil {
		return value, err
	}
	if err := c.cache.Set(ctx, target, payload, c.cacheTTL); err != nil {
		c.logger.Warn("backend cache write failed", zap.String("url", target), zap.Error(err))
	}
	return value, nil
}

func (c *Client) get(ctx context.Context, target string) ([]byte, error) {
	if target == "" {
		return nil, errors.New("backend client: url is required")
	}

	reqCtx := ctx
	var cancel context.CancelFunc
	if c.timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("backend client: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("backend request", zap.String("url", target))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend client: GET %s: %w", target, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("backend client: GET %s: unexpected status %s", target, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, fmt.Errorf("backend client: read %s: %w", target, err)
	}
	return data, nil
}
