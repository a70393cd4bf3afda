// Package server hosts browser sessions of the parameter form over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"github.com/goliatone/go-paramform/pkg/backend"
	"github.com/goliatone/go-paramform/pkg/catalog"
	"github.com/goliatone/go-paramform/pkg/config"
	"github.com/goliatone/go-paramform/pkg/renderers/vanilla"
	"github.com/goliatone/go-paramform/pkg/session"
)

// Option customises a Server.
type Option func(*Server)

// WithLogger sets the request and diagnostics logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBasePath declares the prefix the router is mounted under so rendered
// pages point at the right endpoints.
func WithBasePath(path string) Option {
	return func(s *Server) {
		s.basePath = path
	}
}

// WithTitle sets the page title.
func WithTitle(title string) Option {
	return func(s *Server) {
		s.title = title
	}
}

// WithHTMLRenderer replaces the default vanilla renderer.
func WithHTMLRenderer(renderer *vanilla.Renderer) Option {
	return func(s *Server) {
		if renderer != nil {
			s.html = renderer
		}
	}
}

// Server represents the HTTP host.
type Server struct {
	config   config.ServerConfig
	router   *chi.Mux
	backend  backend.Backend
	catalog  *catalog.Catalog
	sessions *session.Registry
	cookies  *sessions.CookieStore
	html     *vanilla.Renderer
	logger   *zap.Logger

	basePath  string
	title     string
	endpoints Endpoints
}

// New creates a server over a loaded catalog.
func New(cfg config.ServerConfig, b backend.Backend, c *catalog.Catalog, options ...Option) (*Server, error) {
	if b == nil {
		return nil, errors.New("server: backend is nil")
	}
	if c == nil {
		return nil, errors.New("server: catalog is nil")
	}

	s := &Server{
		config:  cfg,
		backend: b,
		catalog: c,
		logger:  zap.NewNop(),
		title:   "Datasets",
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	s.endpoints = endpointsFor(s.basePath)
	if s.config.SessionName == "" {
		s.config.SessionName = "paramform"
	}

	if s.html == nil {
		renderer, err := vanilla.New(
			vanilla.WithAssetBase(s.endpoints.Assets),
			vanilla.WithTemplatesDir(s.config.TemplatesDir),
		)
		if err != nil {
			return nil, err
		}
		s.html = renderer
	}

	s.cookies = newCookieStore(s.config, s.logger)
	s.sessions = session.NewRegistry(s.newSession)
	s.setupRouter()
	return s, nil
}

// Router returns the configured router.
func (s *Server) Router() http.Handler {
	return s.router
}

// Endpoints reports the URLs rendered into pages.
func (s *Server) Endpoints() Endpoints {
	return s.endpoints
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	if s.config.HandlerTimeout > 0 {
		r.Use(middleware.Timeout(s.config.HandlerTimeout))
	}

	if len(s.config.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.config.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID", headerRefreshed},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get(routeHealth, s.handleHealth)
	r.Get(routeOpenAPI, s.handleOpenAPI)
	r.Get(routeAssets+"/*", s.handleAsset)

	r.Group(func(r chi.Router) {
		r.Use(s.bindSession)

		r.Get("/", s.handleIndex)
		r.Post(routeDatasets+"/{id}", s.handleSelectDataset)
		r.Get(routeParams, s.handleForm)
		r.Post(routeParams+"/{name}", s.handleChange)
		r.Post(routeSlide+"/{name}", s.handleSlide)
		r.Get(routeResults, s.handleResults)
		r.Get(routeTSV, s.handleTSV)
		r.Get(routeXLSX, s.handleXLSX)
	})

	s.router = r
}

func (s *Server) newSession(ctx context.Context) (*session.Session, error) {
	sess := session.New(s.backend, s.catalog, session.WithLogger(s.logger))
	if err := sess.Start(ctx); err != nil {
		s.logger.Warn("initial dataset selection failed", zap.Error(err))
	}
	return sess, nil
}

// loggingMiddleware logs HTTP requests using zap.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			s.logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("remote_addr", r.RemoteAddr),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

func newCookieStore(cfg config.ServerConfig, logger *zap.Logger) *sessions.CookieStore {
	secret := cfg.SessionSecret
	if secret == "" {
		secret = uuid.NewString() + uuid.NewString()
		logger.Warn("no session secret configured; browser sessions will not survive a restart")
	}

	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionMaxAge.Seconds()),
		Secure:   cfg.SecureCookies,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}
