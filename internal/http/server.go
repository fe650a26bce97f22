package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"payslip/internal/export"
	"payslip/internal/log"
	"payslip/internal/metrics"
	"payslip/internal/middleware/ratelimit"
	"payslip/internal/middleware/security"
	"payslip/internal/middleware/trace"
	"payslip/internal/services"
	appweb "payslip/web"
)

// ReadyFunc reports whether a dependency can serve traffic.
type ReadyFunc func(ctx context.Context) error

// Server is the slip editor: an http.Server with its routes and
// middleware already mounted.
type Server struct {
	http.Server

	slips     *services.SlipService
	templates *template.Template
	renderer  *export.Renderer
	metrics   *metrics.Metrics
	limiter   *ratelimit.Limiter
	ready     ReadyFunc
	logger    *log.Logger
	started   time.Time

	shutdownOnce sync.Once
}

// Option customises a Server.
type Option func(*Server)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithReadiness adds a dependency check to /readyz.
func WithReadiness(fn ReadyFunc) Option {
	return func(s *Server) { s.ready = fn }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l.WithComponent(log.ComponentHTTP) }
}

// WithRateLimit replaces the default limiter configuration.
func WithRateLimit(cfg ratelimit.Config) Option {
	return func(s *Server) { s.limiter = ratelimit.NewLimiter(cfg) }
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, slips *services.SlipService, opts ...Option) *Server {
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       2 * time.Minute,
		},
		slips:   slips,
		logger:  log.New(log.DefaultConfig()).WithComponent(log.ComponentHTTP),
		started: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	if s.limiter == nil {
		s.limiter = ratelimit.NewLimiter(ratelimit.DefaultConfig())
	}

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", log.FieldError, err)
	}
	s.templates = t

	if r, err := export.NewRenderer(); err != nil {
		s.logger.Warn("Failed parsing export template", log.FieldError, err)
	} else {
		s.renderer = r
	}

	s.Handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", s.metrics.Handler())

	slip := func(h http.HandlerFunc) http.Handler { return security.NoStore(h) }
	mux.Handle("GET /{$}", slip(s.handleNewDraft))
	mux.Handle("GET /slips/{id}", slip(s.handleForm))
	mux.Handle("POST /slips/{id}/details", slip(s.handleDetails))
	mux.Handle("POST /slips/{id}/{kind}", slip(s.handleAddItem))
	mux.Handle("POST /slips/{id}/{kind}/{item}/amount", slip(s.handleSetAmount))
	mux.Handle("POST /slips/{id}/{kind}/{item}/title", slip(s.handleRename))
	mux.Handle("POST /slips/{id}/{kind}/{item}/delete", slip(s.handleRemove))
	mux.Handle("GET /slips/{id}/preview", slip(s.handlePreview))
	mux.Handle("GET /slips/{id}/summary", slip(s.handleSummary))
	mux.Handle("GET /slips/{id}/download", slip(s.handleDownload))
	mux.Handle("POST /slips/{id}/export", slip(s.handleExport))

	var h http.Handler = mux
	h = s.limiter.Middleware(extractClientIP, nil)(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = trace.NewMiddleware(extractClientIP, s.metrics.ObserveRequest).Middleware(h)
	h = log.Middleware(s.logger)(h)
	return h
}

// Shutdown stops background goroutines and then the HTTP server. It is
// safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
