// Package web provides the HTTP API and HTML pages for the SKU engine.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"

	"github.com/JonMunkholm/proset/internal/config"
	"github.com/JonMunkholm/proset/internal/core"
	"github.com/JonMunkholm/proset/internal/vendors"
	mw "github.com/JonMunkholm/proset/internal/web/middleware"
)

// Server is the HTTP server for the SKU engine.
type Server struct {
	skus    *core.Service
	vendors *vendors.Service
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server
}

// NewServer wires routes and middleware around the given services.
func NewServer(skus *core.Service, vendorSvc *vendors.Service, cfg *config.Config) *Server {
	s := &Server{
		skus:    skus,
		vendors: vendorSvc,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.secureHeaders())
	s.router.Use(middleware.Compress(5))

	if s.cfg.Rate.Enabled {
		s.router.Use(s.rateLimit(s.cfg.Rate.RequestsPerMinute))
	}
}

func (s *Server) setupRoutes() {
	auth := mw.APIKeyAuth(&s.cfg.Security)

	s.router.Get("/healthz", s.handleHealth)

	// Interactive routes share the request timeout.
	s.router.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))

		r.Get("/", s.handleIndex)
		r.Get("/vendors/{name}", s.handleVendorPage)

		r.Get("/api/vendors", s.handleListVendors)
		r.Get("/api/vendors/{name}", s.handleGetVendor)
		r.Get("/api/vendors/{name}/export", s.handleExport)
		r.Get("/api/vendors/{name}/products/{sku}", s.handleGetProduct)

		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Put("/api/vendors", s.handleSaveVendor)
			r.Delete("/api/vendors/{name}", s.handleDeleteVendor)
			r.Put("/api/vendors/{name}/products", s.handleSaveProduct)
			r.Delete("/api/vendors/{name}/products/{sku}", s.handleDeleteProduct)
		})
	})

	// Batches run under IMPORT_TIMEOUT instead, set by the handlers.
	s.router.Group(func(r chi.Router) {
		r.Use(auth)
		if s.cfg.Rate.Enabled {
			r.Use(s.rateLimit(s.cfg.Rate.BatchLimit))
		}
		r.Post("/api/import", s.handleImport)
		r.Post("/api/vendors/{name}/generate", s.handleGenerate)
	})
}

func (s *Server) secureHeaders() func(http.Handler) http.Handler {
	opts := secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		SSLProxyHeaders:    map[string]string{"X-Forwarded-Proto": "https"},
	}
	if s.cfg.Security.EnableCSP {
		opts.ContentSecurityPolicy = "default-src 'self'; style-src 'self' 'unsafe-inline'"
	}
	return secure.New(opts).Handler
}

func (s *Server) rateLimit(perMinute int) func(http.Handler) http.Handler {
	return httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", "60")
			s.respondError(w, r, errors.New("rate limit exceeded"))
		}),
	)
}

// Start listens on the configured address until Shutdown.
func (s *Server) Start() error {
	sc := s.cfg.Server
	s.server = &http.Server{
		Addr:         sc.Addr(),
		Handler:      s.router,
		ReadTimeout:  sc.ReadTimeout,
		WriteTimeout: sc.WriteTimeout,
		IdleTimeout:  sc.IdleTimeout,
	}

	slog.Info("starting server", "addr", sc.Addr())
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// writeJSON encodes v with the given status. Encoding errors are only
// logged since the header is already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
