// Package server exposes conversations, turns and the rendering pipeline
// over HTTP, and pushes turn events to websocket clients.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/comigor/nexucore/internal/chart"
	"github.com/comigor/nexucore/internal/chat"
	"github.com/comigor/nexucore/internal/config"
)

const (
	maxBodySize   = 1 << 20
	maxUploadSize = 64 << 20
)

// Server holds the HTTP handlers.
type Server struct {
	app      string
	chat     *chat.Manager
	hub      *Hub
	limiter  *Limiter
	exporter chart.Exporter
	origins  []string
	static   http.Handler
}

// New wires handlers around mgr. static serves everything outside /api and
// /ws; it may be nil.
func New(cfg config.Config, mgr *chat.Manager, hub *Hub, static http.Handler) *Server {
	return &Server{
		app:      cfg.App.Name,
		chat:     mgr,
		hub:      hub,
		limiter:  NewLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst),
		exporter: chart.Exporter{App: cfg.App.Name},
		origins:  cfg.Server.AllowedOrigins,
		static:   static,
	}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(CORS(s.origins))

	r.Route("/api", func(r chi.Router) {
		r.Get("/modes", s.handleModes)

		r.Route("/conversations", func(r chi.Router) {
			r.Get("/", s.handleListConversations)
			r.Post("/", s.handleCreateConversation)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetConversation)
				r.Delete("/", s.handleDeleteConversation)
				r.Post("/activate", s.handleActivateConversation)
				r.With(s.limiter.Middleware).Post("/turns", s.handleSubmitTurn)
			})
		})

		r.Post("/render", s.handleRender)
		r.Post("/charts/export", s.handleChartExport)
		r.Post("/previews/document", s.handlePreviewDocument)
		r.Post("/previews/view", s.handlePreviewView)
		r.Post("/previews/export", s.handlePreviewExport)
	})

	if s.hub != nil {
		r.Get("/ws", s.hub.ServeHTTP)
	}
	if s.static != nil {
		r.Handle("/*", s.static)
	}
	return r
}
