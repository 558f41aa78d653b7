// Package server wires the HTTP API together: router, middleware, and the
// feature packages' routes.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/docchat/docchat/internal/chat"
	"github.com/docchat/docchat/internal/db"
	"github.com/docchat/docchat/internal/ingest"
)

// Config holds server configuration.
type Config struct {
	Port        int
	DataDir     string // directory for the SQLite DB, vector DB and stored files
	MaxUploadMB int
	AllowAll    bool // allow all CORS origins (dev mode)
}

// Server is the document chat HTTP server.
type Server struct {
	cfg        Config
	db         *db.DB
	pipeline   *ingest.Pipeline
	engine     *chat.Engine
	router     chi.Router
	httpServer *http.Server
}

// New creates a server with all dependencies.
func New(cfg Config, database *db.DB, pipeline *ingest.Pipeline, engine *chat.Engine) *Server {
	s := &Server{
		cfg:      cfg,
		db:       database,
		pipeline: pipeline,
		engine:   engine,
	}

	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Upload and document management get the request timeout; the chat
	// routes stream and must outlive it.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		ingest.RegisterRoutes(r, s.pipeline, int64(s.cfg.MaxUploadMB)<<20)
	})
	chat.RegisterRoutes(r, s.engine)

	return r
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

// Database returns the database connection.
func (s *Server) Database() *db.DB { return s.db }

// Pipeline returns the ingestion pipeline.
func (s *Server) Pipeline() *ingest.Pipeline { return s.pipeline }

// Engine returns the chat engine.
func (s *Server) Engine() *chat.Engine { return s.engine }

// ServerConfig returns the server configuration.
func (s *Server) ServerConfig() Config { return s.cfg }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		// No WriteTimeout: /api/chat holds the connection open while
		// streaming.
		IdleTimeout: 120 * time.Second,
	}

	log.Printf("docchat server listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
