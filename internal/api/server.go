// Package api exposes the read-only JSON surface consumed by the
// dashboard. Every endpoint is a pure function of its request parameters
// (instrument, date range, currency, indicator config); no selection
// state lives on the server.
package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"FinBoard/internal/store"

	"github.com/gin-gonic/gin"
)

// Server wires the HTTP routes to the store and compute engines.
type Server struct {
	store *store.Store
	http  *http.Server
}

// New builds the server and its routes.
func New(s *store.Store, addr string) *Server {
	gin.SetMode(gin.ReleaseMode)
	srv := &Server{store: s}

	router := gin.New()
	router.Use(gin.Recovery())

	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/instruments", srv.listInstruments)
		apiGroup.GET("/instruments/:symbol/prices", srv.getPrices)
		apiGroup.GET("/instruments/:symbol/indicators", srv.getIndicators)
		apiGroup.GET("/instruments/:symbol/stats", srv.getStats)
		apiGroup.GET("/instruments/:symbol/converted", srv.getConverted)
		apiGroup.GET("/compare", srv.compare)
	}

	srv.http = &http.Server{Addr: addr, Handler: router}
	return srv
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler { return s.http.Handler }

// Start serves until the listener fails. Run it in a goroutine.
func (s *Server) Start() {
	log.Printf("[INFO] api listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("[ERROR] api server: %v", err)
	}
}

// Stop drains in-flight requests and shuts the listener down.
func (s *Server) Stop(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		log.Printf("[WARN] api shutdown: %v", err)
	}
}
