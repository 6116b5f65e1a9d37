// Package web exposes a small HTTP status surface for the running bot.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"scryptbot/internal/logger"
)

// StatusFunc returns the current bot status snapshot.
type StatusFunc func() map[string]any

// PortfolioFunc returns the current paper portfolio snapshot.
type PortfolioFunc func() map[string]any

// Server serves /status and /portfolio.
type Server struct {
	addr      string
	status    StatusFunc
	portfolio PortfolioFunc
	srv       *http.Server
	started   time.Time
}

// NewServer creates a Server bound to addr. portfolio may be nil when
// no paper trading engine is running.
func NewServer(addr string, status StatusFunc, portfolio PortfolioFunc) *Server {
	return &Server{addr: addr, status: status, portfolio: portfolio}
}

// Start begins serving in the background. Errors after startup are
// logged, not returned.
func (s *Server) Start(ctx context.Context) {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	s.started = time.Now()

	r.GET("/status", func(c *gin.Context) {
		body := gin.H{
			"status":         "running",
			"uptime_seconds": int(time.Since(s.started).Seconds()),
		}
		if s.status != nil {
			for k, v := range s.status() {
				body[k] = v
			}
		}
		c.JSON(http.StatusOK, body)
	})

	r.GET("/portfolio", func(c *gin.Context) {
		if s.portfolio == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "paper trading disabled"})
			return
		}
		c.JSON(http.StatusOK, s.portfolio())
	})

	s.srv = &http.Server{Addr: s.addr, Handler: r}
	go func() {
		logger.Info(ctx, "Status server listening", "addr", s.addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorWithErr(ctx, "Status server stopped", err)
		}
	}()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) {
	if s.srv == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithErr(ctx, "Status server shutdown failed", err)
	}
}
