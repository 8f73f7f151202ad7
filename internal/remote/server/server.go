// Package server exposes a remote.Sessions implementation over the weekly
// JSON API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sadopc/weekly/internal/logx"
	"github.com/sadopc/weekly/internal/remote"
)

const ownerKey = "owner"

// Server is the weekly remote API server.
type Server struct {
	sessions remote.Sessions
	tokens   map[string]string
	log      logx.Logger
	router   *gin.Engine
}

// New builds the router. tokens maps bearer tokens to owner ids.
func New(sessions remote.Sessions, tokens map[string]string, log logx.Logger) *Server {
	router := gin.New()

	s := &Server{
		sessions: sessions,
		tokens:   tokens,
		log:      log.With(logx.String("component", "server")),
		router:   router,
	}

	router.Use(gin.Recovery(), s.requestLog)

	router.GET("/api/public/:token", s.handleGetPublic)

	api := router.Group("/api/schedules", s.authenticate)
	{
		api.GET("", s.handleList)
		api.POST("", s.handleCreate)
		api.GET("/:id", s.handleGet)
		api.PATCH("/:id", s.handleUpdate)
		api.DELETE("/:id", s.handleDelete)
		api.POST("/:id/share", s.handleShare)
	}

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", logx.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLog(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.log.Debug("request",
		logx.String("method", c.Request.Method),
		logx.String("path", c.FullPath()),
		logx.Int("status", c.Writer.Status()),
		logx.Duration("took", time.Since(start)),
	)
}
