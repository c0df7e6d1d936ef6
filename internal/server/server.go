package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"werewolf-toolbox/internal/config"
)

// NewRouter wires the HTTP API and websocket endpoint.
func NewRouter(m *Manager, cfg config.Server) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(m.log), cors(cfg.AllowedOrigin))

	api := router.Group("/api")
	{
		api.POST("/matches", CreateMatch(m))
		api.GET("/matches/:id", GetMatch(m))
		api.POST("/matches/:id/actions", SubmitAction(m))
	}

	router.GET("/ws/:id", HandleWebSocket(m))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

// Serve runs the API on addr until ctx is cancelled, then stops every match.
func Serve(ctx context.Context, addr string, m *Manager, cfg config.Server) error {
	srv := &http.Server{Addr: addr, Handler: NewRouter(m, cfg)}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	m.log.WithField("addr", addr).Info("Werewolf server listening")

	select {
	case err := <-errCh:
		m.Shutdown()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	m.Shutdown()
	return err
}

func cors(allowedOrigin string) gin.HandlerFunc {
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func requestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
		}).Debug("Request served")
	}
}
