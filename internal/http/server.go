package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ochronus/gotransloadit/internal/app"
	"github.com/ochronus/gotransloadit/internal/config"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 5 * time.Second

// Server receives assembly notifications over HTTP
type Server struct {
	config  *config.Config
	handler *Handler
	logger  *logrus.Logger
	router  *gin.Engine
}

// NewServer creates a notification server with its routes registered
func NewServer(container *app.Container) *Server {
	if container.Config.Loglevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	handler := NewHandler(container, NewNotificationStore(defaultStoreCapacity))

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(container.Logger))
	router.POST("/notify", handler.Notify)
	router.GET("/assemblies/:id", handler.GetAssembly)
	router.GET("/healthz", handler.Health)

	return &Server{
		config:  container.Config,
		handler: handler,
		logger:  container.Logger,
		router:  router,
	}
}

// requestLogger logs every handled request at debug level.
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
		}).Debug("request handled")
	}
}

// StartWithContext listens on the configured address and serves until ctx is canceled.
func (s *Server) StartWithContext(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.BindAddress, s.config.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is canceled, then drains
// in-flight requests before returning.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Infof("Listening for assembly notifications at http://%s/notify", ln.Addr())

	srv := &http.Server{Handler: s.router}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// GetRouter returns the underlying gin router
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}
