package app

import (
	"fmt"
	"net/http"

	"github.com/ochronus/gotransloadit/internal/config"
	"github.com/ochronus/gotransloadit/internal/services/transloadit"
	"github.com/sirupsen/logrus"
)

// Container centralizes the core dependencies used across the application.
// It is intentionally small and uses interfaces so callers (and tests) can
// substitute implementations easily.
type Container struct {
	Config     *config.Config
	Logger     *logrus.Logger
	HTTPClient *http.Client
	Client     transloadit.ClientAPI
}

// Option allows customizing the container during construction.
type Option func(*Container) error

// WithLogger overrides the default logger.
func WithLogger(logger *logrus.Logger) Option {
	return func(c *Container) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		c.Logger = logger
		return nil
	}
}

// WithClient overrides the default assemblies client.
func WithClient(client transloadit.ClientAPI) Option {
	return func(c *Container) error {
		if client == nil {
			return fmt.Errorf("transloadit client cannot be nil")
		}
		c.Client = client
		return nil
	}
}

// WithHTTPClient overrides the HTTP client shared by the assemblies client
// and the importer's size probes.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Container) error {
		if httpClient == nil {
			return fmt.Errorf("http client cannot be nil")
		}
		c.HTTPClient = httpClient
		return nil
	}
}

// NewContainer builds a Container with sensible defaults derived from cfg.
// Options can be supplied to override specific dependencies (useful in tests).
func NewContainer(cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	container := &Container{
		Config:     cfg,
		Logger:     buildDefaultLogger(cfg.Loglevel),
		HTTPClient: &http.Client{},
	}

	// Apply options early so tests can inject mocks before defaults are created.
	for _, opt := range opts {
		if err := opt(container); err != nil {
			return nil, err
		}
	}

	if container.Client == nil {
		client, err := transloadit.NewClient(cfg.Service, transloadit.WithHTTPClient(container.HTTPClient))
		if err != nil {
			return nil, fmt.Errorf("failed to create transloadit client: %w", err)
		}
		container.Client = client
	}

	return container, nil
}

func buildDefaultLogger(levelStr string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}
