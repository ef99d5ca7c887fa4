package watch

import (
	"context"
	"fmt"
	"time"

	"github.com/ochronus/gotransloadit/internal/app"
	"github.com/ochronus/gotransloadit/internal/services/poll"
	"github.com/ochronus/gotransloadit/internal/services/transloadit"
	"github.com/sirupsen/logrus"
)

// FailedError is returned when an assembly finished with an error code.
type FailedError struct {
	Code     string
	Message  string
	Response transloadit.Response
}

func (e *FailedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("assembly failed: %s", e.Code)
	}
	return fmt.Sprintf("assembly failed: %s: %s", e.Code, e.Message)
}

// Watcher polls an assembly's status until it stops processing.
type Watcher struct {
	client transloadit.ClientAPI
	logger *logrus.Logger
	poll   poll.Config
}

// New creates a Watcher with an explicit polling configuration.
func New(client transloadit.ClientAPI, logger *logrus.Logger, cfg poll.Config) *Watcher {
	if cfg.ShouldRetry == nil {
		cfg.ShouldRetry = transloadit.IsServerError
	}
	return &Watcher{
		client: client,
		logger: logger,
		poll:   cfg,
	}
}

// NewWatcher creates a Watcher configured from the container's [watch] settings.
func NewWatcher(container *app.Container) *Watcher {
	cfg := container.Config.Watch
	return New(container.Client, container.Logger, poll.Config{
		MaxAttempts: cfg.MaxPolls,
		Interval:    time.Duration(cfg.PollingInterval) * time.Second,
	})
}

// Wait polls statusURL until the assembly reaches a terminal state and
// returns the last status. Server errors are polled through; other
// transport errors end the wait.
func (w *Watcher) Wait(ctx context.Context, statusURL string) (transloadit.Response, error) {
	var last transloadit.Response

	err := poll.Until(ctx, w.poll, func(attempt int) (bool, error) {
		resp, err := w.client.GetAssemblyStatus(ctx, statusURL)
		if err != nil {
			w.logger.Warnf("%s: status poll %d failed: %v", statusURL, attempt+1, err)
			return false, err
		}
		last = resp

		w.logger.WithFields(logrus.Fields{
			"assembly": resp.Get("assembly_id").String(),
			"status":   resp.Status(),
			"attempt":  attempt + 1,
		}).Debug("assembly status")

		return resp.IsTerminal(), nil
	})
	if err != nil {
		return last, fmt.Errorf("watch %s: %w", statusURL, err)
	}

	if code := last.ErrorCode(); code != "" {
		return last, &FailedError{Code: code, Message: last.Message(), Response: last}
	}

	w.logger.Infof("%s: assembly finished with %s", statusURL, last.Status())
	return last, nil
}
