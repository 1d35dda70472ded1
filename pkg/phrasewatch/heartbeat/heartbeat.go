// Package heartbeat logs a periodic service status line on a cron schedule.
package heartbeat

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"phrasewatch/pkg/phrasewatch/phrases"
)

// Heartbeat emits uptime and registry size at each tick.
type Heartbeat struct {
	cron      *cron.Cron
	registry  *phrases.Registry
	logger    *slog.Logger
	startedAt time.Time
}

// New creates a heartbeat over the shared registry.
func New(registry *phrases.Registry, logger *slog.Logger) *Heartbeat {
	if logger == nil {
		logger = slog.Default()
	}
	return &Heartbeat{
		cron:     cron.New(),
		registry: registry,
		logger:   logger.With("component", "heartbeat"),
	}
}

// Start schedules the heartbeat. schedule accepts standard cron expressions
// and descriptors like "@every 1m".
func (h *Heartbeat) Start(schedule string) error {
	h.startedAt = time.Now()
	_, err := h.cron.AddFunc(schedule, func() {
		h.logger.Info("heartbeat",
			"uptime", time.Since(h.startedAt).Round(time.Second).String(),
			"phrases", h.registry.Len(),
		)
	})
	if err != nil {
		return fmt.Errorf("heartbeat: invalid schedule %q: %w", schedule, err)
	}
	h.cron.Start()
	return nil
}

// Stop cancels the schedule and waits for a running tick to finish.
func (h *Heartbeat) Stop() {
	ctx := h.cron.Stop()
	<-ctx.Done()
}
