package housekeeping

import (
	"context"
	"fmt"
	"time"

	"pet-clinic-scheduling/internal/platform/logger"

	"github.com/robfig/cron/v3"
)

// DismissalPruner es lo que necesita el job; lo implementa reminders.Service.
type DismissalPruner interface {
	PruneDismissals(ctx context.Context) (int, error)
}

// Scheduler corre tareas de mantenimiento sobre el store. No participa del
// camino de un request: si se desactiva, los descartes viejos solo ocupan espacio.
type Scheduler struct {
	cron    *cron.Cron
	pruner  DismissalPruner
	log     logger.Logger
	timeout time.Duration
}

func New(pruner DismissalPruner, log logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Nop()
	}
	return &Scheduler{
		cron:    cron.New(),
		pruner:  pruner,
		log:     log.With(map[string]any{"component": "housekeeping"}),
		timeout: time.Minute,
	}
}

// Start registra el job con la expresión (cron de 5 campos o descriptores tipo @hourly) y arranca.
func (s *Scheduler) Start(schedule string) error {
	if _, err := s.cron.AddFunc(schedule, s.RunOnce); err != nil {
		return fmt.Errorf("housekeeping schedule %q: %w", schedule, err)
	}
	s.cron.Start()
	s.log.Info("housekeeping started", map[string]any{"schedule": schedule})
	return nil
}

// RunOnce poda descartes obsoletos con su propio timeout.
func (s *Scheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	removed, err := s.pruner.PruneDismissals(ctx)
	if err != nil {
		s.log.Error("prune dismissals failed", map[string]any{"error": err, "removed": removed})
		return
	}
	s.log.Info("prune dismissals done", map[string]any{
		"removed":     removed,
		"duration_ms": time.Since(start).Milliseconds(),
	})
}

// Stop espera a que termine un job en curso o a que venza ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}
