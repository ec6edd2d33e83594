package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"JobScanner/internal/config"
	"JobScanner/internal/ports"
)

const (
	TriggerSchedule = "schedule"
	TriggerStartup  = "startup"
	TriggerManual   = "manual"
)

// ScheduleSettings tells the scheduler which cron lines drive cycles and sweeps.
type ScheduleSettings struct {
	CycleCron  string
	SweepCron  string
	RunOnStart bool
	Location   *time.Location
}

// Scheduler wires the cron driver with the cycle and sweep use cases.
type Scheduler struct {
	driver       ports.Scheduler
	orchestrator *Orchestrator
	sweeper      *Sweeper
	settings     ScheduleSettings
	logger       *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring jobs.
func NewScheduler(driver ports.Scheduler, orchestrator *Orchestrator, sweeper *Sweeper, settings ScheduleSettings, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	return &Scheduler{
		driver:       driver,
		orchestrator: orchestrator,
		sweeper:      sweeper,
		settings:     settings,
		logger:       logger,
	}
}

// Start registers cycle and sweep jobs with the driver and starts it.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.orchestrator == nil {
		return nil
	}

	cycle := func(time.Time) {
		s.orchestrator.RunCycle(ctx, TriggerSchedule)
		s.logNext("cycle", s.settings.CycleCron)
	}
	if err := s.driver.Schedule(s.settings.CycleCron, cycle); err != nil {
		return fmt.Errorf("schedule cycle %q: %w", s.settings.CycleCron, err)
	}

	if s.sweeper != nil && s.settings.SweepCron != "" {
		sweep := func(time.Time) {
			// Failures are logged by the sweeper; the next run retries.
			_, _ = s.sweeper.Sweep(ctx)
			s.logNext("sweep", s.settings.SweepCron)
		}
		if err := s.driver.Schedule(s.settings.SweepCron, sweep); err != nil {
			return fmt.Errorf("schedule sweep %q: %w", s.settings.SweepCron, err)
		}
	}

	if err := s.driver.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	s.logNext("cycle", s.settings.CycleCron)
	s.logNext("sweep", s.settings.SweepCron)

	if s.settings.RunOnStart {
		s.orchestrator.Start(ctx, TriggerStartup)
	}
	return nil
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}

func (s *Scheduler) logNext(job, expr string) {
	if expr == "" {
		return
	}
	next := config.NextRun(expr, time.Now().In(s.settings.Location))
	if next.IsZero() {
		return
	}
	s.logger.Info("next run scheduled", "job", job, "at", next.Format(time.RFC3339), "in", time.Until(next).Round(time.Second).String())
}
