package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

const DefaultSchedulerInterval = 30 * time.Second

// Scheduler периодически обновляет статусы турниров по датам и гасит истёкшие таймеры.
type Scheduler struct {
	sched       gocron.Scheduler
	tournaments TournamentService
	logger      *slog.Logger
	timeout     time.Duration
}

func NewScheduler(tournaments TournamentService, logger *slog.Logger, interval time.Duration, opts ...gocron.SchedulerOption) (*Scheduler, error) {
	if interval <= 0 {
		interval = DefaultSchedulerInterval
	}
	sched, err := gocron.NewScheduler(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	s := &Scheduler{
		sched:       sched,
		tournaments: tournaments,
		logger:      logger,
		timeout:     interval,
	}

	jobs := []struct {
		name string
		run  func(context.Context) error
	}{
		{"tournament-status-update", tournaments.AutoUpdateTournamentStatusesByDates},
		{"tournament-timer-expiry", tournaments.ExpireTimers},
	}
	for _, j := range jobs {
		_, err := sched.NewJob(
			gocron.DurationJob(interval),
			gocron.NewTask(s.runJob, j.name, j.run),
			gocron.WithName(j.name),
			gocron.WithStartAt(gocron.WithStartImmediately()),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			_ = sched.Shutdown()
			return nil, fmt.Errorf("failed to register job %s: %w", j.name, err)
		}
	}
	return s, nil
}

func (s *Scheduler) runJob(name string, run func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	start := time.Now()
	if err := run(ctx); err != nil {
		s.logger.Error("scheduled job failed", slog.String("job", name), slog.Any("error", err))
		return
	}
	s.logger.Debug("scheduled job finished", slog.String("job", name), slog.Duration("took", time.Since(start)))
}

func (s *Scheduler) Start() {
	s.sched.Start()
	s.logger.Info("scheduler started", slog.Int("jobs", len(s.sched.Jobs())))
}

func (s *Scheduler) Shutdown() error {
	return s.sched.Shutdown()
}
