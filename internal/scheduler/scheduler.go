// Package scheduler runs the nightly emotion history rebuild.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

// JobName identifies the rollup job in the scheduler.
const JobName = "emotion-history-rollup"

// Rebuilder is the subset of the store the rollup needs.
type Rebuilder interface {
	Users(ctx context.Context) ([]string, error)
	RebuildHistory(ctx context.Context, userID string) (int, error)
}

// Config holds scheduler configuration.
type Config struct {
	// Hour is the local hour (0-23) the rollup runs at.
	Hour     int
	Location *time.Location
	// Timeout bounds a single rollup run.
	Timeout time.Duration
}

// Scheduler manages the rollup job.
type Scheduler struct {
	scheduler gocron.Scheduler
	store     Rebuilder
	cfg       Config
	log       zerolog.Logger
}

// Summary reports the outcome of one rollup run.
type Summary struct {
	Users  int `json:"users"`
	Rows   int `json:"rows"`
	Failed int `json:"failed"`
}

// New creates a scheduler. The job is registered by Start.
func New(store Rebuilder, cfg Config, log zerolog.Logger) (*Scheduler, error) {
	if cfg.Hour < 0 || cfg.Hour > 23 {
		return nil, fmt.Errorf("rollup hour %d out of range 0-23", cfg.Hour)
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Minute
	}

	s, err := gocron.NewScheduler(gocron.WithLocation(cfg.Location))
	if err != nil {
		return nil, fmt.Errorf("creating scheduler: %w", err)
	}

	return &Scheduler{scheduler: s, store: store, cfg: cfg, log: log}, nil
}

// Start registers the daily rollup and starts the scheduler.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(uint(s.cfg.Hour), 0, 0))),
		gocron.NewTask(s.runJob),
		gocron.WithName(JobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("registering rollup job: %w", err)
	}

	s.scheduler.Start()
	s.log.Info().Int("hour", s.cfg.Hour).Str("location", s.cfg.Location.String()).Msg("scheduler started")
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}

// NextRun returns when the rollup is next scheduled, or the zero time
// before Start.
func (s *Scheduler) NextRun() time.Time {
	for _, j := range s.scheduler.Jobs() {
		if j.Name() != JobName {
			continue
		}
		next, err := j.NextRun()
		if err == nil {
			return next
		}
	}
	return time.Time{}
}

func (s *Scheduler) runJob() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
	defer cancel()
	_, _ = s.RunNow(ctx)
}

// RunNow rebuilds the rollup for every user with entries. A failure for
// one user is logged and does not stop the others.
func (s *Scheduler) RunNow(ctx context.Context) (Summary, error) {
	return Rebuild(ctx, s.store, s.log)
}

// Rebuild recomputes the emotion history for every user.
func Rebuild(ctx context.Context, store Rebuilder, log zerolog.Logger) (Summary, error) {
	start := time.Now()
	users, err := store.Users(ctx)
	if err != nil {
		log.Error().Err(err).Msg("rollup: listing users failed")
		return Summary{}, fmt.Errorf("listing users: %w", err)
	}

	var sum Summary
	for _, u := range users {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		n, err := store.RebuildHistory(ctx, u)
		if err != nil {
			sum.Failed++
			log.Warn().Err(err).Str("user_id", u).Msg("rollup: rebuild failed")
			continue
		}
		sum.Users++
		sum.Rows += n
	}

	log.Info().
		Int("users", sum.Users).
		Int("rows", sum.Rows).
		Int("failed", sum.Failed).
		Dur("duration", time.Since(start)).
		Msg("rollup complete")
	return sum, nil
}
