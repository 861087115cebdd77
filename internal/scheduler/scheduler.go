// Package scheduler runs the daily match snapshot.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/pfrederiksen/filgoal/internal/logger"
	"github.com/pfrederiksen/filgoal/internal/match"
)

// Job is the unit of work run once a day.
type Job func(ctx context.Context) error

// MatchFetcher fetches the matches listed for a day.
type MatchFetcher interface {
	FetchMatches(ctx context.Context, date string) ([]match.Match, error)
}

// DailyStore loads and persists one day's matches.
type DailyStore interface {
	LoadDaily(date string) ([]match.Match, bool, error)
	SaveDaily(date string, matches []match.Match) error
}

// SnapshotResult summarises one snapshot run.
type SnapshotResult struct {
	Date    string
	Saved   int
	Changes []match.Change // against the snapshot being replaced
}

// SaveDailyMatches fetches the matches for date and writes them as that
// day's snapshot, reporting how they differ from the snapshot they replace.
// An unreadable previous snapshot is logged and treated as absent.
func SaveDailyMatches(ctx context.Context, fetcher MatchFetcher, store DailyStore, date string) (*SnapshotResult, error) {
	matches, err := fetcher.FetchMatches(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("fetching matches for %s: %w", date, err)
	}

	previous, _, err := store.LoadDaily(date)
	if err != nil {
		logger.Warn("previous snapshot unreadable", logger.Fields{"date": date, "error": err.Error()})
		previous = nil
	}

	if err := store.SaveDaily(date, matches); err != nil {
		return nil, fmt.Errorf("saving snapshot for %s: %w", date, err)
	}

	return &SnapshotResult{
		Date:    date,
		Saved:   len(matches),
		Changes: match.Diff(previous, matches),
	}, nil
}

// DailySnapshotJob snapshots the matches of the day current at run time.
func DailySnapshotJob(fetcher MatchFetcher, store DailyStore, now func() time.Time) Job {
	return func(ctx context.Context) error {
		date := match.Today(now())
		res, err := SaveDailyMatches(ctx, fetcher, store, date)
		if err != nil {
			return err
		}
		logger.AddCounter("scheduler.changes", int64(len(res.Changes)))
		logger.Info("daily snapshot saved", logger.Fields{
			"date":    date,
			"matches": res.Saved,
			"changes": len(res.Changes),
		})
		for _, c := range res.Changes {
			logger.Debug("match changed", logger.Fields{
				"match_id": c.MatchID,
				"kind":     string(c.Kind),
				"old":      c.OldValue,
				"new":      c.NewValue,
			})
		}
		return nil
	}
}

// Scheduler runs the daily snapshot plus any interval jobs added with Every.
type Scheduler struct {
	scheduler gocron.Scheduler
	job       gocron.Job
	task      Job
	hour      uint
	minute    uint
	interval  []intervalJob
}

type intervalJob struct {
	name  string
	every time.Duration
	task  Job
}

// New creates a scheduler that runs task every day at hour:minute.
func New(hour, minute uint, task Job, opts ...gocron.SchedulerOption) (*Scheduler, error) {
	if hour > 23 || minute > 59 {
		return nil, fmt.Errorf("invalid run time %02d:%02d", hour, minute)
	}

	s, err := gocron.NewScheduler(opts...)
	if err != nil {
		return nil, err
	}

	return &Scheduler{
		scheduler: s,
		task:      task,
		hour:      hour,
		minute:    minute,
	}, nil
}

// Every adds task to run at a fixed interval once the scheduler starts.
// It must be called before Start.
func (s *Scheduler) Every(name string, every time.Duration, task Job) error {
	if every <= 0 {
		return fmt.Errorf("job %s: interval must be positive, got %s", name, every)
	}
	if s.job != nil {
		return fmt.Errorf("job %s: scheduler already started", name)
	}
	s.interval = append(s.interval, intervalJob{name: name, every: every, task: task})
	return nil
}

// Start registers the daily job, starts the scheduler and runs the task once
// immediately in the background.
func (s *Scheduler) Start(ctx context.Context) error {
	job, err := s.scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(s.hour, s.minute, 0))),
		gocron.NewTask(func() {
			s.run(ctx, "daily-snapshot", s.task)
		}),
		gocron.WithName("daily-snapshot"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}
	s.job = job

	for _, ij := range s.interval {
		_, err := s.scheduler.NewJob(
			gocron.DurationJob(ij.every),
			gocron.NewTask(func() {
				s.run(ctx, ij.name, ij.task)
			}),
			gocron.WithName(ij.name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return fmt.Errorf("registering %s: %w", ij.name, err)
		}
	}

	s.scheduler.Start()
	logger.Info("scheduler started", logger.Fields{
		"at":            fmt.Sprintf("%02d:%02d", s.hour, s.minute),
		"interval_jobs": len(s.interval),
	})

	go s.run(ctx, "daily-snapshot", s.task)

	return nil
}

// NextRun returns when the daily job fires next.
func (s *Scheduler) NextRun() (time.Time, error) {
	if s.job == nil {
		return time.Time{}, fmt.Errorf("scheduler not started")
	}
	return s.job.NextRun()
}

// Stop shuts the scheduler down, waiting for running jobs.
func (s *Scheduler) Stop() {
	if err := s.scheduler.Shutdown(); err != nil {
		logger.Error("scheduler shutdown error", nil, err)
	}
}

func (s *Scheduler) run(ctx context.Context, name string, task Job) {
	if ctx.Err() != nil {
		return
	}

	start := time.Now()
	err := task(ctx)
	logger.RecordTiming("scheduler."+name, time.Since(start))
	if err != nil {
		logger.IncrCounter("scheduler.failures")
		logger.Error("scheduled job failed", logger.Fields{"job": name}, err)
		return
	}
	logger.IncrCounter("scheduler.runs")
}
