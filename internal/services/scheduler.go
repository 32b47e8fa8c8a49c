package services

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Scheduler runs background maintenance jobs.
type Scheduler struct {
	sched   gocron.Scheduler
	rankJob gocron.Job
}

// NewScheduler registers the rank snapshot job. Call Start to begin running it.
func NewScheduler(leaderboard *LeaderboardService, interval time.Duration) (*Scheduler, error) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	job, err := sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			changed, err := leaderboard.RefreshRanks(ctx)
			if err != nil {
				log.Printf("[scheduler] rank refresh failed: %v", err)
				return
			}
			if changed > 0 {
				log.Printf("[scheduler] rank refresh updated %d profiles", changed)
			}
		}),
		gocron.WithName("refresh-ranks"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, err
	}

	return &Scheduler{sched: sched, rankJob: job}, nil
}

func (s *Scheduler) Start() {
	s.sched.Start()
}

// TriggerRankRefresh runs the rank job now, outside its interval.
func (s *Scheduler) TriggerRankRefresh() {
	if err := s.rankJob.RunNow(); err != nil {
		log.Printf("[scheduler] failed to trigger rank refresh: %v", err)
	}
}

func (s *Scheduler) Shutdown() error {
	return s.sched.Shutdown()
}
