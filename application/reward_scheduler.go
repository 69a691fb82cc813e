package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"rewarder/metrics"

	"github.com/go-co-op/gocron/v2"
	log "github.com/sirupsen/logrus"
)

// RewardJobName is also the distributed lock key
const RewardJobName = "process-scheduled-rewards"

// RewardRunner executes every due scheduled reward
type RewardRunner interface {
	RunDueRewards(ctx context.Context, now time.Time) (int, error)
}

// RewardScheduler periodically triggers the reward execution engine
type RewardScheduler struct {
	runner   RewardRunner
	interval time.Duration
	locker   gocron.Locker
	now      func() time.Time
}

// NewRewardScheduler creates a scheduler. locker may be nil for single-instance deployments.
func NewRewardScheduler(runner RewardRunner, interval time.Duration, locker gocron.Locker) *RewardScheduler {
	return &RewardScheduler{
		runner:   runner,
		interval: interval,
		locker:   locker,
		now:      time.Now,
	}
}

// RunOnce performs a single execution pass
func (s *RewardScheduler) RunOnce(ctx context.Context) (int, error) {
	start := time.Now()
	processed, err := s.runner.RunDueRewards(ctx, s.now().UTC())
	metrics.RecordRewardPass(time.Since(start), err)

	if err != nil {
		log.WithError(err).Error("Reward execution pass failed")
		return processed, err
	}

	if processed > 0 {
		log.WithFields(log.Fields{
			"processed": processed,
			"duration":  time.Since(start).String(),
		}).Info("Processed scheduled rewards")
	} else {
		log.Debug("No scheduled rewards due")
	}
	return processed, nil
}

// Start runs a pass immediately and then every interval until ctx is cancelled
// or the returned stop function is called.
func (s *RewardScheduler) Start(ctx context.Context) (func(), error) {
	opts := []gocron.SchedulerOption{gocron.WithLocation(time.UTC)}
	if s.locker != nil {
		opts = append(opts, gocron.WithDistributedLocker(s.locker))
	}

	sched, err := gocron.NewScheduler(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() {
			_, _ = s.RunOnce(ctx)
		}),
		gocron.WithName(RewardJobName),
		// A tick that finds the previous pass still running is skipped
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("failed to register reward job: %w", err)
	}

	sched.Start()
	log.WithFields(log.Fields{
		"interval":    s.interval.String(),
		"distributed": s.locker != nil,
	}).Info("Reward scheduler started")

	stopped := make(chan struct{})
	var once sync.Once
	stop := func() {
		once.Do(func() {
			close(stopped)
			if err := sched.Shutdown(); err != nil {
				log.WithError(err).Warn("Reward scheduler shutdown error")
			}
			log.Info("Reward scheduler stopped")
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			stop()
		case <-stopped:
		}
	}()

	return stop, nil
}
