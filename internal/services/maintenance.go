package services

import (
	"context"
	"time"

	"github.com/araofarias801-dev/araoalvesdefarias036500/pkg/logger"
	"github.com/robfig/cron/v3"
)

// RefreshTokenPruner is the part of the ledger the pruning job needs.
type RefreshTokenPruner interface {
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

// Scheduler runs periodic housekeeping jobs on a cron clock.
type Scheduler struct {
	cron *cron.Cron
	jobs int
}

func NewScheduler() *Scheduler {
	l := cronLogger{}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(l),
			cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
		),
	}
}

// cronLogger routes cron's own logging into zerolog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}

// Add registers job under spec. An empty spec leaves the job unscheduled.
func (s *Scheduler) Add(name, spec string, job func()) error {
	if spec == "" {
		logger.Info().Str("job", name).Msg("scheduler: job disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(spec, job); err != nil {
		return err
	}
	s.jobs++
	logger.Info().Str("job", name).Str("schedule", spec).Msg("scheduler: job added")
	return nil
}

// Jobs returns the number of scheduled jobs.
func (s *Scheduler) Jobs() int {
	return s.jobs
}

func (s *Scheduler) Start() {
	if s.jobs == 0 {
		return
	}
	s.cron.Start()
	logger.Info().Int("jobs", s.jobs).Msg("scheduler started")
}

// Stop halts the clock and waits for running jobs, up to ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop().Done()
	select {
	case <-done:
	case <-ctx.Done():
		logger.Warn().Msg("scheduler: jobs still running at shutdown")
	}
}

// PruneRefreshTokensJob deletes refresh tokens revoked or expired more than
// retention ago.
func PruneRefreshTokensJob(ledger RefreshTokenPruner, retention time.Duration, now func() time.Time) func() {
	return func() {
		cutoff := now().Add(-retention)
		n, err := ledger.Prune(context.Background(), cutoff)
		if err != nil {
			logger.Error().Err(err).Msg("prune refresh tokens")
			return
		}
		logger.Info().Int64("deleted", n).Time("cutoff", cutoff).Msg("pruned refresh tokens")
	}
}

// Sweeper drops idle rate limit keys.
type Sweeper interface {
	Sweep(now time.Time) int
}

func SweepRateLimitJob(limiter Sweeper, now func() time.Time) func() {
	return func() {
		if n := limiter.Sweep(now()); n > 0 {
			logger.Debug().Int("removed", n).Msg("swept idle rate limit keys")
		}
	}
}
