package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPruner struct {
	cutoff time.Time
	err    error
}

func (p *recordingPruner) Prune(_ context.Context, cutoff time.Time) (int64, error) {
	p.cutoff = cutoff
	return 3, p.err
}

type recordingSweeper struct{ at time.Time }

func (s *recordingSweeper) Sweep(now time.Time) int {
	s.at = now
	return 1
}

func TestPruneRefreshTokensJob(t *testing.T) {
	now := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	p := &recordingPruner{}

	PruneRefreshTokensJob(p, 30*24*time.Hour, func() time.Time { return now })()
	assert.Equal(t, now.AddDate(0, 0, -30), p.cutoff)

	p.err = errors.New("locked")
	assert.NotPanics(t, PruneRefreshTokensJob(p, time.Hour, func() time.Time { return now }))
}

func TestSweepRateLimitJob(t *testing.T) {
	now := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	s := &recordingSweeper{}

	SweepRateLimitJob(s, func() time.Time { return now })()
	assert.Equal(t, now, s.at)
}

func TestScheduler_Add(t *testing.T) {
	s := NewScheduler()

	require.NoError(t, s.Add("disabled", "", func() {}))
	assert.Equal(t, 0, s.Jobs())

	require.NoError(t, s.Add("sweep", "@every 3m", func() {}))
	require.NoError(t, s.Add("prune", "@daily", func() {}))
	assert.Equal(t, 2, s.Jobs())

	assert.Error(t, s.Add("broken", "not a schedule", func() {}))
	assert.Equal(t, 2, s.Jobs())

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
