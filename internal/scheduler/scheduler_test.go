package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonathan/job-board/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingWarmer struct {
	calls atomic.Int32
	err   error
}

func (w *countingWarmer) WarmListings(context.Context) error {
	w.calls.Add(1)
	return w.err
}

type countingSweeper struct {
	calls   atomic.Int32
	maxIdle atomic.Int64
}

func (s *countingSweeper) Sweep(maxIdle time.Duration) int {
	s.calls.Add(1)
	s.maxIdle.Store(int64(maxIdle))
	return 3
}

func nop() *zap.SugaredLogger { return zap.NewNop().Sugar() }

func TestStart_WarmsImmediately(t *testing.T) {
	warmer := &countingWarmer{}
	s := New(config.Scheduler{WarmListings: "@every 1h"}, warmer, nil, nop())

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop(context.Background())

	assert.Eventually(t, func() bool { return warmer.calls.Load() == 1 }, time.Second, 10*time.Millisecond)
	assert.Len(t, s.cron.Entries(), 1)
}

func TestStart_RunsOnSchedule(t *testing.T) {
	warmer := &countingWarmer{}
	sweeper := &countingSweeper{}
	s := New(config.Scheduler{WarmListings: "@every 1s", SweepRateLimit: "@every 1s"}, warmer, sweeper, nop())

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop(context.Background())

	assert.Eventually(t, func() bool { return sweeper.calls.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
	assert.Eventually(t, func() bool { return warmer.calls.Load() >= 2 }, 3*time.Second, 50*time.Millisecond)
	assert.Equal(t, int64(bucketIdle), sweeper.maxIdle.Load())
}

func TestStart_EmptySpecDisablesJob(t *testing.T) {
	tests := []struct {
		name    string
		specs   config.Scheduler
		warmer  Warmer
		sweeper Sweeper
		entries int
	}{
		{name: "both disabled", specs: config.Scheduler{}, warmer: &countingWarmer{}, sweeper: &countingSweeper{}, entries: 0},
		{name: "sweep only", specs: config.Scheduler{SweepRateLimit: "@every 1h"}, warmer: &countingWarmer{}, sweeper: &countingSweeper{}, entries: 1},
		{name: "nil sweeper", specs: config.Scheduler{WarmListings: "@every 1h", SweepRateLimit: "@every 1h"}, warmer: &countingWarmer{}, entries: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.specs, tt.warmer, tt.sweeper, nop())
			require.NoError(t, s.Start(context.Background()))
			defer s.Stop(context.Background())

			assert.Len(t, s.cron.Entries(), tt.entries)
		})
	}
}

func TestStart_InvalidSpec(t *testing.T) {
	s := New(config.Scheduler{WarmListings: "every now and then"}, &countingWarmer{}, nil, nop())

	err := s.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "warm_listings")
}

func TestRunWarm_ErrorIsLogged(t *testing.T) {
	warmer := &countingWarmer{err: errors.New("redis down")}
	s := New(config.Scheduler{}, warmer, nil, nop())

	assert.NotPanics(t, func() { s.runWarm(context.Background()) })
	assert.Equal(t, int32(1), warmer.calls.Load())
}

func TestStop_HonoursContext(t *testing.T) {
	s := New(config.Scheduler{}, nil, nil, nop())
	require.NoError(t, s.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		s.Stop(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}
