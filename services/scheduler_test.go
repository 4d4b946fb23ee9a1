package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingTournaments struct {
	TournamentService
	statusRuns atomic.Int32
	expiryRuns atomic.Int32
}

func (c *countingTournaments) AutoUpdateTournamentStatusesByDates(context.Context) error {
	c.statusRuns.Add(1)
	return nil
}

func (c *countingTournaments) ExpireTimers(context.Context) error {
	c.expiryRuns.Add(1)
	return errors.New("database unavailable")
}

func TestSchedulerRunsJobsOnStart(t *testing.T) {
	svc := &countingTournaments{}
	clock := clockwork.NewFakeClock()

	s, err := NewScheduler(svc, discardLogger, time.Minute, gocron.WithClock(clock))
	require.NoError(t, err)
	s.Start()
	defer func() { assert.NoError(t, s.Shutdown()) }()

	assert.Eventually(t, func() bool {
		return svc.statusRuns.Load() >= 1 && svc.expiryRuns.Load() >= 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Len(t, s.sched.Jobs(), 2)
}

func TestSchedulerDefaultsInterval(t *testing.T) {
	s, err := NewScheduler(&countingTournaments{}, discardLogger, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultSchedulerInterval, s.timeout)
	_ = s.Shutdown()
}
