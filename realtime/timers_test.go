package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Dosada05/esports-arena/changefeed"
	"github.com/Dosada05/esports-arena/models"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lookupFunc func(ctx context.Context, id string) (*models.Tournament, error)

func (f lookupFunc) GetTournament(ctx context.Context, id string) (*models.Tournament, error) {
	return f(ctx, id)
}

func noLookup(context.Context, string) (*models.Tournament, error) {
	return nil, errors.New("unexpected lookup")
}

func readTick(t *testing.T, conn *websocket.Conn) timerTick {
	t.Helper()
	for {
		msg, _ := readMessage(t, conn)
		if msg.Type != MsgTimerTick {
			continue
		}
		var tick timerTick
		require.NoError(t, json.Unmarshal(msg.Payload, &tick))
		return tick
	}
}

func timedTournament(id string, duration int, start time.Time, running bool) models.Tournament {
	return models.Tournament{
		ID:             id,
		Name:           "Arena Cup",
		TimerDuration:  &duration,
		TimerStartTime: &start,
		TimerIsRunning: running,
	}
}

func TestTimers_TicksToTournamentRoom(t *testing.T) {
	hub, bus, srv := startHub(t)
	clock := clockwork.NewFakeClock()
	timers := NewTimers(hub, lookupFunc(noLookup), clock, testLogger)
	detach := timers.Attach(context.Background(), bus)
	t.Cleanup(func() {
		detach()
		timers.Close()
	})

	conn := dial(t, hub, srv, TournamentRoom("t1"))

	publish(t, bus, changefeed.TableTournaments, changefeed.Update, timedTournament("t1", 3, clock.Now(), true))
	assert.Equal(t, timerTick{TournamentID: "t1", Remaining: 3, Running: true}, readTick(t, conn))

	for _, want := range []timerTick{{"t1", 2, true}, {"t1", 1, true}, {"t1", 0, false}} {
		clock.BlockUntil(1)
		clock.Advance(time.Second)
		assert.Equal(t, want, readTick(t, conn))
	}

	remaining, running, ok := timers.Remaining("t1")
	require.True(t, ok)
	assert.Equal(t, 0, remaining)
	assert.False(t, running)
}

func TestTimers_StopEventFreezesCountdown(t *testing.T) {
	hub, bus, srv := startHub(t)
	clock := clockwork.NewFakeClock()
	timers := NewTimers(hub, lookupFunc(noLookup), clock, testLogger)
	detach := timers.Attach(context.Background(), bus)
	t.Cleanup(func() {
		detach()
		timers.Close()
	})
	conn := dial(t, hub, srv, TournamentRoom("t2"))

	publish(t, bus, changefeed.TableTournaments, changefeed.Update, timedTournament("t2", 60, clock.Now(), true))
	assert.Equal(t, 60, readTick(t, conn).Remaining)

	// Остановленный таймер хранит остаток в timer_duration.
	publish(t, bus, changefeed.TableTournaments, changefeed.Update, timedTournament("t2", 45, clock.Now(), false))
	assert.Equal(t, timerTick{TournamentID: "t2", Remaining: 45, Running: false}, readTick(t, conn))

	clock.Advance(5 * time.Second)
	remaining, running, ok := timers.Remaining("t2")
	require.True(t, ok)
	assert.Equal(t, 45, remaining)
	assert.False(t, running)
}

func TestTimers_SeedDeleteAndUnconfigured(t *testing.T) {
	hub := NewHub(testLogger)
	bus := changefeed.NewBus(testLogger)
	clock := clockwork.NewFakeClock()
	timers := NewTimers(hub, lookupFunc(noLookup), clock, testLogger)
	detach := timers.Attach(context.Background(), bus)
	t.Cleanup(func() {
		detach()
		timers.Close()
	})

	timers.Seed([]models.Tournament{
		timedTournament("a", 30, clock.Now().Add(-10*time.Second), true),
		{ID: "b", Name: "No timer"},
	})

	remaining, running, ok := timers.Remaining("a")
	require.True(t, ok)
	assert.Equal(t, 20, remaining)
	assert.True(t, running)
	_, _, ok = timers.Remaining("b")
	assert.False(t, ok)

	publish(t, bus, changefeed.TableTournaments, changefeed.Delete, models.Tournament{ID: "a"})
	_, _, ok = timers.Remaining("a")
	assert.False(t, ok)
}

func TestTimers_TruncatedEventFetchesRow(t *testing.T) {
	hub := NewHub(testLogger)
	bus := changefeed.NewBus(testLogger)
	clock := clockwork.NewFakeClock()
	row := timedTournament("t3", 90, clock.Now(), false)
	timers := NewTimers(hub, lookupFunc(func(_ context.Context, id string) (*models.Tournament, error) {
		require.Equal(t, "t3", id)
		return &row, nil
	}), clock, testLogger)
	detach := timers.Attach(context.Background(), bus)
	t.Cleanup(func() {
		detach()
		timers.Close()
	})

	e, err := changefeed.NewEvent(changefeed.TableTournaments, changefeed.Update, map[string]string{"id": "t3"}, nil)
	require.NoError(t, err)
	e.Truncated = true
	bus.Publish(e)

	remaining, running, ok := timers.Remaining("t3")
	require.True(t, ok)
	assert.Equal(t, 90, remaining)
	assert.False(t, running)
}
