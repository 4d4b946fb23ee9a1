package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Dosada05/esports-arena/changefeed"
	"github.com/Dosada05/esports-arena/models"
	"github.com/Dosada05/esports-arena/timer"
	"github.com/jonboulle/clockwork"
)

const MsgTimerTick = "TIMER_TICK"

// TournamentLookup нужен для усечённых событий и Resync; реализуется services.TournamentService.
type TournamentLookup interface {
	GetTournament(ctx context.Context, id string) (*models.Tournament, error)
}

type timerTick struct {
	TournamentID string `json:"tournament_id"`
	Remaining    int    `json:"remaining"`
	Running      bool   `json:"running"`
}

// Timers держит обратный отсчёт каждого турнира с настроенным таймером
// и рассылает тики в комнату турнира.
type Timers struct {
	hub    *Hub
	lookup TournamentLookup
	clock  clockwork.Clock
	logger *slog.Logger

	mu         sync.Mutex
	countdowns map[string]*timer.Countdown
}

func NewTimers(hub *Hub, lookup TournamentLookup, clock clockwork.Clock, logger *slog.Logger) *Timers {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Timers{
		hub:        hub,
		lookup:     lookup,
		clock:      clock,
		logger:     logger,
		countdowns: make(map[string]*timer.Countdown),
	}
}

// Seed запускает отсчёты по уже загруженным турнирам.
func (t *Timers) Seed(tournaments []models.Tournament) {
	for i := range tournaments {
		t.sync(&tournaments[i])
	}
}

// Attach пересинхронизирует отсчёты по изменениям турниров.
func (t *Timers) Attach(ctx context.Context, feed Subscriber) (detach func()) {
	return feed.Subscribe(changefeed.AllTables, func(e changefeed.Event) {
		if e.Table != changefeed.TableTournaments && e.Type != changefeed.Resync {
			return
		}
		if err := t.apply(ctx, e); err != nil {
			t.logger.Warn("failed to sync tournament timer",
				slog.String("type", string(e.Type)),
				slog.Any("error", err))
		}
	})
}

func (t *Timers) apply(ctx context.Context, e changefeed.Event) error {
	if e.Type == changefeed.Resync {
		for _, id := range t.ids() {
			if err := t.refetch(ctx, id); err != nil {
				return err
			}
		}
		return nil
	}

	id := e.RecordID()
	if e.Type == changefeed.Delete {
		t.remove(id)
		return nil
	}
	if e.Truncated {
		return t.refetch(ctx, id)
	}

	var tr models.Tournament
	if err := e.Decode(&tr); err != nil {
		return fmt.Errorf("failed to decode tournament event: %w", err)
	}
	t.sync(&tr)
	return nil
}

func (t *Timers) refetch(ctx context.Context, id string) error {
	tr, err := t.lookup.GetTournament(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch tournament %s: %w", id, err)
	}
	t.sync(tr)
	return nil
}

// sync приводит отсчёт турнира к сохранённым полям таймера.
func (t *Timers) sync(tr *models.Tournament) {
	if tr.TimerDuration == nil || *tr.TimerDuration <= 0 {
		t.remove(tr.ID)
		return
	}
	remaining := timer.RemainingFor(tr, t.clock.Now())
	running := tr.TimerIsRunning && remaining > 0

	// onTick не берёт t.mu, поэтому Reset под блокировкой безопасен.
	t.mu.Lock()
	if c, ok := t.countdowns[tr.ID]; ok {
		c.Reset(remaining, running)
	} else {
		t.countdowns[tr.ID] = timer.NewCountdown(t.clock, remaining, running, t.onTick(tr.ID))
	}
	t.mu.Unlock()

	t.broadcast(tr.ID, remaining, running)
}

func (t *Timers) onTick(tournamentID string) timer.TickFunc {
	return func(remaining int, running bool) {
		t.broadcast(tournamentID, remaining, running)
	}
}

func (t *Timers) broadcast(tournamentID string, remaining int, running bool) {
	t.hub.BroadcastToRoom(TournamentRoom(tournamentID), Message{
		Type:    MsgTimerTick,
		Payload: timerTick{TournamentID: tournamentID, Remaining: remaining, Running: running},
	})
}

func (t *Timers) remove(id string) {
	t.mu.Lock()
	c, ok := t.countdowns[id]
	delete(t.countdowns, id)
	t.mu.Unlock()
	if ok {
		c.Stop()
	}
}

func (t *Timers) ids() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := make([]string, 0, len(t.countdowns))
	for id := range t.countdowns {
		ids = append(ids, id)
	}
	return ids
}

// Remaining возвращает текущее состояние отсчёта турнира.
func (t *Timers) Remaining(tournamentID string) (remaining int, running bool, ok bool) {
	t.mu.Lock()
	c, ok := t.countdowns[tournamentID]
	t.mu.Unlock()
	if !ok {
		return 0, false, false
	}
	return c.Remaining(), c.Running(), true
}

// Close останавливает все отсчёты.
func (t *Timers) Close() {
	t.mu.Lock()
	countdowns := t.countdowns
	t.countdowns = make(map[string]*timer.Countdown)
	t.mu.Unlock()
	for _, c := range countdowns {
		c.Stop()
	}
}
