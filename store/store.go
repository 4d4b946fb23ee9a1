// Package store держит кэш турниров, игроков, матчей и трансляций,
// который сверяется с лентой изменений без повторных запросов списков.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Dosada05/esports-arena/changefeed"
	"github.com/Dosada05/esports-arena/models"
	"github.com/Dosada05/esports-arena/repositories"
	"github.com/Dosada05/esports-arena/services"
	"golang.org/x/sync/errgroup"
)

type Listener func()

type Store struct {
	tournamentSvc services.TournamentService
	playerSvc     services.PlayerService
	matchSvc      services.MatchService
	liveMatchSvc  services.LiveMatchService
	logger        *slog.Logger

	mu          sync.RWMutex
	tournaments table[models.Tournament]
	players     table[models.Player]
	matches     table[models.Match]
	liveMatches table[models.LiveMatch]
	loaded      bool

	listenersMu sync.RWMutex
	listeners   map[uint64]Listener
	nextID      uint64
}

func New(
	tournaments services.TournamentService,
	players services.PlayerService,
	matches services.MatchService,
	liveMatches services.LiveMatchService,
	logger *slog.Logger,
) *Store {
	return &Store{
		tournamentSvc: tournaments,
		playerSvc:     players,
		matchSvc:      matches,
		liveMatchSvc:  liveMatches,
		logger:        logger,
		tournaments: table[models.Tournament]{
			id:   func(t models.Tournament) string { return t.ID },
			less: func(a, b models.Tournament) bool { return a.StartDate.Before(b.StartDate) },
		},
		players: table[models.Player]{
			id:   func(p models.Player) string { return p.ID },
			less: func(a, b models.Player) bool { return a.Points > b.Points },
		},
		matches: table[models.Match]{
			id: func(m models.Match) string { return m.ID },
			less: func(a, b models.Match) bool {
				if a.ScheduledAt == nil || b.ScheduledAt == nil {
					return a.ScheduledAt != nil && b.ScheduledAt == nil
				}
				return a.ScheduledAt.Before(*b.ScheduledAt)
			},
		},
		liveMatches: table[models.LiveMatch]{
			id: func(l models.LiveMatch) string { return l.ID },
		},
		listeners: make(map[uint64]Listener),
	}
}

// Load загружает все коллекции параллельно и заменяет кэш целиком.
func (s *Store) Load(ctx context.Context) error {
	var (
		tournaments []models.Tournament
		players     []models.Player
		matches     []models.Match
		liveMatches []models.LiveMatch
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tournaments, err = s.tournamentSvc.ListTournaments(gctx, repositories.ListTournamentsFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		players, err = s.playerSvc.ListPlayers(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		matches, err = s.matchSvc.ListMatches(gctx, nil)
		return err
	})
	g.Go(func() error {
		var err error
		liveMatches, err = s.liveMatchSvc.ListLiveMatches(gctx, false)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to load store: %w", err)
	}

	s.mu.Lock()
	s.tournaments.reset(tournaments)
	s.players.reset(players)
	s.matches.reset(matches)
	s.liveMatches.reset(liveMatches)
	s.loaded = true
	s.mu.Unlock()

	s.logger.Info("store loaded",
		slog.Int("tournaments", len(tournaments)),
		slog.Int("players", len(players)),
		slog.Int("matches", len(matches)),
		slog.Int("live_matches", len(liveMatches)))
	s.notify()
	return nil
}

// Subscriber - источник событий; реализуется *changefeed.Bus.
type Subscriber interface {
	Subscribe(table string, h changefeed.Handler) (unsubscribe func())
}

// Attach подписывает кэш на ленту изменений. ctx используется для догрузки
// строк из усечённых событий и для полной перезагрузки при Resync.
func (s *Store) Attach(ctx context.Context, feed Subscriber) (detach func()) {
	return feed.Subscribe(changefeed.AllTables, func(e changefeed.Event) {
		if err := s.apply(ctx, e); err != nil {
			s.logger.Error("failed to apply change to store",
				slog.String("table", e.Table),
				slog.String("type", string(e.Type)),
				slog.Any("error", err))
		}
	})
}

func (s *Store) apply(ctx context.Context, e changefeed.Event) error {
	if e.Type == changefeed.Resync {
		return s.Load(ctx)
	}

	var changed bool
	var err error
	switch e.Table {
	case changefeed.TableTournaments:
		changed, err = reduce(s, &s.tournaments, e, func(id string) (*models.Tournament, error) {
			return s.tournamentSvc.GetTournament(ctx, id)
		})
	case changefeed.TablePlayers:
		changed, err = reduce(s, &s.players, e, func(id string) (*models.Player, error) {
			return s.playerSvc.GetPlayer(ctx, id)
		})
	case changefeed.TableMatches:
		changed, err = reduce(s, &s.matches, e, func(id string) (*models.Match, error) {
			return s.matchSvc.GetMatch(ctx, id)
		})
	case changefeed.TableLiveMatches:
		changed, err = reduce(s, &s.liveMatches, e, func(id string) (*models.LiveMatch, error) {
			list, err := s.liveMatchSvc.ListLiveMatches(ctx, false)
			if err != nil {
				return nil, err
			}
			for i := range list {
				if list[i].ID == id {
					return &list[i], nil
				}
			}
			return nil, services.ErrLiveMatchNotFound
		})
	default:
		return nil
	}
	if err != nil {
		return err
	}
	if changed {
		s.notify()
	}
	return nil
}

// reduce применяет INSERT/UPDATE/DELETE к таблице. Для усечённых событий
// строка догружается через fetch; если её уже нет, она удаляется из кэша.
func reduce[T any](s *Store, t *table[T], e changefeed.Event, fetch func(id string) (*T, error)) (bool, error) {
	if e.Truncated && e.Type != changefeed.Delete {
		id := e.RecordID()
		if id == "" {
			return false, changefeed.ErrNoRecord
		}
		row, err := fetch(id)
		if err != nil {
			if isNotFound(err) {
				s.mu.Lock()
				defer s.mu.Unlock()
				return t.remove(id), nil
			}
			return false, err
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		t.upsert(*row)
		return true, nil
	}

	var row T
	if err := e.Decode(&row); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch e.Type {
	case changefeed.Insert, changefeed.Update:
		t.upsert(row)
		return true, nil
	case changefeed.Delete:
		return t.remove(t.id(row)), nil
	}
	return false, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, services.ErrTournamentNotFound) ||
		errors.Is(err, services.ErrPlayerNotFound) ||
		errors.Is(err, services.ErrMatchNotFound) ||
		errors.Is(err, services.ErrLiveMatchNotFound)
}

// Subscribe регистрирует слушателя, вызываемого после каждой сверки кэша.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.nextID++
	id := s.nextID
	s.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenersMu.Lock()
			delete(s.listeners, id)
			s.listenersMu.Unlock()
		})
	}
}

func (s *Store) notify() {
	s.listenersMu.RLock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.listenersMu.RUnlock()

	for _, l := range listeners {
		l()
	}
}

func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

func (s *Store) Tournaments() []models.Tournament {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tournaments.snapshot()
}

func (s *Store) Tournament(id string) (models.Tournament, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tournaments.get(id)
}

// Players возвращает лидерборд: по убыванию очков.
func (s *Store) Players() []models.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.players.snapshot()
}

func (s *Store) Matches() []models.Match {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.matches.snapshot()
}

// LiveMatches возвращает только активные трансляции.
func (s *Store) LiveMatches() []models.LiveMatch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.LiveMatch, 0, len(s.liveMatches.rows))
	for _, l := range s.liveMatches.rows {
		if l.IsActive {
			out = append(out, l)
		}
	}
	return out
}
