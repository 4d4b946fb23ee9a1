package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/esports-arena/changefeed"
	"github.com/Dosada05/esports-arena/models"
	"github.com/Dosada05/esports-arena/money"
	"github.com/Dosada05/esports-arena/repositories"
	"github.com/Dosada05/esports-arena/timer"
)

type TournamentService interface {
	ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error)
	GetTournament(ctx context.Context, id string) (*models.Tournament, error)
	CreateTournament(ctx context.Context, input models.TournamentInput) (*models.Tournament, error)
	UpdateTournament(ctx context.Context, id string, input models.TournamentInput) (*models.Tournament, error)
	DeleteTournament(ctx context.Context, id string) error
	StartTimer(ctx context.Context, id string, duration *int) (*models.Tournament, error)
	StopTimer(ctx context.Context, id string) (*models.Tournament, error)
	TimerState(ctx context.Context, id string) (*TimerState, error)
	AutoUpdateTournamentStatusesByDates(ctx context.Context) error
	ExpireTimers(ctx context.Context) error
}

type TimerState struct {
	TournamentID string `json:"tournament_id"`
	Remaining    int    `json:"remaining"`
	Running      bool   `json:"running"`
}

type tournamentService struct {
	db     *sql.DB
	repo   repositories.TournamentRepository
	pub    changefeed.Publisher
	logger *slog.Logger
	now    func() time.Time
}

func NewTournamentService(
	db *sql.DB,
	repo repositories.TournamentRepository,
	pub changefeed.Publisher,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		db:     db,
		repo:   repo,
		pub:    pub,
		logger: logger,
		now:    time.Now,
	}
}

func validateTournamentInput(in models.TournamentInput, creating bool) error {
	v := &validator{}
	if creating {
		v.check(requiredString(in.Name), "name", "must be provided")
		v.check(requiredString(in.Game), "game", "must be provided")
		v.check(in.StartDate != nil && !in.StartDate.IsZero(), "start_date", "must be provided")
		v.check(in.MaxParticipants != nil, "max_participants", "must be provided")
	}
	if in.MaxParticipants != nil {
		v.check(*in.MaxParticipants > 0, "max_participants", "must be positive")
	}
	if in.CurrentParticipants != nil {
		v.check(*in.CurrentParticipants >= 0, "current_participants", "must not be negative")
	}
	if in.TeamSize != nil {
		v.check(*in.TeamSize > 0, "team_size", "must be positive")
	}
	if in.Status != nil {
		v.check(in.Status.Valid(), "status", "must be one of upcoming, ongoing, completed")
	}
	if in.StartDate != nil && in.EndDate != nil {
		v.check(in.EndDate.After(*in.StartDate), "end_date", "must be after start_date")
	}
	if in.RegistrationOpens != nil && in.RegistrationCloses != nil {
		v.check(in.RegistrationCloses.After(*in.RegistrationOpens), "registration_closes", "must be after registration_opens")
	}
	if in.EntryFee != nil && strings.TrimSpace(*in.EntryFee) != "" {
		_, err := money.ParseFee(*in.EntryFee)
		v.check(err == nil, "entry_fee", "must be 'Free' or an amount such as ₹50")
	}
	return v.err()
}

func (s *tournamentService) ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, &ValidationError{Fields: map[string]string{"status": "unknown tournament status"}}
	}
	tournaments, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return tournaments, nil
}

func (s *tournamentService) GetTournament(ctx context.Context, id string) (*models.Tournament, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %s: %w", id, err)
	}
	return t, nil
}

func (s *tournamentService) CreateTournament(ctx context.Context, input models.TournamentInput) (*models.Tournament, error) {
	if err := validateTournamentInput(input, true); err != nil {
		return nil, err
	}
	t, err := s.repo.Create(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	s.logger.Info("tournament created", slog.String("tournament_id", t.ID), slog.String("name", t.Name))
	publishChange(s.pub, s.logger, changefeed.TableTournaments, changefeed.Insert, t, nil)
	return t, nil
}

func (s *tournamentService) UpdateTournament(ctx context.Context, id string, input models.TournamentInput) (*models.Tournament, error) {
	if err := validateTournamentInput(input, false); err != nil {
		return nil, err
	}
	t, err := s.repo.Update(ctx, id, input)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrTournamentNotFound):
			return nil, ErrTournamentNotFound
		case errors.Is(err, repositories.ErrNothingToUpdate):
			return nil, ErrNothingToUpdate
		}
		return nil, fmt.Errorf("failed to update tournament %s: %w", id, err)
	}
	publishChange(s.pub, s.logger, changefeed.TableTournaments, changefeed.Update, t, nil)
	return t, nil
}

func (s *tournamentService) DeleteTournament(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrTournamentNotFound):
			return ErrTournamentNotFound
		case errors.Is(err, repositories.ErrTournamentInUse):
			return ErrTournamentInUse
		}
		return fmt.Errorf("failed to delete tournament %s: %w", id, err)
	}
	s.logger.Info("tournament deleted", slog.String("tournament_id", id))
	publishChange(s.pub, s.logger, changefeed.TableTournaments, changefeed.Delete, nil, map[string]string{"id": id})
	return nil
}

// StartTimer запускает (или возобновляет) таймер турнира.
// Если duration не передан, используется сохранённый timer_duration.
func (s *tournamentService) StartTimer(ctx context.Context, id string, duration *int) (*models.Tournament, error) {
	if duration != nil && *duration <= 0 {
		return nil, &ValidationError{Fields: map[string]string{"duration": "must be positive"}}
	}
	t, err := s.GetTournament(ctx, id)
	if err != nil {
		return nil, err
	}
	if duration == nil && (t.TimerDuration == nil || *t.TimerDuration <= 0) {
		return nil, ErrTimerNotConfigured
	}

	start := s.now().UTC()
	updated, err := s.repo.UpdateTimer(ctx, id, duration, &start, true)
	if err != nil {
		return nil, s.mapTimerError(id, err)
	}
	publishChange(s.pub, s.logger, changefeed.TableTournaments, changefeed.Update, updated, t)
	return updated, nil
}

// StopTimer ставит таймер на паузу, сохраняя оставшиеся секунды в timer_duration.
func (s *tournamentService) StopTimer(ctx context.Context, id string) (*models.Tournament, error) {
	t, err := s.GetTournament(ctx, id)
	if err != nil {
		return nil, err
	}
	remaining := timer.RemainingFor(t, s.now())
	updated, err := s.repo.UpdateTimer(ctx, id, &remaining, nil, false)
	if err != nil {
		return nil, s.mapTimerError(id, err)
	}
	publishChange(s.pub, s.logger, changefeed.TableTournaments, changefeed.Update, updated, t)
	return updated, nil
}

func (s *tournamentService) TimerState(ctx context.Context, id string) (*TimerState, error) {
	t, err := s.GetTournament(ctx, id)
	if err != nil {
		return nil, err
	}
	remaining := timer.RemainingFor(t, s.now())
	return &TimerState{
		TournamentID: t.ID,
		Remaining:    remaining,
		Running:      t.TimerIsRunning && remaining > 0,
	}, nil
}

func (s *tournamentService) mapTimerError(id string, err error) error {
	if errors.Is(err, repositories.ErrTournamentNotFound) {
		return ErrTournamentNotFound
	}
	return fmt.Errorf("failed to update timer of tournament %s: %w", id, err)
}

// nextStatusByDates возвращает статус, соответствующий датам, или false если менять нечего.
func nextStatusByDates(t *models.Tournament, now time.Time) (models.TournamentStatus, bool) {
	switch t.Status {
	case models.StatusUpcoming:
		if t.EndDate != nil && !now.Before(*t.EndDate) {
			return models.StatusCompleted, true
		}
		if !now.Before(t.StartDate) {
			return models.StatusOngoing, true
		}
	case models.StatusOngoing:
		if t.EndDate != nil && !now.Before(*t.EndDate) {
			return models.StatusCompleted, true
		}
	}
	return "", false
}

// AutoUpdateTournamentStatusesByDates переводит турниры upcoming -> ongoing -> completed по датам.
func (s *tournamentService) AutoUpdateTournamentStatusesByDates(ctx context.Context) error {
	now := s.now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin status update transaction: %w", err)
	}
	defer tx.Rollback()

	tournaments, err := s.repo.GetTournamentsForAutoStatusUpdate(ctx, tx, now)
	if err != nil {
		return fmt.Errorf("failed to load tournaments for status update: %w", err)
	}

	type change struct {
		old     models.Tournament
		updated models.Tournament
	}
	var changed []change
	for _, t := range tournaments {
		next, ok := nextStatusByDates(t, now)
		if !ok {
			continue
		}
		if err := s.repo.UpdateStatus(ctx, tx, t.ID, next); err != nil {
			return fmt.Errorf("failed to update status of tournament %s: %w", t.ID, err)
		}
		updated := *t
		updated.Status = next
		updated.UpdatedAt = now
		changed = append(changed, change{old: *t, updated: updated})
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit status update transaction: %w", err)
	}

	for _, c := range changed {
		s.logger.Info("tournament status updated by schedule",
			slog.String("tournament_id", c.updated.ID),
			slog.String("from", string(c.old.Status)),
			slog.String("to", string(c.updated.Status)))
		publishChange(s.pub, s.logger, changefeed.TableTournaments, changefeed.Update, c.updated, c.old)
	}
	return nil
}

// ExpireTimers останавливает истёкшие таймеры турниров.
func (s *tournamentService) ExpireTimers(ctx context.Context) error {
	expired, err := s.repo.ListExpiredTimers(ctx, s.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to list expired timers: %w", err)
	}
	zero := 0
	for _, t := range expired {
		updated, err := s.repo.UpdateTimer(ctx, t.ID, &zero, nil, false)
		if err != nil {
			s.logger.Error("failed to expire tournament timer", slog.String("tournament_id", t.ID), slog.Any("error", err))
			continue
		}
		publishChange(s.pub, s.logger, changefeed.TableTournaments, changefeed.Update, updated, t)
	}
	return nil
}
