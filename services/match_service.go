package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/esports-arena/changefeed"
	"github.com/Dosada05/esports-arena/models"
	"github.com/Dosada05/esports-arena/repositories"
)

type MatchService interface {
	ListMatches(ctx context.Context, tournamentID *string) ([]models.Match, error)
	GetMatch(ctx context.Context, id string) (*models.Match, error)
	CreateMatch(ctx context.Context, input models.MatchInput) (*models.Match, error)
	UpdateMatch(ctx context.Context, id string, input models.MatchInput) (*models.Match, error)
	DeleteMatch(ctx context.Context, id string) error
}

type matchService struct {
	repo   repositories.MatchRepository
	pub    changefeed.Publisher
	logger *slog.Logger
}

func NewMatchService(repo repositories.MatchRepository, pub changefeed.Publisher, logger *slog.Logger) MatchService {
	return &matchService{repo: repo, pub: pub, logger: logger}
}

func validateMatchInput(in models.MatchInput, creating bool) error {
	v := &validator{}
	if creating {
		v.check(requiredString(in.Team1), "team1", "must be provided")
		v.check(requiredString(in.Team2), "team2", "must be provided")
	}
	if in.Team1 != nil && in.Team2 != nil && *in.Team1 != "" {
		v.check(*in.Team1 != *in.Team2, "team2", "must differ from team1")
	}
	if in.Score1 != nil {
		v.check(*in.Score1 >= 0, "score1", "must not be negative")
	}
	if in.Score2 != nil {
		v.check(*in.Score2 >= 0, "score2", "must not be negative")
	}
	if in.Status != nil {
		v.check(in.Status.Valid(), "status", "must be one of scheduled, live, completed")
	}
	return v.err()
}

func (s *matchService) mapError(err error, op string) error {
	switch {
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrMatchTournamentInvalid):
		return &ValidationError{Fields: map[string]string{"tournament_id": "tournament does not exist"}}
	case errors.Is(err, repositories.ErrNothingToUpdate):
		return ErrNothingToUpdate
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func (s *matchService) ListMatches(ctx context.Context, tournamentID *string) ([]models.Match, error) {
	matches, err := s.repo.List(ctx, tournamentID)
	if err != nil {
		return nil, s.mapError(err, "list matches")
	}
	return matches, nil
}

func (s *matchService) GetMatch(ctx context.Context, id string) (*models.Match, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapError(err, "get match")
	}
	return m, nil
}

func (s *matchService) CreateMatch(ctx context.Context, input models.MatchInput) (*models.Match, error) {
	if err := validateMatchInput(input, true); err != nil {
		return nil, err
	}
	m, err := s.repo.Create(ctx, input)
	if err != nil {
		return nil, s.mapError(err, "create match")
	}
	publishChange(s.pub, s.logger, changefeed.TableMatches, changefeed.Insert, m, nil)
	return m, nil
}

func (s *matchService) UpdateMatch(ctx context.Context, id string, input models.MatchInput) (*models.Match, error) {
	if err := validateMatchInput(input, false); err != nil {
		return nil, err
	}
	m, err := s.repo.Update(ctx, id, input)
	if err != nil {
		return nil, s.mapError(err, "update match")
	}
	publishChange(s.pub, s.logger, changefeed.TableMatches, changefeed.Update, m, nil)
	return m, nil
}

func (s *matchService) DeleteMatch(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapError(err, "delete match")
	}
	publishChange(s.pub, s.logger, changefeed.TableMatches, changefeed.Delete, nil, map[string]string{"id": id})
	return nil
}
