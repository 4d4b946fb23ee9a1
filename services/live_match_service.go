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

// LiveMatchService управляет баннером трансляции на главной странице.
type LiveMatchService interface {
	ListLiveMatches(ctx context.Context, activeOnly bool) ([]models.LiveMatch, error)
	CreateLiveMatch(ctx context.Context, input models.LiveMatchInput) (*models.LiveMatch, error)
	UpdateLiveMatch(ctx context.Context, id string, input models.LiveMatchInput) (*models.LiveMatch, error)
	ToggleLiveMatch(ctx context.Context, id string) (*models.LiveMatch, error)
	DeleteLiveMatch(ctx context.Context, id string) error
}

type liveMatchService struct {
	repo   repositories.LiveMatchRepository
	pub    changefeed.Publisher
	logger *slog.Logger
}

func NewLiveMatchService(repo repositories.LiveMatchRepository, pub changefeed.Publisher, logger *slog.Logger) LiveMatchService {
	return &liveMatchService{repo: repo, pub: pub, logger: logger}
}

func (s *liveMatchService) mapError(err error, op string) error {
	switch {
	case errors.Is(err, repositories.ErrLiveMatchNotFound):
		return ErrLiveMatchNotFound
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return &ValidationError{Fields: map[string]string{"tournament_id": "tournament does not exist"}}
	case errors.Is(err, repositories.ErrNothingToUpdate):
		return ErrNothingToUpdate
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func (s *liveMatchService) ListLiveMatches(ctx context.Context, activeOnly bool) ([]models.LiveMatch, error) {
	list, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, s.mapError(err, "list live matches")
	}
	return list, nil
}

func (s *liveMatchService) CreateLiveMatch(ctx context.Context, input models.LiveMatchInput) (*models.LiveMatch, error) {
	v := &validator{}
	v.check(requiredString(input.Title), "title", "must be provided")
	if err := v.err(); err != nil {
		return nil, err
	}
	lm, err := s.repo.Create(ctx, input)
	if err != nil {
		return nil, s.mapError(err, "create live match")
	}
	publishChange(s.pub, s.logger, changefeed.TableLiveMatches, changefeed.Insert, lm, nil)
	return lm, nil
}

func (s *liveMatchService) UpdateLiveMatch(ctx context.Context, id string, input models.LiveMatchInput) (*models.LiveMatch, error) {
	lm, err := s.repo.Update(ctx, id, input)
	if err != nil {
		return nil, s.mapError(err, "update live match")
	}
	publishChange(s.pub, s.logger, changefeed.TableLiveMatches, changefeed.Update, lm, nil)
	return lm, nil
}

func (s *liveMatchService) ToggleLiveMatch(ctx context.Context, id string) (*models.LiveMatch, error) {
	lm, err := s.repo.ToggleActive(ctx, id)
	if err != nil {
		return nil, s.mapError(err, "toggle live match")
	}
	publishChange(s.pub, s.logger, changefeed.TableLiveMatches, changefeed.Update, lm, nil)
	return lm, nil
}

func (s *liveMatchService) DeleteLiveMatch(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapError(err, "delete live match")
	}
	publishChange(s.pub, s.logger, changefeed.TableLiveMatches, changefeed.Delete, nil, map[string]string{"id": id})
	return nil
}
