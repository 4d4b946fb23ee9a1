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

type PlayerService interface {
	ListPlayers(ctx context.Context) ([]models.Player, error)
	GetPlayer(ctx context.Context, id string) (*models.Player, error)
	CreatePlayer(ctx context.Context, input models.PlayerInput) (*models.Player, error)
	UpdatePlayer(ctx context.Context, id string, input models.PlayerInput) (*models.Player, error)
	DeletePlayer(ctx context.Context, id string) error
}

// ProfileService отдаёт профиль текущего пользователя (строку players по user_id).
type ProfileService interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
}

type playerService struct {
	repo   repositories.PlayerRepository
	pub    changefeed.Publisher
	logger *slog.Logger
}

func NewPlayerService(repo repositories.PlayerRepository, pub changefeed.Publisher, logger *slog.Logger) PlayerService {
	return &playerService{repo: repo, pub: pub, logger: logger}
}

func NewProfileService(repo repositories.PlayerRepository, logger *slog.Logger) ProfileService {
	return &playerService{repo: repo, pub: changefeed.Discard, logger: logger}
}

func validatePlayerInput(in models.PlayerInput, creating bool) error {
	v := &validator{}
	if creating {
		v.check(requiredString(in.Name), "name", "must be provided")
		v.check(requiredString(in.Game), "game", "must be provided")
	}
	for field, value := range map[string]*int{
		"rank": in.Rank, "points": in.Points, "wins": in.Wins, "losses": in.Losses, "kills": in.Kills,
	} {
		if value != nil {
			v.check(*value >= 0, field, "must not be negative")
		}
	}
	return v.err()
}

func (s *playerService) mapError(err error, op string) error {
	switch {
	case errors.Is(err, repositories.ErrPlayerNotFound):
		return ErrPlayerNotFound
	case errors.Is(err, repositories.ErrPlayerConflict):
		return ErrPlayerConflict
	case errors.Is(err, repositories.ErrNothingToUpdate):
		return ErrNothingToUpdate
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func (s *playerService) ListPlayers(ctx context.Context) ([]models.Player, error) {
	players, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.mapError(err, "list players")
	}
	return players, nil
}

func (s *playerService) GetPlayer(ctx context.Context, id string) (*models.Player, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapError(err, "get player")
	}
	return p, nil
}

func (s *playerService) CreatePlayer(ctx context.Context, input models.PlayerInput) (*models.Player, error) {
	if err := validatePlayerInput(input, true); err != nil {
		return nil, err
	}
	p, err := s.repo.Create(ctx, input)
	if err != nil {
		return nil, s.mapError(err, "create player")
	}
	publishChange(s.pub, s.logger, changefeed.TablePlayers, changefeed.Insert, p, nil)
	return p, nil
}

func (s *playerService) UpdatePlayer(ctx context.Context, id string, input models.PlayerInput) (*models.Player, error) {
	if err := validatePlayerInput(input, false); err != nil {
		return nil, err
	}
	p, err := s.repo.Update(ctx, id, input)
	if err != nil {
		return nil, s.mapError(err, "update player")
	}
	publishChange(s.pub, s.logger, changefeed.TablePlayers, changefeed.Update, p, nil)
	return p, nil
}

func (s *playerService) DeletePlayer(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapError(err, "delete player")
	}
	publishChange(s.pub, s.logger, changefeed.TablePlayers, changefeed.Delete, nil, map[string]string{"id": id})
	return nil
}

func (s *playerService) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	p, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile for user %s: %w", userID, err)
	}
	return &models.Profile{UserID: userID, Name: p.Name, PlayerID: p.ID}, nil
}
