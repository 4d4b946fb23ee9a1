package store

import (
	"context"

	"github.com/Dosada05/esports-arena/models"
)

// Действия только пишут через сервисы. Кэш обновляется лентой изменений.

func (s *Store) CreateTournament(ctx context.Context, input models.TournamentInput) (*models.Tournament, error) {
	return s.tournamentSvc.CreateTournament(ctx, input)
}

func (s *Store) UpdateTournament(ctx context.Context, id string, input models.TournamentInput) (*models.Tournament, error) {
	return s.tournamentSvc.UpdateTournament(ctx, id, input)
}

func (s *Store) DeleteTournament(ctx context.Context, id string) error {
	return s.tournamentSvc.DeleteTournament(ctx, id)
}

func (s *Store) CreatePlayer(ctx context.Context, input models.PlayerInput) (*models.Player, error) {
	return s.playerSvc.CreatePlayer(ctx, input)
}

func (s *Store) UpdatePlayer(ctx context.Context, id string, input models.PlayerInput) (*models.Player, error) {
	return s.playerSvc.UpdatePlayer(ctx, id, input)
}

func (s *Store) DeletePlayer(ctx context.Context, id string) error {
	return s.playerSvc.DeletePlayer(ctx, id)
}

func (s *Store) CreateMatch(ctx context.Context, input models.MatchInput) (*models.Match, error) {
	return s.matchSvc.CreateMatch(ctx, input)
}

func (s *Store) UpdateMatch(ctx context.Context, id string, input models.MatchInput) (*models.Match, error) {
	return s.matchSvc.UpdateMatch(ctx, id, input)
}

func (s *Store) DeleteMatch(ctx context.Context, id string) error {
	return s.matchSvc.DeleteMatch(ctx, id)
}
