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

type SponsorService interface {
	ListSponsors(ctx context.Context, activeOnly bool) ([]models.Sponsor, error)
	CreateSponsor(ctx context.Context, input models.SponsorInput) (*models.Sponsor, error)
	UpdateSponsor(ctx context.Context, id string, input models.SponsorInput) (*models.Sponsor, error)
	ToggleSponsor(ctx context.Context, id string) (*models.Sponsor, error)
	DeleteSponsor(ctx context.Context, id string) error
}

type sponsorService struct {
	repo   repositories.SponsorRepository
	pub    changefeed.Publisher
	logger *slog.Logger
}

func NewSponsorService(repo repositories.SponsorRepository, pub changefeed.Publisher, logger *slog.Logger) SponsorService {
	return &sponsorService{repo: repo, pub: pub, logger: logger}
}

func (s *sponsorService) mapError(err error, op string) error {
	switch {
	case errors.Is(err, repositories.ErrSponsorNotFound):
		return ErrSponsorNotFound
	case errors.Is(err, repositories.ErrNothingToUpdate):
		return ErrNothingToUpdate
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func (s *sponsorService) ListSponsors(ctx context.Context, activeOnly bool) ([]models.Sponsor, error) {
	sponsors, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, s.mapError(err, "list sponsors")
	}
	return sponsors, nil
}

func (s *sponsorService) CreateSponsor(ctx context.Context, input models.SponsorInput) (*models.Sponsor, error) {
	v := &validator{}
	v.check(requiredString(input.Name), "name", "must be provided")
	if err := v.err(); err != nil {
		return nil, err
	}
	sp, err := s.repo.Create(ctx, input)
	if err != nil {
		return nil, s.mapError(err, "create sponsor")
	}
	publishChange(s.pub, s.logger, changefeed.TableSponsors, changefeed.Insert, sp, nil)
	return sp, nil
}

func (s *sponsorService) UpdateSponsor(ctx context.Context, id string, input models.SponsorInput) (*models.Sponsor, error) {
	sp, err := s.repo.Update(ctx, id, input)
	if err != nil {
		return nil, s.mapError(err, "update sponsor")
	}
	publishChange(s.pub, s.logger, changefeed.TableSponsors, changefeed.Update, sp, nil)
	return sp, nil
}

func (s *sponsorService) ToggleSponsor(ctx context.Context, id string) (*models.Sponsor, error) {
	sp, err := s.repo.ToggleActive(ctx, id)
	if err != nil {
		return nil, s.mapError(err, "toggle sponsor")
	}
	publishChange(s.pub, s.logger, changefeed.TableSponsors, changefeed.Update, sp, nil)
	return sp, nil
}

func (s *sponsorService) DeleteSponsor(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapError(err, "delete sponsor")
	}
	publishChange(s.pub, s.logger, changefeed.TableSponsors, changefeed.Delete, nil, map[string]string{"id": id})
	return nil
}
