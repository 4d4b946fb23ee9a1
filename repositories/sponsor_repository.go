package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/esports-arena/models"
	"github.com/google/uuid"
)

var ErrSponsorNotFound = errors.New("sponsor not found")

type SponsorRepository interface {
	Create(ctx context.Context, input models.SponsorInput) (*models.Sponsor, error)
	GetByID(ctx context.Context, id string) (*models.Sponsor, error)
	List(ctx context.Context, activeOnly bool) ([]models.Sponsor, error)
	Update(ctx context.Context, id string, input models.SponsorInput) (*models.Sponsor, error)
	ToggleActive(ctx context.Context, id string) (*models.Sponsor, error)
	Delete(ctx context.Context, id string) error
}

const sponsorColumns = `id, name, logo, website, description, display_order, is_active, created_at, updated_at`

type postgresSponsorRepository struct {
	db *sql.DB
}

func NewPostgresSponsorRepository(db *sql.DB) SponsorRepository {
	return &postgresSponsorRepository{db: db}
}

func scanSponsor(s rowScanner) (*models.Sponsor, error) {
	sp := &models.Sponsor{}
	if err := s.Scan(&sp.ID, &sp.Name, &sp.Logo, &sp.Website, &sp.Description,
		&sp.DisplayOrder, &sp.IsActive, &sp.CreatedAt, &sp.UpdatedAt); err != nil {
		return nil, err
	}
	return sp, nil
}

func sponsorColumnSet(in models.SponsorInput) *columnSet {
	c := &columnSet{}
	c.set("name", in.Name)
	c.set("logo", in.Logo)
	c.set("website", in.Website)
	c.set("description", in.Description)
	c.set("display_order", in.DisplayOrder)
	c.set("is_active", in.IsActive)
	return c
}

func (r *postgresSponsorRepository) Create(ctx context.Context, input models.SponsorInput) (*models.Sponsor, error) {
	c := &columnSet{}
	c.set("id", uuid.NewString())
	fields := sponsorColumnSet(input)
	c.names = append(c.names, fields.names...)
	c.values = append(c.values, fields.values...)

	query, args := c.insertSQL("sponsors", sponsorColumns)
	sp, err := scanSponsor(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("failed to create sponsor: %w", err)
	}
	return sp, nil
}

func (r *postgresSponsorRepository) GetByID(ctx context.Context, id string) (*models.Sponsor, error) {
	sp, err := scanSponsor(r.db.QueryRowContext(ctx, `SELECT `+sponsorColumns+` FROM sponsors WHERE id = $1`, id))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrSponsorNotFound
		}
		return nil, fmt.Errorf("failed to get sponsor %s: %w", id, err)
	}
	return sp, nil
}

func (r *postgresSponsorRepository) List(ctx context.Context, activeOnly bool) ([]models.Sponsor, error) {
	query := `SELECT ` + sponsorColumns + ` FROM sponsors`
	if activeOnly {
		query += ` WHERE is_active = true`
	}
	query += ` ORDER BY display_order ASC, name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sponsors: %w", err)
	}
	defer rows.Close()

	sponsors := make([]models.Sponsor, 0)
	for rows.Next() {
		sp, err := scanSponsor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sponsor row: %w", err)
		}
		sponsors = append(sponsors, *sp)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sponsor rows: %w", err)
	}
	return sponsors, nil
}

func (r *postgresSponsorRepository) Update(ctx context.Context, id string, input models.SponsorInput) (*models.Sponsor, error) {
	c := sponsorColumnSet(input)
	if c.empty() {
		return nil, ErrNothingToUpdate
	}
	query, args := c.updateSQL("sponsors", id, sponsorColumns)
	sp, err := scanSponsor(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrSponsorNotFound
		}
		return nil, fmt.Errorf("failed to update sponsor %s: %w", id, err)
	}
	return sp, nil
}

func (r *postgresSponsorRepository) ToggleActive(ctx context.Context, id string) (*models.Sponsor, error) {
	query := `UPDATE sponsors SET is_active = NOT is_active, updated_at = now() WHERE id = $1 RETURNING ` + sponsorColumns
	sp, err := scanSponsor(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrSponsorNotFound
		}
		return nil, fmt.Errorf("failed to toggle sponsor %s: %w", id, err)
	}
	return sp, nil
}

func (r *postgresSponsorRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sponsors WHERE id = $1`, id)
	if err != nil {
		if isNotFound(err) {
			return ErrSponsorNotFound
		}
		return fmt.Errorf("failed to delete sponsor %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrSponsorNotFound)
}
