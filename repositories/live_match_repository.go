package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/esports-arena/models"
	"github.com/google/uuid"
)

var ErrLiveMatchNotFound = errors.New("live match not found")

type LiveMatchRepository interface {
	Create(ctx context.Context, input models.LiveMatchInput) (*models.LiveMatch, error)
	GetByID(ctx context.Context, id string) (*models.LiveMatch, error)
	List(ctx context.Context, activeOnly bool) ([]models.LiveMatch, error)
	Update(ctx context.Context, id string, input models.LiveMatchInput) (*models.LiveMatch, error)
	ToggleActive(ctx context.Context, id string) (*models.LiveMatch, error)
	Delete(ctx context.Context, id string) error
}

const liveMatchColumns = `id, tournament_id, banner_url, title, description, youtube_live_url, is_active, created_at, updated_at`

type postgresLiveMatchRepository struct {
	db *sql.DB
}

func NewPostgresLiveMatchRepository(db *sql.DB) LiveMatchRepository {
	return &postgresLiveMatchRepository{db: db}
}

func scanLiveMatch(s rowScanner) (*models.LiveMatch, error) {
	m := &models.LiveMatch{}
	if err := s.Scan(&m.ID, &m.TournamentID, &m.BannerURL, &m.Title, &m.Description,
		&m.YoutubeLiveURL, &m.IsActive, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	return m, nil
}

func liveMatchColumnSet(in models.LiveMatchInput) *columnSet {
	c := &columnSet{}
	c.set("tournament_id", in.TournamentID)
	c.set("banner_url", in.BannerURL)
	c.set("title", in.Title)
	c.set("description", in.Description)
	c.set("youtube_live_url", in.YoutubeLiveURL)
	c.set("is_active", in.IsActive)
	return c
}

func (r *postgresLiveMatchRepository) Create(ctx context.Context, input models.LiveMatchInput) (*models.LiveMatch, error) {
	c := &columnSet{}
	c.set("id", uuid.NewString())
	fields := liveMatchColumnSet(input)
	c.names = append(c.names, fields.names...)
	c.values = append(c.values, fields.values...)

	query, args := c.insertSQL("live_match_admin", liveMatchColumns)
	m, err := scanLiveMatch(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if code, _ := pgErrorCode(err); code == pgForeignKeyViolation {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to create live match: %w", err)
	}
	return m, nil
}

func (r *postgresLiveMatchRepository) GetByID(ctx context.Context, id string) (*models.LiveMatch, error) {
	m, err := scanLiveMatch(r.db.QueryRowContext(ctx, `SELECT `+liveMatchColumns+` FROM live_match_admin WHERE id = $1`, id))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrLiveMatchNotFound
		}
		return nil, fmt.Errorf("failed to get live match %s: %w", id, err)
	}
	return m, nil
}

func (r *postgresLiveMatchRepository) List(ctx context.Context, activeOnly bool) ([]models.LiveMatch, error) {
	query := `SELECT ` + liveMatchColumns + ` FROM live_match_admin`
	if activeOnly {
		query += ` WHERE is_active = true`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list live matches: %w", err)
	}
	defer rows.Close()

	items := make([]models.LiveMatch, 0)
	for rows.Next() {
		m, err := scanLiveMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan live match row: %w", err)
		}
		items = append(items, *m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating live match rows: %w", err)
	}
	return items, nil
}

func (r *postgresLiveMatchRepository) Update(ctx context.Context, id string, input models.LiveMatchInput) (*models.LiveMatch, error) {
	c := liveMatchColumnSet(input)
	if c.empty() {
		return nil, ErrNothingToUpdate
	}
	query, args := c.updateSQL("live_match_admin", id, liveMatchColumns)
	m, err := scanLiveMatch(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrLiveMatchNotFound
		}
		return nil, fmt.Errorf("failed to update live match %s: %w", id, err)
	}
	return m, nil
}

func (r *postgresLiveMatchRepository) ToggleActive(ctx context.Context, id string) (*models.LiveMatch, error) {
	query := `UPDATE live_match_admin SET is_active = NOT is_active, updated_at = now() WHERE id = $1 RETURNING ` + liveMatchColumns
	m, err := scanLiveMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrLiveMatchNotFound
		}
		return nil, fmt.Errorf("failed to toggle live match %s: %w", id, err)
	}
	return m, nil
}

func (r *postgresLiveMatchRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM live_match_admin WHERE id = $1`, id)
	if err != nil {
		if isNotFound(err) {
			return ErrLiveMatchNotFound
		}
		return fmt.Errorf("failed to delete live match %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrLiveMatchNotFound)
}
