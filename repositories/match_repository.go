package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/esports-arena/models"
	"github.com/google/uuid"
)

var (
	ErrMatchNotFound          = errors.New("match not found")
	ErrMatchTournamentInvalid = errors.New("match tournament reference is invalid")
)

type MatchRepository interface {
	Create(ctx context.Context, input models.MatchInput) (*models.Match, error)
	GetByID(ctx context.Context, id string) (*models.Match, error)
	List(ctx context.Context, tournamentID *string) ([]models.Match, error)
	Update(ctx context.Context, id string, input models.MatchInput) (*models.Match, error)
	Delete(ctx context.Context, id string) error
}

const matchColumns = `id, tournament_id, team1, team2, score1, score2, status, scheduled_at, stream_url, created_at, updated_at`

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func scanMatch(s rowScanner) (*models.Match, error) {
	m := &models.Match{}
	if err := s.Scan(&m.ID, &m.TournamentID, &m.Team1, &m.Team2, &m.Score1, &m.Score2,
		&m.Status, &m.ScheduledAt, &m.StreamURL, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	return m, nil
}

func matchColumnSet(in models.MatchInput) *columnSet {
	c := &columnSet{}
	c.set("tournament_id", in.TournamentID)
	c.set("team1", in.Team1)
	c.set("team2", in.Team2)
	c.set("score1", in.Score1)
	c.set("score2", in.Score2)
	c.set("status", in.Status)
	c.set("scheduled_at", in.ScheduledAt)
	c.set("stream_url", in.StreamURL)
	return c
}

func (r *postgresMatchRepository) Create(ctx context.Context, input models.MatchInput) (*models.Match, error) {
	c := &columnSet{}
	c.set("id", uuid.NewString())
	fields := matchColumnSet(input)
	c.names = append(c.names, fields.names...)
	c.values = append(c.values, fields.values...)

	query, args := c.insertSQL("matches", matchColumns)
	m, err := scanMatch(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if code, _ := pgErrorCode(err); code == pgForeignKeyViolation {
			return nil, ErrMatchTournamentInvalid
		}
		return nil, fmt.Errorf("failed to create match: %w", err)
	}
	return m, nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id string) (*models.Match, error) {
	m, err := scanMatch(r.db.QueryRowContext(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %s: %w", id, err)
	}
	return m, nil
}

func (r *postgresMatchRepository) List(ctx context.Context, tournamentID *string) ([]models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches`
	args := []interface{}{}
	if tournamentID != nil {
		query += ` WHERE tournament_id = $1`
		args = append(args, *tournamentID)
	}
	query += ` ORDER BY scheduled_at ASC NULLS LAST, created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, *m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating match rows: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) Update(ctx context.Context, id string, input models.MatchInput) (*models.Match, error) {
	c := matchColumnSet(input)
	if c.empty() {
		return nil, ErrNothingToUpdate
	}
	query, args := c.updateSQL("matches", id, matchColumns)
	m, err := scanMatch(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrMatchNotFound
		}
		if code, _ := pgErrorCode(err); code == pgForeignKeyViolation {
			return nil, ErrMatchTournamentInvalid
		}
		return nil, fmt.Errorf("failed to update match %s: %w", id, err)
	}
	return m, nil
}

func (r *postgresMatchRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		if isNotFound(err) {
			return ErrMatchNotFound
		}
		return fmt.Errorf("failed to delete match %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}
