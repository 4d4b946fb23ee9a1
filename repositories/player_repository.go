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
	ErrPlayerNotFound = errors.New("player not found")
	ErrPlayerConflict = errors.New("player profile already exists for this user")
)

type PlayerRepository interface {
	Create(ctx context.Context, input models.PlayerInput) (*models.Player, error)
	GetByID(ctx context.Context, id string) (*models.Player, error)
	GetByUserID(ctx context.Context, userID string) (*models.Player, error)
	List(ctx context.Context) ([]models.Player, error)
	Update(ctx context.Context, id string, input models.PlayerInput) (*models.Player, error)
	Delete(ctx context.Context, id string) error
}

const playerColumns = `id, user_id, name, game, team, rank, points, wins, losses, kills, avatar, country, created_at, updated_at`

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func scanPlayer(s rowScanner) (*models.Player, error) {
	p := &models.Player{}
	if err := s.Scan(&p.ID, &p.UserID, &p.Name, &p.Game, &p.Team, &p.Rank, &p.Points,
		&p.Wins, &p.Losses, &p.Kills, &p.Avatar, &p.Country, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return p, nil
}

func playerColumnSet(in models.PlayerInput) *columnSet {
	c := &columnSet{}
	c.set("user_id", in.UserID)
	c.set("name", in.Name)
	c.set("game", in.Game)
	c.set("team", in.Team)
	c.set("rank", in.Rank)
	c.set("points", in.Points)
	c.set("wins", in.Wins)
	c.set("losses", in.Losses)
	c.set("kills", in.Kills)
	c.set("avatar", in.Avatar)
	c.set("country", in.Country)
	return c
}

func (r *postgresPlayerRepository) Create(ctx context.Context, input models.PlayerInput) (*models.Player, error) {
	c := &columnSet{}
	c.set("id", uuid.NewString())
	fields := playerColumnSet(input)
	c.names = append(c.names, fields.names...)
	c.values = append(c.values, fields.values...)

	query, args := c.insertSQL("players", playerColumns)
	p, err := scanPlayer(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if code, _ := pgErrorCode(err); code == pgUniqueViolation {
			return nil, ErrPlayerConflict
		}
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	return p, nil
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id string) (*models.Player, error) {
	return r.findOne(ctx, `SELECT `+playerColumns+` FROM players WHERE id = $1`, id)
}

func (r *postgresPlayerRepository) GetByUserID(ctx context.Context, userID string) (*models.Player, error) {
	return r.findOne(ctx, `SELECT `+playerColumns+` FROM players WHERE user_id = $1`, userID)
}

func (r *postgresPlayerRepository) findOne(ctx context.Context, query string, args ...interface{}) (*models.Player, error) {
	p, err := scanPlayer(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to find player: %w", err)
	}
	return p, nil
}

// List возвращает лидерборд: по очкам, затем по победам.
func (r *postgresPlayerRepository) List(ctx context.Context) ([]models.Player, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+playerColumns+` FROM players ORDER BY points DESC, wins DESC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	players := make([]models.Player, 0)
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", err)
		}
		players = append(players, *p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating player rows: %w", err)
	}
	return players, nil
}

func (r *postgresPlayerRepository) Update(ctx context.Context, id string, input models.PlayerInput) (*models.Player, error) {
	c := playerColumnSet(input)
	if c.empty() {
		return nil, ErrNothingToUpdate
	}
	query, args := c.updateSQL("players", id, playerColumns)
	p, err := scanPlayer(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPlayerNotFound
		}
		if code, _ := pgErrorCode(err); code == pgUniqueViolation {
			return nil, ErrPlayerConflict
		}
		return nil, fmt.Errorf("failed to update player %s: %w", id, err)
	}
	return p, nil
}

func (r *postgresPlayerRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		if isNotFound(err) {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("failed to delete player %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}
