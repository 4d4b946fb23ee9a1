package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/esports-arena/models"
	"github.com/google/uuid"
)

var (
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrTournamentInUse    = errors.New("tournament is in use (registrations/matches exist)")
)

type ListTournamentsFilter struct {
	Status *models.TournamentStatus
	Game   *string
	Limit  int
	Offset int
}

type TournamentRepository interface {
	Create(ctx context.Context, input models.TournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, id string) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	Update(ctx context.Context, id string, input models.TournamentInput) (*models.Tournament, error)
	Delete(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id string, status models.TournamentStatus) error
	UpdateTimer(ctx context.Context, id string, duration *int, startTime *time.Time, running bool) (*models.Tournament, error)
	GetTournamentsForAutoStatusUpdate(ctx context.Context, exec SQLExecutor, currentTime time.Time) ([]*models.Tournament, error)
	ListExpiredTimers(ctx context.Context, currentTime time.Time) ([]*models.Tournament, error)
}

const tournamentColumns = `id, name, game, description, prize_pool, max_participants, current_participants,
	start_date, end_date, status, banner, entry_fee, region, format, team_size, organizer,
	rules, schedule, prizes, highlights, overview_content, schedule_content, prizes_content,
	timer_duration, timer_start_time, timer_is_running, registration_opens, registration_closes,
	created_at, updated_at`

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func scanTournament(s rowScanner) (*models.Tournament, error) {
	t := &models.Tournament{}
	err := s.Scan(
		&t.ID, &t.Name, &t.Game, &t.Description, &t.PrizePool, &t.MaxParticipants, &t.CurrentParticipants,
		&t.StartDate, &t.EndDate, &t.Status, &t.Banner, &t.EntryFee, &t.Region, &t.Format, &t.TeamSize, &t.Organizer,
		&t.Rules, &t.Schedule, &t.Prizes, &t.Highlights, &t.OverviewContent, &t.ScheduleContent, &t.PrizesContent,
		&t.TimerDuration, &t.TimerStartTime, &t.TimerIsRunning, &t.RegistrationOpens, &t.RegistrationCloses,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func tournamentColumnSet(in models.TournamentInput) *columnSet {
	c := &columnSet{}
	c.set("name", in.Name)
	c.set("game", in.Game)
	c.set("description", in.Description)
	c.set("prize_pool", in.PrizePool)
	c.set("max_participants", in.MaxParticipants)
	c.set("current_participants", in.CurrentParticipants)
	c.set("start_date", in.StartDate)
	c.set("end_date", in.EndDate)
	c.set("status", in.Status)
	c.set("banner", in.Banner)
	c.set("entry_fee", in.EntryFee)
	c.set("region", in.Region)
	c.set("format", in.Format)
	c.set("team_size", in.TeamSize)
	c.set("organizer", in.Organizer)
	c.set("rules", in.Rules)
	c.set("schedule", in.Schedule)
	c.set("prizes", in.Prizes)
	c.set("highlights", in.Highlights)
	c.set("overview_content", in.OverviewContent)
	c.set("schedule_content", in.ScheduleContent)
	c.set("prizes_content", in.PrizesContent)
	c.set("registration_opens", in.RegistrationOpens)
	c.set("registration_closes", in.RegistrationCloses)
	return c
}

func (r *postgresTournamentRepository) Create(ctx context.Context, input models.TournamentInput) (*models.Tournament, error) {
	c := &columnSet{}
	c.set("id", uuid.NewString())
	fields := tournamentColumnSet(input)
	c.names = append(c.names, fields.names...)
	c.values = append(c.values, fields.values...)

	query, args := c.insertSQL("tournaments", tournamentColumns)
	t, err := scanTournament(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`
	t, err := scanTournament(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %s: %w", id, err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE 1=1`
	args := []interface{}{}
	argID := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, *filter.Status)
		argID++
	}
	if filter.Game != nil {
		query += fmt.Sprintf(" AND game = $%d", argID)
		args = append(args, *filter.Game)
		argID++
	}

	query += " ORDER BY start_date ASC, created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", err)
		}
		tournaments = append(tournaments, *t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tournament rows: %w", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) Update(ctx context.Context, id string, input models.TournamentInput) (*models.Tournament, error) {
	c := tournamentColumnSet(input)
	if c.empty() {
		return nil, ErrNothingToUpdate
	}
	query, args := c.updateSQL("tournaments", id, tournamentColumns)
	t, err := scanTournament(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to update tournament %s: %w", id, err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		mapped := mapWriteError(err, ErrTournamentNotFound, nil, ErrTournamentInUse)
		if errors.Is(mapped, ErrTournamentInUse) || errors.Is(mapped, ErrTournamentNotFound) {
			return mapped
		}
		return fmt.Errorf("failed to delete tournament %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id string, status models.TournamentStatus) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE tournaments SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update tournament status: %w", err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateTimer(ctx context.Context, id string, duration *int, startTime *time.Time, running bool) (*models.Tournament, error) {
	query := `
		UPDATE tournaments SET
			timer_duration = COALESCE($1, timer_duration),
			timer_start_time = $2,
			timer_is_running = $3,
			updated_at = now()
		WHERE id = $4
		RETURNING ` + tournamentColumns

	t, err := scanTournament(r.db.QueryRowContext(ctx, query, duration, startTime, running, id))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to update tournament timer: %w", err)
	}
	return t, nil
}

// GetTournamentsForAutoStatusUpdate возвращает турниры, чей статус отстаёт от дат.
func (r *postgresTournamentRepository) GetTournamentsForAutoStatusUpdate(ctx context.Context, exec SQLExecutor, currentTime time.Time) ([]*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + tournamentColumns + ` FROM tournaments
		WHERE (status = 'upcoming' AND start_date <= $1)
		   OR (status = 'ongoing' AND end_date IS NOT NULL AND end_date <= $1)`
	return r.queryMany(ctx, executor, query, currentTime)
}

func (r *postgresTournamentRepository) ListExpiredTimers(ctx context.Context, currentTime time.Time) ([]*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments
		WHERE timer_is_running = true
		  AND timer_start_time IS NOT NULL
		  AND timer_duration IS NOT NULL
		  AND timer_start_time + make_interval(secs => timer_duration) <= $1`
	return r.queryMany(ctx, r.db, query, currentTime)
}

func (r *postgresTournamentRepository) queryMany(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]*models.Tournament, error) {
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournaments: %w", err)
	}
	defer rows.Close()

	var tournaments []*models.Tournament
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", err)
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tournament rows: %w", err)
	}
	return tournaments, nil
}
