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
	ErrRegistrationNotFound          = errors.New("registration not found")
	ErrRegistrationConflict          = errors.New("user is already registered for this tournament")
	ErrRegistrationTournamentInvalid = errors.New("registration tournament reference is invalid")
)

type RegistrationRepository interface {
	Create(ctx context.Context, reg *models.TournamentRegistration) error
	GetByID(ctx context.Context, id string) (*models.TournamentRegistration, error)
	FindByUserAndTournament(ctx context.Context, userID, tournamentID string) (*models.TournamentRegistration, error)
	ListByUser(ctx context.Context, userID string) ([]models.TournamentRegistration, error)
	ListByTournament(ctx context.Context, tournamentID string, statusFilter *models.PaymentStatus) ([]models.TournamentRegistration, error)
	UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus) (*models.TournamentRegistration, error)
}

const registrationColumns = `id, user_id, tournament_id, player_name, player_game_id, registration_date,
	payment_status, payment_amount, created_at, updated_at`

type postgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: db}
}

func scanRegistration(s rowScanner, reg *models.TournamentRegistration) error {
	return s.Scan(
		&reg.ID, &reg.UserID, &reg.TournamentID, &reg.PlayerName, &reg.PlayerGameID, &reg.RegistrationDate,
		&reg.PaymentStatus, &reg.PaymentAmount, &reg.CreatedAt, &reg.UpdatedAt,
	)
}

func (r *postgresRegistrationRepository) Create(ctx context.Context, reg *models.TournamentRegistration) error {
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	c := &columnSet{}
	c.set("id", reg.ID)
	c.set("user_id", reg.UserID)
	c.set("tournament_id", reg.TournamentID)
	c.set("player_name", reg.PlayerName)
	c.set("player_game_id", reg.PlayerGameID)
	c.set("payment_status", reg.PaymentStatus)
	if reg.PaymentAmount.Valid {
		c.set("payment_amount", reg.PaymentAmount.Decimal)
	}

	query, args := c.insertSQL("tournament_registrations", registrationColumns)
	err := scanRegistration(r.db.QueryRowContext(ctx, query, args...), reg)
	if err != nil {
		switch code, _ := pgErrorCode(err); code {
		case pgUniqueViolation:
			return ErrRegistrationConflict
		case pgForeignKeyViolation, pgInvalidTextRep:
			return ErrRegistrationTournamentInvalid
		}
		return fmt.Errorf("failed to create registration: %w", err)
	}
	return nil
}

func (r *postgresRegistrationRepository) findOne(ctx context.Context, query string, args ...interface{}) (*models.TournamentRegistration, error) {
	reg := &models.TournamentRegistration{}
	err := scanRegistration(r.db.QueryRowContext(ctx, query, args...), reg)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to find registration: %w", err)
	}
	return reg, nil
}

func (r *postgresRegistrationRepository) GetByID(ctx context.Context, id string) (*models.TournamentRegistration, error) {
	return r.findOne(ctx, `SELECT `+registrationColumns+` FROM tournament_registrations WHERE id = $1`, id)
}

func (r *postgresRegistrationRepository) FindByUserAndTournament(ctx context.Context, userID, tournamentID string) (*models.TournamentRegistration, error) {
	query := `SELECT ` + registrationColumns + ` FROM tournament_registrations
		WHERE user_id = $1 AND tournament_id = $2
		ORDER BY registration_date ASC
		LIMIT 1`
	return r.findOne(ctx, query, userID, tournamentID)
}

func (r *postgresRegistrationRepository) ListByUser(ctx context.Context, userID string) ([]models.TournamentRegistration, error) {
	query := `SELECT ` + registrationColumns + ` FROM tournament_registrations
		WHERE user_id = $1
		ORDER BY registration_date DESC`
	return r.list(ctx, query, userID)
}

func (r *postgresRegistrationRepository) ListByTournament(ctx context.Context, tournamentID string, statusFilter *models.PaymentStatus) ([]models.TournamentRegistration, error) {
	query := `SELECT ` + registrationColumns + ` FROM tournament_registrations WHERE tournament_id = $1`
	args := []interface{}{tournamentID}
	if statusFilter != nil {
		query += ` AND payment_status = $2`
		args = append(args, *statusFilter)
	}
	query += ` ORDER BY registration_date ASC`
	return r.list(ctx, query, args...)
}

func (r *postgresRegistrationRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.TournamentRegistration, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		if isNotFound(err) {
			return []models.TournamentRegistration{}, nil
		}
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	defer rows.Close()

	regs := make([]models.TournamentRegistration, 0)
	for rows.Next() {
		var reg models.TournamentRegistration
		if err := scanRegistration(rows, &reg); err != nil {
			return nil, fmt.Errorf("failed to scan registration row: %w", err)
		}
		regs = append(regs, reg)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating registration rows: %w", err)
	}
	return regs, nil
}

func (r *postgresRegistrationRepository) UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus) (*models.TournamentRegistration, error) {
	query := `UPDATE tournament_registrations SET payment_status = $1, updated_at = now()
		WHERE id = $2
		RETURNING ` + registrationColumns
	return r.findOne(ctx, query, status, id)
}
