package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/esports-arena/changefeed"
	"github.com/Dosada05/esports-arena/models"
	"github.com/Dosada05/esports-arena/repositories"
	"github.com/shopspring/decimal"
)

type RegisterInput struct {
	TournamentID  string           `json:"tournament_id"`
	PlayerName    string           `json:"player_name"`
	PlayerGameID  string           `json:"player_game_id"`
	PaymentAmount *decimal.Decimal `json:"payment_amount,omitempty"`
	// PaymentRequired оставляет заявку в pending, даже если сумма неизвестна.
	PaymentRequired bool `json:"-"`
}

// RegistrationService владеет жизненным циклом заявки и данными комнаты.
type RegistrationService interface {
	RegisterForTournament(ctx context.Context, userID string, input RegisterInput) (*models.TournamentRegistration, error)
	GetUserRegistrations(ctx context.Context, userID string) ([]models.TournamentRegistration, error)
	GetTournamentRegistrations(ctx context.Context, tournamentID string) ([]models.TournamentRegistration, error)
	CheckUserRegistration(ctx context.Context, userID, tournamentID string) (*models.TournamentRegistration, error)
	UpdatePaymentStatus(ctx context.Context, registrationID string, status models.PaymentStatus) (*models.TournamentRegistration, error)
	GetTournamentRoom(ctx context.Context, tournamentID string) (*models.TournamentRoom, error)
	UpsertTournamentRoom(ctx context.Context, tournamentID string, input models.RoomInput) (*models.TournamentRoom, error)
}

type registrationService struct {
	repo     repositories.RegistrationRepository
	roomRepo repositories.RoomRepository
	pub      changefeed.Publisher
	logger   *slog.Logger
}

func NewRegistrationService(
	repo repositories.RegistrationRepository,
	roomRepo repositories.RoomRepository,
	pub changefeed.Publisher,
	logger *slog.Logger,
) RegistrationService {
	return &registrationService{
		repo:     repo,
		roomRepo: roomRepo,
		pub:      pub,
		logger:   logger,
	}
}

// initialPaymentStatus: бесплатное участие (сумма не задана или <= 0) подтверждается сразу.
func initialPaymentStatus(amount *decimal.Decimal, required bool) models.PaymentStatus {
	if required {
		return models.PaymentPending
	}
	if amount == nil || !amount.IsPositive() {
		return models.PaymentCompleted
	}
	return models.PaymentPending
}

// RegisterForTournament не проверяет вместимость турнира: два одновременных
// запроса на последний слот пройдут оба.
func (s *registrationService) RegisterForTournament(ctx context.Context, userID string, input RegisterInput) (*models.TournamentRegistration, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	v := &validator{}
	v.check(strings.TrimSpace(input.TournamentID) != "", "tournament_id", "must be provided")
	v.check(strings.TrimSpace(input.PlayerName) != "", "player_name", "must be provided")
	v.check(strings.TrimSpace(input.PlayerGameID) != "", "player_game_id", "must be provided")
	if err := v.err(); err != nil {
		return nil, err
	}

	// Проверка на повторную регистрацию. Уникальность в БД не гарантируется.
	existing, err := s.CheckUserRegistration(ctx, userID, input.TournamentID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrRegistrationConflict
	}

	reg := &models.TournamentRegistration{
		UserID:        userID,
		TournamentID:  input.TournamentID,
		PlayerName:    strings.TrimSpace(input.PlayerName),
		PlayerGameID:  strings.TrimSpace(input.PlayerGameID),
		PaymentStatus: initialPaymentStatus(input.PaymentAmount, input.PaymentRequired),
	}
	if input.PaymentAmount != nil {
		reg.PaymentAmount = decimal.NewNullDecimal(*input.PaymentAmount)
	}

	if err := s.repo.Create(ctx, reg); err != nil {
		switch {
		case errors.Is(err, repositories.ErrRegistrationConflict):
			return nil, ErrRegistrationConflict
		case errors.Is(err, repositories.ErrRegistrationTournamentInvalid):
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to register for tournament %s: %w", input.TournamentID, err)
	}

	s.logger.Info("tournament registration created",
		slog.String("registration_id", reg.ID),
		slog.String("tournament_id", reg.TournamentID),
		slog.String("user_id", userID),
		slog.String("payment_status", string(reg.PaymentStatus)))
	publishChange(s.pub, s.logger, changefeed.TableRegistrations, changefeed.Insert, reg, nil)

	return reg, nil
}

func (s *registrationService) GetUserRegistrations(ctx context.Context, userID string) ([]models.TournamentRegistration, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	regs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get registrations for user %s: %w", userID, err)
	}
	return regs, nil
}

// GetTournamentRegistrations возвращает только оплаченные заявки в порядке регистрации.
func (s *registrationService) GetTournamentRegistrations(ctx context.Context, tournamentID string) ([]models.TournamentRegistration, error) {
	completed := models.PaymentCompleted
	regs, err := s.repo.ListByTournament(ctx, tournamentID, &completed)
	if err != nil {
		return nil, fmt.Errorf("failed to get registrations for tournament %s: %w", tournamentID, err)
	}
	return regs, nil
}

// CheckUserRegistration возвращает nil, nil если заявки нет.
func (s *registrationService) CheckUserRegistration(ctx context.Context, userID, tournamentID string) (*models.TournamentRegistration, error) {
	reg, err := s.repo.FindByUserAndTournament(ctx, userID, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to check registration: %w", err)
	}
	return reg, nil
}

func (s *registrationService) UpdatePaymentStatus(ctx context.Context, registrationID string, status models.PaymentStatus) (*models.TournamentRegistration, error) {
	if status != models.PaymentCompleted && status != models.PaymentFailed {
		return nil, ErrInvalidPaymentStatus
	}

	old, err := s.repo.GetByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to load registration %s: %w", registrationID, err)
	}

	reg, err := s.repo.UpdatePaymentStatus(ctx, registrationID, status)
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to update payment status of %s: %w", registrationID, err)
	}

	s.logger.Info("registration payment status updated",
		slog.String("registration_id", registrationID),
		slog.String("from", string(old.PaymentStatus)),
		slog.String("to", string(status)))
	publishChange(s.pub, s.logger, changefeed.TableRegistrations, changefeed.Update, reg, old)

	return reg, nil
}

// GetTournamentRoom возвращает nil, nil если комната ещё не создана.
func (s *registrationService) GetTournamentRoom(ctx context.Context, tournamentID string) (*models.TournamentRoom, error) {
	room, err := s.roomRepo.GetByTournament(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrRoomNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return room, nil
}

func (s *registrationService) UpsertTournamentRoom(ctx context.Context, tournamentID string, input models.RoomInput) (*models.TournamentRoom, error) {
	room, err := s.roomRepo.Upsert(ctx, tournamentID, input)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to upsert room: %w", err)
	}
	publishChange(s.pub, s.logger, changefeed.TableRooms, changefeed.Update, room, nil)
	return room, nil
}
