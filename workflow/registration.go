// Package workflow реализует сценарий регистрации на турнир и раскрытия данных комнаты.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/Dosada05/esports-arena/changefeed"
	"github.com/Dosada05/esports-arena/models"
	"github.com/Dosada05/esports-arena/money"
	"github.com/Dosada05/esports-arena/services"
)

type State string

const (
	Anonymous      State = "anonymous"
	NotRegistered  State = "not_registered"
	AwaitingGameID State = "awaiting_game_id"
	PendingPayment State = "pending_payment"
	PaymentFailed  State = "payment_failed"
	Confirmed      State = "confirmed"
)

const (
	LabelRegister       = "Register"
	LabelFull           = "Tournament Full"
	LabelLogin          = "Login to Register"
	LabelPaymentPending = "Payment Pending"
	LabelRegistered     = "Registered"
	LabelPaymentFailed  = "Payment Failed"
)

var (
	ErrLoginRequired     = errors.New("login required to register")
	ErrProfileRequired   = errors.New("a player profile is required to register")
	ErrTournamentFull    = errors.New("tournament is full")
	ErrInvalidTransition = errors.New("action not allowed in the current registration state")
	ErrPaymentFailed     = errors.New("payment for the existing registration failed")
)

type ProfileSource interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
}

// Registrations - часть services.RegistrationService, нужная сценарию.
type Registrations interface {
	RegisterForTournament(ctx context.Context, userID string, input services.RegisterInput) (*models.TournamentRegistration, error)
	GetTournamentRegistrations(ctx context.Context, tournamentID string) ([]models.TournamentRegistration, error)
	CheckUserRegistration(ctx context.Context, userID, tournamentID string) (*models.TournamentRegistration, error)
	GetTournamentRoom(ctx context.Context, tournamentID string) (*models.TournamentRoom, error)
}

// Registration - экземпляр сценария для одного зрителя одного турнира.
type Registration struct {
	userID        string
	tournament    models.Tournament
	profiles      ProfileSource
	registrations Registrations
	notifier      Notifier
	logger        *slog.Logger

	mu        sync.Mutex
	state     State
	profile   *models.Profile
	own       *models.TournamentRegistration
	confirmed []models.TournamentRegistration
	room      *models.TournamentRoom
}

type Config struct {
	// UserID пуст для анонимного зрителя.
	UserID        string
	Tournament    models.Tournament
	Profiles      ProfileSource
	Registrations Registrations
	Notifier      Notifier
	Logger        *slog.Logger
}

func New(cfg Config) *Registration {
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = NotifierFunc(func(Notice) {})
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	state := NotRegistered
	if cfg.UserID == "" {
		state = Anonymous
	}
	return &Registration{
		userID:        cfg.UserID,
		tournament:    cfg.Tournament,
		profiles:      cfg.Profiles,
		registrations: cfg.Registrations,
		notifier:      notifier,
		logger:        logger,
		state:         state,
	}
}

// Load загружает профиль, свою заявку, список подтверждённых участников и,
// если заявка оплачена, данные комнаты. Запросы выполняются последовательно.
func (w *Registration) Load(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.load(ctx)
}

// Reload - ручная перезагрузка, семантика как у Load.
func (w *Registration) Reload(ctx context.Context) error {
	return w.Load(ctx)
}

func (w *Registration) load(ctx context.Context) error {
	tournamentID := w.tournament.ID

	var (
		profile *models.Profile
		own     *models.TournamentRegistration
		room    *models.TournamentRoom
		err     error
	)
	if w.userID != "" {
		profile, err = w.profiles.GetProfile(ctx, w.userID)
		if err != nil && !errors.Is(err, services.ErrProfileNotFound) {
			return w.backendError("load profile", err)
		}
		own, err = w.registrations.CheckUserRegistration(ctx, w.userID, tournamentID)
		if err != nil {
			return w.backendError("load registration", err)
		}
	}

	confirmed, err := w.registrations.GetTournamentRegistrations(ctx, tournamentID)
	if err != nil {
		return w.backendError("load registrations", err)
	}

	if own.Confirmed() {
		room, err = w.registrations.GetTournamentRoom(ctx, tournamentID)
		if err != nil {
			return w.backendError("load room", err)
		}
	}

	w.profile = profile
	w.own = own
	w.confirmed = confirmed
	w.room = room
	w.state = w.derivedState()
	return nil
}

func (w *Registration) derivedState() State {
	if w.userID == "" {
		return Anonymous
	}
	if w.own == nil {
		return NotRegistered
	}
	switch w.own.PaymentStatus {
	case models.PaymentCompleted:
		return Confirmed
	case models.PaymentPending:
		return PendingPayment
	case models.PaymentFailed:
		// Слот не занят, но повторная заявка невозможна: строка остаётся.
		return PaymentFailed
	}
	return NotRegistered
}

func (w *Registration) full() bool {
	return len(w.confirmed) >= w.tournament.MaxParticipants
}

// PressRegister открывает диалог ввода игрового ID.
func (w *Registration) PressRegister() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch {
	case w.state == Anonymous:
		w.notify(NoticeInfo, "Please log in to register for this tournament")
		return ErrLoginRequired
	case w.state == PaymentFailed:
		w.notify(NoticeInfo, "Payment for your registration failed, please contact support")
		return ErrPaymentFailed
	case w.state != NotRegistered:
		return ErrInvalidTransition
	case w.full():
		w.notify(NoticeInfo, "This tournament is full")
		return ErrTournamentFull
	case w.profile == nil:
		w.notify(NoticeValidation, "Create a player profile before registering")
		return ErrProfileRequired
	}
	w.state = AwaitingGameID
	return nil
}

// CancelDialog закрывает диалог без регистрации.
func (w *Registration) CancelDialog() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == AwaitingGameID {
		w.state = NotRegistered
	}
}

// SubmitGameID регистрирует зрителя с указанным игровым ID.
// При ошибке бэкенда состояние остаётся AwaitingGameID.
func (w *Registration) SubmitGameID(ctx context.Context, gameID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != AwaitingGameID {
		return ErrInvalidTransition
	}
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		w.notify(NoticeValidation, "Please enter your game ID")
		return &services.ValidationError{Fields: map[string]string{"player_game_id": "must be provided"}}
	}

	tournamentID := w.tournament.ID

	// Заявка могла появиться из другой вкладки.
	existing, err := w.registrations.CheckUserRegistration(ctx, w.userID, tournamentID)
	if err != nil {
		return w.backendError("check registration", err)
	}
	if existing != nil {
		if existing.PaymentStatus == models.PaymentFailed {
			w.notify(NoticeInfo, "Payment for your registration failed, please contact support")
			w.own = existing
			w.state = PaymentFailed
			return ErrPaymentFailed
		}
		w.notify(NoticeInfo, "You are already registered for this tournament")
		return w.settle(ctx, existing)
	}

	input := services.RegisterInput{
		TournamentID: tournamentID,
		PlayerName:   w.profile.Name,
		PlayerGameID: gameID,
	}
	if !money.IsFree(w.tournament.EntryFee) {
		amount, err := money.PaymentAmount(w.tournament.EntryFee)
		if err != nil {
			w.logger.Warn("unparseable entry fee, registration left pending",
				slog.String("tournament_id", tournamentID),
				slog.String("entry_fee", *w.tournament.EntryFee))
			input.PaymentRequired = true
		} else {
			input.PaymentAmount = &amount
		}
	}

	reg, err := w.registrations.RegisterForTournament(ctx, w.userID, input)
	if err != nil {
		if errors.Is(err, services.ErrRegistrationConflict) {
			existing, checkErr := w.registrations.CheckUserRegistration(ctx, w.userID, tournamentID)
			if checkErr == nil && existing != nil {
				return w.settle(ctx, existing)
			}
		}
		return w.backendError("register", err)
	}

	if reg.Confirmed() {
		w.notify(NoticeSuccess, "Registration successful")
	} else {
		w.notify(NoticeSuccess, "Registration received, waiting for payment confirmation")
	}
	return w.settle(ctx, reg)
}

// settle фиксирует свою заявку; для оплаченной перезагружает участников и комнату.
func (w *Registration) settle(ctx context.Context, reg *models.TournamentRegistration) error {
	w.own = reg
	w.state = w.derivedState()
	if !reg.Confirmed() {
		return nil
	}
	return w.refreshConfirmed(ctx)
}

func (w *Registration) refreshConfirmed(ctx context.Context) error {
	confirmed, err := w.registrations.GetTournamentRegistrations(ctx, w.tournament.ID)
	if err != nil {
		return w.backendError("load registrations", err)
	}
	room, err := w.registrations.GetTournamentRoom(ctx, w.tournament.ID)
	if err != nil {
		return w.backendError("load room", err)
	}
	w.confirmed = confirmed
	w.room = room
	return nil
}

// ApplyChange применяет событие ленты изменений к сценарию.
// Учитываются изменения своей заявки и комнаты этого турнира.
// Нельзя вызывать синхронно из публикации, которую вызвал этот же экземпляр.
func (w *Registration) ApplyChange(ctx context.Context, e changefeed.Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if e.Truncated || e.Type == changefeed.Resync {
		return w.load(ctx)
	}

	switch e.Table {
	case changefeed.TableRegistrations:
		var reg models.TournamentRegistration
		if err := e.Decode(&reg); err != nil {
			return fmt.Errorf("failed to decode registration event: %w", err)
		}
		if reg.TournamentID != w.tournament.ID {
			return nil
		}
		if reg.UserID != w.userID || w.userID == "" {
			// Чужая заявка меняет только список участников.
			if e.Type == changefeed.Insert && reg.PaymentStatus != models.PaymentCompleted {
				return nil
			}
			confirmed, err := w.registrations.GetTournamentRegistrations(ctx, w.tournament.ID)
			if err != nil {
				return w.backendError("load registrations", err)
			}
			w.confirmed = confirmed
			return nil
		}
		if e.Type == changefeed.Delete {
			w.own = nil
			w.room = nil
			w.state = w.derivedState()
			return nil
		}
		wasConfirmed := w.own.Confirmed()
		if err := w.settle(ctx, &reg); err != nil {
			return err
		}
		if !wasConfirmed && reg.Confirmed() {
			w.notify(NoticeSuccess, "Payment confirmed, you are registered")
		}
		if !reg.Confirmed() {
			w.room = nil
			if reg.PaymentStatus == models.PaymentFailed {
				w.notify(NoticeBackend, "Payment failed")
			}
		}
		return nil

	case changefeed.TableRooms:
		var room models.TournamentRoom
		if err := e.Decode(&room); err != nil {
			return fmt.Errorf("failed to decode room event: %w", err)
		}
		if room.TournamentID != w.tournament.ID || !w.own.Confirmed() {
			return nil
		}
		if e.Type == changefeed.Delete {
			w.room = nil
		} else {
			w.room = &room
		}
		return nil

	case changefeed.TableTournaments:
		var t models.Tournament
		if err := e.Decode(&t); err != nil {
			return fmt.Errorf("failed to decode tournament event: %w", err)
		}
		if t.ID == w.tournament.ID && e.Type != changefeed.Delete {
			w.tournament = t
		}
		return nil
	}
	return nil
}

// View - производное отображение текущего состояния.
type View struct {
	State            State                           `json:"state"`
	RegisterLabel    string                          `json:"register_label"`
	RegisterDisabled bool                            `json:"register_disabled"`
	ConfirmedCount   int                             `json:"confirmed_count"`
	MaxParticipants  int                             `json:"max_participants"`
	Full             bool                            `json:"full"`
	Players          []models.TournamentRegistration `json:"players"`
	Registration     *models.TournamentRegistration  `json:"registration,omitempty"`
	RoomVisible      bool                            `json:"room_visible"`
	RoomID           string                          `json:"room_id,omitempty"`
	RoomPassword     string                          `json:"room_password,omitempty"`
	Free             bool                            `json:"free"`
}

func (w *Registration) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()

	v := View{
		State:           w.state,
		ConfirmedCount:  len(w.confirmed),
		MaxParticipants: w.tournament.MaxParticipants,
		Full:            w.full(),
		Players:         append([]models.TournamentRegistration(nil), w.confirmed...),
		Free:            money.IsFree(w.tournament.EntryFee),
	}
	if w.own != nil {
		own := *w.own
		v.Registration = &own
	}

	switch w.state {
	case Anonymous:
		v.RegisterLabel, v.RegisterDisabled = LabelLogin, false
	case Confirmed:
		v.RegisterLabel, v.RegisterDisabled = LabelRegistered, true
	case PendingPayment:
		v.RegisterLabel, v.RegisterDisabled = LabelPaymentPending, true
	case PaymentFailed:
		v.RegisterLabel, v.RegisterDisabled = LabelPaymentFailed, true
	default:
		if w.full() {
			v.RegisterLabel, v.RegisterDisabled = LabelFull, true
		} else {
			v.RegisterLabel, v.RegisterDisabled = LabelRegister, w.state == AwaitingGameID
		}
	}

	if w.own.Confirmed() && w.room.HasCredentials() {
		v.RoomVisible = true
		if w.room.RoomID != nil {
			v.RoomID = *w.room.RoomID
		}
		if w.room.RoomPassword != nil {
			v.RoomPassword = *w.room.RoomPassword
		}
	}
	return v
}

func (w *Registration) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Registration) notify(kind NoticeKind, msg string) {
	w.notifier.Notify(Notice{Kind: kind, Message: msg})
}

func (w *Registration) backendError(op string, err error) error {
	w.logger.Error("registration workflow backend error",
		slog.String("op", op),
		slog.String("tournament_id", w.tournament.ID),
		slog.Any("error", err))
	w.notify(NoticeBackend, backendMessage(err))
	return fmt.Errorf("%s: %w", op, err)
}

func backendMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrNotAuthenticated):
		return "Please log in to register for this tournament"
	case errors.Is(err, services.ErrRegistrationConflict):
		return "You are already registered for this tournament"
	case errors.Is(err, services.ErrTournamentNotFound):
		return "Tournament not found"
	}
	return "Something went wrong, please try again"
}
