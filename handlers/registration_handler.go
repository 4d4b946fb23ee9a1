package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/esports-arena/middleware"
	"github.com/Dosada05/esports-arena/models"
	"github.com/Dosada05/esports-arena/services"
	"github.com/Dosada05/esports-arena/workflow"
)

type RegistrationHandler struct {
	tournamentService   services.TournamentService
	registrationService services.RegistrationService
	profileService      services.ProfileService
	logger              *slog.Logger
}

func NewRegistrationHandler(
	ts services.TournamentService,
	rs services.RegistrationService,
	ps services.ProfileService,
	logger *slog.Logger,
) *RegistrationHandler {
	return &RegistrationHandler{
		tournamentService:   ts,
		registrationService: rs,
		profileService:      ps,
		logger:              logger,
	}
}

type registrationStateResponse struct {
	View    workflow.View     `json:"view"`
	Notices []workflow.Notice `json:"notices"`
}

type registerRequest struct {
	PlayerGameID string `json:"player_game_id"`
}

type paymentStatusRequest struct {
	PaymentStatus models.PaymentStatus `json:"payment_status"`
}

// newWorkflow собирает сценарий регистрации для текущего зрителя.
func (h *RegistrationHandler) newWorkflow(r *http.Request, tournamentID string, notifier workflow.Notifier) (*workflow.Registration, error) {
	tournament, err := h.tournamentService.GetTournament(r.Context(), tournamentID)
	if err != nil {
		return nil, err
	}
	return workflow.New(workflow.Config{
		UserID:        middleware.UserIDOrAnonymous(r.Context()),
		Tournament:    *tournament,
		Profiles:      h.profileService,
		Registrations: h.registrationService,
		Notifier:      notifier,
		Logger:        h.logger,
	}), nil
}

// State godoc
// @Summary Состояние регистрации текущего пользователя на турнир
// @Description Для анонимного пользователя возвращает состояние "anonymous"; данные комнаты раскрываются только после подтверждения оплаты.
// @Tags registrations
// @Produce json
// @Param tournamentID path string true "Tournament ID"
// @Success 200 {object} registrationStateResponse
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Router /tournaments/{tournamentID}/registration [get]
func (h *RegistrationHandler) State(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	collector := &workflow.Collector{}
	flow, err := h.newWorkflow(r, tournamentID, collector)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := flow.Load(r.Context()); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	resp := registrationStateResponse{View: flow.View(), Notices: collector.Notices}
	if err := writeJSON(w, http.StatusOK, resp, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Register godoc
// @Summary Зарегистрироваться на турнир
// @Description Бесплатные турниры подтверждаются сразу, платные остаются в статусе pending до проверки оплаты.
// @Tags registrations
// @Accept json
// @Produce json
// @Param tournamentID path string true "Tournament ID"
// @Param body body registerRequest true "Игровой ID"
// @Success 201 {object} registrationStateResponse
// @Failure 401 {object} map[string]string "Не авторизован"
// @Failure 409 {object} map[string]string "Уже зарегистрирован или турнир заполнен"
// @Failure 422 {object} map[string]interface{} "Ошибка валидации"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/register [post]
func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	collector := &workflow.Collector{}
	flow, err := h.newWorkflow(r, tournamentID, collector)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := flow.Load(r.Context()); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := flow.PressRegister(); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := flow.SubmitGameID(r.Context(), req.PlayerGameID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	resp := registrationStateResponse{View: flow.View(), Notices: collector.Notices}
	if err := writeJSON(w, http.StatusCreated, resp, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListForTournament godoc
// @Summary Подтверждённые участники турнира
// @Tags registrations
// @Produce json
// @Param tournamentID path string true "Tournament ID"
// @Success 200 {object} map[string]interface{}
// @Router /tournaments/{tournamentID}/registrations [get]
func (h *RegistrationHandler) ListForTournament(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	regs, err := h.registrationService.GetTournamentRegistrations(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"registrations": regs}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListMine godoc
// @Summary Мои регистрации
// @Tags registrations
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /me/registrations [get]
func (h *RegistrationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	regs, err := h.registrationService.GetUserRegistrations(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"registrations": regs}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdatePayment godoc
// @Summary Изменить статус оплаты регистрации
// @Tags admin
// @Accept json
// @Produce json
// @Param registrationID path string true "Registration ID"
// @Param body body paymentStatusRequest true "pending | completed | failed"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /admin/registrations/{registrationID}/payment [patch]
func (h *RegistrationHandler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	registrationID, err := getIDFromURL(r, "registrationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var req paymentStatusRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	reg, err := h.registrationService.UpdatePaymentStatus(r.Context(), registrationID, req.PaymentStatus)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"registration": reg}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpsertRoom godoc
// @Summary Задать данные комнаты турнира
// @Tags admin
// @Accept json
// @Produce json
// @Param tournamentID path string true "Tournament ID"
// @Param body body models.RoomInput true "ID и пароль комнаты"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /admin/tournaments/{tournamentID}/room [put]
func (h *RegistrationHandler) UpsertRoom(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input models.RoomInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	room, err := h.registrationService.UpsertTournamentRoom(r.Context(), tournamentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"room": room}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
