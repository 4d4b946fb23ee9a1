package handlers

import (
	"context"
	"net/http"

	"github.com/Dosada05/esports-arena/middleware"
	"github.com/Dosada05/esports-arena/models"
	"github.com/Dosada05/esports-arena/services"
)

// PlayerStore - кэш игроков (таблица лидеров) и запись через него.
type PlayerStore interface {
	Loaded() bool
	Players() []models.Player
	CreatePlayer(ctx context.Context, input models.PlayerInput) (*models.Player, error)
	UpdatePlayer(ctx context.Context, id string, input models.PlayerInput) (*models.Player, error)
	DeletePlayer(ctx context.Context, id string) error
}

type PlayerHandler struct {
	playerService  services.PlayerService
	profileService services.ProfileService
	store          PlayerStore
}

func NewPlayerHandler(ps services.PlayerService, profiles services.ProfileService, store PlayerStore) *PlayerHandler {
	return &PlayerHandler{
		playerService:  ps,
		profileService: profiles,
		store:          store,
	}
}

// Leaderboard godoc
// @Summary Таблица лидеров
// @Description Игроки, отсортированные по очкам по убыванию.
// @Tags players
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /players [get]
func (h *PlayerHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	var players []models.Player
	if h.store.Loaded() {
		players = h.store.Players()
	} else {
		var err error
		players, err = h.playerService.ListPlayers(r.Context())
		if err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"players": players}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Get godoc
// @Summary Получить игрока
// @Tags players
// @Produce json
// @Param playerID path string true "Player ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Игрок не найден"
// @Router /players/{playerID} [get]
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	player, err := h.playerService.GetPlayer(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Me godoc
// @Summary Профиль игрока текущего пользователя
// @Tags players
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{} "Профиль не создан"
// @Security BearerAuth
// @Router /me/profile [get]
func (h *PlayerHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	profile, err := h.profileService.GetProfile(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"profile": profile}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Create godoc
// @Summary Создать игрока
// @Tags admin
// @Accept json
// @Produce json
// @Param body body models.PlayerInput true "Игрок"
// @Success 201 {object} map[string]interface{}
// @Security BearerAuth
// @Router /admin/players [post]
func (h *PlayerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input models.PlayerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	player, err := h.store.CreatePlayer(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Update godoc
// @Summary Обновить игрока
// @Tags admin
// @Accept json
// @Produce json
// @Param playerID path string true "Player ID"
// @Param body body models.PlayerInput true "Изменяемые поля"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /admin/players/{playerID} [patch]
func (h *PlayerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input models.PlayerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	player, err := h.store.UpdatePlayer(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Delete godoc
// @Summary Удалить игрока
// @Tags admin
// @Param playerID path string true "Player ID"
// @Success 204
// @Security BearerAuth
// @Router /admin/players/{playerID} [delete]
func (h *PlayerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.store.DeletePlayer(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
