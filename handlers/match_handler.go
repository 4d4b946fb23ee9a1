package handlers

import (
	"context"
	"net/http"

	"github.com/Dosada05/esports-arena/models"
	"github.com/Dosada05/esports-arena/services"
	"github.com/google/uuid"
)

type MatchWriter interface {
	CreateMatch(ctx context.Context, input models.MatchInput) (*models.Match, error)
	UpdateMatch(ctx context.Context, id string, input models.MatchInput) (*models.Match, error)
	DeleteMatch(ctx context.Context, id string) error
}

type MatchHandler struct {
	matchService services.MatchService
	writer       MatchWriter
}

func NewMatchHandler(ms services.MatchService, writer MatchWriter) *MatchHandler {
	return &MatchHandler{matchService: ms, writer: writer}
}

// List godoc
// @Summary Список матчей
// @Tags matches
// @Produce json
// @Param tournament_id query string false "Фильтр по турниру"
// @Success 200 {object} map[string]interface{}
// @Router /matches [get]
func (h *MatchHandler) List(w http.ResponseWriter, r *http.Request) {
	var tournamentID *string
	if raw := r.URL.Query().Get("tournament_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			failedValidationResponse(w, r, map[string]string{"tournament_id": "must be a valid UUID"})
			return
		}
		s := id.String()
		tournamentID = &s
	}
	matches, err := h.matchService.ListMatches(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Get godoc
// @Summary Получить матч
// @Tags matches
// @Produce json
// @Param matchID path string true "Match ID"
// @Success 200 {object} map[string]interface{}
// @Router /matches/{matchID} [get]
func (h *MatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	match, err := h.matchService.GetMatch(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Create godoc
// @Summary Создать матч
// @Tags admin
// @Accept json
// @Produce json
// @Param body body models.MatchInput true "Матч"
// @Success 201 {object} map[string]interface{}
// @Security BearerAuth
// @Router /admin/matches [post]
func (h *MatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input models.MatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	match, err := h.writer.CreateMatch(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Update godoc
// @Summary Обновить матч (счёт, статус)
// @Tags admin
// @Accept json
// @Produce json
// @Param matchID path string true "Match ID"
// @Param body body models.MatchInput true "Изменяемые поля"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /admin/matches/{matchID} [patch]
func (h *MatchHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input models.MatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	match, err := h.writer.UpdateMatch(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Delete godoc
// @Summary Удалить матч
// @Tags admin
// @Param matchID path string true "Match ID"
// @Success 204
// @Security BearerAuth
// @Router /admin/matches/{matchID} [delete]
func (h *MatchHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.writer.DeleteMatch(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
