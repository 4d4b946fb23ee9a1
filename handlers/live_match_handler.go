package handlers

import (
	"net/http"

	"github.com/Dosada05/esports-arena/models"
	"github.com/Dosada05/esports-arena/services"
)

type LiveMatchSource interface {
	Loaded() bool
	LiveMatches() []models.LiveMatch
}

type LiveMatchHandler struct {
	liveMatchService services.LiveMatchService
	store            LiveMatchSource
}

func NewLiveMatchHandler(ls services.LiveMatchService, store LiveMatchSource) *LiveMatchHandler {
	return &LiveMatchHandler{liveMatchService: ls, store: store}
}

// ListActive godoc
// @Summary Активные трансляции
// @Tags live
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /live-matches [get]
func (h *LiveMatchHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	var items []models.LiveMatch
	if h.store.Loaded() {
		items = h.store.LiveMatches()
	} else {
		var err error
		items, err = h.liveMatchService.ListLiveMatches(r.Context(), true)
		if err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"live_matches": items}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListAll godoc
// @Summary Все трансляции
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /admin/live-matches [get]
func (h *LiveMatchHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	items, err := h.liveMatchService.ListLiveMatches(r.Context(), false)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"live_matches": items}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Create godoc
// @Summary Создать трансляцию
// @Tags admin
// @Accept json
// @Produce json
// @Param body body models.LiveMatchInput true "Трансляция"
// @Success 201 {object} map[string]interface{}
// @Security BearerAuth
// @Router /admin/live-matches [post]
func (h *LiveMatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input models.LiveMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	item, err := h.liveMatchService.CreateLiveMatch(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"live_match": item}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Update godoc
// @Summary Обновить трансляцию
// @Tags admin
// @Accept json
// @Produce json
// @Param liveMatchID path string true "Live match ID"
// @Param body body models.LiveMatchInput true "Изменяемые поля"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /admin/live-matches/{liveMatchID} [patch]
func (h *LiveMatchHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "liveMatchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input models.LiveMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	item, err := h.liveMatchService.UpdateLiveMatch(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"live_match": item}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Toggle godoc
// @Summary Включить/выключить трансляцию
// @Tags admin
// @Produce json
// @Param liveMatchID path string true "Live match ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /admin/live-matches/{liveMatchID}/toggle [post]
func (h *LiveMatchHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "liveMatchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	item, err := h.liveMatchService.ToggleLiveMatch(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"live_match": item}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Delete godoc
// @Summary Удалить трансляцию
// @Tags admin
// @Param liveMatchID path string true "Live match ID"
// @Success 204
// @Security BearerAuth
// @Router /admin/live-matches/{liveMatchID} [delete]
func (h *LiveMatchHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "liveMatchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.liveMatchService.DeleteLiveMatch(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
