package handlers

import (
	"net/http"

	"github.com/Dosada05/esports-arena/models"
	"github.com/Dosada05/esports-arena/services"
)

type SponsorHandler struct {
	sponsorService services.SponsorService
}

func NewSponsorHandler(ss services.SponsorService) *SponsorHandler {
	return &SponsorHandler{sponsorService: ss}
}

// ListActive godoc
// @Summary Активные спонсоры
// @Tags sponsors
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /sponsors [get]
func (h *SponsorHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

// ListAll godoc
// @Summary Все спонсоры
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /admin/sponsors [get]
func (h *SponsorHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

func (h *SponsorHandler) list(w http.ResponseWriter, r *http.Request, activeOnly bool) {
	sponsors, err := h.sponsorService.ListSponsors(r.Context(), activeOnly)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"sponsors": sponsors}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Create godoc
// @Summary Создать спонсора
// @Tags admin
// @Accept json
// @Produce json
// @Param body body models.SponsorInput true "Спонсор"
// @Success 201 {object} map[string]interface{}
// @Security BearerAuth
// @Router /admin/sponsors [post]
func (h *SponsorHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input models.SponsorInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	sponsor, err := h.sponsorService.CreateSponsor(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"sponsor": sponsor}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Update godoc
// @Summary Обновить спонсора
// @Tags admin
// @Accept json
// @Produce json
// @Param sponsorID path string true "Sponsor ID"
// @Param body body models.SponsorInput true "Изменяемые поля"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /admin/sponsors/{sponsorID} [patch]
func (h *SponsorHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "sponsorID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input models.SponsorInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	sponsor, err := h.sponsorService.UpdateSponsor(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"sponsor": sponsor}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Toggle godoc
// @Summary Включить/выключить спонсора
// @Tags admin
// @Produce json
// @Param sponsorID path string true "Sponsor ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /admin/sponsors/{sponsorID}/toggle [post]
func (h *SponsorHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "sponsorID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	sponsor, err := h.sponsorService.ToggleSponsor(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"sponsor": sponsor}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Delete godoc
// @Summary Удалить спонсора
// @Tags admin
// @Param sponsorID path string true "Sponsor ID"
// @Success 204
// @Security BearerAuth
// @Router /admin/sponsors/{sponsorID} [delete]
func (h *SponsorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "sponsorID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.sponsorService.DeleteSponsor(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
