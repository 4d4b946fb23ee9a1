package handlers

import (
	"net/http"

	"github.com/Dosada05/esports-arena/middleware"
	"github.com/Dosada05/esports-arena/models"
	"github.com/Dosada05/esports-arena/services"
)

type WalletHandler struct {
	walletService services.WalletService
}

func NewWalletHandler(ws services.WalletService) *WalletHandler {
	return &WalletHandler{walletService: ws}
}

type reviewTransactionRequest struct {
	Status     models.TransactionStatus `json:"status"`
	AdminNotes *string                  `json:"admin_notes"`
}

// ListTransactions godoc
// @Summary Транзакции кошельков
// @Tags admin
// @Produce json
// @Param status query string false "pending | approved | rejected"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /admin/wallet/transactions [get]
func (h *WalletHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	var status *models.TransactionStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := models.TransactionStatus(raw)
		status = &s
	}
	txs, err := h.walletService.ListTransactions(r.Context(), status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"transactions": txs}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ReviewTransaction godoc
// @Summary Одобрить или отклонить транзакцию
// @Tags admin
// @Accept json
// @Produce json
// @Param transactionID path string true "Transaction ID"
// @Param body body reviewTransactionRequest true "approved | rejected"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]string "Транзакция уже обработана"
// @Security BearerAuth
// @Router /admin/wallet/transactions/{transactionID} [patch]
func (h *WalletHandler) ReviewTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "transactionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	adminID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	var req reviewTransactionRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	tx, err := h.walletService.ReviewTransaction(r.Context(), id, req.Status, adminID, req.AdminNotes)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"transaction": tx}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Balance godoc
// @Summary Баланс кошелька текущего пользователя
// @Tags wallet
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /me/wallet [get]
func (h *WalletHandler) Balance(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	balance, err := h.walletService.GetBalance(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"wallet": balance}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
