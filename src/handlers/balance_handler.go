package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/raymond0208/CashCatalyst/src/logger"
	"github.com/raymond0208/CashCatalyst/src/models"
	"github.com/raymond0208/CashCatalyst/src/services"
	"github.com/raymond0208/CashCatalyst/src/utils"
)

type BalanceHandler struct {
	transactionService services.TransactionService
}

func NewBalanceHandler(transactionService services.TransactionService) *BalanceHandler {
	return &BalanceHandler{transactionService: transactionService}
}

func (h *BalanceHandler) HandleGetBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	summary, err := h.transactionService.BalanceSummary(userID)
	if err != nil {
		logger.L.Error("Error computing balance summary", "userID", userID, "error", err)
		utils.SendJSONError(w, "Error computing balance", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Cache-Control", "no-cache, private")
	if etag, err := utils.GenerateETag(summary); err == nil {
		quoted := `"` + etag + `"`
		w.Header().Set("ETag", quoted)
		for _, clientETag := range strings.Split(r.Header.Get("If-None-Match"), ",") {
			if strings.TrimSpace(clientETag) == quoted {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(summary); err != nil {
		logger.L.Error("Error encoding balance response", "userID", userID, "error", err)
	}
}

// HandleSetInitialBalance overwrites the starting balance. With
// clear_transactions set, existing transactions are wiped in the same SQL
// transaction as the overwrite.
func (h *BalanceHandler) HandleSetInitialBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var requestBody struct {
		Balance           float64 `json:"balance"`
		ClearTransactions bool    `json:"clear_transactions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.transactionService.SetInitialBalance(userID, requestBody.Balance, requestBody.ClearTransactions); err != nil {
		logger.L.Error("Error setting initial balance", "userID", userID, "error", err)
		utils.SendJSONError(w, "Error setting initial balance", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"balance":              requestBody.Balance,
		"cleared_transactions": requestBody.ClearTransactions,
	})
}

func (h *BalanceHandler) HandleBalanceByDate(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var requestBody struct {
		Date string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	summary, err := h.transactionService.BalanceAsOf(userID, requestBody.Date)
	if err != nil {
		if errors.Is(err, services.ErrInvalidDate) {
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.L.Error("Error computing balance by date", "userID", userID, "error", err)
		utils.SendJSONError(w, "Error computing balance", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}

func (h *BalanceHandler) HandleMonthlyBalances(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	monthly, err := h.transactionService.MonthlyBalances(userID)
	if err != nil {
		logger.L.Error("Error computing monthly balances", "userID", userID, "error", err)
		utils.SendJSONError(w, "Error computing monthly balances", http.StatusInternalServerError)
		return
	}
	if monthly == nil {
		monthly = []models.MonthlyBalance{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(monthly)
}
