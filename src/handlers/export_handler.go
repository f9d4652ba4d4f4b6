package handlers

import (
	"net/http"

	"github.com/raymond0208/CashCatalyst/src/logger"
	"github.com/raymond0208/CashCatalyst/src/services"
	"github.com/raymond0208/CashCatalyst/src/utils"
)

type ExportHandler struct {
	exportService services.ExportService
}

func NewExportHandler(exportService services.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

func (h *ExportHandler) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)
	if err := h.exportService.ExportCSV(w, userID); err != nil {
		// Headers are already out; all we can do is log.
		logger.L.Error("Error exporting CSV", "userID", userID, "error", err)
	}
}

func (h *ExportHandler) HandleExportExcel(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	workbook, err := h.exportService.ExportExcel(userID)
	if err != nil {
		logger.L.Error("Error building Excel export", "userID", userID, "error", err)
		utils.SendJSONError(w, "Error exporting transactions", http.StatusInternalServerError)
		return
	}
	defer workbook.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.xlsx"`)
	if err := workbook.Write(w); err != nil {
		logger.L.Error("Error writing Excel export", "userID", userID, "error", err)
	}
}
