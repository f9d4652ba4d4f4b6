package handlers

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"

	"github.com/raymond0208/CashCatalyst/src/llm"
	"github.com/raymond0208/CashCatalyst/src/logger"
	"github.com/raymond0208/CashCatalyst/src/processors"
	"github.com/raymond0208/CashCatalyst/src/services"
	"github.com/raymond0208/CashCatalyst/src/utils"
)

type AnalyticsHandler struct {
	analyticsService services.AnalyticsService
}

func NewAnalyticsHandler(analyticsService services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// forecastResponse mirrors services.AnalysisResult but encodes the unlimited
// runway sentinel as the string "unlimited", which +Inf cannot be in JSON.
type forecastResponse struct {
	Narrative  string                    `json:"analysis"`
	Patterns   processors.PatternSummary `json:"patterns"`
	Metrics    metricsResponse           `json:"metrics"`
	Forecast30 []float64                 `json:"forecast_30"`
	Forecast60 []float64                 `json:"forecast_60"`
	Forecast90 []float64                 `json:"forecast_90"`
}

type metricsResponse struct {
	BurnRate       float64     `json:"burn_rate"`
	Runway         interface{} `json:"runway"`
	LiquidityRatio float64     `json:"liquidity_ratio"`
	Volatility     float64     `json:"volatility"`
}

func toForecastResponse(result *services.AnalysisResult) forecastResponse {
	var runway interface{} = result.Metrics.Runway
	if math.IsInf(result.Metrics.Runway, 1) {
		runway = "unlimited"
	}
	return forecastResponse{
		Narrative: result.Narrative,
		Patterns:  result.Patterns,
		Metrics: metricsResponse{
			BurnRate:       result.Metrics.BurnRate,
			Runway:         runway,
			LiquidityRatio: result.Metrics.LiquidityRatio,
			Volatility:     result.Metrics.Volatility,
		},
		Forecast30: result.Forecast30,
		Forecast60: result.Forecast60,
		Forecast90: result.Forecast90,
	}
}

func (h *AnalyticsHandler) HandleForecast(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	result, err := h.analyticsService.GenerateAnalysis(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoTransactions):
			utils.SendJSONError(w, "No transactions to analyze yet", http.StatusBadRequest)
		case errors.Is(err, llm.ErrMissingAPIKey):
			logger.L.Error("Forecast unavailable: narrative service not configured", "userID", userID)
			utils.SendJSONError(w, "Analysis service is not configured", http.StatusServiceUnavailable)
		case errors.Is(err, llm.ErrNarrativeFailed):
			logger.L.Warn("Narrative generation failed", "userID", userID, "error", err)
			utils.SendJSONError(w, "Analysis service temporarily unavailable, please retry", http.StatusBadGateway)
		default:
			logger.L.Error("Error generating analysis", "userID", userID, "error", err)
			utils.SendJSONError(w, "Error generating analysis", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(toForecastResponse(result)); err != nil {
		logger.L.Error("Error encoding forecast response", "userID", userID, "error", err)
	}
}

func (h *AnalyticsHandler) HandleStatement(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	workbook, err := h.analyticsService.GenerateCashflowStatement(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoTransactions):
			utils.SendJSONError(w, "No transactions to report yet", http.StatusBadRequest)
		case errors.Is(err, llm.ErrMissingAPIKey):
			utils.SendJSONError(w, "Analysis service is not configured", http.StatusServiceUnavailable)
		case errors.Is(err, llm.ErrNarrativeFailed):
			utils.SendJSONError(w, "Analysis service temporarily unavailable, please retry", http.StatusBadGateway)
		case errors.Is(err, processors.ErrEmptyStatement):
			logger.L.Warn("Statement text had no recoverable structure", "userID", userID, "error", err)
			utils.SendJSONError(w, "Generated statement could not be structured, please retry", http.StatusBadGateway)
		default:
			logger.L.Error("Error generating statement", "userID", userID, "error", err)
			utils.SendJSONError(w, "Error generating statement", http.StatusInternalServerError)
		}
		return
	}
	defer workbook.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="cash_flow_statement.xlsx"`)
	if err := workbook.Write(w); err != nil {
		logger.L.Error("Error writing statement workbook", "userID", userID, "error", err)
	}
}
