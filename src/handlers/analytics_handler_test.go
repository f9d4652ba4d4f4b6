package handlers

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/raymond0208/CashCatalyst/src/logger"
	"github.com/raymond0208/CashCatalyst/src/services"
)

type stubAnalyticsService struct {
	result *services.AnalysisResult
	err    error
}

func (s *stubAnalyticsService) GenerateAnalysis(ctx context.Context, userID int64) (*services.AnalysisResult, error) {
	return s.result, s.err
}

func (s *stubAnalyticsService) GenerateCashflowStatement(ctx context.Context, userID int64) (*excelize.File, error) {
	return nil, s.err
}

func authedRequest(method, target string) *http.Request {
	r := httptest.NewRequest(method, target, nil)
	ctx := context.WithValue(r.Context(), userIDContextKey, int64(1))
	return r.WithContext(ctx)
}

func TestHandleForecast_UnlimitedRunway(t *testing.T) {
	logger.InitLogger("error")
	h := NewAnalyticsHandler(&stubAnalyticsService{
		result: &services.AnalysisResult{
			Narrative: "No burn, no problem.",
			Metrics:   services.RiskMetrics{Runway: math.Inf(1), LiquidityRatio: 2.5},
		},
	})

	w := httptest.NewRecorder()
	h.HandleForecast(w, authedRequest(http.MethodGet, "/api/analytics/forecast"))
	require.Equal(t, http.StatusOK, w.Code)

	var payload struct {
		Metrics struct {
			Runway         interface{} `json:"runway"`
			LiquidityRatio float64     `json:"liquidity_ratio"`
		} `json:"metrics"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, "unlimited", payload.Metrics.Runway)
	assert.Equal(t, 2.5, payload.Metrics.LiquidityRatio)
}

func TestHandleForecast_NoTransactions(t *testing.T) {
	logger.InitLogger("error")
	h := NewAnalyticsHandler(&stubAnalyticsService{err: services.ErrNoTransactions})

	w := httptest.NewRecorder()
	h.HandleForecast(w, authedRequest(http.MethodGet, "/api/analytics/forecast"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleForecast_Unauthenticated(t *testing.T) {
	logger.InitLogger("error")
	h := NewAnalyticsHandler(&stubAnalyticsService{})

	w := httptest.NewRecorder()
	h.HandleForecast(w, httptest.NewRequest(http.MethodGet, "/api/analytics/forecast", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
