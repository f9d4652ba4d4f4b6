package services

import (
	"context"
	"errors"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/raymond0208/CashCatalyst/src/models"
	"github.com/raymond0208/CashCatalyst/src/processors"
)

var (
	// ErrParsingFailed wraps any failure to turn an uploaded file into rows.
	ErrParsingFailed = errors.New("file parsing failed")
	// ErrNoValidRows means the file parsed but every row was unusable.
	ErrNoValidRows = errors.New("no valid rows in uploaded file")
	// ErrTransactionNotFound covers lookups and owner-scoped updates/deletes.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrNoTransactions means the user has nothing to analyze yet.
	ErrNoTransactions = errors.New("no transactions to analyze")
	// ErrInvalidDate reports a date that does not parse as YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid transaction date")
)

// BalanceSummary is the standard balance payload: the stored starting
// balance plus category totals and the resulting current balance.
type BalanceSummary struct {
	InitialBalance float64               `json:"initial_balance"`
	Totals         models.CashflowTotals `json:"totals"`
}

// UploadPreview is the first phase of the two-phase import flow: cleaned,
// classified rows returned to the client for confirmation before a bulk save.
type UploadPreview struct {
	BatchID      string               `json:"batch_id"`
	Transactions []models.Transaction `json:"transactions"`
	SkippedRows  int                  `json:"skipped_rows"`
}

// RiskMetrics bundles the cash risk indicators that feed the analysis.
// Runway may be math.Inf(1); handlers encode that as the string "unlimited".
type RiskMetrics struct {
	BurnRate       float64 `json:"burn_rate"`
	Runway         float64 `json:"runway"`
	LiquidityRatio float64 `json:"liquidity_ratio"`
	Volatility     float64 `json:"volatility"`
}

// AnalysisResult is the full forecast payload: model narrative, detected
// patterns, risk metrics and the projected daily net flows. The 30 and 60
// day series are prefixes of the 90 day series.
type AnalysisResult struct {
	Narrative  string                    `json:"analysis"`
	Patterns   processors.PatternSummary `json:"patterns"`
	Metrics    RiskMetrics               `json:"metrics"`
	Forecast30 []float64                 `json:"forecast_30"`
	Forecast60 []float64                 `json:"forecast_60"`
	Forecast90 []float64                 `json:"forecast_90"`
}

// TransactionService owns transaction and balance persistence. Every method
// is scoped to the owning user; cached summaries are invalidated on writes.
type TransactionService interface {
	Create(userID int64, tx models.Transaction) (models.Transaction, error)
	List(userID int64, limit, offset int) ([]models.Transaction, error)
	ListAll(userID int64) ([]models.Transaction, error)
	Update(userID, id int64, tx models.Transaction) (models.Transaction, error)
	Delete(userID, id int64) error
	DeleteAll(userID int64) error
	BulkCreate(userID int64, txs []models.Transaction) (int, error)
	BalanceSummary(userID int64) (*BalanceSummary, error)
	BalanceAsOf(userID int64, date string) (*BalanceSummary, error)
	MonthlyBalances(userID int64) ([]models.MonthlyBalance, error)
	InitialBalance(userID int64) (float64, error)
	SetInitialBalance(userID int64, balance float64, clearTransactions bool) error
}

// UploadService parses and cleans bulk import files. Persistence is the
// second phase, done through TransactionService.BulkCreate after the client
// confirms the preview.
type UploadService interface {
	Preview(fileReader io.Reader, filename string, userID int64) (*UploadPreview, error)
}

// AnalyticsService runs the forecast and statement generation flows, each
// making at most one bounded external model call.
type AnalyticsService interface {
	GenerateAnalysis(ctx context.Context, userID int64) (*AnalysisResult, error)
	GenerateCashflowStatement(ctx context.Context, userID int64) (*excelize.File, error)
}

// ExportService renders a user's transactions as downloadable files.
type ExportService interface {
	ExportCSV(w io.Writer, userID int64) error
	ExportExcel(userID int64) (*excelize.File, error)
}
