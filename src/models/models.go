package models

import "github.com/raymond0208/CashCatalyst/src/taxonomy"

// RawTransaction represents a single row recovered from an uploaded CSV or
// spreadsheet, before cleaning. All fields are kept as text; cleaning and
// type normalization happen in the upload pipeline.
type RawTransaction struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Type        string `json:"type"` // free text, may be empty
}

// Transaction is a dated cash movement owned by one user. Amount follows the
// inflow-positive / outflow-negative convention; the sign is preserved as-is
// when summing into the CFO/CFI/CFF buckets. Type always holds a canonical
// taxonomy label (normalized through the classifier on every write path).
type Transaction struct {
	ID          int64          `json:"id,omitempty"`
	UserID      int64          `json:"-"`
	Date        string         `json:"date"` // calendar date, YYYY-MM-DD
	Description string         `json:"description"`
	Amount      float64        `json:"amount"`
	Type        taxonomy.Label `json:"type"`
}

// InitialBalance is the starting point for every balance computation. At most
// one row per user; created lazily on first access and overwritten, never
// accumulated, on update.
type InitialBalance struct {
	ID      int64   `json:"id,omitempty"`
	UserID  int64   `json:"-"`
	Balance float64 `json:"balance"`
}

// CashflowTotals holds the per-category sums and the resulting balance for a
// transaction set.
type CashflowTotals struct {
	TotalCFO float64 `json:"total_cfo"`
	TotalCFI float64 `json:"total_cfi"`
	TotalCFF float64 `json:"total_cff"`
	Balance  float64 `json:"balance"`
}

// StatementLineItem is one structured row recovered from the narrative text
// of a generated cash flow statement. Derived, never persisted.
type StatementLineItem struct {
	Category    string  `json:"Category"`
	Subcategory string  `json:"Subcategory"`
	Amount      float64 `json:"Amount"`
}

// MonthlyBalance is the month-end running balance used by the balance chart.
type MonthlyBalance struct {
	Date    string  `json:"date"` // last day of month, YYYY-MM-DD
	Balance float64 `json:"balance"`
}
