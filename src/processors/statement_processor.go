package processors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/raymond0208/CashCatalyst/src/models"
	"github.com/raymond0208/CashCatalyst/src/utils"
)

// Total labels the statement generator is asked to emit and the parser keys
// reconciliation on.
const (
	TotalEndingCashBalance  = "Ending Cash Balance"
	TotalOverallNetCashFlow = "Overall Net Cash Flow"
)

// ErrEmptyStatement reports that nothing structured could be recovered from
// a statement text. The raw text travels with the error for diagnostics.
var ErrEmptyStatement = errors.New("no line items recovered from statement text")

// SkipReason says why a statement line was dropped or degraded.
type SkipReason string

const (
	SkipNoColon       SkipReason = "no colon"
	SkipTooManyColons SkipReason = "unexpected colon count"
	SkipBadAmount     SkipReason = "unparseable amount"
)

// SkippedLine records one dropped or degraded line so callers can inspect
// how lossy a parse was instead of the information vanishing into logs.
type SkippedLine struct {
	LineNumber int        `json:"line_number"`
	Text       string     `json:"text"`
	Reason     SkipReason `json:"reason"`
}

// StatementReport is the structured recovery from one statement text:
// transaction line items, total lines, and everything that was skipped.
type StatementReport struct {
	LineItems []models.StatementLineItem `json:"line_items"`
	Totals    map[string]float64         `json:"totals"`
	Skipped   []SkippedLine              `json:"skipped,omitempty"`
}

// ParseStatement recovers structured line items from the free text a
// narrative model returns for a cash flow statement. The expected shapes are
//
//	Category: Subcategory: Amount   (transaction line, exactly two colons)
//	Label: Amount                   (total line, exactly one colon)
//
// separated by line breaks. The parse is tolerant by construction: a
// malformed line is recorded in Skipped and never aborts the rest. Lines
// with three or more colons (a description containing a colon, say) are
// dropped; that is a known loss source, which is why Skipped exists.
//
// ParseStatement returns ErrEmptyStatement (wrapped, with the raw text in the
// message) when not a single line item could be recovered; the report still
// carries whatever totals and skip records were found.
func ParseStatement(raw string) (StatementReport, error) {
	report := StatementReport{Totals: map[string]float64{}}

	for i, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		switch strings.Count(trimmed, ":") {
		case 0:
			// Prose, headings, blank filler. Recorded but expected.
			report.Skipped = append(report.Skipped, SkippedLine{i + 1, trimmed, SkipNoColon})

		case 1:
			label, amountText, _ := strings.Cut(trimmed, ":")
			amount, ok := parseLineAmount(strings.TrimSpace(amountText))
			if !ok {
				report.Skipped = append(report.Skipped, SkippedLine{i + 1, trimmed, SkipBadAmount})
			}
			report.Totals[strings.TrimSpace(label)] = amount

		case 2:
			category, rest, _ := strings.Cut(trimmed, ":")
			lastColon := strings.LastIndex(rest, ":")
			subcategory := strings.TrimSpace(rest[:lastColon])
			amountText := strings.TrimSpace(rest[lastColon+1:])

			amount, ok := parseLineAmount(amountText)
			if !ok {
				report.Skipped = append(report.Skipped, SkippedLine{i + 1, trimmed, SkipBadAmount})
			}
			report.LineItems = append(report.LineItems, models.StatementLineItem{
				Category:    strings.TrimSpace(category),
				Subcategory: subcategory,
				Amount:      amount,
			})

		default:
			report.Skipped = append(report.Skipped, SkippedLine{i + 1, trimmed, SkipTooManyColons})
		}
	}

	if len(report.LineItems) == 0 {
		return report, fmt.Errorf("%w; raw text: %q", ErrEmptyStatement, raw)
	}
	return report, nil
}

// parseLineAmount strips currency formatting and parses the amount text.
// A failed parse degrades to 0.0 rather than dropping the line's labels;
// the caller records the failure.
func parseLineAmount(text string) (float64, bool) {
	f, err := utils.ParseAmountFloat(text)
	if err != nil {
		return 0, false
	}
	return f, true
}

// EndingBalance resolves the closing balance for a parsed statement. An
// explicit "Ending Cash Balance" total wins; otherwise the balance is
// recomputed as initialBalance plus the "Overall Net Cash Flow" total
// (taken as 0 when absent).
func EndingBalance(report StatementReport, initialBalance float64) float64 {
	if ending, ok := report.Totals[TotalEndingCashBalance]; ok {
		return ending
	}
	return initialBalance + report.Totals[TotalOverallNetCashFlow]
}
