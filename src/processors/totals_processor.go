package processors

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/raymond0208/CashCatalyst/src/models"
	"github.com/raymond0208/CashCatalyst/src/taxonomy"
	"github.com/raymond0208/CashCatalyst/src/utils"
)

// totalsProcessor implements TotalsProcessor over a fixed taxonomy.
type totalsProcessor struct {
	taxonomy *taxonomy.Taxonomy
}

// NewTotalsProcessor creates a new instance of TotalsProcessor bound to the
// given taxonomy (and therefore to its interest-paid policy).
func NewTotalsProcessor(t *taxonomy.Taxonomy) TotalsProcessor {
	return &totalsProcessor{taxonomy: t}
}

// Totals sums the signed amounts of the transactions whose stored type label
// belongs to each category. Sign is preserved, never normalized: category
// membership alone decides the bucket. Labels outside the taxonomy contribute
// to none of the three totals.
//
// Summation runs over a copy sorted ascending by (date, id) and accumulates
// in decimal, so results are exactly reproducible regardless of input order.
func (p *totalsProcessor) Totals(transactions []models.Transaction) (float64, float64, float64) {
	ordered := sortedForSum(transactions)

	cfo, cfi, cff := decimal.Zero, decimal.Zero, decimal.Zero
	for _, tx := range ordered {
		amount := decimal.NewFromFloat(tx.Amount)
		switch p.taxonomy.CategoryOf(tx.Type) {
		case taxonomy.CFO:
			cfo = cfo.Add(amount)
		case taxonomy.CFI:
			cfi = cfi.Add(amount)
		case taxonomy.CFF:
			cff = cff.Add(amount)
		default:
			// unknown label: excluded on purpose
		}
	}

	fCFO, _ := cfo.Float64()
	fCFI, _ := cfi.Float64()
	fCFF, _ := cff.Float64()
	return fCFO, fCFI, fCFF
}

// Balance derives the full totals record:
// balance = initial + totalCFO + totalCFI + totalCFF.
func (p *totalsProcessor) Balance(initialBalance float64, transactions []models.Transaction) models.CashflowTotals {
	cfo, cfi, cff := p.Totals(transactions)
	balance := decimal.NewFromFloat(initialBalance).
		Add(decimal.NewFromFloat(cfo)).
		Add(decimal.NewFromFloat(cfi)).
		Add(decimal.NewFromFloat(cff))
	b, _ := balance.Float64()
	return models.CashflowTotals{
		TotalCFO: cfo,
		TotalCFI: cfi,
		TotalCFF: cff,
		Balance:  b,
	}
}

// MonthlyBalances walks the transactions in date order and records the running
// balance at the end of every month that has at least one transaction. Every
// amount counts here regardless of taxonomy membership; this series tracks the
// raw running balance, not the statement buckets.
func (p *totalsProcessor) MonthlyBalances(initialBalance float64, transactions []models.Transaction) []models.MonthlyBalance {
	ordered := sortedForSum(transactions)

	var out []models.MonthlyBalance
	running := decimal.NewFromFloat(initialBalance)
	currentMonth := ""

	flush := func() {
		if currentMonth == "" {
			return
		}
		monthEnd := utils.EndOfMonth(utils.ParseDate(currentMonth + "-01"))
		b, _ := running.Float64()
		out = append(out, models.MonthlyBalance{
			Date:    monthEnd.Format(utils.DefaultDateFormat),
			Balance: b,
		})
	}

	for _, tx := range ordered {
		month := tx.Date
		if len(month) >= 7 {
			month = month[:7]
		}
		if month != currentMonth {
			flush()
			currentMonth = month
		}
		running = running.Add(decimal.NewFromFloat(tx.Amount))
	}
	flush()
	return out
}

// sortedForSum returns a copy ordered ascending by date, then id. The fixed
// order makes every aggregate bit-for-bit reproducible across calls.
func sortedForSum(transactions []models.Transaction) []models.Transaction {
	ordered := make([]models.Transaction, len(transactions))
	copy(ordered, transactions)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Date != ordered[j].Date {
			return ordered[i].Date < ordered[j].Date
		}
		return ordered[i].ID < ordered[j].ID
	})
	return ordered
}
