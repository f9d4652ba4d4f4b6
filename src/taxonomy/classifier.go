package taxonomy

import "strings"

// classifierEntries pairs each canonical label with the keyword substrings
// that map free text onto it. Matching is first-entry-wins, so the slice
// order is load-bearing: ambiguous inputs ("sell investment property")
// deterministically resolve to the earliest declared label.
var classifierEntries = []struct {
	label    Label
	keywords []string
}{
	{LabelCashCustomer, []string{"cash", "customer", "receipt"}},
	{LabelSalarySuppliers, []string{"salary", "supplier", "employee", "payment"}},
	{LabelInterestPaid, []string{"interest", "paid"}},
	{LabelIncomeTax, []string{"income", "tax"}},
	{LabelOtherCFO, []string{"operating", "cfo"}},
	{LabelBuyProperty, []string{"buy", "purchase", "property", "equipment"}},
	{LabelSellProperty, []string{"sell", "sale", "property", "equipment"}},
	{LabelBuyInvest, []string{"buy", "purchase", "investment"}},
	{LabelSellInvest, []string{"sell", "sale", "investment"}},
	{LabelOtherCFI, []string{"investing", "cfi"}},
	{LabelIssueShares, []string{"issue", "share"}},
	{LabelBorrowings, []string{"borrow", "loan"}},
	{LabelRepayBorrowings, []string{"repay", "repayment"}},
	{LabelPayDividends, []string{"pay", "dividend"}},
	{LabelOtherCFF, []string{"financing", "cff"}},
}

// Classifier normalizes arbitrary transaction-type text (manual entry, a
// spreadsheet column, model output) to a canonical taxonomy label. It is a
// pure value, safe for concurrent use.
type Classifier struct {
	taxonomy *Taxonomy
}

// NewClassifier builds a classifier over the given taxonomy.
func NewClassifier(t *Taxonomy) *Classifier {
	return &Classifier{taxonomy: t}
}

// Classify maps raw free text to a canonical label. The input is lowercased
// and each entry's keywords are tested as substrings in declaration order;
// the first label with any matching keyword wins. Inputs matching nothing
// (including the empty string) fall back to DefaultLabel, so Classify never
// fails.
func (c *Classifier) Classify(raw string) Label {
	lowered := strings.ToLower(raw)
	for _, e := range classifierEntries {
		for _, kw := range e.keywords {
			if strings.Contains(lowered, kw) {
				return e.label
			}
		}
	}
	return DefaultLabel
}

// CategoryOf is a convenience combining Classify with the taxonomy lookup:
// it always lands in one of CFO/CFI/CFF because Classify is total.
func (c *Classifier) CategoryOf(raw string) Category {
	return c.taxonomy.CategoryOf(c.Classify(raw))
}
