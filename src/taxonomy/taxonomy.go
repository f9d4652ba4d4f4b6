// Package taxonomy defines the fixed cash-flow-statement taxonomy: the set of
// canonical transaction-type labels, the three statement categories they map
// into, and the keyword-based classifier that normalizes free-text labels.
package taxonomy

// Category is one of the three buckets of a cash flow statement. Unknown
// covers labels outside the taxonomy; they contribute to none of the totals.
type Category int

const (
	// CategoryUnknown marks a label that belongs to no taxonomy set. Amounts
	// carrying such a label are silently excluded from all three totals.
	CategoryUnknown Category = iota
	CFO                      // cash flow from operating activities
	CFI                      // cash flow from investing activities
	CFF                      // cash flow from financing activities
)

func (c Category) String() string {
	switch c {
	case CFO:
		return "CFO"
	case CFI:
		return "CFI"
	case CFF:
		return "CFF"
	default:
		return "Unknown"
	}
}

// Label is a canonical transaction-type string, e.g. "Cash-customer".
type Label string

// Canonical labels. The spellings (including the lowercase "borrowings") are
// part of the stored-data contract and must not be changed.
const (
	LabelCashCustomer    Label = "Cash-customer"
	LabelSalarySuppliers Label = "Salary-suppliers"
	LabelInterestPaid    Label = "Interest-paid"
	LabelIncomeTax       Label = "Income-tax"
	LabelOtherCFO        Label = "Other-cfo"

	LabelBuyProperty  Label = "Buy-property-equipments"
	LabelSellProperty Label = "Sell-property-equipments"
	LabelBuyInvest    Label = "Buy-investment"
	LabelSellInvest   Label = "Sell-investment"
	LabelOtherCFI     Label = "Other-cfi"

	LabelIssueShares     Label = "Issue-shares"
	LabelBorrowings      Label = "borrowings"
	LabelRepayBorrowings Label = "Repay-borrowings"
	LabelPayDividends    Label = "Pay-dividends"
	LabelOtherCFF        Label = "Other-cff"
)

// DefaultLabel is the fallback returned by the classifier when no keyword
// matches. It keeps the classifier total: every input resolves to a label.
const DefaultLabel = LabelOtherCFO

// Policy decides which category owns interest payments. Accounting practice
// allows presenting interest paid under either operating or financing
// activities, so the choice is made once, at configuration time, and injected
// everywhere instead of being hardcoded at call sites.
type Policy int

const (
	// InterestPaidOperating places Interest-paid under CFO (the default
	// presentation and the one used by the statement generator).
	InterestPaidOperating Policy = iota
	// InterestPaidFinancing places Interest-paid under CFF.
	InterestPaidFinancing
)

// Taxonomy is the closed label->category mapping for a single policy. The zero
// value is not usable; construct with New.
type Taxonomy struct {
	policy     Policy
	categories map[Label]Category
}

// New builds the taxonomy for the given policy. Every canonical label belongs
// to exactly one category.
func New(policy Policy) *Taxonomy {
	t := &Taxonomy{
		policy: policy,
		categories: map[Label]Category{
			LabelCashCustomer:    CFO,
			LabelSalarySuppliers: CFO,
			LabelIncomeTax:       CFO,
			LabelOtherCFO:        CFO,

			LabelBuyProperty:  CFI,
			LabelSellProperty: CFI,
			LabelBuyInvest:    CFI,
			LabelSellInvest:   CFI,
			LabelOtherCFI:     CFI,

			LabelIssueShares:     CFF,
			LabelBorrowings:      CFF,
			LabelRepayBorrowings: CFF,
			LabelPayDividends:    CFF,
			LabelOtherCFF:        CFF,
		},
	}
	if policy == InterestPaidFinancing {
		t.categories[LabelInterestPaid] = CFF
	} else {
		t.categories[LabelInterestPaid] = CFO
	}
	return t
}

// Policy reports the interest-paid policy this taxonomy was built with.
func (t *Taxonomy) Policy() Policy { return t.policy }

// CategoryOf returns the category owning the label, or CategoryUnknown for a
// label outside the taxonomy. Callers must treat CategoryUnknown as "excluded
// from every total", not as an error.
func (t *Taxonomy) CategoryOf(label Label) Category {
	if c, ok := t.categories[label]; ok {
		return c
	}
	return CategoryUnknown
}

// Labels returns all canonical labels in declaration order. The order matches
// the classifier's matching order.
func (t *Taxonomy) Labels() []Label {
	out := make([]Label, 0, len(classifierEntries))
	for _, e := range classifierEntries {
		out = append(out, e.label)
	}
	return out
}
