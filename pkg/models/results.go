package models

import (
	"fmt"
	"slices"
	"sort"

	"github.com/seenimoa/mortgagecli/pkg/utils"
)

// Verdict is the categorical viability signal of an analysis.
type Verdict int

const (
	VerdictGreen Verdict = iota + 1
	VerdictYellow
	VerdictRed
	VerdictOverBudget
)

// Verdicts lists every verdict in severity order.
func Verdicts() []Verdict {
	return []Verdict{VerdictGreen, VerdictYellow, VerdictRed, VerdictOverBudget}
}

// String returns the wire form of the verdict.
func (v Verdict) String() string {
	switch v {
	case VerdictGreen:
		return "green"
	case VerdictYellow:
		return "yellow"
	case VerdictRed:
		return "red"
	case VerdictOverBudget:
		return "over_budget"
	}
	return fmt.Sprintf("Verdict(%d)", int(v))
}

// Label returns the human-readable verdict shown in reports.
func (v Verdict) Label() string {
	switch v {
	case VerdictGreen:
		return "GOOD"
	case VerdictYellow:
		return "MARGINAL"
	case VerdictRed:
		return "POOR"
	case VerdictOverBudget:
		return "OVER BUDGET"
	}
	return "UNKNOWN"
}

// Viable reports whether the verdict is GREEN or YELLOW.
func (v Verdict) Viable() bool {
	return v == VerdictGreen || v == VerdictYellow
}

// MarshalText implements encoding.TextMarshaler.
func (v Verdict) MarshalText() ([]byte, error) {
	switch v {
	case VerdictGreen, VerdictYellow, VerdictRed, VerdictOverBudget:
		return []byte(v.String()), nil
	}
	return nil, fmt.Errorf("invalid verdict %d", int(v))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Verdict) UnmarshalText(b []byte) error {
	for _, candidate := range Verdicts() {
		if candidate.String() == string(b) {
			*v = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown verdict %q", string(b))
}

// UpfrontCosts itemizes the cash needed at purchase.
type UpfrontCosts struct {
	DownPayment     float64 `json:"down_payment"`
	NotaryLegal     float64 `json:"notary_legal"`
	BankArrangement float64 `json:"bank_arrangement"`
	SurveyValuation float64 `json:"survey_valuation"`
	MortgageBroker  float64 `json:"mortgage_broker"`
	Other           float64 `json:"other"`
}

// Total returns the total upfront investment.
func (u UpfrontCosts) Total() float64 {
	return u.DownPayment + u.NotaryLegal + u.BankArrangement + u.SurveyValuation + u.MortgageBroker + u.Other
}

// MonthlyBreakdown splits the monthly cost of ownership.
type MonthlyBreakdown struct {
	MortgagePayment float64 `json:"mortgage_payment"`
	FixedCosts      float64 `json:"fixed_costs"`
}

// Total is the monthly cost of ownership, i.e. the break-even rent.
func (m MonthlyBreakdown) Total() float64 {
	return m.MortgagePayment + m.FixedCosts
}

// AnalysisResult is the outcome of analyzing one property against one profile.
type AnalysisResult struct {
	PropertyPrice      float64 `json:"property_price"`
	ExpectedRent       float64 `json:"expected_rent"`
	DownPaymentPercent float64 `json:"down_payment_percent"`

	UpfrontCosts UpfrontCosts     `json:"upfront_costs"`
	Monthly      MonthlyBreakdown `json:"monthly"`

	BreakEvenRent           float64 `json:"break_even_rent"`
	CashOnCashReturn        float64 `json:"cash_on_cash_return"`
	MonthlySurplusShortfall float64 `json:"monthly_surplus_shortfall"`

	Verdict      Verdict  `json:"verdict"`
	WithinBudget bool     `json:"within_budget"`
	Warnings     []string `json:"warnings"`
}

// Rounded returns a copy with money at cents and the return at basis points.
func (r AnalysisResult) Rounded() AnalysisResult {
	out := r
	out.UpfrontCosts = UpfrontCosts{
		DownPayment:     utils.RoundCents(r.UpfrontCosts.DownPayment),
		NotaryLegal:     utils.RoundCents(r.UpfrontCosts.NotaryLegal),
		BankArrangement: utils.RoundCents(r.UpfrontCosts.BankArrangement),
		SurveyValuation: utils.RoundCents(r.UpfrontCosts.SurveyValuation),
		MortgageBroker:  utils.RoundCents(r.UpfrontCosts.MortgageBroker),
		Other:           utils.RoundCents(r.UpfrontCosts.Other),
	}
	out.Monthly = MonthlyBreakdown{
		MortgagePayment: utils.RoundCents(r.Monthly.MortgagePayment),
		FixedCosts:      utils.RoundCents(r.Monthly.FixedCosts),
	}
	out.BreakEvenRent = utils.RoundCents(r.BreakEvenRent)
	out.CashOnCashReturn = utils.RoundBasisPoints(r.CashOnCashReturn)
	out.MonthlySurplusShortfall = utils.RoundCents(r.MonthlySurplusShortfall)
	out.Warnings = slices.Clone(r.Warnings)
	return out
}

// MatrixCell is one point of a sensitivity grid.
type MatrixCell struct {
	Price              float64 `json:"price"`
	DownPaymentPercent float64 `json:"down_payment_percent"`
	BreakEvenRent      float64 `json:"break_even_rent"`
	Verdict            Verdict `json:"verdict"`
	WithinBudget       bool    `json:"within_budget"`
}

// Matrix is a sensitivity grid: one row per down payment, one column per price.
type Matrix struct {
	Prices       []float64      `json:"prices"`
	DownPayments []float64      `json:"down_payments"`
	TargetRent   float64        `json:"target_rent"`
	Cells        [][]MatrixCell `json:"cells"`
}

// Size returns the number of cells in the grid.
func (m *Matrix) Size() int {
	n := 0
	for _, row := range m.Cells {
		n += len(row)
	}
	return n
}

// Counts tallies cells by verdict.
func (m *Matrix) Counts() map[Verdict]int {
	counts := make(map[Verdict]int, 4)
	for _, row := range m.Cells {
		for _, c := range row {
			counts[c.Verdict]++
		}
	}
	return counts
}

// Viable returns GREEN and YELLOW cells ordered by break-even rent, lowest first.
func (m *Matrix) Viable() []MatrixCell {
	var out []MatrixCell
	for _, row := range m.Cells {
		for _, c := range row {
			if c.Verdict.Viable() {
				out = append(out, c)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].BreakEvenRent < out[j].BreakEvenRent
	})
	return out
}

// AmortizationEntry is one year of an amortization schedule.
type AmortizationEntry struct {
	Year             int     `json:"year"`
	PrincipalPaid    float64 `json:"principal_paid"`
	InterestPaid     float64 `json:"interest_paid"`
	RemainingBalance float64 `json:"remaining_balance"`
	EquityPercent    float64 `json:"equity_percent"`
}

// AmortizationReport is a schedule together with the loan it was generated for.
type AmortizationReport struct {
	Price              float64             `json:"price"`
	DownPaymentPercent float64             `json:"down_payment_percent"`
	LoanAmount         float64             `json:"loan_amount"`
	EffectiveRate      float64             `json:"effective_rate"`
	DurationYears      int                 `json:"duration_years"`
	MonthlyPayment     float64             `json:"monthly_payment"`
	Schedule           []AmortizationEntry `json:"schedule"`
	// Truncated is set when only the first years of the term were requested.
	Truncated bool `json:"truncated"`
}

// TotalPrincipal sums principal paid over the returned schedule.
func (a *AmortizationReport) TotalPrincipal() float64 {
	var sum float64
	for _, e := range a.Schedule {
		sum += e.PrincipalPaid
	}
	return sum
}

// TotalInterest sums interest paid over the returned schedule.
func (a *AmortizationReport) TotalInterest() float64 {
	var sum float64
	for _, e := range a.Schedule {
		sum += e.InterestPaid
	}
	return sum
}
