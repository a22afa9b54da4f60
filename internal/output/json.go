package output

import (
	"encoding/json"
	"io"

	"github.com/seenimoa/mortgagecli/internal/analysis/mortgage"
	"github.com/seenimoa/mortgagecli/internal/profile"
	"github.com/seenimoa/mortgagecli/pkg/models"
	"github.com/seenimoa/mortgagecli/pkg/utils"
)

// JSON documents are shared by the json format and the HTTP API.

// PropertyDoc echoes the analyzed property.
type PropertyDoc struct {
	Price              float64 `json:"price"`
	ExpectedRent       float64 `json:"expected_rent"`
	DownPaymentPercent float64 `json:"down_payment_percent"`
}

// ViabilityDoc holds the headline metrics of an analysis.
type ViabilityDoc struct {
	BreakEvenRent           float64        `json:"break_even_rent"`
	CashOnCashReturn        float64        `json:"cash_on_cash_return"`
	MonthlySurplusShortfall float64        `json:"monthly_surplus_shortfall"`
	Verdict                 models.Verdict `json:"verdict"`
	WithinBudget            bool           `json:"within_budget"`
}

// UpfrontDoc is the upfront cost breakdown with its total.
type UpfrontDoc struct {
	models.UpfrontCosts
	Total float64 `json:"total"`
}

// MonthlyDoc is the monthly breakdown with its total.
type MonthlyDoc struct {
	models.MonthlyBreakdown
	Total float64 `json:"total"`
}

// ProfileRef names the profile a document was computed with.
type ProfileRef struct {
	Name          string   `json:"name"`
	InterestRate  float64  `json:"interest_rate"`
	DurationYears int      `json:"duration_years"`
	TargetRent    *float64 `json:"target_rent,omitempty"`
	Budget        float64  `json:"budget"`
}

// AnalysisDoc is the JSON form of a single property analysis.
type AnalysisDoc struct {
	Property     PropertyDoc  `json:"property"`
	Analysis     ViabilityDoc `json:"analysis"`
	UpfrontCosts UpfrontDoc   `json:"upfront_costs"`
	Monthly      MonthlyDoc   `json:"monthly"`
	Warnings     []string     `json:"warnings"`
	Profile      ProfileRef   `json:"profile"`
}

// NewAnalysisDoc rounds a result for presentation.
func NewAnalysisDoc(res models.AnalysisResult, p *models.Profile) AnalysisDoc {
	r := res.Rounded()
	if r.Warnings == nil {
		r.Warnings = []string{}
	}
	target := p.Budget.TargetRent
	return AnalysisDoc{
		Property: PropertyDoc{
			Price:              r.PropertyPrice,
			ExpectedRent:       r.ExpectedRent,
			DownPaymentPercent: r.DownPaymentPercent,
		},
		Analysis: ViabilityDoc{
			BreakEvenRent:           r.BreakEvenRent,
			CashOnCashReturn:        r.CashOnCashReturn,
			MonthlySurplusShortfall: r.MonthlySurplusShortfall,
			Verdict:                 r.Verdict,
			WithinBudget:            r.WithinBudget,
		},
		UpfrontCosts: UpfrontDoc{UpfrontCosts: r.UpfrontCosts, Total: utils.RoundCents(res.UpfrontCosts.Total())},
		Monthly:      MonthlyDoc{MonthlyBreakdown: r.Monthly, Total: utils.RoundCents(res.Monthly.Total())},
		Warnings:     r.Warnings,
		Profile: ProfileRef{
			Name:          p.Name,
			InterestRate:  p.Mortgage.InterestRate,
			DurationYears: p.Mortgage.DurationYears,
			TargetRent:    &target,
			Budget:        p.Budget.TotalAvailable,
		},
	}
}

// MatrixBody is the grid part of a MatrixDoc, with cells flattened row by row.
type MatrixBody struct {
	Prices       []float64           `json:"prices"`
	DownPayments []float64           `json:"down_payments"`
	TargetRent   float64             `json:"target_rent"`
	Cells        []models.MatrixCell `json:"cells"`
}

// MatrixDoc is the JSON form of a sensitivity grid.
type MatrixDoc struct {
	Matrix  MatrixBody             `json:"matrix"`
	Counts  map[models.Verdict]int `json:"counts"`
	Profile ProfileRef             `json:"profile"`
}

// NewMatrixDoc flattens and rounds a grid for presentation.
func NewMatrixDoc(m *models.Matrix, p *models.Profile) MatrixDoc {
	cells := make([]models.MatrixCell, 0, m.Size())
	for _, row := range m.Cells {
		for _, c := range row {
			c.Price = utils.RoundCents(c.Price)
			c.DownPaymentPercent = utils.RoundBasisPoints(c.DownPaymentPercent)
			c.BreakEvenRent = utils.RoundCents(c.BreakEvenRent)
			cells = append(cells, c)
		}
	}

	return MatrixDoc{
		Matrix: MatrixBody{
			Prices:       roundAll(m.Prices, 2),
			DownPayments: roundAll(m.DownPayments, 4),
			TargetRent:   m.TargetRent,
			Cells:        cells,
		},
		Counts: m.Counts(),
		Profile: ProfileRef{
			Name:          p.Name,
			InterestRate:  p.Mortgage.InterestRate,
			DurationYears: p.Mortgage.DurationYears,
			Budget:        p.Budget.TotalAvailable,
		},
	}
}

// LoanDoc describes the loan behind an amortization schedule.
type LoanDoc struct {
	Price              float64 `json:"price"`
	DownPaymentPercent float64 `json:"down_payment_percent"`
	LoanAmount         float64 `json:"loan_amount"`
	EffectiveRate      float64 `json:"effective_rate"`
	DurationYears      int     `json:"duration_years"`
	MonthlyPayment     float64 `json:"monthly_payment"`
	Truncated          bool    `json:"truncated"`
}

// TotalsDoc sums a schedule. Cost is only set for complete schedules.
type TotalsDoc struct {
	Principal float64  `json:"principal"`
	Interest  float64  `json:"interest"`
	Cost      *float64 `json:"cost,omitempty"`
}

// AmortizationDoc is the JSON form of an amortization report.
type AmortizationDoc struct {
	Loan     LoanDoc                    `json:"loan"`
	Schedule []models.AmortizationEntry `json:"schedule"`
	Totals   TotalsDoc                  `json:"totals"`
}

// NewAmortizationDoc rounds a report for presentation.
func NewAmortizationDoc(rep models.AmortizationReport) AmortizationDoc {
	totals := TotalsDoc{
		Principal: utils.RoundCents(rep.TotalPrincipal()),
		Interest:  utils.RoundCents(rep.TotalInterest()),
	}
	if !rep.Truncated && len(rep.Schedule) > 0 {
		cost := utils.RoundCents(rep.TotalPrincipal() + rep.TotalInterest())
		totals.Cost = &cost
	}

	return AmortizationDoc{
		Loan: LoanDoc{
			Price:              rep.Price,
			DownPaymentPercent: rep.DownPaymentPercent,
			LoanAmount:         utils.RoundCents(rep.LoanAmount),
			EffectiveRate:      utils.RoundBasisPoints(rep.EffectiveRate),
			DurationYears:      rep.DurationYears,
			MonthlyPayment:     utils.RoundCents(rep.MonthlyPayment),
			Truncated:          rep.Truncated,
		},
		Schedule: rep.Schedule,
		Totals:   totals,
	}
}

// ProfileListDoc is the JSON form of a profile listing.
type ProfileListDoc struct {
	Profiles []profile.Summary `json:"profiles"`
}

// ComparedProperty echoes the property of a comparison.
type ComparedProperty struct {
	Price        float64 `json:"price"`
	ExpectedRent float64 `json:"expected_rent"`
}

// ComparisonRow is one profile's outcome in a comparison.
type ComparisonRow struct {
	Profile            string         `json:"profile"`
	InterestRate       float64        `json:"interest_rate"`
	DurationYears      int            `json:"duration_years"`
	DownPaymentPercent float64        `json:"down_payment_percent"`
	BreakEvenRent      float64        `json:"break_even_rent"`
	CashOnCashReturn   float64        `json:"cash_on_cash_return"`
	UpfrontCost        float64        `json:"upfront_cost"`
	Verdict            models.Verdict `json:"verdict"`
}

// ComparisonDoc is the JSON form of a profile comparison.
type ComparisonDoc struct {
	Property   ComparedProperty `json:"property"`
	Comparison []ComparisonRow  `json:"comparison"`
}

// NewComparisonDoc rounds a comparison for presentation, keeping profile order.
func NewComparisonDoc(results []mortgage.Comparison, price, rent float64) ComparisonDoc {
	rows := make([]ComparisonRow, len(results))
	for i, c := range results {
		r := c.Result
		rows[i] = ComparisonRow{
			Profile:            c.Profile.Name,
			InterestRate:       c.Profile.Mortgage.InterestRate,
			DurationYears:      c.Profile.Mortgage.DurationYears,
			DownPaymentPercent: r.DownPaymentPercent,
			BreakEvenRent:      utils.RoundCents(r.BreakEvenRent),
			CashOnCashReturn:   utils.RoundBasisPoints(r.CashOnCashReturn),
			UpfrontCost:        utils.RoundCents(r.UpfrontCosts.Total()),
			Verdict:            r.Verdict,
		}
	}
	return ComparisonDoc{
		Property:   ComparedProperty{Price: price, ExpectedRent: rent},
		Comparison: rows,
	}
}

func roundAll(values []float64, places int) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = utils.RoundTo(v, places)
	}
	return out
}

type jsonFormatter struct{}

func (jsonFormatter) Analysis(w io.Writer, r models.AnalysisResult, p *models.Profile) error {
	return writeJSON(w, NewAnalysisDoc(r, p))
}

func (jsonFormatter) Matrix(w io.Writer, m *models.Matrix, p *models.Profile) error {
	return writeJSON(w, NewMatrixDoc(m, p))
}

func (jsonFormatter) Amortization(w io.Writer, rep models.AmortizationReport) error {
	return writeJSON(w, NewAmortizationDoc(rep))
}

func (jsonFormatter) ProfileList(w io.Writer, profiles []profile.Summary) error {
	return writeJSON(w, ProfileListDoc{Profiles: profiles})
}

func (jsonFormatter) Comparison(w io.Writer, results []mortgage.Comparison, price, rent float64) error {
	return writeJSON(w, NewComparisonDoc(results, price, rent))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
