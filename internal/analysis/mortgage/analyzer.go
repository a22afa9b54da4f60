package mortgage

import (
	"fmt"

	"github.com/seenimoa/mortgagecli/pkg/models"
	"github.com/seenimoa/mortgagecli/pkg/utils"
)

// unrealisticFactor flags break-even rents this far above the target rent.
const unrealisticFactor = 1.5

// Analyzer runs property analyses against a fixed profile.
type Analyzer struct {
	profile *models.Profile
}

// NewAnalyzer returns an analyzer for the given profile. The profile is read, never modified.
func NewAnalyzer(p *models.Profile) *Analyzer {
	return &Analyzer{profile: p}
}

// Profile returns the profile the analyzer was built with.
func (a *Analyzer) Profile() *models.Profile { return a.profile }

// Analyze evaluates a single property.
func (a *Analyzer) Analyze(in models.PropertyInput) models.AnalysisResult {
	return Analyze(in, a.profile)
}

// Analyze evaluates a property against a profile and returns the full result.
func Analyze(in models.PropertyInput, p *models.Profile) models.AnalysisResult {
	downPct := in.DownPayment(p.Mortgage.DefaultDownPayment)

	upfront := upfrontCosts(in.Price, downPct, p.PurchaseCosts)

	loan := LoanAmount(in.Price, downPct)
	rate := EffectiveRate(p.Mortgage.InterestRate, p.Mortgage.InsuranceRate)
	payment := MonthlyPayment(loan, rate, p.Mortgage.DurationYears)

	monthly := models.MonthlyBreakdown{
		MortgagePayment: payment,
		FixedCosts:      p.MonthlyCosts.Total(),
	}
	breakEven := BreakEvenRent(monthly.MortgagePayment, monthly.FixedCosts)

	surplus := in.ExpectedRent - breakEven
	upfrontTotal := upfront.Total()
	coc := CashOnCashReturn(surplus*12, upfrontTotal)

	withinBudget := upfrontTotal <= p.Budget.TotalAvailable

	return models.AnalysisResult{
		PropertyPrice:           in.Price,
		ExpectedRent:            in.ExpectedRent,
		DownPaymentPercent:      downPct,
		UpfrontCosts:            upfront,
		Monthly:                 monthly,
		BreakEvenRent:           breakEven,
		CashOnCashReturn:        coc,
		MonthlySurplusShortfall: surplus,
		Verdict:                 DetermineVerdict(breakEven, withinBudget, p.Budget.TargetRent, p.Thresholds),
		WithinBudget:            withinBudget,
		Warnings:                warnings(breakEven, in.ExpectedRent, upfrontTotal, withinBudget, p.Budget),
	}
}

func upfrontCosts(price, downPct float64, pc models.PurchaseCosts) models.UpfrontCosts {
	return models.UpfrontCosts{
		DownPayment:     DownPayment(price, downPct),
		NotaryLegal:     pc.NotaryLegal.Resolve(price),
		BankArrangement: pc.BankArrangement.Resolve(price),
		SurveyValuation: pc.SurveyValuation.Resolve(price),
		MortgageBroker:  pc.MortgageBroker.Resolve(price),
		Other:           pc.Other.Resolve(price),
	}
}

// DetermineVerdict maps break-even rent to a verdict.
//
// Being over budget overrides everything. A non-positive target rent is RED.
// Otherwise the break-even/target ratio is compared against the thresholds in
// order, so inverted thresholds simply leave the YELLOW band empty.
func DetermineVerdict(breakEvenRent float64, withinBudget bool, targetRent float64, t models.Thresholds) models.Verdict {
	if !withinBudget {
		return models.VerdictOverBudget
	}
	if targetRent <= 0 {
		return models.VerdictRed
	}

	ratio := breakEvenRent / targetRent
	switch {
	case ratio < t.GreenBelow:
		return models.VerdictGreen
	case ratio < t.YellowBelow:
		return models.VerdictYellow
	default:
		return models.VerdictRed
	}
}

func warnings(breakEven, expectedRent, upfrontTotal float64, withinBudget bool, b models.Budget) []string {
	out := []string{}

	if !withinBudget {
		out = append(out, fmt.Sprintf("Total upfront costs (%s) exceed budget of %s",
			utils.FormatNumber(upfrontTotal, 0), utils.FormatNumber(b.TotalAvailable, 0)))
	}

	if breakEven > expectedRent {
		out = append(out, fmt.Sprintf("Monthly shortfall of %s", utils.FormatNumber(breakEven-expectedRent, 0)))
	}

	if b.TargetRent > 0 && breakEven > b.TargetRent*unrealisticFactor {
		out = append(out, "Break-even rent may be unrealistic for this market")
	}

	return out
}
