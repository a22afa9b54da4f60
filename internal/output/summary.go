package output

import (
	"fmt"
	"io"
	"math"
	"slices"
	"strings"

	"github.com/seenimoa/mortgagecli/internal/analysis/mortgage"
	"github.com/seenimoa/mortgagecli/internal/profile"
	"github.com/seenimoa/mortgagecli/pkg/models"
	"github.com/seenimoa/mortgagecli/pkg/utils"
)

// strongReturn marks a GREEN result as excellent rather than good.
const strongReturn = 0.05

type summaryFormatter struct {
	opts Options
}

func heading(out *printer, title string) {
	out.println(title)
	out.println(strings.Repeat("=", 50))
	out.println("")
}

func (s summaryFormatter) Analysis(w io.Writer, r models.AnalysisResult, p *models.Profile) error {
	out := &printer{w: w}
	money := s.opts.money

	heading(out, "INVESTMENT SUMMARY")

	out.printf("A %s property with %s down (%s) would require %s/month in rent to break even.\n",
		money(r.PropertyPrice), pctLabel(r.DownPaymentPercent), money(r.UpfrontCosts.DownPayment), money(r.BreakEvenRent))

	kind := "surplus"
	if r.MonthlySurplusShortfall < 0 {
		kind = "shortfall"
	}
	out.printf("At the expected rent of %s/month, this represents a monthly %s of %s.\n",
		money(r.ExpectedRent), kind, money(math.Abs(r.MonthlySurplusShortfall)))
	out.println("")

	status := "within"
	if !r.WithinBudget {
		status = "exceeds"
	}
	out.printf("Total upfront investment: %s (%s your %s budget)\n",
		money(r.UpfrontCosts.Total()), status, money(p.Budget.TotalAvailable))

	coc := utils.FormatPercentage(r.CashOnCashReturn, 1)
	if r.CashOnCashReturn < 0 {
		out.printf("Cash-on-cash return: %s (negative due to shortfall)\n", coc)
	} else {
		out.printf("Cash-on-cash return: %s\n", coc)
	}
	out.println("")

	out.println("RECOMMENDATION:")
	out.println(s.recommendation(r, p))
	out.println("")
	return out.err
}

func (s summaryFormatter) recommendation(r models.AnalysisResult, p *models.Profile) string {
	switch r.Verdict {
	case models.VerdictOverBudget:
		over := s.opts.money(r.UpfrontCosts.Total() - p.Budget.TotalAvailable)
		return fmt.Sprintf("This property exceeds your budget by %s. Consider a less expensive property "+
			"or increasing your available capital.", over)
	case models.VerdictGreen:
		if r.CashOnCashReturn > strongReturn {
			return "Excellent investment opportunity. Break-even rent is well below market expectations " +
				"with strong cash-on-cash returns."
		}
		return "Good investment opportunity. Break-even rent is comfortably below your target, " +
			"providing a margin of safety."
	case models.VerdictYellow:
		return "Marginally viable investment. Consider negotiating a lower price or ensuring rental " +
			"income meets expectations before proceeding."
	}
	return fmt.Sprintf("This property requires rent above your %s target to break even. Unless you can "+
		"command premium rents, consider alternative properties.", s.opts.money(p.Budget.TargetRent))
}

func (s summaryFormatter) Matrix(w io.Writer, m *models.Matrix, _ *models.Profile) error {
	out := &printer{w: w}
	money := s.opts.money

	heading(out, "SENSITIVITY ANALYSIS SUMMARY")

	counts := m.Counts()
	out.printf("Analyzed %d price/down-payment combinations:\n", m.Size())
	out.printf("  - %d good opportunities (green)\n", counts[models.VerdictGreen])
	out.printf("  - %d marginal opportunities (yellow)\n", counts[models.VerdictYellow])
	out.printf("  - %d poor opportunities (red)\n", counts[models.VerdictRed])
	if n := counts[models.VerdictOverBudget]; n > 0 {
		out.printf("  - %d over budget\n", n)
	}
	out.println("")

	viable := m.Viable()
	if len(viable) == 0 {
		out.println("No viable opportunities found in this range. Consider adjusting your price range " +
			"or increasing your budget.")
	} else {
		out.println("Top opportunities (lowest break-even rent):")
		for i, c := range viable[:min(3, len(viable))] {
			out.printf("  %d. %s with %s down - break-even: %s/month\n",
				i+1, money(c.Price), pctLabel(c.DownPaymentPercent), money(c.BreakEvenRent))
		}
	}
	out.println("")
	return out.err
}

func (s summaryFormatter) Amortization(w io.Writer, rep models.AmortizationReport) error {
	out := &printer{w: w}
	money := s.opts.money

	heading(out, "AMORTIZATION SUMMARY")

	out.printf("A %s loan at %s over %d years costs %s/month.\n",
		money(rep.LoanAmount), utils.FormatPercentage(rep.EffectiveRate, 1), rep.DurationYears,
		utils.FormatCurrency(rep.MonthlyPayment, s.opts.symbol(), 2))

	if n := len(rep.Schedule); n > 0 {
		last := rep.Schedule[n-1]
		out.printf("After %d year(s) you will have repaid %s of principal and %s of interest,\n",
			last.Year, money(rep.TotalPrincipal()), money(rep.TotalInterest()))
		out.printf("leaving %s outstanding and %s equity in the property.\n",
			money(last.RemainingBalance), utils.FormatPercentage(last.EquityPercent, 1))
		if !rep.Truncated {
			out.printf("Total cost of the loan: %s.\n", money(rep.TotalPrincipal()+rep.TotalInterest()))
		}
	} else {
		out.println("Nothing is financed, so there is no schedule.")
	}
	out.println("")
	return out.err
}

func (s summaryFormatter) ProfileList(w io.Writer, profiles []profile.Summary) error {
	out := &printer{w: w}
	out.printf("You have %d profile(s) available:\n\n", len(profiles))
	for _, p := range profiles {
		if p.Description != "" {
			out.printf("  - %s: %s\n", p.Name, p.Description)
		} else {
			out.printf("  - %s\n", p.Name)
		}
	}
	out.println("")
	return out.err
}

func (s summaryFormatter) Comparison(w io.Writer, results []mortgage.Comparison, price, rent float64) error {
	out := &printer{w: w}
	money := s.opts.money

	heading(out, "PROFILE COMPARISON")
	out.printf("Comparing %d profiles for a %s property at %s/month rent:\n\n", len(results), money(price), money(rent))

	sorted := slices.Clone(results)
	slices.SortStableFunc(sorted, func(a, b mortgage.Comparison) int {
		switch {
		case a.Result.BreakEvenRent < b.Result.BreakEvenRent:
			return -1
		case a.Result.BreakEvenRent > b.Result.BreakEvenRent:
			return 1
		}
		return 0
	})

	for _, c := range sorted {
		out.printf("  %s:\n", c.Profile.Name)
		out.printf("    Break-even: %s/month [%s]\n", money(c.Result.BreakEvenRent), strings.ToUpper(c.Result.Verdict.String()))
		out.printf("    Cash-on-cash return: %s\n\n", utils.FormatPercentage(c.Result.CashOnCashReturn, 1))
	}

	if len(sorted) > 0 {
		best := sorted[0]
		out.printf("Recommendation: '%s' profile offers the lowest break-even rent at %s/month.\n",
			best.Profile.Name, money(best.Result.BreakEvenRent))
		out.println("")
	}
	return out.err
}
