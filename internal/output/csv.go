package output

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/seenimoa/mortgagecli/internal/analysis/mortgage"
	"github.com/seenimoa/mortgagecli/internal/profile"
	"github.com/seenimoa/mortgagecli/pkg/models"
	"github.com/seenimoa/mortgagecli/pkg/utils"
)

type csvFormatter struct{}

func (csvFormatter) Analysis(w io.Writer, r models.AnalysisResult, p *models.Profile) error {
	return writeCSV(w,
		[]string{
			"property_price", "expected_rent", "down_payment_percent",
			"break_even_rent", "cash_on_cash_return", "monthly_surplus_shortfall",
			"verdict", "within_budget", "upfront_total",
			"mortgage_payment", "fixed_costs", "profile",
		},
		[][]string{{
			num(r.PropertyPrice),
			num(r.ExpectedRent),
			num(r.DownPaymentPercent),
			cents(r.BreakEvenRent),
			num(utils.RoundBasisPoints(r.CashOnCashReturn)),
			cents(r.MonthlySurplusShortfall),
			r.Verdict.String(),
			strconv.FormatBool(r.WithinBudget),
			cents(r.UpfrontCosts.Total()),
			cents(r.Monthly.MortgagePayment),
			cents(r.Monthly.FixedCosts),
			p.Name,
		}},
	)
}

func (csvFormatter) Matrix(w io.Writer, m *models.Matrix, _ *models.Profile) error {
	rows := make([][]string, 0, m.Size())
	for _, row := range m.Cells {
		for _, c := range row {
			rows = append(rows, []string{
				cents(c.Price),
				num(utils.RoundBasisPoints(c.DownPaymentPercent)),
				cents(c.BreakEvenRent),
				c.Verdict.String(),
				strconv.FormatBool(c.WithinBudget),
			})
		}
	}
	return writeCSV(w, []string{"price", "down_payment_percent", "break_even_rent", "verdict", "within_budget"}, rows)
}

func (csvFormatter) Amortization(w io.Writer, rep models.AmortizationReport) error {
	rows := make([][]string, len(rep.Schedule))
	for i, e := range rep.Schedule {
		rows[i] = []string{
			strconv.Itoa(e.Year),
			num(e.PrincipalPaid),
			num(e.InterestPaid),
			num(e.RemainingBalance),
			num(e.EquityPercent),
		}
	}
	return writeCSV(w, []string{"year", "principal_paid", "interest_paid", "remaining_balance", "equity_percent"}, rows)
}

func (csvFormatter) ProfileList(w io.Writer, profiles []profile.Summary) error {
	rows := make([][]string, len(profiles))
	for i, s := range profiles {
		rows[i] = []string{s.Name, s.Description}
	}
	return writeCSV(w, []string{"name", "description"}, rows)
}

func (csvFormatter) Comparison(w io.Writer, results []mortgage.Comparison, _, _ float64) error {
	rows := make([][]string, len(results))
	for i, c := range results {
		r := c.Result
		rows[i] = []string{
			c.Profile.Name,
			num(c.Profile.Mortgage.InterestRate),
			strconv.Itoa(c.Profile.Mortgage.DurationYears),
			num(r.DownPaymentPercent),
			cents(r.BreakEvenRent),
			num(utils.RoundBasisPoints(r.CashOnCashReturn)),
			cents(r.UpfrontCosts.Total()),
			r.Verdict.String(),
		}
	}
	return writeCSV(w, []string{
		"profile", "interest_rate", "duration_years", "down_payment_percent",
		"break_even_rent", "cash_on_cash_return", "upfront_cost", "verdict",
	}, rows)
}

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func cents(v float64) string {
	return num(utils.RoundCents(v))
}
