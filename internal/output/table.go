package output

import (
	"fmt"
	"io"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/seenimoa/mortgagecli/internal/analysis/mortgage"
	"github.com/seenimoa/mortgagecli/internal/profile"
	"github.com/seenimoa/mortgagecli/pkg/models"
	"github.com/seenimoa/mortgagecli/pkg/utils"
)

const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiDim    = "\033[2m"
	ansiStrike = "\033[9m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
)

const (
	ruleWidth  = 60
	labelWidth = 25
	valueWidth = 14
)

// palette applies ANSI styles when colour is enabled.
type palette struct{ enabled bool }

func (p palette) paint(s string, codes ...string) string {
	if !p.enabled || len(codes) == 0 {
		return s
	}
	return strings.Join(codes, "") + s + ansiReset
}

func (p palette) verdict(v models.Verdict, s string) string {
	switch v {
	case models.VerdictGreen:
		return p.paint(s, ansiBold, ansiGreen)
	case models.VerdictYellow:
		return p.paint(s, ansiBold, ansiYellow)
	case models.VerdictRed:
		return p.paint(s, ansiBold, ansiRed)
	case models.VerdictOverBudget:
		return p.paint(s, ansiDim, ansiStrike)
	}
	return s
}

// sign paints positive values green and the rest red.
func (p palette) sign(v float64, s string) string {
	if v > 0 {
		return p.paint(s, ansiGreen)
	}
	return p.paint(s, ansiRed)
}

// printer keeps the first write error so renderers can write unconditionally.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) println(s string) { p.printf("%s\n", s) }

type tableFormatter struct {
	opts Options
	pal  palette
}

func (t *tableFormatter) banner(out *printer, title string) {
	rule := strings.Repeat("═", ruleWidth)
	out.println("")
	out.println(rule)
	out.println("  " + t.pal.paint(title, ansiBold))
	out.println(rule)
	out.println("")
}

func (t *tableFormatter) section(out *printer, title string) {
	out.println(t.pal.paint(title, ansiBold))
}

// row prints an aligned label/value pair; codes style the whole line.
func (t *tableFormatter) row(out *printer, label, value string, codes ...string) {
	line := fmt.Sprintf("  %-*s %*s", labelWidth, label, valueWidth, value)
	out.println(t.pal.paint(line, codes...))
}

func (t *tableFormatter) separator(out *printer) {
	out.printf("  %s %s\n", strings.Repeat("─", labelWidth), strings.Repeat("─", valueWidth))
}

func (t *tableFormatter) Analysis(w io.Writer, r models.AnalysisResult, p *models.Profile) error {
	out := &printer{w: w}
	money := t.opts.money

	t.banner(out, fmt.Sprintf("Property Analysis: %s @ %s/month rent", money(r.PropertyPrice), money(r.ExpectedRent)))

	c := r.UpfrontCosts
	t.section(out, "UPFRONT COSTS")
	t.row(out, fmt.Sprintf("Down Payment (%s)", pctLabel(r.DownPaymentPercent)), money(c.DownPayment))
	t.row(out, "Notary/Legal Fees", money(c.NotaryLegal))
	t.row(out, "Bank Arrangement Fee", money(c.BankArrangement))
	t.row(out, "Survey/Valuation", money(c.SurveyValuation))
	if c.MortgageBroker > 0 {
		t.row(out, "Mortgage Broker", money(c.MortgageBroker))
	}
	if c.Other > 0 {
		t.row(out, "Other", money(c.Other))
	}
	t.separator(out)
	t.row(out, "Total Upfront", money(c.Total()), ansiBold)
	out.println("")

	t.section(out, "MONTHLY BREAKDOWN")
	t.row(out, "Mortgage Payment", money(r.Monthly.MortgagePayment))
	t.row(out, "Fixed Costs", money(r.Monthly.FixedCosts))
	t.separator(out)
	line := fmt.Sprintf("  %-*s %*s", labelWidth, "Break-Even Rent", valueWidth, money(r.BreakEvenRent))
	out.println(t.pal.paint(line, ansiBold) + "  " + t.pal.verdict(r.Verdict, "["+r.Verdict.Label()+"]"))
	out.println("")

	t.section(out, "VIABILITY")
	t.row(out, "Expected Rent", money(r.ExpectedRent))
	t.row(out, "Break-Even Rent", money(r.BreakEvenRent))
	if r.MonthlySurplusShortfall >= 0 {
		t.row(out, "Monthly Surplus", money(r.MonthlySurplusShortfall), ansiGreen)
	} else {
		t.row(out, "Monthly Shortfall", money(math.Abs(r.MonthlySurplusShortfall)), ansiRed)
	}
	t.separator(out)
	coc := fmt.Sprintf("  %-*s %*s", labelWidth, "Cash-on-Cash Return", valueWidth, utils.FormatPercentage(r.CashOnCashReturn, 1))
	out.println(t.pal.sign(r.CashOnCashReturn, coc))

	status, style := "[OK]", ansiGreen
	if !r.WithinBudget {
		status, style = "[OVER]", ansiRed
	}
	budget := fmt.Sprintf("%s / %s %s", money(c.Total()), money(p.Budget.TotalAvailable), status)
	t.row(out, "Budget Status", budget, style)

	if len(r.Warnings) > 0 {
		out.println("")
		out.println(t.pal.paint("WARNINGS:", ansiBold, ansiYellow))
		for _, warning := range r.Warnings {
			out.println(t.pal.paint("  • "+warning, ansiYellow))
		}
	}
	out.println("")
	return out.err
}

func (t *tableFormatter) Matrix(w io.Writer, m *models.Matrix, p *models.Profile) error {
	out := &printer{w: w}
	money := t.opts.money

	t.banner(out, fmt.Sprintf("Break-Even Rent Matrix (Target: %s/month, Budget: %s)",
		money(m.TargetRent), money(p.Budget.TotalAvailable)))

	header := []string{"Down %"}
	for _, price := range m.Prices {
		header = append(header, utils.FormatCompact(price, t.opts.symbol()))
	}

	rows := make([][]cell, len(m.Cells))
	for i, row := range m.Cells {
		cells := []cell{{text: pctLabel(m.DownPayments[i]), codes: []string{ansiDim}}}
		for _, c := range row {
			cells = append(cells, cell{text: money(c.BreakEvenRent), verdict: c.Verdict})
		}
		rows[i] = cells
	}
	t.grid(out, header, rows, 0)

	green := money(m.TargetRent * p.Thresholds.GreenBelow)
	yellow := money(m.TargetRent * p.Thresholds.YellowBelow)
	out.println("")
	out.printf("Legend: %s < %s | %s %s-%s | %s > %s | %s = Over budget\n",
		t.pal.verdict(models.VerdictGreen, "GREEN"), green,
		t.pal.verdict(models.VerdictYellow, "YELLOW"), green, yellow,
		t.pal.verdict(models.VerdictRed, "RED"), yellow,
		t.pal.paint("GRAY", ansiDim))
	out.println("")
	return out.err
}

func (t *tableFormatter) Amortization(w io.Writer, rep models.AmortizationReport) error {
	out := &printer{w: w}
	money := t.opts.money

	out.println("")
	out.println(t.pal.paint(fmt.Sprintf("Amortization Schedule: %s loan @ %s over %d years",
		money(rep.LoanAmount), utils.FormatPercentage(rep.EffectiveRate, 1), rep.DurationYears), ansiBold))
	out.printf("Monthly Payment: %s\n", utils.FormatCurrency(rep.MonthlyPayment, t.opts.symbol(), 2))
	out.println("")

	rows := make([][]cell, len(rep.Schedule))
	for i, e := range rep.Schedule {
		rows[i] = []cell{
			{text: fmt.Sprint(e.Year)},
			{text: money(e.PrincipalPaid)},
			{text: money(e.InterestPaid)},
			{text: money(e.RemainingBalance)},
			{text: utils.FormatPercentage(e.EquityPercent, 1)},
		}
	}
	t.grid(out, []string{"Year", "Principal", "Interest", "Balance", "Equity"}, rows, 0)

	if len(rep.Schedule) > 0 {
		principal, interest := rep.TotalPrincipal(), rep.TotalInterest()
		out.println("")
		out.printf("Total Principal Paid: %s\n", money(principal))
		out.printf("Total Interest Paid: %s\n", money(interest))
		if !rep.Truncated {
			out.printf("Total Cost of Loan: %s\n", money(principal+interest))
		}
	}
	out.println("")
	return out.err
}

func (t *tableFormatter) ProfileList(w io.Writer, profiles []profile.Summary) error {
	out := &printer{w: w}
	rows := make([][]cell, len(profiles))
	for i, s := range profiles {
		desc := cell{text: s.Description}
		if !s.Valid {
			desc.codes = []string{ansiRed}
		}
		rows[i] = []cell{{text: s.Name}, desc}
	}
	t.grid(out, []string{"NAME", "DESCRIPTION"}, rows, 2)
	return out.err
}

func (t *tableFormatter) Comparison(w io.Writer, results []mortgage.Comparison, price, rent float64) error {
	out := &printer{w: w}
	money := t.opts.money

	t.banner(out, fmt.Sprintf("Profile Comparison: %s @ %s/month", money(price), money(rent)))

	header := []string{""}
	for _, c := range results {
		header = append(header, c.Profile.Name)
	}

	metrics := []struct {
		name  string
		value func(mortgage.Comparison) cell
	}{
		{"Interest Rate", func(c mortgage.Comparison) cell {
			return cell{text: utils.FormatPercentage(c.Profile.Mortgage.InterestRate, 1)}
		}},
		{"Duration", func(c mortgage.Comparison) cell {
			return cell{text: fmt.Sprintf("%d years", c.Profile.Mortgage.DurationYears)}
		}},
		{"Down Payment", func(c mortgage.Comparison) cell {
			return cell{text: pctLabel(c.Result.DownPaymentPercent)}
		}},
		{"Break-Even Rent", func(c mortgage.Comparison) cell {
			return cell{text: money(c.Result.BreakEvenRent)}
		}},
		{"Cash-on-Cash", func(c mortgage.Comparison) cell {
			return cell{text: utils.FormatPercentage(c.Result.CashOnCashReturn, 1)}
		}},
		{"Upfront Cost", func(c mortgage.Comparison) cell {
			return cell{text: money(c.Result.UpfrontCosts.Total())}
		}},
		{"Verdict", func(c mortgage.Comparison) cell {
			return cell{text: c.Result.Verdict.Label(), verdict: c.Result.Verdict}
		}},
	}

	rows := make([][]cell, len(metrics))
	for i, m := range metrics {
		row := []cell{{text: m.name, codes: []string{ansiDim}}}
		for _, c := range results {
			row = append(row, m.value(c))
		}
		rows[i] = row
	}
	t.grid(out, header, rows, 1)
	out.println("")
	return out.err
}

// RenderProfile prints every setting of a profile.
func RenderProfile(w io.Writer, p *models.Profile, opts Options) error {
	out := &printer{w: w}
	pal := palette{enabled: !opts.NoColor}
	money := opts.money

	desc := p.Description
	if desc == "" {
		desc = "(none)"
	}
	out.println("")
	out.println(pal.paint("Profile: "+p.Name, ansiBold))
	out.printf("Description: %s\n\n", desc)

	out.println(pal.paint("Mortgage Terms", ansiBold))
	out.printf("  Interest Rate: %s\n", utils.FormatPercentage(p.Mortgage.InterestRate, 1))
	out.printf("  Insurance Rate: %s\n", utils.FormatPercentage(p.Mortgage.InsuranceRate, 2))
	out.printf("  Duration: %d years\n", p.Mortgage.DurationYears)
	out.printf("  Default Down Payment: %s\n\n", utils.FormatPercentage(p.Mortgage.DefaultDownPayment, 0))

	out.println(pal.paint("Budget", ansiBold))
	out.printf("  Total Available: %s\n", money(p.Budget.TotalAvailable))
	out.printf("  Target Rent: %s/month\n\n", money(p.Budget.TargetRent))

	mc := p.MonthlyCosts
	out.println(pal.paint("Monthly Costs", ansiBold))
	out.printf("  Property Tax: %s\n", money(mc.PropertyTax))
	out.printf("  Insurance: %s\n", money(mc.Insurance))
	out.printf("  Maintenance: %s\n", money(mc.Maintenance))
	out.printf("  Management: %s\n", money(mc.Management))
	out.println(pal.paint(fmt.Sprintf("  Total: %s/month", money(mc.Total())), ansiBold))
	out.println("")

	out.println(pal.paint("Purchase Costs", ansiBold))
	for _, item := range p.PurchaseCosts.Items() {
		if item.Item.Value <= 0 {
			continue
		}
		if item.Item.Kind == models.CostPercentage {
			out.printf("  %s: %s of price\n", item.Label, utils.FormatPercentage(item.Item.Value, 1))
		} else {
			out.printf("  %s: %s\n", item.Label, money(item.Item.Value))
		}
	}
	out.println("")

	out.println(pal.paint("Thresholds", ansiBold))
	out.printf("  Green Below: %s of target\n", utils.FormatPercentage(p.Thresholds.GreenBelow, 0))
	out.printf("  Yellow Below: %s of target\n", utils.FormatPercentage(p.Thresholds.YellowBelow, 0))
	out.println("")
	return out.err
}

// cell is one grid value. A set verdict takes precedence over codes.
type cell struct {
	text    string
	codes   []string
	verdict models.Verdict
}

// grid prints a header and rows with columns sized to their widest value.
// The first leftCols columns are left aligned, the rest right aligned.
func (t *tableFormatter) grid(out *printer, header []string, rows [][]cell, leftCols int) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range rows {
		for i, c := range row {
			if n := utf8.RuneCountInString(c.text); i < len(widths) && n > widths[i] {
				widths[i] = n
			}
		}
	}

	align := func(i int, s string) string {
		if i < leftCols {
			return fmt.Sprintf("%-*s", widths[i], s)
		}
		return fmt.Sprintf("%*s", widths[i], s)
	}

	parts := make([]string, len(header))
	for i, h := range header {
		parts[i] = t.pal.paint(align(i, h), ansiBold)
	}
	out.println(strings.TrimRight("  "+strings.Join(parts, "  "), " "))

	for _, row := range rows {
		parts = parts[:0]
		for i, c := range row {
			if i >= len(widths) {
				break
			}
			text := align(i, c.text)
			if c.verdict != 0 {
				text = t.pal.verdict(c.verdict, text)
			} else {
				text = t.pal.paint(text, c.codes...)
			}
			parts = append(parts, text)
		}
		out.println(strings.TrimRight("  "+strings.Join(parts, "  "), " "))
	}
}

// pctLabel drops decimals for whole percentages, e.g. 0.2 → "20%", 0.125 → "12.5%".
func pctLabel(v float64) string {
	pct := v * 100
	if math.Abs(pct-math.Round(pct)) < 1e-9 {
		return utils.FormatPercentage(v, 0)
	}
	return utils.FormatPercentage(v, 1)
}
