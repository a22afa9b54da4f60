package output

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/seenimoa/mortgagecli/internal/analysis/mortgage"
	"github.com/seenimoa/mortgagecli/internal/profile"
	"github.com/seenimoa/mortgagecli/pkg/models"
	"github.com/seenimoa/mortgagecli/pkg/utils"
)

var verdictFills = map[models.Verdict]string{
	models.VerdictGreen:      "#C6EFCE",
	models.VerdictYellow:     "#FFEB9C",
	models.VerdictRed:        "#FFC7CE",
	models.VerdictOverBudget: "#D9D9D9",
}

type xlsxFormatter struct {
	opts Options
}

// workbook wraps an excelize file with the styles shared by every sheet.
// Callers close f once the workbook is written.
type workbook struct {
	f       *excelize.File
	header  int
	money   int
	percent int
	fills   map[models.Verdict]int
}

func newWorkbook(first string) (*workbook, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", first); err != nil {
		f.Close()
		return nil, err
	}

	wb := &workbook{f: f, fills: make(map[models.Verdict]int, len(verdictFills))}
	var err error
	if wb.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DDEBF7"}},
	}); err != nil {
		f.Close()
		return nil, err
	}
	if wb.money, err = f.NewStyle(&excelize.Style{NumFmt: 4}); err != nil { // #,##0.00
		f.Close()
		return nil, err
	}
	if wb.percent, err = f.NewStyle(&excelize.Style{NumFmt: 10}); err != nil { // 0.00%
		f.Close()
		return nil, err
	}
	for v, color := range verdictFills {
		id, err := f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Bold: true},
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
		})
		if err != nil {
			f.Close()
			return nil, err
		}
		wb.fills[v] = id
	}
	return wb, nil
}

func (wb *workbook) sheet(name string) error {
	_, err := wb.f.NewSheet(name)
	return err
}

// row writes values starting at column A of the given 1-based row.
func (wb *workbook) row(sheet string, n int, values ...any) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	return wb.f.SetSheetRow(sheet, cell, &values)
}

func (wb *workbook) headerRow(sheet string, n int, labels ...string) error {
	values := make([]any, len(labels))
	for i, l := range labels {
		values[i] = l
	}
	if err := wb.row(sheet, n, values...); err != nil {
		return err
	}
	return wb.style(sheet, 1, n, len(labels), n, wb.header)
}

func (wb *workbook) style(sheet string, col1, row1, col2, row2, id int) error {
	from, err := excelize.CoordinatesToCellName(col1, row1)
	if err != nil {
		return err
	}
	to, err := excelize.CoordinatesToCellName(col2, row2)
	if err != nil {
		return err
	}
	return wb.f.SetCellStyle(sheet, from, to, id)
}

func (wb *workbook) widths(sheet string, widths ...float64) error {
	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := wb.f.SetColWidth(sheet, col, col, width); err != nil {
			return err
		}
	}
	return nil
}

func (wb *workbook) flush(w io.Writer) error {
	if err := wb.f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func (x xlsxFormatter) Analysis(w io.Writer, r models.AnalysisResult, p *models.Profile) error {
	const sheet = "Analysis"
	wb, err := newWorkbook(sheet)
	if err != nil {
		return err
	}
	defer wb.f.Close()
	r = r.Rounded()

	rows := [][]any{
		{"Profile", p.Name},
		{"Property Price", r.PropertyPrice},
		{"Expected Rent", r.ExpectedRent},
		{"Down Payment %", r.DownPaymentPercent},
		{"Down Payment", r.UpfrontCosts.DownPayment},
		{"Notary/Legal", r.UpfrontCosts.NotaryLegal},
		{"Bank Arrangement", r.UpfrontCosts.BankArrangement},
		{"Survey/Valuation", r.UpfrontCosts.SurveyValuation},
		{"Mortgage Broker", r.UpfrontCosts.MortgageBroker},
		{"Other", r.UpfrontCosts.Other},
		{"Total Upfront", utils.RoundCents(r.UpfrontCosts.Total())},
		{"Mortgage Payment", r.Monthly.MortgagePayment},
		{"Fixed Costs", r.Monthly.FixedCosts},
		{"Break-even Rent", r.BreakEvenRent},
		{"Monthly Surplus/Shortfall", r.MonthlySurplusShortfall},
		{"Cash-on-Cash Return", r.CashOnCashReturn},
		{"Within Budget", r.WithinBudget},
		{"Verdict", r.Verdict.Label()},
	}

	if err := wb.headerRow(sheet, 1, "Metric", "Value"); err != nil {
		return err
	}
	for i, values := range rows {
		if err := wb.row(sheet, i+2, values...); err != nil {
			return err
		}
	}
	last := len(rows) + 1
	if err := wb.style(sheet, 2, 3, 2, 16, wb.money); err != nil {
		return err
	}
	for _, n := range []int{5, 17} { // down payment %, cash-on-cash
		if err := wb.style(sheet, 2, n, 2, n, wb.percent); err != nil {
			return err
		}
	}
	if err := wb.style(sheet, 2, last, 2, last, wb.fills[r.Verdict]); err != nil {
		return err
	}
	for i, warning := range r.Warnings {
		if err := wb.row(sheet, last+2+i, "Warning", warning); err != nil {
			return err
		}
	}
	if err := wb.widths(sheet, 28, 60); err != nil {
		return err
	}
	return wb.flush(w)
}

func (x xlsxFormatter) Matrix(w io.Writer, m *models.Matrix, _ *models.Profile) error {
	const sheet = "Matrix"
	wb, err := newWorkbook(sheet)
	if err != nil {
		return err
	}
	defer wb.f.Close()

	header := []any{"Down \\ Price"}
	for _, price := range m.Prices {
		header = append(header, price)
	}
	if err := wb.row(sheet, 1, header...); err != nil {
		return err
	}
	if err := wb.style(sheet, 1, 1, len(header), 1, wb.header); err != nil {
		return err
	}

	for i, row := range m.Cells {
		values := []any{pctLabel(m.DownPayments[i])}
		for _, c := range row {
			values = append(values, utils.RoundCents(c.BreakEvenRent))
		}
		if err := wb.row(sheet, i+2, values...); err != nil {
			return err
		}
		for j, c := range row {
			if err := wb.style(sheet, j+2, i+2, j+2, i+2, wb.fills[c.Verdict]); err != nil {
				return err
			}
		}
	}

	detail := "Cells"
	if err := wb.sheet(detail); err != nil {
		return err
	}
	if err := wb.headerRow(detail, 1, "Price", "Down Payment %", "Break-even Rent", "Verdict", "Within Budget"); err != nil {
		return err
	}
	n := 2
	for _, row := range m.Cells {
		for _, c := range row {
			if err := wb.row(detail, n, c.Price, c.DownPaymentPercent, utils.RoundCents(c.BreakEvenRent),
				c.Verdict.String(), c.WithinBudget); err != nil {
				return err
			}
			n++
		}
	}
	if err := wb.widths(detail, 14, 16, 16, 12, 14); err != nil {
		return err
	}
	return wb.flush(w)
}

func (x xlsxFormatter) Amortization(w io.Writer, rep models.AmortizationReport) error {
	const sheet = "Amortization"
	wb, err := newWorkbook(sheet)
	if err != nil {
		return err
	}
	defer wb.f.Close()

	if err := wb.headerRow(sheet, 1, "Year", "Principal Paid", "Interest Paid", "Remaining Balance", "Equity %"); err != nil {
		return err
	}
	for i, e := range rep.Schedule {
		if err := wb.row(sheet, i+2, e.Year, utils.RoundCents(e.PrincipalPaid), utils.RoundCents(e.InterestPaid),
			utils.RoundCents(e.RemainingBalance), utils.RoundBasisPoints(e.EquityPercent)); err != nil {
			return err
		}
	}
	if n := len(rep.Schedule); n > 0 {
		if err := wb.style(sheet, 2, 2, 4, n+1, wb.money); err != nil {
			return err
		}
		if err := wb.style(sheet, 5, 2, 5, n+1, wb.percent); err != nil {
			return err
		}
	}
	if err := wb.widths(sheet, 8, 16, 16, 20, 12); err != nil {
		return err
	}

	loan := "Loan"
	if err := wb.sheet(loan); err != nil {
		return err
	}
	rows := [][]any{
		{"Price", rep.Price},
		{"Down Payment %", rep.DownPaymentPercent},
		{"Loan Amount", utils.RoundCents(rep.LoanAmount)},
		{"Effective Rate", rep.EffectiveRate},
		{"Duration (years)", rep.DurationYears},
		{"Monthly Payment", utils.RoundCents(rep.MonthlyPayment)},
		{"Total Principal", utils.RoundCents(rep.TotalPrincipal())},
		{"Total Interest", utils.RoundCents(rep.TotalInterest())},
	}
	for i, values := range rows {
		if err := wb.row(loan, i+1, values...); err != nil {
			return err
		}
	}
	if err := wb.widths(loan, 20, 16); err != nil {
		return err
	}
	return wb.flush(w)
}

func (x xlsxFormatter) ProfileList(w io.Writer, profiles []profile.Summary) error {
	const sheet = "Profiles"
	wb, err := newWorkbook(sheet)
	if err != nil {
		return err
	}
	defer wb.f.Close()
	if err := wb.headerRow(sheet, 1, "Name", "Description", "Built-in", "Valid"); err != nil {
		return err
	}
	for i, p := range profiles {
		if err := wb.row(sheet, i+2, p.Name, p.Description, p.Builtin, p.Valid); err != nil {
			return err
		}
	}
	if err := wb.widths(sheet, 20, 40, 10, 10); err != nil {
		return err
	}
	return wb.flush(w)
}

func (x xlsxFormatter) Comparison(w io.Writer, results []mortgage.Comparison, price, rent float64) error {
	const sheet = "Comparison"
	wb, err := newWorkbook(sheet)
	if err != nil {
		return err
	}
	defer wb.f.Close()
	if err := wb.row(sheet, 1, "Price", price, "Rent", rent); err != nil {
		return err
	}
	if err := wb.headerRow(sheet, 3, "Profile", "Interest Rate", "Duration", "Upfront Total",
		"Mortgage Payment", "Break-even Rent", "Cash-on-Cash", "Verdict"); err != nil {
		return err
	}
	for i, c := range results {
		r := c.Result.Rounded()
		n := i + 4
		if err := wb.row(sheet, n, c.Profile.Name, c.Profile.Mortgage.InterestRate, c.Profile.Mortgage.DurationYears,
			utils.RoundCents(r.UpfrontCosts.Total()), r.Monthly.MortgagePayment, r.BreakEvenRent,
			r.CashOnCashReturn, r.Verdict.Label()); err != nil {
			return err
		}
		if err := wb.style(sheet, 8, n, 8, n, wb.fills[r.Verdict]); err != nil {
			return err
		}
	}
	if err := wb.widths(sheet, 18, 14, 10, 14, 18, 16, 14, 14); err != nil {
		return err
	}
	return wb.flush(w)
}
