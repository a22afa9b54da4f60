package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/seenimoa/mortgagecli/internal/analysis/mortgage"
	"github.com/seenimoa/mortgagecli/internal/profile"
	"github.com/seenimoa/mortgagecli/pkg/models"
)

func plain() Options { return Options{NoColor: true} }

func assertContains(t *testing.T, out string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTableAnalysis(t *testing.T) {
	res, p := affordable(t)
	out := render(t, "table", plain(), func(f Formatter, buf *bytes.Buffer) error {
		return f.Analysis(buf, res, p)
	})

	assertContains(t, out,
		"Property Analysis: €50,000 @ €800/month rent",
		"UPFRONT COSTS",
		"Down Payment (20%)",
		"Total Upfront",
		"€12,400",
		"MONTHLY BREAKDOWN",
		"[GOOD]",
		"VIABILITY",
		"Monthly Surplus",
		"€12,400 / €80,000 [OK]",
	)
	if strings.Contains(out, "\033[") {
		t.Error("NoColor output contains ANSI escapes")
	}
	if strings.Contains(out, "WARNINGS:") {
		t.Error("affordable property should have no warnings section")
	}
	if strings.Contains(out, "Mortgage Broker") {
		t.Error("zero broker fee should be hidden")
	}
}

func TestTableAnalysisWarnings(t *testing.T) {
	res, p := overBudget(t)
	out := render(t, "table", plain(), func(f Formatter, buf *bytes.Buffer) error {
		return f.Analysis(buf, res, p)
	})

	assertContains(t, out,
		"[OVER BUDGET]",
		"Monthly Shortfall",
		"[OVER]",
		"WARNINGS:",
		"  • Total upfront costs (96,400) exceed budget of 80,000",
	)
}

func TestTableColor(t *testing.T) {
	res, p := affordable(t)
	out := render(t, "table", Options{}, func(f Formatter, buf *bytes.Buffer) error {
		return f.Analysis(buf, res, p)
	})
	if !strings.Contains(out, ansiGreen) {
		t.Error("colored output should paint the GREEN verdict")
	}
}

func TestTableMatrix(t *testing.T) {
	m, p := smallMatrix(t)
	out := render(t, "table", plain(), func(f Formatter, buf *bytes.Buffer) error {
		return f.Matrix(buf, m, p)
	})

	assertContains(t, out,
		"Break-Even Rent Matrix (Target: €1,000/month, Budget: €80,000)",
		"€50K", "€100K", "€200K",
		"20%",
		"€739",
		"Legend: GREEN < €800 | YELLOW €800-€1,000 | RED > €1,000 | GRAY = Over budget",
	)
}

func TestTableAmortization(t *testing.T) {
	p := profile.Default()

	full := render(t, "table", plain(), func(f Formatter, buf *bytes.Buffer) error {
		return f.Amortization(buf, mortgage.BuildReport(100000, 0.20, p, 0))
	})
	assertContains(t, full,
		"Amortization Schedule: €80,000 loan @ 4.1% over 20 years",
		"Monthly Payment: €489.01",
		"Year", "Principal", "Interest", "Balance", "Equity",
		"100.0%",
		"Total Cost of Loan",
	)

	partial := render(t, "table", plain(), func(f Formatter, buf *bytes.Buffer) error {
		return f.Amortization(buf, mortgage.BuildReport(100000, 0.20, p, 3))
	})
	if strings.Contains(partial, "Total Cost of Loan") {
		t.Error("truncated schedule should not print total cost")
	}
	assertContains(t, partial, "Total Interest Paid")
}

func TestTableProfileListAlignment(t *testing.T) {
	summaries := []profile.Summary{
		{Name: "default", Description: "Standard investment parameters", Valid: true},
		{Name: "a", Description: "short", Valid: true},
	}
	out := render(t, "table", plain(), func(f Formatter, buf *bytes.Buffer) error {
		return f.ProfileList(buf, summaries)
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines: got %d, want 3\n%s", len(lines), out)
	}
	col := strings.Index(lines[0], "DESCRIPTION")
	if got := strings.Index(lines[1], "Standard"); got != col {
		t.Errorf("description column: got %d, want %d", got, col)
	}
	if got := strings.Index(lines[2], "short"); got != col {
		t.Errorf("description column: got %d, want %d", got, col)
	}
}

func TestTableComparison(t *testing.T) {
	out := render(t, "table", plain(), func(f Formatter, buf *bytes.Buffer) error {
		return f.Comparison(buf, comparison(t), 100000, 900)
	})
	assertContains(t, out,
		"Profile Comparison: €100,000 @ €900/month",
		"pricey", "default", "cheap",
		"Interest Rate", "7.0%", "2.0%",
		"Break-Even Rent", "€875", "€659",
		"MARGINAL", "GOOD",
	)
}

func TestRenderProfile(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderProfile(&buf, profile.Default(), plain()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	assertContains(t, out,
		"Profile: default",
		"Description: Standard investment parameters",
		"Interest Rate: 4.0%",
		"Insurance Rate: 0.10%",
		"Duration: 20 years",
		"Default Down Payment: 20%",
		"Total Available: €80,000",
		"Target Rent: €1,000/month",
		"Total: €250/month",
		"Notary/Legal: 3.0% of price",
		"Survey/Valuation: €400",
		"Green Below: 80% of target",
		"Yellow Below: 100% of target",
	)
	if strings.Contains(out, "Mortgage Broker") {
		t.Error("zero-valued purchase costs should be hidden")
	}

	buf.Reset()
	if err := RenderProfile(&buf, &models.Profile{Name: "bare", Mortgage: models.MortgageTerms{DurationYears: 1}}, plain()); err != nil {
		t.Fatal(err)
	}
	assertContains(t, buf.String(), "Description: (none)")
}

func TestPctLabel(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0.2, "20%"},
		{0.125, "12.5%"},
		{0.1 + 0.05, "15%"},
		{0, "0%"},
		{1, "100%"},
	}
	for _, tt := range tests {
		if got := pctLabel(tt.in); got != tt.want {
			t.Errorf("pctLabel(%v): got %q, want %q", tt.in, got, tt.want)
		}
	}
}
