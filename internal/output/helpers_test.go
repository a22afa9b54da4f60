package output

import (
	"bytes"
	"context"
	"testing"

	"github.com/seenimoa/mortgagecli/internal/analysis/mortgage"
	"github.com/seenimoa/mortgagecli/internal/profile"
	"github.com/seenimoa/mortgagecli/pkg/models"
)

// affordable is GREEN under the default profile: 12,400 upfront, ~494.5 break-even.
func affordable(t *testing.T) (models.AnalysisResult, *models.Profile) {
	t.Helper()
	p := profile.Default()
	return mortgage.Analyze(models.PropertyInput{Price: 50000, ExpectedRent: 800}, p), p
}

// overBudget needs 96,400 upfront against the default 80,000 budget.
func overBudget(t *testing.T) (models.AnalysisResult, *models.Profile) {
	t.Helper()
	p := profile.Default()
	return mortgage.Analyze(models.PropertyInput{Price: 400000, ExpectedRent: 1000}, p), p
}

// smallMatrix is one row at 20% down: two GREEN cells and one RED.
func smallMatrix(t *testing.T) (*models.Matrix, *models.Profile) {
	t.Helper()
	p := profile.Default()
	m, err := mortgage.BuildMatrix(context.Background(), p, []float64{50000, 100000, 200000}, []float64{0.20}, 1000, 1)
	if err != nil {
		t.Fatalf("BuildMatrix: %v", err)
	}
	return m, p
}

func comparison(t *testing.T) []mortgage.Comparison {
	t.Helper()
	cheap := profile.Default().Clone("cheap", "")
	cheap.Mortgage.InterestRate = 0.02
	pricey := profile.Default().Clone("pricey", "")
	pricey.Mortgage.InterestRate = 0.07

	results, err := mortgage.Compare(context.Background(), []*models.Profile{pricey, profile.Default(), cheap}, 100000, 900)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	return results
}

func render(t *testing.T, format string, opts Options, fn func(Formatter, *bytes.Buffer) error) string {
	t.Helper()
	f, err := Get(format, opts)
	if err != nil {
		t.Fatalf("Get(%q): %v", format, err)
	}
	var buf bytes.Buffer
	if err := fn(f, &buf); err != nil {
		t.Fatalf("%s render: %v", format, err)
	}
	return buf.String()
}
