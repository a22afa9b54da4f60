package mortgage

import (
	"math"
	"testing"

	"github.com/seenimoa/mortgagecli/pkg/models"
)

// spreadsheetProfile mirrors the reference spreadsheet configuration.
func spreadsheetProfile() *models.Profile {
	return &models.Profile{
		Name: "default",
		Mortgage: models.MortgageTerms{
			InterestRate:       0.04,
			InsuranceRate:      0.001,
			DurationYears:      20,
			DefaultDownPayment: 0.20,
		},
		Budget: models.Budget{TotalAvailable: 80000, TargetRent: 1000},
		MonthlyCosts: models.MonthlyCosts{
			PropertyTax: 50,
			Insurance:   50,
			Maintenance: 100,
			Management:  50,
		},
		PurchaseCosts: models.PurchaseCosts{
			NotaryLegal:     models.Percentage(0.03),
			BankArrangement: models.Percentage(0.01),
			SurveyValuation: models.Fixed(400),
			MortgageBroker:  models.Fixed(0),
			Other:           models.Fixed(0),
		},
		Thresholds: models.Thresholds{GreenBelow: 0.80, YellowBelow: 1.00},
	}
}

func assertClose(t *testing.T, desc string, want, got, tol float64) {
	t.Helper()
	if math.Abs(want-got) > tol {
		t.Errorf("%s: got %.4f, want %.4f (±%.4f)", desc, got, want, tol)
	}
}

func assertWithinPct(t *testing.T, desc string, want, got, pct float64) {
	t.Helper()
	if math.Abs(want-got) > math.Abs(want)*pct {
		t.Errorf("%s: got %.4f, want %.4f (±%.2f%%)", desc, got, want, pct*100)
	}
}
