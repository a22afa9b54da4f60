package profile

import (
	"github.com/spf13/viper"

	"github.com/seenimoa/mortgagecli/pkg/models"
)

// DefaultName is the built-in profile, always available even when absent on disk.
const DefaultName = "default"

// Default returns a fresh copy of the built-in profile.
func Default() *models.Profile {
	return &models.Profile{
		Name:        DefaultName,
		Description: "Standard investment parameters",
		Mortgage: models.MortgageTerms{
			InterestRate:       0.04,
			InsuranceRate:      0.001,
			DurationYears:      20,
			DefaultDownPayment: 0.20,
		},
		Budget: models.Budget{
			TotalAvailable: 80000,
			TargetRent:     1000,
		},
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
		Thresholds: models.Thresholds{
			GreenBelow:  0.80,
			YellowBelow: 1.00,
		},
	}
}

// requiredKeys must be present in a profile file; everything else has a default.
var requiredKeys = []string{
	"mortgage.interest_rate",
	"budget.total_available",
	"budget.target_rent",
	"purchase_costs.notary_legal.type",
	"purchase_costs.notary_legal.value",
	"purchase_costs.bank_arrangement.type",
	"purchase_costs.bank_arrangement.value",
	"purchase_costs.survey_valuation.type",
	"purchase_costs.survey_valuation.value",
}

// setDefaults fills the optional profile fields.
func setDefaults(v *viper.Viper) {
	v.SetDefault("description", "")

	v.SetDefault("mortgage.insurance_rate", 0.001)
	v.SetDefault("mortgage.duration_years", 20)
	v.SetDefault("mortgage.default_down_payment", 0.20)

	v.SetDefault("monthly_costs.property_tax", 0)
	v.SetDefault("monthly_costs.insurance", 0)
	v.SetDefault("monthly_costs.maintenance", 0)
	v.SetDefault("monthly_costs.management", 0)

	v.SetDefault("purchase_costs.mortgage_broker.type", string(models.CostFixed))
	v.SetDefault("purchase_costs.mortgage_broker.value", 0)
	v.SetDefault("purchase_costs.other.type", string(models.CostFixed))
	v.SetDefault("purchase_costs.other.value", 0)

	v.SetDefault("thresholds.green_below", 0.80)
	v.SetDefault("thresholds.yellow_below", 1.00)
}
