package mortgage

import (
	"math"

	"github.com/seenimoa/mortgagecli/pkg/models"
	"github.com/seenimoa/mortgagecli/pkg/utils"
)

// GenerateSchedule simulates the loan month by month and returns one entry per year.
//
// limitYears > 0 caps the number of returned entries without changing the
// simulated balance. The schedule ends early once the balance is repaid.
func GenerateSchedule(principal, annualRate float64, years int, propertyValue float64, limitYears int) []models.AmortizationEntry {
	if principal <= 0 || years <= 0 {
		return []models.AmortizationEntry{}
	}

	monthlyRate := 0.0
	if annualRate > 0 {
		monthlyRate = annualRate / 12
	}
	payment := levelPayment(principal, monthlyRate, years*12)

	numYears := years
	if limitYears > 0 && limitYears < years {
		numYears = limitYears
	}

	schedule := make([]models.AmortizationEntry, 0, numYears)
	balance := principal

	for year := 1; year <= numYears; year++ {
		var yearPrincipal, yearInterest float64

		for month := 0; month < 12 && balance > 0; month++ {
			interest := balance * monthlyRate
			principalPart := math.Min(payment-interest, balance)

			yearInterest += interest
			yearPrincipal += principalPart
			balance = math.Max(0, balance-principalPart)
		}

		equity := 0.0
		if propertyValue > 0 {
			equity = (propertyValue - balance) / propertyValue
		}

		schedule = append(schedule, models.AmortizationEntry{
			Year:             year,
			PrincipalPaid:    utils.RoundCents(yearPrincipal),
			InterestPaid:     utils.RoundCents(yearInterest),
			RemainingBalance: utils.RoundCents(balance),
			EquityPercent:    utils.RoundBasisPoints(equity),
		})

		if balance <= 0 {
			break
		}
	}

	return schedule
}

// levelPayment is the constant monthly instalment for a monthly rate and term.
func levelPayment(principal, monthlyRate float64, months int) float64 {
	if monthlyRate <= 0 {
		return principal / float64(months)
	}
	return principal * monthlyRate / (1 - math.Pow(1+monthlyRate, -float64(months)))
}

// BuildReport resolves the loan for a purchase under a profile and attaches its schedule.
func BuildReport(price, downPaymentPct float64, p *models.Profile, limitYears int) models.AmortizationReport {
	loan := LoanAmount(price, downPaymentPct)
	rate := EffectiveRate(p.Mortgage.InterestRate, p.Mortgage.InsuranceRate)
	years := p.Mortgage.DurationYears

	return models.AmortizationReport{
		Price:              price,
		DownPaymentPercent: downPaymentPct,
		LoanAmount:         loan,
		EffectiveRate:      rate,
		DurationYears:      years,
		MonthlyPayment:     MonthlyPayment(loan, rate, years),
		Schedule:           GenerateSchedule(loan, rate, years, price, limitYears),
		Truncated:          limitYears > 0 && limitYears < years,
	}
}
