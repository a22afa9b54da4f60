// Package mortgage implements the loan and investment arithmetic: payment
// formula, amortization schedules, property analysis and sensitivity grids.
//
// Every function is pure. Degenerate inputs yield zero or empty results
// instead of errors; callers validate ranges before calling in.
package mortgage

import "math"

// MonthlyPayment returns the level monthly payment of an amortizing loan.
// A non-positive principal pays 0; a non-positive rate repays the principal
// in equal instalments without interest.
func MonthlyPayment(principal, annualRate float64, years int) float64 {
	if principal <= 0 {
		return 0
	}
	months := float64(years * 12)
	if annualRate <= 0 {
		return principal / months
	}
	r := annualRate / 12
	return principal * r / (1 - math.Pow(1+r, -months))
}

// LoanAmount returns the financed part of the price.
func LoanAmount(price, downPaymentPct float64) float64 {
	return price * (1 - downPaymentPct)
}

// DownPayment returns the cash part of the price.
func DownPayment(price, downPaymentPct float64) float64 {
	return price * downPaymentPct
}

// EffectiveRate adds the mortgage insurance rate to the interest rate.
func EffectiveRate(interestRate, insuranceRate float64) float64 {
	return interestRate + insuranceRate
}

// CashOnCashReturn divides annual net income by the cash invested.
// Returns 0 when nothing was invested; that 0 is a guard, not a break-even signal.
func CashOnCashReturn(annualNetIncome, totalCashInvested float64) float64 {
	if totalCashInvested <= 0 {
		return 0
	}
	return annualNetIncome / totalCashInvested
}

// BreakEvenRent is the rent that exactly covers the mortgage and fixed costs.
func BreakEvenRent(mortgagePayment, fixedMonthlyCosts float64) float64 {
	return mortgagePayment + fixedMonthlyCosts
}
