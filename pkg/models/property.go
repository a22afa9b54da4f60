package models

// PropertyInput is one analysis request.
type PropertyInput struct {
	Price        float64 `json:"price"         validate:"gt=0"`
	ExpectedRent float64 `json:"expected_rent" validate:"gt=0"`
	// DownPaymentPercent overrides the profile default when set.
	DownPaymentPercent *float64 `json:"down_payment_percent,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// DownPayment resolves the down payment fraction against a fallback.
func (p PropertyInput) DownPayment(fallback float64) float64 {
	if p.DownPaymentPercent != nil {
		return *p.DownPaymentPercent
	}
	return fallback
}

// Float64 returns a pointer to v, for optional fields.
func Float64(v float64) *float64 { return &v }
