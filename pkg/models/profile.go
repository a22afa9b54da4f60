package models

// MortgageTerms holds the loan parameters of a profile.
type MortgageTerms struct {
	InterestRate       float64 `mapstructure:"interest_rate"        yaml:"interest_rate"        json:"interest_rate"        validate:"gte=0,lte=1"`
	InsuranceRate      float64 `mapstructure:"insurance_rate"       yaml:"insurance_rate"       json:"insurance_rate"       validate:"gte=0,lte=1"`
	DurationYears      int     `mapstructure:"duration_years"       yaml:"duration_years"       json:"duration_years"       validate:"gte=1,lte=50"`
	DefaultDownPayment float64 `mapstructure:"default_down_payment" yaml:"default_down_payment" json:"default_down_payment" validate:"gte=0,lte=1"`
}

// Budget constrains how much capital an investor can put in and what rent they aim for.
type Budget struct {
	TotalAvailable float64 `mapstructure:"total_available" yaml:"total_available" json:"total_available" validate:"gte=0"`
	TargetRent     float64 `mapstructure:"target_rent"     yaml:"target_rent"     json:"target_rent"     validate:"gte=0"`
}

// MonthlyCosts are the fixed monthly charges of owning the property.
type MonthlyCosts struct {
	PropertyTax float64 `mapstructure:"property_tax" yaml:"property_tax" json:"property_tax" validate:"gte=0"`
	Insurance   float64 `mapstructure:"insurance"    yaml:"insurance"    json:"insurance"    validate:"gte=0"`
	Maintenance float64 `mapstructure:"maintenance"  yaml:"maintenance"  json:"maintenance"  validate:"gte=0"`
	Management  float64 `mapstructure:"management"   yaml:"management"   json:"management"   validate:"gte=0"`
}

// Total returns the sum of all fixed monthly costs.
func (m MonthlyCosts) Total() float64 {
	return m.PropertyTax + m.Insurance + m.Maintenance + m.Management
}

// CostKind tags how a CostItem resolves to an amount.
type CostKind string

const (
	CostPercentage CostKind = "percentage" // fraction of the purchase price
	CostFixed      CostKind = "fixed"      // flat currency amount
)

// CostItem is a one-time purchase cost, either a fraction of the price or a fixed amount.
type CostItem struct {
	Kind  CostKind `mapstructure:"type"  yaml:"type"  json:"type"  validate:"oneof=percentage fixed"`
	Value float64  `mapstructure:"value" yaml:"value" json:"value" validate:"gte=0"`
}

// Percentage builds a cost item charged as a fraction of the base amount.
func Percentage(v float64) CostItem { return CostItem{Kind: CostPercentage, Value: v} }

// Fixed builds a flat cost item.
func Fixed(v float64) CostItem { return CostItem{Kind: CostFixed, Value: v} }

// Resolve returns the currency amount of the item for the given base (purchase price).
func (c CostItem) Resolve(base float64) float64 {
	switch c.Kind {
	case CostPercentage:
		return base * c.Value
	case CostFixed:
		return c.Value
	}
	return 0
}

// PurchaseCosts itemizes the one-time costs paid at purchase, excluding the down payment.
type PurchaseCosts struct {
	NotaryLegal     CostItem `mapstructure:"notary_legal"     yaml:"notary_legal"     json:"notary_legal"`
	BankArrangement CostItem `mapstructure:"bank_arrangement" yaml:"bank_arrangement" json:"bank_arrangement"`
	SurveyValuation CostItem `mapstructure:"survey_valuation" yaml:"survey_valuation" json:"survey_valuation"`
	MortgageBroker  CostItem `mapstructure:"mortgage_broker"  yaml:"mortgage_broker"  json:"mortgage_broker"`
	Other           CostItem `mapstructure:"other"            yaml:"other"            json:"other"`
}

// Total resolves and sums every item against the purchase price.
func (p PurchaseCosts) Total(price float64) float64 {
	return p.NotaryLegal.Resolve(price) +
		p.BankArrangement.Resolve(price) +
		p.SurveyValuation.Resolve(price) +
		p.MortgageBroker.Resolve(price) +
		p.Other.Resolve(price)
}

// Items returns the cost items with display labels, in presentation order.
func (p PurchaseCosts) Items() []NamedCost {
	return []NamedCost{
		{"Notary/Legal", p.NotaryLegal},
		{"Bank Arrangement", p.BankArrangement},
		{"Survey/Valuation", p.SurveyValuation},
		{"Mortgage Broker", p.MortgageBroker},
		{"Other", p.Other},
	}
}

// NamedCost pairs a cost item with its display label.
type NamedCost struct {
	Label string
	Item  CostItem
}

// Thresholds are ratios of break-even rent to target rent used for the verdict.
// GreenBelow <= YellowBelow is expected but not enforced.
type Thresholds struct {
	GreenBelow  float64 `mapstructure:"green_below"  yaml:"green_below"  json:"green_below"  validate:"gte=0,lte=1"`
	YellowBelow float64 `mapstructure:"yellow_below" yaml:"yellow_below" json:"yellow_below" validate:"gte=0,lte=1"`
}

// Profile is the complete financial configuration of one investor scenario.
type Profile struct {
	Name          string        `mapstructure:"name"           yaml:"name"           json:"name"           validate:"required,profilename"`
	Description   string        `mapstructure:"description"    yaml:"description"    json:"description"`
	Mortgage      MortgageTerms `mapstructure:"mortgage"       yaml:"mortgage"       json:"mortgage"`
	Budget        Budget        `mapstructure:"budget"         yaml:"budget"         json:"budget"`
	MonthlyCosts  MonthlyCosts  `mapstructure:"monthly_costs"  yaml:"monthly_costs"  json:"monthly_costs"`
	PurchaseCosts PurchaseCosts `mapstructure:"purchase_costs" yaml:"purchase_costs" json:"purchase_costs"`
	Thresholds    Thresholds    `mapstructure:"thresholds"     yaml:"thresholds"     json:"thresholds"`
}

// Clone returns a copy of the profile under a new name and description.
func (p *Profile) Clone(name, description string) *Profile {
	c := *p
	c.Name = name
	c.Description = description
	return &c
}
