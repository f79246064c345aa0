package plans

// Plan type and billing cycle values accepted at checkout.
const (
	PlanBasic   = "basic"
	PlanPremium = "premium"

	CycleMonthly = "monthly"
	CycleYearly  = "yearly"
)

// Key identifies one purchasable plan variant.
type Key struct {
	PlanType     string
	BillingCycle string
}

// Price is the charge for one plan variant, in minor currency units,
// together with the Stripe price it maps to.
type Price struct {
	AmountPence   int64
	Currency      string
	StripePriceID string
}

// Catalog is the static plan×cycle pricing table. It is built from
// configuration at startup and injected into the subscription service;
// nothing in here reads the environment.
type Catalog map[Key]Price

func (c Catalog) Price(planType, billingCycle string) (Price, bool) {
	p, ok := c[Key{PlanType: planType, BillingCycle: billingCycle}]
	return p, ok
}

func ValidPlanType(s string) bool {
	return s == PlanBasic || s == PlanPremium
}

func ValidBillingCycle(s string) bool {
	return s == CycleMonthly || s == CycleYearly
}
