package plans

// Tier constants (single source of truth for users.subscription_tier)
const (
	TierFree    = "free"
	TierBasic   = "basic"
	TierPremium = "premium"
)

// TierFor maps a plan type to the tier cached on the user record.
// Unknown plan types fall back to the base tier.
func TierFor(planType string) string {
	switch planType {
	case PlanBasic:
		return TierBasic
	case PlanPremium:
		return TierPremium
	default:
		return TierFree
	}
}
