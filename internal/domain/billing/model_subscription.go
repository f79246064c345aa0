package billing

import (
	"time"

	"github.com/google/uuid"
)

const (
	SubscriptionStatusTrialing  = "trialing"
	SubscriptionStatusActive    = "active"
	SubscriptionStatusPastDue   = "past_due"
	SubscriptionStatusCancelled = "cancelled"
	SubscriptionStatusExpired   = "expired"
)

// Subscription is a user's recurring billing relationship. At most one
// row per user may be active or trialing at a time; the subscription
// service enforces this before creating a new one.
type Subscription struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index"`

	PlanType     string `gorm:"type:varchar(20);not null"`
	Status       string `gorm:"type:varchar(20);not null"`
	BillingCycle string `gorm:"type:varchar(20);not null"`
	AmountPence  int64  `gorm:"column:amount_pence;not null"`
	Currency     string `gorm:"type:varchar(3);not null"`

	// Period bounds are a local approximation until the first webhook
	// sync overwrites them with Stripe's authoritative values.
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time

	CancelAtPeriodEnd bool
	CancelledAt       *time.Time
	TrialStart        *time.Time
	TrialEnd          *time.Time

	StripeSubscriptionID string `gorm:"column:stripe_subscription_id;uniqueIndex:idx_subscriptions_stripe_subscription_id"`
	StripeCustomerID     string `gorm:"column:stripe_customer_id"`

	// Creation timestamp of the newest webhook event applied to this
	// row. Older subscription events are ignored so an out-of-order
	// delivery cannot overwrite newer state.
	LastEventAt *time.Time `gorm:"column:last_event_at"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Current reports whether the subscription still occupies the user's
// single active/trialing slot.
func (s *Subscription) Current() bool {
	return s.Status == SubscriptionStatusActive || s.Status == SubscriptionStatusTrialing
}
