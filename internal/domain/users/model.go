package users

import (
	"time"

	"github.com/google/uuid"
)

// User is owned by the account/auth system. The payment core only reads
// identity fields and writes back two cache fields: subscription_tier and
// stripe_customer_id.
type User struct {
	ID    uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name  string
	Email string `gorm:"not null;uniqueIndex:idx_users_email"`
	Role  string `gorm:"type:varchar(20);not null;default:'student'"`

	SubscriptionTier string  `gorm:"column:subscription_tier;not null;default:'free'"`
	StripeCustomerID *string `gorm:"column:stripe_customer_id;uniqueIndex:idx_users_stripe_customer_id"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
