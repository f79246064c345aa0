package billing

import (
	"time"

	"github.com/google/uuid"
)

const (
	MethodTypeCard        = "card"
	MethodTypeBankAccount = "bank_account"
	MethodTypePaypal      = "paypal"
)

// PaymentMethod is a stored, tokenized instrument. Only masked display
// data is kept locally; the real instrument lives at Stripe. "Delete"
// is a soft-deactivation so historical payments keep a valid reference.
type PaymentMethod struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index"`

	Type      string `gorm:"type:varchar(20);not null"`
	IsDefault bool   `gorm:"not null;default:false"`
	IsActive  bool   `gorm:"not null;default:true"`

	// Masked display fields. Bank accounts reuse Brand for the bank
	// name and Last4 for the account tail.
	CardBrand    string `gorm:"column:card_brand"`
	CardLast4    string `gorm:"column:card_last4;type:varchar(4)"`
	CardExpMonth int    `gorm:"column:card_exp_month"`
	CardExpYear  int    `gorm:"column:card_exp_year"`
	PaypalEmail  string `gorm:"column:paypal_email"`

	StripePaymentMethodID string `gorm:"column:stripe_payment_method_id;not null;uniqueIndex:idx_payment_methods_stripe_payment_method_id"`
	StripeCustomerID      string `gorm:"column:stripe_customer_id"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// MaskedNumber derives a display string from the stored masked fields.
// No network call.
func (m *PaymentMethod) MaskedNumber() string {
	switch m.Type {
	case MethodTypeCard:
		return "**** **** **** " + m.CardLast4
	case MethodTypeBankAccount:
		return m.CardBrand + " ****" + m.CardLast4
	case MethodTypePaypal:
		return m.PaypalEmail
	default:
		return ""
	}
}
