package billing

import (
	"time"

	"github.com/google/uuid"
)

// Payment statuses. Refund is a status transition, never a deletion.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusCancelled = "cancelled"
	PaymentStatusRefunded  = "refunded"
)

// Supported currencies, ISO codes, amounts always in minor units.
const (
	CurrencyGBP = "GBP"
	CurrencyUSD = "USD"
	CurrencyEUR = "EUR"
)

func ValidCurrency(c string) bool {
	return c == CurrencyGBP || c == CurrencyUSD || c == CurrencyEUR
}

// Payment is one attempted or completed charge, mirroring a Stripe
// payment intent. Rows are created by the payment service for one-off
// charges and by the webhook processor for recurring invoice charges.
type Payment struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	SessionID *uuid.UUID `gorm:"type:uuid"`

	AmountPence int64  `gorm:"column:amount_pence;not null"`
	Currency    string `gorm:"type:varchar(3);not null"`
	Status      string `gorm:"type:varchar(20);not null;default:'pending'"`
	Description string

	StripePaymentIntentID *string `gorm:"column:stripe_payment_intent_id;uniqueIndex:idx_payments_stripe_payment_intent_id"`
	// Set on rows created from invoice events. Zero-amount trial
	// invoices carry no payment intent, so redelivery dedupe keys on
	// the invoice id instead.
	StripeInvoiceID *string `gorm:"column:stripe_invoice_id;uniqueIndex:idx_payments_stripe_invoice_id"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
