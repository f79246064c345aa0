package billing

import (
	"time"

	"github.com/google/uuid"
)

// Refund request lifecycle: pending → processed | rejected. Both end
// states are terminal. "approved" exists only between the admin's claim
// of the row and the external refund completing.
const (
	RefundStatusPending   = "pending"
	RefundStatusApproved  = "approved"
	RefundStatusRejected  = "rejected"
	RefundStatusProcessed = "processed"
)

const (
	RefundDecisionApproved = "approved"
	RefundDecisionRejected = "rejected"
)

// RefundRequest is one user's request to reverse a completed Payment.
// Full amount only; at most one request per payment.
type RefundRequest struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	PaymentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_refund_requests_payment_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`

	AmountPence int64  `gorm:"column:amount_pence;not null"`
	Reason      string `gorm:"not null"`
	Status      string `gorm:"type:varchar(20);not null;default:'pending'"`

	AdminNotes  string
	ProcessedAt *time.Time
	ProcessedBy *uuid.UUID `gorm:"type:uuid"`

	StripeRefundID *string `gorm:"column:stripe_refund_id"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
