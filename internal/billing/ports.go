package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v75"

	model "tutoring-app/internal/domain/billing"
	"tutoring-app/internal/domain/users"
)

// Gateway is the Stripe surface this core needs. The production
// implementation lives in internal/infra/stripe; tests substitute a
// fake. Implementations return plain errors — services wrap them into
// gateway-kind errors so callers never see raw Stripe failures.
type Gateway interface {
	CreateCustomer(ctx context.Context, email, name string, metadata map[string]string) (*stripe.Customer, error)

	CreatePaymentIntent(ctx context.Context, customerID string, amountPence int64, currency, description string, metadata map[string]string) (*stripe.PaymentIntent, error)
	GetPaymentIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error)

	CreateSubscription(ctx context.Context, customerID, priceID string, trialDays int64, metadata map[string]string) (*stripe.Subscription, error)
	UpdateSubscriptionPrice(ctx context.Context, subscriptionID, priceID string) (*stripe.Subscription, error)
	SetCancelAtPeriodEnd(ctx context.Context, subscriptionID string, cancel bool) (*stripe.Subscription, error)
	CancelSubscription(ctx context.Context, subscriptionID string) (*stripe.Subscription, error)

	AttachPaymentMethod(ctx context.Context, paymentMethodID, customerID string) (*stripe.PaymentMethod, error)
	DetachPaymentMethod(ctx context.Context, paymentMethodID string) error
	SetDefaultPaymentMethod(ctx context.Context, customerID, paymentMethodID string) error

	CreateRefund(ctx context.Context, paymentIntentID string) (*stripe.Refund, error)

	VerifyWebhook(payload []byte, signature string) (stripe.Event, error)
}

// Repositories return (nil, nil) when a record does not exist; services
// translate that into not-found errors where it matters.

type PaymentRepository interface {
	Create(ctx context.Context, p *model.Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	FindByIntentID(ctx context.Context, intentID string) (*model.Payment, error)
	FindByInvoiceID(ctx context.Context, invoiceID string) (*model.Payment, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Payment, error)
	List(ctx context.Context, limit int) ([]model.Payment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

type SubscriptionRepository interface {
	Create(ctx context.Context, s *model.Subscription) error
	FindCurrentByUser(ctx context.Context, userID uuid.UUID) (*model.Subscription, error)
	FindByStripeID(ctx context.Context, stripeID string) (*model.Subscription, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
}

type PaymentMethodRepository interface {
	Create(ctx context.Context, m *model.PaymentMethod) error
	FindByID(ctx context.Context, userID, id uuid.UUID) (*model.PaymentMethod, error)
	ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]model.PaymentMethod, error)
	// SetDefault clears every other default for the user and marks the
	// given active method default, as one atomic operation.
	SetDefault(ctx context.Context, userID, id uuid.UUID) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type RefundRequestRepository interface {
	Create(ctx context.Context, r *model.RefundRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.RefundRequest, error)
	FindByPayment(ctx context.Context, paymentID uuid.UUID) (*model.RefundRequest, error)
	List(ctx context.Context) ([]model.RefundRequest, error)
	ListByStatus(ctx context.Context, status string) ([]model.RefundRequest, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.RefundRequest, error)
	// ClaimPending transitions the request out of pending iff it is
	// still pending, stamping the admin and time. Returns false when
	// another call already claimed it.
	ClaimPending(ctx context.Context, id, adminID uuid.UUID, status, notes string) (bool, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
}

// UserDirectory is the boundary to the account system: lookup by id
// plus write-back of the two cache fields this core owns
// (subscription_tier, stripe_customer_id).
type UserDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*users.User, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
}
