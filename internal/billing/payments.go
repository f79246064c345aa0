package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v75"
	"go.uber.org/zap"

	model "tutoring-app/internal/domain/billing"
)

// PaymentService issues and confirms one-off payment intents, keeping a
// local Payment row in step with the Stripe intent.
type PaymentService struct {
	payments PaymentRepository
	users    UserDirectory
	gateway  Gateway
	log      *zap.Logger
}

func NewPaymentService(payments PaymentRepository, users UserDirectory, gateway Gateway, log *zap.Logger) *PaymentService {
	return &PaymentService{payments: payments, users: users, gateway: gateway, log: log}
}

// PaymentIntentResult carries what the client needs to complete the
// charge on its side.
type PaymentIntentResult struct {
	Payment      *model.Payment
	IntentID     string
	ClientSecret string
}

// CreatePaymentIntent validates input, ensures the user has a Stripe
// customer, creates the intent and stores a pending Payment. Validation
// runs before any gateway call so a bad request never leaves the process.
func (s *PaymentService) CreatePaymentIntent(ctx context.Context, userID uuid.UUID, amountPence int64, currency, description string, sessionID *uuid.UUID) (*PaymentIntentResult, error) {
	if amountPence <= 0 {
		return nil, Validation("amount must be a positive integer of minor currency units")
	}
	if !model.ValidCurrency(currency) {
		return nil, Validation("unsupported currency %q", currency)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, NotFound("user not found")
	}

	customerID, err := ensureCustomer(ctx, s.users, s.gateway, user)
	if err != nil {
		return nil, err
	}

	meta := map[string]string{"user_id": userID.String()}
	if sessionID != nil {
		meta["session_id"] = sessionID.String()
	}

	intent, err := s.gateway.CreatePaymentIntent(ctx, customerID, amountPence, currency, description, meta)
	if err != nil {
		s.log.Error("stripe payment intent creation failed", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, GatewayErr(err, "failed to create payment intent")
	}

	payment := &model.Payment{
		UserID:                userID,
		SessionID:             sessionID,
		AmountPence:           amountPence,
		Currency:              currency,
		Status:                model.PaymentStatusPending,
		Description:           description,
		StripePaymentIntentID: &intent.ID,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, err
	}

	return &PaymentIntentResult{Payment: payment, IntentID: intent.ID, ClientSecret: intent.ClientSecret}, nil
}

// ConfirmPayment re-reads the intent from Stripe and maps its state
// onto the local Payment.
func (s *PaymentService) ConfirmPayment(ctx context.Context, paymentIntentID string) (*model.Payment, error) {
	payment, err := s.payments.FindByIntentID(ctx, paymentIntentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, NotFound("no payment found for intent %s", paymentIntentID)
	}

	intent, err := s.gateway.GetPaymentIntent(ctx, paymentIntentID)
	if err != nil {
		s.log.Error("stripe payment intent fetch failed", zap.String("intent_id", paymentIntentID), zap.Error(err))
		return nil, GatewayErr(err, "failed to retrieve payment intent")
	}

	status := payment.Status
	switch intent.Status {
	case stripe.PaymentIntentStatusSucceeded:
		status = model.PaymentStatusCompleted
	case stripe.PaymentIntentStatusCanceled:
		status = model.PaymentStatusCancelled
	case stripe.PaymentIntentStatusRequiresPaymentMethod:
		status = model.PaymentStatusFailed
	}

	if status != payment.Status {
		if err := s.payments.UpdateStatus(ctx, payment.ID, status); err != nil {
			return nil, err
		}
		payment.Status = status
	}

	return payment, nil
}

// ListPayments returns the user's payment history, newest first.
func (s *PaymentService) ListPayments(ctx context.Context, userID uuid.UUID) ([]model.Payment, error) {
	return s.payments.ListByUser(ctx, userID)
}
