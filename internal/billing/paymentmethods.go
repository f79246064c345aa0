package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v75"
	"go.uber.org/zap"

	model "tutoring-app/internal/domain/billing"
)

// PaymentMethodService stores tokenized instruments and keeps the
// single-default invariant: at most one of a user's active methods is
// the default, locally and on the Stripe customer.
type PaymentMethodService struct {
	methods PaymentMethodRepository
	users   UserDirectory
	gateway Gateway
	log     *zap.Logger
}

func NewPaymentMethodService(methods PaymentMethodRepository, users UserDirectory, gateway Gateway, log *zap.Logger) *PaymentMethodService {
	return &PaymentMethodService{methods: methods, users: users, gateway: gateway, log: log}
}

// AddPaymentMethod attaches a Stripe payment method token to the
// user's customer and stores a masked local copy.
func (s *PaymentMethodService) AddPaymentMethod(ctx context.Context, userID uuid.UUID, token string, makeDefault bool) (*model.PaymentMethod, error) {
	if token == "" {
		return nil, Validation("payment method token is required")
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

	attached, err := s.gateway.AttachPaymentMethod(ctx, token, customerID)
	if err != nil {
		s.log.Error("stripe payment method attach failed", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, GatewayErr(err, "failed to attach payment method")
	}

	method, err := maskedMethod(attached)
	if err != nil {
		return nil, err
	}
	method.UserID = userID
	method.StripeCustomerID = customerID
	method.IsActive = true

	if err := s.methods.Create(ctx, method); err != nil {
		return nil, err
	}

	if makeDefault {
		if err := s.methods.SetDefault(ctx, userID, method.ID); err != nil {
			return nil, err
		}
		method.IsDefault = true
		if err := s.gateway.SetDefaultPaymentMethod(ctx, customerID, attached.ID); err != nil {
			s.log.Error("stripe default payment method update failed", zap.String("user_id", userID.String()), zap.Error(err))
			return nil, GatewayErr(err, "failed to set default payment method")
		}
	}

	return method, nil
}

// ListPaymentMethods returns the user's active methods.
func (s *PaymentMethodService) ListPaymentMethods(ctx context.Context, userID uuid.UUID) ([]model.PaymentMethod, error) {
	return s.methods.ListActiveByUser(ctx, userID)
}

// DeletePaymentMethod detaches the instrument at Stripe and
// soft-deactivates the local row. History referencing the method stays
// intact.
func (s *PaymentMethodService) DeletePaymentMethod(ctx context.Context, userID, id uuid.UUID) error {
	method, err := s.methods.FindByID(ctx, userID, id)
	if err != nil {
		return err
	}
	if method == nil || !method.IsActive {
		return NotFound("payment method not found")
	}

	if err := s.gateway.DetachPaymentMethod(ctx, method.StripePaymentMethodID); err != nil {
		s.log.Error("stripe payment method detach failed", zap.String("payment_method_id", method.StripePaymentMethodID), zap.Error(err))
		return GatewayErr(err, "failed to remove payment method")
	}

	return s.methods.Deactivate(ctx, id)
}

// SetDefaultPaymentMethod swaps the user's default. The local swap is a
// single atomic repository operation; the gateway is informed after.
func (s *PaymentMethodService) SetDefaultPaymentMethod(ctx context.Context, userID, id uuid.UUID) (*model.PaymentMethod, error) {
	method, err := s.methods.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if method == nil || !method.IsActive {
		return nil, NotFound("payment method not found")
	}

	if err := s.methods.SetDefault(ctx, userID, id); err != nil {
		return nil, err
	}
	method.IsDefault = true

	if err := s.gateway.SetDefaultPaymentMethod(ctx, method.StripeCustomerID, method.StripePaymentMethodID); err != nil {
		s.log.Error("stripe default payment method update failed", zap.String("payment_method_id", method.StripePaymentMethodID), zap.Error(err))
		return nil, GatewayErr(err, "failed to set default payment method")
	}

	return method, nil
}

// maskedMethod extracts the masked display fields from a Stripe
// payment method. Only card, US bank account and PayPal instruments
// are accepted.
func maskedMethod(pm *stripe.PaymentMethod) (*model.PaymentMethod, error) {
	method := &model.PaymentMethod{StripePaymentMethodID: pm.ID}

	switch string(pm.Type) {
	case "card":
		method.Type = model.MethodTypeCard
		if pm.Card != nil {
			method.CardBrand = string(pm.Card.Brand)
			method.CardLast4 = pm.Card.Last4
			method.CardExpMonth = int(pm.Card.ExpMonth)
			method.CardExpYear = int(pm.Card.ExpYear)
		}
	case "us_bank_account":
		method.Type = model.MethodTypeBankAccount
		if pm.USBankAccount != nil {
			method.CardBrand = pm.USBankAccount.BankName
			method.CardLast4 = pm.USBankAccount.Last4
		}
	case "paypal":
		method.Type = model.MethodTypePaypal
		if pm.Paypal != nil {
			method.PaypalEmail = pm.Paypal.PayerEmail
		}
	default:
		return nil, Validation("unsupported payment method type %q", pm.Type)
	}

	return method, nil
}
