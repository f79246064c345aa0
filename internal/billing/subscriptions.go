package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	model "tutoring-app/internal/domain/billing"
	"tutoring-app/internal/domain/plans"
)

// SubscriptionService creates, modifies and cancels recurring
// subscriptions, and keeps the user's cached tier in step.
type SubscriptionService struct {
	subs    SubscriptionRepository
	users   UserDirectory
	gateway Gateway
	catalog plans.Catalog
	log     *zap.Logger
}

func NewSubscriptionService(subs SubscriptionRepository, users UserDirectory, gateway Gateway, catalog plans.Catalog, log *zap.Logger) *SubscriptionService {
	return &SubscriptionService{subs: subs, users: users, gateway: gateway, catalog: catalog, log: log}
}

// CreateSubscription starts a new recurring subscription at checkout.
// paymentMethodID is an optional Stripe payment method token to attach
// and set as the customer default before subscribing.
func (s *SubscriptionService) CreateSubscription(ctx context.Context, userID uuid.UUID, planType, billingCycle, paymentMethodID string, trialDays int64) (*model.Subscription, error) {
	if !plans.ValidPlanType(planType) {
		return nil, Validation("unknown plan type %q", planType)
	}
	if !plans.ValidBillingCycle(billingCycle) {
		return nil, Validation("unknown billing cycle %q", billingCycle)
	}

	existing, err := s.subs.FindCurrentByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, Conflict("user already has an active subscription")
	}

	price, ok := s.catalog.Price(planType, billingCycle)
	if !ok {
		return nil, Validation("no price configured for %s/%s", planType, billingCycle)
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

	if paymentMethodID != "" {
		if _, err := s.gateway.AttachPaymentMethod(ctx, paymentMethodID, customerID); err != nil {
			s.log.Error("stripe payment method attach failed", zap.String("user_id", userID.String()), zap.Error(err))
			return nil, GatewayErr(err, "failed to attach payment method")
		}
		if err := s.gateway.SetDefaultPaymentMethod(ctx, customerID, paymentMethodID); err != nil {
			s.log.Error("stripe default payment method update failed", zap.String("user_id", userID.String()), zap.Error(err))
			return nil, GatewayErr(err, "failed to set default payment method")
		}
	}

	stripeSub, err := s.gateway.CreateSubscription(ctx, customerID, price.StripePriceID, trialDays, map[string]string{
		"user_id": userID.String(),
	})
	if err != nil {
		s.log.Error("stripe subscription creation failed", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, GatewayErr(err, "failed to create subscription")
	}

	now := time.Now()
	sub := &model.Subscription{
		UserID:               userID,
		PlanType:             planType,
		Status:               model.SubscriptionStatusActive,
		BillingCycle:         billingCycle,
		AmountPence:          price.AmountPence,
		Currency:             price.Currency,
		CurrentPeriodStart:   now,
		CurrentPeriodEnd:     periodEnd(now, billingCycle),
		StripeSubscriptionID: stripeSub.ID,
		StripeCustomerID:     customerID,
	}
	if trialDays > 0 {
		trialEnd := now.AddDate(0, 0, int(trialDays))
		sub.Status = model.SubscriptionStatusTrialing
		sub.TrialStart = &now
		sub.TrialEnd = &trialEnd
	}

	if err := s.subs.Create(ctx, sub); err != nil {
		return nil, err
	}

	if err := s.users.Update(ctx, userID, map[string]interface{}{
		"subscription_tier": plans.TierFor(planType),
	}); err != nil {
		return nil, err
	}

	return sub, nil
}

// UpdateSubscription changes the plan and/or billing cycle of the
// user's current subscription. Empty arguments keep the current value.
func (s *SubscriptionService) UpdateSubscription(ctx context.Context, userID uuid.UUID, planType, billingCycle string) (*model.Subscription, error) {
	sub, err := s.subs.FindCurrentByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, NotFound("no active subscription to update")
	}

	if planType == "" {
		planType = sub.PlanType
	}
	if billingCycle == "" {
		billingCycle = sub.BillingCycle
	}
	if !plans.ValidPlanType(planType) {
		return nil, Validation("unknown plan type %q", planType)
	}
	if !plans.ValidBillingCycle(billingCycle) {
		return nil, Validation("unknown billing cycle %q", billingCycle)
	}

	price, ok := s.catalog.Price(planType, billingCycle)
	if !ok {
		return nil, Validation("no price configured for %s/%s", planType, billingCycle)
	}

	if _, err := s.gateway.UpdateSubscriptionPrice(ctx, sub.StripeSubscriptionID, price.StripePriceID); err != nil {
		s.log.Error("stripe subscription price update failed", zap.String("subscription_id", sub.StripeSubscriptionID), zap.Error(err))
		return nil, GatewayErr(err, "failed to update subscription")
	}

	if err := s.subs.Update(ctx, sub.ID, map[string]interface{}{
		"plan_type":     planType,
		"billing_cycle": billingCycle,
		"amount_pence":  price.AmountPence,
		"currency":      price.Currency,
	}); err != nil {
		return nil, err
	}
	sub.PlanType = planType
	sub.BillingCycle = billingCycle
	sub.AmountPence = price.AmountPence
	sub.Currency = price.Currency

	if err := s.users.Update(ctx, userID, map[string]interface{}{
		"subscription_tier": plans.TierFor(planType),
	}); err != nil {
		return nil, err
	}

	return sub, nil
}

// CancelSubscription ends the user's subscription. Immediate
// cancellation takes effect now and downgrades the cached tier;
// otherwise the subscription is flagged to lapse at period end and the
// status stays unchanged until Stripe's deletion event arrives.
func (s *SubscriptionService) CancelSubscription(ctx context.Context, userID uuid.UUID, immediate bool) (*model.Subscription, error) {
	sub, err := s.subs.FindCurrentByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, NotFound("no active subscription to cancel")
	}

	if !immediate {
		if _, err := s.gateway.SetCancelAtPeriodEnd(ctx, sub.StripeSubscriptionID, true); err != nil {
			s.log.Error("stripe cancel-at-period-end update failed", zap.String("subscription_id", sub.StripeSubscriptionID), zap.Error(err))
			return nil, GatewayErr(err, "failed to schedule cancellation")
		}
		if err := s.subs.Update(ctx, sub.ID, map[string]interface{}{
			"cancel_at_period_end": true,
		}); err != nil {
			return nil, err
		}
		sub.CancelAtPeriodEnd = true
		return sub, nil
	}

	if _, err := s.gateway.CancelSubscription(ctx, sub.StripeSubscriptionID); err != nil {
		s.log.Error("stripe subscription cancel failed", zap.String("subscription_id", sub.StripeSubscriptionID), zap.Error(err))
		return nil, GatewayErr(err, "failed to cancel subscription")
	}

	now := time.Now()
	if err := s.subs.Update(ctx, sub.ID, map[string]interface{}{
		"status":       model.SubscriptionStatusCancelled,
		"cancelled_at": now,
	}); err != nil {
		return nil, err
	}
	sub.Status = model.SubscriptionStatusCancelled
	sub.CancelledAt = &now

	if err := s.users.Update(ctx, userID, map[string]interface{}{
		"subscription_tier": plans.TierFree,
	}); err != nil {
		return nil, err
	}

	return sub, nil
}

// GetSubscription returns the user's current active/trialing
// subscription.
func (s *SubscriptionService) GetSubscription(ctx context.Context, userID uuid.UUID) (*model.Subscription, error) {
	sub, err := s.subs.FindCurrentByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, NotFound("no active subscription")
	}
	return sub, nil
}

// periodEnd is a local approximation of the first billing period; the
// authoritative bounds arrive with the first subscription webhook.
func periodEnd(start time.Time, billingCycle string) time.Time {
	if billingCycle == plans.CycleYearly {
		return start.AddDate(1, 0, 0)
	}
	return start.AddDate(0, 1, 0)
}
