package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v75"
	"go.uber.org/zap"

	model "tutoring-app/internal/domain/billing"
	"tutoring-app/internal/domain/plans"
)

// WebhookProcessor verifies and dispatches Stripe's asynchronous
// lifecycle events. Every handler is a find-or-ignore idempotent
// transition: an event referencing an unknown local record is
// acknowledged without effect, and re-delivery of an applied event
// converges on the same state.
type WebhookProcessor struct {
	gateway  Gateway
	payments PaymentRepository
	subs     SubscriptionRepository
	users    UserDirectory
	log      *zap.Logger

	handlers map[string]eventHandler
}

type eventHandler func(ctx context.Context, event *stripe.Event) error

func NewWebhookProcessor(gateway Gateway, payments PaymentRepository, subs SubscriptionRepository, users UserDirectory, log *zap.Logger) *WebhookProcessor {
	p := &WebhookProcessor{
		gateway:  gateway,
		payments: payments,
		subs:     subs,
		users:    users,
		log:      log,
	}
	// Adding an event kind is a row here, not a new switch arm.
	p.handlers = map[string]eventHandler{
		"payment_intent.succeeded":      p.handlePaymentIntentSucceeded,
		"payment_intent.payment_failed": p.handlePaymentIntentFailed,
		"customer.subscription.created": p.handleSubscriptionSync,
		"customer.subscription.updated": p.handleSubscriptionSync,
		"customer.subscription.deleted": p.handleSubscriptionDeleted,
		"invoice.payment_succeeded":     p.handleInvoicePaymentSucceeded,
		"invoice.payment_failed":        p.handleInvoicePaymentFailed,
		"charge.refunded":               p.handleChargeRefunded,
	}
	return p
}

// HandleEvent verifies the signature against the raw payload, then
// dispatches. A bad signature fails before any handler runs. Unknown
// event types are acknowledged so Stripe does not retry them; handler
// errors propagate so Stripe redelivers.
func (p *WebhookProcessor) HandleEvent(ctx context.Context, payload []byte, signature string) error {
	event, err := p.gateway.VerifyWebhook(payload, signature)
	if err != nil {
		p.log.Warn("webhook signature verification failed", zap.Error(err))
		return SignatureErr(err)
	}

	handler, ok := p.handlers[string(event.Type)]
	if !ok {
		p.log.Info("ignoring unhandled webhook event", zap.String("type", string(event.Type)), zap.String("event_id", event.ID))
		return nil
	}

	if err := handler(ctx, &event); err != nil {
		p.log.Error("webhook handler failed", zap.String("type", string(event.Type)), zap.String("event_id", event.ID), zap.Error(err))
		return err
	}
	return nil
}

func (p *WebhookProcessor) handlePaymentIntentSucceeded(ctx context.Context, event *stripe.Event) error {
	return p.setPaymentStatusByIntent(ctx, event, model.PaymentStatusCompleted)
}

func (p *WebhookProcessor) handlePaymentIntentFailed(ctx context.Context, event *stripe.Event) error {
	return p.setPaymentStatusByIntent(ctx, event, model.PaymentStatusFailed)
}

func (p *WebhookProcessor) setPaymentStatusByIntent(ctx context.Context, event *stripe.Event, status string) error {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return fmt.Errorf("parse payment intent: %w", err)
	}
	if intent.ID == "" {
		return nil
	}

	payment, err := p.payments.FindByIntentID(ctx, intent.ID)
	if err != nil {
		return err
	}
	if payment == nil {
		return nil
	}
	if payment.Status == status {
		return nil
	}
	return p.payments.UpdateStatus(ctx, payment.ID, status)
}

// handleSubscriptionSync applies created/updated events: a full field
// sync plus a tier upgrade when Stripe reports the subscription active.
// Events older than the newest one already applied are ignored.
func (p *WebhookProcessor) handleSubscriptionSync(ctx context.Context, event *stripe.Event) error {
	var stripeSub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &stripeSub); err != nil {
		return fmt.Errorf("parse subscription: %w", err)
	}
	if stripeSub.ID == "" {
		return nil
	}

	sub, err := p.subs.FindByStripeID(ctx, stripeSub.ID)
	if err != nil {
		return err
	}
	if sub == nil {
		return nil
	}

	eventAt := time.Unix(event.Created, 0)
	if sub.LastEventAt != nil && eventAt.Before(*sub.LastEventAt) {
		p.log.Info("ignoring stale subscription event",
			zap.String("event_id", event.ID),
			zap.Time("event_at", eventAt),
			zap.Time("last_event_at", *sub.LastEventAt))
		return nil
	}

	status := subscriptionStatusFromStripe(stripeSub.Status)
	updates := map[string]interface{}{
		"status":               status,
		"current_period_start": time.Unix(stripeSub.CurrentPeriodStart, 0),
		"current_period_end":   time.Unix(stripeSub.CurrentPeriodEnd, 0),
		"cancel_at_period_end": stripeSub.CancelAtPeriodEnd,
		"trial_start":          unixOrNil(stripeSub.TrialStart),
		"trial_end":            unixOrNil(stripeSub.TrialEnd),
		"last_event_at":        eventAt,
	}
	if err := p.subs.Update(ctx, sub.ID, updates); err != nil {
		return err
	}

	if status == model.SubscriptionStatusActive {
		return p.users.Update(ctx, sub.UserID, map[string]interface{}{
			"subscription_tier": plans.TierFor(sub.PlanType),
		})
	}
	return nil
}

func (p *WebhookProcessor) handleSubscriptionDeleted(ctx context.Context, event *stripe.Event) error {
	var stripeSub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &stripeSub); err != nil {
		return fmt.Errorf("parse subscription: %w", err)
	}
	if stripeSub.ID == "" {
		return nil
	}

	sub, err := p.subs.FindByStripeID(ctx, stripeSub.ID)
	if err != nil {
		return err
	}
	if sub == nil {
		return nil
	}

	cancelledAt := time.Unix(event.Created, 0)
	if stripeSub.CanceledAt != 0 {
		cancelledAt = time.Unix(stripeSub.CanceledAt, 0)
	}
	if err := p.subs.Update(ctx, sub.ID, map[string]interface{}{
		"status":        model.SubscriptionStatusCancelled,
		"cancelled_at":  cancelledAt,
		"last_event_at": time.Unix(event.Created, 0),
	}); err != nil {
		return err
	}

	return p.users.Update(ctx, sub.UserID, map[string]interface{}{
		"subscription_tier": plans.TierFree,
	})
}

// handleInvoicePaymentSucceeded records a recurring charge. No local
// Payment exists yet for invoice charges, so this is event-sourced
// creation, deduplicated on the invoice id. Zero-amount trial invoices
// arrive without a payment intent, so the intent id cannot be the
// dedupe key.
func (p *WebhookProcessor) handleInvoicePaymentSucceeded(ctx context.Context, event *stripe.Event) error {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return fmt.Errorf("parse invoice: %w", err)
	}
	if invoice.ID == "" || invoice.Subscription == nil || invoice.Subscription.ID == "" {
		return nil
	}

	sub, err := p.subs.FindByStripeID(ctx, invoice.Subscription.ID)
	if err != nil {
		return err
	}
	if sub == nil {
		return nil
	}

	existing, err := p.payments.FindByInvoiceID(ctx, invoice.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	var intentID *string
	if invoice.PaymentIntent != nil && invoice.PaymentIntent.ID != "" {
		id := invoice.PaymentIntent.ID
		intentID = &id
	}

	currency := sub.Currency
	if invoice.Currency != "" {
		currency = strings.ToUpper(string(invoice.Currency))
	}

	invoiceID := invoice.ID
	return p.payments.Create(ctx, &model.Payment{
		UserID:                sub.UserID,
		AmountPence:           invoice.AmountPaid,
		Currency:              currency,
		Status:                model.PaymentStatusCompleted,
		Description:           fmt.Sprintf("%s plan renewal", sub.PlanType),
		StripePaymentIntentID: intentID,
		StripeInvoiceID:       &invoiceID,
	})
}

func (p *WebhookProcessor) handleInvoicePaymentFailed(ctx context.Context, event *stripe.Event) error {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return fmt.Errorf("parse invoice: %w", err)
	}
	if invoice.Subscription == nil || invoice.Subscription.ID == "" {
		return nil
	}

	sub, err := p.subs.FindByStripeID(ctx, invoice.Subscription.ID)
	if err != nil {
		return err
	}
	if sub == nil {
		return nil
	}

	return p.subs.Update(ctx, sub.ID, map[string]interface{}{
		"status": model.SubscriptionStatusPastDue,
	})
}

func (p *WebhookProcessor) handleChargeRefunded(ctx context.Context, event *stripe.Event) error {
	var charge stripe.Charge
	if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
		return fmt.Errorf("parse charge: %w", err)
	}
	if charge.PaymentIntent == nil || charge.PaymentIntent.ID == "" {
		return nil
	}

	payment, err := p.payments.FindByIntentID(ctx, charge.PaymentIntent.ID)
	if err != nil {
		return err
	}
	if payment == nil || payment.Status == model.PaymentStatusRefunded {
		return nil
	}
	return p.payments.UpdateStatus(ctx, payment.ID, model.PaymentStatusRefunded)
}

// subscriptionStatusFromStripe collapses Stripe's subscription statuses
// onto the local lifecycle.
func subscriptionStatusFromStripe(s stripe.SubscriptionStatus) string {
	switch s {
	case stripe.SubscriptionStatusActive:
		return model.SubscriptionStatusActive
	case stripe.SubscriptionStatusTrialing:
		return model.SubscriptionStatusTrialing
	case stripe.SubscriptionStatusPastDue, stripe.SubscriptionStatusUnpaid:
		return model.SubscriptionStatusPastDue
	case stripe.SubscriptionStatusCanceled:
		return model.SubscriptionStatusCancelled
	case stripe.SubscriptionStatusIncompleteExpired:
		return model.SubscriptionStatusExpired
	default:
		return model.SubscriptionStatusActive
	}
}

func unixOrNil(ts int64) interface{} {
	if ts == 0 {
		return nil
	}
	return time.Unix(ts, 0)
}
