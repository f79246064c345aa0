// Package stripe implements the billing gateway over stripe-go.
package stripe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/client"
	"github.com/stripe/stripe-go/v75/webhook"
)

// Every outbound call is bounded by this timeout. A timed-out call says
// nothing about whether Stripe applied the change; callers must not
// assume either way.
const callTimeout = 15 * time.Second

// Gateway wraps a Stripe API client. It holds no global state: the key
// lives on the injected client, not on the stripe package.
type Gateway struct {
	api           *client.API
	webhookSecret string
}

func New(secretKey, webhookSecret string) *Gateway {
	return &Gateway{
		api:           client.New(secretKey, nil),
		webhookSecret: webhookSecret,
	}
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, callTimeout)
}

func (g *Gateway) CreateCustomer(ctx context.Context, email, name string, metadata map[string]string) (*stripe.Customer, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	params := &stripe.CustomerParams{
		Email:    stripe.String(email),
		Name:     stripe.String(name),
		Metadata: metadata,
	}
	params.Context = ctx
	return g.api.Customers.New(params)
}

func (g *Gateway) CreatePaymentIntent(ctx context.Context, customerID string, amountPence int64, currency, description string, metadata map[string]string) (*stripe.PaymentIntent, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(amountPence),
		Currency:    stripe.String(strings.ToLower(currency)),
		Customer:    stripe.String(customerID),
		Description: stripe.String(description),
		Metadata:    metadata,
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	return g.api.PaymentIntents.New(params)
}

func (g *Gateway) GetPaymentIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	return g.api.PaymentIntents.Get(id, params)
}

func (g *Gateway) CreateSubscription(ctx context.Context, customerID, priceID string, trialDays int64, metadata map[string]string) (*stripe.Subscription, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	params := &stripe.SubscriptionParams{
		Customer: stripe.String(customerID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(priceID)},
		},
		Metadata: metadata,
	}
	if trialDays > 0 {
		params.TrialPeriodDays = stripe.Int64(trialDays)
	}
	params.Context = ctx
	return g.api.Subscriptions.New(params)
}

// UpdateSubscriptionPrice swaps the subscription's single item to a new
// price. Stripe needs the item id, so the subscription is fetched first.
func (g *Gateway) UpdateSubscriptionPrice(ctx context.Context, subscriptionID, priceID string) (*stripe.Subscription, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	getParams := &stripe.SubscriptionParams{}
	getParams.Context = ctx
	sub, err := g.api.Subscriptions.Get(subscriptionID, getParams)
	if err != nil {
		return nil, err
	}
	if sub.Items == nil || len(sub.Items.Data) == 0 {
		return nil, fmt.Errorf("subscription %s has no items", subscriptionID)
	}

	params := &stripe.SubscriptionParams{
		Items: []*stripe.SubscriptionItemsParams{
			{
				ID:    stripe.String(sub.Items.Data[0].ID),
				Price: stripe.String(priceID),
			},
		},
		ProrationBehavior: stripe.String("create_prorations"),
	}
	params.Context = ctx
	return g.api.Subscriptions.Update(subscriptionID, params)
}

func (g *Gateway) SetCancelAtPeriodEnd(ctx context.Context, subscriptionID string, cancel bool) (*stripe.Subscription, error) {
	ctx, done := withTimeout(ctx)
	defer done()

	params := &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(cancel),
	}
	params.Context = ctx
	return g.api.Subscriptions.Update(subscriptionID, params)
}

func (g *Gateway) CancelSubscription(ctx context.Context, subscriptionID string) (*stripe.Subscription, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	params := &stripe.SubscriptionCancelParams{}
	params.Context = ctx
	return g.api.Subscriptions.Cancel(subscriptionID, params)
}

func (g *Gateway) AttachPaymentMethod(ctx context.Context, paymentMethodID, customerID string) (*stripe.PaymentMethod, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	params := &stripe.PaymentMethodAttachParams{
		Customer: stripe.String(customerID),
	}
	params.Context = ctx
	return g.api.PaymentMethods.Attach(paymentMethodID, params)
}

func (g *Gateway) DetachPaymentMethod(ctx context.Context, paymentMethodID string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	params := &stripe.PaymentMethodDetachParams{}
	params.Context = ctx
	_, err := g.api.PaymentMethods.Detach(paymentMethodID, params)
	return err
}

func (g *Gateway) SetDefaultPaymentMethod(ctx context.Context, customerID, paymentMethodID string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	params := &stripe.CustomerParams{
		InvoiceSettings: &stripe.CustomerInvoiceSettingsParams{
			DefaultPaymentMethod: stripe.String(paymentMethodID),
		},
	}
	params.Context = ctx
	_, err := g.api.Customers.Update(customerID, params)
	return err
}

func (g *Gateway) CreateRefund(ctx context.Context, paymentIntentID string) (*stripe.Refund, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentIntentID),
	}
	params.Context = ctx
	return g.api.Refunds.New(params)
}

// VerifyWebhook checks the signature against the raw, unparsed payload.
// Re-serializing the body before this call would invalidate it.
func (g *Gateway) VerifyWebhook(payload []byte, signature string) (stripe.Event, error) {
	return webhook.ConstructEventWithOptions(
		payload,
		signature,
		g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
}
