package billing

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v75"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	model "tutoring-app/internal/domain/billing"
	"tutoring-app/internal/domain/plans"
	"tutoring-app/internal/domain/users"
)

func testUser() *users.User {
	return &users.User{
		ID:               uuid.New(),
		Name:             "Ada Student",
		Email:            "ada@example.com",
		Role:             "student",
		SubscriptionTier: plans.TierFree,
	}
}

type paymentFixture struct {
	svc      *PaymentService
	payments *fakePayments
	dir      *fakeDirectory
	gw       *fakeGateway
	user     *users.User
}

func newPaymentFixture() *paymentFixture {
	user := testUser()
	payments := newFakePayments()
	dir := newFakeDirectory(user)
	gw := newFakeGateway()
	return &paymentFixture{
		svc:      NewPaymentService(payments, dir, gw, zap.NewNop()),
		payments: payments,
		dir:      dir,
		gw:       gw,
		user:     user,
	}
}

func TestCreatePaymentIntent(t *testing.T) {
	f := newPaymentFixture()

	res, err := f.svc.CreatePaymentIntent(context.Background(), f.user.ID, 2500, model.CurrencyGBP, "Maths session", nil)
	require.NoError(t, err)

	assert.Equal(t, model.PaymentStatusPending, res.Payment.Status)
	assert.Equal(t, int64(2500), res.Payment.AmountPence)
	assert.Equal(t, model.CurrencyGBP, res.Payment.Currency)
	assert.NotEmpty(t, res.IntentID)
	assert.NotEmpty(t, res.ClientSecret)

	stored, err := f.payments.FindByIntentID(context.Background(), res.IntentID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, model.PaymentStatusPending, stored.Status)

	// First charge creates the Stripe customer and writes the id back.
	assert.Equal(t, 1, f.gw.customersCreated)
	u, _ := f.dir.FindByID(context.Background(), f.user.ID)
	require.NotNil(t, u.StripeCustomerID)
}

func TestCreatePaymentIntentReusesCustomer(t *testing.T) {
	f := newPaymentFixture()
	cid := "cus_existing"
	f.user.StripeCustomerID = &cid

	_, err := f.svc.CreatePaymentIntent(context.Background(), f.user.ID, 1000, model.CurrencyUSD, "", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, f.gw.customersCreated)
}

func TestCreatePaymentIntentValidation(t *testing.T) {
	f := newPaymentFixture()

	cases := []struct {
		name     string
		amount   int64
		currency string
	}{
		{"zero amount", 0, model.CurrencyGBP},
		{"negative amount", -500, model.CurrencyGBP},
		{"unsupported currency", 1000, "JPY"},
		{"lowercase currency", 1000, "gbp"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.CreatePaymentIntent(context.Background(), f.user.ID, tc.amount, tc.currency, "", nil)
			assert.True(t, IsValidation(err), "want validation error, got %v", err)
		})
	}

	// Validation failures must not reach the gateway or the store.
	assert.Empty(t, f.gw.intentsCreated)
	assert.Equal(t, 0, f.gw.customersCreated)
	assert.Equal(t, 0, f.payments.count())
}

func TestCreatePaymentIntentUnknownUser(t *testing.T) {
	f := newPaymentFixture()

	_, err := f.svc.CreatePaymentIntent(context.Background(), uuid.New(), 1000, model.CurrencyGBP, "", nil)
	assert.True(t, IsNotFound(err))
}

func TestCreatePaymentIntentGatewayFailure(t *testing.T) {
	f := newPaymentFixture()
	f.gw.createIntentErr = errors.New("stripe: connection reset")

	_, err := f.svc.CreatePaymentIntent(context.Background(), f.user.ID, 1000, model.CurrencyGBP, "", nil)
	assert.True(t, IsGateway(err))
	assert.Equal(t, 0, f.payments.count())
}

func TestConfirmPayment(t *testing.T) {
	cases := []struct {
		name         string
		intentStatus stripe.PaymentIntentStatus
		want         string
	}{
		{"succeeded", stripe.PaymentIntentStatusSucceeded, model.PaymentStatusCompleted},
		{"canceled", stripe.PaymentIntentStatusCanceled, model.PaymentStatusCancelled},
		{"requires payment method", stripe.PaymentIntentStatusRequiresPaymentMethod, model.PaymentStatusFailed},
		{"processing keeps pending", stripe.PaymentIntentStatusProcessing, model.PaymentStatusPending},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newPaymentFixture()
			res, err := f.svc.CreatePaymentIntent(context.Background(), f.user.ID, 2500, model.CurrencyGBP, "", nil)
			require.NoError(t, err)

			f.gw.intentStatus = tc.intentStatus
			payment, err := f.svc.ConfirmPayment(context.Background(), res.IntentID)
			require.NoError(t, err)
			assert.Equal(t, tc.want, payment.Status)

			stored, _ := f.payments.FindByIntentID(context.Background(), res.IntentID)
			assert.Equal(t, tc.want, stored.Status)
		})
	}
}

func TestConfirmPaymentUnknownIntent(t *testing.T) {
	f := newPaymentFixture()

	_, err := f.svc.ConfirmPayment(context.Background(), "pi_missing")
	assert.True(t, IsNotFound(err))
}

func TestConfirmPaymentGatewayFailure(t *testing.T) {
	f := newPaymentFixture()
	res, err := f.svc.CreatePaymentIntent(context.Background(), f.user.ID, 2500, model.CurrencyGBP, "", nil)
	require.NoError(t, err)

	f.gw.getIntentErr = errors.New("stripe: timeout")
	_, err = f.svc.ConfirmPayment(context.Background(), res.IntentID)
	assert.True(t, IsGateway(err))

	stored, _ := f.payments.FindByIntentID(context.Background(), res.IntentID)
	assert.Equal(t, model.PaymentStatusPending, stored.Status)
}

func TestListPayments(t *testing.T) {
	f := newPaymentFixture()

	for i := 0; i < 3; i++ {
		_, err := f.svc.CreatePaymentIntent(context.Background(), f.user.ID, 1000, model.CurrencyGBP, "", nil)
		require.NoError(t, err)
	}

	list, err := f.svc.ListPayments(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.Len(t, list, 3)

	other, err := f.svc.ListPayments(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, other)
}
