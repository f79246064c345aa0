package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v75"

	model "tutoring-app/internal/domain/billing"
	"tutoring-app/internal/domain/users"
)

// In-memory fakes for the ports. Kept deliberately dumb: maps behind a
// mutex, conditional updates done under the lock so the claim/default
// semantics match the SQL implementations.

type fakePayments struct {
	mu    sync.Mutex
	items map[uuid.UUID]*model.Payment
}

func newFakePayments() *fakePayments {
	return &fakePayments{items: map[uuid.UUID]*model.Payment{}}
}

func (f *fakePayments) Create(_ context.Context, p *model.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	cp := *p
	f.items[p.ID] = &cp
	return nil
}

func (f *fakePayments) FindByID(_ context.Context, id uuid.UUID) (*model.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.items[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (f *fakePayments) FindByIntentID(_ context.Context, intentID string) (*model.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.items {
		if p.StripePaymentIntentID != nil && *p.StripePaymentIntentID == intentID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakePayments) FindByInvoiceID(_ context.Context, invoiceID string) (*model.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.items {
		if p.StripeInvoiceID != nil && *p.StripeInvoiceID == invoiceID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakePayments) ListByUser(_ context.Context, userID uuid.UUID) ([]model.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Payment
	for _, p := range f.items {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePayments) List(_ context.Context, limit int) ([]model.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Payment
	for _, p := range f.items {
		if len(out) == limit {
			break
		}
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakePayments) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.items[id]; ok {
		p.Status = status
	}
	return nil
}

func (f *fakePayments) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

type fakeSubscriptions struct {
	mu    sync.Mutex
	items map[uuid.UUID]*model.Subscription
}

func newFakeSubscriptions() *fakeSubscriptions {
	return &fakeSubscriptions{items: map[uuid.UUID]*model.Subscription{}}
}

func (f *fakeSubscriptions) Create(_ context.Context, s *model.Subscription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.CreatedAt = time.Now()
	cp := *s
	f.items[s.ID] = &cp
	return nil
}

func (f *fakeSubscriptions) FindCurrentByUser(_ context.Context, userID uuid.UUID) (*model.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.items {
		if s.UserID == userID && s.Current() {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeSubscriptions) FindByStripeID(_ context.Context, stripeID string) (*model.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.items {
		if s.StripeSubscriptionID == stripeID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeSubscriptions) Update(_ context.Context, id uuid.UUID, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.items[id]
	if !ok {
		return nil
	}
	for k, v := range fields {
		switch k {
		case "status":
			s.Status = v.(string)
		case "plan_type":
			s.PlanType = v.(string)
		case "billing_cycle":
			s.BillingCycle = v.(string)
		case "amount_pence":
			s.AmountPence = v.(int64)
		case "currency":
			s.Currency = v.(string)
		case "cancel_at_period_end":
			s.CancelAtPeriodEnd = v.(bool)
		case "cancelled_at":
			s.CancelledAt = timeValue(v)
		case "current_period_start":
			s.CurrentPeriodStart = v.(time.Time)
		case "current_period_end":
			s.CurrentPeriodEnd = v.(time.Time)
		case "trial_start":
			s.TrialStart = timeValue(v)
		case "trial_end":
			s.TrialEnd = timeValue(v)
		case "last_event_at":
			s.LastEventAt = timeValue(v)
		default:
			return fmt.Errorf("fakeSubscriptions: unknown field %q", k)
		}
	}
	return nil
}

func (f *fakeSubscriptions) get(id uuid.UUID) *model.Subscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.items[id]; ok {
		cp := *s
		return &cp
	}
	return nil
}

func (f *fakeSubscriptions) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

func timeValue(v interface{}) *time.Time {
	switch t := v.(type) {
	case time.Time:
		return &t
	case *time.Time:
		return t
	default:
		return nil
	}
}

type fakePaymentMethods struct {
	mu    sync.Mutex
	items map[uuid.UUID]*model.PaymentMethod
}

func newFakePaymentMethods() *fakePaymentMethods {
	return &fakePaymentMethods{items: map[uuid.UUID]*model.PaymentMethod{}}
}

func (f *fakePaymentMethods) Create(_ context.Context, m *model.PaymentMethod) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	cp := *m
	f.items[m.ID] = &cp
	return nil
}

func (f *fakePaymentMethods) FindByID(_ context.Context, userID, id uuid.UUID) (*model.PaymentMethod, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.items[id]; ok && m.UserID == userID {
		cp := *m
		return &cp, nil
	}
	return nil, nil
}

func (f *fakePaymentMethods) ListActiveByUser(_ context.Context, userID uuid.UUID) ([]model.PaymentMethod, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.PaymentMethod
	for _, m := range f.items {
		if m.UserID == userID && m.IsActive {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakePaymentMethods) SetDefault(_ context.Context, userID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	target, ok := f.items[id]
	if !ok || target.UserID != userID || !target.IsActive {
		return errors.New("payment method not found")
	}
	for _, m := range f.items {
		if m.UserID == userID {
			m.IsDefault = false
		}
	}
	target.IsDefault = true
	return nil
}

func (f *fakePaymentMethods) Deactivate(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.items[id]; ok {
		m.IsActive = false
		m.IsDefault = false
	}
	return nil
}

func (f *fakePaymentMethods) defaults(userID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.items {
		if m.UserID == userID && m.IsActive && m.IsDefault {
			n++
		}
	}
	return n
}

type fakeRefunds struct {
	mu    sync.Mutex
	items map[uuid.UUID]*model.RefundRequest
}

func newFakeRefunds() *fakeRefunds {
	return &fakeRefunds{items: map[uuid.UUID]*model.RefundRequest{}}
}

func (f *fakeRefunds) Create(_ context.Context, r *model.RefundRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	r.CreatedAt = time.Now()
	cp := *r
	f.items[r.ID] = &cp
	return nil
}

func (f *fakeRefunds) FindByID(_ context.Context, id uuid.UUID) (*model.RefundRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.items[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeRefunds) FindByPayment(_ context.Context, paymentID uuid.UUID) (*model.RefundRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.items {
		if r.PaymentID == paymentID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeRefunds) List(_ context.Context) ([]model.RefundRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.RefundRequest
	for _, r := range f.items {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeRefunds) ListByStatus(_ context.Context, status string) ([]model.RefundRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.RefundRequest
	for _, r := range f.items {
		if r.Status == status {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRefunds) ListByUser(_ context.Context, userID uuid.UUID) ([]model.RefundRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.RefundRequest
	for _, r := range f.items {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRefunds) ClaimPending(_ context.Context, id, adminID uuid.UUID, status, notes string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.items[id]
	if !ok || r.Status != model.RefundStatusPending {
		return false, nil
	}
	now := time.Now()
	r.Status = status
	r.AdminNotes = notes
	r.ProcessedAt = &now
	r.ProcessedBy = &adminID
	return true, nil
}

func (f *fakeRefunds) Update(_ context.Context, id uuid.UUID, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.items[id]
	if !ok {
		return nil
	}
	for k, v := range fields {
		switch k {
		case "status":
			r.Status = v.(string)
		case "stripe_refund_id":
			rid := v.(string)
			r.StripeRefundID = &rid
		default:
			return fmt.Errorf("fakeRefunds: unknown field %q", k)
		}
	}
	return nil
}

type fakeDirectory struct {
	mu    sync.Mutex
	items map[uuid.UUID]*users.User
}

func newFakeDirectory(us ...*users.User) *fakeDirectory {
	d := &fakeDirectory{items: map[uuid.UUID]*users.User{}}
	for _, u := range us {
		d.items[u.ID] = u
	}
	return d
}

func (f *fakeDirectory) FindByID(_ context.Context, id uuid.UUID) (*users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.items[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeDirectory) Update(_ context.Context, id uuid.UUID, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.items[id]
	if !ok {
		return errors.New("user not found")
	}
	for k, v := range fields {
		switch k {
		case "subscription_tier":
			u.SubscriptionTier = v.(string)
		case "stripe_customer_id":
			cid := v.(string)
			u.StripeCustomerID = &cid
		default:
			return fmt.Errorf("fakeDirectory: unknown field %q", k)
		}
	}
	return nil
}

func (f *fakeDirectory) tier(id uuid.UUID) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.items[id]; ok {
		return u.SubscriptionTier
	}
	return ""
}

// fakeGateway fakes the Stripe surface. Zero value behaves like a
// well-functioning gateway; error fields inject failures per call.
type fakeGateway struct {
	mu sync.Mutex

	seq int

	intentStatus stripe.PaymentIntentStatus
	attachResult *stripe.PaymentMethod
	event        stripe.Event

	createCustomerErr error
	createIntentErr   error
	getIntentErr      error
	createSubErr      error
	refundErr         error

	customersCreated  int
	intentsCreated    []string
	subsCreated       []string
	subsCancelled     []string
	cancelAtPeriodEnd map[string]bool
	attached          []string
	detached          []string
	defaultSet        map[string]string
	refundsCreated    []string
	priceUpdates      map[string]string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		intentStatus:      stripe.PaymentIntentStatusSucceeded,
		cancelAtPeriodEnd: map[string]bool{},
		defaultSet:        map[string]string{},
		priceUpdates:      map[string]string{},
	}
}

func (g *fakeGateway) next(prefix string) string {
	g.seq++
	return fmt.Sprintf("%s_%d", prefix, g.seq)
}

func (g *fakeGateway) CreateCustomer(_ context.Context, email, name string, _ map[string]string) (*stripe.Customer, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createCustomerErr != nil {
		return nil, g.createCustomerErr
	}
	g.customersCreated++
	return &stripe.Customer{ID: g.next("cus"), Email: email, Name: name}, nil
}

func (g *fakeGateway) CreatePaymentIntent(_ context.Context, customerID string, amountPence int64, currency, description string, _ map[string]string) (*stripe.PaymentIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createIntentErr != nil {
		return nil, g.createIntentErr
	}
	id := g.next("pi")
	g.intentsCreated = append(g.intentsCreated, id)
	return &stripe.PaymentIntent{
		ID:           id,
		ClientSecret: id + "_secret_test",
		Amount:       amountPence,
		Currency:     stripe.Currency(currency),
		Status:       stripe.PaymentIntentStatusRequiresPaymentMethod,
	}, nil
}

func (g *fakeGateway) GetPaymentIntent(_ context.Context, id string) (*stripe.PaymentIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.getIntentErr != nil {
		return nil, g.getIntentErr
	}
	return &stripe.PaymentIntent{ID: id, Status: g.intentStatus}, nil
}

func (g *fakeGateway) CreateSubscription(_ context.Context, customerID, priceID string, trialDays int64, _ map[string]string) (*stripe.Subscription, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createSubErr != nil {
		return nil, g.createSubErr
	}
	id := g.next("sub")
	g.subsCreated = append(g.subsCreated, id)
	status := stripe.SubscriptionStatusActive
	if trialDays > 0 {
		status = stripe.SubscriptionStatusTrialing
	}
	return &stripe.Subscription{ID: id, Status: status}, nil
}

func (g *fakeGateway) UpdateSubscriptionPrice(_ context.Context, subscriptionID, priceID string) (*stripe.Subscription, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.priceUpdates[subscriptionID] = priceID
	return &stripe.Subscription{ID: subscriptionID}, nil
}

func (g *fakeGateway) SetCancelAtPeriodEnd(_ context.Context, subscriptionID string, cancel bool) (*stripe.Subscription, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancelAtPeriodEnd[subscriptionID] = cancel
	return &stripe.Subscription{ID: subscriptionID, CancelAtPeriodEnd: cancel}, nil
}

func (g *fakeGateway) CancelSubscription(_ context.Context, subscriptionID string) (*stripe.Subscription, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.subsCancelled = append(g.subsCancelled, subscriptionID)
	return &stripe.Subscription{ID: subscriptionID, Status: stripe.SubscriptionStatusCanceled}, nil
}

func (g *fakeGateway) AttachPaymentMethod(_ context.Context, paymentMethodID, customerID string) (*stripe.PaymentMethod, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.attached = append(g.attached, paymentMethodID)
	if g.attachResult != nil {
		res := *g.attachResult
		res.ID = paymentMethodID
		return &res, nil
	}
	return &stripe.PaymentMethod{
		ID:   paymentMethodID,
		Type: stripe.PaymentMethodTypeCard,
		Card: &stripe.PaymentMethodCard{
			Brand:    stripe.PaymentMethodCardBrandVisa,
			Last4:    "4242",
			ExpMonth: 12,
			ExpYear:  2030,
		},
	}, nil
}

func (g *fakeGateway) DetachPaymentMethod(_ context.Context, paymentMethodID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.detached = append(g.detached, paymentMethodID)
	return nil
}

func (g *fakeGateway) SetDefaultPaymentMethod(_ context.Context, customerID, paymentMethodID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.defaultSet[customerID] = paymentMethodID
	return nil
}

func (g *fakeGateway) CreateRefund(_ context.Context, paymentIntentID string) (*stripe.Refund, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.refundErr != nil {
		return nil, g.refundErr
	}
	id := g.next("re")
	g.refundsCreated = append(g.refundsCreated, id)
	return &stripe.Refund{ID: id, Status: stripe.RefundStatusSucceeded}, nil
}

func (g *fakeGateway) VerifyWebhook(_ []byte, signature string) (stripe.Event, error) {
	if signature != "valid" {
		return stripe.Event{}, errors.New("signature mismatch")
	}
	return g.event, nil
}

// signedEvent loads an event into the fake gateway and returns the
// payload/signature pair that will verify against it.
func (g *fakeGateway) signedEvent(eventType string, created int64, obj interface{}) ([]byte, string) {
	raw, _ := json.Marshal(obj)
	g.event = stripe.Event{
		ID:      g.next("evt"),
		Type:    stripe.EventType(eventType),
		Created: created,
		Data:    &stripe.EventData{Raw: raw},
	}
	return raw, "valid"
}
