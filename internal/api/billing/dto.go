package billing

import (
	"time"

	"github.com/google/uuid"

	model "tutoring-app/internal/domain/billing"
)

// Stored amounts are minor units; everything leaving the API is major
// units (pence / 100).

type PaymentResponse struct {
	ID          uuid.UUID  `json:"id"`
	SessionID   *uuid.UUID `json:"session_id,omitempty"`
	Amount      float64    `json:"amount"`
	Currency    string     `json:"currency"`
	Status      string     `json:"status"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toPaymentResponse(p *model.Payment) PaymentResponse {
	return PaymentResponse{
		ID:          p.ID,
		SessionID:   p.SessionID,
		Amount:      float64(p.AmountPence) / 100,
		Currency:    p.Currency,
		Status:      p.Status,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
	}
}

func toPaymentResponses(payments []model.Payment) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(payments))
	for i := range payments {
		out = append(out, toPaymentResponse(&payments[i]))
	}
	return out
}

type SubscriptionResponse struct {
	ID                 uuid.UUID  `json:"id"`
	PlanType           string     `json:"plan_type"`
	Status             string     `json:"status"`
	BillingCycle       string     `json:"billing_cycle"`
	Amount             float64    `json:"amount"`
	Currency           string     `json:"currency"`
	CurrentPeriodStart time.Time  `json:"current_period_start"`
	CurrentPeriodEnd   time.Time  `json:"current_period_end"`
	CancelAtPeriodEnd  bool       `json:"cancel_at_period_end"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	TrialStart         *time.Time `json:"trial_start,omitempty"`
	TrialEnd           *time.Time `json:"trial_end,omitempty"`
}

func toSubscriptionResponse(s *model.Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		ID:                 s.ID,
		PlanType:           s.PlanType,
		Status:             s.Status,
		BillingCycle:       s.BillingCycle,
		Amount:             float64(s.AmountPence) / 100,
		Currency:           s.Currency,
		CurrentPeriodStart: s.CurrentPeriodStart,
		CurrentPeriodEnd:   s.CurrentPeriodEnd,
		CancelAtPeriodEnd:  s.CancelAtPeriodEnd,
		CancelledAt:        s.CancelledAt,
		TrialStart:         s.TrialStart,
		TrialEnd:           s.TrialEnd,
	}
}

type PaymentMethodResponse struct {
	ID           uuid.UUID `json:"id"`
	Type         string    `json:"type"`
	IsDefault    bool      `json:"is_default"`
	MaskedNumber string    `json:"masked_number"`
	CardBrand    string    `json:"card_brand,omitempty"`
	CardExpMonth int       `json:"card_exp_month,omitempty"`
	CardExpYear  int       `json:"card_exp_year,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func toPaymentMethodResponse(m *model.PaymentMethod) PaymentMethodResponse {
	return PaymentMethodResponse{
		ID:           m.ID,
		Type:         m.Type,
		IsDefault:    m.IsDefault,
		MaskedNumber: m.MaskedNumber(),
		CardBrand:    m.CardBrand,
		CardExpMonth: m.CardExpMonth,
		CardExpYear:  m.CardExpYear,
		CreatedAt:    m.CreatedAt,
	}
}

func toPaymentMethodResponses(methods []model.PaymentMethod) []PaymentMethodResponse {
	out := make([]PaymentMethodResponse, 0, len(methods))
	for i := range methods {
		out = append(out, toPaymentMethodResponse(&methods[i]))
	}
	return out
}

type RefundRequestResponse struct {
	ID          uuid.UUID  `json:"id"`
	PaymentID   uuid.UUID  `json:"payment_id"`
	Amount      float64    `json:"amount"`
	Reason      string     `json:"reason"`
	Status      string     `json:"status"`
	AdminNotes  string     `json:"admin_notes,omitempty"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toRefundRequestResponse(r *model.RefundRequest) RefundRequestResponse {
	return RefundRequestResponse{
		ID:          r.ID,
		PaymentID:   r.PaymentID,
		Amount:      float64(r.AmountPence) / 100,
		Reason:      r.Reason,
		Status:      r.Status,
		AdminNotes:  r.AdminNotes,
		ProcessedAt: r.ProcessedAt,
		CreatedAt:   r.CreatedAt,
	}
}

func toRefundRequestResponses(reqs []model.RefundRequest) []RefundRequestResponse {
	out := make([]RefundRequestResponse, 0, len(reqs))
	for i := range reqs {
		out = append(out, toRefundRequestResponse(&reqs[i]))
	}
	return out
}
