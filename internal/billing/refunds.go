package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	model "tutoring-app/internal/domain/billing"
)

// RefundService runs the refund request workflow: a user files a
// request against a completed payment, an admin approves or rejects it.
type RefundService struct {
	refunds  RefundRequestRepository
	payments PaymentRepository
	gateway  Gateway
	log      *zap.Logger
}

func NewRefundService(refunds RefundRequestRepository, payments PaymentRepository, gateway Gateway, log *zap.Logger) *RefundService {
	return &RefundService{refunds: refunds, payments: payments, gateway: gateway, log: log}
}

// RequestRefund files a full-amount refund request for one of the
// caller's completed payments. One request per payment.
func (s *RefundService) RequestRefund(ctx context.Context, userID, paymentID uuid.UUID, reason string) (*model.RefundRequest, error) {
	if reason == "" {
		return nil, Validation("a reason is required")
	}

	payment, err := s.payments.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil || payment.UserID != userID {
		return nil, NotFound("payment not found")
	}
	if payment.Status != model.PaymentStatusCompleted {
		return nil, Conflict("only completed payments can be refunded")
	}

	existing, err := s.refunds.FindByPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, Conflict("a refund request already exists for this payment")
	}

	request := &model.RefundRequest{
		PaymentID:   paymentID,
		UserID:      userID,
		AmountPence: payment.AmountPence,
		Reason:      reason,
		Status:      model.RefundStatusPending,
	}
	if err := s.refunds.Create(ctx, request); err != nil {
		return nil, err
	}

	return request, nil
}

// ProcessRefund is the admin transition out of pending. The pending
// row is claimed atomically before any Stripe call, so two concurrent
// approvals cannot both issue a refund.
func (s *RefundService) ProcessRefund(ctx context.Context, adminID, requestID uuid.UUID, decision, adminNotes string) (*model.RefundRequest, error) {
	if decision != model.RefundDecisionApproved && decision != model.RefundDecisionRejected {
		return nil, Validation("decision must be %q or %q", model.RefundDecisionApproved, model.RefundDecisionRejected)
	}
	if decision == model.RefundDecisionRejected && adminNotes == "" {
		return nil, Validation("rejecting a refund requires admin notes")
	}

	request, err := s.refunds.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, NotFound("refund request not found")
	}
	if request.Status != model.RefundStatusPending {
		return nil, Conflict("refund request already processed")
	}

	// Anything that would make an approval unrefundable is checked
	// before the claim; a claimed request has no way back to pending.
	var payment *model.Payment
	if decision == model.RefundDecisionApproved {
		payment, err = s.payments.FindByID(ctx, request.PaymentID)
		if err != nil {
			return nil, err
		}
		if payment == nil || payment.StripePaymentIntentID == nil {
			return nil, Conflict("payment has no external charge to refund")
		}
	}

	claimStatus := model.RefundStatusApproved
	if decision == model.RefundDecisionRejected {
		claimStatus = model.RefundStatusRejected
	}
	claimed, err := s.refunds.ClaimPending(ctx, requestID, adminID, claimStatus, adminNotes)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, Conflict("refund request already processed")
	}

	now := time.Now()
	request.Status = claimStatus
	request.AdminNotes = adminNotes
	request.ProcessedAt = &now
	request.ProcessedBy = &adminID

	if decision == model.RefundDecisionRejected {
		return request, nil
	}

	refund, err := s.gateway.CreateRefund(ctx, *payment.StripePaymentIntentID)
	if err != nil {
		// The claim stands: re-running would reopen the double-refund
		// window. Left in "approved" for manual reconciliation.
		s.log.Error("stripe refund failed after claim",
			zap.String("refund_request_id", requestID.String()),
			zap.String("payment_intent_id", *payment.StripePaymentIntentID),
			zap.Error(err))
		return nil, GatewayErr(err, "failed to issue refund")
	}

	if err := s.refunds.Update(ctx, requestID, map[string]interface{}{
		"status":           model.RefundStatusProcessed,
		"stripe_refund_id": refund.ID,
	}); err != nil {
		return nil, err
	}
	if err := s.payments.UpdateStatus(ctx, payment.ID, model.PaymentStatusRefunded); err != nil {
		return nil, err
	}

	request.Status = model.RefundStatusProcessed
	request.StripeRefundID = &refund.ID
	return request, nil
}

// ListRefundRequests returns the admin view: every request when no
// status filter is given, otherwise only those in that status.
func (s *RefundService) ListRefundRequests(ctx context.Context, status string) ([]model.RefundRequest, error) {
	if status == "" {
		return s.refunds.List(ctx)
	}
	return s.refunds.ListByStatus(ctx, status)
}

// ListUserRefundRequests returns the caller's own requests.
func (s *RefundService) ListUserRefundRequests(ctx context.Context, userID uuid.UUID) ([]model.RefundRequest, error) {
	return s.refunds.ListByUser(ctx, userID)
}
