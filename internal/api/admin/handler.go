package admin

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tutoring-app/internal/billing"
	model "tutoring-app/internal/domain/billing"
)

type AdminPayment struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type AdminRefundRequest struct {
	ID          uuid.UUID  `json:"id"`
	PaymentID   uuid.UUID  `json:"payment_id"`
	UserID      uuid.UUID  `json:"user_id"`
	Amount      float64    `json:"amount"`
	Reason      string     `json:"reason"`
	Status      string     `json:"status"`
	AdminNotes  string     `json:"admin_notes,omitempty"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	ProcessedBy *uuid.UUID `json:"processed_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Handler serves the admin review surface: payment oversight and the
// refund approval queue.
type Handler struct {
	payments billing.PaymentRepository
	refunds  *billing.RefundService
}

func NewHandler(payments billing.PaymentRepository, refunds *billing.RefundService) *Handler {
	return &Handler{payments: payments, refunds: refunds}
}

func (h *Handler) ListAllPayments(c *gin.Context) {
	limit := 100
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	payments, err := h.payments.List(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payments"})
		return
	}

	out := make([]AdminPayment, 0, len(payments))
	for _, p := range payments {
		out = append(out, AdminPayment{
			ID:        p.ID,
			UserID:    p.UserID,
			Amount:    float64(p.AmountPence) / 100,
			Currency:  p.Currency,
			Status:    p.Status,
			CreatedAt: p.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) ListRefundRequests(c *gin.Context) {
	reqs, err := h.refunds.ListRefundRequests(c.Request.Context(), c.Query("status"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load refund requests"})
		return
	}

	c.JSON(http.StatusOK, toAdminRefunds(reqs))
}

func (h *Handler) ProcessRefund(c *gin.Context) {
	adminVal, exists := c.Get("user_id")
	adminID, ok := adminVal.(uuid.UUID)
	if !exists || !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Admin not identified"})
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid refund request id"})
		return
	}

	var body struct {
		Decision   string `json:"decision"`
		AdminNotes string `json:"admin_notes"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	request, err := h.refunds.ProcessRefund(c.Request.Context(), adminID, requestID, body.Decision, body.AdminNotes)
	if err != nil {
		switch billing.KindOf(err) {
		case billing.KindValidation:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case billing.KindNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case billing.KindConflict:
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process refund"})
		}
		return
	}

	c.JSON(http.StatusOK, toAdminRefund(request))
}

func toAdminRefund(r *model.RefundRequest) AdminRefundRequest {
	return AdminRefundRequest{
		ID:          r.ID,
		PaymentID:   r.PaymentID,
		UserID:      r.UserID,
		Amount:      float64(r.AmountPence) / 100,
		Reason:      r.Reason,
		Status:      r.Status,
		AdminNotes:  r.AdminNotes,
		ProcessedAt: r.ProcessedAt,
		ProcessedBy: r.ProcessedBy,
		CreatedAt:   r.CreatedAt,
	}
}

func toAdminRefunds(reqs []model.RefundRequest) []AdminRefundRequest {
	out := make([]AdminRefundRequest, 0, len(reqs))
	for i := range reqs {
		out = append(out, toAdminRefund(&reqs[i]))
	}
	return out
}
