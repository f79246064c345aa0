package billing

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tutoring-app/internal/billing"
)

// Handler exposes the billing services over gin. All amounts in
// request bodies are integers in minor currency units.
type Handler struct {
	payments *billing.PaymentService
	subs     *billing.SubscriptionService
	methods  *billing.PaymentMethodService
	refunds  *billing.RefundService
}

func NewHandler(payments *billing.PaymentService, subs *billing.SubscriptionService, methods *billing.PaymentMethodService, refunds *billing.RefundService) *Handler {
	return &Handler{payments: payments, subs: subs, methods: methods, refunds: refunds}
}

// userID reads the authenticated user id set by the JWT middleware.
func userID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	if !ok || id == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps billing error kinds onto HTTP statuses. Gateway
// failures reach the caller as a generic message; the cause is already
// logged inside the service.
func respondError(c *gin.Context, err error) {
	switch billing.KindOf(err) {
	case billing.KindValidation:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case billing.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case billing.KindConflict:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case billing.KindGateway:
		// e.Message is safe to show; e.Err carries provider detail and
		// stays in the logs.
		msg := "Payment provider request failed"
		var e *billing.Error
		if errors.As(err, &e) && e.Message != "" {
			msg = e.Message
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
