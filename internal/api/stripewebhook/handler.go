package stripewebhooks

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"tutoring-app/internal/billing"
)

const maxPayloadBytes = 65536

// EventProcessor verifies and applies one webhook delivery.
type EventProcessor interface {
	HandleEvent(ctx context.Context, payload []byte, signature string) error
}

// Handler receives Stripe's webhook deliveries. The body must stay raw
// until the processor has verified the signature; any middleware that
// re-serializes JSON would break verification, so this route is
// registered outside the sanitization group.
type Handler struct {
	processor EventProcessor
}

func NewHandler(processor EventProcessor) *Handler {
	return &Handler{processor: processor}
}

func (h *Handler) HandleWebhook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxPayloadBytes)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Error reading request body"})
		return
	}

	err = h.processor.HandleEvent(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		if billing.IsSignature(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Signature verification failed"})
			return
		}
		// A 500 makes Stripe redeliver the event; handlers are
		// idempotent so the retry is safe.
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Event processing failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
