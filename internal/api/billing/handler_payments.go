package billing

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h *Handler) CreatePaymentIntent(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	var body struct {
		Amount      int64   `json:"amount"`
		Currency    string  `json:"currency"`
		Description string  `json:"description"`
		SessionID   *string `json:"session_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	var sessionID *uuid.UUID
	if body.SessionID != nil && *body.SessionID != "" {
		id, err := uuid.Parse(*body.SessionID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session_id"})
			return
		}
		sessionID = &id
	}

	result, err := h.payments.CreatePaymentIntent(c.Request.Context(), uid, body.Amount, body.Currency, body.Description, sessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"payment_intent_id": result.IntentID,
		"client_secret":     result.ClientSecret,
		"payment":           toPaymentResponse(result.Payment),
	})
}

func (h *Handler) ConfirmPayment(c *gin.Context) {
	if _, ok := userID(c); !ok {
		return
	}

	var body struct {
		PaymentIntentID string `json:"payment_intent_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.PaymentIntentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid payment_intent_id"})
		return
	}

	payment, err := h.payments.ConfirmPayment(c.Request.Context(), body.PaymentIntentID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toPaymentResponse(payment))
}

func (h *Handler) GetPaymentHistory(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	payments, err := h.payments.ListPayments(c.Request.Context(), uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payments"})
		return
	}

	c.JSON(http.StatusOK, toPaymentResponses(payments))
}
