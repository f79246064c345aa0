package billing

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h *Handler) ListPaymentMethods(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	methods, err := h.methods.ListPaymentMethods(c.Request.Context(), uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payment methods"})
		return
	}

	c.JSON(http.StatusOK, toPaymentMethodResponses(methods))
}

func (h *Handler) AddPaymentMethod(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	var body struct {
		PaymentMethodID string `json:"payment_method_id"`
		SetDefault      bool   `json:"set_default"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	method, err := h.methods.AddPaymentMethod(c.Request.Context(), uid, body.PaymentMethodID, body.SetDefault)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toPaymentMethodResponse(method))
}

func (h *Handler) DeletePaymentMethod(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment method id"})
		return
	}

	if err := h.methods.DeletePaymentMethod(c.Request.Context(), uid, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Payment method removed"})
}

func (h *Handler) SetDefaultPaymentMethod(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment method id"})
		return
	}

	method, err := h.methods.SetDefaultPaymentMethod(c.Request.Context(), uid, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toPaymentMethodResponse(method))
}
