package billing

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h *Handler) RequestRefund(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	var body struct {
		PaymentID string `json:"payment_id"`
		Reason    string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	paymentID, err := uuid.Parse(body.PaymentID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment_id"})
		return
	}

	request, err := h.refunds.RequestRefund(c.Request.Context(), uid, paymentID, body.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toRefundRequestResponse(request))
}

func (h *Handler) GetMyRefundRequests(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	reqs, err := h.refunds.ListUserRefundRequests(c.Request.Context(), uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load refund requests"})
		return
	}

	c.JSON(http.StatusOK, toRefundRequestResponses(reqs))
}
