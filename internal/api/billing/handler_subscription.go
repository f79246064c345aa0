package billing

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetSubscription(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	sub, err := h.subs.GetSubscription(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSubscriptionResponse(sub))
}

func (h *Handler) CreateSubscription(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	var body struct {
		PlanType        string `json:"plan_type"`
		BillingCycle    string `json:"billing_cycle"`
		PaymentMethodID string `json:"payment_method_id"`
		TrialDays       int64  `json:"trial_days"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	sub, err := h.subs.CreateSubscription(c.Request.Context(), uid, body.PlanType, body.BillingCycle, body.PaymentMethodID, body.TrialDays)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toSubscriptionResponse(sub))
}

func (h *Handler) UpdateSubscription(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	var body struct {
		PlanType     string `json:"plan_type"`
		BillingCycle string `json:"billing_cycle"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if body.PlanType == "" && body.BillingCycle == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}

	sub, err := h.subs.UpdateSubscription(c.Request.Context(), uid, body.PlanType, body.BillingCycle)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSubscriptionResponse(sub))
}

func (h *Handler) CancelSubscription(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	immediate := c.Query("immediate") == "true"

	sub, err := h.subs.CancelSubscription(c.Request.Context(), uid, immediate)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSubscriptionResponse(sub))
}
