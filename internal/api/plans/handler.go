package plans

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"tutoring-app/internal/domain/plans"
)

type PlanOption struct {
	PlanType     string  `json:"plan_type"`
	BillingCycle string  `json:"billing_cycle"`
	Amount       float64 `json:"amount"` // major units
	Currency     string  `json:"currency"`
}

// Handler publishes the plan catalog so the frontend can render the
// pricing page. Prices come from the injected catalog, never Stripe.
type Handler struct {
	catalog plans.Catalog
}

func NewHandler(catalog plans.Catalog) *Handler {
	return &Handler{catalog: catalog}
}

func (h *Handler) ListPlans(c *gin.Context) {
	options := make([]PlanOption, 0, len(h.catalog))
	for key, price := range h.catalog {
		options = append(options, PlanOption{
			PlanType:     key.PlanType,
			BillingCycle: key.BillingCycle,
			Amount:       float64(price.AmountPence) / 100,
			Currency:     price.Currency,
		})
	}
	sort.Slice(options, func(i, j int) bool {
		if options[i].PlanType != options[j].PlanType {
			return options[i].PlanType < options[j].PlanType
		}
		return options[i].BillingCycle < options[j].BillingCycle
	})

	c.JSON(http.StatusOK, options)
}
