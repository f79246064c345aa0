package routes

import (
	adminapi "tutoring-app/internal/api/admin"
	billingapi "tutoring-app/internal/api/billing"
	plansapi "tutoring-app/internal/api/plans"
	stripewebhooks "tutoring-app/internal/api/stripewebhook"
	"tutoring-app/internal/app/http/middleware"

	"github.com/gin-gonic/gin"
)

// Deps are the wired handlers. Construction happens in main so tests
// and tools can assemble the same surface with fakes.
type Deps struct {
	Billing *billingapi.Handler
	Admin   *adminapi.Handler
	Plans   *plansapi.Handler
	Webhook *stripewebhooks.Handler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Webhook stays outside every body-touching middleware: signature
	// verification needs the raw payload.
	r.POST("/webhook", d.Webhook.HandleWebhook)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	public := r.Group("/")
	public.Use(middleware.SanitizeInputMiddleware())
	public.GET("/plans", d.Plans.ListPlans)

	// Authenticated
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware(), middleware.SanitizeInputMiddleware())

	auth.POST("/payments/intent", d.Billing.CreatePaymentIntent)
	auth.POST("/payments/confirm", d.Billing.ConfirmPayment)
	auth.GET("/payments", d.Billing.GetPaymentHistory)

	auth.GET("/subscription", d.Billing.GetSubscription)
	auth.POST("/subscription", d.Billing.CreateSubscription)
	auth.PATCH("/subscription", d.Billing.UpdateSubscription)
	auth.DELETE("/subscription", d.Billing.CancelSubscription)

	auth.GET("/payment-methods", d.Billing.ListPaymentMethods)
	auth.POST("/payment-methods", d.Billing.AddPaymentMethod)
	auth.DELETE("/payment-methods/:id", d.Billing.DeletePaymentMethod)
	auth.PUT("/payment-methods/:id/default", d.Billing.SetDefaultPaymentMethod)

	auth.POST("/refunds", d.Billing.RequestRefund)
	auth.GET("/refunds", d.Billing.GetMyRefundRequests)

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRole("admin"))
	admin.GET("/payments", d.Admin.ListAllPayments)
	admin.GET("/refunds", d.Admin.ListRefundRequests)
	admin.POST("/refunds/:id/process", d.Admin.ProcessRefund)
}
