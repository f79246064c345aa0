package main

import (
	"log"
	"time"

	"tutoring-app/config"
	"tutoring-app/database"
	adminapi "tutoring-app/internal/api/admin"
	billingapi "tutoring-app/internal/api/billing"
	plansapi "tutoring-app/internal/api/plans"
	stripewebhooks "tutoring-app/internal/api/stripewebhook"
	routes "tutoring-app/internal/app/http"
	"tutoring-app/internal/billing"
	"tutoring-app/internal/infra/postgres"
	stripegw "tutoring-app/internal/infra/stripe"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// gin.SetMode(gin.ReleaseMode) uncomment only in production
	config.LoadEnv()
	database.InitDB()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to build logger:", err)
	}
	defer logger.Sync()

	gateway := stripegw.New(config.STRIPE_SECRET_KEY, config.STRIPE_WEBHOOK_SECRET)
	catalog := config.PlanCatalog()

	payments := postgres.NewPaymentRepository(database.DB)
	subscriptions := postgres.NewSubscriptionRepository(database.DB)
	methods := postgres.NewPaymentMethodRepository(database.DB)
	refunds := postgres.NewRefundRequestRepository(database.DB)
	users := postgres.NewUserDirectory(database.DB)

	paymentSvc := billing.NewPaymentService(payments, users, gateway, logger)
	subscriptionSvc := billing.NewSubscriptionService(subscriptions, users, gateway, catalog, logger)
	methodSvc := billing.NewPaymentMethodService(methods, users, gateway, logger)
	refundSvc := billing.NewRefundService(refunds, payments, gateway, logger)
	processor := billing.NewWebhookProcessor(gateway, payments, subscriptions, users, logger)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.CORS_ORIGIN},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, routes.Deps{
		Billing: billingapi.NewHandler(paymentSvc, subscriptionSvc, methodSvc, refundSvc),
		Admin:   adminapi.NewHandler(payments, refundSvc),
		Plans:   plansapi.NewHandler(catalog),
		Webhook: stripewebhooks.NewHandler(processor),
	})

	r.Run(":" + config.PORT)
}
