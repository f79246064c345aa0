package config

import (
	"log"
	"os"

	"tutoring-app/internal/domain/billing"
	"tutoring-app/internal/domain/plans"

	"github.com/joho/godotenv"
)

var (
	PORT       string
	DB_URL     string
	JWT_SECRET string

	CORS_ORIGIN string

	STRIPE_SECRET_KEY     string
	STRIPE_WEBHOOK_SECRET string

	stripePriceBasicMonthly   string
	stripePriceBasicYearly    string
	stripePricePremiumMonthly string
	stripePricePremiumYearly  string
)

func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}

	PORT = getEnv("PORT", "8080")
	DB_URL = mustEnv("DB_URL")
	JWT_SECRET = mustEnv("JWT_SECRET")

	CORS_ORIGIN = getEnv("CORS_ORIGIN", "http://localhost:5173")

	STRIPE_SECRET_KEY = mustEnv("STRIPE_SECRET_KEY")
	STRIPE_WEBHOOK_SECRET = mustEnv("STRIPE_WEBHOOK_SECRET")

	stripePriceBasicMonthly = mustEnv("STRIPE_PRICE_BASIC_MONTHLY")
	stripePriceBasicYearly = mustEnv("STRIPE_PRICE_BASIC_YEARLY")
	stripePricePremiumMonthly = mustEnv("STRIPE_PRICE_PREMIUM_MONTHLY")
	stripePricePremiumYearly = mustEnv("STRIPE_PRICE_PREMIUM_YEARLY")
}

// PlanCatalog builds the static plan×cycle pricing table. Amounts are
// pence; the Stripe price ids come from the environment so test and
// live mode can differ per deployment.
func PlanCatalog() plans.Catalog {
	return plans.Catalog{
		{PlanType: plans.PlanBasic, BillingCycle: plans.CycleMonthly}: {
			AmountPence: 999, Currency: billing.CurrencyGBP, StripePriceID: stripePriceBasicMonthly,
		},
		{PlanType: plans.PlanBasic, BillingCycle: plans.CycleYearly}: {
			AmountPence: 9999, Currency: billing.CurrencyGBP, StripePriceID: stripePriceBasicYearly,
		},
		{PlanType: plans.PlanPremium, BillingCycle: plans.CycleMonthly}: {
			AmountPence: 1999, Currency: billing.CurrencyGBP, StripePriceID: stripePricePremiumMonthly,
		},
		{PlanType: plans.PlanPremium, BillingCycle: plans.CycleYearly}: {
			AmountPence: 19999, Currency: billing.CurrencyGBP, StripePriceID: stripePricePremiumYearly,
		},
	}
}

func mustEnv(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("Missing required environment variable: %s", key)
	}
	return v
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
