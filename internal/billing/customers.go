package billing

import (
	"context"

	"tutoring-app/internal/domain/users"
)

// ensureCustomer returns the user's Stripe customer id, creating the
// customer and persisting the id back onto the user record on first
// use so later calls reuse it.
func ensureCustomer(ctx context.Context, dir UserDirectory, gw Gateway, user *users.User) (string, error) {
	if user.StripeCustomerID != nil && *user.StripeCustomerID != "" {
		return *user.StripeCustomerID, nil
	}

	cus, err := gw.CreateCustomer(ctx, user.Email, user.Name, map[string]string{
		"user_id": user.ID.String(),
	})
	if err != nil {
		return "", GatewayErr(err, "failed to create payment profile")
	}

	if err := dir.Update(ctx, user.ID, map[string]interface{}{
		"stripe_customer_id": cus.ID,
	}); err != nil {
		return "", err
	}
	user.StripeCustomerID = &cus.ID

	return cus.ID, nil
}
