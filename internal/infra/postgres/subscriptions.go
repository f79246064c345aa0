package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tutoring-app/internal/domain/billing"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) Create(ctx context.Context, s *billing.Subscription) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *SubscriptionRepository) FindCurrentByUser(ctx context.Context, userID uuid.UUID) (*billing.Subscription, error) {
	var s billing.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status IN ?", userID, []string{
			billing.SubscriptionStatusActive,
			billing.SubscriptionStatusTrialing,
		}).
		Order("created_at DESC").
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SubscriptionRepository) FindByStripeID(ctx context.Context, stripeID string) (*billing.Subscription, error) {
	var s billing.Subscription
	err := r.db.WithContext(ctx).Where("stripe_subscription_id = ?", stripeID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SubscriptionRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&billing.Subscription{}).
		Where("id = ?", id).
		Updates(fields).Error
}
