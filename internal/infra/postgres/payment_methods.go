package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tutoring-app/internal/domain/billing"
)

type PaymentMethodRepository struct {
	db *gorm.DB
}

func NewPaymentMethodRepository(db *gorm.DB) *PaymentMethodRepository {
	return &PaymentMethodRepository{db: db}
}

func (r *PaymentMethodRepository) Create(ctx context.Context, m *billing.PaymentMethod) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *PaymentMethodRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*billing.PaymentMethod, error) {
	var m billing.PaymentMethod
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PaymentMethodRepository) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]billing.PaymentMethod, error) {
	var methods []billing.PaymentMethod
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = true", userID).
		Order("created_at DESC").
		Find(&methods).Error
	return methods, err
}

// SetDefault clears the user's other defaults and marks the given
// active method default inside one transaction, so two concurrent
// calls cannot leave two defaults.
func (r *PaymentMethodRepository) SetDefault(ctx context.Context, userID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&billing.PaymentMethod{}).
			Where("user_id = ? AND is_default = true", userID).
			Update("is_default", false).Error; err != nil {
			return err
		}

		res := tx.Model(&billing.PaymentMethod{}).
			Where("id = ? AND user_id = ? AND is_active = true", id, userID).
			Update("is_default", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *PaymentMethodRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&billing.PaymentMethod{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_active":  false,
			"is_default": false,
		}).Error
}
