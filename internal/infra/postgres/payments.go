// Package postgres holds the gorm-backed repository implementations.
package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tutoring-app/internal/domain/billing"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, p *billing.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	var p billing.Payment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) FindByIntentID(ctx context.Context, intentID string) (*billing.Payment, error) {
	var p billing.Payment
	err := r.db.WithContext(ctx).Where("stripe_payment_intent_id = ?", intentID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) FindByInvoiceID(ctx context.Context, invoiceID string) (*billing.Payment, error) {
	var p billing.Payment
	err := r.db.WithContext(ctx).Where("stripe_invoice_id = ?", invoiceID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]billing.Payment, error) {
	var payments []billing.Payment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&payments).Error
	return payments, err
}

func (r *PaymentRepository) List(ctx context.Context, limit int) ([]billing.Payment, error) {
	var payments []billing.Payment
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&payments).Error
	return payments, err
}

func (r *PaymentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.db.WithContext(ctx).
		Model(&billing.Payment{}).
		Where("id = ?", id).
		Update("status", status).Error
}
