package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tutoring-app/internal/domain/billing"
)

type RefundRequestRepository struct {
	db *gorm.DB
}

func NewRefundRequestRepository(db *gorm.DB) *RefundRequestRepository {
	return &RefundRequestRepository{db: db}
}

func (r *RefundRequestRepository) Create(ctx context.Context, req *billing.RefundRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *RefundRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.RefundRequest, error) {
	var req billing.RefundRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *RefundRequestRepository) FindByPayment(ctx context.Context, paymentID uuid.UUID) (*billing.RefundRequest, error) {
	var req billing.RefundRequest
	err := r.db.WithContext(ctx).Where("payment_id = ?", paymentID).First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *RefundRequestRepository) List(ctx context.Context) ([]billing.RefundRequest, error) {
	var reqs []billing.RefundRequest
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&reqs).Error
	return reqs, err
}

func (r *RefundRequestRepository) ListByStatus(ctx context.Context, status string) ([]billing.RefundRequest, error) {
	var reqs []billing.RefundRequest
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&reqs).Error
	return reqs, err
}

func (r *RefundRequestRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]billing.RefundRequest, error) {
	var reqs []billing.RefundRequest
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}

// ClaimPending is a compare-and-swap on status = 'pending'. RowsAffected
// tells the caller whether this call won the claim.
func (r *RefundRequestRepository) ClaimPending(ctx context.Context, id, adminID uuid.UUID, status, notes string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&billing.RefundRequest{}).
		Where("id = ? AND status = ?", id, billing.RefundStatusPending).
		Updates(map[string]interface{}{
			"status":       status,
			"admin_notes":  notes,
			"processed_at": time.Now(),
			"processed_by": adminID,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *RefundRequestRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&billing.RefundRequest{}).
		Where("id = ?", id).
		Updates(fields).Error
}
