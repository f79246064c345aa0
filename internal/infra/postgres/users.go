package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tutoring-app/internal/domain/users"
)

// UserDirectory reads user records owned by the account system and
// writes back the two billing cache fields.
type UserDirectory struct {
	db *gorm.DB
}

func NewUserDirectory(db *gorm.DB) *UserDirectory {
	return &UserDirectory{db: db}
}

func (d *UserDirectory) FindByID(ctx context.Context, id uuid.UUID) (*users.User, error) {
	var u users.User
	err := d.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (d *UserDirectory) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return d.db.WithContext(ctx).
		Model(&users.User{}).
		Where("id = ?", id).
		Updates(fields).Error
}
