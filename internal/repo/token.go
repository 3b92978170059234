package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"storefront/internal/models"
)

// TokenRepo is the refresh-token store: one revocable session record per
// user.
type TokenRepo struct {
	DB *gorm.DB
}

func (r *TokenRepo) FindByUser(ctx context.Context, userID uint) (*models.RefreshToken, error) {
	var record models.RefreshToken
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// Create inserts the session record. When a concurrent login won the
// insert race, the unique constraint fires and the existing record is
// returned instead.
func (r *TokenRepo) Create(ctx context.Context, userID uint, refreshValue, ip, userAgent string) (*models.RefreshToken, error) {
	record := models.RefreshToken{
		Token:     refreshValue,
		UserID:    userID,
		IP:        ip,
		UserAgent: userAgent,
		IsValid:   true,
	}
	if err := r.DB.WithContext(ctx).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return r.FindByUser(ctx, userID)
		}
		return nil, err
	}
	return &record, nil
}

func (r *TokenRepo) DeleteByUser(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error
}
