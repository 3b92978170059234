package repo

import (
	"context"
	"math"

	"gorm.io/gorm"

	"storefront/internal/models"
)

type ReviewRepo struct {
	DB *gorm.DB
}

func (r *ReviewRepo) Create(ctx context.Context, review *models.Review) error {
	return r.DB.WithContext(ctx).Create(review).Error
}

func (r *ReviewRepo) FindByID(ctx context.Context, id uint) (*models.Review, error) {
	var review models.Review
	if err := r.DB.WithContext(ctx).First(&review, id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *ReviewRepo) FindByProductAndUser(ctx context.Context, productID, userID uint) (*models.Review, error) {
	var review models.Review
	err := r.DB.WithContext(ctx).
		Where("product_id = ? AND user_id = ?", productID, userID).
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *ReviewRepo) List(ctx context.Context) ([]models.Review, error) {
	var reviews []models.Review
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *ReviewRepo) ListByProduct(ctx context.Context, productID uint) ([]models.Review, error) {
	var reviews []models.Review
	if err := r.DB.WithContext(ctx).Where("product_id = ?", productID).Order("id ASC").Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *ReviewRepo) Save(ctx context.Context, review *models.Review) error {
	return r.DB.WithContext(ctx).Save(review).Error
}

func (r *ReviewRepo) Delete(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Delete(&models.Review{}, id).Error
}

// RecalculateProductRating recomputes the product's average rating
// (rounded up) and review count. Review mutations call it explicitly.
func (r *ReviewRepo) RecalculateProductRating(ctx context.Context, productID uint) error {
	var agg struct {
		AverageRating float64
		NumOfReviews  int
	}
	err := r.DB.WithContext(ctx).
		Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average_rating, COUNT(*) AS num_of_reviews").
		Where("product_id = ?", productID).
		Scan(&agg).Error
	if err != nil {
		return err
	}

	return r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(map[string]any{
			"average_rating": math.Ceil(agg.AverageRating),
			"num_of_reviews": agg.NumOfReviews,
		}).Error
}
