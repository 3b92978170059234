package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"storefront/internal/apierror"
	mw "storefront/internal/middleware/auth"
	"storefront/internal/models"
	"storefront/internal/mykafka"
	"storefront/internal/permissions"
	"storefront/internal/repo"
)

type ReviewHandler struct {
	Reviews  *repo.ReviewRepo
	Products *repo.ProductRepo
	Producer *mykafka.Producer
}

type createReviewRequest struct {
	Rating    int    `json:"rating"  validate:"required,gte=1,lte=5"`
	Title     string `json:"title"   validate:"required,max=100"`
	Comment   string `json:"comment" validate:"required"`
	ProductID uint   `json:"product" validate:"required"`
}

func (h *ReviewHandler) CreateReview(c echo.Context) error {
	ctx := c.Request().Context()

	var req createReviewRequest
	if err := c.Bind(&req); err != nil {
		return apierror.BadRequest("Please provide valid review data!")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if _, err := h.Products.FindByID(ctx, req.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("Product not found!")
		}
		return err
	}

	identity, _ := mw.Identity(c)

	if _, err := h.Reviews.FindByProductAndUser(ctx, req.ProductID, identity.UserID); err == nil {
		return apierror.BadRequest("Already submitted review!")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	review := models.Review{
		Rating:    req.Rating,
		Title:     req.Title,
		Comment:   req.Comment,
		UserID:    identity.UserID,
		ProductID: req.ProductID,
	}
	if err := h.Reviews.Create(ctx, &review); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apierror.BadRequest("Already submitted review!")
		}
		return err
	}

	if err := h.Reviews.RecalculateProductRating(ctx, review.ProductID); err != nil {
		return err
	}

	publish(c, h.Producer, mykafka.TopicReviewEvents, review.ID, map[string]any{
		"type":       "review_created",
		"review_id":  review.ID,
		"product_id": review.ProductID,
		"rating":     review.Rating,
	})

	return c.JSON(http.StatusCreated, echo.Map{"review": review})
}

func (h *ReviewHandler) GetAllReviews(c echo.Context) error {
	reviews, err := h.Reviews.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"reviews": reviews, "count": len(reviews)})
}

func (h *ReviewHandler) GetSingleReview(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	review, err := h.Reviews.FindByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("Review not found!")
		}
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"review": review})
}

type updateReviewRequest struct {
	Rating  int    `json:"rating"  validate:"required,gte=1,lte=5"`
	Title   string `json:"title"   validate:"required,max=100"`
	Comment string `json:"comment" validate:"required"`
}

func (h *ReviewHandler) UpdateReview(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req updateReviewRequest
	if err := c.Bind(&req); err != nil {
		return apierror.BadRequest("Please provide valid review data!")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	review, err := h.Reviews.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("Review not found!")
		}
		return err
	}

	identity, _ := mw.Identity(c)
	if err := permissions.Check(identity, review.UserID); err != nil {
		return err
	}

	review.Rating = req.Rating
	review.Title = req.Title
	review.Comment = req.Comment
	if err := h.Reviews.Save(ctx, review); err != nil {
		return err
	}

	if err := h.Reviews.RecalculateProductRating(ctx, review.ProductID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"review": review})
}

func (h *ReviewHandler) DeleteReview(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c)
	if err != nil {
		return err
	}

	review, err := h.Reviews.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("Review not found!")
		}
		return err
	}

	identity, _ := mw.Identity(c)
	if err := permissions.Check(identity, review.UserID); err != nil {
		return err
	}

	if err := h.Reviews.Delete(ctx, review.ID); err != nil {
		return err
	}

	if err := h.Reviews.RecalculateProductRating(ctx, review.ProductID); err != nil {
		return err
	}

	publish(c, h.Producer, mykafka.TopicReviewEvents, review.ID, map[string]any{
		"type":       "review_deleted",
		"review_id":  review.ID,
		"product_id": review.ProductID,
	})

	return c.JSON(http.StatusOK, echo.Map{"msg": "Review deleted successfully!"})
}

// GetSingleProductReviews lists the reviews of one product.
func (h *ReviewHandler) GetSingleProductReviews(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	reviews, err := h.Reviews.ListByProduct(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"reviews": reviews, "count": len(reviews)})
}
