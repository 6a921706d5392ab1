package service

import (
	"errors"

	"github.com/smartcart/smartcart-backend/internal/app/model"
	"github.com/smartcart/smartcart-backend/internal/app/repository"
	"github.com/smartcart/smartcart-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrReviewNotFound   = errors.New("review not found")
	ErrPurchaseRequired = errors.New("a delivered purchase is required to review this product")
)

type ReviewService interface {
	ListByProduct(productID uint) ([]model.Review, error)
	// Submit creates the user's review for a product, or updates it if
	// one already exists. Non-admin users must have a delivered order
	// containing the product.
	Submit(userID uint, isAdmin bool, productID uint, rating int, comment string) (review *model.Review, created bool, err error)
	Delete(userID uint, isAdmin bool, reviewID uint) error
}

type reviewService struct {
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
}

func NewReviewService(reviewRepo repository.ReviewRepository, productRepo repository.ProductRepository) ReviewService {
	return &reviewService{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
	}
}

func (s *reviewService) ListByProduct(productID uint) ([]model.Review, error) {
	if _, err := s.productRepo.FindByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return s.reviewRepo.FindByProduct(productID)
}

func (s *reviewService) Submit(userID uint, isAdmin bool, productID uint, rating int, comment string) (*model.Review, bool, error) {
	if _, err := s.productRepo.FindByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrProductNotFound
		}
		return nil, false, err
	}

	if !isAdmin {
		purchased, err := s.reviewRepo.HasDeliveredPurchase(userID, productID)
		if err != nil {
			return nil, false, err
		}
		if !purchased {
			logger.Warn("Review rejected: no delivered purchase", map[string]interface{}{
				"user_id":    userID,
				"product_id": productID,
			})
			return nil, false, ErrPurchaseRequired
		}
	}

	existing, err := s.reviewRepo.FindByUserAndProduct(userID, productID)
	if err == nil {
		if rating < 1 || rating > 5 {
			return nil, false, model.ErrInvalidRating
		}
		existing.Rating = rating
		existing.Comment = comment
		if err := s.reviewRepo.Update(existing); err != nil {
			return nil, false, err
		}
		logger.Info("Review updated", map[string]interface{}{
			"review_id": existing.ID,
			"user_id":   userID,
		})
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	review, err := model.NewReview(userID, productID, rating, comment)
	if err != nil {
		return nil, false, err
	}
	if err := s.reviewRepo.Create(review); err != nil {
		return nil, false, err
	}

	logger.Info("Review created", map[string]interface{}{
		"review_id":  review.ID,
		"user_id":    userID,
		"product_id": productID,
	})
	return review, true, nil
}

func (s *reviewService) Delete(userID uint, isAdmin bool, reviewID uint) error {
	review, err := s.reviewRepo.FindByID(reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReviewNotFound
		}
		return err
	}

	if !isAdmin && review.UserID != userID {
		return ErrReviewNotFound
	}

	return s.reviewRepo.Delete(reviewID)
}
