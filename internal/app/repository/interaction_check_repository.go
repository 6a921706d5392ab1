package repository

import (
	"github.com/smartcart/smartcart-backend/internal/app/model"
	"github.com/smartcart/smartcart-backend/pkg/logger"
	"gorm.io/gorm"
)

type InteractionCheckRepository interface {
	Create(check *model.InteractionCheck) error
	FindByUser(userID uint, limit int) ([]model.InteractionCheck, error)
}

type interactionCheckRepository struct {
	db *gorm.DB
}

func NewInteractionCheckRepository(db *gorm.DB) InteractionCheckRepository {
	return &interactionCheckRepository{db: db}
}

func (r *interactionCheckRepository) Create(check *model.InteractionCheck) error {
	if err := r.db.Create(check).Error; err != nil {
		logger.Error("Failed to persist interaction check", err, map[string]interface{}{
			"user_id": check.UserID,
			"status":  check.Status,
		})
		return err
	}
	return nil
}

func (r *interactionCheckRepository) FindByUser(userID uint, limit int) ([]model.InteractionCheck, error) {
	query := r.db.
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var checks []model.InteractionCheck
	if err := query.Find(&checks).Error; err != nil {
		logger.Error("Failed to find interaction checks", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return checks, nil
}
