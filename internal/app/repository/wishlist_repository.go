package repository

import (
	"github.com/smartcart/smartcart-backend/internal/app/model"
	"github.com/smartcart/smartcart-backend/pkg/logger"
	"gorm.io/gorm"
)

type WishlistRepository interface {
	Create(item *model.WishlistItem) error
	FindByUser(userID uint) ([]model.WishlistItem, error)
	FindByUserAndProduct(userID, productID uint) (*model.WishlistItem, error)
	Delete(id uint) error
	DeleteByUserAndProduct(userID, productID uint) error
	DeleteByProduct(productID uint) error
	UserIDsByProduct(productID uint) ([]uint, error)
}

type wishlistRepository struct {
	db *gorm.DB
}

func NewWishlistRepository(db *gorm.DB) WishlistRepository {
	return &wishlistRepository{db: db}
}

func (r *wishlistRepository) Create(item *model.WishlistItem) error {
	if err := r.db.Create(item).Error; err != nil {
		logger.Error("Failed to create wishlist item", err, map[string]interface{}{
			"user_id":    item.UserID,
			"product_id": item.ProductID,
		})
		return err
	}
	return nil
}

func (r *wishlistRepository) FindByUser(userID uint) ([]model.WishlistItem, error) {
	var items []model.WishlistItem
	err := r.db.
		Preload("Product").
		Preload("Product.Category").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		logger.Error("Failed to find wishlist items", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return items, nil
}

func (r *wishlistRepository) FindByUserAndProduct(userID, productID uint) (*model.WishlistItem, error) {
	var item model.WishlistItem
	err := r.db.
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *wishlistRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.WishlistItem{}, id).Error; err != nil {
		logger.Error("Failed to delete wishlist item", err, map[string]interface{}{
			"wishlist_item_id": id,
		})
		return err
	}
	return nil
}

func (r *wishlistRepository) DeleteByUserAndProduct(userID, productID uint) error {
	result := r.db.
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&model.WishlistItem{})
	if result.Error != nil {
		logger.Error("Failed to delete wishlist item", result.Error, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *wishlistRepository) DeleteByProduct(productID uint) error {
	if err := r.db.Where("product_id = ?", productID).Delete(&model.WishlistItem{}).Error; err != nil {
		logger.Error("Failed to delete wishlist items for product", err, map[string]interface{}{
			"product_id": productID,
		})
		return err
	}
	return nil
}

// UserIDsByProduct returns the distinct users who wishlisted a product,
// used for discount fan-out notifications.
func (r *wishlistRepository) UserIDsByProduct(productID uint) ([]uint, error) {
	var userIDs []uint
	err := r.db.Model(&model.WishlistItem{}).
		Distinct("user_id").
		Where("product_id = ?", productID).
		Pluck("user_id", &userIDs).Error
	if err != nil {
		logger.Error("Failed to find wishlist users for product", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}
	return userIDs, nil
}
