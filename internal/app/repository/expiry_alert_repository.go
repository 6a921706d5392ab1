package repository

import (
	"time"

	"github.com/smartcart/smartcart-backend/internal/app/model"
	"github.com/smartcart/smartcart-backend/pkg/logger"
	"gorm.io/gorm"
)

type ExpiryAlertRepository interface {
	Create(alert *model.ExpiryAlert) error
	FindByID(id uint) (*model.ExpiryAlert, error)
	FindByProductAndDate(productID uint, expiryDate time.Time) (*model.ExpiryAlert, error)
	FindByStatus(status model.ExpiryAlertStatus) ([]model.ExpiryAlert, error)
	FindAll() ([]model.ExpiryAlert, error)
	Update(alert *model.ExpiryAlert) error
	DeleteByProduct(productID uint) error
}

type expiryAlertRepository struct {
	db *gorm.DB
}

func NewExpiryAlertRepository(db *gorm.DB) ExpiryAlertRepository {
	return &expiryAlertRepository{db: db}
}

func (r *expiryAlertRepository) Create(alert *model.ExpiryAlert) error {
	if err := r.db.Create(alert).Error; err != nil {
		logger.Error("Failed to create expiry alert", err, map[string]interface{}{
			"product_id": alert.ProductID,
		})
		return err
	}
	return nil
}

func (r *expiryAlertRepository) FindByID(id uint) (*model.ExpiryAlert, error) {
	var alert model.ExpiryAlert
	if err := r.db.Preload("Product").First(&alert, id).Error; err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *expiryAlertRepository) FindByProductAndDate(productID uint, expiryDate time.Time) (*model.ExpiryAlert, error) {
	var alert model.ExpiryAlert
	err := r.db.
		Where("product_id = ? AND expiry_date = ?", productID, expiryDate).
		First(&alert).Error
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *expiryAlertRepository) FindByStatus(status model.ExpiryAlertStatus) ([]model.ExpiryAlert, error) {
	var alerts []model.ExpiryAlert
	err := r.db.
		Preload("Product").
		Preload("Product.Category").
		Where("status = ?", status).
		Order("expiry_date ASC").
		Find(&alerts).Error
	if err != nil {
		logger.Error("Failed to find expiry alerts by status", err, map[string]interface{}{
			"status": status,
		})
		return nil, err
	}
	return alerts, nil
}

func (r *expiryAlertRepository) FindAll() ([]model.ExpiryAlert, error) {
	var alerts []model.ExpiryAlert
	err := r.db.
		Preload("Product").
		Preload("Product.Category").
		Order("expiry_date ASC").
		Find(&alerts).Error
	if err != nil {
		logger.Error("Failed to find expiry alerts", err, nil)
		return nil, err
	}
	return alerts, nil
}

func (r *expiryAlertRepository) Update(alert *model.ExpiryAlert) error {
	if err := r.db.Save(alert).Error; err != nil {
		logger.Error("Failed to update expiry alert", err, map[string]interface{}{
			"alert_id": alert.ID,
		})
		return err
	}
	return nil
}

func (r *expiryAlertRepository) DeleteByProduct(productID uint) error {
	if err := r.db.Where("product_id = ?", productID).Delete(&model.ExpiryAlert{}).Error; err != nil {
		logger.Error("Failed to delete expiry alerts for product", err, map[string]interface{}{
			"product_id": productID,
		})
		return err
	}
	return nil
}
