package service

import (
	"errors"
	"time"

	"github.com/smartcart/smartcart-backend/internal/app/model"
	"github.com/smartcart/smartcart-backend/internal/app/repository"
	"github.com/smartcart/smartcart-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrExpiryAlertNotFound = errors.New("expiry alert not found")
	ErrInvalidAlertStatus  = errors.New("invalid expiry alert status")
)

type ExpiryService interface {
	// EnsureAlertForProduct creates an active alert when the product
	// expires within the alert window and no alert exists yet for that
	// expiry date.
	EnsureAlertForProduct(product *model.Product, now time.Time) error
	// Scan sweeps the whole catalog, creating missing alerts. Returns the
	// number of alerts created.
	Scan(now time.Time) (int, error)
	ListAlerts(status *model.ExpiryAlertStatus) ([]model.ExpiryAlert, error)
	UpdateAlertStatus(alertID uint, status model.ExpiryAlertStatus) (*model.ExpiryAlert, error)
}

type expiryService struct {
	alertRepo   repository.ExpiryAlertRepository
	productRepo repository.ProductRepository
}

func NewExpiryService(alertRepo repository.ExpiryAlertRepository, productRepo repository.ProductRepository) ExpiryService {
	return &expiryService{
		alertRepo:   alertRepo,
		productRepo: productRepo,
	}
}

func (s *expiryService) EnsureAlertForProduct(product *model.Product, now time.Time) error {
	if product.ExpiryDate == nil {
		return nil
	}

	window := now.AddDate(0, 0, expiryAlertWindowDays)
	if product.ExpiryDate.After(window) || product.ExpiryDate.Before(now) {
		return nil
	}

	_, err := s.alertRepo.FindByProductAndDate(product.ID, *product.ExpiryDate)
	if err == nil {
		return nil // already alerted for this expiry date
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	alert := model.NewExpiryAlert(product.ID, *product.ExpiryDate)
	if err := s.alertRepo.Create(alert); err != nil {
		return err
	}

	logger.Info("Expiry alert created", map[string]interface{}{
		"product_id":  product.ID,
		"expiry_date": product.ExpiryDate.Format("2006-01-02"),
	})
	return nil
}

func (s *expiryService) Scan(now time.Time) (int, error) {
	products, err := s.productRepo.FindExpiringBetween(now, now.AddDate(0, 0, expiryAlertWindowDays), false)
	if err != nil {
		return 0, err
	}

	created := 0
	for i := range products {
		product := &products[i]

		_, err := s.alertRepo.FindByProductAndDate(product.ID, *product.ExpiryDate)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, err
		}

		if err := s.alertRepo.Create(model.NewExpiryAlert(product.ID, *product.ExpiryDate)); err != nil {
			return created, err
		}
		created++
	}

	logger.Info("Expiry scan completed", map[string]interface{}{
		"scanned": len(products),
		"created": created,
	})
	return created, nil
}

func (s *expiryService) ListAlerts(status *model.ExpiryAlertStatus) ([]model.ExpiryAlert, error) {
	if status != nil {
		return s.alertRepo.FindByStatus(*status)
	}
	return s.alertRepo.FindAll()
}

func (s *expiryService) UpdateAlertStatus(alertID uint, status model.ExpiryAlertStatus) (*model.ExpiryAlert, error) {
	if !model.ExpiryAlertStatusValid(status) {
		return nil, ErrInvalidAlertStatus
	}

	alert, err := s.alertRepo.FindByID(alertID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExpiryAlertNotFound
		}
		return nil, err
	}

	alert.Status = status
	if err := s.alertRepo.Update(alert); err != nil {
		return nil, err
	}
	return alert, nil
}
