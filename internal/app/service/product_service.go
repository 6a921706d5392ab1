package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/smartcart/smartcart-backend/internal/app/model"
	"github.com/smartcart/smartcart-backend/internal/app/repository"
	"github.com/smartcart/smartcart-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrInvalidPrice     = errors.New("price must be greater than zero")
)

// Products expiring within this window get an expiry alert.
const expiryAlertWindowDays = 90

type ProductInput struct {
	Name            string
	Description     string
	ImageURL        string
	Price           float64
	OriginalPrice   *float64
	Stock           int
	CategoryID      uint
	ExpiryDate      *time.Time
	MedicalWarnings string
}

// ProductDetail bundles a product with its review summary and related items.
type ProductDetail struct {
	Product       model.Product   `json:"product"`
	AverageRating float64         `json:"average_rating"`
	ReviewCount   int64           `json:"review_count"`
	Reviews       []model.Review  `json:"reviews"`
	Related       []model.Product `json:"related"`
}

// HomeFeed is the storefront landing payload.
type HomeFeed struct {
	Discounted []model.Product  `json:"discounted"`
	Newest     []model.Product  `json:"newest"`
	Grocery    []model.Product  `json:"grocery"`
	Pharmacy   []model.Product  `json:"pharmacy"`
	Categories []model.Category `json:"categories"`
}

// Number of products shown per home-feed section.
const homeFeedSectionSize = 8

type ProductService interface {
	GetHomeFeed() (*HomeFeed, error)
	ListProducts(filter repository.ProductFilter) ([]model.Product, int64, error)
	GetProductDetail(productID uint) (*ProductDetail, error)
	CreateProduct(adminID uint, input ProductInput) (*model.Product, error)
	UpdateProduct(adminID, productID uint, input ProductInput) (*model.Product, error)
	DeleteProduct(adminID, productID uint) error
}

type productService struct {
	productRepo      repository.ProductRepository
	categoryRepo     repository.CategoryRepository
	reviewRepo       repository.ReviewRepository
	wishlistRepo     repository.WishlistRepository
	notificationRepo repository.NotificationRepository
	expiryService    ExpiryService
	auditService     AuditService
	db               *gorm.DB
}

func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	reviewRepo repository.ReviewRepository,
	wishlistRepo repository.WishlistRepository,
	notificationRepo repository.NotificationRepository,
	expiryService ExpiryService,
	auditService AuditService,
	db *gorm.DB,
) ProductService {
	return &productService{
		productRepo:      productRepo,
		categoryRepo:     categoryRepo,
		reviewRepo:       reviewRepo,
		wishlistRepo:     wishlistRepo,
		notificationRepo: notificationRepo,
		expiryService:    expiryService,
		auditService:     auditService,
		db:               db,
	}
}

func (s *productService) GetHomeFeed() (*HomeFeed, error) {
	discounted, err := s.productRepo.FindDiscounted(homeFeedSectionSize)
	if err != nil {
		return nil, err
	}

	newest, err := s.productRepo.FindNewest(homeFeedSectionSize)
	if err != nil {
		return nil, err
	}

	grocery, err := s.homeFeedSample(false)
	if err != nil {
		return nil, err
	}

	pharmacy, err := s.homeFeedSample(true)
	if err != nil {
		return nil, err
	}

	categories, err := s.categoryRepo.FindAll()
	if err != nil {
		return nil, err
	}

	return &HomeFeed{
		Discounted: discounted,
		Newest:     newest,
		Grocery:    grocery,
		Pharmacy:   pharmacy,
		Categories: categories,
	}, nil
}

func (s *productService) homeFeedSample(pharmacy bool) ([]model.Product, error) {
	products, _, err := s.productRepo.FindWithFilter(repository.ProductFilter{
		Pharmacy: &pharmacy,
		SortBy:   repository.ProductSortNewest,
		Limit:    homeFeedSectionSize,
	})
	return products, err
}

func (s *productService) ListProducts(filter repository.ProductFilter) ([]model.Product, int64, error) {
	return s.productRepo.FindWithFilter(filter)
}

func (s *productService) GetProductDetail(productID uint) (*ProductDetail, error) {
	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	average, count, err := s.productRepo.AverageRating(productID)
	if err != nil {
		return nil, err
	}

	reviews, err := s.reviewRepo.FindByProduct(productID)
	if err != nil {
		return nil, err
	}

	related, err := s.productRepo.FindRelated(productID, product.CategoryID, 4)
	if err != nil {
		return nil, err
	}

	return &ProductDetail{
		Product:       *product,
		AverageRating: average,
		ReviewCount:   count,
		Reviews:       reviews,
		Related:       related,
	}, nil
}

// validatePricing rejects non-positive prices and discounts where the
// original price does not exceed the sale price.
func validatePricing(input ProductInput) error {
	if input.Price <= 0 {
		return ErrInvalidPrice
	}
	if input.OriginalPrice != nil && *input.OriginalPrice <= input.Price {
		return ErrInvalidPrice
	}
	return nil
}

func (s *productService) CreateProduct(adminID uint, input ProductInput) (*model.Product, error) {
	if err := validatePricing(input); err != nil {
		return nil, err
	}

	if _, err := s.categoryRepo.FindByID(input.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	product := &model.Product{
		Name:            input.Name,
		Description:     input.Description,
		ImageURL:        input.ImageURL,
		Price:           input.Price,
		OriginalPrice:   input.OriginalPrice,
		Stock:           input.Stock,
		CategoryID:      input.CategoryID,
		ExpiryDate:      input.ExpiryDate,
		MedicalWarnings: input.MedicalWarnings,
	}

	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}

	s.maybeCreateExpiryAlert(product)

	s.auditService.Log(&adminID, AuditActionProductCreate, fmt.Sprintf("product %d %q created", product.ID, product.Name))

	logger.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
		"admin_id":   adminID,
	})
	return product, nil
}

func (s *productService) UpdateProduct(adminID, productID uint, input ProductInput) (*model.Product, error) {
	if err := validatePricing(input); err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if input.CategoryID != product.CategoryID {
		if _, err := s.categoryRepo.FindByID(input.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, err
		}
	}

	hadDiscount := product.HasDiscount()

	product.Name = input.Name
	product.Description = input.Description
	if input.ImageURL != "" {
		product.ImageURL = input.ImageURL
	}
	product.Price = input.Price
	product.OriginalPrice = input.OriginalPrice
	product.Stock = input.Stock
	product.CategoryID = input.CategoryID
	product.ExpiryDate = input.ExpiryDate
	product.MedicalWarnings = input.MedicalWarnings

	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}

	// A newly discounted product notifies everyone who wishlisted it.
	if !hadDiscount && product.HasDiscount() {
		s.notifyWishlistUsers(product)
	}

	s.maybeCreateExpiryAlert(product)

	s.auditService.Log(&adminID, AuditActionProductUpdate, fmt.Sprintf("product %d %q updated", product.ID, product.Name))

	return product, nil
}

func (s *productService) notifyWishlistUsers(product *model.Product) {
	userIDs, err := s.wishlistRepo.UserIDsByProduct(product.ID)
	if err != nil {
		logger.Error("Failed to load wishlist users for discount notification", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return
	}
	if len(userIDs) == 0 {
		return
	}

	message := fmt.Sprintf("Good news! %s is now on sale with %d%% off.", product.Name, product.DiscountPercentage())
	notifications := make([]model.Notification, 0, len(userIDs))
	for _, userID := range userIDs {
		notifications = append(notifications, *model.NewNotification(userID, message))
	}

	if err := s.notificationRepo.CreateBatch(notifications); err != nil {
		logger.Error("Failed to send discount notifications", err, map[string]interface{}{
			"product_id": product.ID,
			"recipients": len(userIDs),
		})
		return
	}

	logger.Info("Discount notifications sent", map[string]interface{}{
		"product_id": product.ID,
		"recipients": len(userIDs),
	})
}

func (s *productService) maybeCreateExpiryAlert(product *model.Product) {
	if product.ExpiryDate == nil {
		return
	}
	if err := s.expiryService.EnsureAlertForProduct(product, time.Now()); err != nil {
		logger.Error("Failed to ensure expiry alert", err, map[string]interface{}{
			"product_id": product.ID,
		})
	}
}

// DeleteProduct removes the product together with its cart, wishlist and
// expiry alert rows. Reviews and order items are kept so that order
// history and ratings survive catalog cleanup.
func (s *productService) DeleteProduct(adminID, productID uint) error {
	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).Delete(&model.CartItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", productID).Delete(&model.WishlistItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", productID).Delete(&model.ExpiryAlert{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Product{}, productID).Error
	})
	if err != nil {
		logger.Error("Failed to delete product", err, map[string]interface{}{
			"product_id": productID,
		})
		return err
	}

	s.auditService.Log(&adminID, AuditActionProductDelete, fmt.Sprintf("product %d %q deleted", productID, product.Name))

	logger.Info("Product deleted", map[string]interface{}{
		"product_id": productID,
		"admin_id":   adminID,
	})
	return nil
}
