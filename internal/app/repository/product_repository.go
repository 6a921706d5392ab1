package repository

import (
	"strings"
	"time"

	"github.com/smartcart/smartcart-backend/internal/app/model"
	"github.com/smartcart/smartcart-backend/pkg/logger"
	"gorm.io/gorm"
)

type ProductSort string

const (
	ProductSortName      ProductSort = "name"
	ProductSortPriceLow  ProductSort = "price_low"
	ProductSortPriceHigh ProductSort = "price_high"
	ProductSortNewest    ProductSort = "newest"
)

type ProductFilter struct {
	CategoryID *uint
	Pharmacy   *bool
	Search     string
	SortBy     ProductSort
	Limit      int
	Offset     int
}

type ProductRepository interface {
	Create(product *model.Product) error
	FindAll() ([]model.Product, error)
	FindWithFilter(filter ProductFilter) ([]model.Product, int64, error)
	FindByID(id uint) (*model.Product, error)
	FindByIDs(ids []uint) ([]model.Product, error)
	FindRelated(productID, categoryID uint, limit int) ([]model.Product, error)
	FindDiscounted(limit int) ([]model.Product, error)
	FindNewest(limit int) ([]model.Product, error)
	FindLowStock(threshold int) ([]model.Product, error)
	FindExpiringBetween(from, until time.Time, inStockOnly bool) ([]model.Product, error)
	AverageRating(productID uint) (float64, int64, error)
	Update(product *model.Product) error
	Delete(id uint) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"name":        product.Name,
		"category_id": product.CategoryID,
		"price":       product.Price,
	})

	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"name": product.Name,
		})
		return err
	}

	logger.Debug("Product created in database", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})
	return nil
}

func (r *productRepository) baseQuery() *gorm.DB {
	return r.db.Model(&model.Product{}).Preload("Category")
}

func (r *productRepository) FindAll() ([]model.Product, error) {
	products, _, err := r.FindWithFilter(ProductFilter{})
	return products, err
}

func (r *productRepository) FindWithFilter(filter ProductFilter) ([]model.Product, int64, error) {
	logger.Debug("Finding products with filter", map[string]interface{}{
		"category_id": filter.CategoryID,
		"pharmacy":    filter.Pharmacy,
		"search":      filter.Search,
		"sort_by":     filter.SortBy,
		"limit":       filter.Limit,
		"offset":      filter.Offset,
	})

	query := r.baseQuery()

	if filter.CategoryID != nil {
		query = query.Where("products.category_id = ?", *filter.CategoryID)
	}

	if filter.Pharmacy != nil {
		query = query.
			Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.is_pharmacy = ?", *filter.Pharmacy)
	}

	if filter.Search != "" {
		// LOWER on both sides keeps the search case-insensitive on Postgres,
		// where plain LIKE is case-sensitive.
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error("Failed to count products", err, nil)
		return nil, 0, err
	}

	switch filter.SortBy {
	case ProductSortPriceLow:
		query = query.Order("products.price ASC")
	case ProductSortPriceHigh:
		query = query.Order("products.price DESC")
	case ProductSortNewest:
		query = query.Order("products.created_at DESC")
	default:
		query = query.Order("products.name ASC")
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var products []model.Product
	if err := query.Find(&products).Error; err != nil {
		logger.Error("Failed to find products", err, nil)
		return nil, 0, err
	}

	return products, total, nil
}

func (r *productRepository) FindByID(id uint) (*model.Product, error) {
	var product model.Product
	if err := r.baseQuery().First(&product, id).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find product by ID", err, map[string]interface{}{
				"product_id": id,
			})
		}
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindByIDs(ids []uint) ([]model.Product, error) {
	var products []model.Product
	if len(ids) == 0 {
		return products, nil
	}
	if err := r.baseQuery().Where("products.id IN ?", ids).Find(&products).Error; err != nil {
		logger.Error("Failed to find products by IDs", err, map[string]interface{}{
			"count": len(ids),
		})
		return nil, err
	}
	return products, nil
}

func (r *productRepository) FindRelated(productID, categoryID uint, limit int) ([]model.Product, error) {
	var products []model.Product
	err := r.baseQuery().
		Where("products.category_id = ? AND products.id != ?", categoryID, productID).
		Limit(limit).
		Find(&products).Error
	if err != nil {
		logger.Error("Failed to find related products", err, map[string]interface{}{
			"product_id":  productID,
			"category_id": categoryID,
		})
		return nil, err
	}
	return products, nil
}

func (r *productRepository) FindDiscounted(limit int) ([]model.Product, error) {
	var products []model.Product
	err := r.baseQuery().
		Where("products.original_price IS NOT NULL AND products.original_price > products.price").
		Order("products.updated_at DESC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		logger.Error("Failed to find discounted products", err, nil)
		return nil, err
	}
	return products, nil
}

func (r *productRepository) FindNewest(limit int) ([]model.Product, error) {
	var products []model.Product
	err := r.baseQuery().
		Order("products.created_at DESC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		logger.Error("Failed to find newest products", err, nil)
		return nil, err
	}
	return products, nil
}

func (r *productRepository) FindLowStock(threshold int) ([]model.Product, error) {
	var products []model.Product
	err := r.baseQuery().
		Where("products.stock < ?", threshold).
		Order("products.stock ASC").
		Find(&products).Error
	if err != nil {
		logger.Error("Failed to find low stock products", err, map[string]interface{}{
			"threshold": threshold,
		})
		return nil, err
	}
	return products, nil
}

func (r *productRepository) FindExpiringBetween(from, until time.Time, inStockOnly bool) ([]model.Product, error) {
	query := r.baseQuery().
		Where("products.expiry_date IS NOT NULL AND products.expiry_date >= ? AND products.expiry_date <= ?", from, until)
	if inStockOnly {
		query = query.Where("products.stock > 0")
	}

	var products []model.Product
	if err := query.Order("products.expiry_date ASC").Find(&products).Error; err != nil {
		logger.Error("Failed to find expiring products", err, nil)
		return nil, err
	}
	return products, nil
}

// AverageRating returns the mean rating and review count for a product,
// (0, 0) when it has no reviews.
func (r *productRepository) AverageRating(productID uint) (float64, int64, error) {
	type ratingResult struct {
		Average float64
		Count   int64
	}
	var result ratingResult
	err := r.db.Model(&model.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("product_id = ?", productID).
		Scan(&result).Error
	if err != nil {
		logger.Error("Failed to compute average rating", err, map[string]interface{}{
			"product_id": productID,
		})
		return 0, 0, err
	}
	return result.Average, result.Count, nil
}

func (r *productRepository) Update(product *model.Product) error {
	if err := r.db.Save(product).Error; err != nil {
		logger.Error("Failed to update product", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return err
	}
	return nil
}

func (r *productRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.Product{}, id).Error; err != nil {
		logger.Error("Failed to delete product", err, map[string]interface{}{
			"product_id": id,
		})
		return err
	}
	return nil
}
