package service

import (
	"errors"

	"github.com/smartcart/smartcart-backend/internal/app/model"
	"github.com/smartcart/smartcart-backend/internal/app/repository"
	"github.com/smartcart/smartcart-backend/pkg/logger"
	"gorm.io/gorm"
)

var ErrWishlistItemNotFound = errors.New("wishlist item not found")

type WishlistService interface {
	GetWishlist(userID uint) ([]model.WishlistItem, error)
	// AddItem is idempotent: adding a product twice reports added=false
	// without an error.
	AddItem(userID, productID uint) (item *model.WishlistItem, added bool, err error)
	RemoveItem(userID, productID uint) error
	// MoveToCart transfers a wishlisted product into the cart with
	// quantity 1 and removes it from the wishlist.
	MoveToCart(userID, productID uint) (*model.CartItem, error)
}

type wishlistService struct {
	wishlistRepo repository.WishlistRepository
	productRepo  repository.ProductRepository
	cartService  CartService
}

func NewWishlistService(
	wishlistRepo repository.WishlistRepository,
	productRepo repository.ProductRepository,
	cartService CartService,
) WishlistService {
	return &wishlistService{
		wishlistRepo: wishlistRepo,
		productRepo:  productRepo,
		cartService:  cartService,
	}
}

func (s *wishlistService) GetWishlist(userID uint) ([]model.WishlistItem, error) {
	return s.wishlistRepo.FindByUser(userID)
}

func (s *wishlistService) AddItem(userID, productID uint) (*model.WishlistItem, bool, error) {
	if _, err := s.productRepo.FindByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrProductNotFound
		}
		return nil, false, err
	}

	existing, err := s.wishlistRepo.FindByUserAndProduct(userID, productID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	item := model.NewWishlistItem(userID, productID)
	if err := s.wishlistRepo.Create(item); err != nil {
		return nil, false, err
	}

	logger.Info("Product added to wishlist", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
	})
	return item, true, nil
}

func (s *wishlistService) RemoveItem(userID, productID uint) error {
	err := s.wishlistRepo.DeleteByUserAndProduct(userID, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrWishlistItemNotFound
	}
	return err
}

func (s *wishlistService) MoveToCart(userID, productID uint) (*model.CartItem, error) {
	if _, err := s.wishlistRepo.FindByUserAndProduct(userID, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWishlistItemNotFound
		}
		return nil, err
	}

	cartItem, err := s.cartService.AddItem(userID, productID, 1)
	if err != nil {
		return nil, err
	}

	if err := s.wishlistRepo.DeleteByUserAndProduct(userID, productID); err != nil {
		logger.Error("Failed to remove wishlist item after move to cart", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
	}
	return cartItem, nil
}
