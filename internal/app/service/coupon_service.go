package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/smartcart/smartcart-backend/internal/app/model"
	"github.com/smartcart/smartcart-backend/internal/app/repository"
	"github.com/smartcart/smartcart-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrCouponNotFound   = errors.New("coupon not found")
	ErrCouponCodeExists = errors.New("coupon code already exists")
	ErrInvalidCoupon    = errors.New("invalid coupon data")
)

type CouponInput struct {
	Code               string
	DiscountPercentage float64
	ValidFrom          time.Time
	ValidUntil         time.Time
	MinPurchase        float64
}

// CouponEvaluation is the outcome of applying a coupon code to a total.
type CouponEvaluation struct {
	Coupon   *model.Coupon `json:"coupon,omitempty"`
	Applied  bool          `json:"applied"`
	Discount float64       `json:"discount"`
	Message  string        `json:"message"`
}

type CouponService interface {
	CreateCoupon(adminID uint, input CouponInput) (*model.Coupon, error)
	ListCoupons() ([]model.Coupon, error)
	ToggleCoupon(adminID, couponID uint) (*model.Coupon, error)
	DeleteCoupon(adminID, couponID uint) error
	// Evaluate resolves a coupon code against an order total. An unknown,
	// expired or below-minimum code yields Applied=false with a message;
	// it is never an error.
	Evaluate(code string, total float64, now time.Time) CouponEvaluation
}

type couponService struct {
	couponRepo   repository.CouponRepository
	auditService AuditService
}

func NewCouponService(couponRepo repository.CouponRepository, auditService AuditService) CouponService {
	return &couponService{
		couponRepo:   couponRepo,
		auditService: auditService,
	}
}

func (s *couponService) CreateCoupon(adminID uint, input CouponInput) (*model.Coupon, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" || input.DiscountPercentage <= 0 || input.DiscountPercentage > 100 {
		return nil, ErrInvalidCoupon
	}
	if input.ValidUntil.Before(input.ValidFrom) {
		return nil, ErrInvalidCoupon
	}

	if _, err := s.couponRepo.FindByCode(code); err == nil {
		return nil, ErrCouponCodeExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	coupon := &model.Coupon{
		Code:               code,
		DiscountPercentage: input.DiscountPercentage,
		ValidFrom:          input.ValidFrom,
		ValidUntil:         input.ValidUntil,
		IsActive:           true,
		MinPurchase:        input.MinPurchase,
	}

	if err := s.couponRepo.Create(coupon); err != nil {
		return nil, err
	}

	s.auditService.Log(&adminID, AuditActionCouponCreate, fmt.Sprintf("coupon %q created (%g%% off)", code, input.DiscountPercentage))

	logger.Info("Coupon created", map[string]interface{}{
		"coupon_id": coupon.ID,
		"code":      code,
	})
	return coupon, nil
}

func (s *couponService) ListCoupons() ([]model.Coupon, error) {
	return s.couponRepo.FindAll()
}

func (s *couponService) ToggleCoupon(adminID, couponID uint) (*model.Coupon, error) {
	coupon, err := s.couponRepo.FindByID(couponID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, err
	}

	coupon.IsActive = !coupon.IsActive
	if err := s.couponRepo.Update(coupon); err != nil {
		return nil, err
	}

	s.auditService.Log(&adminID, AuditActionCouponToggle, fmt.Sprintf("coupon %q active=%t", coupon.Code, coupon.IsActive))
	return coupon, nil
}

func (s *couponService) DeleteCoupon(adminID, couponID uint) error {
	coupon, err := s.couponRepo.FindByID(couponID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCouponNotFound
		}
		return err
	}

	if err := s.couponRepo.Delete(couponID); err != nil {
		return err
	}

	s.auditService.Log(&adminID, AuditActionCouponToggle, fmt.Sprintf("coupon %q deleted", coupon.Code))
	return nil
}

func (s *couponService) Evaluate(code string, total float64, now time.Time) CouponEvaluation {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return CouponEvaluation{}
	}

	coupon, err := s.couponRepo.FindByCode(code)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to look up coupon", err, map[string]interface{}{
				"code": code,
			})
		}
		return CouponEvaluation{Message: "Coupon code not found."}
	}

	if !coupon.IsValidAt(now) {
		return CouponEvaluation{Coupon: coupon, Message: "This coupon is expired or inactive."}
	}

	if total < coupon.MinPurchase {
		return CouponEvaluation{
			Coupon:  coupon,
			Message: fmt.Sprintf("This coupon requires a minimum purchase of %.2f.", coupon.MinPurchase),
		}
	}

	return CouponEvaluation{
		Coupon:   coupon,
		Applied:  true,
		Discount: coupon.DiscountAmount(total),
		Message:  fmt.Sprintf("Coupon %s applied: %g%% off.", coupon.Code, coupon.DiscountPercentage),
	}
}
