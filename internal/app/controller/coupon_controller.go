package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smartcart/smartcart-backend/internal/app/service"
	apperrors "github.com/smartcart/smartcart-backend/internal/errors"
	"github.com/smartcart/smartcart-backend/internal/middleware"
)

type CouponController struct {
	couponService service.CouponService
}

func NewCouponController(couponService service.CouponService) *CouponController {
	return &CouponController{couponService: couponService}
}

type CreateCouponRequest struct {
	Code               string  `json:"code" binding:"required,max=50"`
	DiscountPercentage float64 `json:"discount_percentage" binding:"required,gt=0,lte=100"`
	ValidFrom          string  `json:"valid_from" binding:"required"`  // RFC 3339
	ValidUntil         string  `json:"valid_until" binding:"required"` // RFC 3339
	MinPurchase        float64 `json:"min_purchase" binding:"min=0"`
}

type ValidateCouponRequest struct {
	Code  string  `json:"code" binding:"required"`
	Total float64 `json:"total" binding:"min=0"`
}

// ValidateCoupon previews a coupon against a cart total
// POST /api/v1/coupons/validate
func (ctrl *CouponController) ValidateCoupon(c *gin.Context) {
	var req ValidateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Coupon code is required")
		return
	}

	evaluation := ctrl.couponService.Evaluate(req.Code, req.Total, time.Now())
	c.JSON(http.StatusOK, evaluation)
}

// ListCoupons returns all coupons (admin)
// GET /api/v1/admin/coupons
func (ctrl *CouponController) ListCoupons(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	coupons, err := ctrl.couponService.ListCoupons()
	if err != nil {
		log.Error("Failed to list coupons", err, nil)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list coupons")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"coupons": coupons,
	})
}

// CreateCoupon creates a coupon (admin)
// POST /api/v1/admin/coupons
func (ctrl *CouponController) CreateCoupon(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	adminID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid coupon data")
		return
	}

	validFrom, err := time.Parse(time.RFC3339, req.ValidFrom)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "valid_from must be an RFC 3339 timestamp")
		return
	}
	validUntil, err := time.Parse(time.RFC3339, req.ValidUntil)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "valid_until must be an RFC 3339 timestamp")
		return
	}

	coupon, err := ctrl.couponService.CreateCoupon(adminID, service.CouponInput{
		Code:               req.Code,
		DiscountPercentage: req.DiscountPercentage,
		ValidFrom:          validFrom,
		ValidUntil:         validUntil,
		MinPurchase:        req.MinPurchase,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCouponCodeExists):
			apperrors.Conflict(c, apperrors.CouponCodeExists, "A coupon with this code already exists")
		case errors.Is(err, service.ErrInvalidCoupon):
			apperrors.BadRequest(c, apperrors.CouponInvalid, "Invalid coupon data")
		default:
			log.Error("Failed to create coupon", err, map[string]interface{}{
				"code": req.Code,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create coupon")
		}
		return
	}

	log.Info("Coupon created", map[string]interface{}{
		"coupon_id": coupon.ID,
		"code":      coupon.Code,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Coupon created successfully",
		"coupon":  coupon,
	})
}

// ToggleCoupon flips a coupon's active flag (admin)
// PUT /api/v1/admin/coupons/:id/toggle
func (ctrl *CouponController) ToggleCoupon(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	adminID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	couponID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	coupon, err := ctrl.couponService.ToggleCoupon(adminID, couponID)
	if err != nil {
		if errors.Is(err, service.ErrCouponNotFound) {
			apperrors.NotFound(c, apperrors.CouponNotFound, "Coupon not found")
			return
		}
		log.Error("Failed to toggle coupon", err, map[string]interface{}{
			"coupon_id": couponID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "toggle coupon")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Coupon updated",
		"coupon":  coupon,
	})
}

// DeleteCoupon removes a coupon (admin)
// DELETE /api/v1/admin/coupons/:id
func (ctrl *CouponController) DeleteCoupon(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	adminID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	couponID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.couponService.DeleteCoupon(adminID, couponID); err != nil {
		if errors.Is(err, service.ErrCouponNotFound) {
			apperrors.NotFound(c, apperrors.CouponNotFound, "Coupon not found")
			return
		}
		log.Error("Failed to delete coupon", err, map[string]interface{}{
			"coupon_id": couponID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "delete coupon")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Coupon deleted",
	})
}
