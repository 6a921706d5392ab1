package service

import (
	"testing"
	"time"

	"github.com/smartcart/smartcart-backend/internal/app/repository"
	"github.com/smartcart/smartcart-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCouponServiceTest(t *testing.T) (*gorm.DB, CouponService) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	svc := NewCouponService(
		repository.NewCouponRepository(testDB),
		NewAuditService(repository.NewAuditLogRepository(testDB)),
	)
	return testDB, svc
}

func TestCouponService_CreateCoupon(t *testing.T) {
	testDB, svc := setupCouponServiceTest(t)
	defer db.CleanupTestDB(testDB)

	now := time.Now()
	coupon, err := svc.CreateCoupon(1, CouponInput{
		Code:               "save10",
		DiscountPercentage: 10,
		ValidFrom:          now.Add(-time.Hour),
		ValidUntil:         now.Add(24 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, "SAVE10", coupon.Code)
	assert.True(t, coupon.IsActive)

	_, err = svc.CreateCoupon(1, CouponInput{
		Code:               "SAVE10",
		DiscountPercentage: 20,
		ValidFrom:          now,
		ValidUntil:         now.Add(time.Hour),
	})
	assert.ErrorIs(t, err, ErrCouponCodeExists)
}

func TestCouponService_CreateCoupon_InvalidPercentage(t *testing.T) {
	testDB, svc := setupCouponServiceTest(t)
	defer db.CleanupTestDB(testDB)

	now := time.Now()
	for _, pct := range []float64{0, -5, 101} {
		_, err := svc.CreateCoupon(1, CouponInput{
			Code:               "BAD",
			DiscountPercentage: pct,
			ValidFrom:          now,
			ValidUntil:         now.Add(time.Hour),
		})
		assert.ErrorIs(t, err, ErrInvalidCoupon)
	}
}

func TestCouponService_Evaluate(t *testing.T) {
	testDB, svc := setupCouponServiceTest(t)
	defer db.CleanupTestDB(testDB)

	now := time.Now()
	_, err := svc.CreateCoupon(1, CouponInput{
		Code:               "FRESH15",
		DiscountPercentage: 15,
		ValidFrom:          now.Add(-time.Hour),
		ValidUntil:         now.Add(24 * time.Hour),
		MinPurchase:        20,
	})
	require.NoError(t, err)

	// Lookup is case-insensitive and applies the percentage.
	eval := svc.Evaluate("fresh15", 40, now)
	assert.True(t, eval.Applied)
	assert.InDelta(t, 6.0, eval.Discount, 0.001)
	assert.Equal(t, "Coupon FRESH15 applied: 15% off.", eval.Message)

	// Below minimum purchase
	eval = svc.Evaluate("FRESH15", 10, now)
	assert.False(t, eval.Applied)
	assert.Zero(t, eval.Discount)
	assert.Contains(t, eval.Message, "minimum purchase")

	// Unknown code never errors
	eval = svc.Evaluate("NOPE", 40, now)
	assert.False(t, eval.Applied)
	assert.Equal(t, "Coupon code not found.", eval.Message)

	// Outside validity window
	eval = svc.Evaluate("FRESH15", 40, now.Add(48*time.Hour))
	assert.False(t, eval.Applied)
	assert.Equal(t, "This coupon is expired or inactive.", eval.Message)
}

func TestCouponService_ToggleCoupon(t *testing.T) {
	testDB, svc := setupCouponServiceTest(t)
	defer db.CleanupTestDB(testDB)

	now := time.Now()
	coupon, err := svc.CreateCoupon(1, CouponInput{
		Code:               "WEEKLY5",
		DiscountPercentage: 5,
		ValidFrom:          now.Add(-time.Hour),
		ValidUntil:         now.Add(24 * time.Hour),
	})
	require.NoError(t, err)

	toggled, err := svc.ToggleCoupon(1, coupon.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)

	// Inactive coupons do not apply even inside the window
	eval := svc.Evaluate("WEEKLY5", 40, now)
	assert.False(t, eval.Applied)
	assert.Equal(t, "This coupon is expired or inactive.", eval.Message)

	toggled, err = svc.ToggleCoupon(1, coupon.ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsActive)

	_, err = svc.ToggleCoupon(1, 9999)
	assert.ErrorIs(t, err, ErrCouponNotFound)
}

func TestCouponService_DeleteCoupon(t *testing.T) {
	testDB, svc := setupCouponServiceTest(t)
	defer db.CleanupTestDB(testDB)

	now := time.Now()
	coupon, err := svc.CreateCoupon(1, CouponInput{
		Code:               "GONE",
		DiscountPercentage: 10,
		ValidFrom:          now,
		ValidUntil:         now.Add(time.Hour),
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCoupon(1, coupon.ID))

	coupons, err := svc.ListCoupons()
	require.NoError(t, err)
	assert.Empty(t, coupons)
}
