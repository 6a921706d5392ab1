package service

import (
	"time"

	"github.com/smartcart/smartcart-backend/internal/app/model"
	"github.com/smartcart/smartcart-backend/internal/app/repository"
)

const (
	lowStockThreshold = 10
	expiringSoonDays  = 30
	salesSeriesDays   = 31
)

// DashboardSummary is the admin back-office overview.
type DashboardSummary struct {
	TotalOrders     int64                      `json:"total_orders"`
	PendingOrders   int64                      `json:"pending_orders"`
	DeliveredOrders int64                      `json:"delivered_orders"`
	RevenueToday    float64                    `json:"revenue_today"`
	RevenueMonth    float64                    `json:"revenue_month"`
	RevenueTotal    float64                    `json:"revenue_total"`
	LowStock        []model.Product            `json:"low_stock"`
	ExpiringSoon    []model.Product            `json:"expiring_soon"`
	SalesSeries     []repository.DailySale     `json:"sales_series"`
	CategorySales   []repository.CategorySales `json:"category_sales"`
}

type DashboardService interface {
	Summary(now time.Time) (*DashboardSummary, error)
}

type dashboardService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
}

func NewDashboardService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository) DashboardService {
	return &dashboardService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
	}
}

func (s *dashboardService) Summary(now time.Time) (*DashboardSummary, error) {
	summary := &DashboardSummary{}

	var err error
	if summary.TotalOrders, err = s.orderRepo.CountAll(); err != nil {
		return nil, err
	}
	if summary.PendingOrders, err = s.orderRepo.CountByStatus(model.OrderStatusPending); err != nil {
		return nil, err
	}
	if summary.DeliveredOrders, err = s.orderRepo.CountByStatus(model.OrderStatusDelivered); err != nil {
		return nil, err
	}

	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	if summary.RevenueToday, err = s.orderRepo.RevenueSince(startOfDay); err != nil {
		return nil, err
	}
	if summary.RevenueMonth, err = s.orderRepo.RevenueSince(startOfMonth); err != nil {
		return nil, err
	}
	if summary.RevenueTotal, err = s.orderRepo.RevenueTotal(); err != nil {
		return nil, err
	}

	if summary.LowStock, err = s.productRepo.FindLowStock(lowStockThreshold); err != nil {
		return nil, err
	}
	if summary.ExpiringSoon, err = s.productRepo.FindExpiringBetween(now, now.AddDate(0, 0, expiringSoonDays), true); err != nil {
		return nil, err
	}

	from := startOfDay.AddDate(0, 0, -(salesSeriesDays - 1))
	sales, err := s.orderRepo.DailySales(from, now)
	if err != nil {
		return nil, err
	}
	summary.SalesSeries = fillMissingDays(sales, from, salesSeriesDays)

	if summary.CategorySales, err = s.orderRepo.CategoryDistribution(); err != nil {
		return nil, err
	}

	return summary, nil
}

// fillMissingDays expands the sparse per-day aggregate into a dense
// series with zero entries for days without orders.
func fillMissingDays(sales []repository.DailySale, from time.Time, days int) []repository.DailySale {
	byDate := make(map[string]repository.DailySale, len(sales))
	for _, sale := range sales {
		byDate[sale.Date] = sale
	}

	series := make([]repository.DailySale, 0, days)
	for i := 0; i < days; i++ {
		date := from.AddDate(0, 0, i).Format("2006-01-02")
		if sale, ok := byDate[date]; ok {
			series = append(series, sale)
		} else {
			series = append(series, repository.DailySale{Date: date})
		}
	}
	return series
}
