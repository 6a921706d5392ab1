package service

import (
	"bytes"
	"fmt"
	"time"

	"github.com/smartcart/smartcart-backend/internal/app/model"
	"github.com/smartcart/smartcart-backend/internal/app/repository"
	"github.com/xuri/excelize/v2"
)

type ExportService interface {
	// ExportProducts writes the full catalog to an xlsx workbook.
	ExportProducts() ([]byte, string, error)
	// ExportOrders writes orders (optionally filtered by status) to an
	// xlsx workbook.
	ExportOrders(status *model.OrderStatus) ([]byte, string, error)
}

type exportService struct {
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
}

func NewExportService(productRepo repository.ProductRepository, orderRepo repository.OrderRepository) ExportService {
	return &exportService{
		productRepo: productRepo,
		orderRepo:   orderRepo,
	}
}

func (s *exportService) ExportProducts() ([]byte, string, error) {
	products, err := s.productRepo.FindAll()
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Products"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Name", "Category", "Price", "Original Price", "Stock", "Expiry Date", "Medical Warnings"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for row, product := range products {
		values := []interface{}{
			product.ID,
			product.Name,
			product.Category.Name,
			product.Price,
			"",
			product.Stock,
			"",
			product.MedicalWarnings,
		}
		if product.OriginalPrice != nil {
			values[4] = *product.OriginalPrice
		}
		if product.ExpiryDate != nil {
			values[6] = product.ExpiryDate.Format("2006-01-02")
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to write workbook: %w", err)
	}

	filename := fmt.Sprintf("products-%s.xlsx", time.Now().Format("20060102"))
	return buf.Bytes(), filename, nil
}

func (s *exportService) ExportOrders(status *model.OrderStatus) ([]byte, string, error) {
	orders, _, err := s.orderRepo.FindWithFilter(repository.OrderFilter{Status: status})
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Orders"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Customer", "Status", "Total", "Delivery Address", "Items", "Created"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for row, order := range orders {
		values := []interface{}{
			order.ID,
			order.User.Email,
			string(order.Status),
			order.TotalAmount,
			order.DeliveryAddress,
			len(order.OrderItems),
			order.CreatedAt.Format("2006-01-02 15:04"),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to write workbook: %w", err)
	}

	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().Format("20060102"))
	return buf.Bytes(), filename, nil
}
