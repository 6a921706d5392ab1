package service

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/smartcart/smartcart-backend/internal/app/model"
)

type InvoiceService interface {
	// GeneratePDF renders an order invoice and returns the PDF bytes
	// together with a suggested file name.
	GeneratePDF(order *model.Order) ([]byte, string, error)
}

type invoiceService struct{}

func NewInvoiceService() InvoiceService {
	return &invoiceService{}
}

func (s *invoiceService) GeneratePDF(order *model.Order) ([]byte, string, error) {
	// The invoice number is derived from the order ID alone so repeated
	// downloads of the same order render identical documents.
	invoiceNumber := fmt.Sprintf("INV-%d", order.ID)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(invoiceNumber, false)
	pdf.AddPage()

	// Header
	pdf.SetFont("Helvetica", "B", 20)
	pdf.Cell(0, 12, "SmartCart")
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, "Groceries & Pharmacy, delivered.")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Invoice %s", invoiceNumber))
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Order #%d  -  %s", order.ID, order.CreatedAt.Format("Jan 2, 2006")))
	pdf.Ln(6)
	if order.User.Username != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Customer: %s (%s)", order.User.Username, order.User.Email))
		pdf.Ln(6)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Deliver to: %s", order.DeliveryAddress))
	pdf.Ln(12)

	// Items table
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(90, 8, "Item", "1", 0, "L", true, 0, "")
	pdf.CellFormat(25, 8, "Qty", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 8, "Unit Price", "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, 8, "Total", "1", 0, "R", true, 0, "")
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range order.OrderItems {
		name := item.Product.Name
		if name == "" {
			name = fmt.Sprintf("Product #%d", item.ProductID)
		}
		pdf.CellFormat(90, 8, name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 8, fmt.Sprintf("%d", item.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 8, fmt.Sprintf("%.2f", item.Price), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, fmt.Sprintf("%.2f", item.LineTotal()), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	// Totals
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(150, 10, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 10, fmt.Sprintf("%.2f", order.TotalAmount), "1", 0, "R", false, 0, "")
	pdf.Ln(16)

	pdf.SetFont("Helvetica", "I", 9)
	pdf.Cell(0, 6, "Thank you for shopping with SmartCart.")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to render invoice: %w", err)
	}

	return buf.Bytes(), fmt.Sprintf("%s.pdf", invoiceNumber), nil
}
