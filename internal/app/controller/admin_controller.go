package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smartcart/smartcart-backend/internal/app/model"
	"github.com/smartcart/smartcart-backend/internal/app/service"
	apperrors "github.com/smartcart/smartcart-backend/internal/errors"
	"github.com/smartcart/smartcart-backend/internal/middleware"
)

// AdminController serves the back-office endpoints: the dashboard,
// expiry alerts, audit logs and data exports.
type AdminController struct {
	dashboardService service.DashboardService
	expiryService    service.ExpiryService
	auditService     service.AuditService
	exportService    service.ExportService
}

func NewAdminController(
	dashboardService service.DashboardService,
	expiryService service.ExpiryService,
	auditService service.AuditService,
	exportService service.ExportService,
) *AdminController {
	return &AdminController{
		dashboardService: dashboardService,
		expiryService:    expiryService,
		auditService:     auditService,
		exportService:    exportService,
	}
}

type UpdateAlertStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// GetDashboard returns sales and inventory metrics
// GET /api/v1/admin/dashboard
func (ctrl *AdminController) GetDashboard(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	summary, err := ctrl.dashboardService.Summary(time.Now())
	if err != nil {
		log.Error("Failed to build dashboard summary", err, nil)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "dashboard")
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ListExpiryAlerts returns expiry alerts, optionally filtered by status
// GET /api/v1/admin/expiry-alerts
func (ctrl *AdminController) ListExpiryAlerts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var status *model.ExpiryAlertStatus
	if raw := c.Query("status"); raw != "" {
		parsed := model.ExpiryAlertStatus(raw)
		if !model.ExpiryAlertStatusValid(parsed) {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid alert status filter")
			return
		}
		status = &parsed
	}

	alerts, err := ctrl.expiryService.ListAlerts(status)
	if err != nil {
		log.Error("Failed to list expiry alerts", err, nil)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list expiry alerts")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"alerts": alerts,
	})
}

// UpdateExpiryAlert changes an alert's status
// PUT /api/v1/admin/expiry-alerts/:id
func (ctrl *AdminController) UpdateExpiryAlert(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	alertID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateAlertStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Alert status is required")
		return
	}

	alert, err := ctrl.expiryService.UpdateAlertStatus(alertID, model.ExpiryAlertStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExpiryAlertNotFound):
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Expiry alert not found")
		case errors.Is(err, service.ErrInvalidAlertStatus):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid alert status")
		default:
			log.Error("Failed to update expiry alert", err, map[string]interface{}{
				"alert_id": alertID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update expiry alert")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Alert updated",
		"alert":   alert,
	})
}

// RunExpiryScan sweeps the catalog for soon-to-expire products
// POST /api/v1/admin/expiry-alerts/scan
func (ctrl *AdminController) RunExpiryScan(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	created, err := ctrl.expiryService.Scan(time.Now())
	if err != nil {
		log.Error("Expiry scan failed", err, nil)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "expiry scan")
		return
	}

	log.Info("Expiry scan completed via API", map[string]interface{}{
		"created": created,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Expiry scan completed",
		"created": created,
	})
}

// ListAuditLogs returns recent audit entries
// GET /api/v1/admin/audit-logs
func (ctrl *AdminController) ListAuditLogs(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit < 1 || limit > 200 {
		limit = 50
	}

	entries, total, err := ctrl.auditService.ListRecent(limit, (page-1)*limit)
	if err != nil {
		log.Error("Failed to list audit logs", err, nil)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list audit logs")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}

// ExportProducts streams the catalog as an xlsx workbook
// GET /api/v1/admin/export/products
func (ctrl *AdminController) ExportProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	data, filename, err := ctrl.exportService.ExportProducts()
	if err != nil {
		log.Error("Failed to export products", err, nil)
		apperrors.InternalError(c, "Failed to export products")
		return
	}

	log.Info("Product export generated", map[string]interface{}{
		"filename": filename,
		"bytes":    len(data),
	})

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// ExportOrders streams orders as an xlsx workbook
// GET /api/v1/admin/export/orders
func (ctrl *AdminController) ExportOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var status *model.OrderStatus
	if raw := c.Query("status"); raw != "" {
		parsed := model.OrderStatus(raw)
		if !model.OrderStatusValid(parsed) {
			apperrors.BadRequest(c, apperrors.OrderInvalidStatus, "Invalid order status filter")
			return
		}
		status = &parsed
	}

	data, filename, err := ctrl.exportService.ExportOrders(status)
	if err != nil {
		log.Error("Failed to export orders", err, nil)
		apperrors.InternalError(c, "Failed to export orders")
		return
	}

	log.Info("Order export generated", map[string]interface{}{
		"filename": filename,
		"bytes":    len(data),
	})

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
