package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smartcart/smartcart-backend/internal/app/service"
	apperrors "github.com/smartcart/smartcart-backend/internal/errors"
	"github.com/smartcart/smartcart-backend/internal/middleware"
)

type AIController struct {
	aiService service.AIService
}

func NewAIController(aiService service.AIService) *AIController {
	return &AIController{aiService: aiService}
}

type ChatRequest struct {
	Question string `json:"question" binding:"required,max=2000"`
}

type InteractionCheckRequest struct {
	ProductIDs []uint `json:"product_ids" binding:"required,min=1"`
}

// Chat answers a free-form shopping or health question
// POST /api/v1/ai/chat
func (ctrl *AIController) Chat(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Question is required")
		return
	}

	answer := ctrl.aiService.Chat(c.Request.Context(), req.Question)

	log.Info("Chat question answered", map[string]interface{}{
		"question_length": len(req.Question),
	})

	c.JSON(http.StatusOK, gin.H{
		"answer": answer,
	})
}

// CheckInteractions screens pharmacy products for interactions
// POST /api/v1/ai/interactions
func (ctrl *AIController) CheckInteractions(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	var req InteractionCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "At least one product ID is required")
		return
	}

	result, err := ctrl.aiService.CheckInteractions(c.Request.Context(), userID, req.ProductIDs)
	if err != nil {
		log.Error("Interaction check failed", err, map[string]interface{}{
			"user_id":     userID,
			"product_ids": req.ProductIDs,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "interaction check")
		return
	}

	log.Info("Interaction check completed", map[string]interface{}{
		"user_id": userID,
		"status":  result.Status,
	})

	c.JSON(http.StatusOK, result)
}
