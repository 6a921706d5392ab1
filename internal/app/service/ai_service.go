package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/smartcart/smartcart-backend/config"
	"github.com/smartcart/smartcart-backend/internal/app/model"
	"github.com/smartcart/smartcart-backend/internal/app/repository"
	"github.com/smartcart/smartcart-backend/pkg/logger"
)

// Fallback replies when the language model is unreachable.
const (
	chatUnavailableMessage        = "I'm sorry, I'm having trouble answering right now. Please try again in a moment."
	interactionUnavailableMessage = "The interaction check is temporarily unavailable. Please consult a pharmacist before combining medicines."
)

// InteractionResult is the outcome of screening cart products for
// medical interactions.
type InteractionResult struct {
	Status       model.InteractionStatus `json:"status"`
	Message      string                  `json:"message"`
	Interactions []string                `json:"interactions,omitempty"`
}

type AIService interface {
	// Chat answers a free-form shopping or health question. Failures
	// degrade to a fixed apology instead of an error.
	Chat(ctx context.Context, question string) string
	// CheckInteractions screens the pharmacy products among the given
	// IDs. Zero or one pharmacy product is always safe.
	CheckInteractions(ctx context.Context, userID uint, productIDs []uint) (*InteractionResult, error)
}

type aiService struct {
	cfg                  config.GeminiConfig
	productRepo          repository.ProductRepository
	interactionCheckRepo repository.InteractionCheckRepository
	httpClient           *http.Client
}

func NewAIService(
	cfg config.GeminiConfig,
	productRepo repository.ProductRepository,
	interactionCheckRepo repository.InteractionCheckRepository,
) AIService {
	return &aiService{
		cfg:                  cfg,
		productRepo:          productRepo,
		interactionCheckRepo: interactionCheckRepo,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// Gemini generateContent wire format.
type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (s *aiService) Chat(ctx context.Context, question string) string {
	prompt := "You are a helpful assistant for an online grocery and pharmacy store. " +
		"Answer the customer's question briefly and practically. " +
		"For medical questions, remind the customer to consult a pharmacist or doctor for personal advice.\n\n" +
		"Customer: " + question

	answer, err := s.generate(ctx, prompt)
	if err != nil {
		logger.Warn("Chat generation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return chatUnavailableMessage
	}
	return answer
}

func (s *aiService) CheckInteractions(ctx context.Context, userID uint, productIDs []uint) (*InteractionResult, error) {
	products, err := s.productRepo.FindByIDs(productIDs)
	if err != nil {
		return nil, err
	}

	var pharmacyProducts []model.Product
	for _, product := range products {
		if product.Category.IsPharmacy {
			pharmacyProducts = append(pharmacyProducts, product)
		}
	}

	var result *InteractionResult
	if len(pharmacyProducts) <= 1 {
		result = &InteractionResult{
			Status:  model.InteractionSafe,
			Message: "No interactions to check: your cart contains at most one pharmacy product.",
		}
	} else {
		result = s.screenProducts(ctx, pharmacyProducts)
	}

	s.persistCheck(userID, pharmacyProducts, result)
	return result, nil
}

func (s *aiService) screenProducts(ctx context.Context, products []model.Product) *InteractionResult {
	var sb strings.Builder
	sb.WriteString("You are a pharmacist's assistant. The following over-the-counter products are in one customer's basket:\n")
	for _, product := range products {
		sb.WriteString("- " + product.Name)
		if product.MedicalWarnings != "" {
			sb.WriteString(" (warnings: " + product.MedicalWarnings + ")")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\nList any known interactions between these products, one per line starting with '- '. ")
	sb.WriteString("Start your reply with exactly one word on its own line: SAFE, CAUTION or WARNING.")

	answer, err := s.generate(ctx, sb.String())
	if err != nil {
		logger.Warn("Interaction screening failed", map[string]interface{}{
			"error":    err.Error(),
			"products": len(products),
		})
		return &InteractionResult{
			Status:  model.InteractionError,
			Message: interactionUnavailableMessage,
		}
	}

	return parseInteractionAnswer(answer)
}

func parseInteractionAnswer(answer string) *InteractionResult {
	result := &InteractionResult{Status: model.InteractionCaution}

	lines := strings.Split(strings.TrimSpace(answer), "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if i == 0 {
			switch strings.ToUpper(line) {
			case "SAFE":
				result.Status = model.InteractionSafe
			case "CAUTION":
				result.Status = model.InteractionCaution
			case "WARNING":
				result.Status = model.InteractionWarning
			}
			continue
		}
		if strings.HasPrefix(line, "- ") {
			result.Interactions = append(result.Interactions, strings.TrimPrefix(line, "- "))
		}
	}

	switch result.Status {
	case model.InteractionSafe:
		result.Message = "No known interactions found between your pharmacy products."
	case model.InteractionWarning:
		result.Message = "Potentially serious interactions were found. Please consult a pharmacist before purchase."
	default:
		result.Message = "Possible interactions were found. Review them below and ask a pharmacist if unsure."
	}
	return result
}

func (s *aiService) persistCheck(userID uint, products []model.Product, result *InteractionResult) {
	if s.interactionCheckRepo == nil {
		return
	}

	ids := make(pq.Int64Array, 0, len(products))
	for _, product := range products {
		ids = append(ids, int64(product.ID))
	}

	check := &model.InteractionCheck{
		UserID:       userID,
		ProductIDs:   ids,
		Status:       result.Status,
		Interactions: pq.StringArray(result.Interactions),
	}
	if err := s.interactionCheckRepo.Create(check); err != nil {
		logger.Error("Failed to record interaction check", err, map[string]interface{}{
			"user_id": userID,
		})
	}
}

func (s *aiService) generate(ctx context.Context, prompt string) (string, error) {
	if s.cfg.APIKey == "" {
		return "", fmt.Errorf("gemini API key is not configured")
	}

	payload, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}

	requestURL := fmt.Sprintf("%s?key=%s", s.cfg.Endpoint, s.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call gemini API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result geminiResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to parse gemini response: %w", err)
	}
	if result.Error != nil {
		return "", fmt.Errorf("gemini API error: %s", result.Error.Message)
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	return strings.TrimSpace(result.Candidates[0].Content.Parts[0].Text), nil
}
