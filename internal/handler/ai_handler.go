package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/evalhub/evalhub-backend/internal/middleware"
	"github.com/evalhub/evalhub-backend/internal/model"
	"github.com/evalhub/evalhub-backend/internal/response"
	"github.com/evalhub/evalhub-backend/internal/service"
	"github.com/evalhub/evalhub-backend/internal/validator"
)

// AIHandler handles AI-assisted authoring and reporting endpoints.
type AIHandler struct {
	aiService     *service.AIService
	resultService *service.ResultService
	examService   *service.ExamService
}

// NewAIHandler creates a new AIHandler.
func NewAIHandler(aiService *service.AIService, resultService *service.ResultService, examService *service.ExamService) *AIHandler {
	return &AIHandler{
		aiService:     aiService,
		resultService: resultService,
		examService:   examService,
	}
}

// SuggestQuestionsRequest is the payload for AI question suggestions.
type SuggestQuestionsRequest struct {
	Topic      string           `json:"topic" binding:"required,min=2,max=200"`
	Difficulty model.Difficulty `json:"difficulty" binding:"required,oneof=Easy Medium Hard"`
	Count      int              `json:"count" binding:"omitempty,min=1,max=10"`
}

// SuggestQuestions godoc
// POST /api/v1/ai/suggest-questions
// Drafts questions for a topic. Suggestions are returned for review, never
// saved directly to the bank.
func (h *AIHandler) SuggestQuestions(c *gin.Context) {
	if !h.aiService.Enabled() {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrAIDisabled)
		return
	}

	var req SuggestQuestionsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	suggestions, err := h.aiService.SuggestQuestions(c.Request.Context(), req.Topic, req.Difficulty, req.Count)
	if err != nil {
		response.Fail(c, http.StatusBadGateway, response.ErrAIUnavailable)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"suggestions": suggestions})
}

// GenerateReport godoc
// POST /api/v1/results/:id/report
// Generates a narrative report for a persisted result. Owner-scoped.
func (h *AIHandler) GenerateReport(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if !h.aiService.Enabled() {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrAIDisabled)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	result, err := h.resultService.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if !h.ownsResultExam(c, claims, result.ExamID) {
		response.Fail(c, http.StatusForbidden, response.ErrNotOwner)
		return
	}

	report, err := h.aiService.GenerateReport(c.Request.Context(), result)
	if err != nil {
		response.Fail(c, http.StatusBadGateway, response.ErrAIUnavailable)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"report": report})
}

func (h *AIHandler) ownsResultExam(c *gin.Context, claims *service.Claims, examID uuid.UUID) bool {
	if claims.Role == model.RoleAdmin {
		return true
	}
	exam, err := h.examService.GetByID(c.Request.Context(), examID)
	if err != nil {
		return false
	}
	return exam.OwnerID == claims.UserID
}
