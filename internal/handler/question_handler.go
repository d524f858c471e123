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

// QuestionHandler handles question bank endpoints.
type QuestionHandler struct {
	questionService *service.QuestionService
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// List godoc
// GET /api/v1/questions?category=&page=&per_page=
// Lists the caller's questions with pagination.
func (h *QuestionHandler) List(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	page := queryInt(c, "page", 1)
	perPage := queryInt(c, "per_page", 10)
	category := c.Query("category")

	questions, pagination, err := h.questionService.ListByOwner(c.Request.Context(), claims.UserID, category, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, questions, pagination)
}

// Get godoc
// GET /api/v1/questions/:id
func (h *QuestionHandler) Get(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	question, err := h.questionService.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if claims.Role != model.RoleAdmin && question.OwnerID != claims.UserID {
		response.Fail(c, http.StatusForbidden, response.ErrNotOwner)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"question": question})
}

// Create godoc
// POST /api/v1/questions
// Adds a question to the caller's bank in draft review status.
func (h *QuestionHandler) Create(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question := &model.Question{
		OwnerID:     claims.UserID,
		Text:        req.Text,
		Type:        req.Type,
		Options:     req.Options,
		Prompts:     req.Prompts,
		Correct:     req.Correct,
		Points:      req.Points,
		Tags:        req.Tags,
		Category:    req.Category,
		Subcategory: req.Subcategory,
	}

	if err := h.questionService.Create(c.Request.Context(), question); err != nil {
		h.failQuestionMutation(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"question": question})
}

// Update godoc
// PUT /api/v1/questions/:id
// Edits a question; any edit resets review status to draft.
func (h *QuestionHandler) Update(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question, err := h.questionService.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if req.Text != "" {
		question.Text = req.Text
	}
	if req.Type != "" {
		question.Type = req.Type
	}
	if req.Options != nil {
		question.Options = req.Options
	}
	if req.Prompts != nil {
		question.Prompts = req.Prompts
	}
	if req.Correct != nil {
		question.Correct = *req.Correct
	}
	if req.Points != nil {
		question.Points = *req.Points
	}
	if req.Tags != nil {
		question.Tags = req.Tags
	}
	if req.Category != nil {
		question.Category = *req.Category
	}
	if req.Subcategory != nil {
		question.Subcategory = *req.Subcategory
	}

	ownerScope := claims.UserID
	if claims.Role == model.RoleAdmin {
		ownerScope = uuid.Nil
	}
	if err := h.questionService.Update(c.Request.Context(), ownerScope, question); err != nil {
		h.failQuestionMutation(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"question": question})
}

// Review godoc
// POST /api/v1/questions/:id/review
// Moves a question through the review workflow.
func (h *QuestionHandler) Review(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.ReviewQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.questionService.Review(c.Request.Context(), id, req.Status); err != nil {
		h.failQuestionMutation(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// Delete godoc
// DELETE /api/v1/questions/:id
func (h *QuestionHandler) Delete(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	ownerScope := claims.UserID
	if claims.Role == model.RoleAdmin {
		ownerScope = uuid.Nil
	}
	if err := h.questionService.Delete(c.Request.Context(), id, ownerScope); err != nil {
		h.failQuestionMutation(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

func (h *QuestionHandler) failQuestionMutation(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNotQuestionOwner):
		response.Fail(c, http.StatusForbidden, response.ErrNotOwner)
	case errors.Is(err, service.ErrQuestionShape):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrQuestionInvalid)
	case errors.Is(err, service.ErrInvalidReviewChange):
		response.Fail(c, http.StatusConflict, response.ErrActionForbidden)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
