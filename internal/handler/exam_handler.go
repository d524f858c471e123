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

// ExamHandler handles exam authoring endpoints.
type ExamHandler struct {
	examService *service.ExamService
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(examService *service.ExamService) *ExamHandler {
	return &ExamHandler{examService: examService}
}

// actorOwnerID resolves the ownership scope for the caller. Admins operate
// on every exam; authors only on their own.
func actorOwnerID(claims *service.Claims) uuid.UUID {
	if claims.Role == model.RoleAdmin {
		return uuid.Nil
	}
	return claims.UserID
}

// List godoc
// GET /api/v1/exams?page=&per_page=
// Lists exams with pagination. Admins see all; other authors see their own.
func (h *ExamHandler) List(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	page := queryInt(c, "page", 1)
	perPage := queryInt(c, "per_page", 10)

	var owner *uuid.UUID
	if claims.Role != model.RoleAdmin {
		owner = &claims.UserID
	}

	exams, pagination, err := h.examService.ListByOwner(c.Request.Context(), owner, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, exams, pagination)
}

// Get godoc
// GET /api/v1/exams/:exam_id
// Returns an exam with its full ordered question list, reference answers
// included. Authoring surface only; examinees read the cached payload.
func (h *ExamHandler) Get(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	exam, err := h.examService.GetWithQuestions(c.Request.Context(), examID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if claims.Role != model.RoleAdmin && exam.OwnerID != claims.UserID {
		response.Fail(c, http.StatusForbidden, response.ErrNotOwner)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// Create godoc
// POST /api/v1/exams
// Creates a new exam in DRAFT status owned by the caller.
func (h *ExamHandler) Create(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam := &model.Exam{
		OwnerID:         claims.UserID,
		Title:           req.Title,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		Difficulty:      req.Difficulty,
		AvailableFrom:   req.AvailableFrom,
		AvailableUntil:  req.AvailableUntil,
	}

	if err := h.examService.Create(c.Request.Context(), exam); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"exam": exam})
}

// Update godoc
// PUT /api/v1/exams/:exam_id
// Edits a draft exam. Published exams are immutable.
func (h *ExamHandler) Update(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.examService.GetByID(c.Request.Context(), examID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if req.Title != "" {
		exam.Title = req.Title
	}
	if req.Description != nil {
		exam.Description = *req.Description
	}
	if req.DurationMinutes > 0 {
		exam.DurationMinutes = req.DurationMinutes
	}
	if req.Difficulty != "" {
		exam.Difficulty = req.Difficulty
	}
	if req.AvailableFrom != nil {
		exam.AvailableFrom = req.AvailableFrom
	}
	if req.AvailableUntil != nil {
		exam.AvailableUntil = req.AvailableUntil
	}

	if err := h.examService.Update(c.Request.Context(), actorOwnerID(claims), exam); err != nil {
		h.failExamMutation(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// SetQuestions godoc
// PUT /api/v1/exams/:exam_id/questions
// Replaces the ordered question list of a draft exam.
func (h *ExamHandler) SetQuestions(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SetExamQuestionsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.examService.SetQuestions(c.Request.Context(), examID, actorOwnerID(claims), req.QuestionIDs); err != nil {
		h.failExamMutation(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// Publish godoc
// POST /api/v1/exams/:exam_id/publish
// Moves DRAFT -> PUBLISHED and warms the Redis payload + answer key.
func (h *ExamHandler) Publish(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.examService.Publish(c.Request.Context(), examID, actorOwnerID(claims)); err != nil {
		h.failExamMutation(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// Archive godoc
// POST /api/v1/exams/:exam_id/archive
// Moves PUBLISHED -> ARCHIVED and evicts the fast-lane cache.
func (h *ExamHandler) Archive(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.examService.Archive(c.Request.Context(), examID, actorOwnerID(claims)); err != nil {
		h.failExamMutation(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// Delete godoc
// DELETE /api/v1/exams/:exam_id
// Removes a draft exam.
func (h *ExamHandler) Delete(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.examService.Delete(c.Request.Context(), examID, actorOwnerID(claims)); err != nil {
		h.failExamMutation(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

func (h *ExamHandler) failExamMutation(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNotExamOwner):
		response.Fail(c, http.StatusForbidden, response.ErrNotOwner)
	case errors.Is(err, service.ErrExamNotDraft):
		response.Fail(c, http.StatusConflict, response.ErrExamNotDraft)
	case errors.Is(err, service.ErrExamNotPublished):
		response.Fail(c, http.StatusConflict, response.ErrExamNotPublished)
	case errors.Is(err, service.ErrNoQuestions):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrNoQuestions)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
