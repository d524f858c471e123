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
)

// AnalyticsHandler handles dashboard and per-exam reporting endpoints.
type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
	examService      *service.ExamService
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(analyticsService *service.AnalyticsService, examService *service.ExamService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		examService:      examService,
	}
}

// Dashboard godoc
// GET /api/v1/dashboard
// Returns summary counts and recent activity for the caller's scope.
// Admins get the platform-wide view.
func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var ownerID *uuid.UUID
	if claims.Role != model.RoleAdmin {
		ownerID = &claims.UserID
	}

	data, err := h.analyticsService.GetDashboard(c.Request.Context(), ownerID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, data)
}

// ExamAnalytics godoc
// GET /api/v1/exams/:exam_id/analytics
// Returns attempt stats, score distribution and proctoring-event breakdown
// for a single exam. Owner-scoped.
func (h *AnalyticsHandler) ExamAnalytics(c *gin.Context) {
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

	exam, err := h.examService.GetByID(c.Request.Context(), examID)
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

	analytics, err := h.analyticsService.GetExamAnalytics(c.Request.Context(), examID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, analytics)
}
