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

// ResultHandler handles persisted exam result endpoints.
type ResultHandler struct {
	resultService *service.ResultService
	examService   *service.ExamService
}

// NewResultHandler creates a new ResultHandler.
func NewResultHandler(resultService *service.ResultService, examService *service.ExamService) *ResultHandler {
	return &ResultHandler{
		resultService: resultService,
		examService:   examService,
	}
}

// Get godoc
// GET /api/v1/results/:id
// Returns a single result. Examinees only see their own; authors only
// results for exams they own.
func (h *ResultHandler) Get(c *gin.Context) {
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

	result, err := h.resultService.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if !h.canViewResult(c, claims, result) {
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// ListByExam godoc
// GET /api/v1/exams/:exam_id/results?page=&per_page=
// Lists results for an exam. Authoring surface; owner-scoped.
func (h *ResultHandler) ListByExam(c *gin.Context) {
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

	if !h.ownsExam(c, claims, examID) {
		response.Fail(c, http.StatusForbidden, response.ErrNotOwner)
		return
	}

	page := queryInt(c, "page", 1)
	perPage := queryInt(c, "per_page", 10)

	results, pagination, err := h.resultService.ListByExam(c.Request.Context(), examID, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, results, pagination)
}

// ListMine godoc
// GET /api/v1/portal/results
// Lists the calling examinee's own results.
func (h *ResultHandler) ListMine(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	results, err := h.resultService.ListByUser(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"results": results})
}

func (h *ResultHandler) canViewResult(c *gin.Context, claims *service.Claims, result *model.ExamResult) bool {
	if claims.Role == model.RoleAdmin {
		return true
	}
	if claims.Role == model.RoleExaminee {
		return result.UserID == claims.UserID
	}
	return h.ownsExam(c, claims, result.ExamID)
}

func (h *ResultHandler) ownsExam(c *gin.Context, claims *service.Claims, examID uuid.UUID) bool {
	if claims.Role == model.RoleAdmin {
		return true
	}
	exam, err := h.examService.GetByID(c.Request.Context(), examID)
	if err != nil {
		return false
	}
	return exam.OwnerID == claims.UserID
}
