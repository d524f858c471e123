package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/evalhub/evalhub-backend/internal/middleware"
	"github.com/evalhub/evalhub-backend/internal/response"
	"github.com/evalhub/evalhub-backend/internal/service"
	"github.com/evalhub/evalhub-backend/internal/session"
)

// SessionHandler handles the examinee-facing exam surface: listings, the
// cached exam payload, and the REST side of the live session (start, state,
// submit). The WebSocket stream covers the high-frequency actions.
type SessionHandler struct {
	examService    *service.ExamService
	sessionService *service.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(examService *service.ExamService, sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{
		examService:    examService,
		sessionService: sessionService,
	}
}

// ListAvailable godoc
// GET /api/v1/portal/exams
// Lists published exams whose availability window covers now.
func (h *SessionHandler) ListAvailable(c *gin.Context) {
	exams, err := h.examService.ListAvailable(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exams": exams})
}

// GetPayload godoc
// GET /api/v1/portal/exams/:exam_id
// Serves the exam content from the Redis fast lane. Reference answers are
// stripped at cache-warm time.
func (h *SessionHandler) GetPayload(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	payload, err := h.examService.GetExamPayload(c.Request.Context(), examID)
	if err != nil {
		if errors.Is(err, service.ErrExamNotPublished) {
			response.Fail(c, http.StatusNotFound, response.ErrExamNotPublished)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, payload)
}

// Start godoc
// POST /api/v1/portal/exams/:exam_id/session
// Starts (or re-attaches to) the caller's live session. The countdown begins
// on first start; subsequent calls return the running session.
func (h *SessionHandler) Start(c *gin.Context) {
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

	ctrl, err := h.sessionService.Start(c.Request.Context(), examID, claims.UserID)
	if err != nil {
		h.failSession(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"state":             ctrl.State(),
		"remaining_seconds": ctrl.Remaining(),
	})
}

// State godoc
// GET /api/v1/portal/exams/:exam_id/session
// Returns the live session snapshot: state, remaining seconds, saved answers.
func (h *SessionHandler) State(c *gin.Context) {
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

	state, err := h.sessionService.State(examID, claims.UserID)
	if err != nil {
		h.failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, state)
}

// Submit godoc
// POST /api/v1/portal/exams/:exam_id/session/submit
// REST fallback for submission when the WebSocket is unavailable.
func (h *SessionHandler) Submit(c *gin.Context) {
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

	result, err := h.sessionService.Submit(c.Request.Context(), examID, claims.UserID)
	if err != nil && !errors.Is(err, session.ErrAlreadySubmitted) {
		h.failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

func (h *SessionHandler) failSession(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrSessionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrSessionNotActive)
	case errors.Is(err, service.ErrExamNotPublished):
		response.Fail(c, http.StatusConflict, response.ErrExamNotPublished)
	case errors.Is(err, service.ErrExamNotAvailable):
		response.Fail(c, http.StatusConflict, response.ErrExamNotAvailable)
	case errors.Is(err, session.ErrAlreadySubmitted):
		response.Fail(c, http.StatusConflict, response.ErrAlreadySubmitted)
	case errors.Is(err, session.ErrSubmitInFlight):
		response.Fail(c, http.StatusConflict, response.ErrSubmitInFlight)
	case errors.Is(err, session.ErrNotInProgress), errors.Is(err, session.ErrNotReady):
		response.Fail(c, http.StatusConflict, response.ErrSessionNotActive)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
