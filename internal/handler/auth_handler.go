package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/evalhub/evalhub-backend/internal/middleware"
	"github.com/evalhub/evalhub-backend/internal/model"
	"github.com/evalhub/evalhub-backend/internal/response"
	"github.com/evalhub/evalhub-backend/internal/service"
	"github.com/evalhub/evalhub-backend/internal/validator"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
	userService *service.UserService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService, userService *service.UserService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
	}
}

// Register godoc
// POST /api/v1/auth/register
// Creates an account with the chosen platform role.
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"user": user})
}

// Login godoc
// POST /api/v1/auth/login
// Validates email + password. Examinee logins are rejected while a session
// is active on another device.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrSessionAlreadyActive) {
			response.Fail(c, http.StatusConflict, response.ErrSessionActive)
			return
		}
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	response.Success(c, http.StatusOK, model.LoginResponse{Token: token, User: *user})
}

// Me godoc
// GET /api/v1/auth/me
// Returns the profile of the authenticated account.
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// Logout godoc
// POST /api/v1/auth/logout
// Releases the examinee device binding so a new login is possible.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if err := h.authService.ResetExamineeSession(c.Request.Context(), claims.UserID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}
