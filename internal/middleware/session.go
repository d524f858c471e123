package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/evalhub/evalhub-backend/internal/model"
	"github.com/evalhub/evalhub-backend/internal/response"
	"github.com/evalhub/evalhub-backend/internal/service"
)

// CheckSingleDeviceSession validates the JWT's JTI against the active session
// in Redis. If the JTI doesn't match, the request is rejected (the session was
// reset or taken over on another device).
func CheckSingleDeviceSession(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		// Only enforced for examinee tokens.
		if claims.Role != model.RoleExaminee {
			c.Next()
			return
		}

		if err := authService.ValidateExamineeSession(c.Request.Context(), claims.UserID, claims.ID); err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrSessionInvalidated)
			return
		}

		c.Next()
	}
}
