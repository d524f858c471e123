package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/evalhub/evalhub-backend/internal/model"
	"github.com/evalhub/evalhub-backend/internal/response"
)

// RequireRole checks that the JWT carries exactly the given role.
func RequireRole(role model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		if claims.Role != role {
			response.AbortFail(c, http.StatusForbidden, response.ErrPermissionDenied)
			return
		}
		c.Next()
	}
}

// RequireAnyRole checks that the JWT carries at least one of the given roles.
func RequireAnyRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		for _, role := range roles {
			if claims.Role == role {
				c.Next()
				return
			}
		}

		response.AbortFail(c, http.StatusForbidden, response.ErrPermissionDenied)
	}
}

// RequireAuthorRole admits every role allowed to own exams and questions.
func RequireAuthorRole() gin.HandlerFunc {
	return RequireAnyRole(model.AuthorRoles...)
}
