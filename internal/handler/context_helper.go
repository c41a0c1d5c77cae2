package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/faculty-erp-api/internal/middleware"
	"github.com/noah-isme/faculty-erp-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// employeeScope resolves which employee's records a request may read. Admins
// may target any employee through the employee_id query parameter; everyone
// else is scoped to their own roster entry.
func employeeScope(c *gin.Context, claims *models.JWTClaims) string {
	if claims.Role == models.RoleAdmin {
		if id := strings.TrimSpace(c.Query("employee_id")); id != "" {
			return id
		}
	}
	return claims.EmployeeID
}
