package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/faxingberling1/internal-crm-sub001/internal/models"
	"github.com/faxingberling1/internal-crm-sub001/internal/util"
)

// RequireAdmin rejects non-admin principals. Runs after AuthRequired.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || user.Role != models.RoleAdmin {
			util.Error(c, http.StatusForbidden, util.CodeForbidden, "admin only")
			c.Abort()
			return
		}
		c.Next()
	}
}
