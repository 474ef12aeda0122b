package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/faxingberling1/internal-crm-sub001/internal/models"
	"github.com/faxingberling1/internal-crm-sub001/internal/util"
)

// AuthRequired validates the bearer token, checks the session has not
// been revoked by logout, and puts the current user into the context.
func AuthRequired(jwtSecret string, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenStr string

		// 1) Header: Authorization: Bearer xxx
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				tokenStr = parts[1]
			}
		}

		// 2) query parameter ?token=xxx (downloads cannot set headers)
		if tokenStr == "" {
			tokenStr = c.Query("token")
		}

		// 3) cookie
		if tokenStr == "" {
			if cookie, err := c.Cookie("crm_token"); err == nil {
				tokenStr = cookie
			}
		}

		if tokenStr == "" {
			util.ErrorData(c, http.StatusUnauthorized, util.CodeAuth,
				"not logged in", gin.H{"redirect": "/login"})
			c.Abort()
			return
		}

		claims, err := util.ParseToken(jwtSecret, tokenStr)
		if err != nil || claims.ExpiresAt == nil || claims.ExpiresAt.Before(time.Now()) {
			util.ErrorData(c, http.StatusUnauthorized, util.CodeAuth,
				"session expired, please log in again", gin.H{"redirect": "/login"})
			c.Abort()
			return
		}

		// logout revokes the session row behind the token's jti
		var session models.Session
		if err := db.First(&session, "id = ?", claims.ID).Error; err != nil ||
			session.Revoked || session.ExpiresAt.Before(time.Now()) {
			util.ErrorData(c, http.StatusUnauthorized, util.CodeAuth,
				"session expired, please log in again", gin.H{"redirect": "/login"})
			c.Abort()
			return
		}

		var user models.User
		if err := db.First(&user, claims.UserID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				util.Error(c, http.StatusUnauthorized, util.CodeAuth, "user not found")
			} else {
				util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query user failed")
			}
			c.Abort()
			return
		}

		c.Set("currentUser", &user)
		c.Set("claims", claims)
		c.Next()
	}
}

// CurrentUser pulls the authenticated user out of the gin context.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get("currentUser")
	if !ok {
		return nil
	}
	user, ok := v.(*models.User)
	if !ok {
		return nil
	}
	return user
}
