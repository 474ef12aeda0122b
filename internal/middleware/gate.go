package middleware

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/faxingberling1/internal-crm-sub001/internal/config"
	"github.com/faxingberling1/internal-crm-sub001/internal/database"
	"github.com/faxingberling1/internal-crm-sub001/internal/models"
	"github.com/faxingberling1/internal-crm-sub001/internal/util"
)

// officeSubnetRange is shown to blocked callers so they know what the
// gate expects.
const officeSubnetRange = "192.168.18.1-192.168.18.100"

// AdmissionGate restricts non-admin access to the office network and
// office hours. Runs after AuthRequired. Admins bypass everything;
// a disabled security config admits everyone. Denials are logged to
// access_logs for debugging, the log is not a security control.
func AdmissionGate(db *gorm.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			// fail closed, AuthRequired should have rejected already
			util.ErrorData(c, http.StatusUnauthorized, util.CodeAuth,
				"not logged in", gin.H{"redirect": "/login"})
			c.Abort()
			return
		}

		if !user.IsApproved {
			util.ErrorData(c, http.StatusUnauthorized, util.CodeAuth,
				"account pending approval", gin.H{"redirect": "/login", "pending": true})
			c.Abort()
			return
		}

		if user.Role == models.RoleAdmin {
			c.Next()
			return
		}

		sec, err := database.GetOrInitSecurityConfig(db, cfg.Office)
		if err != nil {
			// fail closed on a broken config read
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr,
				"security config unavailable")
			c.Abort()
			return
		}

		if !sec.SecurityEnabled {
			c.Next()
			return
		}

		ip := util.NormalizeIP(forwardedIP(c))
		if !util.IsAuthorizedIP(ip, sec.OfficeIP) {
			requiredRange := officeSubnetRange
			if sec.OfficeIP != "" {
				requiredRange = sec.OfficeIP + " or " + officeSubnetRange
			}
			deny(c, db, user, ip, "ip",
				fmt.Sprintf("blocked ip %s, expected %s", ip, requiredRange),
				gin.H{
					"reason":         "ip",
					"your_ip":        ip,
					"required_range": requiredRange,
				})
			return
		}

		if !util.IsWithinOfficeHours(time.Now(), sec.OfficeHoursStart, sec.OfficeHoursEnd,
			cfg.Office.UTCOffsetHours) {
			deny(c, db, user, ip, "time",
				fmt.Sprintf("outside office hours %s-%s", sec.OfficeHoursStart, sec.OfficeHoursEnd),
				gin.H{
					"reason": "time",
					"window": sec.OfficeHoursStart + "-" + sec.OfficeHoursEnd,
				})
			return
		}

		c.Next()
	}
}

func deny(c *gin.Context, db *gorm.DB, user *models.User, ip, reason, detail string, data gin.H) {
	log.Printf("gate: denied user %d (%s): %s", user.ID, user.Email, detail)
	entry := models.AccessLog{
		UserID: &user.ID,
		Path:   c.Request.URL.Path,
		Method: c.Request.Method,
		IP:     ip,
		Reason: reason,
		Detail: detail,
	}
	if err := db.Create(&entry).Error; err != nil {
		log.Printf("gate: write access log: %v", err)
	}

	util.ErrorData(c, http.StatusForbidden, util.CodeForbidden, "access denied", data)
	c.Abort()
}

// forwardedIP returns the first entry of the X-Forwarded-For list, or
// empty when the header is absent (NormalizeIP turns that into the
// trusted loopback default).
func forwardedIP(c *gin.Context) string {
	fwd := c.GetHeader("X-Forwarded-For")
	if fwd == "" {
		return ""
	}
	parts := strings.Split(fwd, ",")
	return strings.TrimSpace(parts[0])
}
