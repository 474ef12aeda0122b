package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/faxingberling1/internal-crm-sub001/internal/config"
	"github.com/faxingberling1/internal-crm-sub001/internal/handler"
	"github.com/faxingberling1/internal-crm-sub001/internal/middleware"
	"github.com/faxingberling1/internal-crm-sub001/internal/notify"
	"github.com/faxingberling1/internal-crm-sub001/internal/shift"
	"github.com/faxingberling1/internal-crm-sub001/internal/util"
)

// SetupRouter configures the Gin engine and all routes. Auth endpoints,
// the security-config read and static assets are allow-listed; every
// other route sits behind the auth middleware and the admission gate.
func SetupRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.Static("/static", "./web/static")

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	notifier := notify.NewService(db)
	ledger := shift.NewLedger(db, notifier)
	stats := shift.NewStats(db, cfg.Office.UTCOffsetHours)

	authHandler := handler.NewAuthHandler(db, cfg)
	shiftHandler := handler.NewShiftHandler(db, ledger, stats, cfg.App.PageSize)
	securityHandler := handler.NewSecurityHandler(db, cfg)
	adminHandler := handler.NewAdminHandler(db, notifier)
	employeeHandler := handler.NewEmployeeHandler(db)
	notificationHandler := handler.NewNotificationHandler(db, cfg.App.PageSize)
	exportHandler := handler.NewExportHandler(db)

	api := r.Group("/api")

	// allow-listed: no session, no gate
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/security-config", securityHandler.Get)

	// authenticated but not gated, so logout works from anywhere
	authed := api.Group("")
	authed.Use(middleware.AuthRequired(cfg.JWT.Secret, db))
	authed.POST("/auth/logout", authHandler.Logout)

	// everything else passes the admission gate
	protected := api.Group("")
	protected.Use(
		middleware.AuthRequired(cfg.JWT.Secret, db),
		middleware.AdmissionGate(db, cfg),
	)

	protected.GET("/me", func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		if user == nil {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
			return
		}
		util.Success(c, util.Response{
			"user": gin.H{
				"id":          user.ID,
				"email":       user.Email,
				"name":        user.Name,
				"role":        user.Role,
				"is_approved": user.IsApproved,
			},
		})
	})

	protected.POST("/shifts/clock-in", shiftHandler.ClockIn)
	protected.POST("/shifts/clock-out", shiftHandler.ClockOut)
	protected.POST("/shifts/break/start", shiftHandler.StartBreak)
	protected.POST("/shifts/break/end", shiftHandler.EndBreak)
	protected.GET("/shifts/current", shiftHandler.Current)
	protected.GET("/shifts", shiftHandler.List)
	protected.GET("/shifts/stats", shiftHandler.StatsSummary)

	protected.GET("/employees/:id", employeeHandler.Get)

	protected.GET("/notifications", notificationHandler.List)
	protected.POST("/notifications/:id/read", notificationHandler.MarkRead)

	admin := protected.Group("")
	admin.Use(middleware.RequireAdmin())

	admin.PUT("/security-config", securityHandler.Update)

	admin.GET("/admin/users/pending", adminHandler.ListPending)
	admin.POST("/admin/users/:id/approve", adminHandler.Approve)
	admin.POST("/admin/users/:id/reject", adminHandler.Reject)
	admin.POST("/admin/employees/sync", adminHandler.SyncEmployees)

	admin.GET("/employees", employeeHandler.List)
	admin.PUT("/employees/:id", employeeHandler.Update)

	admin.GET("/export/attendance.csv", exportHandler.ExportCSV)
	admin.GET("/export/attendance.xlsx", exportHandler.ExportXLSX)

	return r
}
