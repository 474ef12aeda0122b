package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/faxingberling1/internal-crm-sub001/internal/config"
	"github.com/faxingberling1/internal-crm-sub001/internal/database"
	"github.com/faxingberling1/internal-crm-sub001/internal/middleware"
	"github.com/faxingberling1/internal-crm-sub001/internal/models"
	"github.com/faxingberling1/internal-crm-sub001/internal/util"
)

// SecurityHandler reads and updates the office access policy.
type SecurityHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewSecurityHandler(db *gorm.DB, cfg *config.Config) *SecurityHandler {
	return &SecurityHandler{DB: db, Cfg: cfg}
}

// Get returns the singleton config, creating it with defaults on first
// read. The route is allow-listed so clients can explain a gate denial.
func (h *SecurityHandler) Get(c *gin.Context) {
	sec, err := database.GetOrInitSecurityConfig(h.DB, h.Cfg.Office)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr,
			"load security config failed")
		return
	}

	util.Success(c, util.Response{
		"security_config": securityResp(sec),
	})
}

type updateSecurityReq struct {
	OfficeIP         *string `json:"office_ip"`
	OfficeHoursStart *string `json:"office_hours_start"`
	OfficeHoursEnd   *string `json:"office_hours_end"`
	SecurityEnabled  *bool   `json:"is_security_enabled"`
}

// Update applies a partial update; admin only (enforced by the route).
func (h *SecurityHandler) Update(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil || user.Role != models.RoleAdmin {
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "admin only")
		return
	}

	var req updateSecurityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}

	if !validHHMM(req.OfficeHoursStart) || !validHHMM(req.OfficeHoursEnd) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam,
			"office hours must be HH:mm")
		return
	}

	sec, err := database.GetOrInitSecurityConfig(h.DB, h.Cfg.Office)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr,
			"load security config failed")
		return
	}

	updates := map[string]interface{}{}
	if req.OfficeIP != nil {
		updates["office_ip"] = *req.OfficeIP
	}
	if req.OfficeHoursStart != nil {
		updates["office_hours_start"] = *req.OfficeHoursStart
	}
	if req.OfficeHoursEnd != nil {
		updates["office_hours_end"] = *req.OfficeHoursEnd
	}
	if req.SecurityEnabled != nil {
		updates["security_enabled"] = *req.SecurityEnabled
	}

	if len(updates) > 0 {
		if err := h.DB.Model(sec).Updates(updates).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr,
				"update security config failed")
			return
		}
	}

	util.Success(c, util.Response{
		"security_config": securityResp(sec),
	})
}

func securityResp(sec *models.SecurityConfig) gin.H {
	return gin.H{
		"office_ip":           sec.OfficeIP,
		"office_hours_start":  sec.OfficeHoursStart,
		"office_hours_end":    sec.OfficeHoursEnd,
		"is_security_enabled": sec.SecurityEnabled,
	}
}

// validHHMM accepts nil (field untouched), empty (unbounded) or "HH:mm".
func validHHMM(s *string) bool {
	if s == nil || *s == "" {
		return true
	}
	v := *s
	if len(v) != 5 || v[2] != ':' {
		return false
	}
	for _, i := range []int{0, 1, 3, 4} {
		if v[i] < '0' || v[i] > '9' {
			return false
		}
	}
	hh := (int(v[0]-'0'))*10 + int(v[1]-'0')
	mm := (int(v[3]-'0'))*10 + int(v[4]-'0')
	return hh <= 23 && mm <= 59
}
