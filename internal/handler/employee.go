package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/faxingberling1/internal-crm-sub001/internal/middleware"
	"github.com/faxingberling1/internal-crm-sub001/internal/models"
	"github.com/faxingberling1/internal-crm-sub001/internal/util"
)

// EmployeeHandler serves the employee directory. Listing and schedule
// updates are admin-only; a user may read their own record.
type EmployeeHandler struct {
	DB *gorm.DB
}

func NewEmployeeHandler(db *gorm.DB) *EmployeeHandler {
	return &EmployeeHandler{DB: db}
}

func (h *EmployeeHandler) List(c *gin.Context) {
	var employees []models.Employee
	if err := h.DB.Order("name ASC").Find(&employees).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query employees failed")
		return
	}

	items := make([]gin.H, 0, len(employees))
	for i := range employees {
		items = append(items, employeeResp(&employees[i]))
	}
	util.Success(c, util.Response{"employees": items})
}

func (h *EmployeeHandler) Get(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid employee id")
		return
	}

	var emp models.Employee
	if err := h.DB.First(&emp, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "employee not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query employee failed")
		}
		return
	}

	if user.Role != models.RoleAdmin {
		if emp.UserID == nil || *emp.UserID != user.ID {
			util.Error(c, http.StatusForbidden, util.CodeForbidden, "forbidden")
			return
		}
	}

	util.Success(c, util.Response{"employee": employeeResp(&emp)})
}

type updateEmployeeReq struct {
	Name       *string `json:"name"`
	ShiftStart *string `json:"shift_start"`
	ShiftEnd   *string `json:"shift_end"`
}

// Update edits name and shift-schedule metadata. Admin only.
func (h *EmployeeHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid employee id")
		return
	}

	var req updateEmployeeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}
	if !validHHMM(req.ShiftStart) || !validHHMM(req.ShiftEnd) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "shift times must be HH:mm")
		return
	}

	var emp models.Employee
	if err := h.DB.First(&emp, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "employee not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query employee failed")
		}
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.ShiftStart != nil {
		updates["shift_start"] = *req.ShiftStart
	}
	if req.ShiftEnd != nil {
		updates["shift_end"] = *req.ShiftEnd
	}

	if len(updates) > 0 {
		if err := h.DB.Model(&emp).Updates(updates).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "update employee failed")
			return
		}
	}

	util.Success(c, util.Response{"employee": employeeResp(&emp)})
}

func employeeResp(emp *models.Employee) gin.H {
	return gin.H{
		"id":          emp.ID,
		"name":        emp.Name,
		"email":       emp.Email,
		"user_id":     emp.UserID,
		"shift_start": emp.ShiftStart,
		"shift_end":   emp.ShiftEnd,
	}
}
