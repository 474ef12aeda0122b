package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/faxingberling1/internal-crm-sub001/internal/middleware"
	"github.com/faxingberling1/internal-crm-sub001/internal/models"
	"github.com/faxingberling1/internal-crm-sub001/internal/shift"
	"github.com/faxingberling1/internal-crm-sub001/internal/util"
)

// ShiftHandler exposes the shift state machine and its aggregates.
type ShiftHandler struct {
	DB       *gorm.DB
	Ledger   *shift.Ledger
	Stats    *shift.Stats
	PageSize int
}

func NewShiftHandler(db *gorm.DB, ledger *shift.Ledger, stats *shift.Stats, pageSize int) *ShiftHandler {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &ShiftHandler{DB: db, Ledger: ledger, Stats: stats, PageSize: pageSize}
}

type transitionReq struct {
	EmployeeID uint `json:"employee_id"` // optional, admins may act on anyone
}

// targetEmployee resolves which employee the call is about: an explicit
// employee_id when given, otherwise the caller's own employee row.
func (h *ShiftHandler) targetEmployee(c *gin.Context, user *models.User, explicit uint) (uint, bool) {
	if explicit != 0 {
		return explicit, true
	}
	var emp models.Employee
	if err := h.DB.Where("user_id = ?", user.ID).First(&emp).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound,
				"no employee profile linked to this account")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query employee failed")
		}
		return 0, false
	}
	return emp.ID, true
}

func (h *ShiftHandler) transition(c *gin.Context,
	op func(caller *models.User, employeeID uint) (*models.AttendanceRecord, error)) {

	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	var req transitionReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
			return
		}
	}

	employeeID, ok := h.targetEmployee(c, user, req.EmployeeID)
	if !ok {
		return
	}

	rec, err := op(user, employeeID)
	if err != nil {
		writeShiftError(c, err)
		return
	}

	state, _, err := h.Ledger.State(employeeID)
	if err != nil {
		state = ""
	}
	util.Success(c, util.Response{
		"record": recordResp(rec),
		"state":  state,
	})
}

func (h *ShiftHandler) ClockIn(c *gin.Context)    { h.transition(c, h.Ledger.ClockIn) }
func (h *ShiftHandler) ClockOut(c *gin.Context)   { h.transition(c, h.Ledger.ClockOut) }
func (h *ShiftHandler) StartBreak(c *gin.Context) { h.transition(c, h.Ledger.StartBreak) }
func (h *ShiftHandler) EndBreak(c *gin.Context)   { h.transition(c, h.Ledger.EndBreak) }

// Current reports the employee's presence state and open record, if any.
func (h *ShiftHandler) Current(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	employeeID, ok := h.targetEmployee(c, user, queryUint(c, "employee_id"))
	if !ok {
		return
	}
	if user.Role != models.RoleAdmin {
		if !h.ownsEmployee(c, user, employeeID) {
			return
		}
	}

	state, rec, err := h.Ledger.State(employeeID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query shift failed")
		return
	}

	resp := util.Response{"state": state}
	if rec != nil {
		resp["record"] = recordResp(rec)
	}
	util.Success(c, resp)
}

// List returns the employee's shift history, newest first.
func (h *ShiftHandler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	employeeID, ok := h.targetEmployee(c, user, queryUint(c, "employee_id"))
	if !ok {
		return
	}
	if user.Role != models.RoleAdmin {
		if !h.ownsEmployee(c, user, employeeID) {
			return
		}
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	var total int64
	if err := h.DB.Model(&models.AttendanceRecord{}).
		Where("employee_id = ?", employeeID).
		Count(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query shifts failed")
		return
	}

	var records []models.AttendanceRecord
	if err := h.DB.
		Where("employee_id = ?", employeeID).
		Order("check_in DESC").
		Limit(h.PageSize).
		Offset((page - 1) * h.PageSize).
		Find(&records).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query shifts failed")
		return
	}

	items := make([]gin.H, 0, len(records))
	for i := range records {
		items = append(items, recordResp(&records[i]))
	}
	util.Success(c, util.Response{
		"records":   items,
		"total":     total,
		"page":      page,
		"page_size": h.PageSize,
	})
}

// StatsSummary returns today/weekly/monthly worked hours.
func (h *ShiftHandler) StatsSummary(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	employeeID, ok := h.targetEmployee(c, user, queryUint(c, "employee_id"))
	if !ok {
		return
	}
	if user.Role != models.RoleAdmin {
		if !h.ownsEmployee(c, user, employeeID) {
			return
		}
	}

	summary, err := h.Stats.Summary(employeeID, time.Now())
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "aggregate failed")
		return
	}
	util.Success(c, util.Response{"stats": summary})
}

// ownsEmployee rejects a non-admin reading someone else's data.
func (h *ShiftHandler) ownsEmployee(c *gin.Context, user *models.User, employeeID uint) bool {
	var emp models.Employee
	if err := h.DB.First(&emp, employeeID).Error; err != nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "employee not found")
		return false
	}
	if emp.UserID == nil || *emp.UserID != user.ID {
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "forbidden")
		return false
	}
	return true
}

func writeShiftError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, shift.ErrAlreadyClockedIn):
		util.Error(c, http.StatusConflict, util.CodeConflict, "already clocked in")
	case errors.Is(err, shift.ErrNoActiveShift):
		util.Error(c, http.StatusConflict, util.CodeConflict, "no active shift")
	case errors.Is(err, shift.ErrNoActiveBreak):
		util.Error(c, http.StatusConflict, util.CodeConflict, "no active break")
	case errors.Is(err, shift.ErrAlreadyOnBreak):
		util.Error(c, http.StatusConflict, util.CodeConflict, "already on break")
	case errors.Is(err, shift.ErrForbidden):
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "forbidden")
	case errors.Is(err, shift.ErrEmployeeNotFound):
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "employee not found")
	default:
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "shift operation failed")
	}
}

func recordResp(rec *models.AttendanceRecord) gin.H {
	return gin.H{
		"id":          rec.ID,
		"employee_id": rec.EmployeeID,
		"check_in":    rec.CheckIn,
		"check_out":   rec.CheckOut,
		"is_on_break": rec.IsOnBreak,
		"break_start": rec.BreakStart,
		"break_end":   rec.BreakEnd,
		"status":      rec.Status,
		"notes":       rec.Notes,
	}
}

func queryUint(c *gin.Context, key string) uint {
	v, err := strconv.ParseUint(c.Query(key), 10, 32)
	if err != nil {
		return 0
	}
	return uint(v)
}
