package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/faxingberling1/internal-crm-sub001/internal/models"
	"github.com/faxingberling1/internal-crm-sub001/internal/notify"
	"github.com/faxingberling1/internal-crm-sub001/internal/util"
)

// AdminHandler serves account approval and the principal/employee
// repair path. All routes sit behind an admin-only group.
type AdminHandler struct {
	DB       *gorm.DB
	Notifier *notify.Service
}

func NewAdminHandler(db *gorm.DB, notifier *notify.Service) *AdminHandler {
	return &AdminHandler{DB: db, Notifier: notifier}
}

// ListPending returns unapproved accounts.
func (h *AdminHandler) ListPending(c *gin.Context) {
	var users []models.User
	if err := h.DB.
		Where("is_approved = ? AND role = ?", false, models.RoleUser).
		Order("created_at ASC").
		Find(&users).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query users failed")
		return
	}

	items := make([]gin.H, 0, len(users))
	for _, u := range users {
		items = append(items, gin.H{
			"id":         u.ID,
			"email":      u.Email,
			"name":       u.Name,
			"created_at": u.CreatedAt,
		})
	}
	util.Success(c, util.Response{"users": items})
}

// Approve marks the account approved and creates its employee row, the
// normal entry point of the principal->employee link.
func (h *AdminHandler) Approve(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid user id")
		return
	}

	var user models.User
	if err := h.DB.First(&user, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "user not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query user failed")
		}
		return
	}

	if err := h.DB.Model(&user).Update("is_approved", true).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "approve failed")
		return
	}

	emp, err := ensureEmployee(h.DB, &user)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "create employee failed")
		return
	}

	h.Notifier.NotifyUsers([]uint{user.ID},
		"Account Approved", "your account has been approved", "account", "/dashboard")

	util.Success(c, util.Response{
		"user":     gin.H{"id": user.ID, "email": user.Email, "is_approved": true},
		"employee": gin.H{"id": emp.ID, "name": emp.Name, "email": emp.Email},
	})
}

// Reject deletes a pending account.
func (h *AdminHandler) Reject(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid user id")
		return
	}

	res := h.DB.
		Where("id = ? AND is_approved = ?", uint(id), false).
		Delete(&models.User{})
	if res.Error != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "reject failed")
		return
	}
	if res.RowsAffected == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "no pending user with that id")
		return
	}

	util.Success(c, util.Response{"message": "rejected"})
}

// SyncEmployees backfills employee rows for approved principals that
// lost theirs, repairing the inconsistent principal-without-employee
// state.
func (h *AdminHandler) SyncEmployees(c *gin.Context) {
	var users []models.User
	if err := h.DB.
		Where("is_approved = ?", true).
		Find(&users).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query users failed")
		return
	}

	created := 0
	for i := range users {
		var count int64
		if err := h.DB.Model(&models.Employee{}).
			Where("user_id = ?", users[i].ID).
			Count(&count).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query employees failed")
			return
		}
		if count > 0 {
			continue
		}
		if _, err := ensureEmployee(h.DB, &users[i]); err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "create employee failed")
			return
		}
		created++
	}

	util.Success(c, util.Response{"created": created})
}

// ensureEmployee returns the user's employee row, creating or relinking
// it by email when missing.
func ensureEmployee(db *gorm.DB, user *models.User) (*models.Employee, error) {
	var emp models.Employee
	err := db.Where("user_id = ?", user.ID).First(&emp).Error
	if err == nil {
		return &emp, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// an employee row may predate the account; link by email
	err = db.Where("email = ?", user.Email).First(&emp).Error
	if err == nil {
		if err := db.Model(&emp).Update("user_id", user.ID).Error; err != nil {
			return nil, err
		}
		emp.UserID = &user.ID
		return &emp, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	emp = models.Employee{
		Name:   user.Name,
		Email:  user.Email,
		UserID: &user.ID,
	}
	if emp.Name == "" {
		emp.Name = user.Email
	}
	if err := db.Create(&emp).Error; err != nil {
		return nil, err
	}
	return &emp, nil
}
