package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/faxingberling1/internal-crm-sub001/internal/middleware"
	"github.com/faxingberling1/internal-crm-sub001/internal/models"
	"github.com/faxingberling1/internal-crm-sub001/internal/util"
)

type NotificationHandler struct {
	DB       *gorm.DB
	PageSize int
}

func NewNotificationHandler(db *gorm.DB, pageSize int) *NotificationHandler {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &NotificationHandler{DB: db, PageSize: pageSize}
}

// List returns the caller's notifications, newest first.
func (h *NotificationHandler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	var rows []models.Notification
	if err := h.DB.
		Where("recipient_id = ?", user.ID).
		Order("created_at DESC").
		Limit(h.PageSize).
		Offset((page - 1) * h.PageSize).
		Find(&rows).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query notifications failed")
		return
	}

	items := make([]gin.H, 0, len(rows))
	for _, n := range rows {
		items = append(items, gin.H{
			"id":         n.ID,
			"title":      n.Title,
			"message":    n.Message,
			"category":   n.Category,
			"link":       n.Link,
			"read_at":    n.ReadAt,
			"created_at": n.CreatedAt,
		})
	}

	var unread int64
	if err := h.DB.Model(&models.Notification{}).
		Where("recipient_id = ? AND read_at IS NULL", user.ID).
		Count(&unread).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query notifications failed")
		return
	}

	util.Success(c, util.Response{
		"notifications": items,
		"unread":        unread,
		"page":          page,
	})
}

// MarkRead marks one of the caller's notifications as read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid notification id")
		return
	}

	now := time.Now()
	res := h.DB.Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", uint(id), user.ID).
		Update("read_at", &now)
	if res.Error != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "update notification failed")
		return
	}
	if res.RowsAffected == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "notification not found")
		return
	}

	util.Success(c, util.Response{"message": "marked read"})
}
