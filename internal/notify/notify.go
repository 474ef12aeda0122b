package notify

import (
	"log"

	"gorm.io/gorm"

	"github.com/faxingberling1/internal-crm-sub001/internal/models"
)

// Service persists notifications. Dispatch is fire-and-forget: failures
// are logged and swallowed, they never reach the triggering operation.
// Delivery beyond persistence (mail, push) is someone else's job.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// NotifyAdmins fans the message out to every admin principal.
func (s *Service) NotifyAdmins(title, message, category, link string) {
	go func() {
		var admins []models.User
		if err := s.db.
			Where("role = ?", models.RoleAdmin).
			Find(&admins).Error; err != nil {
			log.Printf("notify: load admins: %v", err)
			return
		}
		ids := make([]uint, 0, len(admins))
		for _, a := range admins {
			ids = append(ids, a.ID)
		}
		s.create(ids, title, message, category, link)
	}()
}

// NotifyUsers fans the message out to an explicit recipient list.
func (s *Service) NotifyUsers(recipientIDs []uint, title, message, category, link string) {
	ids := make([]uint, len(recipientIDs))
	copy(ids, recipientIDs)
	go s.create(ids, title, message, category, link)
}

func (s *Service) create(recipientIDs []uint, title, message, category, link string) {
	for _, id := range recipientIDs {
		n := models.Notification{
			RecipientID: id,
			Title:       title,
			Message:     message,
			Category:    category,
			Link:        link,
		}
		if err := s.db.Create(&n).Error; err != nil {
			log.Printf("notify: create for user %d: %v", id, err)
		}
	}
}
