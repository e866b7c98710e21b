package entities

import (
	"github.com/google/uuid"
)

type Notification struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Title   string    `json:"title"`
	Message string    `gorm:"type:text" json:"message"`
	SentAt  int64     `gorm:"index" json:"sent_at"`
	IsRead  bool      `json:"is_read"`
	Type    string    `gorm:"type:varchar(16)" json:"type"`
	Role    string    `gorm:"type:varchar(16);index" json:"role,omitempty"`

	Timestamp
}
