package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
	MessageTypeFile  = "file"
)

// Message status values. Status never regresses: sent -> delivered -> read.
const (
	MessageStatusSent      = "sent"
	MessageStatusDelivered = "delivered"
	MessageStatusRead      = "read"
)

// Message is immutable once stored, except for Status and the append-only
// ReadBy set maintained by the read-receipt path.
type Message struct {
	ID                   uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationID       uuid.UUID     `gorm:"type:uuid;index;not null" json:"conversation_id"`
	SenderID             uuid.UUID     `gorm:"type:uuid;not null" json:"sender_id"`
	Type                 string        `gorm:"not null;default:text" json:"message_type"`
	Content              string        `json:"message,omitempty"`
	FileURL              string        `json:"file_url,omitempty"`
	FileName             string        `json:"file_name,omitempty"`
	Status               string        `gorm:"not null;default:sent" json:"status"`
	IsSystemNotification bool          `gorm:"not null;default:false" json:"is_system_notification"`
	ReadBy               []MessageRead `gorm:"foreignKey:MessageID" json:"read_by"`
	CreatedAt            time.Time     `gorm:"index" json:"created_at"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// WasReadBy reports whether userID already has a read receipt on m.
func (m *Message) WasReadBy(userID uuid.UUID) bool {
	for _, r := range m.ReadBy {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// MessageRead is a single read receipt. The composite primary key is what
// keeps the set duplicate-free under concurrent mark-as-read calls.
type MessageRead struct {
	MessageID uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user"`
	ReadAt    time.Time `gorm:"autoCreateTime" json:"read_at"`
}
