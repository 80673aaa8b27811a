package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Conversation is a durable chat channel. Direct conversations carry a
// normalized DirectKey so the database enforces one conversation per
// unordered participant pair.
type Conversation struct {
	ID            uuid.UUID                 `gorm:"type:uuid;primaryKey" json:"id"`
	IsGroup       bool                      `gorm:"not null;default:false" json:"is_group"`
	GroupName     string                    `json:"group_name,omitempty"`
	DirectKey     *string                   `gorm:"uniqueIndex" json:"-"`
	LastMessageID *uuid.UUID                `gorm:"type:uuid" json:"-"`
	LastMessage   *Message                  `gorm:"foreignKey:LastMessageID" json:"last_message,omitempty"`
	Participants  []ConversationParticipant `gorm:"foreignKey:ConversationID" json:"participants"`
	UnreadCounts  map[string]int64          `gorm:"-" json:"unread_counts"`
	CreatedAt     time.Time                 `json:"created_at"`
	UpdatedAt     time.Time                 `json:"updated_at"`
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// AfterFind assembles the per-participant unread map from the loaded rows.
func (c *Conversation) AfterFind(tx *gorm.DB) error {
	c.FillUnreadCounts()
	return nil
}

func (c *Conversation) FillUnreadCounts() {
	c.UnreadCounts = make(map[string]int64, len(c.Participants))
	for _, p := range c.Participants {
		c.UnreadCounts[p.UserID.String()] = p.UnreadCount
	}
}

// ParticipantIDs returns the ids of every participant.
func (c *Conversation) ParticipantIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(c.Participants))
	for _, p := range c.Participants {
		ids = append(ids, p.UserID)
	}
	return ids
}

// HasParticipant reports whether userID belongs to the conversation.
func (c *Conversation) HasParticipant(userID uuid.UUID) bool {
	for _, p := range c.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// ConversationParticipant is one membership row. Rows are never deleted;
// UnreadCount is only ever bumped atomically or reset to zero.
type ConversationParticipant struct {
	ConversationID uuid.UUID `gorm:"type:uuid;primaryKey" json:"conversation_id"`
	UserID         uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"user_id"`
	UnreadCount    int64     `gorm:"not null;default:0" json:"unread_count"`
	JoinedAt       time.Time `gorm:"autoCreateTime" json:"joined_at"`
}

// DirectKey normalizes an unordered user pair into the unique lookup key
// for direct conversations.
func DirectKey(a, b uuid.UUID) string {
	ids := []string{a.String(), b.String()}
	if strings.Compare(ids[0], ids[1]) > 0 {
		ids[0], ids[1] = ids[1], ids[0]
	}
	return fmt.Sprintf("%s:%s", ids[0], ids[1])
}
