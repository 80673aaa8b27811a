package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/vidhi28vaghela05/lms-project-sub000/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotParticipant = errors.New("sender is not a participant of the conversation")

// MessageRepository owns the append-only message log and the read-receipt
// state that hangs off it.
type MessageRepository interface {
	SaveMessage(msg *models.Message) (*models.Message, error)
	ListByConversation(conversationID uuid.UUID) ([]models.Message, error)
	MarkConversationRead(conversationID, readerID uuid.UUID) error
}

type messageRepo struct {
	DB *gorm.DB
}

func NewMessageRepo(db *GormDB) MessageRepository {
	return &messageRepo{db.DB}
}

// SaveMessage appends msg to its conversation: the insert, the conversation
// touch, and the unread bumps for every other participant commit together.
// The unread bump is a single SQL increment so concurrent senders never
// lose an update. System notifications carry the nil sender id: they skip
// the membership check and the increment reaches every participant.
func (r *messageRepo) SaveMessage(msg *models.Message) (*models.Message, error) {
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if msg.IsSystemNotification {
			var count int64
			if err := tx.Model(&models.Conversation{}).Where("id = ?", msg.ConversationID).Count(&count).Error; err != nil {
				return errors.Wrap(err, "checking conversation")
			}
			if count == 0 {
				return ErrConversationNotFound
			}
		} else {
			var membership models.ConversationParticipant
			err := tx.Where("conversation_id = ? AND user_id = ?", msg.ConversationID, msg.SenderID).
				First(&membership).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				var count int64
				if err := tx.Model(&models.Conversation{}).Where("id = ?", msg.ConversationID).Count(&count).Error; err != nil {
					return errors.Wrap(err, "checking conversation")
				}
				if count == 0 {
					return ErrConversationNotFound
				}
				return ErrNotParticipant
			}
			if err != nil {
				return errors.Wrap(err, "checking membership")
			}
		}

		if msg.Status == "" {
			msg.Status = models.MessageStatusSent
		}
		if msg.Type == "" {
			msg.Type = models.MessageTypeText
		}
		if err := tx.Create(msg).Error; err != nil {
			return errors.Wrap(err, "saving message")
		}

		if err := touchConversation(tx, msg.ConversationID, msg.ID, msg.CreatedAt); err != nil {
			return errors.Wrap(err, "updating conversation")
		}

		err := tx.Model(&models.ConversationParticipant{}).
			Where("conversation_id = ? AND user_id <> ?", msg.ConversationID, msg.SenderID).
			UpdateColumn("unread_count", gorm.Expr("unread_count + ?", 1)).Error
		if err != nil {
			return errors.Wrap(err, "incrementing unread counts")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// ListByConversation is a pure read, ascending by creation time. Read
// marking is a separate, explicit operation.
func (r *messageRepo) ListByConversation(conversationID uuid.UUID) ([]models.Message, error) {
	messages := []models.Message{}
	err := r.DB.
		Preload("ReadBy").
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, errors.Wrap(err, "listing messages")
	}
	return messages, nil
}

// MarkConversationRead appends a read receipt for every message the reader
// has not seen, flips those messages to read, and zeroes the reader's
// unread counter. The receipt insert rides the composite primary key with
// ON CONFLICT DO NOTHING, so concurrent calls from two tabs of the same
// reader both succeed without duplicating entries.
func (r *messageRepo) MarkConversationRead(conversationID, readerID uuid.UUID) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var unreadIDs []uuid.UUID
		err := tx.Model(&models.Message{}).
			Where("conversation_id = ? AND sender_id <> ?", conversationID, readerID).
			Pluck("id", &unreadIDs).Error
		if err != nil {
			return errors.Wrap(err, "finding unread messages")
		}

		if len(unreadIDs) > 0 {
			now := time.Now()
			receipts := make([]models.MessageRead, 0, len(unreadIDs))
			for _, id := range unreadIDs {
				receipts = append(receipts, models.MessageRead{
					MessageID: id,
					UserID:    readerID,
					ReadAt:    now,
				})
			}
			err = tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&receipts).Error
			if err != nil {
				return errors.Wrap(err, "saving read receipts")
			}

			err = tx.Model(&models.Message{}).
				Where("id IN ?", unreadIDs).
				UpdateColumn("status", models.MessageStatusRead).Error
			if err != nil {
				return errors.Wrap(err, "updating message status")
			}
		}

		err = tx.Model(&models.ConversationParticipant{}).
			Where("conversation_id = ? AND user_id = ?", conversationID, readerID).
			UpdateColumn("unread_count", 0).Error
		if err != nil {
			return errors.Wrap(err, "resetting unread count")
		}
		return nil
	})
}
