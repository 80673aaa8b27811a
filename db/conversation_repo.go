package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/vidhi28vaghela05/lms-project-sub000/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrConversationNotFound = errors.New("conversation not found")

// ConversationRepository owns the durable record of who talks to whom.
type ConversationRepository interface {
	GetOrCreateDirect(requesterID, otherID uuid.UUID) (*models.Conversation, error)
	CreateGroup(creatorID uuid.UUID, name string, memberIDs []uuid.UUID) (*models.Conversation, error)
	ListForUser(userID uuid.UUID) ([]models.Conversation, error)
	FindByID(id uuid.UUID) (*models.Conversation, error)
}

type conversationRepo struct {
	DB *gorm.DB
}

func NewConversationRepo(db *GormDB) ConversationRepository {
	return &conversationRepo{db.DB}
}

// GetOrCreateDirect finds the direct conversation for the unordered pair or
// creates it. Two callers racing to create the same pair are serialized by
// the unique index on direct_key: the loser's insert is a no-op and both
// receive the same row.
func (r *conversationRepo) GetOrCreateDirect(requesterID, otherID uuid.UUID) (*models.Conversation, error) {
	key := models.DirectKey(requesterID, otherID)

	if conv, err := r.findByDirectKey(key); err == nil {
		return conv, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	conv := &models.Conversation{
		ID:        uuid.New(),
		IsGroup:   false,
		DirectKey: &key,
	}
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "direct_key"}},
			DoNothing: true,
		}).Create(conv)
		if res.Error != nil {
			return errors.Wrap(res.Error, "creating direct conversation")
		}
		if res.RowsAffected == 0 {
			// Lost the race; the winner's row carries the participants.
			return nil
		}

		participants := []models.ConversationParticipant{
			{ConversationID: conv.ID, UserID: requesterID},
			{ConversationID: conv.ID, UserID: otherID},
		}
		if err := tx.Create(&participants).Error; err != nil {
			return errors.Wrap(err, "creating participants")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.findByDirectKey(key)
}

func (r *conversationRepo) CreateGroup(creatorID uuid.UUID, name string, memberIDs []uuid.UUID) (*models.Conversation, error) {
	members := dedupeMembers(creatorID, memberIDs)

	conv := &models.Conversation{
		ID:        uuid.New(),
		IsGroup:   true,
		GroupName: name,
	}
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(conv).Error; err != nil {
			return errors.Wrap(err, "creating group conversation")
		}
		participants := make([]models.ConversationParticipant, 0, len(members))
		for _, id := range members {
			participants = append(participants, models.ConversationParticipant{
				ConversationID: conv.ID,
				UserID:         id,
			})
		}
		if err := tx.Create(&participants).Error; err != nil {
			return errors.Wrap(err, "creating participants")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.FindByID(conv.ID)
}

func (r *conversationRepo) ListForUser(userID uuid.UUID) ([]models.Conversation, error) {
	var memberships []models.ConversationParticipant
	if err := r.DB.Where("user_id = ?", userID).Find(&memberships).Error; err != nil {
		return nil, errors.Wrap(err, "listing memberships")
	}

	ids := make([]uuid.UUID, 0, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.ConversationID)
	}

	conversations := []models.Conversation{}
	if len(ids) == 0 {
		return conversations, nil
	}
	err := r.DB.
		Preload("Participants").
		Preload("LastMessage").
		Where("id IN ?", ids).
		Order("updated_at DESC").
		Find(&conversations).Error
	if err != nil {
		return nil, errors.Wrap(err, "listing conversations")
	}
	return conversations, nil
}

func (r *conversationRepo) FindByID(id uuid.UUID) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.DB.
		Preload("Participants").
		Preload("LastMessage").
		First(&conv, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "finding conversation")
	}
	return &conv, nil
}

func (r *conversationRepo) findByDirectKey(key string) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.DB.
		Preload("Participants").
		Preload("LastMessage").
		First(&conv, "direct_key = ?", key).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func dedupeMembers(creatorID uuid.UUID, memberIDs []uuid.UUID) []uuid.UUID {
	seen := map[uuid.UUID]struct{}{creatorID: {}}
	members := []uuid.UUID{creatorID}
	for _, id := range memberIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		members = append(members, id)
	}
	return members
}

// touchConversation bumps updated_at and the last-message pointer inside the
// caller's transaction.
func touchConversation(tx *gorm.DB, conversationID, lastMessageID uuid.UUID, at time.Time) error {
	return tx.Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Updates(map[string]interface{}{
			"last_message_id": lastMessageID,
			"updated_at":      at,
		}).Error
}
