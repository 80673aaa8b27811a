package db

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/vidhi28vaghela05/lms-project-sub000/models"
)

func seedDirect(t *testing.T, gdb *GormDB) (*models.Conversation, *models.User, *models.User) {
	t.Helper()
	a := seedUser(t, gdb, models.RoleStudent)
	b := seedUser(t, gdb, models.RoleInstructor)
	conv, err := NewConversationRepo(gdb).GetOrCreateDirect(a.ID, b.ID)
	require.NoError(t, err)
	return conv, a, b
}

func unreadFor(t *testing.T, gdb *GormDB, convID, userID uuid.UUID) int64 {
	t.Helper()
	var p models.ConversationParticipant
	require.NoError(t, gdb.DB.
		Where("conversation_id = ? AND user_id = ?", convID, userID).
		First(&p).Error)
	return p.UnreadCount
}

func TestSaveMessage_UnreadAccumulates(t *testing.T) {
	gdb := newTestDB(t)
	repo := NewMessageRepo(gdb)
	conv, a, b := seedDirect(t, gdb)

	for i := 0; i < 3; i++ {
		_, err := repo.SaveMessage(&models.Message{
			ConversationID: conv.ID,
			SenderID:       a.ID,
			Type:           models.MessageTypeText,
			Content:        "hello",
		})
		require.NoError(t, err)
	}

	assert.Equal(t, int64(3), unreadFor(t, gdb, conv.ID, b.ID))
	assert.Equal(t, int64(0), unreadFor(t, gdb, conv.ID, a.ID))
}

func TestSaveMessage_ConcurrentSendersNoLostUnread(t *testing.T) {
	gdb := newTestDB(t)
	convRepo := NewConversationRepo(gdb)
	repo := NewMessageRepo(gdb)

	a := seedUser(t, gdb, models.RoleStudent)
	b := seedUser(t, gdb, models.RoleStudent)
	c := seedUser(t, gdb, models.RoleInstructor)
	conv, err := convRepo.CreateGroup(a.ID, "busy group", []uuid.UUID{b.ID, c.ID})
	require.NoError(t, err)

	// Two senders racing on the same counter row: the SQL increment must
	// not lose any of their updates.
	var g errgroup.Group
	for _, sender := range []uuid.UUID{a.ID, b.ID} {
		sender := sender
		g.Go(func() error {
			for i := 0; i < 5; i++ {
				if _, err := repo.SaveMessage(&models.Message{
					ConversationID: conv.ID,
					SenderID:       sender,
					Content:        "racing",
				}); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int64(10), unreadFor(t, gdb, conv.ID, c.ID))
	assert.Equal(t, int64(5), unreadFor(t, gdb, conv.ID, a.ID))
	assert.Equal(t, int64(5), unreadFor(t, gdb, conv.ID, b.ID))
}

func TestSaveMessage_SystemNotificationBumpsEveryone(t *testing.T) {
	gdb := newTestDB(t)
	repo := NewMessageRepo(gdb)
	conv, a, b := seedDirect(t, gdb)

	msg, err := repo.SaveMessage(&models.Message{
		ConversationID:       conv.ID,
		SenderID:             uuid.Nil,
		Content:              "maintenance tonight",
		IsSystemNotification: true,
	})
	require.NoError(t, err)
	assert.True(t, msg.IsSystemNotification)

	// No sender to exclude, so both participants accrue unread.
	assert.Equal(t, int64(1), unreadFor(t, gdb, conv.ID, a.ID))
	assert.Equal(t, int64(1), unreadFor(t, gdb, conv.ID, b.ID))

	_, err = repo.SaveMessage(&models.Message{
		ConversationID:       uuid.New(),
		SenderID:             uuid.Nil,
		Content:              "void",
		IsSystemNotification: true,
	})
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestSaveMessage_UpdatesLastMessage(t *testing.T) {
	gdb := newTestDB(t)
	repo := NewMessageRepo(gdb)
	conv, a, _ := seedDirect(t, gdb)

	msg, err := repo.SaveMessage(&models.Message{
		ConversationID: conv.ID,
		SenderID:       a.ID,
		Content:        "latest",
	})
	require.NoError(t, err)
	assert.Equal(t, models.MessageStatusSent, msg.Status)
	assert.Equal(t, models.MessageTypeText, msg.Type)

	got, err := NewConversationRepo(gdb).FindByID(conv.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastMessage)
	assert.Equal(t, msg.ID, got.LastMessage.ID)
}

func TestSaveMessage_RejectsNonParticipant(t *testing.T) {
	gdb := newTestDB(t)
	repo := NewMessageRepo(gdb)
	conv, _, _ := seedDirect(t, gdb)
	outsider := seedUser(t, gdb, models.RoleStudent)

	_, err := repo.SaveMessage(&models.Message{
		ConversationID: conv.ID,
		SenderID:       outsider.ID,
		Content:        "let me in",
	})
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestSaveMessage_RejectsMissingConversation(t *testing.T) {
	gdb := newTestDB(t)
	repo := NewMessageRepo(gdb)
	sender := seedUser(t, gdb, models.RoleStudent)

	_, err := repo.SaveMessage(&models.Message{
		ConversationID: uuid.New(),
		SenderID:       sender.ID,
		Content:        "void",
	})
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestMarkConversationRead_ResetsToZero(t *testing.T) {
	gdb := newTestDB(t)
	repo := NewMessageRepo(gdb)
	conv, a, b := seedDirect(t, gdb)

	for i := 0; i < 3; i++ {
		_, err := repo.SaveMessage(&models.Message{
			ConversationID: conv.ID,
			SenderID:       a.ID,
			Content:        "unread",
		})
		require.NoError(t, err)
	}
	require.Equal(t, int64(3), unreadFor(t, gdb, conv.ID, b.ID))

	require.NoError(t, repo.MarkConversationRead(conv.ID, b.ID))

	assert.Equal(t, int64(0), unreadFor(t, gdb, conv.ID, b.ID))

	messages, err := repo.ListByConversation(conv.ID)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	for _, m := range messages {
		assert.Equal(t, models.MessageStatusRead, m.Status)
		assert.True(t, m.WasReadBy(b.ID))
		assert.False(t, m.WasReadBy(a.ID), "sender never lands in readBy")
	}
}

func TestMarkConversationRead_NoDuplicateReceipts(t *testing.T) {
	gdb := newTestDB(t)
	repo := NewMessageRepo(gdb)
	conv, a, b := seedDirect(t, gdb)

	msg, err := repo.SaveMessage(&models.Message{
		ConversationID: conv.ID,
		SenderID:       a.ID,
		Content:        "read me twice",
	})
	require.NoError(t, err)

	require.NoError(t, repo.MarkConversationRead(conv.ID, b.ID))
	require.NoError(t, repo.MarkConversationRead(conv.ID, b.ID))

	var receipts []models.MessageRead
	require.NoError(t, gdb.DB.Where("message_id = ?", msg.ID).Find(&receipts).Error)
	require.Len(t, receipts, 1)
	assert.Equal(t, b.ID, receipts[0].UserID)
}

func TestListByConversation_Ascending(t *testing.T) {
	gdb := newTestDB(t)
	repo := NewMessageRepo(gdb)
	conv, a, b := seedDirect(t, gdb)

	for i, sender := range []uuid.UUID{a.ID, b.ID, a.ID} {
		_, err := repo.SaveMessage(&models.Message{
			ConversationID: conv.ID,
			SenderID:       sender,
			Content:        string(rune('a' + i)),
		})
		require.NoError(t, err)
	}

	messages, err := repo.ListByConversation(conv.ID)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "a", messages[0].Content)
	assert.Equal(t, "b", messages[1].Content)
	assert.Equal(t, "c", messages[2].Content)
	for i := 1; i < len(messages); i++ {
		assert.False(t, messages[i].CreatedAt.Before(messages[i-1].CreatedAt))
	}
}
