package services

import (
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/vidhi28vaghela05/lms-project-sub000/config"
	"github.com/vidhi28vaghela05/lms-project-sub000/db"
	apiError "github.com/vidhi28vaghela05/lms-project-sub000/errors"
	"github.com/vidhi28vaghela05/lms-project-sub000/models"
)

// ChatService is the business surface over the conversation and message
// stores. The realtime gateway and the REST handlers both go through it, so
// a message persisted here looks the same no matter which path stored it.
type ChatService interface {
	GetOrCreateDirect(requesterID, otherID uuid.UUID) (*models.Conversation, *apiError.Error)
	CreateGroup(creatorID uuid.UUID, name string, memberIDs []uuid.UUID) (*models.Conversation, *apiError.Error)
	ListConversations(userID uuid.UUID) ([]models.Conversation, *apiError.Error)
	GetConversation(id uuid.UUID) (*models.Conversation, *apiError.Error)
	SendMessage(senderID uuid.UUID, req *models.SendMessageRequest) (*models.Message, *apiError.Error)
	SendSystemNotification(conversationID uuid.UUID, text string) (*models.Message, *apiError.Error)
	ListMessages(conversationID uuid.UUID) ([]models.Message, *apiError.Error)
	MarkConversationRead(conversationID, readerID uuid.UUID) *apiError.Error
	ListAndMarkRead(conversationID, readerID uuid.UUID) ([]models.Message, *apiError.Error)
}

type chatService struct {
	Config           *config.Config
	conversationRepo db.ConversationRepository
	messageRepo      db.MessageRepository
}

func NewChatService(conversationRepo db.ConversationRepository, messageRepo db.MessageRepository, conf *config.Config) ChatService {
	return &chatService{
		Config:           conf,
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
	}
}

func (s *chatService) GetOrCreateDirect(requesterID, otherID uuid.UUID) (*models.Conversation, *apiError.Error) {
	if requesterID == uuid.Nil || otherID == uuid.Nil {
		return nil, apiError.New("participant id is required", http.StatusBadRequest)
	}
	if requesterID == otherID {
		return nil, apiError.New("cannot open a conversation with yourself", http.StatusBadRequest)
	}

	conv, err := s.conversationRepo.GetOrCreateDirect(requesterID, otherID)
	if err != nil {
		log.Printf("GetOrCreateDirect error: %v", err)
		return nil, apiError.ErrInternalServerError
	}
	return conv, nil
}

func (s *chatService) CreateGroup(creatorID uuid.UUID, name string, memberIDs []uuid.UUID) (*models.Conversation, *apiError.Error) {
	if name == "" {
		return nil, apiError.New("group name is required", http.StatusBadRequest)
	}
	if len(memberIDs) == 0 {
		return nil, apiError.New("group needs at least one member", http.StatusBadRequest)
	}
	for _, id := range memberIDs {
		if id == uuid.Nil {
			return nil, apiError.New("invalid member id", http.StatusBadRequest)
		}
	}

	conv, err := s.conversationRepo.CreateGroup(creatorID, name, memberIDs)
	if err != nil {
		log.Printf("CreateGroup error: %v", err)
		return nil, apiError.ErrInternalServerError
	}
	return conv, nil
}

func (s *chatService) ListConversations(userID uuid.UUID) ([]models.Conversation, *apiError.Error) {
	conversations, err := s.conversationRepo.ListForUser(userID)
	if err != nil {
		log.Printf("ListConversations error: %v", err)
		return nil, apiError.ErrInternalServerError
	}
	return conversations, nil
}

func (s *chatService) GetConversation(id uuid.UUID) (*models.Conversation, *apiError.Error) {
	conv, err := s.conversationRepo.FindByID(id)
	if errors.Is(err, db.ErrConversationNotFound) {
		return nil, apiError.New("conversation not found", http.StatusNotFound)
	}
	if err != nil {
		log.Printf("GetConversation error: %v", err)
		return nil, apiError.ErrInternalServerError
	}
	return conv, nil
}

func (s *chatService) SendMessage(senderID uuid.UUID, req *models.SendMessageRequest) (*models.Message, *apiError.Error) {
	if req.ConversationID == uuid.Nil {
		return nil, apiError.New("conversation id is required", http.StatusBadRequest)
	}

	msgType := req.Type
	if msgType == "" {
		msgType = models.MessageTypeText
	}
	switch msgType {
	case models.MessageTypeText:
		if req.Content == "" {
			return nil, apiError.New("message text is required", http.StatusBadRequest)
		}
	case models.MessageTypeImage, models.MessageTypeFile:
		if req.FileURL == "" {
			return nil, apiError.New("file url is required", http.StatusBadRequest)
		}
	default:
		return nil, apiError.New("unknown message type", http.StatusBadRequest)
	}

	msg := &models.Message{
		ConversationID: req.ConversationID,
		SenderID:       senderID,
		Type:           msgType,
		Content:        req.Content,
		FileURL:        req.FileURL,
		FileName:       req.FileName,
		Status:         models.MessageStatusSent,
	}
	return s.persist(msg)
}

// SendSystemNotification stores a server-generated message through the same
// append pipeline as user messages. It carries the nil sender id, so unlike
// a user message every participant accrues unread for it; clients render
// the flag distinctly.
func (s *chatService) SendSystemNotification(conversationID uuid.UUID, text string) (*models.Message, *apiError.Error) {
	if conversationID == uuid.Nil {
		return nil, apiError.New("conversation id is required", http.StatusBadRequest)
	}
	if text == "" {
		return nil, apiError.New("notification text is required", http.StatusBadRequest)
	}

	msg := &models.Message{
		ConversationID:       conversationID,
		SenderID:             uuid.Nil,
		Type:                 models.MessageTypeText,
		Content:              text,
		Status:               models.MessageStatusSent,
		IsSystemNotification: true,
	}
	return s.persist(msg)
}

func (s *chatService) persist(msg *models.Message) (*models.Message, *apiError.Error) {
	saved, err := s.messageRepo.SaveMessage(msg)
	if errors.Is(err, db.ErrConversationNotFound) {
		return nil, apiError.New("conversation not found", http.StatusNotFound)
	}
	if errors.Is(err, db.ErrNotParticipant) {
		return nil, apiError.New("sender is not a participant", http.StatusForbidden)
	}
	if err != nil {
		log.Printf("SendMessage error: %v", err)
		return nil, apiError.ErrInternalServerError
	}
	return saved, nil
}

func (s *chatService) ListMessages(conversationID uuid.UUID) ([]models.Message, *apiError.Error) {
	messages, err := s.messageRepo.ListByConversation(conversationID)
	if err != nil {
		log.Printf("ListMessages error: %v", err)
		return nil, apiError.ErrInternalServerError
	}
	return messages, nil
}

func (s *chatService) MarkConversationRead(conversationID, readerID uuid.UUID) *apiError.Error {
	conv, apiErr := s.GetConversation(conversationID)
	if apiErr != nil {
		return apiErr
	}
	if !conv.HasParticipant(readerID) {
		return apiError.New("reader is not a participant", http.StatusForbidden)
	}
	if err := s.messageRepo.MarkConversationRead(conversationID, readerID); err != nil {
		log.Printf("MarkConversationRead error: %v", err)
		return apiError.ErrInternalServerError
	}
	return nil
}

// ListAndMarkRead backs GET /messages/:conversationId. Fetching history is
// not side-effect-free here: it marks everything from other senders as read
// and zeroes the caller's unread counter, matching what a client opening
// the conversation expects.
func (s *chatService) ListAndMarkRead(conversationID, readerID uuid.UUID) ([]models.Message, *apiError.Error) {
	if apiErr := s.MarkConversationRead(conversationID, readerID); apiErr != nil {
		return nil, apiErr
	}
	return s.ListMessages(conversationID)
}
