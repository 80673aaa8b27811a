package models

import "github.com/google/uuid"

type CreateDirectConversationRequest struct {
	ParticipantID uuid.UUID `json:"participant_id" binding:"required"`
}

type CreateGroupRequest struct {
	Name         string      `json:"name" binding:"required,min=1" conform:"trim"`
	Participants []uuid.UUID `json:"participants" binding:"required,min=1"`
}

type SystemNotificationRequest struct {
	ConversationID uuid.UUID `json:"conversation_id" binding:"required"`
	Message        string    `json:"message" binding:"required,min=1" conform:"trim"`
}

type SendMessageRequest struct {
	ConversationID uuid.UUID `json:"conversation_id" binding:"required"`
	Type           string    `json:"message_type"`
	Content        string    `json:"message" conform:"trim"`
	FileURL        string    `json:"file_url"`
	FileName       string    `json:"file_name"`
}
