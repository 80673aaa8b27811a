package realtime

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Client -> server events.
const (
	EventRegister         = "register"
	EventJoinConversation = "joinConversation"
	EventSendMessage      = "sendMessage"
	EventTyping           = "typing"
	EventStopTyping       = "stopTyping"
	EventMarkAsRead       = "markAsRead"
)

// Server -> client events.
const (
	EventUserStatus         = "userStatus"
	EventReceiveMessage     = "receiveMessage"
	EventConversationUpdate = "conversationUpdate"
	EventUserTyping         = "userTyping"
	EventUserStoppedTyping  = "userStoppedTyping"
	EventMessagesRead       = "messagesRead"
)

// Envelope is the wire frame for both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type RegisterPayload struct {
	UserID uuid.UUID `json:"userId"`
}

type JoinConversationPayload struct {
	ConversationID uuid.UUID `json:"conversationId"`
}

type TypingPayload struct {
	ConversationID uuid.UUID `json:"conversationId"`
	UserID         uuid.UUID `json:"userId"`
	UserName       string    `json:"userName,omitempty"`
}

type MarkAsReadPayload struct {
	ConversationID uuid.UUID `json:"conversationId"`
	UserID         uuid.UUID `json:"userId"`
}

type MessagesReadPayload struct {
	ConversationID uuid.UUID `json:"conversationId"`
	UserID         uuid.UUID `json:"userId"`
}

const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

type UserStatusPayload struct {
	UserID uuid.UUID `json:"userId"`
	Status string    `json:"status"`
}

func marshalEvent(event string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: data})
}
