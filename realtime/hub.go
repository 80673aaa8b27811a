package realtime

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
	apiError "github.com/vidhi28vaghela05/lms-project-sub000/errors"
	"github.com/vidhi28vaghela05/lms-project-sub000/models"
)

// ChatBackend is the slice of the chat service the gateway needs. Every
// state-changing event is persisted through it before anything is
// broadcast; the hub itself holds no durable state.
type ChatBackend interface {
	SendMessage(senderID uuid.UUID, req *models.SendMessageRequest) (*models.Message, *apiError.Error)
	GetConversation(id uuid.UUID) (*models.Conversation, *apiError.Error)
	MarkConversationRead(conversationID, readerID uuid.UUID) *apiError.Error
}

// Hub multiplexes per-conversation rooms over the connected clients.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	byUser  map[uuid.UUID]map[*Client]struct{}
	rooms   map[uuid.UUID]map[*Client]struct{}

	presence Registry
	chat     ChatBackend
}

func NewHub(chat ChatBackend, presence Registry) *Hub {
	return &Hub{
		clients:  make(map[*Client]struct{}),
		byUser:   make(map[uuid.UUID]map[*Client]struct{}),
		rooms:    make(map[uuid.UUID]map[*Client]struct{}),
		presence: presence,
		chat:     chat,
	}
}

// Attach adds a freshly accepted connection. No identity is bound until the
// client sends its register event.
func (h *Hub) Attach(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

// Detach tears the connection down: room membership is dropped implicitly
// and presence-offline goes out only if this was the user's last
// connection. In-flight store writes it triggered still complete; their
// broadcasts simply skip the gone client.
func (h *Hub) Detach(c *Client) {
	h.mu.Lock()
	delete(h.clients, c)
	for convID := range c.rooms {
		h.removeFromRoom(convID, c)
	}
	wasRegistered := c.registered
	c.registered = false
	if set, ok := h.byUser[c.userID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.byUser, c.userID)
		}
	}
	h.mu.Unlock()

	close(c.send)

	if !wasRegistered {
		return
	}
	last, err := h.presence.Unregister(context.Background(), c.userID, c.id)
	if err != nil {
		log.Printf("presence unregister error: %v", err)
		return
	}
	if last {
		h.broadcastAll(EventUserStatus, UserStatusPayload{UserID: c.userID, Status: StatusOffline}, c)
	}
}

// HandleEvent dispatches one inbound frame. Handler failures are logged and
// otherwise silent; the client reconciles through the history endpoint.
func (h *Hub) HandleEvent(c *Client, env Envelope) {
	switch env.Event {
	case EventRegister:
		h.handleRegister(c)
	case EventJoinConversation:
		h.handleJoin(c, env.Data)
	case EventSendMessage:
		h.handleSendMessage(c, env.Data)
	case EventTyping:
		h.handleTyping(c, env.Data, EventUserTyping)
	case EventStopTyping:
		h.handleTyping(c, env.Data, EventUserStoppedTyping)
	case EventMarkAsRead:
		h.handleMarkAsRead(c, env.Data)
	default:
		log.Printf("unknown event %q from %s", env.Event, c.userID)
	}
}

// handleRegister binds presence. The identity comes from the authenticated
// principal on the connection, not from the payload, so a client cannot
// register as someone else.
func (h *Hub) handleRegister(c *Client) {
	h.mu.Lock()
	if c.registered {
		h.mu.Unlock()
		return
	}
	c.registered = true
	if h.byUser[c.userID] == nil {
		h.byUser[c.userID] = make(map[*Client]struct{})
	}
	h.byUser[c.userID][c] = struct{}{}
	h.mu.Unlock()

	first, err := h.presence.Register(context.Background(), c.userID, c.id)
	if err != nil {
		log.Printf("presence register error: %v", err)
		return
	}
	if first {
		h.broadcastAll(EventUserStatus, UserStatusPayload{UserID: c.userID, Status: StatusOnline}, c)
	}
}

func (h *Hub) handleJoin(c *Client, data json.RawMessage) {
	var p JoinConversationPayload
	if err := json.Unmarshal(data, &p); err != nil || p.ConversationID == uuid.Nil {
		log.Printf("bad joinConversation payload from %s: %v", c.userID, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if !c.registered {
		return
	}
	if _, ok := c.rooms[p.ConversationID]; ok {
		return
	}
	c.rooms[p.ConversationID] = struct{}{}
	if h.rooms[p.ConversationID] == nil {
		h.rooms[p.ConversationID] = make(map[*Client]struct{})
	}
	h.rooms[p.ConversationID][c] = struct{}{}
}

// handleSendMessage persists first, then broadcasts: the stored message
// goes to the whole room including the sender, whose UI updates from the
// same echo as everyone else's, and a conversation summary goes to every
// participant's connections so conversation lists refresh without the room.
func (h *Hub) handleSendMessage(c *Client, data json.RawMessage) {
	var req models.SendMessageRequest
	if err := json.Unmarshal(data, &req); err != nil {
		log.Printf("bad sendMessage payload from %s: %v", c.userID, err)
		return
	}

	msg, apiErr := h.chat.SendMessage(c.userID, &req)
	if apiErr != nil {
		log.Printf("sendMessage from %s rejected: %v", c.userID, apiErr)
		return
	}

	h.broadcastRoom(msg.ConversationID, EventReceiveMessage, msg, nil)

	conv, apiErr := h.chat.GetConversation(msg.ConversationID)
	if apiErr != nil {
		log.Printf("conversation lookup after send failed: %v", apiErr)
		return
	}
	for _, participantID := range conv.ParticipantIDs() {
		h.sendToUser(participantID, EventConversationUpdate, conv)
	}
}

// Typing indicators are broadcast-only: nothing is persisted and the server
// never expires them, the sending client emits stopTyping itself.
func (h *Hub) handleTyping(c *Client, data json.RawMessage, outEvent string) {
	var p TypingPayload
	if err := json.Unmarshal(data, &p); err != nil || p.ConversationID == uuid.Nil {
		log.Printf("bad typing payload from %s: %v", c.userID, err)
		return
	}
	p.UserID = c.userID
	if p.UserName == "" {
		p.UserName = c.userName
	}
	h.broadcastRoom(p.ConversationID, outEvent, p, c)
}

func (h *Hub) handleMarkAsRead(c *Client, data json.RawMessage) {
	var p MarkAsReadPayload
	if err := json.Unmarshal(data, &p); err != nil || p.ConversationID == uuid.Nil {
		log.Printf("bad markAsRead payload from %s: %v", c.userID, err)
		return
	}

	if apiErr := h.chat.MarkConversationRead(p.ConversationID, c.userID); apiErr != nil {
		log.Printf("markAsRead from %s failed: %v", c.userID, apiErr)
		return
	}
	h.broadcastRoom(p.ConversationID, EventMessagesRead, MessagesReadPayload{
		ConversationID: p.ConversationID,
		UserID:         c.userID,
	}, nil)
}

// PublishSystemMessage pushes an already persisted server-generated message
// into its conversation room, mirroring the user send path.
func (h *Hub) PublishSystemMessage(msg *models.Message) {
	h.broadcastRoom(msg.ConversationID, EventReceiveMessage, msg, nil)
}

// RoomMembers reports the connections currently joined to a conversation.
func (h *Hub) RoomMembers(conversationID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[conversationID])
}

// Shutdown drops volatile presence state. Rooms and clients die with the
// process; reconnecting clients rebuild everything from the store.
func (h *Hub) Shutdown(ctx context.Context) error {
	return h.presence.Clear(ctx)
}

func (h *Hub) broadcastRoom(conversationID uuid.UUID, event string, payload interface{}, except *Client) {
	frame, err := marshalEvent(event, payload)
	if err != nil {
		log.Printf("marshal %s: %v", event, err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[conversationID] {
		if c == except {
			continue
		}
		c.enqueue(frame)
	}
}

func (h *Hub) sendToUser(userID uuid.UUID, event string, payload interface{}) {
	frame, err := marshalEvent(event, payload)
	if err != nil {
		log.Printf("marshal %s: %v", event, err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.byUser[userID] {
		c.enqueue(frame)
	}
}

func (h *Hub) broadcastAll(event string, payload interface{}, except *Client) {
	frame, err := marshalEvent(event, payload)
	if err != nil {
		log.Printf("marshal %s: %v", event, err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c == except {
			continue
		}
		c.enqueue(frame)
	}
}

func (h *Hub) removeFromRoom(conversationID uuid.UUID, c *Client) {
	if members, ok := h.rooms[conversationID]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, conversationID)
		}
	}
}
