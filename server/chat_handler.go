package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apiError "github.com/vidhi28vaghela05/lms-project-sub000/errors"
	"github.com/vidhi28vaghela05/lms-project-sub000/models"
	"github.com/vidhi28vaghela05/lms-project-sub000/server/response"
)

// handleGetPartners lists the counterparties the caller may start a
// conversation with, per the role visibility rule.
func (s *Server) handleGetPartners() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		partners, err := s.PartnerService.PartnersFor(user)
		if err != nil {
			response.JSON(c, "", err.Status, nil, err)
			return
		}
		response.JSON(c, "partners retrieved successfully", http.StatusOK, partners, nil)
	}
}

func (s *Server) handleListConversations() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		conversations, err := s.ChatService.ListConversations(user.ID)
		if err != nil {
			response.JSON(c, "", err.Status, nil, err)
			return
		}
		response.JSON(c, "conversations retrieved successfully", http.StatusOK, conversations, nil)
	}
}

// handleCreateDirectConversation finds or creates the direct conversation
// with the given participant. Calling it twice never creates a duplicate.
func (s *Server) handleCreateDirectConversation() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		var req models.CreateDirectConversationRequest
		if err := decode(c, &req); err != nil {
			response.JSON(c, "", apiError.ErrBadRequest.Status, nil, err)
			return
		}

		conversation, apiErr := s.ChatService.GetOrCreateDirect(user.ID, req.ParticipantID)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "conversation ready", http.StatusOK, conversation, nil)
	}
}

func (s *Server) handleCreateGroup() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		var req models.CreateGroupRequest
		if err := decode(c, &req); err != nil {
			response.JSON(c, "", apiError.ErrBadRequest.Status, nil, err)
			return
		}

		conversation, apiErr := s.ChatService.CreateGroup(user.ID, req.Name, req.Participants)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "group created successfully", http.StatusCreated, conversation, nil)
	}
}

// handleListMessages returns the conversation history ascending by creation
// time. Fetching is NOT side-effect-free: it marks messages from other
// senders as read and resets the caller's unread counter before listing.
func (s *Server) handleListMessages() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		conversationID, parseErr := uuid.Parse(c.Param("conversationId"))
		if parseErr != nil {
			err := apiError.New("invalid conversation id", http.StatusBadRequest)
			response.JSON(c, "", err.Status, nil, err)
			return
		}

		messages, apiErr := s.ChatService.ListAndMarkRead(conversationID, user.ID)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "messages retrieved successfully", http.StatusOK, messages, nil)
	}
}

// handleSendSystemNotification lets an admin push a server-generated notice
// into a conversation. The stored message carries no sender, so every
// participant accrues unread for it, and connected room members receive it
// over the gateway like any other message.
func (s *Server) handleSendSystemNotification() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user.Role != models.RoleAdmin {
			err := apiError.New("admin role required", http.StatusForbidden)
			response.JSON(c, "", err.Status, nil, err)
			return
		}

		var req models.SystemNotificationRequest
		if err := decode(c, &req); err != nil {
			response.JSON(c, "", apiError.ErrBadRequest.Status, nil, err)
			return
		}

		msg, apiErr := s.ChatService.SendSystemNotification(req.ConversationID, req.Message)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		s.Hub.PublishSystemMessage(msg)
		response.JSON(c, "notification sent", http.StatusCreated, msg, nil)
	}
}

func (s *Server) handleGetOnlineUsers() gin.HandlerFunc {
	return func(c *gin.Context) {
		online, err := s.Presence.OnlineUsers(c.Request.Context())
		if err != nil {
			response.JSON(c, "", apiError.ErrInternalServerError.Status, nil, apiError.ErrInternalServerError)
			return
		}
		response.JSON(c, "online users retrieved successfully", http.StatusOK, online, nil)
	}
}
