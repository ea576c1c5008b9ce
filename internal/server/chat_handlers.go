package server

import (
	"timebank/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ChatResponse is a chat plus whether the other participant currently has a
// live websocket.
type ChatResponse struct {
	*models.Chat
	PeerOnline bool `json:"peer_online"`
}

// CreateChatRequest is the body of POST /api/chats.
type CreateChatRequest struct {
	UserID uint `json:"user_id"`
}

// SendMessageRequest is the body of POST /api/chats/:id/messages.
type SendMessageRequest struct {
	Text string `json:"text"`
}

func (s *Server) chatResponse(chat *models.Chat, userID uint) ChatResponse {
	online := false
	if s.hub != nil {
		online = s.hub.IsOnline(chat.Other(userID))
	}
	return ChatResponse{Chat: chat, PeerOnline: online}
}

// ListChats handles GET /api/chats
// @Summary Chats of the current user, most recent first
// @Tags chats
// @Security BearerAuth
// @Success 200 {array} ChatResponse
// @Router /chats [get]
func (s *Server) ListChats(c *fiber.Ctx) error {
	userID := actorID(c)
	chats, err := s.chatService.ListChats(c.UserContext(), userID)
	if err != nil {
		return RespondWithError(c, err)
	}
	out := make([]ChatResponse, 0, len(chats))
	for i := range chats {
		out = append(out, s.chatResponse(&chats[i], userID))
	}
	return c.JSON(out)
}

// CreateChat handles POST /api/chats
// @Summary Find or create the chat with another user
// @Tags chats
// @Security BearerAuth
// @Accept json
// @Param request body CreateChatRequest true "Other participant"
// @Success 200 {object} ChatResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /chats [post]
func (s *Server) CreateChat(c *fiber.Ctx) error {
	var req CreateChatRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if req.UserID == 0 {
		return RespondWithError(c, models.NewValidationError("user_id is required"))
	}
	userID := actorID(c)
	chat, err := s.chatService.FindOrCreate(c.UserContext(), userID, req.UserID)
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.JSON(s.chatResponse(chat, userID))
}

// GetUnreadCount handles GET /api/chats/unread
// @Summary Total unread messages across chats
// @Tags chats
// @Security BearerAuth
// @Success 200 {object} map[string]int
// @Router /chats/unread [get]
func (s *Server) GetUnreadCount(c *fiber.Ctx) error {
	n, err := s.chatService.TotalUnread(c.UserContext(), actorID(c))
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"total_unread": n})
}

// GetMessages handles GET /api/chats/:id/messages
// @Summary Latest messages, oldest first
// @Tags chats
// @Security BearerAuth
// @Param id path int true "Chat ID"
// @Param limit query int false "Max messages"
// @Success 200 {array} models.Message
// @Failure 403 {object} models.ErrorResponse
// @Router /chats/{id}/messages [get]
func (s *Server) GetMessages(c *fiber.Ctx) error {
	chatID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, 50)
	msgs, err := s.chatService.ListMessages(c.UserContext(), chatID, actorID(c), page.Limit)
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.JSON(msgs)
}

// SendMessage handles POST /api/chats/:id/messages
// @Summary Send a message
// @Tags chats
// @Security BearerAuth
// @Accept json
// @Param id path int true "Chat ID"
// @Param request body SendMessageRequest true "Message"
// @Success 201 {object} models.Message
// @Failure 403 {object} models.ErrorResponse
// @Router /chats/{id}/messages [post]
func (s *Server) SendMessage(c *fiber.Ctx) error {
	chatID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req SendMessageRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	msg, err := s.chatService.SendMessage(c.UserContext(), chatID, actorID(c), req.Text)
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// MarkChatRead handles POST /api/chats/:id/read
// @Summary Reset the caller's unread counter for a chat
// @Tags chats
// @Security BearerAuth
// @Param id path int true "Chat ID"
// @Success 204
// @Router /chats/{id}/read [post]
func (s *Server) MarkChatRead(c *fiber.Ctx) error {
	chatID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.chatService.MarkRead(c.UserContext(), chatID, actorID(c)); err != nil {
		return RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
