package server

import (
	"github.com/gofiber/fiber/v2"
)

// CommunityMessageRequest is the body of POST /api/community/:city/messages.
type CommunityMessageRequest struct {
	Text string `json:"text"`
}

// GetCommunityMessages handles GET /api/community/:city/messages
// @Summary Latest posts in a city room
// @Tags community
// @Security BearerAuth
// @Param city path string true "City"
// @Success 200 {array} models.CommunityMessage
// @Router /community/{city}/messages [get]
func (s *Server) GetCommunityMessages(c *fiber.Ctx) error {
	msgs, err := s.communityService.List(c.UserContext(), c.Params("city"))
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.JSON(msgs)
}

// PostCommunityMessage handles POST /api/community/:city/messages
// @Summary Post to a city room
// @Tags community
// @Security BearerAuth
// @Accept json
// @Param city path string true "City"
// @Param request body CommunityMessageRequest true "Message"
// @Success 201 {object} models.CommunityMessage
// @Failure 400 {object} models.ErrorResponse
// @Router /community/{city}/messages [post]
func (s *Server) PostCommunityMessage(c *fiber.Ctx) error {
	var req CommunityMessageRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	msg, err := s.communityService.Post(c.UserContext(), actorID(c), c.Params("city"), req.Text)
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}
