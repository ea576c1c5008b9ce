package server

import (
	"errors"

	"timebank/internal/integrations"
	"timebank/internal/models"

	"github.com/gofiber/fiber/v2"
)

// UploadMedia handles POST /api/media
// @Summary Upload an image (profile photo, evidence) to the media host
// @Tags media
// @Security BearerAuth
// @Accept mpfd
// @Param image formData file true "Image"
// @Success 200 {object} map[string]string
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /media [post]
func (s *Server) UploadMedia(c *fiber.Ctx) error {
	if s.media == nil {
		return RespondWithError(c, models.NewExternalError("media host", errors.New("no media host configured")))
	}
	fh, err := c.FormFile("image")
	if err != nil {
		return RespondWithError(c, models.NewValidationError("image file is required"))
	}
	data, err := readFormFile(fh)
	if err != nil {
		return RespondWithError(c, models.NewValidationError("Unable to read uploaded file"))
	}

	url, err := s.media.Upload(c.UserContext(), fh.Filename, data)
	if err != nil {
		if errors.Is(err, integrations.ErrInvalidImage) {
			return RespondWithError(c, models.NewValidationError("Unsupported or corrupt image"))
		}
		return RespondWithError(c, models.NewExternalError(s.media.Name(), err))
	}
	return c.JSON(fiber.Map{"url": url})
}
