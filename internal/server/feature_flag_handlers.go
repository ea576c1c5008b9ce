package server

import (
	"timebank/internal/featureflags"

	"github.com/gofiber/fiber/v2"
)

// flagGates names the collaborator each known flag switches on.
var flagGates = map[string]string{
	featureflags.AIValidation:       "validation",
	featureflags.EmailNotifications: "mailer",
}

// GetFeatureFlags handles GET /api/flags
// @Summary Configured flags and their state for the caller
// @Description Known flags are always listed in evaluated, unset ones as false.
// @Tags flags
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Router /flags [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	raw := map[string]string{}
	evaluated := map[string]bool{}
	if s.featureFlags != nil {
		raw = s.featureFlags.Raw()
		evaluated = s.featureFlags.Snapshot(actorID(c))
	}
	for name := range flagGates {
		if _, ok := evaluated[name]; !ok {
			evaluated[name] = false
		}
	}
	return c.JSON(fiber.Map{
		"raw":       raw,
		"evaluated": evaluated,
		"gates":     flagGates,
	})
}
