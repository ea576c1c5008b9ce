package server

import (
	"timebank/internal/models"
	"timebank/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UpdateProfileRequest is the body of PUT /api/users/me. Omitted fields are
// left unchanged.
type UpdateProfileRequest struct {
	FullName           *string  `json:"full_name"`
	City               *string  `json:"city"`
	Country            *string  `json:"country"`
	Bio                *string  `json:"bio"`
	PhotoURL           *string  `json:"photo_url"`
	Skills             []string `json:"skills"`
	AvailableTimeSlots []string `json:"available_time_slots"`
}

// GetMyProfile handles GET /api/users/me
// @Summary Current user's profile
// @Tags users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.User
// @Router /users/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetProfile(c.UserContext(), actorID(c))
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me
// @Summary Update profile fields
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body UpdateProfileRequest true "Profile changes"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Router /users/me [put]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req UpdateProfileRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	user, err := s.userService.UpdateProfile(c.UserContext(), actorID(c), service.UpdateProfileInput{
		FullName:           req.FullName,
		City:               req.City,
		Country:            req.Country,
		Bio:                req.Bio,
		PhotoURL:           req.PhotoURL,
		Skills:             req.Skills,
		AvailableTimeSlots: req.AvailableTimeSlots,
	})
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.JSON(user)
}

// GetUserProfile handles GET /api/users/:id
// @Summary Public profile
// @Tags users
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	user, err := s.userService.GetProfile(c.UserContext(), id)
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.JSON(user)
}

// GetUserTransactions handles GET /api/users/:id/transactions
// Only the account holder and admins may read a ledger.
// @Summary Ledger entries a user paid or received
// @Tags users
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} models.CreditTransaction
// @Failure 403 {object} models.ErrorResponse
// @Router /users/{id}/transactions [get]
func (s *Server) GetUserTransactions(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if actor := actorID(c); actor != id {
		admin, err := s.userService.IsAdmin(c.UserContext(), actor)
		if err != nil {
			return RespondWithError(c, err)
		}
		if !admin {
			return RespondWithError(c, models.NewForbiddenError("You can only view your own transactions"))
		}
	}
	page := parsePagination(c, 50)
	entries, err := s.ledgerService.ListByUser(c.UserContext(), id, page.Limit, page.Offset)
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.JSON(entries)
}

// GetDashboard handles GET /api/dashboard
// @Summary Balance, active tasks, suggestions and unread count
// @Tags users
// @Security BearerAuth
// @Success 200 {object} service.Dashboard
// @Router /dashboard [get]
func (s *Server) GetDashboard(c *fiber.Ctx) error {
	d, err := s.taskService.Dashboard(c.UserContext(), actorID(c))
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.JSON(d)
}

// VerifyOrganization handles POST /api/admin/organizations/:id/verify
// @Summary Mark an organization as verified
// @Tags admin
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Failure 403 {object} models.ErrorResponse
// @Router /admin/organizations/{id}/verify [post]
func (s *Server) VerifyOrganization(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	user, err := s.userService.VerifyOrganization(c.UserContext(), id)
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.JSON(user)
}

// GetLedgerAudit handles GET /api/admin/audit
// @Summary Accounts whose balance disagrees with the ledger
// @Tags admin
// @Security BearerAuth
// @Param all query bool false "Include accounts without drift"
// @Success 200 {array} repository.LedgerBalance
// @Router /admin/audit [get]
func (s *Server) GetLedgerAudit(c *fiber.Ctx) error {
	rows, err := s.ledgerService.Audit(c.UserContext(), c.QueryBool("all", false))
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.JSON(rows)
}
