package server

import (
	"io"
	"mime/multipart"
	"strings"

	"timebank/internal/models"
	"timebank/internal/repository"
	"timebank/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateTaskRequest is the body of POST /api/tasks.
type CreateTaskRequest struct {
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	TaskType     models.TaskKind `json:"task_type"`
	TimeRequired int             `json:"time_required"`
	Urgency      models.Urgency  `json:"urgency"`
	City         string          `json:"city"`
	Country      string          `json:"country"`
}

// HireRequestBody is the body of POST /api/tasks/:id/hire-requests.
type HireRequestBody struct {
	Message string `json:"message"`
}

// EvidenceRequest is the JSON form of POST /api/tasks/:id/evidence.
type EvidenceRequest struct {
	BeforePhotoURL *string `json:"before_photo_url"`
	AfterPhotoURL  *string `json:"after_photo_url"`
}

func parseStatuses(raw string) []models.TaskStatus {
	var out []models.TaskStatus
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, models.TaskStatus(s))
		}
	}
	return out
}

// ListTasks handles GET /api/tasks
// @Summary Browse tasks
// @Tags tasks
// @Security BearerAuth
// @Param city query string false "City"
// @Param category query string false "Category"
// @Param task_type query string false "offer or request"
// @Param status query string false "Comma separated statuses"
// @Param q query string false "Search text"
// @Success 200 {array} models.Task
// @Router /tasks [get]
func (s *Server) ListTasks(c *fiber.Ctx) error {
	page := parsePagination(c, 50)
	tasks, err := s.taskService.ListTasks(c.UserContext(), repository.TaskFilter{
		City:     strings.ToLower(strings.TrimSpace(c.Query("city"))),
		Category: c.Query("category"),
		Kind:     models.TaskKind(c.Query("task_type")),
		Statuses: parseStatuses(c.Query("status")),
		Search:   strings.TrimSpace(c.Query("q")),
		Limit:    page.Limit,
		Offset:   page.Offset,
	})
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.JSON(tasks)
}

// Explore handles GET /api/explore
// @Summary Open tasks ranked by city and skill match
// @Tags tasks
// @Security BearerAuth
// @Param category query string false "Category"
// @Param task_type query string false "offer or request"
// @Param q query string false "Search text"
// @Success 200 {array} service.ScoredTask
// @Router /explore [get]
func (s *Server) Explore(c *fiber.Ctx) error {
	tasks, err := s.taskService.Explore(c.UserContext(), actorID(c), service.ExploreFilter{
		Category: c.Query("category"),
		Kind:     models.TaskKind(c.Query("task_type")),
		Search:   strings.TrimSpace(c.Query("q")),
	})
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.JSON(tasks)
}

// CreateTask handles POST /api/tasks
// @Summary Create an offer or a request
// @Tags tasks
// @Security BearerAuth
// @Accept json
// @Param request body CreateTaskRequest true "Task"
// @Success 201 {object} models.Task
// @Failure 400 {object} models.ErrorResponse
// @Router /tasks [post]
func (s *Server) CreateTask(c *fiber.Ctx) error {
	var req CreateTaskRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	task, err := s.taskService.CreateTask(c.UserContext(), actorID(c), service.CreateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Kind:         req.TaskType,
		TimeRequired: req.TimeRequired,
		Urgency:      req.Urgency,
		City:         req.City,
		Country:      req.Country,
	})
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

// MyTasks handles GET /api/tasks/mine
// @Summary Tasks the caller created or is assigned to
// @Tags tasks
// @Security BearerAuth
// @Param status query string false "Comma separated statuses"
// @Success 200 {array} models.Task
// @Router /tasks/mine [get]
func (s *Server) MyTasks(c *fiber.Ctx) error {
	tasks, err := s.taskService.MyTasks(c.UserContext(), actorID(c), parseStatuses(c.Query("status")))
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.JSON(tasks)
}

// GetTask handles GET /api/tasks/:id
// @Summary Task detail
// @Tags tasks
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Success 200 {object} models.Task
// @Failure 404 {object} models.ErrorResponse
// @Router /tasks/{id} [get]
func (s *Server) GetTask(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	task, err := s.taskService.GetTask(c.UserContext(), id)
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.JSON(task)
}

// DeleteTask handles DELETE /api/tasks/:id
// @Summary Cancel an open task
// @Tags tasks
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Success 204
// @Failure 409 {object} models.ErrorResponse
// @Router /tasks/{id} [delete]
func (s *Server) DeleteTask(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.taskService.CancelTask(c.UserContext(), actorID(c), id); err != nil {
		return RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateHireRequest handles POST /api/tasks/:id/hire-requests
// @Summary Ask to hire the creator of an offer
// @Tags tasks
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Param request body HireRequestBody false "Message"
// @Success 201 {object} models.HireRequest
// @Router /tasks/{id}/hire-requests [post]
func (s *Server) CreateHireRequest(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var body HireRequestBody
	if len(c.Body()) > 0 {
		if err := parseBody(c, &body); err != nil {
			return nil
		}
	}
	req, err := s.taskService.RequestHire(c.UserContext(), actorID(c), id, body.Message)
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(req)
}

// ListHireRequests handles GET /api/tasks/:id/hire-requests
// @Summary Hire requests on the caller's task
// @Tags tasks
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Success 200 {array} models.HireRequest
// @Router /tasks/{id}/hire-requests [get]
func (s *Server) ListHireRequests(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	reqs, err := s.taskService.ListHireRequests(c.UserContext(), actorID(c), id)
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.JSON(reqs)
}

// AcceptHireRequest handles POST /api/tasks/:id/hire-requests/:requestId/accept
// @Summary Accept a pending hire request
// @Tags tasks
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Param requestId path int true "Hire request ID"
// @Success 200 {object} models.Task
// @Failure 400 {object} models.ErrorResponse "insufficient credits"
// @Failure 409 {object} models.ErrorResponse
// @Router /tasks/{id}/hire-requests/{requestId}/accept [post]
func (s *Server) AcceptHireRequest(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	reqID, err := s.parseID(c, "requestId")
	if err != nil {
		return nil
	}
	task, err := s.taskService.AcceptHireRequest(c.UserContext(), actorID(c), id, reqID)
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.JSON(task)
}

// AcceptTask handles POST /api/tasks/:id/accept
// @Summary Accept an open request directly
// @Tags tasks
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Success 200 {object} models.Task
// @Failure 409 {object} models.ErrorResponse
// @Router /tasks/{id}/accept [post]
func (s *Server) AcceptTask(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	task, err := s.taskService.DirectAccept(c.UserContext(), actorID(c), id)
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.JSON(task)
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(f)
}

// UploadEvidence handles POST /api/tasks/:id/evidence. A multipart body
// carries "before" and/or "after" image files for the media host; a JSON body
// carries URLs that are already hosted.
// @Summary Attach before/after photos
// @Tags tasks
// @Security BearerAuth
// @Accept json,mpfd
// @Param id path int true "Task ID"
// @Param before formData file false "Before photo"
// @Param after formData file false "After photo"
// @Success 200 {object} models.Task
// @Failure 502 {object} models.ErrorResponse "media host unavailable"
// @Router /tasks/{id}/evidence [post]
func (s *Server) UploadEvidence(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	ctx := c.UserContext()

	form, ferr := c.MultipartForm()
	if ferr != nil {
		var req EvidenceRequest
		if err := parseBody(c, &req); err != nil {
			return nil
		}
		task, err := s.taskService.UploadEvidence(ctx, actorID(c), id, service.EvidenceInput{
			BeforeURL: req.BeforePhotoURL,
			AfterURL:  req.AfterPhotoURL,
		})
		if err != nil {
			return RespondWithError(c, err)
		}
		return c.JSON(task)
	}

	var task *models.Task
	for _, slot := range []string{service.PhotoBefore, service.PhotoAfter} {
		files := form.File[slot]
		if len(files) == 0 {
			continue
		}
		data, err := readFormFile(files[0])
		if err != nil {
			return RespondWithError(c, models.NewValidationError("Unable to read uploaded file"))
		}
		task, err = s.taskService.UploadEvidencePhoto(ctx, actorID(c), id, slot, files[0].Filename, data)
		if err != nil {
			return RespondWithError(c, err)
		}
	}
	if task == nil {
		return RespondWithError(c, models.NewValidationError("before or after photo is required"))
	}
	return c.JSON(task)
}

// SubmitTask handles POST /api/tasks/:id/submit
// @Summary Submit evidence for validation
// @Tags tasks
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Success 200 {object} models.Task
// @Failure 502 {object} models.ErrorResponse "validation service unavailable"
// @Router /tasks/{id}/submit [post]
func (s *Server) SubmitTask(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	task, err := s.taskService.SubmitForValidation(c.UserContext(), actorID(c), id)
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.JSON(task)
}

// ConfirmTask handles POST /api/tasks/:id/confirm
// @Summary Confirm completion; the second confirmation settles credits
// @Tags tasks
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Success 200 {object} service.ConfirmResult
// @Failure 409 {object} models.ErrorResponse
// @Router /tasks/{id}/confirm [post]
func (s *Server) ConfirmTask(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	res, err := s.taskService.ConfirmCompletion(c.UserContext(), actorID(c), id)
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.JSON(res)
}
