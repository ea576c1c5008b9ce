package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"timebank/internal/cache"
	"timebank/internal/integrations"
	"timebank/internal/middleware"
	"timebank/internal/models"
	"timebank/internal/notifications"
	"timebank/internal/observability"
	"timebank/internal/validation"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// TaskService is the task lifecycle engine. Every operation takes the acting
// user explicitly; nothing is read from ambient session state.
type TaskService struct {
	db        *gorm.DB
	repos     Repositories
	cache     *cache.Cache
	events    EventPublisher
	mail      MailQueue
	validator ValidatorProvider
	media     integrations.Host
	now       func() time.Time
}

// TaskServiceDeps are the optional collaborators of the engine. Nil values
// disable the corresponding side effect.
type TaskServiceDeps struct {
	Cache     *cache.Cache
	Events    EventPublisher
	Mail      MailQueue
	Validator ValidatorProvider
	Media     integrations.Host
}

// NewTaskService returns a new TaskService.
func NewTaskService(db *gorm.DB, repos Repositories, deps TaskServiceDeps) *TaskService {
	return &TaskService{
		db:        db,
		repos:     repos,
		cache:     deps.Cache,
		events:    deps.Events,
		mail:      deps.Mail,
		validator: deps.Validator,
		media:     deps.Media,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateTaskInput is the input for creating a task. Zero values take defaults:
// kind offer, 30 minutes, medium urgency, the creator's city and country.
type CreateTaskInput struct {
	Title        string
	Description  string
	Category     string
	Kind         models.TaskKind
	TimeRequired int
	Urgency      models.Urgency
	City         string
	Country      string
}

// EvidenceInput carries new photo URLs. Nil fields keep the stored value.
type EvidenceInput struct {
	BeforeURL *string
	AfterURL  *string
}

// ConfirmResult reports the handshake after a confirmation.
type ConfirmResult struct {
	Task    *models.Task              `json:"task"`
	State   models.HandshakeState     `json:"state"`
	Settled bool                      `json:"settled"`
	Entry   *models.CreditTransaction `json:"transaction,omitempty"`
}

func observeTransition(op string, err error) {
	observability.TaskTransitionsTotal.WithLabelValues(op, observability.Result(err)).Inc()
}

func taskUsers(t *models.Task) []uint {
	users := []uint{t.CreatedByID}
	if t.AssignedToID != nil {
		users = append(users, *t.AssignedToID)
	}
	return users
}

func (s *TaskService) publishTask(ctx context.Context, kind string, t *models.Task) {
	publish(ctx, s.events, notifications.Event{
		Collection: notifications.CollectionTasks,
		Kind:       kind,
		DocID:      t.ID,
		Users:      taskUsers(t),
		City:       t.City,
		Payload:    t,
	})
}

func (s *TaskService) CreateTask(ctx context.Context, actorID uint, in CreateTaskInput) (task *models.Task, err error) {
	defer func() { observeTransition("create", err) }()

	creator, err := s.repos.Users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if err := validation.ValidateTaskText(title, description); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if !models.ValidCategory(in.Category) {
		return nil, models.NewValidationError("category is required and must be a known category")
	}

	kind := in.Kind
	if kind == "" {
		kind = models.TaskKindOffer
	}
	if kind != models.TaskKindOffer && kind != models.TaskKindRequest {
		return nil, models.NewValidationError("task_type must be offer or request")
	}

	minutes := in.TimeRequired
	if minutes == 0 {
		minutes = models.DefaultTimeRequired
	}
	if !models.ValidTimeRequired(minutes) {
		return nil, models.NewValidationError("time_required must be 15, 30, 45 or 60 minutes")
	}

	urgency := in.Urgency
	if urgency == "" {
		urgency = models.UrgencyMedium
	}
	switch urgency {
	case models.UrgencyLow, models.UrgencyMedium, models.UrgencyHigh:
	default:
		return nil, models.NewValidationError("urgency must be low, medium or high")
	}

	city := strings.ToLower(strings.TrimSpace(in.City))
	if city == "" {
		city = creator.City
	}
	if city == "" {
		return nil, models.NewValidationError("city is required")
	}
	country := strings.TrimSpace(in.Country)
	if country == "" {
		country = creator.Country
	}
	if country == "" {
		country = models.DefaultCountry
	}

	snap := creator.Snapshot()
	task = &models.Task{
		Title:          title,
		Description:    description,
		Category:       in.Category,
		Kind:           kind,
		TimeRequired:   minutes,
		CreditsValue:   minutes,
		Status:         models.TaskStatusOpen,
		Urgency:        urgency,
		City:           city,
		Country:        country,
		CreatedByID:    creator.ID,
		CreatedByName:  snap.Name,
		CreatedByEmail: snap.Email,
		CreatedByPhoto: snap.PhotoURL,
	}
	if err := s.repos.Tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	s.publishTask(ctx, notifications.KindTaskCreated, task)
	middleware.Logger.InfoContext(ctx, "task created",
		"task_id", task.ID, "kind", task.Kind, "credits", task.CreditsValue, "city", task.City)
	return task, nil
}

// RequestHire files a pending hire request by actorID on an open offer.
func (s *TaskService) RequestHire(ctx context.Context, actorID, taskID uint, message string) (req *models.HireRequest, err error) {
	defer func() { observeTransition("request_hire", err) }()

	task, err := s.repos.Tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.IsCreator(actorID) {
		return nil, models.NewForbiddenError("you cannot hire yourself for your own task")
	}
	if task.Kind != models.TaskKindOffer {
		return nil, models.NewValidationError("hire requests can only be sent for offers")
	}
	if task.Status != models.TaskStatusOpen {
		return nil, models.NewConflictError("task is no longer open")
	}
	message = strings.TrimSpace(message)
	if message != "" {
		if err := validation.ValidateMessageText(message); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	}

	pending, err := s.repos.HireRequests.HasPending(ctx, taskID, actorID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, models.NewConflictError("hire request already pending")
	}

	requester, err := s.repos.Users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	snap := requester.Snapshot()
	req = &models.HireRequest{
		TaskID:           task.ID,
		RequesterID:      requester.ID,
		RequesterName:    snap.Name,
		RequesterEmail:   snap.Email,
		RequesterPhoto:   snap.PhotoURL,
		Message:          message,
		TaskCreditsValue: task.CreditsValue,
		Status:           models.HireRequestPending,
	}
	if err := s.repos.HireRequests.Create(ctx, req); err != nil {
		return nil, err
	}

	publish(ctx, s.events, notifications.Event{
		Collection: notifications.CollectionTasks,
		Kind:       notifications.KindHireRequestCreated,
		DocID:      task.ID,
		Users:      []uint{task.CreatedByID, requester.ID},
		Payload:    req,
	})
	sendMail(ctx, s.mail, task.CreatedByID,
		integrations.HireRequestEmail(task.CreatedByEmail, task.Title, snap.Name, message))
	return req, nil
}

// AcceptHireRequest assigns the requester of a pending hire request to the
// task. The requester's balance is read under lock inside the transaction, so
// a balance that dropped since the request was filed is caught here.
func (s *TaskService) AcceptHireRequest(ctx context.Context, actorID, taskID, requestID uint) (task *models.Task, err error) {
	span, ctx := observability.StartSpan(ctx, "task.accept_hire_request",
		attribute.Int("task.id", int(taskID)), attribute.Int("hire_request.id", int(requestID)))
	defer func() {
		span.SetError(err)
		span.End()
		observeTransition("accept_hire_request", err)
	}()

	var hire *models.HireRequest
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := s.repos.withTx(tx)

		current, err := r.tasks.GetForUpdate(ctx, taskID)
		if err != nil {
			return err
		}
		if !current.IsCreator(actorID) {
			return models.NewForbiddenError("only the task creator can accept hire requests")
		}
		if current.Status != models.TaskStatusOpen {
			return models.NewConflictError("task is no longer open")
		}

		hire, err = r.hires.Get(ctx, taskID, requestID)
		if err != nil {
			return err
		}
		if hire.Status != models.HireRequestPending {
			return models.NewConflictError("hire request is not pending")
		}

		requester, err := r.users.GetForUpdate(ctx, hire.RequesterID)
		if err != nil {
			return err
		}
		if requester.TimeCredits < current.CreditsValue {
			observability.InsufficientCreditsTotal.WithLabelValues("hire_request").Inc()
			return models.NewInsufficientCreditsError()
		}

		ok, err := r.tasks.Assign(ctx, current.ID, requester.ID, requester.Snapshot())
		if err != nil {
			return err
		}
		if !ok {
			return models.NewConflictError("task was already accepted")
		}
		ok, err = r.hires.MarkAccepted(ctx, hire.ID)
		if err != nil {
			return err
		}
		if !ok {
			return models.NewConflictError("hire request is not pending")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	task, err = s.repos.Tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	s.publishTask(ctx, notifications.KindTaskUpdated, task)
	sendMail(ctx, s.mail, hire.RequesterID, integrations.HireAcceptedEmail(hire.RequesterEmail, task.Title))
	middleware.Logger.InfoContext(ctx, "hire request accepted",
		"task_id", task.ID, "hire_request_id", hire.ID, "assignee_id", hire.RequesterID)
	return task, nil
}

// DirectAccept assigns actorID to an open request-kind task.
func (s *TaskService) DirectAccept(ctx context.Context, actorID, taskID uint) (task *models.Task, err error) {
	span, ctx := observability.StartSpan(ctx, "task.direct_accept", attribute.Int("task.id", int(taskID)))
	defer func() {
		span.SetError(err)
		span.End()
		observeTransition("direct_accept", err)
	}()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := s.repos.withTx(tx)

		current, err := r.tasks.GetForUpdate(ctx, taskID)
		if err != nil {
			return err
		}
		if current.IsCreator(actorID) {
			return models.NewForbiddenError("you cannot accept your own task")
		}
		if current.Kind != models.TaskKindRequest {
			return models.NewValidationError("offers are accepted through hire requests")
		}
		if current.Status != models.TaskStatusOpen {
			return models.NewConflictError("task is no longer open")
		}

		acceptor, err := r.users.GetForUpdate(ctx, actorID)
		if err != nil {
			return err
		}
		if acceptor.TimeCredits < current.CreditsValue {
			observability.InsufficientCreditsTotal.WithLabelValues("direct_accept").Inc()
			return models.NewInsufficientCreditsError()
		}

		ok, err := r.tasks.Assign(ctx, current.ID, acceptor.ID, acceptor.Snapshot())
		if err != nil {
			return err
		}
		if !ok {
			return models.NewConflictError("task was already accepted")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	task, err = s.repos.Tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	s.publishTask(ctx, notifications.KindTaskUpdated, task)
	sendMail(ctx, s.mail, task.CreatedByID, integrations.HireAcceptedEmail(task.CreatedByEmail, task.Title))
	return task, nil
}

// CancelTask deletes an open task owned by actorID. No credits have moved
// yet, so nothing is compensated.
func (s *TaskService) CancelTask(ctx context.Context, actorID, taskID uint) (err error) {
	defer func() { observeTransition("cancel", err) }()

	task, err := s.repos.Tasks.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if !task.IsCreator(actorID) {
		return models.NewForbiddenError("only the task creator can cancel it")
	}
	if task.Status != models.TaskStatusOpen {
		return models.NewConflictError("only open tasks can be cancelled")
	}
	deleted, err := s.repos.Tasks.DeleteOpen(ctx, taskID, actorID)
	if err != nil {
		return err
	}
	if !deleted {
		return models.NewConflictError("task is no longer open")
	}

	s.publishTask(ctx, notifications.KindTaskDeleted, task)
	return nil
}

func (s *TaskService) performerTask(ctx context.Context, actorID, taskID uint) (*models.Task, error) {
	task, err := s.repos.Tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.PerformerID() != actorID {
		return nil, models.NewForbiddenError("only the person doing the work can do this")
	}
	if task.Status != models.TaskStatusInProgress {
		return nil, models.NewConflictError("task is not in progress")
	}
	return task, nil
}

// UploadEvidence stores before and/or after photo URLs. Either may be
// replaced any number of times while the task is in progress.
func (s *TaskService) UploadEvidence(ctx context.Context, actorID, taskID uint, in EvidenceInput) (task *models.Task, err error) {
	defer func() { observeTransition("upload_evidence", err) }()

	if in.BeforeURL == nil && in.AfterURL == nil {
		return nil, models.NewValidationError("before_photo_url or after_photo_url is required")
	}
	for _, u := range []*string{in.BeforeURL, in.AfterURL} {
		if u != nil && strings.TrimSpace(*u) == "" {
			return nil, models.NewValidationError("photo url must not be empty")
		}
	}
	if _, err = s.performerTask(ctx, actorID, taskID); err != nil {
		return nil, err
	}
	ok, err := s.repos.Tasks.SetEvidence(ctx, taskID, in.BeforeURL, in.AfterURL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.NewConflictError("task is not in progress")
	}

	task, err = s.repos.Tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	s.publishTask(ctx, notifications.KindTaskUpdated, task)
	return task, nil
}

// Evidence photo slots.
const (
	PhotoBefore = "before"
	PhotoAfter  = "after"
)

// UploadEvidencePhoto sends an image to the media host and records the
// returned URL. A host failure leaves the task untouched and retryable.
func (s *TaskService) UploadEvidencePhoto(ctx context.Context, actorID, taskID uint, slot, filename string, data []byte) (*models.Task, error) {
	if slot != PhotoBefore && slot != PhotoAfter {
		return nil, models.NewValidationError("photo must be before or after")
	}
	if s.media == nil {
		return nil, models.NewExternalError("media host", errors.New("no media host configured"))
	}
	if _, err := s.performerTask(ctx, actorID, taskID); err != nil {
		return nil, err
	}

	url, err := s.media.Upload(ctx, filename, data)
	if err != nil {
		if errors.Is(err, integrations.ErrInvalidImage) {
			return nil, models.NewValidationError(err.Error())
		}
		middleware.Logger.WarnContext(ctx, "evidence upload failed",
			"task_id", taskID, "backend", s.media.Name(), "error", err)
		return nil, models.NewExternalError("media host", err)
	}

	in := EvidenceInput{BeforeURL: &url}
	if slot == PhotoAfter {
		in = EvidenceInput{AfterURL: &url}
	}
	return s.UploadEvidence(ctx, actorID, taskID, in)
}

// SubmitForValidation runs the advisory evidence check and moves the task to
// pending_validation. The score never blocks the transition.
func (s *TaskService) SubmitForValidation(ctx context.Context, actorID, taskID uint) (task *models.Task, err error) {
	span, ctx := observability.StartSpan(ctx, "task.submit_for_validation", attribute.Int("task.id", int(taskID)))
	defer func() {
		span.SetError(err)
		span.End()
		observeTransition("submit", err)
	}()

	task, err = s.performerTask(ctx, actorID, taskID)
	if err != nil {
		return nil, err
	}
	if task.BeforePhotoURL == "" || task.AfterPhotoURL == "" {
		return nil, models.NewValidationError("both before and after photos are required")
	}

	result := integrations.ValidationResult{Explanation: integrations.SkippedExplanation, Passed: true}
	if s.validator != nil {
		prompt := integrations.ValidationPrompt(task.Title, task.Description, task.Category)
		result, err = s.validator.ForUser(actorID).Validate(ctx, task.BeforePhotoURL, task.AfterPhotoURL, prompt)
		if err != nil {
			middleware.Logger.WarnContext(ctx, "evidence validation failed", "task_id", taskID, "error", err)
			return nil, models.NewExternalError("validation service", err)
		}
	}

	ok, err := s.repos.Tasks.MarkPendingValidation(ctx, taskID, result.Explanation, result.ConfidenceScore)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.NewConflictError("task is not in progress")
	}

	task, err = s.repos.Tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	span.AddAttributes(attribute.Int("validation.score", result.ConfidenceScore))
	s.publishTask(ctx, notifications.KindTaskUpdated, task)
	return task, nil
}

func confirmingParty(t *models.Task, actorID uint) (models.ConfirmingParty, error) {
	switch {
	case t.IsCreator(actorID):
		return models.PartyCreator, nil
	case t.IsAssignee(actorID):
		return models.PartyAssignee, nil
	default:
		return "", models.NewForbiddenError("only the creator or assignee can confirm completion")
	}
}

// ConfirmCompletion records actorID's confirmation. When both parties have
// confirmed, settlement runs in the same transaction. Confirming a completed
// task is a no-op.
func (s *TaskService) ConfirmCompletion(ctx context.Context, actorID, taskID uint) (res *ConfirmResult, err error) {
	span, ctx := observability.StartSpan(ctx, "task.confirm_completion", attribute.Int("task.id", int(taskID)))
	defer func() {
		span.SetError(err)
		span.End()
		observeTransition("confirm", err)
	}()

	res = &ConfirmResult{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := s.repos.withTx(tx)

		current, err := r.tasks.GetForUpdate(ctx, taskID)
		if err != nil {
			return err
		}
		party, err := confirmingParty(current, actorID)
		if err != nil {
			return err
		}
		if current.Status == models.TaskStatusCompleted {
			res.State = current.Handshake()
			return nil
		}
		if current.Status != models.TaskStatusPendingValidation {
			return models.NewConflictError("task is not awaiting confirmation")
		}

		if current.Handshake().Confirm(party) != current.Handshake() {
			if _, err := r.tasks.SetConfirmation(ctx, taskID, party); err != nil {
				return err
			}
		}

		// Decide on settlement from the stored flags, not from what this
		// caller wrote.
		current, err = r.tasks.GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		res.State = current.Handshake()
		if !res.State.Settles() {
			return nil
		}

		entry, err := settle(ctx, r, current, s.now())
		if err != nil {
			return err
		}
		res.Entry = entry
		res.Settled = entry != nil
		return nil
	})
	if err != nil {
		return nil, err
	}

	res.Task, err = s.repos.Tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	s.publishTask(ctx, notifications.KindTaskUpdated, res.Task)
	if res.Settled {
		s.afterSettlement(ctx, res.Task, res.Entry)
		span.AddAttributes(attribute.Int("settlement.amount", res.Entry.Amount))
	}
	return res, nil
}

// settle performs the transfer. MarkCompleted is the idempotency marker: a
// caller that loses the race gets (nil, nil) and writes nothing. The ledger's
// unique (task_id, transaction_type) index rolls back a duplicate that slips
// past it.
func settle(ctx context.Context, r txRepos, t *models.Task, at time.Time) (*models.CreditTransaction, error) {
	ok, err := r.tasks.MarkCompleted(ctx, t.ID, at)
	if err != nil || !ok {
		return nil, err
	}

	payer, payee := t.PayerID(), t.PayeeID()
	if payer == 0 || payee == 0 {
		return nil, models.NewInternalError(errors.New("settlement without both parties"))
	}
	amount := t.CreditsValue

	if err := r.users.AdjustCredits(ctx, payer, -amount); err != nil {
		return nil, err
	}
	if err := r.users.AdjustCredits(ctx, payee, amount); err != nil {
		return nil, err
	}
	if err := r.users.IncrementCounters(ctx, *t.AssignedToID, 1, 0); err != nil {
		return nil, err
	}
	if err := r.users.IncrementCounters(ctx, t.CreatedByID, 0, 1); err != nil {
		return nil, err
	}

	entry := &models.CreditTransaction{
		FromUserID:      payer,
		ToUserID:        payee,
		TaskID:          t.ID,
		Amount:          amount,
		TransactionType: models.TransactionTaskCompleted,
		Description:     models.CompletionDescription(t.Title),
		CreatedAt:       at,
	}
	if err := r.ledger.Append(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *TaskService) afterSettlement(ctx context.Context, t *models.Task, entry *models.CreditTransaction) {
	s.cache.InvalidateUsers(ctx, entry.FromUserID, entry.ToUserID)

	observability.SettlementsTotal.WithLabelValues(string(t.Kind)).Inc()
	observability.CreditsTransferredTotal.Add(float64(entry.Amount))

	for _, id := range []uint{entry.FromUserID, entry.ToUserID} {
		publish(ctx, s.events, notifications.Event{
			Collection: notifications.CollectionUsers,
			Kind:       notifications.KindUserUpdated,
			DocID:      id,
			Users:      []uint{id},
		})
	}

	emailOf := func(id uint) string {
		if id == t.CreatedByID {
			return t.CreatedByEmail
		}
		return t.AssignedToEmail
	}
	sendMail(ctx, s.mail, entry.FromUserID,
		integrations.TaskCompletedEmail(emailOf(entry.FromUserID), t.Title, entry.Amount, false))
	sendMail(ctx, s.mail, entry.ToUserID,
		integrations.TaskCompletedEmail(emailOf(entry.ToUserID), t.Title, entry.Amount, true))

	middleware.Logger.InfoContext(ctx, "task settled",
		"task_id", t.ID, "payer_id", entry.FromUserID, "payee_id", entry.ToUserID, "amount", entry.Amount)
}
