package service

import (
	"context"
	"sync"
	"testing"

	"timebank/internal/featureflags"
	"timebank/internal/integrations"
	"timebank/internal/models"
	"timebank/internal/notifications"
	"timebank/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []notifications.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e notifications.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) count(kind string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

type recordingMail struct {
	mu   sync.Mutex
	sent []integrations.Email
}

func (m *recordingMail) Enqueue(_ context.Context, _ uint, e integrations.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, e)
	return nil
}

func (m *recordingMail) recipients() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.sent))
	for i, e := range m.sent {
		out[i] = e.To
	}
	return out
}

type stubValidator struct {
	res   integrations.ValidationResult
	err   error
	calls int
}

func (v *stubValidator) ForUser(uint) integrations.Validator { return v }

func (v *stubValidator) Validate(context.Context, string, string, string) (integrations.ValidationResult, error) {
	v.calls++
	return v.res, v.err
}

type stubHost struct {
	url string
	err error
}

func (h stubHost) Name() string { return "stub" }

func (h stubHost) Upload(context.Context, string, []byte) (string, error) {
	return h.url, h.err
}

type taskFixture struct {
	db     *gorm.DB
	svc    *TaskService
	events *recordingPublisher
	mail   *recordingMail
}

func newTaskFixture(t *testing.T) *taskFixture {
	t.Helper()
	db := testutil.NewDB(t)
	f := &taskFixture{db: db, events: &recordingPublisher{}, mail: &recordingMail{}}
	f.svc = NewTaskService(db, NewRepositories(db), TaskServiceDeps{
		Events: f.events,
		Mail:   f.mail,
		Validator: integrations.FlaggedValidator{
			Next:  integrations.MockValidator{},
			Flags: featureflags.NewManager("ai_validation=true"),
		},
		Media: stubHost{url: "https://img.example/photo.webp"},
	})
	return f
}

func (f *taskFixture) createTask(t *testing.T, creator *models.User, kind models.TaskKind, minutes int) *models.Task {
	t.Helper()
	task, err := f.svc.CreateTask(context.Background(), creator.ID, CreateTaskInput{
		Title:        "Fix my bicycle",
		Description:  "Flat tyre and loose chain",
		Category:     "Home Help",
		Kind:         kind,
		TimeRequired: minutes,
	})
	require.NoError(t, err)
	return task
}

// inProgress returns an offer by creator that worker has been hired for.
func (f *taskFixture) inProgressOffer(t *testing.T, creator, worker *models.User, minutes int) *models.Task {
	t.Helper()
	ctx := context.Background()
	task := f.createTask(t, creator, models.TaskKindOffer, minutes)
	req, err := f.svc.RequestHire(ctx, worker.ID, task.ID, "I can help")
	require.NoError(t, err)
	task, err = f.svc.AcceptHireRequest(ctx, creator.ID, task.ID, req.ID)
	require.NoError(t, err)
	return task
}

// pendingValidation drives task to pending_validation through its performer.
func (f *taskFixture) pendingValidation(t *testing.T, task *models.Task) *models.Task {
	t.Helper()
	ctx := context.Background()
	before, after := "https://img.example/before.webp", "https://img.example/after.webp"
	_, err := f.svc.UploadEvidence(ctx, task.PerformerID(), task.ID, EvidenceInput{BeforeURL: &before, AfterURL: &after})
	require.NoError(t, err)
	task, err = f.svc.SubmitForValidation(ctx, task.PerformerID(), task.ID)
	require.NoError(t, err)
	return task
}

func ledgerRows(t *testing.T, db *gorm.DB, taskID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.CreditTransaction{}).Where("task_id = ?", taskID).Count(&n).Error)
	return n
}

func ptr[T any](v T) *T { return &v }
