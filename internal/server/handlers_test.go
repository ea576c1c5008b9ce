package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"timebank/internal/cache"
	"timebank/internal/config"
	"timebank/internal/featureflags"
	"timebank/internal/integrations"
	"timebank/internal/middleware"
	"timebank/internal/models"
	"timebank/internal/notifications"
	"timebank/internal/service"
	"timebank/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubHost struct {
	url string
	err error
}

func (h stubHost) Name() string { return "stub" }

func (h stubHost) Upload(context.Context, string, []byte) (string, error) {
	return h.url, h.err
}

type testEnv struct {
	srv *Server
	app *fiber.App
	db  *gorm.DB
	mr  *miniredis.Miniredis
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.Config{
		Env:              "test",
		JWTSecret:        "test-secret-that-is-long-enough-for-hs256",
		JWTIssuer:        "timebank-api",
		JWTAudience:      "timebank-app",
		JWTTTLHours:      1,
		MediaMaxUploadMB: 5,
	}
	middleware.InitMiddleware(cfg, rdb)
	middleware.RateLimitDisabled = true
	t.Cleanup(func() {
		middleware.InitMiddleware(cfg, nil)
		middleware.RateLimitDisabled = false
	})

	flags := featureflags.NewManager("ai_validation=true")
	broker := notifications.NewBroker()
	c := cache.New(rdb)
	repos := service.NewRepositories(db)
	media := stubHost{url: "https://img.example/evidence.webp"}

	srv := &Server{
		config:       cfg,
		db:           db,
		redis:        rdb,
		hub:          notifications.NewHub(broker),
		featureFlags: flags,
		media:        media,
		userService:  service.NewUserService(repos, c, broker, cfg),
		taskService: service.NewTaskService(db, repos, service.TaskServiceDeps{
			Cache:     c,
			Events:    broker,
			Validator: integrations.FlaggedValidator{Next: integrations.MockValidator{}, Flags: flags},
			Media:     media,
		}),
		chatService:      service.NewChatService(db, repos, broker),
		communityService: service.NewCommunityService(repos, c, broker),
		ledgerService:    service.NewLedgerService(repos),
	}
	return &testEnv{srv: srv, app: srv.App(), db: db, mr: mr}
}

// call sends a JSON request and decodes a JSON response into out when non-nil.
func (e *testEnv) call(t *testing.T, method, path, token string, body, out any) int {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return e.do(t, req, out)
}

func (e *testEnv) do(t *testing.T, req *http.Request, out any) int {
	t.Helper()
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	if out != nil {
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, out), "body: %s", raw)
	}
	return resp.StatusCode
}

type account struct {
	ID    uint
	Token string
}

func (e *testEnv) signup(t *testing.T, name, city string) account {
	t.Helper()
	var s service.Session
	status := e.call(t, http.MethodPost, "/api/auth/signup", "", SignupRequest{
		Email:    fmt.Sprintf("%s@example.com", name),
		Password: "password1",
		FullName: name,
		City:     city,
	}, &s)
	require.Equal(t, http.StatusCreated, status)
	return account{ID: s.User.ID, Token: s.Token}
}

func (e *testEnv) balance(t *testing.T, a account) int {
	t.Helper()
	var u models.User
	require.Equal(t, http.StatusOK, e.call(t, http.MethodGet, "/api/users/me", a.Token, nil, &u))
	return u.TimeCredits
}

func (e *testEnv) createTask(t *testing.T, a account, kind models.TaskKind, minutes int) models.Task {
	t.Helper()
	var task models.Task
	status := e.call(t, http.MethodPost, "/api/tasks", a.Token, CreateTaskRequest{
		Title:        "Help with groceries",
		Description:  "Carry bags up three floors",
		Category:     "Home Help",
		TaskType:     kind,
		TimeRequired: minutes,
	}, &task)
	require.Equal(t, http.StatusCreated, status)
	return task
}

func TestAuth_SignupLoginLogout(t *testing.T) {
	e := newTestEnv(t)
	asha := e.signup(t, "asha", "Pune")

	var dup models.ErrorResponse
	status := e.call(t, http.MethodPost, "/api/auth/signup", "", SignupRequest{
		Email: "asha@example.com", Password: "password1", FullName: "Asha again",
	}, &dup)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, models.CodeConflict, dup.Code)

	var session service.Session
	status = e.call(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Email: "asha@example.com", Password: "password1"}, &session)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, asha.ID, session.User.ID)

	status = e.call(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Email: "asha@example.com", Password: "wrong-pass1"}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	var me models.User
	require.Equal(t, http.StatusOK, e.call(t, http.MethodGet, "/api/users/me", asha.Token, nil, &me))
	assert.Equal(t, 60, me.TimeCredits)
	assert.Equal(t, "pune", me.City)

	assert.Equal(t, http.StatusUnauthorized, e.call(t, http.MethodGet, "/api/users/me", "", nil, nil))

	assert.Equal(t, http.StatusNoContent, e.call(t, http.MethodPost, "/api/auth/logout", asha.Token, nil, nil))
	assert.Equal(t, http.StatusUnauthorized, e.call(t, http.MethodGet, "/api/users/me", asha.Token, nil, nil))
	assert.Equal(t, http.StatusOK, e.call(t, http.MethodGet, "/api/users/me", session.Token, nil, nil))
}

func TestProfile_Update(t *testing.T) {
	e := newTestEnv(t)
	asha := e.signup(t, "asha", "pune")

	bio := "Retired teacher"
	var u models.User
	status := e.call(t, http.MethodPut, "/api/users/me", asha.Token, UpdateProfileRequest{
		Bio:                &bio,
		Skills:             []string{"tutoring", "cooking"},
		AvailableTimeSlots: []string{"Weekend Mornings"},
	}, &u)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, bio, u.Bio)
	assert.Equal(t, []string{"tutoring", "cooking"}, u.Skills)
	assert.Equal(t, []string{"Weekend Mornings"}, u.AvailableTimeSlots)

	var bad models.ErrorResponse
	status = e.call(t, http.MethodPut, "/api/users/me", asha.Token, UpdateProfileRequest{
		AvailableTimeSlots: []string{"Late Night"},
	}, &bad)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, models.CodeValidation, bad.Code)

	var public models.User
	require.Equal(t, http.StatusOK, e.call(t, http.MethodGet, fmt.Sprintf("/api/users/%d", asha.ID), asha.Token, nil, &public))
	assert.Equal(t, bio, public.Bio)
	assert.Equal(t, http.StatusNotFound, e.call(t, http.MethodGet, "/api/users/9999", asha.Token, nil, nil))
}

func TestTaskLifecycle_RequestSettlesOnSecondConfirmation(t *testing.T) {
	e := newTestEnv(t)
	asha := e.signup(t, "asha", "pune")
	bilal := e.signup(t, "bilal", "pune")

	task := e.createTask(t, asha, models.TaskKindRequest, 30)
	assert.Equal(t, models.TaskStatusOpen, task.Status)
	assert.Equal(t, 30, task.CreditsValue)

	var accepted models.Task
	path := fmt.Sprintf("/api/tasks/%d", task.ID)
	require.Equal(t, http.StatusOK, e.call(t, http.MethodPost, path+"/accept", bilal.Token, nil, &accepted))
	assert.Equal(t, models.TaskStatusInProgress, accepted.Status)
	require.NotNil(t, accepted.AssignedToID)
	assert.Equal(t, bilal.ID, *accepted.AssignedToID)

	// Second acceptor loses the race.
	carmen := e.signup(t, "carmen", "pune")
	assert.Equal(t, http.StatusConflict, e.call(t, http.MethodPost, path+"/accept", carmen.Token, nil, nil))

	// Submitting without evidence is rejected, and only the performer may upload.
	assert.Equal(t, http.StatusBadRequest, e.call(t, http.MethodPost, path+"/submit", bilal.Token, nil, nil))
	before, after := "https://img.example/b.webp", "https://img.example/a.webp"
	assert.Equal(t, http.StatusForbidden, e.call(t, http.MethodPost, path+"/evidence", asha.Token,
		EvidenceRequest{BeforePhotoURL: &before, AfterPhotoURL: &after}, nil))
	require.Equal(t, http.StatusOK, e.call(t, http.MethodPost, path+"/evidence", bilal.Token,
		EvidenceRequest{BeforePhotoURL: &before, AfterPhotoURL: &after}, nil))

	var submitted models.Task
	require.Equal(t, http.StatusOK, e.call(t, http.MethodPost, path+"/submit", bilal.Token, nil, &submitted))
	assert.Equal(t, models.TaskStatusPendingValidation, submitted.Status)
	assert.NotEmpty(t, submitted.ValidationNotes)

	var first service.ConfirmResult
	require.Equal(t, http.StatusOK, e.call(t, http.MethodPost, path+"/confirm", asha.Token, nil, &first))
	assert.False(t, first.Settled)
	assert.Equal(t, models.HandshakeCreatorConfirmed, first.State)
	assert.Equal(t, 60, e.balance(t, asha))

	var second service.ConfirmResult
	require.Equal(t, http.StatusOK, e.call(t, http.MethodPost, path+"/confirm", bilal.Token, nil, &second))
	assert.True(t, second.Settled)
	assert.Equal(t, models.HandshakeBoth, second.State)
	require.NotNil(t, second.Entry)
	assert.Equal(t, 30, second.Entry.Amount)

	assert.Equal(t, 30, e.balance(t, asha))
	assert.Equal(t, 90, e.balance(t, bilal))

	// Confirming again does not pay twice.
	var again service.ConfirmResult
	require.Equal(t, http.StatusOK, e.call(t, http.MethodPost, path+"/confirm", asha.Token, nil, &again))
	assert.False(t, again.Settled)
	assert.Equal(t, 30, e.balance(t, asha))

	var entries []models.CreditTransaction
	require.Equal(t, http.StatusOK, e.call(t, http.MethodGet, fmt.Sprintf("/api/users/%d/transactions", bilal.ID), bilal.Token, nil, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, asha.ID, entries[0].FromUserID)
	assert.Equal(t, bilal.ID, entries[0].ToUserID)
}

func TestUserTransactions_OwnerOrAdminOnly(t *testing.T) {
	e := newTestEnv(t)
	asha := e.signup(t, "asha", "pune")
	bilal := e.signup(t, "bilal", "pune")
	admin := e.signup(t, "admin", "pune")
	require.NoError(t, e.db.Model(&models.User{}).Where("id = ?", admin.ID).Update("is_admin", true).Error)

	path := fmt.Sprintf("/api/users/%d/transactions", asha.ID)
	var denied models.ErrorResponse
	assert.Equal(t, http.StatusForbidden, e.call(t, http.MethodGet, path, bilal.Token, nil, &denied))
	assert.Equal(t, models.CodeForbidden, denied.Code)

	var entries []models.CreditTransaction
	assert.Equal(t, http.StatusOK, e.call(t, http.MethodGet, path, asha.Token, nil, &entries))
	assert.Empty(t, entries)
	assert.Equal(t, http.StatusOK, e.call(t, http.MethodGet, path, admin.Token, nil, nil))
	assert.Equal(t, http.StatusUnauthorized, e.call(t, http.MethodGet, path, "", nil, nil))
}

func TestTaskLifecycle_OfferHireRequests(t *testing.T) {
	e := newTestEnv(t)
	tutor := e.signup(t, "tutor", "pune")
	student := e.signup(t, "student", "pune")
	other := e.signup(t, "other", "pune")

	offer := e.createTask(t, tutor, models.TaskKindOffer, 45)
	path := fmt.Sprintf("/api/tasks/%d", offer.ID)

	// Offers cannot be accepted directly.
	assert.Equal(t, http.StatusBadRequest, e.call(t, http.MethodPost, path+"/accept", student.Token, nil, nil))

	var hire models.HireRequest
	require.Equal(t, http.StatusCreated, e.call(t, http.MethodPost, path+"/hire-requests", student.Token,
		HireRequestBody{Message: "Maths on Saturday?"}, &hire))
	assert.Equal(t, http.StatusConflict, e.call(t, http.MethodPost, path+"/hire-requests", student.Token, nil, nil))
	require.Equal(t, http.StatusCreated, e.call(t, http.MethodPost, path+"/hire-requests", other.Token, nil, nil))

	assert.Equal(t, http.StatusForbidden, e.call(t, http.MethodGet, path+"/hire-requests", student.Token, nil, nil))
	var pending []models.HireRequest
	require.Equal(t, http.StatusOK, e.call(t, http.MethodGet, path+"/hire-requests", tutor.Token, nil, &pending))
	assert.Len(t, pending, 2)

	acceptPath := fmt.Sprintf("%s/hire-requests/%d/accept", path, hire.ID)
	assert.Equal(t, http.StatusForbidden, e.call(t, http.MethodPost, acceptPath, student.Token, nil, nil))
	var task models.Task
	require.Equal(t, http.StatusOK, e.call(t, http.MethodPost, acceptPath, tutor.Token, nil, &task))
	assert.Equal(t, models.TaskStatusInProgress, task.Status)
	assert.Equal(t, student.ID, *task.AssignedToID)
	assert.Equal(t, http.StatusConflict, e.call(t, http.MethodPost, acceptPath, tutor.Token, nil, nil))

	// The tutor performs an offer, so the tutor uploads the photos.
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for _, slot := range []string{"before", "after"} {
		fw, err := w.CreateFormFile(slot, slot+".png")
		require.NoError(t, err)
		_, _ = fw.Write([]byte("not checked by the stub host"))
	}
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, path+"/evidence", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+tutor.Token)
	var withPhotos models.Task
	require.Equal(t, http.StatusOK, e.do(t, req, &withPhotos))
	assert.Equal(t, "https://img.example/evidence.webp", withPhotos.BeforePhotoURL)
	assert.Equal(t, "https://img.example/evidence.webp", withPhotos.AfterPhotoURL)

	var mine []models.Task
	require.Equal(t, http.StatusOK, e.call(t, http.MethodGet, "/api/tasks/mine?status=in_progress", student.Token, nil, &mine))
	require.Len(t, mine, 1)
	assert.Equal(t, offer.ID, mine[0].ID)
}

func TestTasks_InsufficientCreditsIsBadRequest(t *testing.T) {
	e := newTestEnv(t)
	asha := e.signup(t, "asha", "pune")
	poor := e.signup(t, "poor", "pune")
	require.NoError(t, e.db.Model(&models.User{}).Where("id = ?", poor.ID).Update("time_credits", 10).Error)

	task := e.createTask(t, asha, models.TaskKindRequest, 30)
	var body models.ErrorResponse
	status := e.call(t, http.MethodPost, fmt.Sprintf("/api/tasks/%d/accept", task.ID), poor.Token, nil, &body)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, models.ErrInsufficientCredits.Error(), body.Error)

	var reloaded models.Task
	require.Equal(t, http.StatusOK, e.call(t, http.MethodGet, fmt.Sprintf("/api/tasks/%d", task.ID), asha.Token, nil, &reloaded))
	assert.Equal(t, models.TaskStatusOpen, reloaded.Status)
}

func TestTasks_BrowseExploreAndCancel(t *testing.T) {
	e := newTestEnv(t)
	asha := e.signup(t, "asha", "pune")
	bilal := e.signup(t, "bilal", "mumbai")

	e.createTask(t, asha, models.TaskKindOffer, 15)
	req := e.createTask(t, asha, models.TaskKindRequest, 60)

	var list []models.Task
	require.Equal(t, http.StatusOK, e.call(t, http.MethodGet, "/api/tasks?city=Pune&task_type=request", bilal.Token, nil, &list))
	require.Len(t, list, 1)
	assert.Equal(t, req.ID, list[0].ID)

	require.Equal(t, http.StatusOK, e.call(t, http.MethodGet, "/api/tasks?city=mumbai", bilal.Token, nil, &list))
	assert.Empty(t, list)

	var explore []service.ScoredTask
	require.Equal(t, http.StatusOK, e.call(t, http.MethodGet, "/api/explore", bilal.Token, nil, &explore))
	assert.Len(t, explore, 2)

	assert.Equal(t, http.StatusForbidden, e.call(t, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", req.ID), bilal.Token, nil, nil))
	assert.Equal(t, http.StatusNoContent, e.call(t, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", req.ID), asha.Token, nil, nil))
	assert.Equal(t, http.StatusNotFound, e.call(t, http.MethodGet, fmt.Sprintf("/api/tasks/%d", req.ID), asha.Token, nil, nil))

	var bad models.ErrorResponse
	status := e.call(t, http.MethodPost, "/api/tasks", asha.Token, CreateTaskRequest{
		Title: "x", Description: "y", Category: "Astrology", TimeRequired: 30,
	}, &bad)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, models.CodeValidation, bad.Code)

	assert.Equal(t, http.StatusBadRequest, e.call(t, http.MethodGet, "/api/tasks/abc", asha.Token, nil, nil))
}

func TestChats_SendReadAndUnread(t *testing.T) {
	e := newTestEnv(t)
	asha := e.signup(t, "asha", "pune")
	bilal := e.signup(t, "bilal", "pune")
	outsider := e.signup(t, "outsider", "pune")

	var chat ChatResponse
	require.Equal(t, http.StatusOK, e.call(t, http.MethodPost, "/api/chats", asha.Token, CreateChatRequest{UserID: bilal.ID}, &chat))
	var same ChatResponse
	require.Equal(t, http.StatusOK, e.call(t, http.MethodPost, "/api/chats", bilal.Token, CreateChatRequest{UserID: asha.ID}, &same))
	assert.Equal(t, chat.ID, same.ID)
	assert.False(t, chat.PeerOnline)

	msgPath := fmt.Sprintf("/api/chats/%d/messages", chat.ID)
	for _, text := range []string{"Hi!", "Are you free tomorrow?"} {
		require.Equal(t, http.StatusCreated, e.call(t, http.MethodPost, msgPath, asha.Token, SendMessageRequest{Text: text}, nil))
	}
	assert.Equal(t, http.StatusForbidden, e.call(t, http.MethodPost, msgPath, outsider.Token, SendMessageRequest{Text: "hey"}, nil))
	assert.Equal(t, http.StatusBadRequest, e.call(t, http.MethodPost, msgPath, asha.Token, SendMessageRequest{Text: "   "}, nil))

	var unread map[string]int
	require.Equal(t, http.StatusOK, e.call(t, http.MethodGet, "/api/chats/unread", bilal.Token, nil, &unread))
	assert.Equal(t, 2, unread["total_unread"])

	var msgs []models.Message
	require.Equal(t, http.StatusOK, e.call(t, http.MethodGet, msgPath, bilal.Token, nil, &msgs))
	require.Len(t, msgs, 2)
	assert.Equal(t, "Hi!", msgs[0].Text)

	assert.Equal(t, http.StatusNoContent, e.call(t, http.MethodPost, fmt.Sprintf("/api/chats/%d/read", chat.ID), bilal.Token, nil, nil))
	require.Equal(t, http.StatusOK, e.call(t, http.MethodGet, "/api/chats/unread", bilal.Token, nil, &unread))
	assert.Zero(t, unread["total_unread"])

	var chats []ChatResponse
	require.Equal(t, http.StatusOK, e.call(t, http.MethodGet, "/api/chats", asha.Token, nil, &chats))
	require.Len(t, chats, 1)
	assert.Equal(t, "Are you free tomorrow?", chats[0].LastMessage)
}

func TestCommunity_PostAndList(t *testing.T) {
	e := newTestEnv(t)
	asha := e.signup(t, "asha", "pune")

	var posted models.CommunityMessage
	require.Equal(t, http.StatusCreated, e.call(t, http.MethodPost, "/api/community/Pune/messages", asha.Token,
		CommunityMessageRequest{Text: "Tool library opens Sunday"}, &posted))
	assert.Equal(t, "pune", posted.City)
	assert.Equal(t, "asha", posted.UserName)

	var msgs []models.CommunityMessage
	require.Equal(t, http.StatusOK, e.call(t, http.MethodGet, "/api/community/pune/messages", asha.Token, nil, &msgs))
	require.Len(t, msgs, 1)

	require.Equal(t, http.StatusOK, e.call(t, http.MethodGet, "/api/community/mumbai/messages", asha.Token, nil, &msgs))
	assert.Empty(t, msgs)
}

func TestMedia_Upload(t *testing.T) {
	e := newTestEnv(t)
	asha := e.signup(t, "asha", "pune")

	upload := func(host integrations.Host) (int, map[string]string) {
		e.srv.media = host
		body := &bytes.Buffer{}
		w := multipart.NewWriter(body)
		fw, err := w.CreateFormFile("image", "me.png")
		require.NoError(t, err)
		_, _ = fw.Write([]byte("png"))
		require.NoError(t, w.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/media", body)
		req.Header.Set("Content-Type", w.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+asha.Token)
		var out map[string]string
		return e.do(t, req, &out), out
	}

	status, out := upload(stubHost{url: "https://img.example/me.webp"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "https://img.example/me.webp", out["url"])

	status, out = upload(stubHost{err: integrations.ErrInvalidImage})
	assert.Equal(t, http.StatusBadRequest, status)

	status, out = upload(stubHost{err: fmt.Errorf("upstream 503")})
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, models.CodeExternal, out["code"])
	assert.Empty(t, out["details"])
}

func TestAdmin_VerifyOrganizationAndAudit(t *testing.T) {
	e := newTestEnv(t)
	admin := e.signup(t, "admin", "pune")
	require.NoError(t, e.db.Model(&models.User{}).Where("id = ?", admin.ID).Update("is_admin", true).Error)

	var org service.Session
	require.Equal(t, http.StatusCreated, e.call(t, http.MethodPost, "/api/auth/signup", "", SignupRequest{
		Email: "ngo@example.com", Password: "password1", FullName: "Green NGO", AccountType: models.AccountOrganization,
	}, &org))
	assert.Zero(t, org.User.TimeCredits)
	assert.False(t, org.User.IsVerified)

	verifyPath := fmt.Sprintf("/api/admin/organizations/%d/verify", org.User.ID)
	assert.Equal(t, http.StatusForbidden, e.call(t, http.MethodPost, verifyPath, org.Token, nil, nil))

	var verified models.User
	require.Equal(t, http.StatusOK, e.call(t, http.MethodPost, verifyPath, admin.Token, nil, &verified))
	assert.True(t, verified.IsVerified)

	var drift []map[string]any
	require.Equal(t, http.StatusOK, e.call(t, http.MethodGet, "/api/admin/audit", admin.Token, nil, &drift))
	assert.Empty(t, drift)
}

func TestFeatureFlagsAndHealth(t *testing.T) {
	e := newTestEnv(t)
	asha := e.signup(t, "asha", "pune")

	var flags struct {
		Raw       map[string]string `json:"raw"`
		Evaluated map[string]bool   `json:"evaluated"`
		Gates     map[string]string `json:"gates"`
	}
	require.Equal(t, http.StatusOK, e.call(t, http.MethodGet, "/api/flags", asha.Token, nil, &flags))
	assert.Equal(t, "true", flags.Raw["ai_validation"])
	assert.True(t, flags.Evaluated["ai_validation"])
	enabled, listed := flags.Evaluated["email_notifications"]
	assert.True(t, listed)
	assert.False(t, enabled)
	assert.Equal(t, "mailer", flags.Gates["email_notifications"])

	var ready map[string]any
	require.Equal(t, http.StatusOK, e.call(t, http.MethodGet, "/health/ready", "", nil, &ready))
	assert.Equal(t, "healthy", ready["status"])

	e.mr.Close()
	require.Equal(t, http.StatusOK, e.call(t, http.MethodGet, "/health/ready", "", nil, &ready))
	checks := ready["checks"].(map[string]any)
	assert.Equal(t, "unhealthy", checks["redis"])

	assert.Equal(t, http.StatusOK, e.call(t, http.MethodGet, "/health/live", "", nil, nil))
}
