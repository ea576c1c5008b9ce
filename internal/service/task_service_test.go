package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"timebank/internal/featureflags"
	"timebank/internal/integrations"
	"timebank/internal/models"
	"timebank/internal/notifications"
	"timebank/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOfferLifecycle_SettlesOnce(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	creator := testutil.CreateUser(t, f.db, "Asha")
	worker := testutil.CreateUser(t, f.db, "Ravi")

	task := f.createTask(t, creator, models.TaskKindOffer, 30)
	assert.Equal(t, models.TaskStatusOpen, task.Status)
	assert.Equal(t, 30, task.CreditsValue)
	assert.Nil(t, task.AssignedToID)
	assert.Equal(t, "Asha", task.CreatedByName)

	req, err := f.svc.RequestHire(ctx, worker.ID, task.ID, "I have tools")
	require.NoError(t, err)
	assert.Equal(t, models.HireRequestPending, req.Status)
	assert.Equal(t, 30, req.TaskCreditsValue)

	task, err = f.svc.AcceptHireRequest(ctx, creator.ID, task.ID, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusInProgress, task.Status)
	require.NotNil(t, task.AssignedToID)
	assert.Equal(t, worker.ID, *task.AssignedToID)
	assert.Equal(t, 60, testutil.Reload(t, f.db, worker.ID).TimeCredits, "no transfer before settlement")

	task = f.pendingValidation(t, task)
	assert.Equal(t, models.TaskStatusPendingValidation, task.Status)
	require.NotNil(t, task.ConfidenceScore)
	assert.Equal(t, integrations.MockConfidenceScore, *task.ConfidenceScore)
	assert.Equal(t, integrations.MockExplanation, task.ValidationNotes)

	res, err := f.svc.ConfirmCompletion(ctx, creator.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.HandshakeCreatorConfirmed, res.State)
	assert.False(t, res.Settled)

	res, err = f.svc.ConfirmCompletion(ctx, worker.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.HandshakeBoth, res.State)
	assert.True(t, res.Settled)
	assert.Equal(t, models.TaskStatusCompleted, res.Task.Status)
	assert.NotNil(t, res.Task.CompletedAt)

	c := testutil.Reload(t, f.db, creator.ID)
	w := testutil.Reload(t, f.db, worker.ID)
	assert.Equal(t, 90, c.TimeCredits, "offer creator is paid")
	assert.Equal(t, 30, w.TimeCredits, "offer assignee pays")
	assert.Equal(t, 1, c.TotalTasksReceived)
	assert.Equal(t, 0, c.TotalTasksCompleted)
	assert.Equal(t, 1, w.TotalTasksCompleted)
	assert.Equal(t, 0, w.TotalTasksReceived)

	var entry models.CreditTransaction
	require.NoError(t, f.db.Where("task_id = ?", task.ID).First(&entry).Error)
	assert.Equal(t, worker.ID, entry.FromUserID)
	assert.Equal(t, creator.ID, entry.ToUserID)
	assert.Equal(t, 30, entry.Amount)
	assert.Equal(t, models.TransactionTaskCompleted, entry.TransactionType)
	assert.Equal(t, "Completed: Fix my bicycle", entry.Description)

	// Re-confirming a completed task changes nothing.
	res, err = f.svc.ConfirmCompletion(ctx, creator.ID, task.ID)
	require.NoError(t, err)
	assert.False(t, res.Settled)
	assert.Equal(t, int64(1), ledgerRows(t, f.db, task.ID))
	assert.Equal(t, 90, testutil.Reload(t, f.db, creator.ID).TimeCredits)

	assert.Equal(t, 2, f.events.count(notifications.KindUserUpdated))
	assert.Contains(t, f.mail.recipients(), creator.Email)
	assert.Contains(t, f.mail.recipients(), worker.Email)
}

func TestRequestLifecycle_CreatorPays(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	creator := testutil.CreateUser(t, f.db, "Meera")
	helper := testutil.CreateUser(t, f.db, "Karan")

	task := f.createTask(t, creator, models.TaskKindRequest, 45)
	task, err := f.svc.DirectAccept(ctx, helper.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, helper.ID, task.PerformerID())
	assert.Equal(t, "Karan", task.AssignedToName)

	task = f.pendingValidation(t, task)

	_, err = f.svc.ConfirmCompletion(ctx, helper.ID, task.ID)
	require.NoError(t, err)
	res, err := f.svc.ConfirmCompletion(ctx, creator.ID, task.ID)
	require.NoError(t, err)
	require.True(t, res.Settled)

	assert.Equal(t, 15, testutil.Reload(t, f.db, creator.ID).TimeCredits)
	assert.Equal(t, 105, testutil.Reload(t, f.db, helper.ID).TimeCredits)
	assert.Equal(t, creator.ID, res.Entry.FromUserID)
	assert.Equal(t, helper.ID, res.Entry.ToUserID)
}

func TestDirectAccept_InsufficientCredits(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	creator := testutil.CreateUser(t, f.db, "Neha")
	poor := testutil.CreateUser(t, f.db, "Vikram", testutil.WithCredits(40))

	task := f.createTask(t, creator, models.TaskKindRequest, 45)
	_, err := f.svc.DirectAccept(ctx, poor.ID, task.ID)
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeValidation))
	assert.True(t, errors.Is(err, models.ErrInsufficientCredits))
	assert.Equal(t, "insufficient credits", err.Error())

	task, err = f.svc.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusOpen, task.Status)
	assert.Nil(t, task.AssignedToID)
}

func TestDirectAccept_Preconditions(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	creator := testutil.CreateUser(t, f.db, "Neha")
	other := testutil.CreateUser(t, f.db, "Omar")

	request := f.createTask(t, creator, models.TaskKindRequest, 30)
	_, err := f.svc.DirectAccept(ctx, creator.ID, request.ID)
	assert.True(t, models.IsCode(err, models.CodeForbidden))

	offer := f.createTask(t, creator, models.TaskKindOffer, 30)
	_, err = f.svc.DirectAccept(ctx, other.ID, offer.ID)
	assert.True(t, models.IsCode(err, models.CodeValidation))

	_, err = f.svc.DirectAccept(ctx, other.ID, 9999)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestAcceptHireRequest_InsufficientCreditsKeepsRequestPending(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	creator := testutil.CreateUser(t, f.db, "Asha")
	worker := testutil.CreateUser(t, f.db, "Ravi")

	task := f.createTask(t, creator, models.TaskKindOffer, 60)
	req, err := f.svc.RequestHire(ctx, worker.ID, task.ID, "")
	require.NoError(t, err)

	// Balance drops after the request was filed.
	require.NoError(t, f.db.Model(&models.User{}).Where("id = ?", worker.ID).Update("time_credits", 10).Error)

	_, err = f.svc.AcceptHireRequest(ctx, creator.ID, task.ID, req.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInsufficientCredits))

	task, err = f.svc.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusOpen, task.Status)
	assert.Nil(t, task.AssignedToID)

	reqs, err := f.svc.ListHireRequests(ctx, creator.ID, task.ID)
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, models.HireRequestPending, reqs[0].Status)

	// Retry succeeds once the balance recovers.
	require.NoError(t, f.db.Model(&models.User{}).Where("id = ?", worker.ID).Update("time_credits", 60).Error)
	task, err = f.svc.AcceptHireRequest(ctx, creator.ID, task.ID, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusInProgress, task.Status)
}

func TestAcceptHireRequest_LeavesSiblingsPending(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	creator := testutil.CreateUser(t, f.db, "Asha")
	first := testutil.CreateUser(t, f.db, "Ravi")
	second := testutil.CreateUser(t, f.db, "Sita")

	task := f.createTask(t, creator, models.TaskKindOffer, 30)
	r1, err := f.svc.RequestHire(ctx, first.ID, task.ID, "")
	require.NoError(t, err)
	r2, err := f.svc.RequestHire(ctx, second.ID, task.ID, "")
	require.NoError(t, err)

	_, err = f.svc.AcceptHireRequest(ctx, second.ID, task.ID, r1.ID)
	assert.True(t, models.IsCode(err, models.CodeForbidden), "only the creator accepts")

	_, err = f.svc.AcceptHireRequest(ctx, creator.ID, task.ID, r1.ID)
	require.NoError(t, err)

	_, err = f.svc.AcceptHireRequest(ctx, creator.ID, task.ID, r2.ID)
	assert.True(t, models.IsCode(err, models.CodeConflict))

	reqs, err := f.svc.ListHireRequests(ctx, creator.ID, task.ID)
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.Equal(t, models.HireRequestAccepted, reqs[0].Status)
	assert.Equal(t, models.HireRequestPending, reqs[1].Status)

	_, err = f.svc.ListHireRequests(ctx, first.ID, task.ID)
	assert.True(t, models.IsCode(err, models.CodeForbidden))
}

func TestRequestHire_Preconditions(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	creator := testutil.CreateUser(t, f.db, "Asha")
	worker := testutil.CreateUser(t, f.db, "Ravi")

	offer := f.createTask(t, creator, models.TaskKindOffer, 30)
	_, err := f.svc.RequestHire(ctx, creator.ID, offer.ID, "")
	assert.True(t, models.IsCode(err, models.CodeForbidden))

	_, err = f.svc.RequestHire(ctx, worker.ID, offer.ID, "")
	require.NoError(t, err)
	_, err = f.svc.RequestHire(ctx, worker.ID, offer.ID, "again")
	assert.True(t, models.IsCode(err, models.CodeConflict))

	request := f.createTask(t, creator, models.TaskKindRequest, 30)
	_, err = f.svc.RequestHire(ctx, worker.ID, request.ID, "")
	assert.True(t, models.IsCode(err, models.CodeValidation))

	assert.Equal(t, 1, f.events.count(notifications.KindHireRequestCreated))
	assert.Equal(t, []string{creator.Email}, f.mail.recipients())
}

func TestCreateTask_DefaultsAndValidation(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	creator := testutil.CreateUser(t, f.db, "Asha", testutil.WithCity("mumbai"))

	task, err := f.svc.CreateTask(ctx, creator.ID, CreateTaskInput{Title: "Walk my dog", Category: "Pet Care"})
	require.NoError(t, err)
	assert.Equal(t, models.TaskKindOffer, task.Kind)
	assert.Equal(t, 30, task.TimeRequired)
	assert.Equal(t, 30, task.CreditsValue)
	assert.Equal(t, models.UrgencyMedium, task.Urgency)
	assert.Equal(t, "mumbai", task.City)
	assert.Equal(t, models.DefaultCountry, task.Country)

	task, err = f.svc.CreateTask(ctx, creator.ID, CreateTaskInput{
		Title: "Teach chess", Category: "Teaching/Tutoring", City: "  Delhi ", TimeRequired: 15,
	})
	require.NoError(t, err)
	assert.Equal(t, "delhi", task.City)
	assert.Equal(t, 15, task.CreditsValue)

	cases := []CreateTaskInput{
		{Category: "Pet Care"},
		{Title: "x", Category: "Astrology"},
		{Title: "x", Category: "Pet Care", TimeRequired: 20},
		{Title: "x", Category: "Pet Care", Kind: "barter"},
		{Title: "x", Category: "Pet Care", Urgency: "asap"},
	}
	for _, in := range cases {
		_, err := f.svc.CreateTask(ctx, creator.ID, in)
		assert.True(t, models.IsCode(err, models.CodeValidation), "%+v", in)
	}

	nowhere := testutil.CreateUser(t, f.db, "Nomad", testutil.WithCity(""))
	_, err = f.svc.CreateTask(ctx, nowhere.ID, CreateTaskInput{Title: "x", Category: "Other"})
	assert.True(t, models.IsCode(err, models.CodeValidation), "city is required")
}

func TestCancelTask(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	creator := testutil.CreateUser(t, f.db, "Asha")
	other := testutil.CreateUser(t, f.db, "Ravi")

	task := f.createTask(t, creator, models.TaskKindOffer, 30)
	assert.True(t, models.IsCode(f.svc.CancelTask(ctx, other.ID, task.ID), models.CodeForbidden))

	require.NoError(t, f.svc.CancelTask(ctx, creator.ID, task.ID))
	_, err := f.svc.GetTask(ctx, task.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	assert.Equal(t, 60, testutil.Reload(t, f.db, creator.ID).TimeCredits)
	assert.Equal(t, 0, testutil.Reload(t, f.db, creator.ID).TotalTasksReceived)
	var n int64
	require.NoError(t, f.db.Model(&models.CreditTransaction{}).Count(&n).Error)
	assert.Zero(t, n)
	assert.Equal(t, 1, f.events.count(notifications.KindTaskDeleted))

	started := f.inProgressOffer(t, creator, other, 30)
	assert.True(t, models.IsCode(f.svc.CancelTask(ctx, creator.ID, started.ID), models.CodeConflict))
}

func TestEvidence_PerformerOnly(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	creator := testutil.CreateUser(t, f.db, "Asha")
	worker := testutil.CreateUser(t, f.db, "Ravi")
	task := f.inProgressOffer(t, creator, worker, 30)

	url := "https://img.example/before.webp"
	_, err := f.svc.UploadEvidence(ctx, worker.ID, task.ID, EvidenceInput{BeforeURL: &url})
	assert.True(t, models.IsCode(err, models.CodeForbidden), "the offer's creator performs the work")

	_, err = f.svc.SubmitForValidation(ctx, creator.ID, task.ID)
	assert.True(t, models.IsCode(err, models.CodeValidation), "photos are required")

	task, err = f.svc.UploadEvidence(ctx, creator.ID, task.ID, EvidenceInput{BeforeURL: &url})
	require.NoError(t, err)
	assert.Equal(t, url, task.BeforePhotoURL)
	assert.Empty(t, task.AfterPhotoURL)

	// Re-uploading replaces the stored photo.
	replacement := "https://img.example/before-2.webp"
	task, err = f.svc.UploadEvidence(ctx, creator.ID, task.ID, EvidenceInput{BeforeURL: &replacement})
	require.NoError(t, err)
	assert.Equal(t, replacement, task.BeforePhotoURL)

	task, err = f.svc.UploadEvidencePhoto(ctx, creator.ID, task.ID, PhotoAfter, "after.png", []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/photo.webp", task.AfterPhotoURL)

	_, err = f.svc.UploadEvidence(ctx, creator.ID, task.ID, EvidenceInput{})
	assert.True(t, models.IsCode(err, models.CodeValidation))
}

func TestUploadEvidencePhoto_HostFailure(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	creator := testutil.CreateUser(t, f.db, "Asha")
	worker := testutil.CreateUser(t, f.db, "Ravi")
	task := f.inProgressOffer(t, creator, worker, 30)

	f.svc.media = stubHost{err: errors.New("connection refused")}
	_, err := f.svc.UploadEvidencePhoto(ctx, creator.ID, task.ID, PhotoBefore, "b.png", []byte("img"))
	assert.True(t, models.IsCode(err, models.CodeExternal))

	f.svc.media = stubHost{err: integrations.ErrInvalidImage}
	_, err = f.svc.UploadEvidencePhoto(ctx, creator.ID, task.ID, PhotoBefore, "b.txt", []byte("text"))
	assert.True(t, models.IsCode(err, models.CodeValidation))

	task, err = f.svc.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, task.BeforePhotoURL)
}

func TestSubmitForValidation_Collaborator(t *testing.T) {
	ctx := context.Background()

	t.Run("failure leaves the task in progress", func(t *testing.T) {
		f := newTaskFixture(t)
		creator := testutil.CreateUser(t, f.db, "Asha")
		worker := testutil.CreateUser(t, f.db, "Ravi")
		task := f.inProgressOffer(t, creator, worker, 30)
		before, after := "b", "a"
		_, err := f.svc.UploadEvidence(ctx, creator.ID, task.ID, EvidenceInput{BeforeURL: &before, AfterURL: &after})
		require.NoError(t, err)

		v := &stubValidator{err: errors.New("timeout")}
		f.svc.validator = v
		_, err = f.svc.SubmitForValidation(ctx, creator.ID, task.ID)
		assert.True(t, models.IsCode(err, models.CodeExternal))
		assert.Equal(t, 1, v.calls)

		task, err = f.svc.GetTask(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, models.TaskStatusInProgress, task.Status)
	})

	t.Run("a low score does not block", func(t *testing.T) {
		f := newTaskFixture(t)
		creator := testutil.CreateUser(t, f.db, "Asha")
		worker := testutil.CreateUser(t, f.db, "Ravi")
		task := f.inProgressOffer(t, creator, worker, 30)
		f.svc.validator = &stubValidator{res: integrations.ValidationResult{ConfidenceScore: 12, Explanation: "unrelated photo"}}

		task = f.pendingValidation(t, task)
		assert.Equal(t, models.TaskStatusPendingValidation, task.Status)
		assert.Equal(t, 12, *task.ConfidenceScore)
		assert.Equal(t, "unrelated photo", task.ValidationNotes)
	})

	t.Run("flag off skips the call", func(t *testing.T) {
		f := newTaskFixture(t)
		creator := testutil.CreateUser(t, f.db, "Asha")
		worker := testutil.CreateUser(t, f.db, "Ravi")
		task := f.inProgressOffer(t, creator, worker, 30)
		f.svc.validator = integrations.FlaggedValidator{
			Next:  &stubValidator{err: errors.New("must not be called")},
			Flags: featureflags.NewManager("ai_validation=false"),
		}

		task = f.pendingValidation(t, task)
		assert.Equal(t, 0, *task.ConfidenceScore)
		assert.Equal(t, integrations.SkippedExplanation, task.ValidationNotes)
	})
}

func TestConfirmCompletion_Preconditions(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	creator := testutil.CreateUser(t, f.db, "Asha")
	worker := testutil.CreateUser(t, f.db, "Ravi")
	stranger := testutil.CreateUser(t, f.db, "Zoya")
	task := f.inProgressOffer(t, creator, worker, 30)

	_, err := f.svc.ConfirmCompletion(ctx, creator.ID, task.ID)
	assert.True(t, models.IsCode(err, models.CodeConflict), "not yet submitted")

	task = f.pendingValidation(t, task)
	_, err = f.svc.ConfirmCompletion(ctx, stranger.ID, task.ID)
	assert.True(t, models.IsCode(err, models.CodeForbidden))

	res, err := f.svc.ConfirmCompletion(ctx, worker.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.HandshakeAssigneeConfirmed, res.State)

	res, err = f.svc.ConfirmCompletion(ctx, worker.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.HandshakeAssigneeConfirmed, res.State, "re-confirming keeps the state")
	assert.False(t, res.Settled)
	assert.Zero(t, ledgerRows(t, f.db, task.ID))
}

func TestConfirmCompletion_ConcurrentSettlesOnce(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	creator := testutil.CreateUser(t, f.db, "Asha")
	worker := testutil.CreateUser(t, f.db, "Ravi")
	task := f.pendingValidation(t, f.inProgressOffer(t, creator, worker, 30))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		settled int
	)
	for i := 0; i < 8; i++ {
		actor := creator.ID
		if i%2 == 1 {
			actor = worker.ID
		}
		wg.Add(1)
		go func(actor uint) {
			defer wg.Done()
			res, err := f.svc.ConfirmCompletion(ctx, actor, task.ID)
			if err != nil {
				t.Errorf("confirm: %v", err)
				return
			}
			if res.Settled {
				mu.Lock()
				settled++
				mu.Unlock()
			}
		}(actor)
	}
	wg.Wait()

	assert.Equal(t, 1, settled)
	assert.Equal(t, int64(1), ledgerRows(t, f.db, task.ID))
	assert.Equal(t, 90, testutil.Reload(t, f.db, creator.ID).TimeCredits)
	assert.Equal(t, 30, testutil.Reload(t, f.db, worker.ID).TimeCredits)
	assert.Equal(t, 1, testutil.Reload(t, f.db, worker.ID).TotalTasksCompleted)
}

func TestDirectAccept_ConcurrentOnlyFirstWins(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	creator := testutil.CreateUser(t, f.db, "Asha")
	task := f.createTask(t, creator, models.TaskKindRequest, 30)

	helpers := make([]*models.User, 6)
	for i := range helpers {
		helpers[i] = testutil.CreateUser(t, f.db, "Helper")
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		winners   []uint
		conflicts int
	)
	for _, h := range helpers {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			_, err := f.svc.DirectAccept(ctx, id, task.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners = append(winners, id)
			case models.IsCode(err, models.CodeConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(h.ID)
	}
	wg.Wait()

	require.Len(t, winners, 1)
	assert.Equal(t, len(helpers)-1, conflicts)

	got, err := f.svc.GetTask(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AssignedToID)
	assert.Equal(t, winners[0], *got.AssignedToID)
}

func TestAcceptHireRequest_ConcurrentOnlyOneAccepted(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	creator := testutil.CreateUser(t, f.db, "Asha")
	task := f.createTask(t, creator, models.TaskKindOffer, 30)

	requestIDs := make([]uint, 5)
	for i := range requestIDs {
		bidder := testutil.CreateUser(t, f.db, "Bidder")
		req, err := f.svc.RequestHire(ctx, bidder.ID, task.ID, "pick me")
		require.NoError(t, err)
		requestIDs[i] = req.ID
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
	)
	for _, id := range requestIDs {
		wg.Add(1)
		go func(requestID uint) {
			defer wg.Done()
			_, err := f.svc.AcceptHireRequest(ctx, creator.ID, task.ID, requestID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case models.IsCode(err, models.CodeConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, len(requestIDs)-1, conflicts)

	reqs, err := f.svc.ListHireRequests(ctx, creator.ID, task.ID)
	require.NoError(t, err)
	accepted := 0
	for _, r := range reqs {
		if r.Status == models.HireRequestAccepted {
			accepted++
		}
	}
	assert.Equal(t, 1, accepted)

	got, err := f.svc.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusInProgress, got.Status)
	require.NotNil(t, got.AssignedToID)
}

func TestConfirmCompletion_FailedSettlementRollsBack(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	creator := testutil.CreateUser(t, f.db, "Asha")
	worker := testutil.CreateUser(t, f.db, "Ravi")
	task := f.pendingValidation(t, f.inProgressOffer(t, creator, worker, 30))

	require.NoError(t, f.db.Exec(`CREATE TRIGGER fail_ledger BEFORE INSERT ON credit_transactions
		BEGIN SELECT RAISE(ABORT, 'ledger unavailable'); END`).Error)

	_, err := f.svc.ConfirmCompletion(ctx, creator.ID, task.ID)
	require.NoError(t, err)
	_, err = f.svc.ConfirmCompletion(ctx, worker.ID, task.ID)
	require.Error(t, err)

	got, err := f.svc.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusPendingValidation, got.Status)
	assert.Nil(t, got.CompletedAt)

	c := testutil.Reload(t, f.db, creator.ID)
	w := testutil.Reload(t, f.db, worker.ID)
	assert.Equal(t, 60, c.TimeCredits)
	assert.Equal(t, 60, w.TimeCredits)
	assert.Zero(t, c.TotalTasksReceived)
	assert.Zero(t, w.TotalTasksCompleted)
	assert.Zero(t, ledgerRows(t, f.db, task.ID))

	require.NoError(t, f.db.Exec("DROP TRIGGER fail_ledger").Error)
	res, err := f.svc.ConfirmCompletion(ctx, worker.ID, task.ID)
	require.NoError(t, err)
	assert.True(t, res.Settled)
	assert.Equal(t, 90, testutil.Reload(t, f.db, creator.ID).TimeCredits)
	assert.Equal(t, 30, testutil.Reload(t, f.db, worker.ID).TimeCredits)
	assert.Equal(t, int64(1), ledgerRows(t, f.db, task.ID))
}

func TestOpenTasksNeverHaveAssignee(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	creator := testutil.CreateUser(t, f.db, "Asha")
	worker := testutil.CreateUser(t, f.db, "Ravi")
	f.createTask(t, creator, models.TaskKindOffer, 15)
	f.inProgressOffer(t, creator, worker, 30)
	f.createTask(t, creator, models.TaskKindRequest, 60)

	tasks, err := f.svc.MyTasks(ctx, creator.ID, nil)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	for _, task := range tasks {
		if task.Status == models.TaskStatusOpen {
			assert.Nil(t, task.AssignedToID, "task %d", task.ID)
		}
	}
	mine, err := f.svc.MyTasks(ctx, worker.ID, nil)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}
