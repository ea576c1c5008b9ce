// Package seed fills a database with a believable demo marketplace.
package seed

import (
	"context"
	"errors"
	"fmt"

	"timebank/internal/featureflags"
	"timebank/internal/integrations"
	"timebank/internal/middleware"
	"timebank/internal/models"
	"timebank/internal/service"

	"gorm.io/gorm"
)

// Options controls the size and shape of a seed run.
type Options struct {
	Users int
	Tasks int
	// Seed makes names and choices reproducible. Zero picks a random seed.
	Seed  int64
	Clean bool
	// SkipBcrypt stores the demo password in plain text. Tests only.
	SkipBcrypt bool
	// DryRun builds entities without writing users. Only Factory honours it.
	DryRun bool
}

// Summary counts what a run produced.
type Summary struct {
	Users     int
	Tasks     int
	Accepted  int
	Completed int
	Chats     int
	Messages  int
	Posts     int
}

// cleanOrder respects foreign keys: children first.
var cleanOrder = []string{
	"credit_transactions",
	"hire_requests",
	"messages",
	"chat_participants",
	"chats",
	"community_messages",
	"tasks",
	"users",
}

// Clean removes every marketplace row.
func Clean(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range cleanOrder {
			if err := tx.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
				return fmt.Errorf("clean %s: %w", table, err)
			}
		}
		return nil
	})
}

// Seed creates users directly and drives every task, chat and community post
// through the services so balances and the ledger agree afterwards.
func Seed(ctx context.Context, db *gorm.DB, opts Options) (*Summary, error) {
	if opts.Users < 2 {
		return nil, errors.New("seed needs at least two users")
	}
	if opts.Clean {
		middleware.Logger.InfoContext(ctx, "cleaning database")
		if err := Clean(ctx, db); err != nil {
			return nil, err
		}
	}
	opts.DryRun = false

	f := NewFactory(db, opts)
	repos := service.NewRepositories(db)
	tasks := service.NewTaskService(db, repos, service.TaskServiceDeps{
		Validator: integrations.FlaggedValidator{
			Next:  integrations.MockValidator{},
			Flags: featureflags.NewManager(featureflags.AIValidation + "=on"),
		},
	})
	chats := service.NewChatService(db, repos, nil)
	community := service.NewCommunityService(repos, nil, nil)

	sum := &Summary{}
	users := make([]*models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		kind := models.AccountIndividual
		if i > 0 && i%10 == 0 {
			kind = models.AccountOrganization
		}
		u, err := f.CreateUser(kind)
		if err != nil {
			return sum, fmt.Errorf("create user: %w", err)
		}
		users = append(users, u)
		sum.Users++
	}
	middleware.Logger.InfoContext(ctx, "seeded users", "count", sum.Users)

	for i := 0; i < opts.Tasks; i++ {
		creator := users[f.faker.Number(0, len(users)-1)]
		task, err := tasks.CreateTask(ctx, creator.ID, f.BuildTaskInput())
		if err != nil {
			return sum, fmt.Errorf("create task: %w", err)
		}
		sum.Tasks++

		// Roughly a third stay open.
		if f.faker.Number(1, 3) == 1 {
			continue
		}
		helper := pickOther(f, users, creator.ID)
		matched, err := f.match(ctx, tasks, task, helper)
		if err != nil {
			if models.IsCode(err, models.CodeValidation) {
				middleware.Logger.DebugContext(ctx, "skipped match", "task_id", task.ID, "error", err)
				continue
			}
			return sum, err
		}
		sum.Accepted++

		if f.faker.Bool() {
			continue
		}
		if err := complete(ctx, tasks, matched); err != nil {
			return sum, err
		}
		sum.Completed++
	}
	middleware.Logger.InfoContext(ctx, "seeded tasks",
		"count", sum.Tasks, "accepted", sum.Accepted, "completed", sum.Completed)

	for i := 0; i < len(users)/2; i++ {
		a := users[f.faker.Number(0, len(users)-1)]
		b := pickOther(f, users, a.ID)
		chat, err := chats.FindOrCreate(ctx, a.ID, b.ID)
		if err != nil {
			return sum, fmt.Errorf("create chat: %w", err)
		}
		sum.Chats++
		for j := f.faker.Number(1, 5); j > 0; j-- {
			sender := a
			if j%2 == 0 {
				sender = b
			}
			if _, err := chats.SendMessage(ctx, chat.ID, sender.ID, f.Chatter()); err != nil {
				return sum, fmt.Errorf("send message: %w", err)
			}
			sum.Messages++
		}
	}

	for _, u := range users {
		if u.City == "" || !f.faker.Bool() {
			continue
		}
		if _, err := community.Post(ctx, u.ID, u.City, f.Chatter()); err != nil {
			return sum, fmt.Errorf("post community message: %w", err)
		}
		sum.Posts++
	}
	middleware.Logger.InfoContext(ctx, "seeding complete",
		"chats", sum.Chats, "messages", sum.Messages, "posts", sum.Posts)
	return sum, nil
}

func pickOther(f *Factory, users []*models.User, not uint) *models.User {
	for {
		u := users[f.faker.Number(0, len(users)-1)]
		if u.ID != not {
			return u
		}
	}
}

// match assigns helper to task the way the marketplace would: offers go
// through a hire request, requests are accepted directly.
func (f *Factory) match(ctx context.Context, tasks *service.TaskService, task *models.Task, helper *models.User) (*models.Task, error) {
	if task.Kind == models.TaskKindRequest {
		return tasks.DirectAccept(ctx, helper.ID, task.ID)
	}
	req, err := tasks.RequestHire(ctx, helper.ID, task.ID, f.faker.Sentence(8))
	if err != nil {
		return nil, err
	}
	return tasks.AcceptHireRequest(ctx, task.CreatedByID, task.ID, req.ID)
}

func complete(ctx context.Context, tasks *service.TaskService, task *models.Task) error {
	performer := task.PerformerID()
	before := fmt.Sprintf("https://picsum.photos/seed/%d-before/640/480", task.ID)
	after := fmt.Sprintf("https://picsum.photos/seed/%d-after/640/480", task.ID)
	if _, err := tasks.UploadEvidence(ctx, performer, task.ID, service.EvidenceInput{
		BeforeURL: &before, AfterURL: &after,
	}); err != nil {
		return fmt.Errorf("upload evidence: %w", err)
	}
	if _, err := tasks.SubmitForValidation(ctx, performer, task.ID); err != nil {
		return fmt.Errorf("submit for validation: %w", err)
	}
	for _, party := range []uint{task.CreatedByID, *task.AssignedToID} {
		if _, err := tasks.ConfirmCompletion(ctx, party, task.ID); err != nil {
			return fmt.Errorf("confirm completion: %w", err)
		}
	}
	return nil
}
