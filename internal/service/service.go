// Package service holds the task lifecycle engine and the messaging, ledger
// and account workflows built on the repositories.
package service

import (
	"context"

	"timebank/internal/integrations"
	"timebank/internal/middleware"
	"timebank/internal/notifications"
	"timebank/internal/repository"

	"gorm.io/gorm"
)

// Repositories groups the data access layer shared by the services.
type Repositories struct {
	Users        repository.UserRepository
	Tasks        repository.TaskRepository
	HireRequests repository.HireRequestRepository
	Ledger       repository.LedgerRepository
	Chats        repository.ChatRepository
	Community    repository.CommunityRepository
}

// NewRepositories builds every gorm repository over db.
func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:        repository.NewUserRepository(db),
		Tasks:        repository.NewTaskRepository(db),
		HireRequests: repository.NewHireRequestRepository(db),
		Ledger:       repository.NewLedgerRepository(db),
		Chats:        repository.NewChatRepository(db),
		Community:    repository.NewCommunityRepository(db),
	}
}

// EventPublisher receives change events after a write commits.
type EventPublisher interface {
	Publish(ctx context.Context, e notifications.Event)
}

// MailQueue accepts fire-and-forget notification mails.
type MailQueue interface {
	Enqueue(ctx context.Context, userID uint, e integrations.Email) error
}

// ValidatorProvider resolves the evidence validator for a submitting user.
type ValidatorProvider interface {
	ForUser(userID uint) integrations.Validator
}

// txRepos rebinds the repositories to an open transaction. Every statement
// inside the transaction must go through these.
type txRepos struct {
	users  repository.UserRepository
	tasks  repository.TaskRepository
	hires  repository.HireRequestRepository
	ledger repository.LedgerRepository
	chats  repository.ChatRepository
}

func (r Repositories) withTx(tx *gorm.DB) txRepos {
	return txRepos{
		users:  r.Users.WithTx(tx),
		tasks:  r.Tasks.WithTx(tx),
		hires:  r.HireRequests.WithTx(tx),
		ledger: r.Ledger.WithTx(tx),
		chats:  r.Chats.WithTx(tx),
	}
}

func publish(ctx context.Context, p EventPublisher, e notifications.Event) {
	if p == nil {
		return
	}
	p.Publish(ctx, e)
}

// sendMail queues a mail; failures are logged and never surface to the caller.
func sendMail(ctx context.Context, q MailQueue, userID uint, e integrations.Email) {
	if q == nil || e.To == "" {
		return
	}
	if err := q.Enqueue(ctx, userID, e); err != nil {
		middleware.Logger.WarnContext(ctx, "mail not queued", "user_id", userID, "subject", e.Subject, "error", err)
	}
}
