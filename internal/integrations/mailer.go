package integrations

import (
	"context"
	"fmt"
	"strings"

	"timebank/internal/middleware"
)

// Email is one outgoing notification.
type Email struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Mailer delivers an email.
type Mailer interface {
	Send(ctx context.Context, e Email) error
}

// LogMailer writes mails to the structured log instead of sending them.
type LogMailer struct {
	From string
}

func (m LogMailer) Send(ctx context.Context, e Email) error {
	if strings.TrimSpace(e.To) == "" {
		return fmt.Errorf("email %q has no recipient", e.Subject)
	}
	middleware.Logger.InfoContext(ctx, "email sent",
		"from", m.From, "to", e.To, "subject", e.Subject, "body_len", len(e.Body))
	return nil
}

// Notification mails sent by the task workflow.

func HireRequestEmail(to, taskTitle, requesterName, message string) Email {
	return Email{
		To:      to,
		Subject: fmt.Sprintf("New hire request for %q", taskTitle),
		Body:    fmt.Sprintf("%s wants to hire you for %q.\n\n%s", requesterName, taskTitle, message),
	}
}

func HireAcceptedEmail(to, taskTitle string) Email {
	return Email{
		To:      to,
		Subject: fmt.Sprintf("Your request for %q was accepted", taskTitle),
		Body:    fmt.Sprintf("The task %q is now in progress.", taskTitle),
	}
}

func TaskCompletedEmail(to, taskTitle string, credits int, received bool) Email {
	verb := "paid"
	if received {
		verb = "received"
	}
	return Email{
		To:      to,
		Subject: fmt.Sprintf("%q is complete", taskTitle),
		Body:    fmt.Sprintf("Both parties confirmed %q. You %s %d time credits.", taskTitle, verb, credits),
	}
}
