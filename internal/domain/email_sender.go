package domain

import "context"

// EmailMessage is a rendered email with plain text and HTML bodies.
type EmailMessage struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// EmailSender delivers a rendered message through a transport.
type EmailSender interface {
	Send(ctx context.Context, msg *EmailMessage) error
}

// NotificationDispatcher composes and delivers account emails.
type NotificationDispatcher interface {
	// SendVerificationCode delivers code for purpose to email.
	SendVerificationCode(ctx context.Context, email, code string, purpose Purpose) error

	// SendWelcome greets a newly registered user.
	SendWelcome(ctx context.Context, user *User) error
}
