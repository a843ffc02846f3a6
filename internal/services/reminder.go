package services

import (
	"fmt"

	"lifejournal/internal/logging"
	"lifejournal/internal/metrics"
	"lifejournal/internal/models"
	"lifejournal/pkg/mailgun"
)

// ReminderSender delivers the email that asks a user to write an entry.
type ReminderSender interface {
	SendReminder(to, signature string, forDate models.Date) error
}

// Mailer sends a single email.
type Mailer interface {
	Send(msg mailgun.Message) error
}

// ReminderBody is the text of every reminder email.
const ReminderBody = "Just reply to this email with your entry"

// ReminderSubject builds the day-specific subject line, for example
// "It's Monday, Jan 5 - How did your day go?".
func ReminderSubject(forDate models.Date) string {
	return fmt.Sprintf("It's %s - How did your day go?", forDate.Format("Monday, Jan 2"))
}

// ReplyAddress is the per-entry address a user replies to.
func ReplyAddress(signature, domain string) string {
	return fmt.Sprintf("%s@%s", signature, domain)
}

// MailReminderSender sends reminders through a Mailer. The reply address
// and the Message-Id both carry the entry signature.
type MailReminderSender struct {
	mailer   Mailer
	domain   string
	fromName string
}

// NewMailReminderSender creates a MailReminderSender.
func NewMailReminderSender(mailer Mailer, domain, fromName string) *MailReminderSender {
	return &MailReminderSender{
		mailer:   mailer,
		domain:   domain,
		fromName: fromName,
	}
}

// SendReminder implements ReminderSender.
func (s *MailReminderSender) SendReminder(to, signature string, forDate models.Date) error {
	reply := ReplyAddress(signature, s.domain)
	msg := mailgun.Message{
		From:    fmt.Sprintf("%s <%s>", s.fromName, reply),
		To:      to,
		Subject: ReminderSubject(forDate),
		Text:    ReminderBody,
		Headers: map[string]string{"Message-Id": "<" + reply + ">"},
	}

	if err := s.mailer.Send(msg); err != nil {
		metrics.RemindersSent.WithLabelValues(metrics.ResultFailed).Inc()
		return fmt.Errorf("failed to send reminder for entry %s: %w", signature, err)
	}
	metrics.RemindersSent.WithLabelValues(metrics.ResultSent).Inc()
	return nil
}

// LogReminderSender only logs reminders. It is used when no mail provider
// is configured.
type LogReminderSender struct{}

// SendReminder implements ReminderSender.
func (LogReminderSender) SendReminder(to, signature string, forDate models.Date) error {
	metrics.RemindersSent.WithLabelValues(metrics.ResultSkipped).Inc()
	logging.Info().
		Str("to", to).
		Str("signature", signature).
		Str("subject", ReminderSubject(forDate)).
		Msg("mail delivery disabled, reminder not sent")
	return nil
}
