// Package service contains infrastructure-level services that sit between
// the application layer and external delivery channels.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/tuition-hub/tuition-fee-hub/internal/domain/billing"
	"github.com/tuition-hub/tuition-fee-hub/internal/domain/shared"
	"github.com/tuition-hub/tuition-fee-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// REMINDER MESSAGE
// ══════════════════════════════════════════════════════════════════════════════

// ReminderMessage is a composed payment reminder for one student, ready for
// delivery. Links are prebuilt so any channel (or a human operator reading
// the log) can contact the guardian with one tap.
type ReminderMessage struct {
	StudentID     string       `json:"student_id"`
	DisplayName   string       `json:"display_name"`
	Phone         shared.Phone `json:"phone,omitempty"`
	PendingMonths int          `json:"pending_months"`
	PendingAmount shared.Money `json:"pending_amount"`
	NextDueDate   time.Time    `json:"next_due_date"`
	Overdue       bool         `json:"overdue"`
	Text          string       `json:"text"`
	WhatsAppLink  string       `json:"whatsapp_link,omitempty"`
	TelLink       string       `json:"tel_link,omitempty"`
	PreparedAt    time.Time    `json:"prepared_at"`
}

// ReminderChannel delivers a composed reminder.
type ReminderChannel interface {
	// Name identifies the channel in logs and stats.
	Name() string

	// Deliver sends one reminder. Implementations must be safe for
	// concurrent use.
	Deliver(ctx context.Context, msg ReminderMessage) error
}

// ══════════════════════════════════════════════════════════════════════════════
// REMINDER SERVICE
// ══════════════════════════════════════════════════════════════════════════════

// ReminderService composes reminder messages from annotated accounts and
// pushes them through a delivery channel.
type ReminderService struct {
	channel        ReminderChannel
	eventPublisher shared.EventPublisher
	logger         *slog.Logger
}

// NewReminderService creates a ReminderService. A nil channel falls back to
// the log channel; a nil publisher discards events.
func NewReminderService(channel ReminderChannel, eventPublisher shared.EventPublisher, logger *slog.Logger) *ReminderService {
	if logger == nil {
		logger = slog.Default()
	}
	if channel == nil {
		channel = NewLogChannel(logger)
	}
	if eventPublisher == nil {
		eventPublisher = shared.NoopPublisher{}
	}

	return &ReminderService{
		channel:        channel,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// Compose builds the reminder message for one account as of the given day.
func (s *ReminderService) Compose(account billing.StudentAccount, today time.Time) ReminderMessage {
	stud := account.Student

	msg := ReminderMessage{
		StudentID:     stud.ID.String(),
		DisplayName:   stud.DisplayName,
		Phone:         stud.Phone,
		PendingMonths: account.Liability.PendingMonths,
		PendingAmount: account.Liability.PendingAmount,
		NextDueDate:   account.NextDueDate(),
		Overdue:       account.IsOverdue(),
		PreparedAt:    time.Now().UTC(),
	}
	msg.Text = composeText(msg, today)

	if !stud.Phone.IsEmpty() {
		digits := stud.Phone.Digits()
		msg.WhatsAppLink = "https://wa.me/" + digits + "?text=" + url.QueryEscape(msg.Text)
		msg.TelLink = "tel:+" + digits
	}

	return msg
}

// Dispatch composes and delivers a reminder for one account. Accounts without
// a contact phone are skipped, not failed: the roster report still shows them.
func (s *ReminderService) Dispatch(ctx context.Context, account billing.StudentAccount, today time.Time) (ReminderMessage, bool, error) {
	msg := s.Compose(account, today)

	if account.Student.Phone.IsEmpty() {
		_ = s.eventPublisher.Publish(ctx, shared.NewReminderSkippedEvent(account.Student.ID, shared.ErrMissingContactDetails.Message))
		s.logger.Warn("reminder skipped",
			"reason", shared.ErrMissingContactDetails.Message,
			"student_id", msg.StudentID,
			"display_name", msg.DisplayName,
		)
		return msg, false, nil
	}

	if err := s.channel.Deliver(ctx, msg); err != nil {
		return msg, false, fmt.Errorf("deliver reminder via %s: %w", s.channel.Name(), err)
	}

	_ = s.eventPublisher.Publish(ctx, shared.NewReminderPreparedEvent(
		account.Student.ID, msg.PendingMonths, msg.PendingAmount, msg.Overdue))

	return msg, true, nil
}

// composeText renders the guardian-facing message body.
func composeText(msg ReminderMessage, today time.Time) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Dear guardian of %s,\n\n", msg.DisplayName))

	if msg.Overdue {
		cycles := "cycle"
		if msg.PendingMonths > 1 {
			cycles = "cycles"
		}
		sb.WriteString(fmt.Sprintf(
			"Tuition for %d monthly %s is pending, totalling %s.\n",
			msg.PendingMonths, cycles, msg.PendingAmount.String(),
		))
		sb.WriteString("Please settle the outstanding amount at your earliest convenience.\n")
	} else {
		sb.WriteString(fmt.Sprintf(
			"This is a friendly heads-up: the next tuition cycle is due on %s.\n",
			timeutil.FormatDateStr(msg.NextDueDate),
		))
	}

	sb.WriteString(fmt.Sprintf("\nAs of %s. Thank you!", timeutil.FormatDateStr(today)))

	return sb.String()
}

// ══════════════════════════════════════════════════════════════════════════════
// LOG CHANNEL
// ══════════════════════════════════════════════════════════════════════════════

// LogChannel writes reminders to the structured log. It is the default
// channel: the front office works off the log until a messaging gateway is
// connected.
type LogChannel struct {
	logger *slog.Logger
}

// NewLogChannel creates a LogChannel.
func NewLogChannel(logger *slog.Logger) *LogChannel {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogChannel{logger: logger}
}

// Name identifies the channel.
func (c *LogChannel) Name() string {
	return "log"
}

// Deliver writes the reminder to the log.
func (c *LogChannel) Deliver(ctx context.Context, msg ReminderMessage) error {
	c.logger.Info("payment reminder",
		"student_id", msg.StudentID,
		"display_name", msg.DisplayName,
		"pending_months", msg.PendingMonths,
		"pending_amount", msg.PendingAmount.String(),
		"next_due_date", timeutil.FormatDateStr(msg.NextDueDate),
		"overdue", msg.Overdue,
		"whatsapp", msg.WhatsAppLink,
		"tel", msg.TelLink,
	)
	return nil
}
