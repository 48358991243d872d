package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuition-hub/tuition-fee-hub/internal/domain/billing"
	"github.com/tuition-hub/tuition-fee-hub/internal/domain/shared"
	"github.com/tuition-hub/tuition-fee-hub/internal/domain/student"
	"github.com/tuition-hub/tuition-fee-hub/pkg/timeutil"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type capturePublisher struct {
	mu     sync.Mutex
	events []shared.Event
}

func (p *capturePublisher) Publish(_ context.Context, event shared.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

type captureChannel struct {
	mu       sync.Mutex
	messages []ReminderMessage
}

func (c *captureChannel) Name() string { return "capture" }

func (c *captureChannel) Deliver(_ context.Context, msg ReminderMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
	return nil
}

func overdueAccount(t *testing.T, phone string) billing.StudentAccount {
	t.Helper()

	fee, err := shared.MoneyFromString("400")
	require.NoError(t, err)

	s, err := student.NewStudent(student.NewStudentParams{
		ID:            shared.StudentID(uuid.New().String()),
		DisplayName:   "Dias Akhmetov",
		Phone:         shared.Phone(phone),
		AdmissionDate: timeutil.Date(2024, time.January, 15),
		MonthlyFee:    fee,
	})
	require.NoError(t, err)

	return billing.StudentAccount{
		Student: s,
		Liability: billing.Liability{
			PendingMonths: 2,
			PendingAmount: fee.MulInt(2),
		},
	}
}

func TestReminderService_ComposeLinks(t *testing.T) {
	svc := NewReminderService(nil, nil, quietLogger())
	today := timeutil.Date(2024, time.March, 10)

	msg := svc.Compose(overdueAccount(t, "+77015551234"), today)

	assert.True(t, msg.Overdue)
	assert.Contains(t, msg.Text, "2 monthly cycles")
	assert.Contains(t, msg.Text, "800.00")
	assert.Contains(t, msg.WhatsAppLink, "https://wa.me/77015551234?text=")
	assert.Equal(t, "tel:+77015551234", msg.TelLink)
}

func TestReminderService_ComposeWithoutPhone(t *testing.T) {
	svc := NewReminderService(nil, nil, quietLogger())

	msg := svc.Compose(overdueAccount(t, ""), timeutil.Date(2024, time.March, 10))

	assert.Empty(t, msg.WhatsAppLink)
	assert.Empty(t, msg.TelLink)
}

func TestReminderService_DispatchDelivers(t *testing.T) {
	channel := &captureChannel{}
	publisher := &capturePublisher{}
	svc := NewReminderService(channel, publisher, quietLogger())

	_, sent, err := svc.Dispatch(context.Background(), overdueAccount(t, "+77015551234"), timeutil.Date(2024, time.March, 10))
	require.NoError(t, err)
	assert.True(t, sent)

	require.Len(t, channel.messages, 1)
	assert.Equal(t, "Dias Akhmetov", channel.messages[0].DisplayName)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, shared.EventReminderPrepared, publisher.events[0].EventType())
}

func TestReminderService_DispatchSkipsWithoutPhone(t *testing.T) {
	channel := &captureChannel{}
	publisher := &capturePublisher{}
	svc := NewReminderService(channel, publisher, quietLogger())

	_, sent, err := svc.Dispatch(context.Background(), overdueAccount(t, ""), timeutil.Date(2024, time.March, 10))
	require.NoError(t, err)
	assert.False(t, sent)
	assert.Empty(t, channel.messages)

	require.Len(t, publisher.events, 1)
	skipped, ok := publisher.events[0].(*shared.ReminderSkippedEvent)
	require.True(t, ok)
	assert.Equal(t, shared.ErrMissingContactDetails.Message, skipped.Reason)
}
