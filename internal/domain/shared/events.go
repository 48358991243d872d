// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"context"
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Each event represents something significant that
// happened in the domain; infrastructure reacts to them (cache invalidation,
// reminder dispatch logging) without the command handlers knowing about it.
const (
	// Student events
	EventStudentRegistered EventType = "student.registered"
	EventStudentUpdated    EventType = "student.updated"
	EventStudentCancelled  EventType = "student.cancelled"
	EventFeeChanged        EventType = "student.fee_changed"

	// Billing events
	EventPaymentRecorded EventType = "billing.payment_recorded"

	// Reminder events
	EventReminderPrepared EventType = "reminder.prepared"
	EventReminderSkipped  EventType = "reminder.skipped"

	// System events
	EventRosterCacheRefreshed EventType = "system.roster_cache_refreshed"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	AggregateId string    `json:"aggregate_id"`
}

// NewBaseEvent creates a BaseEvent stamped with the current UTC time.
func NewBaseEvent(t EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        t,
		Timestamp:   time.Now().UTC(),
		AggregateId: aggregateID,
	}
}

// EventType returns the type of the event.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt returns when the event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID returns the ID of the aggregate that produced this event.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// Payload returns the event data as a map for serialization.
func (e BaseEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"type":         string(e.Type),
		"timestamp":    e.Timestamp,
		"aggregate_id": e.AggregateId,
	}
}

// StudentRegisteredEvent fires when a new student joins the roster.
type StudentRegisteredEvent struct {
	BaseEvent
	DisplayName   string    `json:"display_name"`
	AdmissionDate time.Time `json:"admission_date"`
	MonthlyFee    Money     `json:"monthly_fee"`
}

// NewStudentRegisteredEvent creates a StudentRegisteredEvent.
func NewStudentRegisteredEvent(studentID StudentID, displayName string, admission time.Time, fee Money) *StudentRegisteredEvent {
	return &StudentRegisteredEvent{
		BaseEvent:     NewBaseEvent(EventStudentRegistered, studentID.String()),
		DisplayName:   displayName,
		AdmissionDate: admission,
		MonthlyFee:    fee,
	}
}

// PaymentRecordedEvent fires when a payment record is persisted.
type PaymentRecordedEvent struct {
	BaseEvent
	PaymentID     string    `json:"payment_id"`
	PaidThrough   time.Time `json:"paid_through"`
	MonthsCleared int       `json:"months_cleared"`
	Amount        Money     `json:"amount"`
}

// NewPaymentRecordedEvent creates a PaymentRecordedEvent.
func NewPaymentRecordedEvent(studentID StudentID, paymentID PaymentID, paidThrough time.Time, monthsCleared int, amount Money) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseEvent:     NewBaseEvent(EventPaymentRecorded, studentID.String()),
		PaymentID:     paymentID.String(),
		PaidThrough:   paidThrough,
		MonthsCleared: monthsCleared,
		Amount:        amount,
	}
}

// StudentCancelledEvent fires when a student's enrolment ends.
type StudentCancelledEvent struct {
	BaseEvent
	CancellationDate time.Time `json:"cancellation_date"`
}

// NewStudentCancelledEvent creates a StudentCancelledEvent.
func NewStudentCancelledEvent(studentID StudentID, cancelled time.Time) *StudentCancelledEvent {
	return &StudentCancelledEvent{
		BaseEvent:        NewBaseEvent(EventStudentCancelled, studentID.String()),
		CancellationDate: cancelled,
	}
}

// FeeChangedEvent fires when a student's monthly fee is updated.
type FeeChangedEvent struct {
	BaseEvent
	OldFee Money `json:"old_fee"`
	NewFee Money `json:"new_fee"`
}

// NewFeeChangedEvent creates a FeeChangedEvent.
func NewFeeChangedEvent(studentID StudentID, oldFee, newFee Money) *FeeChangedEvent {
	return &FeeChangedEvent{
		BaseEvent: NewBaseEvent(EventFeeChanged, studentID.String()),
		OldFee:    oldFee,
		NewFee:    newFee,
	}
}

// ReminderPreparedEvent fires when a payment reminder has been composed and
// handed to a delivery channel.
type ReminderPreparedEvent struct {
	BaseEvent
	PendingMonths int   `json:"pending_months"`
	PendingAmount Money `json:"pending_amount"`
	Overdue       bool  `json:"overdue"`
}

// NewReminderPreparedEvent creates a ReminderPreparedEvent.
func NewReminderPreparedEvent(studentID StudentID, pendingMonths int, pendingAmount Money, overdue bool) *ReminderPreparedEvent {
	return &ReminderPreparedEvent{
		BaseEvent:     NewBaseEvent(EventReminderPrepared, studentID.String()),
		PendingMonths: pendingMonths,
		PendingAmount: pendingAmount,
		Overdue:       overdue,
	}
}

// ReminderSkippedEvent fires when a student due for contact could not be
// reminded.
type ReminderSkippedEvent struct {
	BaseEvent
	Reason string `json:"reason"`
}

// NewReminderSkippedEvent creates a ReminderSkippedEvent.
func NewReminderSkippedEvent(studentID StudentID, reason string) *ReminderSkippedEvent {
	return &ReminderSkippedEvent{
		BaseEvent: NewBaseEvent(EventReminderSkipped, studentID.String()),
		Reason:    reason,
	}
}

// RosterCacheRefreshedEvent fires when a fresh roster snapshot has been
// computed and stored.
type RosterCacheRefreshedEvent struct {
	BaseEvent
	Day        time.Time `json:"day"`
	RosterSize int       `json:"roster_size"`
}

// NewRosterCacheRefreshedEvent creates a RosterCacheRefreshedEvent.
func NewRosterCacheRefreshedEvent(day time.Time, rosterSize int) *RosterCacheRefreshedEvent {
	return &RosterCacheRefreshedEvent{
		BaseEvent:  NewBaseEvent(EventRosterCacheRefreshed, "roster"),
		Day:        day,
		RosterSize: rosterSize,
	}
}

// EventPublisher publishes domain events to interested subscribers.
type EventPublisher interface {
	// Publish delivers an event. Implementations must not block the caller
	// on slow subscribers.
	Publish(ctx context.Context, event Event) error
}

// EventHandler handles a single domain event.
type EventHandler func(ctx context.Context, event Event) error

// EventBus distributes events to subscribed handlers.
type EventBus interface {
	EventPublisher

	// Subscribe registers a handler for a specific event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error

	// Close shuts the bus down, waiting for in-flight handlers.
	Close() error
}

// NoopPublisher discards all events. Useful in tests and tools that do not
// need the event pipeline.
type NoopPublisher struct{}

// Publish implements EventPublisher.
func (NoopPublisher) Publish(ctx context.Context, event Event) error {
	return nil
}
