package messaging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuition-hub/tuition-fee-hub/internal/domain/billing"
	"github.com/tuition-hub/tuition-fee-hub/internal/domain/shared"
	"github.com/tuition-hub/tuition-fee-hub/pkg/retry"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSyncBus() *InMemoryEventBus {
	return NewInMemoryEventBus(InMemoryEventBusConfig{
		AsyncMode:     false,
		EnableMetrics: true,
		Logger:        discardLogger(),
	})
}

func TestInMemoryEventBus_RoutesByType(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()

	var typed, global int
	err := bus.Subscribe(shared.EventPaymentRecorded, func(ctx context.Context, e shared.Event) error {
		typed++
		return nil
	})
	require.NoError(t, err)

	err = bus.SubscribeAll(func(ctx context.Context, e shared.Event) error {
		global++
		return nil
	})
	require.NoError(t, err)

	event := shared.NewStudentCancelledEvent("stu-1", time.Now())
	require.NoError(t, bus.Publish(context.Background(), event))

	assert.Equal(t, 0, typed, "typed handler must not see other event types")
	assert.Equal(t, 1, global)

	payment := shared.NewPaymentRecordedEvent("stu-1", "pay-1", time.Now(), 1, shared.ZeroMoney)
	require.NoError(t, bus.Publish(context.Background(), payment))

	assert.Equal(t, 1, typed)
	assert.Equal(t, 2, global)
	assert.Equal(t, int64(2), bus.Metrics().Snapshot().TotalPublished)
}

func TestInMemoryEventBus_ClosedRejectsPublish(t *testing.T) {
	bus := newSyncBus()
	require.NoError(t, bus.Close())

	event := shared.NewStudentCancelledEvent("stu-1", time.Now())
	err := bus.Publish(context.Background(), event)
	assert.ErrorIs(t, err, ErrEventBusClosed)
}

func TestDispatcher_ExhaustedRetriesLandInDeadLetterQueue(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()

	d := NewDispatcher(DispatcherConfig{
		EventBus: bus,
		Retrier: retry.New(
			retry.WithMaxAttempts(2),
			retry.WithInitialDelay(time.Millisecond),
		),
		EnableDeadLetterQueue: true,
		DeadLetterQueueSize:   10,
		Logger:                discardLogger(),
	})

	attempts := 0
	err := d.Register(shared.EventPaymentRecorded, "always-fails", func(ctx context.Context, e shared.Event) error {
		attempts++
		return errors.New("boom")
	})
	require.NoError(t, err)

	event := shared.NewPaymentRecordedEvent("stu-1", "pay-1", time.Now(), 1, shared.ZeroMoney)
	err = d.Dispatch(context.Background(), event)
	require.Error(t, err)

	assert.Equal(t, 2, attempts)
	require.Equal(t, 1, d.DeadLetterQueue().Size())

	entry, ok := d.DeadLetterQueue().Pop()
	require.True(t, ok)
	assert.Equal(t, "always-fails", entry.HandlerName)
	assert.Equal(t, shared.EventPaymentRecorded, entry.Event.EventType())
}

type fakeRosterCache struct {
	invalidations int
}

func (f *fakeRosterCache) GetSnapshot(ctx context.Context, day time.Time) ([]billing.StudentAccount, error) {
	return nil, errors.New("miss")
}

func (f *fakeRosterCache) SetSnapshot(ctx context.Context, day time.Time, roster []billing.StudentAccount) error {
	return nil
}

func (f *fakeRosterCache) Invalidate(ctx context.Context) error {
	f.invalidations++
	return nil
}

func TestRosterInvalidator_DropsCacheOnWrites(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()

	d := NewDispatcher(DispatcherConfig{
		EventBus: bus,
		Retrier:  retry.New(retry.WithMaxAttempts(1)),
		Logger:   discardLogger(),
	})

	cache := &fakeRosterCache{}
	require.NoError(t, RegisterRosterInvalidator(d, cache, discardLogger()))
	require.NoError(t, d.Start())

	ctx := context.Background()
	require.NoError(t, bus.Publish(ctx, shared.NewStudentCancelledEvent("stu-1", time.Now())))
	require.NoError(t, bus.Publish(ctx, shared.NewPaymentRecordedEvent("stu-1", "pay-1", time.Now(), 1, shared.ZeroMoney)))

	assert.Equal(t, 2, cache.invalidations)
}
