package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuition-hub/tuition-fee-hub/internal/domain/shared"
	"github.com/tuition-hub/tuition-fee-hub/pkg/timeutil"
)

func registerStudent(t *testing.T, repo *memStudentRepo, admission, fee string) shared.StudentID {
	t.Helper()

	handler := NewRegisterStudentHandler(repo, nil)
	result, err := handler.Handle(context.Background(), RegisterStudentCommand{
		DisplayName:   "Aigerim Seitova",
		Phone:         "+7 701 555 12 34",
		AdmissionDate: admission,
		MonthlyFee:    fee,
	})
	require.NoError(t, err)
	return result.StudentID
}

func TestRecordPayment_ClearsRequestedMonths(t *testing.T) {
	studentRepo := newMemStudentRepo()
	paymentRepo := newMemPaymentRepo()
	publisher := &capturePublisher{}

	id := registerStudent(t, studentRepo, "2024-01-15", "400")

	handler := NewRecordPaymentHandler(studentRepo, paymentRepo, publisher)

	// Never paid, today 2024-04-05: Feb, Mar and Apr are pending. Clearing
	// three cycles settles exactly those and prices at 3 x 400.
	result, err := handler.Handle(context.Background(), RecordPaymentCommand{
		StudentID:     id,
		MonthsToClear: 3,
		Today:         timeutil.Date(2024, time.April, 5),
	})
	require.NoError(t, err)

	assert.Equal(t, timeutil.Date(2024, time.April, 30), result.PaidThrough)
	assert.Equal(t, "1200.00", result.Amount.String())
	assert.True(t, result.Liability.IsSettled())

	assert.Equal(t, []shared.EventType{shared.EventPaymentRecorded}, publisher.types())

	records, err := paymentRepo.ListByStudent(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 3, records[0].MonthsCleared)
}

func TestRecordPayment_SuccessivePaymentsStack(t *testing.T) {
	studentRepo := newMemStudentRepo()
	paymentRepo := newMemPaymentRepo()

	id := registerStudent(t, studentRepo, "2024-01-15", "400")
	handler := NewRecordPaymentHandler(studentRepo, paymentRepo, nil)
	today := timeutil.Date(2024, time.April, 5)

	first, err := handler.Handle(context.Background(), RecordPaymentCommand{
		StudentID: id, MonthsToClear: 2, Today: today,
	})
	require.NoError(t, err)
	assert.Equal(t, timeutil.Date(2024, time.March, 31), first.PaidThrough)
	assert.Equal(t, 1, first.Liability.PendingMonths)

	// The second payment plans from the first one's paid-through date.
	second, err := handler.Handle(context.Background(), RecordPaymentCommand{
		StudentID: id, MonthsToClear: 1, Today: today,
	})
	require.NoError(t, err)
	assert.Equal(t, timeutil.Date(2024, time.April, 30), second.PaidThrough)
	assert.True(t, second.Liability.IsSettled())
}

func TestRecordPayment_WaivedFeeChargesNothing(t *testing.T) {
	studentRepo := newMemStudentRepo()
	paymentRepo := newMemPaymentRepo()

	id := registerStudent(t, studentRepo, "2024-01-15", "0")
	handler := NewRecordPaymentHandler(studentRepo, paymentRepo, nil)

	result, err := handler.Handle(context.Background(), RecordPaymentCommand{
		StudentID:     id,
		MonthsToClear: 2,
		Today:         timeutil.Date(2024, time.April, 5),
	})
	require.NoError(t, err)
	assert.Equal(t, "0.00", result.Amount.String())
}

func TestRecordPayment_Validation(t *testing.T) {
	handler := NewRecordPaymentHandler(newMemStudentRepo(), newMemPaymentRepo(), nil)

	_, err := handler.Handle(context.Background(), RecordPaymentCommand{
		StudentID:     shared.StudentID("7ed99bd0-87b2-4dbb-a97b-596c3f29c49b"),
		MonthsToClear: 0,
	})
	assert.ErrorIs(t, err, shared.ErrValueOutOfRange)

	_, err = handler.Handle(context.Background(), RecordPaymentCommand{MonthsToClear: 1})
	assert.Error(t, err)
}

func TestRecordPayment_UnknownStudent(t *testing.T) {
	handler := NewRecordPaymentHandler(newMemStudentRepo(), newMemPaymentRepo(), nil)

	_, err := handler.Handle(context.Background(), RecordPaymentCommand{
		StudentID:     shared.StudentID("7ed99bd0-87b2-4dbb-a97b-596c3f29c49b"),
		MonthsToClear: 1,
	})
	assert.True(t, shared.IsNotFound(err))
}
