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

func TestCancelStudent_ArrearsSurviveCancellation(t *testing.T) {
	studentRepo := newMemStudentRepo()
	paymentRepo := newMemPaymentRepo()

	// Admitted mid-January, never paid. By 2024-03-28 two cycles (Feb, Mar)
	// are pending; cancelling does not erase them.
	id := registerStudent(t, studentRepo, "2024-01-15", "400")

	handler := NewCancelStudentHandler(studentRepo, paymentRepo, nil)
	result, err := handler.Handle(context.Background(), CancelStudentCommand{
		StudentID:        id,
		CancellationDate: "2024-03-28",
	})
	require.NoError(t, err)

	assert.Equal(t, timeutil.Date(2024, time.March, 28), result.CancelledOn)
	assert.Equal(t, 2, result.OutstandingLiability.PendingMonths)
	assert.Equal(t, "800.00", result.OutstandingLiability.PendingAmount.String())

	stored, err := studentRepo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, stored.IsCancelled())
}

func TestCancelStudent_BeforeAdmissionRejected(t *testing.T) {
	studentRepo := newMemStudentRepo()
	id := registerStudent(t, studentRepo, "2024-01-15", "400")

	handler := NewCancelStudentHandler(studentRepo, newMemPaymentRepo(), nil)
	_, err := handler.Handle(context.Background(), CancelStudentCommand{
		StudentID:        id,
		CancellationDate: "2024-01-01",
	})
	assert.ErrorIs(t, err, shared.ErrInvalidDate)
}

func TestCancelStudent_DoubleCancelRejected(t *testing.T) {
	studentRepo := newMemStudentRepo()
	id := registerStudent(t, studentRepo, "2024-01-15", "400")

	handler := NewCancelStudentHandler(studentRepo, newMemPaymentRepo(), nil)
	cmd := CancelStudentCommand{StudentID: id, CancellationDate: "2024-03-28"}

	_, err := handler.Handle(context.Background(), cmd)
	require.NoError(t, err)

	_, err = handler.Handle(context.Background(), cmd)
	assert.ErrorIs(t, err, shared.ErrStateTransition)
}

func TestUpdateMonthlyFee_AffectsPendingCycles(t *testing.T) {
	studentRepo := newMemStudentRepo()
	paymentRepo := newMemPaymentRepo()
	publisher := &capturePublisher{}

	id := registerStudent(t, studentRepo, "2024-01-15", "400")

	feeHandler := NewUpdateMonthlyFeeHandler(studentRepo, publisher)
	result, err := feeHandler.Handle(context.Background(), UpdateMonthlyFeeCommand{
		StudentID:  id,
		MonthlyFee: "500",
	})
	require.NoError(t, err)
	assert.Equal(t, "400.00", result.OldFee.String())
	assert.Equal(t, "500.00", result.NewFee.String())

	// Liability is derived on read: the cycles pending before the change are
	// now priced at the new fee.
	payHandler := NewRecordPaymentHandler(studentRepo, paymentRepo, nil)
	payment, err := payHandler.Handle(context.Background(), RecordPaymentCommand{
		StudentID:     id,
		MonthsToClear: 2,
		Today:         timeutil.Date(2024, time.March, 28),
	})
	require.NoError(t, err)
	assert.Equal(t, "1000.00", payment.Amount.String())

	assert.Equal(t, []shared.EventType{shared.EventFeeChanged}, publisher.types())
}

func TestUpdateMonthlyFee_NegativeRejected(t *testing.T) {
	studentRepo := newMemStudentRepo()
	id := registerStudent(t, studentRepo, "2024-01-15", "400")

	handler := NewUpdateMonthlyFeeHandler(studentRepo, nil)
	_, err := handler.Handle(context.Background(), UpdateMonthlyFeeCommand{
		StudentID:  id,
		MonthlyFee: "-50",
	})
	assert.ErrorIs(t, err, shared.ErrNegativeValue)
}
