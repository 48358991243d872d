package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuition-hub/tuition-fee-hub/internal/domain/shared"
)

func TestGetStudentLiability_NeverPaid(t *testing.T) {
	students := newMemStudentRepo()
	payments := newMemPaymentRepo()
	id := seedStudent(t, students, payments, "Dias Akhmetov", date(2024, time.January, 15), "400", nil)

	handler := NewGetStudentLiabilityHandler(students, payments)
	result, err := handler.Handle(context.Background(), GetStudentLiabilityQuery{
		StudentID: id,
		Today:     date(2024, time.March, 10),
	})
	require.NoError(t, err)

	// Admitted mid-January, billing starts February 1: Feb and Mar pending.
	assert.Equal(t, 2, result.PendingMonths)
	assert.Equal(t, "800.00", result.PendingAmount.String())
	assert.Equal(t, "enrolled", result.Status)
	assert.Empty(t, result.PaidTill)
	assert.Equal(t, "2024-02-01", result.NextDueDate)
	assert.Equal(t, "2024-03-10", result.AsOf)
	assert.Empty(t, result.Payments)
}

func TestGetStudentLiability_PaidThrough(t *testing.T) {
	students := newMemStudentRepo()
	payments := newMemPaymentRepo()
	paid := date(2024, time.February, 29)
	id := seedStudent(t, students, payments, "Dias Akhmetov", date(2024, time.January, 15), "400", &paid)

	handler := NewGetStudentLiabilityHandler(students, payments)
	result, err := handler.Handle(context.Background(), GetStudentLiabilityQuery{
		StudentID: id,
		Today:     date(2024, time.April, 5),
	})
	require.NoError(t, err)

	// Settled through February: March and April pending.
	assert.Equal(t, 2, result.PendingMonths)
	assert.Equal(t, "800.00", result.PendingAmount.String())
	assert.Equal(t, "2024-02-29", result.PaidTill)
	assert.Equal(t, "2024-03-01", result.NextDueDate)
	require.Len(t, result.Payments, 1)
	assert.Equal(t, "2024-02-29", result.Payments[0].PaidThrough)
}

func TestGetStudentLiability_FeeWaiver(t *testing.T) {
	students := newMemStudentRepo()
	payments := newMemPaymentRepo()
	id := seedStudent(t, students, payments, "Dias Akhmetov", date(2024, time.January, 15), "0", nil)

	handler := NewGetStudentLiabilityHandler(students, payments)
	result, err := handler.Handle(context.Background(), GetStudentLiabilityQuery{
		StudentID: id,
		Today:     date(2024, time.June, 1),
	})
	require.NoError(t, err)

	// Cycles still accrue; the amount stays zero.
	assert.True(t, result.FeeWaived)
	assert.Equal(t, 5, result.PendingMonths)
	assert.Equal(t, "0.00", result.PendingAmount.String())
}

func TestGetStudentLiability_NotFound(t *testing.T) {
	handler := NewGetStudentLiabilityHandler(newMemStudentRepo(), newMemPaymentRepo())

	_, err := handler.Handle(context.Background(), GetStudentLiabilityQuery{
		StudentID: shared.StudentID("2a2e1f4c-9d3b-4a6e-8f7d-0c1b2a3d4e5f"),
		Today:     date(2024, time.March, 10),
	})
	assert.ErrorIs(t, err, shared.ErrStudentNotFound)
}

func TestGetStudentLiability_MissingID(t *testing.T) {
	handler := NewGetStudentLiabilityHandler(newMemStudentRepo(), newMemPaymentRepo())

	_, err := handler.Handle(context.Background(), GetStudentLiabilityQuery{})
	assert.True(t, shared.IsValidation(err))
}
