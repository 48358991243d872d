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

func TestRegisterStudent_Success(t *testing.T) {
	repo := newMemStudentRepo()
	publisher := &capturePublisher{}
	handler := NewRegisterStudentHandler(repo, publisher)

	result, err := handler.Handle(context.Background(), RegisterStudentCommand{
		DisplayName:   "Dias Akhmetov",
		Address:       "12 Abay Ave",
		Phone:         "+7 (702) 555-00-11",
		AdmissionDate: "2024-01-15",
		MonthlyFee:    "450.50",
	})
	require.NoError(t, err)

	assert.True(t, result.StudentID.IsValid())
	// Billing starts with the month after admission.
	assert.Equal(t, timeutil.Date(2024, time.February, 1), result.FirstDueDate)

	stored, err := repo.GetByID(context.Background(), result.StudentID)
	require.NoError(t, err)
	assert.Equal(t, "Dias Akhmetov", stored.DisplayName)
	assert.Equal(t, shared.Phone("+77025550011"), stored.Phone)
	assert.Equal(t, "450.50", stored.MonthlyFee.String())

	assert.Equal(t, []shared.EventType{shared.EventStudentRegistered}, publisher.types())
}

func TestRegisterStudent_InvalidDate(t *testing.T) {
	handler := NewRegisterStudentHandler(newMemStudentRepo(), nil)

	for _, date := range []string{"2024-02-30", "15.01.2024", "not a date"} {
		_, err := handler.Handle(context.Background(), RegisterStudentCommand{
			DisplayName:   "Dias Akhmetov",
			AdmissionDate: date,
			MonthlyFee:    "400",
		})
		assert.ErrorIs(t, err, shared.ErrInvalidDate, "date=%q", date)
	}
}

func TestRegisterStudent_NegativeFee(t *testing.T) {
	handler := NewRegisterStudentHandler(newMemStudentRepo(), nil)

	_, err := handler.Handle(context.Background(), RegisterStudentCommand{
		DisplayName:   "Dias Akhmetov",
		AdmissionDate: "2024-01-15",
		MonthlyFee:    "-100",
	})
	assert.ErrorIs(t, err, shared.ErrNegativeValue)
}

func TestRegisterStudent_MissingFields(t *testing.T) {
	handler := NewRegisterStudentHandler(newMemStudentRepo(), nil)

	_, err := handler.Handle(context.Background(), RegisterStudentCommand{
		AdmissionDate: "2024-01-15",
		MonthlyFee:    "400",
	})
	assert.Error(t, err)

	_, err = handler.Handle(context.Background(), RegisterStudentCommand{
		DisplayName: "Dias Akhmetov",
		MonthlyFee:  "400",
	})
	assert.Error(t, err)
}
