package student

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuition-hub/tuition-fee-hub/internal/domain/shared"
	"github.com/tuition-hub/tuition-fee-hub/pkg/timeutil"
)

func validParams() NewStudentParams {
	fee, _ := shared.MoneyFromString("400")
	return NewStudentParams{
		ID:            shared.StudentID(uuid.New().String()),
		DisplayName:   "Aisha Omarova",
		Address:       "12 Abay Ave",
		Phone:         shared.Phone("+7 701 555-12-34"),
		AdmissionDate: timeutil.Date(2024, time.January, 15),
		MonthlyFee:    fee,
	}
}

func TestNewStudent(t *testing.T) {
	s, err := NewStudent(validParams())
	require.NoError(t, err)

	assert.Equal(t, StatusEnrolled, s.Status())
	assert.False(t, s.IsCancelled())
	assert.Equal(t, timeutil.Date(2024, time.January, 15), s.AdmissionDate)
	// Phone is stored normalized.
	assert.Equal(t, shared.Phone("+77015551234"), s.Phone)
}

func TestNewStudent_Validation(t *testing.T) {
	t.Run("missing admission date", func(t *testing.T) {
		p := validParams()
		p.AdmissionDate = time.Time{}
		_, err := NewStudent(p)
		assert.ErrorIs(t, err, shared.ErrInvalidDate)
	})

	t.Run("bad id", func(t *testing.T) {
		p := validParams()
		p.ID = "student-1"
		_, err := NewStudent(p)
		assert.ErrorIs(t, err, shared.ErrInvalidID)
	})

	t.Run("empty name", func(t *testing.T) {
		p := validParams()
		p.DisplayName = "   "
		_, err := NewStudent(p)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("bad phone", func(t *testing.T) {
		p := validParams()
		p.Phone = shared.Phone("call me maybe")
		_, err := NewStudent(p)
		assert.ErrorIs(t, err, shared.ErrInvalidFormat)
	})

	t.Run("admission time-of-day is dropped", func(t *testing.T) {
		p := validParams()
		p.AdmissionDate = time.Date(2024, time.January, 15, 18, 45, 0, 0, time.UTC)
		s, err := NewStudent(p)
		require.NoError(t, err)
		assert.Equal(t, timeutil.Date(2024, time.January, 15), s.AdmissionDate)
	})
}

func TestStudent_Cancel(t *testing.T) {
	s, err := NewStudent(validParams())
	require.NoError(t, err)

	// Cannot cancel before admission.
	err = s.Cancel(timeutil.Date(2024, time.January, 1))
	assert.ErrorIs(t, err, shared.ErrInvalidDate)
	assert.False(t, s.IsCancelled())

	// Cancellation on the admission day itself is allowed.
	err = s.Cancel(timeutil.Date(2024, time.January, 15))
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, s.Status())

	// Double cancellation is a state error.
	err = s.Cancel(timeutil.Date(2024, time.February, 1))
	assert.ErrorIs(t, err, shared.ErrStateTransition)
}

func TestStudent_UpdateFee(t *testing.T) {
	s, err := NewStudent(validParams())
	require.NoError(t, err)

	waived := shared.ZeroMoney
	old := s.UpdateFee(waived)

	assert.Equal(t, "400.00", old.String())
	assert.True(t, s.HasFeeWaiver())
}

func TestStudent_Clone(t *testing.T) {
	s, err := NewStudent(validParams())
	require.NoError(t, err)
	require.NoError(t, s.Cancel(timeutil.Date(2024, time.March, 1)))

	clone := s.Clone()
	*clone.CancellationDate = timeutil.Date(2025, time.January, 1)

	assert.Equal(t, timeutil.Date(2024, time.March, 1), *s.CancellationDate)
}
