package shared

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney_Construction(t *testing.T) {
	m, err := MoneyFromString("400.5")
	require.NoError(t, err)
	assert.Equal(t, "400.50", m.String())

	// Half-up rounding to the minor unit.
	m, err = MoneyFromString("10.005")
	require.NoError(t, err)
	assert.Equal(t, "10.01", m.String())

	// Negative amounts are rejected; waivers are zero, not credit.
	_, err = NewMoney(decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, ErrNegativeValue)

	_, err = MoneyFromString("four hundred")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestMoney_MulInt(t *testing.T) {
	m, err := MoneyFromString("333.33")
	require.NoError(t, err)

	assert.Equal(t, "999.99", m.MulInt(3).String())
	assert.Equal(t, "0.00", m.MulInt(0).String())

	// No binary floating drift: 0.1 * 3 is exactly 0.30.
	dime, err := MoneyFromString("0.10")
	require.NoError(t, err)
	assert.Equal(t, "0.30", dime.MulInt(3).String())
}

func TestMoney_JSON(t *testing.T) {
	m, err := MoneyFromString("1234.5")
	require.NoError(t, err)

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `"1234.50"`, string(data))

	var back Money
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, m.Equal(back))

	// Bare JSON numbers are accepted too.
	require.NoError(t, json.Unmarshal([]byte(`250`), &back))
	assert.Equal(t, "250.00", back.String())
}

func TestPhone(t *testing.T) {
	p, err := NewPhone("+7 (701) 555-12-34")
	require.NoError(t, err)
	assert.Equal(t, Phone("+77015551234"), p)
	assert.Equal(t, "77015551234", p.Digits())

	// Empty is allowed: the phone is optional on a student.
	p, err = NewPhone("   ")
	require.NoError(t, err)
	assert.True(t, p.IsEmpty())

	_, err = NewPhone("123")
	assert.ErrorIs(t, err, ErrInvalidFormat)

	_, err = NewPhone("not a phone")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestStudentID(t *testing.T) {
	id, err := NewStudentID("7ED99BD0-87B2-4DBB-A97B-596C3F29C49B")
	require.NoError(t, err)
	// Normalized to lowercase.
	assert.Equal(t, StudentID("7ed99bd0-87b2-4dbb-a97b-596c3f29c49b"), id)

	_, err = NewStudentID("student-1")
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestDomainError_Matching(t *testing.T) {
	err := WrapError("billing", "ComputeLiability", ErrInvalidDate, "bad paid-through", nil)

	assert.ErrorIs(t, err, ErrInvalidDate)
	assert.True(t, IsValidation(err))
	assert.False(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "billing.ComputeLiability")
}

func TestTimeRange(t *testing.T) {
	from := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)

	tr, err := NewTimeRange(from, to)
	require.NoError(t, err)

	// Inclusive on both ends.
	assert.True(t, tr.Contains(from))
	assert.True(t, tr.Contains(to))
	assert.True(t, tr.Contains(from.AddDate(0, 0, 3)))
	assert.False(t, tr.Contains(from.AddDate(0, 0, -1)))
	assert.False(t, tr.Contains(to.AddDate(0, 0, 1)))

	_, err = NewTimeRange(to, from)
	assert.ErrorIs(t, err, ErrInvalidInput)

	// The zero range matches nothing.
	assert.False(t, TimeRange{}.Contains(from))
}

func TestPagination(t *testing.T) {
	p := NewPagination(0, 0)
	assert.Equal(t, 0, p.Offset())
	assert.Equal(t, DefaultPageSize, p.Limit())

	p = NewPagination(3, 1000)
	assert.Equal(t, MaxPageSize, p.Limit())
	assert.Equal(t, 2*MaxPageSize, p.Offset())
}
