// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ═══════════════════════════════════════════════════════════════════════════
// ID Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// StudentID represents a unique student identifier (UUID format).
type StudentID string

// UUID validation regex (simple version).
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// IsValid checks if the student ID is a valid UUID.
func (s StudentID) IsValid() bool {
	return uuidRegex.MatchString(string(s))
}

// String returns the string representation.
func (s StudentID) String() string {
	return string(s)
}

// IsEmpty checks if the ID is empty.
func (s StudentID) IsEmpty() bool {
	return s == ""
}

// NewStudentID creates a new StudentID with validation.
func NewStudentID(id string) (StudentID, error) {
	sid := StudentID(strings.ToLower(strings.TrimSpace(id)))
	if !sid.IsValid() {
		return "", NewDomainError("shared", "NewStudentID", ErrInvalidID, "invalid student ID format")
	}
	return sid, nil
}

// PaymentID represents a unique payment record identifier (UUID format).
type PaymentID string

// IsValid checks if the payment ID is a valid UUID.
func (p PaymentID) IsValid() bool {
	return uuidRegex.MatchString(string(p))
}

// String returns the string representation.
func (p PaymentID) String() string {
	return string(p)
}

// NewPaymentID creates a new PaymentID with validation.
func NewPaymentID(id string) (PaymentID, error) {
	pid := PaymentID(strings.ToLower(strings.TrimSpace(id)))
	if !pid.IsValid() {
		return "", NewDomainError("shared", "NewPaymentID", ErrInvalidID, "invalid payment ID format")
	}
	return pid, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Money Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Money represents a non-negative currency amount with minor-unit (2 decimal)
// precision. Arithmetic is exact; rounding is half-up and happens only when a
// computed amount is materialized, never on intermediate values.
type Money struct {
	amount decimal.Decimal
}

// ZeroMoney is the zero amount.
var ZeroMoney = Money{amount: decimal.Zero}

// NewMoney creates a Money value from a decimal, rejecting negative amounts.
// Fee waivers are expressed as zero, never as a negative "credit".
func NewMoney(d decimal.Decimal) (Money, error) {
	if d.IsNegative() {
		return Money{}, NewDomainError("shared", "NewMoney", ErrNegativeValue, "amount cannot be negative")
	}
	return Money{amount: d.Round(2)}, nil
}

// MoneyFromString parses a decimal string ("400", "400.50") into Money.
func MoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Money{}, WrapError("shared", "MoneyFromString", ErrInvalidFormat, "cannot parse amount", err)
	}
	return NewMoney(d)
}

// MoneyFromFloat converts a float into Money. Intended for boundary input
// only; internal arithmetic stays in decimals.
func MoneyFromFloat(f float64) (Money, error) {
	return NewMoney(decimal.NewFromFloat(f))
}

// MulInt multiplies the amount by a non-negative integer count and rounds the
// result to 2 decimal places, half-up.
func (m Money) MulInt(n int) Money {
	return Money{amount: m.amount.Mul(decimal.NewFromInt(int64(n))).Round(2)}
}

// Add returns the sum of two amounts.
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// Equal reports whether two amounts are equal.
func (m Money) Equal(other Money) bool {
	return m.amount.Equal(other.amount)
}

// Decimal returns the underlying decimal value.
func (m Money) Decimal() decimal.Decimal {
	return m.amount
}

// Float64 returns the amount as a float64 for display purposes only.
func (m Money) Float64() float64 {
	f, _ := m.amount.Float64()
	return f
}

// String formats the amount with exactly two decimal places.
func (m Money) String() string {
	return m.amount.StringFixed(2)
}

// MarshalJSON encodes the amount as a fixed 2-decimal JSON string.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON decodes either a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := MoneyFromString(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Phone Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Phone represents a guardian contact phone number. It is optional on a
// student; when present it is used to render reminder contact links.
type Phone string

var phoneStripRegex = regexp.MustCompile(`[\s\-().]`)

// IsValid checks the phone contains 7-15 digits with an optional leading +.
func (p Phone) IsValid() bool {
	s := string(p.Normalize())
	if strings.HasPrefix(s, "+") {
		s = s[1:]
	}
	if len(s) < 7 || len(s) > 15 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Normalize strips separators and whitespace.
func (p Phone) Normalize() Phone {
	return Phone(phoneStripRegex.ReplaceAllString(string(p), ""))
}

// Digits returns the bare digits without the leading +, as expected by
// wa.me links.
func (p Phone) Digits() string {
	return strings.TrimPrefix(string(p.Normalize()), "+")
}

// String returns the string representation.
func (p Phone) String() string {
	return string(p)
}

// IsEmpty checks if the phone is unset.
func (p Phone) IsEmpty() bool {
	return strings.TrimSpace(string(p)) == ""
}

// NewPhone creates a Phone with validation. Empty input is allowed and
// yields an empty Phone.
func NewPhone(value string) (Phone, error) {
	p := Phone(strings.TrimSpace(value))
	if p.IsEmpty() {
		return "", nil
	}
	p = p.Normalize()
	if !p.IsValid() {
		return "", NewDomainError("shared", "NewPhone", ErrInvalidFormat, "invalid phone number")
	}
	return p, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// TimeRange Value Object
// ═══════════════════════════════════════════════════════════════════════════

// TimeRange represents a time period.
type TimeRange struct {
	From time.Time
	To   time.Time
}

// IsValid checks if the time range is valid.
func (t TimeRange) IsValid() bool {
	return !t.From.IsZero() && !t.To.IsZero() && !t.From.After(t.To)
}

// Contains checks if a time is within the range (inclusive on both ends).
func (t TimeRange) Contains(tm time.Time) bool {
	return (tm.Equal(t.From) || tm.After(t.From)) && (tm.Equal(t.To) || tm.Before(t.To))
}

// NewTimeRange creates a new TimeRange with validation.
func NewTimeRange(from, to time.Time) (TimeRange, error) {
	tr := TimeRange{From: from, To: to}
	if !tr.IsValid() {
		return TimeRange{}, NewDomainError("shared", "NewTimeRange", ErrInvalidInput, "'from' must be before 'to'")
	}
	return tr, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Pagination Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Pagination represents pagination parameters.
type Pagination struct {
	Page     int
	PageSize int
}

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// Offset returns the offset for database queries.
func (p Pagination) Offset() int {
	if p.Page <= 0 {
		return 0
	}
	return (p.Page - 1) * p.Limit()
}

// Limit returns the limit for database queries.
func (p Pagination) Limit() int {
	if p.PageSize <= 0 {
		return DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		return MaxPageSize
	}
	return p.PageSize
}

// NewPagination creates a new Pagination with defaults.
func NewPagination(page, pageSize int) Pagination {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return Pagination{Page: page, PageSize: pageSize}
}
