package redis

import (
	"context"
	"time"

	"github.com/tuition-hub/tuition-fee-hub/internal/domain/billing"
	"github.com/tuition-hub/tuition-fee-hub/internal/domain/shared"
	"github.com/tuition-hub/tuition-fee-hub/internal/domain/student"
	"github.com/tuition-hub/tuition-fee-hub/pkg/timeutil"
)

// RosterCache implements billing.RosterCache on the generic Redis Cache.
// Snapshots are keyed by calendar day: liability is a function of "today",
// so yesterday's snapshot is never valid for today.
type RosterCache struct {
	cache *Cache
}

// NewRosterCache creates a new RosterCache.
func NewRosterCache(cache *Cache) *RosterCache {
	return &RosterCache{cache: cache}
}

// cachedAccount is the stable wire form of one annotated account. Dates are
// stored as YYYY-MM-DD strings so the snapshot survives zone-handling changes
// in time.Time JSON encoding.
type cachedAccount struct {
	StudentID        string       `json:"student_id"`
	DisplayName      string       `json:"display_name"`
	Address          string       `json:"address,omitempty"`
	Phone            string       `json:"phone,omitempty"`
	AdmissionDate    string       `json:"admission_date"`
	CancellationDate string       `json:"cancellation_date,omitempty"`
	MonthlyFee       shared.Money `json:"monthly_fee"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
	PaidThrough      string       `json:"paid_through,omitempty"`
	PendingMonths    int          `json:"pending_months"`
	PendingAmount    shared.Money `json:"pending_amount"`
}

// GetSnapshot returns the cached roster for the given day.
func (r *RosterCache) GetSnapshot(ctx context.Context, day time.Time) ([]billing.StudentAccount, error) {
	key := RosterKey(timeutil.FormatDateStr(timeutil.StartOfDay(day)))

	var cached []cachedAccount
	if err := r.cache.Get(ctx, key, &cached); err != nil {
		return nil, err
	}

	roster := make([]billing.StudentAccount, 0, len(cached))
	for _, c := range cached {
		account, err := c.toAccount()
		if err != nil {
			// A corrupt entry invalidates the whole snapshot; the caller
			// recomputes from the source of truth.
			_ = r.cache.Delete(ctx, key)
			return nil, err
		}
		roster = append(roster, account)
	}

	return roster, nil
}

// SetSnapshot stores the roster for the given day.
func (r *RosterCache) SetSnapshot(ctx context.Context, day time.Time, roster []billing.StudentAccount) error {
	key := RosterKey(timeutil.FormatDateStr(timeutil.StartOfDay(day)))

	cached := make([]cachedAccount, 0, len(roster))
	for _, account := range roster {
		if account.Student == nil {
			continue
		}
		cached = append(cached, toCachedAccount(account))
	}

	return r.cache.Set(ctx, key, cached, TTLRosterSnapshot)
}

// Invalidate drops all cached snapshots. Called on every write to students
// or payment records.
func (r *RosterCache) Invalidate(ctx context.Context) error {
	return r.cache.DeleteByPattern(ctx, PrefixRoster+"*")
}

func toCachedAccount(account billing.StudentAccount) cachedAccount {
	s := account.Student

	c := cachedAccount{
		StudentID:     s.ID.String(),
		DisplayName:   s.DisplayName,
		Address:       s.Address,
		Phone:         s.Phone.String(),
		AdmissionDate: timeutil.FormatDateStr(s.AdmissionDate),
		MonthlyFee:    s.MonthlyFee,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
		PendingMonths: account.Liability.PendingMonths,
		PendingAmount: account.Liability.PendingAmount,
	}

	if s.CancellationDate != nil {
		c.CancellationDate = timeutil.FormatDateStr(*s.CancellationDate)
	}
	if account.PaidThrough != nil {
		c.PaidThrough = timeutil.FormatDateStr(*account.PaidThrough)
	}

	return c
}

func (c cachedAccount) toAccount() (billing.StudentAccount, error) {
	admission, err := timeutil.ParseDate(c.AdmissionDate)
	if err != nil {
		return billing.StudentAccount{}, err
	}

	s := &student.Student{
		ID:            shared.StudentID(c.StudentID),
		DisplayName:   c.DisplayName,
		Address:       c.Address,
		Phone:         shared.Phone(c.Phone),
		AdmissionDate: admission,
		MonthlyFee:    c.MonthlyFee,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}

	if c.CancellationDate != "" {
		d, err := timeutil.ParseDate(c.CancellationDate)
		if err != nil {
			return billing.StudentAccount{}, err
		}
		s.CancellationDate = &d
	}

	account := billing.StudentAccount{
		Student: s,
		Liability: billing.Liability{
			PendingMonths: c.PendingMonths,
			PendingAmount: c.PendingAmount,
		},
	}

	if c.PaidThrough != "" {
		d, err := timeutil.ParseDate(c.PaidThrough)
		if err != nil {
			return billing.StudentAccount{}, err
		}
		account.PaidThrough = &d
	}

	return account, nil
}
