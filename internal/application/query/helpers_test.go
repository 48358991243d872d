package query

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/tuition-hub/tuition-fee-hub/internal/domain/billing"
	"github.com/tuition-hub/tuition-fee-hub/internal/domain/shared"
	"github.com/tuition-hub/tuition-fee-hub/internal/domain/student"
	"github.com/tuition-hub/tuition-fee-hub/pkg/timeutil"
)

type memStudentRepo struct {
	mu       sync.Mutex
	students map[shared.StudentID]*student.Student
	order    []shared.StudentID
}

func newMemStudentRepo() *memStudentRepo {
	return &memStudentRepo{students: make(map[shared.StudentID]*student.Student)}
}

func (r *memStudentRepo) Create(_ context.Context, s *student.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.students[s.ID]; ok {
		return shared.ErrStudentAlreadyExists
	}
	r.students[s.ID] = s.Clone()
	r.order = append(r.order, s.ID)
	return nil
}

func (r *memStudentRepo) GetByID(_ context.Context, id shared.StudentID) (*student.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.students[id]
	if !ok {
		return nil, shared.ErrStudentNotFound
	}
	return s.Clone(), nil
}

func (r *memStudentRepo) Update(_ context.Context, s *student.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.students[s.ID]; !ok {
		return shared.ErrStudentNotFound
	}
	r.students[s.ID] = s.Clone()
	return nil
}

func (r *memStudentRepo) List(_ context.Context, opts student.ListOptions) ([]*student.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := make([]*student.Student, 0, len(r.order))
	for _, id := range r.order {
		s := r.students[id]
		if !opts.IncludeCancelled && s.IsCancelled() {
			continue
		}
		all = append(all, s.Clone())
	}

	offset, limit := opts.Pagination.Offset(), opts.Pagination.Limit()
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *memStudentRepo) Count(_ context.Context, opts student.ListOptions) (int, error) {
	list, _ := r.List(context.Background(), student.ListOptions{
		Pagination:       shared.Pagination{Page: 1, PageSize: shared.MaxPageSize},
		IncludeCancelled: opts.IncludeCancelled,
	})
	return len(list), nil
}

type memPaymentRepo struct {
	mu      sync.Mutex
	records []*billing.PaymentRecord
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{}
}

func (r *memPaymentRepo) Create(_ context.Context, rec *billing.PaymentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}

func (r *memPaymentRepo) ListByStudent(_ context.Context, id shared.StudentID) ([]*billing.PaymentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*billing.PaymentRecord, 0)
	for _, rec := range r.records {
		if rec.StudentID == id {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *memPaymentRepo) ListByStudents(ctx context.Context, ids []shared.StudentID) (map[shared.StudentID][]*billing.PaymentRecord, error) {
	out := make(map[shared.StudentID][]*billing.PaymentRecord, len(ids))
	for _, id := range ids {
		recs, err := r.ListByStudent(ctx, id)
		if err != nil {
			return nil, err
		}
		out[id] = recs
	}
	return out, nil
}

// seedStudent creates and stores a student, optionally with one payment
// record settling the account through paidThrough.
func seedStudent(t *testing.T, students *memStudentRepo, payments *memPaymentRepo, name string, admission time.Time, fee string, paidThrough *time.Time) shared.StudentID {
	t.Helper()

	m, err := shared.MoneyFromString(fee)
	require.NoError(t, err)

	s, err := student.NewStudent(student.NewStudentParams{
		ID:            shared.StudentID(uuid.New().String()),
		DisplayName:   name,
		Phone:         shared.Phone("+77015551234"),
		AdmissionDate: admission,
		MonthlyFee:    m,
	})
	require.NoError(t, err)
	require.NoError(t, students.Create(context.Background(), s))

	if paidThrough != nil {
		rec, err := billing.NewPaymentRecord(billing.NewPaymentRecordParams{
			ID:            shared.PaymentID(uuid.New().String()),
			StudentID:     s.ID,
			PaidThrough:   *paidThrough,
			AdmissionDate: admission,
			MonthsCleared: 1,
			Amount:        m,
		})
		require.NoError(t, err)
		require.NoError(t, payments.Create(context.Background(), rec))
	}

	return s.ID
}

func datePtr(d time.Time) *time.Time {
	return &d
}

func date(y int, m time.Month, d int) time.Time {
	return timeutil.Date(y, m, d)
}
