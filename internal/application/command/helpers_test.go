package command

import (
	"context"
	"sync"
	"time"

	"github.com/tuition-hub/tuition-fee-hub/internal/domain/billing"
	"github.com/tuition-hub/tuition-fee-hub/internal/domain/shared"
	"github.com/tuition-hub/tuition-fee-hub/internal/domain/student"
)

// memStudentRepo is an in-memory student.Repository for handler tests.
type memStudentRepo struct {
	mu       sync.Mutex
	students map[shared.StudentID]*student.Student
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
	out := make([]*student.Student, 0, len(r.students))
	for _, s := range r.students {
		if !opts.IncludeCancelled && s.IsCancelled() {
			continue
		}
		out = append(out, s.Clone())
	}
	return out, nil
}

func (r *memStudentRepo) Count(_ context.Context, opts student.ListOptions) (int, error) {
	list, _ := r.List(context.Background(), opts)
	return len(list), nil
}

// memPaymentRepo is an in-memory billing.Repository for handler tests.
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

// capturePublisher records every published event.
type capturePublisher struct {
	mu     sync.Mutex
	events []shared.Event
}

func (p *capturePublisher) Publish(_ context.Context, event shared.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) types() []shared.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]shared.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

func datePtr(d time.Time) *time.Time {
	return &d
}
