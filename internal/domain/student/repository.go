package student

import (
	"context"

	"github.com/tuition-hub/tuition-fee-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// These interfaces define the persistence contract for students.
// Implementations live in infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// ListOptions controls roster listing.
type ListOptions struct {
	// Pagination limits the result window.
	Pagination shared.Pagination

	// IncludeCancelled includes students whose enrolment has ended.
	IncludeCancelled bool
}

// Repository defines CRUD operations for students.
type Repository interface {
	// Create stores a new student.
	// Returns shared.ErrStudentAlreadyExists if the ID is taken.
	Create(ctx context.Context, student *Student) error

	// GetByID returns a student by internal ID.
	// Returns shared.ErrStudentNotFound if not found.
	GetByID(ctx context.Context, id shared.StudentID) (*Student, error)

	// Update persists changes to an existing student.
	// Returns shared.ErrStudentNotFound if not found.
	Update(ctx context.Context, student *Student) error

	// List returns the roster with pagination.
	List(ctx context.Context, opts ListOptions) ([]*Student, error)

	// Count returns the number of students matching the options.
	Count(ctx context.Context, opts ListOptions) (int, error)
}
