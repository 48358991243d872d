package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tuition-hub/tuition-fee-hub/internal/domain/shared"
	"github.com/tuition-hub/tuition-fee-hub/internal/domain/student"
	"github.com/tuition-hub/tuition-fee-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

const studentColumns = `id, display_name, address, phone, admission_date,
	   cancellation_date, monthly_fee::text, created_at, updated_at`

// StudentRepository implements student.Repository for PostgreSQL.
type StudentRepository struct {
	conn *Connection
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(conn *Connection) *StudentRepository {
	return &StudentRepository{conn: conn}
}

// Create creates a new student.
func (r *StudentRepository) Create(ctx context.Context, s *student.Student) error {
	query := `
		INSERT INTO students (
			id, display_name, address, phone, admission_date,
			cancellation_date, monthly_fee, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8, $9)
	`

	_, err := r.conn.Exec(ctx, query,
		s.ID.String(),
		s.DisplayName,
		s.Address,
		s.Phone.String(),
		s.AdmissionDate,
		s.CancellationDate,
		s.MonthlyFee.String(),
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrStudentAlreadyExists
		}
		return fmt.Errorf("failed to create student: %w", err)
	}

	return nil
}

// GetByID returns a student by internal ID.
func (r *StudentRepository) GetByID(ctx context.Context, id shared.StudentID) (*student.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1`

	row := r.conn.QueryRow(ctx, query, id.String())
	return scanStudent(row)
}

// Update updates a student.
func (r *StudentRepository) Update(ctx context.Context, s *student.Student) error {
	query := `
		UPDATE students SET
			display_name = $1,
			address = $2,
			phone = $3,
			admission_date = $4,
			cancellation_date = $5,
			monthly_fee = $6::numeric,
			updated_at = $7
		WHERE id = $8
	`

	result, err := r.conn.Exec(ctx, query,
		s.DisplayName,
		s.Address,
		s.Phone.String(),
		s.AdmissionDate,
		s.CancellationDate,
		s.MonthlyFee.String(),
		time.Now().UTC(),
		s.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update student: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrStudentNotFound
	}

	return nil
}

// List returns students ordered by admission date, oldest first.
func (r *StudentRepository) List(ctx context.Context, opts student.ListOptions) ([]*student.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students`
	if !opts.IncludeCancelled {
		query += ` WHERE cancellation_date IS NULL`
	}
	query += ` ORDER BY admission_date ASC, display_name ASC LIMIT $1 OFFSET $2`

	rows, err := r.conn.Query(ctx, query, opts.Pagination.Limit(), opts.Pagination.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	defer rows.Close()

	return scanStudents(rows)
}

// Count returns the number of students matching the filter.
func (r *StudentRepository) Count(ctx context.Context, opts student.ListOptions) (int, error) {
	query := `SELECT COUNT(*) FROM students`
	if !opts.IncludeCancelled {
		query += ` WHERE cancellation_date IS NULL`
	}

	var count int
	if err := r.conn.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count students: %w", err)
	}
	return count, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SCAN HELPERS
// ══════════════════════════════════════════════════════════════════════════════

func scanStudentFields(scan func(dest ...interface{}) error) (*student.Student, error) {
	var s student.Student
	var id, phone, fee string
	var admission time.Time
	var cancellation *time.Time

	err := scan(
		&id,
		&s.DisplayName,
		&s.Address,
		&phone,
		&admission,
		&cancellation,
		&fee,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.ID = shared.StudentID(id)
	s.Phone = shared.Phone(phone)
	// DATE columns come back at midnight in the session zone; pin to UTC.
	s.AdmissionDate = timeutil.StartOfDay(admission)
	if cancellation != nil {
		d := timeutil.StartOfDay(*cancellation)
		s.CancellationDate = &d
	}

	money, err := shared.MoneyFromString(fee)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored fee: %w", err)
	}
	s.MonthlyFee = money

	return &s, nil
}

func scanStudent(row pgx.Row) (*student.Student, error) {
	s, err := scanStudentFields(row.Scan)
	if IsNoRows(err) {
		return nil, shared.ErrStudentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan student: %w", err)
	}
	return s, nil
}

func scanStudents(rows pgx.Rows) ([]*student.Student, error) {
	var students []*student.Student

	for rows.Next() {
		s, err := scanStudentFields(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		students = append(students, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return students, nil
}
