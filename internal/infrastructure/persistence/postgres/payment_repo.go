package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tuition-hub/tuition-fee-hub/internal/domain/billing"
	"github.com/tuition-hub/tuition-fee-hub/internal/domain/shared"
	"github.com/tuition-hub/tuition-fee-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// PAYMENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

const paymentColumns = `id, student_id, paid_through, months_cleared, amount::text, recorded_at`

// PaymentRepository implements billing.Repository for PostgreSQL. The table
// is append-only: records are settlement facts and are never updated.
type PaymentRepository struct {
	conn *Connection
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(conn *Connection) *PaymentRepository {
	return &PaymentRepository{conn: conn}
}

// Create stores a new payment record.
func (r *PaymentRepository) Create(ctx context.Context, rec *billing.PaymentRecord) error {
	query := `
		INSERT INTO payment_records (
			id, student_id, paid_through, months_cleared, amount, recorded_at
		) VALUES ($1, $2, $3, $4, $5::numeric, $6)
	`

	_, err := r.conn.Exec(ctx, query,
		rec.ID.String(),
		rec.StudentID.String(),
		rec.PaidThrough,
		rec.MonthsCleared,
		rec.Amount.String(),
		rec.RecordedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return shared.ErrStudentNotFound
		}
		return fmt.Errorf("failed to create payment record: %w", err)
	}

	return nil
}

// ListByStudent returns all payment records of one student, most recent
// settlement first.
func (r *PaymentRepository) ListByStudent(ctx context.Context, studentID shared.StudentID) ([]*billing.PaymentRecord, error) {
	query := `SELECT ` + paymentColumns + `
		FROM payment_records
		WHERE student_id = $1
		ORDER BY paid_through DESC, recorded_at DESC`

	rows, err := r.conn.Query(ctx, query, studentID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list payment records: %w", err)
	}
	defer rows.Close()

	return scanPaymentRecords(rows)
}

// ListByStudents returns the payment records of many students in one round
// trip, keyed by student ID. Students without records get an empty slice.
func (r *PaymentRepository) ListByStudents(ctx context.Context, studentIDs []shared.StudentID) (map[shared.StudentID][]*billing.PaymentRecord, error) {
	out := make(map[shared.StudentID][]*billing.PaymentRecord, len(studentIDs))
	if len(studentIDs) == 0 {
		return out, nil
	}

	placeholders := make([]string, len(studentIDs))
	args := make([]interface{}, len(studentIDs))
	for i, id := range studentIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id.String()
		out[id] = nil
	}

	query := fmt.Sprintf(`SELECT `+paymentColumns+`
		FROM payment_records
		WHERE student_id IN (%s)
		ORDER BY paid_through DESC, recorded_at DESC`,
		strings.Join(placeholders, ", "))

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment records: %w", err)
	}
	defer rows.Close()

	records, err := scanPaymentRecords(rows)
	if err != nil {
		return nil, err
	}

	for _, rec := range records {
		out[rec.StudentID] = append(out[rec.StudentID], rec)
	}

	return out, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SCAN HELPERS
// ══════════════════════════════════════════════════════════════════════════════

func scanPaymentRecords(rows pgx.Rows) ([]*billing.PaymentRecord, error) {
	var records []*billing.PaymentRecord

	for rows.Next() {
		var rec billing.PaymentRecord
		var id, studentID, amount string
		var paidThrough time.Time

		err := rows.Scan(
			&id,
			&studentID,
			&paidThrough,
			&rec.MonthsCleared,
			&amount,
			&rec.RecordedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment record: %w", err)
		}

		rec.ID = shared.PaymentID(id)
		rec.StudentID = shared.StudentID(studentID)
		rec.PaidThrough = timeutil.StartOfDay(paidThrough)

		money, err := shared.MoneyFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("failed to parse stored amount: %w", err)
		}
		rec.Amount = money

		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return records, nil
}
