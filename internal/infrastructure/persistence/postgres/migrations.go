package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE STUDENTS
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create students table
-- Version: 001

CREATE TABLE IF NOT EXISTS students (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    display_name VARCHAR(100) NOT NULL,
    address TEXT NOT NULL DEFAULT '',
    phone VARCHAR(20) NOT NULL DEFAULT '',
    admission_date DATE NOT NULL,
    cancellation_date DATE,
    monthly_fee NUMERIC(12,2) NOT NULL DEFAULT 0,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    -- Fees are never negative; a waiver is stored as zero.
    CONSTRAINT non_negative_fee CHECK (monthly_fee >= 0),
    -- An enrolment cannot end before it started.
    CONSTRAINT cancellation_after_admission
        CHECK (cancellation_date IS NULL OR cancellation_date >= admission_date)
);

CREATE INDEX IF NOT EXISTS idx_students_admission_date ON students(admission_date);
CREATE INDEX IF NOT EXISTS idx_students_enrolled ON students(admission_date) WHERE cancellation_date IS NULL;
CREATE INDEX IF NOT EXISTS idx_students_display_name ON students(display_name);

-- Updated_at trigger function for automatic timestamp updates
CREATE OR REPLACE FUNCTION update_updated_at_column()
RETURNS TRIGGER AS $$
BEGIN
    NEW.updated_at = NOW();
    RETURN NEW;
END;
$$ language 'plpgsql';

DROP TRIGGER IF EXISTS update_students_updated_at ON students;
CREATE TRIGGER update_students_updated_at
    BEFORE UPDATE ON students
    FOR EACH ROW
    EXECUTE FUNCTION update_updated_at_column();
`

const migration001Down = `
DROP TRIGGER IF EXISTS update_students_updated_at ON students;
DROP FUNCTION IF EXISTS update_updated_at_column();
DROP TABLE IF EXISTS students;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE PAYMENT RECORDS
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create payment records table
-- Version: 002
-- Records are append-only settlement facts. The effective paid-through date
-- of an account is MAX(paid_through) over its records, so out-of-order
-- inserts can never move an account backwards.

CREATE TABLE IF NOT EXISTS payment_records (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    student_id UUID NOT NULL REFERENCES students(id) ON DELETE CASCADE,
    paid_through DATE NOT NULL,
    months_cleared INTEGER NOT NULL,
    amount NUMERIC(12,2) NOT NULL,
    recorded_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT positive_months_cleared CHECK (months_cleared >= 1),
    CONSTRAINT non_negative_amount CHECK (amount >= 0)
);

CREATE INDEX IF NOT EXISTS idx_payment_records_student ON payment_records(student_id);
CREATE INDEX IF NOT EXISTS idx_payment_records_student_paid ON payment_records(student_id, paid_through DESC);
CREATE INDEX IF NOT EXISTS idx_payment_records_recorded ON payment_records(recorded_at DESC);
`

const migration002Down = `
DROP TABLE IF EXISTS payment_records;
`

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_students",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_payment_records",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
	}
}
