// Package billing contains the fee-liability computation core of
// Tuition Fee Hub.
//
// The package defines:
//
//   - Entities: PaymentRecord (an immutable settlement fact)
//   - Pure computations: ComputeLiability, PlanPaidThrough
//   - Derived views: Liability, StudentAccount (never persisted)
//
// Billing is by whole calendar month. A student's account is settled for all
// cycles up to and including the month containing their effective paid-through
// date, which is the maximum paid_through across all of their payment records.
// The first unpaid cycle starts on the first day of the following month.
//
// Every function takes "today" as an explicit parameter. Nothing in this
// package reads the process clock, which keeps computations deterministic and
// testable. All functions are pure and safe for concurrent use.
package billing
