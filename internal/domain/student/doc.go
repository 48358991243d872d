// Package student contains the student domain model of Tuition Fee Hub.
//
// This is part of the business core. The package defines:
//
//   - Entities: Student
//   - Value objects: Status
//   - Repository interfaces implemented in infrastructure/persistence
//
// # Architectural principles
//
// The package follows Clean Architecture and DDD:
//
//  1. No infrastructure dependencies - shared value objects and stdlib only
//  2. Dependency Inversion - interfaces here, implementations in infrastructure
//  3. Rich Domain Model - invariants are enforced inside the entity
//
// # Invariants
//
// The admission date is always set. The cancellation date, when present, is
// never before the admission date. The monthly fee is never negative: a fee
// waiver is a zero fee, not a negative one.
//
// Liability math does not live here; it is in the billing package, which
// consumes students together with their payment history.
package student
