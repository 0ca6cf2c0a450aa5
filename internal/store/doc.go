// Package store provides SQLite-backed durable storage for decision records.
//
// The store is a thin façade over a single table:
//   - Create: stamps the creation timestamp, inserts, returns the new id
//   - Update: replaces the mutable fields of one row
//   - Delete: removes one row
//   - Retrieve: filtered read in storage order
//
// Every operation is one statement, committed before it returns. There is
// no transaction spanning calls.
//
// # Result Conventions
//
//   - Update and Delete report a missing id as (false, nil), never as an
//     error; callers decide whether that matters.
//   - Get reports a missing id as ErrNotFound.
//   - Retrieve returns an empty slice, never nil, when nothing matches.
//   - Any failure of the underlying medium wraps ErrStorageUnavailable.
//
// The store does not validate field contents. Status is persisted as its
// text and any text is accepted; callers that need the enumeration enforced
// check it before calling (see decision.Fields.Validate).
//
// # Database Configuration
//
//   - journal_mode=DELETE: the database stays a single file
//   - synchronous=FULL: a returned write has reached the disk
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - one open connection: SQLite has a single writer anyway
package store
