// Package harness runs YAML scenarios against the decision store.
//
// A scenario seeds the store, runs a flow of operations with expected
// outcomes, and checks the final state. Every operation is recorded in a
// trace that can be compared against a golden file.
//
// # Scenario Format
//
//	name: scenario_name
//	description: "What this scenario checks"
//	setup:
//	  - op: create
//	    fields: { area: Ops, decision_maker: Ana, status: Waiting }
//	flow:
//	  - op: update
//	    id: 1
//	    fields: { area: Ops, decision_maker: Ana, status: Approved }
//	    expect: { case: ok }
//	  - op: retrieve
//	    filter: { status: Approved }
//	    expect: { case: ok, ids: [1] }
//	assertions:
//	  - type: record
//	    id: 1
//	    expect: { status: Approved }
//	  - type: count
//	    count: 1
//
// Operations are create, update, delete, get and retrieve. Fields and
// filters go through the same normalisation as the command line, so
// statuses are matched case-insensitively and dates may use any accepted
// layout. Outcomes are ok, not_found and invalid.
//
// # Assertion Types
//
//   - record: the decision with id exists and its fields match expect
//   - absent: no decision has id
//   - count: retrieve with filter returns exactly count decisions
//
// # Deterministic Execution
//
// Each run uses a fresh in-memory database. Decisions are stamped one day
// apart starting at Epoch, and trace events are numbered from 1.
package harness
