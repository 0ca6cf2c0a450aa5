package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/decisionlog/internal/decision"
	"github.com/roach88/decisionlog/internal/queryir"
)

const decisionsTable = "decisions"

// decisionColumns is the table's column order. scanRecord depends on it.
var decisionColumns = []string{
	"id",
	"timestamp",
	"area",
	"decision_maker",
	"decision",
	"reasoning",
	"status",
	"due_date",
}

// timestampDatePrefix is len(decision.DateLayout): the date part of a
// decision.TimestampLayout value.
const timestampDatePrefix = len(decision.DateLayout)

// Retrieve returns the decisions matching every supplied part of f, in
// storage order. The zero Filter returns the whole collection.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) Retrieve(ctx context.Context, f decision.Filter) ([]decision.Record, error) {
	sqlText, params, err := s.compiler.Compile(filterQuery(f))
	if err != nil {
		return nil, fmt.Errorf("retrieve decisions: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlText, params...)
	if err != nil {
		return nil, unavailable("query decisions", err)
	}
	defer rows.Close()

	records := []decision.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate decisions", err)
	}

	return records, nil
}

// Get retrieves a single decision by id.
// Returns ErrNotFound if there is none.
func (s *Store) Get(ctx context.Context, id int64) (decision.Record, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+strings.Join(decisionColumns, ", ")+" FROM "+decisionsTable+" WHERE id = ?",
		id,
	)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return decision.Record{}, fmt.Errorf("get decision %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return decision.Record{}, err
	}
	return rec, nil
}

// filterQuery translates a decision.Filter into QueryIR.
//
// The timestamp field is compared on its date part so that an end date
// includes the whole day; due dates are compared as stored.
func filterQuery(f decision.Filter) queryir.Select {
	q := queryir.Select{
		From:    decisionsTable,
		Columns: decisionColumns,
	}
	if f.IsZero() {
		return q
	}

	var preds []queryir.Predicate

	if f.Status != "" {
		preds = append(preds, queryir.Equals{Field: "status", Value: string(f.Status)})
	}

	column := f.Field.Column()
	prefix := 0
	if column == "timestamp" {
		prefix = timestampDatePrefix
	}
	if f.Start != "" {
		preds = append(preds, queryir.AtLeast{Field: column, Value: f.Start, Prefix: prefix})
	}
	if f.End != "" {
		preds = append(preds, queryir.AtMost{Field: column, Value: f.End, Prefix: prefix})
	}

	q.Filter = queryir.Conjoin(preds...)
	return q
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanRecord reads one row in decisionColumns order. Text columns are
// nullable in the schema; NULL reads as the empty string.
func scanRecord(row rowScanner) (decision.Record, error) {
	var rec decision.Record
	var timestamp, area, maker, text, reasoning, status, due sql.NullString

	err := row.Scan(&rec.ID, &timestamp, &area, &maker, &text, &reasoning, &status, &due)
	if errors.Is(err, sql.ErrNoRows) {
		return decision.Record{}, err
	}
	if err != nil {
		return decision.Record{}, unavailable("scan decision", err)
	}

	rec.Timestamp = timestamp.String
	rec.Area = area.String
	rec.DecisionMaker = maker.String
	rec.Decision = text.String
	rec.Reasoning = reasoning.String
	rec.Status = decision.Status(status.String)
	rec.DueDate = due.String

	return rec, nil
}
