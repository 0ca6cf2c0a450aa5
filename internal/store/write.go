package store

import (
	"context"

	"github.com/roach88/decisionlog/internal/decision"
)

// Create inserts a new decision and returns its id.
//
// The timestamp is taken from the store's clock in decision.TimestampLayout.
// Fields are persisted exactly as given.
func (s *Store) Create(ctx context.Context, f decision.Fields) (int64, error) {
	timestamp := s.now().Format(decision.TimestampLayout)

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO decisions
		(timestamp, area, decision_maker, decision, reasoning, status, due_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		timestamp,
		f.Area,
		f.DecisionMaker,
		f.Decision,
		f.Reasoning,
		string(f.Status),
		f.DueDate,
	)
	if err != nil {
		return 0, unavailable("create decision", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, unavailable("create decision: last insert id", err)
	}

	return id, nil
}

// Update replaces every mutable field of the decision with the given id.
// The id and timestamp are never touched.
//
// Returns updated=false (and no error) when no decision has that id; the
// store never creates a row on update.
func (s *Store) Update(ctx context.Context, id int64, f decision.Fields) (updated bool, err error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE decisions
		SET area = ?, decision_maker = ?, decision = ?, reasoning = ?, status = ?, due_date = ?
		WHERE id = ?
	`,
		f.Area,
		f.DecisionMaker,
		f.Decision,
		f.Reasoning,
		string(f.Status),
		f.DueDate,
		id,
	)
	if err != nil {
		return false, unavailable("update decision", err)
	}

	// SQLite counts matched rows, so an update that writes identical
	// values still reports one.
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, unavailable("update decision: rows affected", err)
	}

	return rowsAffected > 0, nil
}

// Delete removes the decision with the given id.
// Returns deleted=false (and no error) when there was nothing to remove.
func (s *Store) Delete(ctx context.Context, id int64) (deleted bool, err error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM decisions WHERE id = ?`, id)
	if err != nil {
		return false, unavailable("delete decision", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, unavailable("delete decision: rows affected", err)
	}

	return rowsAffected > 0, nil
}
