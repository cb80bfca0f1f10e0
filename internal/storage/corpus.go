package storage

import (
	"context"
	"fmt"

	"github.com/tabeebchat/triage/internal/model"
)

// QARow is one corpus row as stored, without its vector.
type QARow struct {
	Question string
	Answer   string
	Category string
	RowID    int
}

// CountQARecords returns the number of corpus rows.
func (s *Store) CountQARecords(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM qa_records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count qa records: %w", err)
	}
	return n, nil
}

// LoadQARecords streams every corpus row in row order, invoking fn for
// each. Row IDs must be dense starting at 0; a gap means the artifact was
// truncated or built wrong.
func (s *Store) LoadQARecords(ctx context.Context, fn func(QARow) error) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT row_id, question, answer, category FROM qa_records ORDER BY row_id`)
	if err != nil {
		return fmt.Errorf("failed to query qa records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	next := 0
	for rows.Next() {
		var r QARow
		if err := rows.Scan(&r.RowID, &r.Question, &r.Answer, &r.Category); err != nil {
			return fmt.Errorf("failed to scan qa record: %w", err)
		}
		if r.RowID != next {
			return fmt.Errorf("qa records not dense: expected row %d, got %d", next, r.RowID)
		}
		next++

		if err := fn(r); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate qa records: %w", err)
	}
	return nil
}

// SaveQARecords writes corpus rows in one transaction, assigning dense row
// IDs starting at the given offset. Used by the import tooling only.
func (s *Store) SaveQARecords(ctx context.Context, offset int, records []model.ReferenceRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO qa_records (row_id, question, answer, category) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, rec := range records {
		if _, err := stmt.ExecContext(ctx, offset+i, rec.Question, rec.Answer, rec.Category); err != nil {
			return fmt.Errorf("failed to insert qa record %d: %w", offset+i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit qa records: %w", err)
	}
	return nil
}
