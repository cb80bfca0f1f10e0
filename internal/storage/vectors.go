package storage

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/tabeebchat/triage/internal/model"
)

// Sparse vectors are stored as little-endian (uint32 index, float32 weight)
// pairs. The weights are rounded to float32 at build time; stored norms are
// computed over the rounded values so load-time verification is exact.
const pairSize = 8

// EncodeVector serializes a sparse vector into the BLOB wire format.
func EncodeVector(v model.SparseVector) []byte {
	buf := make([]byte, len(v.Indices)*pairSize)
	for i, idx := range v.Indices {
		off := i * pairSize
		binary.LittleEndian.PutUint32(buf[off:], uint32(idx))
		binary.LittleEndian.PutUint32(buf[off+4:], math.Float32bits(float32(v.Weights[i])))
	}
	return buf
}

// DecodeVector deserializes the BLOB wire format.
func DecodeVector(buf []byte) (model.SparseVector, error) {
	if len(buf)%pairSize != 0 {
		return model.SparseVector{}, fmt.Errorf("vector blob length %d is not a multiple of %d", len(buf), pairSize)
	}

	n := len(buf) / pairSize
	if n == 0 {
		return model.SparseVector{}, nil
	}

	v := model.SparseVector{
		Indices: make([]int32, n),
		Weights: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		off := i * pairSize
		v.Indices[i] = int32(binary.LittleEndian.Uint32(buf[off:]))
		v.Weights[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[off+4:])))
	}
	return v, nil
}

// VectorRow is one stored vector with its precomputed norm.
type VectorRow struct {
	Vector model.SparseVector
	Norm   float64
	RowID  int
}

// CountVectors returns the number of stored vectors.
func (s *Store) CountVectors(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM vectors`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count vectors: %w", err)
	}
	return n, nil
}

// LoadVectors streams every vector in row order, invoking fn for each.
func (s *Store) LoadVectors(ctx context.Context, fn func(VectorRow) error) error {
	rows, err := s.db.QueryContext(ctx, `SELECT row_id, vec, norm FROM vectors ORDER BY row_id`)
	if err != nil {
		return fmt.Errorf("failed to query vectors: %w", err)
	}
	defer func() { _ = rows.Close() }()

	next := 0
	for rows.Next() {
		var (
			rowID int
			blob  []byte
			norm  float64
		)
		if err := rows.Scan(&rowID, &blob, &norm); err != nil {
			return fmt.Errorf("failed to scan vector: %w", err)
		}
		if rowID != next {
			return fmt.Errorf("vectors not dense: expected row %d, got %d", next, rowID)
		}
		next++

		vec, err := DecodeVector(blob)
		if err != nil {
			return fmt.Errorf("vector row %d: %w", rowID, err)
		}

		if err := fn(VectorRow{RowID: rowID, Vector: vec, Norm: norm}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate vectors: %w", err)
	}
	return nil
}

// SaveVectors writes vectors in one transaction with dense row IDs starting
// at offset. Norms are computed over the float32-rounded weights, matching
// what DecodeVector will reproduce at load time.
func (s *Store) SaveVectors(ctx context.Context, offset int, vectors []model.SparseVector) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO vectors (row_id, vec, norm) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, vec := range vectors {
		blob := EncodeVector(vec)
		rounded, err := DecodeVector(blob)
		if err != nil {
			return fmt.Errorf("failed to round-trip vector %d: %w", offset+i, err)
		}

		if _, err := stmt.ExecContext(ctx, offset+i, blob, rounded.Norm()); err != nil {
			return fmt.Errorf("failed to insert vector %d: %w", offset+i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit vectors: %w", err)
	}
	return nil
}
