package db

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"cocon/cooc/internal/errors"
)

// SaveRun persists a sampling run and its sample manifest in one transaction.
// Empty run and sample IDs are assigned here (uuid for the run, monotonic
// ulids for samples so manifest order survives a plain ORDER BY id).
func (d *DB) SaveRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = time.Now().UnixMilli()
	}

	var positives, negatives int
	for _, s := range run.Samples {
		if s.Label == "pos" {
			positives++
		} else {
			negatives++
		}
	}

	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sample_runs (id, created_at, seed, requested, index_size, positives, negatives)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.CreatedAt, run.Seed, run.Requested, run.IndexSize, positives, negatives)
	if err != nil {
		return errors.Wrap(err, "inserting run")
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO samples (id, run_id, label, position, e1, e2, year, month, cooc_papers, node_count, edge_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return errors.Wrap(err, "preparing sample insert")
	}
	defer stmt.Close()

	entropy := ulid.Monotonic(rand.Reader, 0)
	for i := range run.Samples {
		s := &run.Samples[i]
		if s.ID == "" {
			s.ID = ulid.MustNew(ulid.Timestamp(time.UnixMilli(run.CreatedAt)), entropy).String()
		}
		papers := s.CoocPapers
		if papers == nil {
			papers = []string{}
		}
		papersJSON, err := json.Marshal(papers)
		if err != nil {
			return errors.Wrap(err, "encoding cooc papers")
		}
		_, err = stmt.ExecContext(ctx,
			s.ID, run.ID, s.Label, s.Position, s.E1, s.E2, s.Year, s.Month,
			string(papersJSON), s.NodeCount, s.EdgeCount,
		)
		if err != nil {
			return errors.Wrapf(err, "inserting sample %s-%s", s.E1, s.E2)
		}
	}

	return errors.Wrap(tx.Commit(), "committing run")
}

// GetRunSamples returns the manifest of a run in insertion order.
func (d *DB) GetRunSamples(ctx context.Context, runID string) ([]SampleRow, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT id, label, position, e1, e2, year, month, cooc_papers, node_count, edge_count
		FROM samples WHERE run_id = ? ORDER BY id
	`, runID)
	if err != nil {
		return nil, errors.Wrap(err, "querying samples")
	}
	defer rows.Close()

	var out []SampleRow
	for rows.Next() {
		var s SampleRow
		var papers string
		if err := rows.Scan(&s.ID, &s.Label, &s.Position, &s.E1, &s.E2, &s.Year, &s.Month,
			&papers, &s.NodeCount, &s.EdgeCount); err != nil {
			return nil, errors.Wrap(err, "scanning sample")
		}
		if err := json.Unmarshal([]byte(papers), &s.CoocPapers); err != nil {
			return nil, errors.Wrap(err, "decoding cooc papers")
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
