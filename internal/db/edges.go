package db

import (
	"context"

	"cocon/cooc/internal/errors"
)

// scanEdge scans a row into an Edge. The row must have all 3 columns in standard order.
func scanEdge(scanner interface{ Scan(dest ...any) error }) (Edge, error) {
	var e Edge
	err := scanner.Scan(&e.SourceID, &e.TargetID, &e.Type)
	return e, err
}

// AllEdges returns all edges in (source, target, type) order
func (d *DB) AllEdges(ctx context.Context) ([]Edge, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT source_id, target_id, type
		FROM edges ORDER BY source_id, target_id, type
	`)
	if err != nil {
		return nil, errors.Wrap(err, "querying edges")
	}
	defer rows.Close()

	var edges []Edge
	for rows.Next() {
		e, err := scanEdge(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning edge")
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// GetEdgesForNode returns all edges where the given node is source OR target.
func (d *DB) GetEdgesForNode(ctx context.Context, nodeID string) ([]Edge, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT source_id, target_id, type
		FROM edges WHERE source_id = ? OR target_id = ?
		ORDER BY source_id, target_id, type
	`, nodeID, nodeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []Edge
	for rows.Next() {
		e, err := scanEdge(rows)
		if err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// InsertEdge writes an edge. Re-inserting the same (source, target, type) is a no-op.
func (d *DB) InsertEdge(ctx context.Context, e Edge) error {
	_, err := d.conn.ExecContext(ctx, `
		INSERT OR IGNORE INTO edges (source_id, target_id, type) VALUES (?, ?, ?)
	`, e.SourceID, e.TargetID, e.Type)
	if err != nil {
		return errors.Wrapf(err, "inserting edge %s -> %s", e.SourceID, e.TargetID)
	}
	return nil
}
