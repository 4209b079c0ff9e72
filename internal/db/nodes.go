package db

import (
	"context"
	"database/sql"

	"cocon/cooc/internal/errors"
)

// scanNode scans a row into a Node. The row must have all 7 columns in standard order.
func scanNode(scanner interface{ Scan(dest ...any) error }) (Node, error) {
	var n Node
	var year, month, day sql.NullInt64
	err := scanner.Scan(&n.ID, &n.Type, &n.Name, &year, &month, &day, &n.Attrs)
	if err != nil {
		return n, err
	}
	n.Year = nullInt(year)
	n.Month = nullInt(month)
	n.Day = nullInt(day)
	return n, nil
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

// AllNodes returns all nodes ordered by id so snapshots iterate deterministically
func (d *DB) AllNodes(ctx context.Context) ([]Node, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT id, type, name, year, month, day, attrs
		FROM nodes ORDER BY id
	`)
	if err != nil {
		return nil, errors.Wrap(err, "querying nodes")
	}
	defer rows.Close()

	var nodes []Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning node")
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// GetNode returns a single node by ID. Missing rows yield ErrNotFound.
func (d *DB) GetNode(ctx context.Context, id string) (*Node, error) {
	row := d.conn.QueryRowContext(ctx, `
		SELECT id, type, name, year, month, day, attrs
		FROM nodes WHERE id = ?
	`, id)

	n, err := scanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(errors.ErrNotFound, "node %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// SearchByIDPrefix finds nodes whose ID starts with the given prefix.
func (d *DB) SearchByIDPrefix(ctx context.Context, prefix string, limit int) ([]Node, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT id, type, name, year, month, day, attrs
		FROM nodes WHERE id LIKE ? ORDER BY id LIMIT ?
	`, prefix+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// InsertNode writes or replaces a node row.
func (d *DB) InsertNode(ctx context.Context, n Node) error {
	_, err := d.conn.ExecContext(ctx, `
		INSERT OR REPLACE INTO nodes (id, type, name, year, month, day, attrs)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, n.ID, n.Type, n.Name, n.Year, n.Month, n.Day, n.Attrs)
	if err != nil {
		return errors.Wrapf(err, "inserting node %s", n.ID)
	}
	return nil
}
