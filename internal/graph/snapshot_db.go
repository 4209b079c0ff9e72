package graph

import (
	"context"
	"encoding/json"

	"cocon/cooc/internal/db"
	"cocon/cooc/internal/errors"
)

// SnapshotFromDB loads a Snapshot from the database. Nodes whose attrs fail
// to decode are skipped and counted in Malformed; their edges then count as
// dangling.
func SnapshotFromDB(ctx context.Context, d *db.DB) (*Snapshot, error) {
	dbNodes, err := d.AllNodes(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "loading nodes")
	}
	dbEdges, err := d.AllEdges(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "loading edges")
	}

	nodes := make([]*Node, 0, len(dbNodes))
	malformed := 0
	for _, n := range dbNodes {
		node, err := NodeFromRow(n)
		if err != nil {
			malformed++
			continue
		}
		nodes = append(nodes, node)
	}

	edges := make([]Edge, 0, len(dbEdges))
	for _, e := range dbEdges {
		edges = append(edges, Edge{
			Source: e.SourceID,
			Target: e.TargetID,
			Type:   EdgeType(e.Type),
		})
	}

	snap := NewSnapshot(nodes, edges)
	snap.Malformed = malformed
	return snap, nil
}

// NodeFromRow converts a stored row into a typed Node. An unknown type
// label yields a TypeUnknown node, which NewSnapshot treats as a ghost.
func NodeFromRow(n db.Node) (*Node, error) {
	nodeType, _ := ParseNodeType(n.Type)
	node := &Node{ID: n.ID, Type: nodeType, Name: n.Name}

	if n.Attrs != nil && *n.Attrs != "" {
		if err := json.Unmarshal([]byte(*n.Attrs), &node.Attrs); err != nil {
			return nil, errors.Wrapf(errors.Mark(err, errors.ErrMalformedAttrs), "decoding attrs of node %s", n.ID)
		}
	}

	switch nodeType {
	case TypePaper:
		node.Paper = &PaperInfo{
			Year:  derefInt(n.Year),
			Month: derefInt(n.Month),
			Day:   derefInt(n.Day),
		}
	case TypeModel:
		info := &ModelInfo{}
		if evals, ok := node.Attrs["evaluations"].([]any); ok {
			for _, ev := range evals {
				if s, ok := ev.(string); ok {
					info.Evaluations = append(info.Evaluations, s)
				}
			}
		}
		node.Model = info
	}
	return node, nil
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
