// Package export writes samples in the cytoscape JSON layout consumed by the
// embedding pipeline, and reads them back.
//
// Each sample becomes two files in the export directory:
//
//	{prefix}_{pos|neg}_{NN}_graph.json            the pruned neighborhood
//	{prefix}_{pos|neg}_{NN}_prediction_edge.json  the pair, its papers and anchor
//
// NN is the sample's index within its label, zero padded to two digits.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"cocon/cooc/internal/cooc"
	"cocon/cooc/internal/errors"
	"cocon/cooc/internal/graph"
)

// Graph is the cytoscape document for one subgraph.
type Graph struct {
	Data       map[string]any `json:"data"`
	Directed   bool           `json:"directed"`
	Multigraph bool           `json:"multigraph"`
	Elements   Elements       `json:"elements"`
}

// Elements holds the node and edge lists.
type Elements struct {
	Nodes []Element `json:"nodes"`
	Edges []Element `json:"edges"`
}

// Element wraps one node's or edge's attributes.
type Element struct {
	Data map[string]any `json:"data"`
}

// PredictionEdge describes the pair a sample asks a model to predict.
type PredictionEdge struct {
	Edge       [2]string `json:"edge"`
	CoocPapers []string  `json:"cooc_pprs"`
	Year       int       `json:"year"`
	Month      int       `json:"month"`
	Label      string    `json:"label"`
}

// Cytoscape converts a snapshot. Nodes and edges come out in snapshot order
// (nodes by ID, edges in insertion order) so exports are reproducible.
func Cytoscape(sub *graph.Snapshot) Graph {
	g := Graph{
		Data:       map[string]any{},
		Directed:   true,
		Multigraph: true,
		Elements: Elements{
			Nodes: make([]Element, 0, len(sub.Nodes)),
			Edges: make([]Element, 0, len(sub.Edges)),
		},
	}
	for _, id := range sub.NodeIDs() {
		n := sub.Nodes[id]
		data := make(map[string]any, len(n.Attrs)+6)
		for k, v := range n.Attrs {
			data[k] = v
		}
		data["id"] = n.ID
		data["value"] = n.ID
		data["type"] = n.Type.String()
		if n.Name != "" {
			data["name"] = n.Name
		}
		if n.Paper != nil {
			if n.Paper.Year > 0 {
				data["year"] = n.Paper.Year
			}
			if n.Paper.Month > 0 {
				data["month"] = n.Paper.Month
			}
			if n.Paper.Day > 0 {
				data["day"] = n.Paper.Day
			}
		}
		if n.Model != nil && len(n.Model.Evaluations) > 0 {
			data["evaluations"] = n.Model.Evaluations
		}
		g.Elements.Nodes = append(g.Elements.Nodes, Element{Data: data})
	}
	for _, e := range sub.Edges {
		g.Elements.Edges = append(g.Elements.Edges, Element{Data: map[string]any{
			"source": e.Source,
			"target": e.Target,
			"type":   string(e.Type),
		}})
	}
	return g
}

// Prediction builds the prediction-edge document for a sample.
func Prediction(s cooc.Sample) PredictionEdge {
	papers := s.Record.PaperIDs()
	return PredictionEdge{
		Edge:       [2]string{s.Record.Key.E1, s.Record.Key.E2},
		CoocPapers: papers,
		Year:       s.Record.Anchor.Year,
		Month:      s.Record.Anchor.Month,
		Label:      string(s.Label),
	}
}

// FileNames returns the graph and prediction-edge file names of the i-th
// sample with the given label.
func FileNames(prefix string, label cooc.Label, i int) (graphFile, predFile string) {
	base := fmt.Sprintf("%s_%s_%02d", prefix, label, i)
	return base + "_graph.json", base + "_prediction_edge.json"
}

// WriteSamples writes every sample of res into dir, creating it if needed,
// and returns the paths written.
func WriteSamples(dir, prefix string, res *cooc.Result) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating export dir %s", dir)
	}

	var written []string
	for _, set := range [][]cooc.Sample{res.Positives, res.Negatives} {
		for i, s := range set {
			graphFile, predFile := FileNames(prefix, s.Label, i)
			graphPath := filepath.Join(dir, graphFile)
			predPath := filepath.Join(dir, predFile)

			if err := writeJSON(graphPath, Cytoscape(s.Graph)); err != nil {
				return written, err
			}
			written = append(written, graphPath)
			if err := writeJSON(predPath, Prediction(s)); err != nil {
				return written, err
			}
			written = append(written, predPath)
		}
	}
	return written, nil
}

func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encoding %s", path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}

// ReadSample loads a graph file and its prediction-edge file. Only node id,
// type and paper dates are interpreted; other node attributes are kept in
// Attrs.
func ReadSample(graphPath, predPath string) (*graph.Snapshot, *PredictionEdge, error) {
	var doc Graph
	if err := readJSON(graphPath, &doc); err != nil {
		return nil, nil, err
	}
	var pred PredictionEdge
	if err := readJSON(predPath, &pred); err != nil {
		return nil, nil, err
	}

	nodes := make([]*graph.Node, 0, len(doc.Elements.Nodes))
	for _, el := range doc.Elements.Nodes {
		nodes = append(nodes, nodeFromData(el.Data))
	}
	edges := make([]graph.Edge, 0, len(doc.Elements.Edges))
	for _, el := range doc.Elements.Edges {
		src, _ := el.Data["source"].(string)
		dst, _ := el.Data["target"].(string)
		typ, _ := el.Data["type"].(string)
		edges = append(edges, graph.Edge{Source: src, Target: dst, Type: graph.EdgeType(typ)})
	}
	return graph.NewSnapshot(nodes, edges), &pred, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrapf(err, "decoding %s", path)
	}
	return nil
}

var reserved = map[string]bool{
	"id": true, "value": true, "type": true, "name": true,
	"year": true, "month": true, "day": true, "evaluations": true,
}

func nodeFromData(data map[string]any) *graph.Node {
	id, _ := data["id"].(string)
	typeName, _ := data["type"].(string)
	nt, _ := graph.ParseNodeType(typeName)
	name, _ := data["name"].(string)

	n := &graph.Node{ID: id, Type: nt, Name: name}
	switch nt {
	case graph.TypePaper:
		n.Paper = &graph.PaperInfo{
			Year:  intField(data, "year"),
			Month: intField(data, "month"),
			Day:   intField(data, "day"),
		}
	case graph.TypeModel:
		n.Model = &graph.ModelInfo{}
		if evals, ok := data["evaluations"].([]any); ok {
			for _, e := range evals {
				if s, ok := e.(string); ok {
					n.Model.Evaluations = append(n.Model.Evaluations, s)
				}
			}
		}
	}
	for k, v := range data {
		if reserved[k] {
			continue
		}
		if n.Attrs == nil {
			n.Attrs = make(map[string]any)
		}
		n.Attrs[k] = v
	}
	return n
}

func intField(data map[string]any, key string) int {
	if f, ok := data[key].(float64); ok {
		return int(f)
	}
	return 0
}
