package cooc

import (
	"fmt"

	"cocon/cooc/internal/graph"
)

func paperNode(id string, year, month int) *graph.Node {
	return &graph.Node{ID: id, Type: graph.TypePaper, Paper: &graph.PaperInfo{Year: year, Month: month}}
}

func entityNode(id string, t graph.NodeType) *graph.Node {
	return &graph.Node{ID: id, Type: t}
}

func usedIn(entityID, paperID string) graph.Edge {
	return graph.Edge{Source: entityID, Target: paperID, Type: graph.EdgeUsedInPaper}
}

// threePapers: M1 with D1 in 2019-01, M1 with D2 in 2020-06, M1 with T1 in 2020-06.
func threePapers() *graph.Snapshot {
	nodes := []*graph.Node{
		paperNode("P1", 2019, 1),
		paperNode("P2", 2020, 6),
		paperNode("P3", 2020, 6),
		entityNode("M1", graph.TypeModel),
		entityNode("D1", graph.TypeDataset),
		entityNode("D2", graph.TypeDataset),
		entityNode("T1", graph.TypeTask),
	}
	edges := []graph.Edge{
		usedIn("M1", "P1"), usedIn("D1", "P1"),
		usedIn("M1", "P2"), usedIn("D2", "P2"),
		usedIn("M1", "P3"), usedIn("T1", "P3"),
	}
	return graph.NewSnapshot(nodes, edges)
}

// corpus builds n papers in 2020 and n in 2019. Paper Pi (2020, i%12+1)
// links model Mi, dataset Di and task Ti; paper Qi (2019, i%12+1) links Mi
// with dataset Ei. Records from different papers never share a paper.
func corpus(n int) *graph.Snapshot {
	var nodes []*graph.Node
	var edges []graph.Edge
	for i := 0; i < n; i++ {
		p := fmt.Sprintf("P%02d", i)
		q := fmt.Sprintf("Q%02d", i)
		m := fmt.Sprintf("M%02d", i)
		d := fmt.Sprintf("D%02d", i)
		tk := fmt.Sprintf("T%02d", i)
		e := fmt.Sprintf("E%02d", i)
		nodes = append(nodes,
			paperNode(p, 2020, i%12+1),
			paperNode(q, 2019, i%12+1),
			entityNode(m, graph.TypeModel),
			entityNode(d, graph.TypeDataset),
			entityNode(tk, graph.TypeTask),
			entityNode(e, graph.TypeDataset),
		)
		edges = append(edges,
			usedIn(m, p), usedIn(d, p), usedIn(tk, p),
			usedIn(m, q), usedIn(e, q),
		)
	}
	return graph.NewSnapshot(nodes, edges)
}

func recordKeys(recs []*Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Key.String()
	}
	return out
}
