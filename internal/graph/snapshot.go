package graph

import "sort"

// Snapshot is a read-only in-memory view of the scholarly graph with
// precomputed adjacency. It is safe for concurrent readers once built.
type Snapshot struct {
	Nodes  map[string]*Node
	Edges  []Edge
	Adj    map[string][]string // undirected, deduplicated, sorted
	OutAdj map[string][]Edge   // directed: tail -> edges
	InAdj  map[string][]Edge   // directed: head -> edges

	// Ghosts counts input nodes dropped for lacking a type.
	Ghosts int
	// DanglingEdges counts input edges dropped because an endpoint is absent.
	DanglingEdges int
	// Malformed counts stored nodes skipped because their attrs did not decode.
	Malformed int

	ids    []string
	papers []string
}

// NewSnapshot builds a Snapshot from raw nodes and edges. Nodes without a
// known type and edges referencing absent nodes are filtered out here, so
// no attribute-less node ever enters the structure.
func NewSnapshot(nodes []*Node, edges []Edge) *Snapshot {
	s := &Snapshot{
		Nodes:  make(map[string]*Node, len(nodes)),
		Adj:    make(map[string][]string, len(nodes)),
		OutAdj: make(map[string][]Edge),
		InAdj:  make(map[string][]Edge),
	}

	for _, n := range nodes {
		if n == nil || n.Type == TypeUnknown {
			s.Ghosts++
			continue
		}
		s.Nodes[n.ID] = n
		s.Adj[n.ID] = nil // ensure entry exists
	}

	seen := make(map[Edge]bool, len(edges))
	adjSeen := make(map[[2]string]bool, len(edges))
	for _, e := range edges {
		if _, ok := s.Nodes[e.Source]; !ok {
			s.DanglingEdges++
			continue
		}
		if _, ok := s.Nodes[e.Target]; !ok {
			s.DanglingEdges++
			continue
		}
		if seen[e] {
			continue
		}
		seen[e] = true
		s.Edges = append(s.Edges, e)
		s.OutAdj[e.Source] = append(s.OutAdj[e.Source], e)
		s.InAdj[e.Target] = append(s.InAdj[e.Target], e)

		if e.Source == e.Target {
			continue
		}
		key := [2]string{e.Source, e.Target}
		if key[0] > key[1] {
			key[0], key[1] = key[1], key[0]
		}
		if !adjSeen[key] {
			adjSeen[key] = true
			s.Adj[e.Source] = append(s.Adj[e.Source], e.Target)
			s.Adj[e.Target] = append(s.Adj[e.Target], e.Source)
		}
	}

	for id := range s.Adj {
		sort.Strings(s.Adj[id])
	}

	s.ids = make([]string, 0, len(s.Nodes))
	for id, n := range s.Nodes {
		s.ids = append(s.ids, id)
		if n.IsPaper() {
			s.papers = append(s.papers, id)
		}
	}
	sort.Strings(s.ids)
	sort.Strings(s.papers)

	return s
}

// NodeIDs returns a sorted list of all node IDs (for deterministic output)
func (s *Snapshot) NodeIDs() []string {
	return s.ids
}

// PaperIDs returns the sorted IDs of all paper nodes.
func (s *Snapshot) PaperIDs() []string {
	return s.papers
}

// Node returns the node with the given ID.
func (s *Snapshot) Node(id string) (*Node, bool) {
	n, ok := s.Nodes[id]
	return n, ok
}

// Neighbors returns the sorted undirected neighbors of id.
func (s *Snapshot) Neighbors(id string) []string {
	return s.Adj[id]
}

// Degree is the number of distinct undirected neighbors of id.
func (s *Snapshot) Degree(id string) int {
	return len(s.Adj[id])
}

// Out returns the edges whose tail is id.
func (s *Snapshot) Out(id string) []Edge {
	return s.OutAdj[id]
}

// In returns the edges whose head is id.
func (s *Snapshot) In(id string) []Edge {
	return s.InAdj[id]
}

// Induced returns the subgraph on the given node set with every edge whose
// endpoints are both kept. IDs absent from the snapshot are ignored.
func (s *Snapshot) Induced(keep map[string]bool) *Snapshot {
	nodes := make([]*Node, 0, len(keep))
	for _, id := range s.ids {
		if keep[id] {
			nodes = append(nodes, s.Nodes[id])
		}
	}
	var edges []Edge
	for _, e := range s.Edges {
		if keep[e.Source] && keep[e.Target] {
			edges = append(edges, e)
		}
	}
	return NewSnapshot(nodes, edges)
}

// Filter returns the subgraph of nodes for which keep returns true.
func (s *Snapshot) Filter(keep func(*Node) bool) *Snapshot {
	set := make(map[string]bool, len(s.Nodes))
	for id, n := range s.Nodes {
		if keep(n) {
			set[id] = true
		}
	}
	return s.Induced(set)
}
