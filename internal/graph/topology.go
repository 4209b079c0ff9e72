package graph

import "sort"

// HubNode is a node with high connectivity
type HubNode struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Degree    int    `json:"degree"`
	InDegree  int    `json:"in_degree"`
	OutDegree int    `json:"out_degree"`
}

// DegreeBucket is one bucket in the degree histogram
type DegreeBucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// TopologyReport contains topology analysis results
type TopologyReport struct {
	TotalNodes        int            `json:"total_nodes"`
	TotalEdges        int            `json:"total_edges"`
	TypeCounts        map[string]int `json:"type_counts"`
	EdgeTypeCounts    map[string]int `json:"edge_type_counts"`
	NumComponents     int            `json:"num_components"`
	LargestComponent  int            `json:"largest_component"`
	SmallestComponent int            `json:"smallest_component"`
	OrphanCount       int            `json:"orphan_count"`
	OrphanIDs         []string       `json:"orphan_ids"`
	DegreeHistogram   []DegreeBucket `json:"degree_histogram"`
	Hubs              []HubNode      `json:"hubs"`
}

// ComputeTopology analyzes graph topology: type mix, components, orphans, degree distribution, hubs
func ComputeTopology(snap *Snapshot, hubThreshold, topN int) *TopologyReport {
	totalNodes := len(snap.Nodes)
	totalEdges := len(snap.Edges)

	if totalNodes == 0 {
		return &TopologyReport{
			TypeCounts:      map[string]int{},
			EdgeTypeCounts:  map[string]int{},
			DegreeHistogram: defaultHistogram(),
		}
	}

	typeCounts := make(map[string]int)
	for _, n := range snap.Nodes {
		typeCounts[n.Type.String()]++
	}
	edgeTypeCounts := make(map[string]int)
	for _, e := range snap.Edges {
		edgeTypeCounts[string(e.Type)]++
	}

	// Connected components via UnionFind
	nodeIDs := snap.NodeIDs()
	uf := NewUnionFind(nodeIDs)
	for _, e := range snap.Edges {
		uf.Union(e.Source, e.Target)
	}

	components := uf.Components()
	largest, smallest := len(components[0]), len(components[len(components)-1])

	// Orphans: degree == 0
	var orphans []string
	for _, id := range nodeIDs {
		if snap.Degree(id) == 0 {
			orphans = append(orphans, id)
		}
	}
	orphanCount := len(orphans)
	if len(orphans) > topN {
		orphans = orphans[:topN]
	}

	// Degree histogram (log-scale buckets)
	histogram := defaultHistogram()
	for _, id := range nodeIDs {
		histogram[degreeBucket(snap.Degree(id))].Count++
	}

	// Hubs: degree > threshold
	var hubs []HubNode
	for _, id := range nodeIDs {
		degree := snap.Degree(id)
		if degree > hubThreshold {
			hubs = append(hubs, HubNode{
				ID:        id,
				Type:      snap.Nodes[id].Type.String(),
				Degree:    degree,
				InDegree:  len(snap.InAdj[id]),
				OutDegree: len(snap.OutAdj[id]),
			})
		}
	}
	sort.SliceStable(hubs, func(i, j int) bool { return hubs[i].Degree > hubs[j].Degree })
	if len(hubs) > topN {
		hubs = hubs[:topN]
	}

	return &TopologyReport{
		TotalNodes:        totalNodes,
		TotalEdges:        totalEdges,
		TypeCounts:        typeCounts,
		EdgeTypeCounts:    edgeTypeCounts,
		NumComponents:     len(components),
		LargestComponent:  largest,
		SmallestComponent: smallest,
		OrphanCount:       orphanCount,
		OrphanIDs:         orphans,
		DegreeHistogram:   histogram,
		Hubs:              hubs,
	}
}

func defaultHistogram() []DegreeBucket {
	return []DegreeBucket{
		{Label: "0"}, {Label: "1"}, {Label: "2-3"},
		{Label: "4-7"}, {Label: "8-15"}, {Label: "16-31"}, {Label: "32+"},
	}
}

func degreeBucket(degree int) int {
	switch {
	case degree == 0:
		return 0
	case degree == 1:
		return 1
	case degree <= 3:
		return 2
	case degree <= 7:
		return 3
	case degree <= 15:
		return 4
	case degree <= 31:
		return 5
	default:
		return 6
	}
}
