package cmd

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"cocon/cooc/internal/errors"
	"cocon/cooc/internal/graph"
)

var (
	analyzeJSON         bool
	analyzeTypes        string
	analyzeTopN         int
	analyzeHubThreshold int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze graph store structure: type mix, components, degrees, hubs",
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := LoadSnapshot(cmd.Context())
		if err != nil {
			return err
		}

		if analyzeTypes != "" {
			keep, err := parseTypeList(analyzeTypes)
			if err != nil {
				return err
			}
			snap = snap.Filter(func(n *graph.Node) bool { return keep[n.Type] })
		}

		report := graph.ComputeTopology(snap, analyzeHubThreshold, analyzeTopN)

		if analyzeJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		printTopology(report, snap)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Output as JSON")
	analyzeCmd.Flags().StringVar(&analyzeTypes, "types", "", "Comma-separated node types to keep (e.g. paper,dataset)")
	analyzeCmd.Flags().IntVar(&analyzeTopN, "top-n", 10, "Number of top items to show per section")
	analyzeCmd.Flags().IntVar(&analyzeHubThreshold, "hub-threshold", 15, "Minimum degree to consider a node a hub")
	rootCmd.AddCommand(analyzeCmd)
}

func parseTypeList(s string) (map[graph.NodeType]bool, error) {
	keep := make(map[graph.NodeType]bool)
	for _, name := range strings.Split(s, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		t, ok := graph.ParseNodeType(name)
		if !ok {
			return nil, errors.Newf("unknown node type %q", name)
		}
		keep[t] = true
	}
	return keep, nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func printTopology(t *graph.TopologyReport, snap *graph.Snapshot) {
	fmt.Println("\n  TOPOLOGY")
	fmt.Println("  ────────────────────────────────────────")
	fmt.Printf("  Nodes: %d  Edges: %d  Components: %d\n", t.TotalNodes, t.TotalEdges, t.NumComponents)
	fmt.Printf("  Largest component: %d  Smallest: %d\n", t.LargestComponent, t.SmallestComponent)
	if snap.Ghosts > 0 || snap.DanglingEdges > 0 || snap.Malformed > 0 {
		fmt.Printf("  Skipped: %d untyped nodes, %d malformed nodes, %d dangling edges\n",
			snap.Ghosts, snap.Malformed, snap.DanglingEdges)
	}

	fmt.Println("\n  Node types:")
	for _, name := range sortedKeys(t.TypeCounts) {
		fmt.Printf("    %-12s %d\n", name, t.TypeCounts[name])
	}
	fmt.Println("\n  Edge types:")
	for _, name := range sortedKeys(t.EdgeTypeCounts) {
		fmt.Printf("    %-14s %d\n", name, t.EdgeTypeCounts[name])
	}

	if t.OrphanCount > 0 {
		fmt.Printf("\n  Orphans: %d disconnected nodes\n", t.OrphanCount)
		limit := 5
		if len(t.OrphanIDs) < limit {
			limit = len(t.OrphanIDs)
		}
		for _, id := range t.OrphanIDs[:limit] {
			kind := "?"
			if node := snap.Nodes[id]; node != nil {
				kind = node.Type.String()
			}
			fmt.Printf("    - %s (%s)\n", truncID(id, 50), kind)
		}
		if t.OrphanCount > 5 {
			fmt.Printf("    ... and %d more\n", t.OrphanCount-5)
		}
	}

	// Degree distribution
	fmt.Println("\n  Degree distribution:")
	for _, b := range t.DegreeHistogram {
		if b.Count > 0 {
			barWidth := int(math.Log2(float64(b.Count))) + 2
			if barWidth < 1 {
				barWidth = 1
			}
			fmt.Printf("    %5s: %4d  %s\n", b.Label, b.Count, strings.Repeat("=", barWidth))
		}
	}

	// Hubs
	if len(t.Hubs) > 0 {
		fmt.Println("\n  Top hubs (degree > threshold):")
		for _, hub := range t.Hubs {
			fmt.Printf("    %-8s degree=%d (in=%d, out=%d)  %s\n",
				hub.Type, hub.Degree, hub.InDegree, hub.OutDegree, truncID(hub.ID, 50))
		}
	}

	fmt.Println()
}
