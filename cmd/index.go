package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"cocon/cooc/internal/cooc"
)

var (
	indexJSON    bool
	indexSamples int
	indexCap     int
	indexTop     int
)

type indexPair struct {
	E1     string `json:"e1"`
	E2     string `json:"e2"`
	Year   int    `json:"year"`
	Month  int    `json:"month"`
	Papers int    `json:"papers"`
}

type indexSummary struct {
	Pairs    int             `json:"pairs"`
	Stats    cooc.IndexStats `json:"stats"`
	Clusters []clusterRow    `json:"clusters"`
	Top      []indexPair     `json:"top_pairs"`
}

type clusterRow struct {
	Year   int `json:"year"`
	Size   int `json:"size"`
	Target int `json:"target"`
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the co-occurrence index and show its year clusters",
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := LoadSnapshot(cmd.Context())
		if err != nil {
			return err
		}

		idx := cooc.BuildIndex(snap, indexCap)
		summary := summarizeIndex(idx, indexSamples, indexTop)

		if indexJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(summary)
		}

		fmt.Println("\n  CO-OCCURRENCE INDEX")
		fmt.Println("  ────────────────────────────────────────")
		fmt.Printf("  Pairs: %d  Papers scanned: %d  Undated: %d\n",
			summary.Pairs, summary.Stats.PapersScanned, summary.Stats.UndatedPapers)
		if summary.Stats.Capped {
			fmt.Printf("  Capped at %d pairs\n", indexCap)
		}
		if summary.Stats.GhostNeighbors > 0 {
			fmt.Printf("  Ghost neighbors skipped: %d\n", summary.Stats.GhostNeighbors)
		}

		fmt.Println("\n  Year clusters:")
		for _, c := range summary.Clusters {
			fmt.Printf("    %7s: %6d pairs  target %d\n", yearLabel(c.Year), c.Size, c.Target)
		}

		if len(summary.Top) > 0 {
			fmt.Println("\n  Most shared pairs:")
			for _, p := range summary.Top {
				fmt.Printf("    %3d papers  %d-%02d  %s <-> %s\n",
					p.Papers, p.Year, p.Month, truncMiddle(p.E1, 40), truncMiddle(p.E2, 40))
			}
		}
		fmt.Println()
		return nil
	},
}

func init() {
	indexCmd.Flags().BoolVar(&indexJSON, "json", false, "Output as JSON")
	indexCmd.Flags().IntVar(&indexSamples, "samples", 0, "Preview per-cluster targets for this many samples")
	indexCmd.Flags().IntVar(&indexCap, "index-cap", 0, "Stop indexing after this many pairs (0 = uncapped)")
	indexCmd.Flags().IntVar(&indexTop, "top", 10, "Number of most shared pairs to list")
	rootCmd.AddCommand(indexCmd)
}

func summarizeIndex(idx *cooc.Index, samples, top int) indexSummary {
	s := indexSummary{Pairs: idx.Len(), Stats: idx.Stats}
	for _, c := range cooc.Stratify(idx, samples) {
		s.Clusters = append(s.Clusters, clusterRow{Year: c.Year, Size: len(c.Records), Target: c.Target})
	}

	recs := idx.Records()
	sort.SliceStable(recs, func(i, j int) bool { return len(recs[i].Papers) > len(recs[j].Papers) })
	if top > len(recs) {
		top = len(recs)
	}
	for _, r := range recs[:max(top, 0)] {
		s.Top = append(s.Top, indexPair{
			E1: r.Key.E1, E2: r.Key.E2,
			Year: r.Anchor.Year, Month: r.Anchor.Month,
			Papers: len(r.Papers),
		})
	}
	return s
}
