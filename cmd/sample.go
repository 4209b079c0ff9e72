package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"cocon/cooc/internal/config"
	"cocon/cooc/internal/cooc"
	"cocon/cooc/internal/db"
	"cocon/cooc/internal/errors"
	"cocon/cooc/internal/export"
	"cocon/cooc/internal/graph"
	"cocon/cooc/internal/logger"
)

var (
	sampleJSON   bool
	sampleNoSave bool
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Draw positive and negative pair samples with pruned neighborhoods",
	Long: `Builds the co-occurrence index, stratifies it by first-occurrence year,
synthesizes negatives from disjoint positives, and prunes every sample's
neighborhood to what was known before the pair's temporal anchor.

Samples are written as cytoscape JSON when an export directory is set
(--out or export.dir), and the run is recorded in the graph store unless
--no-save is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := LoadConfig()
		if err != nil {
			return err
		}
		if err := applySampleFlags(cmd.Flags(), cfg); err != nil {
			return err
		}

		d, err := OpenDatabase(ctx)
		if err != nil {
			return err
		}
		defer d.Close()

		snap, err := graph.SnapshotFromDB(ctx, d)
		if err != nil {
			return errors.Wrap(err, "loading graph")
		}

		sampler, err := cooc.NewSampler(snap, cfg, logger.Logger)
		if err != nil {
			return err
		}
		res, err := sampler.Run(ctx)
		if err != nil {
			return err
		}

		var written []string
		if cfg.Export.Dir != "" {
			written, err = export.WriteSamples(cfg.Export.Dir, cfg.Export.Prefix, res)
			if err != nil {
				return err
			}
			logger.Logger.Infow("samples exported", "dir", cfg.Export.Dir, "files", len(written))
		}

		var run *db.Run
		if !sampleNoSave {
			run = manifest(res, cfg, time.Now())
			if err := d.SaveRun(ctx, run); err != nil {
				return errors.Wrap(err, "saving run manifest")
			}
		}

		if sampleJSON {
			out := struct {
				RunID  string      `json:"run_id,omitempty"`
				Files  int         `json:"files"`
				Report cooc.Report `json:"report"`
			}{Files: len(written), Report: res.Report}
			if run != nil {
				out.RunID = run.ID
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}

		printSampleReport(res, run, cfg, len(written))
		return nil
	},
}

func init() {
	addSampleFlags(sampleCmd.Flags())
	rootCmd.AddCommand(sampleCmd)
}

func addSampleFlags(f *pflag.FlagSet) {
	f.Int("samples", 0, "Requested positives (<=0 keeps the natural distribution)")
	f.Int64("seed", 0, "Random seed for reproducible runs")
	f.Int("workers", 0, "Parallel pruning workers (0 = GOMAXPROCS)")
	f.Int("hops", 2, "Neighborhood radius")
	f.Int("index-cap", 0, "Stop indexing after this many pairs (0 = uncapped)")
	f.String("temporal-mode", string(config.TemporalStrict), "Paper date comparison: strict or lexicographic")
	f.Bool("no-reprune", false, "Skip the second neighborhood pass after pruning")
	f.String("out", "", "Export directory for cytoscape JSON samples")
	f.String("prefix", "", "Export file name prefix")
	f.BoolVar(&sampleNoSave, "no-save", false, "Do not record the run in the graph store")
	f.BoolVar(&sampleJSON, "json", false, "Output the run report as JSON")
}

// applySampleFlags overrides config values with flags the user set explicitly.
func applySampleFlags(f *pflag.FlagSet, cfg *config.Config) error {
	var err error
	set := func(name string, apply func() error) {
		if err == nil && f.Changed(name) {
			err = apply()
		}
	}
	set("samples", func() (e error) { cfg.Samples, e = f.GetInt("samples"); return })
	set("workers", func() (e error) { cfg.Workers, e = f.GetInt("workers"); return })
	set("hops", func() (e error) { cfg.Hops, e = f.GetInt("hops"); return })
	set("index-cap", func() (e error) { cfg.IndexCap, e = f.GetInt("index-cap"); return })
	set("seed", func() error {
		seed, e := f.GetInt64("seed")
		cfg.Seed = &seed
		return e
	})
	set("temporal-mode", func() error {
		mode, e := f.GetString("temporal-mode")
		cfg.TemporalMode = config.TemporalMode(mode)
		return e
	})
	set("no-reprune", func() error {
		skip, e := f.GetBool("no-reprune")
		cfg.Reprune = !skip
		return e
	})
	set("out", func() (e error) { cfg.Export.Dir, e = f.GetString("out"); return })
	set("prefix", func() (e error) { cfg.Export.Prefix, e = f.GetString("prefix"); return })
	if err != nil {
		return err
	}
	return cfg.Validate()
}

// manifest converts a result into the rows persisted by SaveRun.
func manifest(res *cooc.Result, cfg *config.Config, now time.Time) *db.Run {
	run := &db.Run{
		CreatedAt: now.UnixMilli(),
		Seed:      cfg.Seed,
		Requested: cfg.Samples,
		IndexSize: res.Report.IndexSize,
	}
	for _, set := range [][]cooc.Sample{res.Positives, res.Negatives} {
		for i, s := range set {
			run.Samples = append(run.Samples, db.SampleRow{
				Label:      string(s.Label),
				Position:   i,
				E1:         s.Record.Key.E1,
				E2:         s.Record.Key.E2,
				Year:       s.Record.Anchor.Year,
				Month:      s.Record.Anchor.Month,
				CoocPapers: s.Record.PaperIDs(),
				NodeCount:  len(s.Graph.Nodes),
				EdgeCount:  len(s.Graph.Edges),
			})
		}
	}
	return run
}

func printSampleReport(res *cooc.Result, run *db.Run, cfg *config.Config, files int) {
	r := res.Report
	fmt.Println("\n  SAMPLING")
	fmt.Println("  ────────────────────────────────────────")
	if run != nil {
		fmt.Printf("  Run: %s\n", run.ID)
	}
	if r.Seed != nil {
		fmt.Printf("  Seed: %d\n", *r.Seed)
	}
	requested := "natural"
	if r.Requested > 0 {
		requested = fmt.Sprintf("%d", r.Requested)
	}
	fmt.Printf("  Requested: %s  Index pairs: %d  Papers: %d (undated %d)\n",
		requested, r.IndexSize, r.Index.PapersScanned, r.Index.UndatedPapers)
	if r.Index.Capped {
		fmt.Println("  Index capped at configured limit")
	}
	if r.Ghosts > 0 || r.DanglingEdges > 0 || r.Malformed > 0 {
		fmt.Printf("  Skipped: %d ghost nodes, %d malformed nodes, %d dangling edges\n",
			r.Ghosts, r.Malformed, r.DanglingEdges)
	}

	fmt.Println("\n  Clusters:")
	for _, c := range r.Clusters {
		mark := ""
		if c.Short {
			mark = "  (short)"
		}
		fmt.Printf("    %s: %6d pairs  target %5d  pos %5d  neg %5d%s\n",
			yearLabel(c.Year), c.Size, c.Target, c.Positives, c.Negatives, mark)
	}

	fmt.Println("\n  Neighborhoods:")
	for _, row := range []struct {
		label string
		st    cooc.SizeStats
	}{{"pos", r.Positive}, {"neg", r.Negative}} {
		fmt.Printf("    %s: %5d samples  nodes min=%d max=%d avg=%.1f  edges avg=%.1f\n",
			row.label, row.st.Count, row.st.MinNodes, row.st.MaxNodes, row.st.AvgNodes, row.st.AvgEdges)
	}
	if r.Degenerate > 0 {
		fmt.Printf("    %d degenerate neighborhoods\n", r.Degenerate)
	}
	if files > 0 {
		fmt.Printf("\n  Wrote %d files to %s\n", files, cfg.Export.Dir)
	}
	fmt.Printf("  Done in %s\n", formatElapsed(r.Elapsed))
	fmt.Println()
}

func yearLabel(year int) string {
	if year == cooc.SentinelYear {
		return "undated"
	}
	return fmt.Sprintf("%d", year)
}
