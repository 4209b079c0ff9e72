package cooc

import (
	"context"
	"math/rand/v2"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"cocon/cooc/internal/config"
	"cocon/cooc/internal/errors"
	"cocon/cooc/internal/graph"
)

// Label marks a sample as a true or corrupted pair.
type Label string

const (
	LabelPositive Label = "pos"
	LabelNegative Label = "neg"
)

// Sample is a record paired with its pruned neighborhood.
type Sample struct {
	Label      Label
	Record     *Record
	Graph      *graph.Snapshot
	Degenerate bool
}

// Result is the output of one run. Positives and Negatives are ordered by
// cluster year, then acceptance order within the cluster.
type Result struct {
	Positives []Sample
	Negatives []Sample
	Report    Report
}

// ClusterReport summarizes one year cluster.
type ClusterReport struct {
	Year      int  `json:"year"`
	Size      int  `json:"size"`
	Target    int  `json:"target"`
	Positives int  `json:"positives"`
	Negatives int  `json:"negatives"`
	Short     bool `json:"short,omitempty"`
}

// SizeStats describes pruned neighborhood sizes for one label.
type SizeStats struct {
	Count    int     `json:"count"`
	MinNodes int     `json:"min_nodes"`
	MaxNodes int     `json:"max_nodes"`
	AvgNodes float64 `json:"avg_nodes"`
	AvgEdges float64 `json:"avg_edges"`
}

// Report carries run diagnostics. Recoverable conditions (ghost nodes,
// shortfalls, degenerate neighborhoods) surface here instead of as errors.
type Report struct {
	Requested     int             `json:"requested"`
	Seed          *int64          `json:"seed,omitempty"`
	IndexSize     int             `json:"index_size"`
	Index         IndexStats      `json:"index"`
	Ghosts        int             `json:"ghost_nodes"`
	DanglingEdges int             `json:"dangling_edges"`
	Malformed     int             `json:"malformed_nodes"`
	Clusters      []ClusterReport `json:"clusters"`
	Shortfalls    int             `json:"shortfalls"`
	Degenerate    int             `json:"degenerate"`
	Positive      SizeStats       `json:"positive"`
	Negative      SizeStats       `json:"negative"`
	Elapsed       time.Duration   `json:"elapsed_ns"`
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithRand overrides the random source. Tests use it to pin shuffles
// without going through Config.Seed.
func WithRand(r *rand.Rand) Option {
	return func(s *Sampler) { s.rng = r }
}

// Sampler runs the full pipeline over one snapshot.
type Sampler struct {
	snap   *graph.Snapshot
	cfg    *config.Config
	logger *zap.SugaredLogger
	rng    *rand.Rand
}

// NewSampler validates cfg and returns a sampler. An invalid configuration
// is reported here, before any traversal.
func NewSampler(snap *graph.Snapshot, cfg *config.Config, logger *zap.SugaredLogger, opts ...Option) (*Sampler, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, errors.NewConfigError("no graph snapshot")
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := &Sampler{
		snap:   snap,
		cfg:    cfg,
		logger: logger.Named("cooc.sampler"),
	}
	if cfg.Seeded() {
		seed := uint64(*cfg.Seed)
		s.rng = rand.New(rand.NewPCG(seed, seed))
	} else {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run builds the index, draws samples per year cluster, and prunes every
// sample's neighborhood in parallel. The only error returned is context
// cancellation; partial outcomes are recorded in the Report.
func (s *Sampler) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	report := Report{
		Requested:     s.cfg.Samples,
		Seed:          s.cfg.Seed,
		Ghosts:        s.snap.Ghosts,
		DanglingEdges: s.snap.DanglingEdges,
		Malformed:     s.snap.Malformed,
	}
	if s.snap.Ghosts > 0 {
		s.logger.Warnw("ghost nodes skipped",
			"count", s.snap.Ghosts,
			"error", errors.ErrMissingNodeType)
	}
	if s.snap.Malformed > 0 {
		s.logger.Warnw("malformed nodes skipped",
			"count", s.snap.Malformed,
			"error", errors.ErrMalformedAttrs)
	}

	index := BuildIndex(s.snap, s.cfg.IndexCap)
	report.IndexSize = index.Len()
	report.Index = index.Stats
	s.logger.Infow("co-occurrence index built",
		"pairs", index.Len(),
		"papers", index.Stats.PapersScanned,
		"undated_papers", index.Stats.UndatedPapers,
		"capped", index.Stats.Capped)

	clusters := Stratify(index, s.cfg.Samples)
	sampler := NewNegativeSampler(s.snap, index, s.rng, s.cfg.MonthFloor)

	var pos, neg []*Record
	for _, c := range clusters {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		draw := sampler.SampleCluster(c)
		cr := ClusterReport{
			Year:      c.Year,
			Size:      len(c.Records),
			Target:    c.Target,
			Positives: len(draw.Positives),
			Negatives: len(draw.Negatives),
			Short:     draw.Short(),
		}
		if cr.Short {
			report.Shortfalls++
			s.logger.Warnw("cluster short of target",
				"year", c.Year,
				"target", c.Target,
				"positives", cr.Positives,
				"negatives", cr.Negatives,
				"error", errors.ErrInsufficientSamples)
		}
		report.Clusters = append(report.Clusters, cr)
		pos = append(pos, draw.Positives...)
		neg = append(neg, draw.Negatives...)
	}

	positives, err := s.prune(ctx, pos, LabelPositive)
	if err != nil {
		return nil, err
	}
	negatives, err := s.prune(ctx, neg, LabelNegative)
	if err != nil {
		return nil, err
	}

	for _, set := range [][]Sample{positives, negatives} {
		for _, smp := range set {
			if smp.Degenerate {
				report.Degenerate++
			}
		}
	}
	report.Positive = sizeStats(positives)
	report.Negative = sizeStats(negatives)
	report.Elapsed = time.Since(start)

	s.logger.Infow("sampling complete",
		"positives", len(positives),
		"negatives", len(negatives),
		"clusters", len(clusters),
		"shortfalls", report.Shortfalls,
		"degenerate", report.Degenerate,
		"elapsed", report.Elapsed)

	return &Result{Positives: positives, Negatives: negatives, Report: report}, nil
}

// prune fans records out to a bounded worker group. Each worker writes only
// its own slot, so output order matches input order.
func (s *Sampler) prune(ctx context.Context, recs []*Record, label Label) ([]Sample, error) {
	out := make([]Sample, len(recs))
	pruner := NewPruner(s.snap, s.cfg.Hops, s.cfg.TemporalMode, s.cfg.Reprune)

	workers := s.cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, r := range recs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sub := pruner.Prune(r)
			smp := Sample{Label: label, Record: r, Graph: sub, Degenerate: Degenerate(sub, r)}
			if smp.Degenerate {
				s.logger.Warnw("degenerate neighborhood",
					"label", label,
					"pair", r.Key.String(),
					"nodes", len(sub.Nodes),
					"error", errors.ErrDegenerateNeighborhood)
			}
			out[i] = smp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrapf(err, "pruning %s samples", label)
	}
	return out, nil
}

func sizeStats(samples []Sample) SizeStats {
	st := SizeStats{Count: len(samples)}
	if len(samples) == 0 {
		return st
	}
	var nodes, edges int
	for i, smp := range samples {
		n := len(smp.Graph.Nodes)
		if i == 0 || n < st.MinNodes {
			st.MinNodes = n
		}
		if n > st.MaxNodes {
			st.MaxNodes = n
		}
		nodes += n
		edges += len(smp.Graph.Edges)
	}
	st.AvgNodes = float64(nodes) / float64(len(samples))
	st.AvgEdges = float64(edges) / float64(len(samples))
	return st
}
