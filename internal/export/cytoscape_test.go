package export

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cocon/cooc/internal/config"
	"cocon/cooc/internal/cooc"
	"cocon/cooc/internal/graph"
)

func testSnapshot() *graph.Snapshot {
	used := func(e, p string) graph.Edge {
		return graph.Edge{Source: e, Target: p, Type: graph.EdgeUsedInPaper}
	}
	return graph.NewSnapshot(
		[]*graph.Node{
			{ID: "P1", Type: graph.TypePaper, Name: "Early", Paper: &graph.PaperInfo{Year: 2019, Month: 1, Day: 4}},
			{ID: "P2", Type: graph.TypePaper, Paper: &graph.PaperInfo{Year: 2020, Month: 6}},
			{ID: "P3", Type: graph.TypePaper, Paper: &graph.PaperInfo{Year: 2020, Month: 6}},
			{ID: "M1", Type: graph.TypeModel, Model: &graph.ModelInfo{Evaluations: []string{"D1"}}},
			{ID: "D1", Type: graph.TypeDataset, Attrs: map[string]any{"url": "https://example.org/d1"}},
			{ID: "D2", Type: graph.TypeDataset},
			{ID: "T1", Type: graph.TypeTask},
		},
		[]graph.Edge{
			used("M1", "P1"), used("D1", "P1"),
			used("M1", "P2"), used("D2", "P2"),
			used("M1", "P3"), used("T1", "P3"),
			{Source: "M1", Target: "D1", Type: graph.EdgeEvaluatedOn},
		},
	)
}

func sortedIDs(s *graph.Snapshot) []string {
	ids := make([]string, 0, len(s.Nodes))
	for id := range s.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func TestFileNames(t *testing.T) {
	g, p := FileNames("pair_graph_sample", cooc.LabelPositive, 3)
	assert.Equal(t, "pair_graph_sample_pos_03_graph.json", g)
	assert.Equal(t, "pair_graph_sample_pos_03_prediction_edge.json", p)

	g, _ = FileNames("x", cooc.LabelNegative, 123)
	assert.Equal(t, "x_neg_123_graph.json", g)
}

func TestCytoscape_Layout(t *testing.T) {
	doc := Cytoscape(testSnapshot())

	assert.True(t, doc.Directed)
	assert.True(t, doc.Multigraph)
	require.Len(t, doc.Elements.Nodes, 7)
	require.Len(t, doc.Elements.Edges, 7)

	// nodes come out sorted by ID
	assert.Equal(t, "D1", doc.Elements.Nodes[0].Data["id"])
	assert.Equal(t, "dataset", doc.Elements.Nodes[0].Data["type"])
	assert.Equal(t, "https://example.org/d1", doc.Elements.Nodes[0].Data["url"])

	var p1 map[string]any
	for _, n := range doc.Elements.Nodes {
		if n.Data["id"] == "P1" {
			p1 = n.Data
		}
	}
	require.NotNil(t, p1)
	assert.Equal(t, 2019, p1["year"])
	assert.Equal(t, 1, p1["month"])
	assert.Equal(t, "Early", p1["name"])

	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	var generic map[string]any
	require.NoError(t, json.Unmarshal(raw, &generic))
	assert.Contains(t, generic, "elements")
	assert.Contains(t, generic, "data")
}

func TestWriteAndReadSamples(t *testing.T) {
	seed := int64(1)
	cfg := config.Default()
	cfg.Seed = &seed
	s, err := cooc.NewSampler(testSnapshot(), cfg, nil)
	require.NoError(t, err)
	res, err := s.Run(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, res.Positives)
	require.NotEmpty(t, res.Negatives)

	dir := filepath.Join(t.TempDir(), "samples")
	paths, err := WriteSamples(dir, "pair_graph_sample", res)
	require.NoError(t, err)
	assert.Len(t, paths, 2*(len(res.Positives)+len(res.Negatives)))
	for _, p := range paths {
		_, err := os.Stat(p)
		assert.NoError(t, err)
	}

	for i, smp := range res.Positives {
		gf, pf := FileNames("pair_graph_sample", cooc.LabelPositive, i)
		sub, pred, err := ReadSample(filepath.Join(dir, gf), filepath.Join(dir, pf))
		require.NoError(t, err)

		assert.Equal(t, sortedIDs(smp.Graph), sortedIDs(sub))
		assert.Len(t, sub.Edges, len(smp.Graph.Edges))
		assert.Equal(t, [2]string{smp.Record.Key.E1, smp.Record.Key.E2}, pred.Edge)
		assert.Equal(t, smp.Record.PaperIDs(), pred.CoocPapers)
		assert.Equal(t, smp.Record.Anchor.Year, pred.Year)
		assert.Equal(t, smp.Record.Anchor.Month, pred.Month)
		assert.Equal(t, "pos", pred.Label)

		for id, n := range sub.Nodes {
			orig := smp.Graph.Nodes[id]
			assert.Equal(t, orig.Type, n.Type)
			if orig.IsPaper() {
				y1, m1, _ := orig.Date()
				y2, m2, _ := n.Date()
				assert.Equal(t, []int{y1, m1}, []int{y2, m2})
			}
		}
	}

	gf, pf := FileNames("pair_graph_sample", cooc.LabelNegative, 0)
	_, pred, err := ReadSample(filepath.Join(dir, gf), filepath.Join(dir, pf))
	require.NoError(t, err)
	assert.Equal(t, "neg", pred.Label)
	assert.NotNil(t, pred.CoocPapers)
	assert.Empty(t, pred.CoocPapers)
}

func TestReadSample_RoundTripsAttributes(t *testing.T) {
	dir := t.TempDir()
	snap := testSnapshot()
	gp := filepath.Join(dir, "g.json")
	pp := filepath.Join(dir, "p.json")
	require.NoError(t, writeJSON(gp, Cytoscape(snap)))
	require.NoError(t, writeJSON(pp, PredictionEdge{Edge: [2]string{"D1", "M1"}, CoocPapers: []string{"P1"}, Year: 2019, Month: 1, Label: "pos"}))

	sub, pred, err := ReadSample(gp, pp)
	require.NoError(t, err)
	assert.Equal(t, []string{"P1"}, pred.CoocPapers)

	d1, ok := sub.Node("D1")
	require.True(t, ok)
	assert.Equal(t, "https://example.org/d1", d1.Attrs["url"])

	m1, ok := sub.Node("M1")
	require.True(t, ok)
	require.NotNil(t, m1.Model)
	assert.Equal(t, []string{"D1"}, m1.Model.Evaluations)

	p1, ok := sub.Node("P1")
	require.True(t, ok)
	assert.Equal(t, "Early", p1.Name)
	assert.Equal(t, 4, p1.Paper.Day)
}

func TestReadSample_MissingFile(t *testing.T) {
	_, _, err := ReadSample(filepath.Join(t.TempDir(), "nope.json"), "also-nope.json")
	assert.Error(t, err)
}
