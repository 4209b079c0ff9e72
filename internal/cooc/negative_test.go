package cooc

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cocon/cooc/internal/graph"
)

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func clusterFor(t *testing.T, idx *Index, total, year int) Cluster {
	t.Helper()
	for _, c := range Stratify(idx, total) {
		if c.Year == year {
			return c
		}
	}
	t.Fatalf("no cluster for %d", year)
	return Cluster{}
}

func TestSampleCluster_FillsTargetWithValidNegatives(t *testing.T) {
	snap := corpus(10)
	idx := BuildIndex(snap, 0)
	c := clusterFor(t, idx, 0, 2020)
	c.Target = 10

	draw := NewNegativeSampler(snap, idx, seeded(1), 7).SampleCluster(c)
	require.Len(t, draw.Positives, 10)
	require.Len(t, draw.Negatives, 10)
	assert.False(t, draw.Short())

	posSeen := make(map[PairKey]bool)
	for _, r := range draw.Positives {
		assert.False(t, posSeen[r.Key], "duplicate positive %s", r.Key)
		posSeen[r.Key] = true
		assert.True(t, idx.Has(r.Key.E1, r.Key.E2))
		assert.False(t, r.Negative)
	}

	negSeen := make(map[PairKey]bool)
	for _, r := range draw.Negatives {
		assert.False(t, negSeen[r.Key], "duplicate negative %s", r.Key)
		negSeen[r.Key] = true

		assert.True(t, r.Negative)
		assert.NotEqual(t, r.Key.E1, r.Key.E2)
		assert.Less(t, r.Key.E1, r.Key.E2)
		assert.True(t, Eligible(r.Types[0], r.Types[1]), r.Key.String())
		assert.False(t, idx.Has(r.Key.E1, r.Key.E2), "negative %s co-occurs", r.Key)
		assert.Empty(t, r.Papers)
		assert.Equal(t, 2020, r.Anchor.Year)
		assert.GreaterOrEqual(t, r.Anchor.Month, 7)

		a, ok := idx.records[r.Sources[0]]
		require.True(t, ok)
		b, ok := idx.records[r.Sources[1]]
		require.True(t, ok)
		assert.True(t, disjoint(a, b), "sources of %s share a paper", r.Key)
	}
}

func TestSampleCluster_Deterministic(t *testing.T) {
	snap := corpus(10)
	idx := BuildIndex(snap, 0)
	c := clusterFor(t, idx, 0, 2020)
	c.Target = 6

	a := NewNegativeSampler(snap, idx, seeded(9), 7).SampleCluster(c)
	b := NewNegativeSampler(snap, idx, seeded(9), 7).SampleCluster(c)
	assert.Equal(t, recordKeys(a.Positives), recordKeys(b.Positives))
	assert.Equal(t, recordKeys(a.Negatives), recordKeys(b.Negatives))
}

func TestSampleCluster_ThreePapers(t *testing.T) {
	snap := threePapers()
	idx := BuildIndex(snap, 0)
	s := NewNegativeSampler(snap, idx, seeded(3), 7)

	// a single record has no partner
	early := s.SampleCluster(clusterFor(t, idx, 0, 2019))
	assert.Empty(t, early.Positives)
	assert.Empty(t, early.Negatives)
	assert.True(t, early.Short())

	late := s.SampleCluster(clusterFor(t, idx, 0, 2020))
	assert.ElementsMatch(t, []string{"D2|M1", "M1|T1"}, recordKeys(late.Positives))
	// (M1, M1) is degenerate; (D2, T1) is the only corruption
	require.Len(t, late.Negatives, 1)
	neg := late.Negatives[0]
	assert.Equal(t, NewPairKey("D2", "T1"), neg.Key)
	assert.Equal(t, Anchor{2020, 7}, neg.Anchor)
	assert.True(t, late.Short())
}

func TestSampleCluster_SharedPaperNeverPairs(t *testing.T) {
	// every record comes from the same paper, so no two are disjoint
	snap := graph.NewSnapshot(
		[]*graph.Node{
			paperNode("P", 2020, 3),
			entityNode("M", graph.TypeModel),
			entityNode("D", graph.TypeDataset),
			entityNode("T", graph.TypeTask),
		},
		[]graph.Edge{usedIn("M", "P"), usedIn("D", "P"), usedIn("T", "P")},
	)
	idx := BuildIndex(snap, 0)
	draw := NewNegativeSampler(snap, idx, seeded(1), 7).SampleCluster(clusterFor(t, idx, 0, 2020))
	assert.Empty(t, draw.Positives)
	assert.Empty(t, draw.Negatives)
}

func TestCorrupt_MonthFollowsBetterConnectedEndpoint(t *testing.T) {
	// T1 has degree 2, D1 degree 1
	snap := graph.NewSnapshot(
		[]*graph.Node{
			paperNode("P1", 2020, 1), paperNode("P2", 2020, 1), paperNode("P3", 2020, 1),
			entityNode("D1", graph.TypeDataset),
			entityNode("T1", graph.TypeTask),
			entityNode("M1", graph.TypeModel),
		},
		[]graph.Edge{usedIn("T1", "P1"), usedIn("T1", "P2"), usedIn("D1", "P3")},
	)
	s := NewNegativeSampler(snap, NewIndex(), seeded(1), 7)

	rec := func(a, b string, ta, tb graph.NodeType, month int) *Record {
		r := newRecord(NewPairKey(a, b), ta, tb)
		r.Anchor = Anchor{2020, month}
		return r
	}
	dm := func(month int) *Record { return rec("D1", "M1", graph.TypeDataset, graph.TypeModel, month) }
	mt := func(month int) *Record { return rec("M1", "T1", graph.TypeModel, graph.TypeTask, month) }

	n := s.corrupt(2020, dm(2), mt(11), "D1", "T1")
	require.NotNil(t, n)
	assert.Equal(t, Anchor{2020, 11}, n.Anchor)
	assert.Equal(t, [2]PairKey{NewPairKey("D1", "M1"), NewPairKey("M1", "T1")}, n.Sources)
	assert.Equal(t, graph.TypeDataset, n.TypeOf("D1"))
	assert.Equal(t, graph.TypeTask, n.TypeOf("T1"))

	n = s.corrupt(2020, mt(10), dm(2), "T1", "D1")
	require.NotNil(t, n)
	assert.Equal(t, Anchor{2020, 10}, n.Anchor)

	n = s.corrupt(2020, dm(2), mt(3), "D1", "T1")
	require.NotNil(t, n)
	assert.Equal(t, Anchor{2020, 7}, n.Anchor, "month floor")
}

func TestCorrupt_Rejects(t *testing.T) {
	snap := threePapers()
	idx := BuildIndex(snap, 0)
	s := NewNegativeSampler(snap, idx, seeded(1), 7)

	dm1, _ := idx.Get("D1", "M1")
	dm2, _ := idx.Get("D2", "M1")
	mt, _ := idx.Get("M1", "T1")

	assert.Nil(t, s.corrupt(2020, dm2, mt, "M1", "M1"), "self pair")
	assert.Nil(t, s.corrupt(2020, dm1, dm2, "D1", "D2"), "same type")
	assert.Nil(t, s.corrupt(2020, dm1, mt, "D1", "M1"), "co-occurring pair")
	assert.NotNil(t, s.corrupt(2020, dm1, mt, "D1", "T1"))
}

// cappedSplit indexes D1|T1 (PA) and D2|T2 (PB) and stops before PZ, which
// links D1 with T2.
func cappedSplit() (*graph.Snapshot, *Index) {
	snap := graph.NewSnapshot(
		[]*graph.Node{
			paperNode("PA", 2020, 3),
			paperNode("PB", 2020, 3),
			paperNode("PZ", 2020, 5),
			entityNode("D1", graph.TypeDataset),
			entityNode("D2", graph.TypeDataset),
			entityNode("T1", graph.TypeTask),
			entityNode("T2", graph.TypeTask),
		},
		[]graph.Edge{
			usedIn("D1", "PA"), usedIn("T1", "PA"),
			usedIn("D2", "PB"), usedIn("T2", "PB"),
			usedIn("D1", "PZ"), usedIn("T2", "PZ"),
		},
	)
	return snap, BuildIndex(snap, 2)
}

func TestCorrupt_CappedIndexChecksGraph(t *testing.T) {
	snap, idx := cappedSplit()
	require.True(t, idx.Stats.Capped)
	require.False(t, idx.Has("D1", "T2"))

	s := NewNegativeSampler(snap, idx, seeded(1), 7)
	dt1, _ := idx.Get("D1", "T1")
	dt2, _ := idx.Get("D2", "T2")

	assert.Nil(t, s.corrupt(2020, dt1, dt2, "D1", "T2"), "pair shares PZ outside the index")
	assert.NotNil(t, s.corrupt(2020, dt2, dt1, "D2", "T1"))
}

func TestSampleCluster_CappedIndexNeverEmitsCooccurringNegative(t *testing.T) {
	snap, idx := cappedSplit()
	c := clusterFor(t, idx, 0, 2020)

	draw := NewNegativeSampler(snap, idx, seeded(1), 7).SampleCluster(c)
	keys := recordKeys(draw.Negatives)
	assert.NotContains(t, keys, NewPairKey("D1", "T2").String())
	assert.Equal(t, []string{NewPairKey("D2", "T1").String()}, keys)
}

func TestSharePaper(t *testing.T) {
	snap, _ := cappedSplit()
	assert.True(t, SharePaper(snap, "D1", "T2"))
	assert.True(t, SharePaper(snap, "T1", "D1"))
	assert.False(t, SharePaper(snap, "D2", "T1"))
	assert.False(t, SharePaper(snap, "D1", "missing"))
}
