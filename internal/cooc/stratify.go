package cooc

import (
	"math"
	"sort"
)

// Cluster groups index records by the year of their temporal anchor.
type Cluster struct {
	Year    int
	Records []*Record // sorted by key
	Target  int       // samples to draw from this cluster
}

// Stratify partitions the index by anchor year, ascending. With total > 0
// each cluster's Target is its proportional share, rounded, and the rounding
// residue is applied to the largest cluster so the targets sum to total.
// With total <= 0 every Target is the cluster size.
func Stratify(idx *Index, total int) []Cluster {
	byYear := make(map[int][]*Record)
	for _, r := range idx.Records() {
		byYear[r.Anchor.Year] = append(byYear[r.Anchor.Year], r)
	}

	clusters := make([]Cluster, 0, len(byYear))
	for year, recs := range byYear {
		clusters = append(clusters, Cluster{Year: year, Records: recs})
	}
	sort.Slice(clusters, func(i, j int) bool { return clusters[i].Year < clusters[j].Year })

	if total <= 0 {
		for i := range clusters {
			clusters[i].Target = len(clusters[i].Records)
		}
		return clusters
	}

	all := idx.Len()
	if all == 0 {
		return clusters
	}
	sum := 0
	for i := range clusters {
		share := float64(total) * float64(len(clusters[i].Records)) / float64(all)
		clusters[i].Target = int(math.Round(share))
		sum += clusters[i].Target
	}
	reconcile(clusters, total-sum)
	return clusters
}

// reconcile moves diff onto the largest cluster (earliest year on ties).
// A negative residue can exceed the largest target when many clusters round
// up; targets are clamped at zero and the remainder carries to the next
// largest cluster.
func reconcile(clusters []Cluster, diff int) {
	if diff == 0 {
		return
	}
	order := make([]int, len(clusters))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return len(clusters[order[a]].Records) > len(clusters[order[b]].Records)
	})
	for _, i := range order {
		t := clusters[i].Target + diff
		if t >= 0 {
			clusters[i].Target = t
			return
		}
		clusters[i].Target = 0
		diff = t
	}
}
