// Package cooc derives link-prediction training samples from the scholarly graph.
//
// A run has four stages, each usable on its own:
//
//	BuildIndex       pairs of differently typed entities sharing a paper, with their
//	                 paper sets and earliest (year, month)
//	Stratify         clusters of index records by earliest year, with per-cluster
//	                 sample sizes reconciled to the requested total
//	SampleCluster    positive picks plus corrupted (negative) pairs built by swapping
//	                 endpoints between positives with disjoint paper sets
//	Pruner.Prune     the k-hop neighborhood of a pair with papers at or after the
//	                 pair's temporal anchor removed
//
// Sampler.Run wires them together. The snapshot is never mutated, so pruning
// fans out across goroutines without locking.
package cooc
