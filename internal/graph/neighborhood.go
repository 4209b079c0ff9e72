package graph

// KHop returns every node within k undirected hops of any seed, seeds
// included. Seeds absent from the snapshot contribute nothing.
func KHop(s *Snapshot, seeds []string, k int) map[string]bool {
	reached := make(map[string]bool)
	var frontier []string
	for _, id := range seeds {
		if _, ok := s.Nodes[id]; !ok || reached[id] {
			continue
		}
		reached[id] = true
		frontier = append(frontier, id)
	}

	for hop := 0; hop < k && len(frontier) > 0; hop++ {
		var next []string
		for _, id := range frontier {
			for _, nb := range s.Adj[id] {
				if !reached[nb] {
					reached[nb] = true
					next = append(next, nb)
				}
			}
		}
		frontier = next
	}
	return reached
}
