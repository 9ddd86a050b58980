package clustering

import "sort"

// expand runs one density-connected expansion rooted at seed, appending
// every point it reaches to o.ordered and recording reachability values.
//
// The candidate stack seeds the expansion; all density-connected growth
// happens through the inner seed buffer, which is drained completely
// before control returns to the stack. Points land in o.ordered exactly
// once, in the order they are first visited.
func (o *Optics[T]) expand(seed int, data []T, dims int, visited []bool) {
	toVisit := []int{seed}
	var seeds []int

	for len(toVisit) > 0 {
		cur := toVisit[len(toVisit)-1]
		toVisit = toVisit[:len(toVisit)-1]
		if visited[cur] {
			continue
		}
		visited[cur] = true
		o.ordered = append(o.ordered, cur)

		// Non-core points are recorded but never expanded from.
		if len(o.neighborhoods[cur].Neighbors) < o.minSamples {
			continue
		}

		seeds = seeds[:0]
		o.update(cur, data, dims, visited, &seeds)
		for len(seeds) > 0 {
			next := seeds[len(seeds)-1]
			seeds = seeds[:len(seeds)-1]
			if visited[next] {
				continue
			}
			visited[next] = true
			o.ordered = append(o.ordered, next)
			if len(o.neighborhoods[next].Neighbors) >= o.minSamples {
				o.update(next, data, dims, visited, &seeds)
			}
		}
	}
}

// update recomputes reachability candidates for the unvisited neighbors
// of the core point id. A candidate is the metric distance to the
// neighbor, bounded below by the core point's core distance. Neighbors
// whose reachability is still unassigned take the candidate and join the
// seed buffer; already-assigned neighbors keep the smaller of their
// current value and the candidate.
//
// The seed buffer is then sorted by reachability descending, so popping
// from the tail always yields the smallest reachability first. One sort
// per core-point visit suffices because every update for this core point
// completes before the next pop.
func (o *Optics[T]) update(id int, data []T, dims int, visited []bool, seeds *[]int) {
	nb := &o.neighborhoods[id]
	from := data[id*dims : (id+1)*dims]

	for _, q := range nb.Neighbors {
		if visited[q] {
			continue
		}
		cand := o.metric.Distance(from, data[q*dims:(q+1)*dims])
		if nb.CoreDistance > cand {
			cand = nb.CoreDistance
		}

		if !isNormal(o.reachability[q]) {
			o.reachability[q] = cand
			*seeds = append(*seeds, q)
		} else if cand < o.reachability[q] {
			o.reachability[q] = cand
		}
	}

	s := *seeds
	sort.Slice(s, func(i, j int) bool {
		return o.reachability[s[i]] > o.reachability[s[j]]
	})
}
