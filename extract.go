package clustering

// extractAt performs a single pass over the reachability ordering,
// cutting it into clusters at the threshold eps.
//
// A point whose reachability is assigned and at most eps continues the
// open cluster. A point whose reachability is unassigned or above eps
// starts a new cluster if its neighborhood qualifies it as a core point
// at eps, and is an outlier otherwise. Points never ordered, because
// their neighborhoods were too small at fit time, appear in neither
// result.
func (o *Optics[T]) extractAt(eps T) (map[int][]int, []int) {
	clusters := map[int][]int{}
	outliers := []int{}

	for _, id := range o.ordered {
		r := o.reachability[id]
		if isNormal(r) && r <= eps {
			if len(clusters) == 0 {
				outliers = append(outliers, id)
				continue
			}
			c := clusters[len(clusters)-1]
			clusters[len(clusters)-1] = append(c, id)
			continue
		}
		nb := &o.neighborhoods[id]
		if len(nb.Neighbors) >= o.minSamples && nb.CoreDistance <= eps {
			clusters[len(clusters)] = []int{id}
		} else {
			outliers = append(outliers, id)
		}
	}

	return clusters, outliers
}
