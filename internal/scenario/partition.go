package scenario

// Partition groups scenario indices so that any two scenarios sharing a
// resource land in the same group. Groups keep suite order internally and are
// ordered by their first scenario.
func Partition(scenarios []Scenario) [][]int {
	parent := make([]int, len(scenarios))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra == rb {
			return
		}
		// Keep the earliest index as root so group order follows the suite
		if rb < ra {
			ra, rb = rb, ra
		}
		parent[rb] = ra
	}

	owner := make(map[string]int)
	for i, sc := range scenarios {
		for _, res := range sc.Resources() {
			if first, seen := owner[res]; seen {
				union(first, i)
			} else {
				owner[res] = i
			}
		}
	}

	var groups [][]int
	groupOf := make(map[int]int)
	for i := range scenarios {
		root := find(i)
		g, ok := groupOf[root]
		if !ok {
			g = len(groups)
			groupOf[root] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], i)
	}
	return groups
}
