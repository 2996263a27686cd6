package dag

// DFS node colors.
const (
	white = iota // unvisited
	gray         // on the current DFS path
	black        // finished
)

// TopologicalOrder proves the graph acyclic and returns node ids with every
// dependency before its dependents. Nodes are visited in input order and
// each node's dependencies in declared order, so the result is
// reproducible. If a cycle exists, the first one found is returned as a
// *CycleError and no order is produced. O(V+E).
func (g *Graph) TopologicalOrder() ([]string, error) {
	w := walker{
		g:      g,
		color:  make([]int, len(g.ids)),
		onPath: make(map[int]int),
		order:  make([]int, 0, len(g.ids)),
	}
	for i := range g.ids {
		if w.color[i] != white {
			continue
		}
		if cycle := w.visit(i); cycle != nil {
			return nil, &CycleError{Path: cycle}
		}
	}
	return g.names(w.order), nil
}

// Positions maps each id to its index in order.
func Positions(order []string) map[string]int {
	pos := make(map[string]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	return pos
}

type walker struct {
	g      *Graph
	color  []int
	path   []int
	onPath map[int]int // node → index in path
	order  []int       // finish order
}

// visit runs the three-color DFS from i. It returns the cycle path when a
// back-edge into a gray node is found.
func (w *walker) visit(i int) []string {
	w.color[i] = gray
	w.onPath[i] = len(w.path)
	w.path = append(w.path, i)

	for _, dep := range w.g.deps[i] {
		switch w.color[dep] {
		case gray:
			start := w.onPath[dep]
			cycle := w.g.names(w.path[start:])
			return append(cycle, w.g.ids[dep])
		case white:
			if cycle := w.visit(dep); cycle != nil {
				return cycle
			}
		}
	}

	w.path = w.path[:len(w.path)-1]
	delete(w.onPath, i)
	w.color[i] = black
	w.order = append(w.order, i)
	return nil
}
