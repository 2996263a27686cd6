// Package dag builds the dependency graph of a task batch. It supports
// cycle detection with a concrete cycle path, topological ordering, and
// transitive dependent queries.
package dag

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PinjariAbdul/smart-task-analyser/internal/task"
)

// ErrCycle is matched by every *CycleError.
var ErrCycle = errors.New("cycle detected")

// CycleError reports one concrete dependency cycle. Path starts and ends
// with the same id and follows "depends on" edges: Path[i] depends on
// Path[i+1].
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%v: %s", ErrCycle, strings.Join(e.Path, " → "))
}

// Is reports whether target is ErrCycle.
func (e *CycleError) Is(target error) bool {
	return target == ErrCycle
}

// UnknownDependencyError reports a dependency id that names no task in the
// batch, together with the task that referenced it.
type UnknownDependencyError struct {
	TaskID  string
	Missing string
}

func (e *UnknownDependencyError) Error() string {
	return fmt.Sprintf("%v: %q depends on %q, which is not in the batch",
		task.ErrUnknownDependency, e.TaskID, e.Missing)
}

// Is reports whether target is task.ErrUnknownDependency.
func (e *UnknownDependencyError) Is(target error) bool {
	return target == task.ErrUnknownDependency
}

// Graph is a dependency graph over the tasks of one batch. Nodes keep the
// batch's input order, and each node's dependencies keep their declared
// order, so every traversal is reproducible.
type Graph struct {
	ids   []string
	index map[string]int
	// deps maps node → the nodes it depends on (forward edges).
	deps [][]int
	// dependents maps node → the nodes that depend on it (reverse edges).
	dependents [][]int
}

// Build creates the graph for a normalized batch in O(V+E). Every
// dependency must name a task in the batch; otherwise Build returns a
// *task.ValidationError listing each unknown reference as an
// *UnknownDependencyError. Edges are never silently dropped.
func Build(tasks []task.Task) (*Graph, error) {
	g := &Graph{
		ids:        make([]string, len(tasks)),
		index:      make(map[string]int, len(tasks)),
		deps:       make([][]int, len(tasks)),
		dependents: make([][]int, len(tasks)),
	}
	for i, t := range tasks {
		g.ids[i] = t.ID
		g.index[t.ID] = i
	}

	verr := &task.ValidationError{}
	for i, t := range tasks {
		for _, dep := range t.Dependencies {
			j, ok := g.index[dep]
			if !ok {
				verr.Add(&task.FieldError{
					Index:  i,
					TaskID: t.ID,
					Field:  "dependencies",
					Err:    &UnknownDependencyError{TaskID: t.ID, Missing: dep},
				})
				continue
			}
			g.deps[i] = append(g.deps[i], j)
			g.dependents[j] = append(g.dependents[j], i)
		}
	}
	if err := verr.ErrOrNil(); err != nil {
		return nil, err
	}
	return g, nil
}

// Descendants returns every task that transitively depends on id, in
// input order. Returns nil if id has no dependents or does not exist.
func (g *Graph) Descendants(id string) []string {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	visited := make([]bool, len(g.ids))
	g.collectDescendants(i, visited)

	var result []string
	for j, seen := range visited {
		if seen && j != i {
			result = append(result, g.ids[j])
		}
	}
	return result
}

// collectDescendants walks reverse edges from i, marking every reachable node.
func (g *Graph) collectDescendants(i int, visited []bool) {
	for _, dep := range g.dependents[i] {
		if !visited[dep] {
			visited[dep] = true
			g.collectDescendants(dep, visited)
		}
	}
}

func (g *Graph) names(idx []int) []string {
	out := make([]string, len(idx))
	for k, i := range idx {
		out[k] = g.ids[i]
	}
	return out
}
