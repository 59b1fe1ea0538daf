package compiler

import (
	"slices"

	"github.com/roach88/anachronize/internal/ir"
)

// FindCycles reports every dependency cycle among linked modules.
//
// Merge stops at the first cycle it walks into; FindCycles is the full
// report used by the graph command. It uses Tarjan's algorithm to find
// strongly connected components and returns one ID path per component with
// more than one module or with a self-loop, e.g. ["a", "b", "a"].
//
// Nodes are visited in discovery order, so the result is deterministic.
// An acyclic graph returns an empty list.
func FindCycles(modules []*ir.ModuleRecord) [][]string {
	graph := buildDependencyGraph(modules)

	var cycles [][]string
	for _, scc := range tarjanSCC(modules, graph) {
		if len(scc) > 1 || slices.Contains(graph[scc[0]], scc[0]) {
			cycles = append(cycles, reconstructCyclePath(scc, graph))
		}
	}
	if cycles == nil {
		return [][]string{}
	}
	return cycles
}

// dependencyGraph maps module ID → IDs of its linked dependencies.
type dependencyGraph map[string][]string

func buildDependencyGraph(modules []*ir.ModuleRecord) dependencyGraph {
	graph := make(dependencyGraph, len(modules))
	for _, m := range modules {
		edges := make([]string, 0, len(m.Deps))
		for _, dep := range m.Deps {
			edges = append(edges, dep.ID)
		}
		graph[m.ID] = edges
	}
	return graph
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
//
// Nodes are visited in the order of modules. Each SCC is ordered so that its
// first element is the member discovered first.
func tarjanSCC(modules []*ir.ModuleRecord, graph dependencyGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is a root node: pop the stack down to v.
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			// Popped in reverse discovery order.
			for i, j := 0, len(scc)-1; i < j; i, j = i+1, j-1 {
				scc[i], scc[j] = scc[j], scc[i]
			}
			sccs = append(sccs, scc)
		}
	}

	for _, m := range modules {
		if _, visited := indices[m.ID]; !visited {
			strongConnect(m.ID)
		}
	}

	return sccs
}

// reconstructCyclePath returns a closed path through an SCC starting and
// ending at its first member. Edges are tried in call-site order, so the
// path is deterministic.
func reconstructCyclePath(scc []string, graph dependencyGraph) []string {
	start := scc[0]
	members := make(map[string]bool, len(scc))
	for _, id := range scc {
		members[id] = true
	}

	seen := make(map[string]bool, len(scc))
	var walk func(cur string, path []string) []string
	walk = func(cur string, path []string) []string {
		seen[cur] = true
		for _, dep := range graph[cur] {
			if dep == start {
				return append(path, start)
			}
			if members[dep] && !seen[dep] {
				if found := walk(dep, append(path, dep)); found != nil {
					return found
				}
			}
		}
		return nil
	}

	return walk(start, []string{start})
}
