package callgraph

import "github.com/unbound-force/scry/internal/syntax"

// MissingKind categorizes a module referenced by a call but absent
// from the analysis set (§4.6).
type MissingKind int

const (
	MissingApplication MissingKind = iota
	MissingLibrary
)

// Graph is a module dependency graph: edges point from a caller
// module to each module it references (explicit references only,
// self-edges dropped per §4.6).
type Graph struct {
	modules map[syntax.Symbol]syntax.Module
	deps    map[syntax.Symbol]map[syntax.Symbol]bool
	rdeps   map[syntax.Symbol]map[syntax.Symbol]bool
	missing map[syntax.Symbol]MissingKind
}

// Build constructs the dependency graph from a module set. isLibrary
// classifies a missing module as "library" (true, e.g. present in the
// stdlib registry) or "application" (false) per §4.6.
func Build(modules []syntax.Module, isLibrary func(syntax.Symbol) bool) *Graph {
	g := &Graph{
		modules: make(map[syntax.Symbol]syntax.Module, len(modules)),
		deps:    make(map[syntax.Symbol]map[syntax.Symbol]bool),
		rdeps:   make(map[syntax.Symbol]map[syntax.Symbol]bool),
		missing: make(map[syntax.Symbol]MissingKind),
	}
	for _, m := range modules {
		g.modules[m.Name] = m
		g.deps[m.Name] = make(map[syntax.Symbol]bool)
	}
	for _, m := range modules {
		for _, c := range m.Clauses {
			refs := ExtractCalls(m.Name, c.Body)
			for _, guard := range c.Guards {
				refs = append(refs, ExtractCalls(m.Name, guard)...)
			}
			for _, mfa := range refs {
				if mfa.Module == m.Name {
					continue
				}
				if _, ok := g.modules[mfa.Module]; !ok {
					if isLibrary != nil && isLibrary(mfa.Module) {
						g.missing[mfa.Module] = MissingLibrary
					} else {
						g.missing[mfa.Module] = MissingApplication
					}
					continue
				}
				g.addEdge(m.Name, mfa.Module)
			}
		}
	}
	return g
}

func (g *Graph) addEdge(from, to syntax.Symbol) {
	g.deps[from][to] = true
	if g.rdeps[to] == nil {
		g.rdeps[to] = make(map[syntax.Symbol]bool)
	}
	g.rdeps[to][from] = true
}

// Modules returns every module known to the graph, in no particular order.
func (g *Graph) Modules() []syntax.Module {
	out := make([]syntax.Module, 0, len(g.modules))
	for _, m := range g.modules {
		out = append(out, m)
	}
	return out
}

// Missing returns the modules referenced but absent from the
// analysis set, with their §4.6 categorization.
func (g *Graph) Missing() map[syntax.Symbol]MissingKind {
	out := make(map[syntax.Symbol]MissingKind, len(g.missing))
	for k, v := range g.missing {
		out[k] = v
	}
	return out
}

// Dependencies returns the set of modules m directly calls into.
func (g *Graph) Dependencies(m syntax.Symbol) []syntax.Symbol {
	return symbolSlice(g.deps[m])
}

// Dependents returns the set of modules that directly call into m.
func (g *Graph) Dependents(m syntax.Symbol) []syntax.Symbol {
	return symbolSlice(g.rdeps[m])
}

// TransitiveDependencies returns every module reachable from m by
// following dependency edges, via BFS.
func (g *Graph) TransitiveDependencies(m syntax.Symbol) []syntax.Symbol {
	return bfs(m, g.deps)
}

// TransitiveDependents returns every module that can transitively
// reach m, via BFS over reverse edges.
func (g *Graph) TransitiveDependents(m syntax.Symbol) []syntax.Symbol {
	return bfs(m, g.rdeps)
}

func bfs(start syntax.Symbol, adj map[syntax.Symbol]map[syntax.Symbol]bool) []syntax.Symbol {
	visited := map[syntax.Symbol]bool{start: true}
	queue := []syntax.Symbol{start}
	var out []syntax.Symbol
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for next := range adj[cur] {
			if !visited[next] {
				visited[next] = true
				out = append(out, next)
				queue = append(queue, next)
			}
		}
	}
	return out
}

func symbolSlice(set map[syntax.Symbol]bool) []syntax.Symbol {
	out := make([]syntax.Symbol, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	return out
}

// SCCs returns the graph's strongly connected components, computed by
// Tarjan's algorithm. A module with no cyclic self-reference forms its
// own singleton component.
func (g *Graph) SCCs() [][]syntax.Symbol {
	t := &tarjan{
		graph:   g,
		index:   make(map[syntax.Symbol]int),
		lowlink: make(map[syntax.Symbol]int),
		onStack: make(map[syntax.Symbol]bool),
	}
	for m := range g.modules {
		if _, visited := t.index[m]; !visited {
			t.strongconnect(m)
		}
	}
	return t.sccs
}

type tarjan struct {
	graph   *Graph
	counter int
	index   map[syntax.Symbol]int
	lowlink map[syntax.Symbol]int
	onStack map[syntax.Symbol]bool
	stack   []syntax.Symbol
	sccs    [][]syntax.Symbol
}

func (t *tarjan) strongconnect(v syntax.Symbol) {
	t.index[v] = t.counter
	t.lowlink[v] = t.counter
	t.counter++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for w := range t.graph.deps[v] {
		if _, visited := t.index[w]; !visited {
			t.strongconnect(w)
			if t.lowlink[w] < t.lowlink[v] {
				t.lowlink[v] = t.lowlink[w]
			}
		} else if t.onStack[w] {
			if t.index[w] < t.lowlink[v] {
				t.lowlink[v] = t.index[w]
			}
		}
	}

	if t.lowlink[v] == t.index[v] {
		var comp []syntax.Symbol
		for {
			n := len(t.stack) - 1
			w := t.stack[n]
			t.stack = t.stack[:n]
			t.onStack[w] = false
			comp = append(comp, w)
			if w == v {
				break
			}
		}
		t.sccs = append(t.sccs, comp)
	}
}

// TopologicalSort returns the graph's modules grouped by strongly
// connected component, ordered so that every component's dependencies
// appear before it (§4.6). A component is a slice of length > 1 only
// when it is a genuine cycle; those are also returned separately in
// cycles for callers that need to special-case them (e.g. propagate's
// bounded fixed-point iteration).
func (g *Graph) TopologicalSort() (order [][]syntax.Symbol, cycles [][]syntax.Symbol) {
	sccs := g.SCCs()
	sccOf := make(map[syntax.Symbol]int, len(g.modules))
	for i, comp := range sccs {
		for _, m := range comp {
			sccOf[m] = i
		}
	}

	condEdges := make(map[int]map[int]bool, len(sccs))
	for from, tos := range g.deps {
		fi := sccOf[from]
		for to := range tos {
			ti := sccOf[to]
			if fi == ti {
				continue
			}
			if condEdges[fi] == nil {
				condEdges[fi] = make(map[int]bool)
			}
			condEdges[fi][ti] = true
		}
	}

	visited := make([]bool, len(sccs))
	var postorder []int
	var visit func(i int)
	visit = func(i int) {
		if visited[i] {
			return
		}
		visited[i] = true
		for dep := range condEdges[i] {
			visit(dep)
		}
		postorder = append(postorder, i)
	}
	for i := range sccs {
		visit(i)
	}

	order = make([][]syntax.Symbol, len(postorder))
	for pos, sccIdx := range postorder {
		order[pos] = sccs[sccIdx]
		if len(sccs[sccIdx]) > 1 {
			cycles = append(cycles, sccs[sccIdx])
		}
	}
	return order, cycles
}
