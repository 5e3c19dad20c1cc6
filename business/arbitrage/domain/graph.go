// Package domain contains the core domain types for the arbitrage context.
package domain

import (
	"math"
	"sort"

	marketdata "github.com/dexpulse/arbscan/business/marketdata/domain"
)

// Edge is one directed exchange edge between two tokens.
type Edge struct {
	Rate   float64 // units of destination token per unit of source token
	Weight float64 // -ln(rate); negative cycle sums mean profitable loops
	Pair   marketdata.Pair
}

// ExchangeGraph is a directed token-exchange graph. Nodes are token contract
// addresses; every traded pair contributes a forward and an inverse edge.
// Built fresh each scan, read-only afterwards.
type ExchangeGraph struct {
	adj map[string]map[string]Edge
}

// NewExchangeGraph creates an empty graph.
func NewExchangeGraph() *ExchangeGraph {
	return &ExchangeGraph{adj: make(map[string]map[string]Edge)}
}

// AddPair records both directed edges for a base→quote rate. Repeated edges
// for the same (u,v) overwrite: last write wins, no de-duplication.
func (g *ExchangeGraph) AddPair(baseAddr, quoteAddr string, rate float64, pair marketdata.Pair) {
	g.addEdge(baseAddr, quoteAddr, rate, pair)
	g.addEdge(quoteAddr, baseAddr, 1/rate, pair)
}

func (g *ExchangeGraph) addEdge(u, v string, rate float64, pair marketdata.Pair) {
	if g.adj[u] == nil {
		g.adj[u] = make(map[string]Edge)
	}
	g.adj[u][v] = Edge{Rate: rate, Weight: -math.Log(rate), Pair: pair}
}

// Edge returns the directed edge u→v.
func (g *ExchangeGraph) Edge(u, v string) (Edge, bool) {
	e, ok := g.adj[u][v]
	return e, ok
}

// Nodes returns all node addresses in sorted order.
func (g *ExchangeGraph) Nodes() []string {
	nodes := make([]string, 0, len(g.adj))
	for n := range g.adj {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)
	return nodes
}

// NumEdges returns the number of directed edges.
func (g *ExchangeGraph) NumEdges() int {
	n := 0
	for _, nbrs := range g.adj {
		n += len(nbrs)
	}
	return n
}

// CycleWeight sums the edge weights around a cycle (closing edge included).
// ok is false if any edge is missing.
func (g *ExchangeGraph) CycleWeight(cycle []string) (float64, bool) {
	var sum float64
	for i := range cycle {
		e, ok := g.Edge(cycle[i], cycle[(i+1)%len(cycle)])
		if !ok {
			return 0, false
		}
		sum += e.Weight
	}
	return sum, true
}

// SimpleCycles enumerates all simple directed cycles with between minLen and
// maxLen nodes. Each cycle is reported once, rooted at its smallest node.
// This is a bounded DFS rather than Johnson's algorithm: maxLen stays small
// (≤5 in practice), so the path-length cap keeps the search cheap.
func (g *ExchangeGraph) SimpleCycles(minLen, maxLen int) [][]string {
	if minLen < 2 {
		minLen = 2
	}

	nodes := g.Nodes()
	order := make(map[string]int, len(nodes))
	for i, n := range nodes {
		order[n] = i
	}

	var cycles [][]string
	path := make([]string, 0, maxLen)
	onPath := make(map[string]bool, maxLen)

	var dfs func(root, current string)
	dfs = func(root, current string) {
		neighbors := make([]string, 0, len(g.adj[current]))
		for v := range g.adj[current] {
			neighbors = append(neighbors, v)
		}
		sort.Strings(neighbors)

		for _, v := range neighbors {
			if v == root {
				if len(path) >= minLen {
					cycle := make([]string, len(path))
					copy(cycle, path)
					cycles = append(cycles, cycle)
				}
				continue
			}
			// Rooting each cycle at its smallest node prevents reporting
			// rotations of the same cycle from different roots.
			if order[v] < order[root] || onPath[v] || len(path) == maxLen {
				continue
			}
			path = append(path, v)
			onPath[v] = true
			dfs(root, v)
			delete(onPath, v)
			path = path[:len(path)-1]
		}
	}

	for _, root := range nodes {
		path = append(path[:0], root)
		onPath = map[string]bool{root: true}
		dfs(root, root)
	}

	return cycles
}
