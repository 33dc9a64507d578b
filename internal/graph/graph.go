package graph

import "sort"

// Graph is a deduplicated node collection. Record ids are unique.
type Graph struct {
	nodes []*Node
	index map[string]*Node
}

// Edge is a citation: Citer cites Cited, stored as Cited.parents ∋ Citer.
type Edge struct {
	Citer string `json:"citer"`
	Cited string `json:"cited"`
}

// NewGraph builds a graph from nodes, merging any duplicates.
func NewGraph(nodes []*Node) *Graph {
	merged := Merge(nodes)
	g := &Graph{
		nodes: merged,
		index: make(map[string]*Node, len(merged)),
	}
	for _, n := range merged {
		g.index[n.Key()] = n
	}
	return g
}

// Nodes returns the nodes in first-appearance order.
func (g *Graph) Nodes() []*Node {
	return g.nodes
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Lookup finds a node by record id.
func (g *Graph) Lookup(recordID string) (*Node, bool) {
	n, ok := g.index[recordID]
	return n, ok
}

// Contains reports whether recordID is a node of g.
func (g *Graph) Contains(recordID string) bool {
	_, ok := g.index[recordID]
	return ok
}

// Seeds returns the seed nodes.
func (g *Graph) Seeds() []*Node {
	var out []*Node
	for _, n := range g.nodes {
		if n.IsSeed() {
			out = append(out, n)
		}
	}
	return out
}

// Edges returns every citation whose endpoints are both in the graph,
// sorted by cited then citer.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for _, n := range g.nodes {
		for _, p := range n.Parents() {
			if g.Contains(p) {
				edges = append(edges, Edge{Citer: p, Cited: n.Key()})
			}
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Cited != edges[j].Cited {
			return edges[i].Cited < edges[j].Cited
		}
		return edges[i].Citer < edges[j].Citer
	})
	return edges
}
