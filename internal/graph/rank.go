package graph

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
)

// PageRank parameters.
const (
	Damping   = 0.85
	Tolerance = 1e-12

	// scorePrecision is the rounding applied to scores. It is far coarser
	// than the solver error so equal scores compare equal.
	scorePrecision = 1e9
)

// Ranking is one row of a ranked node list.
type Ranking struct {
	RecordID    string  `json:"record_id"`
	Title       string  `json:"title"`
	Role        Role    `json:"role"`
	ParentCount int     `json:"parent_count"`
	Centrality  float64 `json:"centrality"`
}

// Directed returns g as a gonum directed graph with citer → cited edges.
// Gonum node ids are positions in Nodes().
func (g *Graph) Directed() *simple.DirectedGraph {
	dg := simple.NewDirectedGraph()
	pos := make(map[string]int64, len(g.nodes))
	for i, n := range g.nodes {
		pos[n.Key()] = int64(i)
		dg.AddNode(simple.Node(i))
	}
	for _, e := range g.Edges() {
		dg.SetEdge(dg.NewEdge(dg.Node(pos[e.Citer]), dg.Node(pos[e.Cited])))
	}
	return dg
}

// Centrality computes PageRank over citer → cited edges, so score flows
// toward heavily cited records. Scores sum to 1.
func (g *Graph) Centrality() map[string]float64 {
	scores := make(map[string]float64, len(g.nodes))
	if len(g.nodes) == 0 {
		return scores
	}
	ranks := network.PageRankSparse(g.Directed(), Damping, Tolerance)
	for i, n := range g.nodes {
		scores[n.Key()] = math.Round(ranks[int64(i)]*scorePrecision) / scorePrecision
	}
	return scores
}

// Rank returns every node ordered by centrality, then parent count, then
// record id.
func (g *Graph) Rank() []Ranking {
	scores := g.Centrality()
	out := make([]Ranking, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, Ranking{
			RecordID:    n.RecordID,
			Title:       n.Title,
			Role:        n.Role,
			ParentCount: n.ParentCount(),
			Centrality:  scores[n.Key()],
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if d := out[i].Centrality - out[j].Centrality; math.Abs(d) > 1/scorePrecision {
			return d > 0
		}
		if out[i].ParentCount != out[j].ParentCount {
			return out[i].ParentCount > out[j].ParentCount
		}
		return out[i].RecordID < out[j].RecordID
	})
	return out
}
