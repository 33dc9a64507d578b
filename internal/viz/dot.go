package viz

import (
	"fmt"
	"strconv"

	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"
)

// dotNode is a record as a gonum node carrying its DOT attributes.
type dotNode struct {
	id   int64
	node Node
}

func (n dotNode) ID() int64 { return n.id }

func (n dotNode) DOTID() string { return strconv.Quote(n.node.ID) }

func (n dotNode) Attributes() []encoding.Attribute {
	shape := "ellipse"
	if n.node.Type == NodeTypeSeed {
		shape = "star"
	}
	return []encoding.Attribute{
		{Key: "label", Value: strconv.Quote(n.node.Label)},
		{Key: "tooltip", Value: strconv.Quote(n.node.Title)},
		{Key: "shape", Value: shape},
		{Key: "width", Value: fmt.Sprintf("%.2f", n.node.Size/72)},
	}
}

// dotGraph adds graph-wide defaults to a directed graph.
type dotGraph struct {
	*simple.DirectedGraph
}

func (dotGraph) DOTAttributers() (g, n, e encoding.Attributer) {
	return &encoding.Attributes{{Key: "rankdir", Value: "LR"}},
		&encoding.Attributes{
			{Key: "style", Value: "filled"},
			{Key: "fillcolor", Value: `"#9ECAE1"`},
			{Key: "fontsize", Value: "9"},
		},
		nil
}

// GenerateDOT renders the graph in Graphviz DOT. Seeds are drawn as stars
// and node width follows parent count.
func GenerateDOT(g *GraphData) (string, error) {
	if g == nil {
		return "", fmt.Errorf("graph cannot be nil")
	}

	dg := dotGraph{simple.NewDirectedGraph()}
	pos := make(map[string]int64, len(g.Nodes))
	for i, n := range g.Nodes {
		pos[n.ID] = int64(i)
		dg.AddNode(dotNode{id: int64(i), node: n})
	}
	for _, e := range g.Edges {
		from, okFrom := pos[e.Source]
		to, okTo := pos[e.Target]
		if !okFrom || !okTo || from == to {
			continue
		}
		dg.SetEdge(dg.NewEdge(dg.Node(from), dg.Node(to)))
	}

	b, err := dot.Marshal(dg, "citations", "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding dot: %w", err)
	}
	return string(b) + "\n", nil
}
