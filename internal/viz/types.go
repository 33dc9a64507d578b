// Package viz renders citation graphs as interactive Cytoscape.js HTML or
// Graphviz DOT.
package viz

// Node types, matching the graph roles.
const (
	NodeTypeSeed      = "seed"
	NodeTypeReference = "reference"
)

// Node size bounds in pixels.
const (
	MinNodeSize = 20.0
	MaxNodeSize = 60.0
)

// GraphData contains all data needed to render the visualization.
type GraphData struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node represents a record in the graph.
type Node struct {
	ID   string `json:"id"`
	Type string `json:"type"` // "seed" or "reference"

	// Display
	Label string `json:"label"`
	Title string `json:"title"`

	ParentCount int     `json:"parentCount"`
	Centrality  float64 `json:"centrality"`

	// Heat is centrality scaled to [0, 1] against the most central node.
	Heat float64 `json:"heat"`
	// Size is the rendered diameter, scaled by parent count.
	Size float64 `json:"size"`
}

// Edge points from the citing record to the cited one.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// IsEmpty returns true if the graph has no nodes.
func (g *GraphData) IsEmpty() bool {
	return len(g.Nodes) == 0
}
