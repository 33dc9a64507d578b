package viz

import (
	"encoding/json"
	"fmt"
)

// element is one entry of the flat Cytoscape.js elements array. Group is
// "nodes" or "edges".
type element struct {
	Group string `json:"group"`
	Data  any    `json:"data"`
}

type edgeData struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// Elements returns the graph as a flat Cytoscape.js elements array, nodes
// first so every edge endpoint exists when the edge is added.
func (g *GraphData) Elements() []any {
	out := make([]any, 0, len(g.Nodes)+len(g.Edges))
	for _, n := range g.Nodes {
		out = append(out, element{Group: "nodes", Data: n})
	}
	for _, e := range g.Edges {
		out = append(out, element{Group: "edges", Data: edgeData{
			ID:     e.Source + "->" + e.Target,
			Source: e.Source,
			Target: e.Target,
		}})
	}
	return out
}

// ToCytoscapeJSON encodes Elements as JSON.
func (g *GraphData) ToCytoscapeJSON() (string, error) {
	b, err := json.Marshal(g.Elements())
	if err != nil {
		return "", fmt.Errorf("encoding cytoscape elements: %w", err)
	}
	return string(b), nil
}
