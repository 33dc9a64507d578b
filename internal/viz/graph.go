package viz

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Benkendorfer/HEP-paper-graph/internal/graph"
	"github.com/Benkendorfer/HEP-paper-graph/internal/storage"
)

// maxLabelRunes bounds node labels; the full title stays in the tooltip.
const maxLabelRunes = 40

// BuildGraph constructs visualization data from snapshot records. Parents
// that are not themselves records are dropped.
func BuildGraph(records []storage.NodeRecord) *GraphData {
	ids := make(map[string]bool, len(records))
	maxParents := 0
	maxCentrality := 0.0
	for _, r := range records {
		ids[r.RecordID] = true
		if n := len(r.Parents); n > maxParents {
			maxParents = n
		}
		if r.Centrality > maxCentrality {
			maxCentrality = r.Centrality
		}
	}

	data := &GraphData{
		Nodes: make([]Node, 0, len(records)),
		Edges: []Edge{},
	}
	for _, r := range records {
		data.Nodes = append(data.Nodes, newNode(r, maxParents, maxCentrality))
		for _, p := range r.Parents {
			if ids[p] {
				data.Edges = append(data.Edges, Edge{Source: p, Target: r.RecordID})
			}
		}
	}

	sort.SliceStable(data.Edges, func(i, j int) bool {
		if data.Edges[i].Source != data.Edges[j].Source {
			return data.Edges[i].Source < data.Edges[j].Source
		}
		return data.Edges[i].Target < data.Edges[j].Target
	})
	return data
}

// BuildGraphFromDatabase builds visualization data from a loaded database,
// with nodes in centrality order.
func BuildGraphFromDatabase(db *storage.DB) (*GraphData, error) {
	records, err := db.Top(storage.ByCentrality, 0)
	if err != nil {
		return nil, err
	}
	citations, err := db.AllCitations()
	if err != nil {
		return nil, err
	}
	parents := make(map[string][]string, len(records))
	for _, c := range citations {
		parents[c.CitedID] = append(parents[c.CitedID], c.CiterID)
	}
	for i := range records {
		records[i].Parents = parents[records[i].RecordID]
	}
	return BuildGraph(records), nil
}

func newNode(r storage.NodeRecord, maxParents int, maxCentrality float64) Node {
	nodeType := NodeTypeReference
	if r.Role == graph.RoleSeed {
		nodeType = NodeTypeSeed
	}

	size := MinNodeSize
	if maxParents > 0 {
		size += (MaxNodeSize - MinNodeSize) * float64(len(r.Parents)) / float64(maxParents)
	}
	heat := 0.0
	if maxCentrality > 0 {
		heat = r.Centrality / maxCentrality
	}

	return Node{
		ID:          r.RecordID,
		Type:        nodeType,
		Label:       label(r),
		Title:       r.Title,
		ParentCount: len(r.Parents),
		Centrality:  r.Centrality,
		Heat:        heat,
		Size:        size,
	}
}

// label shortens a title for display, falling back to the record id.
func label(r storage.NodeRecord) string {
	title := strings.Join(strings.Fields(r.Title), " ")
	if title == "" {
		return r.RecordID
	}
	if utf8.RuneCountInString(title) <= maxLabelRunes {
		return title
	}
	runes := []rune(title)
	return strings.TrimSpace(string(runes[:maxLabelRunes-1])) + "…"
}
