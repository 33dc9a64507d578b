// Package storage persists citation graphs as JSONL snapshots and loads them
// into an ephemeral SQLite database for queries.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/Benkendorfer/HEP-paper-graph/internal/graph"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// NodeRecord is one line of a graph snapshot.
type NodeRecord struct {
	RecordID    string     `json:"record_id"`
	Title       string     `json:"title"`
	Role        graph.Role `json:"role"`
	Parents     []string   `json:"parents"`
	ParentCount int        `json:"parent_count"`
	Centrality  float64    `json:"centrality"`
}

// Snapshot converts a graph to records in node order, with centrality filled in.
func Snapshot(g *graph.Graph) []NodeRecord {
	scores := g.Centrality()
	records := make([]NodeRecord, 0, g.Len())
	for _, n := range g.Nodes() {
		parents := n.Parents()
		if parents == nil {
			parents = []string{}
		}
		records = append(records, NodeRecord{
			RecordID:    n.RecordID,
			Title:       n.Title,
			Role:        n.Role,
			Parents:     parents,
			ParentCount: len(parents),
			Centrality:  scores[n.Key()],
		})
	}
	return records
}

// Restore rebuilds a graph from snapshot records. Duplicate record ids are
// merged the same way the builder merges them.
func Restore(records []NodeRecord) *graph.Graph {
	nodes := make([]*graph.Node, 0, len(records))
	for _, r := range records {
		n := graph.NewNode(r.RecordID, r.Title, r.Role)
		for _, p := range r.Parents {
			n.AddParent(p)
		}
		nodes = append(nodes, n)
	}
	return graph.NewGraph(nodes)
}

// ReadAll reads all node records from a JSONL snapshot.
func ReadAll(path string) ([]NodeRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening graph file: %w", err)
	}
	defer f.Close()

	var records []NodeRecord
	scanner := bufio.NewScanner(f)
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var r NodeRecord
		if err := json.Unmarshal(line, &r); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		if r.RecordID == "" {
			return nil, fmt.Errorf("line %d: missing record_id", lineNum)
		}
		switch r.Role {
		case graph.RoleSeed, graph.RoleReference:
		default:
			return nil, fmt.Errorf("line %d: unknown role %q", lineNum, r.Role)
		}
		records = append(records, r)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading graph file: %w", err)
	}
	return records, nil
}

// WriteAll writes node records to a JSONL file, replacing existing content.
func WriteAll(path string, records []NodeRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating graph file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i, r := range records {
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encoding node %d: %w", i, err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("writing node %d: %w", i, err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing newline: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing graph file: %w", err)
	}
	return f.Close()
}

// WriteGraph snapshots g to path.
func WriteGraph(path string, g *graph.Graph) error {
	return WriteAll(path, Snapshot(g))
}

// ReadGraph loads a snapshot and rebuilds the graph. A missing file is an error.
func ReadGraph(path string) (*graph.Graph, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("opening graph file: %w", err)
	}
	records, err := ReadAll(path)
	if err != nil {
		return nil, err
	}
	return Restore(records), nil
}
