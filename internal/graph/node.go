// Package graph builds a deduplicated citation graph from INSPIRE records.
package graph

import (
	"fmt"
	"sort"
)

// Role distinguishes user-supplied seeds from discovered references.
type Role string

const (
	RoleSeed      Role = "seed"
	RoleReference Role = "reference"
)

// Node is a graph vertex. Identity is the record id alone: two nodes with
// the same record id and different titles are the same node. Parents are
// the record ids of the nodes that cite this one.
type Node struct {
	RecordID string
	Title    string
	Role     Role

	parents map[string]struct{}
}

// NewNode creates a node with no parents.
func NewNode(recordID, title string, role Role) *Node {
	return &Node{
		RecordID: recordID,
		Title:    title,
		Role:     role,
		parents:  make(map[string]struct{}),
	}
}

// Key returns the identity used by every set and map in this package.
func (n *Node) Key() string {
	return n.RecordID
}

// IsSeed reports whether the node was supplied as a seed.
func (n *Node) IsSeed() bool {
	return n.Role == RoleSeed
}

// AddParent records that parent cites n. Adding the same parent twice, or
// the node itself, is a no-op.
func (n *Node) AddParent(parent string) {
	if parent == "" || parent == n.Key() {
		return
	}
	if n.parents == nil {
		n.parents = make(map[string]struct{})
	}
	n.parents[parent] = struct{}{}
}

// HasParent reports whether parent cites n.
func (n *Node) HasParent(parent string) bool {
	_, ok := n.parents[parent]
	return ok
}

// Parents returns the parent ids in sorted order.
func (n *Node) Parents() []string {
	out := make([]string, 0, len(n.parents))
	for p := range n.parents {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// ParentCount returns the number of distinct citing nodes.
func (n *Node) ParentCount() int {
	return len(n.parents)
}

// mergeParents unions other's parents into n.
func (n *Node) mergeParents(other *Node) {
	for p := range other.parents {
		n.AddParent(p)
	}
}

func (n *Node) String() string {
	return fmt.Sprintf("Record: %s\nTitle: %s", n.RecordID, n.Title)
}

// Merge folds candidates into a record-id keyed table. The first candidate
// for each id is canonical and keeps its title and role; later duplicates
// only contribute their parents. Output order is first appearance.
func Merge(candidates []*Node) []*Node {
	index := make(map[string]*Node, len(candidates))
	var out []*Node
	for _, c := range candidates {
		if kept, seen := index[c.Key()]; seen {
			kept.mergeParents(c)
			continue
		}
		n := NewNode(c.RecordID, c.Title, c.Role)
		n.mergeParents(c)
		index[n.Key()] = n
		out = append(out, n)
	}
	return out
}
