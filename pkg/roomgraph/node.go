package roomgraph

import (
	"encoding/json"
	"slices"

	"github.com/matzehuels/roomgraph/pkg/roomtype"
)

// Node is a vertex of a [Graph]: a room or a corridor segment.
//
// Nodes are created by [Graph.CreateNode] and only exist while their graph
// holds them. The adjacency lists are private; read them with
// [Node.ParentIDs] and [Node.ChildIDs], and change them through the graph.
type Node struct {
	id       string
	typ      *roomtype.Type
	parents  []string
	children []string
	graph    *Graph // back-reference for queries, not ownership

	// Presentation is opaque data owned by an editor (screen position and
	// the like). The graph stores and snapshots it but never reads it.
	Presentation json.RawMessage
}

// ID returns the node's identifier. It never changes.
func (n *Node) ID() string { return n.id }

// Type returns the node's current type.
func (n *Node) Type() *roomtype.Type { return n.typ }

// ParentIDs returns a copy of the node's parent list.
func (n *Node) ParentIDs() []string { return slices.Clone(n.parents) }

// ChildIDs returns a copy of the node's child list.
func (n *Node) ChildIDs() []string { return slices.Clone(n.children) }

// Graph returns the graph holding the node, or nil once it has been deleted.
func (n *Node) Graph() *Graph { return n.graph }

// SetType reclassifies the node through its graph. See [Graph.SetType].
func (n *Node) SetType(t *roomtype.Type) ([]Edge, error) {
	if n.graph == nil {
		return nil, ErrDetachedNode
	}
	return n.graph.SetType(n.id, t)
}

func (n *Node) addChildEdge(id string) bool {
	if slices.Contains(n.children, id) {
		return false
	}
	n.children = append(n.children, id)
	return true
}

func (n *Node) addParentEdge(id string) bool {
	if slices.Contains(n.parents, id) {
		return false
	}
	n.parents = append(n.parents, id)
	return true
}

func (n *Node) removeChildEdge(id string) bool {
	i := slices.Index(n.children, id)
	if i < 0 {
		return false
	}
	n.children = slices.Delete(n.children, i, i+1)
	return true
}

func (n *Node) removeParentEdge(id string) bool {
	i := slices.Index(n.parents, id)
	if i < 0 {
		return false
	}
	n.parents = slices.Delete(n.parents, i, i+1)
	return true
}
