package roomgraph

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/matzehuels/roomgraph/pkg/roomtype"
)

// ErrEntranceMismatch is returned by [Restore] when the snapshot's
// EntranceID does not name the graph's entrance-type node.
var ErrEntranceMismatch = errors.New("entrance ID does not match entrance node")

// Snapshot is the plain-data form of a graph used by persistence packages.
// Types are referenced by name and resolved against a registry on restore.
type Snapshot struct {
	EntranceID        string       `json:"entrance_id,omitempty" bson:"entrance_id,omitempty"`
	MaxChildCorridors int          `json:"max_child_corridors,omitempty" bson:"max_child_corridors,omitempty"`
	Nodes             []NodeRecord `json:"nodes" bson:"nodes"`
}

// NodeRecord is one node of a [Snapshot].
type NodeRecord struct {
	ID           string          `json:"id" bson:"id"`
	Type         string          `json:"type" bson:"type"`
	ParentIDs    []string        `json:"parent_ids,omitempty" bson:"parent_ids,omitempty"`
	ChildIDs     []string        `json:"child_ids,omitempty" bson:"child_ids,omitempty"`
	Presentation json.RawMessage `json:"presentation,omitempty" bson:"presentation,omitempty"`
}

// Snapshot returns a deep copy of the graph as plain data, nodes in
// creation order.
func (g *Graph) Snapshot() Snapshot {
	s := Snapshot{
		MaxChildCorridors: g.maxChildCorridors,
		Nodes:             make([]NodeRecord, 0, len(g.order)),
	}
	if e, ok := g.Entrance(); ok {
		s.EntranceID = e.id
	}
	for _, n := range g.Nodes() {
		s.Nodes = append(s.Nodes, NodeRecord{
			ID:           n.id,
			Type:         n.typ.Name,
			ParentIDs:    slices.Clone(n.parents),
			ChildIDs:     slices.Clone(n.children),
			Presentation: slices.Clone(n.Presentation),
		})
	}
	return s
}

// Restore rebuilds a graph from a snapshot, resolving type names against
// types (nil selects [roomtype.Default]). A positive MaxChildCorridors in
// the snapshot overrides the one set by opts.
//
// Restore never repairs data. It fails on an empty or duplicate node ID, an
// unknown type name, an adjacency entry naming a missing node, an edge
// recorded on one side only, an EntranceID that is not the entrance node,
// and any other violation reported by [Graph.Validate].
func Restore(types *roomtype.Registry, s Snapshot, opts ...Option) (*Graph, error) {
	g := New(types, opts...)
	if s.MaxChildCorridors > 0 {
		g.maxChildCorridors = s.MaxChildCorridors
	}

	for _, rec := range s.Nodes {
		if rec.ID == "" {
			return nil, ErrInvalidNodeID
		}
		if _, dup := g.nodes[rec.ID]; dup {
			return nil, fmt.Errorf("node %s: %w", rec.ID, ErrDuplicateNodeID)
		}
		t, ok := g.types.ByName(rec.Type)
		if !ok {
			return nil, fmt.Errorf("node %s: %w: %q", rec.ID, ErrUnknownType, rec.Type)
		}
		g.insert(&Node{
			id:           rec.ID,
			typ:          t,
			parents:      slices.Clone(rec.ParentIDs),
			children:     slices.Clone(rec.ChildIDs),
			Presentation: slices.Clone(rec.Presentation),
		})
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}

	if s.EntranceID != "" {
		n, ok := g.nodes[s.EntranceID]
		if !ok || !n.typ.IsEntrance {
			return nil, fmt.Errorf("%w: %s", ErrEntranceMismatch, s.EntranceID)
		}
	} else if e, ok := g.Entrance(); ok {
		return nil, fmt.Errorf("%w: snapshot names none, graph has %s", ErrEntranceMismatch, e.id)
	}
	return g, nil
}
