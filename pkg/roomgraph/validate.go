package roomgraph

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Restore] for a node with an empty ID.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Restore] when two nodes share an ID.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrDanglingEdge is returned by [Graph.Validate] and [Restore] when an
	// adjacency list names a node that does not exist.
	ErrDanglingEdge = errors.New("edge references unknown node")

	// ErrAsymmetricEdge is returned by [Graph.Validate] and [Restore] when an
	// edge is recorded on one endpoint only.
	ErrAsymmetricEdge = errors.New("edge recorded on one side only")

	// ErrInvariant is returned by [Graph.Validate] for any other broken
	// structural rule. The wrapping message names the node and the rule.
	ErrInvariant = errors.New("graph invariant violated")
)

// Validate checks every structural invariant of the graph and returns the
// first violation found, or nil. Graphs changed only through this package's
// methods always validate; the check exists for restored data and tests.
func (g *Graph) Validate() error {
	entrances := 0
	connectedBosses := 0

	for _, id := range g.order {
		n := g.nodes[id]
		if !g.types.Contains(n.typ) {
			return fmt.Errorf("node %s: %w: %v", id, ErrUnknownType, n.typ)
		}
		if err := g.validateAdjacency(n); err != nil {
			return fmt.Errorf("node %s: %w", id, err)
		}
		if err := g.validateShape(n); err != nil {
			return fmt.Errorf("node %s: %w", id, err)
		}
		if n.typ.IsEntrance {
			entrances++
		}
		if n.typ.IsBossRoom && len(n.parents) > 0 {
			connectedBosses++
		}
	}

	if entrances > 1 {
		return fmt.Errorf("%w: %d entrance nodes", ErrDuplicateEntrance, entrances)
	}
	if connectedBosses > 1 {
		return fmt.Errorf("%w: %d connected boss rooms", ErrInvariant, connectedBosses)
	}
	return nil
}

func (g *Graph) validateAdjacency(n *Node) error {
	for _, c := range n.children {
		child, ok := g.nodes[c]
		if !ok {
			return fmt.Errorf("%w: child %s", ErrDanglingEdge, c)
		}
		if !slices.Contains(child.parents, n.id) {
			return fmt.Errorf("%w: %s lists child %s", ErrAsymmetricEdge, n.id, c)
		}
	}
	for _, p := range n.parents {
		parent, ok := g.nodes[p]
		if !ok {
			return fmt.Errorf("%w: parent %s", ErrDanglingEdge, p)
		}
		if !slices.Contains(parent.children, n.id) {
			return fmt.Errorf("%w: %s lists parent %s", ErrAsymmetricEdge, n.id, p)
		}
	}
	if slices.Contains(n.children, n.id) || slices.Contains(n.parents, n.id) {
		return fmt.Errorf("%w: self loop", ErrInvariant)
	}
	if hasDuplicates(n.children) || hasDuplicates(n.parents) {
		return fmt.Errorf("%w: duplicate edge", ErrInvariant)
	}
	for _, c := range n.children {
		if slices.Contains(n.parents, c) {
			return fmt.Errorf("%w: %s is both parent and child", ErrInvariant, c)
		}
	}
	return nil
}

func (g *Graph) validateShape(n *Node) error {
	if n.typ.IsEntrance && len(n.parents) > 0 {
		return fmt.Errorf("%w: entrance has a parent", ErrInvariant)
	}
	if len(n.parents) > 1 {
		return fmt.Errorf("%w: %d parents", ErrInvariant, len(n.parents))
	}
	if n.typ.IsNone && len(n.parents) > 0 {
		return fmt.Errorf("%w: none-type node has a parent", ErrInvariant)
	}
	if n.typ.IsCorridor {
		if len(n.children) > 1 {
			return fmt.Errorf("%w: corridor has %d children", ErrInvariant, len(n.children))
		}
	} else if len(n.children) > g.maxChildCorridors {
		return fmt.Errorf("%w: room has %d children, limit %d", ErrInvariant, len(n.children), g.maxChildCorridors)
	}
	for _, c := range n.children {
		if g.nodes[c].typ.IsCorridor == n.typ.IsCorridor {
			return fmt.Errorf("%w: child %s does not alternate corridor and room", ErrInvariant, c)
		}
	}
	return nil
}

func hasDuplicates(ids []string) bool {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return true
		}
		seen[id] = struct{}{}
	}
	return false
}
