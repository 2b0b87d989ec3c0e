package roomgraph

import (
	"errors"
	"fmt"
	"slices"
)

// ErrConnectionDenied matches every *[DenialError] with errors.Is.
var ErrConnectionDenied = errors.New("connection denied")

// Reason identifies the rule that rejected a proposed edge.
type Reason int

// Denial reasons, in the order [CanConnect] evaluates them.
const (
	// SelfLoop: parent and child are the same node.
	SelfLoop Reason = iota + 1
	// InvalidChildType: the child has the none type.
	InvalidChildType
	// DuplicateEdge: the child is already a child of the parent.
	DuplicateEdge
	// InvertedEdge: the child is already a parent of the parent.
	InvertedEdge
	// ChildAlreadyHasParent: the child already has a parent.
	ChildAlreadyHasParent
	// DuplicateBossRoom: the child is a boss room and another boss room is
	// already connected.
	DuplicateBossRoom
	// CorridorAdjacencyViolation: parent and child are both corridors or
	// both rooms.
	CorridorAdjacencyViolation
	// CorridorFanOutExceeded: the parent already leads into the maximum
	// number of corridors.
	CorridorFanOutExceeded
	// EntranceCannotBeChild: the child is the entrance.
	EntranceCannotBeChild
	// ParentAlreadyBranched: the child is a room and the parent corridor
	// already leads somewhere.
	ParentAlreadyBranched
)

var reasonNames = map[Reason]string{
	SelfLoop:                   "SelfLoop",
	InvalidChildType:           "InvalidChildType",
	DuplicateEdge:              "DuplicateEdge",
	InvertedEdge:               "InvertedEdge",
	ChildAlreadyHasParent:      "ChildAlreadyHasParent",
	DuplicateBossRoom:          "DuplicateBossRoom",
	CorridorAdjacencyViolation: "CorridorAdjacencyViolation",
	CorridorFanOutExceeded:     "CorridorFanOutExceeded",
	EntranceCannotBeChild:      "EntranceCannotBeChild",
	ParentAlreadyBranched:      "ParentAlreadyBranched",
}

var reasonMessages = map[Reason]string{
	SelfLoop:                   "a node cannot be connected to itself",
	InvalidChildType:           "nodes without a type cannot be children",
	DuplicateEdge:              "the nodes are already connected",
	InvertedEdge:               "the child is already the parent's parent",
	ChildAlreadyHasParent:      "the child already has a parent",
	DuplicateBossRoom:          "a boss room is already connected",
	CorridorAdjacencyViolation: "corridors and rooms must alternate",
	CorridorFanOutExceeded:     "the room has no corridor slots left",
	EntranceCannotBeChild:      "the entrance cannot have a parent",
	ParentAlreadyBranched:      "the corridor already leads to a room",
}

// String returns the reason's name, e.g. "SelfLoop".
func (r Reason) String() string {
	if s, ok := reasonNames[r]; ok {
		return s
	}
	return fmt.Sprintf("Reason(%d)", int(r))
}

// Message returns a sentence describing the reason for end users.
func (r Reason) Message() string {
	if s, ok := reasonMessages[r]; ok {
		return s
	}
	return r.String()
}

// ParseReason returns the reason named s.
func ParseReason(s string) (Reason, bool) {
	for r, name := range reasonNames {
		if name == s {
			return r, true
		}
	}
	return 0, false
}

// DenialError reports that an edge was rejected and why.
type DenialError struct {
	Reason   Reason
	ParentID string
	ChildID  string
}

func (e *DenialError) Error() string {
	return fmt.Sprintf("connect %s -> %s: %s (%s)", e.ParentID, e.ChildID, e.Reason.Message(), e.Reason)
}

// Unwrap lets errors.Is(err, ErrConnectionDenied) match.
func (e *DenialError) Unwrap() error { return ErrConnectionDenied }

// ReasonOf extracts the denial reason from err.
func ReasonOf(err error) (Reason, bool) {
	var de *DenialError
	if errors.As(err, &de) {
		return de.Reason, true
	}
	return 0, false
}

// CanConnect decides whether the edge parentID→childID may be added to g.
// It returns nil when allowed, a *[DenialError] carrying the first failing
// rule when denied, and ErrUnknownParent or ErrUnknownChild when an
// endpoint does not exist. g is never modified.
func CanConnect(g *Graph, parentID, childID string) error {
	parent, ok := g.nodes[parentID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownParent, parentID)
	}
	child, ok := g.nodes[childID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownChild, childID)
	}
	if r := g.check(parent, child); r != 0 {
		return &DenialError{Reason: r, ParentID: parentID, ChildID: childID}
	}
	return nil
}

// CanConnect is shorthand for [CanConnect](g, parentID, childID).
func (g *Graph) CanConnect(parentID, childID string) error {
	return CanConnect(g, parentID, childID)
}

// check returns the first failing rule, or 0.
func (g *Graph) check(parent, child *Node) Reason {
	pt, ct := parent.typ, child.typ

	switch {
	case parent.id == child.id:
		return SelfLoop
	case ct.IsNone:
		return InvalidChildType
	case slices.Contains(parent.children, child.id):
		return DuplicateEdge
	case slices.Contains(parent.parents, child.id):
		return InvertedEdge
	case len(child.parents) > 0:
		return ChildAlreadyHasParent
	case ct.IsBossRoom && g.hasConnectedBossRoom(child):
		return DuplicateBossRoom
	case ct.IsCorridor == pt.IsCorridor:
		return CorridorAdjacencyViolation
	case ct.IsCorridor && len(parent.children) >= g.maxChildCorridors:
		return CorridorFanOutExceeded
	case ct.IsEntrance:
		return EntranceCannotBeChild
	case !ct.IsCorridor && len(parent.children) > 0:
		return ParentAlreadyBranched
	}
	return 0
}

func (g *Graph) hasConnectedBossRoom(except *Node) bool {
	for _, n := range g.nodes {
		if n != except && n.typ.IsBossRoom && len(n.parents) > 0 {
			return true
		}
	}
	return false
}
