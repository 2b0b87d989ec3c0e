package roomgraph

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/zyedidia/generic/mapset"

	"github.com/matzehuels/roomgraph/pkg/roomtype"
)

// DefaultMaxChildCorridors is the corridor fan-out limit used when none is
// configured.
const DefaultMaxChildCorridors = 3

var (
	// ErrUnknownNode is returned when an operation names a node that is not
	// in the graph.
	ErrUnknownNode = errors.New("unknown node")

	// ErrUnknownParent is returned by [Graph.Connect] and [CanConnect] when
	// the parent node does not exist.
	ErrUnknownParent = errors.New("unknown parent node")

	// ErrUnknownChild is returned by [Graph.Connect] and [CanConnect] when
	// the child node does not exist.
	ErrUnknownChild = errors.New("unknown child node")

	// ErrUnknownType is returned when a type does not belong to the graph's
	// registry.
	ErrUnknownType = errors.New("unknown room type")

	// ErrDuplicateEntrance is returned when an operation would leave the
	// graph with two entrance nodes.
	ErrDuplicateEntrance = errors.New("graph already has an entrance")

	// ErrDetachedNode is returned by [Node.SetType] after the node has been
	// deleted from its graph.
	ErrDetachedNode = errors.New("node is not part of a graph")
)

// Edge is a directed parent→child connection.
type Edge struct {
	From string `json:"from"` // parent ID
	To   string `json:"to"`   // child ID
}

// Graph is the aggregate owning every room node of one dungeon layout.
//
// The zero value is not usable; create graphs with [New] or [Restore].
// Graph is not safe for concurrent use without external synchronization.
type Graph struct {
	types             *roomtype.Registry
	maxChildCorridors int
	nodes             map[string]*Node
	order             []string // insertion order, for deterministic iteration
	newID             func() string
}

// Option configures a [Graph].
type Option func(*Graph)

// WithMaxChildCorridors sets how many corridors a room may lead into.
// Values below 1 are ignored.
func WithMaxChildCorridors(n int) Option {
	return func(g *Graph) {
		if n > 0 {
			g.maxChildCorridors = n
		}
	}
}

// WithIDGenerator replaces the UUID generator used by [Graph.CreateNode].
// The generator must not return an empty string.
func WithIDGenerator(fn func() string) Option {
	return func(g *Graph) {
		if fn != nil {
			g.newID = fn
		}
	}
}

// New creates an empty graph over the given type registry.
// A nil registry selects [roomtype.Default].
func New(types *roomtype.Registry, opts ...Option) *Graph {
	if types == nil {
		types = roomtype.Default()
	}
	g := &Graph{
		types:             types,
		maxChildCorridors: DefaultMaxChildCorridors,
		nodes:             make(map[string]*Node),
		newID:             uuid.NewString,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Types returns the registry the graph was created with.
func (g *Graph) Types() *roomtype.Registry { return g.types }

// MaxChildCorridors returns the configured corridor fan-out limit.
func (g *Graph) MaxChildCorridors() int { return g.maxChildCorridors }

// CreateNode adds an isolated node of type t and returns its ID.
// A nil type creates a node of the registry's none type.
//
// Returns ErrUnknownType if t is not from the graph's registry, or
// ErrDuplicateEntrance if t is the entrance type and the graph already
// has an entrance node.
func (g *Graph) CreateNode(t *roomtype.Type) (string, error) {
	if t == nil {
		t = g.types.None()
	}
	if !g.types.Contains(t) {
		return "", fmt.Errorf("%w: %s", ErrUnknownType, t.Name)
	}
	if t.IsEntrance {
		if e, ok := g.Entrance(); ok {
			return "", fmt.Errorf("%w: %s", ErrDuplicateEntrance, e.id)
		}
	}

	id := g.newID()
	for _, taken := g.nodes[id]; taken || id == ""; _, taken = g.nodes[id] {
		id = g.newID()
	}
	g.insert(&Node{id: id, typ: t})
	return id, nil
}

func (g *Graph) insert(n *Node) {
	n.graph = g
	g.nodes[n.id] = n
	g.order = append(g.order, n.id)
}

// Connect adds the edge parentID→childID if [CanConnect] allows it.
// Both adjacency lists are updated together; on any error the graph is
// unchanged. Denials are returned as *[DenialError].
func (g *Graph) Connect(parentID, childID string) error {
	if err := g.CanConnect(parentID, childID); err != nil {
		return err
	}
	g.attach(g.nodes[parentID], g.nodes[childID])
	return nil
}

func (g *Graph) attach(parent, child *Node) {
	parent.addChildEdge(child.id)
	child.addParentEdge(parent.id)
}

// Disconnect removes the edge parentID→childID from both endpoints.
// It reports whether the edge existed; missing nodes or edges are a no-op.
func (g *Graph) Disconnect(parentID, childID string) bool {
	parent, okP := g.nodes[parentID]
	child, okC := g.nodes[childID]
	if !okP || !okC {
		return false
	}
	removedChild := parent.removeChildEdge(childID)
	removedParent := child.removeParentEdge(parentID)
	return removedChild || removedParent
}

// DeleteLinksAmong disconnects every edge whose endpoints are both in ids,
// leaving the nodes themselves in place. It returns the number of edges
// removed. Unknown IDs are ignored.
func (g *Graph) DeleteLinksAmong(ids []string) int {
	selected := selection(ids)
	removed := 0
	for _, id := range g.order {
		if !selected.Has(id) {
			continue
		}
		for _, child := range g.nodes[id].ChildIDs() {
			if selected.Has(child) && g.Disconnect(id, child) {
				removed++
			}
		}
	}
	return removed
}

// DeleteNode severs every edge touching id and removes the node.
// Returns ErrUnknownNode if id is not in the graph.
//
// DeleteNode does not protect the entrance node. Callers that must keep an
// entrance for the graph's whole lifetime refuse such deletions themselves.
func (g *Graph) DeleteNode(id string) error {
	n, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	for _, child := range n.ChildIDs() {
		g.Disconnect(id, child)
	}
	for _, parent := range n.ParentIDs() {
		g.Disconnect(parent, id)
	}
	delete(g.nodes, id)
	g.order = slices.DeleteFunc(g.order, func(s string) bool { return s == id })
	n.graph = nil
	return nil
}

// DeleteNodes deletes every node in ids and returns how many were removed.
// Unknown and repeated IDs are skipped.
func (g *Graph) DeleteNodes(ids []string) int {
	deleted := 0
	selected := selection(ids)
	for _, id := range slices.Clone(g.order) {
		if selected.Has(id) && g.DeleteNode(id) == nil {
			deleted++
		}
	}
	return deleted
}

func selection(ids []string) mapset.Set[string] {
	s := mapset.New[string]()
	for _, id := range ids {
		s.Put(id)
	}
	return s
}

// SetType changes the type of node id to t (nil meaning the none type) and
// re-validates every edge touching the node against the new type. Edges the
// new type makes illegal are disconnected on both sides and returned.
//
// Returns ErrUnknownNode, ErrUnknownType, or ErrDuplicateEntrance when t is
// the entrance type and a different node is already the entrance. Setting
// the node's current type is a no-op.
func (g *Graph) SetType(id string, t *roomtype.Type) ([]Edge, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	if t == nil {
		t = g.types.None()
	}
	if !g.types.Contains(t) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, t.Name)
	}
	if t == n.typ {
		return nil, nil
	}
	if t.IsEntrance {
		if e, ok := g.Entrance(); ok && e != n {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateEntrance, e.id)
		}
	}

	n.typ = t
	return g.revalidate(n), nil
}

// revalidate detaches every edge incident to n and re-attaches those the
// engine still allows. Children are re-attached in their original order,
// so when a fan-out limit now applies the earliest children are kept.
func (g *Graph) revalidate(n *Node) []Edge {
	var severed []Edge

	for _, parent := range n.ParentIDs() {
		g.Disconnect(parent, n.id)
		if g.CanConnect(parent, n.id) != nil {
			severed = append(severed, Edge{From: parent, To: n.id})
			continue
		}
		g.attach(g.nodes[parent], n)
	}

	children := n.ChildIDs()
	for _, child := range children {
		g.Disconnect(n.id, child)
	}
	for _, child := range children {
		if g.CanConnect(n.id, child) != nil {
			severed = append(severed, Edge{From: n.id, To: child})
			continue
		}
		g.attach(n, g.nodes[child])
	}
	return severed
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// TypeOf returns the type of node id.
func (g *Graph) TypeOf(id string) (*roomtype.Type, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, false
	}
	return n.typ, true
}

// Nodes returns all nodes in creation order. The pointers refer to the
// graph's own nodes.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.order))
	for i, id := range g.order {
		out[i] = g.nodes[id]
	}
	return out
}

// Children returns a copy of the child IDs of id, or nil if id is unknown.
func (g *Graph) Children(id string) []string {
	if n, ok := g.nodes[id]; ok {
		return n.ChildIDs()
	}
	return nil
}

// Parents returns a copy of the parent IDs of id, or nil if id is unknown.
func (g *Graph) Parents(id string) []string {
	if n, ok := g.nodes[id]; ok {
		return n.ParentIDs()
	}
	return nil
}

// Entrance returns the entrance node, if the graph has one.
func (g *Graph) Entrance() (*Node, bool) {
	for _, id := range g.order {
		if n := g.nodes[id]; n.typ.IsEntrance {
			return n, true
		}
	}
	return nil, false
}

// Edges returns every edge, grouped by parent in creation order.
func (g *Graph) Edges() []Edge {
	var out []Edge
	for _, id := range g.order {
		for _, child := range g.nodes[id].children {
			out = append(out, Edge{From: id, To: child})
		}
	}
	return out
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, n := range g.nodes {
		count += len(n.children)
	}
	return count
}
