// Package roomgraph provides the room node graph used to lay out dungeon
// topologies, together with the rules deciding which edges may exist.
//
// # Overview
//
// A dungeon is described as a rooted tree of typed nodes. The root is the
// single entrance. Rooms lead into corridors and corridors lead into rooms,
// so every path alternates between the two. A [Graph] owns all of its nodes
// and is the only way to change them: nodes cannot be created, linked or
// destroyed except through the graph's methods.
//
// # Basic Usage
//
// Create a graph over a type registry, add nodes, then connect them:
//
//	types := roomtype.Default()
//	g := roomgraph.New(types)
//	entrance, _ := g.CreateNode(types.Entrance())
//	corridor, _ := g.CreateNode(corridorType)
//	if err := g.Connect(entrance, corridor); err != nil {
//	    // err is a *DenialError naming the broken rule
//	}
//
// Query the structure with [Graph.Children], [Graph.Parents], [Graph.Nodes]
// and [Graph.Node]. Use [Graph.Validate] to check every structural invariant.
//
// # Connection Rules
//
// [CanConnect] evaluates the rules below in order and reports the first one
// that fails as a [Reason]:
//
//  1. [SelfLoop]: a node cannot be its own child
//  2. [InvalidChildType]: nodes of the none type cannot be children
//  3. [DuplicateEdge]: the edge already exists
//  4. [InvertedEdge]: the child is already the parent's parent
//  5. [ChildAlreadyHasParent]: every node has at most one parent
//  6. [DuplicateBossRoom]: only one boss room may be connected
//  7. [CorridorAdjacencyViolation]: corridors and rooms must alternate
//  8. [CorridorFanOutExceeded]: a room has at most MaxChildCorridors children
//  9. [EntranceCannotBeChild]: the entrance is always the root
//  10. [ParentAlreadyBranched]: a corridor leads to exactly one room
//
// [Graph.Connect] applies the edge to both endpoints in one step only when
// every rule passes, so adjacency lists never become one-sided.
//
// # Type Changes
//
// [Graph.SetType] re-checks every edge touching the node after the change and
// severs the ones that the new type makes illegal. The severed edges are
// returned so callers can report them.
//
// # Persistence
//
// The package has no file format. [Graph.Snapshot] and [Restore] convert to
// and from a plain [Snapshot] value that serialization packages encode.
// Restore rejects corrupted input (duplicate ids, dangling or one-sided
// edges, unknown type names) instead of repairing it.
//
// # Concurrency
//
// A Graph is not safe for concurrent use. Callers that share one between
// goroutines must serialize every method call, including the check and
// commit inside Connect, behind a single lock.
package roomgraph
