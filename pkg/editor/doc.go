// Package editor applies edits to stored room graphs.
//
// A [Service] owns the load → mutate → validate → save cycle. Every call
// runs under one mutex, which makes the service the single writer for all
// graphs behind it: the HTTP server and the CLI both go through it, and two
// concurrent requests can never interleave their edits.
//
// # Editing Policy
//
// The core [roomgraph] package leaves a few decisions to its callers. The
// service makes them the way an interactive dungeon editor does:
//   - Adding the first node to an empty graph also creates the entrance,
//     so every non-empty graph is rooted.
//   - Deleting the entrance is refused with ENTRANCE_PROTECTED; bulk
//     deletion silently skips it.
//   - A graph is re-validated before every save and never written in a
//     state that breaks an invariant.
//
// # Errors
//
// Methods return *errors.Error values from
// [github.com/matzehuels/roomgraph/pkg/errors]; the cause chain keeps the
// original sentinel, so roomgraph.ReasonOf still works on denials. Use
// [Classify] to convert errors from other sources the same way.
package editor
