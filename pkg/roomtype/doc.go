// Package roomtype provides the read-only catalog of room node types.
//
// A [Registry] is loaded once at startup and shared by every graph built on
// top of it. Types are referenced by pointer, so two nodes have the same type
// exactly when their type pointers are equal.
//
// # Catalog Rules
//
// A well-formed catalog contains:
//
//   - exactly one type with IsEntrance set (the root of every graph)
//   - exactly one type with IsNone set (the placeholder for new nodes)
//   - unique, non-empty names
//
// [New] rejects catalogs that break these rules. A misconfigured catalog is a
// startup error; lookups on a constructed [Registry] never fail for the
// entrance or none types.
//
// # TOML Format
//
// Catalogs are written as an array of tables:
//
//	[[type]]
//	name = "Corridor"
//	corridor = true
//	displayable = true
//
// Use [Parse] or [Load] to read one, or [Default] for the built-in catalog.
package roomtype
