package roomgraph

import (
	"encoding/json"
	"errors"
	"slices"
	"testing"
)

func TestSnapshotRestore(t *testing.T) {
	f := newFixture(t, WithMaxChildCorridors(2))
	e, c, s := f.add("Entrance"), f.add("Corridor"), f.add("BossRoom")
	f.connect(e, c)
	f.connect(c, s)
	n, _ := f.g.Node(c)
	n.Presentation = json.RawMessage(`{"x":10,"y":20}`)

	snap := f.g.Snapshot()
	if snap.EntranceID != e {
		t.Errorf("EntranceID = %q, want %q", snap.EntranceID, e)
	}
	if snap.MaxChildCorridors != 2 {
		t.Errorf("MaxChildCorridors = %d, want 2", snap.MaxChildCorridors)
	}

	g, err := Restore(f.types, snap)
	if err != nil {
		t.Fatalf("Restore() error: %v", err)
	}
	if g.Len() != 3 || g.EdgeCount() != 2 || g.MaxChildCorridors() != 2 {
		t.Errorf("restored Len=%d EdgeCount=%d Max=%d", g.Len(), g.EdgeCount(), g.MaxChildCorridors())
	}
	if got := g.Children(c); !slices.Equal(got, []string{s}) {
		t.Errorf("Children(c) = %v", got)
	}
	rn, _ := g.Node(c)
	if string(rn.Presentation) != `{"x":10,"y":20}` {
		t.Errorf("Presentation = %s", rn.Presentation)
	}
	if rn.Graph() != g {
		t.Error("restored node should point at its graph")
	}

	// The restored graph is independent of the snapshot.
	snap.Nodes[1].ChildIDs[0] = "tampered"
	if err := g.Validate(); err != nil {
		t.Errorf("restored graph shares memory with snapshot: %v", err)
	}

	// And remains editable under the same rules.
	b2, _ := g.CreateNode(f.typ("BossRoom"))
	c2, _ := g.CreateNode(f.typ("Corridor"))
	if err := g.Connect(e, c2); err != nil {
		t.Fatal(err)
	}
	wantReason(t, g.Connect(c2, b2), DuplicateBossRoom)
}

func TestRestoreRejectsCorruption(t *testing.T) {
	tests := []struct {
		name    string
		snap    Snapshot
		wantErr error
	}{
		{
			name:    "EmptyID",
			snap:    Snapshot{Nodes: []NodeRecord{{ID: "", Type: "None"}}},
			wantErr: ErrInvalidNodeID,
		},
		{
			name: "DuplicateID",
			snap: Snapshot{Nodes: []NodeRecord{
				{ID: "a", Type: "SmallRoom"},
				{ID: "a", Type: "Corridor"},
			}},
			wantErr: ErrDuplicateNodeID,
		},
		{
			name:    "UnknownType",
			snap:    Snapshot{Nodes: []NodeRecord{{ID: "a", Type: "Dragon"}}},
			wantErr: ErrUnknownType,
		},
		{
			name:    "DanglingChild",
			snap:    Snapshot{Nodes: []NodeRecord{{ID: "a", Type: "SmallRoom", ChildIDs: []string{"ghost"}}}},
			wantErr: ErrDanglingEdge,
		},
		{
			name:    "DanglingParent",
			snap:    Snapshot{Nodes: []NodeRecord{{ID: "a", Type: "Corridor", ParentIDs: []string{"ghost"}}}},
			wantErr: ErrDanglingEdge,
		},
		{
			name: "OneSidedEdge",
			snap: Snapshot{Nodes: []NodeRecord{
				{ID: "a", Type: "SmallRoom", ChildIDs: []string{"b"}},
				{ID: "b", Type: "Corridor"},
			}},
			wantErr: ErrAsymmetricEdge,
		},
		{
			name: "TwoEntrances",
			snap: Snapshot{EntranceID: "a", Nodes: []NodeRecord{
				{ID: "a", Type: "Entrance"},
				{ID: "b", Type: "Entrance"},
			}},
			wantErr: ErrDuplicateEntrance,
		},
		{
			name: "RoomToRoom",
			snap: Snapshot{Nodes: []NodeRecord{
				{ID: "a", Type: "SmallRoom", ChildIDs: []string{"b"}},
				{ID: "b", Type: "LargeRoom", ParentIDs: []string{"a"}},
			}},
			wantErr: ErrInvariant,
		},
		{
			name: "EntranceMismatch",
			snap: Snapshot{EntranceID: "b", Nodes: []NodeRecord{
				{ID: "a", Type: "Entrance"},
				{ID: "b", Type: "SmallRoom"},
			}},
			wantErr: ErrEntranceMismatch,
		},
		{
			name:    "EntranceMissingFromHeader",
			snap:    Snapshot{Nodes: []NodeRecord{{ID: "a", Type: "Entrance"}}},
			wantErr: ErrEntranceMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Restore(nil, tt.snap)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Restore() error = %v, want %v", err, tt.wantErr)
			}
			if g != nil {
				t.Error("Restore() should not return a graph on error")
			}
		})
	}
}

func TestRestoreEmpty(t *testing.T) {
	g, err := Restore(nil, Snapshot{})
	if err != nil {
		t.Fatalf("Restore() error: %v", err)
	}
	if g.Len() != 0 || g.MaxChildCorridors() != DefaultMaxChildCorridors {
		t.Errorf("Len=%d Max=%d", g.Len(), g.MaxChildCorridors())
	}
}
