package editor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	rgerrors "github.com/matzehuels/roomgraph/pkg/errors"
	"github.com/matzehuels/roomgraph/pkg/observability"
	"github.com/matzehuels/roomgraph/pkg/roomgraph"
	"github.com/matzehuels/roomgraph/pkg/store"
)

func newService(t *testing.T) (*Service, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	seq := 0
	var mu sync.Mutex
	svc := New(st, nil, log.New(io.Discard), WithIDGenerator(func() string {
		mu.Lock()
		defer mu.Unlock()
		seq++
		return fmt.Sprintf("n%d", seq)
	}))
	if err := svc.Create(context.Background(), "crypt"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return svc, st
}

func wantCode(t *testing.T, err error, code rgerrors.Code) {
	t.Helper()
	if !rgerrors.Is(err, code) {
		t.Fatalf("error = %v, want code %s", err, code)
	}
}

func mustAdd(t *testing.T, svc *Service, typeName string) string {
	t.Helper()
	id, err := svc.AddNode(context.Background(), "crypt", typeName)
	if err != nil {
		t.Fatalf("AddNode(%s): %v", typeName, err)
	}
	return id
}

func TestCreate(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	wantCode(t, svc.Create(ctx, "crypt"), rgerrors.ErrCodeGraphExists)
	wantCode(t, svc.Create(ctx, "../etc"), rgerrors.ErrCodeInvalidName)

	names, err := svc.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != "crypt" {
		t.Errorf("List() = %v, want [crypt]", names)
	}
}

func TestAddNodeCreatesEntrance(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	id := mustAdd(t, svc, "Corridor")
	if id != "n2" {
		t.Errorf("first added node id = %s, want n2 (entrance is n1)", id)
	}
	err := svc.View(ctx, "crypt", func(g *roomgraph.Graph) error {
		e, ok := g.Entrance()
		if !ok || e.ID() != "n1" {
			t.Errorf("Entrance() = %v, %v; want n1", e, ok)
		}
		if g.Len() != 2 {
			t.Errorf("Len() = %d, want 2", g.Len())
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	// Later additions do not add more entrances.
	mustAdd(t, svc, "SmallRoom")
	_ = svc.View(ctx, "crypt", func(g *roomgraph.Graph) error {
		if g.Len() != 3 {
			t.Errorf("Len() = %d, want 3", g.Len())
		}
		return nil
	})
}

func TestAddEntranceFirst(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	id := mustAdd(t, svc, "Entrance")
	if id != "n1" {
		t.Errorf("id = %s, want n1", id)
	}
	_, err := svc.AddNode(ctx, "crypt", "Entrance")
	wantCode(t, err, rgerrors.ErrCodeDuplicateEntrance)
}

func TestAddNodeErrors(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.AddNode(ctx, "crypt", "Dragon")
	wantCode(t, err, rgerrors.ErrCodeInvalidType)

	_, err = svc.AddNode(ctx, "missing", "Corridor")
	wantCode(t, err, rgerrors.ErrCodeGraphNotFound)

	// The failed edit left the stored graph untouched.
	snap, err := svc.Get(ctx, "crypt")
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Nodes) != 0 {
		t.Errorf("graph has %d nodes after failed edits, want 0", len(snap.Nodes))
	}
}

func TestConnectAndDenial(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	corridor := mustAdd(t, svc, "Corridor") // n2, entrance n1
	room := mustAdd(t, svc, "SmallRoom")

	if err := svc.Connect(ctx, "crypt", "n1", corridor); err != nil {
		t.Fatalf("Connect(entrance, corridor): %v", err)
	}
	if err := svc.Connect(ctx, "crypt", corridor, room); err != nil {
		t.Fatalf("Connect(corridor, room): %v", err)
	}

	err := svc.Connect(ctx, "crypt", "n1", room)
	wantCode(t, err, rgerrors.ErrCodeConnectionDenied)
	reason, ok := roomgraph.ReasonOf(err)
	if !ok || reason != roomgraph.ChildAlreadyHasParent {
		t.Errorf("ReasonOf() = %v, %v; want ChildAlreadyHasParent", reason, ok)
	}
	if msg := rgerrors.UserMessage(err); msg != roomgraph.ChildAlreadyHasParent.Message() {
		t.Errorf("UserMessage() = %q", msg)
	}

	err = svc.Connect(ctx, "crypt", "n1", "ghost")
	wantCode(t, err, rgerrors.ErrCodeNodeNotFound)

	removed, err := svc.Disconnect(ctx, "crypt", corridor, room)
	if err != nil || !removed {
		t.Errorf("Disconnect() = %v, %v; want true, nil", removed, err)
	}
	removed, _ = svc.Disconnect(ctx, "crypt", corridor, room)
	if removed {
		t.Error("second Disconnect() = true, want false")
	}
}

func TestDeleteNodeProtectsEntrance(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	corridor := mustAdd(t, svc, "Corridor")
	if err := svc.Connect(ctx, "crypt", "n1", corridor); err != nil {
		t.Fatal(err)
	}

	wantCode(t, svc.DeleteNode(ctx, "crypt", "n1"), rgerrors.ErrCodeEntranceProtected)
	wantCode(t, svc.DeleteNode(ctx, "crypt", "ghost"), rgerrors.ErrCodeNodeNotFound)

	if err := svc.DeleteNode(ctx, "crypt", corridor); err != nil {
		t.Fatalf("DeleteNode(corridor): %v", err)
	}
	_ = svc.View(ctx, "crypt", func(g *roomgraph.Graph) error {
		if len(g.Children("n1")) != 0 {
			t.Errorf("entrance still has children %v", g.Children("n1"))
		}
		return nil
	})
}

func TestDeleteNodesSkipsEntrance(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	a := mustAdd(t, svc, "Corridor")
	b := mustAdd(t, svc, "SmallRoom")

	n, err := svc.DeleteNodes(ctx, "crypt", []string{"n1", a, b, "ghost"})
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("DeleteNodes() = %d, want 2", n)
	}
	snap, _ := svc.Get(ctx, "crypt")
	if len(snap.Nodes) != 1 || snap.Nodes[0].ID != "n1" {
		t.Errorf("remaining nodes = %+v, want only the entrance", snap.Nodes)
	}
}

func TestSetNodeTypeSevers(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	corridor := mustAdd(t, svc, "Corridor")
	room := mustAdd(t, svc, "SmallRoom")
	_ = svc.Connect(ctx, "crypt", "n1", corridor)
	_ = svc.Connect(ctx, "crypt", corridor, room)

	severed, err := svc.SetNodeType(ctx, "crypt", room, "Corridor")
	if err != nil {
		t.Fatalf("SetNodeType: %v", err)
	}
	if len(severed) != 1 || severed[0] != (roomgraph.Edge{From: corridor, To: room}) {
		t.Errorf("severed = %v, want [%s -> %s]", severed, corridor, room)
	}

	_, err = svc.SetNodeType(ctx, "crypt", room, "Entrance")
	wantCode(t, err, rgerrors.ErrCodeDuplicateEntrance)
	_, err = svc.SetNodeType(ctx, "crypt", "ghost", "Corridor")
	wantCode(t, err, rgerrors.ErrCodeNodeNotFound)
}

func TestSetPresentation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	id := mustAdd(t, svc, "SmallRoom")

	if err := svc.SetPresentation(ctx, "crypt", id, json.RawMessage(`{"x":4}`)); err != nil {
		t.Fatal(err)
	}
	wantCode(t, svc.SetPresentation(ctx, "crypt", id, json.RawMessage(`{`)), rgerrors.ErrCodeInvalidInput)

	snap, _ := svc.Get(ctx, "crypt")
	if got := string(snap.Nodes[1].Presentation); got != `{"x":4}` {
		t.Errorf("presentation = %s", got)
	}
}

func TestUnlink(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	c1 := mustAdd(t, svc, "Corridor")
	r := mustAdd(t, svc, "SmallRoom")
	c2 := mustAdd(t, svc, "Corridor")
	_ = svc.Connect(ctx, "crypt", "n1", c1)
	_ = svc.Connect(ctx, "crypt", c1, r)
	_ = svc.Connect(ctx, "crypt", r, c2)

	n, err := svc.Unlink(ctx, "crypt", []string{c1, r, c2})
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("Unlink() = %d, want 2", n)
	}
	_ = svc.View(ctx, "crypt", func(g *roomgraph.Graph) error {
		if g.EdgeCount() != 1 {
			t.Errorf("EdgeCount() = %d, want 1 (entrance edge kept)", g.EdgeCount())
		}
		return nil
	})
}

func TestPutRejectsCorruptGraph(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	bad := roomgraph.Snapshot{Nodes: []roomgraph.NodeRecord{
		{ID: "a", Type: "SmallRoom", ChildIDs: []string{"b"}},
		{ID: "b", Type: "LargeRoom", ParentIDs: []string{"a"}},
	}}
	wantCode(t, svc.Put(ctx, "bad", bad), rgerrors.ErrCodeInvalidGraph)
	if _, err := st.Load(ctx, "bad"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("corrupt graph was stored: %v", err)
	}

	// A corrupted document already in the store fails to load.
	if err := st.Save(ctx, "stored-bad", bad); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Get(ctx, "stored-bad")
	wantCode(t, err, rgerrors.ErrCodeInvalidGraph)

	good := roomgraph.Snapshot{EntranceID: "e", Nodes: []roomgraph.NodeRecord{{ID: "e", Type: "Entrance"}}}
	if err := svc.Put(ctx, "good", good); err != nil {
		t.Fatalf("Put(good): %v", err)
	}
}

func TestRemove(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	if err := svc.Remove(ctx, "crypt"); err != nil {
		t.Fatal(err)
	}
	wantCode(t, svc.Remove(ctx, "crypt"), rgerrors.ErrCodeGraphNotFound)
}

type recordingEditHooks struct {
	observability.NoopEditHooks
	mu      sync.Mutex
	ops     []string
	denials []string
	severed int
}

func (h *recordingEditHooks) OnEdit(_ context.Context, _, op string, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ops = append(h.ops, op)
}

func (h *recordingEditHooks) OnDenied(_ context.Context, _, reason string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.denials = append(h.denials, reason)
}

func (h *recordingEditHooks) OnSevered(_ context.Context, _ string, n int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.severed += n
}

func TestHooks(t *testing.T) {
	hooks := &recordingEditHooks{}
	observability.SetEditHooks(hooks)
	defer observability.Reset()

	svc, _ := newService(t)
	ctx := context.Background()
	id := mustAdd(t, svc, "SmallRoom")
	_ = svc.Connect(ctx, "crypt", id, id)
	_, _ = svc.SetNodeType(ctx, "crypt", id, "Corridor")

	want := []string{"create", "add_node", "connect", "set_type"}
	if fmt.Sprint(hooks.ops) != fmt.Sprint(want) {
		t.Errorf("ops = %v, want %v", hooks.ops, want)
	}
	if len(hooks.denials) != 1 || hooks.denials[0] != "SelfLoop" {
		t.Errorf("denials = %v, want [SelfLoop]", hooks.denials)
	}
	if hooks.severed != 0 {
		t.Errorf("severed = %d, want 0", hooks.severed)
	}
}

func TestConcurrentEdits(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	mustAdd(t, svc, "Entrance")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.AddNode(ctx, "crypt", "Corridor"); err != nil {
				t.Errorf("AddNode: %v", err)
			}
		}()
	}
	wg.Wait()

	snap, err := svc.Get(ctx, "crypt")
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Nodes) != 21 {
		t.Errorf("got %d nodes, want 21", len(snap.Nodes))
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want rgerrors.Code
	}{
		{"nil", nil, ""},
		{"coded", rgerrors.New(rgerrors.ErrCodeInvalidName, "x"), rgerrors.ErrCodeInvalidName},
		{"not found", fmt.Errorf("load: %w", store.ErrNotFound), rgerrors.ErrCodeGraphNotFound},
		{"unknown parent", roomgraph.ErrUnknownParent, rgerrors.ErrCodeNodeNotFound},
		{"dangling", roomgraph.ErrDanglingEdge, rgerrors.ErrCodeInvalidGraph},
		{"backend", store.ErrUnknownBackend, rgerrors.ErrCodeUnsupported},
		{"other", errors.New("disk on fire"), rgerrors.ErrCodeStorage},
		{"denial", &roomgraph.DenialError{Reason: roomgraph.SelfLoop, ParentID: "a", ChildID: "a"}, rgerrors.ErrCodeConnectionDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rgerrors.GetCode(Classify(tt.err)); got != tt.want {
				t.Errorf("GetCode(Classify()) = %q, want %q", got, tt.want)
			}
		})
	}
}
