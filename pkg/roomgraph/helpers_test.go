package roomgraph

import (
	"fmt"
	"testing"

	"github.com/matzehuels/roomgraph/pkg/roomtype"
)

// fixture wraps a graph with sequential IDs and typed constructors.
type fixture struct {
	t     *testing.T
	g     *Graph
	types *roomtype.Registry
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	seq := 0
	opts = append([]Option{WithIDGenerator(func() string {
		seq++
		return fmt.Sprintf("n%d", seq)
	})}, opts...)
	types := roomtype.Default()
	return &fixture{t: t, g: New(types, opts...), types: types}
}

func (f *fixture) typ(name string) *roomtype.Type {
	f.t.Helper()
	typ, ok := f.types.ByName(name)
	if !ok {
		f.t.Fatalf("unknown type %q", name)
	}
	return typ
}

func (f *fixture) add(name string) string {
	f.t.Helper()
	id, err := f.g.CreateNode(f.typ(name))
	if err != nil {
		f.t.Fatalf("CreateNode(%s) error: %v", name, err)
	}
	return id
}

func (f *fixture) connect(parent, child string) {
	f.t.Helper()
	if err := f.g.Connect(parent, child); err != nil {
		f.t.Fatalf("Connect(%s, %s) error: %v", parent, child, err)
	}
}

func (f *fixture) valid() {
	f.t.Helper()
	if err := f.g.Validate(); err != nil {
		f.t.Fatalf("Validate() error: %v", err)
	}
}

func wantReason(t *testing.T, err error, want Reason) {
	t.Helper()
	got, ok := ReasonOf(err)
	if !ok {
		t.Fatalf("error = %v, want denial %s", err, want)
	}
	if got != want {
		t.Fatalf("reason = %s, want %s", got, want)
	}
}
