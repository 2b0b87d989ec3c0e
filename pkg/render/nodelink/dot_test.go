package nodelink

import (
	"fmt"
	"strings"
	"testing"

	"github.com/matzehuels/roomgraph/pkg/roomgraph"
	"github.com/matzehuels/roomgraph/pkg/roomtype"
)

func buildGraph(t *testing.T) *roomgraph.Graph {
	t.Helper()
	seq := 0
	g := roomgraph.New(nil, roomgraph.WithIDGenerator(func() string {
		seq++
		return fmt.Sprintf("node-%04d-long-id", seq)
	}))
	types := roomtype.Default()
	add := func(name string) string {
		typ, _ := types.ByName(name)
		id, err := g.CreateNode(typ)
		if err != nil {
			t.Fatal(err)
		}
		return id
	}
	e, c, b := add("Entrance"), add("Corridor"), add("BossRoom")
	add("None")
	if err := g.Connect(e, c); err != nil {
		t.Fatal(err)
	}
	if err := g.Connect(c, b); err != nil {
		t.Fatal(err)
	}
	return g
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(buildGraph(t), Options{})

	for _, want := range []string{
		"digraph G {",
		`"node-0001-long-id" [label="Entrance\nnode-000", shape=house`,
		`"node-0002-long-id" [label="Corridor\nnode-000", style=filled`,
		`"node-0003-long-id" [label="BossRoom\nnode-000", shape=doubleoctagon`,
		`style="rounded,filled,dashed"`,
		`"node-0001-long-id" -> "node-0002-long-id";`,
		`"node-0002-long-id" -> "node-0003-long-id";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT output missing %q\n%s", want, dot)
		}
	}
	if n := strings.Count(dot, "->"); n != 2 {
		t.Errorf("got %d edges, want 2", n)
	}
}

func TestToDOTDetailed(t *testing.T) {
	g := buildGraph(t)
	n, _ := g.Node("node-0003-long-id")
	n.Presentation = []byte(`{"x":1}`)

	dot := ToDOT(g, Options{Detailed: true})
	if !strings.Contains(dot, `label="BossRoom\nnode-0003-long-id\n{\"x\":1}"`) {
		t.Errorf("detailed label missing:\n%s", dot)
	}
}

func TestToDOTDeterministic(t *testing.T) {
	g := buildGraph(t)
	if ToDOT(g, Options{}) != ToDOT(g, Options{}) {
		t.Error("ToDOT output differs between calls")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if out != want {
		t.Errorf("normalizeViewBox() = %s, want %s", out, want)
	}

	plain := []byte(`<svg><g/></svg>`)
	if string(normalizeViewBox(plain)) != string(plain) {
		t.Error("svg without viewBox should be unchanged")
	}
}
