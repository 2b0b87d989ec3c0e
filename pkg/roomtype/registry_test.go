package roomtype

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		types   []Type
		wantErr error
	}{
		{
			name: "Valid",
			types: []Type{
				{Name: "None", IsNone: true},
				{Name: "Entrance", IsEntrance: true},
				{Name: "Corridor", IsCorridor: true},
			},
		},
		{
			name:    "NoEntrance",
			types:   []Type{{Name: "None", IsNone: true}},
			wantErr: ErrNoEntrance,
		},
		{
			name:    "NoNone",
			types:   []Type{{Name: "Entrance", IsEntrance: true}},
			wantErr: ErrNoNone,
		},
		{
			name: "TwoEntrances",
			types: []Type{
				{Name: "None", IsNone: true},
				{Name: "A", IsEntrance: true},
				{Name: "B", IsEntrance: true},
			},
			wantErr: ErrMultipleEntrances,
		},
		{
			name: "TwoNone",
			types: []Type{
				{Name: "A", IsNone: true},
				{Name: "B", IsNone: true},
				{Name: "Entrance", IsEntrance: true},
			},
			wantErr: ErrMultipleNone,
		},
		{
			name: "EmptyName",
			types: []Type{
				{Name: "None", IsNone: true},
				{Name: "", IsEntrance: true},
			},
			wantErr: ErrEmptyName,
		},
		{
			name: "DuplicateName",
			types: []Type{
				{Name: "None", IsNone: true},
				{Name: "Entrance", IsEntrance: true},
				{Name: "Entrance"},
			},
			wantErr: ErrDuplicateName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(tt.types)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("New() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if r.Len() != len(tt.types) {
				t.Errorf("Len() = %d, want %d", r.Len(), len(tt.types))
			}
		})
	}
}

func TestNewCopiesInput(t *testing.T) {
	types := []Type{
		{Name: "None", IsNone: true},
		{Name: "Entrance", IsEntrance: true},
	}
	r := MustNew(types)
	types[1].Name = "Changed"

	if _, ok := r.ByName("Entrance"); !ok {
		t.Error("registry should not see changes to the input slice")
	}
}

func TestDefault(t *testing.T) {
	r := Default()
	if r != Default() {
		t.Error("Default() should return the same registry")
	}

	if r.Entrance().Name != "Entrance" {
		t.Errorf("Entrance() = %q", r.Entrance().Name)
	}
	if r.None().Name != "None" {
		t.Errorf("None() = %q", r.None().Name)
	}

	boss, ok := r.FindFirst(func(t *Type) bool { return t.IsBossRoom })
	if !ok || boss.Name != "BossRoom" {
		t.Errorf("FindFirst(boss) = %v, %v", boss, ok)
	}

	corridor, ok := r.FindFirst(func(t *Type) bool { return t.IsCorridor })
	if !ok || corridor.Name != "Corridor" {
		t.Errorf("FindFirst(corridor) = %v, want first corridor in catalog order", corridor)
	}

	for _, d := range r.AllDisplayable() {
		if d.IsNone {
			t.Error("none type should not be displayable")
		}
		if !d.Displayable {
			t.Errorf("%s returned by AllDisplayable but not displayable", d.Name)
		}
	}
	if got := len(r.AllDisplayable()); got != 7 {
		t.Errorf("AllDisplayable() returned %d types, want 7", got)
	}
}

func TestContains(t *testing.T) {
	r := Default()
	small, _ := r.ByName("SmallRoom")
	if !r.Contains(small) {
		t.Error("Contains() should accept registry types")
	}
	other := *small
	if r.Contains(&other) {
		t.Error("Contains() should reject copies from outside the registry")
	}
	if r.Contains(nil) {
		t.Error("Contains(nil) should be false")
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
[[type]]
name = "Nothing"
none = true

[[type]]
name = "Door"
entrance = true
displayable = true

[[type]]
name = "Hall"
corridor = true
displayable = true
`)
	r, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	hall, ok := r.ByName("Hall")
	if !ok || !hall.IsCorridor || !hall.Displayable {
		t.Errorf("Hall = %+v", hall)
	}
	if r.None().Name != "Nothing" {
		t.Errorf("None() = %q, want Nothing", r.None().Name)
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse([]byte("[[type]\nname=")); err == nil {
		t.Error("Parse() should fail on malformed TOML")
	}
	if _, err := Parse([]byte("[[type]]\nname = \"None\"\nnone = true\n")); !errors.Is(err, ErrNoEntrance) {
		t.Errorf("Parse() error = %v, want ErrNoEntrance", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "types.toml")
	if err := os.WriteFile(path, defaultCatalog, 0o644); err != nil {
		t.Fatal(err)
	}
	r, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if r.Len() != Default().Len() {
		t.Errorf("Len() = %d, want %d", r.Len(), Default().Len())
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Load() should fail for a missing file")
	}
}
