package roomtype

// Type describes a category of room node. Values are immutable once placed
// in a [Registry].
type Type struct {
	Name        string `toml:"name" json:"name"`
	Displayable bool   `toml:"displayable" json:"displayable"` // selectable in editors
	IsEntrance  bool   `toml:"entrance" json:"entrance,omitempty"`
	IsCorridor  bool   `toml:"corridor" json:"corridor,omitempty"`
	IsBossRoom  bool   `toml:"boss" json:"boss,omitempty"`
	IsNone      bool   `toml:"none" json:"none,omitempty"` // unassigned placeholder
}

// IsRoom reports whether the type is a room rather than a corridor.
// The none type counts as a room for alternation purposes.
func (t *Type) IsRoom() bool { return !t.IsCorridor }

func (t *Type) String() string { return t.Name }
