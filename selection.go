package tether

// Position is one end of a selection: a block plus a character offset within
// it. The zero value means "not set".
type Position struct {
	Block  string `json:"block,omitempty" yaml:"block,omitempty"`
	Offset int    `json:"offset,omitempty" yaml:"offset,omitempty"`
}

// IsSet reports whether the position points at a block.
func (p Position) IsSet() bool {
	return p.Block != ""
}

// Selection is a range in the block tree. It rides along with outward change
// notifications and may accompany an inbound reset.
type Selection struct {
	Start Position `json:"start,omitempty" yaml:"start,omitempty"`
	End   Position `json:"end,omitempty" yaml:"end,omitempty"`
}

// IsSet reports whether both ends of the range are present. An inbound reset
// forwards a selection only when IsSet is true; a partial pair is ignored.
func (s Selection) IsSet() bool {
	return s.Start.IsSet() && s.End.IsSet()
}
