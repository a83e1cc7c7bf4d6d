package tether

// EditorSettings configures the editing surface backing a store. The engine
// forwards settings to the store without interpreting them; only pointer
// identity matters for deciding whether an update carries new settings.
type EditorSettings struct {
	// MaxDepth limits block nesting. Zero means unlimited.
	MaxDepth int `json:"maxDepth,omitempty" yaml:"maxDepth,omitempty" validate:"min=0"`

	// AllowedBlocks restricts which block types may be inserted.
	// Empty means all types are allowed.
	AllowedBlocks []string `json:"allowedBlocks,omitempty" yaml:"allowedBlocks,omitempty"`

	// ReadOnly disables editing entirely.
	ReadOnly bool `json:"readOnly,omitempty" yaml:"readOnly,omitempty"`

	// Locale selects the content language for editing affordances.
	Locale string `json:"locale,omitempty" yaml:"locale,omitempty"`
}
