package tether

import "reflect"

// Block is a single content block in a host document. Blocks form a tree via
// InnerBlocks. The engine itself never inspects block contents; the concrete
// type exists for codecs, stores, and deep comparison of controlled inner
// regions.
type Block struct {
	// ClientID identifies the block within a session. Not persisted by
	// convention; codecs carry it only when present.
	ClientID string `json:"clientId,omitempty" yaml:"clientId,omitempty"`

	// Name is the block type, e.g. "core/paragraph".
	Name string `json:"name" yaml:"name" validate:"required"`

	// Attributes holds the block's content and configuration.
	Attributes map[string]any `json:"attributes,omitempty" yaml:"attributes,omitempty"`

	// InnerBlocks are nested child blocks.
	InnerBlocks []*Block `json:"innerBlocks,omitempty" yaml:"innerBlocks,omitempty" validate:"dive"`
}

// BlockList is a block tree root. It is the unit of reference identity: hosts
// pass *BlockList values to the engine, and two trees are "the same value"
// exactly when the pointers are equal. A store that has not changed its
// blocks must keep returning the same *BlockList.
type BlockList struct {
	Blocks []*Block `json:"blocks" yaml:"blocks" validate:"dive"`
}

// NewBlockList builds a tree root from the given blocks.
func NewBlockList(blocks ...*Block) *BlockList {
	return &BlockList{Blocks: blocks}
}

// Len returns the number of top-level blocks.
func (l *BlockList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Blocks)
}

// DeepEqual reports whether two trees are structurally identical. This is the
// comparison used for controlled inner regions, where nested mutations may
// not change the outer tree's identity.
func DeepEqual(a, b *BlockList) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return reflect.DeepEqual(a.Blocks, b.Blocks)
}

// Document is the on-disk form of a host document: editor settings plus the
// block tree. Sources decode into Documents before feeding the engine.
type Document struct {
	Settings *EditorSettings `json:"settings,omitempty" yaml:"settings,omitempty"`
	Blocks   []*Block        `json:"blocks" yaml:"blocks" validate:"dive"`
}

// Tree returns the document's blocks as a fresh tree root.
func (d *Document) Tree() *BlockList {
	return &BlockList{Blocks: d.Blocks}
}
