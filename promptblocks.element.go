package promptblocks

import (
	"crypto/rand"
	"encoding/base64"
)

// ElementKind discriminates the two content element variants.
type ElementKind string

const (
	// ElementKindText is a literal text element.
	ElementKindText ElementKind = "text"

	// ElementKindBlock is a reference to a stored block.
	ElementKindBlock ElementKind = "block"
)

// Element is a single entry in a Document: either literal text or a block
// reference. The synthetic ID exists for editor correlation only and carries
// no meaning in the storage format. Order is a sort key, not necessarily
// contiguous.
type Element interface {
	// Kind returns the element variant.
	Kind() ElementKind

	// ElementID returns the synthetic unique ID.
	ElementID() string

	// SortOrder returns the current order key.
	SortOrder() float64

	setOrder(order float64)
}

// TextElement is a literal text fragment. Content is raw and unescaped; it
// may be empty, but blank-content elements produce no output when encoded.
type TextElement struct {
	ID      string
	Order   float64
	Content string
}

// Kind returns ElementKindText.
func (e *TextElement) Kind() ElementKind { return ElementKindText }

// ElementID returns the synthetic element ID.
func (e *TextElement) ElementID() string { return e.ID }

// SortOrder returns the order key.
func (e *TextElement) SortOrder() float64 { return e.Order }

func (e *TextElement) setOrder(order float64) { e.Order = order }

// BlockElement references a stored block by ID. The canonical block body is
// never copied into the model; it is fetched through a BlockResolver at
// render time. OverrideContent is meaningful only while IsOverridden is true.
type BlockElement struct {
	ID              string
	Order           float64
	BlockID         int64
	BlockType       string
	IsOverridden    bool
	OverrideContent string
}

// Kind returns ElementKindBlock.
func (e *BlockElement) Kind() ElementKind { return ElementKindBlock }

// ElementID returns the synthetic element ID.
func (e *BlockElement) ElementID() string { return e.ID }

// SortOrder returns the order key.
func (e *BlockElement) SortOrder() float64 { return e.Order }

func (e *BlockElement) setOrder(order float64) { e.Order = order }

// EffectiveOverride returns the override content and whether it applies.
// An overridden element with empty content reports no override, matching the
// encoder's self-closing fallback.
func (e *BlockElement) EffectiveOverride() (string, bool) {
	if e.IsOverridden && e.OverrideContent != "" {
		return e.OverrideContent, true
	}
	return "", false
}

// generateElementID generates a unique synthetic element ID.
func generateElementID() string {
	b := make([]byte, ElementIDRandomBytes)
	_, _ = rand.Read(b)
	return ElementIDPrefix + base64.RawURLEncoding.EncodeToString(b)
}
