package promptblocks

// MoveDirection selects the direction of a Reorder command.
type MoveDirection string

const (
	// MoveDirectionUp moves the element toward the start of the document.
	MoveDirectionUp MoveDirection = "up"

	// MoveDirectionDown moves the element toward the end of the document.
	MoveDirectionDown MoveDirection = "down"
)

// UpdateCommand is a validated editor mutation. Commands replace the
// loosely-typed update payloads of a UI layer with an explicit tagged union;
// each command checks the target element's existence and kind before
// mutating the document.
type UpdateCommand interface {
	// Apply validates and applies the command to the document.
	Apply(doc *Document) error

	// Name returns the command name for logging.
	Name() string
}

// Command name constants
const (
	CommandNameSetTextContent   = "set_text_content"
	CommandNameSetBlockOverride = "set_block_override"
	CommandNameClearOverride    = "clear_override"
	CommandNameReorder          = "reorder"
)

// SetTextContent replaces the content of a text element.
type SetTextContent struct {
	ElementID string
	Content   string
}

// Name returns the command name.
func (c SetTextContent) Name() string { return CommandNameSetTextContent }

// Apply replaces the text element's content.
func (c SetTextContent) Apply(doc *Document) error {
	if doc == nil {
		return NewNilDocumentError()
	}
	el, ok := doc.Get(c.ElementID)
	if !ok {
		return NewElementNotFoundError(c.ElementID)
	}
	text, ok := el.(*TextElement)
	if !ok {
		return NewElementKindError(ErrMsgElementNotText, c.ElementID, el.Kind())
	}
	text.Content = c.Content
	return nil
}

// SetBlockOverride overrides a block element's body for this composition.
// Empty override content is rejected; use ClearOverride to remove one. This
// keeps the model out of the ambiguous overridden-but-empty state that the
// encoder would otherwise silently collapse to a self-closing tag.
type SetBlockOverride struct {
	ElementID string
	Content   string
}

// Name returns the command name.
func (c SetBlockOverride) Name() string { return CommandNameSetBlockOverride }

// Apply sets the override on the block element.
func (c SetBlockOverride) Apply(doc *Document) error {
	if doc == nil {
		return NewNilDocumentError()
	}
	el, ok := doc.Get(c.ElementID)
	if !ok {
		return NewElementNotFoundError(c.ElementID)
	}
	block, ok := el.(*BlockElement)
	if !ok {
		return NewElementKindError(ErrMsgElementNotBlock, c.ElementID, el.Kind())
	}
	if c.Content == "" {
		return NewEmptyOverrideError(c.ElementID)
	}
	block.IsOverridden = true
	block.OverrideContent = c.Content
	return nil
}

// ClearOverride resets a block element to its canonical content. Clearing
// always drops the stored override content; the model never keeps a stale
// override body alongside IsOverridden=false.
type ClearOverride struct {
	ElementID string
}

// Name returns the command name.
func (c ClearOverride) Name() string { return CommandNameClearOverride }

// Apply clears the override on the block element.
func (c ClearOverride) Apply(doc *Document) error {
	if doc == nil {
		return NewNilDocumentError()
	}
	el, ok := doc.Get(c.ElementID)
	if !ok {
		return NewElementNotFoundError(c.ElementID)
	}
	block, ok := el.(*BlockElement)
	if !ok {
		return NewElementKindError(ErrMsgElementNotBlock, c.ElementID, el.Kind())
	}
	block.IsOverridden = false
	block.OverrideContent = ""
	return nil
}

// Reorder moves an element one position up or down in sorted order.
// Boundary moves are no-ops.
type Reorder struct {
	ElementID string
	Direction MoveDirection
}

// Name returns the command name.
func (c Reorder) Name() string { return CommandNameReorder }

// Apply swaps the element's order key with its sorted neighbor.
func (c Reorder) Apply(doc *Document) error {
	if doc == nil {
		return NewNilDocumentError()
	}
	switch c.Direction {
	case MoveDirectionUp:
		return doc.MoveUp(c.ElementID)
	case MoveDirectionDown:
		return doc.MoveDown(c.ElementID)
	default:
		return NewInvalidMoveDirectionError(c.ElementID, string(c.Direction))
	}
}

// Apply runs a validated update command against the document.
func (d *Document) Apply(cmd UpdateCommand) error {
	if cmd == nil {
		return NewNilCommandError()
	}
	return cmd.Apply(d)
}
