package promptblocks

import (
	"strconv"

	"github.com/itsatony/go-cuserr"
)

// Error message constants - ALL error messages must be constants (NO MAGIC STRINGS)
const (
	// Content model errors
	ErrMsgElementNotFound  = "element not found in document"
	ErrMsgElementNotText   = "element is not a text element"
	ErrMsgElementNotBlock  = "element is not a block element"
	ErrMsgEmptyOverride    = "override content cannot be empty, use ClearOverride instead"
	ErrMsgInvalidMoveDir   = "invalid move direction"
	ErrMsgNilDocument      = "document is nil"
	ErrMsgNilUpdateCommand = "update command is nil"

	// Render errors
	ErrMsgRenderFailed = "snapshot rendering failed"

	// Document file errors
	ErrMsgDocumentEmpty       = "composition document is empty"
	ErrMsgFrontmatterUnclosed = "composition frontmatter is not closed"
	ErrMsgFrontmatterParse    = "composition frontmatter parsing failed"
	ErrMsgSerializeYAML       = "YAML marshaling failed"

	// Session errors
	ErrMsgSessionExists   = "session already open for document"
	ErrMsgSessionNotFound = "session not found"
)

// Error code constants for categorization
const (
	ErrCodeModel    = "PROMPTBLOCKS_MODEL"
	ErrCodeRender   = "PROMPTBLOCKS_RENDER"
	ErrCodeDocument = "PROMPTBLOCKS_DOCUMENT"
	ErrCodeSession  = "PROMPTBLOCKS_SESSION"
)

// NewElementNotFoundError creates an error for a missing element ID.
func NewElementNotFoundError(elementID string) error {
	return cuserr.NewNotFoundError(MetaKeyElementID, ErrMsgElementNotFound).
		WithMetadata(MetaKeyElementID, elementID)
}

// NewElementKindError creates an error for a command applied to the wrong
// element kind.
func NewElementKindError(msg string, elementID string, kind ElementKind) error {
	return cuserr.NewValidationError(ErrCodeModel, msg).
		WithMetadata(MetaKeyElementID, elementID).
		WithMetadata(MetaKeyKind, string(kind))
}

// NewEmptyOverrideError creates an error for setting an empty override.
func NewEmptyOverrideError(elementID string) error {
	return cuserr.NewValidationError(ErrCodeModel, ErrMsgEmptyOverride).
		WithMetadata(MetaKeyElementID, elementID)
}

// NewInvalidMoveDirectionError creates an error for an unknown Reorder direction.
func NewInvalidMoveDirectionError(elementID string, dir string) error {
	return cuserr.NewValidationError(ErrCodeModel, ErrMsgInvalidMoveDir).
		WithMetadata(MetaKeyElementID, elementID).
		WithMetadata("direction", dir)
}

// NewNilDocumentError creates an error for operations on a nil document.
func NewNilDocumentError() error {
	return cuserr.NewValidationError(ErrCodeModel, ErrMsgNilDocument)
}

// NewNilCommandError creates an error for applying a nil update command.
func NewNilCommandError() error {
	return cuserr.NewValidationError(ErrCodeModel, ErrMsgNilUpdateCommand)
}

// NewFrontmatterError creates an error for composition document parsing.
func NewFrontmatterError(msg string, cause error) error {
	if cause != nil {
		return cuserr.WrapStdError(cause, ErrCodeDocument, msg)
	}
	return cuserr.NewValidationError(ErrCodeDocument, msg)
}

// NewSessionExistsError creates an error for opening a duplicate session.
func NewSessionExistsError(sessionID string) error {
	return cuserr.NewValidationError(ErrCodeSession, ErrMsgSessionExists).
		WithMetadata(MetaKeySessionID, sessionID)
}

// NewSessionNotFoundError creates an error for a missing session.
func NewSessionNotFoundError(sessionID string) error {
	return cuserr.NewNotFoundError(MetaKeySessionID, ErrMsgSessionNotFound).
		WithMetadata(MetaKeySessionID, sessionID)
}

// NewBlockResolveError wraps a resolver failure with block context.
// Render treats these as soft failures; the error carries context for logging.
func NewBlockResolveError(blockID int64, cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeRender, ErrMsgRenderFailed).
		WithMetadata(MetaKeyBlockID, strconv.FormatInt(blockID, 10))
}
