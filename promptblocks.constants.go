package promptblocks

// Storage format constants
const (
	// TagNameText is the tag name for literal text fragments.
	TagNameText = "text"

	// TagNameBlock is the tag name for block reference fragments.
	TagNameBlock = "block"

	// AttrID is the block tag attribute carrying the block ID.
	AttrID = "id"

	// DefaultFragmentSeparator joins encoded fragments in storage text.
	DefaultFragmentSeparator = "\n\n"
)

// Variable placeholder constants
const (
	// VariableOpenDelim opens a variable placeholder.
	VariableOpenDelim = "{{"

	// VariableCloseDelim closes a variable placeholder.
	VariableCloseDelim = "}}"

	// OriginalTextPlaceholder is the structural self-reference available only
	// inside override content. It is not a user variable.
	OriginalTextPlaceholder = "originalText"
)

// Content model constants
const (
	// BlockTypePreset is the only block type currently in use.
	BlockTypePreset = "preset"

	// ElementIDPrefix prefixes generated synthetic element IDs.
	ElementIDPrefix = "el_"

	// ElementIDRandomBytes is the entropy used for generated element IDs.
	ElementIDRandomBytes = 12
)

// Metadata key constants for error context
const (
	MetaKeyElementID = "element_id"
	MetaKeyBlockID   = "block_id"
	MetaKeyCommand   = "command"
	MetaKeyKind      = "kind"
	MetaKeySessionID = "session_id"
	MetaKeyVariable  = "variable"
	MetaKeyDriver    = "driver"
)

// Storage driver name constants
const (
	StoreDriverNameMemory     = "memory"
	StoreDriverNameFilesystem = "filesystem"
	StoreDriverNamePostgres   = "postgres"
)
