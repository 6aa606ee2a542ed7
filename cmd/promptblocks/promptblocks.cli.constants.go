package main

// Command names
const (
	CmdNameRender   = "render"
	CmdNameValidate = "validate"
	CmdNameVersion  = "version"
	CmdNameHelp     = "help"
)

// Flag names - long form
const (
	FlagInput      = "input"
	FlagVar        = "var"
	FlagVarsFile   = "vars-file"
	FlagOutput     = "output"
	FlagPreview    = "preview"
	FlagFormat     = "format"
	FlagStore      = "store"
	FlagConn       = "conn"
	FlagStrictMode = "strict"
)

// Flag names - short form
const (
	FlagInputShort    = "i"
	FlagVarsFileShort = "f"
	FlagOutputShort   = "o"
	FlagFormatShort   = "F"
)

// Flag default values
const (
	FlagDefaultOutput = "-" // stdout
	FlagDefaultFormat = "text"
)

// Output formats
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
)

// Exit codes
const (
	ExitCodeSuccess         = 0
	ExitCodeError           = 1
	ExitCodeUsageError      = 2
	ExitCodeValidationError = 3
	ExitCodeInputError      = 4
)

// Input source indicators
const (
	InputSourceStdin = "-"
)

// Error messages - ALL must be constants
const (
	ErrMsgUnknownCommand    = "unknown command"
	ErrMsgMissingInput      = "composition document required"
	ErrMsgInvalidVar        = "invalid variable assignment, expected name=value"
	ErrMsgInvalidJSON       = "invalid JSON variables"
	ErrMsgReadFileFailed    = "failed to read file"
	ErrMsgWriteOutputFailed = "failed to write output"
	ErrMsgParseDocFailed    = "composition document parsing failed"
	ErrMsgRenderFailed      = "composition rendering failed"
	ErrMsgInvalidFormat     = "invalid output format"
	ErrMsgOpenStoreFailed   = "failed to open store"
)

// Help text templates
const (
	HelpMainUsage = `go-promptblocks - Prompt composition CLI

Usage:
    promptblocks <command> [options]

Commands:
    render      Render a composition document to final text
    validate    Check a composition document's storage format
    version     Show version information
    help        Show help for a command

Use "promptblocks help <command>" for more information about a command.`

	HelpRenderUsage = `Render a composition document to final text

Usage:
    promptblocks render [options]

Options:
    -i, --input <file>      Composition document (use "-" for stdin)
    --var <name=value>      Variable value (repeatable, overrides frontmatter)
    -f, --vars-file <file>  JSON file with variable values
    -o, --output <file>     Output file (default: stdout)
    --preview               Keep blank fragments (live-preview mode)
    --store <driver>        Store driver for block resolution (memory, filesystem, postgres)
    --conn <string>         Store connection string

Examples:
    promptblocks render -i composition.md --var name=Alice
    promptblocks render -i composition.md -f values.json
    cat composition.md | promptblocks render -i - --var name=Bob
    promptblocks render -i composition.md --store filesystem --conn ./data`

	HelpValidateUsage = `Check a composition document's storage format

Usage:
    promptblocks validate [options]

Options:
    -i, --input <file>      Composition document (use "-" for stdin)
    -F, --format <format>   Output format: text, json (default: text)
    --strict                Also fail when variables are missing values

Examples:
    promptblocks validate -i composition.md
    cat composition.md | promptblocks validate -i -`

	HelpVersionUsage = `Show version information

Usage:
    promptblocks version [options]

Options:
    -F, --format <format>   Output format: text, json (default: text)`

	HelpHelpUsage = `Show help for a command

Usage:
    promptblocks help [command]

Commands:
    render      Show help for render command
    validate    Show help for validate command
    version     Show help for version command`
)

// Version output format templates
const (
	VersionTextTemplate = "go-promptblocks version %s\nCommit: %s\nBuilt: %s\nGo: %s"
	VersionUnknown      = "unknown"
)

// Validation output format templates
const (
	ValidationTextSuccess     = "Storage format is valid"
	ValidationTextIssueHeader = "Format errors:"
	ValidationTextIssueFormat = "  %s"
	ValidationTextSummary     = "%d error(s)"
)

// File permission constant
const (
	FilePermissions = 0644
)

// Format string constants
const (
	FmtErrorWithDetail = "%s: %s\n"
	FmtErrorWithCause  = "%s: %v\n"
	FmtNewline         = "\n"
)
