package promptblocks

import (
	"fmt"
	"regexp"
	"strings"
)

// Format diagnostic message constants
const (
	FmtErrUnbalancedBlockTags = "unbalanced <block> tags: %d opening, %d closing"
	FmtErrUnbalancedTextTags  = "unbalanced <text> tags: %d opening, %d closing"
	FmtErrBlockMissingID      = "block tag missing id attribute: %s"
	FmtErrBlockMalformedID    = "block tag has non-numeric id: %s"
	FmtErrNestedTags          = "nested <%s> tags detected"
)

var (
	blockTagPattern   = regexp.MustCompile(`<` + TagNameBlock + `\b[^>]*>`)
	blockClosePattern = regexp.MustCompile(`</` + TagNameBlock + `>`)
	textOpenPattern   = regexp.MustCompile(`<` + TagNameText + `>`)
	textClosePattern  = regexp.MustCompile(`</` + TagNameText + `>`)
	idAttrPattern     = regexp.MustCompile(`\b` + AttrID + `\s*=\s*"?([^"\s/>]+)"?`)
	numericIDPattern  = regexp.MustCompile(`^\d+$`)

	// anyTagPattern tokenizes all storage tags for the nesting scan.
	anyTagPattern = regexp.MustCompile(`</?(?:` + TagNameText + `|` + TagNameBlock + `)\b[^>]*>`)
)

// FormatValidationResult reports storage-format integrity findings.
type FormatValidationResult struct {
	// IsValid is true when no findings were recorded.
	IsValid bool

	// Errors contains human-readable findings, one per issue.
	Errors []string
}

// ValidateStorageFormat runs pre-flight integrity checks on storage text:
// tag balance for both tag kinds, missing or non-numeric block IDs, and
// nested same-kind tags.
//
// The result is advisory. Decode never requires a valid format; it recovers
// malformed spans as literal text. Nesting detection in particular is a
// heuristic scan, good enough for editor warnings but not a true nesting
// parser, and must not back security or correctness decisions.
func ValidateStorageFormat(text string) *FormatValidationResult {
	var errs []string

	openBlocks := 0
	selfClosing := 0
	blockTags := blockTagPattern.FindAllString(text, -1)
	for _, tag := range blockTags {
		if strings.HasSuffix(tag, "/>") {
			selfClosing++
		} else {
			openBlocks++
		}
	}
	closeBlocks := len(blockClosePattern.FindAllString(text, -1))
	if openBlocks != closeBlocks {
		errs = append(errs, fmt.Sprintf(FmtErrUnbalancedBlockTags, openBlocks, closeBlocks))
	}

	openTexts := len(textOpenPattern.FindAllString(text, -1))
	closeTexts := len(textClosePattern.FindAllString(text, -1))
	if openTexts != closeTexts {
		errs = append(errs, fmt.Sprintf(FmtErrUnbalancedTextTags, openTexts, closeTexts))
	}

	for _, tag := range blockTags {
		idMatch := idAttrPattern.FindStringSubmatch(tag)
		if idMatch == nil {
			errs = append(errs, fmt.Sprintf(FmtErrBlockMissingID, tag))
			continue
		}
		if !numericIDPattern.MatchString(idMatch[1]) {
			errs = append(errs, fmt.Sprintf(FmtErrBlockMalformedID, tag))
		}
	}

	errs = append(errs, findNestedTags(text)...)

	return &FormatValidationResult{
		IsValid: len(errs) == 0,
		Errors:  errs,
	}
}

// findNestedTags scans the tag token stream for an open tag followed by
// another open tag of the same kind before a close. Self-closing block tags
// do not open a scope. Reports at most one finding per tag kind.
func findNestedTags(text string) []string {
	var errs []string
	depth := map[string]int{TagNameText: 0, TagNameBlock: 0}
	flagged := map[string]bool{}

	for _, tag := range anyTagPattern.FindAllString(text, -1) {
		kind := TagNameText
		if strings.HasPrefix(tag, "<"+TagNameBlock) || strings.HasPrefix(tag, "</"+TagNameBlock) {
			kind = TagNameBlock
		}

		switch {
		case strings.HasPrefix(tag, "</"):
			if depth[kind] > 0 {
				depth[kind]--
			}
		case strings.HasSuffix(tag, "/>"):
			// self-closing, no scope
		default:
			if depth[kind] > 0 && !flagged[kind] {
				errs = append(errs, fmt.Sprintf(FmtErrNestedTags, kind))
				flagged[kind] = true
			}
			depth[kind]++
		}
	}
	return errs
}
