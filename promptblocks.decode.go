package promptblocks

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// storageTagPattern matches the three storage tag shapes in priority order:
// <text>...</text>, self-closing <block id=N />, and <block id=N>...</block>.
// The id attribute may be bare or double-quoted. (?s) lets bodies span
// newlines. Alternation order matters: Go regexp alternation is
// leftmost-first, which gives the shapes their priority.
var storageTagPattern = regexp.MustCompile(`(?s)` +
	`<` + TagNameText + `>(.*?)</` + TagNameText + `>` +
	`|<` + TagNameBlock + `\s+` + AttrID + `="?(\d+)"?\s*/>` +
	`|<` + TagNameBlock + `\s+` + AttrID + `="?(\d+)"?\s*>(.*?)</` + TagNameBlock + `>`)

// Submatch group indexes in storageTagPattern.
const (
	tagGroupTextContent  = 1
	tagGroupSelfCloseID  = 2
	tagGroupBlockID      = 3
	tagGroupOverrideBody = 4
)

// Decode reconstructs a Document from storage text. Decoding is total and
// defensive: it never fails and never drops non-blank content.
//
// The scanner extracts tags directly from the full string (separators are
// irrelevant). Any non-blank span between, before, or after recognized tags
// is recovered as a synthetic text element rather than discarded, so
// malformed markup degrades to literal text. Non-blank input with zero
// recognized tags becomes a single text element; blank input yields an
// empty document.
//
// Order keys are assigned as consecutive integers in recognition order.
// Order keys from the document that produced the text are not preserved,
// only the relative order.
func (e *Engine) Decode(text string) *Document {
	doc := NewDocument()
	if strings.TrimSpace(text) == "" {
		return doc
	}

	order := 0
	last := 0
	for _, m := range storageTagPattern.FindAllStringSubmatchIndex(text, -1) {
		if gap := strings.TrimSpace(text[last:m[0]]); gap != "" {
			doc.addDecoded(newDecodedText(gap, order))
			order++
		}
		last = m[1]

		if start := m[2*tagGroupTextContent]; start >= 0 {
			content := Unescape(text[start:m[2*tagGroupTextContent+1]])
			doc.addDecoded(newDecodedText(content, order))
			order++
			continue
		}

		if start := m[2*tagGroupSelfCloseID]; start >= 0 {
			blockID := parseBlockID(text[start:m[2*tagGroupSelfCloseID+1]], e.logger)
			doc.addDecoded(newDecodedBlock(blockID, "", order))
			order++
			continue
		}

		blockID := parseBlockID(text[m[2*tagGroupBlockID]:m[2*tagGroupBlockID+1]], e.logger)
		body := Unescape(text[m[2*tagGroupOverrideBody]:m[2*tagGroupOverrideBody+1]])
		doc.addDecoded(newDecodedBlock(blockID, body, order))
		order++
	}

	if tail := strings.TrimSpace(text[last:]); tail != "" {
		doc.addDecoded(newDecodedText(tail, order))
	}

	return doc
}

// newDecodedText builds a text element recognized during decoding.
func newDecodedText(content string, order int) *TextElement {
	return &TextElement{
		ID:      generateElementID(),
		Order:   float64(order),
		Content: content,
	}
}

// newDecodedBlock builds a block element recognized during decoding.
// A non-empty body marks the element as overridden.
func newDecodedBlock(blockID int64, body string, order int) *BlockElement {
	return &BlockElement{
		ID:              generateElementID(),
		Order:           float64(order),
		BlockID:         blockID,
		BlockType:       BlockTypePreset,
		IsOverridden:    body != "",
		OverrideContent: body,
	}
}

// parseBlockID converts a matched id attribute to an int64. The pattern only
// matches digit runs, so failures are limited to overflow.
func parseBlockID(raw string, logger *zap.Logger) int64 {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		logger.Debug("block id out of range, decoding as zero", zap.String(AttrID, raw))
		return 0
	}
	return id
}
