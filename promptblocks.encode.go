package promptblocks

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Escape encodes the storage-format escaping alphabet: & < > only. The
// ampersand is substituted first so ampersands introduced by the later
// substitutions are never double-escaped. Quotes, braces, and newlines pass
// through literally.
func Escape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// Unescape reverses Escape. Entities are substituted in the reverse order of
// encoding so a literal & that was escaped to &amp; survives the round trip.
func Unescape(s string) string {
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&amp;", "&")
	return s
}

// Encode serializes the document to storage text. Elements are emitted in
// ascending order and joined with a blank line:
//
//   - text elements with non-blank content encode as <text>ESCAPED</text>;
//     blank text elements are dropped (the encoder is intentionally lossy
//     for pure-whitespace text)
//   - non-overridden blocks encode self-closing: <block id="N" />
//   - overridden blocks with a body encode as <block id="N">ESCAPED</block>
//
// An overridden block without override content falls back to the
// self-closing form. The mutation API prevents that state; if it is reached
// anyway the fallback keeps the output consistent without repairing the
// in-memory element.
func (e *Engine) Encode(doc *Document) string {
	if doc == nil {
		return ""
	}

	fragments := make([]string, 0, doc.Len())
	for _, el := range doc.Elements() {
		switch el := el.(type) {
		case *TextElement:
			if strings.TrimSpace(el.Content) == "" {
				continue
			}
			fragments = append(fragments, "<"+TagNameText+">"+Escape(el.Content)+"</"+TagNameText+">")

		case *BlockElement:
			if body, ok := el.EffectiveOverride(); ok {
				fragments = append(fragments,
					fmt.Sprintf(`<%s %s="%d">%s</%s>`, TagNameBlock, AttrID, el.BlockID, Escape(body), TagNameBlock))
				continue
			}
			if el.IsOverridden {
				e.logger.Debug("overridden block has no override content, encoding self-closing",
					zap.String(MetaKeyElementID, el.ID),
					zap.Int64(MetaKeyBlockID, el.BlockID))
			}
			fragments = append(fragments,
				fmt.Sprintf(`<%s %s="%d" />`, TagNameBlock, AttrID, el.BlockID))
		}
	}

	return strings.Join(fragments, e.config.separator)
}
