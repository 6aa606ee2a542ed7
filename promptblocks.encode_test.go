package promptblocks

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscape(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"ampersand", "a & b", "a &amp; b"},
		{"angle brackets", "<tag>", "&lt;tag&gt;"},
		{"ampersand before entity-like text", "&lt;", "&amp;lt;"},
		{"quotes pass through", `"quoted"`, `"quoted"`},
		{"braces pass through", "{{name}}", "{{name}}"},
		{"newlines pass through", "a\nb", "a\nb"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Escape(tt.input))
		})
	}
}

func TestUnescape(t *testing.T) {
	inputs := []string{
		"a & b",
		"<tag>",
		"&lt; literal entity text",
		"mixed <a> & <b>",
		"",
	}

	for _, input := range inputs {
		assert.Equal(t, input, Unescape(Escape(input)), "round trip for %q", input)
	}
}

func TestEngineEncode(t *testing.T) {
	engine := MustNew()

	t.Run("nil document encodes empty", func(t *testing.T) {
		assert.Equal(t, "", engine.Encode(nil))
	})

	t.Run("empty document encodes empty", func(t *testing.T) {
		assert.Equal(t, "", engine.Encode(NewDocument()))
	})

	t.Run("text and self-closing block", func(t *testing.T) {
		doc := NewDocument()
		doc.AppendText("Hello {{name}}")
		doc.AppendBlock(7)

		assert.Equal(t, "<text>Hello {{name}}</text>\n\n<block id=\"7\" />", engine.Encode(doc))
	})

	t.Run("overridden block encodes body", func(t *testing.T) {
		doc := NewDocument()
		block := doc.AppendBlock(3)
		err := doc.Apply(SetBlockOverride{ElementID: block.ID, Content: "custom body"})
		assert.NoError(t, err)

		assert.Equal(t, `<block id="3">custom body</block>`, engine.Encode(doc))
	})

	t.Run("special characters are escaped", func(t *testing.T) {
		doc := NewDocument()
		doc.AppendText("a < b & c > d")

		assert.Equal(t, "<text>a &lt; b &amp; c &gt; d</text>", engine.Encode(doc))
	})

	t.Run("blank text elements are dropped", func(t *testing.T) {
		doc := NewDocument()
		doc.AppendText("   \n\t ")
		doc.AppendText("kept")

		assert.Equal(t, "<text>kept</text>", engine.Encode(doc))
	})

	t.Run("elements encode in sorted order", func(t *testing.T) {
		doc := NewDocument()
		first := doc.AppendText("first")
		doc.AppendText("second")
		assert.NoError(t, doc.Apply(Reorder{ElementID: first.ID, Direction: MoveDirectionDown}))

		assert.Equal(t, "<text>second</text>\n\n<text>first</text>", engine.Encode(doc))
	})

	t.Run("custom fragment separator", func(t *testing.T) {
		e := MustNew(WithFragmentSeparator("\n"))
		doc := NewDocument()
		doc.AppendText("a")
		doc.AppendText("b")

		assert.Equal(t, "<text>a</text>\n<text>b</text>", e.Encode(doc))
	})

	t.Run("overridden block without content falls back to self-closing", func(t *testing.T) {
		doc := NewDocument()
		doc.addDecoded(&BlockElement{
			ID:           generateElementID(),
			BlockID:      9,
			BlockType:    BlockTypePreset,
			IsOverridden: true,
		})

		assert.Equal(t, `<block id="9" />`, engine.Encode(doc))
	})
}
