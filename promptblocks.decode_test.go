package promptblocks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineDecode(t *testing.T) {
	engine := MustNew()

	t.Run("empty input yields empty document", func(t *testing.T) {
		assert.Equal(t, 0, engine.Decode("").Len())
		assert.Equal(t, 0, engine.Decode("  \n\t ").Len())
	})

	t.Run("text element", func(t *testing.T) {
		doc := engine.Decode("<text>Hello {{name}}</text>")
		elements := doc.Elements()
		require.Len(t, elements, 1)

		text, ok := elements[0].(*TextElement)
		require.True(t, ok)
		assert.Equal(t, "Hello {{name}}", text.Content)
		assert.NotEmpty(t, text.ID)
	})

	t.Run("self-closing block", func(t *testing.T) {
		doc := engine.Decode(`<block id="7" />`)
		elements := doc.Elements()
		require.Len(t, elements, 1)

		block, ok := elements[0].(*BlockElement)
		require.True(t, ok)
		assert.Equal(t, int64(7), block.BlockID)
		assert.Equal(t, BlockTypePreset, block.BlockType)
		assert.False(t, block.IsOverridden)
		assert.Empty(t, block.OverrideContent)
	})

	t.Run("overridden block", func(t *testing.T) {
		doc := engine.Decode(`<block id="3">custom body</block>`)
		elements := doc.Elements()
		require.Len(t, elements, 1)

		block, ok := elements[0].(*BlockElement)
		require.True(t, ok)
		assert.Equal(t, int64(3), block.BlockID)
		assert.True(t, block.IsOverridden)
		assert.Equal(t, "custom body", block.OverrideContent)
	})

	t.Run("unquoted block id", func(t *testing.T) {
		doc := engine.Decode(`<block id=5 />`)
		elements := doc.Elements()
		require.Len(t, elements, 1)

		block, ok := elements[0].(*BlockElement)
		require.True(t, ok)
		assert.Equal(t, int64(5), block.BlockID)
	})

	t.Run("escaped entities are decoded", func(t *testing.T) {
		doc := engine.Decode("<text>a &lt; b &amp; c &gt; d</text>")
		text := doc.Elements()[0].(*TextElement)
		assert.Equal(t, "a < b & c > d", text.Content)
	})

	t.Run("relative order is preserved", func(t *testing.T) {
		doc := engine.Decode("<text>one</text>\n\n<block id=\"2\" />\n\n<text>three</text>")
		elements := doc.Elements()
		require.Len(t, elements, 3)

		assert.Equal(t, "one", elements[0].(*TextElement).Content)
		assert.Equal(t, int64(2), elements[1].(*BlockElement).BlockID)
		assert.Equal(t, "three", elements[2].(*TextElement).Content)
	})

	t.Run("multiline override body", func(t *testing.T) {
		doc := engine.Decode("<block id=\"4\">line one\nline two</block>")
		block := doc.Elements()[0].(*BlockElement)
		assert.Equal(t, "line one\nline two", block.OverrideContent)
	})

	t.Run("loose text is recovered as text element", func(t *testing.T) {
		doc := engine.Decode(`loose text <block id="5" />`)
		elements := doc.Elements()
		require.Len(t, elements, 2)

		text, ok := elements[0].(*TextElement)
		require.True(t, ok)
		assert.Equal(t, "loose text", text.Content)

		block, ok := elements[1].(*BlockElement)
		require.True(t, ok)
		assert.Equal(t, int64(5), block.BlockID)
	})

	t.Run("input with no tags becomes single text element", func(t *testing.T) {
		doc := engine.Decode("just some plain text")
		elements := doc.Elements()
		require.Len(t, elements, 1)
		assert.Equal(t, "just some plain text", elements[0].(*TextElement).Content)
	})

	t.Run("trailing loose text is recovered", func(t *testing.T) {
		doc := engine.Decode("<text>lead</text> trailing words")
		elements := doc.Elements()
		require.Len(t, elements, 2)
		assert.Equal(t, "trailing words", elements[1].(*TextElement).Content)
	})

	t.Run("unclosed block tag degrades to text", func(t *testing.T) {
		doc := engine.Decode(`<block id="5">never closed`)
		elements := doc.Elements()
		require.Len(t, elements, 1)
		assert.Equal(t, ElementKindText, elements[0].Kind())
	})
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	engine := MustNew()

	doc := NewDocument()
	doc.AppendText("Intro with {{name}} & <specials>")
	doc.AppendBlock(12)
	block := doc.AppendBlock(34)
	require.NoError(t, doc.Apply(SetBlockOverride{ElementID: block.ID, Content: "override with {{var}}"}))
	doc.AppendText("Outro")

	decoded := engine.Decode(engine.Encode(doc))

	original := doc.Elements()
	restored := decoded.Elements()
	require.Len(t, restored, len(original))

	for i := range original {
		assert.Equal(t, original[i].Kind(), restored[i].Kind(), "element %d kind", i)

		switch orig := original[i].(type) {
		case *TextElement:
			assert.Equal(t, orig.Content, restored[i].(*TextElement).Content)
		case *BlockElement:
			got := restored[i].(*BlockElement)
			assert.Equal(t, orig.BlockID, got.BlockID)
			assert.Equal(t, orig.BlockType, got.BlockType)
			assert.Equal(t, orig.IsOverridden, got.IsOverridden)
			assert.Equal(t, orig.OverrideContent, got.OverrideContent)
		}
	}
}
