package promptblocks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapResolver resolves blocks from a static map for tests.
func mapResolver(blocks map[int64]string) BlockResolverFunc {
	return func(ctx context.Context, blockID int64) (string, error) {
		content, ok := blocks[blockID]
		if !ok {
			return "", NewBlockNotFoundError(blockID)
		}
		return content, nil
	}
}

func TestEngineRender(t *testing.T) {
	ctx := context.Background()

	t.Run("nil document returns error", func(t *testing.T) {
		engine := MustNew()
		_, err := engine.Render(ctx, nil, nil)
		assert.Error(t, err)
	})

	t.Run("text and resolved block with variables", func(t *testing.T) {
		engine := MustNew(WithBlockResolver(mapResolver(map[int64]string{
			7: "Block body {{answer}}",
		})))

		doc := NewDocument()
		doc.AppendText("Hello {{name}}")
		doc.AppendBlock(7)

		result, err := engine.Render(ctx, doc, map[string]string{"name": "World", "answer": "42"})
		require.NoError(t, err)
		assert.Equal(t, "Hello World\n\nBlock body 42", result)
	})

	t.Run("override replaces canonical content", func(t *testing.T) {
		engine := MustNew(WithBlockResolver(mapResolver(map[int64]string{1: "CANONICAL"})))

		doc := NewDocument()
		block := doc.AppendBlock(1)
		require.NoError(t, doc.Apply(SetBlockOverride{ElementID: block.ID, Content: "overridden"}))

		result, err := engine.Render(ctx, doc, nil)
		require.NoError(t, err)
		assert.Equal(t, "overridden", result)
	})

	t.Run("originalText expands inside override", func(t *testing.T) {
		engine := MustNew(WithBlockResolver(mapResolver(map[int64]string{1: "ORIGINAL"})))

		doc := NewDocument()
		block := doc.AppendBlock(1)
		require.NoError(t, doc.Apply(SetBlockOverride{
			ElementID: block.ID,
			Content:   "Before: {{originalText}} After",
		}))

		result, err := engine.Render(ctx, doc, nil)
		require.NoError(t, err)
		assert.Equal(t, "Before: ORIGINAL After", result)
	})

	t.Run("originalText expands before variable substitution", func(t *testing.T) {
		engine := MustNew(WithBlockResolver(mapResolver(map[int64]string{1: "canonical {{name}}"})))

		doc := NewDocument()
		block := doc.AppendBlock(1)
		require.NoError(t, doc.Apply(SetBlockOverride{
			ElementID: block.ID,
			Content:   "{{originalText}}!",
		}))

		result, err := engine.Render(ctx, doc, map[string]string{"name": "Alice"})
		require.NoError(t, err)
		assert.Equal(t, "canonical Alice!", result)
	})

	t.Run("originalText outside overrides is not expanded", func(t *testing.T) {
		engine := MustNew(WithBlockResolver(mapResolver(map[int64]string{1: "body"})))

		doc := NewDocument()
		doc.AppendText("literal {{originalText}} here")
		doc.AppendBlock(1)

		result, err := engine.Render(ctx, doc, nil)
		require.NoError(t, err)
		assert.Equal(t, "literal {{originalText}} here\n\nbody", result)
	})

	t.Run("missing block renders empty and is dropped", func(t *testing.T) {
		engine := MustNew(WithBlockResolver(mapResolver(map[int64]string{})))

		doc := NewDocument()
		doc.AppendText("kept")
		doc.AppendBlock(999)

		result, err := engine.Render(ctx, doc, nil)
		require.NoError(t, err)
		assert.Equal(t, "kept", result)
	})

	t.Run("no resolver renders blocks empty", func(t *testing.T) {
		engine := MustNew()

		doc := NewDocument()
		doc.AppendBlock(1)
		doc.AppendText("only text survives")

		result, err := engine.Render(ctx, doc, nil)
		require.NoError(t, err)
		assert.Equal(t, "only text survives", result)
	})

	t.Run("resolver error degrades to empty", func(t *testing.T) {
		engine := MustNew(WithBlockResolver(BlockResolverFunc(
			func(ctx context.Context, blockID int64) (string, error) {
				return "", errors.New("backend down")
			})))

		doc := NewDocument()
		doc.AppendBlock(1)
		doc.AppendText("still works")

		result, err := engine.Render(ctx, doc, nil)
		require.NoError(t, err)
		assert.Equal(t, "still works", result)
	})

	t.Run("missing variable values leave placeholders", func(t *testing.T) {
		engine := MustNew()

		doc := NewDocument()
		doc.AppendText("Hello {{name}}")

		result, err := engine.Render(ctx, doc, nil)
		require.NoError(t, err)
		assert.Equal(t, "Hello {{name}}", result)
	})
}

func TestEnginePreview(t *testing.T) {
	ctx := context.Background()

	t.Run("preview keeps blank fragments", func(t *testing.T) {
		engine := MustNew()

		doc := NewDocument()
		doc.AppendText("first")
		doc.AppendBlock(1) // no resolver, renders empty
		doc.AppendText("last")

		result, err := engine.Preview(ctx, doc, nil)
		require.NoError(t, err)
		assert.Equal(t, "first\n\n\n\nlast", result)
	})

	t.Run("render drops what preview keeps", func(t *testing.T) {
		engine := MustNew()

		doc := NewDocument()
		doc.AppendText("first")
		doc.AppendBlock(1)
		doc.AppendText("last")

		rendered, err := engine.Render(ctx, doc, nil)
		require.NoError(t, err)
		assert.Equal(t, "first\n\nlast", rendered)
	})
}

func TestDocumentVariables(t *testing.T) {
	ctx := context.Background()

	t.Run("union across text and block bodies", func(t *testing.T) {
		engine := MustNew(WithBlockResolver(mapResolver(map[int64]string{
			1: "block uses {{tone}}",
		})))

		doc := NewDocument()
		doc.AppendText("Hello {{name}}")
		doc.AppendBlock(1)

		names, err := engine.DocumentVariables(ctx, doc)
		require.NoError(t, err)
		assert.Equal(t, []string{"name", "tone"}, names)
	})

	t.Run("override body wins over canonical", func(t *testing.T) {
		engine := MustNew(WithBlockResolver(mapResolver(map[int64]string{
			1: "canonical {{hidden}}",
		})))

		doc := NewDocument()
		block := doc.AppendBlock(1)
		require.NoError(t, doc.Apply(SetBlockOverride{ElementID: block.ID, Content: "override {{visible}}"}))

		names, err := engine.DocumentVariables(ctx, doc)
		require.NoError(t, err)
		assert.Equal(t, []string{"visible"}, names)
	})

	t.Run("originalText is never reported", func(t *testing.T) {
		engine := MustNew(WithBlockResolver(mapResolver(map[int64]string{1: "body"})))

		doc := NewDocument()
		block := doc.AppendBlock(1)
		require.NoError(t, doc.Apply(SetBlockOverride{
			ElementID: block.ID,
			Content:   "{{originalText}} plus {{real}}",
		}))

		names, err := engine.DocumentVariables(ctx, doc)
		require.NoError(t, err)
		assert.Equal(t, []string{"real"}, names)
	})

	t.Run("nil document returns error", func(t *testing.T) {
		engine := MustNew()
		_, err := engine.DocumentVariables(ctx, nil)
		assert.Error(t, err)
	})
}

func TestValidateDocumentVariables(t *testing.T) {
	ctx := context.Background()
	engine := MustNew()

	doc := NewDocument()
	doc.AppendText("{{a}} {{b}}")

	result, err := engine.ValidateDocumentVariables(ctx, doc, map[string]string{"a": "set"})
	require.NoError(t, err)
	assert.False(t, result.IsValid)
	assert.Equal(t, []string{"b"}, result.MissingVariables)

	result, err = engine.ValidateDocumentVariables(ctx, doc, map[string]string{"a": "1", "b": "2"})
	require.NoError(t, err)
	assert.True(t, result.IsValid)
}
