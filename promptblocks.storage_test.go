package promptblocks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreDriverRegistry(t *testing.T) {
	t.Run("built-in drivers are registered", func(t *testing.T) {
		names := ListStoreDrivers()
		assert.Contains(t, names, StoreDriverNameMemory)
		assert.Contains(t, names, StoreDriverNameFilesystem)
		assert.Contains(t, names, StoreDriverNamePostgres)
	})

	t.Run("open memory store by name", func(t *testing.T) {
		store, err := OpenStore(StoreDriverNameMemory, "")
		require.NoError(t, err)
		defer store.Close()

		_, ok := store.(*MemoryStore)
		assert.True(t, ok)
	})

	t.Run("unknown driver fails", func(t *testing.T) {
		_, err := OpenStore("nonexistent", "")
		assert.Error(t, err)
	})

	t.Run("duplicate registration panics", func(t *testing.T) {
		assert.Panics(t, func() {
			RegisterStoreDriver(StoreDriverNameMemory, &MemoryStoreDriver{})
		})
	})

	t.Run("nil driver panics", func(t *testing.T) {
		assert.Panics(t, func() {
			RegisterStoreDriver("nil-driver", nil)
		})
	})
}

func TestStoreError(t *testing.T) {
	t.Run("message only", func(t *testing.T) {
		err := NewStoreClosedError()
		assert.Equal(t, ErrMsgStoreClosed, err.Error())
	})

	t.Run("entity and id", func(t *testing.T) {
		err := NewBlockNotFoundError(42)
		assert.Contains(t, err.Error(), "block 42")
	})

	t.Run("entity id and version", func(t *testing.T) {
		err := NewCompositionVersionNotFoundError(7, 3)
		assert.Contains(t, err.Error(), "composition 7 v3")
	})

	t.Run("unwrap", func(t *testing.T) {
		cause := errors.New("io failure")
		err := &StoreError{Message: "wrapped", Cause: cause}
		assert.ErrorIs(t, err, cause)
	})
}

func TestStoreBlockResolver(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	defer store.Close()

	block := &Block{Name: "greeting", Content: "Hello {{name}}"}
	require.NoError(t, store.SaveBlock(ctx, block))

	resolver := NewStoreBlockResolver(store)

	content, err := resolver.ResolveBlock(ctx, block.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello {{name}}", content)

	t.Run("missing block wraps lookup failure", func(t *testing.T) {
		_, err := resolver.ResolveBlock(ctx, 999)
		require.Error(t, err)

		// The store's not-found error stays reachable through the wrap chain
		var storeErr *StoreError
		assert.ErrorAs(t, err, &storeErr)
	})
}

func TestStoreBlockResolverWithEngine(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	defer store.Close()

	block := &Block{Name: "body", Content: "Block body {{answer}}"}
	require.NoError(t, store.SaveBlock(ctx, block))

	engine := MustNew(WithBlockResolver(NewStoreBlockResolver(store)))

	doc := NewDocument()
	doc.AppendText("Hello {{name}}")
	doc.AppendBlock(block.ID)

	rendered, err := engine.Render(ctx, doc, map[string]string{"name": "World", "answer": "42"})
	require.NoError(t, err)
	assert.Equal(t, "Hello World\n\nBlock body 42", rendered)
}
