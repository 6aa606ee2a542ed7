//go:build integration

package promptblocks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupPostgresContainer creates an ephemeral PostgreSQL container for testing.
func setupPostgresContainer(t *testing.T) (*PostgresStore, func()) {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:15",
		postgres.WithDatabase("promptblocks_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	store, err := NewPostgresStore(PostgresConfig{
		ConnectionString: connStr,
		AutoMigrate:      true,
		QueryTimeout:     30 * time.Second,
	})
	require.NoError(t, err, "failed to create postgres store")

	cleanup := func() {
		if store != nil {
			_ = store.Close()
		}
		if container != nil {
			_ = container.Terminate(ctx)
		}
	}

	return store, cleanup
}

func TestPostgres_E2E_Blocks(t *testing.T) {
	store, cleanup := setupPostgresContainer(t)
	defer cleanup()
	ctx := context.Background()

	t.Run("SaveAssignsID", func(t *testing.T) {
		block := &Block{Name: "greeting", Content: "Hello {{name}}"}
		require.NoError(t, store.SaveBlock(ctx, block))
		assert.NotZero(t, block.ID)
		assert.Equal(t, 1, block.Version)
		assert.False(t, block.CreatedAt.IsZero())
	})

	t.Run("GetRoundTrip", func(t *testing.T) {
		block := &Block{Name: "body", Content: "Block body {{answer}}"}
		require.NoError(t, store.SaveBlock(ctx, block))

		got, err := store.GetBlock(ctx, block.ID)
		require.NoError(t, err)
		assert.Equal(t, "body", got.Name)
		assert.Equal(t, "Block body {{answer}}", got.Content)
	})

	t.Run("UpdateBumpsVersion", func(t *testing.T) {
		block := &Block{Name: "versioned", Content: "v1"}
		require.NoError(t, store.SaveBlock(ctx, block))

		block.Content = "v2"
		require.NoError(t, store.SaveBlock(ctx, block))
		assert.Equal(t, 2, block.Version)

		got, err := store.GetBlock(ctx, block.ID)
		require.NoError(t, err)
		assert.Equal(t, "v2", got.Content)
		assert.Equal(t, 2, got.Version)
	})

	t.Run("GetNotFound", func(t *testing.T) {
		_, err := store.GetBlock(ctx, 999999)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("Delete", func(t *testing.T) {
		block := &Block{Name: "to-delete", Content: "delete me"}
		require.NoError(t, store.SaveBlock(ctx, block))
		require.NoError(t, store.DeleteBlock(ctx, block.ID))
		assert.Error(t, store.DeleteBlock(ctx, block.ID))
	})

	t.Run("ListOrderedByID", func(t *testing.T) {
		blocks, err := store.ListBlocks(ctx)
		require.NoError(t, err)
		for i := 1; i < len(blocks); i++ {
			assert.Less(t, blocks[i-1].ID, blocks[i].ID)
		}
	})
}

func TestPostgres_E2E_Compositions(t *testing.T) {
	store, cleanup := setupPostgresContainer(t)
	defer cleanup()
	ctx := context.Background()

	t.Run("VersionsAccumulate", func(t *testing.T) {
		comp := &Composition{
			Name:      "draft",
			Content:   "<text>v1</text>",
			Variables: map[string]string{"name": "Alice"},
			Tags:      []string{"work"},
			CreatedBy: "user-1",
		}
		require.NoError(t, store.SaveComposition(ctx, comp))
		assert.NotZero(t, comp.ID)
		assert.Equal(t, 1, comp.Version)

		comp.Content = "<text>v2</text>"
		require.NoError(t, store.SaveComposition(ctx, comp))
		assert.Equal(t, 2, comp.Version)

		latest, err := store.GetComposition(ctx, comp.ID)
		require.NoError(t, err)
		assert.Equal(t, "<text>v2</text>", latest.Content)
		assert.Equal(t, "Alice", latest.Variables["name"])
		assert.Equal(t, []string{"work"}, latest.Tags)
		assert.Equal(t, "user-1", latest.CreatedBy)

		v1, err := store.GetCompositionVersion(ctx, comp.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, "<text>v1</text>", v1.Content)

		versions, err := store.ListCompositionVersions(ctx, comp.ID)
		require.NoError(t, err)
		assert.Equal(t, []int{2, 1}, versions)
	})

	t.Run("DeleteVersion", func(t *testing.T) {
		comp := &Composition{Name: "prunable", Content: "v1"}
		require.NoError(t, store.SaveComposition(ctx, comp))
		require.NoError(t, store.SaveComposition(ctx, comp))

		require.NoError(t, store.DeleteCompositionVersion(ctx, comp.ID, 1))

		versions, err := store.ListCompositionVersions(ctx, comp.ID)
		require.NoError(t, err)
		assert.Equal(t, []int{2}, versions)
	})

	t.Run("DeleteAll", func(t *testing.T) {
		comp := &Composition{Name: "gone", Content: "v1"}
		require.NoError(t, store.SaveComposition(ctx, comp))
		require.NoError(t, store.DeleteComposition(ctx, comp.ID))

		_, err := store.GetComposition(ctx, comp.ID)
		assert.Error(t, err)
	})

	t.Run("ListLatestOnly", func(t *testing.T) {
		comp := &Composition{Name: "multi", Content: "old"}
		require.NoError(t, store.SaveComposition(ctx, comp))
		comp.Content = "new"
		require.NoError(t, store.SaveComposition(ctx, comp))

		comps, err := store.ListCompositions(ctx)
		require.NoError(t, err)
		for _, c := range comps {
			if c.ID == comp.ID {
				assert.Equal(t, "new", c.Content)
			}
		}
	})
}

func TestPostgres_E2E_VersioningWorkflow(t *testing.T) {
	store, cleanup := setupPostgresContainer(t)
	defer cleanup()
	ctx := context.Background()

	comp := &Composition{Name: "workflow", Content: "v1 body"}
	require.NoError(t, store.SaveComposition(ctx, comp))
	comp.Content = "v2 body"
	require.NoError(t, store.SaveComposition(ctx, comp))

	history, err := GetCompositionHistory(ctx, store, comp.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, history.CurrentVersion)
	assert.Equal(t, 2, history.TotalVersions)

	rollback, err := RollbackComposition(ctx, store, comp.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, rollback.Version)
	assert.Equal(t, "v1 body", rollback.Content)

	deleted, err := PruneCompositionVersions(ctx, store, comp.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	versions, err := store.ListCompositionVersions(ctx, comp.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{3}, versions)
}

func TestPostgres_E2E_Lifecycle(t *testing.T) {
	store, cleanup := setupPostgresContainer(t)
	defer cleanup()
	ctx := context.Background()

	t.Run("SchemaVersion", func(t *testing.T) {
		version, err := store.CurrentSchemaVersion(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, version, 1)
	})

	t.Run("MigrationsAreIdempotent", func(t *testing.T) {
		require.NoError(t, store.RunMigrations(ctx))
	})

	t.Run("ClosedStoreRejects", func(t *testing.T) {
		require.NoError(t, store.Close())

		_, err := store.GetBlock(ctx, 1)
		assert.Error(t, err)
		assert.Error(t, store.Close())
	})
}
