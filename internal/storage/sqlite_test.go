package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JamesPrial/text2graph/pkg/errors"
	"github.com/JamesPrial/text2graph/pkg/mcp"
)

func TestSqliteBackend_PersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "graph.db")
	ctx := context.Background()

	backend, err := NewSqliteBackend(dbPath, false)
	require.NoError(t, err)

	stored, err := backend.CreateEntities(ctx, []mcp.Entity{
		mcp.NewEntity("Alice", "PERSON", ""),
		mcp.NewEntity("Budget", "PRODUCT", ""),
	})
	require.NoError(t, err)
	_, err = backend.CreateRelations(ctx, []mcp.Relation{{
		ID: "rel-1", SourceID: stored[0].ID, TargetID: stored[1].ID,
		RelationType: "MANAGE", Confidence: 0.9, Source: "dependency_parsing",
	}})
	require.NoError(t, err)
	require.NoError(t, backend.Close())

	reopened, err := NewSqliteBackend(dbPath, false)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetEntity(ctx, stored[0].ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Alice", got.Name)

	again, err := reopened.CreateEntities(ctx, []mcp.Entity{mcp.NewEntity("Alice", "PERSON", "")})
	require.NoError(t, err)
	assert.Equal(t, stored[0].ID, again[0].ID)

	stats, err := reopened.GetStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.EntityCount)
	assert.Equal(t, 1, stats.RelationCount)
}

func TestSqliteBackend_InvalidPath(t *testing.T) {
	_, err := NewSqliteBackend(filepath.Join(t.TempDir(), "missing", "dir", "graph.db"), true)

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeStorageConnection, errors.GetCode(err))
}
