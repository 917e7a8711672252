package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wiki-api/pkg/models"
)

func newTestSQLiteStore(t *testing.T) Store {
	t.Helper()
	s, err := NewSQLiteStore(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close(context.Background()) })
	return s
}

func TestSQLiteStore(t *testing.T) {
	testStoreContract(t, newTestSQLiteStore)
}

func TestSQLiteStore_PersistsToFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "wiki.db")

	s, err := Open(ctx, "sqlite://"+path, Options{})
	require.NoError(t, err)
	require.NoError(t, s.Insert(ctx, models.Article{Title: "Intro", Content: "Hello"}))
	require.NoError(t, s.Close(ctx))

	reopened, err := NewSQLiteStore(ctx, path)
	require.NoError(t, err)
	defer reopened.Close(ctx)

	found, err := reopened.FindOne(ctx, "Intro")
	require.NoError(t, err)
	assert.Equal(t, "Hello", found.Content)
}

func TestSQLiteStore_PatchKeepsEmptyString(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)
	require.NoError(t, s.Insert(ctx, models.Article{Title: "Intro", Content: "Hello"}))
	require.NoError(t, s.Update(ctx, "Intro", models.ArticlePatch{Content: strPtr("")}))

	found, err := s.FindOne(ctx, "Intro")
	require.NoError(t, err)
	assert.Empty(t, found.Content)
}
