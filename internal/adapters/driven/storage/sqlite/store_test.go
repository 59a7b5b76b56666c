package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/wikichat/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})

	return store
}

func testArticles() []domain.Article {
	return []domain.Article{
		{ID: "1", Title: "August", URL: "https://simple.wikipedia.org/wiki/August", Text: "August is the eighth month."},
		{ID: "2", Title: "Art", URL: "https://simple.wikipedia.org/wiki/Art", Text: "Art is a creative activity."},
		{ID: "3", Title: "April", URL: "https://simple.wikipedia.org/wiki/April", Text: "April is the fourth month."},
	}
}

func TestNewStore_ErrorHandling(t *testing.T) {
	// Test with invalid path (should fail to create directory)
	_, err := NewStore("/invalid\x00path")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "creating data directory")
}

func TestNewStore_Success(t *testing.T) {
	tempDir := t.TempDir()

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)
	defer store.Close()

	dbPath := filepath.Join(tempDir, "articles.db")
	assert.Equal(t, dbPath, store.Path())
	assert.FileExists(t, dbPath)

	assert.NoError(t, store.db.Ping())
}

func TestNewStore_DirectoryCreation(t *testing.T) {
	nestedDir := filepath.Join(t.TempDir(), "nested", "path", "to", "db")

	store, err := NewStore(nestedDir)
	require.NoError(t, err)
	defer store.Close()

	assert.DirExists(t, nestedDir)
}

func TestNewStore_Migrations(t *testing.T) {
	store := setupTestStore(t)

	var version int
	err := store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, 1, version)

	var tableExists int
	err = store.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='articles'",
	).Scan(&tableExists)
	require.NoError(t, err)
	assert.Equal(t, 1, tableExists)
}

func TestNewStore_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir)
	require.NoError(t, err)
	_, err = store.SaveArticles(ctx, testArticles())
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Migrations must not run twice
	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	n, err := reopened.CountArticles(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestStore_Close(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.Close())
	assert.Error(t, store.db.Ping())
}

func TestStore_SaveAndGetArticle(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	n, err := store.SaveArticles(ctx, testArticles())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	got, err := store.GetArticle(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "August", got.Title)
	assert.Equal(t, "https://simple.wikipedia.org/wiki/August", got.URL)
	assert.Equal(t, "August is the eighth month.", got.Text)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestStore_SaveArticles_AssignsIDs(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.SaveArticles(ctx, []domain.Article{{Title: "Moon", Text: "The Moon orbits Earth."}})
	require.NoError(t, err)

	articles, err := store.ListArticles(ctx, 0)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.NotEmpty(t, articles[0].ID)
}

func TestStore_SaveArticles_Empty(t *testing.T) {
	store := setupTestStore(t)

	n, err := store.SaveArticles(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestStore_SaveArticles_KeepsCreatedAt(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	created := time.Date(2022, 3, 1, 12, 0, 0, 0, time.UTC)
	_, err := store.SaveArticles(ctx, []domain.Article{{ID: "x", Title: "X", CreatedAt: created}})
	require.NoError(t, err)

	got, err := store.GetArticle(ctx, "x")
	require.NoError(t, err)
	assert.True(t, created.Equal(got.CreatedAt))
}

func TestStore_GetArticle_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetArticle(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_ListArticles_InsertionOrder(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.SaveArticles(ctx, testArticles())
	require.NoError(t, err)

	all, err := store.ListArticles(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"August", "Art", "April"}, []string{all[0].Title, all[1].Title, all[2].Title})

	limited, err := store.ListArticles(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "August", limited[0].Title)
}

func TestStore_ListArticles_Empty(t *testing.T) {
	store := setupTestStore(t)

	articles, err := store.ListArticles(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, articles)
}

func TestStore_DeleteAllArticles(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.SaveArticles(ctx, testArticles())
	require.NoError(t, err)

	n, err := store.DeleteAllArticles(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	count, err := store.CountArticles(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	n, err = store.DeleteAllArticles(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestStore_SaveArticles_CancelledContext(t *testing.T) {
	store := setupTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.SaveArticles(ctx, testArticles())
	assert.Error(t, err)
}

func TestNewStore_DefaultDirectory(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewStore("")
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(home, ".wikichat", "data", "articles.db"), store.Path())
	_, err = os.Stat(store.Path())
	assert.NoError(t, err)
}
