package cli

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/wikichat/internal/core/domain"
)

func TestIngestCmd_Flags(t *testing.T) {
	assert.Equal(t, "1", ingestCmd.Flags().Lookup("limit").DefValue)
	assert.Equal(t, domain.DefaultIndexPath, ingestCmd.Flags().Lookup("path").DefValue)
}

func TestIngestCmd_Ingest(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	current.ingest.articles = []domain.Article{{Title: "April"}, {Title: "Art"}}
	current.ingest.report = &domain.BatchReport{
		Succeeded: []string{"April"},
		Failed:    []domain.BatchFailure{{Item: "Art", Reason: "article produced no chunks"}},
		Chunks:    7,
	}

	out, err := execute(t, "", "ingest", "--limit", "2", "--path", "idx.bin")

	require.NoError(t, err)
	assert.Contains(t, out, "Processing article: April")
	assert.Contains(t, out, "Processing article: Art")
	assert.Contains(t, out, "Indexed 7 chunks from 1 articles.")
	assert.Contains(t, out, "Failed: Art: article produced no chunks")
	assert.Equal(t, 2, current.ingest.opts.Limit)
	assert.Equal(t, "idx.bin", current.ingest.opts.Path)
}

func TestIngestCmd_JSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	current.ingest.articles = []domain.Article{{Title: "April"}}
	current.ingest.report = &domain.BatchReport{Succeeded: []string{"April"}, Chunks: 3}

	out, err := execute(t, "", "ingest", "--json")

	require.NoError(t, err)
	assert.NotContains(t, out, "Processing article")
	var report domain.BatchReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 3, report.Chunks)
}

func TestIngestCmd_NoArticles(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	current.ingest.err = fmt.Errorf("no articles: %w", domain.ErrNotFound)

	out, err := execute(t, "", "ingest")

	require.NoError(t, err)
	assert.Contains(t, out, "No articles found in the database.")
}

func TestIngestCmd_Error(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	current.ingest.err = domain.ErrEmbeddingUnavailable

	_, err := execute(t, "", "ingest")

	require.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestIngestCmd_NothingIndexed(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	current.ingest.articles = []domain.Article{{Title: "Art"}}
	current.ingest.report = &domain.BatchReport{
		Failed: []domain.BatchFailure{{Item: "Art", Reason: "embed: rate limited"}},
	}
	current.ingest.err = fmt.Errorf("ingest 1 articles: %w", domain.ErrNothingIndexed)

	out, err := execute(t, "", "ingest")

	require.ErrorIs(t, err, domain.ErrNothingIndexed)
	assert.Contains(t, err.Error(), "existing index kept")
	assert.Contains(t, out, "Failed: Art: embed: rate limited")
	assert.NotContains(t, out, "Indexed 0 chunks")
}

func TestIngestCmd_DeleteConfirmed(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	current.ingest.exists = true

	out, err := execute(t, "YES\n", "ingest", "--delete", "--path", "idx.bin")

	require.NoError(t, err)
	assert.Contains(t, out, "Are you sure you want to delete idx.bin? (yes/no)")
	assert.Contains(t, out, "Vector database file deleted.")
	assert.Equal(t, []string{"idx.bin"}, current.ingest.deleted)
}

func TestIngestCmd_DeleteCancelled(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	current.ingest.exists = true

	out, err := execute(t, "no\n", "ingest", "--delete")

	require.NoError(t, err)
	assert.Contains(t, out, "Deletion cancelled.")
	assert.Empty(t, current.ingest.deleted)
}

func TestIngestCmd_DeleteMissing(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "", "ingest", "--delete")

	require.NoError(t, err)
	assert.Contains(t, out, "Vector database not found.")
}

func TestIngestCmd_PathFromSettings(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	current.settings.settings.Index.Path = "/data/wiki.idx"
	current.ingest.report = &domain.BatchReport{}

	_, err := execute(t, "", "ingest")

	require.NoError(t, err)
	assert.Equal(t, "/data/wiki.idx", current.ingest.opts.Path)
}
