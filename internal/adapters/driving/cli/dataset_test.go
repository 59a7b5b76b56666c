package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/wikichat/internal/core/domain"
)

func TestDatasetCmd_Flags(t *testing.T) {
	limit := datasetCmd.Flags().Lookup("limit")
	require.NotNil(t, limit)
	assert.Equal(t, "10", limit.DefValue)
	assert.Equal(t, domain.DefaultDatasetSubset, datasetCmd.Flags().Lookup("subset").DefValue)
	assert.Equal(t, domain.DefaultDatasetName, datasetCmd.Flags().Lookup("dataset").DefValue)
}

func TestDatasetCmd_Load(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	current.articles.loaded = 5

	out, err := execute(t, "", "dataset", "--limit", "5")

	require.NoError(t, err)
	assert.Contains(t, out, "Loading dataset with subset '20220301.simple' and limit 5...")
	assert.Contains(t, out, "Successfully saved 5 articles.")
	assert.Equal(t, 5, current.articles.loadOpts.Limit)
	assert.Equal(t, "wikipedia", current.articles.loadOpts.Dataset)
}

func TestDatasetCmd_SubsetFlagOverridesSettings(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	current.settings.settings.Dataset.Subset = "from-settings"

	_, err := execute(t, "", "dataset", "--subset", "20220301.en")
	require.NoError(t, err)
	assert.Equal(t, "20220301.en", current.articles.loadOpts.Subset)

	_, err = execute(t, "", "dataset")
	require.NoError(t, err)
	assert.Equal(t, "from-settings", current.articles.loadOpts.Subset)
}

func TestDatasetCmd_LoadError(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	current.articles.err = errors.New("datasets server down")

	_, err := execute(t, "", "dataset")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "datasets server down")
}

func TestDatasetCmd_List(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	current.articles.articles = []domain.Article{
		{ID: "a1", Title: "April", URL: "https://simple.wikipedia.org/wiki/April"},
	}

	out, err := execute(t, "", "dataset", "--list")

	require.NoError(t, err)
	assert.Contains(t, out, "a1: April (https://simple.wikipedia.org/wiki/April)")
}

func TestDatasetCmd_ListEmpty(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "", "dataset", "--list")

	require.NoError(t, err)
	assert.Contains(t, out, "No articles found in the database.")
}

func TestDatasetCmd_Delete(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	current.articles.articles = []domain.Article{{ID: "a1"}, {ID: "a2"}}

	out, err := execute(t, "", "dataset", "--delete")

	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 2 articles.")
}

func TestDatasetCmd_ListAndDeleteAreExclusive(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "", "dataset", "--list", "--delete")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "none of the others can be")
}

func TestDatasetCmd_NoService(t *testing.T) {
	_, err := execute(t, "", "dataset")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "article service not configured")
}
